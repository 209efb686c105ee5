// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

// PinCommand selects which PIN verb a PinRequest issues.
type PinCommand int

const (
	PinVerify PinCommand = iota
	PinChange
	PinUnblock
)

// PinRequest describes one PIN operation. Reference names the PIN
// without the backtrack bit; the driver sets that bit on the wire so
// the card searches parent DFs for the PIN object.
type PinRequest struct {
	Command   PinCommand
	Reference byte
	PIN       []byte
	NewPIN    []byte
}

// PinCmd validates req and delegates it to the generic ISO 7816 PIN
// handling. References that already carry the backtrack bit are
// rejected with ErrIncorrectParameters.
func (c *Card) PinCmd(req *PinRequest) error {
	if req.Reference&backtrackPIN != 0 {
		return ErrIncorrectParameters
	}

	fwd := *req
	fwd.Reference |= backtrackPIN

	if err := c.base.PinCmd(&fwd); err != nil {
		return c.v4.CheckStatus(err)
	}

	return nil
}

// VerifyPIN presents pin for the given PIN reference.
func (c *Card) VerifyPIN(ref byte, pin []byte) error {
	return c.PinCmd(&PinRequest{
		Command:   PinVerify,
		Reference: ref,
		PIN:       pin,
	})
}

// ChangePIN replaces the PIN behind ref, authenticating with the old
// one.
func (c *Card) ChangePIN(ref byte, oldPIN, newPIN []byte) error {
	return c.PinCmd(&PinRequest{
		Command:   PinChange,
		Reference: ref,
		PIN:       oldPIN,
		NewPIN:    newPIN,
	})
}

// UnblockPIN resets the retry counter of the PIN behind ref using its
// unblocking PIN.
func (c *Card) UnblockPIN(ref byte, puk, newPIN []byte) error {
	return c.PinCmd(&PinRequest{
		Command:   PinUnblock,
		Reference: ref,
		PIN:       puk,
		NewPIN:    newPIN,
	})
}
