// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

// Package cardos implements a driver for the Atos CardOS v5 smart card
// family (v5.0 and v5.3). It translates between the generic ISO 7816
// file and security model and the card's own encoding of file control
// parameters, access rule lists, key references and EC signatures.
package cardos

import (
	"bytes"
	"fmt"

	iso "cunicu.li/go-iso7816"
)

// CardType identifies the CardOS variant a card reported in its ATR.
type CardType int

const (
	Unknown CardType = iota
	V50
	V53
)

func (t CardType) String() string {
	switch t {
	case V50:
		return "CardOS V5.0"
	case V53:
		return "CardOS V5.3"
	default:
		return "unknown"
	}
}

//nolint:gochecknoglobals
var atrs = []struct {
	atr []byte
	typ CardType
}{
	{
		atr: []byte{0x3b, 0xd2, 0x18, 0x00, 0x81, 0x31, 0xfe, 0x58, 0xc9, 0x01, 0x14},
		typ: V50,
	},
	{
		atr: []byte{0x3b, 0xd2, 0x18, 0x00, 0x81, 0x31, 0xfe, 0x58, 0xc9, 0x03, 0x16},
		typ: V53,
	},
}

// Match reports the CardOS variant for atr, or Unknown and false for
// any other card.
func Match(atr []byte) (CardType, bool) {
	for _, a := range atrs {
		if bytes.Equal(a.atr, atr) {
			return a.typ, true
		}
	}

	return Unknown, false
}

// Card is an open connection to a CardOS v5 smart card. While open, no
// other process can query the given card.
//
// To release the connection, call the Close method.
type Card struct {
	tx  transport
	typ CardType

	// Current security environment algorithm, set by SetSecurityEnv
	// and consumed by ComputeSignature.
	alg Algorithm

	base BaseOps
	v4   V4Ops

	itx  *iso.Transaction
	done func() error
}

var _ Ops = (*Card)(nil)

// NewCard opens a driver handle on sc. The card's ATR decides the
// variant; unknown ATRs are rejected with ErrUnknownCard. The generic
// ISO 7816 and CardOS v4 collaborators are constructed over the same
// transaction.
func NewCard(sc *iso.Card, atr []byte) (*Card, error) {
	typ, ok := Match(atr)
	if !ok {
		return nil, ErrUnknownCard
	}

	tx, err := sc.NewTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to begin smart card transaction: %w", err)
	}

	c := &Card{
		tx:   tx,
		typ:  typ,
		alg:  AlgorithmUnset,
		base: &baseOps{tx: tx},
		v4:   &v4Ops{tx: tx},
		itx:  tx,
	}

	return c, nil
}

// Close releases the connection to the smart card.
func (c *Card) Close() error {
	c.alg = AlgorithmUnset

	var err error
	if c.itx != nil {
		err = c.itx.Close()
	}
	if c.done != nil {
		if derr := c.done(); err == nil {
			err = derr
		}
	}

	return err
}

// Type returns the CardOS variant of the mounted card.
func (c *Card) Type() CardType {
	return c.typ
}

// SelectFile selects an absolute path starting at the MF and returns
// the file decoded from the returned file control information.
func (c *Card) SelectFile(path []byte) (*File, error) {
	return c.selectFile(path, true)
}

// SelectPath selects an absolute path without requesting file control
// information.
func (c *Card) SelectPath(path []byte) error {
	_, err := c.selectFile(path, false)
	return err
}

func (c *Card) selectFile(path []byte, wantFile bool) (*File, error) {
	if len(path) < 2 || path[0] != 0x3f || path[1] != 0x00 {
		return nil, ErrInvalidArguments
	}

	capdu := &iso.CAPDU{Ins: iso.InsSelect}
	if len(path) == 2 {
		// Only the MF identifier was supplied; keep it.
		capdu.P1 = selectP1FileID
		capdu.Data = path
	} else {
		// The remainder is a complete path relative to the MF.
		capdu.P1 = selectP1FullPath
		capdu.Data = path[2:]
	}

	if wantFile {
		capdu.P2 = selectP2FCI
		capdu.Ne = iso.MaxLenRespDataStandard
	} else {
		capdu.P2 = selectP2NoResponse
	}

	resp, err := c.tx.Send(capdu)
	if err != nil {
		return nil, c.v4.CheckStatus(err)
	}

	if !wantFile {
		return nil, nil
	}

	// The FCI envelope carries an explicit one- or two-byte length.
	var body []byte
	switch {
	case len(resp) >= 3 && resp[0] == tagFCI && resp[1] == 0x81:
		n := int(resp[2])
		if len(resp) < 3+n {
			return nil, ErrUnknownData
		}
		body = resp[3 : 3+n]

	case len(resp) >= 4 && resp[0] == tagFCI && resp[1] == 0x82:
		n := int(resp[2])<<8 | int(resp[3])
		if len(resp) < 4+n {
			return nil, ErrUnknownData
		}
		body = resp[4 : 4+n]

	default:
		return nil, ErrUnknownData
	}

	file := &File{}
	if err := c.ProcessFCI(file, body); err != nil {
		return nil, err
	}

	if err := parseARL(file, file.SecAttr); err != nil {
		return nil, fmt.Errorf("failed to parse access rules: %w", err)
	}

	return file, nil
}

// ProcessFCI decodes a file control information body into f and
// attaches the card's security attribute for later ACL parsing.
func (c *Card) ProcessFCI(f *File, fci []byte) error {
	if err := c.base.ProcessFCI(f, fci); err != nil {
		return err
	}

	if sec := findTag(fci, fcpTagARL); len(sec) != 0 {
		f.SecAttr = bytes.Clone(sec)
	}

	return nil
}

// CreateFile creates f under the currently selected DF.
func (c *Card) CreateFile(f *File) error {
	fcp, err := constructFCP(f)
	if err != nil {
		return err
	}

	_, err = c.tx.Send(&iso.CAPDU{
		Ins:  insCreateFile,
		Data: fcp,
	})

	return c.v4.CheckStatus(err)
}

// SecurityOperation selects what the security environment is set up
// for.
type SecurityOperation int

const (
	SecurityOperationSign SecurityOperation = iota
	SecurityOperationDecipher
)

// SecurityEnv describes the key and algorithm for subsequent signature
// or decipherment operations.
type SecurityEnv struct {
	Operation SecurityOperation
	Algorithm Algorithm
	KeyRef    byte
}

// SetSecurityEnv installs env with MANAGE SECURITY ENVIRONMENT and
// records the algorithm for ComputeSignature.
func (c *Card) SetSecurityEnv(env *SecurityEnv) error {
	c.alg = AlgorithmUnset

	var p2 byte
	switch env.Operation {
	case SecurityOperationSign:
		p2 = mseP2Sign
	case SecurityOperationDecipher:
		p2 = mseP2Decipher
	default:
		return ErrInvalidArguments
	}

	crt := newBuffer(16)
	if err := crt.putTag1(crtTagKeyRef, env.KeyRef); err != nil {
		return err
	}
	if err := crt.putTag1(crtTagKUQ, kuqDecrypt); err != nil {
		return err
	}

	_, err := c.tx.Send(&iso.CAPDU{
		Ins:  iso.InsManageSecurityEnvironment,
		P1:   mseP1Set,
		P2:   p2,
		Data: crt.bytes(),
	})
	if err != nil {
		return c.v4.CheckStatus(err)
	}

	c.alg = env.Algorithm

	return nil
}

// RestoreSecurityEnv is not supported by this card family.
func (c *Card) RestoreSecurityEnv(int) error {
	return ErrNotSupported
}

// ComputeSignature signs data with the key of the current security
// environment and writes the signature to out, returning its length.
// EC signatures are re-encoded as a DER SEQUENCE; RSA signatures pass
// through untouched.
func (c *Card) ComputeSignature(data, out []byte) (int, error) {
	if c.alg == AlgorithmUnset {
		return 0, ErrInvalidArguments
	}
	if len(out) < len(data) {
		return 0, ErrBufferTooSmall
	}

	resp, err := c.tx.Send(&iso.CAPDU{
		Ins:  insPerformSecurityOperation,
		P1:   psoP1Sign,
		P2:   psoP2Sign,
		Data: data,
		Ne:   iso.MaxLenRespDataExtended,
	})
	if err != nil {
		return 0, c.v4.CheckStatus(err)
	}

	if len(resp) > len(out) {
		return 0, ErrWrongLength
	}

	switch c.alg {
	case AlgorithmRSA:
		return copy(out, resp), nil
	case AlgorithmEC:
		return encodeECSignature(c.typ, resp, out)
	default:
		return 0, ErrInvalidArguments
	}
}

// ListFiles is not supported by this card family.
func (c *Card) ListFiles() ([]byte, error) {
	return nil, ErrNotSupported
}

// GetData is not supported by this card family.
func (c *Card) GetData(uint16) ([]byte, error) {
	return nil, ErrNotSupported
}

// Logout resets the card's security status.
func (c *Card) Logout() error {
	return c.v4.Logout()
}
