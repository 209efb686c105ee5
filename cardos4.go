// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import (
	iso "cunicu.li/go-iso7816"
)

// Lifecycle phases reported by the card.
const (
	LifecycleOperational    = 0x10
	LifecycleAdministration = 0x20
)

// v4Ops implements the operations shared with the CardOS v4 family:
// status word translation, logout, object data uploads and lifecycle
// control.
type v4Ops struct {
	tx transport
}

var _ V4Ops = (*v4Ops)(nil)

func (v *v4Ops) CheckStatus(err error) error {
	if err == nil {
		return nil
	}

	c, ok := err.(iso.Code) //nolint:errorlint
	if !ok {
		return err
	}

	switch {
	case c == iso.ErrFileOrAppNotFound:
		return ErrNotFound

	case c == iso.ErrAuthenticationMethodBlocked:
		return AuthError{0}

	case c[0] == 0x63 && c[1]&0xf0 == 0xc0:
		return AuthError{int(c[1] & 0xf)}

	default:
		return err
	}
}

// Logout resets the card's security status by re-selecting the MF.
func (v *v4Ops) Logout() error {
	_, err := v.tx.Send(&iso.CAPDU{
		Ins:  iso.InsSelect,
		P1:   selectP1FileID,
		P2:   selectP2NoResponse,
		Data: []byte{0x3f, 0x00},
	})

	return v.CheckStatus(err)
}

func (v *v4Ops) PutDataOCI(data []byte) error {
	_, err := v.tx.Send(&iso.CAPDU{
		Ins:  iso.InsPutData,
		P1:   putDataOCIP1,
		P2:   putDataOCIP2,
		Data: data,
	})

	return v.CheckStatus(err)
}

func (v *v4Ops) PutDataSECI(data []byte) error {
	_, err := v.tx.Send(&iso.CAPDU{
		Ins:  iso.InsPutData,
		P1:   putDataSECIP1,
		P2:   putDataSECIP2,
		Data: data,
	})

	return v.CheckStatus(err)
}

// Lifecycle reads the current phase byte.
func (v *v4Ops) Lifecycle() (byte, error) {
	resp, err := v.tx.Send(&iso.CAPDU{
		Ins: iso.InsGetData,
		P1:  lifecycleGetP1,
		P2:  lifecycleGetP2,
		Ne:  iso.MaxLenRespDataStandard,
	})
	if err != nil {
		return 0, v.CheckStatus(err)
	}

	if len(resp) < 1 {
		return 0, ErrUnknownData
	}

	return resp[0], nil
}

// SetLifecycle toggles the phase via PHASE CONTROL until it matches
// the requested one. The card only alternates between the operational
// and administration phases.
func (v *v4Ops) SetLifecycle(phase byte) error {
	if phase != LifecycleOperational && phase != LifecycleAdministration {
		return ErrInvalidArguments
	}

	cur, err := v.Lifecycle()
	if err != nil {
		return err
	}
	if cur == phase {
		return nil
	}

	_, err = v.tx.Send(&iso.CAPDU{
		Cla: phaseControlCLA,
		Ins: insPhaseControl,
		P1:  phaseControlP1Toggle,
		P2:  phaseControlP2Toggle,
	})

	return v.CheckStatus(err)
}
