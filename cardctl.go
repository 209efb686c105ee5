// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import (
	"bytes"

	iso "cunicu.li/go-iso7816"
)

// ControlCommand enumerates the card-specific control operations.
type ControlCommand int

const (
	CtlAccumulateObjectData ControlCommand = iota
	CtlGenerateKey
	CtlExtractKey
	CtlPutDataECD
	CtlInitCard
	CtlPutDataOCI
	CtlPutDataSECI
	CtlLifecycleGet
	CtlLifecycleSet
)

// ObjectData carries one ACCUMULATE OBJECT DATA transfer. Hash must be
// sized by the caller to the digest length the card computes; the
// reply is rejected when it does not match.
type ObjectData struct {
	// Append continues an existing object instead of allocating a new
	// one.
	Append bool

	Data []byte
	Hash []byte
}

// KeyData carries the request body for on-board key generation and,
// after extraction, the key material returned by the card.
type KeyData struct {
	Data []byte
}

// Control dispatches a card-specific control command. Commands the
// CardOS v4 driver already handles are delegated to it; everything
// else returns ErrNotSupported.
func (c *Card) Control(cmd ControlCommand, arg any) error {
	switch cmd {
	case CtlAccumulateObjectData:
		obj, ok := arg.(*ObjectData)
		if !ok {
			return ErrInvalidArguments
		}
		return c.AccumulateObjectData(obj)

	case CtlGenerateKey:
		key, ok := arg.(*KeyData)
		if !ok {
			return ErrInvalidArguments
		}
		return c.GenerateKey(key.Data)

	case CtlExtractKey:
		key, ok := arg.(*KeyData)
		if !ok {
			return ErrInvalidArguments
		}

		data, err := c.ExtractKey(key.Data)
		if err != nil {
			return err
		}
		key.Data = data

		return nil

	case CtlPutDataECD:
		data, ok := arg.([]byte)
		if !ok {
			return ErrInvalidArguments
		}
		return c.PutDataECD(data)

	case CtlInitCard:
		return c.InitCard()

	case CtlPutDataOCI:
		data, ok := arg.([]byte)
		if !ok {
			return ErrInvalidArguments
		}
		return c.v4.PutDataOCI(data)

	case CtlPutDataSECI:
		data, ok := arg.([]byte)
		if !ok {
			return ErrInvalidArguments
		}
		return c.v4.PutDataSECI(data)

	case CtlLifecycleGet:
		phase, ok := arg.(*byte)
		if !ok {
			return ErrInvalidArguments
		}

		p, err := c.v4.Lifecycle()
		if err != nil {
			return err
		}
		*phase = p

		return nil

	case CtlLifecycleSet:
		phase, ok := arg.(byte)
		if !ok {
			return ErrInvalidArguments
		}
		return c.v4.SetLifecycle(phase)

	default:
		return ErrNotSupported
	}
}

// AccumulateObjectData uploads one chunk of a multi-part object and
// reads back the card's running digest.
func (c *Card) AccumulateObjectData(obj *ObjectData) error {
	capdu := &iso.CAPDU{
		Cla:  accObjDataCLA,
		Ins:  insAccObjData,
		Data: obj.Data,
		Ne:   64,
	}
	if !obj.Append {
		// New object: allocate, then write.
		capdu.P1 = accObjDataP1New
	}

	resp, err := c.tx.Send(capdu)
	if err != nil {
		return c.v4.CheckStatus(err)
	}

	if len(resp) != len(obj.Hash)+2 {
		return ErrCardCommandFailed
	}
	copy(obj.Hash, resp[2:])

	return nil
}

// GenerateKey generates a key pair on the card as described by data.
func (c *Card) GenerateKey(data []byte) error {
	_, err := c.tx.Send(&iso.CAPDU{
		Ins:  insGenerateKey,
		P1:   generateKeyP1Generate,
		Data: data,
	})

	return c.v4.CheckStatus(err)
}

// ExtractKey reads key material from the card and returns an owned
// copy of it.
func (c *Card) ExtractKey(data []byte) ([]byte, error) {
	resp, err := c.tx.Send(&iso.CAPDU{
		Ins:  insGenerateKey,
		P1:   generateKeyP1Extract,
		Data: data,
		Ne:   768,
	})
	if err != nil {
		return nil, c.v4.CheckStatus(err)
	}

	return bytes.Clone(resp), nil
}

// PutDataECD stores EC domain parameters.
func (c *Card) PutDataECD(data []byte) error {
	_, err := c.tx.Send(&iso.CAPDU{
		Ins:  iso.InsPutData,
		P1:   putDataECDP1,
		P2:   putDataECDP2,
		Data: data,
	})

	return c.v4.CheckStatus(err)
}

// InitCard persists the card's data field length in EEPROM. The new
// length only takes effect after the next reset.
func (c *Card) InitCard() error {
	_, err := c.tx.Send(&iso.CAPDU{
		Cla: setDataFieldLengthCLA,
		Ins: insSetDataFieldLength,
		P1:  dataFieldLengthHigh,
		P2:  dataFieldLengthLow,
	})

	return c.v4.CheckStatus(err)
}
