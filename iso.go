// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import (
	"bytes"
	"encoding/binary"
	"fmt"

	iso "cunicu.li/go-iso7816"
	"cunicu.li/go-iso7816/encoding/tlv"
)

// baseOps implements BaseOps on top of the generic ISO 7816 encodings
// from go-iso7816.
type baseOps struct {
	tx transport
}

var _ BaseOps = (*baseOps)(nil)

func (b *baseOps) ProcessFCI(f *File, fci []byte) error {
	tvs, err := tlv.DecodeBER(fci)
	if err != nil {
		return fmt.Errorf("failed to decode FCP: %w", err)
	}

	if v, _, ok := tvs.Get(fcpTagDescriptor); ok && len(v) >= 1 {
		if v[0] == fcpTypeDF {
			f.Type = FileTypeDF
		} else {
			f.Type = FileTypeWorkingEF
			f.Structure = EFTransparent
		}
	}

	if v, _, ok := tvs.Get(fcpTagFileID); ok && len(v) == 2 {
		f.ID = binary.BigEndian.Uint16(v)
	}

	if v, _, ok := tvs.Get(fcpTagEFSize); ok && len(v) == 2 {
		f.Size = binary.BigEndian.Uint16(v)
	}

	if v, _, ok := tvs.Get(fcpTagDFName); ok && len(v) > 0 {
		f.Name = bytes.Clone(v)
	}

	return nil
}

func (b *baseOps) PinCmd(req *PinRequest) error {
	switch req.Command {
	case PinVerify:
		_, err := b.tx.Send(&iso.CAPDU{
			Ins:  iso.InsVerify,
			P2:   req.Reference,
			Data: req.PIN,
		})
		return err

	case PinChange:
		data := make([]byte, 0, len(req.PIN)+len(req.NewPIN))
		data = append(data, req.PIN...)
		data = append(data, req.NewPIN...)

		_, err := b.tx.Send(&iso.CAPDU{
			Ins:  iso.InsChangeReferenceData,
			P2:   req.Reference,
			Data: data,
		})
		return err

	case PinUnblock:
		data := make([]byte, 0, len(req.PIN)+len(req.NewPIN))
		data = append(data, req.PIN...)
		data = append(data, req.NewPIN...)

		_, err := b.tx.Send(&iso.CAPDU{
			Ins:  iso.InsResetRetryCounter,
			P2:   req.Reference,
			Data: data,
		})
		return err

	default:
		return ErrInvalidArguments
	}
}
