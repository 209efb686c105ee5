// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import "bytes"

// encodeECSignature re-encodes the card's raw EC signature into a DER
// SEQUENCE of two INTEGERs, writing the result over out. The raw
// layout is R || S on v5.3 cards; v5.0 cards append a two-byte trailer
// to each coordinate which is discarded. Returns the number of bytes
// written.
func encodeECSignature(typ CardType, raw, out []byte) (int, error) {
	siglen := len(raw)
	if siglen < 4 || siglen > len(out) || siglen%2 != 0 {
		return 0, ErrInvalidArguments
	}

	var coordLen int
	switch typ {
	case V50:
		coordLen = (siglen - 4) / 2
	case V53:
		coordLen = siglen / 2
	default:
		return 0, ErrInvalidArguments
	}

	// raw may alias out, which is zeroed before the rewrite.
	sig := bytes.Clone(raw)
	for i := range out {
		out[i] = 0
	}

	r, rest, err := takeCoordinate(typ, sig, coordLen)
	if err != nil {
		return 0, err
	}
	s, _, err := takeCoordinate(typ, rest, coordLen)
	if err != nil {
		return 0, err
	}

	point := append(r, s...)
	if len(point) > 0xffff {
		return 0, ErrInvalidArguments
	}

	enc := &buffer{data: out}
	if err := enc.putBERTLV(0x30, point); err != nil {
		return 0, err
	}

	return enc.used, nil
}

// takeCoordinate consumes one raw coordinate (plus the v5.0 trailer)
// from in and returns it encoded as a DER INTEGER. A zero byte is
// prefixed when the high bit is set so the value stays non-negative.
func takeCoordinate(typ CardType, in []byte, rawLen int) (enc, rest []byte, err error) {
	if rawLen >= 127 || len(in) < rawLen {
		return nil, nil, ErrBufferTooSmall
	}

	coord := in[:rawLen]
	rest = in[rawLen:]

	if typ == V50 {
		if len(rest) < 2 {
			return nil, nil, ErrBufferTooSmall
		}
		rest = rest[2:]
	}

	if rawLen > 0 && coord[0]&0x80 != 0 {
		enc = append([]byte{0x02, byte(rawLen) + 1, 0x00}, coord...)
	} else {
		enc = append([]byte{0x02, byte(rawLen)}, coord...)
	}

	return enc, rest, nil
}
