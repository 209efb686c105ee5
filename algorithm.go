// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

// Algorithm identifies the signature scheme of the current security
// environment. AlgorithmUnset means no environment is installed.
type Algorithm int

const (
	AlgorithmUnset Algorithm = iota
	AlgorithmRSA
	AlgorithmEC
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmRSA:
		return "RSA"
	case AlgorithmEC:
		return "EC"
	default:
		return "unset"
	}
}

// AlgorithmFlag qualifies how the card consumes signature input for an
// algorithm.
type AlgorithmFlag uint32

const (
	// FlagRawRSA expects the caller to apply padding.
	FlagRawRSA AlgorithmFlag = 1 << iota

	// FlagNoHash expects a pre-computed digest.
	FlagNoHash

	// FlagRawECDSA expects the raw digest for ECDSA.
	FlagRawECDSA

	// FlagOnboardKeyGen marks key sizes the card can generate itself.
	FlagOnboardKeyGen
)

// AlgorithmInfo describes one supported algorithm and key size.
type AlgorithmInfo struct {
	Algorithm Algorithm
	KeyBits   int
	Flags     AlgorithmFlag
}

// Algorithms returns the signature algorithms and key sizes the card
// family supports.
func Algorithms() []AlgorithmInfo {
	rsaFlags := FlagRawRSA | FlagNoHash | FlagOnboardKeyGen
	ecFlags := FlagRawECDSA | FlagOnboardKeyGen

	var algs []AlgorithmInfo

	for bits := 512; bits <= 4096; bits += 256 {
		algs = append(algs, AlgorithmInfo{AlgorithmRSA, bits, rsaFlags})
	}

	for _, bits := range []int{192, 224, 256, 384, 512} {
		algs = append(algs, AlgorithmInfo{AlgorithmEC, bits, ecFlags})
	}

	return algs
}

// Capability flags of the card family.
type Capability uint32

const (
	// CapExtendedAPDU marks support for extended-length APDUs.
	CapExtendedAPDU Capability = 1 << iota
)

// Capabilities reports what the mounted card variant supports. Both
// v5.0 and v5.3 handle extended-length APDUs.
func (c *Card) Capabilities() Capability {
	return CapExtendedAPDU
}
