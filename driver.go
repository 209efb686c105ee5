// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import iso "cunicu.li/go-iso7816"

// transport is the slice of *iso.Transaction the driver needs: a
// single synchronous request/response exchange.
type transport interface {
	Send(capdu *iso.CAPDU) ([]byte, error)
}

// Ops is the full driver contract. Card implements it; the generic
// pieces come from BaseOps and the CardOS v4 sibling from V4Ops.
type Ops interface {
	SelectFile(path []byte) (*File, error)
	SelectPath(path []byte) error
	CreateFile(f *File) error
	ProcessFCI(f *File, fci []byte) error
	SetSecurityEnv(env *SecurityEnv) error
	RestoreSecurityEnv(seNum int) error
	ComputeSignature(data, out []byte) (int, error)
	ListFiles() ([]byte, error)
	GetData(tag uint16) ([]byte, error)
	PinCmd(req *PinRequest) error
	Logout() error
	Control(cmd ControlCommand, arg any) error
}

// BaseOps is the generic ISO 7816 behaviour the driver builds on.
type BaseOps interface {
	// ProcessFCI fills f from the body of a file control information
	// template.
	ProcessFCI(f *File, fci []byte) error

	// PinCmd issues the verify, change or unblock APDU for req.
	PinCmd(req *PinRequest) error
}

// V4Ops are the operations inherited from the CardOS v4 driver.
type V4Ops interface {
	// CheckStatus translates card status words into driver errors and
	// passes other errors through unchanged.
	CheckStatus(err error) error

	Logout() error
	PutDataOCI(data []byte) error
	PutDataSECI(data []byte) error
	Lifecycle() (byte, error)
	SetLifecycle(phase byte) error
}
