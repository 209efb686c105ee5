// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

// FileType distinguishes directories from data files.
type FileType int

const (
	// FileTypeDF is a dedicated file (directory).
	FileTypeDF FileType = iota
	// FileTypeWorkingEF is a working elementary file.
	FileTypeWorkingEF
)

// EFStructure is the internal organisation of an elementary file. The
// CardOS v5 driver only creates transparent files.
type EFStructure int

const (
	EFTransparent EFStructure = iota
	EFLinearFixed
	EFLinearVariable
	EFCyclic
)

// File describes a card file, either one about to be created or one
// decoded from the file control information a SELECT returned.
type File struct {
	// ID is the two-byte file identifier.
	ID uint16

	Type      FileType
	Structure EFStructure

	// Size is the declared file size in bytes. The FCP encodes it as a
	// big-endian 16 bit value.
	Size uint16

	// Name is the DF name, included in the FCP when non-empty.
	Name []byte

	// ACL holds the access conditions keyed by abstract operation.
	ACL map[Operation]ACLEntry

	// SecAttr is the raw security attribute from the card's FCP.
	SecAttr []byte
}

// SetACL records the access condition for op. For MethodNone and
// MethodNever the key reference is ignored.
func (f *File) SetACL(op Operation, m Method, keyRef byte) {
	f.setACL(op, ACLEntry{Method: m, KeyRef: keyRef})
}

func (f *File) setACL(op Operation, e ACLEntry) {
	if f.ACL == nil {
		f.ACL = make(map[Operation]ACLEntry)
	}

	f.ACL[op] = e
}
