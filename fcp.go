// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

const (
	tagFCI = 0x6f

	fcpTagStart      = 0x62
	fcpTagDFSize     = 0x81
	fcpTagEFSize     = 0x81
	fcpTagDescriptor = 0x82
	fcpTagFileID     = 0x83
	fcpTagDFName     = 0x84
	fcpTagEFSFID     = 0x88
	fcpTagARL        = 0xab

	fcpTypeBinaryEF = 0x01
	fcpTypeDF       = 0x38

	fcpBufSize = 224
)

// constructFCP builds the file control parameters sent as the data
// field of CREATE FILE: a type-specific body plus the file identifier,
// wrapped in the outer FCP template.
func constructFCP(f *File) ([]byte, error) {
	fcp := newBuffer(fcpBufSize)

	var err error
	switch f.Type {
	case FileTypeDF:
		err = constructDFFCP(f, fcp)
	case FileTypeWorkingEF:
		err = constructEFFCP(f, fcp)
	default:
		return nil, ErrNotSupported
	}
	if err != nil {
		return nil, err
	}

	id := []byte{byte(f.ID >> 8), byte(f.ID)}
	if err := fcp.putTag(fcpTagFileID, id); err != nil {
		return nil, err
	}

	outer := newBuffer(fcpBufSize + 2)
	if err := outer.putTag(fcpTagStart, fcp.bytes()); err != nil {
		return nil, err
	}

	return outer.bytes(), nil
}

func constructDFFCP(df *File, fcp *buffer) error {
	size := []byte{byte(df.Size >> 8), byte(df.Size)}

	if err := fcp.putTag1(fcpTagDescriptor, fcpTypeDF); err != nil {
		return err
	}
	if err := fcp.putTag(fcpTagDFSize, size); err != nil {
		return err
	}

	if len(df.Name) > 0 {
		if err := fcp.putTag(fcpTagDFName, df.Name); err != nil {
			return err
		}
	}

	arl, err := constructDFARL(df)
	if err != nil {
		return err
	}

	return fcp.putTag(fcpTagARL, arl)
}

func constructEFFCP(ef *File, fcp *buffer) error {
	if ef.Structure != EFTransparent {
		return ErrNotSupported
	}

	size := []byte{byte(ef.Size >> 8), byte(ef.Size)}

	if err := fcp.putTag1(fcpTagDescriptor, fcpTypeBinaryEF); err != nil {
		return err
	}
	if err := fcp.putTag(fcpTagEFSize, size); err != nil {
		return err
	}

	// Short file identifier placeholder, left empty.
	if err := fcp.putTag0(fcpTagEFSFID); err != nil {
		return err
	}

	arl, err := constructEFARL(ef)
	if err != nil {
		return err
	}

	return fcp.putTag(fcpTagARL, arl)
}
