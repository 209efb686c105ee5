// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructEFFCP(t *testing.T) {
	f := &File{
		ID:        0x4142,
		Type:      FileTypeWorkingEF,
		Structure: EFTransparent,
		Size:      0x0100,
	}

	fcp, err := constructFCP(f)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(fcp), 2)
	assert.EqualValues(t, fcpTagStart, fcp[0])
	assert.EqualValues(t, len(fcp)-2, fcp[1])

	body := fcp[2:]
	assert.Equal(t, []byte{
		0x82, 0x01, 0x01, // transparent EF
		0x81, 0x02, 0x01, 0x00, // size
		0x88, 0x00, // empty SFID
	}, body[:9])

	arl := findTag(body, fcpTagARL)
	require.NotNil(t, arl)
	assert.Equal(t, []byte{0x80, 0x01, 0x40, 0x97, 0x00}, arl[:5],
		"all operations default to never-allowed")

	assert.Equal(t, []byte{0x41, 0x42}, findTag(body, fcpTagFileID))
}

func TestConstructDFFCP(t *testing.T) {
	f := &File{
		ID:   0x5015,
		Type: FileTypeDF,
		Size: 0x1000,
		Name: []byte{0xd2, 0x76, 0x00, 0x00, 0x66, 0x01},
	}
	f.SetACL(OpCreate, MethodCHV, 1)

	fcp, err := constructFCP(f)
	require.NoError(t, err)

	body := fcp[2:]
	assert.Equal(t, []byte{
		0x82, 0x01, 0x38,
		0x81, 0x02, 0x10, 0x00,
	}, body[:7])

	assert.Equal(t, f.Name, findTag(body, fcpTagDFName))
	assert.Equal(t, []byte{0x50, 0x15}, findTag(body, fcpTagFileID))
	assert.NotNil(t, findTag(body, fcpTagARL))
}

func TestConstructFCPUnsupported(t *testing.T) {
	f := &File{
		Type:      FileTypeWorkingEF,
		Structure: EFLinearFixed,
	}
	_, err := constructFCP(f)
	require.ErrorIs(t, err, ErrNotSupported)

	f = &File{Type: FileType(7)}
	_, err = constructFCP(f)
	require.ErrorIs(t, err, ErrNotSupported)
}
