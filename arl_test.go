// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructEFARL(t *testing.T) {
	ef := &File{Type: FileTypeWorkingEF}
	ef.SetACL(OpRead, MethodNone, 0)
	ef.SetACL(OpUpdate, MethodCHV, 3)

	arl, err := constructEFARL(ef)
	require.NoError(t, err)

	// One entry per access mode, in card order. Unset and unmapped
	// modes are denied.
	assert.Equal(t, []byte{
		0x80, 0x01, 0x40, 0x97, 0x00, // delete
		0x80, 0x01, 0x20, 0x97, 0x00, // terminate
		0x80, 0x01, 0x10, 0x97, 0x00, // activate
		0x80, 0x01, 0x08, 0x97, 0x00, // deactivate
		0x80, 0x01, 0x04, 0x97, 0x00, // write
		0x80, 0x01, 0x02, 0xa4, 0x06, 0x83, 0x01, 0x03, 0x95, 0x01, 0x08, // update: PIN 3
		0x80, 0x01, 0x01, 0x90, 0x00, // read: always
		0x80, 0x01, 0x81, 0x97, 0x00, // increase
		0x80, 0x01, 0x82, 0x97, 0x00, // decrease
	}, arl)
}

func TestConstructARLBacktrackRef(t *testing.T) {
	ef := &File{Type: FileTypeWorkingEF}
	ef.SetACL(OpRead, MethodCHV, 0x81)

	_, err := constructEFARL(ef)
	require.ErrorIs(t, err, ErrInvalidArguments)
}

func TestEFARLRoundtrip(t *testing.T) {
	ef := &File{Type: FileTypeWorkingEF}
	ef.SetACL(OpRead, MethodNone, 0)
	ef.SetACL(OpWrite, MethodCHV, 1)
	ef.SetACL(OpUpdate, MethodCHV, 1)
	ef.SetACL(OpDelete, MethodCHV, 2)

	arl, err := constructEFARL(ef)
	require.NoError(t, err)

	got := &File{Type: FileTypeWorkingEF}
	require.NoError(t, parseARL(got, arl))

	assert.Equal(t, map[Operation]ACLEntry{
		OpRead:         {Method: MethodNone},
		OpWrite:        {Method: MethodCHV, KeyRef: 1},
		OpUpdate:       {Method: MethodCHV, KeyRef: 1},
		OpDelete:       {Method: MethodCHV, KeyRef: 2},
		OpRehabilitate: {Method: MethodNever},
		OpInvalidate:   {Method: MethodNever},
	}, got.ACL)
}

func TestDFARLRoundtrip(t *testing.T) {
	df := &File{Type: FileTypeDF}
	df.SetACL(OpCreate, MethodCHV, 1)
	df.SetACL(OpDelete, MethodNone, 0)
	df.SetACL(OpUpdate, MethodCHV, 2)

	arl, err := constructDFARL(df)
	require.NoError(t, err)

	// The update rule is mirrored as a command-scoped entry guarding
	// PUT DATA for EC domain parameters.
	assert.Equal(t, []byte{
		0x84, 0x04, 0x00, 0xda, 0x01, 0x6d,
		0xa4, 0x06, 0x83, 0x01, 0x02, 0x95, 0x01, 0x08,
	}, arl[:14])

	got := &File{Type: FileTypeDF}
	require.NoError(t, parseARL(got, arl))

	assert.Equal(t, map[Operation]ACLEntry{
		OpCreate:       {Method: MethodCHV, KeyRef: 1},
		OpDelete:       {Method: MethodNone},
		OpUpdate:       {Method: MethodCHV, KeyRef: 2},
		OpRehabilitate: {Method: MethodNever},
		OpInvalidate:   {Method: MethodNever},
	}, got.ACL)
}

func TestWildcardARL(t *testing.T) {
	tests := []struct {
		name string
		arl  []byte
		want bool
	}{
		{"Compact", []byte{0x80, 0x01, 0xff}, true},
		{"WithAlways", []byte{0x80, 0x01, 0xff, 0x81, 0x00, 0x90, 0x00}, true},
		{"WithDummyAlways", []byte{0x80, 0x01, 0xff, 0x90, 0x00, 0x81, 0x00, 0x90, 0x00}, true},
		{"WrongMode", []byte{0x80, 0x01, 0x01}, false},
		{"WrongTail", []byte{0x80, 0x01, 0xff, 0x81, 0x00, 0x97, 0x00}, false},
		{"WrongLength", []byte{0x80, 0x01, 0xff, 0x90, 0x00}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, isWildcardARL(test.arl))
		})
	}
}

func TestParseWildcardARL(t *testing.T) {
	f := &File{Type: FileTypeDF}
	require.NoError(t, parseARL(f, []byte{0x80, 0x01, 0xff}))

	// Every operation the driver models becomes unconditionally
	// allowed.
	for _, op := range []Operation{OpDelete, OpRehabilitate, OpInvalidate, OpCreate, OpUpdate} {
		e, ok := f.ACL[op]
		require.True(t, ok, "missing ACL entry for %s", op)
		assert.Equal(t, MethodNone, e.Method)
	}
}

func TestParseARLBacktrackStripped(t *testing.T) {
	f := &File{Type: FileTypeWorkingEF}
	err := parseARL(f, []byte{
		0x80, 0x01, 0x01,
		0xa4, 0x06, 0x83, 0x01, 0x83, 0x95, 0x01, 0x08,
	})
	require.NoError(t, err)

	assert.Equal(t, ACLEntry{Method: MethodCHV, KeyRef: 3}, f.ACL[OpRead])
}

func TestParseARLErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  FileType
		arl  []byte
		want error
	}{
		{
			"TrailingBytes", FileTypeWorkingEF,
			[]byte{0x80, 0x01, 0x01, 0x90, 0x00, 0x80, 0x01}, ErrWrongLength,
		},
		{
			"UnknownPredicate", FileTypeWorkingEF,
			[]byte{0x80, 0x01, 0x01, 0x42, 0x00}, ErrNoCardSupport,
		},
		{
			"UnknownAccessMode", FileTypeWorkingEF,
			[]byte{0x80, 0x01, 0x55, 0x90, 0x00}, ErrNoCardSupport,
		},
		{
			"TruncatedUserAuth", FileTypeWorkingEF,
			[]byte{0x80, 0x01, 0x01, 0xa4, 0x06, 0x83, 0x01}, ErrWrongLength,
		},
		{
			"TruncatedCommand", FileTypeDF,
			[]byte{0x84, 0x04, 0x00, 0xda, 0x01}, ErrWrongLength,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := &File{Type: test.typ}
			require.ErrorIs(t, parseARL(f, test.arl), test.want)
		})
	}
}
