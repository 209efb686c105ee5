// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

// An access rule list (ARL) is a concatenation of entries, each a scope
// followed by a predicate. The scope is either an access-mode byte
// naming one operation kind within the file, or a literal four-byte
// APDU header matching a single command. The predicate is always,
// never, or user authentication against a PIN reference.
const (
	arlAccessModeTag = 0x80
	arlAccessModeLen = 0x01
	arlCommandTag    = 0x84
	arlCommandLen    = 0x04
	arlAlwaysTag     = 0x90
	arlAlwaysLen     = 0x00
	arlNeverTag      = 0x97
	arlNeverLen      = 0x00
	arlUserAuthTag   = 0xa4
	arlUserAuthLen   = 0x06
	arlDummyTag      = 0x81
	arlDummyLen      = 0x00

	crtTagPinRef = 0x83
	crtLenPinRef = 0x01
	crtTagKeyRef = 0x84
	crtTagKUQ    = 0x95
	crtLenKUQ    = 0x01

	// Key usage qualifiers carried in control reference templates.
	kuqUserAuth = 0x08
	kuqDecrypt  = 0x40

	// amNone omits the access-mode scope when encoding an entry. On the
	// wire the same value doubles as the MF's "all commands" mode.
	amNone = 0xff

	// backtrackPIN tells the card to search parent DFs for the named
	// PIN. It is set on the wire for VERIFY but never stored in ACLs.
	backtrackPIN  = 0x80
	backtrackMask = 0x7f

	dfARLBufSize = 160
	efARLBufSize = 96
)

// Access-mode bytes for elementary files.
const (
	amEFRead       = 0x01
	amEFUpdate     = 0x02
	amEFWrite      = 0x04
	amEFDeactivate = 0x08
	amEFActivate   = 0x10
	amEFTerminate  = 0x20
	amEFDelete     = 0x40
	amEFIncrease   = 0x81
	amEFDecrease   = 0x82
)

// Access-mode bytes for dedicated files.
const (
	amDFCreateEF         = 0x01
	amDFCreateDF         = 0x02
	amDFDeleteChild      = 0x04
	amDFDeactivate       = 0x08
	amDFActivate         = 0x10
	amDFTerminate        = 0x20
	amDFDeleteSelf       = 0x40
	amDFPutDataOCI       = 0x81
	amDFPutDataOCIUpdate = 0x82
	amDFLoadExecutable   = 0x84
	amDFPutDataFCI       = 0x88
)

// Operation is an abstract file operation an ACL entry applies to.
type Operation int

const (
	OpDelete Operation = iota
	OpRehabilitate
	OpInvalidate
	OpWrite
	OpUpdate
	OpRead
	OpCreate
)

func (op Operation) String() string {
	switch op {
	case OpDelete:
		return "delete"
	case OpRehabilitate:
		return "rehabilitate"
	case OpInvalidate:
		return "invalidate"
	case OpWrite:
		return "write"
	case OpUpdate:
		return "update"
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	default:
		return "unknown"
	}
}

// Method is the access condition guarding an operation.
type Method int

const (
	// MethodNone allows the operation unconditionally.
	MethodNone Method = iota
	// MethodNever forbids the operation.
	MethodNever
	// MethodCHV requires a verified PIN. MethodTerm and MethodAut are
	// encoded identically on this card family.
	MethodCHV
	MethodTerm
	MethodAut
)

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodNever:
		return "never"
	case MethodCHV:
		return "chv"
	case MethodTerm:
		return "term"
	case MethodAut:
		return "aut"
	default:
		return "unknown"
	}
}

// ACLEntry is the access condition for one abstract operation. KeyRef
// names the PIN for the user-authentication methods and must not carry
// the backtrack bit.
type ACLEntry struct {
	Method Method
	KeyRef byte
}

// accessMode associates a card access-mode byte with the abstract
// operation it guards. Modes with no host-side counterpart (terminate,
// load executable, ...) stay unmapped and default to never-allowed when
// encoding.
type accessMode struct {
	am     byte
	op     Operation
	mapped bool
}

var efAccessModes = []accessMode{
	{am: amEFDelete, op: OpDelete, mapped: true},
	{am: amEFTerminate},
	{am: amEFActivate, op: OpRehabilitate, mapped: true},
	{am: amEFDeactivate, op: OpInvalidate, mapped: true},
	{am: amEFWrite, op: OpWrite, mapped: true},
	{am: amEFUpdate, op: OpUpdate, mapped: true},
	{am: amEFRead, op: OpRead, mapped: true},
	{am: amEFIncrease},
	{am: amEFDecrease},
}

var dfAccessModes = []accessMode{
	{am: amDFDeleteSelf, op: OpDelete, mapped: true},
	{am: amDFTerminate},
	{am: amDFActivate, op: OpRehabilitate, mapped: true},
	{am: amDFDeactivate, op: OpInvalidate, mapped: true},
	{am: amDFCreateDF, op: OpCreate, mapped: true},
	{am: amDFCreateEF, op: OpCreate, mapped: true},
	{am: amDFDeleteChild},
	{am: amDFPutDataOCI, op: OpCreate, mapped: true},
	{am: amDFPutDataOCIUpdate, op: OpUpdate, mapped: true},
	{am: amDFLoadExecutable},
	{am: amDFPutDataFCI, op: OpCreate, mapped: true},
}

func lookupAccessMode(modes []accessMode, am byte) (accessMode, bool) {
	for _, m := range modes {
		if m.am == am {
			return m, true
		}
	}

	return accessMode{}, false
}

// addACLTag appends one ARL entry to arl. The access-mode scope is
// omitted for amNone, leaving a bare predicate for command-scoped and
// wildcard entries.
func addACLTag(am byte, e ACLEntry, arl *buffer) error {
	if am != amNone {
		if err := arl.putTag1(arlAccessModeTag, am); err != nil {
			return err
		}
	}

	switch e.Method {
	case MethodNone:
		return arl.putTag0(arlAlwaysTag)

	case MethodNever:
		return arl.putTag0(arlNeverTag)

	case MethodCHV, MethodTerm, MethodAut:
		if e.KeyRef&backtrackPIN != 0 {
			return ErrInvalidArguments
		}

		crt := newBuffer(16)
		if err := crt.putTag1(crtTagPinRef, e.KeyRef); err != nil {
			return err
		}
		if err := crt.putTag1(crtTagKUQ, kuqUserAuth); err != nil {
			return err
		}

		return arl.putTag(arlUserAuthTag, crt.bytes())

	default:
		return ErrInvalidArguments
	}
}

// constructDFARL builds the access rule list of a DF for CREATE FILE.
func constructDFARL(df *File) ([]byte, error) {
	arl := newBuffer(dfARLBufSize)

	// An update rule guards PUT DATA for EC domain parameters on the
	// DF, scoped to that one command.
	if e, ok := df.ACL[OpUpdate]; ok {
		cmd := []byte{0x00, byte(insPutData), putDataECDP1, putDataECDP2}
		if err := arl.putTag(arlCommandTag, cmd); err != nil {
			return nil, err
		}
		if err := addACLTag(amNone, e, arl); err != nil {
			return nil, err
		}
	}

	for _, m := range dfAccessModes {
		e := ACLEntry{Method: MethodNever}
		if m.mapped {
			if ent, ok := df.ACL[m.op]; ok {
				e = ent
			}
		}
		if err := addACLTag(m.am, e, arl); err != nil {
			return nil, err
		}
	}

	// Lifecycle toggling and multi-part object writes must stay
	// possible without a PIN once the DF exists.
	for _, cmd := range [][]byte{
		{phaseControlCLA, byte(insPhaseControl), phaseControlP1Toggle, phaseControlP2Toggle},
		{accObjDataCLA, byte(insAccObjData), accObjDataP1New, 0x00},
		{accObjDataCLA, byte(insAccObjData), accObjDataP1Append, 0x00},
	} {
		if err := arl.putTag(arlCommandTag, cmd); err != nil {
			return nil, err
		}
		if err := arl.putTag0(arlAlwaysTag); err != nil {
			return nil, err
		}
	}

	return arl.bytes(), nil
}

// constructEFARL builds the access rule list of a working EF for
// CREATE FILE.
func constructEFARL(ef *File) ([]byte, error) {
	arl := newBuffer(efARLBufSize)

	for _, m := range efAccessModes {
		e := ACLEntry{Method: MethodNever}
		if m.mapped {
			if ent, ok := ef.ACL[m.op]; ok {
				e = ent
			}
		}
		if err := addACLTag(m.am, e, arl); err != nil {
			return nil, err
		}
	}

	return arl.bytes(), nil
}

// parseARL decodes the security attribute of a selected file into ACL
// entries on f.
func parseARL(f *File, arl []byte) error {
	switch f.Type {
	case FileTypeDF:
		return parseDFARL(f, arl)
	case FileTypeWorkingEF:
		return parseEFARL(f, arl)
	default:
		return ErrInvalidArguments
	}
}

// isWildcardARL recognises the compact "allow everything" rule the MF
// is created with: a 0xff access-mode scope, optionally followed by a
// dummy entry and an always predicate.
func isWildcardARL(arl []byte) bool {
	if len(arl) < 3 || arl[0] != arlAccessModeTag || arl[1] != arlAccessModeLen || arl[2] != amNone {
		return false
	}

	switch n := len(arl); n {
	case 3:
		return true
	case 7, 9:
		return arl[n-4] == arlDummyTag && arl[n-3] == arlDummyLen &&
			arl[n-2] == arlAlwaysTag && arl[n-1] == arlAlwaysLen
	default:
		return false
	}
}

func parseDFARL(f *File, arl []byte) error {
	if isWildcardARL(arl) {
		for _, m := range dfAccessModes {
			if m.mapped {
				f.setACL(m.op, ACLEntry{Method: MethodNone})
			}
		}

		return nil
	}

	for len(arl) >= 5 {
		// Command-scoped entries guard single APDUs (e.g. ACCUMULATE
		// OBJECT DATA) and have no host-side operation to surface.
		if arl[0] == arlCommandTag {
			if len(arl) < 8 {
				return ErrWrongLength
			}
			if arl[6] == arlUserAuthTag {
				skip := int(arl[7])
				if len(arl) < skip+8 {
					return ErrWrongLength
				}
				arl = arl[skip:]
			}
			arl = arl[8:]

			continue
		}

		var err error
		if arl, err = parseARLEntry(f, arl, dfAccessModes); err != nil {
			return err
		}
	}

	if len(arl) != 0 {
		return ErrWrongLength
	}

	return nil
}

func parseEFARL(f *File, arl []byte) error {
	for len(arl) >= 5 {
		var err error
		if arl, err = parseARLEntry(f, arl, efAccessModes); err != nil {
			return err
		}
	}

	if len(arl) != 0 {
		return ErrWrongLength
	}

	return nil
}

// parseARLEntry consumes one access-mode-scoped entry and records it
// on f if the mode maps to an abstract operation. The caller
// guarantees len(arl) >= 5.
func parseARLEntry(f *File, arl []byte, modes []accessMode) ([]byte, error) {
	if arl[0] != arlAccessModeTag || arl[1] != arlAccessModeLen {
		return nil, ErrNoCardSupport
	}

	mode, ok := lookupAccessMode(modes, arl[2])
	if !ok {
		return nil, ErrNoCardSupport
	}

	var e ACLEntry
	switch arl[3] {
	case arlAlwaysTag:
		if arl[4] != arlAlwaysLen {
			return nil, ErrNoCardSupport
		}
		e = ACLEntry{Method: MethodNone}
		arl = arl[5:]

	case arlNeverTag:
		if arl[4] != arlNeverLen {
			return nil, ErrNoCardSupport
		}
		e = ACLEntry{Method: MethodNever}
		arl = arl[5:]

	case arlUserAuthTag:
		if len(arl) < 11 {
			return nil, ErrWrongLength
		}
		if arl[4] != arlUserAuthLen || arl[5] != crtTagPinRef || arl[6] != crtLenPinRef {
			return nil, ErrNoCardSupport
		}
		if arl[8] != crtTagKUQ || arl[9] != crtLenKUQ || arl[10] != kuqUserAuth {
			return nil, ErrNoCardSupport
		}
		e = ACLEntry{Method: MethodCHV, KeyRef: arl[7] & backtrackMask}
		arl = arl[11:]

	default:
		return nil, ErrNoCardSupport
	}

	if mode.mapped {
		f.setACL(mode.op, e)
	}

	return arl, nil
}
