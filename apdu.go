// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import iso "cunicu.li/go-iso7816"

// Instructions not covered by the generic ISO 7816 set. PHASE CONTROL,
// ACCUMULATE OBJECT DATA and SET DATA FIELD LENGTH live in the
// proprietary 0x80 class.
const (
	insCreateFile               iso.Instruction = 0xe0
	insPerformSecurityOperation iso.Instruction = 0x2a
	insGenerateKey              iso.Instruction = 0x46
	insPhaseControl             iso.Instruction = 0x10
	insAccObjData               iso.Instruction = 0xd2
	insSetDataFieldLength       iso.Instruction = 0xc8
)

const insPutData = iso.InsPutData

const (
	selectP1FileID     = 0x00
	selectP1FullPath   = 0x08
	selectP2FCI        = 0x00
	selectP2NoResponse = 0x0c

	mseP1Set      = 0x41
	mseP2Sign     = 0xb6
	mseP2Decipher = 0xb8

	psoP1Sign = 0x9e
	psoP2Sign = 0x9a

	putDataECDP1  = 0x01
	putDataECDP2  = 0x6d
	putDataOCIP1  = 0x01
	putDataOCIP2  = 0x6e
	putDataSECIP1 = 0x01
	putDataSECIP2 = 0x6f

	phaseControlCLA      = 0x80
	phaseControlP1Toggle = 0x00
	phaseControlP2Toggle = 0x00

	accObjDataCLA      = 0x80
	accObjDataP1New    = 0x01
	accObjDataP1Append = 0x00

	setDataFieldLengthCLA = 0x80

	// Persisted data field length, high and low byte. Takes effect at
	// the next card reset.
	dataFieldLengthHigh = 0x03
	dataFieldLengthLow  = 0x00

	generateKeyP1Generate = 0x00
	generateKeyP1Extract  = 0x02

	lifecycleGetP1 = 0x01
	lifecycleGetP2 = 0x83
)
