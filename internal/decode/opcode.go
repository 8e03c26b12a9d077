// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package decode walks a reassembled application frame's sub-packets and
// dispatches each to a Notify opcode emit, a FrameDown recursion, or
// silent discard.
package decode

// FragmentType is the low-15-bit discriminator of a sub-packet header's
// type field.
type FragmentType uint16

const (
	FragmentNotify    FragmentType = 0x0001
	FragmentFrameDown FragmentType = 0x0002
	FragmentOther     FragmentType = 0xffff // catch-all, never matched by value
)

// fragmentTypeOf maps the raw 15-bit discriminator to a FragmentType.
// Anything not explicitly known is Other and is skipped.
func fragmentTypeOf(raw uint16) FragmentType {
	switch raw {
	case uint16(FragmentNotify):
		return FragmentNotify
	case uint16(FragmentFrameDown):
		return FragmentFrameDown
	default:
		return FragmentOther
	}
}

// Opcode identifies the decoded meaning of a Notify sub-packet's payload,
// resolved from its wire method id.
type Opcode int32

const (
	OpUnknown Opcode = iota
	OpSkillDamage
	OpBuffApply
	OpBuffRemove
	OpDungeonStateSync
	OpActorHealthUpdate
)

// serviceUUID is the fixed 64-bit service identifier every Notify payload
// must carry; anything else is not our service's traffic and is discarded.
const serviceUUID uint64 = 0x0000000063335342

// methodIDToOpcode is the closed enumeration of known Notify method ids.
var methodIDToOpcode = map[uint32]Opcode{
	1: OpSkillDamage,
	2: OpBuffApply,
	3: OpBuffRemove,
	4: OpDungeonStateSync,
	5: OpActorHealthUpdate,
}

// opcodeFromMethodID resolves a wire method id to an Opcode via the closed
// enumeration. Unknown method ids report ok=false: the fragment is dropped,
// not surfaced as OpUnknown.
func opcodeFromMethodID(methodID uint32) (op Opcode, ok bool) {
	op, ok = methodIDToOpcode[methodID]
	return op, ok
}
