// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package arm32

import (
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/utils"
)

// Frame implements spec.md 4.F's frame layout: every LocalVariable (and
// every register-less parameter) gets a fixed offset from the frame
// pointer, reserved with a downward-growing bump allocator the way the
// teacher's asm_x86.go allocateStackSlot grows asm.stackOffset - except
// Frame assigns eagerly for every named Local/Param and every non-void
// instruction result up front, via
// Value.AssignMemory, so offsets are stable before the selector runs and
// are readable straight off the Value the way ir.Value.InRegister/HasMemory
// already model "at most one of register or memory".
//
// This backend never hands a LocalVariable a physical register: with no
// liveness analysis (spec.md 4.F, 9 "no rationale, no liveness"), every
// named value lives in memory and only the selector's short-lived
// Allocator (alloc.go) ever holds a value in a register, for the duration
// of a single instruction.
type Frame struct {
	fn *ir.Function

	bytesUsed int

	MaxOutArgs  int
	FrameSize   int
	CalleeSaved []Register
}

// wordsFor returns how many 4-byte words v occupies: the element count of
// its declared array shape, or 1 for a scalar or a decayed array pointer.
func wordsFor(v *ir.Value) int {
	if !v.IsArray || v.Decayed {
		return 1
	}
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	utils.Assert(n > 0, "array %q has a non-positive dimension product", v.Name)
	return n
}

// NewFrame lays out fn's locals, register-less parameters and instruction
// results, and computes
// the function's outgoing-argument area from its call sites (spec.md 4.F
// "the maximum outgoing-argument count recorded on the function determines
// the fixed bottom of the frame").
func NewFrame(fn *ir.Function) *Frame {
	f := &Frame{fn: fn}

	for i, p := range fn.Params {
		if i < NumArgRegs {
			// A parameter is always a single word in its home slot, even an
			// array-typed one: arrays decay to the one pointer word the ABI
			// passed, never to inline storage (spec.md 4.D, 4.F).
			f.bytesUsed += 4
			p.AssignMemory(int(FP), -f.bytesUsed)
		} else {
			// Overflow parameter: lives in the caller's outgoing-argument
			// area, above the callee's saved {fp, lr} pair.
			p.AssignMemory(int(FP), 8+(i-NumArgRegs)*4)
		}
	}
	for _, l := range fn.Locals {
		f.reserveAt(l)
	}
	// Instruction results are spilled to the frame too; reserving them here
	// keeps them inside FrameSize, above SP, where a call cannot clobber them.
	for _, inst := range fn.Code {
		if inst.Type != nil && !inst.Type.IsVoid() {
			f.reserveAt(inst.AsValue())
		}
	}

	f.MaxOutArgs = maxOutgoingArgs(fn)
	fn.MaxOutArgs = f.MaxOutArgs
	f.FrameSize = utils.Align16(f.bytesUsed + f.MaxOutArgs*4)
	fn.FrameSize = f.FrameSize

	f.CalleeSaved = []Register{FP, LR}
	for _, r := range f.CalleeSaved {
		fn.CalleeSaved = append(fn.CalleeSaved, int(r))
	}
	return f
}

// reserveAt bumps the local area downward by wordsFor(v) words and assigns
// v the lowest (most negative) address of its block, so element i of an
// array sits at offset+i*4 without colliding with whatever is reserved
// next.
func (f *Frame) reserveAt(v *ir.Value) {
	f.bytesUsed += wordsFor(v) * 4
	v.AssignMemory(int(FP), -f.bytesUsed)
}

// EnsureSlot reserves a frame slot for v if it doesn't already have a
// register or memory assignment. NewFrame already reserves every Local,
// Param and non-void instruction result, so this only reserves a slot for
// a value that reaches loadVar/storeVar without one, matching spec.md
// 4.G's "store_var back" when a result has no register.
func (f *Frame) EnsureSlot(v *ir.Value) {
	if v.InRegister() || v.HasMemory {
		return
	}
	f.reserveAt(v)
}

// maxOutgoingArgs scans fn's call sites for the largest overflow-argument
// count (spec.md 4.F).
func maxOutgoingArgs(fn *ir.Function) int {
	max := 0
	for _, inst := range fn.Code {
		if inst.Op != ir.OpCall {
			continue
		}
		overflow := len(inst.CallArgs) - NumArgRegs
		if overflow > max {
			max = overflow
		}
	}
	return max
}
