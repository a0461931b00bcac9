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

// Package ir is the linear three-address intermediate representation: the
// Value/Instruction def-use graph (spec.md 4.B) and the Module/Function
// container (spec.md 4.C). It is grounded on the teacher compiler's
// compile/ssa.Value def-use design (Args/Uses, AddArg/RemoveUse), adapted
// from an SSA basic-block graph to a flat, labeled linear instruction stream
// per spec.md's "linear IR" data model - there are no basic blocks or phis
// here, only instructions and the labels that branches target.
package ir

import (
	"fmt"

	"github.com/minic-lang/minic/internal/types"
)

type ValueKind int

const (
	KConstant ValueKind = iota
	KGlobal
	KLocal
	KParam
	KMem
	KInstr
)

func (k ValueKind) String() string {
	switch k {
	case KConstant:
		return "const"
	case KGlobal:
		return "global"
	case KLocal:
		return "local"
	case KParam:
		return "param"
	case KMem:
		return "mem"
	case KInstr:
		return "instr"
	default:
		return "?"
	}
}

// Use is a def-use edge: it connects a defining Value to one operand slot of
// a consuming Instruction. Both the Value's Uses list and the Instruction's
// internal operand-use list hold the same *Use, so replacing an operand
// updates both endpoints without a separate reconciliation pass (spec.md
// 4.B).
type Use struct {
	User  *Instruction
	Index int // operand slot within User
}

// Value is the common header for every computational entity named in
// spec.md 4.B: constants, globals, locals, formal parameters, synthesized
// stack slots (MemVariable) and instructions. Register-assignment results
// (RegID / memory address) are attached after lowering and are mutually
// exclusive, matching the "at most one of regId >= 0 / memoryAddr present"
// invariant.
type Value struct {
	Kind Kind
	Type *types.Type
	Name string // optional source name
	ID   int    // IR-level unique name within its owning function, e.g. v3

	IsArray bool
	Dims    []int // propagated array shape, used for partial-index argument binding

	// Decayed marks an array-typed value that holds a single pointer word
	// rather than its own storage: a KParam array (the ABI only ever hands
	// the callee a pointer, spec.md 4.D) or a KLocal bound to one by a
	// flagged Move (decl.go's formal-parameter binding). loadVar/loadArrayBase
	// read a decayed array like any other scalar instead of computing an
	// address from its own frame slot.
	Decayed bool

	Uses []*Use

	// Register assignment results (spec.md 4.F). RegID == NoReg means the
	// value instead lives at a memory address.
	RegID     int
	HasMemory bool
	MemBase   int // physical register id used as base (frame pointer or stack pointer)
	MemOffset int

	// Kind-specific payload.
	ConstVal   int32  // KConstant
	ScopeLevel int    // KLocal: nesting depth at which the variable was declared
	ParamIndex int    // KParam: position in the formal parameter list
	GlobalInit *int32 // KGlobal: nil means BSS (zero-initialized)

	// Owner links a KInstr value back to the Instruction it is embedded in,
	// so code holding only a *Value (an operand) can recover the defining
	// instruction, e.g. to find its position for dead-code elimination.
	Owner *Instruction
}

type Kind = ValueKind

const NoReg = -1

func newValue(kind ValueKind, id int, t *types.Type, name string) *Value {
	return &Value{Kind: kind, ID: id, Type: t, Name: name, RegID: NoReg}
}

// AddUse records that User consumes this value at operand slot idx.
func (v *Value) AddUse(u *Use) {
	v.Uses = append(v.Uses, u)
}

// RemoveUse drops exactly the given def-use edge; it is a no-op if the edge
// is not present (already removed).
func (v *Value) RemoveUse(u *Use) {
	for i, e := range v.Uses {
		if e == u {
			v.Uses = append(v.Uses[:i], v.Uses[i+1:]...)
			return
		}
	}
}

// HasNoUses reports whether no live instruction still reads this value.
func (v *Value) HasNoUses() bool {
	return len(v.Uses) == 0
}

// AssignRegister records that v was assigned to physical register id by the
// simple register allocator (spec.md 4.F). A value holds either a register
// or a memory address, never both.
func (v *Value) AssignRegister(id int) {
	v.RegID = id
	v.HasMemory = false
}

// AssignMemory records that v lives at offset(base) on the stack.
func (v *Value) AssignMemory(base, offset int) {
	v.RegID = NoReg
	v.HasMemory = true
	v.MemBase = base
	v.MemOffset = offset
}

func (v *Value) InRegister() bool {
	return v.RegID != NoReg
}

func (v *Value) String() string {
	switch v.Kind {
	case KConstant:
		return fmt.Sprintf("%d", v.ConstVal)
	case KGlobal:
		return fmt.Sprintf("@%s", v.Name)
	case KLocal, KParam:
		if v.Name != "" {
			return fmt.Sprintf("%%%s", v.Name)
		}
		return fmt.Sprintf("v%d", v.ID)
	case KMem:
		return fmt.Sprintf("[r%d+%d]", v.MemBase, v.MemOffset)
	case KInstr:
		return fmt.Sprintf("v%d", v.ID)
	default:
		return "<bad value>"
	}
}
