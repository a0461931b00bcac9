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

package ir

import "github.com/minic-lang/minic/internal/types"

// Op tags an Instruction's variant (spec.md 4.B / design note "subtype
// polymorphism over Instruction"). The teacher's ssa.Op enum groups a Value's
// behavior behind a single tag instead of a class hierarchy; we follow the
// same shape but the variants here match the linear-IR opcode set rather than
// SSA nodes.
type Op int

const (
	OpEntry Op = iota
	OpExit
	OpLabel
	OpGoto
	OpCondGoto

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe

	OpNeg
	OpDeref

	OpMove
	OpCall
	OpArg // design note "open question": optional, never emitted by lowering (spec.md 9)
)

var opNames = map[Op]string{
	OpEntry: "entry", OpExit: "exit", OpLabel: "label", OpGoto: "br", OpCondGoto: "bc",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "sdiv", OpMod: "mod",
	OpCmpEq: "icmp_eq", OpCmpNe: "icmp_ne", OpCmpLt: "icmp_lt", OpCmpLe: "icmp_le",
	OpCmpGt: "icmp_gt", OpCmpGe: "icmp_ge",
	OpNeg: "neg", OpDeref: "deref", OpMove: "move", OpCall: "call", OpArg: "arg",
}

func (op Op) String() string { return opNames[op] }

// IsComparison reports whether op is one of the six relational opcodes that
// produce a Bool result (spec.md 4.B Binary op set).
func (op Op) IsComparison() bool {
	return op >= OpCmpEq && op <= OpCmpGe
}

// HasSideEffect reports whether an instruction of this op must be kept even
// with zero uses of its result - the dead-instruction test named in spec.md
// 4.B ("no uses and no side effects").
func (op Op) HasSideEffect() bool {
	switch op {
	case OpEntry, OpExit, OpLabel, OpGoto, OpCondGoto, OpMove, OpCall:
		return true
	default:
		return false
	}
}

// Instruction is both a node in the linear instruction stream and, for
// result-producing ops, a Value that other instructions may reference. It
// embeds Value so that an *Instruction satisfies every place spec.md treats
// "Instruction (a Value because most instructions define a result)".
//
// Kind-specific payload is carried as plain fields rather than an interface
// per variant (design note "tagged variant carrying per-kind payload");
// Op is the tag and callers switch on it.
type Instruction struct {
	Value

	Op Op

	// Generic operand list; back-pointers to the per-slot Use live in uses,
	// parallel to operands by index, so SetArg can atomically retarget one
	// def-use edge (spec.md 4.B).
	operands []*Value
	uses     []*Use

	// Control-flow targets. Goto uses Target; CondGoto uses Target (true) and
	// Target2 (false).
	Target  *Instruction
	Target2 *Instruction

	// Call.
	Callee   *Function
	CallArgs []*Value

	// Exit.
	RetValue *Value

	// Move. ArrayCopy marks an address-transfer Move emitted for an array
	// formal parameter's binding rather than a scalar copy; MoveDims carries
	// the propagated array shape for such a Move (spec.md 4.B, 4.D).
	ArrayCopy bool
	MoveDims  []int

	// Label: human-readable name used by the printer and branch targets.
	LabelName string

	Comment string
}

func newInstruction(id int, op Op, t *types.Type) *Instruction {
	inst := &Instruction{Op: op}
	inst.Kind = KInstr
	inst.ID = id
	inst.Type = t
	inst.RegID = NoReg
	inst.Owner = inst
	return inst
}

// Args returns the instruction's operand list in the order defined by its Op
// (e.g. Binary: [a, b]; Unary/Deref: [a]; Move: [dst, src]; CondGoto: [cond]).
func (i *Instruction) Args() []*Value {
	return i.operands
}

func (i *Instruction) Arg(idx int) *Value {
	return i.operands[idx]
}

// AddArg appends a new operand and records the def-use edge on v.
func (i *Instruction) AddArg(v *Value) {
	idx := len(i.operands)
	i.operands = append(i.operands, v)
	u := &Use{User: i, Index: idx}
	i.uses = append(i.uses, u)
	v.AddUse(u)
}

// SetArg retargets operand idx to newVal, removing the old def-use edge and
// installing a new one on the same Use record (spec.md 4.B: "operand
// replacement updates both endpoints atomically").
func (i *Instruction) SetArg(idx int, newVal *Value) {
	old := i.operands[idx]
	u := i.uses[idx]
	old.RemoveUse(u)
	i.operands[idx] = newVal
	newVal.AddUse(u)
}

// IsDead reports whether this instruction can be discarded: it has no
// side effects and nothing reads its result (spec.md 4.B).
func (i *Instruction) IsDead() bool {
	return !i.Op.HasSideEffect() && i.HasNoUses()
}

// AsValue exposes the instruction's embedded Value header explicitly at call
// sites that otherwise only deal with *Value, e.g. when appending an
// instruction's result to another instruction's operand list.
func (i *Instruction) AsValue() *Value {
	return &i.Value
}
