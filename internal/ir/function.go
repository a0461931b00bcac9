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

// Function owns everything spec.md 4.C assigns it: the typed return slot,
// formal parameters, the ordered linear instruction stream, the exit label,
// break/continue label stacks, and the frame metadata that 4.F fills in
// after lowering (MaxOutArgs, CalleeSaved, FrameSize). Instruction and value
// ids are local to the function, mirroring the teacher's per-function
// ssa.Func numbering in compile/ssa/hir.go.
type Function struct {
	Name       string
	ReturnType *types.Type

	RetSlot *Value // nil for void functions
	Params  []*Value
	Locals  []*Value // LocalVariable values declared anywhere in the body, in declaration order

	Code      []*Instruction // flat, ordered: Code[0] is always the Entry instruction
	ExitLabel *Instruction

	// Frame layout & register assignment results (spec.md 4.F), filled in by
	// internal/codegen/arm32 after lowering completes.
	MaxOutArgs  int
	CalleeSaved []int
	FrameSize   int

	breakStack    []*Instruction
	continueStack []*Instruction

	nextID int
}

func NewFunction(name string, ret *types.Type) *Function {
	return &Function{Name: name, ReturnType: ret}
}

func (f *Function) allocID() int {
	f.nextID++
	return f.nextID
}

func (f *Function) newInst(op Op, t *types.Type) *Instruction {
	return newInstruction(f.allocID(), op, t)
}

// Emit appends instructions to the function's linear code, in the order
// lowering produced them. Handlers build their own instruction slices and
// splice them in via this call, never through a shared global cursor
// (spec.md 4.D).
func (f *Function) Emit(instrs ...*Instruction) {
	f.Code = append(f.Code, instrs...)
}

func (f *Function) NewLocal(t *types.Type, name string, scopeLevel int) *Value {
	v := newValue(KLocal, f.allocID(), t, name)
	v.ScopeLevel = scopeLevel
	if t.IsArray() {
		v.IsArray = true
		v.Dims = t.Dims
	}
	f.Locals = append(f.Locals, v)
	return v
}

func (f *Function) NewParam(t *types.Type, name string, index int) *Value {
	v := newValue(KParam, f.allocID(), t, name)
	v.ParamIndex = index
	if t.IsArray() {
		v.IsArray = true
		v.Dims = t.Dims
		v.Decayed = true
	}
	f.Params = append(f.Params, v)
	return v
}

// NewMemSlot synthesizes a MemVariable: a stack slot (base register +
// offset) for overflow call arguments, never bound to a source name
// (spec.md 4.B "MemVariable(base_reg, offset)").
func (f *Function) NewMemSlot(t *types.Type, base, offset int) *Value {
	v := newValue(KMem, f.allocID(), t, "")
	v.AssignMemory(base, offset)
	return v
}

func (f *Function) NewEntry() *Instruction {
	return f.newInst(OpEntry, types.TVoid)
}

func (f *Function) NewExit(ret *Value) *Instruction {
	inst := f.newInst(OpExit, types.TVoid)
	inst.RetValue = ret
	if ret != nil {
		inst.AddArg(ret)
	}
	return inst
}

func (f *Function) NewLabel(name string) *Instruction {
	inst := f.newInst(OpLabel, types.TVoid)
	inst.LabelName = name
	return inst
}

func (f *Function) NewGoto(target *Instruction) *Instruction {
	inst := f.newInst(OpGoto, types.TVoid)
	inst.Target = target
	return inst
}

func (f *Function) NewCondGoto(cond *Value, trueLbl, falseLbl *Instruction) *Instruction {
	inst := f.newInst(OpCondGoto, types.TVoid)
	inst.AddArg(cond)
	inst.Target = trueLbl
	inst.Target2 = falseLbl
	return inst
}

func (f *Function) NewBinary(op Op, a, b *Value) *Instruction {
	resultType := types.TInt32
	if op.IsComparison() {
		resultType = types.TBool
	}
	inst := f.newInst(op, resultType)
	inst.AddArg(a)
	inst.AddArg(b)
	return inst
}

func (f *Function) NewUnary(op Op, a *Value) *Instruction {
	resultType := types.TInt32
	if op == OpDeref && a.Type != nil && a.Type.IsPointer() {
		resultType = a.Type.ElementType()
	}
	inst := f.newInst(op, resultType)
	inst.AddArg(a)
	return inst
}

// NewMove builds a scalar Move(dst, src): dst receives src's value by plain
// copy.
func (f *Function) NewMove(dst, src *Value) *Instruction {
	inst := f.newInst(OpMove, types.TVoid)
	inst.AddArg(dst)
	inst.AddArg(src)
	return inst
}

// NewArrayParamMove builds the Move spec.md 4.D's "Formal parameter binding"
// requires for an array parameter: dst is a LocalVariable bound to the
// parameter's name, and the instruction is flagged ArrayCopy with dims so
// the def-use graph records this as an address transfer, not a scalar copy
// - dst and src both denote the same decayed pointer, never independent
// storage (spec.md 4.B "array-copy flag+dims for param binding").
func (f *Function) NewArrayParamMove(dst, src *Value, dims []int) *Instruction {
	inst := f.NewMove(dst, src)
	inst.ArrayCopy = true
	inst.MoveDims = dims
	return inst
}

func (f *Function) NewCall(callee *Function, args []*Value, retType *types.Type) *Instruction {
	inst := f.newInst(OpCall, retType)
	inst.Callee = callee
	for _, a := range args {
		inst.AddArg(a)
	}
	inst.CallArgs = append(inst.CallArgs, args...)
	return inst
}

func (f *Function) NewArg(v *Value) *Instruction {
	inst := f.newInst(OpArg, types.TVoid)
	inst.AddArg(v)
	return inst
}

// PushLoopLabels installs the break/continue targets for a newly entered
// loop (spec.md 4.C "break/continue label stack").
func (f *Function) PushLoopLabels(breakLbl, continueLbl *Instruction) {
	f.breakStack = append(f.breakStack, breakLbl)
	f.continueStack = append(f.continueStack, continueLbl)
}

func (f *Function) PopLoopLabels() {
	f.breakStack = f.breakStack[:len(f.breakStack)-1]
	f.continueStack = f.continueStack[:len(f.continueStack)-1]
}

// BreakTarget and ContinueTarget report the label atop each stack; ok is
// false when used outside any loop, which the caller treats as a fatal
// diagnostic (spec.md 4.E).
func (f *Function) BreakTarget() (*Instruction, bool) {
	if len(f.breakStack) == 0 {
		return nil, false
	}
	return f.breakStack[len(f.breakStack)-1], true
}

func (f *Function) ContinueTarget() (*Instruction, bool) {
	if len(f.continueStack) == 0 {
		return nil, false
	}
	return f.continueStack[len(f.continueStack)-1], true
}

func (f *Function) InLoop() bool {
	return len(f.breakStack) > 0
}
