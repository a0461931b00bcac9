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

var arithMnemonic = map[ir.Op]string{
	ir.OpAdd: "add", ir.OpSub: "sub", ir.OpMul: "mul",
}

var condSuffix = map[ir.Op]string{
	ir.OpCmpEq: "eq", ir.OpCmpNe: "ne", ir.OpCmpLt: "lt",
	ir.OpCmpLe: "le", ir.OpCmpGt: "gt", ir.OpCmpGe: "ge",
}

// SelectFunction lowers fn's linear IR into ARM32 assembly text (spec.md
// 4.G), dispatching on IR opcode with the uniform spill protocol each
// handler follows via Emitter.loadVar/storeVar: operands already in a
// register are used directly, everything else round-trips through a
// scratch allocated from the short-lived Allocator and freed again at the
// end of the instruction (spec.md 4.F "the selector frees immediately
// after each instruction").
func SelectFunction(fn *ir.Function, maxScratch int) string {
	frame := NewFrame(fn)
	e := NewEmitter(frame, maxScratch)
	e.label(fn.Name)
	for _, inst := range fn.Code {
		if inst.IsDead() {
			// No side effect and nothing reads the result: safe to drop
			// (spec.md 4.B "used by the instruction selector to detect dead
			// instructions").
			continue
		}
		if inst.Op != ir.OpLabel {
			e.comment(ir.PrintInstruction(inst))
		}
		e.selectInstruction(inst)
	}
	return e.String()
}

func (e *Emitter) selectInstruction(inst *ir.Instruction) {
	switch inst.Op {
	case ir.OpEntry:
		e.selectEntry(inst)
	case ir.OpExit:
		e.selectExit(inst)
	case ir.OpLabel:
		e.label(inst.LabelName)
	case ir.OpGoto:
		e.emit("b %s", inst.Target.LabelName)
	case ir.OpCondGoto:
		e.selectCondGoto(inst)
	case ir.OpAdd, ir.OpSub, ir.OpMul:
		e.selectArith(inst)
	case ir.OpDiv:
		e.selectDiv(inst)
	case ir.OpMod:
		e.selectMod(inst)
	case ir.OpNeg:
		e.selectNeg(inst)
	case ir.OpCmpEq, ir.OpCmpNe, ir.OpCmpLt, ir.OpCmpLe, ir.OpCmpGt, ir.OpCmpGe:
		e.selectCompare(inst)
	case ir.OpDeref:
		e.selectDeref(inst)
	case ir.OpMove:
		e.selectMove(inst)
	case ir.OpCall:
		e.selectCall(inst)
	case ir.OpArg:
		// spec.md 9 "open question": the lowering never constructs one;
		// this case exists only so the switch stays exhaustive.
	default:
		utils.ShouldNotReachHere()
	}
}

// selectEntry implements spec.md 4.G's "entry": push the fixed {fp, lr}
// frame-pointer convention, reserve the local area, then materialize the
// first NumArgRegs parameters out of the ABI argument registers into their
// frame slots. The caller placed those parameters in R0…R3 (spec.md 4.F);
// frame.go's NewFrame already reserved a slot for each one, but the value
// only actually lands there once this store runs, and it must run before
// any other instruction touches R0…R3 (func_call's argument marshalling,
// in particular, reuses them freely). This backend never assigns a Value a
// persistent register across instructions (frame.go), so the callee-saved
// set this function pushes is always exactly {fp, lr} - there is no
// additional register to save (spec.md 4.F "the frame pointer plus any
// register assigned to a live-across-call variable").
func (e *Emitter) selectEntry(inst *ir.Instruction) {
	e.emit("push {fp, lr}")
	e.emit("mov fp, sp")
	if e.frame.FrameSize > 0 {
		e.emit("sub sp, sp, #%d", e.frame.FrameSize)
	}
	params := e.frame.fn.Params
	for i := 0; i < len(params) && i < NumArgRegs; i++ {
		p := params[i]
		e.emit("str %s, %s", ArgReg(i), e.memOperand(Register(p.MemBase), p.MemOffset))
	}
}

// selectExit implements spec.md 4.G's "exit": load the return value into
// R0 if present, tear down the frame, pop {fp, lr}, return.
func (e *Emitter) selectExit(inst *ir.Instruction) {
	if inst.RetValue != nil {
		r := e.loadVar(inst.RetValue)
		if r != ReturnReg {
			e.emit("mov %s, %s", ReturnReg, r)
		}
		e.release(inst.RetValue, r)
	}
	e.emit("mov sp, fp")
	e.emit("pop {fp, lr}")
	e.emit("bx lr")
}

func (e *Emitter) selectCondGoto(inst *ir.Instruction) {
	cond := inst.Arg(0)
	rc := e.loadVar(cond)
	e.emit("cmp %s, #0", rc)
	e.release(cond, rc)
	e.emit("bne %s", inst.Target.LabelName)
	e.emit("b %s", inst.Target2.LabelName)
}

func (e *Emitter) selectArith(inst *ir.Instruction) {
	a, b := inst.Arg(0), inst.Arg(1)
	ra, rb := e.loadVar(a), e.loadVar(b)
	rd := e.resultReg(inst.AsValue())
	e.emit("%s %s, %s, %s", arithMnemonic[inst.Op], rd, ra, rb)
	e.release(a, ra)
	e.release(b, rb)
	e.commitResult(inst.AsValue(), rd)
}

func (e *Emitter) selectDiv(inst *ir.Instruction) {
	a, b := inst.Arg(0), inst.Arg(1)
	ra, rb := e.loadVar(a), e.loadVar(b)
	rd := e.resultReg(inst.AsValue())
	e.emit("sdiv %s, %s, %s", rd, ra, rb)
	e.release(a, ra)
	e.release(b, rb)
	e.commitResult(inst.AsValue(), rd)
}

// selectMod implements spec.md 4.G's "sdiv into scratch, mul scratch×divisor,
// sub dividend−scratch" since ARM32 has no integer remainder instruction.
func (e *Emitter) selectMod(inst *ir.Instruction) {
	a, b := inst.Arg(0), inst.Arg(1)
	ra, rb := e.loadVar(a), e.loadVar(b)
	q := e.alloc.Allocate(nil)
	e.emit("sdiv %s, %s, %s", q, ra, rb)
	e.emit("mul %s, %s, %s", q, q, rb)
	rd := e.resultReg(inst.AsValue())
	e.emit("sub %s, %s, %s", rd, ra, q)
	e.alloc.Free(q)
	e.release(a, ra)
	e.release(b, rb)
	e.commitResult(inst.AsValue(), rd)
}

func (e *Emitter) selectNeg(inst *ir.Instruction) {
	a := inst.Arg(0)
	ra := e.loadVar(a)
	rd := e.resultReg(inst.AsValue())
	e.emit("neg %s, %s", rd, ra)
	e.release(a, ra)
	e.commitResult(inst.AsValue(), rd)
}

// selectCompare implements spec.md 4.G's "cmp a, b; mov rd, #0;
// mov<cond> rd, #1".
func (e *Emitter) selectCompare(inst *ir.Instruction) {
	a, b := inst.Arg(0), inst.Arg(1)
	ra, rb := e.loadVar(a), e.loadVar(b)
	e.emit("cmp %s, %s", ra, rb)
	rd := e.resultReg(inst.AsValue())
	e.emit("mov %s, #0", rd)
	e.emit("mov%s %s, #1", condSuffix[inst.Op], rd)
	e.release(a, ra)
	e.release(b, rb)
	e.commitResult(inst.AsValue(), rd)
}

func (e *Emitter) selectDeref(inst *ir.Instruction) {
	ptr := inst.Arg(0)
	rp := e.loadVar(ptr)
	rd := e.resultReg(inst.AsValue())
	e.emit("ldr %s, [%s]", rd, rp)
	e.release(ptr, rp)
	e.commitResult(inst.AsValue(), rd)
}

func (e *Emitter) selectMove(inst *ir.Instruction) {
	dst, src := inst.Arg(0), inst.Arg(1)
	r := e.loadVar(src)
	if dst.Type != nil && dst.Type.IsPointer() {
		// Assignment to an array element: dst is the element's address, so
		// the value is stored through it, not into dst's own slot.
		rp := e.loadVar(dst)
		e.emit("str %s, [%s]", r, rp)
		e.release(dst, rp)
	} else {
		e.storeVar(dst, r)
	}
	e.release(src, r)
}

// selectCall implements spec.md 4.G's "func_call": pin R0…R3, marshal the
// first four arguments into them, marshal overflow arguments into the
// outgoing-argument area at [sp, #0], [sp, #4], ..., call, then move a non-void result out
// of R0. Argument values are all loaded into scratch registers before any
// ABI register is touched, so marshalling argument i can never clobber an
// as-yet-unmarshalled argument j's scratch.
func (e *Emitter) selectCall(inst *ir.Instruction) {
	args := inst.CallArgs
	loaded := make([]Register, len(args))
	for i, a := range args {
		if i < NumArgRegs {
			loaded[i] = e.loadVar(a)
		}
	}
	for i := 0; i < NumArgRegs && i < len(args); i++ {
		dst := e.alloc.AllocateSpecific(ArgReg(i))
		if dst != loaded[i] {
			e.emit("mov %s, %s", dst, loaded[i])
		}
		e.release(args[i], loaded[i])
	}
	for i := NumArgRegs; i < len(args); i++ {
		r := e.loadVar(args[i])
		e.emit("str %s, %s", r, e.memOperand(SP, (i-NumArgRegs)*4))
		e.release(args[i], r)
	}

	e.emit("bl %s", inst.Callee.Name)

	for i := 0; i < NumArgRegs && i < len(args); i++ {
		e.alloc.Free(ArgReg(i))
	}

	if !inst.Type.IsVoid() {
		rd := e.resultReg(inst.AsValue())
		if rd != ReturnReg {
			e.emit("mov %s, %s", rd, ReturnReg)
		}
		e.commitResult(inst.AsValue(), rd)
	}
}
