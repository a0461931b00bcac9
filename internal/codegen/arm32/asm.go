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
	"fmt"
	"strings"

	"github.com/minic-lang/minic/internal/ir"
)

// immRange is the magnitude an ARM32 ldr/str immediate offset can encode
// directly; beyond it load_var/store_var synthesize an address in a scratch
// register first (spec.md 4.G).
const immRange = 4095

// Emitter accumulates one function's assembly text and implements the
// uniform spill protocol spec.md 4.G describes: load_var/store_var move a
// Value between its register-or-memory home and a scratch register,
// synthesizing an address when the frame offset doesn't fit an immediate.
// Grounded on the teacher's Assembler in compile/codegen/asm_x86.go, which
// plays the same role for its "every virtual register is a stack slot"
// x86-64 backend.
type Emitter struct {
	buf   strings.Builder
	frame *Frame
	alloc *Allocator
}

// NewEmitter builds an Emitter whose scratch allocator is bounded to
// maxScratch registers (config.Config.MaxScratchRegisters; 0 uses the full
// pool), so a test can shrink the pool to exercise the spill protocol.
func NewEmitter(frame *Frame, maxScratch int) *Emitter {
	return &Emitter{frame: frame, alloc: NewAllocator(maxScratch)}
}

func (e *Emitter) String() string { return e.buf.String() }

func (e *Emitter) emit(format string, args ...interface{}) {
	e.buf.WriteString("\t" + fmt.Sprintf(format, args...) + "\n")
}

func (e *Emitter) label(name string) {
	e.buf.WriteString(name + ":\n")
}

func (e *Emitter) comment(c string) {
	e.buf.WriteString("\t@ " + c + "\n")
}

// memOperand renders a [base, #offset] addressing mode, synthesizing the
// address into AddrScratch first when offset exceeds the immediate range.
func (e *Emitter) memOperand(base Register, offset int) string {
	if offset >= -immRange && offset <= immRange {
		if offset >= 0 {
			return fmt.Sprintf("[%s, #%d]", base, offset)
		}
		return fmt.Sprintf("[%s, #-%d]", base, -offset)
	}
	e.emit("ldr %s, =%d", AddrScratch, offset)
	e.emit("add %s, %s, %s", AddrScratch, AddrScratch, base)
	return fmt.Sprintf("[%s]", AddrScratch)
}

// loadImm materializes a 32-bit constant in dst: small non-negative values
// that fit ARM32's 8-bit rotated immediate use mov directly (matching
// spec.md 4.G's "mov rd, #0"/"mov rd, #1" for comparisons); anything else
// goes through the GNU assembler's "ldr rd, =N" literal-pool pseudo-op,
// which accepts any 32-bit value.
func (e *Emitter) loadImm(dst Register, n int32) {
	if n >= 0 && n < 256 {
		e.emit("mov %s, #%d", dst, n)
		return
	}
	e.emit("ldr %s, =%d", dst, n)
}

// loadArrayBase materializes the address of an array-shaped value that
// denotes its own storage (a true Local or Global array, not a Decayed
// pointer) into a freshly allocated scratch register.
func (e *Emitter) loadArrayBase(v *ir.Value) Register {
	r := e.alloc.Allocate(nil)
	if v.Kind == ir.KGlobal {
		e.emit("ldr %s, =%s", r, v.Name)
		return r
	}
	e.frame.EnsureSlot(v)
	offset := v.MemOffset
	if offset >= -immRange && offset <= immRange {
		if offset >= 0 {
			e.emit("add %s, %s, #%d", r, Register(v.MemBase), offset)
		} else {
			e.emit("sub %s, %s, #%d", r, Register(v.MemBase), -offset)
		}
		return r
	}
	e.emit("ldr %s, =%d", r, offset)
	e.emit("add %s, %s, %s", r, r, Register(v.MemBase))
	return r
}

// loadVar brings v into a register, following spec.md 4.G's spill protocol:
// already-in-register values are used as is; everything else is loaded
// through a freshly allocated scratch. A non-Decayed array is special: the
// value itself denotes its storage, so its "loaded" form is the address of
// that storage, not a word read from it (spec.md 4.D's array-decays-to-its-
// own-base-address rule). A Decayed array - a parameter, or a local bound to
// one by an array-parameter Move - is the opposite: the ABI already handed
// the callee a single pointer word, so it is read like any other scalar.
func (e *Emitter) loadVar(v *ir.Value) Register {
	if v.InRegister() {
		return Register(v.RegID)
	}
	if v.IsArray && !v.Decayed {
		return e.loadArrayBase(v)
	}
	r := e.alloc.Allocate(nil)
	switch v.Kind {
	case ir.KConstant:
		e.loadImm(r, v.ConstVal)
	case ir.KGlobal:
		e.emit("ldr %s, =%s", r, v.Name)
		e.emit("ldr %s, [%s]", r, r)
	default:
		e.frame.EnsureSlot(v)
		e.emit("ldr %s, %s", r, e.memOperand(Register(v.MemBase), v.MemOffset))
	}
	return r
}

// storeVar writes src back to v's home, when v doesn't already live in a
// register (spec.md 4.G "store_var back").
func (e *Emitter) storeVar(v *ir.Value, src Register) {
	if v.InRegister() {
		if Register(v.RegID) != src {
			e.emit("mov %s, %s", Register(v.RegID), src)
		}
		return
	}
	switch v.Kind {
	case ir.KGlobal:
		addr := e.alloc.Allocate(nil)
		e.emit("ldr %s, =%s", addr, v.Name)
		e.emit("str %s, [%s]", src, addr)
		e.alloc.Free(addr)
	default:
		e.frame.EnsureSlot(v)
		e.emit("str %s, %s", src, e.memOperand(Register(v.MemBase), v.MemOffset))
	}
}

// release frees r if loadVar allocated it as scratch; a value already
// resident in a register is never freed through this path.
func (e *Emitter) release(v *ir.Value, r Register) {
	if !v.InRegister() {
		e.alloc.Free(r)
	}
}

// resultReg returns the register an instruction should compute its result
// into: the Value's own register if it has one, otherwise a fresh scratch
// that commitResult later spills.
func (e *Emitter) resultReg(v *ir.Value) Register {
	if v.InRegister() {
		return Register(v.RegID)
	}
	return e.alloc.Allocate(v)
}

// commitResult spills a result computed into r back to v's memory home, and
// releases the scratch, unless v already lives in a register (in which case
// r IS that register and there's nothing to spill).
func (e *Emitter) commitResult(v *ir.Value, r Register) {
	if v.InRegister() {
		return
	}
	e.storeVar(v, r)
	e.alloc.FreeValue(v)
}
