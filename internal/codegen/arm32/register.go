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

// Package arm32 implements spec.md 4.F/4.G/4.H: frame layout, the simple
// liveness-free register assigner, the ARM32 instruction selector, and the
// ARM32 text emitter. It is grounded on the teacher's compile/codegen
// package, reinterpreting the x86 register model (arch_x86.go) and the
// "every virtual register is a stack slot" assembler (asm_x86.go) for
// ARM32's R0-R3 argument convention and push/pop callee-saved protocol.
package arm32

// Register names the thirteen general-purpose ARM32 registers (r11 and r12
// under their fp and ip aliases) plus the stack pointer, link register and
// program counter. There is no separate
// "virtual register" type the way the teacher's Register.Virtual flag models
// one: spec.md 4.F's allocator hands out scratch ids directly from this
// fixed pool, and anything that does not fit a register lives in a frame
// slot instead (internal/ir.Value.InRegister reports which).
type Register int

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	FP // R11, frame pointer
	IP // R12, intra-procedure scratch
	SP // R13
	LR // R14
	PC // R15
)

var registerNames = [...]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "fp", "ip", "sp", "lr", "pc",
}

func (r Register) String() string {
	if int(r) < 0 || int(r) >= len(registerNames) {
		return "badreg"
	}
	return registerNames[r]
}

// NumArgRegs is the count of integer-class argument registers in the ARM32
// ABI (spec.md 4.F "First four integer-class arguments in registers R0…R3").
const NumArgRegs = 4

// ArgReg returns the ABI argument register for a 0-based parameter index
// below NumArgRegs.
func ArgReg(idx int) Register {
	return Register(R0 + Register(idx))
}

// ReturnReg is where an integer return value lives on both sides of a call
// (spec.md 4.F "Integer return value in R0").
const ReturnReg = R0

// scratchRegisters is the ordered set of registers the simple allocator in
// alloc.go hands out as temporaries, matching spec.md 4.F "Allocate(value?)
// — return an unused scratch register id from the scratch pool". R0-R3 are
// excluded since func_call pins them during argument marshalling (4.G); R9
// is reserved as the fixed large-offset addressing scratch (config.go's
// MaxScratchRegisters documents exactly this: four general-purpose
// candidates, r4-r7, after reserving r9 separately). config.Config.
// MaxScratchRegisters truncates this list to bound the pool a test wants to
// exercise spilling against.
var scratchRegisters = []Register{R4, R5, R6, R7}

// AddrScratch is the register load_var/store_var borrow when an encoded
// frame offset exceeds the immediate range (spec.md 4.G).
const AddrScratch = R9

// ScratchPool returns the first n scratch candidates, clamped to the
// registers actually available (config.Config.MaxScratchRegisters).
func ScratchPool(n int) []Register {
	if n <= 0 || n > len(scratchRegisters) {
		n = len(scratchRegisters)
	}
	return scratchRegisters[:n]
}
