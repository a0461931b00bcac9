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

// Allocator is spec.md 4.F's "simple register allocator": short-lived,
// liveness-free, used by the instruction selector to borrow scratch
// registers for one instruction at a time and release them immediately
// after (4.G "the selector frees immediately after each instruction").
// Grounded on the teacher's NewAssembler scratch-register pool in
// compile/codegen/asm_x86.go, generalized from a single fixed scratch
// (R10) to the full ARM32 scratch set since the selector may need more
// than one live temporary within a single handler (e.g. mod's
// sdiv/mul/sub chain).
type Allocator struct {
	pool  []Register
	free  *utils.Set[Register]
	bound map[*ir.Value]Register
}

// NewAllocator builds a scratch pool of the first maxScratch candidate
// registers (config.Config.MaxScratchRegisters); 0 or a value larger than
// the available set uses the full pool.
func NewAllocator(maxScratch int) *Allocator {
	pool := ScratchPool(maxScratch)
	a := &Allocator{
		pool:  pool,
		free:  utils.NewSet[Register](),
		bound: map[*ir.Value]Register{},
	}
	for _, r := range pool {
		a.free.Add(r)
	}
	return a
}

// Allocate returns an unused scratch register. If v is non-nil the
// register is bound to it so a later Free(v) releases it by value instead
// of by register id (spec.md 4.F "optionally binding it to a value so
// subsequent free(value) releases").
func (a *Allocator) Allocate(v *ir.Value) Register {
	var picked Register = -1
	a.free.ForEach(func(r Register) {
		if picked == -1 {
			picked = r
		}
	})
	utils.Assert(picked != -1, "register allocator exhausted its scratch pool")
	a.free.Remove(picked)
	if v != nil {
		a.bound[v] = picked
	}
	return picked
}

// AllocateSpecific pins r for ABI use (e.g. forcing R0…R3 during argument
// marshalling, spec.md 4.F "Allocate(specificId) — pin a register for ABI
// use"). r need not come from the scratch pool.
func (a *Allocator) AllocateSpecific(r Register) Register {
	a.free.Remove(r)
	return r
}

// Free releases r back to the pool.
func (a *Allocator) Free(r Register) {
	for _, s := range a.pool {
		if s == r {
			a.free.Add(r)
			return
		}
	}
}

// FreeValue releases whatever register Allocate bound to v, if any.
func (a *Allocator) FreeValue(v *ir.Value) {
	if r, ok := a.bound[v]; ok {
		delete(a.bound, v)
		a.Free(r)
	}
}
