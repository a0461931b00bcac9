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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/types"
)

func TestSelectFunctionStoresArgRegistersForEachDeclaredParam(t *testing.T) {
	fn := ir.NewFunction("f", types.TInt32)
	p0 := fn.NewParam(types.TInt32, "a", 0)
	p1 := fn.NewParam(types.TInt32, "b", 1)
	fn.Emit(fn.NewEntry())
	fn.ExitLabel = fn.NewLabel("exit")
	add := fn.NewBinary(ir.OpAdd, p0, p1)
	fn.Emit(add)
	fn.Emit(fn.ExitLabel)
	fn.Emit(fn.NewExit(add.AsValue()))

	asm := SelectFunction(fn, 0)

	assert.Contains(t, asm, "str r0, [fp, #-4]", "first parameter must be materialized from r0")
	assert.Contains(t, asm, "str r1, [fp, #-8]", "second parameter must be materialized from r1")
}

func TestSelectFunctionDropsDeadInstruction(t *testing.T) {
	fn := ir.NewFunction("g", types.TInt32)
	fn.Emit(fn.NewEntry())
	fn.ExitLabel = fn.NewLabel("exit")
	dead := fn.NewBinary(ir.OpAdd, fn.NewParam(types.TInt32, "x", 0), fn.NewParam(types.TInt32, "y", 1))
	fn.Emit(dead) // result never consumed: no side effect, no uses
	fn.Emit(fn.ExitLabel)
	fn.Emit(fn.NewExit(nil))

	asm := SelectFunction(fn, 0)

	assert.NotContains(t, asm, "add ", "a side-effect-free instruction with no uses must not be emitted")
}
