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
	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/types"
)

func TestScratchPoolClampsToAvailableRegisters(t *testing.T) {
	assert.Len(t, ScratchPool(0), 4)
	assert.Len(t, ScratchPool(2), 2)
	assert.Len(t, ScratchPool(99), 4)
	assert.Equal(t, []Register{R4, R5}, ScratchPool(2))
}

func TestAllocatorReusesFreedRegister(t *testing.T) {
	a := NewAllocator(1)
	r1 := a.Allocate(nil)
	assert.Equal(t, R4, r1)
	a.Free(r1)
	r2 := a.Allocate(nil)
	assert.Equal(t, R4, r2)
}

func TestAllocatorExhaustionPanics(t *testing.T) {
	a := NewAllocator(1)
	a.Allocate(nil)
	assert.Panics(t, func() { a.Allocate(nil) })
}

func TestAllocatorFreeValueReleasesBoundRegister(t *testing.T) {
	a := NewAllocator(2)
	v := &ir.Value{}
	r := a.Allocate(v)
	a.FreeValue(v)
	require.True(t, a.free.Contains(r))
}

func TestFrameReservesOneWordPerParamRegardlessOfArrayness(t *testing.T) {
	arrType := types.NewArray(types.TInt32, []int{0})
	fn := ir.NewFunction("sum", types.TInt32)
	scalar := fn.NewParam(types.TInt32, "len", 0)
	array := fn.NewParam(arrType, "arr", 1)

	NewFrame(fn)

	assert.True(t, scalar.HasMemory)
	assert.True(t, array.HasMemory)
	assert.Equal(t, scalar.MemOffset, array.MemOffset+4,
		"each parameter reserves exactly one word, including the decayed array pointer")
}
