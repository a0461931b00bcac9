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

package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/ast"
	"github.com/minic-lang/minic/internal/config"
	"github.com/minic-lang/minic/internal/diagnostics"
	"github.com/minic-lang/minic/internal/ir"
)

func lowerText(t *testing.T, source string) (*ir.Module, *diagnostics.Sink) {
	t.Helper()
	prog, err := ast.ParseText(source)
	require.NoError(t, err)
	sink := diagnostics.NewSink()
	ctx := NewContext(config.Default(), sink)
	mod, err := ctx.LowerProgram(prog)
	require.NoError(t, err)
	return mod, sink
}

func TestLowerProgramFoldsNegativeGlobalInitializer(t *testing.T) {
	mod, sink := lowerText(t, `int x = -5; int main(){ return x; }`)
	require.False(t, sink.Failed())
	require.Len(t, mod.Globals, 1)
	require.NotNil(t, mod.Globals[0].GlobalInit)
	assert.Equal(t, int32(-5), *mod.Globals[0].GlobalInit)
}

func TestLowerProgramMultipleDeclaratorsShareOneType(t *testing.T) {
	mod, sink := lowerText(t, `int main(){ int a=10, b=3; return a+b; }`)
	require.False(t, sink.Failed())
	fn := mod.FindFunction("main")
	require.NotNil(t, fn)
	names := map[string]bool{}
	for _, l := range fn.Locals {
		names[l.Name] = true
	}
	assert.True(t, names["a"])
	assert.True(t, names["b"])
}

func TestLowerProgramEveryFunctionHasExactlyOneExit(t *testing.T) {
	mod, sink := lowerText(t, `
		int f(int n){ if(n<=1) return n; return f(n-1)+f(n-2); }
		int main(){ return f(10); }
	`)
	require.False(t, sink.Failed())
	for _, fn := range mod.Functions {
		exits := 0
		for _, inst := range fn.Code {
			if inst.Op == ir.OpExit {
				exits++
			}
		}
		assert.Equal(t, 1, exits, "function %q", fn.Name)
	}
}

func TestLowerProgramMainWithoutReturnExitsImplicitZero(t *testing.T) {
	mod, sink := lowerText(t, `int main(){ }`)
	require.False(t, sink.Failed())
	fn := mod.FindFunction("main")
	require.NotNil(t, fn)
	var exit, seed *ir.Instruction
	for _, inst := range fn.Code {
		if inst.Op == ir.OpExit {
			exit = inst
		}
		if inst.Op == ir.OpMove && seed == nil && inst.Arg(0) == fn.RetSlot {
			seed = inst
		}
	}
	require.NotNil(t, exit)
	require.NotNil(t, exit.RetValue)
	assert.Same(t, fn.RetSlot, exit.RetValue)
	require.NotNil(t, seed, "main's return slot must be seeded by a Move")
	assert.Equal(t, ir.KConstant, seed.Arg(1).Kind)
	assert.Equal(t, int32(0), seed.Arg(1).ConstVal)
}

func TestLowerProgramUndefinedVariableReportsSemanticError(t *testing.T) {
	_, sink := lowerText(t, `int main(){ return y; }`)
	assert.True(t, sink.Failed())
}

func TestLowerProgramBreakOutsideLoopReportsSemanticError(t *testing.T) {
	_, sink := lowerText(t, `int main(){ break; return 0; }`)
	assert.True(t, sink.Failed())
}

func TestLowerProgramArrayParameterBindsWithFlaggedMoveNotCopy(t *testing.T) {
	mod, sink := lowerText(t, `
		int sum(int a[], int n){ int i=0,s=0; while(i<n){ s=s+a[i]; i=i+1; } return s; }
		int main(){ int a[3]; return sum(a, 3); }
	`)
	require.False(t, sink.Failed())
	fn := mod.FindFunction("sum")
	require.NotNil(t, fn)
	require.Len(t, fn.Params, 2)
	assert.True(t, fn.Params[0].IsArray)

	var local *ir.Value
	for _, l := range fn.Locals {
		if l.Name == "a" {
			local = l
		}
	}
	require.NotNil(t, local, "spec.md 4.D binds every formal parameter, arrays included, to a LocalVariable")
	assert.True(t, local.Decayed, "the local must alias the incoming pointer, not own its own storage")

	var bind *ir.Instruction
	for _, inst := range fn.Code {
		if inst.Op == ir.OpMove && inst.ArrayCopy {
			bind = inst
		}
	}
	require.NotNil(t, bind, "array-parameter binding must be a flagged Move, not a silent alias")
	assert.Equal(t, fn.Params[0].Dims, bind.MoveDims)
}
