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

package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/config"
)

func compile(t *testing.T, source string) *Result {
	t.Helper()
	cfg := config.Default()
	cfg.EmitIR = true
	result, err := New(cfg, nil).CompileText(t.Name(), source)
	require.NoError(t, err)
	return result
}

func TestCompileTextProducesIRAndAssembly(t *testing.T) {
	result := compile(t, `int main(){ return 1+2*3; }`)
	assert.False(t, result.Failed())
	assert.Contains(t, result.IR, "define int main()")
	assert.Contains(t, result.Assembly, ".global main")
	assert.Contains(t, result.Assembly, "bx lr")
}

func TestCompileTextSelectsDivRemExpansion(t *testing.T) {
	result := compile(t, `int main(){ int a=10, b=3; return a%b; }`)
	require.False(t, result.Failed())
	assert.Contains(t, result.Assembly, "sdiv")
	assert.Contains(t, result.Assembly, "mul")
}

func TestCompileTextRecursiveCallUsesArgRegistersAndBL(t *testing.T) {
	result := compile(t, `int f(int n){ if(n<=1) return n; return f(n-1)+f(n-2); } int main(){ return f(10); }`)
	require.False(t, result.Failed())
	assert.Contains(t, result.Assembly, "bl f")
	assert.Contains(t, result.Assembly, "push {fp, lr}")
}

func TestCompileTextStoresIncomingArgRegistersIntoParamSlots(t *testing.T) {
	result := compile(t, `int f(int n){ return n; } int main(){ return f(10); }`)
	require.False(t, result.Failed())
	assert.Contains(t, result.Assembly, "str r0, [fp, #-4]",
		"f's sole parameter n must be materialized from r0 before anything else reads it")
}

func TestCompileTextUndefinedFunctionIsSemanticError(t *testing.T) {
	result := compile(t, `int main(){ return nope(); }`)
	require.NotNil(t, result)
	assert.True(t, result.Failed())
}

func TestCompileTextMultiDimArrayIndexing(t *testing.T) {
	result := compile(t, `int main(){ int a[2][3]; a[1][2]=7; return a[1][2]; }`)
	require.False(t, result.Failed())
	assert.Contains(t, result.Assembly, "main:")
}

func TestCompileTextImplicitZeroReturnForMain(t *testing.T) {
	result := compile(t, `int main(){ }`)
	require.False(t, result.Failed())
	lines := strings.Split(result.IR, "\n")
	found := false
	for _, l := range lines {
		if strings.Contains(l, "exit") {
			found = true
		}
	}
	assert.True(t, found, "expected an exit instruction in:\n%s", result.IR)
}
