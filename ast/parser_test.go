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

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextTopLevelFunctionAndGlobal(t *testing.T) {
	prog, err := ParseText(`
		int counter = 0;
		int main(){ return counter; }
	`)
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)

	g, ok := prog.Decls[0].(*GlobalVarDecl)
	require.True(t, ok)
	assert.Equal(t, "int", g.Type.Base)
	assert.Equal(t, "counter", g.Declarators[0].Name)

	f, ok := prog.Decls[1].(*FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "main", f.Name)
}

func TestParseTextMultipleDeclaratorsOneStatement(t *testing.T) {
	prog, err := ParseText(`int main(){ int a=10, b=3; return a+b; }`)
	require.NoError(t, err)
	f := prog.Decls[0].(*FuncDecl)
	decl := f.Body.Stmts[0].(*LocalVarDecl)
	require.Len(t, decl.Declarators, 2)
	assert.Equal(t, "a", decl.Declarators[0].Name)
	assert.Equal(t, "b", decl.Declarators[1].Name)
}

func TestParseTextArrayParamUnknownLeadingExtent(t *testing.T) {
	prog, err := ParseText(`int sum(int a[], int n){ return n; }`)
	require.NoError(t, err)
	f := prog.Decls[0].(*FuncDecl)
	require.Len(t, f.Params, 2)
	assert.Equal(t, []int{0}, f.Params[0].Type.ArrayDims)
}

func TestParseTextMultiDimensionalArrayIndexing(t *testing.T) {
	prog, err := ParseText(`int main(){ int a[2][3]; a[1][2]=7; return a[1][2]; }`)
	require.NoError(t, err)
	f := prog.Decls[0].(*FuncDecl)
	decl := f.Body.Stmts[0].(*LocalVarDecl)
	assert.Equal(t, []int{2, 3}, decl.Declarators[0].ArrayDims)
}

func TestParseTextLogicalOperatorPrecedence(t *testing.T) {
	prog, err := ParseText(`int main(){ int a=0; if(a==0 || 1/a > 0) return 42; return 0; }`)
	require.NoError(t, err)
	f := prog.Decls[0].(*FuncDecl)
	ifStmt, ok := f.Body.Stmts[1].(*IfStmt)
	require.True(t, ok)
	or, ok := ifStmt.Cond.(*LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, TK_LOGOR, or.Op)
}

func TestParseTextRejectsSyntaxError(t *testing.T) {
	_, err := ParseText(`int main(){ return 1 }`)
	assert.Error(t, err)
}
