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

// Package lower implements spec.md 4.D and 4.E: translating MiniC's AST into
// the linear IR. It is grounded on compile/codegen/lower_x86.go's dispatch
// shape (one method per AST/SSA node kind) but lowers directly into
// ir.Function.Code instead of building SSA blocks, and threads an explicit
// Context (module, current function, loop-label stack) instead of the
// teacher's package-level "current function" state - design note "global
// mutable singleton for current function" replaced by an owned struct.
package lower

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/minic-lang/minic/ast"
	"github.com/minic-lang/minic/internal/config"
	"github.com/minic-lang/minic/internal/diagnostics"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/types"
)

type Context struct {
	Module *ir.Module
	Sink   *diagnostics.Sink
	Config config.Config

	labelSeq int
}

func NewContext(cfg config.Config, sink *diagnostics.Sink) *Context {
	return &Context{Module: ir.NewModule(), Sink: sink, Config: cfg}
}

func (c *Context) freshLabel(fn *ir.Function, prefix string) *ir.Instruction {
	c.labelSeq++
	return fn.NewLabel(fmt.Sprintf("%s%d", prefix, c.labelSeq))
}

// scope opens a module scope and returns a closer, matching design note
// "scoped resource acquisition for scopes": callers write
// `defer c.scope()()` so the scope is always popped, even on an early
// return triggered by a semantic error.
func (c *Context) scope() func() {
	c.Module.EnterScope()
	return c.Module.LeaveScope
}

// resolveType maps a surface TypeSpec to the IR's interned Type (spec.md
// 4.A). A leading zero dimension is preserved verbatim: it marks an
// unknown-extent array parameter, not an error.
func resolveType(ts ast.TypeSpec) (*types.Type, error) {
	var base *types.Type
	switch ts.Base {
	case "int":
		base = types.TInt32
	case "void":
		base = types.TVoid
	default:
		return nil, errors.Errorf("unknown type %q", ts.Base)
	}
	if len(ts.ArrayDims) == 0 {
		return base, nil
	}
	if base.IsVoid() {
		return nil, errors.New("array of void is not permitted")
	}
	return types.NewArray(base, ts.ArrayDims), nil
}

// LowerProgram translates a parsed MiniC program into an ir.Module. It
// proceeds in three passes so forward references (a global used before its
// textual declaration, a function calling one declared later, mutual
// recursion) all resolve: globals first, then every function signature
// (so call sites can see arity/type before any body is lowered), then every
// function body.
func (c *Context) LowerProgram(prog *ast.Program) (*ir.Module, error) {
	for _, d := range prog.Decls {
		if g, ok := d.(*ast.GlobalVarDecl); ok {
			if err := c.lowerGlobalVarDecl(g); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range prog.Decls {
		if f, ok := d.(*ast.FuncDecl); ok {
			if err := c.declareFunctionSignature(f); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range prog.Decls {
		if f, ok := d.(*ast.FuncDecl); ok {
			if err := c.lowerFunctionBody(f); err != nil {
				return nil, err
			}
		}
	}
	return c.Module, nil
}

func (c *Context) declareFunctionSignature(f *ast.FuncDecl) error {
	retType, err := resolveType(f.RetType)
	if err != nil {
		return diagnostics.Wrap(err, "function "+f.Name)
	}
	fn, err := c.Module.NewFunction(f.Name, retType)
	if err != nil {
		return diagnostics.Wrap(err, "function "+f.Name)
	}
	for i, p := range f.Params {
		pt, err := resolveType(p.Type)
		if err != nil {
			return diagnostics.Wrap(err, "function "+f.Name)
		}
		fn.NewParam(pt, p.Name, i)
	}
	return nil
}

// foldConstInt evaluates a restricted constant-expression grammar used for
// global initializers: integer literals and unary minus of a literal
// (SPEC_FULL.md 2, "constant folding of unary minus"). Anything richer is a
// semantic error - globals may only be initialized from a compile-time
// constant.
func foldConstInt(e ast.Expr) (int32, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		return n.Val, true
	case *ast.UnaryExpr:
		if n.Op == ast.TK_MINUS {
			if v, ok := foldConstInt(n.X); ok {
				return -v, true
			}
		}
	}
	return 0, false
}
