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
	"github.com/minic-lang/minic/ast"
	"github.com/minic-lang/minic/internal/ir"
)

// lowerGlobalVarDecl implements spec.md 4.D "Declaration" at global scope:
// fold a literal (or -literal) initializer into the GlobalVariable's initial
// value; an uninitialized global is BSS (its GlobalInit stays nil).
func (c *Context) lowerGlobalVarDecl(g *ast.GlobalVarDecl) error {
	for _, d := range g.Declarators {
		t, err := resolveType(ast.TypeSpec{Base: g.Type.Base, ArrayDims: d.ArrayDims})
		if err != nil {
			return err
		}
		v := c.Module.NewVarValue(t, d.Name)
		if d.Init == nil {
			continue
		}
		n, ok := foldConstInt(d.Init)
		if !ok {
			c.Sink.Error("non-constant-initializer", int(d.Line), "global %q initializer is not a compile-time constant", d.Name)
			continue
		}
		v.GlobalInit = &n
	}
	return nil
}

// lowerFunctionBody implements spec.md 4.D "Function definition": enter
// scope, create the return slot, bind parameters, lower the body with its
// own scope entry suppressed, append the exit label and Exit.
func (c *Context) lowerFunctionBody(f *ast.FuncDecl) error {
	fn := c.Module.FindFunction(f.Name)
	c.Module.SetCurrentFunction(fn)
	defer c.Module.SetCurrentFunction(nil)
	closeScope := c.scope()
	defer closeScope()

	entry := fn.NewEntry()
	fn.Emit(entry)
	// Created now, emitted after the body, so in-body "return" statements
	// can already Goto it (spec.md 3 "Exit uniqueness").
	fn.ExitLabel = fn.NewLabel("exit")

	if !fn.ReturnType.IsVoid() {
		fn.RetSlot = c.Module.NewVarValue(fn.ReturnType, "")
		if f.Name == "main" && c.Config.ImplicitMainReturnsZero {
			// spec.md 4.C "implicit main-returns-zero": seed the slot so a
			// control path without an explicit return still exits 0.
			fn.Emit(fn.NewMove(fn.RetSlot, c.Module.NewConstInt(0)))
		}
	}

	for i, p := range f.Params {
		local := c.Module.NewVarValue(fn.Params[i].Type, p.Name)
		if fn.Params[i].Type.IsArray() {
			// Arrays decay to a pointer in argument position (spec.md 4.D
			// "Formal parameter binding"): local gets the same Decayed
			// pointer the parameter holds, never its own storage, so
			// indexing through it reads and writes the caller's array.
			local.Decayed = true
			fn.Emit(fn.NewArrayParamMove(local, fn.Params[i], fn.Params[i].Dims))
			continue
		}
		fn.Emit(fn.NewMove(local, fn.Params[i]))
	}

	bodyInstrs, err := c.lowerStmt(fn, f.Body)
	if err != nil {
		return err
	}
	fn.Emit(bodyInstrs...)

	fn.Emit(fn.ExitLabel)
	fn.Emit(fn.NewExit(fn.RetSlot))
	return nil
}

// lowerLocalVarDecl allocates a named local for each declarator in a
// possibly multi-name statement (SPEC_FULL.md 2) and wires its initializer.
func (c *Context) lowerLocalVarDecl(fn *ir.Function, d *ast.LocalVarDecl) ([]*ir.Instruction, error) {
	var out []*ir.Instruction
	for _, decl := range d.Declarators {
		t, err := resolveType(ast.TypeSpec{Base: d.Type.Base, ArrayDims: decl.ArrayDims})
		if err != nil {
			return nil, err
		}
		v := c.Module.NewVarValue(t, decl.Name)
		v.IsArray = t.IsArray()
		if decl.Init == nil {
			continue
		}
		if v.IsArray {
			c.Sink.Error("invalid-initializer", int(decl.Line), "array %q cannot have an initializer", decl.Name)
			continue
		}
		initInstrs, initVal, err := c.lowerValueExpr(fn, decl.Init)
		if err != nil {
			return nil, err
		}
		out = append(out, initInstrs...)
		out = append(out, fn.NewMove(v, initVal))
	}
	return out, nil
}
