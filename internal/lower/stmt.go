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
	"github.com/pkg/errors"

	"github.com/minic-lang/minic/ast"
	"github.com/minic-lang/minic/internal/ir"
)

// lowerStmt dispatches on AST statement kind to a handler, per spec.md 4.D:
// an exhaustive Go type switch rather than a visitor map of handler pointers
// (design note "AST visitor as a map of handler pointers").
func (c *Context) lowerStmt(fn *ir.Function, s ast.Stmt) ([]*ir.Instruction, error) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return c.lowerBlock(fn, n)
	case *ast.LocalVarDecl:
		return c.lowerLocalVarDecl(fn, n)
	case *ast.ExprStmt:
		instrs, _, err := c.lowerValueExpr(fn, n.X)
		return instrs, err
	case *ast.IfStmt:
		return c.lowerIf(fn, n)
	case *ast.WhileStmt:
		return c.lowerWhile(fn, n)
	case *ast.BreakStmt:
		return c.lowerBreak(fn, n)
	case *ast.ContinueStmt:
		return c.lowerContinue(fn, n)
	case *ast.ReturnStmt:
		return c.lowerReturn(fn, n)
	default:
		return nil, errors.Errorf("line %d: cannot lower statement of type %T", s.NodeLine(), s)
	}
}

// lowerBlock optionally enters/leaves a scope, controlled by the node's
// OwnsScope flag - a function body disables it since lowerFunctionBody has
// already entered scope for parameters (spec.md 4.D "Block").
func (c *Context) lowerBlock(fn *ir.Function, b *ast.BlockStmt) ([]*ir.Instruction, error) {
	if b.OwnsScope {
		defer c.scope()()
	}
	var out []*ir.Instruction
	for _, s := range b.Stmts {
		instrs, err := c.lowerStmt(fn, s)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

// lowerIf implements spec.md 4.E: allocate thenLabel, optional elseLabel,
// endLabel; lower the condition with (thenLabel, elseLabel-or-endLabel).
func (c *Context) lowerIf(fn *ir.Function, n *ast.IfStmt) ([]*ir.Instruction, error) {
	thenLbl := c.freshLabel(fn, "Lthen")
	endLbl := c.freshLabel(fn, "Lend")
	elseLbl := endLbl
	if n.Else != nil {
		elseLbl = c.freshLabel(fn, "Lelse")
	}

	cond, err := c.lowerCondition(fn, n.Cond, thenLbl, elseLbl)
	if err != nil {
		return nil, err
	}
	thenBody, err := c.lowerStmt(fn, n.Then)
	if err != nil {
		return nil, err
	}

	out := append(cond, thenLbl)
	out = append(out, thenBody...)

	if n.Else != nil {
		elseBody, err := c.lowerStmt(fn, n.Else)
		if err != nil {
			return nil, err
		}
		out = append(out, fn.NewGoto(endLbl), elseLbl)
		out = append(out, elseBody...)
	}
	out = append(out, endLbl)
	return out, nil
}

// lowerWhile implements spec.md 4.E: entryLabel/bodyLabel/exitLabel, with
// (exitLabel, entryLabel) pushed as the break/continue targets for the
// duration of the body.
func (c *Context) lowerWhile(fn *ir.Function, n *ast.WhileStmt) ([]*ir.Instruction, error) {
	entryLbl := c.freshLabel(fn, "Lwhile")
	bodyLbl := c.freshLabel(fn, "Lbody")
	exitLbl := c.freshLabel(fn, "Lexit")

	cond, err := c.lowerCondition(fn, n.Cond, bodyLbl, exitLbl)
	if err != nil {
		return nil, err
	}

	fn.PushLoopLabels(exitLbl, entryLbl)
	body, err := c.lowerStmt(fn, n.Body)
	fn.PopLoopLabels()
	if err != nil {
		return nil, err
	}

	out := []*ir.Instruction{entryLbl}
	out = append(out, cond...)
	out = append(out, bodyLbl)
	out = append(out, body...)
	out = append(out, fn.NewGoto(entryLbl), exitLbl)
	return out, nil
}

func (c *Context) lowerBreak(fn *ir.Function, n *ast.BreakStmt) ([]*ir.Instruction, error) {
	target, ok := fn.BreakTarget()
	if !ok {
		c.Sink.Error("break-outside-loop", int(n.Line), "break used outside a loop")
		return nil, nil
	}
	return []*ir.Instruction{fn.NewGoto(target)}, nil
}

func (c *Context) lowerContinue(fn *ir.Function, n *ast.ContinueStmt) ([]*ir.Instruction, error) {
	target, ok := fn.ContinueTarget()
	if !ok {
		c.Sink.Error("continue-outside-loop", int(n.Line), "continue used outside a loop")
		return nil, nil
	}
	return []*ir.Instruction{fn.NewGoto(target)}, nil
}

// lowerReturn implements spec.md 4.D "Return": with an expression, append
// its instructions then Move(retSlot, value); Goto(exitLabel). Without one,
// just Goto(exitLabel) - valid only for void, checked as a warning so
// lowering still proceeds.
func (c *Context) lowerReturn(fn *ir.Function, n *ast.ReturnStmt) ([]*ir.Instruction, error) {
	if n.Value == nil {
		if !fn.ReturnType.IsVoid() {
			c.Sink.Warn("return-type-mismatch", int(n.Line), "missing return value in non-void function %q", fn.Name)
		}
		return []*ir.Instruction{fn.NewGoto(fn.ExitLabel)}, nil
	}
	if fn.ReturnType.IsVoid() {
		c.Sink.Warn("return-type-mismatch", int(n.Line), "value returned from void function %q", fn.Name)
	}
	instrs, v, err := c.lowerValueExpr(fn, n.Value)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, fn.NewMove(fn.RetSlot, v))
	instrs = append(instrs, fn.NewGoto(fn.ExitLabel))
	return instrs, nil
}
