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
	"github.com/minic-lang/minic/internal/types"
)

// lowerCondition is visit_with_labels from spec.md 4.E: it threads inherited
// true/false labels through the AST instead of materializing a 0/1 value,
// which is what makes && and || short-circuit (spec.md 8, invariant 4).
func (c *Context) lowerCondition(fn *ir.Function, e ast.Expr, trueLbl, falseLbl *ir.Instruction) ([]*ir.Instruction, error) {
	switch n := e.(type) {
	case *ast.LogicalExpr:
		if n.Op == ast.TK_LOGAND {
			mid := c.freshLabel(fn, "L")
			left, err := c.lowerCondition(fn, n.L, mid, falseLbl)
			if err != nil {
				return nil, err
			}
			right, err := c.lowerCondition(fn, n.R, trueLbl, falseLbl)
			if err != nil {
				return nil, err
			}
			out := append(left, mid)
			return append(out, right...), nil
		}
		// TK_LOGOR
		mid := c.freshLabel(fn, "L")
		left, err := c.lowerCondition(fn, n.L, trueLbl, mid)
		if err != nil {
			return nil, err
		}
		right, err := c.lowerCondition(fn, n.R, trueLbl, falseLbl)
		if err != nil {
			return nil, err
		}
		out := append(left, mid)
		return append(out, right...), nil

	case *ast.UnaryExpr:
		if n.Op == ast.TK_LOGNOT {
			return c.lowerCondition(fn, n.X, falseLbl, trueLbl)
		}

	case *ast.BinaryExpr:
		if op, ok := relOps[n.Op]; ok {
			lInstrs, lVal, err := c.lowerValueExpr(fn, n.L)
			if err != nil {
				return nil, err
			}
			rInstrs, rVal, err := c.lowerValueExpr(fn, n.R)
			if err != nil {
				return nil, err
			}
			cmp := fn.NewBinary(op, lVal, rVal)
			bc := fn.NewCondGoto(cmp.AsValue(), trueLbl, falseLbl)
			out := append(lInstrs, rInstrs...)
			out = append(out, cmp)
			return append(out, bc), nil
		}
	}

	// Fallback: lower as a plain value and rewrite into "v != 0".
	instrs, v, err := c.lowerValueExpr(fn, e)
	if err != nil {
		return nil, err
	}
	cmp := fn.NewBinary(ir.OpCmpNe, v, c.Module.NewConstInt(0))
	bc := fn.NewCondGoto(cmp.AsValue(), trueLbl, falseLbl)
	instrs = append(instrs, cmp, bc)
	return instrs, nil
}

// lowerBooleanValue materializes a boolean-shaped expression into a 0/1
// integer when it is used as a value rather than a branch condition
// (spec.md 4.E).
func (c *Context) lowerBooleanValue(fn *ir.Function, e ast.Expr) ([]*ir.Instruction, *ir.Value, error) {
	trueLbl := c.freshLabel(fn, "Ltrue")
	falseLbl := c.freshLabel(fn, "Lfalse")
	endLbl := c.freshLabel(fn, "Lend")

	cond, err := c.lowerCondition(fn, e, trueLbl, falseLbl)
	if err != nil {
		return nil, nil, err
	}

	result := c.Module.NewVarValue(types.TInt32, "")
	var out []*ir.Instruction
	out = append(out, cond...)
	out = append(out, trueLbl)
	out = append(out, fn.NewMove(result, c.Module.NewConstInt(1)))
	out = append(out, fn.NewGoto(endLbl))
	out = append(out, falseLbl)
	out = append(out, fn.NewMove(result, c.Module.NewConstInt(0)))
	out = append(out, endLbl)
	return out, result, nil
}
