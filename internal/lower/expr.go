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
	"github.com/minic-lang/minic/internal/types"
)

var binaryOps = map[ast.TokenKind]ir.Op{
	ast.TK_PLUS: ir.OpAdd, ast.TK_MINUS: ir.OpSub, ast.TK_TIMES: ir.OpMul,
	ast.TK_DIV: ir.OpDiv, ast.TK_MOD: ir.OpMod,
}

var relOps = map[ast.TokenKind]ir.Op{
	ast.TK_EQ: ir.OpCmpEq, ast.TK_NE: ir.OpCmpNe, ast.TK_LT: ir.OpCmpLt,
	ast.TK_LE: ir.OpCmpLe, ast.TK_GT: ir.OpCmpGt, ast.TK_GE: ir.OpCmpGe,
}

// isBooleanNode reports whether e must be lowered through the short-circuit
// translator even in value context (spec.md 4.E, "When a boolean expression
// must yield a value").
func isBooleanNode(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.LogicalExpr:
		return true
	case *ast.UnaryExpr:
		return n.Op == ast.TK_LOGNOT
	case *ast.BinaryExpr:
		_, ok := relOps[n.Op]
		return ok
	}
	return false
}

// lowerValueExpr lowers e to a value-producing instruction sequence,
// dispatching boolean-shaped nodes through the short-circuit translator's
// value-mode synthesis (spec.md 4.D, 4.E).
func (c *Context) lowerValueExpr(fn *ir.Function, e ast.Expr) ([]*ir.Instruction, *ir.Value, error) {
	if isBooleanNode(e) {
		return c.lowerBooleanValue(fn, e)
	}
	switch n := e.(type) {
	case *ast.IntLit:
		return nil, c.Module.NewConstInt(n.Val), nil

	case *ast.VarExpr:
		v := c.Module.FindVarValue(n.Name)
		if v == nil {
			c.Sink.Error("undefined-variable", int(n.Line), "undefined variable %q", n.Name)
			return nil, c.Module.NewConstInt(0), nil
		}
		return nil, v, nil

	case *ast.UnaryExpr: // TK_MINUS only; TK_LOGNOT is a boolean node handled above
		instrs, x, err := c.lowerValueExpr(fn, n.X)
		if err != nil {
			return nil, nil, err
		}
		neg := fn.NewUnary(ir.OpNeg, x)
		return append(instrs, neg), neg.AsValue(), nil

	case *ast.BinaryExpr: // arithmetic only; relational is a boolean node handled above
		return c.lowerArithmetic(fn, n)

	case *ast.AssignExpr:
		return c.lowerAssign(fn, n)

	case *ast.CallExpr:
		return c.lowerCall(fn, n)

	case *ast.IndexExpr:
		instrs, ptr, _, full, err := c.lowerIndex(fn, n)
		if err != nil {
			return nil, nil, err
		}
		if !full {
			c.Sink.Warn("partial-index-value", int(n.Line), "partially indexed array used as a scalar value")
		}
		deref := fn.NewUnary(ir.OpDeref, ptr)
		return append(instrs, deref), deref.AsValue(), nil

	default:
		return nil, nil, errors.Errorf("line %d: cannot lower expression of type %T as a value", e.NodeLine(), e)
	}
}

func (c *Context) lowerArithmetic(fn *ir.Function, n *ast.BinaryExpr) ([]*ir.Instruction, *ir.Value, error) {
	op, ok := binaryOps[n.Op]
	if !ok {
		return nil, nil, errors.Errorf("line %d: unsupported binary operator", n.Line)
	}
	lInstrs, lVal, err := c.lowerValueExpr(fn, n.L)
	if err != nil {
		return nil, nil, err
	}
	rInstrs, rVal, err := c.lowerValueExpr(fn, n.R)
	if err != nil {
		return nil, nil, err
	}
	if lVal.Type != types.TInt32 || rVal.Type != types.TInt32 {
		c.Sink.Warn("type-mismatch", int(n.Line), "arithmetic operands must both be int")
	}
	bin := fn.NewBinary(op, lVal, rVal)
	out := append(lInstrs, rInstrs...)
	return append(out, bin), bin.AsValue(), nil
}

// lowerAssign implements spec.md 4.D "Assignment": rhs lowers first, then
// lhs; lhs may be a plain name (writes the named Value directly) or an array
// access (writes through the computed address).
func (c *Context) lowerAssign(fn *ir.Function, n *ast.AssignExpr) ([]*ir.Instruction, *ir.Value, error) {
	rInstrs, rVal, err := c.lowerValueExpr(fn, n.RHS)
	if err != nil {
		return nil, nil, err
	}
	switch lhs := n.LHS.(type) {
	case *ast.VarExpr:
		v := c.Module.FindVarValue(lhs.Name)
		if v == nil {
			c.Sink.Error("undefined-variable", int(lhs.Line), "undefined variable %q", lhs.Name)
			return rInstrs, rVal, nil
		}
		mv := fn.NewMove(v, rVal)
		return append(rInstrs, mv), rVal, nil

	case *ast.IndexExpr:
		lInstrs, ptr, _, full, err := c.lowerIndex(fn, lhs)
		if err != nil {
			return nil, nil, err
		}
		if !full {
			c.Sink.Error("partial-index-assign", int(lhs.Line), "cannot assign through a partially indexed array")
		}
		out := append(rInstrs, lInstrs...)
		mv := fn.NewMove(ptr, rVal)
		return append(out, mv), rVal, nil

	default:
		return nil, nil, errors.Errorf("line %d: invalid assignment target", n.Line)
	}
}

// lowerIndex implements spec.md 4.D "Array access": row-major linearization
// of the declared dimensions, yielding a Pointer(element) value. full
// reports whether every declared dimension was indexed (k == n); a caller in
// call-argument position uses full == false to decide whether to propagate
// the address (partial indexing) or otherwise fall through to a scalar
// deref.
func (c *Context) lowerIndex(fn *ir.Function, ix *ast.IndexExpr) (instrs []*ir.Instruction, ptr *ir.Value, remainingDims []int, full bool, err error) {
	varExpr, ok := ix.Array.(*ast.VarExpr)
	if !ok {
		return nil, nil, nil, false, errors.Errorf("line %d: array expression must be a variable", ix.Line)
	}
	base := c.Module.FindVarValue(varExpr.Name)
	if base == nil {
		c.Sink.Error("undefined-variable", int(ix.Line), "undefined variable %q", varExpr.Name)
		return nil, c.Module.NewConstInt(0), nil, true, nil
	}
	if !base.Type.IsArray() {
		c.Sink.Error("not-an-array", int(ix.Line), "%q is not an array", varExpr.Name)
		return nil, base, nil, true, nil
	}
	arr := base.Type
	n := arr.NumDimensions()
	k := len(ix.Indices)
	if k > n {
		c.Sink.Error("arity-mismatch", int(ix.Line), "%q has %d dimensions, %d indices given", varExpr.Name, n, k)
		k = n
	}

	elemPtrType := types.NewPointer(arr.ElementType())
	cur := base
	for j := 0; j < k; j++ {
		idxInstrs, idxVal, err := c.lowerValueExpr(fn, ix.Indices[j])
		if err != nil {
			return nil, nil, nil, false, err
		}
		instrs = append(instrs, idxInstrs...)
		coeff := int32(arr.DimensionMultiplier(j) * 4)
		term := fn.NewBinary(ir.OpMul, idxVal, c.Module.NewConstInt(coeff))
		instrs = append(instrs, term)
		add := fn.NewBinary(ir.OpAdd, cur, term.AsValue())
		add.Type = elemPtrType
		instrs = append(instrs, add)
		cur = add.AsValue()
	}
	return instrs, cur, arr.Dims[k:], k == n, nil
}

// dimsMatch reports whether a partially-indexed argument's remaining shape
// matches the callee's declared parameter shape (spec.md 4.D "propagate
// remaining dimensions"). Dimension 0 (the leading extent, always unknown
// per the language's "int a[]" spelling) carries no layout information and
// is never compared; every inner dimension must agree exactly since it
// determines the callee's own element-offset arithmetic.
func dimsMatch(argDims, paramDims []int) bool {
	if len(argDims) != len(paramDims) {
		return false
	}
	for i := 1; i < len(argDims); i++ {
		if argDims[i] != paramDims[i] {
			return false
		}
	}
	return true
}

func (c *Context) lowerCall(fn *ir.Function, n *ast.CallExpr) ([]*ir.Instruction, *ir.Value, error) {
	callee := c.Module.FindFunction(n.Callee)
	if callee == nil {
		c.Sink.Error("undefined-function", int(n.Line), "undefined function %q", n.Callee)
		return nil, c.Module.NewConstInt(0), nil
	}
	if len(n.Args) != len(callee.Params) {
		c.Sink.Error("arity-mismatch", int(n.Line), "%q expects %d arguments, %d given", n.Callee, len(callee.Params), len(n.Args))
	}
	var instrs []*ir.Instruction
	var args []*ir.Value
	for i, a := range n.Args {
		if ix, ok := a.(*ast.IndexExpr); ok {
			idxInstrs, ptr, dims, full, err := c.lowerIndex(fn, ix)
			if err != nil {
				return nil, nil, err
			}
			if !full {
				instrs = append(instrs, idxInstrs...)
				if i < len(callee.Params) && callee.Params[i].IsArray && !dimsMatch(dims, callee.Params[i].Dims) {
					c.Sink.Error("shape-mismatch", int(ix.Line),
						"argument %d to %q has remaining shape %v, callee expects %v", i, n.Callee, dims, callee.Params[i].Dims)
				}
				args = append(args, ptr)
				continue
			}
		}
		argInstrs, argVal, err := c.lowerValueExpr(fn, a)
		if err != nil {
			return nil, nil, err
		}
		instrs = append(instrs, argInstrs...)
		args = append(args, argVal)
		if i < len(callee.Params) && callee.Params[i].IsArray && !argVal.Type.IsPointer() && !argVal.Type.IsArray() {
			c.Sink.Warn("type-mismatch", int(a.NodeLine()), "argument %d to %q should be an array", i, n.Callee)
		}
	}
	call := fn.NewCall(callee, args, callee.ReturnType)
	return append(instrs, call), call.AsValue(), nil
}
