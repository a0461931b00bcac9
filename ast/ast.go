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

// Node is the common interface every AST node satisfies, grounded on the
// teacher's AstNode/AstExpr/AstStmt split (ast/ast.go) but flattened to plain
// Go structs per node kind rather than an inheritance chain - the lowering
// package dispatches by Go type switch instead of a virtual-method call.
type Node interface {
	NodeLine() int32
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type base struct {
	Line int32
}

func (b base) NodeLine() int32 { return b.Line }

// TypeSpec is the surface-syntax spelling of a declared type: a base keyword
// (int/void) plus zero or more array brackets. ArrayDims[0] == 0 marks an
// unknown leading extent, written as "int a[]" in a parameter list
// (spec.md 4.A "array parameter").
type TypeSpec struct {
	Base      string // "int" or "void"
	ArrayDims []int
}

func (t TypeSpec) IsArray() bool { return len(t.ArrayDims) > 0 }

// Declarator is one name in a possibly multi-name declaration statement
// ("int a = 10, b = 3;", SPEC_FULL.md 2), optionally array-shaped and
// optionally initialized.
type Declarator struct {
	Name      string
	ArrayDims []int // own brackets, e.g. "int a[2][3]"
	Init      Expr  // nil if uninitialized
	Line      int32
}

type Param struct {
	Type TypeSpec
	Name string
	Line int32
}

// Decl is a top-level declaration: a function or a global variable group.
type Decl interface {
	Node
	declNode()
}

type FuncDecl struct {
	base
	RetType TypeSpec
	Name    string
	Params  []Param
	Body    *BlockStmt
}

func (*FuncDecl) declNode() {}

type GlobalVarDecl struct {
	base
	Type        TypeSpec
	Declarators []Declarator
}

func (*GlobalVarDecl) declNode() {}

type Program struct {
	Decls []Decl
}

// ---- Expressions ----

type IntLit struct {
	base
	Val int32
}

func (*IntLit) exprNode() {}

type VarExpr struct {
	base
	Name string
}

func (*VarExpr) exprNode() {}

// IndexExpr is a (possibly partial) array index: a[i][j]. Indices holds one
// entry per bracket actually written; spec.md 4.D's "partial indexing" rule
// applies when len(Indices) is less than the declared dimension count.
type IndexExpr struct {
	base
	Array   Expr
	Indices []Expr
}

func (*IndexExpr) exprNode() {}

type UnaryExpr struct {
	base
	Op TokenKind // TK_MINUS (neg) or TK_LOGNOT (!)
	X  Expr
}

func (*UnaryExpr) exprNode() {}

type BinaryExpr struct {
	base
	Op   TokenKind
	L, R Expr
}

func (*BinaryExpr) exprNode() {}

// LogicalExpr is && / || kept distinct from BinaryExpr so the lowering
// dispatch can route it straight to the short-circuit translator (spec.md
// 4.E) without re-inspecting the operator.
type LogicalExpr struct {
	base
	Op   TokenKind // TK_LOGAND or TK_LOGOR
	L, R Expr
}

func (*LogicalExpr) exprNode() {}

type AssignExpr struct {
	base
	LHS Expr
	RHS Expr
}

func (*AssignExpr) exprNode() {}

type CallExpr struct {
	base
	Callee string
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// ---- Statements ----

type ExprStmt struct {
	base
	X Expr
}

func (*ExprStmt) stmtNode() {}

type LocalVarDecl struct {
	base
	Type        TypeSpec
	Declarators []Declarator
}

func (*LocalVarDecl) stmtNode() {}

// BlockStmt optionally suppresses its own scope entry/exit: a function body
// disables it because FuncDecl lowering has already entered a scope for
// parameters (spec.md 4.D "Block").
type BlockStmt struct {
	base
	Stmts     []Stmt
	OwnsScope bool
}

func (*BlockStmt) stmtNode() {}

type IfStmt struct {
	base
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else branch
}

func (*IfStmt) stmtNode() {}

type WhileStmt struct {
	base
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode() {}

type BreakStmt struct{ base }

func (*BreakStmt) stmtNode() {}

type ContinueStmt struct{ base }

func (*ContinueStmt) stmtNode() {}

type ReturnStmt struct {
	base
	Value Expr // nil for a bare "return;"
}

func (*ReturnStmt) stmtNode() {}
