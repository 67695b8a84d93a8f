package ast

import (
	"math/big"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
	String() string
}

// Expr is the interface for all expression nodes in the AST.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

var (
	_ Expr = (*Ident)(nil)
	_ Expr = (*IntLit)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*UnaryExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*LengthExpr)(nil)
	_ Expr = (*UpdateExpr)(nil)
	_ Expr = (*ArrayLit)(nil)
	_ Expr = (*ArrayGen)(nil)
	_ Expr = (*RecordLit)(nil)
	_ Expr = (*FieldAccess)(nil)
	_ Expr = (*CallExpr)(nil)
	_ Expr = (*IsExpr)(nil)
	_ Expr = (*QuantExpr)(nil)
)

// Ident represents a variable name.
type Ident struct {
	Range
	Name string
}

// IntLit is an arbitrary precision integer literal.
type IntLit struct {
	Range
	Value *big.Int
}

type BoolLit struct {
	Range
	Value bool
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpImplies
	OpIff
)

var binaryOpSyntax = [...]string{
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpEq:      "==",
	OpNeq:     "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpAnd:     "&&",
	OpOr:      "||",
	OpImplies: "==>",
	OpIff:     "<==>",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpSyntax) {
		return binaryOpSyntax[op]
	}
	return "?"
}

// BinaryOpFromString is the inverse of BinaryOp.String
func BinaryOpFromString(s string) (BinaryOp, bool) {
	for op, syntax := range binaryOpSyntax {
		if syntax == s {
			return BinaryOp(op), true
		}
	}
	return 0, false
}

// IsArithmetic is true for +, - and *
func (op BinaryOp) IsArithmetic() bool { return op <= OpMul }

// IsComparison is true for ==, !=, <, <=, > and >=
func (op BinaryOp) IsComparison() bool { return op >= OpEq && op <= OpGe }

// IsLogical is true for &&, ||, ==> and <==>
func (op BinaryOp) IsLogical() bool { return op >= OpAnd }

// BinaryExpr represents a binary operation (a + b, a && b, a ==> b, etc.).
type BinaryExpr struct {
	Range
	Op          BinaryOp
	Left, Right Expr
}

type UnaryOp uint8

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "!"
	}
	return "-"
}

// UnaryExpr represents a unary operation (!a, -b).
type UnaryExpr struct {
	Range
	Op      UnaryOp
	Operand Expr
}

// IndexExpr is xs[i]
type IndexExpr struct {
	Range
	Array, Index Expr
}

// LengthExpr is |xs|
type LengthExpr struct {
	Range
	Array Expr
}

// UpdateExpr is xs[i:=v]
type UpdateExpr struct {
	Range
	Array, Index, Value Expr
}

// ArrayLit is [e1, e2, ...]
type ArrayLit struct {
	Range
	Elems []Expr
}

// ArrayGen is [v; n], an array of n copies of v
type ArrayGen struct {
	Range
	Value, Length Expr
}

type FieldValue struct {
	Name  string
	Value Expr
}

// RecordLit is {f1: e1, f2: e2}
type RecordLit struct {
	Range
	Fields []FieldValue
}

// FieldAccess is r.f
type FieldAccess struct {
	Range
	Record Expr
	Field  string
}

// CallExpr invokes a function or a macro by name.
// Whether it denotes a predicate or a value depends on the declaration it resolves to.
type CallExpr struct {
	Range
	Name string
	Args []Expr
}

// IsExpr is the type test e is T
type IsExpr struct {
	Range
	Expr Expr
	Type Type
}

// Param is a typed variable binding, for quantifiers and declarations
type Param struct {
	Name string
	Type Type
}

// QuantExpr is forall(T x, ...): body or exists(T x, ...): body
type QuantExpr struct {
	Range
	Universal bool
	Params    []Param
	Body      Expr
}

func (*Ident) exprNode()       {}
func (*IntLit) exprNode()      {}
func (*BoolLit) exprNode()     {}
func (*BinaryExpr) exprNode()  {}
func (*UnaryExpr) exprNode()   {}
func (*IndexExpr) exprNode()   {}
func (*LengthExpr) exprNode()  {}
func (*UpdateExpr) exprNode()  {}
func (*ArrayLit) exprNode()    {}
func (*ArrayGen) exprNode()    {}
func (*RecordLit) exprNode()   {}
func (*FieldAccess) exprNode() {}
func (*CallExpr) exprNode()    {}
func (*IsExpr) exprNode()      {}
func (*QuantExpr) exprNode()   {}
