package ast

import (
	"strings"
)

func ExprString(expr Expr) string {
	ctx := newShowContext()
	ctx.showExprWalker(expr, 0)
	return ctx.String()
}

func TypeString(t Type) string {
	ctx := newShowContext()
	ctx.showType(t)
	return ctx.String()
}

type showContext struct {
	*strings.Builder
}

func newShowContext() *showContext {
	return &showContext{Builder: &strings.Builder{}}
}

// precedence of binary operators, higher binds tighter
func precedence(op BinaryOp) int16 {
	switch op {
	case OpIff:
		return 1
	case OpImplies:
		return 2
	case OpOr:
		return 3
	case OpAnd:
		return 4
	case OpEq, OpNeq, OpLt, OpLe, OpGt, OpGe:
		return 5
	case OpAdd, OpSub:
		return 6
	default:
		return 7
	}
}

const unaryPrecedence int16 = 8

func (ctx *showContext) showExprWalker(expr Expr, outerPrecedence int16) {
	if expr == nil {
		ctx.WriteString("nil")
		return
	}
	switch expr := expr.(type) {
	case *Ident:
		ctx.WriteString(expr.Name)
	case *IntLit:
		ctx.WriteString(expr.Value.String())
	case *BoolLit:
		if expr.Value {
			ctx.WriteString("true")
		} else {
			ctx.WriteString("false")
		}
	case *BinaryExpr:
		prec := precedence(expr.Op)
		if prec < outerPrecedence {
			ctx.WriteString("(")
		}
		ctx.showExprWalker(expr.Left, prec)
		ctx.WriteString(" " + expr.Op.String() + " ")
		ctx.showExprWalker(expr.Right, prec+1)
		if prec < outerPrecedence {
			ctx.WriteString(")")
		}
	case *UnaryExpr:
		ctx.WriteString(expr.Op.String())
		ctx.showExprWalker(expr.Operand, unaryPrecedence)
	case *IndexExpr:
		ctx.showExprWalker(expr.Array, unaryPrecedence)
		ctx.WriteString("[")
		ctx.showExprWalker(expr.Index, 0)
		ctx.WriteString("]")
	case *LengthExpr:
		ctx.WriteString("|")
		ctx.showExprWalker(expr.Array, 0)
		ctx.WriteString("|")
	case *UpdateExpr:
		ctx.showExprWalker(expr.Array, unaryPrecedence)
		ctx.WriteString("[")
		ctx.showExprWalker(expr.Index, 0)
		ctx.WriteString(":=")
		ctx.showExprWalker(expr.Value, 0)
		ctx.WriteString("]")
	case *ArrayLit:
		ctx.WriteString("[")
		for i, e := range expr.Elems {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.showExprWalker(e, 0)
		}
		ctx.WriteString("]")
	case *ArrayGen:
		ctx.WriteString("[")
		ctx.showExprWalker(expr.Value, 0)
		ctx.WriteString("; ")
		ctx.showExprWalker(expr.Length, 0)
		ctx.WriteString("]")
	case *RecordLit:
		ctx.WriteString("{")
		for i, f := range expr.Fields {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.WriteString(f.Name + ": ")
			ctx.showExprWalker(f.Value, 0)
		}
		ctx.WriteString("}")
	case *FieldAccess:
		ctx.showExprWalker(expr.Record, unaryPrecedence)
		ctx.WriteString("." + expr.Field)
	case *CallExpr:
		ctx.WriteString(expr.Name + "(")
		for i, arg := range expr.Args {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.showExprWalker(arg, 0)
		}
		ctx.WriteString(")")
	case *IsExpr:
		if outerPrecedence > 5 {
			ctx.WriteString("(")
		}
		ctx.showExprWalker(expr.Expr, 6)
		ctx.WriteString(" is ")
		ctx.showType(expr.Type)
		if outerPrecedence > 5 {
			ctx.WriteString(")")
		}
	case *QuantExpr:
		if outerPrecedence > 0 {
			ctx.WriteString("(")
		}
		if expr.Universal {
			ctx.WriteString("forall(")
		} else {
			ctx.WriteString("exists(")
		}
		ctx.showParams(expr.Params)
		ctx.WriteString("): ")
		ctx.showExprWalker(expr.Body, 0)
		if outerPrecedence > 0 {
			ctx.WriteString(")")
		}
	default:
		panic("ast: unexpected expression in ExprString")
	}
}

func (ctx *showContext) showParams(params []Param) {
	for i, p := range params {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.showType(p.Type)
		ctx.WriteString(" " + p.Name)
	}
}

func (ctx *showContext) showType(t Type) {
	switch t := t.(type) {
	case nil:
		ctx.WriteString("nil")
	case *Primitive:
		ctx.WriteString(t.Kind.String())
	case *ArrayType:
		ctx.showType(t.Elem)
		ctx.WriteString("[]")
	case *RecordType:
		ctx.WriteString("{")
		for i, f := range t.Fields {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.showType(f.Type)
			ctx.WriteString(" " + f.Name)
		}
		ctx.WriteString("}")
	case *NominalType:
		ctx.WriteString(t.Name)
	case *UnionType:
		ctx.showTypes(t.Options, "|")
	case *IntersectionType:
		ctx.showTypes(t.Options, "&")
	case *NegationType:
		ctx.WriteString("!")
		ctx.showType(t.Negated)
	default:
		panic("ast: unexpected type in TypeString")
	}
}

func (ctx *showContext) showTypes(options []Type, sep string) {
	ctx.WriteString("(")
	for i, o := range options {
		if i > 0 {
			ctx.WriteString(sep)
		}
		ctx.showType(o)
	}
	ctx.WriteString(")")
}

func (e *Ident) String() string       { return ExprString(e) }
func (e *IntLit) String() string      { return ExprString(e) }
func (e *BoolLit) String() string     { return ExprString(e) }
func (e *BinaryExpr) String() string  { return ExprString(e) }
func (e *UnaryExpr) String() string   { return ExprString(e) }
func (e *IndexExpr) String() string   { return ExprString(e) }
func (e *LengthExpr) String() string  { return ExprString(e) }
func (e *UpdateExpr) String() string  { return ExprString(e) }
func (e *ArrayLit) String() string    { return ExprString(e) }
func (e *ArrayGen) String() string    { return ExprString(e) }
func (e *RecordLit) String() string   { return ExprString(e) }
func (e *FieldAccess) String() string { return ExprString(e) }
func (e *CallExpr) String() string    { return ExprString(e) }
func (e *IsExpr) String() string      { return ExprString(e) }
func (e *QuantExpr) String() string   { return ExprString(e) }

func (t *Primitive) String() string        { return TypeString(t) }
func (t *ArrayType) String() string        { return TypeString(t) }
func (t *RecordType) String() string       { return TypeString(t) }
func (t *NominalType) String() string      { return TypeString(t) }
func (t *UnionType) String() string        { return TypeString(t) }
func (t *IntersectionType) String() string { return TypeString(t) }
func (t *NegationType) String() string     { return TypeString(t) }

func (d *TypeDecl) String() string {
	sb := &strings.Builder{}
	sb.WriteString("type " + d.Name + " is (" + TypeString(d.Var.Type) + " " + d.Var.Name + ")")
	for i, inv := range d.Invariant {
		if i == 0 {
			sb.WriteString(" where ")
		} else {
			sb.WriteString(" && ")
		}
		sb.WriteString(ExprString(inv))
	}
	return sb.String()
}

func (d *FunctionDecl) String() string {
	ctx := newShowContext()
	ctx.WriteString("function " + d.Name + "(")
	ctx.showParams(d.Params)
	ctx.WriteString(") -> (")
	ctx.showParams(d.Returns)
	ctx.WriteString(")")
	for _, r := range d.Requires {
		ctx.WriteString(" requires ")
		ctx.showExprWalker(r, 0)
	}
	for _, e := range d.Ensures {
		ctx.WriteString(" ensures ")
		ctx.showExprWalker(e, 0)
	}
	return ctx.String()
}

func (d *MacroDecl) String() string {
	ctx := newShowContext()
	ctx.WriteString("define " + d.Name + "(")
	ctx.showParams(d.Params)
	ctx.WriteString(") is ")
	ctx.showExprWalker(d.Body, 0)
	return ctx.String()
}

func (a *Assertion) String() string {
	return "assert " + a.Name + ": " + ExprString(a.Body)
}
