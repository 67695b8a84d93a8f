// Package construct has terse constructors for AST nodes, mostly for tests
// and for building declarations programmatically.
package construct

import (
	"math/big"

	"github.com/cottand/assay/frontend/ast"
)

// Types

func TInt() ast.Type  { return ast.IntType }
func TBool() ast.Type { return ast.BoolType }
func TAny() ast.Type  { return ast.AnyType }
func TVoid() ast.Type { return ast.VoidType }
func TNull() ast.Type { return ast.NullType }

// Array type: `T[]`
func TArray(elem ast.Type) ast.Type { return &ast.ArrayType{Elem: elem} }

// Nominal type reference: `nat`
func TNamed(name string) ast.Type { return &ast.NominalType{Name: name} }

// Union type: `int|null`
func TUnion(options ...ast.Type) ast.Type { return &ast.UnionType{Options: options} }

func TIntersection(options ...ast.Type) ast.Type {
	return &ast.IntersectionType{Options: options}
}

func TNot(t ast.Type) ast.Type { return &ast.NegationType{Negated: t} }

// Record type, from alternating field names and types: TRecord("x", TInt(), "y", TInt())
func TRecord(namesAndTypes ...any) ast.Type {
	rec := &ast.RecordType{}
	for i := 0; i+1 < len(namesAndTypes); i += 2 {
		rec.Fields = append(rec.Fields, ast.FieldType{
			Name: namesAndTypes[i].(string),
			Type: namesAndTypes[i+1].(ast.Type),
		})
	}
	return rec
}

// Expressions

func Var(name string) *ast.Ident { return &ast.Ident{Name: name} }

func Int(v int64) *ast.IntLit { return &ast.IntLit{Value: big.NewInt(v)} }

func Bool(v bool) *ast.BoolLit { return &ast.BoolLit{Value: v} }

func Bin(op ast.BinaryOp, l, r ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, Left: l, Right: r}
}

func Add(l, r ast.Expr) ast.Expr { return Bin(ast.OpAdd, l, r) }
func Sub(l, r ast.Expr) ast.Expr { return Bin(ast.OpSub, l, r) }
func Mul(l, r ast.Expr) ast.Expr { return Bin(ast.OpMul, l, r) }

func Eq(l, r ast.Expr) ast.Expr  { return Bin(ast.OpEq, l, r) }
func Neq(l, r ast.Expr) ast.Expr { return Bin(ast.OpNeq, l, r) }
func Lt(l, r ast.Expr) ast.Expr  { return Bin(ast.OpLt, l, r) }
func Le(l, r ast.Expr) ast.Expr  { return Bin(ast.OpLe, l, r) }
func Gt(l, r ast.Expr) ast.Expr  { return Bin(ast.OpGt, l, r) }
func Ge(l, r ast.Expr) ast.Expr  { return Bin(ast.OpGe, l, r) }

func And(l, r ast.Expr) ast.Expr     { return Bin(ast.OpAnd, l, r) }
func Or(l, r ast.Expr) ast.Expr      { return Bin(ast.OpOr, l, r) }
func Implies(l, r ast.Expr) ast.Expr { return Bin(ast.OpImplies, l, r) }
func Iff(l, r ast.Expr) ast.Expr     { return Bin(ast.OpIff, l, r) }

func Not(e ast.Expr) ast.Expr { return &ast.UnaryExpr{Op: ast.OpNot, Operand: e} }
func Neg(e ast.Expr) ast.Expr { return &ast.UnaryExpr{Op: ast.OpNeg, Operand: e} }

func Index(arr, idx ast.Expr) ast.Expr { return &ast.IndexExpr{Array: arr, Index: idx} }
func Len(arr ast.Expr) ast.Expr        { return &ast.LengthExpr{Array: arr} }

func Update(arr, idx, val ast.Expr) ast.Expr {
	return &ast.UpdateExpr{Array: arr, Index: idx, Value: val}
}

func Array(elems ...ast.Expr) ast.Expr { return &ast.ArrayLit{Elems: elems} }

func ArrayGen(val, length ast.Expr) ast.Expr { return &ast.ArrayGen{Value: val, Length: length} }

// Record literal, from alternating field names and values: Record("x", Int(1))
func Record(namesAndValues ...any) ast.Expr {
	rec := &ast.RecordLit{}
	for i := 0; i+1 < len(namesAndValues); i += 2 {
		rec.Fields = append(rec.Fields, ast.FieldValue{
			Name:  namesAndValues[i].(string),
			Value: namesAndValues[i+1].(ast.Expr),
		})
	}
	return rec
}

func Field(rec ast.Expr, name string) ast.Expr { return &ast.FieldAccess{Record: rec, Field: name} }

func Call(name string, args ...ast.Expr) ast.Expr { return &ast.CallExpr{Name: name, Args: args} }

func Is(e ast.Expr, t ast.Type) ast.Expr { return &ast.IsExpr{Expr: e, Type: t} }

func P(name string, t ast.Type) ast.Param { return ast.Param{Name: name, Type: t} }

func Forall(params []ast.Param, body ast.Expr) ast.Expr {
	return &ast.QuantExpr{Universal: true, Params: params, Body: body}
}

func Exists(params []ast.Param, body ast.Expr) ast.Expr {
	return &ast.QuantExpr{Universal: false, Params: params, Body: body}
}

// Declarations

func Assert(name string, body ast.Expr) *ast.Assertion {
	return &ast.Assertion{Name: name, Body: body}
}

func Macro(name string, params []ast.Param, body ast.Expr) *ast.MacroDecl {
	return &ast.MacroDecl{Name: name, Params: params, Body: body}
}

func Function(name string, params, returns []ast.Param, requires, ensures []ast.Expr) *ast.FunctionDecl {
	return &ast.FunctionDecl{Name: name, Params: params, Returns: returns, Requires: requires, Ensures: ensures}
}

func TypeDecl(name string, v ast.Param, invariant ...ast.Expr) *ast.TypeDecl {
	return &ast.TypeDecl{Name: name, Var: v, Invariant: invariant}
}
