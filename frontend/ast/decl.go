package ast

import "fmt"

// DeclKind distinguishes the namespaces a name can be resolved in
type DeclKind uint8

const (
	DeclType DeclKind = iota
	DeclFunction
	DeclMacro
)

func (k DeclKind) String() string {
	switch k {
	case DeclType:
		return "type"
	case DeclFunction:
		return "function"
	case DeclMacro:
		return "macro"
	default:
		panic(fmt.Sprintf("invalid declaration kind %d", k))
	}
}

// Decl is a named top-level declaration
type Decl interface {
	Node
	DeclName() string
	DeclKind() DeclKind
}

var (
	_ Decl = (*TypeDecl)(nil)
	_ Decl = (*FunctionDecl)(nil)
	_ Decl = (*MacroDecl)(nil)
)

// TypeDecl declares a nominal type: type nat is (int n) where n >= 0
type TypeDecl struct {
	Range
	Name string
	// Var names the value inside Invariant and carries the underlying type
	Var       Param
	Invariant []Expr
}

// FunctionDecl declares a (pure, uninterpreted) function through its contract
type FunctionDecl struct {
	Range
	Name     string
	Params   []Param
	Returns  []Param
	Requires []Expr
	Ensures  []Expr
}

// MacroDecl declares a named predicate: define positive(int x) is x > 0
type MacroDecl struct {
	Range
	Name   string
	Params []Param
	Body   Expr
}

func (d *TypeDecl) DeclName() string     { return d.Name }
func (d *FunctionDecl) DeclName() string { return d.Name }
func (d *MacroDecl) DeclName() string    { return d.Name }

func (d *TypeDecl) DeclKind() DeclKind     { return DeclType }
func (d *FunctionDecl) DeclKind() DeclKind { return DeclFunction }
func (d *MacroDecl) DeclKind() DeclKind    { return DeclMacro }

// Assertion is a named closed boolean expression to be proven valid
type Assertion struct {
	Range
	Name string
	Body Expr
}

// Module is a set of declarations and the assertions that may refer to them
type Module struct {
	Name       string
	Decls      []Decl
	Assertions []*Assertion
}
