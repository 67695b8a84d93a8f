// Package types holds the default declaration resolver and type oracle the
// prover consults about the declarations of a module.
package types

import (
	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
)

// Declarations resolves names against a fixed set of declarations.
// It is safe for concurrent use once built.
type Declarations struct {
	byKind map[ast.DeclKind]map[string][]ast.Decl
}

func NewDeclarations(decls ...ast.Decl) *Declarations {
	d := &Declarations{byKind: make(map[ast.DeclKind]map[string][]ast.Decl)}
	for _, decl := range decls {
		names, ok := d.byKind[decl.DeclKind()]
		if !ok {
			names = make(map[string][]ast.Decl)
			d.byKind[decl.DeclKind()] = names
		}
		names[decl.DeclName()] = append(names[decl.DeclName()], decl)
	}
	return d
}

// ResolveAll returns every declaration of the given kind called name, in declaration order
func (d *Declarations) ResolveAll(name string, kind ast.DeclKind) []ast.Decl {
	return d.byKind[kind][name]
}

// ResolveExactly returns the only declaration of the given kind called name
func (d *Declarations) ResolveExactly(name string, kind ast.DeclKind) (ast.Decl, error) {
	switch candidates := d.ResolveAll(name, kind); len(candidates) {
	case 0:
		return nil, aerr.New(aerr.NewNotFound{Positioner: ast.Range{}, Name: name, Kind: kind})
	case 1:
		return candidates[0], nil
	default:
		return nil, aerr.New(aerr.NewAmbiguous{Positioner: ast.Range{}, Name: name, Kind: kind, Candidates: len(candidates)})
	}
}
