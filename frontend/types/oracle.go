package types

import (
	"sync"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/util"
)

// maxDepth bounds how many nominal types are unfolded inside one question.
// Past it a nominal type is read as any, which can only make types look
// larger and so never makes a subtyping claim unsound.
const maxDepth = 16

// Oracle decides subtyping structurally, reading a type as the set of its
// values: nominal types stand for their underlying type, records are closed
// and negation is the complement.
//
// Oracle is safe for concurrent use.
type Oracle struct {
	resolver formula.Resolver

	mu sync.Mutex
	// raw caches IsRawSubtype by the rendering of (super, sub)
	raw map[util.Pair[string, string]]bool
}

func NewOracle(resolver formula.Resolver) *Oracle {
	return &Oracle{resolver: resolver, raw: make(map[util.Pair[string, string]]bool)}
}

// IsRawSubtype reports whether sub is a subtype of super when invariants are ignored
func (o *Oracle) IsRawSubtype(super, sub ast.Type) (bool, error) {
	key := util.NewPair(ast.TypeString(super), ast.TypeString(sub))
	o.mu.Lock()
	cached, ok := o.raw[key]
	o.mu.Unlock()
	if ok {
		return cached, nil
	}
	// sub <: super exactly when sub & !super has no values
	empty, err := o.isEmpty(intersection(sub, &ast.NegationType{Negated: super}), 0)
	if err != nil {
		return false, err
	}
	o.mu.Lock()
	o.raw[key] = empty
	o.mu.Unlock()
	return empty, nil
}

// IsSubtype is IsRawSubtype that also requires every invariant of super to be
// one that sub is declared with. It is incomplete for invariants: an invariant
// of super implied by a different one of sub is not recognised.
func (o *Oracle) IsSubtype(super, sub ast.Type) (bool, error) {
	if ast.TypeString(super) == ast.TypeString(sub) {
		return true, nil
	}
	raw, err := o.IsRawSubtype(super, sub)
	if err != nil || !raw {
		return false, err
	}
	if empty, err := o.isEmpty(sub, 0); err != nil || empty {
		return empty, err
	}
	return o.implied(super, sub, 0)
}

// Intersect returns a type whose values are those of both a and b
func (o *Oracle) Intersect(a, b ast.Type) (ast.Type, error) {
	both := intersection(a, b)
	empty, err := o.isEmpty(both, 0)
	if err != nil {
		return nil, err
	}
	if empty {
		return ast.VoidType, nil
	}
	if sub, err := o.IsSubtype(b, a); err != nil || sub {
		return a, err
	}
	if sub, err := o.IsSubtype(a, b); err != nil || sub {
		return b, err
	}
	return both, nil
}

// ExtractTypeInvariant translates the invariant of the nominal type t over expr
func (o *Oracle) ExtractTypeInvariant(tr *formula.Translator, t ast.Type, expr heap.Handle) (formula.Formula, bool, error) {
	nominal, ok := t.(*ast.NominalType)
	if !ok {
		return heap.Nil, false, nil
	}
	decl, err := o.declaration(nominal)
	if err != nil {
		return heap.Nil, false, err
	}
	if len(decl.Invariant) == 0 {
		return heap.Nil, false, nil
	}
	scope := tr.Bind([]ast.Param{decl.Var}, []heap.Handle{expr})
	parts := make([]formula.Formula, len(decl.Invariant))
	for i, inv := range decl.Invariant {
		f, err := tr.Formula(scope, inv, true)
		if err != nil {
			return heap.Nil, false, err
		}
		parts[i] = f
	}
	return tr.Algebra().And(parts...), true, nil
}

func (o *Oracle) declaration(t *ast.NominalType) (*ast.TypeDecl, error) {
	decl, err := o.resolver.ResolveExactly(t.Name, ast.DeclType)
	if err != nil {
		return nil, err
	}
	return decl.(*ast.TypeDecl), nil
}

func intersection(a, b ast.Type) ast.Type {
	return &ast.IntersectionType{Options: []ast.Type{a, b}}
}

// implied reports whether every value of sub satisfies the invariants of super
func (o *Oracle) implied(super, sub ast.Type, depth int) (bool, error) {
	if depth > maxDepth {
		return false, nil
	}
	constrained, err := o.hasInvariant(super, 0)
	if err != nil || !constrained {
		return !constrained, err
	}
	switch s := super.(type) {
	case *ast.NominalType:
		return o.reaches(sub, s.Name, 0)
	case *ast.UnionType:
		for _, option := range s.Options {
			raw, err := o.IsRawSubtype(option, sub)
			if err != nil {
				return false, err
			}
			if !raw {
				continue
			}
			if ok, err := o.implied(option, sub, depth+1); err != nil || ok {
				return ok, err
			}
		}
	case *ast.IntersectionType:
		for _, option := range s.Options {
			if ok, err := o.implied(option, sub, depth+1); err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *ast.ArrayType:
		if arr, ok := sub.(*ast.ArrayType); ok {
			return o.implied(s.Elem, arr.Elem, depth+1)
		}
	case *ast.RecordType:
		rec, ok := sub.(*ast.RecordType)
		if !ok {
			break
		}
		for _, f := range s.Fields {
			ft, ok := rec.Field(f.Name)
			if !ok {
				return false, nil
			}
			if ok, err := o.implied(f.Type, ft, depth+1); err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return false, nil
}

// reaches reports whether every value of t is declared through the nominal type name
func (o *Oracle) reaches(t ast.Type, name string, depth int) (bool, error) {
	if depth > maxDepth {
		return false, nil
	}
	switch t := t.(type) {
	case *ast.NominalType:
		if t.Name == name {
			return true, nil
		}
		decl, err := o.declaration(t)
		if err != nil {
			return false, err
		}
		return o.reaches(decl.Var.Type, name, depth+1)
	case *ast.UnionType:
		for _, option := range t.Options {
			if ok, err := o.reaches(option, name, depth+1); err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *ast.IntersectionType:
		for _, option := range t.Options {
			if ok, err := o.reaches(option, name, depth+1); err != nil || ok {
				return ok, err
			}
		}
	}
	return false, nil
}

// hasInvariant reports whether some nominal type inside t declares an invariant
func (o *Oracle) hasInvariant(t ast.Type, depth int) (bool, error) {
	if depth > maxDepth {
		return true, nil
	}
	var inner []ast.Type
	switch t := t.(type) {
	case *ast.NominalType:
		decl, err := o.declaration(t)
		if err != nil {
			return false, err
		}
		if len(decl.Invariant) > 0 {
			return true, nil
		}
		inner = []ast.Type{decl.Var.Type}
	case *ast.ArrayType:
		inner = []ast.Type{t.Elem}
	case *ast.RecordType:
		for _, f := range t.Fields {
			inner = append(inner, f.Type)
		}
	case *ast.UnionType:
		inner = t.Options
	case *ast.IntersectionType:
		inner = t.Options
	case *ast.NegationType:
		inner = []ast.Type{t.Negated}
	}
	for _, it := range inner {
		if ok, err := o.hasInvariant(it, depth+1); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
