package types

import (
	"slices"

	"github.com/cottand/assay/frontend/ast"
)

// literal is a possibly negated test for one kind of value: a primitive other
// than any and void, an array type or a record type
type literal struct {
	positive bool
	t        ast.Type
}

type clause []literal

// dnf is a union of clauses, each the intersection of its literals.
// The empty dnf is void, and a dnf holding one empty clause is any.
type dnf []clause

func conjoin(l, r dnf) dnf {
	out := make(dnf, 0, len(l)*len(r))
	for _, cl := range l {
		for _, cr := range r {
			out = append(out, append(slices.Clone(cl), cr...))
		}
	}
	return out
}

// toDNF normalises t, or its complement when positive is false
func (o *Oracle) toDNF(t ast.Type, positive bool, depth int) (dnf, error) {
	everything, nothing := dnf{{}}, dnf(nil)
	switch t := t.(type) {
	case *ast.Primitive:
		switch t.Kind {
		case ast.KindAny:
			if positive {
				return everything, nil
			}
			return nothing, nil
		case ast.KindVoid:
			if positive {
				return nothing, nil
			}
			return everything, nil
		}
		return dnf{{{positive: positive, t: t}}}, nil
	case *ast.ArrayType, *ast.RecordType:
		return dnf{{{positive: positive, t: t}}}, nil
	case *ast.NominalType:
		if depth > maxDepth {
			return everything, nil
		}
		decl, err := o.declaration(t)
		if err != nil {
			return nil, err
		}
		return o.toDNF(decl.Var.Type, positive, depth+1)
	case *ast.NegationType:
		return o.toDNF(t.Negated, !positive, depth)
	case *ast.UnionType:
		return o.junction(t.Options, positive, positive, depth)
	case *ast.IntersectionType:
		return o.junction(t.Options, !positive, positive, depth)
	}
	return everything, nil
}

// junction normalises a union of options when union holds, an intersection otherwise
func (o *Oracle) junction(options []ast.Type, union, positive bool, depth int) (dnf, error) {
	var out dnf
	if !union {
		out = dnf{{}}
	}
	for _, option := range options {
		d, err := o.toDNF(option, positive, depth)
		if err != nil {
			return nil, err
		}
		if union {
			out = append(out, d...)
		} else {
			out = conjoin(out, d)
		}
	}
	return out, nil
}

// isEmpty reports whether t has no values. Records excluded by several
// negated record types at once are assumed to exist.
func (o *Oracle) isEmpty(t ast.Type, depth int) (bool, error) {
	if depth > maxDepth {
		return false, nil
	}
	d, err := o.toDNF(t, true, depth)
	if err != nil {
		return false, err
	}
	for _, c := range d {
		empty, err := o.clauseEmpty(c, depth)
		if err != nil || !empty {
			return false, err
		}
	}
	return true, nil
}

func kindOf(t ast.Type) string {
	switch t := t.(type) {
	case *ast.Primitive:
		return t.Kind.String()
	case *ast.ArrayType:
		return "array"
	case *ast.RecordType:
		return "record"
	}
	return ""
}

func (o *Oracle) clauseEmpty(c clause, depth int) (bool, error) {
	kind := ""
	var positives, negatives []ast.Type
	for _, lit := range c {
		k := kindOf(lit.t)
		if !lit.positive {
			negatives = append(negatives, lit.t)
			continue
		}
		if kind != "" && kind != k {
			return true, nil
		}
		kind = k
		positives = append(positives, lit.t)
	}

	switch kind {
	case "":
		return false, nil
	case "array":
		return o.arraysEmpty(positives, negatives, depth)
	case "record":
		return o.recordsEmpty(positives, negatives, depth)
	}
	for _, n := range negatives {
		if kindOf(n) == kind {
			return true, nil
		}
	}
	return false, nil
}

// arraysEmpty: the empty array has every array type, and for each negated
// array type some element has to lie outside of its element type
func (o *Oracle) arraysEmpty(positives, negatives []ast.Type, depth int) (bool, error) {
	elems := make([]ast.Type, len(positives))
	for i, p := range positives {
		elems[i] = p.(*ast.ArrayType).Elem
	}
	elem := ast.Type(&ast.IntersectionType{Options: elems})
	for _, n := range negatives {
		neg, ok := n.(*ast.ArrayType)
		if !ok {
			continue
		}
		empty, err := o.isEmpty(intersection(elem, &ast.NegationType{Negated: neg.Elem}), depth+1)
		if err != nil || empty {
			return empty, err
		}
	}
	return false, nil
}

func (o *Oracle) recordsEmpty(positives, negatives []ast.Type, depth int) (bool, error) {
	first := positives[0].(*ast.RecordType)
	fields := make([]ast.FieldType, len(first.Fields))
	for i, f := range first.Fields {
		options := []ast.Type{f.Type}
		for _, p := range positives[1:] {
			ft, ok := p.(*ast.RecordType).Field(f.Name)
			if !ok {
				return true, nil
			}
			options = append(options, ft)
		}
		fields[i] = ast.FieldType{Name: f.Name, Type: &ast.IntersectionType{Options: options}}
	}
	for _, p := range positives[1:] {
		if len(p.(*ast.RecordType).Fields) != len(fields) {
			return true, nil
		}
	}
	for _, f := range fields {
		empty, err := o.isEmpty(f.Type, depth+1)
		if err != nil || empty {
			return empty, err
		}
	}

	for _, n := range negatives {
		neg, ok := n.(*ast.RecordType)
		if !ok || len(neg.Fields) != len(fields) {
			continue
		}
		covered := true
		for _, f := range fields {
			nt, ok := neg.Field(f.Name)
			if !ok {
				covered = false
				break
			}
			within, err := o.isEmpty(intersection(f.Type, &ast.NegationType{Negated: nt}), depth+1)
			if err != nil {
				return false, err
			}
			if !within {
				covered = false
				break
			}
		}
		if covered {
			return true, nil
		}
	}
	return false, nil
}
