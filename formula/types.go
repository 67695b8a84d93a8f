package formula

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/heap"
)

func (a *Algebra) TypeInt() heap.Handle  { return a.heap.Allocate(OpTypeInt, nil) }
func (a *Algebra) TypeBool() heap.Handle { return a.heap.Allocate(OpTypeBool, nil) }
func (a *Algebra) TypeAny() heap.Handle  { return a.heap.Allocate(OpTypeAny, nil) }
func (a *Algebra) TypeVoid() heap.Handle { return a.heap.Allocate(OpTypeVoid, nil) }
func (a *Algebra) TypeNull() heap.Handle { return a.heap.Allocate(OpTypeNull, nil) }

// TypeArray is elem[]. void[] is inhabited by the empty array, so it is kept.
func (a *Algebra) TypeArray(elem heap.Handle) heap.Handle {
	return a.heap.Allocate(OpTypeArray, nil, elem)
}

// TypeRecord builds a closed record type; fields are reordered by name.
// A record with a void field has no values.
func (a *Algebra) TypeRecord(names []string, fields []heap.Handle) heap.Handle {
	for _, f := range fields {
		if a.heap.Op(f) == OpTypeVoid {
			return a.TypeVoid()
		}
	}
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(i, j int) int { return strings.Compare(names[i], names[j]) })
	sortedNames := make([]string, len(names))
	sortedFields := make([]heap.Handle, len(names))
	for to, from := range order {
		sortedNames[to] = names[from]
		sortedFields[to] = fields[from]
	}
	return a.heap.Allocate(OpTypeRecord, strings.Join(sortedNames, ","), sortedFields...)
}

// TypeRecordFields returns the sorted field names of a record type
func (a *Algebra) TypeRecordFields(t heap.Handle) []string {
	item := a.heap.Get(t)
	if item.Op != OpTypeRecord || item.Payload.(string) == "" {
		return nil
	}
	return strings.Split(item.Payload.(string), ",")
}

func (a *Algebra) TypeNominal(name string) heap.Handle {
	return a.heap.Allocate(OpTypeNominal, name)
}

func (a *Algebra) TypeUnion(options ...heap.Handle) heap.Handle {
	return a.typeJunction(OpTypeUnion, options)
}

func (a *Algebra) TypeIntersection(options ...heap.Handle) heap.Handle {
	return a.typeJunction(OpTypeIntersection, options)
}

func (a *Algebra) typeJunction(op heap.Op, options []heap.Handle) heap.Handle {
	absorbing, identity := a.TypeAny(), a.TypeVoid()
	if op == OpTypeIntersection {
		absorbing, identity = identity, absorbing
	}
	flat := make([]heap.Handle, 0, len(options))
	var flatten func([]heap.Handle) bool
	flatten = func(ts []heap.Handle) bool {
		for _, t := range ts {
			switch {
			case t == absorbing:
				return false
			case t == identity:
			case a.heap.Op(t) == op:
				if !flatten(a.heap.Get(t).Children) {
					return false
				}
			default:
				flat = append(flat, t)
			}
		}
		return true
	}
	if !flatten(options) {
		return absorbing
	}
	flat = sortedUnique(flat)
	for _, t := range flat {
		// T | !T is any, T & !T is void
		if a.heap.Op(t) == OpTypeNegation {
			if _, found := slices.BinarySearch(flat, a.heap.Get(t).Children[0]); found {
				return absorbing
			}
		}
	}
	switch len(flat) {
	case 0:
		return identity
	case 1:
		return flat[0]
	}
	return a.heap.Allocate(op, nil, flat...)
}

// TypeNot is the complement of t
func (a *Algebra) TypeNot(t heap.Handle) heap.Handle {
	item := a.heap.Get(t)
	switch item.Op {
	case OpTypeAny:
		return a.TypeVoid()
	case OpTypeVoid:
		return a.TypeAny()
	case OpTypeNegation:
		return item.Children[0]
	}
	return a.heap.Allocate(OpTypeNegation, nil, t)
}

// TypeOf interns an AST type
func (a *Algebra) TypeOf(t ast.Type) heap.Handle {
	switch t := t.(type) {
	case *ast.Primitive:
		switch t.Kind {
		case ast.KindAny:
			return a.TypeAny()
		case ast.KindVoid:
			return a.TypeVoid()
		case ast.KindNull:
			return a.TypeNull()
		case ast.KindBool:
			return a.TypeBool()
		case ast.KindInt:
			return a.TypeInt()
		}
	case *ast.ArrayType:
		return a.TypeArray(a.TypeOf(t.Elem))
	case *ast.RecordType:
		names := make([]string, len(t.Fields))
		fields := make([]heap.Handle, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = f.Name
			fields[i] = a.TypeOf(f.Type)
		}
		return a.TypeRecord(names, fields)
	case *ast.NominalType:
		return a.TypeNominal(t.Name)
	case *ast.UnionType:
		return a.TypeUnion(a.typesOf(t.Options)...)
	case *ast.IntersectionType:
		return a.TypeIntersection(a.typesOf(t.Options)...)
	case *ast.NegationType:
		return a.TypeNot(a.TypeOf(t.Negated))
	}
	panic(fmt.Sprintf("formula: unexpected type %T", t))
}

func (a *Algebra) typesOf(ts []ast.Type) []heap.Handle {
	out := make([]heap.Handle, len(ts))
	for i, t := range ts {
		out[i] = a.TypeOf(t)
	}
	return out
}

// ASTType converts an interned type back to its AST form
func (a *Algebra) ASTType(t heap.Handle) ast.Type {
	item := a.heap.Get(t)
	switch item.Op {
	case OpTypeAny:
		return ast.AnyType
	case OpTypeVoid:
		return ast.VoidType
	case OpTypeNull:
		return ast.NullType
	case OpTypeBool:
		return ast.BoolType
	case OpTypeInt:
		return ast.IntType
	case OpTypeArray:
		return &ast.ArrayType{Elem: a.ASTType(item.Children[0])}
	case OpTypeRecord:
		fields := make([]ast.FieldType, len(item.Children))
		for i, name := range a.TypeRecordFields(t) {
			fields[i] = ast.FieldType{Name: name, Type: a.ASTType(item.Children[i])}
		}
		return &ast.RecordType{Fields: fields}
	case OpTypeNominal:
		return &ast.NominalType{Name: item.Payload.(string)}
	case OpTypeUnion:
		return &ast.UnionType{Options: a.astTypes(item.Children)}
	case OpTypeIntersection:
		return &ast.IntersectionType{Options: a.astTypes(item.Children)}
	case OpTypeNegation:
		return &ast.NegationType{Negated: a.ASTType(item.Children[0])}
	}
	panic(fmt.Sprintf("formula: %s is not a type", a.String(t)))
}

func (a *Algebra) astTypes(ts []heap.Handle) []ast.Type {
	out := make([]ast.Type, len(ts))
	for i, t := range ts {
		out[i] = a.ASTType(t)
	}
	return out
}
