package formula

import (
	"math/big"
	"slices"
	"strings"

	"github.com/cottand/assay/heap"
)

func (a *Algebra) Var(name string) heap.Handle {
	return a.heap.Allocate(OpVar, name)
}

// Index is xs[i]. Indexing into literals and updates is folded when the index allows it.
// The result is an atom or, when folded, the element itself.
func (a *Algebra) Index(arr, idx heap.Handle) heap.Handle {
	idx = a.AsPoly(idx)
	item := a.heap.Get(arr)
	switch item.Op {
	case OpArray:
		if k, ok := a.ConstantOf(idx); ok && k.IsInt64() && k.Sign() >= 0 && k.Int64() < int64(len(item.Children)) {
			return item.Children[k.Int64()]
		}
	case OpArrayGen:
		return item.Children[0]
	case OpUpdate:
		if item.Children[1] == idx {
			return item.Children[2]
		}
		i, iConst := a.ConstantOf(item.Children[1])
		j, jConst := a.ConstantOf(idx)
		if iConst && jConst && i.Cmp(j) != 0 {
			return a.Index(item.Children[0], idx)
		}
	}
	return a.heap.Allocate(OpIndex, nil, arr, idx)
}

// Length is |xs|, always a polynomial
func (a *Algebra) Length(arr heap.Handle) heap.Handle {
	item := a.heap.Get(arr)
	switch item.Op {
	case OpArray:
		return a.Int(int64(len(item.Children)))
	case OpArrayGen:
		return item.Children[1]
	case OpUpdate:
		return a.Length(item.Children[0])
	}
	return a.AsPoly(a.heap.Allocate(OpLength, nil, arr))
}

// Update is xs[i:=v]. Updating a literal at a constant in-range index folds into a new literal.
func (a *Algebra) Update(arr, idx, val heap.Handle) heap.Handle {
	idx = a.AsPoly(idx)
	item := a.heap.Get(arr)
	if item.Op == OpArray {
		if k, ok := a.ConstantOf(idx); ok && k.IsInt64() && k.Sign() >= 0 && k.Int64() < int64(len(item.Children)) {
			elems := slices.Clone(item.Children)
			elems[k.Int64()] = val
			return a.Array(elems...)
		}
	}
	return a.heap.Allocate(OpUpdate, nil, arr, idx, val)
}

func (a *Algebra) Array(elems ...heap.Handle) heap.Handle {
	return a.heap.Allocate(OpArray, nil, elems...)
}

// ArrayGen is [v; n]
func (a *Algebra) ArrayGen(val, length heap.Handle) heap.Handle {
	length = a.AsPoly(length)
	if n, ok := a.ConstantOf(length); ok && n.IsInt64() && n.Int64() >= 0 && n.Int64() <= 16 {
		elems := make([]heap.Handle, n.Int64())
		for i := range elems {
			elems[i] = val
		}
		return a.Array(elems...)
	}
	return a.heap.Allocate(OpArrayGen, nil, val, length)
}

// Record builds a record literal; fields are reordered by name
func (a *Algebra) Record(names []string, values []heap.Handle) heap.Handle {
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(i, j int) int { return strings.Compare(names[i], names[j]) })
	sortedNames := make([]string, len(names))
	sortedValues := make([]heap.Handle, len(names))
	for to, from := range order {
		sortedNames[to] = names[from]
		sortedValues[to] = values[from]
	}
	return a.heap.Allocate(OpRecord, strings.Join(sortedNames, ","), sortedValues...)
}

// RecordFields returns the sorted field names of a record literal
func (a *Algebra) RecordFields(rec heap.Handle) []string {
	item := a.heap.Get(rec)
	if item.Op != OpRecord || item.Payload.(string) == "" {
		return nil
	}
	return strings.Split(item.Payload.(string), ",")
}

// Field is r.f, folded when r is a record literal that has f
func (a *Algebra) Field(rec heap.Handle, name string) heap.Handle {
	if a.heap.Op(rec) == OpRecord {
		for i, f := range a.RecordFields(rec) {
			if f == name {
				return a.heap.Get(rec).Children[i]
			}
		}
	}
	return a.heap.Allocate(OpField, name, rec)
}

// Call is an uninterpreted function application
func (a *Algebra) Call(name string, args ...heap.Handle) heap.Handle {
	return a.heap.Allocate(OpCall, name, args...)
}

// Sum, Difference and Product work on any int-valued handles

func (a *Algebra) Sum(l, r heap.Handle) heap.Handle {
	return a.Poly(a.AsPolynomial(l).Add(a.AsPolynomial(r)))
}

func (a *Algebra) Difference(l, r heap.Handle) heap.Handle {
	return a.Poly(a.AsPolynomial(l).Sub(a.AsPolynomial(r)))
}

func (a *Algebra) Product(l, r heap.Handle) heap.Handle {
	return a.Poly(a.AsPolynomial(l).Mul(a.AsPolynomial(r)))
}

func (a *Algebra) Negate(e heap.Handle) heap.Handle {
	return a.Poly(a.AsPolynomial(e).Neg())
}

func (a *Algebra) BigInt(v *big.Int) heap.Handle { return a.Poly(Constant(v)) }
