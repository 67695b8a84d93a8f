package rules

import (
	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/proof"
)

// StructuralEquality expands an equality between a literal and another
// expression into equalities between their components
type StructuralEquality struct{}

func (StructuralEquality) Name() string { return "StructuralEquality" }

func (r StructuralEquality) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	item := a.Item(truth)
	if item.Op != formula.OpEq {
		return s, nil
	}
	sign := item.Payload.(bool)
	l, rhs := item.Children[0], item.Children[1]
	literal, other := l, rhs
	if !isLiteral(a, literal) {
		literal, other = rhs, l
	}
	if !isLiteral(a, literal) || isLiteral(a, other) {
		return s, nil
	}

	var parts []formula.Formula
	lit := a.Item(literal)
	switch lit.Op {
	case formula.OpRecord:
		for i, name := range a.RecordFields(literal) {
			value := lit.Children[i]
			parts = append(parts, a.Equals(sign, like(a, a.Field(other, name), value), value))
		}
	case formula.OpArray:
		length := formula.ConstantInt(int64(len(lit.Children)))
		parts = append(parts, a.ArithEq(sign, a.PolyOf(a.Length(other)).Sub(length)))
		for i, value := range lit.Children {
			elem := a.Index(other, a.Int(int64(i)))
			parts = append(parts, a.Equals(sign, like(a, elem, value), value))
		}
	case formula.OpArrayGen:
		value, length := lit.Children[0], lit.Children[1]
		parts = append(parts, a.ArithEq(sign, a.PolyOf(a.Length(other)).Sub(a.PolyOf(length))))
		iVar := a.Fresh("i")
		i := a.AsPoly(iVar)
		inRange := a.And(a.Ineq(a.PolyOf(i)), a.Less(a.PolyOf(i), a.PolyOf(length)))
		elem := like(a, a.Index(other, i), value)
		if sign {
			parts = append(parts, a.Forall([]heap.Handle{iVar}, a.Implies(inRange, a.Equals(true, elem, value))))
		} else {
			parts = append(parts, a.Exists([]heap.Handle{iVar}, a.And(inRange, a.Equals(false, elem, value))))
		}
	}
	expanded := a.Or(parts...)
	if sign {
		expanded = a.And(parts...)
	}
	return s.Subsume(r, truth, []formula.Formula{expanded}), nil
}

func isLiteral(a *formula.Algebra, h heap.Handle) bool {
	switch a.Op(h) {
	case formula.OpRecord, formula.OpArray, formula.OpArrayGen:
		return true
	}
	return false
}

// like wraps h into a polynomial when the value it is compared to is one
func like(a *formula.Algebra, h, value heap.Handle) heap.Handle {
	if a.IsPoly(value) {
		return a.AsPoly(h)
	}
	return h
}

// ArrayIndexAxiom bounds every index of an atomic truth by the length of its array
type ArrayIndexAxiom struct{}

func (ArrayIndexAxiom) Name() string { return "ArrayIndexAxiom" }

func (r ArrayIndexAxiom) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	if !formula.IsAtomic(a.Op(truth)) {
		return s, nil
	}
	var bounds []formula.Formula
	for _, index := range a.SubTerms(truth, formula.OpIndex) {
		children := a.Children(index)
		i := a.PolyOf(children[1])
		bounds = append(bounds,
			a.Ineq(i),
			a.Less(i, a.PolyOf(a.Length(children[0]))),
		)
	}
	return s.InferAll(r, bounds, truth), nil
}

// ArrayLengthAxiom states that lengths are not negative
type ArrayLengthAxiom struct{}

func (ArrayLengthAxiom) Name() string { return "ArrayLengthAxiom" }

func (r ArrayLengthAxiom) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	if !formula.IsAtomic(a.Op(truth)) {
		return s, nil
	}
	var bounds []formula.Formula
	for _, length := range a.SubTerms(truth, formula.OpLength) {
		bounds = append(bounds, a.Ineq(formula.AtomPoly(length)))
	}
	return s.InferAll(r, bounds, truth), nil
}

// ArrayIndexCaseAnalysis splits a truth T reading xs[i:=v][j] into
// (i == j && T[v]) || (i != j && T[xs[j]])
type ArrayIndexCaseAnalysis struct{}

func (ArrayIndexCaseAnalysis) Name() string { return "ArrayIndexCaseAnalysis" }

func (r ArrayIndexCaseAnalysis) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	if !formula.IsAtomic(a.Op(truth)) {
		return s, nil
	}
	for _, index := range a.SubTerms(truth, formula.OpIndex) {
		children := a.Children(index)
		update, j := children[0], children[1]
		if a.Op(update) != formula.OpUpdate {
			continue
		}
		u := a.Children(update)
		xs, i, v := u[0], u[1], u[2]
		same := a.Substitute(truth, map[heap.Handle]heap.Handle{index: v})
		different := a.Substitute(truth, map[heap.Handle]heap.Handle{index: a.Index(xs, j)})
		distance := a.PolyOf(i).Sub(a.PolyOf(j))
		cases := a.Or(
			a.And(a.ArithEq(true, distance), same),
			a.And(a.ArithEq(false, distance), different),
		)
		return s.Subsume(r, truth, []formula.Formula{cases}), nil
	}
	return s, nil
}
