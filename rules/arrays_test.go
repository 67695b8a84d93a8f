package rules

import (
	"testing"

	"github.com/cottand/assay/formula"
	"github.com/stretchr/testify/assert"
)

func TestStructuralEquality(t *testing.T) {
	f := newFixture()
	a := f.a
	r, xs := a.Var("r"), a.Var("xs")
	record := a.Record([]string{"y", "x"}, []formula.Formula{a.True(), a.Int(1)})
	array := a.Array(a.Int(1), a.Int(2))

	testCases := []struct {
		name     string
		truth    formula.Formula
		expected formula.Formula
	}{
		{
			name:  "record inequality",
			truth: a.Equals(false, r, record),
			expected: a.Or(
				a.Equals(false, a.AsPoly(a.Field(r, "x")), a.Int(1)),
				a.Equals(false, a.Field(r, "y"), a.True()),
			),
		},
		{
			name:  "array equality",
			truth: a.Equals(true, xs, array),
			expected: a.And(
				a.ArithEq(true, a.PolyOf(a.Length(xs)).Sub(num(2))),
				a.Equals(true, a.AsPoly(a.Index(xs, a.Int(0))), a.Int(1)),
				a.Equals(true, a.AsPoly(a.Index(xs, a.Int(1))), a.Int(2)),
			),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := apply(t, StructuralEquality{}, f.root(tc.truth), tc.truth)
			assert.False(t, next.IsActive(tc.truth))
			assert.True(t, next.IsActive(tc.expected), "expected %s", a.String(tc.expected))
		})
	}

	t.Run("generated arrays", func(t *testing.T) {
		n := f.int("n")
		truth := a.Equals(false, xs, a.ArrayGen(a.Int(0), a.Poly(n)))
		next := apply(t, StructuralEquality{}, f.root(truth), truth)
		active := next.Active()
		assert.Len(t, active, 1)
		assert.Equal(t, formula.OpOr, a.Op(active[0]))
		assert.Contains(t, a.Children(active[0]), a.ArithEq(false, a.PolyOf(a.Length(xs)).Sub(n)))
	})

	t.Run("no literal", func(t *testing.T) {
		truth := a.Equals(true, r, a.Var("q"))
		s := f.root(truth)
		assert.Same(t, s, apply(t, StructuralEquality{}, s, truth))
	})
}

func TestArrayAxioms(t *testing.T) {
	f := newFixture()
	a := f.a
	xs := a.Var("xs")
	i := f.int("i")
	length := a.PolyOf(a.Length(xs))

	t.Run("index", func(t *testing.T) {
		truth := a.Ineq(a.AsPolynomial(a.Index(xs, a.Poly(i))))
		next := apply(t, ArrayIndexAxiom{}, f.root(truth), truth)
		assert.True(t, next.IsActive(a.Ineq(i)))
		assert.True(t, next.IsActive(a.Less(i, length)))
		assert.True(t, next.IsActive(truth))
	})

	t.Run("length", func(t *testing.T) {
		truth := a.LessEq(length, num(3))
		next := apply(t, ArrayLengthAxiom{}, f.root(truth), truth)
		assert.True(t, next.IsActive(a.LessEq(num(0), length)))
	})

	t.Run("quantified terms are left alone", func(t *testing.T) {
		iVar := a.Var("i")
		truth := a.Forall([]formula.Formula{iVar}, a.Ineq(a.AsPolynomial(a.Index(xs, a.Poly(i)))))
		s := f.root(truth)
		assert.Same(t, s, apply(t, ArrayIndexAxiom{}, s, truth))
	})
}

func TestArrayIndexCaseAnalysis(t *testing.T) {
	f := newFixture()
	a := f.a
	xs := a.Var("xs")
	i, j := f.int("i"), f.int("j")
	read := a.Index(a.Update(xs, a.Poly(i), a.Int(5)), a.Poly(j))
	truth := a.Ineq(a.AsPolynomial(read))

	next := apply(t, ArrayIndexCaseAnalysis{}, f.root(truth), truth)
	assert.False(t, next.IsActive(truth))
	expected := a.Or(
		a.ArithEq(true, i.Sub(j)),
		a.And(a.ArithEq(false, i.Sub(j)), a.Ineq(a.AsPolynomial(a.Index(xs, a.Poly(j))))),
	)
	assert.True(t, next.IsActive(expected), "expected %s", a.String(expected))

	plain := a.Ineq(a.AsPolynomial(a.Index(xs, a.Poly(j))))
	s := f.root(plain)
	assert.Same(t, s, apply(t, ArrayIndexCaseAnalysis{}, s, plain))
}
