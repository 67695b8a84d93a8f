package formula

import (
	"testing"

	"github.com/cottand/assay/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	a := newAlgebra()
	x, y, z := a.Var("x"), a.Var("y"), a.Var("z")
	px, py := AtomPoly(x), AtomPoly(y)

	t.Run("x < y with x := y is false", func(t *testing.T) {
		f := a.Less(px, py)
		assert.Equal(t, a.False(), a.Substitute(f, map[heap.Handle]heap.Handle{x: a.Poly(py)}))
	})

	t.Run("substitution is simultaneous", func(t *testing.T) {
		f := a.Less(px, py)
		swapped := a.Substitute(f, map[heap.Handle]heap.Handle{x: a.Poly(py), y: a.Poly(px)})
		assert.Equal(t, a.Less(py, px), swapped)
	})

	t.Run("polynomials are multiplied out", func(t *testing.T) {
		product := a.Poly(px.Mul(py))
		// x*y with x := y + 1 is y*y + y
		got := a.Substitute(product, map[heap.Handle]heap.Handle{x: a.Poly(py.Add(ConstantInt(1)))})
		assert.Equal(t, a.Poly(py.Mul(py).Add(py)), got)
	})

	t.Run("bound variables shadow", func(t *testing.T) {
		f := a.Forall([]heap.Handle{x}, a.Less(px, AtomPoly(z)))
		assert.Equal(t, f, a.Substitute(f, map[heap.Handle]heap.Handle{x: a.Int(5)}))

		g := a.Substitute(f, map[heap.Handle]heap.Handle{z: a.Int(5)})
		assert.Equal(t, a.Forall([]heap.Handle{x}, a.Less(px, ConstantInt(5))), g)
	})

	t.Run("capturing bound variables are renamed", func(t *testing.T) {
		f := a.Exists([]heap.Handle{y}, a.Less(px, py))
		got := a.Substitute(f, map[heap.Handle]heap.Handle{x: a.Poly(py.Add(ConstantInt(1)))})

		universal, vars, body := a.Quantified(got)
		assert.False(t, universal)
		require.Len(t, vars, 1)
		assert.NotEqual(t, y, vars[0])
		assert.Equal(t, "y'1", a.Name(vars[0]))
		assert.Equal(t, a.Less(py.Add(ConstantInt(1)), AtomPoly(vars[0])), body)

		free := a.FreeVars(got)
		assert.True(t, free.Contains(y))
		assert.Equal(t, 1, free.Size())
	})

	t.Run("array literals fold after substitution", func(t *testing.T) {
		xs, i := a.Var("xs"), a.Var("i")
		elem := a.Poly(AtomPoly(a.Index(xs, a.AsPoly(i))))
		got := a.Substitute(elem, map[heap.Handle]heap.Handle{
			xs: a.Array(a.Int(1), a.Int(2)),
			i:  a.Int(1),
		})
		assert.Equal(t, a.Int(2), got)
	})

	t.Run("non-variable atoms can be replaced", func(t *testing.T) {
		xs := a.Var("xs")
		length := a.Length(xs)
		atom, ok := a.SingleAtom(length)
		require.True(t, ok)
		f := a.Less(ConstantInt(0), a.PolyOf(length))
		assert.Equal(t, a.False(), a.Substitute(f, map[heap.Handle]heap.Handle{atom: a.Int(0)}))
	})
}

func TestSimplifyIsIdempotent(t *testing.T) {
	a := newAlgebra()
	x, y, xs := a.Var("x"), a.Var("y"), a.Var("xs")
	px, py := AtomPoly(x), AtomPoly(y)
	idx := a.Poly(AtomPoly(a.Index(xs, a.Poly(px))))

	formulas := []Formula{
		a.True(),
		a.And(a.Less(px, py), a.LessEq(py, ConstantInt(3))),
		a.Or(a.ArithEq(false, px.Sub(py)), a.Equals(true, xs, a.Array())),
		a.Forall([]heap.Handle{x}, a.Implies(a.LessEq(ConstantInt(0), px), a.Less(a.PolyOf(idx), py))),
		a.Exists([]heap.Handle{xs}, a.Is(xs, a.TypeArray(a.TypeInt()))),
		a.Invoke(false, "sorted", xs, a.Poly(px)),
		a.Assign(x, a.Poly(py.Add(ConstantInt(1)))),
	}
	for _, f := range formulas {
		t.Run(a.String(f), func(t *testing.T) {
			once := a.Simplify(f)
			assert.Equal(t, f, once, "constructors already build normal forms")
			assert.Equal(t, once, a.Simplify(once))
		})
	}
}

func TestOccursAndSubTerms(t *testing.T) {
	a := newAlgebra()
	x, xs := a.Var("x"), a.Var("xs")
	index := a.Index(xs, a.AsPoly(x))
	f := a.Less(AtomPoly(index), a.AsPolynomial(a.Length(xs)))

	assert.True(t, a.Occurs(x, f))
	assert.True(t, a.Occurs(index, f))
	assert.False(t, a.Occurs(a.Var("y"), f))
	assert.False(t, a.Occurs(f, index))

	assert.Equal(t, []heap.Handle{index}, a.SubTerms(f, OpIndex))
	assert.Len(t, a.SubTerms(f, OpIndex, OpLength), 2)
	assert.True(t, a.IsGround(f))
	assert.False(t, a.IsGround(a.Forall([]heap.Handle{x}, f)))
	assert.Empty(t, a.SubTerms(a.Forall([]heap.Handle{x}, f), OpIndex), "quantified sub-terms are not collected")
}
