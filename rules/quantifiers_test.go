package rules

import (
	"testing"

	"github.com/cottand/assay/formula"
	"github.com/stretchr/testify/assert"
)

func TestInequalityClosure(t *testing.T) {
	f := newFixture()
	a := f.a
	x, y, z := f.int("x"), f.int("y"), f.int("z")

	t.Run("refutes", func(t *testing.T) {
		lower, upper := a.LessEq(num(0), x), a.LessEq(x, num(-1))
		next := apply(t, InequalityClosure{}, f.root(lower, upper), upper)
		assert.True(t, next.Contradiction())
		assert.ElementsMatch(t, []formula.Formula{upper, lower}, next.Step().Deps)
	})

	t.Run("chains", func(t *testing.T) {
		xy, yz := a.LessEq(y, x), a.LessEq(z, y)
		next := apply(t, InequalityClosure{}, f.root(xy, yz), yz)
		assert.True(t, next.IsActive(a.LessEq(z, x)))
	})

	t.Run("equalities are two bounds", func(t *testing.T) {
		eq := a.ArithEq(true, x.Sub(y))
		strict := a.Less(x, y)
		next := apply(t, InequalityClosure{}, f.root(eq, strict), strict)
		assert.True(t, next.Contradiction())
	})

	t.Run("assignments are equalities", func(t *testing.T) {
		assign := a.Assign(a.Var("x"), a.Int(4))
		bound := a.LessEq(x, num(3))
		next := apply(t, InequalityClosure{}, f.root(assign, bound), bound)
		assert.True(t, next.Contradiction())
	})

	t.Run("unrelated", func(t *testing.T) {
		xs, ys := a.LessEq(num(0), x), a.LessEq(num(0), y)
		s := f.root(xs, ys)
		assert.Same(t, s, apply(t, InequalityClosure{}, s, ys))
	})
}

func TestQuantifierInstantiation(t *testing.T) {
	f := newFixture()
	a := f.a
	xs, iVar := a.Var("xs"), a.Var("i")
	element := func(i formula.Formula) formula.Polynomial {
		return a.AsPolynomial(a.Index(xs, i))
	}
	// forall i: 0 < xs[i]
	quantifier := a.Forall([]formula.Formula{iVar}, a.Less(num(0), element(a.AsPoly(iVar))))
	ground := a.LessEq(element(a.Int(3)), num(0))
	instance := a.Less(num(0), element(a.Int(3)))
	rule := QuantifierInstantiation{env: f.env}

	t.Run("new ground truth", func(t *testing.T) {
		next := apply(t, rule, f.root(quantifier, ground), ground)
		assert.True(t, next.IsActive(instance), "expected %s", a.String(instance))
		assert.ElementsMatch(t, []formula.Formula{quantifier, ground}, next.Step().Deps)
	})

	t.Run("new quantifier", func(t *testing.T) {
		next := apply(t, rule, f.root(ground, quantifier), quantifier)
		assert.True(t, next.IsActive(instance))
	})

	t.Run("offset index", func(t *testing.T) {
		// forall i: 0 < xs[i+1] matched against xs[3] binds i to 2
		shifted := a.Forall([]formula.Formula{iVar}, a.Less(num(0), element(a.Poly(f.int("i").Add(num(1))))))
		next := apply(t, rule, f.root(shifted, ground), ground)
		assert.True(t, next.IsActive(instance))
	})

	t.Run("no trigger", func(t *testing.T) {
		other := a.LessEq(element(a.Int(3)).Add(f.int("y")), num(0))
		noTrigger := a.Forall([]formula.Formula{iVar}, a.LessEq(num(0), f.int("i")))
		s := f.root(noTrigger, other)
		assert.Same(t, s, apply(t, rule, s, other))
	})

	t.Run("limit", func(t *testing.T) {
		limited := newFixture()
		limited.env.Limits.MaxInstantiations = 1
		la := limited.a
		lxs, li := la.Var("xs"), la.Var("i")
		elem := func(i formula.Formula) formula.Polynomial { return la.AsPolynomial(la.Index(lxs, i)) }
		q := la.Forall([]formula.Formula{li}, la.Less(num(0), elem(la.AsPoly(li))))
		both := la.LessEq(elem(la.Int(3)).Add(elem(la.Int(4))), num(0))

		next := apply(t, QuantifierInstantiation{env: limited.env}, limited.root(q, both), both)
		instances := 0
		for _, k := range []int64{3, 4} {
			if next.IsActive(la.Less(num(0), elem(la.Int(k)))) {
				instances++
			}
		}
		assert.Equal(t, 1, instances)
		assert.Equal(t, 1, next.Proof().Count(QuantifierInstantiation{}.Name()))
	})
}
