package formula

import (
	"testing"

	"github.com/cottand/assay/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlgebra() *Algebra {
	return New(heap.New())
}

// boolVar is the formula b == true
func boolVar(a *Algebra, name string) Formula {
	return a.Equals(true, a.Var(name), a.True())
}

func TestJunctions(t *testing.T) {
	a := newAlgebra()
	p, q, r := boolVar(a, "p"), boolVar(a, "q"), boolVar(a, "r")

	assert.Equal(t, a.True(), a.And())
	assert.Equal(t, a.False(), a.Or())
	assert.Equal(t, p, a.And(p))
	assert.Equal(t, p, a.And(p, a.True()))
	assert.Equal(t, a.False(), a.And(p, a.False(), q))
	assert.Equal(t, a.True(), a.Or(q, a.True()))
	assert.Equal(t, p, a.Or(p, a.False()))

	assert.Equal(t, a.And(p, q), a.And(q, p), "operands are sorted")
	assert.Equal(t, a.And(p, q), a.And(p, q, p), "operands are deduplicated")
	assert.Equal(t, a.And(p, q, r), a.And(p, a.And(r, q)), "nested junctions are flattened")
	assert.NotEqual(t, a.And(p, q), a.Or(p, q))

	conj := a.And(r, p, q)
	assert.Equal(t, OpAnd, a.Op(conj))
	assert.Len(t, a.Children(conj), 3)
}

func TestInequalities(t *testing.T) {
	a := newAlgebra()
	x := AtomPoly(a.Var("x"))
	y := AtomPoly(a.Var("y"))
	c := ConstantInt

	t.Run("constants are evaluated", func(t *testing.T) {
		assert.Equal(t, a.True(), a.Less(c(3), c(5)))
		assert.Equal(t, a.False(), a.LessEq(c(5), c(3)))
		assert.Equal(t, a.True(), a.LessEq(x, x))
		assert.Equal(t, a.False(), a.Less(x, x))
	})
	t.Run("strict is non-strict over integers", func(t *testing.T) {
		assert.Equal(t, a.LessEq(x.Add(c(1)), y), a.Less(x, y))
	})
	t.Run("gcd tightening rounds the constant down", func(t *testing.T) {
		two := x.Scale(c(2).Terms[0].Coefficient)
		// 2x <= 3 is x <= 1
		assert.Equal(t, a.LessEq(x, c(1)), a.LessEq(two, c(3)))
		// 2x >= 3 is x >= 2
		assert.Equal(t, a.LessEq(c(2), x), a.LessEq(c(3), two))
	})
	t.Run("negation flips the comparator", func(t *testing.T) {
		// !(x <= 1) is x >= 2
		assert.Equal(t, a.LessEq(c(2), x), a.Not(a.LessEq(x, c(1))))
		f := a.Less(x, y)
		assert.Equal(t, f, a.Not(a.Not(f)))
	})
}

func TestArithmeticEquality(t *testing.T) {
	a := newAlgebra()
	x := AtomPoly(a.Var("x"))
	y := AtomPoly(a.Var("y"))
	c := ConstantInt
	two := c(2).Terms[0].Coefficient

	assert.Equal(t, a.False(), a.ArithEq(true, x.Scale(two).Sub(c(3))), "2x == 3 has no integer solution")
	assert.Equal(t, a.True(), a.ArithEq(false, x.Scale(two).Sub(c(3))))
	assert.Equal(t,
		a.ArithEq(true, x.Add(y.Scale(two)).Sub(c(3))),
		a.ArithEq(true, x.Add(y.Scale(two)).Sub(c(3)).Scale(two)))
	assert.Equal(t, a.ArithEq(true, x.Sub(c(1))), a.ArithEq(true, c(1).Sub(x)), "leading coefficient is positive")
	assert.Equal(t, a.ArithEq(false, x.Sub(y)), a.Not(a.ArithEq(true, y.Sub(x))))

	// x == y written through Equals on polynomials
	assert.Equal(t, a.ArithEq(true, x.Sub(y)), a.Equals(true, a.Poly(x), a.Poly(y)))
}

func TestEquality(t *testing.T) {
	a := newAlgebra()
	r, s := a.Var("r"), a.Var("s")

	assert.Equal(t, a.True(), a.Equals(true, r, r))
	assert.Equal(t, a.False(), a.Equals(false, r, r))
	assert.Equal(t, a.Equals(true, r, s), a.Equals(true, s, r))
	assert.Equal(t, a.Equals(false, r, s), a.Not(a.Equals(true, r, s)))

	t.Run("boolean comparisons are positive", func(t *testing.T) {
		b := a.Var("b")
		assert.Equal(t, a.Equals(true, b, a.False()), a.Equals(false, b, a.True()))
		assert.Equal(t, a.Equals(true, b, a.True()), a.Not(a.Equals(true, b, a.False())))
	})

	t.Run("record literals compare field-wise", func(t *testing.T) {
		rec := func(x, y int64) heap.Handle {
			return a.Record([]string{"y", "x"}, []heap.Handle{a.Int(y), a.Int(x)})
		}
		assert.Equal(t, a.False(), a.Equals(true, rec(1, 2), rec(1, 3)))
		assert.Equal(t, a.True(), a.Equals(false, rec(1, 2), rec(1, 3)))
		assert.Equal(t, rec(1, 2), a.Record([]string{"x", "y"}, []heap.Handle{a.Int(1), a.Int(2)}))

		other := a.Record([]string{"x", "z"}, []heap.Handle{a.Int(1), a.Int(2)})
		assert.Equal(t, a.False(), a.Equals(true, rec(1, 2), other), "different fields are different records")

		v := a.Var("v")
		withVar := a.Record([]string{"x", "y"}, []heap.Handle{a.Int(1), a.AsPoly(v)})
		assert.Equal(t, a.ArithEq(true, AtomPoly(v).Sub(ConstantInt(2))), a.Equals(true, withVar, rec(1, 2)))
	})

	t.Run("array literals compare element-wise", func(t *testing.T) {
		assert.Equal(t, a.False(), a.Equals(true, a.Array(a.Int(1)), a.Array(a.Int(1), a.Int(2))))
		assert.Equal(t, a.True(), a.Equals(true, a.Array(a.Int(1), a.Int(2)), a.Array(a.Int(1), a.Int(2))))
	})
}

func TestQuantifiers(t *testing.T) {
	a := newAlgebra()
	x, y := a.Var("x"), a.Var("y")
	body := a.Less(AtomPoly(x), AtomPoly(y))

	assert.Equal(t, a.True(), a.Forall([]heap.Handle{x}, a.True()))
	assert.Equal(t, body, a.Forall([]heap.Handle{a.Var("unused")}, body), "unused variables are dropped")

	f := a.Forall([]heap.Handle{y, x}, body)
	universal, vars, inner := a.Quantified(f)
	assert.True(t, universal)
	assert.Equal(t, []heap.Handle{x, y}, vars)
	assert.Equal(t, body, inner)

	assert.Equal(t, f, a.Forall([]heap.Handle{x}, a.Forall([]heap.Handle{y}, body)), "nested quantifiers merge")

	negated := a.Not(f)
	universal, _, inner = a.Quantified(negated)
	assert.False(t, universal)
	assert.Equal(t, a.Not(body), inner)
}

func TestTypeTests(t *testing.T) {
	a := newAlgebra()
	n := a.Int(3)
	v := a.Var("v")

	assert.Equal(t, a.True(), a.Is(n, a.TypeInt()))
	assert.Equal(t, a.False(), a.Is(n, a.TypeBool()))
	assert.Equal(t, a.True(), a.Is(v, a.TypeAny()))
	assert.Equal(t, a.False(), a.Is(v, a.TypeVoid()))

	isNull := a.Is(v, a.TypeNull())
	require.Equal(t, OpIs, a.Op(isNull))
	notNull := a.Not(isNull)
	assert.Equal(t, a.TypeNot(a.TypeNull()), a.Children(notNull)[1])
	assert.Equal(t, isNull, a.Not(notNull))
}

func TestTypeConstructors(t *testing.T) {
	a := newAlgebra()
	i, b, null := a.TypeInt(), a.TypeBool(), a.TypeNull()

	assert.Equal(t, a.TypeUnion(i, null), a.TypeUnion(null, i, null))
	assert.Equal(t, i, a.TypeUnion(i, a.TypeVoid()))
	assert.Equal(t, a.TypeAny(), a.TypeUnion(i, a.TypeNot(i)))
	assert.Equal(t, a.TypeVoid(), a.TypeIntersection(b, a.TypeNot(b)))
	assert.Equal(t, i, a.TypeIntersection(i, a.TypeAny()))
	assert.Equal(t, i, a.TypeNot(a.TypeNot(i)))
	assert.Equal(t, a.TypeVoid(), a.TypeRecord([]string{"x"}, []heap.Handle{a.TypeVoid()}))

	rec := a.TypeRecord([]string{"y", "x"}, []heap.Handle{b, i})
	assert.Equal(t, []string{"x", "y"}, a.TypeRecordFields(rec))
	assert.Equal(t, rec, a.TypeOf(a.ASTType(rec)), "AST conversion round-trips")
}

func TestExpressionFolding(t *testing.T) {
	a := newAlgebra()
	xs := a.Var("xs")
	one, two := a.Int(1), a.Int(2)
	lit := a.Array(one, two)

	assert.Equal(t, two, a.Index(lit, a.Int(1)))
	assert.Equal(t, a.Int(2), a.Length(lit))
	assert.Equal(t, OpIndex, a.Op(a.Index(lit, a.Int(5))), "out of range indices are not folded")

	updated := a.Update(xs, one, two)
	assert.Equal(t, two, a.Index(updated, one))
	assert.Equal(t, a.Index(xs, a.Int(0)), a.Index(updated, a.Int(0)))
	assert.Equal(t, a.Length(xs), a.Length(updated))
	assert.Equal(t, a.Array(one, one), a.Update(lit, one, one))

	assert.Equal(t, a.Array(one, one, one), a.ArrayGen(one, a.Int(3)))
	n := a.AsPoly(a.Var("n"))
	gen := a.ArrayGen(one, n)
	assert.Equal(t, n, a.Length(gen))
	assert.Equal(t, one, a.Index(gen, a.AsPoly(a.Var("i"))))

	rec := a.Record([]string{"f"}, []heap.Handle{xs})
	assert.Equal(t, xs, a.Field(rec, "f"))
	assert.Equal(t, OpField, a.Op(a.Field(rec, "g")))
}

func TestString(t *testing.T) {
	a := newAlgebra()
	x := AtomPoly(a.Var("x"))
	xs := a.Var("xs")

	assert.Equal(t, "0 <= -x + 2", a.String(a.Less(x, ConstantInt(3))))
	assert.Equal(t, "xs[0]", a.String(a.Index(xs, a.Int(0))))
	assert.Equal(t, "0 <= |xs| - 1", a.String(a.Less(ConstantInt(0), a.AsPolynomial(a.Length(xs)))))
	assert.Equal(t, "true", a.String(a.True()))
}
