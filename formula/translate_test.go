package formula

import (
	"testing"

	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
	c "github.com/cottand/assay/frontend/construct"
	"github.com/cottand/assay/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// declarations is a minimal Resolver over a fixed list
type declarations []ast.Decl

func (d declarations) ResolveAll(name string, kind ast.DeclKind) []ast.Decl {
	var out []ast.Decl
	for _, decl := range d {
		if decl.DeclName() == name && decl.DeclKind() == kind {
			out = append(out, decl)
		}
	}
	return out
}

func (d declarations) ResolveExactly(name string, kind ast.DeclKind) (ast.Decl, error) {
	switch found := d.ResolveAll(name, kind); len(found) {
	case 0:
		return nil, aerr.New(aerr.NewNotFound{Positioner: ast.Range{}, Name: name, Kind: kind})
	case 1:
		return found[0], nil
	default:
		return nil, aerr.New(aerr.NewAmbiguous{Positioner: ast.Range{}, Name: name, Kind: kind, Candidates: len(found)})
	}
}

var testDecls = declarations{
	c.Macro("positive", []ast.Param{c.P("x", c.TInt())}, c.Gt(c.Var("x"), c.Int(0))),
	c.Function("abs", []ast.Param{c.P("x", c.TInt())}, []ast.Param{c.P("r", c.TInt())}, nil,
		[]ast.Expr{c.Ge(c.Var("r"), c.Int(0))}),
	c.Function("isEven", []ast.Param{c.P("x", c.TInt())}, []ast.Param{c.P("r", c.TBool())}, nil, nil),
	c.TypeDecl("nat", c.P("n", c.TInt()), c.Ge(c.Var("n"), c.Int(0))),
	c.Macro("twice", nil, c.Bool(true)),
	c.Macro("twice", nil, c.Bool(false)),
}

func newTranslator() *Translator {
	return NewTranslator(newAlgebra(), testDecls)
}

func TestTranslateRecordEquality(t *testing.T) {
	tr := newTranslator()
	f, err := tr.Assertion(c.Assert("records",
		c.Eq(c.Record("x", c.Int(1), "y", c.Int(2)), c.Record("x", c.Int(1), "y", c.Int(3)))))
	require.NoError(t, err)
	assert.Equal(t, tr.Algebra().False(), f)
}

func TestTranslateNegation(t *testing.T) {
	tr := newTranslator()
	a := tr.Algebra()
	scope := NewScope().
		With("x", Binding{Handle: a.AsPoly(a.Var("x")), Type: ast.IntType}).
		With("p", Binding{Handle: a.Var("p"), Type: ast.BoolType})
	x := AtomPoly(a.Var("x"))
	p := boolVar(a, "p")

	testCases := []struct {
		name     string
		expr     ast.Expr
		sign     bool
		expected Formula
	}{
		{"x < 3", c.Lt(c.Var("x"), c.Int(3)), true, a.Less(x, ConstantInt(3))},
		{"!(x < 3)", c.Lt(c.Var("x"), c.Int(3)), false, a.LessEq(ConstantInt(3), x)},
		{"!!(x > 0)", c.Not(c.Not(c.Gt(c.Var("x"), c.Int(0)))), true, a.Less(ConstantInt(0), x)},
		{"!(p ==> x >= 0)", c.Implies(c.Var("p"), c.Ge(c.Var("x"), c.Int(0))), false,
			a.And(p, a.Less(x, ConstantInt(0)))},
		{"!(p && x == 1)", c.And(c.Var("p"), c.Eq(c.Var("x"), c.Int(1))), false,
			a.Or(a.Not(p), a.ArithEq(false, x.Sub(ConstantInt(1))))},
		{"p != true", c.Neq(c.Var("p"), c.Bool(true)), true, a.Not(p)},
		{"x != 1", c.Neq(c.Var("x"), c.Int(1)), true, a.ArithEq(false, x.Sub(ConstantInt(1)))},
		{"x*2 - x == x", c.Eq(c.Sub(c.Mul(c.Var("x"), c.Int(2)), c.Var("x")), c.Var("x")), true, a.True()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := tr.Formula(scope, tc.expr, tc.sign)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f, "expected %s, got %s", a.String(tc.expected), a.String(f))
		})
	}
}

func TestTranslateQuantifiers(t *testing.T) {
	tr := newTranslator()
	a := tr.Algebra()

	t.Run("negated universal is existential", func(t *testing.T) {
		body := c.Or(c.Ge(c.Var("x"), c.Int(0)), c.Lt(c.Var("x"), c.Int(0)))
		f, err := tr.Formula(NewScope(), c.Forall([]ast.Param{c.P("x", c.TInt())}, body), false)
		require.NoError(t, err)

		universal, vars, inner := a.Quantified(f)
		assert.False(t, universal)
		assert.Equal(t, []heap.Handle{a.Var("x")}, vars)
		x := AtomPoly(a.Var("x"))
		assert.Equal(t, a.And(a.Less(x, ConstantInt(0)), a.LessEq(ConstantInt(0), x)), inner)
	})

	t.Run("non-primitive parameters are guarded", func(t *testing.T) {
		body := c.Ge(c.Len(c.Var("xs")), c.Int(0))
		f, err := tr.Formula(NewScope(), c.Forall([]ast.Param{c.P("xs", c.TArray(c.TInt()))}, body), true)
		require.NoError(t, err)

		xs := a.Var("xs")
		guard := a.Is(xs, a.TypeArray(a.TypeInt()))
		expected := a.Forall([]heap.Handle{xs}, a.Or(a.Not(guard), a.LessEq(ConstantInt(0), a.AsPolynomial(a.Length(xs)))))
		assert.Equal(t, expected, f)
	})

	t.Run("nominal integers are polynomials", func(t *testing.T) {
		body := c.Gt(c.Add(c.Var("n"), c.Int(1)), c.Int(0))
		f, err := tr.Formula(NewScope(), c.Exists([]ast.Param{c.P("n", c.TNamed("nat"))}, body), true)
		require.NoError(t, err)

		n := a.Var("n")
		expected := a.Exists([]heap.Handle{n}, a.And(
			a.Is(n, a.TypeNominal("nat")),
			a.Less(ConstantInt(0), AtomPoly(n).Add(ConstantInt(1))),
		))
		assert.Equal(t, expected, f)
	})

	t.Run("shadowing names are renamed", func(t *testing.T) {
		inner := c.Exists([]ast.Param{c.P("x", c.TInt())}, c.Lt(c.Var("x"), c.Int(0)))
		outer := c.Forall([]ast.Param{c.P("x", c.TInt())}, c.And(c.Gt(c.Var("x"), c.Int(0)), inner))
		f, err := tr.Formula(NewScope(), outer, true)
		require.NoError(t, err)
		assert.Contains(t, a.String(f), "x'")
	})
}

func TestTranslateCalls(t *testing.T) {
	tr := newTranslator()
	a := tr.Algebra()
	scope := NewScope().With("y", Binding{Handle: a.AsPoly(a.Var("y")), Type: ast.IntType})

	t.Run("macros are invocations", func(t *testing.T) {
		f, err := tr.Formula(scope, c.Not(c.Call("positive", c.Var("y"))), true)
		require.NoError(t, err)
		assert.Equal(t, a.Invoke(false, "positive", a.AsPoly(a.Var("y"))), f)
	})

	t.Run("int functions are polynomial atoms", func(t *testing.T) {
		h, typ, err := tr.Expr(scope, c.Call("abs", c.Var("y")))
		require.NoError(t, err)
		assert.Equal(t, ast.IntType, typ)
		assert.Equal(t, a.AsPoly(a.Call("abs", a.AsPoly(a.Var("y")))), h)
	})

	t.Run("bool functions are compared to true", func(t *testing.T) {
		f, err := tr.Formula(scope, c.Call("isEven", c.Var("y")), false)
		require.NoError(t, err)
		assert.Equal(t, a.Equals(true, a.Call("isEven", a.AsPoly(a.Var("y"))), a.False()), f)
	})

	t.Run("unknown callee", func(t *testing.T) {
		_, err := tr.Formula(scope, c.Call("missing", c.Var("y")), true)
		require.Error(t, err)
		assert.True(t, aerr.IsResolution(err))
		e, ok := aerr.As(err)
		require.True(t, ok)
		assert.Equal(t, aerr.NotFound, e.Code())
	})

	t.Run("ambiguous macro", func(t *testing.T) {
		_, err := tr.Formula(scope, c.Call("twice"), true)
		e, ok := aerr.As(err)
		require.True(t, ok)
		assert.Equal(t, aerr.Ambiguous, e.Code())
	})

	t.Run("arity", func(t *testing.T) {
		_, err := tr.Formula(scope, c.Call("positive"), true)
		e, ok := aerr.As(err)
		require.True(t, ok)
		assert.Equal(t, aerr.ArityMismatch, e.Code())
	})
}

func TestTranslateErrors(t *testing.T) {
	tr := newTranslator()

	_, err := tr.Assertion(c.Assert("free", c.Gt(c.Var("x"), c.Int(0))))
	e, ok := aerr.As(err)
	require.True(t, ok)
	assert.Equal(t, aerr.UndefinedVariable, e.Code())

	_, err = tr.Assertion(c.Assert("int as bool", c.And(c.Int(1), c.Bool(true))))
	e, ok = aerr.As(err)
	require.True(t, ok)
	assert.Equal(t, aerr.TypeMismatch, e.Code())
}

func TestBind(t *testing.T) {
	tr := newTranslator()
	a := tr.Algebra()
	macro := testDecls[0].(*ast.MacroDecl)
	arg := a.AsPoly(a.Var("z"))

	f, err := tr.Formula(tr.Bind(macro.Params, []heap.Handle{arg}), macro.Body, true)
	require.NoError(t, err)
	assert.Equal(t, a.Less(ConstantInt(0), AtomPoly(a.Var("z"))), f)
}
