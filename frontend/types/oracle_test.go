package types

import (
	"testing"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
	c "github.com/cottand/assay/frontend/construct"
	"github.com/cottand/assay/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeclarations() *Declarations {
	return NewDeclarations(
		c.TypeDecl("nat", c.P("n", c.TInt()), c.Ge(c.Var("n"), c.Int(0))),
		c.TypeDecl("pos", c.P("p", c.TNamed("nat")), c.Gt(c.Var("p"), c.Int(0))),
		c.TypeDecl("id", c.P("i", c.TInt())),
		c.TypeDecl("point", c.P("p", c.TRecord("x", c.TInt(), "y", c.TInt()))),
		c.TypeDecl("list", c.P("l", c.TUnion(c.TNull(), c.TRecord("head", c.TInt(), "tail", c.TNamed("list"))))),
		c.Macro("m", nil, c.Bool(true)),
		c.Macro("dup", nil, c.Bool(true)),
		c.Macro("dup", nil, c.Bool(false)),
	)
}

func TestDeclarations(t *testing.T) {
	decls := testDeclarations()

	decl, err := decls.ResolveExactly("nat", ast.DeclType)
	require.NoError(t, err)
	assert.Equal(t, "nat", decl.DeclName())

	_, err = decls.ResolveExactly("nat", ast.DeclMacro)
	require.Error(t, err)
	e, ok := aerr.As(err)
	require.True(t, ok)
	assert.Equal(t, aerr.NotFound, e.Code())

	_, err = decls.ResolveExactly("dup", ast.DeclMacro)
	e, ok = aerr.As(err)
	require.True(t, ok)
	assert.Equal(t, aerr.Ambiguous, e.Code())
	assert.Len(t, decls.ResolveAll("dup", ast.DeclMacro), 2)
	assert.Empty(t, decls.ResolveAll("missing", ast.DeclFunction))
}

func TestIsRawSubtype(t *testing.T) {
	o := NewOracle(testDeclarations())
	testCases := []struct {
		name       string
		super, sub ast.Type
		expected   bool
	}{
		{"reflexive", c.TInt(), c.TInt(), true},
		{"union member", c.TUnion(c.TInt(), c.TNull()), c.TInt(), true},
		{"union is wider", c.TInt(), c.TUnion(c.TInt(), c.TNull()), false},
		{"any", c.TAny(), c.TRecord("x", c.TInt()), true},
		{"void", c.TArray(c.TInt()), c.TVoid(), true},
		{"nothing but void", c.TVoid(), c.TInt(), false},
		{"covariant arrays", c.TArray(c.TUnion(c.TInt(), c.TNull())), c.TArray(c.TInt()), true},
		{"arrays are not contravariant", c.TArray(c.TInt()), c.TArray(c.TUnion(c.TInt(), c.TNull())), false},
		{"closed records", c.TRecord("x", c.TInt()), c.TRecord("x", c.TInt(), "y", c.TInt()), false},
		{"record fields", c.TRecord("x", c.TUnion(c.TInt(), c.TBool())), c.TRecord("x", c.TBool()), true},
		{"negation", c.TNot(c.TInt()), c.TNull(), true},
		{"negation excludes", c.TNot(c.TInt()), c.TInt(), false},
		{"intersection", c.TInt(), c.TIntersection(c.TUnion(c.TInt(), c.TNull()), c.TNot(c.TNull())), true},
		{"nominal is its underlying type", c.TInt(), c.TNamed("nat"), true},
		{"invariants are ignored", c.TNamed("nat"), c.TInt(), true},
		{"nominal records", c.TRecord("x", c.TInt(), "y", c.TInt()), c.TNamed("point"), true},
		{"recursive types", c.TUnion(c.TNull(), c.TRecord("head", c.TInt(), "tail", c.TAny())), c.TNamed("list"), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := o.IsRawSubtype(tc.super, tc.sub)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestIsSubtype(t *testing.T) {
	o := NewOracle(testDeclarations())
	testCases := []struct {
		name       string
		super, sub ast.Type
		expected   bool
	}{
		{"nat is an int", c.TInt(), c.TNamed("nat"), true},
		{"an int is not a nat", c.TNamed("nat"), c.TInt(), false},
		{"pos is a nat", c.TNamed("nat"), c.TNamed("pos"), true},
		{"a nat is not a pos", c.TNamed("pos"), c.TNamed("nat"), false},
		{"optional nat", c.TUnion(c.TNamed("nat"), c.TNull()), c.TNamed("nat"), true},
		{"no invariant to respect", c.TNamed("id"), c.TInt(), true},
		{"arrays of nat", c.TArray(c.TNamed("nat")), c.TArray(c.TNamed("pos")), true},
		{"void is everything", c.TNamed("pos"), c.TVoid(), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := o.IsSubtype(tc.super, tc.sub)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestIntersect(t *testing.T) {
	o := NewOracle(testDeclarations())
	testCases := []struct {
		name     string
		a, b     ast.Type
		expected string
	}{
		{"complement", c.TInt(), c.TNot(c.TInt()), "void"},
		{"disjoint primitives", c.TInt(), c.TBool(), "void"},
		{"narrower wins", c.TUnion(c.TInt(), c.TNull()), c.TInt(), "int"},
		{"disjoint records", c.TRecord("x", c.TInt()), c.TRecord("x", c.TBool()), "void"},
		{"records with other fields", c.TRecord("x", c.TInt()), c.TRecord("y", c.TInt()), "void"},
		{"nominal against its complement", c.TNamed("nat"), c.TNot(c.TInt()), "void"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := o.Intersect(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ast.TypeString(got))
		})
	}

	overlapping, err := o.Intersect(c.TUnion(c.TInt(), c.TNull()), c.TUnion(c.TBool(), c.TNull()))
	require.NoError(t, err)
	empty, err := o.IsSubtype(ast.VoidType, overlapping)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestUnknownNominal(t *testing.T) {
	o := NewOracle(testDeclarations())
	_, err := o.IsRawSubtype(c.TInt(), c.TNamed("missing"))
	require.Error(t, err)
	assert.True(t, aerr.IsResolution(err))
}

func TestExtractTypeInvariant(t *testing.T) {
	decls := testDeclarations()
	o := NewOracle(decls)
	alg := formula.New(heap.New())
	tr := formula.NewTranslator(alg, decls)
	x := alg.AsPoly(alg.Var("x"))

	inv, ok, err := o.ExtractTypeInvariant(tr, c.TNamed("nat"), x)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0 <= x", alg.String(inv))

	_, ok, err = o.ExtractTypeInvariant(tr, c.TNamed("id"), x)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = o.ExtractTypeInvariant(tr, c.TInt(), x)
	require.NoError(t, err)
	assert.False(t, ok)
}
