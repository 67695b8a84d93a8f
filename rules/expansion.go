package rules

import (
	"log/slog"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/proof"
)

// MacroExpansion replaces macro invocations by their bodies, negated for
// negative invocations, and asserts the contract of every function called
// by an atomic truth.
type MacroExpansion struct {
	env *Env
}

func (MacroExpansion) Name() string { return "MacroExpansion" }

func (r MacroExpansion) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := r.env.alg()
	op := a.Op(truth)
	if op == formula.OpInvoke {
		return r.expand(s, truth)
	}
	if !formula.IsAtomic(op) {
		return s, nil
	}
	for _, call := range a.SubTerms(truth, formula.OpCall) {
		contract, err := r.contract(call)
		if err != nil {
			return nil, err
		}
		s = s.Infer(r, contract, truth)
	}
	return s, nil
}

func (r MacroExpansion) expand(s *proof.State, truth formula.Formula) (*proof.State, error) {
	tr := r.env.Translator
	name, sign, args := r.env.alg().Invocation(truth)
	decl, err := tr.Resolver().ResolveExactly(name, ast.DeclMacro)
	if err != nil {
		return nil, err
	}
	macro := decl.(*ast.MacroDecl)
	if len(macro.Params) != len(args) {
		return nil, aerr.New(aerr.NewArityMismatch{Positioner: macro, Name: name, Expected: len(macro.Params), Found: len(args)})
	}
	body, err := tr.Formula(tr.Bind(macro.Params, args), macro.Body, sign)
	if err != nil {
		return nil, err
	}
	logger.Debug("expanded macro", slog.String("name", name), slog.Bool("sign", sign), slog.Any("body", formula.Slog(r.env.alg(), body)))
	return s.Subsume(r, truth, []formula.Formula{body}), nil
}

// contract is requires ==> ensures, with the return value bound to call
func (r MacroExpansion) contract(call heap.Handle) (formula.Formula, error) {
	tr := r.env.Translator
	a := r.env.alg()
	item := a.Item(call)
	name := item.Payload.(string)
	decl, err := tr.Resolver().ResolveExactly(name, ast.DeclFunction)
	if err != nil {
		return heap.Nil, err
	}
	fn := decl.(*ast.FunctionDecl)
	if len(fn.Params) != len(item.Children) {
		return heap.Nil, aerr.New(aerr.NewArityMismatch{Positioner: fn, Name: name, Expected: len(fn.Params), Found: len(item.Children)})
	}
	params := append(append([]ast.Param{}, fn.Params...), fn.Returns...)
	args := append([]heap.Handle{}, item.Children...)
	if len(fn.Returns) > 0 {
		args = append(args, call)
	}
	scope := tr.Bind(params, args)

	conjunction := func(exprs []ast.Expr) (formula.Formula, error) {
		parts := make([]formula.Formula, len(exprs))
		for i, e := range exprs {
			f, err := tr.Formula(scope, e, true)
			if err != nil {
				return heap.Nil, err
			}
			parts[i] = f
		}
		return a.And(parts...), nil
	}
	requires, err := conjunction(fn.Requires)
	if err != nil {
		return heap.Nil, err
	}
	ensures, err := conjunction(fn.Ensures)
	if err != nil {
		return heap.Nil, err
	}
	return a.Implies(requires, ensures), nil
}

// TypeTestExpansion unfolds a type test into the tests and invariants it implies
type TypeTestExpansion struct {
	env *Env
}

func (TypeTestExpansion) Name() string { return "TypeTestExpansion" }

func (r TypeTestExpansion) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := r.env.alg()
	if a.Op(truth) != formula.OpIs {
		return s, nil
	}
	children := a.Children(truth)
	e, t := children[0], children[1]
	typ := a.Item(t)

	switch typ.Op {
	case formula.OpTypeNominal:
		facts, err := r.nominal(e, t)
		if err != nil {
			return nil, err
		}
		return s.InferAll(r, facts, truth), nil

	case formula.OpTypeRecord:
		var facts []formula.Formula
		for i, name := range a.TypeRecordFields(t) {
			field, _, err := r.env.Translator.Typed(a.Field(e, name), a.ASTType(typ.Children[i]))
			if err != nil {
				return nil, err
			}
			facts = append(facts, a.Is(field, typ.Children[i]))
		}
		return s.InferAll(r, facts, truth), nil

	case formula.OpTypeArray:
		elemType := typ.Children[0]
		iVar := a.Fresh("i")
		i := a.PolyOf(a.AsPoly(iVar))
		elem, _, err := r.env.Translator.Typed(a.Index(e, a.Poly(i)), a.ASTType(elemType))
		if err != nil {
			return nil, err
		}
		inRange := a.And(a.Ineq(i), a.Less(i, a.PolyOf(a.Length(e))))
		elems := a.Forall([]heap.Handle{iVar}, a.Implies(inRange, a.Is(elem, elemType)))
		return s.Infer(r, elems, truth), nil

	case formula.OpTypeUnion:
		return s.Subsume(r, truth, []formula.Formula{a.Or(r.tests(e, typ.Children, false)...)}), nil

	case formula.OpTypeIntersection:
		return s.Subsume(r, truth, []formula.Formula{a.And(r.tests(e, typ.Children, false)...)}), nil

	case formula.OpTypeNegation:
		negated := a.Item(typ.Children[0])
		switch negated.Op {
		case formula.OpTypeUnion:
			return s.Subsume(r, truth, []formula.Formula{a.And(r.tests(e, negated.Children, true)...)}), nil
		case formula.OpTypeIntersection:
			return s.Subsume(r, truth, []formula.Formula{a.Or(r.tests(e, negated.Children, true)...)}), nil
		case formula.OpTypeNominal:
			facts, err := r.nominal(e, typ.Children[0])
			if err != nil {
				return nil, err
			}
			return s.Infer(r, a.Not(a.And(facts...)), truth), nil
		}
	}
	return s, nil
}

func (r TypeTestExpansion) tests(e heap.Handle, types []heap.Handle, negate bool) []formula.Formula {
	a := r.env.alg()
	out := make([]formula.Formula, len(types))
	for i, t := range types {
		if negate {
			t = a.TypeNot(t)
		}
		out[i] = a.Is(e, t)
	}
	return out
}

// nominal is what e is T means for a declared type T: e has the declared
// underlying type and satisfies the invariant
func (r TypeTestExpansion) nominal(e, t heap.Handle) ([]formula.Formula, error) {
	a := r.env.alg()
	tr := r.env.Translator
	nominal := a.ASTType(t).(*ast.NominalType)
	decl, err := tr.Resolver().ResolveExactly(nominal.Name, ast.DeclType)
	if err != nil {
		return nil, err
	}
	facts := []formula.Formula{a.Is(e, a.TypeOf(decl.(*ast.TypeDecl).Var.Type))}
	invariant, ok, err := r.env.Oracle.ExtractTypeInvariant(tr, nominal, e)
	if err != nil {
		return nil, err
	}
	if ok {
		facts = append(facts, invariant)
	}
	return facts, nil
}

// TypeTestClosure derives false from two tests of the same expression whose
// types do not intersect
type TypeTestClosure struct {
	env *Env
}

func (TypeTestClosure) Name() string { return "TypeTestClosure" }

func (r TypeTestClosure) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := r.env.alg()
	if a.Op(truth) != formula.OpIs {
		return s, nil
	}
	children := a.Children(truth)
	e, t := children[0], children[1]
	for _, other := range others(s, truth) {
		if a.Op(other) != formula.OpIs || a.Children(other)[0] != e {
			continue
		}
		intersection, err := r.env.Oracle.Intersect(a.ASTType(t), a.ASTType(a.Children(other)[1]))
		if err != nil {
			return nil, err
		}
		empty, err := r.env.Oracle.IsSubtype(ast.VoidType, intersection)
		if err != nil {
			return nil, err
		}
		if empty {
			return s.Infer(r, a.False(), truth, other), nil
		}
	}
	return s, nil
}
