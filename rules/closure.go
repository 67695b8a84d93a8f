package rules

import (
	"math/big"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/proof"
)

// InequalityClosure combines a new bound with every active one by
// Fourier-Motzkin elimination of the terms on which their signs disagree.
// Equalities count as two bounds.
type InequalityClosure struct{}

func (InequalityClosure) Name() string { return "InequalityClosure" }

func (r InequalityClosure) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	fresh := bounds(a, truth)
	if len(fresh) == 0 {
		return s, nil
	}
	var derived, deps []formula.Formula
	for _, other := range others(s, truth) {
		used := false
		for _, q := range bounds(a, other) {
			for _, p := range fresh {
				for _, combined := range eliminate(p, q) {
					f := a.Ineq(combined)
					if f == a.False() {
						return s.Infer(r, f, truth, other), nil
					}
					if f != a.True() {
						derived = append(derived, f)
						used = true
					}
				}
			}
		}
		if used {
			deps = append(deps, other)
		}
	}
	return s.InferAll(r, derived, append([]formula.Formula{truth}, deps...)...), nil
}

// bounds returns the polynomials p such that f is 0 <= p for each of them
func bounds(a *formula.Algebra, f formula.Formula) []formula.Polynomial {
	item := a.Item(f)
	switch item.Op {
	case formula.OpIneq:
		return []formula.Polynomial{a.PolyOf(item.Children[0])}
	case formula.OpArithEq:
		if !item.Payload.(bool) {
			return nil
		}
		p := a.PolyOf(item.Children[0])
		return []formula.Polynomial{p, p.Neg()}
	case formula.OpAssign:
		if eq := a.AssignmentEquality(f); a.Op(eq) == formula.OpArithEq {
			return bounds(a, eq)
		}
	}
	return nil
}

// eliminate returns, for every term whose coefficient has opposite signs in
// p and q, the positive combination of p and q without that term. Combinations
// with more terms than both inputs are dropped.
func eliminate(p, q formula.Polynomial) []formula.Polynomial {
	limit := max(len(p.WithoutConstant().Terms), len(q.WithoutConstant().Terms))
	var out []formula.Polynomial
	for _, t := range p.WithoutConstant().Terms {
		cq := q.Coefficient(t.Atoms...)
		if cq.Sign() == 0 || cq.Sign() == t.Coefficient.Sign() {
			continue
		}
		combined := p.Scale(new(big.Int).Abs(cq)).Add(q.Scale(new(big.Int).Abs(t.Coefficient)))
		if len(combined.WithoutConstant().Terms) > limit {
			continue
		}
		out = append(out, combined)
	}
	return out
}
