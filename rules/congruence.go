package rules

import (
	"math/big"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/proof"
)

// CongruenceClosure turns equalities into assignments and keeps every active
// truth rewritten by the active assignments.
//
// A new equality is first rewritten by the assignments already known. If that
// changes nothing it is oriented into candidate := bound, which is then
// substituted through every other active truth.
type CongruenceClosure struct{}

func (CongruenceClosure) Name() string { return "CongruenceClosure" }

func (r CongruenceClosure) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	if a.Op(truth) == formula.OpAssign {
		return r.propagate(s, truth), nil
	}

	env := make(map[heap.Handle]heap.Handle)
	var assignments []formula.Formula
	for _, f := range s.Active() {
		if a.Op(f) == formula.OpAssign {
			children := a.Children(f)
			env[children[0]] = children[1]
			assignments = append(assignments, f)
		}
	}
	if rewritten := a.Substitute(truth, env); rewritten != truth {
		return s.Subsume(r, truth, []formula.Formula{rewritten}, assignments...), nil
	}

	if assignment, ok := r.orient(a, truth); ok {
		return s.Subsume(r, truth, []formula.Formula{assignment}), nil
	}
	return s, nil
}

// propagate substitutes an assignment through the other active truths
func (r CongruenceClosure) propagate(s *proof.State, assignment formula.Formula) *proof.State {
	a := s.Proof().Algebra()
	children := a.Children(assignment)
	env := map[heap.Handle]heap.Handle{children[0]: children[1]}
	for _, f := range others(s, assignment) {
		if !s.IsActive(f) {
			continue
		}
		if rewritten := a.Substitute(f, env); rewritten != f {
			s = s.Subsume(r, f, []formula.Formula{rewritten}, assignment)
		}
	}
	return s
}

// orient picks the candidate of a positive equality: the least atom that can
// be isolated without dividing and that does not occur on the other side
func (CongruenceClosure) orient(a *formula.Algebra, truth formula.Formula) (formula.Formula, bool) {
	item := a.Item(truth)
	switch {
	case item.Op == formula.OpArithEq && item.Payload.(bool):
		p := a.PolyOf(item.Children[0])
		best, bestBound := heap.Nil, formula.Polynomial{}
		for _, term := range p.Terms {
			if len(term.Atoms) != 1 || term.Coefficient.CmpAbs(big.NewInt(1)) != 0 {
				continue
			}
			candidate := term.Atoms[0]
			if best != heap.Nil && candidate > best {
				continue
			}
			// c*x + rest == 0 with c = ±1 is x == -c*rest
			rest := p.Sub(formula.AtomPoly(candidate).Scale(term.Coefficient))
			bound := rest.Scale(new(big.Int).Neg(term.Coefficient))
			if occursIn(a, candidate, bound) {
				continue
			}
			best, bestBound = candidate, bound
		}
		if best == heap.Nil {
			return heap.Nil, false
		}
		return a.Assign(best, a.Poly(bestBound)), true

	case item.Op == formula.OpEq && item.Payload.(bool):
		l, r := item.Children[0], item.Children[1]
		for _, pair := range [2][2]heap.Handle{{l, r}, {r, l}} {
			candidate, bound := pair[0], pair[1]
			if isCandidate(a, candidate) && !a.Occurs(candidate, bound) {
				return a.Assign(candidate, bound), true
			}
		}
	}
	return heap.Nil, false
}

func occursIn(a *formula.Algebra, atom heap.Handle, p formula.Polynomial) bool {
	for _, other := range p.Atoms() {
		if other == atom || a.Occurs(atom, other) {
			return true
		}
	}
	return false
}

// isCandidate is true for the expressions an assignment may rewrite
func isCandidate(a *formula.Algebra, h heap.Handle) bool {
	switch a.Op(h) {
	case formula.OpVar, formula.OpIndex, formula.OpField, formula.OpCall:
		return true
	}
	return false
}
