package rules

import (
	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/proof"
)

// Contradiction derives false from a truth whose negation is known
type Contradiction struct{}

func (Contradiction) Name() string { return "Contradiction" }

func (r Contradiction) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	if truth == a.False() {
		return s, nil
	}
	negated := a.Not(truth)
	if !s.IsKnown(negated) {
		return s, nil
	}
	return s.Infer(r, a.False(), truth, negated), nil
}

// AndElimination replaces a conjunction by its conjuncts
type AndElimination struct{}

func (AndElimination) Name() string { return "AndElimination" }

func (r AndElimination) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	if a.Op(truth) != formula.OpAnd {
		return s, nil
	}
	return s.Subsume(r, truth, a.Children(truth)), nil
}

// ExistsElimination replaces the variables of an existential by fresh ones
type ExistsElimination struct{}

func (ExistsElimination) Name() string { return "ExistsElimination" }

func (r ExistsElimination) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	if a.Op(truth) != formula.OpExists {
		return s, nil
	}
	_, vars, body := a.Quantified(truth)
	env := make(map[formula.Formula]formula.Formula, len(vars))
	for _, v := range vars {
		env[v] = a.Fresh(a.Name(v))
	}
	return s.Subsume(r, truth, []formula.Formula{a.Substitute(body, env)}), nil
}

// NotEqualsElimination turns p != 0 into p >= 1 || p <= -1
type NotEqualsElimination struct{}

func (NotEqualsElimination) Name() string { return "NotEqualsElimination" }

func (r NotEqualsElimination) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := s.Proof().Algebra()
	item := a.Item(truth)
	if item.Op != formula.OpArithEq || item.Payload.(bool) {
		return s, nil
	}
	p := a.PolyOf(item.Children[0])
	one := formula.ConstantInt(1)
	split := a.Or(a.Ineq(p.Sub(one)), a.Ineq(p.Neg().Sub(one)))
	return s.Subsume(r, truth, []formula.Formula{split}), nil
}

// OrElimination splits on a disjunction
type OrElimination struct{}

func (OrElimination) Name() string { return "OrElimination" }

func (r OrElimination) Split(s *proof.State, truth formula.Formula) ([]*proof.State, error) {
	if s.Proof().Algebra().Op(truth) != formula.OpOr {
		return nil, nil
	}
	return s.Split(r, truth), nil
}
