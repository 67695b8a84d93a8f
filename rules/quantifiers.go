package rules

import (
	"log/slog"
	"maps"
	"math/big"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/proof"
	"github.com/hashicorp/go-set/v3"
)

// QuantifierInstantiation instantiates universal quantifiers with the ground
// terms that match one of their triggers: the array accesses, function calls
// and macro invocations of the body that mention a quantified variable.
//
// It runs both ways: a new ground truth is matched against every active
// quantifier, and a new quantifier against every active ground truth.
type QuantifierInstantiation struct {
	env *Env
}

func (QuantifierInstantiation) Name() string { return "QuantifierInstantiation" }

func (r QuantifierInstantiation) Apply(s *proof.State, truth formula.Formula) (*proof.State, error) {
	a := r.env.alg()
	switch a.Op(truth) {
	case formula.OpForall:
		for _, other := range others(s, truth) {
			if !isQuantifier(a, other) {
				s = r.instantiate(s, truth, other)
			}
		}
	case formula.OpExists:
		// skolemised before it gets here
	default:
		for _, other := range others(s, truth) {
			if a.Op(other) == formula.OpForall {
				s = r.instantiate(s, other, truth)
			}
		}
	}
	return s, nil
}

func (r QuantifierInstantiation) exhausted(s *proof.State) bool {
	limit := r.env.Limits.MaxInstantiations
	return limit > 0 && s.Proof().Count(r.Name()) >= limit
}

func (r QuantifierInstantiation) instantiate(s *proof.State, quantifier, ground formula.Formula) *proof.State {
	a := r.env.alg()
	_, vars, body := a.Quantified(quantifier)
	bound := set.From(vars)
	terms := a.SubTerms(ground, formula.OpIndex, formula.OpCall, formula.OpInvoke)
	if len(terms) == 0 {
		return s
	}
	for _, trigger := range triggers(a, bound, body) {
		for _, term := range terms {
			if r.exhausted(s) {
				logger.Debug("instantiation limit reached", slog.Int("limit", r.env.Limits.MaxInstantiations))
				return s
			}
			binding := make(map[heap.Handle]heap.Handle)
			if !match(a, bound, trigger, term, binding) {
				continue
			}
			var remaining []heap.Handle
			for _, v := range vars {
				if _, ok := binding[v]; !ok {
					remaining = append(remaining, v)
				}
			}
			instance := a.Forall(remaining, a.Substitute(body, binding))
			s = s.Infer(r, instance, quantifier, ground)
		}
	}
	return s
}

func isQuantifier(a *formula.Algebra, f formula.Formula) bool {
	op := a.Op(f)
	return op == formula.OpForall || op == formula.OpExists
}

// triggers are the sub-terms of body that can be matched against ground terms
func triggers(a *formula.Algebra, bound *set.Set[heap.Handle], body formula.Formula) []heap.Handle {
	seen := set.New[heap.Handle](8)
	var out []heap.Handle
	a.Heap().Walk(body, func(sub heap.Handle) bool {
		op := a.Op(sub)
		if formula.IsTypeOp(op) {
			return false
		}
		if op != formula.OpIndex && op != formula.OpCall && op != formula.OpInvoke {
			return true
		}
		if !seen.Insert(sub) {
			return false
		}
		if mentions(a, bound, sub) {
			out = append(out, sub)
		}
		return true
	})
	return out
}

func mentions(a *formula.Algebra, bound *set.Set[heap.Handle], h heap.Handle) bool {
	for v := range a.FreeVars(h).Items() {
		if bound.Contains(v) {
			return true
		}
	}
	return false
}

// match extends binding so that pattern with the bound variables replaced is ground
func match(a *formula.Algebra, bound *set.Set[heap.Handle], pattern, ground heap.Handle, binding map[heap.Handle]heap.Handle) bool {
	if pattern == ground {
		return true
	}
	if bound.Contains(pattern) {
		if previous, ok := binding[pattern]; ok {
			return previous == ground
		}
		binding[pattern] = ground
		return true
	}
	if !mentions(a, bound, pattern) {
		return false
	}
	p, g := a.Item(pattern), a.Item(ground)
	if p.Op == formula.OpPoly {
		return g.Op == formula.OpPoly && matchPoly(a, bound, a.PolyOf(pattern), a.PolyOf(ground), binding)
	}
	if p.Op != g.Op || len(p.Children) != len(g.Children) || !samePayload(a, pattern, ground) {
		return false
	}
	attempt := maps.Clone(binding)
	for i := range p.Children {
		if !match(a, bound, p.Children[i], g.Children[i], attempt) {
			return false
		}
	}
	maps.Copy(binding, attempt)
	return true
}

func samePayload(a *formula.Algebra, l, r heap.Handle) bool {
	if a.Op(l) == formula.OpInvoke {
		lName, _, _ := a.Invocation(l)
		rName, _, _ := a.Invocation(r)
		return lName == rName
	}
	return a.Item(l).Payload == a.Item(r).Payload
}

// matchPoly solves c*x + rest == ground for one bound variable x with c = ±1,
// rest free of bound variables
func matchPoly(a *formula.Algebra, bound *set.Set[heap.Handle], pattern, ground formula.Polynomial, binding map[heap.Handle]heap.Handle) bool {
	var x heap.Handle
	var c *big.Int
	rest := formula.Polynomial{}
	for _, t := range pattern.Terms {
		var mentioned bool
		for _, atom := range t.Atoms {
			mentioned = mentioned || mentions(a, bound, atom)
		}
		if !mentioned {
			rest = rest.Add(formula.ToNormalForm([]formula.Term{t}))
			continue
		}
		if c != nil || len(t.Atoms) != 1 || !bound.Contains(t.Atoms[0]) || t.Coefficient.CmpAbs(big.NewInt(1)) != 0 {
			return false
		}
		x, c = t.Atoms[0], t.Coefficient
	}
	if c == nil {
		return false
	}
	value := a.Poly(ground.Sub(rest).Scale(c))
	if previous, ok := binding[x]; ok {
		return previous == value
	}
	binding[x] = value
	return true
}
