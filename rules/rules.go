// Package rules is the library of inference rules the prover saturates a
// proof state with.
//
// Linear rules look at one newly active truth and return at most one new
// state; returning the input state means no progress. The only non-linear
// rule splits a disjunction into one branch per case.
package rules

import (
	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/internal/log"
	"github.com/cottand/assay/proof"
)

var logger = log.DefaultLogger.With("section", "rules")

// Resolver finds the declarations macros, functions and nominal types refer to
type Resolver = formula.Resolver

// TypeOracle answers the questions about types that the rules cannot settle syntactically
type TypeOracle interface {
	// IsSubtype reports whether every value of sub is a value of super,
	// taking type invariants into account
	IsSubtype(super, sub ast.Type) (bool, error)
	// IsRawSubtype is IsSubtype ignoring type invariants
	IsRawSubtype(super, sub ast.Type) (bool, error)
	Intersect(a, b ast.Type) (ast.Type, error)
	// ExtractTypeInvariant instantiates the invariant of t over expr.
	// The bool is false when t has no invariant.
	ExtractTypeInvariant(tr *formula.Translator, t ast.Type, expr heap.Handle) (formula.Formula, bool, error)
}

// Limits bound the rules that could otherwise produce truths forever
type Limits struct {
	MaxInstantiations int
}

// Env is what the rules of one proof attempt share
type Env struct {
	Translator *formula.Translator
	Oracle     TypeOracle
	Limits     Limits
}

func (e *Env) alg() *formula.Algebra { return e.Translator.Algebra() }

// Default returns every rule, linear ones in the order they should be tried
func Default(env *Env) ([]proof.LinearRule, []proof.NonLinearRule) {
	linear := []proof.LinearRule{
		Contradiction{},
		AndElimination{},
		ExistsElimination{},
		CongruenceClosure{},
		NotEqualsElimination{},
		StructuralEquality{},
		ArrayIndexAxiom{},
		ArrayLengthAxiom{},
		ArrayIndexCaseAnalysis{},
		MacroExpansion{env: env},
		TypeTestExpansion{env: env},
		TypeTestClosure{env: env},
		InequalityClosure{},
		QuantifierInstantiation{env: env},
	}
	return linear, []proof.NonLinearRule{OrElimination{}}
}

// others returns the active truths of s except truth
func others(s *proof.State, truth formula.Formula) []formula.Formula {
	var out []formula.Formula
	for _, f := range s.Active() {
		if f != truth {
			out = append(out, f)
		}
	}
	return out
}
