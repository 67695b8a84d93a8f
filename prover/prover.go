// Package prover drives the proof search for a single goal.
//
// The goal is negated and becomes the root of a proof. The linear rules are
// applied to every newly active truth until nothing changes, and then the
// first disjunction is split; the goal is valid when every branch ends up
// knowing false.
package prover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/internal/log"
	"github.com/cottand/assay/proof"
	"github.com/cottand/assay/rules"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "prover")

type Outcome uint8

const (
	// Valid means every branch of the proof reached a contradiction
	Valid Outcome = iota + 1
	// Exhausted means the search stopped without refuting some branch
	Exhausted
	// Error means the goal could not be translated or a rule failed
	Error
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Exhausted:
		return "exhausted"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

type Result struct {
	Outcome Outcome
	// Proof is nil when the goal could not be translated
	Proof *proof.Proof
	// Steps is the number of rule applications that made progress
	Steps int
	// Reason explains an Exhausted outcome
	Reason string
	Err    error
}

// Prover runs a fixed set of rules under a Config
type Prover struct {
	cfg       Config
	linear    []proof.LinearRule
	nonLinear []proof.NonLinearRule
}

// New returns a Prover using the rules not disabled by cfg, in the order given
func New(cfg Config, linear []proof.LinearRule, nonLinear []proof.NonLinearRule) *Prover {
	p := &Prover{cfg: cfg}
	for _, r := range linear {
		if !cfg.disabled(r.Name()) {
			p.linear = append(p.linear, r)
		}
	}
	for _, r := range nonLinear {
		if !cfg.disabled(r.Name()) {
			p.nonLinear = append(p.nonLinear, r)
		}
	}
	return p
}

// Check translates assertion into a fresh heap and proves it with the default rules
func Check(ctx context.Context, cfg Config, resolver rules.Resolver, oracle rules.TypeOracle, assertion *ast.Assertion) Result {
	alg := formula.New(heap.New())
	tr := formula.NewTranslator(alg, resolver)
	goal, err := tr.Assertion(assertion)
	if err != nil {
		return Result{Outcome: Error, Err: err}
	}
	linear, nonLinear := rules.Default(&rules.Env{
		Translator: tr,
		Oracle:     oracle,
		Limits:     rules.Limits{MaxInstantiations: cfg.MaxInstantiations},
	})
	res := New(cfg, linear, nonLinear).Prove(ctx, alg, goal)
	logger.Info("checked assertion",
		slog.String("name", assertion.Name),
		slog.String("outcome", res.Outcome.String()),
		slog.Int("steps", res.Steps),
	)
	return res
}

// Prove tries to show goal valid by refuting its negation
func (p *Prover) Prove(ctx context.Context, alg *formula.Algebra, goal formula.Formula) Result {
	negated := alg.Not(alg.Simplify(goal))
	pr := proof.New(alg, negated)
	logger.Debug("proving", slog.Any("goal", formula.Slog(alg, goal)))

	srch := &search{Prover: p, ctx: ctx}
	refuted, err := srch.explore(pr.Root(), nil, 0)
	res := Result{Proof: pr, Steps: srch.steps}

	var stop *stopped
	switch {
	case errors.As(err, &stop):
		res.Outcome, res.Reason = Exhausted, stop.reason
	case err != nil:
		res.Outcome, res.Err = Error, err
	case refuted:
		res.Outcome = Valid
	default:
		res.Outcome, res.Reason = Exhausted, srch.reason
	}
	return res
}

// stopped is returned when the search ran out of budget
type stopped struct {
	reason string
}

func (s *stopped) Error() string { return s.reason }

type search struct {
	*Prover
	ctx    context.Context
	steps  int
	reason string
}

// explore reports whether every branch below s reaches a contradiction.
// Only truths added after since are assumed to be still unprocessed.
func (s *search) explore(state, since *proof.State, depth int) (bool, error) {
	state, err := s.saturate(state, since)
	if err != nil {
		return false, err
	}
	if state.Contradiction() {
		return true, nil
	}
	if s.cfg.MaxSplitDepth > 0 && depth >= s.cfg.MaxSplitDepth {
		s.reason = fmt.Sprintf("split depth %d reached at state #%d", depth, state.ID())
		return false, nil
	}
	for _, truth := range state.Active() {
		for _, rule := range s.nonLinear {
			branches, err := rule.Split(state, truth)
			if err != nil {
				return false, errors.Wrapf(err, "%s on state #%d", rule.Name(), state.ID())
			}
			if branches == nil {
				continue
			}
			s.steps++
			for _, branch := range branches {
				refuted, err := s.explore(branch, state, depth+1)
				if err != nil || !refuted {
					return false, err
				}
			}
			return true, nil
		}
	}
	s.reason = fmt.Sprintf("no rule applies to state #%d", state.ID())
	return false, nil
}

// saturate applies the linear rules to the truths added since since until
// no rule makes progress or false is known
func (s *search) saturate(state, since *proof.State) (*proof.State, error) {
	for {
		additions := state.Delta(since).Additions()
		if len(additions) == 0 {
			return state, nil
		}
		since = state
		for _, truth := range additions {
			for _, rule := range s.linear {
				if !state.IsActive(truth) {
					break
				}
				if err := s.ctx.Err(); err != nil {
					return nil, &stopped{reason: "cancelled: " + err.Error()}
				}
				next, err := rule.Apply(state, truth)
				if err != nil {
					return nil, errors.Wrapf(err, "%s on state #%d", rule.Name(), state.ID())
				}
				if next == state {
					continue
				}
				s.steps++
				state = next
				if state.Contradiction() {
					return state, nil
				}
				if s.cfg.MaxSteps > 0 && state.Proof().Len() >= s.cfg.MaxSteps {
					return nil, &stopped{reason: fmt.Sprintf("step limit %d reached", s.cfg.MaxSteps)}
				}
			}
		}
	}
}
