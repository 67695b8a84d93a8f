package assay

import (
	"context"
	"fmt"
	"time"

	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/prover"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Report is the result of checking a single assertion
type Report struct {
	Assertion *ast.Assertion
	prover.Result
	Elapsed time.Duration
}

// Check proves every assertion of m, running at most cfg.Parallelism proofs at once.
// Each assertion is translated into its own heap.
// Reports are returned in the order the assertions appear in the module.
func Check(ctx context.Context, m *Module, cfg prover.Config) ([]Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	assertions := m.syntax.Assertions
	reports := make([]Report, len(assertions))

	g := new(errgroup.Group)
	g.SetLimit(cfg.Parallelism)
	for i, a := range assertions {
		g.Go(func() error {
			reports[i] = m.prove(ctx, cfg, a)
			return nil
		})
	}
	// proofs report their failures in the Result
	_ = g.Wait()

	summary := Summarize(reports)
	moduleLogger.Info("checked module",
		"name", m.name,
		"valid", summary.Valid,
		"exhausted", summary.Exhausted,
		"errors", summary.Errors,
	)
	return reports, nil
}

// Prove checks the assertion of m called name
func Prove(ctx context.Context, m *Module, cfg prover.Config, name string) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, errors.Wrap(err, "invalid config")
	}
	a, ok := m.Assertion(name)
	if !ok {
		return Report{}, errors.Errorf("module %s has no assertion %s", m.name, name)
	}
	return m.prove(ctx, cfg, a), nil
}

func (m *Module) prove(ctx context.Context, cfg prover.Config, a *ast.Assertion) Report {
	start := time.Now()
	res := prover.Check(ctx, cfg, m.decls, m.oracle, a)
	return Report{Assertion: a, Result: res, Elapsed: time.Since(start)}
}

func (r Report) String() string {
	switch r.Outcome {
	case prover.Valid:
		return fmt.Sprintf("ok    %s (%d steps, %s)", r.Assertion.Name, r.Steps, r.Elapsed)
	case prover.Exhausted:
		return fmt.Sprintf("FAIL  %s: %s", r.Assertion.Name, r.Reason)
	}
	msg := "<nil>"
	if e, ok := aerr.As(r.Err); ok {
		msg = aerr.FormatWithCode(e)
	} else if r.Err != nil {
		msg = r.Err.Error()
	}
	return fmt.Sprintf("ERROR %s at %v: %s", r.Assertion.Name, r.Assertion.Range, msg)
}

// Summary counts reports by outcome
type Summary struct {
	Valid, Exhausted, Errors int
}

func Summarize(reports []Report) Summary {
	var s Summary
	for _, r := range reports {
		switch r.Outcome {
		case prover.Valid:
			s.Valid++
		case prover.Exhausted:
			s.Exhausted++
		default:
			s.Errors++
		}
	}
	return s
}

// OK is true when every assertion was shown valid
func (s Summary) OK() bool {
	return s.Exhausted == 0 && s.Errors == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%d valid, %d exhausted, %d errors", s.Valid, s.Exhausted, s.Errors)
}
