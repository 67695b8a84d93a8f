// Package proof implements persistent, branchable proof states.
//
// A State is an immutable snapshot of everything known at one point of a
// proof. New states are only created by applying a rule to an existing one,
// and record their parent, the step that justified them and their delta.
// Knowledge is monotonic along the parent chain; only activity can be
// revoked, by subsumption.
package proof

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/internal/log"
)

var logger = log.DefaultLogger.With("section", "proof")

// Status of a known truth
type Status uint8

const (
	Active Status = iota + 1
	// Subsumed truths are still known, but were replaced by refined ones
	Subsumed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Subsumed:
		return "subsumed"
	default:
		return "unknown"
	}
}

// Step justifies a state: the rule that produced it and the truths it used
type Step struct {
	Rule string
	Deps []formula.Formula
}

type handleComparer struct{}

func (handleComparer) Compare(a, b heap.Handle) int { return cmp.Compare(a, b) }

type State struct {
	proof  *Proof
	parent *State
	id     int
	depth  int
	step   Step
	delta  Delta
	truths *immutable.SortedMap[heap.Handle, Status]
}

func (s *State) Proof() *Proof   { return s.proof }
func (s *State) Parent() *State  { return s.parent }
func (s *State) ID() int         { return s.id }
func (s *State) Depth() int      { return s.depth }
func (s *State) Step() Step      { return s.step }
func (s *State) OwnDelta() Delta { return s.delta }

// IsKnown reports whether f was ever established in this state or an ancestor
func (s *State) IsKnown(f formula.Formula) bool {
	if f == s.proof.alg.True() {
		return true
	}
	_, ok := s.truths.Get(f)
	return ok
}

// IsActive reports whether f is known and was not subsumed
func (s *State) IsActive(f formula.Formula) bool {
	status, ok := s.truths.Get(f)
	return ok && status == Active
}

// Contradiction reports whether false is known
func (s *State) Contradiction() bool {
	return s.IsKnown(s.proof.alg.False())
}

// Active returns the active truths sorted by handle
func (s *State) Active() []formula.Formula {
	var out []formula.Formula
	itr := s.truths.Iterator()
	for !itr.Done() {
		f, status, _ := itr.Next()
		if status == Active {
			out = append(out, f)
		}
	}
	return out
}

// Known returns every known truth with its status, sorted by handle
func (s *State) Known() ([]formula.Formula, []Status) {
	fs := make([]formula.Formula, 0, s.truths.Len())
	statuses := make([]Status, 0, s.truths.Len())
	itr := s.truths.Iterator()
	for !itr.Done() {
		f, status, _ := itr.Next()
		fs = append(fs, f)
		statuses = append(statuses, status)
	}
	return fs, statuses
}

// IsAncestor reports whether ancestor is s or one of its ancestors
func (s *State) IsAncestor(ancestor *State) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Delta composes the deltas from ancestor (exclusive) down to s.
// With a nil ancestor it is everything since the proof started.
func (s *State) Delta(ancestor *State) Delta {
	var chain []*State
	for cur := s; cur != ancestor; cur = cur.parent {
		if cur == nil {
			panic(fmt.Sprintf("proof: state %d is not an ancestor of state %d", ancestor.id, s.id))
		}
		chain = append(chain, cur)
	}
	composed := NewDelta(nil, nil)
	for _, st := range slices.Backward(chain) {
		composed = composed.Then(st.delta)
	}
	return composed
}

func (s *State) child(rule Rule, deps []formula.Formula, delta Delta, truths *immutable.SortedMap[heap.Handle, Status]) *State {
	next := &State{
		proof:  s.proof,
		parent: s,
		depth:  s.depth + 1,
		step:   Step{Rule: rule.Name(), Deps: slices.Clone(deps)},
		delta:  delta,
		truths: truths,
	}
	s.proof.add(next)
	logger.Debug("new state",
		slog.Int("id", next.id),
		slog.String("rule", next.step.Rule),
		slog.Any("added", formula.SlogAll(s.proof.alg, delta.Additions())),
		slog.Any("removed", formula.SlogAll(s.proof.alg, delta.Removals())),
	)
	return next
}

// Infer returns a child state in which truth is known and active,
// or s itself if truth was already known
func (s *State) Infer(rule Rule, truth formula.Formula, deps ...formula.Formula) *State {
	return s.InferAll(rule, []formula.Formula{truth}, deps...)
}

// InferAll is Infer for several truths at once, producing at most one child
func (s *State) InferAll(rule Rule, truths []formula.Formula, deps ...formula.Formula) *State {
	added := make([]formula.Formula, 0, len(truths))
	next := s.truths
	for _, t := range truths {
		if s.IsKnown(t) || slices.Contains(added, t) {
			continue
		}
		next = next.Set(t, Active)
		added = append(added, t)
	}
	if len(added) == 0 {
		return s
	}
	return s.child(rule, deps, NewDelta(added, nil), next)
}

// Subsume deactivates from and activates every truth of to that is not yet known.
// When from is not active this is InferAll.
func (s *State) Subsume(rule Rule, from formula.Formula, to []formula.Formula, deps ...formula.Formula) *State {
	if !s.IsActive(from) {
		return s.InferAll(rule, to, deps...)
	}
	next := s.truths.Set(from, Subsumed)
	added := make([]formula.Formula, 0, len(to))
	for _, t := range to {
		if t == from || s.IsKnown(t) || slices.Contains(added, t) {
			continue
		}
		next = next.Set(t, Active)
		added = append(added, t)
	}
	return s.child(rule, append([]formula.Formula{from}, deps...), NewDelta(added, []formula.Formula{from}), next)
}

// Split returns one child per case of an active disjunction, each of which
// replaces the disjunction by its case
func (s *State) Split(rule Rule, disjunct formula.Formula) []*State {
	alg := s.proof.alg
	if alg.Op(disjunct) != formula.OpOr {
		panic(fmt.Sprintf("proof: cannot split on %s", alg.String(disjunct)))
	}
	cases := alg.Children(disjunct)
	children := make([]*State, len(cases))
	for i, c := range cases {
		children[i] = s.Subsume(rule, disjunct, []formula.Formula{c})
	}
	return children
}
