package proof

import (
	"fmt"
	"io"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/heap"
)

// Rule is an inference procedure
type Rule interface {
	Name() string
}

// LinearRule derives at most one new state from a newly active truth.
// Returning the input state means the rule made no progress.
type LinearRule interface {
	Rule
	Apply(s *State, truth formula.Formula) (*State, error)
}

// NonLinearRule splits a state into branches that must all be refuted.
// Returning nil means the rule does not apply to truth.
type NonLinearRule interface {
	Rule
	Split(s *State, truth formula.Formula) ([]*State, error)
}

// Named is a Rule with no behaviour, used to justify states built outside of rules
type Named string

func (n Named) Name() string { return string(n) }

// Assumption justifies the root state
const Assumption = Named("assumption")

// Proof owns the append-only tree of states of one proof attempt.
// It is not safe for concurrent use.
type Proof struct {
	alg    *formula.Algebra
	states []*State
	counts map[string]int
}

// New starts a proof whose root state knows every assumption
func New(alg *formula.Algebra, assumptions ...formula.Formula) *Proof {
	p := &Proof{alg: alg, counts: make(map[string]int)}
	truths := immutable.NewSortedMap[heap.Handle, Status](handleComparer{})
	var added []formula.Formula
	for _, a := range assumptions {
		if a == alg.True() {
			continue
		}
		if _, known := truths.Get(a); known {
			continue
		}
		truths = truths.Set(a, Active)
		added = append(added, a)
	}
	root := &State{
		proof:  p,
		step:   Step{Rule: Assumption.Name()},
		delta:  NewDelta(added, nil),
		truths: truths,
	}
	p.states = append(p.states, root)
	return p
}

func (p *Proof) add(s *State) {
	s.id = len(p.states)
	p.states = append(p.states, s)
	p.counts[s.step.Rule]++
}

func (p *Proof) Algebra() *formula.Algebra { return p.alg }

func (p *Proof) Root() *State { return p.states[0] }

// States returns every state in creation order; parents precede their children
func (p *Proof) States() []*State { return p.states }

func (p *Proof) Len() int { return len(p.states) }

// Steps returns the justification of every state, indexed by state ID
func (p *Proof) Steps() []Step {
	steps := make([]Step, len(p.states))
	for i, s := range p.states {
		steps[i] = s.step
	}
	return steps
}

// Count is the number of states produced by the rule called name
func (p *Proof) Count(name string) int { return p.counts[name] }

// Children returns the states whose parent is s, in creation order
func (p *Proof) Children(s *State) []*State {
	var out []*State
	for _, candidate := range p.states[s.id+1:] {
		if candidate.parent == s {
			out = append(out, candidate)
		}
	}
	return out
}

// Format writes the tree of states below from, one justified step per line
func (p *Proof) Format(w io.Writer, from *State) error {
	children := make(map[*State][]*State, len(p.states))
	for _, s := range p.states {
		if s.parent != nil {
			children[s.parent] = append(children[s.parent], s)
		}
	}
	var write func(s *State, indent int) error
	write = func(s *State, indent int) error {
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", indent), p.describe(s)); err != nil {
			return err
		}
		next := indent
		if len(children[s]) > 1 {
			next++
		}
		for _, c := range children[s] {
			if err := write(c, next); err != nil {
				return err
			}
		}
		return nil
	}
	return write(from, 0)
}

func (p *Proof) describe(s *State) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "#%d %s", s.id, s.step.Rule)
	for _, a := range s.delta.Additions() {
		sb.WriteString(" +(" + p.alg.String(a) + ")")
	}
	for _, r := range s.delta.Removals() {
		sb.WriteString(" -(" + p.alg.String(r) + ")")
	}
	return sb.String()
}
