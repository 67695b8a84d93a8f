package proof

import (
	"cmp"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/heap"
	"github.com/hashicorp/go-set/v3"
)

// Delta is the net change in activity between a state and one of its ancestors:
// the truths that became active and the truths that stopped being active.
type Delta struct {
	additions *set.TreeSet[heap.Handle]
	removals  *set.TreeSet[heap.Handle]
}

func newHandleSet(items ...heap.Handle) *set.TreeSet[heap.Handle] {
	s := set.NewTreeSet[heap.Handle](cmp.Compare[heap.Handle])
	for _, item := range items {
		s.Insert(item)
	}
	return s
}

// NewDelta builds a delta from its additions and removals
func NewDelta(additions, removals []formula.Formula) Delta {
	return Delta{additions: newHandleSet(additions...), removals: newHandleSet(removals...)}
}

// Additions are sorted by handle
func (d Delta) Additions() []formula.Formula {
	if d.additions == nil || d.additions.Empty() {
		return nil
	}
	return d.additions.Slice()
}

// Removals are sorted by handle
func (d Delta) Removals() []formula.Formula {
	if d.removals == nil || d.removals.Empty() {
		return nil
	}
	return d.removals.Slice()
}

func (d Delta) IsAddition(f formula.Formula) bool {
	return d.additions != nil && d.additions.Contains(f)
}

func (d Delta) IsRemoval(f formula.Formula) bool {
	return d.removals != nil && d.removals.Contains(f)
}

func (d Delta) IsEmpty() bool {
	return (d.additions == nil || d.additions.Empty()) && (d.removals == nil || d.removals.Empty())
}

// Then composes d with a delta that happened after it
func (d Delta) Then(next Delta) Delta {
	additions, removals := newHandleSet(), newHandleSet()
	for _, a := range d.Additions() {
		if !next.IsRemoval(a) {
			additions.Insert(a)
		}
	}
	for _, a := range next.Additions() {
		additions.Insert(a)
	}
	for _, r := range d.Removals() {
		removals.Insert(r)
	}
	for _, r := range next.Removals() {
		// activated and deactivated within the composed span: never visible
		if !d.IsAddition(r) {
			removals.Insert(r)
		}
	}
	return Delta{additions: additions, removals: removals}
}
