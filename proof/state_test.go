package proof

import (
	"bytes"
	"testing"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/heap"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRule = Named("test")

type fixture struct {
	alg     *formula.Algebra
	p, q, r formula.Formula
}

func newFixture() fixture {
	alg := formula.New(heap.New())
	atom := func(name string) formula.Formula {
		return alg.Equals(true, alg.Var(name), alg.True())
	}
	return fixture{alg: alg, p: atom("p"), q: atom("q"), r: atom("r")}
}

func TestInfer(t *testing.T) {
	f := newFixture()
	pr := New(f.alg, f.p)
	root := pr.Root()

	assert.True(t, root.IsKnown(f.p))
	assert.True(t, root.IsKnown(f.alg.True()))
	assert.False(t, root.IsKnown(f.q))

	assert.Same(t, root, root.Infer(testRule, f.p), "known truths are not inferred again")
	assert.Same(t, root, root.Infer(testRule, f.alg.True()))

	s := root.Infer(testRule, f.q, f.p)
	assert.NotSame(t, root, s)
	assert.False(t, root.IsKnown(f.q), "states are immutable")
	assert.True(t, s.IsActive(f.q))
	assert.Equal(t, Step{Rule: "test", Deps: []formula.Formula{f.p}}, s.Step())
	assert.Same(t, root, s.Parent())
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, 1, pr.Count("test"))
	assert.Equal(t, 2, pr.Len())
}

func TestKnowledgeIsMonotonic(t *testing.T) {
	f := newFixture()
	pr := New(f.alg, f.p)
	s1 := pr.Root().Infer(testRule, f.q)
	s2 := s1.Subsume(testRule, f.q, []formula.Formula{f.r})
	s3 := s2.Subsume(testRule, f.p, nil)

	for _, s := range pr.States() {
		known, _ := s.Known()
		for _, descendant := range pr.States() {
			if !descendant.IsAncestor(s) {
				continue
			}
			for _, k := range known {
				assert.True(t, descendant.IsKnown(k), "state %d forgot what state %d knew", descendant.ID(), s.ID())
			}
		}
	}
	assert.Equal(t, []formula.Formula{f.r}, s3.Active())
}

func TestSubsume(t *testing.T) {
	f := newFixture()
	pr := New(f.alg, f.p)
	root := pr.Root()

	s := root.Subsume(testRule, f.p, []formula.Formula{f.q, f.r})
	assert.False(t, s.IsActive(f.p))
	assert.True(t, s.IsKnown(f.p), "subsumed truths stay known")
	assert.True(t, s.IsActive(f.q))
	assert.True(t, s.IsActive(f.r))
	assert.Equal(t, []formula.Formula{f.p}, s.Step().Deps)

	// subsuming an inactive truth is just inferring
	again := s.Subsume(testRule, f.p, []formula.Formula{f.q})
	assert.Same(t, s, again)
}

func TestSplit(t *testing.T) {
	f := newFixture()
	disjunct := f.alg.Or(f.p, f.q, f.r)
	pr := New(f.alg, disjunct)

	branches := pr.Root().Split(testRule, disjunct)
	require.Len(t, branches, 3)

	var cases []formula.Formula
	for _, b := range branches {
		assert.False(t, b.IsActive(disjunct))
		assert.True(t, b.IsKnown(disjunct))
		added := b.OwnDelta().Additions()
		require.Len(t, added, 1)
		cases = append(cases, added[0])
	}
	assert.Equal(t, disjunct, f.alg.Or(cases...), "cases union back to the disjunct")
	assert.Panics(t, func() { pr.Root().Split(testRule, f.p) })
}

func TestDelta(t *testing.T) {
	f := newFixture()
	pr := New(f.alg, f.p)
	root := pr.Root()
	s1 := root.Infer(testRule, f.q)
	s2 := s1.Subsume(testRule, f.q, []formula.Formula{f.r})
	s3 := s2.Subsume(testRule, f.p, nil)

	testCases := []struct {
		name              string
		from, since       *State
		added, removedSet []formula.Formula
	}{
		{"own delta", s1, root, []formula.Formula{f.q}, nil},
		{"added then subsumed is invisible", s2, root, []formula.Formula{f.r}, nil},
		{"removal of an older truth", s3, s1, []formula.Formula{f.r}, []formula.Formula{f.p, f.q}},
		{"everything", s3, nil, []formula.Formula{f.r}, nil},
		{"empty", s2, s2, nil, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.from.Delta(tc.since)
			if diff := cmp.Diff(tc.added, d.Additions()); diff != "" {
				t.Errorf("additions mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.removedSet, d.Removals()); diff != "" {
				t.Errorf("removals mismatch (-want +got):\n%s", diff)
			}
		})
	}
	assert.True(t, s2.Delta(s2).IsEmpty())
	assert.Panics(t, func() { s1.Delta(s3) })
}

func TestFormat(t *testing.T) {
	f := newFixture()
	disjunct := f.alg.Or(f.p, f.q)
	pr := New(f.alg, disjunct)
	pr.Root().Split(Named("or"), disjunct)

	buf := &bytes.Buffer{}
	require.NoError(t, pr.Format(buf, pr.Root()))
	out := buf.String()
	assert.Contains(t, out, "#0 assumption")
	assert.Contains(t, out, "  #1 or")
	assert.Contains(t, out, "  #2 or")
}
