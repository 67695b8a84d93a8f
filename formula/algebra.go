package formula

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/internal/log"
)

var logger = log.DefaultLogger.With("section", "formula")

// Algebra builds normal-form formulas, expressions and types inside one heap.
// Like the heap, it is owned by a single assertion and not safe for concurrent use.
type Algebra struct {
	heap  *heap.Heap
	fresh map[string]int

	trueH, falseH, zero heap.Handle
}

func New(h *heap.Heap) *Algebra {
	a := &Algebra{
		heap:  h,
		fresh: make(map[string]int),
	}
	a.trueH = h.Allocate(OpTruth, true)
	a.falseH = h.Allocate(OpTruth, false)
	a.zero = h.Allocate(OpPoly, nil)
	return a
}

func (a *Algebra) Heap() *heap.Heap { return a.heap }

func (a *Algebra) Item(h heap.Handle) heap.Item { return a.heap.Get(h) }

func (a *Algebra) Op(h heap.Handle) heap.Op { return a.heap.Op(h) }

func (a *Algebra) Children(h heap.Handle) []heap.Handle { return a.heap.Get(h).Children }

func (a *Algebra) True() Formula  { return a.trueH }
func (a *Algebra) False() Formula { return a.falseH }

func (a *Algebra) Truth(b bool) Formula {
	if b {
		return a.trueH
	}
	return a.falseH
}

// IsTruth returns the value of a Truth formula
func (a *Algebra) IsTruth(f Formula) (value bool, ok bool) {
	item := a.heap.Get(f)
	if item.Op != OpTruth {
		return false, false
	}
	return item.Payload.(bool), true
}

// Sign returns the sign payload of an equality, arithmetic equality or invocation
func (a *Algebra) Sign(f Formula) bool {
	item := a.heap.Get(f)
	switch item.Op {
	case OpEq, OpArithEq:
		return item.Payload.(bool)
	case OpInvoke:
		return item.Payload.(invocation).sign
	default:
		panic(fmt.Sprintf("formula: %s has no sign", a.String(f)))
	}
}

// Name returns the name payload of variables, fields, calls and invocations
func (a *Algebra) Name(h heap.Handle) string {
	item := a.heap.Get(h)
	switch item.Op {
	case OpVar, OpField, OpCall, OpTypeNominal:
		return item.Payload.(string)
	case OpInvoke:
		return item.Payload.(invocation).name
	default:
		panic(fmt.Sprintf("formula: %s has no name", a.String(h)))
	}
}

// Fresh allocates a variable whose name was never allocated in this heap.
// Renaming an already fresh variable reuses its base name.
func (a *Algebra) Fresh(base string) heap.Handle {
	base = baseName(base)
	for {
		a.fresh[base]++
		name := base + "'" + strconv.Itoa(a.fresh[base])
		if _, taken := a.heap.Lookup(OpVar, name); !taken {
			return a.heap.Allocate(OpVar, name)
		}
	}
}

// Poly interns p, which must be in normal form
func (a *Algebra) Poly(p Polynomial) heap.Handle {
	if len(p.Terms) == 0 {
		return a.zero
	}
	terms := make([]heap.Handle, len(p.Terms))
	for i, t := range p.Terms {
		terms[i] = a.heap.Allocate(OpTerm, new(big.Int).Set(t.Coefficient), t.Atoms...)
	}
	return a.heap.Allocate(OpPoly, nil, terms...)
}

// PolyOf decodes an OpPoly node
func (a *Algebra) PolyOf(h heap.Handle) Polynomial {
	item := a.heap.Get(h)
	if item.Op != OpPoly {
		panic(fmt.Sprintf("formula: %s is not a polynomial", a.String(h)))
	}
	if len(item.Children) == 0 {
		return Polynomial{}
	}
	terms := make([]Term, len(item.Children))
	for i, th := range item.Children {
		term := a.heap.Get(th)
		terms[i] = Term{Coefficient: term.Payload.(*big.Int), Atoms: term.Children}
	}
	return Polynomial{Terms: terms}
}

// IsPoly is true for OpPoly nodes
func (a *Algebra) IsPoly(h heap.Handle) bool { return a.heap.Op(h) == OpPoly }

// AsPolynomial views an int-valued expression as a polynomial: an OpPoly node
// is decoded, any other node is an atom.
func (a *Algebra) AsPolynomial(h heap.Handle) Polynomial {
	if a.IsPoly(h) {
		return a.PolyOf(h)
	}
	return AtomPoly(h)
}

// AsPoly is AsPolynomial, interned
func (a *Algebra) AsPoly(h heap.Handle) heap.Handle {
	if a.IsPoly(h) {
		return h
	}
	return a.Poly(AtomPoly(h))
}

func (a *Algebra) Int(v int64) heap.Handle { return a.Poly(ConstantInt(v)) }

// ConstantOf returns the value of a constant polynomial handle
func (a *Algebra) ConstantOf(h heap.Handle) (*big.Int, bool) {
	if !a.IsPoly(h) {
		return nil, false
	}
	return a.PolyOf(h).IsConstant()
}

// SingleAtom returns x when h is the polynomial 1*x
func (a *Algebra) SingleAtom(h heap.Handle) (heap.Handle, bool) {
	if !a.IsPoly(h) {
		return heap.Nil, false
	}
	p := a.PolyOf(h)
	if len(p.Terms) == 1 && len(p.Terms[0].Atoms) == 1 && p.Terms[0].Coefficient.Cmp(bigOne) == 0 {
		return p.Terms[0].Atoms[0], true
	}
	return heap.Nil, false
}
