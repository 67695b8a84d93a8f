package formula

import (
	"fmt"
	"math/big"
	"slices"
	"sort"

	"github.com/cottand/assay/heap"
	xset "github.com/xtgo/set"
)

type handles []heap.Handle

func (h handles) Len() int           { return len(h) }
func (h handles) Less(i, j int) bool { return h[i] < h[j] }
func (h handles) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// sortedUnique sorts hs in place and drops duplicates
func sortedUnique(hs []heap.Handle) []heap.Handle {
	sort.Sort(handles(hs))
	return hs[:xset.Uniq(handles(hs))]
}

// And is the normal-form conjunction of fs
func (a *Algebra) And(fs ...Formula) Formula {
	return a.junction(OpAnd, fs)
}

// Or is the normal-form disjunction of fs
func (a *Algebra) Or(fs ...Formula) Formula {
	return a.junction(OpOr, fs)
}

func (a *Algebra) junction(op heap.Op, fs []Formula) Formula {
	// the absorbing element: false for And, true for Or
	absorbing := a.Truth(op == OpOr)
	identity := a.Truth(op == OpAnd)

	operands := make([]heap.Handle, 0, len(fs))
	var flatten func([]Formula) bool
	flatten = func(fs []Formula) bool {
		for _, f := range fs {
			switch {
			case f == absorbing:
				return false
			case f == identity:
				continue
			case a.heap.Op(f) == op:
				if !flatten(a.heap.Get(f).Children) {
					return false
				}
			default:
				operands = append(operands, f)
			}
		}
		return true
	}
	if !flatten(fs) {
		return absorbing
	}
	operands = sortedUnique(operands)
	switch len(operands) {
	case 0:
		return identity
	case 1:
		return operands[0]
	}
	return a.heap.Allocate(op, nil, operands...)
}

// Implies is !l || r
func (a *Algebra) Implies(l, r Formula) Formula {
	return a.Or(a.Not(l), r)
}

// Not pushes the negation of f to its leaves
func (a *Algebra) Not(f Formula) Formula {
	item := a.heap.Get(f)
	switch item.Op {
	case OpTruth:
		return a.Truth(!item.Payload.(bool))
	case OpAnd, OpOr:
		negated := make([]Formula, len(item.Children))
		for i, c := range item.Children {
			negated[i] = a.Not(c)
		}
		if item.Op == OpAnd {
			return a.Or(negated...)
		}
		return a.And(negated...)
	case OpForall, OpExists:
		n := len(item.Children) - 1
		body := a.Not(item.Children[n])
		if item.Op == OpForall {
			return a.Exists(item.Children[:n], body)
		}
		return a.Forall(item.Children[:n], body)
	case OpIneq:
		// !(0 <= p) is p < 0, is 0 <= -p - 1
		p := a.PolyOf(item.Children[0])
		return a.Ineq(p.Neg().Sub(ConstantInt(1)))
	case OpArithEq:
		return a.ArithEq(!item.Payload.(bool), a.PolyOf(item.Children[0]))
	case OpEq:
		return a.Equals(!item.Payload.(bool), item.Children[0], item.Children[1])
	case OpInvoke:
		inv := item.Payload.(invocation)
		return a.Invoke(!inv.sign, inv.name, item.Children...)
	case OpIs:
		return a.Is(item.Children[0], a.TypeNot(item.Children[1]))
	case OpAssign:
		candidate, bound := item.Children[0], item.Children[1]
		return a.Equals(false, candidate, bound)
	default:
		panic(fmt.Sprintf("formula: cannot negate non-formula %s", a.String(f)))
	}
}

func (a *Algebra) Forall(vars []heap.Handle, body Formula) Formula {
	return a.quantifier(OpForall, vars, body)
}

func (a *Algebra) Exists(vars []heap.Handle, body Formula) Formula {
	return a.quantifier(OpExists, vars, body)
}

func (a *Algebra) quantifier(op heap.Op, vars []heap.Handle, body Formula) Formula {
	if _, isTruth := a.IsTruth(body); isTruth {
		return body
	}
	all := slices.Clone(vars)
	// forall x: forall y: b is forall x, y: b
	if a.heap.Op(body) == op {
		children := a.heap.Get(body).Children
		all = append(all, children[:len(children)-1]...)
		body = children[len(children)-1]
	}
	free := a.FreeVars(body)
	used := make([]heap.Handle, 0, len(all))
	for _, v := range all {
		if free.Contains(v) {
			used = append(used, v)
		}
	}
	used = sortedUnique(used)
	if len(used) == 0 {
		return body
	}
	return a.heap.Allocate(op, nil, append(used, body)...)
}

// Quantified splits a quantifier into its variables and body
func (a *Algebra) Quantified(f Formula) (universal bool, vars []heap.Handle, body Formula) {
	item := a.heap.Get(f)
	if item.Op != OpForall && item.Op != OpExists {
		panic(fmt.Sprintf("formula: %s is not a quantifier", a.String(f)))
	}
	n := len(item.Children) - 1
	return item.Op == OpForall, item.Children[:n], item.Children[n]
}

// Ineq is 0 <= p. Constant inequalities are evaluated and the coefficients are
// divided by their gcd, rounding the constant down, which is exact over integers.
func (a *Algebra) Ineq(p Polynomial) Formula {
	if c, ok := p.IsConstant(); ok {
		return a.Truth(c.Sign() >= 0)
	}
	if g := p.Gcd(); g.Cmp(bigOne) > 0 {
		terms := make([]Term, 0, len(p.Terms))
		for _, t := range p.WithoutConstant().Terms {
			terms = append(terms, Term{Coefficient: new(big.Int).Quo(t.Coefficient, g), Atoms: t.Atoms})
		}
		// floor division
		c := new(big.Int)
		c.Div(p.ConstantTerm(), g)
		if c.Sign() != 0 {
			terms = append(terms, Term{Coefficient: c})
		}
		p = ToNormalForm(terms)
	}
	return a.heap.Allocate(OpIneq, nil, a.Poly(p))
}

// LessEq is l <= r
func (a *Algebra) LessEq(l, r Polynomial) Formula { return a.Ineq(r.Sub(l)) }

// Less is l < r, which over integers is l + 1 <= r
func (a *Algebra) Less(l, r Polynomial) Formula { return a.Ineq(r.Sub(l).Sub(ConstantInt(1))) }

// ArithEq is p == 0 when sign holds, p != 0 otherwise
func (a *Algebra) ArithEq(sign bool, p Polynomial) Formula {
	if c, ok := p.IsConstant(); ok {
		return a.Truth((c.Sign() == 0) == sign)
	}
	if g := p.Gcd(); g.Cmp(bigOne) > 0 {
		if new(big.Int).Rem(p.ConstantTerm(), g).Sign() != 0 {
			// g*q + c == 0 has no integer solution
			return a.Truth(!sign)
		}
		terms := make([]Term, len(p.Terms))
		for i, t := range p.Terms {
			terms[i] = Term{Coefficient: new(big.Int).Quo(t.Coefficient, g), Atoms: t.Atoms}
		}
		p = ToNormalForm(terms)
	}
	if lead := p.WithoutConstant().Terms[0]; lead.Coefficient.Sign() < 0 {
		p = p.Neg()
	}
	return a.heap.Allocate(OpArithEq, sign, a.Poly(p))
}

// Equals compares two expressions. Polynomials become arithmetic equalities,
// and literals are compared component-wise.
func (a *Algebra) Equals(sign bool, l, r heap.Handle) Formula {
	if l == r {
		return a.Truth(sign)
	}
	lItem, rItem := a.heap.Get(l), a.heap.Get(r)
	switch {
	case lItem.Op == OpPoly && rItem.Op == OpPoly:
		return a.ArithEq(sign, a.PolyOf(l).Sub(a.PolyOf(r)))
	case lItem.Op == OpTruth && rItem.Op == OpTruth:
		// l != r here
		return a.Truth(!sign)
	case lItem.Op == OpRecord && rItem.Op == OpRecord:
		if lItem.Payload.(string) != rItem.Payload.(string) {
			return a.Truth(!sign)
		}
		return a.componentwise(sign, lItem.Children, rItem.Children)
	case lItem.Op == OpArray && rItem.Op == OpArray:
		if len(lItem.Children) != len(rItem.Children) {
			return a.Truth(!sign)
		}
		return a.componentwise(sign, lItem.Children, rItem.Children)
	case rItem.Op == OpTruth && !sign:
		// b != true is b == false
		return a.Equals(true, l, a.Truth(!rItem.Payload.(bool)))
	case lItem.Op == OpTruth && !sign:
		return a.Equals(true, r, a.Truth(!lItem.Payload.(bool)))
	}
	if r < l {
		l, r = r, l
	}
	return a.heap.Allocate(OpEq, sign, l, r)
}

func (a *Algebra) componentwise(sign bool, ls, rs []heap.Handle) Formula {
	parts := make([]Formula, len(ls))
	for i := range ls {
		parts[i] = a.Equals(sign, ls[i], rs[i])
	}
	if sign {
		return a.And(parts...)
	}
	return a.Or(parts...)
}

// Invoke is a (possibly negated) macro invocation
func (a *Algebra) Invoke(sign bool, name string, args ...heap.Handle) Formula {
	return a.heap.Allocate(OpInvoke, invocation{name: name, sign: sign}, args...)
}

// Invocation decodes an OpInvoke node
func (a *Algebra) Invocation(f Formula) (name string, sign bool, args []heap.Handle) {
	item := a.heap.Get(f)
	inv := item.Payload.(invocation)
	return inv.name, inv.sign, item.Children
}

// Is is the type test e is t
func (a *Algebra) Is(e, t heap.Handle) Formula {
	switch a.heap.Op(t) {
	case OpTypeAny:
		return a.True()
	case OpTypeVoid:
		return a.False()
	}
	if a.IsPoly(e) {
		// integers are exactly the values of type int
		if value, ok := a.primitiveTest(t); ok {
			return a.Truth(value)
		}
		if a.heap.Op(t) == OpTypeNegation {
			if value, ok := a.primitiveTest(a.heap.Get(t).Children[0]); ok {
				return a.Truth(!value)
			}
		}
	}
	return a.heap.Allocate(OpIs, nil, e, t)
}

func (a *Algebra) primitiveTest(t heap.Handle) (value bool, ok bool) {
	switch a.heap.Op(t) {
	case OpTypeInt:
		return true, true
	case OpTypeBool, OpTypeNull, OpTypeArray, OpTypeRecord:
		return false, true
	}
	return false, false
}

// Assign records candidate == bound, with candidate an atom not occurring in bound
func (a *Algebra) Assign(candidate, bound heap.Handle) Formula {
	return a.heap.Allocate(OpAssign, nil, candidate, bound)
}

// AssignmentEquality is the equality an Assignment stands for
func (a *Algebra) AssignmentEquality(f Formula) Formula {
	item := a.heap.Get(f)
	candidate, bound := item.Children[0], item.Children[1]
	if a.IsPoly(bound) {
		return a.ArithEq(true, AtomPoly(candidate).Sub(a.PolyOf(bound)))
	}
	return a.Equals(true, candidate, bound)
}
