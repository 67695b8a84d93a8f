package formula

import (
	"fmt"
	"maps"
	"math/big"
	"strings"

	"github.com/cottand/assay/heap"
	"github.com/hashicorp/go-set/v3"
)

// Substitute simultaneously replaces every free occurrence of each key of env
// in h by its value. Keys are usually variables but may be any expression atom.
// Bound variables shadow keys of the same name, and are renamed when they would
// capture a variable of a replacement.
func (a *Algebra) Substitute(h heap.Handle, env map[heap.Handle]heap.Handle) heap.Handle {
	if len(env) == 0 {
		return h
	}
	return a.newRewriter(env).rebuild(h)
}

// Simplify rebuilds f through the normal-form constructors. It is idempotent.
func (a *Algebra) Simplify(f heap.Handle) heap.Handle {
	return a.newRewriter(nil).rebuild(f)
}

type rewriter struct {
	alg  *Algebra
	env  map[heap.Handle]heap.Handle
	memo map[heap.Handle]heap.Handle
	// captured holds the free variables of every replacement, computed on first use
	captured *set.Set[heap.Handle]
}

func (a *Algebra) newRewriter(env map[heap.Handle]heap.Handle) *rewriter {
	return &rewriter{alg: a, env: env, memo: make(map[heap.Handle]heap.Handle)}
}

func (r *rewriter) capturable(v heap.Handle) bool {
	if r.captured == nil {
		r.captured = set.New[heap.Handle](len(r.env))
		for _, value := range r.env {
			r.captured.InsertSet(r.alg.FreeVars(value))
		}
	}
	return r.captured.Contains(v)
}

func (r *rewriter) rebuildAll(hs []heap.Handle) []heap.Handle {
	out := make([]heap.Handle, len(hs))
	for i, h := range hs {
		out[i] = r.rebuild(h)
	}
	return out
}

func (r *rewriter) rebuild(h heap.Handle) heap.Handle {
	if to, ok := r.env[h]; ok {
		return to
	}
	if done, ok := r.memo[h]; ok {
		return done
	}
	a := r.alg
	item := a.heap.Get(h)
	var out heap.Handle
	switch item.Op {
	case OpTruth, OpVar:
		out = h
	case OpAnd:
		out = a.And(r.rebuildAll(item.Children)...)
	case OpOr:
		out = a.Or(r.rebuildAll(item.Children)...)
	case OpForall, OpExists:
		out = r.rebuildQuantifier(item)
	case OpIneq:
		out = a.Ineq(a.PolyOf(r.rebuild(item.Children[0])))
	case OpArithEq:
		out = a.ArithEq(item.Payload.(bool), a.PolyOf(r.rebuild(item.Children[0])))
	case OpEq:
		out = a.Equals(item.Payload.(bool), r.rebuild(item.Children[0]), r.rebuild(item.Children[1]))
	case OpInvoke:
		inv := item.Payload.(invocation)
		out = a.Invoke(inv.sign, inv.name, r.rebuildAll(item.Children)...)
	case OpIs:
		out = a.Is(r.rebuild(item.Children[0]), r.rebuild(item.Children[1]))
	case OpAssign:
		candidate, bound := r.rebuild(item.Children[0]), r.rebuild(item.Children[1])
		switch {
		case candidate == item.Children[0]:
			out = a.Assign(candidate, bound)
		case a.IsPoly(bound):
			// a rewritten candidate may no longer be an atom
			out = a.ArithEq(true, a.AsPolynomial(candidate).Sub(a.PolyOf(bound)))
		default:
			out = a.Equals(true, candidate, bound)
		}
	case OpPoly:
		out = a.Poly(r.rebuildPoly(item))
	case OpIndex:
		out = a.Index(r.rebuild(item.Children[0]), r.rebuild(item.Children[1]))
	case OpLength:
		out = a.Length(r.rebuild(item.Children[0]))
	case OpUpdate:
		out = a.Update(r.rebuild(item.Children[0]), r.rebuild(item.Children[1]), r.rebuild(item.Children[2]))
	case OpArray:
		out = a.Array(r.rebuildAll(item.Children)...)
	case OpArrayGen:
		out = a.ArrayGen(r.rebuild(item.Children[0]), r.rebuild(item.Children[1]))
	case OpRecord:
		out = a.Record(a.RecordFields(h), r.rebuildAll(item.Children))
	case OpField:
		out = a.Field(r.rebuild(item.Children[0]), item.Payload.(string))
	case OpCall:
		out = a.Call(item.Payload.(string), r.rebuildAll(item.Children)...)
	case OpTypeUnion:
		out = a.TypeUnion(r.rebuildAll(item.Children)...)
	case OpTypeIntersection:
		out = a.TypeIntersection(r.rebuildAll(item.Children)...)
	case OpTypeNegation:
		out = a.TypeNot(r.rebuild(item.Children[0]))
	case OpTypeRecord:
		out = a.TypeRecord(a.TypeRecordFields(h), r.rebuildAll(item.Children))
	case OpTypeArray:
		out = a.TypeArray(r.rebuild(item.Children[0]))
	case OpTypeAny, OpTypeVoid, OpTypeNull, OpTypeBool, OpTypeInt, OpTypeNominal:
		out = h
	default:
		panic(fmt.Sprintf("formula: cannot rebuild op %d", item.Op))
	}
	r.memo[h] = out
	return out
}

// rebuildPoly multiplies out every term, since a rebuilt atom may itself be a polynomial
func (r *rewriter) rebuildPoly(item heap.Item) Polynomial {
	a := r.alg
	sum := Polynomial{}
	for _, th := range item.Children {
		term := a.heap.Get(th)
		product := Constant(term.Payload.(*big.Int))
		for _, atom := range term.Children {
			product = product.Mul(a.AsPolynomial(r.rebuild(atom)))
		}
		sum = sum.Add(product)
	}
	return sum
}

func (r *rewriter) rebuildQuantifier(item heap.Item) heap.Handle {
	a := r.alg
	n := len(item.Children) - 1
	vars, body := item.Children[:n], item.Children[n]

	inner := maps.Clone(r.env)
	if inner == nil {
		inner = make(map[heap.Handle]heap.Handle)
	}
	for _, v := range vars {
		delete(inner, v)
	}
	renamed := make([]heap.Handle, len(vars))
	for i, v := range vars {
		renamed[i] = v
		if r.capturable(v) {
			fresh := a.Fresh(a.Name(v))
			inner[v] = fresh
			renamed[i] = fresh
		}
	}
	rewritten := a.newRewriter(inner).rebuild(body)
	if item.Op == OpForall {
		return a.Forall(renamed, rewritten)
	}
	return a.Exists(renamed, rewritten)
}

// baseName strips the suffix added by Fresh
func baseName(name string) string {
	if i := strings.IndexByte(name, '\''); i > 0 {
		return name[:i]
	}
	return name
}

// FreeVars returns the variables of h that are not bound by a quantifier inside h
func (a *Algebra) FreeVars(h heap.Handle) *set.Set[heap.Handle] {
	free := set.New[heap.Handle](4)
	a.collectFree(h, nil, free)
	return free
}

func (a *Algebra) collectFree(h heap.Handle, bound []heap.Handle, free *set.Set[heap.Handle]) {
	item := a.heap.Get(h)
	switch item.Op {
	case OpVar:
		for _, b := range bound {
			if b == h {
				return
			}
		}
		free.Insert(h)
	case OpForall, OpExists:
		n := len(item.Children) - 1
		inner := append(append([]heap.Handle{}, bound...), item.Children[:n]...)
		a.collectFree(item.Children[n], inner, free)
	default:
		if IsTypeOp(item.Op) {
			return
		}
		for _, c := range item.Children {
			a.collectFree(c, bound, free)
		}
	}
}

// Occurs reports whether needle is a sub-term of h
func (a *Algebra) Occurs(needle, h heap.Handle) bool {
	found := false
	a.heap.Walk(h, func(sub heap.Handle) bool {
		if sub == needle {
			found = true
		}
		return !found && sub > needle
	})
	return found
}

// IsGround is true when h has no quantifiers
func (a *Algebra) IsGround(h heap.Handle) bool {
	ground := true
	a.heap.Walk(h, func(sub heap.Handle) bool {
		if op := a.heap.Op(sub); op == OpForall || op == OpExists {
			ground = false
		}
		return ground
	})
	return ground
}

// SubTerms returns the distinct sub-terms of h with one of the given ops,
// outside of quantifiers, in the order they are first met.
func (a *Algebra) SubTerms(h heap.Handle, ops ...heap.Op) []heap.Handle {
	seen := set.New[heap.Handle](8)
	var out []heap.Handle
	a.heap.Walk(h, func(sub heap.Handle) bool {
		op := a.heap.Op(sub)
		if op == OpForall || op == OpExists || IsTypeOp(op) {
			return false
		}
		for _, want := range ops {
			if op == want && seen.Insert(sub) {
				out = append(out, sub)
			}
		}
		return true
	})
	return out
}
