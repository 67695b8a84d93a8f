package formula

import (
	"cmp"
	"math/big"
	"slices"
	"strings"

	"github.com/cottand/assay/heap"
)

// Term is coefficient * atom1 * atom2 * ..., with atoms sorted by handle.
// An atom may repeat (x*x).
type Term struct {
	Coefficient *big.Int
	Atoms       []heap.Handle
}

// Polynomial is a sum of terms in normal form: sorted by atoms, no two terms
// with the same atoms, no zero coefficients. The zero value is the constant 0.
type Polynomial struct {
	Terms []Term
}

var bigOne = big.NewInt(1)

func Constant(c *big.Int) Polynomial {
	if c.Sign() == 0 {
		return Polynomial{}
	}
	return Polynomial{Terms: []Term{{Coefficient: new(big.Int).Set(c)}}}
}

func ConstantInt(c int64) Polynomial { return Constant(big.NewInt(c)) }

// AtomPoly is the polynomial 1*atom
func AtomPoly(atom heap.Handle) Polynomial {
	return Polynomial{Terms: []Term{{Coefficient: big.NewInt(1), Atoms: []heap.Handle{atom}}}}
}

func compareAtoms(a, b []heap.Handle) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return slices.Compare(a, b)
}

// ToNormalForm sorts atoms and terms, merges terms with equal atoms and drops
// zero terms. The input terms are not modified.
func ToNormalForm(terms []Term) Polynomial {
	sorted := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Coefficient.Sign() == 0 {
			continue
		}
		atoms := slices.Clone(t.Atoms)
		slices.Sort(atoms)
		sorted = append(sorted, Term{Coefficient: t.Coefficient, Atoms: atoms})
	}
	slices.SortStableFunc(sorted, func(a, b Term) int { return compareAtoms(a.Atoms, b.Atoms) })

	merged := make([]Term, 0, len(sorted))
	for _, t := range sorted {
		if n := len(merged); n > 0 && compareAtoms(merged[n-1].Atoms, t.Atoms) == 0 {
			merged[n-1].Coefficient = new(big.Int).Add(merged[n-1].Coefficient, t.Coefficient)
			continue
		}
		merged = append(merged, Term{Coefficient: new(big.Int).Set(t.Coefficient), Atoms: t.Atoms})
	}
	out := merged[:0]
	for _, t := range merged {
		if t.Coefficient.Sign() != 0 {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return Polynomial{}
	}
	return Polynomial{Terms: out}
}

// IsNormal checks the normal form invariant
func (p Polynomial) IsNormal() bool {
	for i, t := range p.Terms {
		if t.Coefficient == nil || t.Coefficient.Sign() == 0 {
			return false
		}
		if !slices.IsSorted(t.Atoms) {
			return false
		}
		if i > 0 && compareAtoms(p.Terms[i-1].Atoms, t.Atoms) >= 0 {
			return false
		}
	}
	return true
}

func (p Polynomial) Add(q Polynomial) Polynomial {
	return ToNormalForm(append(slices.Clone(p.Terms), q.Terms...))
}

func (p Polynomial) Neg() Polynomial {
	return p.Scale(big.NewInt(-1))
}

func (p Polynomial) Sub(q Polynomial) Polynomial {
	return p.Add(q.Neg())
}

// Scale multiplies every coefficient by c
func (p Polynomial) Scale(c *big.Int) Polynomial {
	if c.Sign() == 0 {
		return Polynomial{}
	}
	terms := make([]Term, len(p.Terms))
	for i, t := range p.Terms {
		terms[i] = Term{Coefficient: new(big.Int).Mul(t.Coefficient, c), Atoms: t.Atoms}
	}
	return Polynomial{Terms: terms}
}

func (p Polynomial) Mul(q Polynomial) Polynomial {
	terms := make([]Term, 0, len(p.Terms)*len(q.Terms))
	for _, a := range p.Terms {
		for _, b := range q.Terms {
			atoms := make([]heap.Handle, 0, len(a.Atoms)+len(b.Atoms))
			atoms = append(append(atoms, a.Atoms...), b.Atoms...)
			terms = append(terms, Term{Coefficient: new(big.Int).Mul(a.Coefficient, b.Coefficient), Atoms: atoms})
		}
	}
	return ToNormalForm(terms)
}

// IsConstant returns the value of p when it has no atoms
func (p Polynomial) IsConstant() (*big.Int, bool) {
	switch len(p.Terms) {
	case 0:
		return new(big.Int), true
	case 1:
		if len(p.Terms[0].Atoms) == 0 {
			return new(big.Int).Set(p.Terms[0].Coefficient), true
		}
	}
	return nil, false
}

// ConstantTerm is the coefficient of the atom-free term, or 0
func (p Polynomial) ConstantTerm() *big.Int {
	if len(p.Terms) > 0 && len(p.Terms[0].Atoms) == 0 {
		return new(big.Int).Set(p.Terms[0].Coefficient)
	}
	return new(big.Int)
}

// WithoutConstant drops the atom-free term
func (p Polynomial) WithoutConstant() Polynomial {
	if len(p.Terms) > 0 && len(p.Terms[0].Atoms) == 0 {
		return Polynomial{Terms: p.Terms[1:]}
	}
	return p
}

// Coefficient of the term whose atoms are exactly atoms, or 0
func (p Polynomial) Coefficient(atoms ...heap.Handle) *big.Int {
	for _, t := range p.Terms {
		if compareAtoms(t.Atoms, atoms) == 0 {
			return new(big.Int).Set(t.Coefficient)
		}
	}
	return new(big.Int)
}

// Atoms returns every distinct atom of p, sorted
func (p Polynomial) Atoms() []heap.Handle {
	var atoms []heap.Handle
	for _, t := range p.Terms {
		atoms = append(atoms, t.Atoms...)
	}
	slices.Sort(atoms)
	return slices.Compact(atoms)
}

// Gcd of the absolute values of the non-constant coefficients, 0 if there are none
func (p Polynomial) Gcd() *big.Int {
	g := new(big.Int)
	for _, t := range p.WithoutConstant().Terms {
		g.GCD(nil, nil, g, new(big.Int).Abs(t.Coefficient))
	}
	return g
}

func (p Polynomial) Equal(q Polynomial) bool {
	return slices.EqualFunc(p.Terms, q.Terms, func(a, b Term) bool {
		return a.Coefficient.Cmp(b.Coefficient) == 0 && slices.Equal(a.Atoms, b.Atoms)
	})
}

// format renders p with show rendering each atom, constant last
func (p Polynomial) format(show func(heap.Handle) string) string {
	if len(p.Terms) == 0 {
		return "0"
	}
	ordered := p.WithoutConstant().Terms
	if len(ordered) < len(p.Terms) {
		ordered = append(slices.Clone(ordered), p.Terms[0])
	}
	sb := &strings.Builder{}
	for i, t := range ordered {
		c := t.Coefficient
		switch {
		case i == 0 && c.Sign() < 0:
			sb.WriteString("-")
		case i > 0 && c.Sign() < 0:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		abs := new(big.Int).Abs(c)
		if len(t.Atoms) == 0 || abs.Cmp(bigOne) != 0 {
			sb.WriteString(abs.String())
			if len(t.Atoms) > 0 {
				sb.WriteString("*")
			}
		}
		for j, a := range t.Atoms {
			if j > 0 {
				sb.WriteString("*")
			}
			sb.WriteString(show(a))
		}
	}
	return sb.String()
}
