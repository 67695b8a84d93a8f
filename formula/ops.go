// Package formula implements the normal-form formula algebra on top of the
// syntactic heap.
//
// Every constructor returns a handle in normal form: junctions are flattened,
// sorted by handle and deduplicated, constant comparisons are evaluated and
// every arithmetic sub-term is an interned Polynomial. Because the heap
// hash-conses nodes, two formulas are equal exactly when their handles are.
package formula

import (
	"github.com/cottand/assay/heap"
)

// Formula is a handle to a boolean-valued node in normal form
type Formula = heap.Handle

// Formulas
const (
	// OpTruth has a bool payload
	OpTruth heap.Op = iota + 1
	OpAnd
	OpOr
	// OpForall and OpExists have children [vars..., body]
	OpForall
	OpExists
	// OpIneq has one Poly child p and means 0 <= p
	OpIneq
	// OpArithEq has a bool sign payload and one Poly child p: p == 0 or p != 0
	OpArithEq
	// OpEq has a bool sign payload and two non-arithmetic operands, ordered by handle
	OpEq
	// OpInvoke has an invocation payload (name and sign) and the arguments as children
	OpInvoke
	// OpIs has children [expr, type]
	OpIs
	// OpAssign has children [candidate, bound] and means candidate == bound
	OpAssign
)

// Expressions
const (
	// OpVar has a string payload
	OpVar heap.Op = iota + 32
	// OpPoly has OpTerm children, sorted by atoms
	OpPoly
	// OpTerm has a *big.Int coefficient payload and sorted atom children
	OpTerm
	OpIndex
	OpLength
	// OpUpdate has children [array, index, value]
	OpUpdate
	OpArray
	// OpArrayGen has children [value, length]
	OpArrayGen
	// OpRecord has the comma-joined sorted field names as payload and the values as children
	OpRecord
	// OpField has the field name as payload and the record as child
	OpField
	// OpCall has the function name as payload and the arguments as children
	OpCall
)

// Types
const (
	OpTypeAny heap.Op = iota + 64
	OpTypeVoid
	OpTypeNull
	OpTypeBool
	OpTypeInt
	OpTypeArray
	OpTypeRecord
	OpTypeNominal
	OpTypeUnion
	OpTypeIntersection
	OpTypeNegation
)

// IsFormulaOp is true for the boolean normal forms
func IsFormulaOp(op heap.Op) bool { return op >= OpTruth && op <= OpAssign }

// IsTypeOp is true for type nodes
func IsTypeOp(op heap.Op) bool { return op >= OpTypeAny && op <= OpTypeNegation }

// IsAtomic is true for formulas that are not junctions or quantifiers
func IsAtomic(op heap.Op) bool {
	return IsFormulaOp(op) && op != OpAnd && op != OpOr && op != OpForall && op != OpExists
}

type invocation struct {
	name string
	sign bool
}

func (i invocation) PayloadKey() string {
	if i.sign {
		return "+" + i.name
	}
	return "!" + i.name
}
