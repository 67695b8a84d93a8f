package formula

import (
	"fmt"
	"strings"

	"github.com/cottand/assay/heap"
)

// String renders any node of the algebra in surface-like syntax
func (a *Algebra) String(h heap.Handle) string {
	sb := &strings.Builder{}
	a.write(sb, h)
	return sb.String()
}

func (a *Algebra) join(sb *strings.Builder, hs []heap.Handle, sep string) {
	for i, h := range hs {
		if i > 0 {
			sb.WriteString(sep)
		}
		a.writeOperand(sb, h)
	}
}

// writeOperand parenthesises junctions, quantifiers and multi-term polynomials
func (a *Algebra) writeOperand(sb *strings.Builder, h heap.Handle) {
	item := a.heap.Get(h)
	switch {
	case item.Op == OpAnd, item.Op == OpOr, item.Op == OpForall, item.Op == OpExists,
		item.Op == OpPoly && len(item.Children) > 1,
		item.Op == OpTypeUnion, item.Op == OpTypeIntersection:
		sb.WriteString("(")
		a.write(sb, h)
		sb.WriteString(")")
	default:
		a.write(sb, h)
	}
}

func (a *Algebra) write(sb *strings.Builder, h heap.Handle) {
	item := a.heap.Get(h)
	switch item.Op {
	case OpTruth:
		fmt.Fprint(sb, item.Payload.(bool))
	case OpAnd:
		a.join(sb, item.Children, " && ")
	case OpOr:
		a.join(sb, item.Children, " || ")
	case OpForall, OpExists:
		universal, vars, body := a.Quantified(h)
		if universal {
			sb.WriteString("forall(")
		} else {
			sb.WriteString("exists(")
		}
		a.join(sb, vars, ", ")
		sb.WriteString("): ")
		a.write(sb, body)
	case OpIneq:
		sb.WriteString("0 <= ")
		a.write(sb, item.Children[0])
	case OpArithEq:
		a.write(sb, item.Children[0])
		if item.Payload.(bool) {
			sb.WriteString(" == 0")
		} else {
			sb.WriteString(" != 0")
		}
	case OpEq:
		a.writeOperand(sb, item.Children[0])
		if item.Payload.(bool) {
			sb.WriteString(" == ")
		} else {
			sb.WriteString(" != ")
		}
		a.writeOperand(sb, item.Children[1])
	case OpInvoke:
		inv := item.Payload.(invocation)
		if !inv.sign {
			sb.WriteString("!")
		}
		sb.WriteString(inv.name)
		sb.WriteString("(")
		a.join(sb, item.Children, ", ")
		sb.WriteString(")")
	case OpIs:
		a.writeOperand(sb, item.Children[0])
		sb.WriteString(" is ")
		a.writeOperand(sb, item.Children[1])
	case OpAssign:
		a.writeOperand(sb, item.Children[0])
		sb.WriteString(" := ")
		a.write(sb, item.Children[1])

	case OpVar:
		sb.WriteString(item.Payload.(string))
	case OpPoly:
		sb.WriteString(a.PolyOf(h).format(func(atom heap.Handle) string {
			inner := &strings.Builder{}
			a.writeOperand(inner, atom)
			return inner.String()
		}))
	case OpTerm:
		fmt.Fprintf(sb, "%s*", item.Payload)
		a.join(sb, item.Children, "*")
	case OpIndex:
		a.writeOperand(sb, item.Children[0])
		sb.WriteString("[")
		a.write(sb, item.Children[1])
		sb.WriteString("]")
	case OpLength:
		sb.WriteString("|")
		a.write(sb, item.Children[0])
		sb.WriteString("|")
	case OpUpdate:
		a.writeOperand(sb, item.Children[0])
		sb.WriteString("[")
		a.write(sb, item.Children[1])
		sb.WriteString(":=")
		a.write(sb, item.Children[2])
		sb.WriteString("]")
	case OpArray:
		sb.WriteString("[")
		a.join(sb, item.Children, ", ")
		sb.WriteString("]")
	case OpArrayGen:
		sb.WriteString("[")
		a.write(sb, item.Children[0])
		sb.WriteString("; ")
		a.write(sb, item.Children[1])
		sb.WriteString("]")
	case OpRecord:
		sb.WriteString("{")
		for i, name := range a.RecordFields(h) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(name)
			sb.WriteString(": ")
			a.write(sb, item.Children[i])
		}
		sb.WriteString("}")
	case OpField:
		a.writeOperand(sb, item.Children[0])
		sb.WriteString(".")
		sb.WriteString(item.Payload.(string))
	case OpCall:
		sb.WriteString(item.Payload.(string))
		sb.WriteString("(")
		a.join(sb, item.Children, ", ")
		sb.WriteString(")")

	case OpTypeAny:
		sb.WriteString("any")
	case OpTypeVoid:
		sb.WriteString("void")
	case OpTypeNull:
		sb.WriteString("null")
	case OpTypeBool:
		sb.WriteString("bool")
	case OpTypeInt:
		sb.WriteString("int")
	case OpTypeArray:
		a.writeOperand(sb, item.Children[0])
		sb.WriteString("[]")
	case OpTypeRecord:
		sb.WriteString("{")
		for i, name := range a.TypeRecordFields(h) {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.write(sb, item.Children[i])
			sb.WriteString(" ")
			sb.WriteString(name)
		}
		sb.WriteString("}")
	case OpTypeNominal:
		sb.WriteString(item.Payload.(string))
	case OpTypeUnion:
		a.join(sb, item.Children, "|")
	case OpTypeIntersection:
		a.join(sb, item.Children, "&")
	case OpTypeNegation:
		sb.WriteString("!")
		a.writeOperand(sb, item.Children[0])
	default:
		fmt.Fprintf(sb, "<op %d>", item.Op)
	}
}
