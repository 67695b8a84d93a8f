package ast

// Type is the interface for all type nodes in the AST.
type Type interface {
	Node
	typeNode() // Marker method to distinguish types
}

var (
	_ Type = (*Primitive)(nil)
	_ Type = (*ArrayType)(nil)
	_ Type = (*RecordType)(nil)
	_ Type = (*NominalType)(nil)
	_ Type = (*UnionType)(nil)
	_ Type = (*IntersectionType)(nil)
	_ Type = (*NegationType)(nil)
)

type PrimitiveKind uint8

const (
	KindAny PrimitiveKind = iota
	KindVoid
	KindNull
	KindBool
	KindInt
)

var primitiveNames = [...]string{
	KindAny:  "any",
	KindVoid: "void",
	KindNull: "null",
	KindBool: "bool",
	KindInt:  "int",
}

func (k PrimitiveKind) String() string { return primitiveNames[k] }

// PrimitiveFromName returns the primitive called name, if there is one
func PrimitiveFromName(name string) (PrimitiveKind, bool) {
	for kind, n := range primitiveNames {
		if n == name {
			return PrimitiveKind(kind), true
		}
	}
	return 0, false
}

type Primitive struct {
	Range
	Kind PrimitiveKind
}

type ArrayType struct {
	Range
	Elem Type
}

type FieldType struct {
	Name string
	Type Type
}

// RecordType is a closed record, {int x, int y}
type RecordType struct {
	Range
	Fields []FieldType
}

// Field returns the type of field name
func (t *RecordType) Field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// NominalType refers to a TypeDecl by name
type NominalType struct {
	Range
	Name string
}

type UnionType struct {
	Range
	Options []Type
}

type IntersectionType struct {
	Range
	Options []Type
}

type NegationType struct {
	Range
	Negated Type
}

func (*Primitive) typeNode()        {}
func (*ArrayType) typeNode()        {}
func (*RecordType) typeNode()       {}
func (*NominalType) typeNode()      {}
func (*UnionType) typeNode()        {}
func (*IntersectionType) typeNode() {}
func (*NegationType) typeNode()     {}

var (
	IntType  Type = &Primitive{Kind: KindInt}
	BoolType Type = &Primitive{Kind: KindBool}
	AnyType  Type = &Primitive{Kind: KindAny}
	VoidType Type = &Primitive{Kind: KindVoid}
	NullType Type = &Primitive{Kind: KindNull}
)

// IsPrimitive reports whether t is the primitive of the given kind
func IsPrimitive(t Type, kind PrimitiveKind) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == kind
}
