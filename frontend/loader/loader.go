// Package loader decodes modules of declarations and assertions from YAML.
//
// A module is a list of declarations, each introduced by one of the keys
// type, function, macro or assert:
//
//	module: arrays
//	declarations:
//	  - type: nat
//	    var: {n: int}
//	    where: [{">=": [n, 0]}]
//	  - assert: non-empty
//	    body:
//	      forall:
//	        vars: {xs: {array: int}}
//	        body: {"==>": [{"==": [{index: [xs, 0]}, 0]}, {">": [{len: xs}, 0]}]}
//
// In an expression a scalar is an integer, a boolean or a variable, and a
// mapping with a single key is an operator applied to its value. Types are
// primitive or declared names, or one of the mappings array, record, union,
// intersection and not.
package loader

import (
	"fmt"
	"io/fs"
	"math/big"

	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = log.DefaultLogger.With("section", "loader")

type moduleDoc struct {
	Module       string    `yaml:"module"`
	Declarations []declDoc `yaml:"declarations"`
}

type declDoc struct {
	Type     string      `yaml:"type"`
	Function string      `yaml:"function"`
	Macro    string      `yaml:"macro"`
	Assert   string      `yaml:"assert"`
	Var      yaml.Node   `yaml:"var"`
	Params   yaml.Node   `yaml:"params"`
	Returns  yaml.Node   `yaml:"returns"`
	Where    []yaml.Node `yaml:"where"`
	Requires []yaml.Node `yaml:"requires"`
	Ensures  []yaml.Node `yaml:"ensures"`
	Body     yaml.Node   `yaml:"body"`

	line int
}

func (d *declDoc) UnmarshalYAML(value *yaml.Node) error {
	type plain declDoc
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.line = value.Line
	return nil
}

// Parse decodes a module. name is used when the document does not name the module.
// Malformed declarations are reported together as aerr.MalformedModule errors.
func Parse(name string, data []byte) (*ast.Module, error) {
	mod, errs, err := Decode(name, data)
	if err != nil {
		return nil, err
	}
	if errs.HasError() {
		return mod, errors.WithMessagef(errs.Err(), "module %s", mod.Name)
	}
	return mod, nil
}

// Decode is Parse returning the malformed declarations separately.
// The returned module holds every well-formed declaration.
// err is only set when data is not a YAML module document.
func Decode(name string, data []byte) (*ast.Module, *aerr.Errors, error) {
	var doc moduleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrapf(err, "decode module %s", name)
	}
	if doc.Module != "" {
		name = doc.Module
	}
	mod := &ast.Module{Name: name}
	var errs *aerr.Errors
	for i := range doc.Declarations {
		if err := declaration(mod, &doc.Declarations[i]); err != nil {
			errs = errs.With(err)
		}
	}
	logger.Debug("parsed module",
		"name", mod.Name,
		"declarations", len(mod.Decls),
		"assertions", len(mod.Assertions),
		"errors", errs,
	)
	return mod, errs, nil
}

// Load reads and parses the module stored at path in fsys
func Load(fsys fs.FS, path string) (*ast.Module, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read module %s", path)
	}
	return Parse(path, data)
}

// LoadAll loads every module in fsys whose path matches pattern, in lexical order
func LoadAll(fsys fs.FS, pattern string) ([]*ast.Module, error) {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "match %s", pattern)
	}
	mods := make([]*ast.Module, 0, len(paths))
	for _, p := range paths {
		mod, err := Load(fsys, p)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func malformed(n *yaml.Node, format string, args ...any) aerr.AssayError {
	return aerr.New(aerr.NewMalformedModule{Positioner: ast.AtLine(n.Line), Message: fmt.Sprintf(format, args...)})
}

func declaration(mod *ast.Module, d *declDoc) aerr.AssayError {
	at := ast.AtLine(d.line)
	kinds := 0
	for _, name := range []string{d.Type, d.Function, d.Macro, d.Assert} {
		if name != "" {
			kinds++
		}
	}
	if kinds != 1 {
		return aerr.New(aerr.NewMalformedModule{
			Positioner: at,
			Message:    "a declaration needs exactly one of type, function, macro or assert",
		})
	}

	switch {
	case d.Type != "":
		vars, err := params(&d.Var)
		if err != nil {
			return err
		}
		if len(vars) != 1 {
			return aerr.New(aerr.NewMalformedModule{Positioner: at, Message: fmt.Sprintf("type %s needs a single var", d.Type)})
		}
		where, err := exprs(d.Where)
		if err != nil {
			return err
		}
		mod.Decls = append(mod.Decls, &ast.TypeDecl{Range: at, Name: d.Type, Var: vars[0], Invariant: where})

	case d.Function != "":
		fn := &ast.FunctionDecl{Range: at, Name: d.Function}
		var err aerr.AssayError
		if fn.Params, err = params(&d.Params); err != nil {
			return err
		}
		if fn.Returns, err = params(&d.Returns); err != nil {
			return err
		}
		if fn.Requires, err = exprs(d.Requires); err != nil {
			return err
		}
		if fn.Ensures, err = exprs(d.Ensures); err != nil {
			return err
		}
		mod.Decls = append(mod.Decls, fn)

	case d.Macro != "":
		ps, err := params(&d.Params)
		if err != nil {
			return err
		}
		body, err := required(&d.Body, at, "macro "+d.Macro)
		if err != nil {
			return err
		}
		mod.Decls = append(mod.Decls, &ast.MacroDecl{Range: at, Name: d.Macro, Params: ps, Body: body})

	default:
		body, err := required(&d.Body, at, "assertion "+d.Assert)
		if err != nil {
			return err
		}
		mod.Assertions = append(mod.Assertions, &ast.Assertion{Range: at, Name: d.Assert, Body: body})
	}
	return nil
}

func required(n *yaml.Node, at ast.Range, what string) (ast.Expr, aerr.AssayError) {
	if n.Kind == 0 {
		return nil, aerr.New(aerr.NewMalformedModule{Positioner: at, Message: what + " has no body"})
	}
	return expr(n)
}

func exprs(ns []yaml.Node) ([]ast.Expr, aerr.AssayError) {
	out := make([]ast.Expr, len(ns))
	for i := range ns {
		e, err := expr(&ns[i])
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// params decodes a mapping from names to types, keeping its order
func params(n *yaml.Node) ([]ast.Param, aerr.AssayError) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.AliasNode:
		return params(n.Alias)
	case yaml.MappingNode:
	default:
		return nil, malformed(n, "expected a mapping from names to types")
	}
	out := make([]ast.Param, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		t, err := typ(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Param{Name: n.Content[i].Value, Type: t})
	}
	return out, nil
}

// operator splits a single-key mapping
func operator(n *yaml.Node, what string) (string, *yaml.Node, aerr.AssayError) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, malformed(n, "%s must be a scalar or a mapping with a single key", what)
	}
	return n.Content[0].Value, n.Content[1], nil
}

// operands returns the elements of a sequence, checking there are want of them
// or, with a negative want, at least -want
func operands(n *yaml.Node, op string, want int) ([]*yaml.Node, aerr.AssayError) {
	if n.Kind == yaml.AliasNode {
		return operands(n.Alias, op, want)
	}
	if n.Kind != yaml.SequenceNode {
		return nil, malformed(n, "%s expects a list of operands", op)
	}
	if got := len(n.Content); (want >= 0 && got != want) || (want < 0 && got < -want) {
		return nil, malformed(n, "%s expects %d operands, found %d", op, max(want, -want), got)
	}
	return n.Content, nil
}

func expr(n *yaml.Node) (ast.Expr, aerr.AssayError) {
	at := ast.AtLine(n.Line)
	switch n.Kind {
	case yaml.AliasNode:
		return expr(n.Alias)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			// integers too large for an int64 resolve as floats
			v, ok := new(big.Int).SetString(n.Value, 0)
			if !ok {
				return nil, malformed(n, "%s is not an integer", n.Value)
			}
			return &ast.IntLit{Range: at, Value: v}, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, malformed(n, "invalid boolean %s", n.Value)
			}
			return &ast.BoolLit{Range: at, Value: b}, nil
		case "!!str":
			return &ast.Ident{Range: at, Name: n.Value}, nil
		}
		return nil, malformed(n, "unexpected scalar %s", n.Value)
	case yaml.MappingNode:
	default:
		return nil, malformed(n, "expected an expression")
	}

	op, arg, err := operator(n, "an expression")
	if err != nil {
		return nil, err
	}
	if binOp, ok := ast.BinaryOpFromString(op); ok {
		args, err := exprOperands(arg, op, -2)
		if err != nil {
			return nil, err
		}
		// a op b op c is (a op b) op c
		out := args[0]
		for _, r := range args[1:] {
			out = &ast.BinaryExpr{Range: at, Op: binOp, Left: out, Right: r}
		}
		return out, nil
	}

	switch op {
	case "!", "not", "neg":
		operand, err := expr(arg)
		if err != nil {
			return nil, err
		}
		unary := ast.OpNot
		if op == "neg" {
			unary = ast.OpNeg
		}
		return &ast.UnaryExpr{Range: at, Op: unary, Operand: operand}, nil
	case "index":
		args, err := exprOperands(arg, op, 2)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Range: at, Array: args[0], Index: args[1]}, nil
	case "len":
		arr, err := expr(arg)
		if err != nil {
			return nil, err
		}
		return &ast.LengthExpr{Range: at, Array: arr}, nil
	case "update":
		args, err := exprOperands(arg, op, 3)
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpr{Range: at, Array: args[0], Index: args[1], Value: args[2]}, nil
	case "array":
		if arg.Kind == yaml.SequenceNode && len(arg.Content) == 0 {
			return &ast.ArrayLit{Range: at}, nil
		}
		elems, err := exprOperands(arg, op, -1)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Range: at, Elems: elems}, nil
	case "gen":
		args, err := exprOperands(arg, op, 2)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayGen{Range: at, Value: args[0], Length: args[1]}, nil
	case "record":
		if arg.Kind != yaml.MappingNode {
			return nil, malformed(arg, "record expects a mapping from fields to values")
		}
		rec := &ast.RecordLit{Range: at}
		for i := 0; i < len(arg.Content); i += 2 {
			v, err := expr(arg.Content[i+1])
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, ast.FieldValue{Name: arg.Content[i].Value, Value: v})
		}
		return rec, nil
	case "field":
		args, err := operands(arg, op, 2)
		if err != nil {
			return nil, err
		}
		rec, err := expr(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccess{Range: at, Record: rec, Field: args[1].Value}, nil
	case "call":
		args, err := operands(arg, op, -1)
		if err != nil {
			return nil, err
		}
		call := &ast.CallExpr{Range: at, Name: args[0].Value}
		for _, a := range args[1:] {
			e, err := expr(a)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, e)
		}
		return call, nil
	case "is":
		args, err := operands(arg, op, 2)
		if err != nil {
			return nil, err
		}
		e, err := expr(args[0])
		if err != nil {
			return nil, err
		}
		t, err := typ(args[1])
		if err != nil {
			return nil, err
		}
		return &ast.IsExpr{Range: at, Expr: e, Type: t}, nil
	case "forall", "exists":
		return quantifier(arg, at, op == "forall")
	}
	return nil, malformed(n, "unknown operator %q", op)
}

func exprOperands(n *yaml.Node, op string, want int) ([]ast.Expr, aerr.AssayError) {
	ns, err := operands(n, op, want)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Expr, len(ns))
	for i, a := range ns {
		if out[i], err = expr(a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func quantifier(n *yaml.Node, at ast.Range, universal bool) (ast.Expr, aerr.AssayError) {
	if n.Kind != yaml.MappingNode {
		return nil, malformed(n, "a quantifier expects vars and body")
	}
	var vars, body *yaml.Node
	for i := 0; i < len(n.Content); i += 2 {
		switch key := n.Content[i].Value; key {
		case "vars":
			vars = n.Content[i+1]
		case "body":
			body = n.Content[i+1]
		default:
			return nil, malformed(n.Content[i], "unexpected quantifier key %q", key)
		}
	}
	if vars == nil || body == nil {
		return nil, malformed(n, "a quantifier expects vars and body")
	}
	ps, err := params(vars)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, malformed(vars, "a quantifier binds at least one variable")
	}
	b, err := expr(body)
	if err != nil {
		return nil, err
	}
	return &ast.QuantExpr{Range: at, Universal: universal, Params: ps, Body: b}, nil
}

func typ(n *yaml.Node) (ast.Type, aerr.AssayError) {
	at := ast.AtLine(n.Line)
	switch n.Kind {
	case yaml.AliasNode:
		return typ(n.Alias)
	case yaml.ScalarNode:
		if kind, ok := ast.PrimitiveFromName(n.Value); ok {
			return &ast.Primitive{Range: at, Kind: kind}, nil
		}
		if n.Value == "" {
			return nil, malformed(n, "expected a type")
		}
		return &ast.NominalType{Range: at, Name: n.Value}, nil
	}

	op, arg, err := operator(n, "a type")
	if err != nil {
		return nil, err
	}
	switch op {
	case "array":
		elem, err := typ(arg)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayType{Range: at, Elem: elem}, nil
	case "record":
		fields, err := params(arg)
		if err != nil {
			return nil, err
		}
		rec := &ast.RecordType{Range: at}
		for _, f := range fields {
			rec.Fields = append(rec.Fields, ast.FieldType{Name: f.Name, Type: f.Type})
		}
		return rec, nil
	case "union", "intersection":
		args, err := operands(arg, op, -1)
		if err != nil {
			return nil, err
		}
		options := make([]ast.Type, len(args))
		for i, a := range args {
			if options[i], err = typ(a); err != nil {
				return nil, err
			}
		}
		if op == "union" {
			return &ast.UnionType{Range: at, Options: options}, nil
		}
		return &ast.IntersectionType{Range: at, Options: options}, nil
	case "not":
		negated, err := typ(arg)
		if err != nil {
			return nil, err
		}
		return &ast.NegationType{Range: at, Negated: negated}, nil
	}
	return nil, malformed(n, "unknown type constructor %q", op)
}
