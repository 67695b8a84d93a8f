package formula

import (
	"errors"
	"log/slog"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/heap"
	"github.com/hashicorp/go-set/v3"
)

// Resolver finds top-level declarations by name
type Resolver interface {
	// ResolveExactly fails with a NotFound or Ambiguous error unless exactly one declaration matches
	ResolveExactly(name string, kind ast.DeclKind) (ast.Decl, error)
	ResolveAll(name string, kind ast.DeclKind) []ast.Decl
}

// Binding is what a name stands for inside a Scope
type Binding struct {
	Handle heap.Handle
	Type   ast.Type
}

// Scope is a persistent map from names to bindings
type Scope struct {
	vars *immutable.Map[string, Binding]
	// reserved names may occur free in bound handles and so cannot be reused by quantifiers
	reserved *set.Set[string]
}

func NewScope() Scope {
	return Scope{
		vars:     immutable.NewMap[string, Binding](immutable.NewHasher("")),
		reserved: set.New[string](0),
	}
}

func (s Scope) With(name string, b Binding) Scope {
	return Scope{vars: s.vars.Set(name, b), reserved: s.reserved}
}

func (s Scope) Lookup(name string) (Binding, bool) {
	return s.vars.Get(name)
}

func (s Scope) taken(name string) bool {
	_, bound := s.vars.Get(name)
	return bound || s.reserved.Contains(name)
}

// Translator turns AST expressions into normal-form formulas,
// pushing negation to the leaves as it goes.
type Translator struct {
	alg      *Algebra
	resolver Resolver
	logger   *slog.Logger
}

func NewTranslator(alg *Algebra, resolver Resolver) *Translator {
	return &Translator{
		alg:      alg,
		resolver: resolver,
		logger:   ast.NodeLogger(logger).With("section", "formula.translate"),
	}
}

func (t *Translator) Algebra() *Algebra { return t.alg }

func (t *Translator) Resolver() Resolver { return t.resolver }

// Assertion translates the body of a closed assertion
func (t *Translator) Assertion(assertion *ast.Assertion) (Formula, error) {
	f, err := t.Formula(NewScope(), assertion.Body, true)
	if err != nil {
		return heap.Nil, err
	}
	t.logger.Debug("translated assertion", "name", assertion.Name, "body", assertion.Body, "formula", Slog(t.alg, f))
	return f, nil
}

// Bind builds the scope in which the body of a macro, function or type invariant
// is instantiated: each parameter stands directly for its argument.
func (t *Translator) Bind(params []ast.Param, args []heap.Handle) Scope {
	scope := NewScope()
	for i, p := range params {
		arg, _, err := t.Typed(args[i], p.Type)
		if err != nil {
			arg = args[i]
		}
		scope = scope.With(p.Name, Binding{Handle: arg, Type: p.Type})
		for v := range t.alg.FreeVars(args[i]).Items() {
			scope.reserved.Insert(t.alg.Name(v))
		}
	}
	return scope
}

// Formula translates expr as a formula. When sign is false the result is
// the negation of expr, already in normal form.
func (t *Translator) Formula(scope Scope, expr ast.Expr, sign bool) (Formula, error) {
	a := t.alg
	switch e := expr.(type) {
	case *ast.BoolLit:
		return a.Truth(e.Value == sign), nil
	case *ast.UnaryExpr:
		if e.Op != ast.OpNot {
			return heap.Nil, aerr.New(aerr.NewTypeMismatch{Positioner: e, Expected: "bool", Found: ast.IntType})
		}
		return t.Formula(scope, e.Operand, !sign)
	case *ast.BinaryExpr:
		return t.binaryFormula(scope, e, sign)
	case *ast.CallExpr:
		macro, isMacro, err := t.resolveMacro(e)
		if err != nil {
			return heap.Nil, err
		}
		if isMacro {
			args, err := t.args(scope, e, macro.Params)
			if err != nil {
				return heap.Nil, err
			}
			return a.Invoke(sign, e.Name, args...), nil
		}
	case *ast.IsExpr:
		subject, _, err := t.Expr(scope, e.Expr)
		if err != nil {
			return heap.Nil, err
		}
		typ := a.TypeOf(e.Type)
		if !sign {
			typ = a.TypeNot(typ)
		}
		return a.Is(subject, typ), nil
	case *ast.QuantExpr:
		return t.quantifier(scope, e, sign)
	}
	// any other boolean-valued expression
	value, typ, err := t.Expr(scope, expr)
	if err != nil {
		return heap.Nil, err
	}
	if typ, err = t.Underlying(typ); err != nil {
		return heap.Nil, err
	}
	if !ast.IsPrimitive(typ, ast.KindBool) && !ast.IsPrimitive(typ, ast.KindAny) {
		return heap.Nil, aerr.New(aerr.NewTypeMismatch{Positioner: expr, Expected: "bool", Found: typ})
	}
	if IsFormulaOp(a.Op(value)) {
		if sign {
			return value, nil
		}
		return a.Not(value), nil
	}
	return a.Equals(true, value, a.Truth(sign)), nil
}

func (t *Translator) binaryFormula(scope Scope, e *ast.BinaryExpr, sign bool) (Formula, error) {
	a := t.alg
	both := func(lSign, rSign bool) (Formula, Formula, error) {
		l, err := t.Formula(scope, e.Left, lSign)
		if err != nil {
			return heap.Nil, heap.Nil, err
		}
		r, err := t.Formula(scope, e.Right, rSign)
		return l, r, err
	}
	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		l, r, err := both(sign, sign)
		if err != nil {
			return heap.Nil, err
		}
		if (e.Op == ast.OpAnd) == sign {
			return a.And(l, r), nil
		}
		return a.Or(l, r), nil
	case ast.OpImplies:
		// l ==> r is !l || r, and its negation is l && !r
		l, r, err := both(!sign, sign)
		if err != nil {
			return heap.Nil, err
		}
		if sign {
			return a.Or(l, r), nil
		}
		return a.And(l, r), nil
	case ast.OpIff:
		return t.iff(scope, e.Left, e.Right, sign)
	case ast.OpEq, ast.OpNeq:
		if e.Op == ast.OpNeq {
			sign = !sign
		}
		lType, err := t.TypeOf(scope, e.Left)
		if err != nil {
			return heap.Nil, err
		}
		if ast.IsPrimitive(lType, ast.KindBool) {
			return t.iff(scope, e.Left, e.Right, sign)
		}
		l, _, err := t.Expr(scope, e.Left)
		if err != nil {
			return heap.Nil, err
		}
		r, _, err := t.Expr(scope, e.Right)
		if err != nil {
			return heap.Nil, err
		}
		return a.Equals(sign, l, r), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		l, err := t.intExpr(scope, e.Left)
		if err != nil {
			return heap.Nil, err
		}
		r, err := t.intExpr(scope, e.Right)
		if err != nil {
			return heap.Nil, err
		}
		op := e.Op
		if !sign {
			op = invertComparison(op)
		}
		switch op {
		case ast.OpLt:
			return a.Less(l, r), nil
		case ast.OpLe:
			return a.LessEq(l, r), nil
		case ast.OpGt:
			return a.Less(r, l), nil
		default:
			return a.LessEq(r, l), nil
		}
	}
	return heap.Nil, aerr.New(aerr.NewTypeMismatch{Positioner: e, Expected: "bool", Found: ast.IntType})
}

func invertComparison(op ast.BinaryOp) ast.BinaryOp {
	switch op {
	case ast.OpLt:
		return ast.OpGe
	case ast.OpLe:
		return ast.OpGt
	case ast.OpGt:
		return ast.OpLe
	default:
		return ast.OpLt
	}
}

// iff translates l <==> r, or its negation
func (t *Translator) iff(scope Scope, lExpr, rExpr ast.Expr, sign bool) (Formula, error) {
	a := t.alg
	var parts [4]Formula
	for i, polarity := range [2]bool{true, false} {
		l, err := t.Formula(scope, lExpr, polarity)
		if err != nil {
			return heap.Nil, err
		}
		r, err := t.Formula(scope, rExpr, polarity == sign)
		if err != nil {
			return heap.Nil, err
		}
		parts[2*i], parts[2*i+1] = l, r
	}
	return a.Or(a.And(parts[0], parts[1]), a.And(parts[2], parts[3])), nil
}

func (t *Translator) quantifier(scope Scope, e *ast.QuantExpr, sign bool) (Formula, error) {
	a := t.alg
	vars := make([]heap.Handle, len(e.Params))
	var guards []Formula
	for i, p := range e.Params {
		if scope.taken(p.Name) {
			vars[i] = a.Fresh(p.Name)
		} else {
			vars[i] = a.Var(p.Name)
		}
		bound, _, err := t.Typed(vars[i], p.Type)
		if err != nil {
			return heap.Nil, err
		}
		if prim, ok := p.Type.(*ast.Primitive); !ok || prim.Kind == ast.KindNull || prim.Kind == ast.KindVoid {
			guards = append(guards, a.Is(vars[i], a.TypeOf(p.Type)))
		}
		scope = scope.With(p.Name, Binding{Handle: bound, Type: p.Type})
	}
	// forall x: body is exists x: !body when negated
	universal := e.Universal == sign
	body, err := t.Formula(scope, e.Body, sign)
	if err != nil {
		return heap.Nil, err
	}
	guard := a.And(guards...)
	if universal {
		return a.Forall(vars, a.Implies(guard, body)), nil
	}
	return a.Exists(vars, a.And(guard, body)), nil
}

// resolveMacro reports whether call refers to a macro, falling back to functions
func (t *Translator) resolveMacro(call *ast.CallExpr) (*ast.MacroDecl, bool, error) {
	switch candidates := t.resolver.ResolveAll(call.Name, ast.DeclMacro); len(candidates) {
	case 0:
		return nil, false, nil
	case 1:
		return candidates[0].(*ast.MacroDecl), true, nil
	}
	_, err := t.resolver.ResolveExactly(call.Name, ast.DeclMacro)
	return nil, false, withPosition(err, call)
}

func (t *Translator) resolveFunction(call *ast.CallExpr) (*ast.FunctionDecl, error) {
	decl, err := t.resolver.ResolveExactly(call.Name, ast.DeclFunction)
	if err != nil {
		return nil, withPosition(err, call)
	}
	return decl.(*ast.FunctionDecl), nil
}

// withPosition attaches the call site to resolution errors that do not carry one
func withPosition(err error, at ast.Positioner) error {
	var notFound aerr.NewNotFound
	if errors.As(err, &notFound) && (notFound.Positioner == nil || ast.RangeOf(notFound) == (ast.Range{})) {
		notFound.Positioner = ast.RangeOf(at)
		return aerr.New(notFound)
	}
	var ambiguous aerr.NewAmbiguous
	if errors.As(err, &ambiguous) && (ambiguous.Positioner == nil || ast.RangeOf(ambiguous) == (ast.Range{})) {
		ambiguous.Positioner = ast.RangeOf(at)
		return aerr.New(ambiguous)
	}
	return err
}

func (t *Translator) args(scope Scope, call *ast.CallExpr, params []ast.Param) ([]heap.Handle, error) {
	if len(params) != len(call.Args) {
		return nil, aerr.New(aerr.NewArityMismatch{Positioner: call, Name: call.Name, Expected: len(params), Found: len(call.Args)})
	}
	out := make([]heap.Handle, len(call.Args))
	for i, arg := range call.Args {
		h, _, err := t.Expr(scope, arg)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func (t *Translator) intExpr(scope Scope, expr ast.Expr) (Polynomial, error) {
	h, typ, err := t.Expr(scope, expr)
	if err != nil {
		return Polynomial{}, err
	}
	if !t.alg.IsPoly(h) {
		return Polynomial{}, aerr.New(aerr.NewTypeMismatch{Positioner: expr, Expected: "int", Found: typ})
	}
	return t.alg.PolyOf(h), nil
}

// Expr translates a value expression. Int-valued expressions are always polynomials.
func (t *Translator) Expr(scope Scope, expr ast.Expr) (heap.Handle, ast.Type, error) {
	a := t.alg
	switch e := expr.(type) {
	case *ast.Ident:
		b, ok := scope.Lookup(e.Name)
		if !ok {
			return heap.Nil, nil, aerr.New(aerr.NewUndefinedVariable{Positioner: e, Name: e.Name})
		}
		return b.Handle, b.Type, nil
	case *ast.IntLit:
		return a.BigInt(e.Value), ast.IntType, nil
	case *ast.BoolLit:
		return a.Truth(e.Value), ast.BoolType, nil
	case *ast.UnaryExpr:
		if e.Op == ast.OpNot {
			break
		}
		p, err := t.intExpr(scope, e.Operand)
		if err != nil {
			return heap.Nil, nil, err
		}
		return a.Poly(p.Neg()), ast.IntType, nil
	case *ast.BinaryExpr:
		if !e.Op.IsArithmetic() {
			break
		}
		l, err := t.intExpr(scope, e.Left)
		if err != nil {
			return heap.Nil, nil, err
		}
		r, err := t.intExpr(scope, e.Right)
		if err != nil {
			return heap.Nil, nil, err
		}
		switch e.Op {
		case ast.OpAdd:
			return a.Poly(l.Add(r)), ast.IntType, nil
		case ast.OpSub:
			return a.Poly(l.Sub(r)), ast.IntType, nil
		default:
			return a.Poly(l.Mul(r)), ast.IntType, nil
		}
	case *ast.IndexExpr:
		arr, arrType, err := t.Expr(scope, e.Array)
		if err != nil {
			return heap.Nil, nil, err
		}
		idx, err := t.intExpr(scope, e.Index)
		if err != nil {
			return heap.Nil, nil, err
		}
		elem, err := t.elemType(e.Array, arrType)
		if err != nil {
			return heap.Nil, nil, err
		}
		return t.Typed(a.Index(arr, a.Poly(idx)), elem)
	case *ast.LengthExpr:
		arr, arrType, err := t.Expr(scope, e.Array)
		if err != nil {
			return heap.Nil, nil, err
		}
		if _, err := t.elemType(e.Array, arrType); err != nil {
			return heap.Nil, nil, err
		}
		return a.Length(arr), ast.IntType, nil
	case *ast.UpdateExpr:
		arr, arrType, err := t.Expr(scope, e.Array)
		if err != nil {
			return heap.Nil, nil, err
		}
		idx, err := t.intExpr(scope, e.Index)
		if err != nil {
			return heap.Nil, nil, err
		}
		val, _, err := t.Expr(scope, e.Value)
		if err != nil {
			return heap.Nil, nil, err
		}
		return a.Update(arr, a.Poly(idx), val), arrType, nil
	case *ast.ArrayLit:
		elems := make([]heap.Handle, len(e.Elems))
		var elemType ast.Type = ast.VoidType
		for i, elemExpr := range e.Elems {
			h, typ, err := t.Expr(scope, elemExpr)
			if err != nil {
				return heap.Nil, nil, err
			}
			elems[i] = h
			if i == 0 {
				elemType = typ
			}
		}
		return a.Array(elems...), &ast.ArrayType{Elem: elemType}, nil
	case *ast.ArrayGen:
		val, typ, err := t.Expr(scope, e.Value)
		if err != nil {
			return heap.Nil, nil, err
		}
		length, err := t.intExpr(scope, e.Length)
		if err != nil {
			return heap.Nil, nil, err
		}
		return a.ArrayGen(val, a.Poly(length)), &ast.ArrayType{Elem: typ}, nil
	case *ast.RecordLit:
		names := make([]string, len(e.Fields))
		values := make([]heap.Handle, len(e.Fields))
		fields := make([]ast.FieldType, len(e.Fields))
		for i, f := range e.Fields {
			h, typ, err := t.Expr(scope, f.Value)
			if err != nil {
				return heap.Nil, nil, err
			}
			names[i], values[i] = f.Name, h
			fields[i] = ast.FieldType{Name: f.Name, Type: typ}
		}
		return a.Record(names, values), &ast.RecordType{Fields: fields}, nil
	case *ast.FieldAccess:
		rec, recType, err := t.Expr(scope, e.Record)
		if err != nil {
			return heap.Nil, nil, err
		}
		fieldType, err := t.fieldType(e, recType)
		if err != nil {
			return heap.Nil, nil, err
		}
		return t.Typed(a.Field(rec, e.Field), fieldType)
	case *ast.CallExpr:
		_, isMacro, err := t.resolveMacro(e)
		if err != nil {
			return heap.Nil, nil, err
		}
		if isMacro {
			break
		}
		fn, err := t.resolveFunction(e)
		if err != nil {
			return heap.Nil, nil, err
		}
		args, err := t.args(scope, e, fn.Params)
		if err != nil {
			return heap.Nil, nil, err
		}
		var returns ast.Type = ast.VoidType
		if len(fn.Returns) > 0 {
			returns = fn.Returns[0].Type
		}
		return t.Typed(a.Call(e.Name, args...), returns)
	}
	// boolean-valued expressions are their own formula
	f, err := t.Formula(scope, expr, true)
	return f, ast.BoolType, err
}

// Typed wraps int-valued atoms into polynomials
func (t *Translator) Typed(h heap.Handle, typ ast.Type) (heap.Handle, ast.Type, error) {
	underlying, err := t.Underlying(typ)
	if err != nil {
		return heap.Nil, nil, err
	}
	if ast.IsPrimitive(underlying, ast.KindInt) {
		return t.alg.AsPoly(h), typ, nil
	}
	return h, typ, nil
}

func (t *Translator) elemType(at ast.Expr, arrType ast.Type) (ast.Type, error) {
	underlying, err := t.Underlying(arrType)
	if err != nil {
		return nil, err
	}
	switch u := underlying.(type) {
	case *ast.ArrayType:
		return u.Elem, nil
	case *ast.Primitive:
		if u.Kind == ast.KindAny {
			return ast.AnyType, nil
		}
	}
	return nil, aerr.New(aerr.NewTypeMismatch{Positioner: at, Expected: "array", Found: arrType})
}

func (t *Translator) fieldType(at *ast.FieldAccess, recType ast.Type) (ast.Type, error) {
	underlying, err := t.Underlying(recType)
	if err != nil {
		return nil, err
	}
	switch u := underlying.(type) {
	case *ast.RecordType:
		if ft, ok := u.Field(at.Field); ok {
			return ft, nil
		}
	case *ast.Primitive:
		if u.Kind == ast.KindAny {
			return ast.AnyType, nil
		}
	}
	return nil, aerr.New(aerr.NewTypeMismatch{Positioner: at, Expected: "record with field " + at.Field, Found: recType})
}

// TypeOf infers the type of expr without translating it
func (t *Translator) TypeOf(scope Scope, expr ast.Expr) (ast.Type, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		b, ok := scope.Lookup(e.Name)
		if !ok {
			return nil, aerr.New(aerr.NewUndefinedVariable{Positioner: e, Name: e.Name})
		}
		return t.Underlying(b.Type)
	case *ast.IntLit:
		return ast.IntType, nil
	case *ast.BoolLit, *ast.IsExpr, *ast.QuantExpr:
		return ast.BoolType, nil
	case *ast.UnaryExpr:
		if e.Op == ast.OpNot {
			return ast.BoolType, nil
		}
		return ast.IntType, nil
	case *ast.BinaryExpr:
		if e.Op.IsArithmetic() {
			return ast.IntType, nil
		}
		return ast.BoolType, nil
	case *ast.LengthExpr:
		return ast.IntType, nil
	case *ast.CallExpr:
		_, isMacro, err := t.resolveMacro(e)
		if err != nil {
			return nil, err
		}
		if isMacro {
			return ast.BoolType, nil
		}
		fn, err := t.resolveFunction(e)
		if err != nil {
			return nil, err
		}
		if len(fn.Returns) == 0 {
			return ast.VoidType, nil
		}
		return t.Underlying(fn.Returns[0].Type)
	}
	_, typ, err := t.Expr(scope, expr)
	if err != nil {
		return nil, err
	}
	return t.Underlying(typ)
}

// Underlying resolves nominal types to the type they are declared as
func (t *Translator) Underlying(typ ast.Type) (ast.Type, error) {
	for range 32 {
		nominal, ok := typ.(*ast.NominalType)
		if !ok {
			return typ, nil
		}
		decl, err := t.resolver.ResolveExactly(nominal.Name, ast.DeclType)
		if err != nil {
			return nil, withPosition(err, nominal)
		}
		typ = decl.(*ast.TypeDecl).Var.Type
	}
	return ast.AnyType, nil
}
