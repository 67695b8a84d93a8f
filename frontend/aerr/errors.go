package aerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/assay/frontend/ast"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	NotFound
	Ambiguous
	UndefinedVariable
	TypeMismatch
	MalformedModule
	ArityMismatch
)

// AssayError is an error caused by the input being verified rather than by the prover itself
type AssayError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) AssayError
	getStack() []byte
}

func FormatWithCode(e AssayError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			if lines := strings.Split(stack, "\n"); len(lines) > 6 {
				stack = strings.TrimSpace(lines[6])
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// FormatWithPosition prefixes FormatWithCode with the source range, when known
func FormatWithPosition(e AssayError, file string) string {
	r := ast.RangeOf(e)
	if r == (ast.Range{}) {
		return fmt.Sprintf("%s: %s", file, FormatWithCode(e))
	}
	return fmt.Sprintf("%s:%v: %s", file, r, FormatWithCode(e))
}

func New[E AssayError](err E) AssayError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From error
	ast.Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) AssayError {
	e.stack = stack
	return e
}

type NewNotFound struct {
	ast.Positioner
	Name  string
	Kind  ast.DeclKind
	stack []byte
}

func (e NewNotFound) Error() string {
	return fmt.Sprintf("%v '%s' is not declared", e.Kind, e.Name)
}
func (e NewNotFound) Code() ErrCode    { return NotFound }
func (e NewNotFound) getStack() []byte { return e.stack }
func (e NewNotFound) withStack(stack []byte) AssayError {
	e.stack = stack
	return e
}

type NewAmbiguous struct {
	ast.Positioner
	Name       string
	Kind       ast.DeclKind
	Candidates int
	stack      []byte
}

func (e NewAmbiguous) Error() string {
	return fmt.Sprintf("%v '%s' is ambiguous: %d declarations match", e.Kind, e.Name, e.Candidates)
}
func (e NewAmbiguous) Code() ErrCode    { return Ambiguous }
func (e NewAmbiguous) getStack() []byte { return e.stack }
func (e NewAmbiguous) withStack(stack []byte) AssayError {
	e.stack = stack
	return e
}

type NewUndefinedVariable struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUndefinedVariable) Code() ErrCode { return UndefinedVariable }
func (e NewUndefinedVariable) Error() string {
	return fmt.Sprintf("variable '%s' is not defined", e.Name)
}
func (e NewUndefinedVariable) getStack() []byte { return e.stack }
func (e NewUndefinedVariable) withStack(stack []byte) AssayError {
	e.stack = stack
	return e
}

type NewTypeMismatch struct {
	ast.Positioner
	Expected string
	Found    ast.Type
	stack    []byte
}

func (e NewTypeMismatch) Error() string {
	found := "unknown"
	if e.Found != nil {
		found = ast.TypeString(e.Found)
	}
	return fmt.Sprintf("type mismatch: expected %s, but found '%s'", e.Expected, found)
}
func (e NewTypeMismatch) Code() ErrCode    { return TypeMismatch }
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) AssayError {
	e.stack = stack
	return e
}

type NewArityMismatch struct {
	ast.Positioner
	Name     string
	Expected int
	Found    int
	stack    []byte
}

func (e NewArityMismatch) Error() string {
	return fmt.Sprintf("'%s' expects %d arguments, but %d were given", e.Name, e.Expected, e.Found)
}
func (e NewArityMismatch) Code() ErrCode    { return ArityMismatch }
func (e NewArityMismatch) getStack() []byte { return e.stack }
func (e NewArityMismatch) withStack(stack []byte) AssayError {
	e.stack = stack
	return e
}

type NewMalformedModule struct {
	ast.Positioner
	Message string
	stack   []byte
}

func (e NewMalformedModule) Error() string    { return e.Message }
func (e NewMalformedModule) Code() ErrCode    { return MalformedModule }
func (e NewMalformedModule) getStack() []byte { return e.stack }
func (e NewMalformedModule) withStack(stack []byte) AssayError {
	e.stack = stack
	return e
}
