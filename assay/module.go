// Package assay loads modules of declarations and checks their assertions.
package assay

import (
	"io/fs"

	"github.com/cottand/assay/frontend/aerr"
	"github.com/cottand/assay/frontend/ast"
	"github.com/cottand/assay/frontend/loader"
	"github.com/cottand/assay/frontend/types"
	"github.com/cottand/assay/internal/log"
	"github.com/pkg/errors"
)

var moduleLogger = log.DefaultLogger.With("section", "assay")

// Module is a single unit of declarations together with the assertions
// checked against them.
//
// Malformed declarations are left out of the module and kept in Errors,
// so the well-formed assertions can still be checked.
type Module struct {
	name, path string
	syntax     *ast.Module
	decls      *types.Declarations
	oracle     *types.Oracle
	errors     *aerr.Errors
}

func NewModule(syntax *ast.Module) *Module {
	decls := types.NewDeclarations(syntax.Decls...)
	return &Module{
		name:   syntax.Name,
		syntax: syntax,
		decls:  decls,
		oracle: types.NewOracle(decls),
	}
}

// LoadModule reads the module stored at path in fsys.
// The error is only set when the file cannot be read or is not a module document.
func LoadModule(fsys fs.FS, path string) (*Module, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read module %s", path)
	}
	return NewModuleFromBytes(data, path)
}

func NewModuleFromBytes(data []byte, path string) (*Module, error) {
	syntax, errs, err := loader.Decode(path, data)
	if err != nil {
		return nil, err
	}
	m := NewModule(syntax)
	m.path = path
	m.errors = errs
	moduleLogger.Info("loaded module",
		"name", m.name,
		"path", path,
		"assertions", len(syntax.Assertions),
		"errors", errs,
	)
	return m, nil
}

func (m *Module) Name() string { return m.name }

// Path is empty for modules not loaded from a file
func (m *Module) Path() string { return m.path }

func (m *Module) Syntax() *ast.Module { return m.syntax }

func (m *Module) Errors() *aerr.Errors { return m.errors }

// Assertion returns the first assertion called name
func (m *Module) Assertion(name string) (*ast.Assertion, bool) {
	for _, a := range m.syntax.Assertions {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// FormatErrors renders every error of the module with its code and position, one per line
func (m *Module) FormatErrors() []string {
	file := m.path
	if file == "" {
		file = m.name
	}
	var out []string
	for _, e := range m.errors.Errors() {
		out = append(out, aerr.FormatWithPosition(e, file))
	}
	return out
}
