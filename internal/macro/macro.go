// Package macro recognizes, validates, and expands the environment macros.
//
// A macro is a named import from one of the macro module specifiers. Calls
// to it are rewritten at build time:
//
//	only("server", expr)  // two-argument selector
//	serverOnly$(expr)     // one-argument forms
//	clientOnly$(expr)
//	server$(expr)         // legacy one-argument forms
//	client$(expr)
//
// Recognition goes through scope bindings, so local aliases work and
// shadowing names are ignored.
package macro

import (
	"github.com/cockroachdb/errors"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/diagnostic"
	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/scope"
)

// ErrMacroUsage marks every error about how a macro is imported or called.
var ErrMacroUsage = errors.New("invalid macro usage")

// Form is the calling convention of a macro.
type Form uint8

const (
	// FormSelect is only(env, expr): the literal picks the environment.
	FormSelect Form = iota
	// FormServer keeps its argument on the server.
	FormServer
	// FormClient keeps its argument on the client.
	FormClient
)

// Spec names one macro export.
type Spec struct {
	Source string // Module specifier
	Name   string // Exported name
	Form   Form
}

// Survives reports whether a one-argument macro keeps its argument under e.
func (s Spec) Survives(e env.Env) bool {
	switch s.Form {
	case FormServer:
		return e == env.Server
	case FormClient:
		return e == env.Client
	}
	return false
}

// DefaultSpecs returns the macros exported by pkg and its subpaths.
func DefaultSpecs(pkg string) []Spec {
	return []Spec{
		{Source: pkg + "/macro", Name: "only", Form: FormSelect},
		{Source: pkg + "/macros", Name: "serverOnly$", Form: FormServer},
		{Source: pkg + "/macros", Name: "clientOnly$", Form: FormClient},
		{Source: pkg, Name: "serverOnly$", Form: FormServer},
		{Source: pkg, Name: "clientOnly$", Form: FormClient},
		{Source: pkg, Name: "server$", Form: FormServer},
		{Source: pkg, Name: "client$", Form: FormClient},
	}
}

// Sources returns the distinct module specifiers of specs, in order.
func Sources(specs []Spec) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range specs {
		if !seen[s.Source] {
			seen[s.Source] = true
			out = append(out, s.Source)
		}
	}
	return out
}

// usageError builds a diagnostic marked with ErrMacroUsage.
func usageError(src *diagnostic.Source, code diagnostic.Code, loc ast.Loc, format string, args ...any) error {
	return src.Errorf(code, int(loc.Start), format, args...).Mark(ErrMacroUsage)
}

// ----------------------------------------------------------------------------
// Recognizer
// ----------------------------------------------------------------------------

// Recognizer matches calls against macro imports using scope information
// computed before any rewriting.
type Recognizer struct {
	specs   map[specKey]Spec
	sources map[string]bool
	info    *scope.Info
	src     *diagnostic.Source
}

type specKey struct {
	source string
	name   string
}

// NewRecognizer creates a recognizer for specs. info must describe the
// module the calls come from.
func NewRecognizer(specs []Spec, info *scope.Info, src *diagnostic.Source) *Recognizer {
	r := &Recognizer{
		specs:   make(map[specKey]Spec, len(specs)),
		sources: make(map[string]bool),
		info:    info,
		src:     src,
	}
	for _, s := range specs {
		r.specs[specKey{s.Source, s.Name}] = s
		r.sources[s.Source] = true
	}
	return r
}

// IsSource returns true if specifier is a macro module.
func (r *Recognizer) IsSource(specifier string) bool {
	return r.sources[specifier]
}

// SpecOf returns the macro a binding imports, if any. Only named imports
// qualify; the guard rejects the other forms.
func (r *Recognizer) SpecOf(b *scope.Binding) (Spec, bool) {
	if b == nil || b.Import == nil || b.Import.Kind != ast.ImportNamed {
		return Spec{}, false
	}
	s, ok := r.specs[specKey{b.Import.Source, b.Import.Imported}]
	return s, ok
}

// Recognize reports whether call invokes a macro. A recognized call with
// the wrong shape returns an error.
func (r *Recognizer) Recognize(call *ast.CallExpr) (Spec, bool, error) {
	callee, ok := call.Callee.(*ast.IdentExpr)
	if !ok {
		return Spec{}, false, nil
	}
	ref, ok := r.info.Resolve(callee.ID)
	if !ok {
		return Spec{}, false, nil
	}
	spec, ok := r.SpecOf(r.info.Binding(ref))
	if !ok {
		return Spec{}, false, nil
	}

	if spec.Form == FormSelect {
		return spec, true, r.checkSelect(call, spec)
	}
	return spec, true, r.checkSingle(call, spec)
}

func (r *Recognizer) checkSelect(call *ast.CallExpr, spec Spec) error {
	if len(call.Args) != 2 {
		return usageError(r.src, diagnostic.CodeMacroArity, call.Loc,
			"'%s' macro must take exactly two arguments", spec.Name)
	}
	lit, ok := call.Args[0].(*ast.StringLit)
	if !ok {
		return usageError(r.src, diagnostic.CodeMacroArgument, call.Loc,
			"'%s' macro must take a string literal as the first argument", spec.Name)
	}
	if !env.Env(lit.Value).Valid() {
		return usageError(r.src, diagnostic.CodeMacroArgument, call.Loc,
			"environment must be one of: %s", env.ValidList())
	}
	if _, ok := call.Args[1].(*ast.SpreadExpr); ok {
		return usageError(r.src, diagnostic.CodeMacroArgument, call.Loc,
			"'%s' macro must take an expression as the second argument", spec.Name)
	}
	return nil
}

func (r *Recognizer) checkSingle(call *ast.CallExpr, spec Spec) error {
	if len(call.Args) != 1 {
		return usageError(r.src, diagnostic.CodeMacroArity, call.Loc,
			"'%s' must take exactly one argument", spec.Name)
	}
	if _, ok := call.Args[0].(*ast.SpreadExpr); ok {
		return usageError(r.src, diagnostic.CodeMacroArgument, call.Loc,
			"'%s' must take an expression as its argument", spec.Name)
	}
	return nil
}
