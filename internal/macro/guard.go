package macro

import (
	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/diagnostic"
	"github.com/HugoDaniel/envonly/internal/scope"
)

// Guard rejects macro usage that cannot be rewritten statically:
//   - default and namespace imports of a macro module
//   - any reference to a macro binding other than as a call's callee
//
// It returns the violation that comes first in the source, or nil.
func Guard(module *ast.Module, r *Recognizer) error {
	var first error
	firstPos := int32(-1)
	report := func(loc ast.Loc, err error) {
		if firstPos < 0 || loc.Start < firstPos {
			first = err
			firstPos = loc.Start
		}
	}

	for _, stmt := range module.Body {
		decl, ok := stmt.(*ast.ImportDecl)
		if !ok || !r.IsSource(decl.Source.Value) {
			continue
		}
		for _, spec := range decl.Specs {
			switch spec.Kind {
			case ast.ImportDefault:
				report(spec.Loc, usageError(r.src, diagnostic.CodeMacroImport, spec.Loc,
					"Default import is not supported by '%s'", decl.Source.Value))
			case ast.ImportNamespace:
				report(spec.Loc, usageError(r.src, diagnostic.CodeMacroImport, spec.Loc,
					"Namespace import is not supported by '%s'", decl.Source.Value))
			}
		}
	}

	r.info.Each(func(_ scope.Ref, b *scope.Binding) {
		if _, ok := r.SpecOf(b); !ok {
			return
		}
		check := func(refs []scope.Reference) {
			for _, ref := range refs {
				if ref.Context == scope.ContextCallee {
					continue
				}
				report(ref.Loc, usageError(r.src, diagnostic.CodeMacroRuntimeUse, ref.Loc,
					"'%s' macro cannot be manipulated at runtime as it must be statically analyzable", b.Name))
			}
		}
		check(b.References)
		check(b.Violations)
	})

	return first
}
