// Package transform rewrites a JavaScript module for one environment.
//
// It coordinates parsing, scope analysis, macro validation and expansion,
// dead code elimination, and printing.
package transform

import (
	"path"

	charm "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/dce"
	"github.com/HugoDaniel/envonly/internal/diagnostic"
	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/logger"
	"github.com/HugoDaniel/envonly/internal/macro"
	"github.com/HugoDaniel/envonly/internal/parser"
	"github.com/HugoDaniel/envonly/internal/printer"
	"github.com/HugoDaniel/envonly/internal/scope"
	"github.com/HugoDaniel/envonly/internal/sourcemap"
)

// Options controls a transform.
type Options struct {
	// Env selects which macro arguments survive.
	Env env.Env

	// Package is the macro package name. Defaults to env.DefaultPackage.
	Package string

	// Specs overrides the macros recognized for Package.
	Specs []macro.Spec

	// SourceMap enables source map generation.
	SourceMap bool

	// SourceMapInline appends the map to Code as a data URI comment.
	// It implies SourceMap.
	SourceMapInline bool

	// IncludeSource embeds the original source in "sourcesContent".
	IncludeSource bool

	// PreserveUnreferenced keeps declarations that were already
	// unreferenced before macro expansion. Only code that lost its last
	// reference to an expanded macro is removed.
	PreserveUnreferenced bool

	// StripComments drops comments from the output.
	StripComments bool

	// Logger receives debug output. Defaults to logger.Default().
	Logger *charm.Logger
}

// Result is the output of a transform.
type Result struct {
	Code string

	// SourceMap is nil unless requested.
	SourceMap *sourcemap.SourceMap

	Stats Stats
}

// Stats describes what a transform changed.
type Stats struct {
	Macros  int // Macro calls rewritten
	Passes  int // Dead code elimination passes
	Removed int // Declarations, specifiers, and pattern elements removed
}

func (o Options) pkg() string {
	if o.Package == "" {
		return env.DefaultPackage
	}
	return o.Package
}

func (o Options) specs() []macro.Spec {
	if o.Specs != nil {
		return o.Specs
	}
	return macro.DefaultSpecs(o.pkg())
}

func (o Options) logger() *charm.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Default()
}

// Transform rewrites source, the module named id, for opts.Env.
//
// Errors are fatal and no partial output is returned. Syntax errors are
// marked with parser.ErrSyntax and macro misuse with macro.ErrMacroUsage;
// both carry a code frame as an error detail.
func Transform(source, id string, opts Options) (*Result, error) {
	if !opts.Env.Valid() {
		return nil, errors.Wrapf(env.ErrInvalid, "environment must be one of: %s", env.ValidList())
	}
	src := diagnostic.NewSource(id, source)

	module, errs := parser.New(source).Parse()
	if len(errs) > 0 {
		return nil, syntaxError(src, errs[0])
	}

	stats, err := Module(module, src, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Stats: stats}
	var gen *sourcemap.Generator
	if opts.SourceMap || opts.SourceMapInline {
		gen = sourcemap.NewGenerator(source)
		gen.SetFile(path.Base(id))
		gen.SetSourceName(id)
		gen.IncludeSourceContent(opts.IncludeSource)
	}

	p := printer.New(printer.Options{
		StripComments: opts.StripComments,
		SourceMapGen:  gen,
	})
	result.Code = p.Print(module)

	if gen != nil {
		result.SourceMap = gen.Generate()
		if opts.SourceMapInline {
			result.Code += "\n" + result.SourceMap.ToComment(true)
		}
	}
	return result, nil
}

// Module transforms an already parsed module in place. src locates
// diagnostics in the module's original text.
func Module(module *ast.Module, src *diagnostic.Source, opts Options) (Stats, error) {
	var stats Stats
	log := opts.logger()

	var candidates map[ast.NodeID]bool
	if opts.PreserveUnreferenced {
		candidates = dce.FindReferenced(module)
	}

	r := macro.NewRecognizer(opts.specs(), scope.Crawl(module), src)
	if err := macro.Guard(module, r); err != nil {
		return stats, err
	}

	n, err := macro.NewExpander(module, r, opts.Env).Expand()
	if err != nil {
		return stats, err
	}
	stats.Macros = n

	dceStats, err := dce.Eliminate(module, dce.Options{Candidates: candidates})
	if err != nil {
		return stats, errors.Wrap(err, "eliminating dead code")
	}
	stats.Passes = dceStats.Passes
	stats.Removed = dceStats.Removed

	log.Debug("transformed module",
		"env", opts.Env,
		"macros", stats.Macros,
		"passes", stats.Passes,
		"removed", stats.Removed)
	return stats, nil
}

// syntaxError reports perr the way macro errors are reported: prefixed
// with the module id and carrying a code frame. The ParseError stays
// reachable with errors.As.
func syntaxError(src *diagnostic.Source, perr parser.ParseError) error {
	d := src.At(diagnostic.CodeSyntax, perr.Line, perr.Column, perr.Message)
	d.Cause = perr
	return d.Mark(parser.ErrSyntax)
}
