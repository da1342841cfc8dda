// Package api provides the public API for the env-only transform.
//
// This package is intended for programmatic use of the transform and for
// Go code that mirrors the runtime macro module. For CLI usage, see
// cmd/envonly.
package api

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/macro"
	"github.com/HugoDaniel/envonly/internal/transform"
)

// Env is an environment tag: "server" or "client".
type Env = env.Env

const (
	EnvServer = env.Server
	EnvClient = env.Client
)

// ErrUnreplacedMacro is returned by a macro that was never rewritten.
var ErrUnreplacedMacro = errors.New("unreplaced macro")

// TransformOptions controls a transform.
type TransformOptions struct {
	// Env is "server" or "client". When empty, SSR selects it.
	Env string

	// SSR selects the server environment when Env is empty.
	SSR bool

	// Package is the macro package name. Defaults to "vite-env-only".
	Package string

	// PreserveUnreferenced only removes code that lost its last reference
	// to a rewritten macro.
	PreserveUnreferenced bool

	// SourceMap enables source map generation.
	SourceMap bool

	// IncludeSource embeds the original source code in "sourcesContent".
	IncludeSource bool
}

// TransformResult contains the transform output.
type TransformResult struct {
	// Code is the rewritten module. Empty when Errors is not.
	Code string

	// Errors contains the error that stopped the transform, with its code
	// frame when it has one.
	Errors []string

	// Macros is the number of macro calls rewritten.
	Macros int

	// Removed is the number of declarations dead code elimination removed.
	Removed int

	// SourceMap is the generated source map as a JSON string.
	// Empty if source map generation was not requested.
	SourceMap string

	// SourceMapDataURI is the source map as a data URI for inline embedding.
	SourceMapDataURI string
}

// Transform rewrites source, the module named id, with custom options.
func Transform(source, id string, opts TransformOptions) TransformResult {
	e := env.FromSSR(opts.SSR)
	if opts.Env != "" {
		parsed, err := env.Parse(opts.Env)
		if err != nil {
			return TransformResult{Errors: []string{ErrorMessage(err)}}
		}
		e = parsed
	}

	result, err := transform.Transform(source, id, transform.Options{
		Env:                  e,
		Package:              opts.Package,
		SourceMap:            opts.SourceMap,
		IncludeSource:        opts.IncludeSource,
		PreserveUnreferenced: opts.PreserveUnreferenced,
	})
	if err != nil {
		return TransformResult{Errors: []string{ErrorMessage(err)}}
	}

	apiResult := TransformResult{
		Code:    result.Code,
		Macros:  result.Stats.Macros,
		Removed: result.Stats.Removed,
	}
	if result.SourceMap != nil {
		apiResult.SourceMap = result.SourceMap.ToJSON()
		apiResult.SourceMapDataURI = result.SourceMap.ToDataURI()
	}
	return apiResult
}

// ErrorMessage formats err followed by its details, such as a code frame.
func ErrorMessage(err error) string {
	details := errors.GetAllDetails(err)
	if len(details) == 0 {
		return err.Error()
	}
	return err.Error() + "\n\n" + strings.Join(details, "\n")
}

// ----------------------------------------------------------------------------
// Runtime macros
// ----------------------------------------------------------------------------

// SetEnv fixes the process environment read by Only. It can be set once;
// setting a different value later fails.
func SetEnv(e Env) error {
	return env.Default.Set(e)
}

// GetEnv returns the process environment and whether it was set.
func GetEnv() (Env, bool) {
	return env.Default.Get()
}

func unreplaced() error {
	return errors.Mark(errors.New(macro.UnreplacedMessage(env.DefaultPackage)), ErrUnreplacedMacro)
}

// Only returns v when the process environment is e. Any other state means
// the call should have been rewritten, which is an error.
func Only[T any](e Env, v T) (T, error) {
	if current, ok := env.Default.Get(); ok && current == e {
		return v, nil
	}
	var zero T
	return zero, unreplaced()
}

// ServerOnly always fails; it only has meaning once rewritten.
func ServerOnly[T any](v T) (T, error) {
	var zero T
	return zero, unreplaced()
}

// ClientOnly always fails; it only has meaning once rewritten.
func ClientOnly[T any](v T) (T, error) {
	var zero T
	return zero, unreplaced()
}

// Server returns v unchanged.
//
// Deprecated: use ServerOnly.
func Server[T any](v T) T { return v }

// Client returns v unchanged.
//
// Deprecated: use ClientOnly.
func Client[T any](v T) T { return v }
