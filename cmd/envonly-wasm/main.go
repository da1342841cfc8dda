//go:build js && wasm

// Command envonly-wasm is the WebAssembly build of the env-only transform.
// It exposes the transform to JavaScript via syscall/js.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/macro"
	"github.com/HugoDaniel/envonly/pkg/api"
)

var version = "0.1.0"

// jsOptions mirrors the JavaScript options object.
type jsOptions struct {
	Env                  *string `json:"env"`
	SSR                  *bool   `json:"ssr"`
	Package              *string `json:"package"`
	PreserveUnreferenced *bool   `json:"preserveUnreferenced"`
	SourceMap            *bool   `json:"sourcemap"`
	IncludeSource        *bool   `json:"includeSource"`
}

func main() {
	// Export functions to JavaScript
	js.Global().Set("__envonly", js.ValueOf(map[string]interface{}{
		"transform":  js.FuncOf(transformJS),
		"stubModule": js.FuncOf(stubModuleJS),
		"version":    version,
	}))

	// Keep the Go runtime alive
	select {}
}

// transformJS is the JavaScript-callable transform function.
// Signature: __envonly.transform(source: string, id: string, options?: object) => object
func transformJS(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("transform requires at least 2 arguments (source, id)")
	}

	source := args[0].String()
	id := args[1].String()

	var opts api.TransformOptions
	if len(args) > 2 && !args[2].IsUndefined() && !args[2].IsNull() {
		jsOpts := parseOptions(args[2])
		if jsOpts.Env != nil {
			opts.Env = *jsOpts.Env
		}
		if jsOpts.SSR != nil {
			opts.SSR = *jsOpts.SSR
		}
		if jsOpts.Package != nil {
			opts.Package = *jsOpts.Package
		}
		if jsOpts.PreserveUnreferenced != nil {
			opts.PreserveUnreferenced = *jsOpts.PreserveUnreferenced
		}
		if jsOpts.SourceMap != nil {
			opts.SourceMap = *jsOpts.SourceMap
		}
		if jsOpts.IncludeSource != nil {
			opts.IncludeSource = *jsOpts.IncludeSource
		}
	}

	result := api.Transform(source, id, opts)

	// Convert errors to JS array
	errors := make([]interface{}, len(result.Errors))
	for i, e := range result.Errors {
		errors[i] = map[string]interface{}{"message": e}
	}

	out := map[string]interface{}{
		"code":    result.Code,
		"errors":  errors,
		"macros":  result.Macros,
		"removed": result.Removed,
	}
	if result.SourceMap != "" {
		out["map"] = result.SourceMap
	}
	return out
}

// stubModuleJS returns the runtime source of a macro module.
// Signature: __envonly.stubModule(source: string, package?: string) => string
func stubModuleJS(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return ""
	}
	pkg := env.DefaultPackage
	if len(args) > 1 && args[1].Type() == js.TypeString {
		pkg = args[1].String()
	}
	return macro.StubModule(pkg, args[0].String())
}

// parseOptions extracts options from a JS object.
func parseOptions(jsVal js.Value) jsOptions {
	var opts jsOptions

	// Try JSON serialization first (handles complex objects better)
	jsonStr := js.Global().Get("JSON").Call("stringify", jsVal).String()
	if err := json.Unmarshal([]byte(jsonStr), &opts); err == nil {
		return opts
	}

	// Fallback to direct property access
	if v := jsVal.Get("env"); v.Type() == js.TypeString {
		s := v.String()
		opts.Env = &s
	}
	if v := jsVal.Get("ssr"); !v.IsUndefined() {
		b := v.Truthy()
		opts.SSR = &b
	}
	if v := jsVal.Get("package"); v.Type() == js.TypeString {
		s := v.String()
		opts.Package = &s
	}
	if v := jsVal.Get("preserveUnreferenced"); !v.IsUndefined() {
		b := v.Truthy()
		opts.PreserveUnreferenced = &b
	}
	if v := jsVal.Get("sourcemap"); !v.IsUndefined() {
		b := v.Truthy()
		opts.SourceMap = &b
	}
	return opts
}

// makeError creates a result object with an error.
func makeError(msg string) interface{} {
	return map[string]interface{}{
		"code": "",
		"errors": []interface{}{
			map[string]interface{}{"message": msg},
		},
		"macros":  0,
		"removed": 0,
	}
}
