package dce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/parser"
	"github.com/HugoDaniel/envonly/internal/printer"
	"github.com/HugoDaniel/envonly/internal/scope"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

func parse(t *testing.T, source string) *ast.Module {
	t.Helper()
	module, errs := parser.New(source).Parse()
	require.Empty(t, errs)
	return module
}

func output(module *ast.Module) string {
	return printer.New(printer.Options{}).Print(module)
}

func expectEliminated(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		module := parse(t, input)
		_, err := Eliminate(module, Options{})
		require.NoError(t, err)
		actual := output(module)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// ----------------------------------------------------------------------------
// Imports
// ----------------------------------------------------------------------------

func TestImports(t *testing.T) {
	expectEliminated(t, `import "side-effect"`, `import "side-effect";`)
	expectEliminated(t, `import {} from "empty"`, `import {} from "empty";`)
	expectEliminated(t,
		`import { a, _b } from "named"; import { _c } from "named-unused"; console.log(a)`,
		"import { a } from \"named\";\nconsole.log(a);")
	expectEliminated(t,
		`import a from "default"; import _b from "default-unused"; console.log(a)`,
		"import a from \"default\";\nconsole.log(a);")
	expectEliminated(t,
		`import * as a from "namespace"; import * as _b from "namespace-unused"; console.log(a)`,
		"import * as a from \"namespace\";\nconsole.log(a);")
	expectEliminated(t,
		`import a, { b } from "mixed"; b()`,
		"import { b } from \"mixed\";\nb();")
}

// ----------------------------------------------------------------------------
// Functions
// ----------------------------------------------------------------------------

func TestFunctions(t *testing.T) {
	expectEliminated(t,
		"export function a() { return } function _b() { return }",
		"export function a() {\n  return;\n}")
	expectEliminated(t,
		"export const a = function () { return }; const _b = function () { return }",
		"export const a = function () {\n  return;\n};")
	expectEliminated(t,
		"export const a = () => { return }; const _b = () => { return }",
		"export const a = () => {\n  return;\n};")
}

func TestSelfRecursion(t *testing.T) {
	expectEliminated(t, "function loop() { loop() }", "")
	expectEliminated(t, "function a() { b() } function b() { a() } a()",
		"function a() {\n  b();\n}\nfunction b() {\n  a();\n}\na();")
}

func TestAssignedFunction(t *testing.T) {
	expectEliminated(t, "let f; f = function () {}", "")
	expectEliminated(t, "let f; f = () => 1", "")
	expectEliminated(t, "let f; f = () => 1; f()", "let f;\nf = () => 1;\nf();")

	// Only bindings the module owns
	expectEliminated(t, "f = () => 1", "f = () => 1;")
	expectEliminated(t, "let f; f += () => 1", "let f;\nf += () => 1;")
}

func TestNamedFunctionExpressionKept(t *testing.T) {
	expectEliminated(t, "x = function inner() {}", "x = function inner() {};")
}

// ----------------------------------------------------------------------------
// Variables
// ----------------------------------------------------------------------------

func TestVariables(t *testing.T) {
	expectEliminated(t,
		`const a = "a"; const _b = "b"; console.log(a)`,
		"const a = \"a\";\nconsole.log(a);")
	expectEliminated(t, "const a = 1, b = 2; b", "const b = 2;\nb;")
	expectEliminated(t, "var a = 1, b = 2", "")
}

func TestWritesKeepBindings(t *testing.T) {
	expectEliminated(t, "let a = 1; a = 2", "let a = 1;\na = 2;")
	expectEliminated(t, "let a = 0; a++", "let a = 0;\na++;")
}

func TestArrayPatterns(t *testing.T) {
	expectEliminated(t, "const [a, _b] = c; console.log(a)", "const [a] = c;\nconsole.log(a);")
	expectEliminated(t, "const [_a, b] = c; console.log(b)", "const [, b] = c;\nconsole.log(b);")
	expectEliminated(t, "const [a, _b, _c] = d; a", "const [a] = d;\na;")
	expectEliminated(t, "const [a, ...rest] = d; a", "const [a] = d;\na;")
	expectEliminated(t, "const [_a] = c", "")

	// Defaults and nested patterns stay
	expectEliminated(t, "const [a = f()] = c", "const [a = f()] = c;")
	expectEliminated(t, "const [[a]] = c", "const [[a]] = c;")
}

func TestObjectPatterns(t *testing.T) {
	expectEliminated(t, "const {a, _b} = c; console.log(a)", "const {\n  a\n} = c;\nconsole.log(a);")
	expectEliminated(t, "const {a: x, b: y} = c; y", "const {\n  b: y\n} = c;\ny;")
	expectEliminated(t, "const {a} = c", "")
	expectEliminated(t, "const {a: {b}} = c", "")
	expectEliminated(t, "const {a: {b, c}} = d; c", "const {\n  a: {\n    b,\n    c\n  }\n} = d;\nc;")
	expectEliminated(t, "const {} = c", "const {} = c;")
}

func TestObjectRest(t *testing.T) {
	// The rest object depends on which siblings are named
	expectEliminated(t, "const {a, ...rest} = c; rest", "const {\n  a,\n  ...rest\n} = c;\nrest;")
	expectEliminated(t, "const {a, ...rest} = c; a", "const {\n  a\n} = c;\na;")
}

// ----------------------------------------------------------------------------
// Scoping
// ----------------------------------------------------------------------------

func TestNestedScopes(t *testing.T) {
	expectEliminated(t,
		"export function f() { const unused = 1; const used = 2; return used }",
		"export function f() {\n  const used = 2;\n  return used;\n}")
	expectEliminated(t,
		"export const f = () => { const unused = 1 }",
		"export const f = () => {};")
	expectEliminated(t,
		"if (x) { const a = 1 }",
		"if (x) {}")
	expectEliminated(t,
		"switch (x) { case 1: const a = 1; break }",
		"switch (x) {\n  case 1:\n    break;\n}")
}

func TestSingleStatementBody(t *testing.T) {
	expectEliminated(t, "label: var a = 1", "label:;")
}

func TestForHeadKept(t *testing.T) {
	expectEliminated(t, "for (let i = 0;;) {}", "for (let i = 0;;) {}")
	expectEliminated(t, "for (const a of b) {}", "for (const a of b) {}")
}

func TestShadowing(t *testing.T) {
	expectEliminated(t,
		"const a = 1; export function f(a) { return a }",
		"export function f(a) {\n  return a;\n}")
}

// ----------------------------------------------------------------------------
// Fixpoint
// ----------------------------------------------------------------------------

func TestRepeatedElimination(t *testing.T) {
	input := `
import { a } from "a";
import b from "b";
import * as c from "c";
function d() { return [a, b, c] }
const e = function () { return d() };
const f = () => e();
const g = f();
const [h] = g;
const { i } = g;
export const j = "j";
console.log("k");
`
	module := parse(t, input)
	stats, err := Eliminate(module, Options{})
	require.NoError(t, err)
	assert.Equal(t, "export const j = \"j\";\nconsole.log(\"k\");", output(module))
	assert.Greater(t, stats.Passes, 2)
	assert.Equal(t, 9, stats.Removed)
}

func TestIdempotent(t *testing.T) {
	module := parse(t, "import { a } from 'x'; const b = a; const [c, d] = b; d")
	_, err := Eliminate(module, Options{})
	require.NoError(t, err)
	first := output(module)

	stats, err := Eliminate(module, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, output(module))
	assert.Equal(t, Stats{Passes: 1, Removed: 0}, stats)
}

func TestExportsPreserved(t *testing.T) {
	expectEliminated(t, "const a = 1; export { a }", "const a = 1;\nexport { a };")
	expectEliminated(t, "export const {a, b} = c", "export const {\n  a,\n  b\n} = c;")
	expectEliminated(t, "export default function unused() {}", "export default function unused() {}")
	expectEliminated(t, "export class A {}", "export class A {}")
}

// ----------------------------------------------------------------------------
// Candidates
// ----------------------------------------------------------------------------

func TestCandidates(t *testing.T) {
	module := parse(t, "const a = 1; const b = 2; const c = b; x(c)")
	referenced := FindReferenced(module)

	// Drop the only read of c, as a macro expansion would
	stmt := module.Body[3].(*ast.ExprStmt)
	stmt.Expr.(*ast.CallExpr).Args[0] = module.NewUndefined(ast.Loc{})

	_, err := Eliminate(module, Options{Candidates: referenced})
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\nx(undefined);", output(module))
}

func TestFindReferenced(t *testing.T) {
	module := parse(t, "import { a, b } from 'x'; function f() { f() } const c = a; export const d = 1")
	info := scope.Crawl(module)
	referenced := FindReferenced(module)

	names := map[string]bool{}
	for id := range referenced {
		ref, ok := info.Declared(id)
		require.True(t, ok)
		names[info.Binding(ref).Name] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "d": true}, names)
}

func TestNilModuleBody(t *testing.T) {
	module := &ast.Module{}
	stats, err := Eliminate(module, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Passes)
}
