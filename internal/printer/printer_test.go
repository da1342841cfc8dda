package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/parser"
	"github.com/HugoDaniel/envonly/internal/sourcemap"
)

// ----------------------------------------------------------------------------
// Test Helpers (esbuild-style)
// ----------------------------------------------------------------------------

// expectPrinted parses input and verifies the printed output.
func expectPrinted(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		module, errs := parser.New(input).Parse()
		if len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		actual := New(Options{}).Print(module)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// expectPrintedStripped verifies output with comments dropped.
func expectPrintedStripped(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input+"_strip", func(t *testing.T) {
		t.Helper()
		module, errs := parser.New(input).Parse()
		if len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		actual := New(Options{StripComments: true}).Print(module)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func TestVariableDeclarations(t *testing.T) {
	expectPrinted(t, "const a = 1", "const a = 1;")
	expectPrinted(t, "let a, b", "let a, b;")
	expectPrinted(t, "var a = 1, b", "var a = 1,\n  b;")
	expectPrinted(t, "const a = 1, b = 2", "const a = 1,\n  b = 2;")
	expectPrinted(t, "const {a} = c", "const {\n  a\n} = c;")
	expectPrinted(t, "const {a: b = 1, ...c} = d", "const {\n  a: b = 1,\n  ...c\n} = d;")
	expectPrinted(t, "const {} = d", "const {} = d;")
	expectPrinted(t, "const [a] = c", "const [a] = c;")
	expectPrinted(t, "const [, a] = c", "const [, a] = c;")
	expectPrinted(t, "const [a, , b] = c", "const [a,, b] = c;")
	expectPrinted(t, "const [a = 1, ...b] = c", "const [a = 1, ...b] = c;")
	expectPrinted(t, "const [{a}] = c", "const [{\n  a\n}] = c;")
}

func TestFunctionDeclarations(t *testing.T) {
	expectPrinted(t, "function a() {}", "function a() {}")
	expectPrinted(t, "function a(b, c = 1, ...d) { return b }", "function a(b, c = 1, ...d) {\n  return b;\n}")
	expectPrinted(t, "async function* a() {}", "async function* a() {}")
	expectPrinted(t, "function a() { function b() { return } }", "function a() {\n  function b() {\n    return;\n  }\n}")
}

func TestClasses(t *testing.T) {
	expectPrinted(t, "class A {}", "class A {}")
	expectPrinted(t, "class A extends B {}", "class A extends B {}")
	expectPrinted(t,
		"class A extends B { static x = 1; #y; constructor() { super() } get z() { return 1 } static { init() } }",
		"class A extends B {\n  static x = 1;\n  #y;\n  constructor() {\n    super();\n  }\n  get z() {\n    return 1;\n  }\n  static {\n    init();\n  }\n}")
	expectPrinted(t, "class A { async *gen() {} set v(x) {} }", "class A {\n  async *gen() {}\n  set v(x) {}\n}")
	expectPrinted(t, "x = class {}", "x = class {};")
}

func TestControlFlow(t *testing.T) {
	expectPrinted(t, "if (a) b", "if (a) b;")
	expectPrinted(t, "if (a) b; else c", "if (a) b; else c;")
	expectPrinted(t, "if (a) { b } else if (c) { d } else { e }",
		"if (a) {\n  b;\n} else if (c) {\n  d;\n} else {\n  e;\n}")
	expectPrinted(t, "for (let i = 0; i < 10; i++) {}", "for (let i = 0; i < 10; i++) {}")
	expectPrinted(t, "for (;;) {}", "for (;;) {}")
	expectPrinted(t, "for (const a of b) c()", "for (const a of b) c();")
	expectPrinted(t, "for (a in b);", "for (a in b);")
	expectPrinted(t, "for (let a = (\"x\" in b);;) {}", "for (let a = (\"x\" in b);;) {}")
	expectPrinted(t, "async function f() { for await (const x of y) {} }", "async function f() {\n  for await (const x of y) {}\n}")
	expectPrinted(t, "while (a) { b() }", "while (a) {\n  b();\n}")
	expectPrinted(t, "do { a() } while (b)", "do {\n  a();\n} while (b);")
	expectPrinted(t, "a: for (;;) break a", "a: for (;;) break a;")
	expectPrinted(t, "for (;;) { continue }", "for (;;) {\n  continue;\n}")
	expectPrinted(t, "throw new Error('x')", "throw new Error('x');")
	expectPrinted(t, "debugger", "debugger;")
	expectPrinted(t, ";", ";")
}

func TestSwitchAndTry(t *testing.T) {
	expectPrinted(t, "switch (a) { case 1: b(); break; default: c() }",
		"switch (a) {\n  case 1:\n    b();\n    break;\n  default:\n    c();\n}")
	expectPrinted(t, "switch (a) {}", "switch (a) {}")
	expectPrinted(t, "try { a() } catch (e) { b() } finally {}",
		"try {\n  a();\n} catch (e) {\n  b();\n} finally {}")
	expectPrinted(t, "try {} catch {}", "try {} catch {}")
}

func TestImports(t *testing.T) {
	expectPrinted(t, `import a, { b, c as d } from "x"`, `import a, { b, c as d } from "x";`)
	expectPrinted(t, `import * as ns from 'x'`, `import * as ns from 'x';`)
	expectPrinted(t, `import a, * as b from "x"`, `import a, * as b from "x";`)
	expectPrinted(t, `import "x"`, `import "x";`)
	expectPrinted(t, `import {} from "x"`, `import {} from "x";`)
	expectPrinted(t, `import { "a-b" as c } from "x"`, `import { "a-b" as c } from "x";`)
	expectPrinted(t, `import data from "./a.json" with { type: "json" }`, `import data from "./a.json" with { type: "json" };`)
}

func TestExports(t *testing.T) {
	expectPrinted(t, "export const a = 1", "export const a = 1;")
	expectPrinted(t, "export function a() {}", "export function a() {}")
	expectPrinted(t, "const a = 1, b = 2; export { a, b as c }", "const a = 1,\n  b = 2;\nexport { a, b as c };")
	expectPrinted(t, `export { a } from "x"`, `export { a } from "x";`)
	expectPrinted(t, `export { default } from "x"`, `export { default } from "x";`)
	expectPrinted(t, `export * from "x"`, `export * from "x";`)
	expectPrinted(t, `export * as ns from "x"`, `export * as ns from "x";`)
	expectPrinted(t, "export {}", "export {};")
	expectPrinted(t, "export default function () {}", "export default function () {}")
	expectPrinted(t, "export default class {}", "export default class {}")
	expectPrinted(t, "export default (function () {})", "export default (function () {});")
	expectPrinted(t, "export default a + b", "export default a + b;")
}

func TestHashbangAndComments(t *testing.T) {
	expectPrinted(t, "#!/usr/bin/env node\na()", "#!/usr/bin/env node\na();")
	expectPrinted(t, "// hello\na()", "// hello\na();")
	expectPrinted(t, "/* a */ b()", "/* a */\nb();")
	expectPrinted(t, "function f() {\n  // inner\n  return 1\n}", "function f() {\n  // inner\n  return 1;\n}")
	expectPrintedStripped(t, "// hello\na()", "a();")
}

func TestBlankLinesCollapse(t *testing.T) {
	expectPrinted(t, "a()\n\n\nb()", "a();\nb();")
	expectPrinted(t, "", "")
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func TestLiterals(t *testing.T) {
	expectPrinted(t, "x = 'a'", "x = 'a';")
	expectPrinted(t, `x = "a\"b"`, `x = "a\"b";`)
	expectPrinted(t, "x = 0x1F", "x = 0x1F;")
	expectPrinted(t, "x = 10n", "x = 10n;")
	expectPrinted(t, "x = /ab+c/gi", "x = /ab+c/gi;")
	expectPrinted(t, "x = [true, false, null, this]", "x = [true, false, null, this];")
	expectPrinted(t, "x = `a${b}c${d}`", "x = `a${b}c${d}`;")
	expectPrinted(t, "x = tag`a`", "x = tag`a`;")
	expectPrinted(t, "x = [a, , b, ...c]", "x = [a,, b, ...c];")
	expectPrinted(t, "x = [a,,]", "x = [a,,];")
	expectPrinted(t, "x = []", "x = [];")
}

func TestObjects(t *testing.T) {
	expectPrinted(t, "x = {}", "x = {};")
	expectPrinted(t,
		`x = { a, b: 1, [c]: 2, d() {}, get e() { return 1 }, ...f, "g-h": 3 }`,
		"x = {\n  a,\n  b: 1,\n  [c]: 2,\n  d() {},\n  get e() {\n    return 1;\n  },\n  ...f,\n  \"g-h\": 3\n};")
	expectPrinted(t, "x = { async *a() {} }", "x = {\n  async *a() {}\n};")
	expectPrinted(t, "({}).toString()", "({}).toString();")
	expectPrinted(t, "({a} = b)", "({\n  a\n} = b);")
	expectPrinted(t, "({a = 1} = b)", "({\n  a = 1\n} = b);")
	expectPrinted(t, "[a, b] = [b, a]", "[a, b] = [b, a];")
}

func TestFunctionsAndArrows(t *testing.T) {
	expectPrinted(t, "x = function () {}", "x = function () {};")
	expectPrinted(t, "x = function* named() {}", "x = function* named() {};")
	expectPrinted(t, "(function () {})()", "(function () {})();")
	expectPrinted(t, "(class {})", "(class {});")
	expectPrinted(t, "x => x", "x => x;")
	expectPrinted(t, "(x) => x", "x => x;")
	expectPrinted(t, "(x = 1) => x", "(x = 1) => x;")
	expectPrinted(t, "(...x) => x", "(...x) => x;")
	expectPrinted(t, "(a, b) => a + b", "(a, b) => a + b;")
	expectPrinted(t, "() => ({})", "() => ({});")
	expectPrinted(t, "() => (a, b)", "() => (a, b);")
	expectPrinted(t, "async () => {}", "async () => {};")
	expectPrinted(t, "async x => await x", "async x => await x;")
	expectPrinted(t, "(() => 1)()", "(() => 1)();")
	expectPrinted(t, "x = () => { return 1 }", "x = () => {\n  return 1;\n};")
	expectPrinted(t, "function* g() { yield; yield a; yield* b }", "function* g() {\n  yield;\n  yield a;\n  yield* b;\n}")
}

func TestPrecedence(t *testing.T) {
	expectPrinted(t, "(a + b) * c", "(a + b) * c;")
	expectPrinted(t, "a + b * c", "a + b * c;")
	expectPrinted(t, "a - (b - c)", "a - (b - c);")
	expectPrinted(t, "(a - b) - c", "a - b - c;")
	expectPrinted(t, "a ** b ** c", "a ** b ** c;")
	expectPrinted(t, "(a ** b) ** c", "(a ** b) ** c;")
	expectPrinted(t, "(-a) ** b", "(-a) ** b;")
	expectPrinted(t, "(a || b) ?? c", "(a || b) ?? c;")
	expectPrinted(t, "a ?? (b && c)", "a ?? (b && c);")
	expectPrinted(t, "(a ?? b) || c", "(a ?? b) || c;")
	expectPrinted(t, "a || b && c", "a || b && c;")
	expectPrinted(t, "(a || b) && c", "(a || b) && c;")
	expectPrinted(t, "- -a", "- -a;")
	expectPrinted(t, "-(-a)", "- -a;")
	expectPrinted(t, "+ ++a", "+ ++a;")
	expectPrinted(t, "-(a + b)", "-(a + b);")
	expectPrinted(t, "typeof a === 'string'", "typeof a === 'string';")
	expectPrinted(t, "!(a && b)", "!(a && b);")
	expectPrinted(t, "void 0", "void 0;")
	expectPrinted(t, "a++ + ++b", "a++ + ++b;")
	expectPrinted(t, "a ? b : c", "a ? b : c;")
	expectPrinted(t, "(a ? b : c) ? d : e", "(a ? b : c) ? d : e;")
	expectPrinted(t, "a ? b : c ? d : e", "a ? b : c ? d : e;")
	expectPrinted(t, "(a, b)", "a, b;")
	expectPrinted(t, "f((a, b))", "f((a, b));")
	expectPrinted(t, "a = b = c", "a = b = c;")
	expectPrinted(t, "a += (b, c)", "a += (b, c);")
	expectPrinted(t, "(a = b) + c", "(a = b) + c;")
	expectPrinted(t, "x = (await a) ** 2", "x = (await a) ** 2;")
	expectPrinted(t, "#x in obj", "#x in obj;")
}

func TestCallsAndMembers(t *testing.T) {
	expectPrinted(t, "f(a, ...b)", "f(a, ...b);")
	expectPrinted(t, "new A", "new A();")
	expectPrinted(t, "new A(b)", "new A(b);")
	expectPrinted(t, "new A().b", "new A().b;")
	expectPrinted(t, "new (a())()", "new (a())();")
	expectPrinted(t, "new (a().b)()", "new (a()).b();")
	expectPrinted(t, "new a.b.C()", "new a.b.C();")
	expectPrinted(t, "a.b[c]()", "a.b[c]();")
	expectPrinted(t, "a?.b.c", "a?.b.c;")
	expectPrinted(t, "a?.[0]", "a?.[0];")
	expectPrinted(t, "a?.()", "a?.();")
	expectPrinted(t, "(a?.b).c", "(a?.b).c;")
	expectPrinted(t, "(a?.b)()", "(a?.b)();")
	expectPrinted(t, "1..toString()", "1..toString();")
	expectPrinted(t, "1.5.toFixed()", "1.5.toFixed();")
	expectPrinted(t, "import('x')", "import('x');")
	expectPrinted(t, "x = import.meta.env", "x = import.meta.env;")
	expectPrinted(t, "function F() { new.target }", "function F() {\n  new.target;\n}")
}

// ----------------------------------------------------------------------------
// Synthesized Nodes
// ----------------------------------------------------------------------------

func TestSynthesizedString(t *testing.T) {
	module := &ast.Module{Body: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.StringLit{Value: "a\"b\n"}},
	}}
	assert.Equal(t, `"a\"b\n";`, New(Options{}).Print(module))
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, `""`, QuoteString(""))
	assert.Equal(t, `"plain"`, QuoteString("plain"))
	assert.Equal(t, `"tab\there"`, QuoteString("tab\there"))
	assert.Equal(t, `"back\\slash"`, QuoteString(`back\slash`))
	assert.Equal(t, `"\x01"`, QuoteString("\x01"))
	assert.Equal(t, `"line\u2028sep"`, QuoteString("line\u2028sep"))
	assert.Equal(t, "\"café\"", QuoteString("café"))
}

func TestUndefinedReplacement(t *testing.T) {
	module, errs := parser.New("export const a = f()").Parse()
	require.Empty(t, errs)
	decl := module.Body[0].(*ast.ExportNamedDecl).Decl.(*ast.VarDecl)
	decl.Decls[0].Init = module.NewUndefined(decl.Decls[0].Init.Start())
	assert.Equal(t, "export const a = undefined;", New(Options{}).Print(module))
}

func TestPrintExpr(t *testing.T) {
	expr := &ast.BinaryExpr{
		Op:    ast.BinMul,
		Left:  &ast.BinaryExpr{Op: ast.BinAdd, Left: &ast.IdentExpr{Name: "a"}, Right: &ast.NumberLit{Raw: "1"}},
		Right: &ast.IdentExpr{Name: "b"},
	}
	assert.Equal(t, "(a + 1) * b", New(Options{}).PrintExpr(expr))
}

// ----------------------------------------------------------------------------
// Source Maps
// ----------------------------------------------------------------------------

func printWithSourceMap(t *testing.T, source string) (string, *sourcemap.SourceMap, []sourcemap.Mapping) {
	t.Helper()
	module, errs := parser.New(source).Parse()
	require.Empty(t, errs)

	gen := sourcemap.NewGenerator(source)
	gen.SetSourceName("input.js")
	code := New(Options{SourceMapGen: gen}).Print(module)
	sm := gen.Generate()

	mappings, err := sourcemap.DecodeMappings(sm.Mappings)
	require.NoError(t, err)
	return code, sm, mappings
}

func TestSourceMapIdentifier(t *testing.T) {
	code, sm, mappings := printWithSourceMap(t, "const a = b;")
	assert.Equal(t, "const a = b;", code)
	assert.Equal(t, []string{"input.js"}, sm.Sources)

	m, ok := sourcemap.OriginalPositionFor(mappings, 0, 10)
	require.True(t, ok)
	assert.Equal(t, 0, m.SrcLine)
	assert.Equal(t, 10, m.SrcCol)
	require.True(t, m.HasName())
	assert.Equal(t, "b", sm.Names[m.NameIndex])
}

func TestSourceMapCollapsedLines(t *testing.T) {
	code, _, mappings := printWithSourceMap(t, "a();\n\n\nfoo();")
	assert.Equal(t, "a();\nfoo();", code)

	m, ok := sourcemap.OriginalPositionFor(mappings, 1, 0)
	require.True(t, ok)
	assert.Equal(t, 3, m.SrcLine)
	assert.Equal(t, 0, m.SrcCol)
}

func TestSourceMapNestedLines(t *testing.T) {
	source := "function f() { return x }"
	code, sm, mappings := printWithSourceMap(t, source)
	assert.Equal(t, "function f() {\n  return x;\n}", code)

	// "x" sits at column 9 of the second generated line
	m, ok := sourcemap.OriginalPositionFor(mappings, 1, 9)
	require.True(t, ok)
	assert.Equal(t, 0, m.SrcLine)
	assert.Equal(t, 22, m.SrcCol)
	assert.Equal(t, "x", sm.Names[m.NameIndex])
}
