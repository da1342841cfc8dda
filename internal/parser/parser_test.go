package parser

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/printer"
)

// ----------------------------------------------------------------------------
// Test Helpers (esbuild-style)
// ----------------------------------------------------------------------------

// expectPrinted parses input and verifies the printed output matches expected.
func expectPrinted(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		module, errs := New(input).Parse()
		if len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		actual := printer.New(printer.Options{}).Print(module)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// expectParseError verifies that parsing produces an error containing the substring.
func expectParseError(t *testing.T, input string, errorSubstring string) {
	t.Helper()
	t.Run(input+"_error", func(t *testing.T) {
		t.Helper()
		_, errs := New(input).Parse()
		if len(errs) == 0 {
			t.Errorf("expected parse error containing %q, got none", errorSubstring)
			return
		}
		found := false
		for _, err := range errs {
			if strings.Contains(err.Message, errorSubstring) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected error containing %q, got: %v", errorSubstring, errs)
		}
	})
}

// expectNoParse verifies that parsing produces at least one error.
func expectNoParse(t *testing.T, input string) {
	t.Helper()
	t.Run(input+"_noParse", func(t *testing.T) {
		t.Helper()
		_, errs := New(input).Parse()
		if len(errs) == 0 {
			t.Errorf("expected parse error for %q, got none", input)
		}
	})
}

func mustParse(t *testing.T, input string) *ast.Module {
	t.Helper()
	module, errs := New(input).Parse()
	require.Empty(t, errs)
	return module
}

// ----------------------------------------------------------------------------
// Automatic Semicolon Insertion
// ----------------------------------------------------------------------------

func TestASI(t *testing.T) {
	expectPrinted(t, "a\nb", "a;\nb;")
	expectPrinted(t, "a = b\n(c)", "a = b(c);")
	expectPrinted(t, "function f() { return\na }", "function f() {\n  return;\n  a;\n}")
	expectPrinted(t, "a\n++b", "a;\n++b;")
	expectPrinted(t, "let x = 1\nlet y = 2", "let x = 1;\nlet y = 2;")
	expectPrinted(t, "{ a } b", "{\n  a;\n}\nb;")
	expectNoParse(t, "a b")
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func TestLetAsIdentifier(t *testing.T) {
	expectPrinted(t, "let = 1", "let = 1;")
	expectPrinted(t, "let\nx = 1", "let x = 1;")
	expectPrinted(t, "let [a] = b", "let [a] = b;")
}

func TestAsyncForms(t *testing.T) {
	expectPrinted(t, "async function f() { await g() }", "async function f() {\n  await g();\n}")
	expectPrinted(t, "x = async function () {}", "x = async function () {};")
	expectPrinted(t, "x = async (a) => a", "x = async a => a;")
	expectPrinted(t, "x = async(a)", "x = async(a);")
	expectPrinted(t, "async\nfunction f() {}", "async;\nfunction f() {}")
	expectPrinted(t, "await x", "await x;")
}

func TestRegexpVersusDivision(t *testing.T) {
	expectPrinted(t, "a = b / c / d", "a = b / c / d;")
	expectPrinted(t, "a = /=/.test(b)", "a = /=/.test(b);")
	expectPrinted(t, "if (/x/.test(a)) {}", "if (/x/.test(a)) {}")
	expectPrinted(t, "x = a\n/b/g", "x = a / b / g;")
}

func TestForHeads(t *testing.T) {
	expectPrinted(t, "for (var i = 0, j = 1; i < j; i++, j--) {}", "for (var i = 0, j = 1; i < j; i++, j--) {}")
	expectPrinted(t, "for (const [k, v] of map) {}", "for (const [k, v] of map) {}")
	expectPrinted(t, "for (x.y in z) {}", "for (x.y in z) {}")
	expectPrinted(t, "for (let k in {}) {}", "for (let k in {}) {}")
}

func TestTemplates(t *testing.T) {
	expectPrinted(t, "x = `a${`b${c}`}`", "x = `a${`b${c}`}`;")
	expectPrinted(t, "x = `${{a: 1}.a}`", "x = `${{\n  a: 1\n}.a}`;")
	expectPrinted(t, "x = a.b`c`", "x = a.b`c`;")
}

// ----------------------------------------------------------------------------
// Module Syntax
// ----------------------------------------------------------------------------

func TestImportSpecifiers(t *testing.T) {
	module := mustParse(t, `import def, { a, b as c, "d-e" as f } from "x"`)
	decl := module.Body[0].(*ast.ImportDecl)
	require.Len(t, decl.Specs, 4)

	assert.Equal(t, ast.ImportDefault, decl.Specs[0].Kind)
	assert.Equal(t, "def", decl.Specs[0].Local.Name)

	assert.Equal(t, ast.ImportNamed, decl.Specs[1].Kind)
	assert.Equal(t, "a", decl.Specs[1].Imported)
	assert.Equal(t, "a", decl.Specs[1].Local.Name)

	assert.Equal(t, "b", decl.Specs[2].Imported)
	assert.Equal(t, "c", decl.Specs[2].Local.Name)

	assert.True(t, decl.Specs[3].ImportedIsString)
	assert.Equal(t, "d-e", decl.Specs[3].Imported)
	assert.Equal(t, "x", decl.Source.Value)
}

func TestImportNamespace(t *testing.T) {
	module := mustParse(t, `import * as ns from "x"`)
	decl := module.Body[0].(*ast.ImportDecl)
	require.Len(t, decl.Specs, 1)
	assert.Equal(t, ast.ImportNamespace, decl.Specs[0].Kind)
	assert.Equal(t, "ns", decl.Specs[0].Local.Name)
}

func TestSideEffectImport(t *testing.T) {
	module := mustParse(t, `import "x"; import {} from "y"`)
	first := module.Body[0].(*ast.ImportDecl)
	second := module.Body[1].(*ast.ImportDecl)
	assert.Empty(t, first.Specs)
	assert.False(t, first.HadBraces)
	assert.Empty(t, second.Specs)
	assert.True(t, second.HadBraces)
}

func TestExportSpecifiers(t *testing.T) {
	module := mustParse(t, "const a = 1; export { a as b }")
	decl := module.Body[1].(*ast.ExportNamedDecl)
	require.Len(t, decl.Specs, 1)
	spec := decl.Specs[0]
	require.NotNil(t, spec.Local)
	assert.Equal(t, "a", spec.Local.Name)
	assert.NotEqual(t, ast.NoNode, spec.Local.ID)
	assert.Equal(t, "b", spec.Exported)

	module = mustParse(t, `export { a as b } from "x"`)
	spec = module.Body[0].(*ast.ExportNamedDecl).Specs[0]
	assert.Nil(t, spec.Local)
	assert.Equal(t, "a", spec.LocalName)
}

func TestModuleOnlySyntax(t *testing.T) {
	expectParseError(t, "function f() { import 'x' }", "may only appear at the top level")
	expectParseError(t, "with (a) {}", "'with' is not allowed in modules")
	expectParseError(t, "export default", "unexpected end of file")
	expectParseError(t, "export function () {}", "function name expected")
}

// ----------------------------------------------------------------------------
// Node IDs and Locations
// ----------------------------------------------------------------------------

func TestNodeIDsAreUnique(t *testing.T) {
	module := mustParse(t, "const a = b; function f(c) { return a + c }")
	seen := map[ast.NodeID]bool{}
	record := func(id ast.NodeID) {
		assert.NotEqual(t, ast.NoNode, id)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	decl := module.Body[0].(*ast.VarDecl)
	record(decl.Decls[0].Binding.(*ast.IdentBinding).ID)
	record(decl.Decls[0].Init.(*ast.IdentExpr).ID)

	fn := module.Body[1].(*ast.FunctionDecl).Fn
	record(fn.Name.ID)
	record(fn.Params[0].Binding.(*ast.IdentBinding).ID)
	ret := fn.Body[0].(*ast.ReturnStmt).Arg.(*ast.BinaryExpr)
	record(ret.Left.(*ast.IdentExpr).ID)
	record(ret.Right.(*ast.IdentExpr).ID)

	assert.GreaterOrEqual(t, int(module.NextID), len(seen))
}

func TestPropertyKeysAreNotReferences(t *testing.T) {
	module := mustParse(t, "x = { a: 1 }")
	assign := module.Body[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	key := assign.Right.(*ast.ObjectExpr).Props[0].Key.(*ast.IdentExpr)
	assert.Equal(t, ast.NoNode, key.ID)
}

func TestLocations(t *testing.T) {
	module := mustParse(t, "a;\n  foo(bar)")
	stmt := module.Body[1].(*ast.ExprStmt)
	call := stmt.Expr.(*ast.CallExpr)
	assert.Equal(t, int32(5), stmt.Loc.Start)
	assert.Equal(t, int32(5), call.Loc.Start)
	assert.Equal(t, int32(9), call.Args[0].Start().Start)
}

func TestFunctionEnd(t *testing.T) {
	source := "function f() { return 1 }"
	module := mustParse(t, source)
	fn := module.Body[0].(*ast.FunctionDecl).Fn
	assert.Equal(t, int32(len(source)), fn.End)
}

func TestCommentsAttachToStatements(t *testing.T) {
	module := mustParse(t, "// one\na()\n/* two */\nb()")
	require.Len(t, module.Body, 2)
	first := module.Comments[module.Body[0]]
	second := module.Comments[module.Body[1]]
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "// one", first[0].Text)
	assert.Equal(t, "/* two */", second[0].Text)
	assert.True(t, second[0].IsBlock())
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

func TestSyntaxErrors(t *testing.T) {
	expectParseError(t, "const", "unexpected end of file")
	expectParseError(t, "a +", "unexpected end of file")
	expectParseError(t, "(a", `expected ")" but found end of file`)
	expectParseError(t, "1 = 2", "invalid assignment target")
	expectParseError(t, "a?.b = 1", "invalid assignment target")
	expectParseError(t, "1++", "invalid update target")
	expectParseError(t, "throw\na", "illegal newline after throw")
	expectParseError(t, "try {}", "missing catch or finally after try")
	expectParseError(t, "new a?.b()", "optional chain is not allowed in a new expression")
	expectParseError(t, "'abc", "unterminated string")
	expectNoParse(t, "class {}")
	expectNoParse(t, "x = {a b}")
}

func TestErrorPosition(t *testing.T) {
	_, errs := New("a;\nb +").Parse()
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Line)
	assert.Equal(t, 4, errs[0].Column)
	assert.Equal(t, "2:4: unexpected end of file", errs[0].Error())
}

func TestFirstError(t *testing.T) {
	assert.NoError(t, FirstError(nil))

	_, errs := New("a +").Parse()
	err := FirstError(errs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Contains(t, err.Error(), "unexpected end of file")
}

func TestPartialModuleOnError(t *testing.T) {
	module, errs := New("a();\nb(;").Parse()
	require.NotEmpty(t, errs)
	require.NotNil(t, module)
	assert.Equal(t, "a();\nb(;", module.Source)
}
