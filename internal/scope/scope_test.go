package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/parser"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

func crawl(t *testing.T, source string) (*ast.Module, *Info) {
	t.Helper()
	module, errs := parser.New(source).Parse()
	require.Empty(t, errs)
	return module, Crawl(module)
}

// summary is a comparable view of one binding.
type summary struct {
	Name       string
	Kind       string
	Refs       int
	Violations int
	Exported   bool
}

func summarize(info *Info) []summary {
	var out []summary
	info.Each(func(_ Ref, b *Binding) {
		out = append(out, summary{
			Name:       b.Name,
			Kind:       b.Kind.String(),
			Refs:       len(b.References),
			Violations: len(b.Violations),
			Exported:   b.Exported,
		})
	})
	return out
}

func expectBindings(t *testing.T, source string, expected []summary) {
	t.Helper()
	t.Run(source, func(t *testing.T) {
		t.Helper()
		_, info := crawl(t, source)
		if diff := cmp.Diff(expected, summarize(info)); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
	})
}

func find(info *Info, name string) *Binding {
	for i := 1; i < len(info.Bindings); i++ {
		if info.Bindings[i].Name == name {
			return &info.Bindings[i]
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func TestDeclarationKinds(t *testing.T) {
	expectBindings(t, `import a from "x"; var b; let c; const d = 1; function e(f) {} class g {}`, []summary{
		{Name: "b", Kind: "var"},
		{Name: "a", Kind: "import"},
		{Name: "c", Kind: "let"},
		{Name: "d", Kind: "const"},
		{Name: "e", Kind: "function"},
		{Name: "g", Kind: "class"},
		{Name: "f", Kind: "param"},
	})
}

func TestVarRedeclarationSharesBinding(t *testing.T) {
	module, info := crawl(t, "var a = 1; var a = 2; a;")
	require.Len(t, info.Bindings, 2)

	first := module.Body[0].(*ast.VarDecl).Decls[0].Binding.(*ast.IdentBinding)
	second := module.Body[1].(*ast.VarDecl).Decls[0].Binding.(*ast.IdentBinding)
	r1, ok1 := info.Declared(first.ID)
	r2, ok2 := info.Declared(second.ID)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, r1, r2)
}

func TestHoisting(t *testing.T) {
	expectBindings(t, "f(); function f() {}", []summary{
		{Name: "f", Kind: "function", Refs: 1},
	})
	expectBindings(t, "a; { var a; }", []summary{
		{Name: "a", Kind: "var", Refs: 1},
	})
	expectBindings(t, "function g() { return a; } const a = 1;", []summary{
		{Name: "g", Kind: "function"},
		{Name: "a", Kind: "const", Refs: 1},
	})
}

func TestBlockScoping(t *testing.T) {
	_, info := crawl(t, "let a = 1; { let a = 2; a; } a;")
	require.Len(t, info.Bindings, 3)
	assert.Len(t, info.Bindings[1].References, 1)
	assert.Len(t, info.Bindings[2].References, 1)
}

func TestForHeadScope(t *testing.T) {
	_, info := crawl(t, "for (let i = 0; i < 1; i++) {} i;")
	i := find(info, "i")
	require.NotNil(t, i)
	assert.Len(t, i.References, 1)
	assert.Len(t, i.Violations, 1)
	require.Len(t, info.Unresolved, 1)
	assert.Equal(t, "i", info.Unresolved[0].Name)
}

func TestCatchParam(t *testing.T) {
	expectBindings(t, "try {} catch ({ message }) { message; }", []summary{
		{Name: "message", Kind: "catch", Refs: 1},
	})
}

func TestFunctionExpressionName(t *testing.T) {
	_, info := crawl(t, "const f = function g() { g(); }; g;")
	g := find(info, "g")
	require.NotNil(t, g)
	assert.Equal(t, KindFunctionName, g.Kind)
	assert.Len(t, g.References, 1)
	require.Len(t, info.Unresolved, 1)
	assert.Equal(t, "g", info.Unresolved[0].Name)
}

func TestClassExpressionName(t *testing.T) {
	_, info := crawl(t, "x = class C { m() { return C; } };")
	c := find(info, "C")
	require.NotNil(t, c)
	assert.Equal(t, KindClassName, c.Kind)
	assert.Len(t, c.References, 1)
}

// ----------------------------------------------------------------------------
// References
// ----------------------------------------------------------------------------

func TestReferenceContexts(t *testing.T) {
	_, info := crawl(t, "let a; a(); a; a = 1; a++; export { a };")
	a := find(info, "a")
	require.NotNil(t, a)

	var contexts []Context
	for _, r := range a.References {
		contexts = append(contexts, r.Context)
	}
	assert.Equal(t, []Context{ContextCallee, ContextRead, ContextExport}, contexts)
	assert.Len(t, a.Violations, 2)
	for _, v := range a.Violations {
		assert.Equal(t, ContextWrite, v.Context)
	}
}

func TestDestructuringAssignment(t *testing.T) {
	_, info := crawl(t, "let a, b, c, d; ({ a, b: [c = d] } = x);")
	for _, name := range []string{"a", "c"} {
		b := find(info, name)
		require.NotNil(t, b)
		assert.Len(t, b.Violations, 1, name)
		assert.Empty(t, b.References, name)
	}
	assert.Empty(t, find(info, "b").Violations)
	assert.Len(t, find(info, "d").References, 1)
}

func TestPropertyNamesAreNotReferences(t *testing.T) {
	_, info := crawl(t, "const a = 1; x = { a: 1, [a]: 2 }; y.a; class K { a() {} }")
	assert.Len(t, find(info, "a").References, 1)
}

func TestShorthandPropertyIsReference(t *testing.T) {
	_, info := crawl(t, "const a = 1; x = { a };")
	assert.Len(t, find(info, "a").References, 1)
}

func TestResolve(t *testing.T) {
	module, info := crawl(t, "const a = 1; a; b;")
	aRef := module.Body[1].(*ast.ExprStmt).Expr.(*ast.IdentExpr)
	bRef := module.Body[2].(*ast.ExprStmt).Expr.(*ast.IdentExpr)

	ref, ok := info.Resolve(aRef.ID)
	require.True(t, ok)
	assert.Equal(t, "a", info.Binding(ref).Name)

	_, ok = info.Resolve(bRef.ID)
	assert.False(t, ok)
	assert.Nil(t, info.Binding(InvalidRef))
}

// ----------------------------------------------------------------------------
// Imports and Exports
// ----------------------------------------------------------------------------

func TestImportInfo(t *testing.T) {
	_, info := crawl(t, `import d, { a as b } from "m"; import * as ns from "n";`)

	d := find(info, "d")
	require.NotNil(t, d.Import)
	assert.Equal(t, "m", d.Import.Source)
	assert.Equal(t, "default", d.Import.Imported)
	assert.Equal(t, ast.ImportDefault, d.Import.Kind)

	b := find(info, "b")
	require.NotNil(t, b.Import)
	assert.Equal(t, "a", b.Import.Imported)
	assert.Equal(t, ast.ImportNamed, b.Import.Kind)

	ns := find(info, "ns")
	require.NotNil(t, ns.Import)
	assert.Equal(t, "*", ns.Import.Imported)
	assert.Equal(t, "n", ns.Import.Source)
}

func TestExportedBindings(t *testing.T) {
	expectBindings(t, "export const a = 1; export var b; export function c() {} export default class D {}", []summary{
		{Name: "b", Kind: "var", Exported: true},
		{Name: "a", Kind: "const", Exported: true},
		{Name: "c", Kind: "function", Exported: true},
		{Name: "D", Kind: "class", Exported: true},
	})
}

func TestExportReferences(t *testing.T) {
	_, info := crawl(t, "const a = 1; const b = 2; export { a }; export default b;")
	a := find(info, "a")
	b := find(info, "b")
	assert.False(t, a.Exported)
	assert.True(t, a.IsReferenced())
	assert.Equal(t, ContextExport, a.References[0].Context)
	assert.Equal(t, ContextExport, b.References[0].Context)
}

// ----------------------------------------------------------------------------
// Function Spans
// ----------------------------------------------------------------------------

func TestSelfRecursionIsInsideSpan(t *testing.T) {
	_, info := crawl(t, "function f(n) { return n ? f(n - 1) : 0; }")
	f := find(info, "f")
	require.True(t, f.HasSpan)
	assert.True(t, f.IsReferenced())
	assert.False(t, f.IsReferencedOutsideSpan())
}

func TestCallOutsideSpan(t *testing.T) {
	_, info := crawl(t, "function f() { f(); } f();")
	assert.True(t, find(info, "f").IsReferencedOutsideSpan())

	_, info = crawl(t, "f(); function f() { f(); }")
	assert.True(t, find(info, "f").IsReferencedOutsideSpan())
}

func TestExportedFunctionIsReferenced(t *testing.T) {
	_, info := crawl(t, "export function f() {}")
	assert.True(t, find(info, "f").IsReferencedOutsideSpan())
}

func TestNodeCount(t *testing.T) {
	_, small := crawl(t, "a;")
	_, large := crawl(t, "a; b; c(d, e);")
	assert.Greater(t, small.NodeCount, 0)
	assert.Greater(t, large.NodeCount, small.NodeCount)
}

func TestCrawlNil(t *testing.T) {
	info := Crawl(nil)
	assert.Len(t, info.Bindings, 1)
}

func TestIsConstant(t *testing.T) {
	_, info := crawl(t, "let a = 1; let b = 2; b = 3;")
	assert.True(t, find(info, "a").IsConstant())
	assert.False(t, find(info, "b").IsConstant())
}

func TestEachDeclaration(t *testing.T) {
	_, info := crawl(t, "var a; var a; let b;")
	count := map[Ref]int{}
	info.EachDeclaration(func(_ ast.NodeID, ref Ref) {
		count[ref]++
	})
	assert.Len(t, count, 2)
	assert.Equal(t, 2, count[1])
}
