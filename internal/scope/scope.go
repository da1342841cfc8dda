// Package scope resolves identifiers in a JavaScript module to the
// bindings that declare them.
//
// Crawl works in two steps per scope:
// 1. Hoisting: var declarations are declared in the enclosing function
//    scope, and let/const/class/function/import declarations in their
//    block before any code in the block is visited
// 2. Walking: every identifier in expression position is resolved
//    against the scope chain and recorded as a reference or, when it is
//    written, as a constant violation
//
// The result is a side table keyed by NodeID. It is only valid for the
// tree it was computed from; after any mutation, Crawl again.
package scope

import (
	"github.com/HugoDaniel/envonly/internal/ast"
)

// Ref addresses a binding in Info.Bindings. The zero Ref is invalid.
type Ref uint32

// InvalidRef is returned for unresolved lookups.
const InvalidRef Ref = 0

// IsValid returns true if the ref addresses a binding.
func (r Ref) IsValid() bool {
	return r != InvalidRef
}

// Kind is the declaration form that introduced a binding.
type Kind uint8

const (
	KindVar Kind = iota
	KindLet
	KindConst
	KindFunction
	KindClass
	KindImport
	KindParam
	KindCatch
	KindFunctionName // Own name of a function expression
	KindClassName    // Own name of a class expression
)

var kindStrings = [...]string{
	KindVar:          "var",
	KindLet:          "let",
	KindConst:        "const",
	KindFunction:     "function",
	KindClass:        "class",
	KindImport:       "import",
	KindParam:        "param",
	KindCatch:        "catch",
	KindFunctionName: "function name",
	KindClassName:    "class name",
}

func (k Kind) String() string {
	if int(k) < len(kindStrings) {
		return kindStrings[k]
	}
	return "?"
}

// Context says how a reference uses its binding.
type Context uint8

const (
	ContextRead   Context = iota
	ContextCallee         // Callee of a call expression
	ContextWrite          // Assignment target or update operand
	ContextExport         // export { x } or export default x
)

// Reference is one use of a binding.
type Reference struct {
	ID      ast.NodeID
	Name    string
	Loc     ast.Loc
	Order   int32 // Preorder position of the identifier
	Context Context
}

// Import describes where an import binding comes from.
type Import struct {
	Source   string
	Imported string // "default" and "*" for the non-named forms
	Kind     ast.ImportKind
	Decl     *ast.ImportDecl
	Spec     *ast.ImportSpec
}

// Binding is a declared name.
type Binding struct {
	Name string
	Kind Kind
	ID   ast.NodeID // First declaring identifier
	Loc  ast.Loc

	Import   *Import // Set for KindImport
	Exported bool    // Declared by an export declaration

	References []Reference
	Violations []Reference

	// Preorder span [SpanStart, SpanEnd) of a function declaration,
	// covering its parameters and body.
	HasSpan   bool
	SpanStart int32
	SpanEnd   int32
}

// IsReferenced returns true if the binding is read, written, or exported.
func (b *Binding) IsReferenced() bool {
	return b.Exported || len(b.References) > 0 || len(b.Violations) > 0
}

// IsConstant returns true if the binding is never written after its
// declaration.
func (b *Binding) IsConstant() bool {
	return len(b.Violations) == 0
}

// IsReferencedOutsideSpan is like IsReferenced but ignores uses that
// fall inside the binding's own function span. A function that only
// calls itself is not referenced.
func (b *Binding) IsReferencedOutsideSpan() bool {
	if !b.HasSpan {
		return b.IsReferenced()
	}
	if b.Exported {
		return true
	}
	for _, r := range b.References {
		if r.Order < b.SpanStart || r.Order >= b.SpanEnd {
			return true
		}
	}
	for _, r := range b.Violations {
		if r.Order < b.SpanStart || r.Order >= b.SpanEnd {
			return true
		}
	}
	return false
}

// Info is the result of crawling a module.
type Info struct {
	// Bindings is the arena; index 0 is unused so the zero Ref is invalid.
	Bindings []Binding

	// Unresolved holds references to globals.
	Unresolved []Reference

	// NodeCount is the number of nodes visited in preorder.
	NodeCount int

	decls    map[ast.NodeID]Ref
	resolved map[ast.NodeID]Ref
}

// Binding returns the binding for ref, or nil for an invalid ref.
func (info *Info) Binding(ref Ref) *Binding {
	if !ref.IsValid() || int(ref) >= len(info.Bindings) {
		return nil
	}
	return &info.Bindings[ref]
}

// Declared returns the binding declared by the identifier with the given ID.
func (info *Info) Declared(id ast.NodeID) (Ref, bool) {
	ref, ok := info.decls[id]
	return ref, ok
}

// Resolve returns the binding a reference identifier resolves to. Globals
// return false.
func (info *Info) Resolve(id ast.NodeID) (Ref, bool) {
	ref, ok := info.resolved[id]
	return ref, ok
}

// BindingOf returns the binding declared by b, or nil.
func (info *Info) BindingOf(b *ast.IdentBinding) *Binding {
	if ref, ok := info.decls[b.ID]; ok {
		return info.Binding(ref)
	}
	return nil
}

// EachDeclaration calls fn for every declaring identifier, in no
// particular order. Redeclared names report the same Ref more than once.
func (info *Info) EachDeclaration(fn func(ast.NodeID, Ref)) {
	for id, ref := range info.decls {
		fn(id, ref)
	}
}

// Each calls fn for every binding in declaration order.
func (info *Info) Each(fn func(Ref, *Binding)) {
	for i := 1; i < len(info.Bindings); i++ {
		fn(Ref(i), &info.Bindings[i])
	}
}

// ----------------------------------------------------------------------------
// Scopes
// ----------------------------------------------------------------------------

type scopeKind uint8

const (
	scopeModule scopeKind = iota
	scopeFunction
	scopeBlock
)

type scope struct {
	parent *scope
	kind   scopeKind
	names  map[string]Ref
}

func (s *scope) lookup(name string) Ref {
	for ; s != nil; s = s.parent {
		if ref, ok := s.names[name]; ok {
			return ref
		}
	}
	return InvalidRef
}

// ----------------------------------------------------------------------------
// Crawler
// ----------------------------------------------------------------------------

type crawler struct {
	info  *Info
	scope *scope
	order int32
}

// Crawl computes bindings, references, and constant violations for module.
func Crawl(module *ast.Module) *Info {
	c := &crawler{
		info: &Info{
			Bindings: make([]Binding, 1, 32),
			decls:    make(map[ast.NodeID]Ref),
			resolved: make(map[ast.NodeID]Ref),
		},
	}
	if module == nil {
		return c.info
	}

	c.pushScope(scopeModule)
	c.hoistVars(module.Body)
	c.hoistLexical(module.Body)
	c.walkStmts(module.Body)
	c.popScope()

	c.info.NodeCount = int(c.order)
	return c.info
}

func (c *crawler) pushScope(kind scopeKind) {
	c.scope = &scope{parent: c.scope, kind: kind, names: make(map[string]Ref)}
}

func (c *crawler) popScope() {
	c.scope = c.scope.parent
}

// declare adds name to the current scope. Redeclaring a name in the same
// scope (var after var, function after var) shares the existing binding.
func (c *crawler) declare(ident *ast.IdentBinding, kind Kind) Ref {
	if ident == nil {
		return InvalidRef
	}
	if ref, ok := c.scope.names[ident.Name]; ok {
		c.info.decls[ident.ID] = ref
		return ref
	}
	ref := Ref(len(c.info.Bindings))
	c.info.Bindings = append(c.info.Bindings, Binding{
		Name: ident.Name,
		Kind: kind,
		ID:   ident.ID,
		Loc:  ident.Loc,
	})
	c.scope.names[ident.Name] = ref
	c.info.decls[ident.ID] = ref
	return ref
}

func (c *crawler) declarePattern(b ast.Binding, kind Kind) []Ref {
	var refs []Ref
	ast.BindingIdents(b, func(ident *ast.IdentBinding) {
		refs = append(refs, c.declare(ident, kind))
	})
	return refs
}

func varKind(k ast.VarKind) Kind {
	switch k {
	case ast.VarLet:
		return KindLet
	case ast.VarConst:
		return KindConst
	}
	return KindVar
}

// ----------------------------------------------------------------------------
// Hoisting
// ----------------------------------------------------------------------------

// hoistVars declares every var in stmts, looking through nested blocks
// but not into nested functions.
func (c *crawler) hoistVars(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.hoistVarsStmt(s)
	}
}

func (c *crawler) hoistVarsStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		if s.Kind == ast.VarVar {
			for _, d := range s.Decls {
				c.declarePattern(d.Binding, KindVar)
			}
		}
	case *ast.ExportNamedDecl:
		if s.Decl != nil {
			c.hoistVarsStmt(s.Decl)
		}
	case *ast.BlockStmt:
		c.hoistVars(s.Body)
	case *ast.IfStmt:
		c.hoistVarsStmt(s.Yes)
		if s.No != nil {
			c.hoistVarsStmt(s.No)
		}
	case *ast.ForStmt:
		if s.Init != nil {
			c.hoistVarsStmt(s.Init)
		}
		c.hoistVarsStmt(s.Body)
	case *ast.ForInStmt:
		c.hoistVarsStmt(s.Left)
		c.hoistVarsStmt(s.Body)
	case *ast.ForOfStmt:
		c.hoistVarsStmt(s.Left)
		c.hoistVarsStmt(s.Body)
	case *ast.WhileStmt:
		c.hoistVarsStmt(s.Body)
	case *ast.DoWhileStmt:
		c.hoistVarsStmt(s.Body)
	case *ast.LabeledStmt:
		c.hoistVarsStmt(s.Body)
	case *ast.TryStmt:
		c.hoistVars(s.Block.Body)
		if s.Catch != nil {
			c.hoistVars(s.Catch.Body)
		}
		if s.Finally != nil {
			c.hoistVars(s.Finally.Body)
		}
	case *ast.SwitchStmt:
		for _, cs := range s.Cases {
			c.hoistVars(cs.Body)
		}
	}
}

// hoistLexical declares the block-scoped declarations directly in stmts.
func (c *crawler) hoistLexical(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.hoistLexicalStmt(s, false)
	}
}

func (c *crawler) hoistLexicalStmt(s ast.Stmt, exported bool) {
	var refs []Ref
	switch s := s.(type) {
	case *ast.VarDecl:
		if s.Kind != ast.VarVar {
			for _, d := range s.Decls {
				refs = append(refs, c.declarePattern(d.Binding, varKind(s.Kind))...)
			}
		} else if exported {
			// Already declared by hoistVars; only the flag is missing
			for _, d := range s.Decls {
				ast.BindingIdents(d.Binding, func(ident *ast.IdentBinding) {
					refs = append(refs, c.info.decls[ident.ID])
				})
			}
		}
	case *ast.FunctionDecl:
		if s.Fn.Name != nil {
			refs = append(refs, c.declare(s.Fn.Name, KindFunction))
		}
	case *ast.ClassDecl:
		if s.Class.Name != nil {
			refs = append(refs, c.declare(s.Class.Name, KindClass))
		}
	case *ast.ImportDecl:
		for _, spec := range s.Specs {
			ref := c.declare(spec.Local, KindImport)
			imported := spec.Imported
			switch spec.Kind {
			case ast.ImportDefault:
				imported = "default"
			case ast.ImportNamespace:
				imported = "*"
			}
			c.info.Bindings[ref].Import = &Import{
				Source:   s.Source.Value,
				Imported: imported,
				Kind:     spec.Kind,
				Decl:     s,
				Spec:     spec,
			}
		}
	case *ast.ExportNamedDecl:
		if s.Decl != nil {
			c.hoistLexicalStmt(s.Decl, true)
		}
	case *ast.ExportDefaultDecl:
		if s.Decl != nil {
			c.hoistLexicalStmt(s.Decl, true)
		}
	}

	if exported {
		for _, ref := range refs {
			if ref.IsValid() {
				c.info.Bindings[ref].Exported = true
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (c *crawler) walkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.walkStmt(s)
	}
}

// walkBlock walks stmts in a fresh block scope.
func (c *crawler) walkBlock(stmts []ast.Stmt) {
	c.pushScope(scopeBlock)
	c.hoistLexical(stmts)
	c.walkStmts(stmts)
	c.popScope()
}

func (c *crawler) walkStmt(s ast.Stmt) {
	c.order++

	switch s := s.(type) {
	case *ast.VarDecl:
		for _, d := range s.Decls {
			c.walkBinding(d.Binding)
			if d.Init != nil {
				c.walkExpr(d.Init, ContextRead)
			}
		}

	case *ast.FunctionDecl:
		start := c.order
		if s.Fn.Name != nil {
			c.order++
		}
		c.walkFunction(s.Fn)
		if s.Fn.Name != nil {
			if ref, ok := c.info.decls[s.Fn.Name.ID]; ok {
				b := &c.info.Bindings[ref]
				b.HasSpan = true
				b.SpanStart = start
				b.SpanEnd = c.order + 1
			}
		}

	case *ast.ClassDecl:
		if s.Class.Name != nil {
			c.order++
		}
		c.walkClass(s.Class)

	case *ast.ImportDecl:
		c.order += int32(len(s.Specs))

	case *ast.ExportNamedDecl:
		if s.Decl != nil {
			c.walkStmt(s.Decl)
		}
		for _, spec := range s.Specs {
			if spec.Local != nil {
				c.order++
				c.reference(spec.Local, ContextExport)
			}
		}

	case *ast.ExportDefaultDecl:
		if s.Decl != nil {
			c.walkStmt(s.Decl)
		} else {
			c.walkExpr(s.Expr, ContextExport)
		}

	case *ast.ExportAllDecl:

	case *ast.ExprStmt:
		c.walkExpr(s.Expr, ContextRead)

	case *ast.BlockStmt:
		c.walkBlock(s.Body)

	case *ast.EmptyStmt, *ast.BreakStmt, *ast.ContinueStmt, *ast.DebuggerStmt:

	case *ast.IfStmt:
		c.walkExpr(s.Test, ContextRead)
		c.walkStmt(s.Yes)
		if s.No != nil {
			c.walkStmt(s.No)
		}

	case *ast.ForStmt:
		c.pushScope(scopeBlock)
		if s.Init != nil {
			c.hoistLexicalStmt(s.Init, false)
			c.walkStmt(s.Init)
		}
		if s.Test != nil {
			c.walkExpr(s.Test, ContextRead)
		}
		if s.Update != nil {
			c.walkExpr(s.Update, ContextRead)
		}
		c.walkStmt(s.Body)
		c.popScope()

	case *ast.ForInStmt:
		c.walkForEach(s.Left, s.Right, s.Body)

	case *ast.ForOfStmt:
		c.walkForEach(s.Left, s.Right, s.Body)

	case *ast.WhileStmt:
		c.walkExpr(s.Test, ContextRead)
		c.walkStmt(s.Body)

	case *ast.DoWhileStmt:
		c.walkStmt(s.Body)
		c.walkExpr(s.Test, ContextRead)

	case *ast.ReturnStmt:
		if s.Arg != nil {
			c.walkExpr(s.Arg, ContextRead)
		}

	case *ast.ThrowStmt:
		c.walkExpr(s.Arg, ContextRead)

	case *ast.TryStmt:
		c.walkBlock(s.Block.Body)
		if s.Catch != nil {
			c.pushScope(scopeBlock)
			if s.CatchParam != nil {
				c.declarePattern(s.CatchParam, KindCatch)
				c.walkBinding(s.CatchParam)
			}
			c.walkBlock(s.Catch.Body)
			c.popScope()
		}
		if s.Finally != nil {
			c.walkBlock(s.Finally.Body)
		}

	case *ast.SwitchStmt:
		c.walkExpr(s.Disc, ContextRead)
		c.pushScope(scopeBlock)
		for _, cs := range s.Cases {
			c.hoistLexical(cs.Body)
		}
		for _, cs := range s.Cases {
			if cs.Test != nil {
				c.walkExpr(cs.Test, ContextRead)
			}
			c.walkStmts(cs.Body)
		}
		c.popScope()

	case *ast.LabeledStmt:
		c.walkStmt(s.Body)
	}
}

func (c *crawler) walkForEach(left ast.Stmt, right ast.Expr, body ast.Stmt) {
	c.pushScope(scopeBlock)
	c.hoistLexicalStmt(left, false)
	if stmt, ok := left.(*ast.ExprStmt); ok {
		c.order++
		c.walkTarget(stmt.Expr)
	} else {
		c.walkStmt(left)
	}
	c.walkExpr(right, ContextRead)
	c.walkStmt(body)
	c.popScope()
}

// walkBinding visits the expressions inside a declared pattern: defaults
// and computed keys. The names themselves were declared during hoisting.
func (c *crawler) walkBinding(b ast.Binding) {
	c.order++

	switch b := b.(type) {
	case *ast.IdentBinding:

	case *ast.ObjectBinding:
		for _, prop := range b.Props {
			if prop.Computed {
				c.walkExpr(prop.Key, ContextRead)
			}
			c.walkBinding(prop.Value)
			if prop.Default != nil {
				c.walkExpr(prop.Default, ContextRead)
			}
		}

	case *ast.ArrayBinding:
		for _, item := range b.Items {
			if item == nil {
				continue
			}
			c.walkBinding(item.Value)
			if item.Default != nil {
				c.walkExpr(item.Default, ContextRead)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Functions and Classes
// ----------------------------------------------------------------------------

func (c *crawler) walkParams(params []*ast.Param) {
	for _, p := range params {
		c.declarePattern(p.Binding, KindParam)
	}
	for _, p := range params {
		c.walkBinding(p.Binding)
		if p.Default != nil {
			c.walkExpr(p.Default, ContextRead)
		}
	}
}

func (c *crawler) walkFunction(fn *ast.Function) {
	c.pushScope(scopeFunction)
	c.walkParams(fn.Params)
	c.hoistVars(fn.Body)
	c.hoistLexical(fn.Body)
	c.walkStmts(fn.Body)
	c.popScope()
}

// walkNamedFunctionExpr gives a function expression's own name a scope
// between the enclosing one and the function's.
func (c *crawler) walkNamedFunctionExpr(fn *ast.Function) {
	if fn.Name == nil {
		c.walkFunction(fn)
		return
	}
	c.pushScope(scopeBlock)
	c.order++
	c.declare(fn.Name, KindFunctionName)
	c.walkFunction(fn)
	c.popScope()
}

func (c *crawler) walkArrow(e *ast.ArrowExpr) {
	c.pushScope(scopeFunction)
	c.walkParams(e.Params)
	if e.IsExprBody {
		c.walkExpr(e.ExprBody, ContextRead)
	} else {
		c.hoistVars(e.Body)
		c.hoistLexical(e.Body)
		c.walkStmts(e.Body)
	}
	c.popScope()
}

func (c *crawler) walkClass(class *ast.Class) {
	if class.Extends != nil {
		c.walkExpr(class.Extends, ContextRead)
	}
	for _, m := range class.Members {
		if m.Computed {
			c.walkExpr(m.Key, ContextRead)
		}
		switch m.Kind {
		case ast.PropStaticBlock:
			if fn, ok := m.Value.(*ast.FunctionExpr); ok {
				c.order++
				c.walkFunction(fn.Fn)
			}
		default:
			if m.Value != nil {
				c.walkExpr(m.Value, ContextRead)
			}
		}
	}
}

func (c *crawler) walkNamedClassExpr(class *ast.Class) {
	if class.Name == nil {
		c.walkClass(class)
		return
	}
	c.pushScope(scopeBlock)
	c.order++
	c.declare(class.Name, KindClassName)
	c.walkClass(class)
	c.popScope()
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (c *crawler) reference(e *ast.IdentExpr, ctx Context) {
	r := Reference{ID: e.ID, Name: e.Name, Loc: e.Loc, Order: c.order, Context: ctx}
	ref := c.scope.lookup(e.Name)
	if !ref.IsValid() {
		c.info.Unresolved = append(c.info.Unresolved, r)
		return
	}
	c.info.resolved[e.ID] = ref
	b := &c.info.Bindings[ref]
	if ctx == ContextWrite {
		b.Violations = append(b.Violations, r)
	} else {
		b.References = append(b.References, r)
	}
}

// walkExpr visits e. ctx is the context recorded if e is an identifier.
func (c *crawler) walkExpr(e ast.Expr, ctx Context) {
	c.order++

	switch e := e.(type) {
	case *ast.IdentExpr:
		c.reference(e, ctx)

	case *ast.NumberLit, *ast.BigIntLit, *ast.StringLit, *ast.RegExpLit,
		*ast.BoolLit, *ast.NullLit, *ast.ThisExpr, *ast.SuperExpr,
		*ast.PrivateName, *ast.MetaProperty:

	case *ast.TemplateLit:
		if e.Tag != nil {
			c.walkExpr(e.Tag, ContextRead)
		}
		for _, x := range e.Exprs {
			c.walkExpr(x, ContextRead)
		}

	case *ast.ArrayExpr:
		for _, item := range e.Items {
			if item != nil {
				c.walkExpr(item, ContextRead)
			}
		}

	case *ast.SpreadExpr:
		c.walkExpr(e.Arg, ContextRead)

	case *ast.ObjectExpr:
		for _, prop := range e.Props {
			if prop.Computed {
				c.walkExpr(prop.Key, ContextRead)
			}
			if prop.Value != nil {
				c.walkExpr(prop.Value, ContextRead)
			}
		}

	case *ast.FunctionExpr:
		c.walkNamedFunctionExpr(e.Fn)

	case *ast.ArrowExpr:
		c.walkArrow(e)

	case *ast.ClassExpr:
		c.walkNamedClassExpr(e.Class)

	case *ast.UnaryExpr:
		c.walkExpr(e.Arg, ContextRead)

	case *ast.UpdateExpr:
		c.walkTarget(e.Arg)

	case *ast.BinaryExpr:
		c.walkExpr(e.Left, ContextRead)
		c.walkExpr(e.Right, ContextRead)

	case *ast.AssignExpr:
		c.walkTarget(e.Left)
		c.walkExpr(e.Right, ContextRead)

	case *ast.CondExpr:
		c.walkExpr(e.Test, ContextRead)
		c.walkExpr(e.Yes, ContextRead)
		c.walkExpr(e.No, ContextRead)

	case *ast.CallExpr:
		c.walkExpr(e.Callee, ContextCallee)
		for _, arg := range e.Args {
			c.walkExpr(arg, ContextRead)
		}

	case *ast.NewExpr:
		c.walkExpr(e.Callee, ContextRead)
		for _, arg := range e.Args {
			c.walkExpr(arg, ContextRead)
		}

	case *ast.MemberExpr:
		c.walkExpr(e.Object, ContextRead)

	case *ast.IndexExpr:
		c.walkExpr(e.Object, ContextRead)
		c.walkExpr(e.Index, ContextRead)

	case *ast.AwaitExpr:
		c.walkExpr(e.Arg, ContextRead)

	case *ast.YieldExpr:
		if e.Arg != nil {
			c.walkExpr(e.Arg, ContextRead)
		}

	case *ast.SequenceExpr:
		for _, x := range e.Exprs {
			c.walkExpr(x, ContextRead)
		}

	case *ast.ImportCallExpr:
		c.walkExpr(e.Arg, ContextRead)
		if e.Options != nil {
			c.walkExpr(e.Options, ContextRead)
		}
	}
}

// walkTarget visits an assignment target. Identifiers in it are
// constant violations; object and array literals are destructuring
// patterns whose leaves are targets and whose defaults are reads.
func (c *crawler) walkTarget(e ast.Expr) {
	switch e := e.(type) {
	case *ast.IdentExpr:
		c.order++
		c.reference(e, ContextWrite)

	case *ast.ObjectExpr:
		c.order++
		for _, prop := range e.Props {
			if prop.Computed {
				c.walkExpr(prop.Key, ContextRead)
			}
			if prop.Value != nil {
				c.walkTarget(prop.Value)
			}
		}

	case *ast.ArrayExpr:
		c.order++
		for _, item := range e.Items {
			if item != nil {
				c.walkTarget(item)
			}
		}

	case *ast.SpreadExpr:
		c.order++
		c.walkTarget(e.Arg)

	case *ast.AssignExpr:
		// A default inside a pattern: target = default
		c.order++
		c.walkTarget(e.Left)
		c.walkExpr(e.Right, ContextRead)

	default:
		c.walkExpr(e, ContextRead)
	}
}
