// Package dce removes unreferenced declarations from JavaScript modules.
//
// Elimination runs in passes until one removes nothing:
// 1. Crawl the module to recompute every binding and reference
// 2. Sweep import specifiers, dropping a declaration left without any
// 3. Sweep function declarations and functions bound to a name
// 4. Sweep variable declarators, including parts of destructuring patterns
//
// A removal can leave other bindings unreferenced, so passes repeat
// until the module reaches a fixpoint.
package dce

import (
	"github.com/cockroachdb/errors"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/scope"
)

// ErrNoFixpoint is returned when passes keep removing code past the
// number of nodes in the module.
var ErrNoFixpoint = errors.New("dead code elimination did not reach a fixpoint")

// Options configures elimination.
type Options struct {
	// Candidates limits removal to bindings declared by these identifiers.
	// A nil map allows every unreferenced binding to be removed.
	Candidates map[ast.NodeID]bool
}

// Stats describes a completed elimination.
type Stats struct {
	Passes  int
	Removed int
}

// FindReferenced returns the declaring identifiers of every binding that
// is currently referenced. Passing the result as Options.Candidates after
// rewriting the module limits elimination to bindings that lost their
// last reference in the rewrite.
func FindReferenced(module *ast.Module) map[ast.NodeID]bool {
	info := scope.Crawl(module)
	referenced := make(map[ast.NodeID]bool)
	info.EachDeclaration(func(id ast.NodeID, ref scope.Ref) {
		if info.Binding(ref).IsReferencedOutsideSpan() {
			referenced[id] = true
		}
	})
	return referenced
}

// Eliminate removes unreferenced declarations from module in place.
func Eliminate(module *ast.Module, opts Options) (Stats, error) {
	var stats Stats
	limit := -1

	for {
		info := scope.Crawl(module)
		if limit < 0 {
			limit = info.NodeCount + 1
		}
		if stats.Passes >= limit {
			return stats, errors.WithDetailf(ErrNoFixpoint, "gave up after %d passes, %d removals", stats.Passes, stats.Removed)
		}

		e := &eliminator{info: info, opts: opts}
		module.Body = e.stmts(module.Body)
		stats.Passes++
		stats.Removed += e.removed

		if e.removed == 0 {
			return stats, nil
		}
	}
}

type eliminator struct {
	info    *scope.Info
	opts    Options
	removed int
}

// removable reports whether an unreferenced binding may go.
func (e *eliminator) removable(b *scope.Binding, referenced bool) bool {
	if b == nil || referenced {
		return false
	}
	if e.opts.Candidates == nil {
		return true
	}
	return e.opts.Candidates[b.ID]
}

func (e *eliminator) identRemovable(ident *ast.IdentBinding) bool {
	b := e.info.BindingOf(ident)
	return b != nil && e.removable(b, b.IsReferenced())
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// stmts filters list in place.
func (e *eliminator) stmts(list []ast.Stmt) []ast.Stmt {
	out := list[:0]
	for _, s := range list {
		if e.stmt(s) {
			out = append(out, s)
		}
	}
	for i := len(out); i < len(list); i++ {
		list[i] = nil
	}
	return out
}

// body processes a statement in a single-statement position, where a
// removed statement leaves an empty one behind.
func (e *eliminator) body(s ast.Stmt) ast.Stmt {
	if s == nil || e.stmt(s) {
		return s
	}
	return &ast.EmptyStmt{Loc: s.Start()}
}

// stmt sweeps s and its children and reports whether s stays.
func (e *eliminator) stmt(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ImportDecl:
		return e.importDecl(s)

	case *ast.VarDecl:
		s.Decls = e.declarators(s.Decls)
		return len(s.Decls) > 0

	case *ast.FunctionDecl:
		if s.Fn.Name != nil {
			b := e.info.BindingOf(s.Fn.Name)
			if b != nil && e.removable(b, b.IsReferencedOutsideSpan()) {
				e.removed++
				return false
			}
		}
		e.function(s.Fn)

	case *ast.ClassDecl:
		e.class(s.Class)

	case *ast.ExportNamedDecl:
		// Exported bindings are referenced from outside the module
		switch d := s.Decl.(type) {
		case *ast.VarDecl:
			for _, decl := range d.Decls {
				e.binding(decl.Binding)
				e.expr(decl.Init)
			}
		case *ast.FunctionDecl:
			e.function(d.Fn)
		case *ast.ClassDecl:
			e.class(d.Class)
		}

	case *ast.ExportDefaultDecl:
		switch d := s.Decl.(type) {
		case *ast.FunctionDecl:
			e.function(d.Fn)
		case *ast.ClassDecl:
			e.class(d.Class)
		}
		e.expr(s.Expr)

	case *ast.ExprStmt:
		if e.assignedFunction(s.Expr) {
			e.removed++
			return false
		}
		e.expr(s.Expr)

	case *ast.BlockStmt:
		s.Body = e.stmts(s.Body)

	case *ast.IfStmt:
		e.expr(s.Test)
		s.Yes = e.body(s.Yes)
		s.No = e.body(s.No)

	case *ast.ForStmt:
		e.forHead(s.Init)
		e.expr(s.Test)
		e.expr(s.Update)
		s.Body = e.body(s.Body)

	case *ast.ForInStmt:
		e.forHead(s.Left)
		e.expr(s.Right)
		s.Body = e.body(s.Body)

	case *ast.ForOfStmt:
		e.forHead(s.Left)
		e.expr(s.Right)
		s.Body = e.body(s.Body)

	case *ast.WhileStmt:
		e.expr(s.Test)
		s.Body = e.body(s.Body)

	case *ast.DoWhileStmt:
		s.Body = e.body(s.Body)
		e.expr(s.Test)

	case *ast.ReturnStmt:
		e.expr(s.Arg)

	case *ast.ThrowStmt:
		e.expr(s.Arg)

	case *ast.TryStmt:
		s.Block.Body = e.stmts(s.Block.Body)
		if s.CatchParam != nil {
			e.binding(s.CatchParam)
		}
		if s.Catch != nil {
			s.Catch.Body = e.stmts(s.Catch.Body)
		}
		if s.Finally != nil {
			s.Finally.Body = e.stmts(s.Finally.Body)
		}

	case *ast.SwitchStmt:
		e.expr(s.Disc)
		for _, c := range s.Cases {
			e.expr(c.Test)
			c.Body = e.stmts(c.Body)
		}

	case *ast.LabeledStmt:
		s.Body = e.body(s.Body)

	case *ast.ExportAllDecl, *ast.EmptyStmt, *ast.BreakStmt, *ast.ContinueStmt, *ast.DebuggerStmt:
	}
	return true
}

// importDecl drops unreferenced specifiers. A declaration is removed only
// when this pass emptied it, so side-effect imports stay.
func (e *eliminator) importDecl(s *ast.ImportDecl) bool {
	if len(s.Specs) == 0 {
		return true
	}
	specs := s.Specs[:0]
	for _, spec := range s.Specs {
		if e.identRemovable(spec.Local) {
			e.removed++
			continue
		}
		specs = append(specs, spec)
	}
	s.Specs = specs
	return len(specs) > 0
}

// assignedFunction reports whether expr is "name = function" or
// "name = () => ..." for a local name that is never read.
func (e *eliminator) assignedFunction(expr ast.Expr) bool {
	assign, ok := expr.(*ast.AssignExpr)
	if !ok || assign.Op != ast.AssignSimple {
		return false
	}
	switch assign.Right.(type) {
	case *ast.FunctionExpr, *ast.ArrowExpr:
	default:
		return false
	}
	target, ok := assign.Left.(*ast.IdentExpr)
	if !ok {
		return false
	}
	ref, ok := e.info.Resolve(target.ID)
	if !ok {
		return false
	}
	b := e.info.Binding(ref)
	return e.removable(b, b.Exported || len(b.References) > 0)
}

// forHead visits a loop head. Its declarators are never removed.
func (e *eliminator) forHead(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		for _, d := range s.Decls {
			e.binding(d.Binding)
			e.expr(d.Init)
		}
	case *ast.ExprStmt:
		e.expr(s.Expr)
	}
}

// ----------------------------------------------------------------------------
// Declarators
// ----------------------------------------------------------------------------

func (e *eliminator) declarators(decls []*ast.Declarator) []*ast.Declarator {
	out := decls[:0]
	for _, d := range decls {
		if e.declaratorRemoved(d) {
			continue
		}
		e.binding(d.Binding)
		e.expr(d.Init)
		out = append(out, d)
	}
	return out
}

func (e *eliminator) declaratorRemoved(d *ast.Declarator) bool {
	switch b := d.Binding.(type) {
	case *ast.IdentBinding:
		if e.identRemovable(b) {
			e.removed++
			return true
		}

	case *ast.ObjectBinding:
		if e.objectPattern(b) > 0 && len(b.Props) == 0 {
			return true
		}

	case *ast.ArrayBinding:
		if e.arrayPattern(b) > 0 && len(b.Items) == 0 {
			return true
		}
	}
	return false
}

// objectPattern removes unreferenced properties and returns how many went.
// A nested pattern goes only when every name in it is removable. While a
// rest element is referenced, its siblings decide what it collects and
// all of them stay.
func (e *eliminator) objectPattern(p *ast.ObjectBinding) int {
	for _, prop := range p.Props {
		if prop.Rest && !e.allRemovable(prop.Value) {
			return 0
		}
	}

	removed := 0
	props := p.Props[:0]
	for _, prop := range p.Props {
		if e.allRemovable(prop.Value) {
			removed++
			continue
		}
		props = append(props, prop)
	}
	p.Props = props
	e.removed += removed
	return removed
}

// arrayPattern removes unreferenced identifier and rest elements. Removed
// elements become holes so the others keep their positions; trailing
// holes are dropped.
func (e *eliminator) arrayPattern(p *ast.ArrayBinding) int {
	removed := 0
	for i, item := range p.Items {
		if item == nil || item.Default != nil {
			continue
		}
		ident, ok := item.Value.(*ast.IdentBinding)
		if !ok {
			continue
		}
		if e.identRemovable(ident) {
			p.Items[i] = nil
			removed++
		}
	}

	end := len(p.Items)
	for end > 0 && p.Items[end-1] == nil {
		end--
	}
	if removed > 0 {
		p.Items = p.Items[:end]
	}
	e.removed += removed
	return removed
}

func (e *eliminator) allRemovable(b ast.Binding) bool {
	all := true
	ast.BindingIdents(b, func(ident *ast.IdentBinding) {
		if !e.identRemovable(ident) {
			all = false
		}
	})
	return all
}

// ----------------------------------------------------------------------------
// Nested Code
// ----------------------------------------------------------------------------

// binding visits the expressions inside a pattern, which may hold
// functions with their own declarations.
func (e *eliminator) binding(b ast.Binding) {
	switch b := b.(type) {
	case *ast.ObjectBinding:
		for _, prop := range b.Props {
			if prop.Computed {
				e.expr(prop.Key)
			}
			e.binding(prop.Value)
			e.expr(prop.Default)
		}
	case *ast.ArrayBinding:
		for _, item := range b.Items {
			if item != nil {
				e.binding(item.Value)
				e.expr(item.Default)
			}
		}
	}
}

func (e *eliminator) function(fn *ast.Function) {
	for _, p := range fn.Params {
		e.binding(p.Binding)
		e.expr(p.Default)
	}
	fn.Body = e.stmts(fn.Body)
}

func (e *eliminator) class(c *ast.Class) {
	e.expr(c.Extends)
	e.properties(c.Members)
}

func (e *eliminator) properties(props []*ast.Property) {
	for _, p := range props {
		if p.Computed {
			e.expr(p.Key)
		}
		e.expr(p.Value)
	}
}

func (e *eliminator) exprs(list []ast.Expr) {
	for _, x := range list {
		e.expr(x)
	}
}

// expr looks for function bodies inside an expression.
func (e *eliminator) expr(x ast.Expr) {
	switch x := x.(type) {
	case nil:

	case *ast.FunctionExpr:
		e.function(x.Fn)

	case *ast.ArrowExpr:
		for _, p := range x.Params {
			e.binding(p.Binding)
			e.expr(p.Default)
		}
		if x.IsExprBody {
			e.expr(x.ExprBody)
		} else {
			x.Body = e.stmts(x.Body)
		}

	case *ast.ClassExpr:
		e.class(x.Class)

	case *ast.TemplateLit:
		e.expr(x.Tag)
		e.exprs(x.Exprs)

	case *ast.ArrayExpr:
		e.exprs(x.Items)

	case *ast.SpreadExpr:
		e.expr(x.Arg)

	case *ast.ObjectExpr:
		e.properties(x.Props)

	case *ast.UnaryExpr:
		e.expr(x.Arg)

	case *ast.UpdateExpr:
		e.expr(x.Arg)

	case *ast.BinaryExpr:
		e.expr(x.Left)
		e.expr(x.Right)

	case *ast.AssignExpr:
		e.expr(x.Left)
		e.expr(x.Right)

	case *ast.CondExpr:
		e.expr(x.Test)
		e.expr(x.Yes)
		e.expr(x.No)

	case *ast.CallExpr:
		e.expr(x.Callee)
		e.exprs(x.Args)

	case *ast.NewExpr:
		e.expr(x.Callee)
		e.exprs(x.Args)

	case *ast.MemberExpr:
		e.expr(x.Object)

	case *ast.IndexExpr:
		e.expr(x.Object)
		e.expr(x.Index)

	case *ast.AwaitExpr:
		e.expr(x.Arg)

	case *ast.YieldExpr:
		e.expr(x.Arg)

	case *ast.SequenceExpr:
		e.exprs(x.Exprs)

	case *ast.ImportCallExpr:
		e.expr(x.Arg)
		e.expr(x.Options)
	}
}
