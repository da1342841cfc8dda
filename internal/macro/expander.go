package macro

import (
	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/env"
)

// Expander rewrites macro calls for one environment. Each call becomes
// either its surviving argument or "undefined". Nested expressions keep
// their nodes and IDs, so a fresh crawl afterwards sees the same names.
type Expander struct {
	module *ast.Module
	r      *Recognizer
	env    env.Env
	count  int
	err    error
}

// NewExpander creates an expander for module under e.
func NewExpander(module *ast.Module, r *Recognizer, e env.Env) *Expander {
	return &Expander{module: module, r: r, env: e}
}

// Expand rewrites the module in place. It returns the number of calls
// rewritten and stops at the first malformed macro call.
func (x *Expander) Expand() (int, error) {
	x.stmts(x.module.Body)
	return x.count, x.err
}

func (x *Expander) replace(call *ast.CallExpr, spec Spec) ast.Expr {
	x.count++
	switch spec.Form {
	case FormSelect:
		lit := call.Args[0].(*ast.StringLit)
		if env.Env(lit.Value) == x.env {
			return call.Args[1]
		}
	default:
		if spec.Survives(x.env) {
			return call.Args[0]
		}
	}
	return x.module.NewUndefined(call.Loc)
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (x *Expander) stmts(list []ast.Stmt) {
	for _, s := range list {
		x.stmt(s)
	}
}

func (x *Expander) stmt(s ast.Stmt) {
	if s == nil || x.err != nil {
		return
	}

	switch s := s.(type) {
	case *ast.VarDecl:
		for _, d := range s.Decls {
			x.binding(d.Binding)
			d.Init = x.expr(d.Init)
		}

	case *ast.FunctionDecl:
		x.function(s.Fn)

	case *ast.ClassDecl:
		x.class(s.Class)

	case *ast.ExportNamedDecl:
		x.stmt(s.Decl)

	case *ast.ExportDefaultDecl:
		if s.Decl != nil {
			x.stmt(s.Decl)
		} else {
			s.Expr = x.expr(s.Expr)
		}

	case *ast.ExprStmt:
		s.Expr = x.expr(s.Expr)

	case *ast.BlockStmt:
		x.stmts(s.Body)

	case *ast.IfStmt:
		s.Test = x.expr(s.Test)
		x.stmt(s.Yes)
		x.stmt(s.No)

	case *ast.ForStmt:
		x.stmt(s.Init)
		s.Test = x.expr(s.Test)
		s.Update = x.expr(s.Update)
		x.stmt(s.Body)

	case *ast.ForInStmt:
		x.stmt(s.Left)
		s.Right = x.expr(s.Right)
		x.stmt(s.Body)

	case *ast.ForOfStmt:
		x.stmt(s.Left)
		s.Right = x.expr(s.Right)
		x.stmt(s.Body)

	case *ast.WhileStmt:
		s.Test = x.expr(s.Test)
		x.stmt(s.Body)

	case *ast.DoWhileStmt:
		x.stmt(s.Body)
		s.Test = x.expr(s.Test)

	case *ast.ReturnStmt:
		s.Arg = x.expr(s.Arg)

	case *ast.ThrowStmt:
		s.Arg = x.expr(s.Arg)

	case *ast.TryStmt:
		x.stmts(s.Block.Body)
		if s.CatchParam != nil {
			x.binding(s.CatchParam)
		}
		if s.Catch != nil {
			x.stmts(s.Catch.Body)
		}
		if s.Finally != nil {
			x.stmts(s.Finally.Body)
		}

	case *ast.SwitchStmt:
		s.Disc = x.expr(s.Disc)
		for _, c := range s.Cases {
			c.Test = x.expr(c.Test)
			x.stmts(c.Body)
		}

	case *ast.LabeledStmt:
		x.stmt(s.Body)

	case *ast.ImportDecl, *ast.ExportAllDecl, *ast.EmptyStmt, *ast.BreakStmt,
		*ast.ContinueStmt, *ast.DebuggerStmt:
	}
}

func (x *Expander) binding(b ast.Binding) {
	switch b := b.(type) {
	case *ast.ObjectBinding:
		for _, prop := range b.Props {
			if prop.Computed {
				prop.Key = x.expr(prop.Key)
			}
			x.binding(prop.Value)
			prop.Default = x.expr(prop.Default)
		}
	case *ast.ArrayBinding:
		for _, item := range b.Items {
			if item != nil {
				x.binding(item.Value)
				item.Default = x.expr(item.Default)
			}
		}
	}
}

func (x *Expander) params(params []*ast.Param) {
	for _, p := range params {
		x.binding(p.Binding)
		p.Default = x.expr(p.Default)
	}
}

func (x *Expander) function(fn *ast.Function) {
	x.params(fn.Params)
	x.stmts(fn.Body)
}

func (x *Expander) class(c *ast.Class) {
	c.Extends = x.expr(c.Extends)
	x.properties(c.Members)
}

func (x *Expander) properties(props []*ast.Property) {
	for _, p := range props {
		if p.Computed {
			p.Key = x.expr(p.Key)
		}
		p.Value = x.expr(p.Value)
	}
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (x *Expander) exprs(list []ast.Expr) {
	for i, e := range list {
		list[i] = x.expr(e)
	}
}

// expr rewrites the children of e first, then e itself, and returns the
// node that should take e's place.
func (x *Expander) expr(e ast.Expr) ast.Expr {
	if e == nil || x.err != nil {
		return e
	}

	switch e := e.(type) {
	case *ast.TemplateLit:
		e.Tag = x.expr(e.Tag)
		x.exprs(e.Exprs)

	case *ast.ArrayExpr:
		x.exprs(e.Items)

	case *ast.SpreadExpr:
		e.Arg = x.expr(e.Arg)

	case *ast.ObjectExpr:
		x.properties(e.Props)

	case *ast.FunctionExpr:
		x.function(e.Fn)

	case *ast.ArrowExpr:
		x.params(e.Params)
		if e.IsExprBody {
			e.ExprBody = x.expr(e.ExprBody)
		} else {
			x.stmts(e.Body)
		}

	case *ast.ClassExpr:
		x.class(e.Class)

	case *ast.UnaryExpr:
		e.Arg = x.expr(e.Arg)

	case *ast.UpdateExpr:
		e.Arg = x.expr(e.Arg)

	case *ast.BinaryExpr:
		e.Left = x.expr(e.Left)
		e.Right = x.expr(e.Right)

	case *ast.AssignExpr:
		e.Left = x.expr(e.Left)
		e.Right = x.expr(e.Right)

	case *ast.CondExpr:
		e.Test = x.expr(e.Test)
		e.Yes = x.expr(e.Yes)
		e.No = x.expr(e.No)

	case *ast.CallExpr:
		e.Callee = x.expr(e.Callee)
		x.exprs(e.Args)
		if x.err != nil {
			return e
		}
		spec, ok, err := x.r.Recognize(e)
		if err != nil {
			x.err = err
			return e
		}
		if ok {
			return x.replace(e, spec)
		}

	case *ast.NewExpr:
		e.Callee = x.expr(e.Callee)
		x.exprs(e.Args)

	case *ast.MemberExpr:
		e.Object = x.expr(e.Object)

	case *ast.IndexExpr:
		e.Object = x.expr(e.Object)
		e.Index = x.expr(e.Index)

	case *ast.AwaitExpr:
		e.Arg = x.expr(e.Arg)

	case *ast.YieldExpr:
		e.Arg = x.expr(e.Arg)

	case *ast.SequenceExpr:
		x.exprs(e.Exprs)

	case *ast.ImportCallExpr:
		e.Arg = x.expr(e.Arg)
		e.Options = x.expr(e.Options)
	}

	return e
}
