// Package printer outputs JavaScript code from an AST.
//
// Output follows a fixed layout: two-space indentation, a semicolon after
// every statement, one statement per line, and object literals and object
// patterns spread over several lines. Parentheses are not stored in the
// tree; the printer re-inserts them from operator precedence, so any tree
// the macro expander or the dead code eliminator produced prints as valid
// code.
//
// When a source map generator is configured, a mapping is recorded at the
// start of every statement and expression, carrying the identifier name for
// identifiers.
package printer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/lexer"
	"github.com/HugoDaniel/envonly/internal/sourcemap"
)

// Options controls printer output.
type Options struct {
	// Indent is one level of indentation. Defaults to two spaces.
	Indent string

	// StripComments drops comments attached to statements
	StripComments bool

	// SourceMapGen receives mappings while printing (nil disables)
	SourceMapGen *sourcemap.Generator
}

// Printer outputs JavaScript code.
type Printer struct {
	options Options

	buf    strings.Builder
	indent int

	// Generated position tracking for source maps
	line      int
	lineStart int

	comments map[ast.Stmt][]lexer.Comment
}

// New creates a new printer.
func New(options Options) *Printer {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &Printer{options: options}
}

// Print outputs the module as a string. The output has no trailing newline.
func (p *Printer) Print(module *ast.Module) string {
	p.reset()
	if !p.options.StripComments {
		p.comments = module.Comments
	}
	p.printModule(module)
	return p.buf.String()
}

// PrintExpr outputs a single expression.
func (p *Printer) PrintExpr(expr ast.Expr) string {
	p.reset()
	p.printExpr(expr, ast.LLowest, 0)
	return p.buf.String()
}

func (p *Printer) reset() {
	p.buf.Reset()
	p.indent = 0
	p.line = 0
	p.lineStart = 0
	p.comments = nil
}

// ----------------------------------------------------------------------------
// Output Helpers
// ----------------------------------------------------------------------------

func (p *Printer) print(s string) {
	p.buf.WriteString(s)
	if p.options.SourceMapGen == nil {
		return
	}
	if n := strings.Count(s, "\n"); n > 0 {
		p.line += n
		p.lineStart = p.buf.Len() - (len(s) - strings.LastIndexByte(s, '\n') - 1)
	}
}

func (p *Printer) printSpace() {
	p.buf.WriteByte(' ')
}

func (p *Printer) printNewline() {
	p.buf.WriteByte('\n')
	p.line++
	p.lineStart = p.buf.Len()
	p.printIndent()
}

func (p *Printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString(p.options.Indent)
	}
}

func (p *Printer) printSemicolon() {
	p.buf.WriteByte(';')
}

// addMapping records the current generated position for loc.
func (p *Printer) addMapping(loc ast.Loc, name string) {
	gen := p.options.SourceMapGen
	if gen == nil {
		return
	}
	col := sourcemap.UTF16Len(p.buf.String()[p.lineStart:])
	gen.AddMapping(p.line, col, int(loc.Start), name)
}

// printQuoted prints a synthesized string as a double-quoted literal.
func (p *Printer) printQuoted(value string) {
	p.print(QuoteString(value))
}

// QuoteString returns value as a double-quoted JavaScript string literal.
func QuoteString(value string) string {
	var sb strings.Builder
	sb.Grow(len(value) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(value); {
		r, size := utf8.DecodeRuneInString(value[i:])
		i += size
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == utf8.RuneError && size == 1 {
				sb.WriteString(`\x`)
				hex := strconv.FormatUint(uint64(value[i-size]), 16)
				if len(hex) < 2 {
					sb.WriteByte('0')
				}
				sb.WriteString(hex)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// ----------------------------------------------------------------------------
// Module and Statements
// ----------------------------------------------------------------------------

func (p *Printer) printModule(m *ast.Module) {
	if m.Hashbang != "" {
		p.print(m.Hashbang)
		if len(m.Body) > 0 {
			p.printNewline()
		}
	}
	p.printStmtList(m.Body)
}

// printStmtList prints statements separated by newlines, starting on the
// current line.
func (p *Printer) printStmtList(stmts []ast.Stmt) {
	for i, stmt := range stmts {
		if i > 0 {
			p.printNewline()
		}
		p.printStmt(stmt)
	}
}

func (p *Printer) printLeadingComments(stmt ast.Stmt) {
	for _, c := range p.comments[stmt] {
		p.print(c.Text)
		p.printNewline()
	}
}

// printBlockBody prints "{ ... }" with the statements indented.
func (p *Printer) printBlockBody(stmts []ast.Stmt) {
	if len(stmts) == 0 {
		p.print("{}")
		return
	}
	p.print("{")
	p.indent++
	p.printNewline()
	p.printStmtList(stmts)
	p.indent--
	p.printNewline()
	p.print("}")
}

// printBody prints a statement nested under if/for/while/etc.
func (p *Printer) printBody(body ast.Stmt) {
	switch b := body.(type) {
	case *ast.BlockStmt:
		p.printSpace()
		p.addMapping(b.Loc, "")
		p.printBlockBody(b.Body)
	case *ast.EmptyStmt:
		p.printSemicolon()
	default:
		p.printSpace()
		p.printStmt(body)
	}
}

func (p *Printer) printStmt(stmt ast.Stmt) {
	p.printLeadingComments(stmt)
	p.addMapping(stmt.Start(), "")

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		p.printExpr(s.Expr, ast.LLowest, stmtStart)
		p.printSemicolon()

	case *ast.VarDecl:
		p.printVarDecl(s, false)
		p.printSemicolon()

	case *ast.FunctionDecl:
		p.printFunction(s.Fn, "function")

	case *ast.ClassDecl:
		p.printClass(s.Class)

	case *ast.ImportDecl:
		p.printImport(s)

	case *ast.ExportNamedDecl:
		p.printExportNamed(s)

	case *ast.ExportDefaultDecl:
		p.print("export default ")
		switch {
		case s.Decl != nil:
			p.printStmt(s.Decl)
		default:
			p.printExpr(s.Expr, ast.LComma, exportDefaultStart)
			p.printSemicolon()
		}

	case *ast.ExportAllDecl:
		p.print("export *")
		if s.Alias != "" {
			p.print(" as ")
			p.printModuleExportName(s.Alias, s.AliasIsString)
		}
		p.print(" from ")
		p.printExpr(s.Source, ast.LLowest, 0)
		p.printImportAttributes(s.Attributes)
		p.printSemicolon()

	case *ast.BlockStmt:
		p.printBlockBody(s.Body)

	case *ast.EmptyStmt:
		p.printSemicolon()

	case *ast.IfStmt:
		p.printIf(s)

	case *ast.ForStmt:
		p.print("for (")
		switch init := s.Init.(type) {
		case *ast.VarDecl:
			p.printVarDecl(init, true)
		case *ast.ExprStmt:
			p.printExpr(init.Expr, ast.LLowest, forbidIn)
		}
		p.printSemicolon()
		if s.Test != nil {
			p.printSpace()
			p.printExpr(s.Test, ast.LLowest, 0)
		}
		p.printSemicolon()
		if s.Update != nil {
			p.printSpace()
			p.printExpr(s.Update, ast.LLowest, 0)
		}
		p.print(")")
		p.printBody(s.Body)

	case *ast.ForInStmt:
		p.print("for (")
		p.printForLeft(s.Left)
		p.print(" in ")
		p.printExpr(s.Right, ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *ast.ForOfStmt:
		p.print("for ")
		if s.Await {
			p.print("await ")
		}
		p.print("(")
		p.printForLeft(s.Left)
		p.print(" of ")
		p.printExpr(s.Right, ast.LComma, 0)
		p.print(")")
		p.printBody(s.Body)

	case *ast.WhileStmt:
		p.print("while (")
		p.printExpr(s.Test, ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *ast.DoWhileStmt:
		p.print("do")
		p.printBody(s.Body)
		p.print(" while (")
		p.printExpr(s.Test, ast.LLowest, 0)
		p.print(")")
		p.printSemicolon()

	case *ast.ReturnStmt:
		p.print("return")
		if s.Arg != nil {
			p.printSpace()
			p.printExpr(s.Arg, ast.LLowest, 0)
		}
		p.printSemicolon()

	case *ast.ThrowStmt:
		p.print("throw ")
		p.printExpr(s.Arg, ast.LLowest, 0)
		p.printSemicolon()

	case *ast.BreakStmt:
		p.print("break")
		if s.Label != "" {
			p.print(" " + s.Label)
		}
		p.printSemicolon()

	case *ast.ContinueStmt:
		p.print("continue")
		if s.Label != "" {
			p.print(" " + s.Label)
		}
		p.printSemicolon()

	case *ast.TryStmt:
		p.print("try ")
		p.printBlockBody(s.Block.Body)
		if s.Catch != nil {
			p.print(" catch ")
			if s.CatchParam != nil {
				p.print("(")
				p.printBinding(s.CatchParam)
				p.print(") ")
			}
			p.printBlockBody(s.Catch.Body)
		}
		if s.Finally != nil {
			p.print(" finally ")
			p.printBlockBody(s.Finally.Body)
		}

	case *ast.SwitchStmt:
		p.print("switch (")
		p.printExpr(s.Disc, ast.LLowest, 0)
		p.print(") {")
		if len(s.Cases) == 0 {
			p.print("}")
			break
		}
		p.indent++
		for _, c := range s.Cases {
			p.printNewline()
			p.addMapping(c.Loc, "")
			if c.Test != nil {
				p.print("case ")
				p.printExpr(c.Test, ast.LLowest, 0)
				p.print(":")
			} else {
				p.print("default:")
			}
			if len(c.Body) > 0 {
				p.indent++
				p.printNewline()
				p.printStmtList(c.Body)
				p.indent--
			}
		}
		p.indent--
		p.printNewline()
		p.print("}")

	case *ast.LabeledStmt:
		p.print(s.Label + ":")
		p.printBody(s.Body)

	case *ast.DebuggerStmt:
		p.print("debugger")
		p.printSemicolon()
	}
}

func (p *Printer) printVarDecl(s *ast.VarDecl, inFor bool) {
	p.print(s.Kind.String())
	p.printSpace()

	hasInits := false
	if !inFor {
		for _, d := range s.Decls {
			if d.Init != nil {
				hasInits = true
			}
		}
	}
	var flags exprFlags
	if inFor {
		flags = forbidIn
	}

	if len(s.Decls) > 1 {
		p.indent++
	}
	for i, d := range s.Decls {
		if i > 0 {
			p.print(",")
			if hasInits {
				p.printNewline()
			} else {
				p.printSpace()
			}
		}
		p.printBinding(d.Binding)
		if d.Init != nil {
			p.print(" = ")
			p.printExpr(d.Init, ast.LComma, flags)
		}
	}
	if len(s.Decls) > 1 {
		p.indent--
	}
}

func (p *Printer) printForLeft(left ast.Stmt) {
	switch l := left.(type) {
	case *ast.VarDecl:
		p.printVarDecl(l, true)
	case *ast.ExprStmt:
		p.printExpr(l.Expr, ast.LPostfix, forbidIn)
	}
}

func (p *Printer) printIf(s *ast.IfStmt) {
	p.print("if (")
	p.printExpr(s.Test, ast.LLowest, 0)
	p.print(")")

	// "if (a) if (b) c; else d;" would bind the else to the inner if
	if s.No != nil && endsWithDanglingIf(s.Yes) {
		p.printSpace()
		p.printBlockBody([]ast.Stmt{s.Yes})
	} else {
		p.printBody(s.Yes)
	}

	if s.No == nil {
		return
	}
	p.printSpace()
	p.print("else")
	if elseIf, ok := s.No.(*ast.IfStmt); ok {
		p.printSpace()
		p.printLeadingComments(elseIf)
		p.addMapping(elseIf.Loc, "")
		p.printIf(elseIf)
		return
	}
	p.printBody(s.No)
}

func endsWithDanglingIf(stmt ast.Stmt) bool {
	for {
		switch s := stmt.(type) {
		case *ast.IfStmt:
			if s.No == nil {
				return true
			}
			stmt = s.No
		case *ast.ForStmt:
			stmt = s.Body
		case *ast.ForInStmt:
			stmt = s.Body
		case *ast.ForOfStmt:
			stmt = s.Body
		case *ast.WhileStmt:
			stmt = s.Body
		case *ast.LabeledStmt:
			stmt = s.Body
		default:
			return false
		}
	}
}

// ----------------------------------------------------------------------------
// Imports and Exports
// ----------------------------------------------------------------------------

func (p *Printer) printImport(s *ast.ImportDecl) {
	p.print("import ")

	var named []*ast.ImportSpec
	wrote := false
	for _, spec := range s.Specs {
		switch spec.Kind {
		case ast.ImportDefault:
			p.printIdentBinding(spec.Local)
			wrote = true
		case ast.ImportNamespace:
			if wrote {
				p.print(", ")
			}
			p.print("* as ")
			p.printIdentBinding(spec.Local)
			wrote = true
		default:
			named = append(named, spec)
		}
	}

	if len(named) > 0 || (s.HadBraces && !wrote) {
		if wrote {
			p.print(", ")
		}
		if len(named) == 0 {
			p.print("{}")
		} else {
			p.print("{ ")
			for i, spec := range named {
				if i > 0 {
					p.print(", ")
				}
				p.addMapping(spec.Loc, "")
				if spec.ImportedIsString || spec.Imported != spec.Local.Name {
					p.printModuleExportName(spec.Imported, spec.ImportedIsString)
					p.print(" as ")
				}
				p.printIdentBinding(spec.Local)
			}
			p.print(" }")
		}
		wrote = true
	}

	if wrote {
		p.print(" from ")
	}
	p.printExpr(s.Source, ast.LLowest, 0)
	p.printImportAttributes(s.Attributes)
	p.printSemicolon()
}

func (p *Printer) printImportAttributes(attrs []*ast.ImportAttribute) {
	if len(attrs) == 0 {
		return
	}
	p.print(" with { ")
	for i, attr := range attrs {
		if i > 0 {
			p.print(", ")
		}
		if lexer.IsIdentifier(attr.Key) {
			p.print(attr.Key)
		} else {
			p.printQuoted(attr.Key)
		}
		p.print(": ")
		p.printExpr(attr.Value, ast.LLowest, 0)
	}
	p.print(" }")
}

func (p *Printer) printExportNamed(s *ast.ExportNamedDecl) {
	p.print("export ")
	if s.Decl != nil {
		p.printStmt(s.Decl)
		return
	}

	if len(s.Specs) == 0 {
		p.print("{}")
	} else {
		p.print("{ ")
		for i, spec := range s.Specs {
			if i > 0 {
				p.print(", ")
			}
			p.addMapping(spec.Loc, "")
			localName := spec.LocalName
			if spec.Local != nil {
				localName = spec.Local.Name
				p.printExpr(spec.Local, ast.LLowest, 0)
			} else {
				p.printModuleExportName(spec.LocalName, spec.LocalIsString)
			}
			if spec.ExportedIsString != spec.LocalIsString || spec.Exported != localName {
				p.print(" as ")
				p.printModuleExportName(spec.Exported, spec.ExportedIsString)
			}
		}
		p.print(" }")
	}

	if s.Source != nil {
		p.print(" from ")
		p.printExpr(s.Source, ast.LLowest, 0)
		p.printImportAttributes(s.Attributes)
	}
	p.printSemicolon()
}

func (p *Printer) printModuleExportName(name string, isString bool) {
	if isString {
		p.printQuoted(name)
	} else {
		p.print(name)
	}
}

// ----------------------------------------------------------------------------
// Bindings
// ----------------------------------------------------------------------------

func (p *Printer) printIdentBinding(b *ast.IdentBinding) {
	p.addMapping(b.Loc, b.Name)
	p.print(b.Name)
}

func (p *Printer) printBinding(b ast.Binding) {
	switch b := b.(type) {
	case *ast.IdentBinding:
		p.printIdentBinding(b)

	case *ast.ArrayBinding:
		p.addMapping(b.Loc, "")
		p.print("[")
		for i, item := range b.Items {
			if item == nil {
				p.print(",")
				continue
			}
			if i > 0 {
				p.printSpace()
			}
			if item.Rest {
				p.print("...")
			}
			p.printBinding(item.Value)
			if item.Default != nil {
				p.print(" = ")
				p.printExpr(item.Default, ast.LComma, 0)
			}
			if i < len(b.Items)-1 {
				p.print(",")
			}
		}
		p.print("]")

	case *ast.ObjectBinding:
		p.addMapping(b.Loc, "")
		if len(b.Props) == 0 {
			p.print("{}")
			return
		}
		p.print("{")
		p.indent++
		for i, prop := range b.Props {
			if i > 0 {
				p.print(",")
			}
			p.printNewline()
			p.addMapping(prop.Loc, "")
			if prop.Rest {
				p.print("...")
				p.printBinding(prop.Value)
				continue
			}
			if !prop.Shorthand || !isShorthandBinding(prop) {
				p.printPropertyKey(prop.Key, prop.Computed)
				p.print(": ")
			}
			p.printBinding(prop.Value)
			if prop.Default != nil {
				p.print(" = ")
				p.printExpr(prop.Default, ast.LComma, 0)
			}
		}
		p.indent--
		p.printNewline()
		p.print("}")
	}
}

func isShorthandBinding(prop *ast.BindingProp) bool {
	key, ok := prop.Key.(*ast.IdentExpr)
	if !ok || prop.Computed {
		return false
	}
	value, ok := prop.Value.(*ast.IdentBinding)
	return ok && value.Name == key.Name
}

func (p *Printer) printParams(params []*ast.Param) {
	p.print("(")
	for i, param := range params {
		if i > 0 {
			p.print(", ")
		}
		if param.Rest {
			p.print("...")
		}
		p.printBinding(param.Binding)
		if param.Default != nil {
			p.print(" = ")
			p.printExpr(param.Default, ast.LComma, 0)
		}
	}
	p.print(")")
}

// ----------------------------------------------------------------------------
// Functions and Classes
// ----------------------------------------------------------------------------

// printFunction prints a function declaration or expression starting with
// keyword ("function").
func (p *Printer) printFunction(fn *ast.Function, keyword string) {
	if fn.Async {
		p.print("async ")
	}
	p.print(keyword)
	if fn.Generator {
		p.print("*")
	}
	p.printSpace()
	if fn.Name != nil {
		p.printIdentBinding(fn.Name)
	}
	p.printParams(fn.Params)
	p.printSpace()
	p.printBlockBody(fn.Body)
}

func (p *Printer) printClass(c *ast.Class) {
	p.print("class ")
	if c.Name != nil {
		p.printIdentBinding(c.Name)
		p.printSpace()
	}
	if c.Extends != nil {
		p.print("extends ")
		p.printExpr(c.Extends, ast.LPostfix, 0)
		p.printSpace()
	}
	if len(c.Members) == 0 {
		p.print("{}")
		return
	}
	p.print("{")
	p.indent++
	for _, member := range c.Members {
		p.printNewline()
		p.printProperty(member, true)
	}
	p.indent--
	p.printNewline()
	p.print("}")
}

// printProperty prints an object literal or class member.
func (p *Printer) printProperty(prop *ast.Property, inClass bool) {
	p.addMapping(prop.Loc, "")

	if prop.Kind == ast.PropSpread {
		p.print("...")
		p.printExpr(prop.Value, ast.LComma, 0)
		return
	}
	if prop.Static {
		p.print("static ")
	}
	if prop.Kind == ast.PropStaticBlock {
		p.printBlockBody(prop.Value.(*ast.FunctionExpr).Fn.Body)
		return
	}

	switch prop.Kind {
	case ast.PropMethod, ast.PropGet, ast.PropSet:
		fn := prop.Value.(*ast.FunctionExpr).Fn
		switch prop.Kind {
		case ast.PropGet:
			p.print("get ")
		case ast.PropSet:
			p.print("set ")
		}
		if fn.Async {
			p.print("async ")
		}
		if fn.Generator {
			p.print("*")
		}
		p.printPropertyKey(prop.Key, prop.Computed)
		p.printParams(fn.Params)
		p.printSpace()
		p.printBlockBody(fn.Body)
		return

	case ast.PropField:
		p.printPropertyKey(prop.Key, prop.Computed)
		if prop.Value != nil {
			p.print(" = ")
			p.printExpr(prop.Value, ast.LComma, 0)
		}
		p.printSemicolon()
		return
	}

	if prop.Shorthand && isShorthandValue(prop) {
		if assign, ok := prop.Value.(*ast.AssignExpr); ok {
			p.printExpr(assign.Left, ast.LLowest, 0)
			p.print(" = ")
			p.printExpr(assign.Right, ast.LComma, 0)
			return
		}
		p.printExpr(prop.Value, ast.LComma, 0)
		return
	}
	p.printPropertyKey(prop.Key, prop.Computed)
	p.print(": ")
	p.printExpr(prop.Value, ast.LComma, 0)
}

// isShorthandValue reports whether a shorthand property still names its
// own key, either directly or as "key = default".
func isShorthandValue(prop *ast.Property) bool {
	key, ok := prop.Key.(*ast.IdentExpr)
	if !ok || prop.Computed {
		return false
	}
	value := prop.Value
	if assign, ok := value.(*ast.AssignExpr); ok && assign.Op == ast.AssignSimple {
		value = assign.Left
	}
	ident, ok := value.(*ast.IdentExpr)
	return ok && ident.Name == key.Name
}

func (p *Printer) printPropertyKey(key ast.Expr, computed bool) {
	if computed {
		p.print("[")
		p.printExpr(key, ast.LComma, 0)
		p.print("]")
		return
	}
	switch k := key.(type) {
	case *ast.IdentExpr:
		p.addMapping(k.Loc, k.Name)
		p.print(k.Name)
	case *ast.PrivateName:
		p.addMapping(k.Loc, "")
		p.print(k.Name)
	default:
		p.printExpr(key, ast.LLowest, 0)
	}
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

type exprFlags uint8

const (
	forbidIn exprFlags = 1 << iota
	forbidCall

	// The expression is the leftmost part of an expression statement,
	// an "export default" expression, or a concise arrow body. These
	// propagate down the left spine only.
	stmtStart
	exportDefaultStart
	arrowBodyStart
)

const startFlags = stmtStart | exportDefaultStart | arrowBodyStart

func (p *Printer) printExpr(expr ast.Expr, level ast.Level, flags exprFlags) {
	p.addMapping(expr.Start(), "")

	switch e := expr.(type) {
	case *ast.IdentExpr:
		p.addMapping(e.Loc, e.Name)
		p.print(e.Name)

	case *ast.NumberLit:
		p.print(e.Raw)

	case *ast.BigIntLit:
		p.print(e.Raw)

	case *ast.StringLit:
		if e.Raw != "" {
			p.print(e.Raw)
		} else {
			p.printQuoted(e.Value)
		}

	case *ast.RegExpLit:
		p.print(e.Raw)

	case *ast.BoolLit:
		if e.Value {
			p.print("true")
		} else {
			p.print("false")
		}

	case *ast.NullLit:
		p.print("null")

	case *ast.ThisExpr:
		p.print("this")

	case *ast.SuperExpr:
		p.print("super")

	case *ast.PrivateName:
		p.print(e.Name)

	case *ast.MetaProperty:
		p.print(e.Meta + "." + e.Prop)

	case *ast.TemplateLit:
		if e.Tag != nil {
			p.printChainPart(e.Tag, ast.LPostfix, flags&(startFlags|forbidCall))
		}
		p.print("`")
		for i, quasi := range e.Quasis {
			p.print(quasi)
			if i < len(e.Exprs) {
				p.print("${")
				p.printExpr(e.Exprs[i], ast.LLowest, 0)
				p.print("}")
			}
		}
		p.print("`")

	case *ast.ArrayExpr:
		p.print("[")
		for i, item := range e.Items {
			if item == nil {
				p.print(",")
				continue
			}
			if i > 0 {
				p.printSpace()
			}
			p.printExpr(item, ast.LComma, 0)
			if i < len(e.Items)-1 {
				p.print(",")
			}
		}
		p.print("]")

	case *ast.SpreadExpr:
		p.print("...")
		p.printExpr(e.Arg, ast.LComma, 0)

	case *ast.ObjectExpr:
		wrap := flags&(stmtStart|arrowBodyStart) != 0
		if wrap {
			p.print("(")
		}
		if len(e.Props) == 0 {
			p.print("{}")
		} else {
			p.print("{")
			p.indent++
			for i, prop := range e.Props {
				if i > 0 {
					p.print(",")
				}
				p.printNewline()
				p.printProperty(prop, false)
			}
			p.indent--
			p.printNewline()
			p.print("}")
		}
		if wrap {
			p.print(")")
		}

	case *ast.FunctionExpr:
		wrap := flags&(stmtStart|exportDefaultStart) != 0
		if wrap {
			p.print("(")
		}
		p.printFunction(e.Fn, "function")
		if wrap {
			p.print(")")
		}

	case *ast.ClassExpr:
		wrap := flags&(stmtStart|exportDefaultStart) != 0
		if wrap {
			p.print("(")
		}
		p.printClass(e.Class)
		if wrap {
			p.print(")")
		}

	case *ast.ArrowExpr:
		wrap := level >= ast.LAssign
		if wrap {
			p.print("(")
		}
		if e.Async {
			p.print("async ")
		}
		if len(e.Params) == 1 && isSimpleParam(e.Params[0]) {
			p.printBinding(e.Params[0].Binding)
		} else {
			p.printParams(e.Params)
		}
		p.print(" => ")
		if e.IsExprBody {
			p.printExpr(e.ExprBody, ast.LComma, arrowBodyStart)
		} else {
			p.printBlockBody(e.Body)
		}
		if wrap {
			p.print(")")
		}

	case *ast.UnaryExpr:
		wrap := level >= ast.LPrefix
		if wrap {
			p.print("(")
		}
		p.print(e.Op.String())
		if e.Op.IsKeyword() || needsSignSpace(e.Op, e.Arg) {
			p.printSpace()
		}
		p.printExpr(e.Arg, ast.LPrefix-1, 0)
		if wrap {
			p.print(")")
		}

	case *ast.UpdateExpr:
		if e.Prefix {
			wrap := level >= ast.LPrefix
			if wrap {
				p.print("(")
			}
			p.print(e.Op.String())
			p.printExpr(e.Arg, ast.LPrefix-1, 0)
			if wrap {
				p.print(")")
			}
		} else {
			wrap := level >= ast.LPostfix
			if wrap {
				p.print("(")
				flags = 0
			}
			p.printExpr(e.Arg, ast.LPostfix-1, flags&startFlags)
			p.print(e.Op.String())
			if wrap {
				p.print(")")
			}
		}

	case *ast.AwaitExpr:
		wrap := level >= ast.LPrefix
		if wrap {
			p.print("(")
		}
		p.print("await ")
		p.printExpr(e.Arg, ast.LPrefix-1, 0)
		if wrap {
			p.print(")")
		}

	case *ast.YieldExpr:
		wrap := level >= ast.LAssign
		if wrap {
			p.print("(")
		}
		p.print("yield")
		if e.Delegate {
			p.print("*")
		}
		if e.Arg != nil {
			p.printSpace()
			p.printExpr(e.Arg, ast.LYield, 0)
		}
		if wrap {
			p.print(")")
		}

	case *ast.BinaryExpr:
		p.printBinary(e, level, flags)

	case *ast.AssignExpr:
		_, objectTarget := e.Left.(*ast.ObjectExpr)
		wrap := level >= ast.LAssign || (objectTarget && flags&(stmtStart|arrowBodyStart) != 0)
		if wrap {
			p.print("(")
			flags = 0
		}
		if objectTarget {
			p.printExpr(e.Left, ast.LAssign, 0)
		} else {
			p.printExpr(e.Left, ast.LAssign, flags&startFlags)
		}
		p.print(" " + e.Op.String() + " ")
		p.printExpr(e.Right, ast.LAssign-1, flags&forbidIn)
		if wrap {
			p.print(")")
		}

	case *ast.CondExpr:
		wrap := level >= ast.LConditional
		if wrap {
			p.print("(")
			flags = 0
		}
		p.printExpr(e.Test, ast.LConditional, flags&(startFlags|forbidIn))
		p.print(" ? ")
		p.printExpr(e.Yes, ast.LYield, 0)
		p.print(" : ")
		p.printExpr(e.No, ast.LYield, flags&forbidIn)
		if wrap {
			p.print(")")
		}

	case *ast.SequenceExpr:
		wrap := level >= ast.LComma
		if wrap {
			p.print("(")
			flags = 0
		}
		for i, item := range e.Exprs {
			if i > 0 {
				p.print(", ")
				flags &^= startFlags
			}
			p.printExpr(item, ast.LComma, flags&(startFlags|forbidIn))
		}
		if wrap {
			p.print(")")
		}

	case *ast.CallExpr:
		wrap := level >= ast.LNew || flags&forbidCall != 0
		if wrap {
			p.print("(")
			flags = 0
		}
		p.printChainPart(e.Callee, ast.LPostfix, flags&startFlags)
		if e.Optional {
			p.print("?.")
		}
		p.printArgs(e.Args)
		if wrap {
			p.print(")")
		}

	case *ast.NewExpr:
		wrap := level >= ast.LCall
		if wrap {
			p.print("(")
		}
		p.print("new ")
		p.printExpr(e.Callee, ast.LNew, forbidCall)
		p.printArgs(e.Args)
		if wrap {
			p.print(")")
		}

	case *ast.MemberExpr:
		if e.Optional || e.OptionalChain {
			p.printExpr(e.Object, ast.LPostfix, flags&(startFlags|forbidCall))
		} else {
			p.printChainPart(e.Object, ast.LPostfix, flags&(startFlags|forbidCall))
		}
		if !e.Optional && isBareInteger(e.Object) {
			p.print(".")
		}
		if e.Optional {
			p.print("?.")
		} else {
			p.print(".")
		}
		p.addMapping(e.NameLoc, "")
		p.print(e.Name)

	case *ast.IndexExpr:
		if e.Optional || e.OptionalChain {
			p.printExpr(e.Object, ast.LPostfix, flags&(startFlags|forbidCall))
		} else {
			p.printChainPart(e.Object, ast.LPostfix, flags&(startFlags|forbidCall))
		}
		if e.Optional {
			p.print("?.")
		}
		p.print("[")
		p.printExpr(e.Index, ast.LLowest, 0)
		p.print("]")

	case *ast.ImportCallExpr:
		p.print("import(")
		p.printExpr(e.Arg, ast.LComma, 0)
		if e.Options != nil {
			p.print(", ")
			p.printExpr(e.Options, ast.LComma, 0)
		}
		p.print(")")
	}
}

// printChainPart prints the object of a member access or the callee of a
// call that does not continue an optional chain. An optional chain there
// must be parenthesized or the access would become part of the chain.
func (p *Printer) printChainPart(expr ast.Expr, level ast.Level, flags exprFlags) {
	if isOptionalChain(expr) {
		p.print("(")
		p.printExpr(expr, ast.LLowest, 0)
		p.print(")")
		return
	}
	p.printExpr(expr, level, flags)
}

func (p *Printer) printArgs(args []ast.Expr) {
	p.print("(")
	for i, arg := range args {
		if i > 0 {
			p.print(", ")
		}
		p.printExpr(arg, ast.LComma, 0)
	}
	p.print(")")
}

func (p *Printer) printBinary(e *ast.BinaryExpr, level ast.Level, flags exprFlags) {
	opLevel := e.Op.Level()
	wrap := level >= opLevel || (e.Op == ast.BinIn && flags&forbidIn != 0)
	if wrap {
		p.print("(")
		flags = 0
	}

	leftLevel, rightLevel := opLevel-1, opLevel
	if e.Op.IsRightAssociative() {
		leftLevel, rightLevel = opLevel, opLevel-1
	}

	switch e.Op {
	case ast.BinNullish:
		// "??" cannot be mixed with "||" or "&&" without parentheses
		if isLogical(e.Left) {
			leftLevel = ast.LPrefix
		}
		if isLogical(e.Right) {
			rightLevel = ast.LPrefix
		}
	case ast.BinPow:
		// "-a ** b" is a syntax error
		switch e.Left.(type) {
		case *ast.UnaryExpr, *ast.AwaitExpr:
			leftLevel = ast.LPrefix
		}
	}

	p.printExpr(e.Left, leftLevel, flags&(startFlags|forbidIn))
	p.print(" " + e.Op.String() + " ")
	p.printExpr(e.Right, rightLevel, flags&forbidIn)

	if wrap {
		p.print(")")
	}
}

func isLogical(expr ast.Expr) bool {
	b, ok := expr.(*ast.BinaryExpr)
	return ok && (b.Op == ast.BinLogicalOr || b.Op == ast.BinLogicalAnd)
}

func isOptionalChain(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.MemberExpr:
		return e.Optional || e.OptionalChain
	case *ast.IndexExpr:
		return e.Optional || e.OptionalChain
	case *ast.CallExpr:
		return e.Optional || e.OptionalChain
	}
	return false
}

func isSimpleParam(param *ast.Param) bool {
	_, ok := param.Binding.(*ast.IdentBinding)
	return ok && !param.Rest && param.Default == nil
}

// needsSignSpace reports whether printing arg right after op would fuse
// two operators, as in "- -a" or "+ ++a".
func needsSignSpace(op ast.UnaryOp, arg ast.Expr) bool {
	if op != ast.UnaryNeg && op != ast.UnaryPos {
		return false
	}
	switch a := arg.(type) {
	case *ast.UnaryExpr:
		return a.Op == op
	case *ast.UpdateExpr:
		return a.Prefix && ((op == ast.UnaryNeg) == (a.Op == ast.UpdateDec))
	case *ast.NumberLit:
		return strings.HasPrefix(a.Raw, op.String())
	}
	return false
}

// isBareInteger reports whether expr is a decimal integer literal, which
// needs a second dot before a member access ("1..toString()").
func isBareInteger(expr ast.Expr) bool {
	n, ok := expr.(*ast.NumberLit)
	if !ok || n.Raw == "" {
		return false
	}
	if len(n.Raw) > 1 && n.Raw[0] == '0' {
		return false
	}
	for i := 0; i < len(n.Raw); i++ {
		if c := n.Raw[i]; (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}
