// Package parser provides JavaScript module parsing into an AST.
//
// The parser is a recursive-descent parser with precedence climbing for
// binary operators. It works on the full token slice produced by the lexer,
// which makes arbitrary lookahead cheap; arrow functions are recognized by
// scanning to the matching parenthesis and checking for "=>".
//
// Scope analysis is not done here. The scope package crawls the finished
// tree, which lets callers mutate the tree and recompute bindings at will.
package parser

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/HugoDaniel/envonly/internal/ast"
	"github.com/HugoDaniel/envonly/internal/lexer"
	"github.com/HugoDaniel/envonly/internal/sourcemap"
)

// ErrSyntax marks errors caused by malformed source text.
var ErrSyntax = errors.New("syntax error")

// Parser parses JavaScript module source into an AST.
type Parser struct {
	source    string
	tokens    []lexer.Token
	comments  []lexer.Comment
	hashbang  string
	pos       int
	lineIndex *sourcemap.LineIndex // For converting byte offsets to line/column

	module     *ast.Module
	commentPos int // Next comment that may still be attached

	// Grammar context
	noIn         bool // Inside a for-loop head, where "in" ends the expression
	awaitAllowed bool
	yieldAllowed bool

	// Errors
	errors []ParseError
}

// ParseError represents a parsing error.
type ParseError struct {
	Message string
	Pos     int
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// FirstError returns the first error of errs marked with ErrSyntax, or nil.
func FirstError(errs []ParseError) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Mark(errs[0], ErrSyntax)
}

// parseAbort unwinds the parser after the first error.
type parseAbort struct{}

// New creates a new parser for the given source.
func New(source string) *Parser {
	lex := lexer.New(source)
	tokens := lex.Tokenize()

	return &Parser{
		source:       source,
		tokens:       tokens,
		comments:     lex.Comments(),
		hashbang:     lex.Hashbang(),
		lineIndex:    sourcemap.NewLineIndex(source),
		awaitAllowed: true, // Top-level await
	}
}

// Parse parses the source and returns the AST module. Parsing stops at the
// first error; the returned module is then incomplete.
func (p *Parser) Parse() (module *ast.Module, errs []ParseError) {
	p.module = &ast.Module{
		Source:   p.source,
		Hashbang: p.hashbang,
		Comments: make(map[ast.Stmt][]lexer.Comment),
	}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseAbort); !ok {
				panic(r)
			}
			module, errs = p.module, p.errors
		}
	}()

	p.module.Body = p.parseStatementsUntil(func(k lexer.TokenKind) bool { return k == lexer.TokEOF }, true)
	return p.module, p.errors
}

// ----------------------------------------------------------------------------
// Token Helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF, Start: len(p.source), End: len(p.source)}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF, Start: len(p.source), End: len(p.source)}
	}
	return p.tokens[pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind lexer.TokenKind) lexer.Token {
	tok := p.current()
	if tok.Kind != kind {
		if tok.Kind == lexer.TokError {
			p.unexpected()
		}
		p.fail(fmt.Sprintf("expected %q but found %s", kind.String(), p.describe(tok)))
	}
	p.advance()
	return tok
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

// isContextual reports whether the current token is the identifier name.
func (p *Parser) isContextual(name string) bool {
	tok := p.current()
	return tok.Kind == lexer.TokIdent && tok.Value == name
}

func (p *Parser) expectContextual(name string) {
	if !p.isContextual(name) {
		p.fail(fmt.Sprintf("expected %q but found %s", name, p.describe(p.current())))
	}
	p.advance()
}

func (p *Parser) loc() ast.Loc {
	return ast.Loc{Start: int32(p.current().Start)}
}

func locOf(tok lexer.Token) ast.Loc {
	return ast.Loc{Start: int32(tok.Start)}
}

func (p *Parser) describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokEOF:
		return "end of file"
	case lexer.TokIdent, lexer.TokString, lexer.TokNumber, lexer.TokBigInt, lexer.TokPrivateName:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Text(p.source))
	}
	return fmt.Sprintf("%q", tok.Text(p.source))
}

// canInsertSemicolon implements the automatic semicolon insertion rule.
func (p *Parser) canInsertSemicolon() bool {
	tok := p.current()
	return tok.Kind == lexer.TokRBrace || tok.Kind == lexer.TokEOF || tok.NewlineBefore
}

func (p *Parser) consumeSemicolon() {
	if p.match(lexer.TokSemicolon) || p.canInsertSemicolon() {
		return
	}
	p.unexpected()
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

func (p *Parser) fail(msg string) {
	p.failAt(p.current().Start, msg)
}

func (p *Parser) failAt(pos int, msg string) {
	line, col := p.lineIndex.ByteOffsetToLineColumn(pos)
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Pos:     pos,
		Line:    line + 1, // Convert to 1-based
		Column:  col + 1,  // Convert to 1-based
	})
	panic(parseAbort{})
}

func (p *Parser) unexpected() {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokError:
		p.fail(tok.Value)
	case lexer.TokEOF:
		p.fail("unexpected end of file")
	}
	p.fail("unexpected " + p.describe(tok))
}

// ----------------------------------------------------------------------------
// Statement Lists and Comments
// ----------------------------------------------------------------------------

func (p *Parser) parseStatementsUntil(stop func(lexer.TokenKind) bool, topLevel bool) []ast.Stmt {
	var stmts []ast.Stmt
	for !stop(p.current().Kind) {
		if p.current().Kind == lexer.TokEOF || p.current().Kind == lexer.TokError {
			p.unexpected()
		}
		comments := p.leadingComments()
		var stmt ast.Stmt
		if topLevel {
			stmt = p.parseModuleItem()
		} else {
			stmt = p.parseStatement()
		}
		if len(comments) > 0 {
			p.module.Comments[stmt] = comments
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// leadingComments returns the comments between the previous token and the
// statement starting at the current token.
func (p *Parser) leadingComments() []lexer.Comment {
	prevEnd := 0
	if p.pos > 0 {
		prevEnd = p.tokens[p.pos-1].End
	}
	start := p.current().Start
	for p.commentPos < len(p.comments) && p.comments[p.commentPos].Start < prevEnd {
		p.commentPos++
	}
	first := p.commentPos
	for p.commentPos < len(p.comments) && p.comments[p.commentPos].End <= start {
		p.commentPos++
	}
	return p.comments[first:p.commentPos]
}

// ----------------------------------------------------------------------------
// Module Items
// ----------------------------------------------------------------------------

func (p *Parser) parseModuleItem() ast.Stmt {
	switch p.current().Kind {
	case lexer.TokImport:
		if next := p.peek(1).Kind; next != lexer.TokLParen && next != lexer.TokDot {
			return p.parseImportDecl()
		}
	case lexer.TokExport:
		return p.parseExportDecl()
	}
	return p.parseStatement()
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	decl := &ast.ImportDecl{Loc: p.loc()}
	p.advance() // import

	// Side-effect import
	if p.current().Kind == lexer.TokString {
		decl.Source = p.parseStringLit()
		decl.Attributes = p.parseImportAttributes()
		p.consumeSemicolon()
		return decl
	}

	if p.current().Kind == lexer.TokIdent {
		tok := p.current()
		decl.Specs = append(decl.Specs, &ast.ImportSpec{
			Loc:   locOf(tok),
			Kind:  ast.ImportDefault,
			Local: p.parseBindingIdent(),
		})
		if p.match(lexer.TokComma) {
			p.parseImportClause(decl)
		}
	} else {
		p.parseImportClause(decl)
	}

	p.expectContextual("from")
	decl.Source = p.parseStringLit()
	decl.Attributes = p.parseImportAttributes()
	p.consumeSemicolon()
	return decl
}

// parseImportClause parses "* as ns" or "{ ... }".
func (p *Parser) parseImportClause(decl *ast.ImportDecl) {
	switch p.current().Kind {
	case lexer.TokStar:
		loc := p.loc()
		p.advance()
		p.expectContextual("as")
		decl.Specs = append(decl.Specs, &ast.ImportSpec{
			Loc:   loc,
			Kind:  ast.ImportNamespace,
			Local: p.parseBindingIdent(),
		})
	case lexer.TokLBrace:
		p.parseNamedImports(decl)
	default:
		p.unexpected()
	}
}

func (p *Parser) parseNamedImports(decl *ast.ImportDecl) {
	decl.HadBraces = true
	p.expect(lexer.TokLBrace)
	for p.current().Kind != lexer.TokRBrace {
		tok := p.current()
		spec := &ast.ImportSpec{Loc: locOf(tok), Kind: ast.ImportNamed}
		if tok.Kind == lexer.TokString {
			p.advance()
			spec.Imported = tok.Value
			spec.ImportedIsString = true
			p.expectContextual("as")
			spec.Local = p.parseBindingIdent()
		} else {
			spec.Imported = p.parseIdentifierName()
			if p.isContextual("as") {
				p.advance()
				spec.Local = p.parseBindingIdent()
			} else {
				if tok.Kind != lexer.TokIdent {
					p.failAt(tok.Start, fmt.Sprintf("unexpected reserved word %q", tok.Value))
				}
				spec.Local = &ast.IdentBinding{Loc: locOf(tok), Name: tok.Value, ID: p.module.NewID()}
			}
		}
		decl.Specs = append(decl.Specs, spec)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)
}

// parseImportAttributes parses an optional "with { type: 'json' }" clause.
func (p *Parser) parseImportAttributes() []*ast.ImportAttribute {
	tok := p.current()
	isAssert := tok.Kind == lexer.TokIdent && tok.Value == "assert" && !tok.NewlineBefore
	if tok.Kind != lexer.TokWith && !isAssert {
		return nil
	}
	p.advance()
	p.expect(lexer.TokLBrace)
	attrs := []*ast.ImportAttribute{}
	for p.current().Kind != lexer.TokRBrace {
		key, _ := p.parseModuleExportName()
		p.expect(lexer.TokColon)
		attrs = append(attrs, &ast.ImportAttribute{Key: key, Value: p.parseStringLit()})
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)
	return attrs
}

func (p *Parser) parseExportDecl() ast.Stmt {
	loc := p.loc()
	p.advance() // export

	tok := p.current()
	switch tok.Kind {
	case lexer.TokStar:
		p.advance()
		decl := &ast.ExportAllDecl{Loc: loc}
		if p.isContextual("as") {
			p.advance()
			decl.Alias, decl.AliasIsString = p.parseModuleExportName()
		}
		p.expectContextual("from")
		decl.Source = p.parseStringLit()
		decl.Attributes = p.parseImportAttributes()
		p.consumeSemicolon()
		return decl

	case lexer.TokLBrace:
		return p.parseExportClause(loc)

	case lexer.TokDefault:
		p.advance()
		decl := &ast.ExportDefaultDecl{Loc: loc}
		next := p.current()
		switch {
		case next.Kind == lexer.TokFunction:
			decl.Decl = &ast.FunctionDecl{Loc: locOf(next), Fn: p.parseFunction(locOf(next), false, false)}
		case p.isAsyncFunction():
			p.advance()
			decl.Decl = &ast.FunctionDecl{Loc: locOf(next), Fn: p.parseFunction(locOf(next), true, false)}
		case next.Kind == lexer.TokClass:
			decl.Decl = &ast.ClassDecl{Loc: locOf(next), Class: p.parseClass(false)}
		default:
			decl.Expr = p.parseAssign()
			p.consumeSemicolon()
		}
		return decl

	case lexer.TokVar:
		d := p.parseVarDecl(ast.VarVar)
		p.consumeSemicolon()
		return &ast.ExportNamedDecl{Loc: loc, Decl: d}

	case lexer.TokConst:
		d := p.parseVarDecl(ast.VarConst)
		p.consumeSemicolon()
		return &ast.ExportNamedDecl{Loc: loc, Decl: d}

	case lexer.TokFunction:
		fn := p.parseFunction(locOf(tok), false, true)
		return &ast.ExportNamedDecl{Loc: loc, Decl: &ast.FunctionDecl{Loc: locOf(tok), Fn: fn}}

	case lexer.TokClass:
		return &ast.ExportNamedDecl{Loc: loc, Decl: &ast.ClassDecl{Loc: locOf(tok), Class: p.parseClass(true)}}

	case lexer.TokIdent:
		if p.isLetDecl() {
			d := p.parseVarDecl(ast.VarLet)
			p.consumeSemicolon()
			return &ast.ExportNamedDecl{Loc: loc, Decl: d}
		}
		if p.isAsyncFunction() {
			p.advance()
			fn := p.parseFunction(locOf(tok), true, true)
			return &ast.ExportNamedDecl{Loc: loc, Decl: &ast.FunctionDecl{Loc: locOf(tok), Fn: fn}}
		}
	}

	p.unexpected()
	return nil
}

// parseExportClause parses "export { a, b as c } [from 'x']".
func (p *Parser) parseExportClause(loc ast.Loc) *ast.ExportNamedDecl {
	decl := &ast.ExportNamedDecl{Loc: loc, Specs: []*ast.ExportSpec{}}
	var localTokens []lexer.Token

	p.expect(lexer.TokLBrace)
	for p.current().Kind != lexer.TokRBrace {
		tok := p.current()
		spec := &ast.ExportSpec{Loc: locOf(tok)}
		spec.LocalName, spec.LocalIsString = p.parseModuleExportName()
		spec.Exported, spec.ExportedIsString = spec.LocalName, spec.LocalIsString
		if p.isContextual("as") {
			p.advance()
			spec.Exported, spec.ExportedIsString = p.parseModuleExportName()
		}
		decl.Specs = append(decl.Specs, spec)
		localTokens = append(localTokens, tok)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)

	if p.isContextual("from") {
		p.advance()
		decl.Source = p.parseStringLit()
		decl.Attributes = p.parseImportAttributes()
	} else {
		// Local exports reference bindings of this module
		for i, spec := range decl.Specs {
			tok := localTokens[i]
			if tok.Kind != lexer.TokIdent {
				p.failAt(tok.Start, fmt.Sprintf("cannot export %s without a source", p.describe(tok)))
			}
			spec.Local = &ast.IdentExpr{Loc: locOf(tok), Name: spec.LocalName, ID: p.module.NewID()}
		}
	}
	p.consumeSemicolon()
	return decl
}

// parseModuleExportName parses an identifier name or a string literal.
func (p *Parser) parseModuleExportName() (string, bool) {
	tok := p.current()
	if tok.Kind == lexer.TokString {
		p.advance()
		return tok.Value, true
	}
	return p.parseIdentifierName(), false
}

// parseIdentifierName accepts identifiers and reserved words.
func (p *Parser) parseIdentifierName() string {
	tok := p.current()
	if tok.Kind != lexer.TokIdent && !tok.Kind.IsKeyword() {
		p.unexpected()
	}
	p.advance()
	return tok.Value
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseStatement() ast.Stmt {
	tok := p.current()
	loc := locOf(tok)

	switch tok.Kind {
	case lexer.TokLBrace:
		return p.parseBlock()

	case lexer.TokSemicolon:
		p.advance()
		return &ast.EmptyStmt{Loc: loc}

	case lexer.TokVar:
		d := p.parseVarDecl(ast.VarVar)
		p.consumeSemicolon()
		return d

	case lexer.TokConst:
		d := p.parseVarDecl(ast.VarConst)
		p.consumeSemicolon()
		return d

	case lexer.TokFunction:
		return &ast.FunctionDecl{Loc: loc, Fn: p.parseFunction(loc, false, true)}

	case lexer.TokClass:
		return &ast.ClassDecl{Loc: loc, Class: p.parseClass(true)}

	case lexer.TokIf:
		return p.parseIfStmt()

	case lexer.TokFor:
		return p.parseForStmt()

	case lexer.TokWhile:
		p.advance()
		test := p.parseParenExpr()
		return &ast.WhileStmt{Loc: loc, Test: test, Body: p.parseStatement()}

	case lexer.TokDo:
		p.advance()
		body := p.parseStatement()
		p.expect(lexer.TokWhile)
		test := p.parseParenExpr()
		p.match(lexer.TokSemicolon)
		return &ast.DoWhileStmt{Loc: loc, Body: body, Test: test}

	case lexer.TokReturn:
		p.advance()
		stmt := &ast.ReturnStmt{Loc: loc}
		if p.current().Kind != lexer.TokSemicolon && !p.canInsertSemicolon() {
			stmt.Arg = p.parseExpr()
		}
		p.consumeSemicolon()
		return stmt

	case lexer.TokThrow:
		p.advance()
		if p.current().NewlineBefore {
			p.fail("illegal newline after throw")
		}
		stmt := &ast.ThrowStmt{Loc: loc, Arg: p.parseExpr()}
		p.consumeSemicolon()
		return stmt

	case lexer.TokBreak, lexer.TokContinue:
		p.advance()
		label := ""
		if next := p.current(); next.Kind == lexer.TokIdent && !next.NewlineBefore {
			label = next.Value
			p.advance()
		}
		p.consumeSemicolon()
		if tok.Kind == lexer.TokBreak {
			return &ast.BreakStmt{Loc: loc, Label: label}
		}
		return &ast.ContinueStmt{Loc: loc, Label: label}

	case lexer.TokTry:
		return p.parseTryStmt()

	case lexer.TokSwitch:
		return p.parseSwitchStmt()

	case lexer.TokDebugger:
		p.advance()
		p.consumeSemicolon()
		return &ast.DebuggerStmt{Loc: loc}

	case lexer.TokWith:
		p.fail("'with' is not allowed in modules")

	case lexer.TokImport, lexer.TokExport:
		if tok.Kind == lexer.TokExport || (p.peek(1).Kind != lexer.TokLParen && p.peek(1).Kind != lexer.TokDot) {
			p.fail(fmt.Sprintf("'%s' may only appear at the top level", tok.Kind))
		}

	case lexer.TokIdent:
		switch {
		case p.isLetDecl():
			d := p.parseVarDecl(ast.VarLet)
			p.consumeSemicolon()
			return d
		case p.isAsyncFunction():
			p.advance()
			return &ast.FunctionDecl{Loc: loc, Fn: p.parseFunction(loc, true, true)}
		case p.peek(1).Kind == lexer.TokColon:
			p.advance()
			p.advance()
			return &ast.LabeledStmt{Loc: loc, Label: tok.Value, Body: p.parseStatement()}
		}
	}

	expr := p.parseExpr()
	p.consumeSemicolon()
	return &ast.ExprStmt{Loc: loc, Expr: expr}
}

func (p *Parser) isLetDecl() bool {
	if !p.isContextual("let") {
		return false
	}
	switch p.peek(1).Kind {
	case lexer.TokIdent, lexer.TokLBracket, lexer.TokLBrace:
		return true
	}
	return false
}

func (p *Parser) isAsyncFunction() bool {
	next := p.peek(1)
	return p.isContextual("async") && next.Kind == lexer.TokFunction && !next.NewlineBefore
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	block := &ast.BlockStmt{Loc: p.loc()}
	p.expect(lexer.TokLBrace)
	block.Body = p.parseStatementsUntil(isRBrace, false)
	p.expect(lexer.TokRBrace)
	return block
}

func isRBrace(k lexer.TokenKind) bool {
	return k == lexer.TokRBrace
}

func (p *Parser) parseParenExpr() ast.Expr {
	p.expect(lexer.TokLParen)
	saved := p.noIn
	p.noIn = false
	expr := p.parseExpr()
	p.noIn = saved
	p.expect(lexer.TokRParen)
	return expr
}

func (p *Parser) parseVarDecl(kind ast.VarKind) *ast.VarDecl {
	decl := &ast.VarDecl{Loc: p.loc(), Kind: kind}
	p.advance() // var, let, or const
	for {
		d := &ast.Declarator{Loc: p.loc(), Binding: p.parseBinding()}
		if p.match(lexer.TokEq) {
			d.Init = p.parseAssign()
		}
		decl.Decls = append(decl.Decls, d)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	return decl
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	stmt := &ast.IfStmt{Loc: p.loc()}
	p.advance() // if
	stmt.Test = p.parseParenExpr()
	stmt.Yes = p.parseStatement()
	if p.match(lexer.TokElse) {
		stmt.No = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseForStmt() ast.Stmt {
	loc := p.loc()
	p.advance() // for

	await := false
	if p.isContextual("await") {
		p.advance()
		await = true
	}
	p.expect(lexer.TokLParen)

	var init ast.Stmt
	saved := p.noIn
	p.noIn = true
	tok := p.current()
	switch {
	case tok.Kind == lexer.TokSemicolon:
	case tok.Kind == lexer.TokVar:
		init = p.parseVarDecl(ast.VarVar)
	case tok.Kind == lexer.TokConst:
		init = p.parseVarDecl(ast.VarConst)
	case p.isLetDecl():
		init = p.parseVarDecl(ast.VarLet)
	default:
		init = &ast.ExprStmt{Loc: locOf(tok), Expr: p.parseExpr()}
	}
	p.noIn = saved

	if init != nil && (p.current().Kind == lexer.TokIn || p.isContextual("of")) {
		isOf := p.current().Kind != lexer.TokIn
		switch left := init.(type) {
		case *ast.VarDecl:
			if len(left.Decls) != 1 {
				p.failAt(int(left.Loc.Start), "only one variable may be declared in a for-in or for-of loop")
			}
		case *ast.ExprStmt:
			p.checkAssignTarget(left.Expr, ast.AssignSimple)
		}
		p.advance()

		var right ast.Expr
		if isOf {
			right = p.parseAssign()
		} else {
			right = p.parseExpr()
		}
		p.expect(lexer.TokRParen)
		body := p.parseStatement()
		if isOf {
			return &ast.ForOfStmt{Loc: loc, Await: await, Left: init, Right: right, Body: body}
		}
		return &ast.ForInStmt{Loc: loc, Left: init, Right: right, Body: body}
	}

	stmt := &ast.ForStmt{Loc: loc, Init: init}
	p.expect(lexer.TokSemicolon)
	if p.current().Kind != lexer.TokSemicolon {
		stmt.Test = p.parseExpr()
	}
	p.expect(lexer.TokSemicolon)
	if p.current().Kind != lexer.TokRParen {
		stmt.Update = p.parseExpr()
	}
	p.expect(lexer.TokRParen)
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseTryStmt() *ast.TryStmt {
	stmt := &ast.TryStmt{Loc: p.loc()}
	p.advance() // try
	stmt.Block = p.parseBlock()
	if p.match(lexer.TokCatch) {
		if p.match(lexer.TokLParen) {
			stmt.CatchParam = p.parseBinding()
			p.expect(lexer.TokRParen)
		}
		stmt.Catch = p.parseBlock()
	}
	if p.match(lexer.TokFinally) {
		stmt.Finally = p.parseBlock()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.fail("missing catch or finally after try")
	}
	return stmt
}

func (p *Parser) parseSwitchStmt() *ast.SwitchStmt {
	stmt := &ast.SwitchStmt{Loc: p.loc()}
	p.advance() // switch
	stmt.Disc = p.parseParenExpr()
	p.expect(lexer.TokLBrace)
	for p.current().Kind != lexer.TokRBrace {
		c := &ast.SwitchCase{Loc: p.loc()}
		if p.match(lexer.TokCase) {
			c.Test = p.parseExpr()
		} else {
			p.expect(lexer.TokDefault)
		}
		p.expect(lexer.TokColon)
		c.Body = p.parseStatementsUntil(func(k lexer.TokenKind) bool {
			return k == lexer.TokCase || k == lexer.TokDefault || k == lexer.TokRBrace
		}, false)
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect(lexer.TokRBrace)
	return stmt
}

// ----------------------------------------------------------------------------
// Bindings
// ----------------------------------------------------------------------------

func (p *Parser) parseBinding() ast.Binding {
	switch p.current().Kind {
	case lexer.TokIdent:
		return p.parseBindingIdent()
	case lexer.TokLBrace:
		return p.parseObjectBinding()
	case lexer.TokLBracket:
		return p.parseArrayBinding()
	}
	p.unexpected()
	return nil
}

func (p *Parser) parseBindingIdent() *ast.IdentBinding {
	tok := p.current()
	if tok.Kind != lexer.TokIdent {
		p.unexpected()
	}
	p.advance()
	return &ast.IdentBinding{Loc: locOf(tok), Name: tok.Value, ID: p.module.NewID()}
}

func (p *Parser) parseObjectBinding() *ast.ObjectBinding {
	binding := &ast.ObjectBinding{Loc: p.loc()}
	p.advance() // {
	for p.current().Kind != lexer.TokRBrace {
		prop := &ast.BindingProp{Loc: p.loc()}
		if p.match(lexer.TokEllipsis) {
			prop.Rest = true
			prop.Value = p.parseBindingIdent()
		} else {
			keyTok := p.current()
			prop.Key, prop.Computed = p.parsePropertyKey()
			if keyTok.Kind == lexer.TokIdent && !prop.Computed && p.current().Kind != lexer.TokColon {
				prop.Shorthand = true
				prop.Value = &ast.IdentBinding{Loc: locOf(keyTok), Name: keyTok.Value, ID: p.module.NewID()}
			} else {
				p.expect(lexer.TokColon)
				prop.Value = p.parseBinding()
			}
			if p.match(lexer.TokEq) {
				prop.Default = p.parseAssignAllowIn()
			}
		}
		binding.Props = append(binding.Props, prop)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)
	return binding
}

func (p *Parser) parseArrayBinding() *ast.ArrayBinding {
	binding := &ast.ArrayBinding{Loc: p.loc()}
	p.advance() // [
	for p.current().Kind != lexer.TokRBracket {
		if p.match(lexer.TokComma) {
			binding.Items = append(binding.Items, nil)
			continue
		}
		item := &ast.BindingItem{}
		if p.match(lexer.TokEllipsis) {
			item.Rest = true
			item.Value = p.parseBinding()
		} else {
			item.Value = p.parseBinding()
			if p.match(lexer.TokEq) {
				item.Default = p.parseAssignAllowIn()
			}
		}
		binding.Items = append(binding.Items, item)
		if p.current().Kind != lexer.TokRBracket {
			p.expect(lexer.TokComma)
		}
	}
	p.expect(lexer.TokRBracket)
	return binding
}

// parsePropertyKey parses an object, class, or pattern key.
func (p *Parser) parsePropertyKey() (ast.Expr, bool) {
	tok := p.current()
	loc := locOf(tok)
	switch tok.Kind {
	case lexer.TokString:
		return p.parseStringLit(), false
	case lexer.TokNumber:
		p.advance()
		return &ast.NumberLit{Loc: loc, Raw: tok.Value}, false
	case lexer.TokBigInt:
		p.advance()
		return &ast.BigIntLit{Loc: loc, Raw: tok.Value}, false
	case lexer.TokPrivateName:
		p.advance()
		return &ast.PrivateName{Loc: loc, Name: tok.Value}, false
	case lexer.TokLBracket:
		p.advance()
		key := p.parseAssignAllowIn()
		p.expect(lexer.TokRBracket)
		return key, true
	}
	if tok.Kind == lexer.TokIdent || tok.Kind.IsKeyword() {
		p.advance()
		return &ast.IdentExpr{Loc: loc, Name: tok.Value}, false
	}
	p.unexpected()
	return nil, false
}

// ----------------------------------------------------------------------------
// Functions and Classes
// ----------------------------------------------------------------------------

// parseFunction parses from the "function" keyword; the caller has already
// consumed "async".
func (p *Parser) parseFunction(loc ast.Loc, async bool, nameRequired bool) *ast.Function {
	p.expect(lexer.TokFunction)
	fn := &ast.Function{Loc: loc, Async: async}
	fn.Generator = p.match(lexer.TokStar)
	if p.current().Kind == lexer.TokIdent {
		fn.Name = p.parseBindingIdent()
	} else if nameRequired {
		p.fail("function name expected")
	}
	p.parseFunctionRest(fn)
	return fn
}

// parseFunctionRest parses parameters and body.
func (p *Parser) parseFunctionRest(fn *ast.Function) {
	savedAwait, savedYield, savedIn := p.awaitAllowed, p.yieldAllowed, p.noIn
	p.awaitAllowed, p.yieldAllowed, p.noIn = fn.Async, fn.Generator, false

	fn.Params = p.parseParams()
	fn.Body, fn.End = p.parseFunctionBody()

	p.awaitAllowed, p.yieldAllowed, p.noIn = savedAwait, savedYield, savedIn
}

func (p *Parser) parseParams() []*ast.Param {
	p.expect(lexer.TokLParen)
	var params []*ast.Param
	for p.current().Kind != lexer.TokRParen {
		param := &ast.Param{}
		if p.match(lexer.TokEllipsis) {
			param.Rest = true
		}
		param.Binding = p.parseBinding()
		if !param.Rest && p.match(lexer.TokEq) {
			param.Default = p.parseAssign()
		}
		params = append(params, param)
		if param.Rest || !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRParen)
	return params
}

func (p *Parser) parseFunctionBody() ([]ast.Stmt, int32) {
	p.expect(lexer.TokLBrace)
	body := p.parseStatementsUntil(isRBrace, false)
	end := p.current().End
	p.expect(lexer.TokRBrace)
	return body, int32(end)
}

func (p *Parser) parseClass(nameRequired bool) *ast.Class {
	class := &ast.Class{Loc: p.loc()}
	p.expect(lexer.TokClass)
	if p.current().Kind == lexer.TokIdent {
		class.Name = p.parseBindingIdent()
	} else if nameRequired {
		p.fail("class name expected")
	}
	if p.match(lexer.TokExtends) {
		class.Extends = p.parseLeftHandSide()
	}
	p.expect(lexer.TokLBrace)
	for p.current().Kind != lexer.TokRBrace {
		if p.match(lexer.TokSemicolon) {
			continue
		}
		class.Members = append(class.Members, p.parseProperty(true))
	}
	p.expect(lexer.TokRBrace)
	return class
}

// isModifier reports whether the current identifier is a member modifier
// (static, async, get, set) rather than the member's own name.
func (p *Parser) isModifier(name string) bool {
	if !p.isContextual(name) {
		return false
	}
	next := p.peek(1)
	if name == "async" && next.NewlineBefore {
		return false
	}
	switch next.Kind {
	case lexer.TokIdent, lexer.TokString, lexer.TokNumber, lexer.TokBigInt,
		lexer.TokPrivateName, lexer.TokLBracket:
		return true
	case lexer.TokStar:
		return name == "async" || name == "static"
	case lexer.TokLBrace:
		return name == "static"
	}
	return next.Kind.IsKeyword()
}

// parseProperty parses an object literal member or a class member.
func (p *Parser) parseProperty(inClass bool) *ast.Property {
	prop := &ast.Property{Loc: p.loc()}

	if !inClass && p.match(lexer.TokEllipsis) {
		prop.Kind = ast.PropSpread
		prop.Value = p.parseAssignAllowIn()
		return prop
	}

	if inClass && p.isModifier("static") {
		p.advance()
		prop.Static = true
		if p.current().Kind == lexer.TokLBrace {
			prop.Kind = ast.PropStaticBlock
			fn := &ast.Function{Loc: p.loc()}
			savedAwait, savedYield := p.awaitAllowed, p.yieldAllowed
			p.awaitAllowed, p.yieldAllowed = false, false
			fn.Body, fn.End = p.parseFunctionBody()
			p.awaitAllowed, p.yieldAllowed = savedAwait, savedYield
			prop.Value = &ast.FunctionExpr{Loc: fn.Loc, Fn: fn}
			return prop
		}
	}

	kind := ast.PropInit
	async, generator := false, false
	if p.isModifier("async") {
		p.advance()
		async = true
	}
	if p.match(lexer.TokStar) {
		generator = true
	}
	if !async && !generator {
		if p.isModifier("get") {
			p.advance()
			kind = ast.PropGet
		} else if p.isModifier("set") {
			p.advance()
			kind = ast.PropSet
		}
	}

	keyTok := p.current()
	prop.Key, prop.Computed = p.parsePropertyKey()

	if p.current().Kind == lexer.TokLParen || kind != ast.PropInit || async || generator {
		if kind == ast.PropInit {
			kind = ast.PropMethod
		}
		prop.Kind = kind
		fn := &ast.Function{Loc: locOf(keyTok), Async: async, Generator: generator}
		p.parseFunctionRest(fn)
		prop.Value = &ast.FunctionExpr{Loc: fn.Loc, Fn: fn}
		return prop
	}

	if inClass {
		prop.Kind = ast.PropField
		if p.match(lexer.TokEq) {
			savedAwait, savedYield := p.awaitAllowed, p.yieldAllowed
			p.awaitAllowed, p.yieldAllowed = false, false
			prop.Value = p.parseAssignAllowIn()
			p.awaitAllowed, p.yieldAllowed = savedAwait, savedYield
		}
		p.consumeSemicolon()
		return prop
	}

	prop.Kind = ast.PropInit
	if p.match(lexer.TokColon) {
		prop.Value = p.parseAssignAllowIn()
		return prop
	}

	// Shorthand property, possibly with a default when this object literal
	// is really a destructuring assignment target.
	if keyTok.Kind != lexer.TokIdent || prop.Computed {
		p.unexpected()
	}
	prop.Shorthand = true
	ident := &ast.IdentExpr{Loc: locOf(keyTok), Name: keyTok.Value, ID: p.module.NewID()}
	if p.match(lexer.TokEq) {
		prop.Value = &ast.AssignExpr{Loc: ident.Loc, Op: ast.AssignSimple, Left: ident, Right: p.parseAssignAllowIn()}
		return prop
	}
	prop.Value = ident
	return prop
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (p *Parser) parseExpr() ast.Expr {
	expr := p.parseAssign()
	if p.current().Kind != lexer.TokComma {
		return expr
	}
	seq := &ast.SequenceExpr{Loc: expr.Start(), Exprs: []ast.Expr{expr}}
	for p.match(lexer.TokComma) {
		seq.Exprs = append(seq.Exprs, p.parseAssign())
	}
	return seq
}

func (p *Parser) parseAssignAllowIn() ast.Expr {
	saved := p.noIn
	p.noIn = false
	expr := p.parseAssign()
	p.noIn = saved
	return expr
}

func (p *Parser) parseAssign() ast.Expr {
	if arrow := p.tryParseArrow(); arrow != nil {
		return arrow
	}
	if p.yieldAllowed && p.isContextual("yield") {
		return p.parseYield()
	}

	left := p.parseConditional()
	if op, ok := assignOps[p.current().Kind]; ok {
		p.checkAssignTarget(left, op)
		p.advance()
		right := p.parseAssign()
		return &ast.AssignExpr{Loc: left.Start(), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) checkAssignTarget(expr ast.Expr, op ast.AssignOp) {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		return
	case *ast.MemberExpr:
		if !e.Optional && !e.OptionalChain {
			return
		}
	case *ast.IndexExpr:
		if !e.Optional && !e.OptionalChain {
			return
		}
	case *ast.ObjectExpr, *ast.ArrayExpr:
		if op == ast.AssignSimple {
			return
		}
	}
	p.failAt(int(expr.Start().Start), "invalid assignment target")
}

// tryParseArrow parses an arrow function if one starts at the current token.
func (p *Parser) tryParseArrow() ast.Expr {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokLParen:
		if p.arrowAfterParen(p.pos) {
			return p.parseArrow(locOf(tok), false)
		}
	case lexer.TokIdent:
		next := p.peek(1)
		if next.Kind == lexer.TokArrow && !next.NewlineBefore {
			return p.parseArrow(locOf(tok), false)
		}
		if tok.Value != "async" || next.NewlineBefore {
			return nil
		}
		if next.Kind == lexer.TokIdent {
			if after := p.peek(2); after.Kind == lexer.TokArrow && !after.NewlineBefore {
				p.advance()
				return p.parseArrow(locOf(tok), true)
			}
		} else if next.Kind == lexer.TokLParen && p.arrowAfterParen(p.pos+1) {
			p.advance()
			return p.parseArrow(locOf(tok), true)
		}
	}
	return nil
}

// arrowAfterParen reports whether the parenthesis at token index start is
// closed by a parenthesis directly followed by "=>".
func (p *Parser) arrowAfterParen(start int) bool {
	depth := 0
	for i := start; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case lexer.TokLParen, lexer.TokLBracket, lexer.TokLBrace, lexer.TokTemplateHead:
			depth++
		case lexer.TokRParen, lexer.TokRBracket, lexer.TokRBrace, lexer.TokTemplateTail:
			depth--
			if depth == 0 {
				if p.tokens[i].Kind != lexer.TokRParen || i+1 >= len(p.tokens) {
					return false
				}
				next := p.tokens[i+1]
				return next.Kind == lexer.TokArrow && !next.NewlineBefore
			}
		case lexer.TokEOF, lexer.TokError:
			return false
		}
	}
	return false
}

func (p *Parser) parseArrow(loc ast.Loc, async bool) *ast.ArrowExpr {
	arrow := &ast.ArrowExpr{Loc: loc, Async: async}

	savedAwait, savedYield, savedIn := p.awaitAllowed, p.yieldAllowed, p.noIn
	p.awaitAllowed, p.yieldAllowed, p.noIn = async, false, false

	if p.current().Kind == lexer.TokIdent {
		arrow.Params = []*ast.Param{{Binding: p.parseBindingIdent()}}
	} else {
		arrow.Params = p.parseParams()
	}
	p.expect(lexer.TokArrow)

	if p.current().Kind == lexer.TokLBrace {
		arrow.Body, arrow.End = p.parseFunctionBody()
	} else {
		p.noIn = savedIn
		arrow.IsExprBody = true
		arrow.ExprBody = p.parseAssign()
		arrow.End = int32(p.tokens[p.pos-1].End)
	}

	p.awaitAllowed, p.yieldAllowed, p.noIn = savedAwait, savedYield, savedIn
	return arrow
}

func (p *Parser) parseYield() ast.Expr {
	expr := &ast.YieldExpr{Loc: p.loc()}
	p.advance() // yield
	if p.current().NewlineBefore {
		return expr
	}
	if p.match(lexer.TokStar) {
		expr.Delegate = true
		expr.Arg = p.parseAssign()
		return expr
	}
	switch p.current().Kind {
	case lexer.TokRParen, lexer.TokRBracket, lexer.TokRBrace, lexer.TokComma,
		lexer.TokSemicolon, lexer.TokColon, lexer.TokEOF,
		lexer.TokTemplateMiddle, lexer.TokTemplateTail:
		return expr
	}
	expr.Arg = p.parseAssign()
	return expr
}

func (p *Parser) parseConditional() ast.Expr {
	test := p.parseBinary(ast.LConditional)
	if p.current().Kind != lexer.TokQuestion {
		return test
	}
	p.advance()
	yes := p.parseAssignAllowIn()
	p.expect(lexer.TokColon)
	no := p.parseAssign()
	return &ast.CondExpr{Loc: test.Start(), Test: test, Yes: yes, No: no}
}

// parseBinary parses binary operators binding tighter than level.
func (p *Parser) parseBinary(level ast.Level) ast.Expr {
	left := p.parseUnary()
	for {
		op, ok := binaryOps[p.current().Kind]
		if !ok || (op == ast.BinIn && p.noIn) {
			return left
		}
		opLevel := op.Level()
		if opLevel <= level {
			return left
		}
		p.advance()
		next := opLevel
		if op.IsRightAssociative() {
			next--
		}
		right := p.parseBinary(next)
		left = &ast.BinaryExpr{Loc: left.Start(), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.current()
	loc := locOf(tok)

	if op, ok := unaryOps[tok.Kind]; ok {
		p.advance()
		return &ast.UnaryExpr{Loc: loc, Op: op, Arg: p.parseUnary()}
	}

	switch tok.Kind {
	case lexer.TokPlusPlus, lexer.TokMinusMinus:
		p.advance()
		arg := p.parseUnary()
		p.checkUpdateTarget(arg)
		return &ast.UpdateExpr{Loc: loc, Op: updateOp(tok.Kind), Prefix: true, Arg: arg}
	case lexer.TokIdent:
		if tok.Value == "await" && p.awaitAllowed {
			p.advance()
			return &ast.AwaitExpr{Loc: loc, Arg: p.parseUnary()}
		}
	}

	expr := p.parseLeftHandSide()
	if next := p.current(); (next.Kind == lexer.TokPlusPlus || next.Kind == lexer.TokMinusMinus) && !next.NewlineBefore {
		p.checkUpdateTarget(expr)
		p.advance()
		return &ast.UpdateExpr{Loc: expr.Start(), Op: updateOp(next.Kind), Arg: expr}
	}
	return expr
}

func updateOp(kind lexer.TokenKind) ast.UpdateOp {
	if kind == lexer.TokMinusMinus {
		return ast.UpdateDec
	}
	return ast.UpdateInc
}

func (p *Parser) checkUpdateTarget(expr ast.Expr) {
	switch expr.(type) {
	case *ast.IdentExpr, *ast.MemberExpr, *ast.IndexExpr:
		return
	}
	p.failAt(int(expr.Start().Start), "invalid update target")
}

func (p *Parser) parseLeftHandSide() ast.Expr {
	var expr ast.Expr
	if p.current().Kind == lexer.TokNew {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}
	return p.parseCallTail(expr, true)
}

// parseCallTail parses member accesses, calls, and tagged templates
// following expr. Calls are not consumed when allowCall is false, which is
// how the callee of a "new" expression ends.
func (p *Parser) parseCallTail(expr ast.Expr, allowCall bool) ast.Expr {
	inChain := false
	for {
		switch p.current().Kind {
		case lexer.TokDot:
			p.advance()
			expr = p.parseMemberName(expr, false, inChain)

		case lexer.TokQuestionDot:
			if !allowCall {
				p.fail("optional chain is not allowed in a new expression")
			}
			p.advance()
			inChain = true
			switch p.current().Kind {
			case lexer.TokLParen:
				expr = &ast.CallExpr{Loc: expr.Start(), Callee: expr, Args: p.parseArgs(), Optional: true, OptionalChain: true}
			case lexer.TokLBracket:
				expr = p.parseIndex(expr, true)
			default:
				expr = p.parseMemberName(expr, true, true)
			}

		case lexer.TokLBracket:
			expr = p.parseIndex(expr, false)
			if inChain {
				expr.(*ast.IndexExpr).OptionalChain = true
			}

		case lexer.TokLParen:
			if !allowCall {
				return expr
			}
			expr = &ast.CallExpr{Loc: expr.Start(), Callee: expr, Args: p.parseArgs(), OptionalChain: inChain}

		case lexer.TokNoSubstitutionTemplate, lexer.TokTemplateHead:
			if inChain {
				p.fail("tagged template cannot be used in an optional chain")
			}
			expr = p.parseTemplate(expr)

		default:
			return expr
		}
	}
}

func (p *Parser) parseMemberName(object ast.Expr, optional, inChain bool) ast.Expr {
	tok := p.current()
	if tok.Kind != lexer.TokIdent && tok.Kind != lexer.TokPrivateName && !tok.Kind.IsKeyword() {
		p.unexpected()
	}
	p.advance()
	return &ast.MemberExpr{
		Loc:           object.Start(),
		Object:        object,
		Name:          tok.Value,
		NameLoc:       locOf(tok),
		Optional:      optional,
		OptionalChain: inChain,
	}
}

func (p *Parser) parseIndex(object ast.Expr, optional bool) *ast.IndexExpr {
	p.expect(lexer.TokLBracket)
	index := p.parseExprAllowIn()
	p.expect(lexer.TokRBracket)
	return &ast.IndexExpr{Loc: object.Start(), Object: object, Index: index, Optional: optional, OptionalChain: optional}
}

func (p *Parser) parseExprAllowIn() ast.Expr {
	saved := p.noIn
	p.noIn = false
	expr := p.parseExpr()
	p.noIn = saved
	return expr
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(lexer.TokLParen)
	saved := p.noIn
	p.noIn = false
	args := []ast.Expr{}
	for p.current().Kind != lexer.TokRParen {
		if tok := p.current(); tok.Kind == lexer.TokEllipsis {
			p.advance()
			args = append(args, &ast.SpreadExpr{Loc: locOf(tok), Arg: p.parseAssign()})
		} else {
			args = append(args, p.parseAssign())
		}
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.noIn = saved
	p.expect(lexer.TokRParen)
	return args
}

func (p *Parser) parseNew() ast.Expr {
	loc := p.loc()
	p.advance() // new

	if p.match(lexer.TokDot) {
		if !p.isContextual("target") {
			p.unexpected()
		}
		p.advance()
		return &ast.MetaProperty{Loc: loc, Meta: "new", Prop: "target"}
	}

	var callee ast.Expr
	if p.current().Kind == lexer.TokNew {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	callee = p.parseCallTail(callee, false)

	expr := &ast.NewExpr{Loc: loc, Callee: callee}
	if p.current().Kind == lexer.TokLParen {
		expr.Args = p.parseArgs()
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.current()
	loc := locOf(tok)

	switch tok.Kind {
	case lexer.TokIdent:
		if p.isAsyncFunction() {
			p.advance()
			return &ast.FunctionExpr{Loc: loc, Fn: p.parseFunction(loc, true, false)}
		}
		p.advance()
		return &ast.IdentExpr{Loc: loc, Name: tok.Value, ID: p.module.NewID()}

	case lexer.TokNumber:
		p.advance()
		return &ast.NumberLit{Loc: loc, Raw: tok.Value}

	case lexer.TokBigInt:
		p.advance()
		return &ast.BigIntLit{Loc: loc, Raw: tok.Value}

	case lexer.TokString:
		return p.parseStringLit()

	case lexer.TokRegExp:
		p.advance()
		return &ast.RegExpLit{Loc: loc, Raw: tok.Value}

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLit{Loc: loc, Value: tok.Kind == lexer.TokTrue}

	case lexer.TokNull:
		p.advance()
		return &ast.NullLit{Loc: loc}

	case lexer.TokThis:
		p.advance()
		return &ast.ThisExpr{Loc: loc}

	case lexer.TokSuper:
		p.advance()
		return &ast.SuperExpr{Loc: loc}

	case lexer.TokNoSubstitutionTemplate, lexer.TokTemplateHead:
		return p.parseTemplate(nil)

	case lexer.TokLParen:
		return p.parseParenExpr()

	case lexer.TokLBracket:
		return p.parseArrayLit()

	case lexer.TokLBrace:
		return p.parseObjectLit()

	case lexer.TokFunction:
		return &ast.FunctionExpr{Loc: loc, Fn: p.parseFunction(loc, false, false)}

	case lexer.TokClass:
		return &ast.ClassExpr{Loc: loc, Class: p.parseClass(false)}

	case lexer.TokImport:
		p.advance()
		if p.match(lexer.TokDot) {
			if !p.isContextual("meta") {
				p.unexpected()
			}
			p.advance()
			return &ast.MetaProperty{Loc: loc, Meta: "import", Prop: "meta"}
		}
		p.expect(lexer.TokLParen)
		call := &ast.ImportCallExpr{Loc: loc, Arg: p.parseAssignAllowIn()}
		if p.match(lexer.TokComma) && p.current().Kind != lexer.TokRParen {
			call.Options = p.parseAssignAllowIn()
			p.match(lexer.TokComma)
		}
		p.expect(lexer.TokRParen)
		return call

	case lexer.TokPrivateName:
		// Only valid as the left side of "#x in obj"
		if p.peek(1).Kind == lexer.TokIn {
			p.advance()
			return &ast.PrivateName{Loc: loc, Name: tok.Value}
		}
	}

	p.unexpected()
	return nil
}

func (p *Parser) parseStringLit() *ast.StringLit {
	tok := p.current()
	if tok.Kind != lexer.TokString {
		p.unexpected()
	}
	p.advance()
	return &ast.StringLit{Loc: locOf(tok), Value: tok.Value, Raw: tok.Text(p.source)}
}

func (p *Parser) parseTemplate(tag ast.Expr) *ast.TemplateLit {
	tok := p.current()
	lit := &ast.TemplateLit{Loc: locOf(tok), Tag: tag}
	if tag != nil {
		lit.Loc = tag.Start()
	}
	p.advance()
	lit.Quasis = append(lit.Quasis, tok.Value)
	if tok.Kind == lexer.TokNoSubstitutionTemplate {
		return lit
	}

	saved := p.noIn
	p.noIn = false
	for {
		lit.Exprs = append(lit.Exprs, p.parseExpr())
		tok = p.current()
		if tok.Kind != lexer.TokTemplateMiddle && tok.Kind != lexer.TokTemplateTail {
			p.unexpected()
		}
		p.advance()
		lit.Quasis = append(lit.Quasis, tok.Value)
		if tok.Kind == lexer.TokTemplateTail {
			break
		}
	}
	p.noIn = saved
	return lit
}

func (p *Parser) parseArrayLit() *ast.ArrayExpr {
	arr := &ast.ArrayExpr{Loc: p.loc(), Items: []ast.Expr{}}
	p.advance() // [
	saved := p.noIn
	p.noIn = false
	for p.current().Kind != lexer.TokRBracket {
		if p.match(lexer.TokComma) {
			arr.Items = append(arr.Items, nil)
			continue
		}
		if tok := p.current(); tok.Kind == lexer.TokEllipsis {
			p.advance()
			arr.Items = append(arr.Items, &ast.SpreadExpr{Loc: locOf(tok), Arg: p.parseAssign()})
		} else {
			arr.Items = append(arr.Items, p.parseAssign())
		}
		if p.current().Kind != lexer.TokRBracket {
			p.expect(lexer.TokComma)
		}
	}
	p.noIn = saved
	p.expect(lexer.TokRBracket)
	return arr
}

func (p *Parser) parseObjectLit() *ast.ObjectExpr {
	obj := &ast.ObjectExpr{Loc: p.loc()}
	p.advance() // {
	for p.current().Kind != lexer.TokRBrace {
		obj.Props = append(obj.Props, p.parseProperty(false))
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)
	return obj
}

// ----------------------------------------------------------------------------
// Operator Tables
// ----------------------------------------------------------------------------

var binaryOps = map[lexer.TokenKind]ast.BinaryOp{
	lexer.TokPlus:       ast.BinAdd,
	lexer.TokMinus:      ast.BinSub,
	lexer.TokStar:       ast.BinMul,
	lexer.TokSlash:      ast.BinDiv,
	lexer.TokPercent:    ast.BinRem,
	lexer.TokStarStar:   ast.BinPow,
	lexer.TokLtLt:       ast.BinShl,
	lexer.TokGtGt:       ast.BinShr,
	lexer.TokGtGtGt:     ast.BinUShr,
	lexer.TokAmp:        ast.BinBitAnd,
	lexer.TokPipe:       ast.BinBitOr,
	lexer.TokCaret:      ast.BinBitXor,
	lexer.TokLt:         ast.BinLt,
	lexer.TokGt:         ast.BinGt,
	lexer.TokLtEq:       ast.BinLe,
	lexer.TokGtEq:       ast.BinGe,
	lexer.TokEqEq:       ast.BinEq,
	lexer.TokBangEq:     ast.BinNe,
	lexer.TokEqEqEq:     ast.BinStrictEq,
	lexer.TokBangEqEq:   ast.BinStrictNe,
	lexer.TokIn:         ast.BinIn,
	lexer.TokInstanceof: ast.BinInstanceof,
	lexer.TokAmpAmp:     ast.BinLogicalAnd,
	lexer.TokPipePipe:   ast.BinLogicalOr,
	lexer.TokQuestionQ:  ast.BinNullish,
}

var unaryOps = map[lexer.TokenKind]ast.UnaryOp{
	lexer.TokMinus:  ast.UnaryNeg,
	lexer.TokPlus:   ast.UnaryPos,
	lexer.TokBang:   ast.UnaryNot,
	lexer.TokTilde:  ast.UnaryCpl,
	lexer.TokTypeof: ast.UnaryTypeof,
	lexer.TokVoid:   ast.UnaryVoid,
	lexer.TokDelete: ast.UnaryDelete,
}

var assignOps = map[lexer.TokenKind]ast.AssignOp{
	lexer.TokEq:          ast.AssignSimple,
	lexer.TokPlusEq:      ast.AssignAdd,
	lexer.TokMinusEq:     ast.AssignSub,
	lexer.TokStarEq:      ast.AssignMul,
	lexer.TokSlashEq:     ast.AssignDiv,
	lexer.TokPercentEq:   ast.AssignRem,
	lexer.TokStarStarEq:  ast.AssignPow,
	lexer.TokLtLtEq:      ast.AssignShl,
	lexer.TokGtGtEq:      ast.AssignShr,
	lexer.TokGtGtGtEq:    ast.AssignUShr,
	lexer.TokAmpEq:       ast.AssignBitAnd,
	lexer.TokPipeEq:      ast.AssignBitOr,
	lexer.TokCaretEq:     ast.AssignBitXor,
	lexer.TokAmpAmpEq:    ast.AssignAnd,
	lexer.TokPipePipeEq:  ast.AssignOr,
	lexer.TokQuestionQEq: ast.AssignNullish,
}
