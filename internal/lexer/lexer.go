// Package lexer provides tokenization for JavaScript module source code.
//
// The lexer converts an ECMAScript module into a sequence of tokens,
// handling:
// - Keywords (reserved words only; contextual keywords stay identifiers)
// - Identifiers and private names (#name)
// - Numeric literals (decimal, hex, octal, binary, bigint, separators)
// - String, template and regular expression literals
// - Comments (collected separately so the printer can re-emit them)
// - Line terminators before a token (for automatic semicolon insertion)
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ----------------------------------------------------------------------------
// Token Types
// ----------------------------------------------------------------------------

// TokenKind represents the type of a token.
type TokenKind uint8

const (
	TokError TokenKind = iota
	TokEOF

	// Literals
	TokNumber
	TokBigInt
	TokString
	TokRegExp
	TokNoSubstitutionTemplate // `abc`
	TokTemplateHead           // `abc${
	TokTemplateMiddle         // }abc${
	TokTemplateTail           // }abc`

	// Identifiers
	TokIdent
	TokPrivateName

	// Keywords
	TokBreak
	TokCase
	TokCatch
	TokClass
	TokConst
	TokContinue
	TokDebugger
	TokDefault
	TokDelete
	TokDo
	TokElse
	TokEnum
	TokExport
	TokExtends
	TokFalse
	TokFinally
	TokFor
	TokFunction
	TokIf
	TokImport
	TokIn
	TokInstanceof
	TokNew
	TokNull
	TokReturn
	TokSuper
	TokSwitch
	TokThis
	TokThrow
	TokTrue
	TokTry
	TokTypeof
	TokVar
	TokVoid
	TokWhile
	TokWith

	// Punctuation
	TokLBrace    // {
	TokRBrace    // }
	TokLParen    // (
	TokRParen    // )
	TokLBracket  // [
	TokRBracket  // ]
	TokDot       // .
	TokEllipsis  // ...
	TokSemicolon // ;
	TokComma     // ,
	TokQuestion  // ?
	TokQuestionDot
	TokColon // :
	TokArrow // =>

	// Operators
	TokLt            // <
	TokGt            // >
	TokLtEq          // <=
	TokGtEq          // >=
	TokEqEq          // ==
	TokBangEq        // !=
	TokEqEqEq        // ===
	TokBangEqEq      // !==
	TokPlus          // +
	TokMinus         // -
	TokStar          // *
	TokSlash         // /
	TokPercent       // %
	TokStarStar      // **
	TokPlusPlus      // ++
	TokMinusMinus    // --
	TokLtLt          // <<
	TokGtGt          // >>
	TokGtGtGt        // >>>
	TokAmp           // &
	TokPipe          // |
	TokCaret         // ^
	TokBang          // !
	TokTilde         // ~
	TokAmpAmp        // &&
	TokPipePipe      // ||
	TokQuestionQ     // ??
	TokEq            // =
	TokPlusEq        // +=
	TokMinusEq       // -=
	TokStarEq        // *=
	TokSlashEq       // /=
	TokPercentEq     // %=
	TokStarStarEq    // **=
	TokLtLtEq        // <<=
	TokGtGtEq        // >>=
	TokGtGtGtEq      // >>>=
	TokAmpEq         // &=
	TokPipeEq        // |=
	TokCaretEq       // ^=
	TokAmpAmpEq      // &&=
	TokPipePipeEq    // ||=
	TokQuestionQEq   // ??=
)

// String returns the string representation of a token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "unknown"
}

var tokenNames = [...]string{
	TokError:                  "error",
	TokEOF:                    "end of file",
	TokNumber:                 "number",
	TokBigInt:                 "bigint",
	TokString:                 "string",
	TokRegExp:                 "regular expression",
	TokNoSubstitutionTemplate: "template",
	TokTemplateHead:           "template",
	TokTemplateMiddle:         "template",
	TokTemplateTail:           "template",
	TokIdent:                  "identifier",
	TokPrivateName:            "private name",
	TokBreak:                  "break",
	TokCase:                   "case",
	TokCatch:                  "catch",
	TokClass:                  "class",
	TokConst:                  "const",
	TokContinue:               "continue",
	TokDebugger:               "debugger",
	TokDefault:                "default",
	TokDelete:                 "delete",
	TokDo:                     "do",
	TokElse:                   "else",
	TokEnum:                   "enum",
	TokExport:                 "export",
	TokExtends:                "extends",
	TokFalse:                  "false",
	TokFinally:                "finally",
	TokFor:                    "for",
	TokFunction:               "function",
	TokIf:                     "if",
	TokImport:                 "import",
	TokIn:                     "in",
	TokInstanceof:             "instanceof",
	TokNew:                    "new",
	TokNull:                   "null",
	TokReturn:                 "return",
	TokSuper:                  "super",
	TokSwitch:                 "switch",
	TokThis:                   "this",
	TokThrow:                  "throw",
	TokTrue:                   "true",
	TokTry:                    "try",
	TokTypeof:                 "typeof",
	TokVar:                    "var",
	TokVoid:                   "void",
	TokWhile:                  "while",
	TokWith:                   "with",
	TokLBrace:                 "{",
	TokRBrace:                 "}",
	TokLParen:                 "(",
	TokRParen:                 ")",
	TokLBracket:               "[",
	TokRBracket:               "]",
	TokDot:                    ".",
	TokEllipsis:               "...",
	TokSemicolon:              ";",
	TokComma:                  ",",
	TokQuestion:               "?",
	TokQuestionDot:            "?.",
	TokColon:                  ":",
	TokArrow:                  "=>",
	TokLt:                     "<",
	TokGt:                     ">",
	TokLtEq:                   "<=",
	TokGtEq:                   ">=",
	TokEqEq:                   "==",
	TokBangEq:                 "!=",
	TokEqEqEq:                 "===",
	TokBangEqEq:               "!==",
	TokPlus:                   "+",
	TokMinus:                  "-",
	TokStar:                   "*",
	TokSlash:                  "/",
	TokPercent:                "%",
	TokStarStar:               "**",
	TokPlusPlus:               "++",
	TokMinusMinus:             "--",
	TokLtLt:                   "<<",
	TokGtGt:                   ">>",
	TokGtGtGt:                 ">>>",
	TokAmp:                    "&",
	TokPipe:                   "|",
	TokCaret:                  "^",
	TokBang:                   "!",
	TokTilde:                  "~",
	TokAmpAmp:                 "&&",
	TokPipePipe:               "||",
	TokQuestionQ:              "??",
	TokEq:                     "=",
	TokPlusEq:                 "+=",
	TokMinusEq:                "-=",
	TokStarEq:                 "*=",
	TokSlashEq:                "/=",
	TokPercentEq:              "%=",
	TokStarStarEq:             "**=",
	TokLtLtEq:                 "<<=",
	TokGtGtEq:                 ">>=",
	TokGtGtGtEq:               ">>>=",
	TokAmpEq:                  "&=",
	TokPipeEq:                 "|=",
	TokCaretEq:                "^=",
	TokAmpAmpEq:               "&&=",
	TokPipePipeEq:             "||=",
	TokQuestionQEq:            "??=",
}

// IsKeyword reports whether the kind is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k >= TokBreak && k <= TokWith
}

// IsAssign reports whether the kind is an assignment operator.
func (k TokenKind) IsAssign() bool {
	return k >= TokEq && k <= TokQuestionQEq
}

// ----------------------------------------------------------------------------
// Token
// ----------------------------------------------------------------------------

// Token represents a lexical token.
type Token struct {
	Kind  TokenKind
	Start int    // Byte offset in source
	End   int    // Byte offset of end (exclusive)
	Value string // Identifier name, cooked string value, or template raw text

	// NewlineBefore is set when a line terminator separates this token from
	// the previous one. The parser uses it for automatic semicolon insertion.
	NewlineBefore bool
}

// Text returns the source text of the token.
func (t Token) Text(source string) string {
	if t.Start >= 0 && t.End <= len(source) {
		return source[t.Start:t.End]
	}
	return ""
}

// Comment is a line or block comment.
type Comment struct {
	Start int
	End   int
	Text  string // Includes the delimiters
}

// IsBlock reports whether this is a /* */ comment.
func (c Comment) IsBlock() bool {
	return strings.HasPrefix(c.Text, "/*")
}

// ----------------------------------------------------------------------------
// Keywords
// ----------------------------------------------------------------------------

// Keywords maps reserved words to their token kinds.
var Keywords = map[string]TokenKind{
	"break":      TokBreak,
	"case":       TokCase,
	"catch":      TokCatch,
	"class":      TokClass,
	"const":      TokConst,
	"continue":   TokContinue,
	"debugger":   TokDebugger,
	"default":    TokDefault,
	"delete":     TokDelete,
	"do":         TokDo,
	"else":       TokElse,
	"enum":       TokEnum,
	"export":     TokExport,
	"extends":    TokExtends,
	"false":      TokFalse,
	"finally":    TokFinally,
	"for":        TokFor,
	"function":   TokFunction,
	"if":         TokIf,
	"import":     TokImport,
	"in":         TokIn,
	"instanceof": TokInstanceof,
	"new":        TokNew,
	"null":       TokNull,
	"return":     TokReturn,
	"super":      TokSuper,
	"switch":     TokSwitch,
	"this":       TokThis,
	"throw":      TokThrow,
	"true":       TokTrue,
	"try":        TokTry,
	"typeof":     TokTypeof,
	"var":        TokVar,
	"void":       TokVoid,
	"while":      TokWhile,
	"with":       TokWith,
}

// ----------------------------------------------------------------------------
// Lexer
// ----------------------------------------------------------------------------

// Lexer tokenizes JavaScript module source code.
type Lexer struct {
	source   string
	pos      int
	start    int
	tokens   []Token
	comments []Comment
	hashbang string

	newlineBefore bool

	// Kind of the previously returned token, used to tell a regular
	// expression from a division.
	prev    TokenKind
	hasPrev bool

	// Brace depth per open template substitution. A '}' that closes a
	// substitution resumes template scanning instead of producing TokRBrace.
	templateBraces []int
	braceDepth     int
}

// New creates a new lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		tokens: make([]Token, 0, len(source)/4), // Estimate
	}
}

// Tokenize returns all tokens in the source. The last token is either
// TokEOF or TokError.
func (l *Lexer) Tokenize() []Token {
	if strings.HasPrefix(l.source, "#!") {
		end := strings.IndexByte(l.source, '\n')
		if end < 0 {
			end = len(l.source)
		}
		l.hashbang = l.source[:end]
		l.pos = end
	}
	for {
		tok := l.Next()
		l.tokens = append(l.tokens, tok)
		if tok.Kind == TokEOF || tok.Kind == TokError {
			break
		}
	}
	return l.tokens
}

// Comments returns the comments seen so far, in source order.
func (l *Lexer) Comments() []Comment {
	return l.comments
}

// Hashbang returns the leading "#!" line, if any.
func (l *Lexer) Hashbang() string {
	return l.hashbang
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	tok := l.next()
	l.prev = tok.Kind
	l.hasPrev = true
	return tok
}

func (l *Lexer) next() Token {
	l.newlineBefore = false
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.source) {
		return l.make(TokEOF, "")
	}

	l.start = l.pos
	ch := l.source[l.pos]

	// Identifiers and keywords
	if ch < utf8.RuneSelf {
		if asciiIdentStart[ch] {
			return l.scanIdentOrKeyword()
		}
	} else {
		r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
		if isIdentStartSlow(r) {
			return l.scanIdentOrKeyword()
		}
		return l.errorf("unexpected character %q", r)
	}

	// Numbers
	if isDigit(ch) || (ch == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1])) {
		return l.scanNumber()
	}

	switch ch {
	case '"', '\'':
		return l.scanString(ch)
	case '`':
		l.pos++
		return l.scanTemplate(TokNoSubstitutionTemplate, TokTemplateHead)
	case '#':
		l.pos++
		if l.pos < len(l.source) && asciiIdentStart[l.source[l.pos]] {
			tok := l.scanIdentOrKeyword()
			tok.Kind = TokPrivateName
			tok.Start = l.start
			tok.Value = l.source[l.start:l.pos]
			return tok
		}
		return l.errorf("unexpected character '#'")
	case '/':
		if l.regexAllowed() {
			return l.scanRegExp()
		}
	case '}':
		if n := len(l.templateBraces); n > 0 && l.templateBraces[n-1] == l.braceDepth {
			l.templateBraces = l.templateBraces[:n-1]
			l.pos++
			return l.scanTemplate(TokTemplateTail, TokTemplateMiddle)
		}
	}

	// Operators and punctuation
	return l.scanOperator()
}

func (l *Lexer) make(kind TokenKind, value string) Token {
	return Token{Kind: kind, Start: l.start, End: l.pos, Value: value, NewlineBefore: l.newlineBefore}
}

func (l *Lexer) errorf(format string, args ...interface{}) Token {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return Token{Kind: TokError, Start: l.start, End: l.pos, Value: msg, NewlineBefore: l.newlineBefore}
}

// regexAllowed decides whether a '/' starts a regular expression, based on
// the previous significant token.
func (l *Lexer) regexAllowed() bool {
	if !l.hasPrev {
		return true
	}
	switch l.prev {
	case TokIdent, TokPrivateName, TokNumber, TokBigInt, TokString, TokRegExp,
		TokNoSubstitutionTemplate, TokTemplateTail,
		TokRParen, TokRBracket, TokRBrace,
		TokThis, TokSuper, TokNull, TokTrue, TokFalse,
		TokPlusPlus, TokMinusMinus:
		return false
	}
	return true
}

// ----------------------------------------------------------------------------
// Scanning Helpers
// ----------------------------------------------------------------------------

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]

		// Fast path: check for common ASCII whitespace first
		if ch == ' ' || ch == '\t' {
			l.pos++
			continue
		}
		if ch == '\n' || ch == '\r' {
			l.newlineBefore = true
			l.pos++
			continue
		}
		if ch == '\v' || ch == '\f' {
			l.pos++
			continue
		}

		// Line comment
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/' {
			start := l.pos
			l.pos += 2
			for l.pos < len(l.source) && l.source[l.pos] != '\n' && l.source[l.pos] != '\r' {
				l.pos++
			}
			l.comments = append(l.comments, Comment{Start: start, End: l.pos, Text: l.source[start:l.pos]})
			continue
		}

		// Block comment (no nesting in JavaScript)
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '*' {
			start := l.pos
			end := strings.Index(l.source[l.pos+2:], "*/")
			if end < 0 {
				l.pos = len(l.source)
			} else {
				l.pos += 2 + end + 2
			}
			text := l.source[start:l.pos]
			if strings.ContainsAny(text, "\n\r") {
				l.newlineBefore = true
			}
			l.comments = append(l.comments, Comment{Start: start, End: l.pos, Text: text})
			continue
		}

		if ch >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(l.source[l.pos:])
			if r == '\u2028' || r == '\u2029' {
				l.newlineBefore = true
				l.pos += size
				continue
			}
			if r == '\uFEFF' || unicode.Is(unicode.Zs, r) {
				l.pos += size
				continue
			}
		}

		break
	}
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos

	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch < utf8.RuneSelf {
			if asciiIdentContinue[ch] {
				l.pos++
				continue
			}
			break
		}
		r, size := utf8.DecodeRuneInString(l.source[l.pos:])
		if !isIdentContinueSlow(r) {
			break
		}
		l.pos += size
	}

	text := l.source[start:l.pos]
	if kind, ok := Keywords[text]; ok {
		return l.make(kind, text)
	}
	return l.make(TokIdent, text)
}

func (l *Lexer) scanNumber() Token {
	start := l.pos

	if l.source[l.pos] == '0' && l.pos+1 < len(l.source) {
		switch l.source[l.pos+1] {
		case 'x', 'X':
			l.pos += 2
			l.scanDigits(isHexDigit)
			return l.finishInteger(start)
		case 'o', 'O':
			l.pos += 2
			l.scanDigits(isOctalDigit)
			return l.finishInteger(start)
		case 'b', 'B':
			l.pos += 2
			l.scanDigits(isBinaryDigit)
			return l.finishInteger(start)
		}
	}

	l.scanDigits(isDigit)
	isInteger := true
	if l.pos < len(l.source) && l.source[l.pos] == '.' {
		isInteger = false
		l.pos++
		l.scanDigits(isDigit)
	}
	if l.pos < len(l.source) && (l.source[l.pos] == 'e' || l.source[l.pos] == 'E') {
		isInteger = false
		l.pos++
		if l.pos < len(l.source) && (l.source[l.pos] == '+' || l.source[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.source) || !isDigit(l.source[l.pos]) {
			return l.errorf("invalid number")
		}
		l.scanDigits(isDigit)
	}
	if isInteger {
		return l.finishInteger(start)
	}
	if l.pos < len(l.source) && asciiIdentStart[l.source[l.pos]] {
		return l.errorf("identifier directly after number")
	}
	return l.make(TokNumber, l.source[start:l.pos])
}

func (l *Lexer) finishInteger(start int) Token {
	kind := TokNumber
	if l.pos < len(l.source) && l.source[l.pos] == 'n' {
		l.pos++
		kind = TokBigInt
	}
	if l.pos < len(l.source) && asciiIdentStart[l.source[l.pos]] {
		return l.errorf("identifier directly after number")
	}
	return l.make(kind, l.source[start:l.pos])
}

func (l *Lexer) scanDigits(accept func(byte) bool) {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if accept(ch) || (ch == '_' && l.pos+1 < len(l.source) && accept(l.source[l.pos+1])) {
			l.pos++
			continue
		}
		break
	}
}

func (l *Lexer) scanString(quote byte) Token {
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.source) {
			return l.errorf("unterminated string literal")
		}
		ch := l.source[l.pos]
		switch {
		case ch == quote:
			l.pos++
			return l.make(TokString, sb.String())
		case ch == '\n' || ch == '\r':
			return l.errorf("unterminated string literal")
		case ch == '\\':
			if !l.scanEscape(&sb) {
				return l.errorf("invalid escape sequence")
			}
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
}

// scanEscape decodes the escape sequence at l.pos (which points at '\').
func (l *Lexer) scanEscape(sb *strings.Builder) bool {
	l.pos++
	if l.pos >= len(l.source) {
		return false
	}
	ch := l.source[l.pos]
	l.pos++
	switch ch {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case '\r':
		// Line continuation
		if l.pos < len(l.source) && l.source[l.pos] == '\n' {
			l.pos++
		}
	case '\n':
		// Line continuation
	case 'x':
		if l.pos+2 > len(l.source) {
			return false
		}
		v, err := strconv.ParseUint(l.source[l.pos:l.pos+2], 16, 8)
		if err != nil {
			return false
		}
		sb.WriteRune(rune(v))
		l.pos += 2
	case 'u':
		var hex string
		if l.pos < len(l.source) && l.source[l.pos] == '{' {
			end := strings.IndexByte(l.source[l.pos:], '}')
			if end < 0 {
				return false
			}
			hex = l.source[l.pos+1 : l.pos+end]
			l.pos += end + 1
		} else {
			if l.pos+4 > len(l.source) {
				return false
			}
			hex = l.source[l.pos : l.pos+4]
			l.pos += 4
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return false
		}
		sb.WriteRune(rune(v))
	default:
		// Any other character escapes to itself (including multi-byte ones)
		l.pos--
		r, size := utf8.DecodeRuneInString(l.source[l.pos:])
		sb.WriteRune(r)
		l.pos += size
	}
	return true
}

// scanTemplate scans template characters up to the closing backtick or
// the next "${". The returned token's Value is the raw text.
func (l *Lexer) scanTemplate(closed, open TokenKind) Token {
	textStart := l.pos
	for {
		if l.pos >= len(l.source) {
			return l.errorf("unterminated template literal")
		}
		ch := l.source[l.pos]
		switch {
		case ch == '`':
			raw := l.source[textStart:l.pos]
			l.pos++
			return l.make(closed, raw)
		case ch == '$' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '{':
			raw := l.source[textStart:l.pos]
			l.pos += 2
			l.templateBraces = append(l.templateBraces, l.braceDepth)
			return l.make(open, raw)
		case ch == '\\':
			l.pos += 2
		default:
			l.pos++
		}
	}
}

func (l *Lexer) scanRegExp() Token {
	l.pos++ // opening slash
	inClass := false
	for {
		if l.pos >= len(l.source) {
			return l.errorf("unterminated regular expression")
		}
		ch := l.source[l.pos]
		if ch == '\n' || ch == '\r' {
			return l.errorf("unterminated regular expression")
		}
		l.pos++
		if ch == '\\' {
			if l.pos < len(l.source) {
				l.pos++
			}
			continue
		}
		if ch == '[' {
			inClass = true
		} else if ch == ']' {
			inClass = false
		} else if ch == '/' && !inClass {
			break
		}
	}
	for l.pos < len(l.source) && asciiIdentContinue[l.source[l.pos]] {
		l.pos++
	}
	return l.make(TokRegExp, l.source[l.start:l.pos])
}

func (l *Lexer) scanOperator() Token {
	ch := l.source[l.pos]
	l.pos++

	switch ch {
	case '{':
		l.braceDepth++
		return l.make(TokLBrace, "")
	case '}':
		l.braceDepth--
		return l.make(TokRBrace, "")
	case '(':
		return l.make(TokLParen, "")
	case ')':
		return l.make(TokRParen, "")
	case '[':
		return l.make(TokLBracket, "")
	case ']':
		return l.make(TokRBracket, "")
	case ';':
		return l.make(TokSemicolon, "")
	case ',':
		return l.make(TokComma, "")
	case ':':
		return l.make(TokColon, "")
	case '~':
		return l.make(TokTilde, "")
	case '.':
		if l.match("..") {
			return l.make(TokEllipsis, "")
		}
		return l.make(TokDot, "")
	case '?':
		if l.match("?=") {
			return l.make(TokQuestionQEq, "")
		}
		if l.match("?") {
			return l.make(TokQuestionQ, "")
		}
		// "a?.5:b" is a conditional, not an optional chain
		if l.pos < len(l.source) && l.source[l.pos] == '.' &&
			!(l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1])) {
			l.pos++
			return l.make(TokQuestionDot, "")
		}
		return l.make(TokQuestion, "")
	case '=':
		if l.match("==") {
			return l.make(TokEqEqEq, "")
		}
		if l.match("=") {
			return l.make(TokEqEq, "")
		}
		if l.match(">") {
			return l.make(TokArrow, "")
		}
		return l.make(TokEq, "")
	case '!':
		if l.match("==") {
			return l.make(TokBangEqEq, "")
		}
		if l.match("=") {
			return l.make(TokBangEq, "")
		}
		return l.make(TokBang, "")
	case '<':
		if l.match("<=") {
			return l.make(TokLtLtEq, "")
		}
		if l.match("<") {
			return l.make(TokLtLt, "")
		}
		if l.match("=") {
			return l.make(TokLtEq, "")
		}
		return l.make(TokLt, "")
	case '>':
		if l.match(">>=") {
			return l.make(TokGtGtGtEq, "")
		}
		if l.match(">>") {
			return l.make(TokGtGtGt, "")
		}
		if l.match(">=") {
			return l.make(TokGtGtEq, "")
		}
		if l.match(">") {
			return l.make(TokGtGt, "")
		}
		if l.match("=") {
			return l.make(TokGtEq, "")
		}
		return l.make(TokGt, "")
	case '+':
		if l.match("+") {
			return l.make(TokPlusPlus, "")
		}
		if l.match("=") {
			return l.make(TokPlusEq, "")
		}
		return l.make(TokPlus, "")
	case '-':
		if l.match("-") {
			return l.make(TokMinusMinus, "")
		}
		if l.match("=") {
			return l.make(TokMinusEq, "")
		}
		return l.make(TokMinus, "")
	case '*':
		if l.match("*=") {
			return l.make(TokStarStarEq, "")
		}
		if l.match("*") {
			return l.make(TokStarStar, "")
		}
		if l.match("=") {
			return l.make(TokStarEq, "")
		}
		return l.make(TokStar, "")
	case '/':
		if l.match("=") {
			return l.make(TokSlashEq, "")
		}
		return l.make(TokSlash, "")
	case '%':
		if l.match("=") {
			return l.make(TokPercentEq, "")
		}
		return l.make(TokPercent, "")
	case '&':
		if l.match("&=") {
			return l.make(TokAmpAmpEq, "")
		}
		if l.match("&") {
			return l.make(TokAmpAmp, "")
		}
		if l.match("=") {
			return l.make(TokAmpEq, "")
		}
		return l.make(TokAmp, "")
	case '|':
		if l.match("|=") {
			return l.make(TokPipePipeEq, "")
		}
		if l.match("|") {
			return l.make(TokPipePipe, "")
		}
		if l.match("=") {
			return l.make(TokPipeEq, "")
		}
		return l.make(TokPipe, "")
	case '^':
		if l.match("=") {
			return l.make(TokCaretEq, "")
		}
		return l.make(TokCaret, "")
	}

	return l.errorf("unexpected character %q", rune(ch))
}

// match consumes s if the remaining source starts with it.
func (l *Lexer) match(s string) bool {
	if strings.HasPrefix(l.source[l.pos:], s) {
		l.pos += len(s)
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Character Classification
// ----------------------------------------------------------------------------

// Lookup tables for ASCII characters, filled in init.
var (
	asciiIdentStart    [128]bool
	asciiIdentContinue [128]bool
)

func init() {
	for c := 'a'; c <= 'z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		asciiIdentContinue[c] = true
	}
	for _, c := range "_$" {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isOctalDigit(ch byte) bool {
	return ch >= '0' && ch <= '7'
}

func isBinaryDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

func isIdentStartSlow(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.Other_ID_Start, r)
}

func isIdentContinueSlow(r rune) bool {
	return isIdentStartSlow(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) ||
		unicode.Is(unicode.Nd, r) || unicode.Is(unicode.Pc, r) || r == '\u200C' || r == '\u200D'
}

// IsIdentifier reports whether s is a valid identifier name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r < utf8.RuneSelf {
			if i == 0 && !asciiIdentStart[r] || i > 0 && !asciiIdentContinue[r] {
				return false
			}
			continue
		}
		if i == 0 && !isIdentStartSlow(r) || i > 0 && !isIdentContinueSlow(r) {
			return false
		}
	}
	return true
}
