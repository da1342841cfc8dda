// Package pattern matches import specifiers and root-relative file paths
// against deny patterns.
//
// A pattern is a glob, an exact literal, or an ECMAScript regular
// expression. Globs follow doublestar semantics ("**" crosses directory
// separators). Regular expressions search the candidate the way
// String.prototype.match does, so they are not implicitly anchored.
package pattern

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/dlclark/regexp2"
)

// ErrInvalidPattern is returned for a malformed glob or regular expression.
var ErrInvalidPattern = errors.New("invalid pattern")

// matchTimeout bounds a single regular expression evaluation.
const matchTimeout = time.Second

// Kind selects how a pattern matches.
type Kind uint8

const (
	KindGlob Kind = iota
	KindLiteral
	KindRegex
)

func (k Kind) String() string {
	switch k {
	case KindGlob:
		return "glob"
	case KindLiteral:
		return "literal"
	case KindRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// Pattern is a single deny pattern. The zero value is an empty glob.
type Pattern struct {
	Kind  Kind
	Text  string // Glob or literal text, or the regex source
	Flags string // Regex flags

	re *regexp2.Regexp
}

// Glob returns a glob pattern. The glob is validated on first use.
func Glob(text string) Pattern {
	return Pattern{Kind: KindGlob, Text: text}
}

// Literal returns a pattern that matches text exactly.
func Literal(text string) Pattern {
	return Pattern{Kind: KindLiteral, Text: text}
}

// Regex compiles an ECMAScript regular expression with JS flags.
// The flags "i", "m", and "s" change matching; "g", "u", "y", and "d"
// are accepted and have no effect on a single search.
func Regex(source, flags string) (Pattern, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'g', 'u', 'y', 'd':
		default:
			return Pattern{}, errors.Wrapf(ErrInvalidPattern, "unknown regex flag %q in /%s/%s", f, source, flags)
		}
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return Pattern{}, errors.Wrapf(errors.Mark(err, ErrInvalidPattern), "compiling /%s/%s", source, flags)
	}
	re.MatchTimeout = matchTimeout
	return Pattern{Kind: KindRegex, Text: source, Flags: flags, re: re}, nil
}

// Parse reads a pattern from configuration text. Text of the form
// "/source/flags", where flags are JS regex flags, is a regular
// expression; anything else is a glob.
func Parse(text string) (Pattern, error) {
	if source, flags, ok := regexLiteral(text); ok {
		return Regex(source, flags)
	}
	if !doublestar.ValidatePattern(text) {
		return Pattern{}, errors.Wrapf(ErrInvalidPattern, "malformed glob %q", text)
	}
	return Glob(text), nil
}

// ParseExact is like Parse but reads anything that is not a regular
// expression as a literal that must match exactly.
func ParseExact(text string) (Pattern, error) {
	if source, flags, ok := regexLiteral(text); ok {
		return Regex(source, flags)
	}
	return Literal(text), nil
}

// regexLiteral splits "/source/flags" text.
func regexLiteral(text string) (source, flags string, ok bool) {
	if len(text) < 2 || text[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndexByte(text, '/')
	if end <= 0 || !isFlags(text[end+1:]) {
		return "", "", false
	}
	return text[1:end], text[end+1:], true
}

// ParseAll parses every text and reports the first failure.
func ParseAll(texts []string) ([]Pattern, error) {
	return parseAll(texts, Parse)
}

// ParseAllExact is ParseAll with ParseExact.
func ParseAllExact(texts []string) ([]Pattern, error) {
	return parseAll(texts, ParseExact)
}

func parseAll(texts []string, parse func(string) (Pattern, error)) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(texts))
	for _, text := range texts {
		p, err := parse(text)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// isFlags reports whether s is a set of distinct JS regex flags.
func isFlags(s string) bool {
	seen := 0
	for _, c := range s {
		i := strings.IndexRune("dgimsuy", c)
		if i < 0 || seen&(1<<i) != 0 {
			return false
		}
		seen |= 1 << i
	}
	return true
}

// String renders the pattern the way it appears in denial messages:
// globs and literals as-is, regular expressions as "/source/flags".
func (p Pattern) String() string {
	if p.Kind == KindRegex {
		return "/" + p.Text + "/" + p.Flags
	}
	return p.Text
}

// Match reports whether candidate matches p. A malformed glob or a regex
// that times out does not match.
func (p Pattern) Match(candidate string) bool {
	switch p.Kind {
	case KindLiteral:
		return p.Text == candidate

	case KindRegex:
		re := p.re
		if re == nil {
			compiled, err := Regex(p.Text, p.Flags)
			if err != nil {
				return false
			}
			re = compiled.re
		}
		ok, err := re.MatchString(candidate)
		return err == nil && ok

	default:
		ok, err := doublestar.Match(trimDot(p.Text), trimDot(candidate))
		return err == nil && ok
	}
}

func trimDot(s string) string {
	for strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	return s
}

// FindMatch returns the first pattern that matches candidate.
func FindMatch(candidate string, patterns []Pattern) (Pattern, bool) {
	for _, p := range patterns {
		if p.Match(candidate) {
			return p, true
		}
	}
	return Pattern{}, false
}

// RelativePath returns file relative to root with forward slashes.
// A file outside root keeps its ".." segments; if no relative path
// exists the cleaned file path is returned.
func RelativePath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = filepath.Clean(file)
	}
	return filepath.ToSlash(rel)
}
