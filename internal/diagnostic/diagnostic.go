// Package diagnostic provides positioned error reports with code frames.
//
// Frames follow the layout of Babel's code frame so messages read the same
// as the ones a JavaScript toolchain prints:
//
//	  1 | import { only } from "vite-env-only/macro"
//	> 2 | const x = only
//	    |           ^
package diagnostic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/HugoDaniel/envonly/internal/sourcemap"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error aborts the transform.
	Error Severity = iota
	// Warning is a non-blocking issue.
	Warning
	// Note provides additional context for another diagnostic.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Code classifies a diagnostic.
type Code string

const (
	CodeSyntax          Code = "syntax"
	CodeMacroArity      Code = "macro-arity"
	CodeMacroArgument   Code = "macro-argument"
	CodeMacroRuntimeUse Code = "macro-runtime-use"
	CodeMacroImport     Code = "macro-import"
)

// Position represents a position in source code.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// Diagnostic is a single report about a module.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	ID       string // Module id
	Pos      Position
	Frame    string

	// Cause is the lower level error the diagnostic reports, if any.
	Cause error
}

// Error returns "id:line:col: message", without the id when it is empty.
func (d *Diagnostic) Error() string {
	if d.ID == "" {
		return fmt.Sprintf("%d:%d: %s", d.Pos.Line, d.Pos.Column, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.ID, d.Pos.Line, d.Pos.Column, d.Message)
}

// Unwrap returns the cause.
func (d *Diagnostic) Unwrap() error {
	return d.Cause
}

// Mark returns d as an error marked with mark. The code frame, if any,
// is attached as an error detail.
func (d *Diagnostic) Mark(mark error) error {
	err := errors.Mark(d, mark)
	if d.Frame != "" {
		err = errors.WithDetail(err, d.Frame)
	}
	return err
}

// Format returns the error line followed by the code frame.
func (d *Diagnostic) Format() string {
	var sb strings.Builder
	sb.WriteString(d.Error())
	if d.Frame != "" {
		sb.WriteByte('\n')
		sb.WriteString(d.Frame)
	}
	return sb.String()
}

// Source builds diagnostics for one module.
type Source struct {
	id        string
	lineIndex *sourcemap.LineIndex
}

// NewSource creates a diagnostic source for a module's text.
func NewSource(id, text string) *Source {
	return &Source{id: id, lineIndex: sourcemap.NewLineIndex(text)}
}

// Position converts a byte offset to a Position.
func (s *Source) Position(offset int) Position {
	line, col := s.lineIndex.ByteOffsetToLineColumn(offset)
	return Position{Offset: offset, Line: line + 1, Column: col + 1}
}

// Errorf creates an error diagnostic at offset.
func (s *Source) Errorf(code Code, offset int, format string, args ...any) *Diagnostic {
	pos := s.Position(offset)
	return &Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		ID:       s.id,
		Pos:      pos,
		Frame:    s.Frame(pos),
	}
}

// At creates an error diagnostic at an already known 1-based position,
// as reported by the parser.
func (s *Source) At(code Code, line, column int, message string) *Diagnostic {
	pos := Position{
		Offset: s.lineIndex.LineColumnToByteOffset(line-1, column-1),
		Line:   line,
		Column: column,
	}
	return &Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  message,
		ID:       s.id,
		Pos:      pos,
		Frame:    s.Frame(pos),
	}
}

const (
	linesAbove = 2
	linesBelow = 3
)

// Frame renders the lines around pos with a marker under the column.
func (s *Source) Frame(pos Position) string {
	first := pos.Line - linesAbove
	if first < 1 {
		first = 1
	}
	last := pos.Line + linesBelow
	if last > s.lineIndex.LineCount() {
		last = s.lineIndex.LineCount()
	}
	width := len(strconv.Itoa(last))

	var sb strings.Builder
	for line := first; line <= last; line++ {
		text := s.lineIndex.LineText(line - 1)
		number := strconv.Itoa(line)
		gutter := " " + strings.Repeat(" ", width-len(number)) + number + " |"

		if line > first {
			sb.WriteByte('\n')
		}
		if line == pos.Line {
			sb.WriteByte('>')
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(gutter)
		if text != "" {
			sb.WriteByte(' ')
			sb.WriteString(text)
		}

		if line == pos.Line {
			sb.WriteString("\n ")
			sb.WriteString(strings.Repeat(" ", width+1))
			sb.WriteString(" | ")
			sb.WriteString(markerSpacing(text, pos.Column-1))
			sb.WriteByte('^')
		}
	}
	return sb.String()
}

// markerSpacing pads up to col, keeping tabs so the marker lines up.
func markerSpacing(text string, col int) string {
	if col > len(text) {
		col = len(text)
	}
	var sb strings.Builder
	for i := 0; i < col; i++ {
		if text[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// List collects diagnostics for a module.
type List struct {
	diagnostics []*Diagnostic
	hasErrors   bool
}

// Add adds a diagnostic to the list.
func (l *List) Add(d *Diagnostic) {
	l.diagnostics = append(l.diagnostics, d)
	if d.Severity == Error {
		l.hasErrors = true
	}
}

// HasErrors returns true if there are any error-level diagnostics.
func (l *List) HasErrors() bool {
	return l.hasErrors
}

// Diagnostics returns all collected diagnostics.
func (l *List) Diagnostics() []*Diagnostic {
	return l.diagnostics
}

// First returns the first error-level diagnostic, or nil.
func (l *List) First() *Diagnostic {
	for _, d := range l.diagnostics {
		if d.Severity == Error {
			return d
		}
	}
	return nil
}

// Format formats all diagnostics with their frames.
func (l *List) Format() string {
	var sb strings.Builder
	for _, d := range l.diagnostics {
		sb.WriteString(d.Format())
		sb.WriteByte('\n')
	}
	return sb.String()
}
