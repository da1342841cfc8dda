package sourcemap

import (
	"sort"
	"unicode/utf8"
)

// LineIndex converts byte offsets into line/column pairs. Line starts are
// computed once so every lookup is a binary search.
type LineIndex struct {
	source     string
	lineStarts []int
}

// NewLineIndex creates a LineIndex for source. "\n", "\r\n", and a lone
// "\r" all end a line.
func NewLineIndex(source string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{source: source, lineStarts: starts}
}

// LineCount returns the number of lines in the source. A trailing newline
// starts a final, empty line.
func (idx *LineIndex) LineCount() int {
	return len(idx.lineStarts)
}

// lineOf returns the 0-indexed line containing the clamped offset.
func (idx *LineIndex) lineOf(offset int) (line, clamped int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(idx.source) {
		offset = len(idx.source)
	}
	line = sort.SearchInts(idx.lineStarts, offset+1) - 1
	if line < 0 {
		line = 0
	}
	return line, offset
}

// ByteOffsetToLineColumn converts a byte offset to a 0-indexed line and a
// 0-indexed byte column.
func (idx *LineIndex) ByteOffsetToLineColumn(offset int) (line, col int) {
	line, offset = idx.lineOf(offset)
	return line, offset - idx.lineStarts[line]
}

// ByteOffsetToLineColumnUTF16 converts a byte offset to a 0-indexed line
// and a column counted in UTF-16 code units, as source maps require.
func (idx *LineIndex) ByteOffsetToLineColumnUTF16(offset int) (line, col int) {
	line, offset = idx.lineOf(offset)
	return line, UTF16Len(idx.source[idx.lineStarts[line]:offset])
}

// LineColumnToByteOffset converts a 0-indexed line and byte column back to
// a byte offset, clamped to the source.
func (idx *LineIndex) LineColumnToByteOffset(line, col int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(idx.lineStarts) {
		line = len(idx.lineStarts) - 1
	}
	offset := idx.lineStarts[line] + col
	if offset < 0 {
		return 0
	}
	if offset > len(idx.source) {
		return len(idx.source)
	}
	return offset
}

// LineText returns the text of the 0-indexed line without its terminator.
func (idx *LineIndex) LineText(line int) string {
	if line < 0 || line >= len(idx.lineStarts) {
		return ""
	}
	start := idx.lineStarts[line]
	end := len(idx.source)
	if line+1 < len(idx.lineStarts) {
		end = idx.lineStarts[line+1]
	}
	text := idx.source[start:end]
	for len(text) > 0 && (text[len(text)-1] == '\n' || text[len(text)-1] == '\r') {
		text = text[:len(text)-1]
	}
	return text
}

// UTF16Len returns the length of s in UTF-16 code units. Invalid bytes
// count as one unit each.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 && r <= utf8.MaxRune {
			n += 2
		} else {
			n++
		}
	}
	return n
}
