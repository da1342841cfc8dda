package sourcemap

import (
	"testing"
)

// ----------------------------------------------------------------------------
// LineIndex Tests
// ----------------------------------------------------------------------------

func TestLineIndexLineCount(t *testing.T) {
	cases := []struct {
		source string
		want   int
	}{
		{"", 1},
		{"a", 1},
		{"a\nb", 2},
		{"a\n", 2},
		{"a\r\nb\rc", 3},
	}
	for _, c := range cases {
		if got := NewLineIndex(c.source).LineCount(); got != c.want {
			t.Errorf("LineCount(%q) = %d, want %d", c.source, got, c.want)
		}
	}
}

func TestByteOffsetToLineColumn(t *testing.T) {
	idx := NewLineIndex("const a = 1;\nlet b;\r\nc()")
	cases := []struct {
		offset    int
		line, col int
	}{
		{0, 0, 0},
		{6, 0, 6},
		{12, 0, 12},
		{13, 1, 0},
		{17, 1, 4},
		{21, 2, 0},
		{23, 2, 2},
		{-5, 0, 0},
		{1000, 2, 3},
	}
	for _, c := range cases {
		line, col := idx.ByteOffsetToLineColumn(c.offset)
		if line != c.line || col != c.col {
			t.Errorf("offset %d: got %d:%d, want %d:%d", c.offset, line, col, c.line, c.col)
		}
	}
}

func TestByteOffsetToLineColumnUTF16(t *testing.T) {
	// "é" is 2 bytes and 1 unit; the emoji is 4 bytes and 2 units
	src := "é😀x"
	idx := NewLineIndex(src)
	cases := []struct {
		offset int
		col    int
	}{
		{0, 0},
		{2, 1},
		{6, 3},
		{7, 4},
	}
	for _, c := range cases {
		_, col := idx.ByteOffsetToLineColumnUTF16(c.offset)
		if col != c.col {
			t.Errorf("offset %d: UTF-16 column = %d, want %d", c.offset, col, c.col)
		}
	}
}

func TestLineColumnToByteOffset(t *testing.T) {
	idx := NewLineIndex("ab\ncd")
	cases := []struct {
		line, col int
		want      int
	}{
		{0, 0, 0},
		{1, 1, 4},
		{-1, 1, 1},
		{9, 0, 3},
		{1, 99, 5},
		{0, -9, 0},
	}
	for _, c := range cases {
		if got := idx.LineColumnToByteOffset(c.line, c.col); got != c.want {
			t.Errorf("LineColumnToByteOffset(%d, %d) = %d, want %d", c.line, c.col, got, c.want)
		}
	}
}

func TestLineText(t *testing.T) {
	idx := NewLineIndex("first\r\nsecond\nthird")
	for i, want := range []string{"first", "second", "third", ""} {
		if got := idx.LineText(i); got != want {
			t.Errorf("LineText(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestUTF16Len(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"abc":   3,
		"日本":    2,
		"😀":     2,
		"\xff": 1,
	}
	for s, want := range cases {
		if got := UTF16Len(s); got != want {
			t.Errorf("UTF16Len(%q) = %d, want %d", s, got, want)
		}
	}
}

func BenchmarkByteOffsetToLineColumn(b *testing.B) {
	src := ""
	for i := 0; i < 1000; i++ {
		src += "export const value = serverOnly$(load);\n"
	}
	idx := NewLineIndex(src)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.ByteOffsetToLineColumn(i % len(src))
	}
}
