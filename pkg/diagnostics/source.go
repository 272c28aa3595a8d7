package diagnostics

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Location is a 1-based line and column. Columns count runes, not bytes.
type Location struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Source is a named source buffer with a line index.
type Source struct {
	Name string
	Text string

	lineStarts []int
}

// NewSource indexes text for offset-to-location lookups.
func NewSource(name, text string) *Source {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Source{Name: name, Text: text, lineStarts: starts}
}

// LineCount returns the number of lines, counting a final line after a
// trailing newline.
func (s *Source) LineCount() int {
	return len(s.lineStarts)
}

// Location resolves a byte offset. Offsets are clamped to the buffer.
func (s *Source) Location(offset int) Location {
	offset = s.clamp(offset)
	idx := sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
	col := utf8.RuneCountInString(s.Text[s.lineStarts[idx]:offset]) + 1
	return Location{Line: idx + 1, Col: col}
}

// Line returns line n (1-based) without its line terminator.
func (s *Source) Line(n int) string {
	if n < 1 || n > s.LineCount() {
		return ""
	}
	start := s.lineStarts[n-1]
	end := len(s.Text)
	if n < s.LineCount() {
		end = s.lineStarts[n] - 1
	}
	return strings.TrimSuffix(s.Text[start:end], "\r")
}

func (s *Source) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(s.Text) {
		return len(s.Text)
	}
	return offset
}
