// Package combinator implements a small parser-combinator engine over UTF-8
// source text. Parsers are plain functions; every failure is a *ParseError
// value carrying the byte span it refers to.
package combinator

import (
	"unicode/utf8"
)

// State is the per-parse input. A State is never shared between parses.
type State struct {
	source    string
	recovered []*ParseError
}

// NewState returns a State over source.
func NewState(source string) *State {
	return &State{source: source}
}

// Len returns the length of the input in bytes.
func (s *State) Len() int {
	return len(s.source)
}

func (s *State) atEnd(pos int) bool {
	return pos >= len(s.source)
}

// peek decodes the rune at pos. size is 0 at end of input.
func (s *State) peek(pos int) (rune, int) {
	if s.atEnd(pos) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s.source[pos:])
}

// advance returns the offset just past the rune at pos.
func (s *State) advance(pos int) int {
	_, size := s.peek(pos)
	return pos + size
}

func (s *State) recover(err *ParseError) {
	s.recovered = append(s.recovered, err)
}

// mark and reset let a failing branch drop the recoveries it recorded.
func (s *State) mark() int {
	return len(s.recovered)
}

func (s *State) reset(mark int) {
	s.recovered = s.recovered[:mark]
}

// Recovered returns the errors recorded by recovering parsers so far.
func (s *State) Recovered() []*ParseError {
	return s.recovered
}

// Parser consumes input starting at pos. On success it returns the value and
// the offset just past the consumed input; on failure it returns a non-nil
// error and pos unchanged.
type Parser[T any] func(s *State, pos int) (T, int, *ParseError)

// Parse runs p over the whole of source. It returns either the value or a
// non-empty list of errors, never both.
func Parse[T any](p Parser[T], source string) (T, []*ParseError) {
	s := NewState(source)
	v, _, err := p(s, 0)

	errs := append([]*ParseError(nil), s.Recovered()...)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		var zero T
		return zero, errs
	}
	return v, nil
}

func isASCIIAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIIAlphaNumeric(ch rune) bool {
	return isASCIIAlpha(ch) || isDigit(ch)
}
