package combinator

import (
	"github.com/thomasrohde/avdl/pkg/ast"
)

// Pair holds the outputs of two sequenced parsers.
type Pair[A, B any] struct {
	First  A
	Second B
}

// --- Primitives ---

// Just matches the single rune r.
func Just(r rune) Parser[rune] {
	return func(s *State, pos int) (rune, int, *ParseError) {
		c, size := s.peek(pos)
		if size > 0 && c == r {
			return c, pos + size, nil
		}
		return 0, pos, unexpectedAt(s, pos, ExpectRune(r))
	}
}

// Keyword matches word rune by rune. A mismatch is reported at the first
// rune that differs.
func Keyword(word string) Parser[string] {
	return func(s *State, pos int) (string, int, *ParseError) {
		cur := pos
		for _, want := range word {
			c, size := s.peek(cur)
			if size == 0 || c != want {
				return "", pos, unexpectedAt(s, cur, ExpectRune(want))
			}
			cur += size
		}
		return word, cur, nil
	}
}

// Filter matches one rune accepted by pred. Its errors carry no expected set.
func Filter(pred func(rune) bool) Parser[rune] {
	return func(s *State, pos int) (rune, int, *ParseError) {
		c, size := s.peek(pos)
		if size > 0 && pred(c) {
			return c, pos + size, nil
		}
		return 0, pos, unexpectedAt(s, pos)
	}
}

// End succeeds only when no input remains.
func End() Parser[struct{}] {
	return func(s *State, pos int) (struct{}, int, *ParseError) {
		if s.atEnd(pos) {
			return struct{}{}, pos, nil
		}
		return struct{}{}, pos, unexpectedAt(s, pos, ExpectEnd)
	}
}

// --- Sequencing ---

// Then runs a and then b, keeping both outputs.
func Then[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return func(s *State, pos int) (Pair[A, B], int, *ParseError) {
		va, next, err := a(s, pos)
		if err != nil {
			return Pair[A, B]{}, pos, err
		}
		vb, next, err := b(s, next)
		if err != nil {
			return Pair[A, B]{}, pos, err
		}
		return Pair[A, B]{First: va, Second: vb}, next, nil
	}
}

// IgnoreThen runs a and then b, keeping the output of b.
func IgnoreThen[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return Map(Then(a, b), func(p Pair[A, B]) B { return p.Second })
}

// ThenIgnore runs a and then b, keeping the output of a.
func ThenIgnore[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return Map(Then(a, b), func(p Pair[A, B]) A { return p.First })
}

// --- Alternation ---

// Or tries each parser at the same offset and returns the first success.
// When every alternative fails, the error that got furthest is returned.
func Or[T any](alternatives ...Parser[T]) Parser[T] {
	return func(s *State, pos int) (T, int, *ParseError) {
		var best *ParseError
		mark := s.mark()
		for _, p := range alternatives {
			v, next, err := p(s, pos)
			if err == nil {
				return v, next, nil
			}
			s.reset(mark)
			best = furthest(best, err)
		}
		var zero T
		return zero, pos, best
	}
}

// --- Mapping ---

// Map transforms the output of p.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(s *State, pos int) (B, int, *ParseError) {
		v, next, err := p(s, pos)
		if err != nil {
			var zero B
			return zero, pos, err
		}
		return f(v), next, nil
	}
}

// MapWithSpan transforms the output of p together with the span it consumed.
func MapWithSpan[A, B any](p Parser[A], f func(A, ast.Span) B) Parser[B] {
	return func(s *State, pos int) (B, int, *ParseError) {
		v, next, err := p(s, pos)
		if err != nil {
			var zero B
			return zero, pos, err
		}
		return f(v, ast.Span{Start: pos, End: next}), next, nil
	}
}

// MapErr rewrites the error of p. start is the offset p was invoked at.
func MapErr[T any](p Parser[T], f func(err *ParseError, start int) *ParseError) Parser[T] {
	return func(s *State, pos int) (T, int, *ParseError) {
		v, next, err := p(s, pos)
		if err != nil {
			return v, pos, f(err, pos)
		}
		return v, next, nil
	}
}

// Labelled names the rule p for diagnostics. The innermost label wins.
func Labelled[T any](p Parser[T], label string) Parser[T] {
	return func(s *State, pos int) (T, int, *ParseError) {
		v, next, err := p(s, pos)
		if err != nil {
			return v, pos, err.withLabel(label)
		}
		return v, next, nil
	}
}

// --- Delimiters ---

// DelimitedBy parses open, p, close. Running out of input before close is
// reported as an unclosed delimiter pointing back at open.
func DelimitedBy[T any](open, close rune, p Parser[T]) Parser[T] {
	openP, closeP := Just(open), Just(close)
	return func(s *State, pos int) (T, int, *ParseError) {
		var zero T
		_, afterOpen, err := openP(s, pos)
		if err != nil {
			return zero, pos, err
		}
		openSpan := ast.Span{Start: pos, End: afterOpen}

		v, next, err := p(s, afterOpen)
		if err != nil {
			return zero, pos, unclosedIfAtEnd(s, err, openSpan, open)
		}
		_, end, err := closeP(s, next)
		if err != nil {
			return zero, pos, unclosedIfAtEnd(s, err, openSpan, open)
		}
		return v, end, nil
	}
}

func unclosedIfAtEnd(s *State, err *ParseError, openSpan ast.Span, delim rune) *ParseError {
	if err.Reason != ReasonUnexpected || err.HasFound {
		return err
	}
	out := *err
	out.Reason = ReasonUnclosed
	out.UnclosedSpan = openSpan
	out.Delimiter = delim
	out.at = s.Len()
	return &out
}
