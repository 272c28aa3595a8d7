package combinator

import (
	"unicode"
)

// Whitespace consumes zero or more whitespace runes, newlines included. It
// never fails.
func Whitespace() Parser[struct{}] {
	return func(s *State, pos int) (struct{}, int, *ParseError) {
		for {
			c, size := s.peek(pos)
			if size == 0 || !unicode.IsSpace(c) {
				return struct{}{}, pos, nil
			}
			pos += size
		}
	}
}

// Padded skips whitespace before and after p.
func Padded[T any](p Parser[T]) Parser[T] {
	return IgnoreThen(Whitespace(), ThenIgnore(p, Whitespace()))
}

// Ident matches an ASCII identifier: a letter or underscore followed by
// letters, digits or underscores.
func Ident() Parser[string] {
	first := Filter(isASCIIAlpha)
	return func(s *State, pos int) (string, int, *ParseError) {
		_, next, err := first(s, pos)
		if err != nil {
			return "", pos, err
		}
		for {
			c, size := s.peek(next)
			if size == 0 || !isASCIIAlphaNumeric(c) {
				break
			}
			next += size
		}
		return s.source[pos:next], next, nil
	}
}

// TakeUntil consumes input up to and including the first match of end,
// returning the text before it. Reaching the end of input without a match
// returns the error of end.
func TakeUntil[T any](end Parser[T]) Parser[string] {
	return func(s *State, pos int) (string, int, *ParseError) {
		cur := pos
		for {
			_, next, err := end(s, cur)
			if err == nil {
				return s.source[pos:cur], next, nil
			}
			if s.atEnd(cur) {
				return "", pos, err
			}
			cur = s.advance(cur)
		}
	}
}

// Recover wraps p with skip-then-retry recovery: when p fails, the parser
// skips one rune at a time and retries p until it succeeds or the input is
// exhausted. A successful retry records the original error on the State and
// returns the retried value; otherwise the original error is returned.
// Recoveries recorded inside a branch that later fails are discarded by Or.
func Recover[T any](p Parser[T]) Parser[T] {
	return func(s *State, pos int) (T, int, *ParseError) {
		mark := s.mark()
		v, next, err := p(s, pos)
		if err == nil {
			return v, next, nil
		}
		s.reset(mark)
		for cur := pos; !s.atEnd(cur); {
			cur = s.advance(cur)
			rv, rnext, rerr := p(s, cur)
			if rerr == nil {
				s.recover(err)
				return rv, rnext, nil
			}
			s.reset(mark)
		}
		return v, pos, err
	}
}
