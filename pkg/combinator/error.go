package combinator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/thomasrohde/avdl/pkg/ast"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	UnexpectedEnd
	UnclosedDelimiter
	Custom
)

var errorKindNames = [...]string{
	UnexpectedToken:   "unexpected token",
	UnexpectedEnd:     "unexpected end of input",
	UnclosedDelimiter: "unclosed delimiter",
	Custom:            "custom",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Reason is the specific cause attached to a ParseError.
type Reason int

const (
	ReasonUnexpected Reason = iota
	ReasonUnclosed
	ReasonCustom
)

// Expected is one entry of an expected set: either a rune or the end of input.
type Expected struct {
	Rune rune
	EOF  bool
}

// ExpectRune returns the expected-set entry for r.
func ExpectRune(r rune) Expected {
	return Expected{Rune: r}
}

// ExpectEnd is the expected-set entry meaning "no more input".
var ExpectEnd = Expected{EOF: true}

func (e Expected) String() string {
	if e.EOF {
		return "end of input"
	}
	return strconv.QuoteRune(e.Rune)
}

// ParseError describes why a parser failed.
type ParseError struct {
	Span     ast.Span
	Reason   Reason
	Found    rune
	HasFound bool
	// Expected is sorted: runes ascending, end of input last.
	Expected []Expected
	Label    string

	// Set when Reason is ReasonUnclosed.
	UnclosedSpan ast.Span
	Delimiter    rune

	// Set when Reason is ReasonCustom.
	Message string

	// at is the offset used to pick between alternatives.
	at int
}

// Kind classifies the error into exactly one ErrorKind.
func (e *ParseError) Kind() ErrorKind {
	switch {
	case e.Reason == ReasonCustom:
		return Custom
	case e.Reason == ReasonUnclosed:
		return UnclosedDelimiter
	case e.HasFound:
		return UnexpectedToken
	default:
		return UnexpectedEnd
	}
}

func (e *ParseError) Error() string {
	if e.Reason == ReasonCustom {
		return fmt.Sprintf("%s at %s", e.Message, e.Span)
	}

	var b strings.Builder
	if e.HasFound {
		fmt.Fprintf(&b, "unexpected token %s at %s", strconv.QuoteRune(e.Found), e.Span)
	} else {
		fmt.Fprintf(&b, "unexpected end of input at %s", e.Span)
	}
	if e.Label != "" {
		fmt.Fprintf(&b, " while parsing %s", e.Label)
	}
	if e.Reason == ReasonUnclosed {
		fmt.Fprintf(&b, " (unclosed %s at %s)", strconv.QuoteRune(e.Delimiter), e.UnclosedSpan)
	}
	return b.String()
}

// NewCustom returns a custom error covering span. Custom errors rank at the
// end of their span when alternatives are compared.
func NewCustom(span ast.Span, message string) *ParseError {
	return &ParseError{Span: span, Reason: ReasonCustom, Message: message, at: span.End}
}

// unexpectedAt builds the error for the input found at pos.
func unexpectedAt(s *State, pos int, expected ...Expected) *ParseError {
	r, size := s.peek(pos)
	e := &ParseError{
		Span:     ast.Span{Start: pos, End: pos + size},
		Expected: normalizeExpected(expected),
		at:       pos,
	}
	if size > 0 {
		e.Found = r
		e.HasFound = true
	}
	return e
}

func (e *ParseError) withLabel(label string) *ParseError {
	if e.Label != "" {
		return e
	}
	out := *e
	out.Label = label
	return &out
}

func (e *ParseError) merge(o *ParseError) *ParseError {
	out := *e
	out.Expected = normalizeExpected(append(append([]Expected(nil), e.Expected...), o.Expected...))
	if e.Label != o.Label {
		out.Label = ""
	}
	return &out
}

// furthest picks the error that got further into the input. Two unexpected
// errors at the same offset are merged; otherwise an unclosed or custom error
// is preferred over a plain unexpected one, and the first error wins ties.
func furthest(a, b *ParseError) *ParseError {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.at > a.at:
		return b
	case b.at < a.at:
		return a
	}
	if a.Reason == ReasonUnexpected && b.Reason == ReasonUnexpected {
		return a.merge(b)
	}
	if a.Reason == ReasonUnexpected {
		return b
	}
	return a
}

func normalizeExpected(in []Expected) []Expected {
	if len(in) == 0 {
		return nil
	}
	out := make([]Expected, 0, len(in))
	seen := make(map[Expected]bool, len(in))
	for _, e := range in {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EOF != out[j].EOF {
			return !out[i].EOF
		}
		return out[i].Rune < out[j].Rune
	})
	return out
}
