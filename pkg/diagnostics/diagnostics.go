// Package diagnostics turns parse failures into source-located reports.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/avdl/pkg/ast"
	"github.com/thomasrohde/avdl/pkg/combinator"
)

// Diagnostic code constants.
const (
	EUnexpected    = "E_UNEXPECTED"
	EUnexpectedEOF = "E_UNEXPECTED_EOF"
	EUnclosed      = "E_UNCLOSED"
	ECustom        = "E_CUSTOM"
	EName          = "E_NAME"
	EIO            = "E_IO"
)

// Label annotates a span of the source.
type Label struct {
	Span    ast.Span `json:"span"`
	Start   Location `json:"start"`
	Message string   `json:"message"`
	Primary bool     `json:"primary"`

	// Token is a suffix of Message highlighted in the label color.
	Token string `json:"-"`
}

// Diagnostic represents one parse or I/O failure.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	File    string    `json:"file,omitempty"`
	Span    *ast.Span `json:"span,omitempty"`
	Start   *Location `json:"start,omitempty"`
	Labels  []Label   `json:"labels,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Code maps a parse error kind to its diagnostic code.
func Code(err *combinator.ParseError) string {
	switch err.Kind() {
	case combinator.Custom:
		return ECustom
	case combinator.UnclosedDelimiter:
		return EUnclosed
	case combinator.UnexpectedEnd:
		return EUnexpectedEOF
	default:
		return EUnexpected
	}
}

// ExpectedDescription renders the expected set of err, or "something else"
// when it is empty.
func ExpectedDescription(err *combinator.ParseError) string {
	if len(err.Expected) == 0 {
		return "something else"
	}
	parts := make([]string, len(err.Expected))
	for i, e := range err.Expected {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Headline is the one-line summary of err.
func Headline(err *combinator.ParseError) string {
	if err.Kind() == combinator.Custom {
		return err.Message
	}
	var b strings.Builder
	if err.HasFound {
		b.WriteString("Unexpected token")
	} else {
		b.WriteString("Unexpected end of input")
	}
	if err.Label != "" {
		b.WriteString(" while parsing ")
		b.WriteString(err.Label)
	}
	b.WriteString(", expected ")
	b.WriteString(ExpectedDescription(err))
	return b.String()
}

// FromParseError converts err into a Diagnostic with locations resolved
// against src.
func FromParseError(err *combinator.ParseError, src *Source) Diagnostic {
	span := err.Span
	start := src.Location(span.Start)
	d := Diagnostic{
		Code:    Code(err),
		Message: Headline(err),
		File:    src.Name,
		Span:    &span,
		Start:   &start,
	}

	primary := Label{Span: span, Start: start, Primary: true}
	switch {
	case err.Kind() == combinator.Custom:
		primary.Message = err.Message
	case err.HasFound:
		primary.Token = string(err.Found)
		primary.Message = "Unexpected token " + primary.Token
	default:
		primary.Message = "Unexpected end of input"
	}
	d.Labels = append(d.Labels, primary)

	if err.Kind() == combinator.UnclosedDelimiter {
		open := src.Location(err.UnclosedSpan.Start)
		delim := string(err.Delimiter)
		d.Labels = append(d.Labels, Label{
			Span:    err.UnclosedSpan,
			Start:   open,
			Message: "Unclosed delimiter " + delim,
			Token:   delim,
		})
		d.Hint = fmt.Sprintf("close the %s opened at %d:%d", delim, open.Line, open.Col)
	}
	return d
}

// AtSpan builds a diagnostic whose primary label covers span of src.
func AtSpan(code, message string, span ast.Span, src *Source, hint string) Diagnostic {
	start := src.Location(span.Start)
	d := MakeDiag(code, message, &span, hint)
	d.File = src.Name
	d.Start = &start
	d.Labels = []Label{{Span: span, Start: start, Message: message, Primary: true}}
	return d
}

// FromParseErrors converts every error of one parse.
func FromParseErrors(errs []*combinator.ParseError, src *Source) []Diagnostic {
	out := make([]Diagnostic, 0, len(errs))
	for _, err := range errs {
		out = append(out, FromParseError(err, src))
	}
	return out
}

// FormatDiagnostics marshals diags as a JSON array. A nil slice is "[]".
func FormatDiagnostics(diags []Diagnostic) string {
	if diags == nil {
		diags = []Diagnostic{}
	}
	b, _ := json.Marshal(diags)
	return string(b)
}

func (d Diagnostic) location() string {
	name := d.File
	if name == "" {
		name = "<unknown>"
	}
	if d.Start == nil {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, d.Start.Line, d.Start.Col)
}
