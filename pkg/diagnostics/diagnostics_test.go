package diagnostics_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/thomasrohde/avdl/pkg/ast"
	"github.com/thomasrohde/avdl/pkg/diagnostics"
	"github.com/thomasrohde/avdl/pkg/parser"
)

// helper: parse source and convert its errors
func diagsFor(t *testing.T, name, source string) (*diagnostics.Source, []diagnostics.Diagnostic) {
	t.Helper()
	_, errs := parser.Parse(source)
	if len(errs) == 0 {
		t.Fatalf("expected parse errors for %q", source)
	}
	src := diagnostics.NewSource(name, source)
	return src, diagnostics.FromParseErrors(errs, src)
}

func TestMakeDiag(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EIO, "cannot read file", nil, "check the path")

	if d.Code != diagnostics.EIO {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EIO)
	}
	if d.Hint != "check the path" {
		t.Errorf("got Hint = %q", d.Hint)
	}
}

func TestHeadlines(t *testing.T) {
	tests := []struct {
		source string
		code   string
		want   string
	}{
		{"protocol 123 {}", diagnostics.EUnexpected, "Unexpected token while parsing protocol name, expected something else"},
		{"protocol Foo {", diagnostics.EUnclosed, "Unexpected end of input while parsing content, expected '}'"},
		{"protocol Foo {} extra", diagnostics.EUnexpected, "Unexpected token, expected end of input"},
		{"protocol Foo", diagnostics.EUnexpectedEOF, "Unexpected end of input while parsing content, expected '{'"},
		{"", diagnostics.EUnexpectedEOF, "Unexpected end of input, expected '/', 'p'"},
		{"/* open", diagnostics.ECustom, "Unterminated block comment"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, diags := diagsFor(t, "x.avdl", tt.source)
			if len(diags) != 1 {
				t.Fatalf("got %d diagnostics, want 1", len(diags))
			}
			if diags[0].Code != tt.code {
				t.Errorf("got code %q, want %q", diags[0].Code, tt.code)
			}
			if diags[0].Message != tt.want {
				t.Errorf("got headline %q, want %q", diags[0].Message, tt.want)
			}
		})
	}
}

func TestLabels(t *testing.T) {
	_, diags := diagsFor(t, "x.avdl", "protocol Foo {")
	labels := diags[0].Labels
	if len(labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(labels))
	}
	if !labels[0].Primary || labels[0].Message != "Unexpected end of input" {
		t.Errorf("unexpected primary label: %+v", labels[0])
	}
	if labels[1].Primary || labels[1].Message != "Unclosed delimiter {" {
		t.Errorf("unexpected secondary label: %+v", labels[1])
	}
	if labels[1].Span != (ast.Span{Start: 13, End: 14}) {
		t.Errorf("secondary label span = %s, want 13..14", labels[1].Span)
	}

	_, diags = diagsFor(t, "x.avdl", "protocol Foo { x }")
	if got := diags[0].Labels[0].Message; got != "Unexpected token x" {
		t.Errorf("got primary label %q", got)
	}
}

func TestRenderUnclosed(t *testing.T) {
	src, diags := diagsFor(t, "foo.avdl", "protocol Foo {")
	got := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(diags[0], src)
	want := strings.Join([]string{
		"error[E_UNCLOSED]: Unexpected end of input while parsing content, expected '}'",
		" --> foo.avdl:1:15",
		"  |",
		"1 | protocol Foo {",
		"  |               ^ Unexpected end of input",
		"  |              - Unclosed delimiter {",
		"  |",
		"  = hint: close the { opened at 1:14",
		"",
	}, "\n")
	if got != want {
		t.Errorf("render mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderElidesSkippedLines(t *testing.T) {
	src, diags := diagsFor(t, "open.avdl", "protocol Foo {\n\n")
	got := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(diags[0], src)
	want := strings.Join([]string{
		"error[E_UNCLOSED]: Unexpected end of input while parsing content, expected '}'",
		" --> open.avdl:3:1",
		"  |",
		"1 | protocol Foo {",
		"  |              - Unclosed delimiter {",
		"...",
		"3 | ",
		"  | ^ Unexpected end of input",
		"  |",
		"  = hint: close the { opened at 1:14",
		"",
	}, "\n")
	if got != want {
		t.Errorf("render mismatch\n got:\n%s\nwant:\n%s", got, want)
	}

	src, diags = diagsFor(t, "open.avdl", "protocol Foo {\n")
	got = diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(diags[0], src)
	if strings.Contains(got, "...") {
		t.Errorf("adjacent lines must not be elided, got:\n%s", got)
	}
}

func TestRenderUnexpectedToken(t *testing.T) {
	src, diags := diagsFor(t, "in.avdl", "protocol 123 {}")
	got := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(diags[0], src)
	want := strings.Join([]string{
		"error[E_UNEXPECTED]: Unexpected token while parsing protocol name, expected something else",
		" --> in.avdl:1:10",
		"  |",
		"1 | protocol 123 {}",
		"  |          ^ Unexpected token 1",
		"  |",
		"",
	}, "\n")
	if got != want {
		t.Errorf("render mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderMultiLineSpan(t *testing.T) {
	src, diags := diagsFor(t, "c.avdl", "/* a\nb")
	got := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(diags[0], src)
	if !strings.Contains(got, "1 | /* a\n  | ^^^^ Unterminated block comment\n") {
		t.Errorf("expected underline to end of first line, got:\n%s", got)
	}
}

func TestRenderLaterLine(t *testing.T) {
	source := "\n\n\n\n\n\n\n\n\nprotocol Foo {\n  bad\n}"
	src, diags := diagsFor(t, "deep.avdl", source)
	got := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(diags[0], src)
	for _, part := range []string{" --> deep.avdl:11:3", "11 |   bad", "   |   ^ Unexpected token b"} {
		if !strings.Contains(got, part) {
			t.Errorf("expected %q in output, got:\n%s", part, got)
		}
	}
}

func TestRenderColor(t *testing.T) {
	src, diags := diagsFor(t, "foo.avdl", "protocol Foo {")
	colored := diagnostics.NewRenderer(diagnostics.FormatPretty, true).Render(diags[0], src)
	if !strings.Contains(colored, "\x1b[") {
		t.Errorf("expected ANSI escapes in colored output, got: %q", colored)
	}
	plain := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(diags[0], src)
	if strings.Contains(plain, "\x1b[") {
		t.Errorf("expected no ANSI escapes, got: %q", plain)
	}
}

func TestRenderWithoutSource(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EIO, "cannot read file", nil, "check the path")
	d.File = "missing.avdl"

	got := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Render(d, nil)
	want := "error[E_IO]: cannot read file\n" +
		"  --> missing.avdl\n" +
		"  = hint: check the path\n"
	if got != want {
		t.Errorf("Render() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatDiagnosticsJSON(t *testing.T) {
	_, diags := diagsFor(t, "foo.avdl", "protocol Foo {")
	out := diagnostics.FormatDiagnostics(diags)

	checks := map[string]string{
		"0.code":              "E_UNCLOSED",
		"0.file":              "foo.avdl",
		"0.start.line":        "1",
		"0.start.col":         "15",
		"0.span.start":        "14",
		"0.labels.#":          "2",
		"0.labels.0.primary":  "true",
		"0.labels.1.message":  "Unclosed delimiter {",
		"0.labels.1.span.end": "14",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s = %q, want %q (json: %s)", path, got, want, out)
		}
	}

	if got := diagnostics.FormatDiagnostics(nil); got != "[]" {
		t.Errorf("empty list = %q, want []", got)
	}
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestWritePropagatesWriterErrors(t *testing.T) {
	src, diags := diagsFor(t, "foo.avdl", "protocol Foo {")
	for _, format := range []diagnostics.Format{diagnostics.FormatPretty, diagnostics.FormatJSON} {
		err := diagnostics.NewRenderer(format, false).Write(failingWriter{}, src, diags)
		if !errors.Is(err, errWrite) {
			t.Errorf("%s: got %v, want %v", format, err, errWrite)
		}
	}
}

func TestWriteAllReports(t *testing.T) {
	src := diagnostics.NewSource("x.avdl", "protocol Foo {")
	var diags []diagnostics.Diagnostic
	_, errs := parser.Parse("protocol Foo {")
	diags = append(diags, diagnostics.FromParseErrors(errs, src)...)
	diags = append(diags, diagnostics.FromParseErrors(errs, src)...)

	var b strings.Builder
	if err := diagnostics.NewRenderer(diagnostics.FormatPretty, false).Write(&b, src, diags); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(b.String(), "error[E_UNCLOSED]"); n != 2 {
		t.Errorf("got %d reports, want 2", n)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := diagnostics.ParseFormat("JSON"); err != nil || f != diagnostics.FormatJSON {
		t.Errorf("ParseFormat(JSON) = %q, %v", f, err)
	}
	if _, err := diagnostics.ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSourceLocation(t *testing.T) {
	src := diagnostics.NewSource("x", "ab\r\ncé\n")
	tests := []struct {
		offset int
		want   diagnostics.Location
	}{
		{0, diagnostics.Location{Line: 1, Col: 1}},
		{2, diagnostics.Location{Line: 1, Col: 3}},
		{4, diagnostics.Location{Line: 2, Col: 1}},
		{7, diagnostics.Location{Line: 2, Col: 3}},
		{8, diagnostics.Location{Line: 3, Col: 1}},
		{100, diagnostics.Location{Line: 3, Col: 1}},
		{-1, diagnostics.Location{Line: 1, Col: 1}},
	}
	for _, tt := range tests {
		if got := src.Location(tt.offset); got != tt.want {
			t.Errorf("Location(%d) = %+v, want %+v", tt.offset, got, tt.want)
		}
	}
	if got := src.Line(1); got != "ab" {
		t.Errorf("Line(1) = %q, want %q", got, "ab")
	}
	if got := src.Line(2); got != "cé" {
		t.Errorf("Line(2) = %q", got)
	}
	if src.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", src.LineCount())
	}
}
