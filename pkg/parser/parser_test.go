package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/avdl/pkg/ast"
	"github.com/thomasrohde/avdl/pkg/combinator"
	"github.com/thomasrohde/avdl/pkg/parser"
)

// helper: parse source and assert no errors
func mustParse(t *testing.T, source string) ast.Node {
	t.Helper()
	node, errs := parser.Parse(source)
	require.Empty(t, errs, "unexpected errors for %q", source)
	require.NotNil(t, node)
	return node
}

// helper: parse source and assert exactly one error
func mustFail(t *testing.T, source string) *parser.ParseError {
	t.Helper()
	node, errs := parser.Parse(source)
	require.Nil(t, node, "a failed parse must not return an AST")
	require.Len(t, errs, 1, "expected one error for %q", source)
	return errs[0]
}

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "parse":
				node, errs := parser.Parse(d.Input)
				if len(errs) == 0 {
					return node.String()
				}
				var b strings.Builder
				for _, err := range errs {
					fmt.Fprintf(&b, "%s [%s]\n", err.Error(), expectedList(err))
				}
				return b.String()
			default:
				d.Fatalf(t, "unknown command %q", d.Cmd)
				return ""
			}
		})
	})
}

func expectedList(err *parser.ParseError) string {
	parts := make([]string, len(err.Expected))
	for i, e := range err.Expected {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// ---- Scenarios ----

func TestEmptyProtocol(t *testing.T) {
	node := mustParse(t, "protocol Foo {}")
	want := &ast.Protocol{
		Span:     ast.Span{Start: 0, End: 15},
		Name:     "Foo",
		NameSpan: ast.Span{Start: 9, End: 12},
		Body:     &ast.Empty{Span: ast.Span{Start: 13, End: 15}},
	}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("unexpected AST (-want +got):\n%s", diff)
	}
}

func TestProtocolWithInternalWhitespace(t *testing.T) {
	node := mustParse(t, "protocol Foo { }")
	p, ok := node.(*ast.Protocol)
	require.True(t, ok, "expected *ast.Protocol, got %T", node)
	assert.Equal(t, "Foo", p.Name)
	assert.Equal(t, &ast.Empty{Span: ast.Span{Start: 13, End: 16}}, p.Body)
}

func TestNumericProtocolName(t *testing.T) {
	err := mustFail(t, "protocol 123 {}")
	assert.Equal(t, combinator.UnexpectedToken, err.Kind())
	assert.Equal(t, ast.Span{Start: 9, End: 10}, err.Span)
	assert.Equal(t, '1', err.Found)
	assert.Equal(t, parser.LabelProtocolName, err.Label)
	assert.Empty(t, err.Expected)
}

func TestMissingClosingBrace(t *testing.T) {
	err := mustFail(t, "protocol Foo {")
	assert.Equal(t, combinator.UnclosedDelimiter, err.Kind())
	assert.Equal(t, ast.Span{Start: 13, End: 14}, err.UnclosedSpan)
	assert.Equal(t, '{', err.Delimiter)
	assert.Equal(t, ast.Span{Start: 14, End: 14}, err.Span)
	assert.Equal(t, parser.LabelContent, err.Label)
}

func TestBareComment(t *testing.T) {
	node := mustParse(t, "/* a comment */")
	assert.Equal(t, &ast.Comment{Span: ast.Span{Start: 0, End: 15}}, node)
}

func TestTrailingInput(t *testing.T) {
	err := mustFail(t, "protocol Foo {} extra")
	assert.Equal(t, combinator.UnexpectedToken, err.Kind())
	assert.Equal(t, 16, err.Span.Start)
	assert.Equal(t, 'e', err.Found)
	assert.Equal(t, []combinator.Expected{combinator.ExpectEnd}, err.Expected)
	assert.Empty(t, err.Label)
}

// ---- Properties ----

func TestProtocolWithSurroundingWhitespace(t *testing.T) {
	pads := []string{"", " ", "\n", "\t", " \r\n \t", "\n\n\n"}
	names := []string{"Foo", "_x", "Protocol9", "a_b_c"}

	for _, name := range names {
		for _, outer := range pads {
			for _, inner := range pads {
				source := outer + "protocol " + name + " {" + inner + "}" + outer
				t.Run(fmt.Sprintf("%q", source), func(t *testing.T) {
					node := mustParse(t, source)
					assert.Equal(t, fmt.Sprintf("Protocol(%q, Empty)", name), node.String())
					p := node.(*ast.Protocol)
					assert.Equal(t, name, source[p.NameSpan.Start:p.NameSpan.End])
				})
			}
		}
	}
}

func TestCommentBodies(t *testing.T) {
	bodies := []string{"", " ", "*", "/", " a * b / c ", "\nmulti\nline\n", "protocol Foo {}", "{ unbalanced"}
	for _, body := range bodies {
		source := "/*" + body + "*/"
		t.Run(fmt.Sprintf("%q", source), func(t *testing.T) {
			node := mustParse(t, source)
			assert.Equal(t, "Comment", node.Kind())
		})
	}
}

func TestNonWhitespaceInsideBraces(t *testing.T) {
	for _, content := range []string{"x", " x", "x ", "record Foo {}", "  ;", "/* c */"} {
		source := "protocol Foo {" + content + "}"
		t.Run(fmt.Sprintf("%q", source), func(t *testing.T) {
			err := mustFail(t, source)
			assert.Equal(t, combinator.UnexpectedToken, err.Kind())
			open := strings.Index(source, "{")
			assert.Greater(t, err.Span.Start, open)
			assert.Less(t, err.Span.Start, len(source))
			assert.Equal(t, []combinator.Expected{combinator.ExpectRune('}')}, err.Expected)
		})
	}
}

func TestUnclosedBracePointsAtOpener(t *testing.T) {
	for _, source := range []string{"protocol Foo {", "protocol Foo {   ", "protocol Foo\n{\n\n", "  protocol Foo{"} {
		t.Run(fmt.Sprintf("%q", source), func(t *testing.T) {
			err := mustFail(t, source)
			require.Equal(t, combinator.UnclosedDelimiter, err.Kind())
			assert.Equal(t, "{", source[err.UnclosedSpan.Start:err.UnclosedSpan.End])
			assert.Equal(t, len(source), err.Span.Start)
		})
	}
}

func TestUnterminatedComment(t *testing.T) {
	err := mustFail(t, "/* never closed")
	assert.Equal(t, combinator.Custom, err.Kind())
	assert.Equal(t, parser.MsgUnterminatedComment, err.Message)
	assert.Equal(t, ast.Span{Start: 0, End: 15}, err.Span)
}

func TestCommentOpenerIsMandatory(t *testing.T) {
	err := mustFail(t, "a comment */")
	assert.Equal(t, 0, err.Span.Start)
	assert.Equal(t, []combinator.Expected{combinator.ExpectRune('/'), combinator.ExpectRune('p')}, err.Expected)
}

func TestEmptyInput(t *testing.T) {
	err := mustFail(t, "")
	assert.Equal(t, combinator.UnexpectedEnd, err.Kind())

	err = mustFail(t, "   \n  ")
	assert.Equal(t, combinator.UnexpectedEnd, err.Kind())
	assert.Equal(t, 6, err.Span.Start)
}

func TestParseIsIdempotent(t *testing.T) {
	sources := []string{
		"protocol Foo {}",
		"/* c */",
		"protocol 123 {}",
		"protocol Foo {",
		"protocol Foo {} extra",
		"",
	}
	opts := cmpopts.IgnoreUnexported(combinator.ParseError{})

	for _, source := range sources {
		t.Run(fmt.Sprintf("%q", source), func(t *testing.T) {
			n1, e1 := parser.Parse(source)
			n2, e2 := parser.Parse(source)
			if diff := cmp.Diff(n1, n2); diff != "" {
				t.Errorf("AST differs between parses:\n%s", diff)
			}
			if diff := cmp.Diff(e1, e2, opts); diff != "" {
				t.Errorf("errors differ between parses:\n%s", diff)
			}
		})
	}
}
