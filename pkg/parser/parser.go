// Package parser implements the AVDL protocol parser.
//
// The grammar accepts a single protocol declaration with a whitespace-only
// body, or a single block comment:
//
//	document = ws ( protocol | comment ) ws EOF
//	protocol = "protocol" ws ident ws "{" ws "}"
//	comment  = "/*" { any } "*/"
//	ident    = ( letter | "_" ) { letter | digit | "_" }
package parser

import (
	"github.com/thomasrohde/avdl/pkg/ast"
	c "github.com/thomasrohde/avdl/pkg/combinator"
)

// ParseError is the error type produced by Parse.
type ParseError = c.ParseError

// Rule labels used in diagnostics.
const (
	LabelProtocol     = "protocol"
	LabelProtocolName = "protocol name"
	LabelContent      = "content"
	LabelComment      = "comment"
)

// MsgUnterminatedComment is reported for a block comment missing its "*/".
const MsgUnterminatedComment = "Unterminated block comment"

type protocolName struct {
	name string
	span ast.Span
}

func body() c.Parser[ast.Node] {
	empty := c.MapWithSpan(
		c.DelimitedBy('{', '}', c.Whitespace()),
		func(_ struct{}, span ast.Span) ast.Node { return &ast.Empty{Span: span} },
	)
	return c.Labelled(empty, LabelContent)
}

func blockComment() c.Parser[ast.Node] {
	scan := c.IgnoreThen(c.Keyword("/*"), c.TakeUntil(c.Keyword("*/")))

	// Past the opener, running out of input means the comment never closed.
	scan = c.MapErr(scan, func(err *ParseError, start int) *ParseError {
		if err.Kind() == c.UnexpectedEnd && err.Span.Start > start+1 {
			return c.NewCustom(ast.Span{Start: start, End: err.Span.End}, MsgUnterminatedComment)
		}
		return err
	})

	comment := c.MapWithSpan(scan, func(_ string, span ast.Span) ast.Node {
		return &ast.Comment{Span: span}
	})
	return c.Labelled(c.Padded(comment), LabelComment)
}

func protocol() c.Parser[ast.Node] {
	name := c.Labelled(
		c.IgnoreThen(c.Whitespace(), c.ThenIgnore(
			c.MapWithSpan(c.Ident(), func(n string, span ast.Span) protocolName {
				return protocolName{name: n, span: span}
			}),
			c.Whitespace(),
		)),
		LabelProtocolName,
	)

	decl := c.MapWithSpan(
		c.IgnoreThen(c.Keyword("protocol"), c.Then(name, body())),
		func(p c.Pair[protocolName, ast.Node], span ast.Span) ast.Node {
			return ast.NewProtocol(span, p.First.name, p.First.span, p.Second)
		},
	)
	return c.Labelled(c.Padded(decl), LabelProtocol)
}

// document is the entry rule: a protocol or a comment, then end of input.
// End of input is checked with skip-then-retry recovery so trailing input
// yields exactly one "expected end of input" error.
func document() c.Parser[ast.Node] {
	return c.ThenIgnore(c.Or(protocol(), blockComment()), c.Recover(c.End()))
}

var grammar = document()

// Parse parses source into an AST. It returns either the AST or a non-empty
// list of errors, never both. The whole buffer is parsed, so error spans
// index directly into source.
func Parse(source string) (ast.Node, []*ParseError) {
	return c.Parse(grammar, source)
}
