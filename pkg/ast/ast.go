// Package ast defines the AVDL AST node types.
package ast

import (
	"fmt"
	"strconv"
)

// Span represents a half-open byte range [Start, End) into the source buffer.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Node is the interface implemented by all AST nodes. The set of node
// types is closed: Protocol, Empty and Comment.
type Node interface {
	Kind() string
	NodeSpan() Span
	String() string
	avdlNode() // sealed marker
}

// Protocol is a named protocol declaration. Body is never nil.
type Protocol struct {
	Span     Span
	Name     string
	NameSpan Span
	Body     Node
}

func (n *Protocol) Kind() string   { return "Protocol" }
func (n *Protocol) NodeSpan() Span { return n.Span }
func (n *Protocol) avdlNode()      {}

func (n *Protocol) String() string {
	body := "<nil>"
	if n.Body != nil {
		body = n.Body.String()
	}
	return fmt.Sprintf("Protocol(%s, %s)", strconv.Quote(n.Name), body)
}

// Empty is the result of a body with no recognized content.
type Empty struct {
	Span Span
}

func (n *Empty) Kind() string   { return "Empty" }
func (n *Empty) NodeSpan() Span { return n.Span }
func (n *Empty) String() string { return "Empty" }
func (n *Empty) avdlNode()      {}

// Comment is a recognized block comment. Its text is not retained.
type Comment struct {
	Span Span
}

func (n *Comment) Kind() string   { return "Comment" }
func (n *Comment) NodeSpan() Span { return n.Span }
func (n *Comment) String() string { return "Comment" }
func (n *Comment) avdlNode()      {}

// NewProtocol builds a Protocol node, substituting an Empty body when body
// is nil so the node never carries an absent body.
func NewProtocol(span Span, name string, nameSpan Span, body Node) *Protocol {
	if body == nil {
		body = &Empty{Span: Span{Start: span.End, End: span.End}}
	}
	return &Protocol{Span: span, Name: name, NameSpan: nameSpan, Body: body}
}
