// Package formatter implements the AVDL source code formatter.
package formatter

import (
	"strings"

	"github.com/thomasrohde/avdl/pkg/ast"
)

// Format pretty-prints an AVDL AST back to source code. Comment text is not
// kept by the parser, so a comment document prints as an empty comment.
// Protocol bodies hold no declarations yet and print as an empty block.
func Format(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Protocol:
		return "protocol " + n.Name + " {\n}\n"
	case *ast.Comment:
		return "/* */\n"
	}
	return ""
}

// HasComments reports whether source contains a block comment opener.
// Formatting drops comment text, so callers warn when this is true.
func HasComments(source string) bool {
	return strings.Contains(source, "/*")
}
