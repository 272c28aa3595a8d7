// Package protocol serializes a parsed AVDL document to an Avro protocol
// (.avpr) JSON document.
package protocol

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/linkedin/goavro/v2"

	"github.com/thomasrohde/avdl/pkg/ast"
)

// ErrNoProtocol is returned for documents that declare no protocol, such as
// a bare comment.
var ErrNoProtocol = errors.New("document declares no protocol")

// ErrReservedName is returned for protocol names that Avro already uses for
// its own types.
var ErrReservedName = errors.New("name is reserved by Avro")

// complexTypes are the type keywords of Avro schemas and protocols. goavro
// does not resolve them as bare type names.
var complexTypes = map[string]bool{
	"record": true,
	"error":  true,
	"enum":   true,
	"array":  true,
	"map":    true,
	"fixed":  true,
}

// Document is an Avro protocol declaration. Field order matches the order
// Avro tooling emits.
type Document struct {
	Protocol string                     `json:"protocol"`
	Types    []json.RawMessage          `json:"types"`
	Messages map[string]json.RawMessage `json:"messages"`
}

// FromAST builds the protocol document for node.
func FromAST(node ast.Node) (*Document, error) {
	p, ok := node.(*ast.Protocol)
	if !ok {
		if node == nil {
			return nil, errors.AssertionFailedf("nil AST")
		}
		return nil, errors.Wrapf(ErrNoProtocol, "top-level node is %s", node.Kind())
	}
	if err := CheckName(p.Name); err != nil {
		return nil, err
	}
	return &Document{
		Protocol: p.Name,
		Types:    []json.RawMessage{},
		Messages: map[string]json.RawMessage{},
	}, nil
}

// ToJSON marshals node as a compact Avro protocol document.
func ToJSON(node ast.Node) ([]byte, error) {
	doc, err := FromAST(node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ToJSONIndent is like ToJSON but indents with two spaces.
func ToJSONIndent(node ast.Node) ([]byte, error) {
	doc, err := FromAST(node)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// CheckName reports whether name may name an Avro protocol. The name must
// not resolve to a built-in type and must compile as the name of an empty
// record schema.
func CheckName(name string) error {
	quoted, err := json.Marshal(name)
	if err != nil {
		return errors.Wrapf(err, "quoting %q", name)
	}
	if complexTypes[name] {
		return errors.Wrapf(ErrReservedName, "invalid Avro protocol name %q", name)
	}
	// goavro resolves bare primitive names such as "int" on its own.
	if _, err := goavro.NewCodec(string(quoted)); err == nil {
		return errors.Wrapf(ErrReservedName, "invalid Avro protocol name %q", name)
	}

	schema := `{"type":"record","name":` + string(quoted) + `,"fields":[]}`
	if _, err := goavro.NewCodec(schema); err != nil {
		return errors.Wrapf(err, "invalid Avro protocol name %q", name)
	}
	return nil
}
