// Package driver provides the top-level avdl orchestrator: read, parse,
// then report, format or serialize.
package driver

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/thomasrohde/avdl/pkg/ast"
	"github.com/thomasrohde/avdl/pkg/diagnostics"
	"github.com/thomasrohde/avdl/pkg/formatter"
	"github.com/thomasrohde/avdl/pkg/parser"
	"github.com/thomasrohde/avdl/pkg/protocol"
)

// Result holds the outcome of a successful parse.
type Result struct {
	Source *diagnostics.Source
	AST    ast.Node
}

// Driver wires the parser to its collaborators.
type Driver struct {
	logger logrus.FieldLogger
	fs     afero.Fs
}

// Option is a functional option for configuring the Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithFs sets the filesystem used by ReadSource.
func WithFs(fs afero.Fs) Option {
	return func(d *Driver) {
		d.fs = fs
	}
}

// New creates a new Driver with the given options.
// By default it reads from the OS filesystem and logs nowhere.
func New(opts ...Option) *Driver {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	d := &Driver{
		logger: discard,
		fs:     afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReadSource reads the file at path.
func (d *Driver) ReadSource(path string) (string, error) {
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	d.logger.WithFields(logrus.Fields{"file": path, "bytes": len(data)}).Debug("read source")
	return string(data), nil
}

// Parse parses source. On failure the error is a *DiagnosticError.
func (d *Driver) Parse(source, filename string) (*Result, error) {
	src := diagnostics.NewSource(filename, source)
	node, errs := parser.Parse(source)
	log := d.logger.WithField("file", filename)
	if len(errs) > 0 {
		log.WithField("errors", len(errs)).Debug("parse failed")
		return nil, &DiagnosticError{
			Source:      src,
			Diagnostics: diagnostics.FromParseErrors(errs, src),
		}
	}
	log.WithField("kind", node.Kind()).Debug("parsed")
	return &Result{Source: src, AST: node}, nil
}

// Check parses source and returns its diagnostics, empty when it is valid.
func (d *Driver) Check(source, filename string) []diagnostics.Diagnostic {
	_, err := d.Parse(source, filename)
	var derr *DiagnosticError
	if errors.As(err, &derr) {
		return derr.Diagnostics
	}
	return nil
}

// Format parses and formats source.
func (d *Driver) Format(source, filename string) (string, error) {
	res, err := d.Parse(source, filename)
	if err != nil {
		return "", err
	}
	if formatter.HasComments(source) {
		d.logger.WithField("file", filename).Warn("comment text is not preserved by formatting")
	}
	return formatter.Format(res.AST), nil
}

// JSON parses source and serializes it as an Avro protocol document.
func (d *Driver) JSON(source, filename string, indent bool) ([]byte, error) {
	res, err := d.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	var out []byte
	if indent {
		out, err = protocol.ToJSONIndent(res.AST)
	} else {
		out, err = protocol.ToJSON(res.AST)
	}
	if errors.Is(err, protocol.ErrReservedName) {
		p := res.AST.(*ast.Protocol)
		log := d.logger.WithFields(logrus.Fields{"file": filename, "name": p.Name})
		log.Debug("reserved protocol name")
		return nil, &DiagnosticError{
			Source: res.Source,
			Diagnostics: []diagnostics.Diagnostic{diagnostics.AtSpan(
				diagnostics.EName,
				"Protocol name "+p.Name+" is reserved by Avro",
				p.NameSpan, res.Source,
				"rename the protocol; Avro type names cannot name a protocol",
			)},
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "serializing %s", filename)
	}
	return out, nil
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Source      *diagnostics.Source
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.Code + ": " + d.Message
	}
	return strings.Join(msgs, "; ")
}
