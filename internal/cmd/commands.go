package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thomasrohde/avdl/pkg/diagnostics"
	"github.com/thomasrohde/avdl/pkg/driver"
)

const stdinName = "<stdin>"

func getCmdParse(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a file and print its syntax tree",
		Long: `Parse an AVDL file and print the debug form of its syntax tree.
Use "-" to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			source, name, err := c.readInput(args[0])
			if err != nil {
				return err
			}
			res, err := c.driver.Parse(source, name)
			if err != nil {
				return c.fail(err)
			}
			_, err = fmt.Fprintln(c.gs.Stdout, res.AST.String())
			return err
		},
	}
}

func getCmdCheck(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|->",
		Short: "Report syntax errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			source, name, err := c.readInput(args[0])
			if err != nil {
				return err
			}
			if diags := c.driver.Check(source, name); len(diags) > 0 {
				return c.report(diagnostics.NewSource(name, source), diags, ExitDiagnostics)
			}
			if c.cfg.Format == string(diagnostics.FormatJSON) {
				_, err = fmt.Fprintln(c.gs.Stdout, "[]")
			} else {
				_, err = fmt.Fprintln(c.gs.Stdout, "No errors found.")
			}
			return err
		},
	}
}

func getCmdJSON(c *rootCommand) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "json <file|->",
		Short: "Print the Avro protocol JSON of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			source, name, err := c.readInput(args[0])
			if err != nil {
				return err
			}
			out, err := c.driver.JSON(source, name, indent)
			if err != nil {
				return c.fail(err)
			}
			_, err = fmt.Fprintln(c.gs.Stdout, string(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the JSON output")
	return cmd
}

func getCmdFmt(c *rootCommand) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file|->",
		Short: "Print a file in canonical form",
		Long: `Print an AVDL file in canonical form. Comment text is not preserved.
With --write the file is rewritten in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if write && args[0] == "-" {
				return errors.New("--write cannot be used with standard input")
			}
			source, name, err := c.readInput(args[0])
			if err != nil {
				return err
			}
			formatted, err := c.driver.Format(source, name)
			if err != nil {
				return c.fail(err)
			}
			if write {
				return WithExitCodeIfNone(c.writeFile(name, formatted), ExitUsage)
			}
			_, err = io.WriteString(c.gs.Stdout, formatted)
			return err
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "rewrite the file in place")
	return cmd
}

// readInput reads path, or standard input for "-". Unreadable files are
// reported as an E_IO diagnostic.
func (c *rootCommand) readInput(path string) (string, string, error) {
	if path == "-" {
		data, err := io.ReadAll(c.gs.Stdin)
		if err != nil {
			return "", "", errors.Wrap(err, "reading stdin")
		}
		return string(data), stdinName, nil
	}

	source, err := c.driver.ReadSource(c.resolve(path))
	if err != nil {
		c.gs.Logger.WithError(err).Debug("read failed")
		diag := diagnostics.MakeDiag(diagnostics.EIO, "cannot read file: "+path, nil, "check that the file exists and is readable")
		diag.File = path
		return "", "", c.report(nil, []diagnostics.Diagnostic{diag}, ExitUsage)
	}
	return source, path, nil
}

// resolve makes path absolute against the working directory of gs.
func (c *rootCommand) resolve(path string) string {
	if filepath.IsAbs(path) || c.gs.Getwd == nil {
		return path
	}
	wd, err := c.gs.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(wd, path)
}

func (c *rootCommand) writeFile(name, content string) error {
	path := c.resolve(name)
	info, err := c.gs.FS.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := afero.WriteFile(c.gs.FS, path, []byte(content), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	c.gs.Logger.WithField("file", path).Info("formatted file written")
	return nil
}

// fail renders diagnostic errors and tags everything else as internal.
func (c *rootCommand) fail(err error) error {
	var derr *driver.DiagnosticError
	if errors.As(err, &derr) {
		return c.report(derr.Source, derr.Diagnostics, ExitDiagnostics)
	}
	return WithExitCodeIfNone(err, ExitInternal)
}

// report writes diags to stderr. A failing writer is returned as the error.
func (c *rootCommand) report(src *diagnostics.Source, diags []diagnostics.Diagnostic, code ExitCode) error {
	if err := c.renderer.Write(c.gs.Stderr, src, diags); err != nil {
		return WithExitCodeIfNone(errors.Wrap(err, "writing diagnostics"), ExitUsage)
	}
	return WithExitCodeIfNone(errReported, code)
}
