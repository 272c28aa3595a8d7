package cmd

import (
	"github.com/cockroachdb/errors"
)

// ExitCode is the process exit status attached to an error.
type ExitCode uint8

// Exit codes returned by the avdl binary.
const (
	ExitOK          ExitCode = 0
	ExitUsage       ExitCode = 1
	ExitDiagnostics ExitCode = 2
	ExitInternal    ExitCode = 4
)

// HasExitCode is a wrapper around an error with an attached exit code.
type HasExitCode interface {
	error
	ExitCode() ExitCode
}

// WithExitCodeIfNone attaches exitCode to err unless err already carries
// one. A nil err stays nil.
func WithExitCodeIfNone(err error, exitCode ExitCode) error {
	if err == nil {
		return nil
	}
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		return err
	}
	return withExitCode{err, exitCode}
}

type withExitCode struct {
	error
	exitCode ExitCode
}

func (wh withExitCode) Unwrap() error {
	return wh.error
}

func (wh withExitCode) ExitCode() ExitCode {
	return wh.exitCode
}

var _ HasExitCode = withExitCode{}

// exitCodeOf returns the code carried by err, ExitUsage for errors without
// one, and ExitOK for nil.
func exitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		return ecerr.ExitCode()
	}
	return ExitUsage
}

// errReported marks failures whose details were already written to stderr.
var errReported = errors.New("failure already reported")
