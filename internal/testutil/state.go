package testutil

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"

	"github.com/thomasrohde/avdl/internal/cmd"
)

// GlobalTestState is a cmd.GlobalState backed by memory: a MemMapFs, byte
// buffers for the standard streams and an empty environment.
type GlobalTestState struct {
	*cmd.GlobalState
	Stdin          *bytes.Buffer
	Stdout, Stderr *bytes.Buffer
	LoggerHook     *test.Hook
	Cwd            string
}

// NewGlobalTestState returns a fresh in-memory state rooted at /work.
func NewGlobalTestState(tb testing.TB) *GlobalTestState {
	tb.Helper()

	ts := &GlobalTestState{
		Stdin:  new(bytes.Buffer),
		Stdout: new(bytes.Buffer),
		Stderr: new(bytes.Buffer),
		Cwd:    "/work",
	}

	logger := &logrus.Logger{
		Out:       ts.Stderr,
		Formatter: &logrus.TextFormatter{DisableColors: true, DisableTimestamp: true},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.WarnLevel,
	}
	ts.LoggerHook = test.NewLocal(logger)

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(ts.Cwd, 0o755); err != nil {
		tb.Fatalf("creating %s: %v", ts.Cwd, err)
	}

	ts.GlobalState = &cmd.GlobalState{
		FS:      fs,
		Getwd:   func() (string, error) { return ts.Cwd, nil },
		HomeDir: "/home/tester",
		Env:     map[string]string{},
		Stdin:   ts.Stdin,
		Stdout:  ts.Stdout,
		Stderr:  ts.Stderr,
		Logger:  logger,
	}
	return ts
}

// WriteFile writes a file into the in-memory filesystem.
func (ts *GlobalTestState) WriteFile(tb testing.TB, path, content string) {
	tb.Helper()
	if err := afero.WriteFile(ts.FS, path, []byte(content), 0o644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
}

// Run runs the CLI with args and returns its exit code.
func (ts *GlobalTestState) Run(args ...string) int {
	return cmd.Run(ts.GlobalState, args)
}
