package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/thomasrohde/avdl/pkg/config"
)

// GlobalState holds everything the commands touch outside the process:
// filesystem, environment and standard streams. Tests build one in memory.
type GlobalState struct {
	FS      afero.Fs
	Getwd   func() (string, error)
	HomeDir string
	Env     map[string]string

	Stdin          io.Reader
	Stdout, Stderr io.Writer

	StderrTTY bool

	Logger *logrus.Logger
}

// NewGlobalState returns the state of the running process.
func NewGlobalState() *GlobalState {
	stderrTTY := isTTY(os.Stderr)

	stderr := colorable.NewColorableStderr()
	logger := &logrus.Logger{
		Out:       stderr,
		Formatter: &logrus.TextFormatter{ForceColors: stderrTTY},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.WarnLevel,
	}

	return &GlobalState{
		FS:        afero.NewOsFs(),
		Getwd:     os.Getwd,
		HomeDir:   config.UserHome(),
		Env:       config.EnvMap(os.Environ()),
		Stdin:     os.Stdin,
		Stdout:    colorable.NewColorableStdout(),
		Stderr:    stderr,
		StderrTTY: stderrTTY,
		Logger:    logger,
	}
}

func isTTY(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
