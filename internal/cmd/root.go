// Package cmd implements the avdl command tree.
package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thomasrohde/avdl/pkg/config"
	"github.com/thomasrohde/avdl/pkg/diagnostics"
	"github.com/thomasrohde/avdl/pkg/driver"
)

type globalFlags struct {
	configPath string
	noColor    bool
	format     string
	logLevel   string
	logFormat  string
}

// This is to keep all fields needed for the main/root avdl command
type rootCommand struct {
	gs    *GlobalState
	flags globalFlags
	cfg   config.Config
	cmd   *cobra.Command

	// set up by persistentPreRunE
	driver   *driver.Driver
	renderer *diagnostics.Renderer
}

func newRootCommand(gs *GlobalState) *rootCommand {
	c := &rootCommand{gs: gs, cfg: config.Default()}
	c.cmd = &cobra.Command{
		Use:               "avdl",
		Short:             "parse and check Avro IDL protocol files",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.SetIn(gs.Stdin)
	c.cmd.SetOut(gs.Stdout)
	c.cmd.SetErr(gs.Stderr)
	c.cmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())

	c.cmd.AddCommand(
		getCmdParse(c),
		getCmdCheck(c),
		getCmdJSON(c),
		getCmdFmt(c),
		getCmdVersion(c),
	)
	return c
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVarP(&c.flags.configPath, "config", "c", "", "TOML config file (default: ./"+config.ProjectFile+
		" or ~/"+config.UserDir+"/"+config.UserFile+")")
	flags.BoolVar(&c.flags.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&c.flags.format, "format", "", "diagnostic output format: pretty or json")
	flags.StringVar(&c.flags.logLevel, "log-level", "", "log level: trace, debug, info, warning, error")
	flags.StringVar(&c.flags.logFormat, "log-format", "", "log output format: text or json")
	_ = cobra.MarkFlagFilename(flags, "config", "toml")
	return flags
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	used, err := c.loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	c.setupLogger()
	if used != "" {
		c.gs.Logger.WithField("path", used).Debug("loaded config file")
	}

	format, err := diagnostics.ParseFormat(c.cfg.Format)
	if err != nil {
		return err
	}
	c.renderer = diagnostics.NewRenderer(format, c.colorEnabled())
	c.driver = driver.New(
		driver.WithLogger(c.gs.Logger),
		driver.WithFs(c.gs.FS),
	)
	c.gs.Logger.WithField("version", Version).Debug("avdl starting")
	return nil
}

// loadConfig layers flags over the file and environment settings. It
// returns the config file that was read, if any.
func (c *rootCommand) loadConfig(flags *pflag.FlagSet) (string, error) {
	path := c.flags.configPath
	if !flags.Changed("config") {
		if envPath, ok := c.gs.Env["AVDL_CONFIG"]; ok {
			path = envPath
		}
	}

	var projectDir string
	if c.gs.Getwd != nil {
		if wd, err := c.gs.Getwd(); err == nil {
			projectDir = wd
		}
	}

	cfg, used, err := config.Load(config.Sources{
		Fs:         c.gs.FS,
		Env:        c.gs.Env,
		File:       path,
		ProjectDir: projectDir,
		HomeDir:    c.gs.HomeDir,
	})
	if err != nil {
		return "", err
	}

	if flags.Changed("no-color") {
		cfg.NoColor = c.flags.noColor
	}
	if flags.Changed("format") {
		cfg.Format = c.flags.format
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = c.flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	c.cfg = cfg
	return used, nil
}

func (c *rootCommand) colorEnabled() bool {
	return !c.cfg.NoColor && c.gs.StderrTTY && c.gs.Env["TERM"] != "dumb"
}

func (c *rootCommand) setupLogger() {
	// Validate has already accepted the level.
	level, _ := logrus.ParseLevel(c.cfg.LogLevel)
	c.gs.Logger.SetLevel(level)

	out := c.gs.Stderr
	if c.cfg.NoColor {
		out = colorable.NewNonColorable(out)
	}
	c.gs.Logger.SetOutput(out)

	switch c.cfg.LogFormat {
	case "json":
		c.gs.Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		c.gs.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   c.colorEnabled(),
			DisableColors: !c.colorEnabled(),
		})
	}
}

// Run executes the command line args against gs and returns the exit code.
func Run(gs *GlobalState, args []string) int {
	c := newRootCommand(gs)
	c.cmd.SetArgs(args)

	err := c.cmd.Execute()
	if err == nil {
		return int(ExitOK)
	}
	if !errors.Is(err, errReported) {
		gs.Logger.Error(err)
	}
	return int(exitCodeOf(err))
}

// Execute adds all child commands to the root command and runs it against
// the process state. This is called by main.main().
func Execute() {
	os.Exit(Run(NewGlobalState(), os.Args[1:]))
}
