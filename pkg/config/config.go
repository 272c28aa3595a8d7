// Package config implements layered configuration loading for the avdl tool.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// File names searched when no explicit config path is given.
const (
	ProjectFile = ".avdl.toml"
	UserDir     = ".avdl"
	UserFile    = "config.toml"
)

// Config holds the settings shared by all commands.
type Config struct {
	NoColor   bool   `toml:"no_color" envconfig:"AVDL_NO_COLOR"`
	Format    string `toml:"format" envconfig:"AVDL_FORMAT"`
	LogLevel  string `toml:"log_level" envconfig:"AVDL_LOG_LEVEL"`
	LogFormat string `toml:"log_format" envconfig:"AVDL_LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:    "pretty",
		LogLevel:  "warning",
		LogFormat: "text",
	}
}

// Sources describes where Load looks for settings.
type Sources struct {
	Fs  afero.Fs
	Env map[string]string

	// File is an explicit config path. It must exist when set.
	File string
	// ProjectDir and HomeDir are searched for ProjectFile and
	// UserDir/UserFile when File is empty.
	ProjectDir string
	HomeDir    string
}

// Load builds the configuration. Precedence, lowest first: defaults, the
// config file (explicit → project → user), environment. It returns the path
// of the file that was read, or "" when none was found.
func Load(src Sources) (Config, string, error) {
	cfg := Default()

	path, err := findFile(src)
	if err != nil {
		return cfg, "", err
	}
	if path != "" {
		if err := readFile(src.Fs, path, &cfg); err != nil {
			return cfg, path, err
		}
	}

	if err := applyEnv(&cfg, src.Env); err != nil {
		return cfg, path, err
	}
	return cfg, path, cfg.Validate()
}

func findFile(src Sources) (string, error) {
	if src.File != "" {
		if _, err := src.Fs.Stat(src.File); err != nil {
			return "", errors.Wrapf(err, "config file %s", src.File)
		}
		return src.File, nil
	}

	var candidates []string
	if src.ProjectDir != "" {
		candidates = append(candidates, filepath.Join(src.ProjectDir, ProjectFile))
	}
	if src.HomeDir != "" {
		candidates = append(candidates, filepath.Join(src.HomeDir, UserDir, UserFile))
	}
	for _, p := range candidates {
		if ok, _ := afero.Exists(src.Fs, p); ok {
			return p, nil
		}
	}
	return "", nil
}

func readFile(fs afero.Fs, path string, cfg *Config) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(err, "reading config file %s", path)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrapf(err, "parsing config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Newf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	if err := envconfig.Process("", cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		return errors.Wrap(err, "reading environment")
	}
	// https://no-color.org/
	if _, ok := env["NO_COLOR"]; ok {
		cfg.NoColor = true
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Format {
	case "pretty", "json":
	default:
		return errors.Newf("invalid format %q (want pretty or json)", c.Format)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Newf("invalid log format %q (want text or json)", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	return nil
}

// EnvMap turns an environ-style list into a map.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// UserHome returns the user's home directory, or "" when it is unknown.
func UserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
