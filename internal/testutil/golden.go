// Package testutil provides shared test helpers for avdl Go tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ScenariosDir is the path, relative to the module root, of the end-to-end
// scenarios.
const ScenariosDir = "testdata/scenarios"

// ScenarioFile is the scenario description inside each scenario directory.
const ScenarioFile = "scenario.yaml"

// Scenario is one CLI invocation and its expected outcome.
type Scenario struct {
	Cmd   []string          `yaml:"cmd"`
	Stdin string            `yaml:"stdin,omitempty"`
	Env   map[string]string `yaml:"env,omitempty"`
	Meta  *ScenarioMeta     `yaml:"meta,omitempty"`
	// WrittenFiles are files expected on disk after the run, keyed by
	// name relative to the scenario directory.
	WrittenFiles map[string]string `yaml:"writtenFiles,omitempty"`
	Expect       ExpectedResult    `yaml:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// JSON paths use gjson syntax.
type ExpectedResult struct {
	ExitCode        int               `yaml:"exitCode"`
	StdoutText      *string           `yaml:"stdoutText,omitempty"`
	StdoutContains  []string          `yaml:"stdoutContains,omitempty"`
	StdoutJSONPaths map[string]string `yaml:"stdoutJsonPaths,omitempty"`
	StderrText      *string           `yaml:"stderrText,omitempty"`
	StderrContains  []string          `yaml:"stderrContains,omitempty"`
	StderrJSONPaths map[string]string `yaml:"stderrJsonPaths,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yaml.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, ScenarioFile))
	if err != nil {
		return nil, errors.Wrapf(err, "loading scenario %s", dir)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decoding scenario %s", dir)
	}
	if len(s.Cmd) == 0 {
		return nil, errors.Newf("scenario %s has no cmd", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), ScenarioFile)
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadInputFiles returns every file of the scenario directory except the
// scenario description, keyed by file name.
func ReadInputFiles(scenarioDir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(scenarioDir)
	if err != nil {
		return nil, err
	}
	files := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir() || e.Name() == ScenarioFile {
			continue
		}
		data, err := os.ReadFile(filepath.Join(scenarioDir, e.Name()))
		if err != nil {
			return nil, err
		}
		files[e.Name()] = data
	}
	return files, nil
}
