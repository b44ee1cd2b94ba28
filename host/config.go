package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultConfigPath is where LoadConfig looks when no path is given.
const DefaultConfigPath = ".ruleflow.yaml"

// Config is the tool-level configuration file, distinct from rule manifests:
// it tells the tool where to find manifests and how to present findings.
type Config struct {
	// RuleDirs lists directories searched for rule manifests.
	RuleDirs []string `yaml:"rule_dirs"`

	// Patterns are doublestar globs matching manifest files inside RuleDirs.
	Patterns []string `yaml:"patterns"`

	// Exclude lists check type names excluded on top of manifest exclusions.
	Exclude []string `yaml:"exclude"`

	// Motivation enables printing each violated rule's motivation.
	Motivation bool `yaml:"motivation"`

	// ContinueOnFault keeps a run going past faulted targets.
	ContinueOnFault bool `yaml:"continue_on_fault"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{}
}

// LoadConfig reads the tool configuration. A missing file at the default
// path is not an error; everything else is surfaced.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
