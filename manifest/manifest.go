// Package manifest binds compiled rule sets to runs. A manifest names the
// top-level data source a run is driven by, excludes rules from loading, and
// carries per-rule settings. Manifests are YAML documents validated against
// a JSON Schema generated from the Manifest struct.
package manifest

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/ruleflow-dev/ruleflow/broadcast"
)

// Manifest describes one rule set configuration.
type Manifest struct {
	// Name identifies the rule set.
	Name string `yaml:"name" json:"name"`

	// Version is the rule set's own version.
	Version string `yaml:"version" json:"version,omitempty"`

	// Requires constrains the engine versions this rule set works with,
	// as a semver constraint such as ">= 1.0".
	Requires string `yaml:"requires" json:"requires,omitempty"`

	// TopBroadcaster names the data source a run is driven by. Every
	// manifest must define it; its absence is a configuration fault
	// surfaced to the operator.
	TopBroadcaster string `yaml:"top_broadcaster" json:"top_broadcaster"`

	// Exclude lists check type names to skip loading entirely. Excluded
	// types never enter the registry; this is orthogonal to per-instance
	// suppression.
	Exclude []string `yaml:"exclude" json:"exclude,omitempty"`

	// Settings carries per-rule configuration, opaque to this package.
	Settings map[string]any `yaml:"settings" json:"settings,omitempty"`

	path string
}

// Path returns where the manifest was loaded from, or "" when parsed from memory.
func (m *Manifest) Path() string {
	return m.path
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Manifest, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.path = path
	return m, nil
}

// Resolve binds the manifest's top broadcaster to a source type declared in
// reg. An unknown name is a configuration fault.
func (m *Manifest) Resolve(reg *broadcast.Registry) (*broadcast.SourceType, error) {
	src, ok := reg.Source(m.TopBroadcaster)
	if !ok {
		return nil, fmt.Errorf("manifest %s: top_broadcaster %q is not a declared data source", m.Name, m.TopBroadcaster)
	}
	return src, nil
}

// CheckRequires verifies the engine version against the manifest's requires
// constraint, if one is set.
func (m *Manifest) CheckRequires(engineVersion string) error {
	if m.Requires == "" {
		return nil
	}
	c, err := semver.NewConstraint(m.Requires)
	if err != nil {
		return fmt.Errorf("manifest %s: invalid requires constraint %q: %w", m.Name, m.Requires, err)
	}
	v, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version %q: %w", engineVersion, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("manifest %s requires engine %q, running %s", m.Name, m.Requires, engineVersion)
	}
	return nil
}
