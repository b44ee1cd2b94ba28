// Package rules bundles the checks shipped with ruleflow. All of them are
// built on the per-line source; CodeBroadcaster additionally demonstrates a
// filtering source composed from it.
package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ruleflow-dev/ruleflow/broadcast"
	"github.com/ruleflow-dev/ruleflow/linesource"
	"github.com/ruleflow-dev/ruleflow/report"
)

// Config carries per-rule settings, typically taken from a manifest's
// settings block.
type Config struct {
	// LineLength is the maximum allowed line length.
	LineLength int `yaml:"line_length"`

	// CommentDensityMax is the tolerated fraction of comment-only lines.
	CommentDensityMax float64 `yaml:"comment_density_max"`

	// CommentDensityMinLines disables the density check for shorter targets.
	CommentDensityMinLines int `yaml:"comment_density_min_lines"`
}

// DefaultConfig returns the settings used when a manifest specifies none.
func DefaultConfig() Config {
	return Config{
		LineLength:             100,
		CommentDensityMax:      0.8,
		CommentDensityMinLines: 10,
	}
}

// ConfigFrom decodes a manifest settings block into a Config, starting from
// the defaults.
func ConfigFrom(settings map[string]any) (Config, error) {
	cfg := DefaultConfig()
	if len(settings) == 0 {
		return cfg, nil
	}
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return cfg, fmt.Errorf("encoding rule settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding rule settings: %w", err)
	}
	return cfg, nil
}

// base carries what every bundled rule needs: the no-op line handler to
// derive from, the run's sink and target, and a handle on its own instance
// for violation records.
type base struct {
	linesource.BaseCheck
	self   *broadcast.CheckInstance
	sink   report.Sink
	target string
}

func newBase(b *broadcast.Builder) base {
	return base{sink: b.Sink(), target: b.Target()}
}

// Bind satisfies broadcast.InstanceAware.
func (c *base) Bind(ci *broadcast.CheckInstance) {
	c.self = ci
}

func (c *base) report(lineNo int, line, reason string) {
	c.sink.Report(report.Violation{
		Check:   c.self,
		Target:  c.target,
		Line:    lineNo,
		HasLine: true,
		Text:    line,
		Reason:  reason,
	})
}

func (c *base) reportTarget(reason string) {
	c.sink.Report(report.Violation{
		Check:  c.self,
		Target: c.target,
		Reason: reason,
	})
}

// RuleSet adapts the bundled rules to the host executor: settings come from
// the run's manifests.
func RuleSet(reg *broadcast.Registry, settings map[string]any) error {
	cfg, err := ConfigFrom(settings)
	if err != nil {
		return err
	}
	return Register(reg, cfg)
}

// Register declares every bundled rule against reg, honoring the registry's
// exclusion set. The line source is declared first if reg does not carry it
// yet.
func Register(reg *broadcast.Registry, cfg Config) error {
	lineSrc, ok := reg.Source(linesource.SourceName)
	if !ok {
		var err error
		if lineSrc, err = linesource.Register(reg); err != nil {
			return err
		}
	}
	lines := []*broadcast.SourceType{lineSrc}

	// The pragma check goes first so a marker takes effect before the
	// sibling rules see the same broadcast.
	if _, err := reg.DeclareCheck("PragmaCheck", pragmaFactory, lines,
		broadcast.WithMotivation("Waiver pragmas let rules be bypassed where a violation is intended or a false positive.")); err != nil {
		return err
	}

	if _, err := reg.DeclareCheck("NoTabsCheck", noTabsFactory, lines,
		broadcast.WithMotivation("Tab stops render differently across editors; indentation must use spaces.")); err != nil {
		return err
	}

	if _, err := reg.DeclareCheck("LineLengthCheck", lineLengthFactory(cfg.LineLength), lines,
		broadcast.WithMotivation("Long lines are hard to read side by side and in review tools.")); err != nil {
		return err
	}

	if _, err := reg.DeclareCheck("TrailingSpaceCheck", trailingSpaceFactory, lines,
		broadcast.WithMotivation("Trailing whitespace produces noisy diffs.")); err != nil {
		return err
	}

	codeSrc, err := registerCodeSource(reg, lineSrc)
	if err != nil {
		return err
	}
	if codeSrc != nil {
		if _, err := reg.DeclareCheck("CommentDensityCheck",
			commentDensityFactory(cfg.CommentDensityMax, cfg.CommentDensityMinLines),
			[]*broadcast.SourceType{lineSrc, codeSrc},
			broadcast.WithMotivation("A file that is mostly comments usually hides dead or commented-out content.")); err != nil {
			return err
		}
	}

	return nil
}
