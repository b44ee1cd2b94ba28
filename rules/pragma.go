package rules

import (
	"regexp"

	"github.com/ruleflow-dev/ruleflow/broadcast"
)

// ToolName is the marker namespace recognized in pragma comments.
const ToolName = "ruleflow"

// pragmaPattern matches waiver markers of the shape
// "// ruleflow: disable=<Rule>" / "// ruleflow: enable=<Rule>".
var pragmaPattern = regexp.MustCompile(`//\s*` + ToolName + `:\s*(disable|enable)=(\S+)`)

// pragma toggles sibling rules off and on between disable/enable markers.
// It looks the named rule up in the run's instance tree and suppresses every
// one of its subscriptions, so the waiver holds no matter which source the
// rule listens to. Unknown rule names are skipped: the rule may be excluded
// from this run. Mismatched marker pairs are a suppression fault and abort
// the target, like any other authoring mistake.
type pragma struct {
	base
	builder *broadcast.Builder
}

func pragmaFactory(b *broadcast.Builder, _ *broadcast.SourceInstance) any {
	return &pragma{base: newBase(b), builder: b}
}

func (c *pragma) UpdateLine(_ int, line string) error {
	m := pragmaPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	target := broadcast.Find(c.builder.Root(), m[2])
	if target == nil {
		return nil
	}

	if m[1] == "disable" {
		return target.SuppressAll()
	}
	return target.ResumeAll()
}
