package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleflow-dev/ruleflow/broadcast"
	"github.com/ruleflow-dev/ruleflow/linesource"
	"github.com/ruleflow-dev/ruleflow/report"
	"github.com/ruleflow-dev/ruleflow/rules"
)

type memSink struct {
	violations []report.Violation
}

func (s *memSink) Report(v report.Violation) {
	s.violations = append(s.violations, v)
}

func (s *memSink) Count() int {
	return len(s.violations)
}

// scan runs the bundled rules over content and returns what they reported.
func scan(t *testing.T, cfg rules.Config, content string, exclude ...string) *memSink {
	t.Helper()

	reg := broadcast.NewRegistry()
	require.NoError(t, reg.Exclude(exclude...))
	require.NoError(t, rules.Register(reg, cfg))

	lineSrc, ok := reg.Source(linesource.SourceName)
	require.True(t, ok)

	sink := &memSink{}
	b := broadcast.NewBuilder(reg, broadcast.WithSink(sink), broadcast.WithTarget("test.src"))
	require.NoError(t, linesource.Run(b.NewSource(lineSrc), strings.NewReader(content)))
	return sink
}

func names(sink *memSink) []string {
	var out []string
	for _, v := range sink.violations {
		out = append(out, v.Check.Name())
	}
	return out
}

func TestBundledRules(t *testing.T) {
	cfg := rules.DefaultConfig()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"Clean", "package x\n\nvar a = 1\n", nil},
		{"Tab", "var\ta = 1\n", []string{"NoTabsCheck"}},
		{"TrailingSpace", "var a = 1 \n", []string{"TrailingSpaceCheck"}},
		{"LongLine", strings.Repeat("x", 101) + "\n", []string{"LineLengthCheck"}},
		{"Several", "a\t \n", []string{"NoTabsCheck", "TrailingSpaceCheck"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := scan(t, cfg, tt.content)
			assert.Equal(t, tt.want, names(sink))
		})
	}
}

func TestViolationRecords(t *testing.T) {
	sink := scan(t, rules.DefaultConfig(), "ok\nbad\tline\n")
	require.Len(t, sink.violations, 1)

	v := sink.violations[0]
	assert.Equal(t, "NoTabsCheck", v.Check.Name())
	assert.NotEmpty(t, v.Check.Motivation())
	assert.Equal(t, "test.src", v.Target)
	assert.True(t, v.HasLine)
	assert.Equal(t, 1, v.Line)
	assert.Equal(t, "bad\tline", v.Text)
	assert.NotEmpty(t, v.Reason)
}

func TestPragmaSuppression(t *testing.T) {
	content := strings.Join([]string{
		"bad\tone",
		"// ruleflow: disable=NoTabsCheck",
		"waived\ttab",
		"// ruleflow: enable=NoTabsCheck",
		"bad\ttwo",
		"",
	}, "\n")

	sink := scan(t, rules.DefaultConfig(), content)
	require.Equal(t, []string{"NoTabsCheck", "NoTabsCheck"}, names(sink))
	assert.Equal(t, 0, sink.violations[0].Line)
	assert.Equal(t, 4, sink.violations[1].Line)
}

func TestPragmaUnknownRuleIsSkipped(t *testing.T) {
	sink := scan(t, rules.DefaultConfig(), "// ruleflow: disable=NoSuchCheck\nbad\tline\n")
	assert.Equal(t, []string{"NoTabsCheck"}, names(sink))
}

func TestPragmaSurvivesExcludedRule(t *testing.T) {
	// Waiving a rule that was excluded from the run must not fault.
	sink := scan(t, rules.DefaultConfig(),
		"// ruleflow: disable=NoTabsCheck\nbad\tline\n", "NoTabsCheck")
	assert.Empty(t, names(sink))
}

func TestCommentDensity(t *testing.T) {
	var lines []string
	for i := 0; i < 11; i++ {
		lines = append(lines, "// nothing but commentary")
	}
	lines = append(lines, "")

	sink := scan(t, rules.DefaultConfig(), strings.Join(lines, "\n"))
	require.Equal(t, []string{"CommentDensityCheck"}, names(sink))
	v := sink.violations[0]
	assert.False(t, v.HasLine)
	assert.Equal(t, "test.src", v.Target)
}

func TestCommentDensityRespectsMinLines(t *testing.T) {
	sink := scan(t, rules.DefaultConfig(), "// short\n// file\n")
	assert.Empty(t, names(sink))
}

func TestConfigFrom(t *testing.T) {
	cfg, err := rules.ConfigFrom(map[string]any{
		"line_length": 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.LineLength)

	// Unset keys keep their defaults.
	def := rules.DefaultConfig()
	assert.Equal(t, def.CommentDensityMax, cfg.CommentDensityMax)
	assert.Equal(t, def.CommentDensityMinLines, cfg.CommentDensityMinLines)

	cfg, err = rules.ConfigFrom(nil)
	require.NoError(t, err)
	assert.Equal(t, def, cfg)
}

func TestFindReachesNestedFilter(t *testing.T) {
	reg := broadcast.NewRegistry()
	require.NoError(t, rules.Register(reg, rules.DefaultConfig()))

	lineSrc, _ := reg.Source(linesource.SourceName)
	b := broadcast.NewBuilder(reg)
	root := b.NewSource(lineSrc)

	// The density check is only subscribed through the nested code source
	// and the raw line source; both paths must resolve to one instance.
	viaRoot := broadcast.Find(root, "CommentDensityCheck")
	require.NotNil(t, viaRoot)

	filter := broadcast.Find(root, rules.CodeSourceName)
	require.NotNil(t, filter)
	holder, ok := filter.Impl().(broadcast.SourceHolder)
	require.True(t, ok)
	viaFilter := broadcast.Find(holder.Source(), "CommentDensityCheck")
	assert.Same(t, viaRoot, viaFilter)
}
