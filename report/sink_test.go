package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleflow-dev/ruleflow/report"
)

type fakeCheck struct {
	name       string
	motivation string
}

func (c fakeCheck) Name() string       { return c.name }
func (c fakeCheck) Motivation() string { return c.motivation }

func TestConsoleSinkRecordShape(t *testing.T) {
	var buf strings.Builder
	sink := report.NewConsoleSink(report.WithWriter(&buf))

	sink.Report(report.Violation{
		Check:   fakeCheck{name: "NoTabsCheck"},
		Target:  "src/main.c",
		Line:    7,
		HasLine: true,
		Text:    "\tint x;  \n",
		Reason:  "tab characters are not allowed",
	})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "src/main.c:7 violates NoTabsCheck", lines[0])
	assert.Equal(t, "  Reason:", lines[1])
	assert.Equal(t, "    tab characters are not allowed", lines[2])
	assert.Equal(t, "  Offending Code:", lines[3])
	assert.Equal(t, "    >\tint x;", lines[4])
}

func TestConsoleSinkOmitsLocatorWithoutLine(t *testing.T) {
	var buf strings.Builder
	sink := report.NewConsoleSink(report.WithWriter(&buf))

	sink.Report(report.Violation{
		Check:  fakeCheck{name: "CommentDensityCheck"},
		Target: "src/main.c",
	})

	assert.Equal(t, "src/main.c violates CommentDensityCheck\n", buf.String())
}

func TestConsoleSinkMotivation(t *testing.T) {
	check := fakeCheck{name: "LineLengthCheck", motivation: "long lines hurt readability"}

	t.Run("enabled", func(t *testing.T) {
		var buf strings.Builder
		sink := report.NewConsoleSink(report.WithWriter(&buf), report.WithMotivation(true))
		sink.Report(report.Violation{Check: check, Target: "a.c"})
		assert.Contains(t, buf.String(), "  Motivation:\n    long lines hurt readability\n")
	})

	t.Run("disabled by default", func(t *testing.T) {
		var buf strings.Builder
		sink := report.NewConsoleSink(report.WithWriter(&buf))
		sink.Report(report.Violation{Check: check, Target: "a.c"})
		assert.NotContains(t, buf.String(), "Motivation")
	})

	t.Run("empty motivation is skipped", func(t *testing.T) {
		var buf strings.Builder
		sink := report.NewConsoleSink(report.WithWriter(&buf), report.WithMotivation(true))
		sink.Report(report.Violation{Check: fakeCheck{name: "X"}, Target: "a.c"})
		assert.NotContains(t, buf.String(), "Motivation")
	})
}

func TestConsoleSinkCount(t *testing.T) {
	sink := report.NewConsoleSink(report.WithWriter(&strings.Builder{}))
	assert.Zero(t, sink.Count())

	v := report.Violation{Check: fakeCheck{name: "X"}, Target: "a.c"}
	sink.Report(v)
	sink.Report(v)
	assert.Equal(t, 2, sink.Count())
}

func TestNopSink(t *testing.T) {
	var sink report.NopSink
	sink.Report(report.Violation{Check: fakeCheck{name: "X"}})
	assert.Zero(t, sink.Count())
}
