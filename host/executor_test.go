package host_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleflow-dev/ruleflow/broadcast"
	"github.com/ruleflow-dev/ruleflow/host"
	"github.com/ruleflow-dev/ruleflow/manifest"
	"github.com/ruleflow-dev/ruleflow/report"
	"github.com/ruleflow-dev/ruleflow/rules"
	"github.com/ruleflow-dev/ruleflow/waiver"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTarget(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func lineManifest(t *testing.T, doc string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestRunCountsViolations(t *testing.T) {
	dir := t.TempDir()
	clean := writeTarget(t, dir, "clean.txt", "nothing wrong here\n")
	dirty := writeTarget(t, dir, "dirty.txt", "has\ta tab\nand trailing space \n")

	m := lineManifest(t, "name: style\ntop_broadcaster: LineBroadcaster\n")

	sink := report.NewConsoleSink(report.WithWriter(io.Discard))
	e := host.NewExecutor(
		host.WithSink(sink),
		host.WithLogger(quietLogger()),
		host.WithRuleSet(rules.RuleSet),
	)

	res, err := e.Run(context.Background(), []*manifest.Manifest{m}, []string{clean, dirty})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Targets)
	assert.Equal(t, 2, res.Violations)
	assert.True(t, res.Failed())
	assert.NotEmpty(t, res.RunID)
}

func TestRunCleanTargetsDoNotFail(t *testing.T) {
	dir := t.TempDir()
	clean := writeTarget(t, dir, "clean.txt", "nothing wrong here\n")

	m := lineManifest(t, "name: style\ntop_broadcaster: LineBroadcaster\n")
	e := host.NewExecutor(
		host.WithSink(report.NewConsoleSink(report.WithWriter(io.Discard))),
		host.WithLogger(quietLogger()),
		host.WithRuleSet(rules.RuleSet),
	)

	res, err := e.Run(context.Background(), []*manifest.Manifest{m}, []string{clean})
	require.NoError(t, err)
	assert.False(t, res.Failed())
}

func TestRunHonorsManifestSettingsAndExclusions(t *testing.T) {
	dir := t.TempDir()
	target := writeTarget(t, dir, "t.txt", "short\ta line that is well beyond the tiny limit\n")

	m := lineManifest(t, `
name: strict
top_broadcaster: LineBroadcaster
exclude:
  - NoTabsCheck
settings:
  line_length: 10
`)

	sink := report.NewConsoleSink(report.WithWriter(io.Discard))
	e := host.NewExecutor(
		host.WithSink(sink),
		host.WithLogger(quietLogger()),
		host.WithRuleSet(rules.RuleSet),
	)

	res, err := e.Run(context.Background(), []*manifest.Manifest{m}, []string{target})
	require.NoError(t, err)

	// The tab is waived by exclusion; only the length rule fires.
	assert.Equal(t, 1, res.Violations)
}

func TestRunRejectsIncompatibleManifest(t *testing.T) {
	m := lineManifest(t, "name: future\nrequires: \">= 9.0\"\ntop_broadcaster: LineBroadcaster\n")
	e := host.NewExecutor(
		host.WithLogger(quietLogger()),
		host.WithRuleSet(rules.RuleSet),
	)

	_, err := e.Run(context.Background(), []*manifest.Manifest{m}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires engine")
}

func TestRunSurfacesUnknownTopBroadcaster(t *testing.T) {
	m := lineManifest(t, "name: ghost\ntop_broadcaster: GhostBroadcaster\n")
	e := host.NewExecutor(
		host.WithLogger(quietLogger()),
		host.WithRuleSet(rules.RuleSet),
	)

	_, err := e.Run(context.Background(), []*manifest.Manifest{m}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GhostBroadcaster")
}

// brokenRuleSet declares a check without the handler its subscription requires.
func brokenRuleSet(reg *broadcast.Registry, _ map[string]any) error {
	src, ok := reg.Source("LineBroadcaster")
	if !ok {
		return nil
	}
	_, err := reg.DeclareCheck("BrokenCheck", func(*broadcast.Builder, *broadcast.SourceInstance) any {
		return struct{}{}
	}, []*broadcast.SourceType{src})
	return err
}

func TestRunAbortsOnContractFault(t *testing.T) {
	dir := t.TempDir()
	a := writeTarget(t, dir, "a.txt", "x\n")
	b := writeTarget(t, dir, "b.txt", "y\n")

	m := lineManifest(t, "name: style\ntop_broadcaster: LineBroadcaster\n")

	newExecutor := func(opts ...host.Option) *host.Executor {
		base := []host.Option{
			host.WithSink(report.NewConsoleSink(report.WithWriter(io.Discard))),
			host.WithLogger(quietLogger()),
			host.WithRuleSet(rules.RuleSet),
			host.WithRuleSet(brokenRuleSet),
		}
		return host.NewExecutor(append(base, opts...)...)
	}

	_, err := newExecutor().Run(context.Background(), []*manifest.Manifest{m}, []string{a, b})
	require.ErrorIs(t, err, broadcast.ErrContract)

	res, err := newExecutor(host.WithContinueOnFault(true)).
		Run(context.Background(), []*manifest.Manifest{m}, []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Targets)
}

func TestRunRespectsContext(t *testing.T) {
	dir := t.TempDir()
	a := writeTarget(t, dir, "a.txt", "x\n")

	m := lineManifest(t, "name: style\ntop_broadcaster: LineBroadcaster\n")
	e := host.NewExecutor(
		host.WithLogger(quietLogger()),
		host.WithRuleSet(rules.RuleSet),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Run(ctx, []*manifest.Manifest{m}, []string{a})
	require.ErrorIs(t, err, context.Canceled)
}

// TestAutowaiveRoundTrip drives the full loop: scan, waive every finding,
// scan again and come out clean.
func TestAutowaiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	target := writeTarget(t, dir, "code.txt",
		"clean line\nbad\tline\nmore clean\nworse\ttab\n")

	m := lineManifest(t, "name: style\ntop_broadcaster: LineBroadcaster\n")

	scan := func() (host.Result, string) {
		var out bytes.Buffer
		e := host.NewExecutor(
			host.WithSink(report.NewConsoleSink(report.WithWriter(&out))),
			host.WithLogger(quietLogger()),
			host.WithRuleSet(rules.RuleSet),
		)
		res, err := e.Run(context.Background(), []*manifest.Manifest{m}, []string{target})
		require.NoError(t, err)
		return res, out.String()
	}

	res, out := scan()
	assert.Equal(t, 2, res.Violations)

	vs, err := waiver.Parse(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	require.Len(t, vs, 2)

	_, err = waiver.NewEditor().Apply(vs)
	require.NoError(t, err)

	res, _ = scan()
	assert.Equal(t, 0, res.Violations)
	assert.False(t, res.Failed())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("Explicit", func(t *testing.T) {
		path := filepath.Join(dir, "tool.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rule_dirs: [packs]\nmotivation: true\n"), 0o644))

		cfg, err := host.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"packs"}, cfg.RuleDirs)
		assert.True(t, cfg.Motivation)
	})

	t.Run("ExplicitMissing", func(t *testing.T) {
		_, err := host.LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rule_dirs: {not: a list}\n"), 0o644))
		_, err := host.LoadConfig(path)
		require.Error(t, err)
	})
}
