// Package host drives ruleflow runs: it prepares a registry from rule
// manifests, builds one instance graph per run-target and top broadcaster,
// and streams the targets through them.
package host

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/ruleflow-dev/ruleflow/broadcast"
	"github.com/ruleflow-dev/ruleflow/linesource"
	"github.com/ruleflow-dev/ruleflow/manifest"
)

// Version is the engine version manifests constrain with their requires field.
const Version = "1.0.0"

// RuleSet registers a compiled rule set against a registry, configured by a
// manifest's settings block.
type RuleSet func(reg *broadcast.Registry, settings map[string]any) error

// Feeder streams one run-target through a built source instance.
type Feeder func(src *broadcast.SourceInstance, r io.Reader) error

// Result summarizes one run.
type Result struct {
	// RunID uniquely identifies the run in logs.
	RunID string

	// Targets is the number of run-targets processed.
	Targets int

	// Violations is the total violation count reported to the sink.
	Violations int
}

// Failed reports the run's soft-failure signal: any violation at all.
func (r Result) Failed() bool {
	return r.Violations > 0
}

// Run prepares the executor's registry from the manifests and scans every
// target against every manifest's top broadcaster. A fault inside a handler
// unwinds the current run-target immediately; unless the executor was built
// to continue on faults, it aborts the run.
func (e *Executor) Run(ctx context.Context, manifests []*manifest.Manifest, targets []string) (Result, error) {
	res := Result{RunID: uuid.NewString()}

	tops, err := e.prepare(manifests)
	if err != nil {
		return res, err
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Targets++
		for i, top := range tops {
			if err := e.scan(target, top); err != nil {
				if !e.keepGoing {
					return res, fmt.Errorf("%s (%s): %w", target, manifests[i].Name, err)
				}
				e.logger.Error("target aborted by fault",
					"run_id", res.RunID, "target", target, "manifest", manifests[i].Name, "error", err)
			}
		}
	}

	res.Violations = e.sink.Count()
	e.logger.Info("run complete",
		"run_id", res.RunID, "targets", res.Targets, "violations", res.Violations)
	return res, nil
}

// prepare applies manifest exclusions, registers the rule sets and resolves
// each manifest's top broadcaster, in manifest order.
func (e *Executor) prepare(manifests []*manifest.Manifest) ([]*broadcast.SourceType, error) {
	settings := make(map[string]any)
	for _, m := range manifests {
		if err := m.CheckRequires(e.version); err != nil {
			return nil, err
		}
		if err := e.registry.Exclude(m.Exclude...); err != nil {
			return nil, err
		}
		// Later manifests override earlier settings keys.
		for k, v := range m.Settings {
			settings[k] = v
		}
	}

	for _, rs := range e.rulesets {
		if err := rs(e.registry, settings); err != nil {
			return nil, err
		}
	}

	tops := make([]*broadcast.SourceType, 0, len(manifests))
	for _, m := range manifests {
		top, err := m.Resolve(e.registry)
		if err != nil {
			return nil, err
		}
		tops = append(tops, top)
	}
	return tops, nil
}

// scan builds a fresh instance graph for one run-target and streams the
// target through it.
func (e *Executor) scan(target string, top *broadcast.SourceType) error {
	f, err := os.Open(target)
	if err != nil {
		return fmt.Errorf("opening target: %w", err)
	}
	defer f.Close()

	b := broadcast.NewBuilder(e.registry,
		broadcast.WithSink(e.sink),
		broadcast.WithTarget(target),
	)
	return e.feed(b.NewSource(top), f)
}

// defaultFeeder streams targets line by line.
func defaultFeeder(src *broadcast.SourceInstance, r io.Reader) error {
	return linesource.Run(src, r)
}
