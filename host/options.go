package host

import (
	"log/slog"

	"github.com/ruleflow-dev/ruleflow/broadcast"
	"github.com/ruleflow-dev/ruleflow/report"
)

// Executor runs rule manifests over run-targets.
type Executor struct {
	registry  *broadcast.Registry
	sink      report.Sink
	logger    *slog.Logger
	rulesets  []RuleSet
	feed      Feeder
	version   string
	keepGoing bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithRegistry sets the registry rule sets are declared against. Defaults to
// a fresh registry per executor.
func WithRegistry(reg *broadcast.Registry) Option {
	return func(e *Executor) {
		if reg != nil {
			e.registry = reg
		}
	}
}

// WithSink sets the violation sink. Defaults to a console sink on stderr.
func WithSink(s report.Sink) Option {
	return func(e *Executor) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRuleSet adds a rule set to register during preparation.
func WithRuleSet(rs RuleSet) Option {
	return func(e *Executor) {
		if rs != nil {
			e.rulesets = append(e.rulesets, rs)
		}
	}
}

// WithFeeder overrides how run-targets are streamed through the top source.
// The default feeds targets line by line.
func WithFeeder(f Feeder) Option {
	return func(e *Executor) {
		if f != nil {
			e.feed = f
		}
	}
}

// WithVersion overrides the engine version manifests are checked against.
// Used by tests.
func WithVersion(v string) Option {
	return func(e *Executor) {
		if v != "" {
			e.version = v
		}
	}
}

// WithContinueOnFault keeps the run going past a faulted run-target instead
// of aborting, logging the fault.
func WithContinueOnFault(on bool) Option {
	return func(e *Executor) {
		e.keepGoing = on
	}
}

// NewExecutor creates an executor with the given options.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		registry: broadcast.NewRegistry(),
		sink:     report.NewConsoleSink(),
		logger:   slog.Default(),
		feed:     defaultFeeder,
		version:  Version,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
