// Command ruleflow scans files against rule manifests and reports every
// violation. Exit status 1 means violations were found, 2 means the run
// itself failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ruleflow-dev/ruleflow/host"
	"github.com/ruleflow-dev/ruleflow/manifest"
	"github.com/ruleflow-dev/ruleflow/report"
	"github.com/ruleflow-dev/ruleflow/rules"
)

type stringList []string

func (l *stringList) String() string { return fmt.Sprint(*l) }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ruleflow", flag.ContinueOnError)

	var manifestPaths stringList
	fs.Var(&manifestPaths, "rc", "path to a rule manifest, may be given multiple times")
	configPath := fs.String("config", "", "path to the tool configuration file (default .ruleflow.yaml)")
	motivation := fs.Bool("m", false, "display the motivation behind each violated rule")
	verbose := fs.Bool("v", false, "verbose operational logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: ruleflow [flags] <file> [file ...]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	targets := fs.Args()
	if len(targets) == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := host.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	manifests, err := collectManifests(cfg, manifestPaths)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(manifests) == 0 {
		fmt.Fprintln(os.Stderr, "no rule manifests given: use -rc or configure rule_dirs")
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sink := report.NewConsoleSink(report.WithMotivation(*motivation || cfg.Motivation))
	e := host.NewExecutor(
		host.WithSink(sink),
		host.WithLogger(logger),
		host.WithRuleSet(rules.RuleSet),
		host.WithContinueOnFault(cfg.ContinueOnFault),
	)

	for _, m := range manifests {
		m.Exclude = append(m.Exclude, cfg.Exclude...)
	}

	res, err := e.Run(context.Background(), manifests, targets)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if res.Failed() {
		return 1
	}
	return 0
}

// collectManifests loads explicitly given manifests plus everything
// discovered under the configured rule directories.
func collectManifests(cfg host.Config, paths []string) ([]*manifest.Manifest, error) {
	var manifests []*manifest.Manifest
	for _, path := range paths {
		m, err := manifest.Load(path)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	for _, dir := range cfg.RuleDirs {
		found, err := manifest.Discover(dir, cfg.Patterns...)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, found...)
	}
	return manifests, nil
}
