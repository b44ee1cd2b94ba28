// Command autowaive reads a ruleflow report from stdin and brackets every
// reported line with disable/enable pragma comments, so the violations stop
// being reported on the next run.
//
// Typical use:
//
//	ruleflow -rc style.rules.yaml src/*.c | autowaive --yes
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ruleflow-dev/ruleflow/waiver"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("autowaive", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "apply edits without asking for confirmation")
	tool := fs.String("tool", "ruleflow", "tool name written into the pragma comments")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: ruleflow ... | autowaive [flags]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	violations, err := waiver.Parse(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(violations) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to waive")
		return 0
	}

	var prompter waiver.Prompter = waiver.NewTerminalPrompter()
	if *yes {
		prompter = waiver.AutoApprove{}
	}
	ok, err := prompter.Confirm(fmt.Sprintf("%d violation(s) will be waived in place.", len(violations)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if !ok {
		return 1
	}

	edited, err := waiver.NewEditor(waiver.WithToolName(*tool)).Apply(violations)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	for path, n := range edited {
		fmt.Fprintf(os.Stderr, "%s: %d pragma line(s) inserted\n", path, n)
	}
	return 0
}
