package waiver

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// Prompter decides whether the editor may rewrite files.
type Prompter interface {
	Confirm(summary string) (bool, error)
}

// Ensure implementations satisfy the interface.
var (
	_ Prompter = (*TerminalPrompter)(nil)
	_ Prompter = (*AutoApprove)(nil)
)

// TerminalPrompter asks for confirmation interactively before files are
// edited. Outside an interactive terminal it refuses, so piped invocations
// must opt in explicitly.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Confirm asks the user whether to apply the edits described by summary.
func (p *TerminalPrompter) Confirm(summary string) (bool, error) {
	if !p.IsInteractive() {
		fmt.Fprintln(os.Stderr, "refusing to edit files without confirmation; re-run with --yes to approve")
		return false, nil
	}

	var approved bool
	err := huh.NewConfirm().
		Title("Waive existing violations?").
		Description(summary).
		Affirmative("Apply edits").
		Negative("Abort").
		Value(&approved).
		Run()
	if err != nil {
		return false, err
	}
	return approved, nil
}

// AutoApprove skips confirmation. Used by --yes and in tests.
type AutoApprove struct{}

func (AutoApprove) Confirm(string) (bool, error) { return true, nil }
