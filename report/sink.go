// Package report carries rule violations from check instances to an output sink.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Ensure implementations satisfy the interface.
var (
	_ Sink = (*ConsoleSink)(nil)
	_ Sink = (*NopSink)(nil)
)

const indent = "  "

// ConsoleSink writes violations as plain text.
//
// The first line of every record has the exact shape
// "<target>[:<line>] violates <check>" so that downstream tooling
// (the autowaive utility in particular) can parse sink output.
type ConsoleSink struct {
	w          io.Writer
	motivation bool
	count      int
}

// ConsoleSinkOption configures a ConsoleSink.
type ConsoleSinkOption func(*ConsoleSink)

// WithWriter sets the output writer. Defaults to stderr.
func WithWriter(w io.Writer) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		if w != nil {
			s.w = w
		}
	}
}

// WithMotivation enables printing each check's motivation text after the violation.
func WithMotivation(on bool) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		s.motivation = on
	}
}

// NewConsoleSink creates a console sink with the given options.
func NewConsoleSink(opts ...ConsoleSinkOption) *ConsoleSink {
	s := &ConsoleSink{w: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report formats and writes one violation record.
func (s *ConsoleSink) Report(v Violation) {
	s.count++

	locator := ""
	if v.HasLine {
		locator = fmt.Sprintf(":%d", v.Line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s violates %s\n", v.Target, locator, v.Check.Name())

	if v.Reason != "" {
		fmt.Fprintf(&b, "%sReason:\n%s%s%s\n", indent, indent, indent, v.Reason)
	}
	if v.Text != "" {
		fmt.Fprintf(&b, "%sOffending Code:\n%s%s>%s\n", indent, indent, indent, strings.TrimRight(v.Text, " \t\r\n"))
	}
	if s.motivation {
		if m := v.Check.Motivation(); m != "" {
			fmt.Fprintf(&b, "%sMotivation:\n%s%s%s\n", indent, indent, indent, m)
		}
	}

	fmt.Fprint(s.w, b.String())
}

// Count returns the number of violations reported so far.
func (s *ConsoleSink) Count() int {
	return s.count
}

// NopSink discards violations. Useful in tests.
type NopSink struct{}

func (NopSink) Report(Violation) {}

func (NopSink) Count() int { return 0 }
