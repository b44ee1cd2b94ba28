// Package linesource provides the canonical per-line data source: a
// broadcaster that replays every line of a run-target to its subscribers,
// followed by one end-of-stream notification. Most rules are built directly
// on it.
package linesource

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ruleflow-dev/ruleflow/broadcast"
)

// SourceName is the declared name of the per-line broadcaster.
const SourceName = "LineBroadcaster"

// EOFSignal is the extra signal emitted once after the last line.
const EOFSignal = "eof"

// Handler is the contract of checks subscribed to the line broadcaster.
// Line numbers are zero-based and line text excludes the newline.
type Handler interface {
	UpdateLine(lineNo int, line string) error
	EOF() error
}

// Register declares the line broadcaster on reg and returns its type.
func Register(reg *broadcast.Registry) (*broadcast.SourceType, error) {
	return reg.DeclareSource(SourceName,
		func(impl any) (broadcast.HandlerFunc, bool) {
			h, ok := impl.(Handler)
			if !ok {
				return nil, false
			}
			return func(args ...any) error {
				return h.UpdateLine(args[0].(int), args[1].(string))
			}, true
		},
		broadcast.WithSignal(EOFSignal, func(impl any) (broadcast.HandlerFunc, bool) {
			h, ok := impl.(Handler)
			if !ok {
				return nil, false
			}
			return func(...any) error {
				return h.EOF()
			}, true
		}),
	)
}

// runConfig holds streaming limits.
type runConfig struct {
	maxLineSize int
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithMaxLineSize caps the length of a single scanned line in bytes.
// Lines beyond the cap fail the run rather than being truncated.
func WithMaxLineSize(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxLineSize = n
		}
	}
}

// Run streams r through the source instance line by line: one broadcast of
// (lineNo, text) per line, then exactly one end-of-stream signal. Faults
// raised by subscribers propagate unmodified and abort the stream.
func Run(src *broadcast.SourceInstance, r io.Reader, opts ...RunOption) error {
	cfg := runConfig{maxLineSize: 1 << 20}
	for _, opt := range opts {
		opt(&cfg)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, min(64*1024, cfg.maxLineSize)), cfg.maxLineSize)

	for i := 0; sc.Scan(); i++ {
		if err := src.Broadcast(i, sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", src.Builder().Target(), err)
	}
	return src.Emit(EOFSignal)
}

// BaseCheck is an embeddable no-op Handler. Checks that only care about
// lines, or only about end-of-stream, embed it and override what they need.
type BaseCheck struct{}

func (BaseCheck) UpdateLine(int, string) error { return nil }

func (BaseCheck) EOF() error { return nil }
