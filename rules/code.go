package rules

import (
	"strings"

	"github.com/ruleflow-dev/ruleflow/broadcast"
)

// CodeSourceName is the filtering source that replays lines with their
// comments stripped. Checks that only care about non-comment content
// subscribe to it instead of the raw line source.
const CodeSourceName = "CodeBroadcaster"

const commentLeader = "//"

// CodeHandler is the contract of checks subscribed to CodeBroadcaster.
type CodeHandler interface {
	UpdateCode(lineNo int, code string) error
}

// codeFilter is both a check and a source: it subscribes to the line source
// and re-broadcasts every line with its comment removed.
type codeFilter struct {
	base
	src *broadcast.SourceInstance
}

// Source satisfies broadcast.SourceHolder so Find descends into the filter.
func (c *codeFilter) Source() *broadcast.SourceInstance {
	return c.src
}

func (c *codeFilter) UpdateLine(lineNo int, line string) error {
	code := line
	if i := strings.Index(line, commentLeader); i >= 0 {
		code = line[:i]
	}
	return c.src.Broadcast(lineNo, code)
}

// registerCodeSource declares the code source together with its filter
// check. A nil source return means the filter was excluded from the run and
// nothing will feed the source.
func registerCodeSource(reg *broadcast.Registry, lineSrc *broadcast.SourceType) (*broadcast.SourceType, error) {
	codeSrc, err := reg.DeclareSource(CodeSourceName, func(impl any) (broadcast.HandlerFunc, bool) {
		h, ok := impl.(CodeHandler)
		if !ok {
			return nil, false
		}
		return func(args ...any) error {
			return h.UpdateCode(args[0].(int), args[1].(string))
		}, true
	})
	if err != nil {
		return nil, err
	}

	filter, err := reg.DeclareCheck(CodeSourceName, func(b *broadcast.Builder, _ *broadcast.SourceInstance) any {
		f := &codeFilter{base: newBase(b)}
		f.src = b.NewSource(codeSrc)
		return f
	}, []*broadcast.SourceType{lineSrc})
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, nil
	}
	return codeSrc, nil
}

// commentDensity flags targets that are almost entirely comments. It
// subscribes to both the raw line source and the code source, so it receives
// every line twice through differently named handlers.
type commentDensity struct {
	base
	max      float64
	minLines int

	total int
	code  int
}

func commentDensityFactory(max float64, minLines int) broadcast.Factory {
	return func(b *broadcast.Builder, _ *broadcast.SourceInstance) any {
		return &commentDensity{base: newBase(b), max: max, minLines: minLines}
	}
}

func (c *commentDensity) UpdateLine(int, string) error {
	c.total++
	return nil
}

func (c *commentDensity) UpdateCode(_ int, code string) error {
	if strings.TrimSpace(code) != "" {
		c.code++
	}
	return nil
}

func (c *commentDensity) EOF() error {
	if c.total < c.minLines {
		return nil
	}
	density := 1 - float64(c.code)/float64(c.total)
	if density > c.max {
		c.reportTarget("target is almost entirely comments")
	}
	return nil
}
