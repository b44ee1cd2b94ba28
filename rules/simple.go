package rules

import (
	"fmt"
	"strings"

	"github.com/ruleflow-dev/ruleflow/broadcast"
)

type noTabs struct {
	base
}

func noTabsFactory(b *broadcast.Builder, _ *broadcast.SourceInstance) any {
	return &noTabs{base: newBase(b)}
}

func (c *noTabs) UpdateLine(lineNo int, line string) error {
	if strings.Contains(line, "\t") {
		c.report(lineNo, line, "line contains tab characters")
	}
	return nil
}

type lineLength struct {
	base
	limit int
}

func lineLengthFactory(limit int) broadcast.Factory {
	return func(b *broadcast.Builder, _ *broadcast.SourceInstance) any {
		return &lineLength{base: newBase(b), limit: limit}
	}
}

func (c *lineLength) UpdateLine(lineNo int, line string) error {
	if n := len([]rune(line)); n > c.limit {
		c.report(lineNo, line, fmt.Sprintf("line is %d characters long, limit is %d", n, c.limit))
	}
	return nil
}

type trailingSpace struct {
	base
}

func trailingSpaceFactory(b *broadcast.Builder, _ *broadcast.SourceInstance) any {
	return &trailingSpace{base: newBase(b)}
}

func (c *trailingSpace) UpdateLine(lineNo int, line string) error {
	if line != strings.TrimRight(line, " \t") {
		c.report(lineNo, line, "line has trailing whitespace")
	}
	return nil
}
