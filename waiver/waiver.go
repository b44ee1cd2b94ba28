// Package waiver turns captured violation output back into source edits: for
// every reported violation it brackets the offending line with
// disable/enable pragma comments, so existing violations are waived and only
// new ones fail future runs.
package waiver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// violationPattern matches the first line of a sink record:
// "<path>[:<line>] violates <rule>".
var violationPattern = regexp.MustCompile(`^(?P<path>.*?)(:(?P<line>[0-9]+))? violates (?P<rule>\S+)`)

// Violation is one parsed violation locator.
type Violation struct {
	Path string
	Line int
	Rule string
}

// ParseLine parses one line of tool output. Matches without a line number
// are dropped: a pragma pair cannot be placed without a locator.
func ParseLine(s string) (Violation, bool) {
	m := violationPattern.FindStringSubmatch(s)
	if m == nil {
		return Violation{}, false
	}
	lineIdx := violationPattern.SubexpIndex("line")
	if m[lineIdx] == "" {
		return Violation{}, false
	}
	line, err := strconv.Atoi(m[lineIdx])
	if err != nil {
		return Violation{}, false
	}
	return Violation{
		Path: m[violationPattern.SubexpIndex("path")],
		Line: line,
		Rule: m[violationPattern.SubexpIndex("rule")],
	}, true
}

// Parse reads tool output and returns every placeable violation.
func Parse(r io.Reader) ([]Violation, error) {
	var out []Violation
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if v, ok := ParseLine(sc.Text()); ok {
			out = append(out, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading violations: %w", err)
	}
	return out, nil
}

// Editor applies waiver pragmas to source files.
type Editor struct {
	tool     string
	filePerm os.FileMode
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithToolName sets the marker namespace written into pragma comments.
func WithToolName(name string) EditorOption {
	return func(e *Editor) {
		if name != "" {
			e.tool = name
		}
	}
}

// WithFilePermissions sets the mode used when rewriting files.
func WithFilePermissions(perm os.FileMode) EditorOption {
	return func(e *Editor) {
		e.filePerm = perm
	}
}

// NewEditor creates an editor with the given options.
func NewEditor(opts ...EditorOption) *Editor {
	e := &Editor{tool: "ruleflow", filePerm: 0o644}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DisableMarker returns the pragma line disabling rule.
func (e *Editor) DisableMarker(rule string) string {
	return fmt.Sprintf("// %s: disable=%s", e.tool, rule)
}

// EnableMarker returns the pragma line re-enabling rule.
func (e *Editor) EnableMarker(rule string) string {
	return fmt.Sprintf("// %s: enable=%s", e.tool, rule)
}

// Apply inserts a disable/enable pragma pair around every violation's line
// and rewrites the affected files. Within one file the pairs are applied in
// descending line order, so an insertion never shifts the position of a
// match not yet applied. Returns the number of lines inserted per file.
func (e *Editor) Apply(violations []Violation) (map[string]int, error) {
	perFile := make(map[string][]Violation)
	for _, v := range violations {
		perFile[v.Path] = append(perFile[v.Path], v)
	}

	inserted := make(map[string]int, len(perFile))
	for path, vs := range perFile {
		sort.Slice(vs, func(i, j int) bool { return vs[i].Line > vs[j].Line })

		lines, err := readLines(path)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			n := min(v.Line, len(lines))
			lines = insertAt(lines, n+1, e.EnableMarker(v.Rule))
			lines = insertAt(lines, n, e.DisableMarker(v.Rule))
			inserted[path] += 2
		}
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), e.filePerm); err != nil {
			return nil, fmt.Errorf("rewriting %s: %w", path, err)
		}
	}
	return inserted, nil
}

func insertAt(lines []string, i int, line string) []string {
	if i > len(lines) {
		i = len(lines)
	}
	return slices.Insert(lines, i, line)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
