package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches manifest files under a rule directory.
const DefaultPattern = "**/*.rules.yaml"

// Discover walks the filesystem rooted at dir and loads every manifest
// matching the doublestar patterns, sorted by path so discovery order is
// stable. No patterns means DefaultPattern.
func Discover(dir string, patterns ...string) ([]*Manifest, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	return DiscoverFS(os.DirFS(dir), dir, patterns...)
}

// DiscoverFS is Discover over an fs.FS; root is only used to report load
// paths relative to the caller's world.
func DiscoverFS(fsys fs.FS, root string, patterns ...string) ([]*Manifest, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("manifest pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			paths = append(paths, match)
		}
	}
	sort.Strings(paths)

	manifests := make([]*Manifest, 0, len(paths))
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading manifest %s: %w", path, err)
		}
		m, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", filepath.Join(root, path), err)
		}
		m.path = filepath.Join(root, path)
		manifests = append(manifests, m)
	}
	return manifests, nil
}
