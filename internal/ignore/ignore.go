package ignore

import (
	"bufio"
	"os"
	"sort"
	"strings"
)

// FileName is the repo-local file listing extra directory names to prune.
const FileName = ".searchusageignore"

// defaultDirs are pruned on every scan: version-control metadata, bytecode
// and tool caches, and common build output.
var defaultDirs = []string{
	".git",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".eggs",
	"build",
	"dist",
}

// Matcher reports whether a directory basename should be pruned.
type Matcher interface {
	Match(name string) bool
}

// Set is an immutable set of directory basenames. The zero value matches
// nothing; use Default or New to start from the built-in names.
type Set struct {
	names map[string]struct{}
}

// Default returns the built-in ignore set.
func Default() Set { return New() }

// New returns the default set extended with extra. Empty names are dropped;
// a trailing slash is tolerated so "node_modules/" and "node_modules" agree.
func New(extra ...string) Set {
	names := make(map[string]struct{}, len(defaultDirs)+len(extra))
	for _, n := range defaultDirs {
		names[n] = struct{}{}
	}
	for _, n := range extra {
		if n = normalize(n); n != "" {
			names[n] = struct{}{}
		}
	}
	return Set{names: names}
}

// With returns a copy of s extended with extra. s itself is not modified.
func (s Set) With(extra ...string) Set {
	names := make(map[string]struct{}, len(s.names)+len(extra))
	for n := range s.names {
		names[n] = struct{}{}
	}
	for _, n := range extra {
		if n = normalize(n); n != "" {
			names[n] = struct{}{}
		}
	}
	return Set{names: names}
}

// Match reports whether name is in the set. Comparison is exact basename
// equality; no globbing and no case folding.
func (s Set) Match(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Names returns the set members in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of names in the set.
func (s Set) Len() int { return len(s.names) }

// Load reads directory names from an ignore file, one per line. Blank lines
// and lines starting with '#' are skipped.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if n := normalize(line); n != "" {
			out = append(out, n)
		}
	}
	return out, sc.Err()
}

func normalize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, "/\\")
	return name
}
