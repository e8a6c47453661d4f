package engine

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"testing"

	"github.com/clpipe/searchusage/internal/ignore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, cfg Config) []string {
	t.Helper()
	var got []string
	for p := range Files(context.Background(), cfg, cfg.Ignore()) {
		got = append(got, p)
	}
	sort.Strings(got)
	return got
}

func TestFiles_PrunesBeforeDescending(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":                "x",
		"pkg/b.go":             "x",
		".git/HEAD":            "x",
		"pkg/build/gen.go":     "x",
		"pkg/build/sub/more.g": "x",
	})

	got := collect(t, Config{Root: dir})
	assert.Equal(t, []string{"a.txt", "pkg/b.go"}, got)
}

func TestFiles_IgnoredDirContentsNeverVisited(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"keep/a.txt": "x", "skip/b.txt": "x"})

	var seen []string
	ign := recordingMatcher{inner: ignore.New("skip"), seen: &seen}
	var files []string
	for p := range Files(context.Background(), Config{Root: dir}, ign) {
		files = append(files, p)
	}
	assert.Equal(t, []string{"keep/a.txt"}, files)
	assert.Contains(t, seen, "skip")
	for _, name := range seen {
		assert.NotEqual(t, "b.txt", name, "matcher consulted for a file inside a pruned dir")
	}
}

type recordingMatcher struct {
	inner ignore.Matcher
	seen  *[]string
}

func (r recordingMatcher) Match(name string) bool {
	*r.seen = append(*r.seen, name)
	return r.inner.Match(name)
}

func TestFiles_RootIsNeverPruned(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "build")
	writeTree(t, root, map[string]string{"a.txt": "x"})

	assert.Equal(t, []string{"a.txt"}, collect(t, Config{Root: root}))
}

func TestFiles_StopsWhenConsumerBreaks(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "x", "b.txt": "x", "c/d.txt": "x"})

	n := 0
	for range Files(context.Background(), Config{Root: dir}, ignore.Default()) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestFiles_WithIncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "hello", "b.go": "package main\n", "c.md": "doc", "sub/d.go": "package sub\n"})

	assert.Equal(t, []string{"b.go", "sub/d.go"}, collect(t, Config{Root: dir, IncludeGlobs: "**/*.go"}))

	got := collect(t, Config{Root: dir, ExcludeGlobs: "**/*.md"})
	assert.False(t, slices.Contains(got, "c.md"), "exclude globs failed: %v", got)
	assert.Len(t, got, 3)
}

func TestFiles_MaxBytes(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"small.txt": "ok"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), make([]byte, 4096), 0644))

	assert.Equal(t, []string{"small.txt"}, collect(t, Config{Root: dir, MaxBytes: 1024}))
	assert.Equal(t, []string{"big.txt", "small.txt"}, collect(t, Config{Root: dir}))
}

func TestAllowedByGlobs(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		include  string
		exclude  string
		expected bool
	}{
		{name: "no globs", path: "a/b.txt", expected: true},
		{name: "include hit", path: "a/b.go", include: "*.go", expected: true},
		{name: "include miss", path: "a/b.txt", include: "*.go", expected: false},
		{name: "exclude hit", path: "docs/x.md", exclude: "docs/**", expected: false},
		{name: "exclude wins", path: "a/b.go", include: "**/*.go", exclude: "a/**", expected: false},
		{name: "dot slash prefix", path: "a.go", include: "./a.go", expected: true},
		{name: "list", path: "x.py", include: "*.go, *.py", expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allowedByGlobs(tt.path, parseGlobsList(tt.include), parseGlobsList(tt.exclude))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLooksBinary(t *testing.T) {
	assert.False(t, looksBinary([]byte("plain text\n")))
	assert.True(t, looksBinary([]byte("a\x00b")))
	late := append(make([]byte, binarySniffBytes), 0)
	for i := range late[:binarySniffBytes] {
		late[i] = 'a'
	}
	assert.False(t, looksBinary(late), "NUL past the sniff window is ignored")
}
