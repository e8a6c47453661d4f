package engine

import (
	"io/fs"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// binarySniffBytes is how much of a file's head is checked for NUL bytes.
const binarySniffBytes = 800

// fileFilter applies the per-file include/exclude globs and size limit.
type fileFilter struct {
	includes []string
	excludes []string
	maxBytes int64
}

func newFileFilter(cfg Config) fileFilter {
	return fileFilter{
		includes: parseGlobsList(cfg.IncludeGlobs),
		excludes: parseGlobsList(cfg.ExcludeGlobs),
		maxBytes: cfg.MaxBytes,
	}
}

func (f fileFilter) allow(rel string, d fs.DirEntry) bool {
	if !allowedByGlobs(rel, f.includes, f.excludes) {
		return false
	}
	if f.maxBytes > 0 {
		if info, err := d.Info(); err == nil && info.Size() > f.maxBytes {
			return false
		}
	}
	return true
}

// allowedByGlobs returns true if the given path is allowed by the include/exclude
// globs. Includes, if provided, act as a positive filter; excludes are
// subtracted last. Matching uses forward-slash doublestar semantics.
func allowedByGlobs(relPath string, includes, excludes []string) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	if len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

func looksBinary(b []byte) bool {
	n := binarySniffBytes
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}
