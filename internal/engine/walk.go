package engine

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"

	"github.com/clpipe/searchusage/internal/ignore"
	"github.com/rs/zerolog"
)

// Files yields the root-relative, forward-slash paths of every regular file
// under cfg.Root that survives directory pruning and the file filters.
// Directories matched by ign are never entered. Unreadable directories are
// skipped. The sequence is lazy: the tree is walked as values are consumed.
func Files(ctx context.Context, cfg Config, ign ignore.Matcher) iter.Seq[string] {
	if ctx == nil {
		ctx = context.Background()
	}
	filter := newFileFilter(cfg)
	return func(yield func(string) bool) {
		w := &walker{
			ctx:    ctx,
			log:    zerolog.Ctx(ctx),
			ign:    ign,
			filter: filter,
			yield:  yield,
		}
		if cfg.FollowSymlinks {
			w.visited = map[string]bool{}
		}
		w.walk(resolveRoot(cfg.Root), "")
	}
}

// resolveRoot follows a root that is itself a symlink so the walk starts in
// the target directory.
func resolveRoot(root string) string {
	fi, err := os.Lstat(root)
	if err != nil || fi.Mode()&fs.ModeSymlink == 0 {
		return root
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		return resolved
	}
	return root
}

type walker struct {
	ctx     context.Context
	log     *zerolog.Logger
	ign     ignore.Matcher
	filter  fileFilter
	yield   func(string) bool
	visited map[string]bool // real paths of entered directories; nil unless following symlinks
	stopped bool
}

// walk traverses dir, reporting files as prefix/<path relative to dir>.
func (w *walker) walk(dir, prefix string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if w.stopped || w.ctx.Err() != nil {
			w.stopped = true
			return fs.SkipAll
		}
		if err != nil {
			w.log.Debug().Err(err).Str("path", p).Msg("skipping unreadable path")
			return nil
		}
		rel := w.rel(dir, prefix, p)
		if d.IsDir() {
			if p != dir && w.ign.Match(d.Name()) {
				w.log.Trace().Str("dir", rel).Msg("pruned ignored directory")
				return filepath.SkipDir
			}
			if w.visited != nil && !w.enter(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if rel == "" {
			// root is not a directory
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return w.symlink(p, rel, d.Name())
		}
		if !d.Type().IsRegular() {
			w.log.Trace().Str("path", rel).Msg("skipping special file")
			return nil
		}
		if !w.filter.allow(rel, d) {
			return nil
		}
		return w.emit(rel)
	})
}

// symlink handles a link found during the walk. Links to regular files are
// scanned like files. Links to directories are descended only when following
// symlinks, subject to the ignore set and the cycle guard.
func (w *walker) symlink(p, rel, name string) error {
	info, err := os.Stat(p)
	if err != nil {
		w.log.Debug().Err(err).Str("path", rel).Msg("skipping broken symlink")
		return nil
	}
	if info.IsDir() {
		if w.visited == nil || w.ign.Match(name) {
			return nil
		}
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			w.log.Debug().Err(err).Str("path", rel).Msg("cannot resolve symlink")
			return nil
		}
		w.walk(resolved, rel)
		if w.stopped {
			return fs.SkipAll
		}
		return nil
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	if !w.filter.allow(rel, fs.FileInfoToDirEntry(info)) {
		return nil
	}
	return w.emit(rel)
}

// enter records the real path of a directory and reports whether it has not
// been seen before.
func (w *walker) enter(p string) bool {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		w.log.Debug().Err(err).Str("path", p).Msg("cannot resolve directory")
		return false
	}
	if w.visited[resolved] {
		w.log.Debug().Str("path", p).Str("real", resolved).Msg("symlink cycle detected")
		return false
	}
	w.visited[resolved] = true
	return true
}

func (w *walker) emit(rel string) error {
	if !w.yield(rel) {
		w.stopped = true
		return fs.SkipAll
	}
	return nil
}

func (w *walker) rel(dir, prefix, p string) string {
	r, err := filepath.Rel(dir, p)
	if err != nil || r == "." {
		r = ""
	}
	r = filepath.ToSlash(r)
	if prefix == "" {
		return r
	}
	if r == "" {
		return prefix
	}
	return path.Join(prefix, r)
}
