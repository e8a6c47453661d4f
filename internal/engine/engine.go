package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/clpipe/searchusage/internal/ignore"
	"github.com/clpipe/searchusage/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyTerm is returned when a scan is requested with an empty search term.
var ErrEmptyTerm = errors.New("search term must be a non-empty string")

// Config controls a single search invocation. It is read-only once a scan
// starts.
type Config struct {
	// Term is the literal substring to look for. Required.
	Term string
	// Root is the directory to scan. Relative roots are resolved against the
	// working directory.
	Root string
	// CaseInsensitive lowercases both the term and each line before
	// comparing. The zero value searches case-sensitively.
	CaseInsensitive bool
	// IgnoreDirs extends the default ignore set with extra directory
	// basenames. The defaults are always applied.
	IgnoreDirs []string

	IncludeGlobs   string
	ExcludeGlobs   string
	MaxBytes       int64
	SkipBinary     bool
	FollowSymlinks bool
	Threads        int
}

// Validate checks the configuration without touching the filesystem.
func (c Config) Validate() error {
	if c.Term == "" {
		return ErrEmptyTerm
	}
	return nil
}

// Ignore returns the effective directory ignore set for c.
func (c Config) Ignore() ignore.Set {
	return ignore.New(c.IgnoreDirs...)
}

// Result contains the sorted matches and basic scan statistics.
type Result struct {
	Matches      []types.UsageMatch
	FilesScanned int
	FilesSkipped int
	Duration     time.Duration
}

// Search runs a scan and returns only the matches.
func Search(ctx context.Context, cfg Config) ([]types.UsageMatch, error) {
	res, err := SearchWithStats(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// SearchWithStats walks cfg.Root, scans every candidate file and returns the
// matches ordered by (path, line). Per-file and per-directory failures are
// skipped. Progress is logged only to a zerolog logger attached to ctx. The
// only error conditions are an invalid configuration and a root that cannot
// be made absolute.
func SearchWithStats(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	if err := cfg.Validate(); err != nil {
		return result, err
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return result, fmt.Errorf("resolve root %q: %w", cfg.Root, err)
	}
	cfg.Root = root
	if ctx == nil {
		ctx = context.Background()
	}
	logger := zerolog.Ctx(ctx)

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	m := newMatcher(cfg)
	started := time.Now()

	var (
		mu  sync.Mutex
		out []types.UsageMatch
		g   errgroup.Group
	)
	g.SetLimit(threads)

	for rel := range Files(ctx, cfg, cfg.Ignore()) {
		g.Go(func() error {
			found, err := m.scanFile(filepath.Join(root, filepath.FromSlash(rel)), rel)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Debug().Err(err).Str("path", rel).Msg("skipping file")
				result.FilesSkipped++
			} else {
				result.FilesScanned++
			}
			// matches read before a mid-file failure are kept
			out = append(out, found...)
			return nil
		})
	}
	_ = g.Wait()

	SortMatches(out)
	result.Matches = out
	result.Duration = time.Since(started)
	logger.Info().
		Str("root", root).
		Int("matches", len(out)).
		Int("files_scanned", result.FilesScanned).
		Int("files_skipped", result.FilesSkipped).
		Dur("duration", result.Duration).
		Msg("search complete")
	return result, nil
}

// SortMatches orders matches by forward-slash path, then line number.
func SortMatches(ms []types.UsageMatch) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Path == ms[j].Path {
			return ms[i].Line < ms[j].Line
		}
		return ms[i].Path < ms[j].Path
	})
}
