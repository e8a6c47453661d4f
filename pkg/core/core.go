package core

import (
	"context"

	"github.com/clpipe/searchusage/internal/engine"
	"github.com/clpipe/searchusage/internal/ignore"
	"github.com/clpipe/searchusage/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type Config = engine.Config
type UsageMatch = types.UsageMatch
type Result = engine.Result

// ErrEmptyTerm is returned when the search term is empty.
var ErrEmptyTerm = engine.ErrEmptyTerm

// Search returns every line under root containing term, sorted by path and
// line. ignoreDirs extends the default ignored directory names.
func Search(term, root string, caseSensitive bool, ignoreDirs []string) ([]UsageMatch, error) {
	return engine.Search(context.Background(), Config{
		Term:            term,
		Root:            root,
		CaseInsensitive: !caseSensitive,
		IgnoreDirs:      ignoreDirs,
	})
}

// SearchWithConfig runs a search with the full set of engine options.
func SearchWithConfig(ctx context.Context, cfg Config) ([]UsageMatch, error) {
	return engine.Search(ctx, cfg)
}

// SearchWithStats runs a search and reports scan statistics alongside the
// matches.
func SearchWithStats(ctx context.Context, cfg Config) (Result, error) {
	return engine.SearchWithStats(ctx, cfg)
}

// DefaultIgnoreDirs returns the directory names that are always skipped.
func DefaultIgnoreDirs() []string { return ignore.Default().Names() }
