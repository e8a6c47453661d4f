package searchusage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clpipe/searchusage/internal/config"
	"github.com/clpipe/searchusage/internal/engine"
	"github.com/clpipe/searchusage/internal/git"
	"github.com/clpipe/searchusage/internal/ignore"
	"github.com/clpipe/searchusage/internal/logging"
	"github.com/clpipe/searchusage/internal/report"
	"github.com/clpipe/searchusage/internal/tui"
	"github.com/clpipe/searchusage/internal/types"
	"github.com/spf13/cobra"
)

// Output formats accepted by the format config key.
const (
	formatText  = "text"
	formatJSON  = "json"
	formatSARIF = "sarif"
	formatTable = "table"
	formatTUI   = "tui"
)

// runTUI is swapped in tests so the interactive browser is never started.
var runTUI = tui.Run

func runSearch(cmd *cobra.Command, opts *options, term string) error {
	defer logging.LogDuration(time.Now(), "search")
	log := logging.GetLogger("cli")
	if term == "" {
		return engine.ErrEmptyTerm
	}

	root, err := resolveRoot(opts.path)
	if err != nil {
		return err
	}

	// Load configs: CLI > local > global
	gcfg, err := loadLayer(config.LoadGlobal())
	if err != nil {
		return err
	}
	lcfg, err := loadLayer(config.LoadLocal(root))
	if err != nil {
		return err
	}

	extra, err := ignoreFileDirs(root)
	if err != nil {
		return err
	}

	cfg := engine.Config{
		Term:            term,
		Root:            root,
		CaseInsensitive: pickBool(flagBool(cmd, "case-insensitive", opts.caseInsensitive), lcfg.CaseInsensitive, gcfg.CaseInsensitive),
		IgnoreDirs:      unionDirs(opts.ignoreDirs, lcfg.IgnoreDirs, gcfg.IgnoreDirs, extra),
		IncludeGlobs:    pickString(opts.include, lcfg.Include, gcfg.Include),
		ExcludeGlobs:    pickString(opts.exclude, lcfg.Exclude, gcfg.Exclude),
		MaxBytes:        pickInt64(opts.maxBytes, lcfg.MaxBytes, gcfg.MaxBytes),
		SkipBinary:      pickBool(flagBool(cmd, "skip-binary", opts.skipBinary), lcfg.SkipBinary, gcfg.SkipBinary),
		FollowSymlinks:  pickBool(flagBool(cmd, "follow-symlinks", opts.followSymlinks), lcfg.FollowSymlinks, gcfg.FollowSymlinks),
		Threads:         pickInt(opts.threads, lcfg.Threads, gcfg.Threads),
	}
	format, err := resolveFormat(opts, lcfg.Format, gcfg.Format)
	if err != nil {
		return err
	}
	noColor := pickBool(flagBool(cmd, "no-color", opts.noColor), lcfg.NoColor, gcfg.NoColor)

	log.Debug().
		Str("root", root).
		Str("term", term).
		Bool("case_insensitive", cfg.CaseInsensitive).
		Strs("ignore_dirs", cfg.IgnoreDirs).
		Str("format", format).
		Msg("starting search")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.GetLogger("engine").WithContext(ctx)
	res, err := engine.SearchWithStats(ctx, cfg)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	switch format {
	case formatJSON:
		err = report.WriteJSON(stdout, res.Matches)
	case formatSARIF:
		err = report.WriteSARIF(stdout, res.Matches, term, version)
	case formatTable:
		err = report.PrintTable(stdout, res.Matches)
	case formatTUI:
		if !isTerminal(stdout) {
			return errors.New("--tui requires an interactive terminal")
		}
		err = runTUI(res.Matches, tui.Options{
			Root:            root,
			Term:            term,
			CaseInsensitive: cfg.CaseInsensitive,
			Rescan: func() ([]types.UsageMatch, error) {
				return engine.Search(ctx, cfg)
			},
		})
	default:
		err = report.PrintText(stdout, res.Matches, report.PrintOptions{
			Color:           !noColor && isTerminal(stdout),
			Term:            term,
			CaseInsensitive: cfg.CaseInsensitive,
		})
	}
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if opts.stats {
		report.PrintSummary(stderr, report.Summary{
			Matches:      len(res.Matches),
			FilesScanned: res.FilesScanned,
			FilesSkipped: res.FilesSkipped,
			Duration:     res.Duration,
		})
	}
	if format == formatText || format == formatTable {
		notifyUpdate(stderr, opts.noUpdateCheck)
	}

	if len(res.Matches) == 0 {
		return errNoMatches
	}
	return nil
}

// resolveRoot returns the absolute search root. An explicit path is used as
// given; otherwise the enclosing git worktree of the working directory is
// searched, falling back to the working directory itself.
func resolveRoot(path string) (string, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("invalid path %q: %w", path, err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	return git.DefaultRoot(wd), nil
}

// loadLayer treats a missing config file as an empty layer.
func loadLayer(cfg config.FileConfig, err error) (config.FileConfig, error) {
	if errors.Is(err, config.ErrNotFound) {
		return config.FileConfig{}, nil
	}
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ignoreFileDirs reads the repo-local ignore file if present.
func ignoreFileDirs(root string) ([]string, error) {
	names, err := ignore.Load(filepath.Join(root, ignore.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ignore.FileName, err)
	}
	return names, nil
}

// unionDirs concatenates the ignore lists of every layer, dropping
// duplicates while keeping first-seen order.
func unionDirs(layers ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, layer := range layers {
		for _, d := range layer {
			d = strings.TrimSpace(d)
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// resolveFormat picks the output format: an explicit flag wins, then the
// configured format, then plain text.
func resolveFormat(opts *options, local, global *string) (string, error) {
	switch {
	case opts.json:
		return formatJSON, nil
	case opts.sarif:
		return formatSARIF, nil
	case opts.table:
		return formatTable, nil
	case opts.tui:
		return formatTUI, nil
	}
	f := strings.ToLower(strings.TrimSpace(pickString("", local, global)))
	switch f {
	case "":
		return formatText, nil
	case formatText, formatJSON, formatSARIF, formatTable:
		return f, nil
	default:
		return "", fmt.Errorf("config: unknown format %q (want text, json, sarif or table)", f)
	}
}

func notifyUpdate(w io.Writer, disabled bool) {
	if disabled || !isTerminal(w) {
		return
	}
	if latest, newer, _ := checkUpdate(version, false); newer && latest != "" {
		_, _ = fmt.Fprintf(w, "(new version available: v%s)  run 'searchusage update' to upgrade\n", latest)
	}
}
