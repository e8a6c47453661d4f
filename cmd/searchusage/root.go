package searchusage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/clpipe/searchusage/internal/logging"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Exit codes.
const (
	ExitMatches   = 0
	ExitNoMatches = 1
	ExitError     = 2
)

// errNoMatches signals a successful search that found nothing.
var errNoMatches = errors.New("no matches")

// options holds the parsed command line for one invocation.
type options struct {
	path            string
	ignoreDirs      []string
	caseInsensitive bool
	include         string
	exclude         string
	maxBytes        int64
	threads         int
	skipBinary      bool
	followSymlinks  bool
	json            bool
	sarif           bool
	table           bool
	tui             bool
	noColor         bool
	stats           bool
	noUpdateCheck   bool
	verbose         int
}

// newRootCmd builds the command tree. Output is written to the command's
// configured out/err writers.
func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "searchusage [flags] <term>",
		Short: "Find every line in a repository that uses a term",
		Long: "searchusage walks a directory tree, skipping build and cache directories, " +
			"and prints every line containing the search term as path:line: text.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.SetupLoggerTo(cmd.ErrOrStderr(), opts.verbose, opts.noColor)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.path, "path", "p", "", "directory to search (default: enclosing git worktree, else current directory)")
	f.StringArrayVar(&opts.ignoreDirs, "ignore-dir", nil, "directory name to skip, in addition to the defaults (repeatable)")
	f.BoolVarP(&opts.caseInsensitive, "case-insensitive", "i", false, "match without regard to case")
	f.StringVar(&opts.include, "include", "", "comma-separated include globs")
	f.StringVar(&opts.exclude, "exclude", "", "comma-separated exclude globs")
	f.Int64Var(&opts.maxBytes, "max-bytes", 0, "skip files larger than this (0 = no limit)")
	f.IntVar(&opts.threads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	f.BoolVar(&opts.skipBinary, "skip-binary", false, "skip files that look binary")
	f.BoolVar(&opts.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	f.BoolVar(&opts.json, "json", false, "emit JSON")
	f.BoolVar(&opts.sarif, "sarif", false, "emit SARIF 2.1.0")
	f.BoolVar(&opts.table, "table", false, "output in table format with borders")
	f.BoolVar(&opts.tui, "tui", false, "browse results interactively")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colorized output")
	f.BoolVar(&opts.stats, "stats", false, "print scan statistics to stderr")
	cmd.MarkFlagsMutuallyExclusive("json", "sarif", "table", "tui")

	cmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	cmd.PersistentFlags().BoolVar(&opts.noUpdateCheck, "no-update-check", false, "disable update check")

	cmd.AddCommand(
		newConfigCmd(),
		newIgnoreCmd(),
		newCompletionCmd(cmd),
		newVersionCmd(opts),
		newUpdateCmd(),
	)
	return cmd
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	switch {
	case err == nil:
		return ExitMatches
	case errors.Is(err, errNoMatches):
		return ExitNoMatches
	default:
		fmt.Fprintln(stderr, "error:", err)
		return ExitError
	}
}

// Execute runs the searchusage CLI. It should be called by the main package.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
