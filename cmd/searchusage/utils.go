package searchusage

import (
	"io"
	"os"
	"runtime/debug"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/clpipe/searchusage/internal/update"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// checkUpdate is swapped in tests to keep them off the network.
var checkUpdate = update.Check

// selfUpdate replaces the running binary with the latest GitHub release and
// returns the installed version.
func selfUpdate() (string, error) {
	v := version
	// Use build info if tag overridden at build-time
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(v) == 0 {
				v = s.Value
			}
		}
	}
	ver, err := semver.ParseTolerant(v)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	latest, err := selfupdate.UpdateSelf(semver3.MustParse(ver.String()), update.Repo)
	if err != nil {
		return "", err
	}
	return latest.Version.String(), nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

// pickBool resolves a boolean setting. cli is nil unless the flag was given
// on the command line, so an explicit --flag=false still wins over config.
func pickBool(cli, local, global *bool) bool {
	if cli != nil {
		return *cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// flagBool returns a pointer to v when the named flag was set explicitly.
func flagBool(cmd *cobra.Command, name string, v bool) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}
