package searchusage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clpipe/searchusage/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), ".searchusage.yml")

	code, stdout, errOut := run(t, "config", "init", "--output", out, "--ignore-dir", "node_modules", "--case-insensitive", "--format", "json")
	require.Equal(t, ExitMatches, code, errOut)
	assert.Contains(t, stdout, "Wrote")

	fc, err := config.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"node_modules"}, fc.IgnoreDirs)
	require.NotNil(t, fc.CaseInsensitive)
	assert.True(t, *fc.CaseInsensitive)
	require.NotNil(t, fc.Format)
	assert.Equal(t, "json", *fc.Format)
	assert.Nil(t, fc.Threads)

	code, _, errOut = run(t, "config", "init", "--output", out)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "already exists")

	code, _, _ = run(t, "config", "init", "--output", out, "--force")
	assert.Equal(t, ExitMatches, code)
}

func TestConfigInit_Global(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	code, _, errOut := run(t, "config", "init", "--global", "--threads", "4")
	require.Equal(t, ExitMatches, code, errOut)

	fc, err := config.LoadGlobal()
	require.NoError(t, err)
	require.NotNil(t, fc.Threads)
	assert.Equal(t, 4, *fc.Threads)
}

func TestConfigInit_RejectsUnknownFormat(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "c.yml")
	code, _, _ := run(t, "config", "init", "--output", out, "--format", "xml")
	assert.Equal(t, ExitError, code)
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, root, ".searchusage.yml", "ignore_dirs: [gen]\nthreads: 3\n")
	writeFile(t, root, ".searchusageignore", "fixtures\n")

	code, out, errOut := run(t, "config", "show", "-p", root)
	require.Equal(t, ExitMatches, code, errOut)
	assert.Contains(t, out, "threads: 3")
	assert.Contains(t, out, "- gen")
	assert.Contains(t, out, "- fixtures")
	assert.Contains(t, out, "- .git")
	assert.Contains(t, out, "format: text")
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	old := checkUpdate
	checkUpdate = func(string, bool) (string, bool, error) { return "9.9.9", true, nil }
	defer func() { checkUpdate = old }()

	_, out, _ := run(t, "version")
	assert.Contains(t, out, "searchusage "+version)
	assert.Contains(t, out, "v9.9.9")

	_, out, _ = run(t, "version", "--no-update-check")
	assert.NotContains(t, out, "9.9.9")
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	code, out, _ := run(t, "completion", "bash")
	assert.Equal(t, ExitMatches, code)
	assert.Contains(t, out, "searchusage")

	code, _, errOut := run(t, "completion", "tcsh")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "unsupported shell")
}

func TestIgnoreAddAndList(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	code, out, errOut := run(t, "ignore", "add", "-p", root, "fixtures", "fixtures/")
	require.Equal(t, ExitMatches, code, errOut)
	assert.Equal(t, "added fixtures\n", out)

	_, out, _ = run(t, "ignore", "list", "-p", root)
	assert.Contains(t, out, "fixtures\n")
	assert.Contains(t, out, "__pycache__\n")

	writeFile(t, root, "fixtures/a.txt", "needle\n")
	writeFile(t, root, "node_modules/b.txt", "needle\n")
	code, _, _ = run(t, "needle", "-p", root)
	assert.Equal(t, ExitMatches, code)

	_, _, _ = run(t, "ignore", "add", "-p", root, "--common")
	code, out, _ = run(t, "needle", "-p", root)
	assert.Equal(t, ExitNoMatches, code, out)

	code, _, errOut = run(t, "ignore", "add", "-p", root)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "nothing to add")
}
