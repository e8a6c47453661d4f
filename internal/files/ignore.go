package files

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/clpipe/searchusage/internal/ignore"
)

// AppendIgnore ensures the directory name is listed in the ignore file at
// repoRoot. It creates the file if missing and reports whether a line was
// added. Idempotent: "vendor" and "vendor/" are the same entry.
func AppendIgnore(repoRoot, name string) (bool, error) {
	name = strings.TrimRight(strings.TrimSpace(name), "/")
	if name == "" {
		return false, nil
	}
	path := filepath.Join(repoRoot, ignore.FileName)
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			existing[strings.TrimRight(strings.TrimSpace(sc.Text()), "/")] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	}
	if existing[name] {
		return false, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	line := name + "\n"
	if !endsWithNewline {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		return false, err
	}
	return true, nil
}

// CommonVendorDirs returns dependency and environment directories that are
// usually worth skipping but are not in the default set.
func CommonVendorDirs() []string {
	return []string{
		"node_modules",
		"vendor",
		".venv",
		"venv",
		".tox",
		"target",
	}
}
