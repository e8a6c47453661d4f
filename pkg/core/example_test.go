package core_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/clpipe/searchusage/pkg/core"
)

// ExampleSearch searches a small tree and prints each match.
func ExampleSearch() {
	root, err := os.MkdirTemp("", "searchusage-example-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(root)

	_ = os.WriteFile(filepath.Join(root, "a.txt"), []byte("first\nsecond pkg_resource line\n"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "b.txt"), []byte("pkg_resource\n"), 0o644)
	_ = os.MkdirAll(filepath.Join(root, "build"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "build", "ignored.txt"), []byte("pkg_resource\n"), 0o644)

	matches, err := core.Search("pkg_resource", root, true, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		return
	}
	for _, m := range matches {
		fmt.Printf("%s: %s\n", m.Location(), m.Text)
	}
	// Output:
	// a.txt:2: second pkg_resource line
	// b.txt:1: pkg_resource
}
