// Package core provides a small, stable facade over the search engine for
// programs that want usage search without the command line.
//
// Example:
//
//	matches, err := core.Search("pkg_resource", ".", false, []string{"node_modules"})
//	if err != nil { /* handle */ }
//	_ = core.MarshalMatches(os.Stdout, matches)
package core
