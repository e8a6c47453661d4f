// Package searchusage provides the command-line interface for the searchusage
// tool. It parses flags, merges config files, runs the search and renders
// the results.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/clpipe/searchusage/cmd/searchusage"
//	func main() { searchusage.Execute() }
package searchusage
