// Package engine contains the core search logic. It traverses the tree under
// a root directory, prunes ignored directories, scans each remaining file
// line by line for a literal term, and returns matches in a deterministic
// order. This package is internal; external consumers should use the stable
// facade in pkg/core.
package engine
