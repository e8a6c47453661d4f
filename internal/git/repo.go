package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNotRepo is returned when dir is not inside a git worktree.
var ErrNotRepo = errors.New("not inside a git worktree")

// RepoRoot returns the top-level directory of the git worktree containing
// dir, searching parent directories the way git itself does.
func RepoRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", dir, err)
	}
	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", ErrNotRepo
		}
		return "", fmt.Errorf("open repository at %s: %w", abs, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have no worktree to search
		return "", ErrNotRepo
	}
	return wt.Filesystem.Root(), nil
}

// DefaultRoot returns the enclosing worktree root of dir, or dir itself
// (made absolute) when dir is not inside a repository.
func DefaultRoot(dir string) string {
	if root, err := RepoRoot(dir); err == nil {
		return root
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
