package repository

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

// Revision identifies the commit checked out at the monorepo root.
type Revision struct {
	Hash   string `json:"hash,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Known reports whether a commit was resolved.
func (r Revision) Known() bool {
	return r.Hash != ""
}

// Short returns an abbreviated hash, or "unknown".
func (r Revision) Short() string {
	if !r.Known() {
		return "unknown"
	}
	if len(r.Hash) > 12 {
		return r.Hash[:12]
	}
	return r.Hash
}

func (r Revision) String() string {
	if !r.Known() {
		return "unknown"
	}
	if r.Branch == "" {
		return r.Short() + " (detached)"
	}
	return fmt.Sprintf("%s (%s)", r.Short(), r.Branch)
}

// Head resolves HEAD for the repository containing path. Paths outside any
// repository, and repositories with no commits yet, yield a zero Revision and
// a nil error.
func Head(path string) (Revision, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, nil
		}
		return Revision{}, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Revision{}, nil
		}
		return Revision{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	rev := Revision{Hash: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	return rev, nil
}
