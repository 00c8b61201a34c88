// Package gitlib wraps the libgit2 queries used while walking a source tree.
package gitlib

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrBareRepository is returned when the discovered repository has no working tree.
var ErrBareRepository = errors.New("repository has no working tree")

// ErrOutsideWorkdir is returned for paths outside the repository working tree.
var ErrOutsideWorkdir = errors.New("path outside repository working tree")

// Repository wraps a libgit2 repository.
type Repository struct {
	repo    *git2go.Repository
	workdir string
}

// OpenRepository discovers the repository containing path, searching
// parent directories.
func OpenRepository(path string) (*Repository, error) {
	absPath, absErr := filepath.Abs(path)
	if absErr != nil {
		return nil, fmt.Errorf("open repository: %w", absErr)
	}

	repo, err := git2go.OpenRepositoryExtended(absPath, 0, "")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	if repo.IsBare() {
		repo.Free()

		return nil, ErrBareRepository
	}

	workdir := filepath.Clean(repo.Workdir())

	// Resolve symlinks so TempDir paths such as /var -> /private/var compare equal.
	if resolved, evalErr := filepath.EvalSymlinks(workdir); evalErr == nil {
		workdir = resolved
	}

	return &Repository{repo: repo, workdir: workdir}, nil
}

// Workdir returns the absolute working tree root.
func (r *Repository) Workdir() string {
	return r.workdir
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// IsIgnored reports whether the gitignore rules of the repository exclude path.
func (r *Repository) IsIgnored(path string) (bool, error) {
	rel, relErr := r.relative(path)
	if relErr != nil {
		return false, relErr
	}

	if rel == "." {
		return false, nil
	}

	ignored, err := r.repo.IsPathIgnored(rel)
	if err != nil {
		return false, fmt.Errorf("check ignore %s: %w", rel, err)
	}

	return ignored, nil
}

func (r *Repository) relative(path string) (string, error) {
	absPath, absErr := filepath.Abs(path)
	if absErr != nil {
		return "", absErr
	}

	if resolved, evalErr := filepath.EvalSymlinks(absPath); evalErr == nil {
		absPath = resolved
	}

	rel, relErr := filepath.Rel(r.workdir, absPath)
	if relErr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkdir, path)
	}

	return filepath.ToSlash(rel), nil
}
