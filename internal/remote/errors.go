package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidRepo     = errors.New("invalid repository")
	ErrNotFound        = errors.New("not found")
	ErrRateLimited     = errors.New("GitHub API rate limit exceeded")
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrMissingAsset    = errors.New("release asset missing")
)

// RepoError records a failed remote operation against a repository
type RepoError struct {
	Op   string
	Repo string
	Err  error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Repo, e.Err)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}

func repoError(op, repo string, err error) error {
	if err == nil {
		return nil
	}
	return &RepoError{Op: op, Repo: repo, Err: err}
}
