package remote

import (
	"fmt"
	"strings"
)

var repoPrefixes = []string{
	"https://github.com/",
	"http://github.com/",
	"github.com/",
}

// ParseRepo normalizes user input into the "owner/repo" form.
// Accepts full GitHub URLs with or without a .git suffix.
func ParseRepo(s string) (string, error) {
	repo := strings.TrimSpace(s)
	for _, prefix := range repoPrefixes {
		if strings.HasPrefix(strings.ToLower(repo), prefix) {
			repo = repo[len(prefix):]
			break
		}
	}
	repo = strings.TrimSuffix(repo, "/")
	repo = strings.TrimSuffix(repo, ".git")

	if _, _, err := SplitRepo(repo); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRepo, s)
	}
	return repo, nil
}

// SplitRepo splits "owner/repo" into its parts
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return parts[0], parts[1], nil
}

// RepoURL returns the GitHub page of a repository
func RepoURL(repo string) string {
	return "https://github.com/" + repo
}
