package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.RevisionSource using go-git. The
// revision stamps archived reports with the commit of the data checkout.
type GitInfoAdapter struct {
	path string
}

func New(path string) *GitInfoAdapter {
	return &GitInfoAdapter{path: path}
}

func (g *GitInfoAdapter) IsGitRepo() bool {
	_, err := git.PlainOpenWithOptions(g.path, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Revision returns the short HEAD hash of the repository containing path.
func (g *GitInfoAdapter) Revision() (string, error) {
	repo, err := git.PlainOpenWithOptions(g.path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	hash := head.Hash().String()
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return hash, nil
}
