package driver

import (
	"context"
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// cloneDependency clones dep.Git into dir and checks out the requested
// revision, returning the resolved commit.
func cloneDependency(ctx context.Context, dir string, dep *Dependency) (string, error) {
	url := strings.TrimSpace(dep.Git)
	if url == "" {
		return "", fmt.Errorf("dependency %q: git URL required", dep.Name)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}

	revision, ok := gitRevision(dep)
	if !ok {
		head, err := repo.Head()
		if err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("git head %s: %w", url, err)
		}
		return head.Hash().String(), nil
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	return hash.String(), nil
}

func gitRevision(dep *Dependency) (plumbing.Revision, bool) {
	switch {
	case dep.Rev != "":
		return plumbing.Revision(dep.Rev), true
	case dep.Tag != "":
		return plumbing.Revision("refs/tags/" + dep.Tag), true
	case dep.Branch != "":
		return plumbing.Revision("refs/remotes/origin/" + dep.Branch), true
	default:
		return "", false
	}
}
