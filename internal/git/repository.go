package git

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository wraps a go-git repository for read-only queries
type Repository struct {
	*git.Repository
	path string
}

// OpenRepository opens the git repository containing path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &Repository{
		Repository: repo,
		path:       absPath,
	}, nil
}

// CurrentBranch returns the branch HEAD points at. An unborn branch is
// still reported by name.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", errDetachedHead
	}
	return head.Target().Short(), nil
}

var errDetachedHead = errors.New("HEAD is not on a branch")

// BranchExists reports whether refs/heads/<name> exists
func (r *Repository) BranchExists(name string) (bool, error) {
	return r.referenceExists(plumbing.NewBranchReferenceName(name))
}

// RemoteBranchExists reports whether refs/remotes/<remote>/<name> exists
func (r *Repository) RemoteBranchExists(remote, name string) (bool, error) {
	return r.referenceExists(plumbing.NewRemoteReferenceName(remote, name))
}

func (r *Repository) referenceExists(name plumbing.ReferenceName) (bool, error) {
	_, err := r.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read reference %s: %w", name, err)
	}
	return true, nil
}

// LocalBranches returns every local branch name
func (r *Repository) LocalBranches() ([]string, error) {
	branches, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}
	return names, nil
}

// HasUpstreamConfig reports whether name is configured to track its own
// counterpart on remote. A branch started from another remote branch (for
// example `git checkout -b feat origin/main`) does not count.
func (r *Repository) HasUpstreamConfig(remote, name string) (bool, error) {
	cfg, err := r.Config()
	if err != nil {
		return false, fmt.Errorf("failed to read repository config: %w", err)
	}
	branch, ok := cfg.Branches[name]
	if !ok || branch == nil {
		return false, nil
	}
	return branch.Remote == remote && branch.Merge == plumbing.NewBranchReferenceName(name), nil
}

// RemoteURL returns the first URL configured for remote
func (r *Repository) RemoteURL(remote string) (string, error) {
	cfg, err := r.Config()
	if err != nil {
		return "", fmt.Errorf("failed to read repository config: %w", err)
	}
	rc, ok := cfg.Remotes[remote]
	if !ok || len(rc.URLs) == 0 {
		return "", fmt.Errorf("remote %s has no URL", remote)
	}
	return rc.URLs[0], nil
}

// IsAncestor reports whether ancestor is reachable from descendant
func (r *Repository) IsAncestor(ancestor, descendant string) (bool, error) {
	a, err := r.commit(ancestor)
	if err != nil {
		return false, err
	}
	d, err := r.commit(descendant)
	if err != nil {
		return false, err
	}
	if a.Hash == d.Hash {
		return true, nil
	}
	return a.IsAncestor(d)
}

func (r *Repository) commit(revision string) (*object.Commit, error) {
	hash, err := r.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", revision, err)
	}
	c, err := r.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	return c, nil
}

// Root returns the top-level directory of the work tree
func (r *Repository) Root() string {
	wt, err := r.Worktree()
	if err != nil {
		return r.path
	}
	return wt.Filesystem.Root()
}
