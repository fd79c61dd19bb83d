package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"stackit.dev/stk/internal/engine"
	stkerrors "stackit.dev/stk/internal/errors"
)

// DefaultRemote is the remote used when none is configured
const DefaultRemote = "origin"

// Repo implements engine.Repository against a real repository. Queries that
// only read refs and config use go-git; everything else shells out to git.
type Repo struct {
	runner *CommandRunner
	dir    string
	remote string
}

var _ engine.Repository = (*Repo)(nil)

// NewRepo creates a Repo rooted at dir that talks to remote
func NewRepo(dir, remote string) *Repo {
	if remote == "" {
		remote = DefaultRemote
	}
	return &Repo{
		runner: NewCommandRunner(dir),
		dir:    dir,
		remote: remote,
	}
}

// Remote returns the remote name the repo pushes to and fetches from
func (r *Repo) Remote() string {
	return r.remote
}

// Runner returns the command runner bound to the repository directory
func (r *Repo) Runner() *CommandRunner {
	return r.runner
}

// open opens a fresh go-git handle. go-git caches pack indexes, so a handle
// opened before a fetch would not see objects that arrived in a new pack.
func (r *Repo) open() (*Repository, error) {
	dir := r.dir
	if dir == "" {
		dir = "."
	}
	repo, err := OpenRepository(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stkerrors.ErrNotARepository, err)
	}
	return repo, nil
}

// IsRepo reports whether the directory is inside a git work tree
func (r *Repo) IsRepo(ctx context.Context) bool {
	out, err := r.runner.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Root returns the top-level directory of the work tree
func (r *Repo) Root(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %v", stkerrors.ErrNotARepository, err)
	}
	return out, nil
}

// GitDir returns the absolute path of the repository's git directory
func (r *Repo) GitDir(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %v", stkerrors.ErrNotARepository, err)
	}
	return out, nil
}

// CurrentBranch returns the checked-out branch
func (r *Repo) CurrentBranch(_ context.Context) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	name, err := repo.CurrentBranch()
	if errors.Is(err, errDetachedHead) {
		return "", stkerrors.ErrNotOnBranch
	}
	return name, err
}

// BranchExists reports whether a local branch named name exists
func (r *Repo) BranchExists(_ context.Context, name string) (bool, error) {
	repo, err := r.open()
	if err != nil {
		return false, err
	}
	return repo.BranchExists(name)
}

// LocalBranches returns every local branch name
func (r *Repo) LocalBranches(_ context.Context) ([]string, error) {
	repo, err := r.open()
	if err != nil {
		return nil, err
	}
	return repo.LocalBranches()
}

// RemoteURL returns the URL of the configured remote
func (r *Repo) RemoteURL(_ context.Context) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	return repo.RemoteURL(r.remote)
}

// Checkout switches the work tree to name
func (r *Repo) Checkout(ctx context.Context, name string) error {
	if _, err := r.runner.Run(ctx, "checkout", "-q", name, "--"); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return nil
}

// CreateBranch creates name at HEAD and checks it out
func (r *Repo) CreateBranch(ctx context.Context, name string) error {
	if _, err := r.runner.Run(ctx, "checkout", "-q", "-b", name); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return nil
}

// StageAll stages every change in the work tree
func (r *Repo) StageAll(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "add", "--all"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the staged changes with message
func (r *Repo) Commit(ctx context.Context, message string) error {
	if _, err := r.runner.Run(ctx, "commit", "-q", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Amend folds the staged changes into HEAD, keeping its message
func (r *Repo) Amend(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "commit", "-q", "--amend", "--no-edit"); err != nil {
		return fmt.Errorf("failed to amend: %w", err)
	}
	return nil
}

// Fetch updates remote-tracking refs, optionally pruning deleted ones
func (r *Repo) Fetch(ctx context.Context, prune bool) error {
	args := []string{"fetch", "-q"}
	if prune {
		args = append(args, "--prune")
	}
	args = append(args, r.remote)
	if _, err := r.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", r.remote, err)
	}
	return nil
}

// Pull fast-forwards the checked-out branch from its remote counterpart
func (r *Repo) Pull(ctx context.Context) error {
	current, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if _, err := r.runner.Run(ctx, "pull", "-q", "--ff-only", r.remote, current); err != nil {
		return fmt.Errorf("failed to fast-forward %s: %w", current, err)
	}
	return nil
}

// Push pushes name to the remote. force uses --force-with-lease.
func (r *Repo) Push(ctx context.Context, name string, setUpstream, force bool) error {
	args := []string{"push", "-q"}
	if setUpstream {
		args = append(args, "-u")
	}
	if force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, r.remote, name)

	if _, err := r.runner.Run(ctx, args...); err != nil {
		var cmdErr *stkerrors.GitCommandError
		if force && errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "stale info") {
			return fmt.Errorf("force-with-lease push of %s failed because the remote branch changed; run 'stk sync' first: %w", name, err)
		}
		return fmt.Errorf("failed to push branch %s: %w", name, err)
	}
	return nil
}

// Rebase replays the checked-out branch onto onto
func (r *Repo) Rebase(ctx context.Context, onto string) (engine.RebaseResult, error) {
	if _, err := r.runner.Run(ctx, "rebase", "-q", onto); err != nil {
		if r.RebaseInProgress(ctx) {
			return engine.RebaseConflict, nil
		}
		return engine.RebaseConflict, fmt.Errorf("failed to rebase onto %s: %w", onto, err)
	}
	return engine.RebaseDone, nil
}

// RebaseInProgress reports whether a rebase is stopped in the work tree
func (r *Repo) RebaseInProgress(ctx context.Context) bool {
	// rebase-merge/rebase-apply are more reliable than REBASE_HEAD, which
	// can persist after a rebase completes
	gitDir, err := r.GitDir(ctx)
	if err != nil {
		return false
	}
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			return true
		}
	}
	return false
}

// RebaseContinue continues a stopped rebase without opening an editor
func (r *Repo) RebaseContinue(ctx context.Context) (engine.RebaseResult, error) {
	if _, err := r.runner.Run(ctx, "-c", "core.editor=true", "rebase", "--continue"); err != nil {
		if r.RebaseInProgress(ctx) {
			return engine.RebaseConflict, nil
		}
		return engine.RebaseConflict, fmt.Errorf("rebase continue failed: %w", err)
	}
	return engine.RebaseDone, nil
}

// RebaseAbort abandons a stopped rebase
func (r *Repo) RebaseAbort(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "rebase", "--abort"); err != nil {
		return fmt.Errorf("rebase abort failed: %w", err)
	}
	return nil
}

// HasRemoteCounterpart reports whether <remote>/<name> exists locally
func (r *Repo) HasRemoteCounterpart(_ context.Context, name string) (bool, error) {
	repo, err := r.open()
	if err != nil {
		return false, err
	}
	return repo.RemoteBranchExists(r.remote, name)
}

// HadUpstreamEver reports whether name was ever pushed with its upstream set
// to <remote>/<name>. The configuration survives the remote branch being
// deleted and pruned.
func (r *Repo) HadUpstreamEver(_ context.Context, name string) (bool, error) {
	repo, err := r.open()
	if err != nil {
		return false, err
	}
	return repo.HasUpstreamConfig(r.remote, name)
}

// AheadBehind counts commits on name missing from its remote counterpart
// (ahead) and commits on the counterpart missing from name (behind)
func (r *Repo) AheadBehind(ctx context.Context, name string) (int, int, error) {
	out, err := r.runner.Run(ctx, "rev-list", "--left-right", "--count",
		fmt.Sprintf("refs/heads/%s...refs/remotes/%s/%s", name, r.remote, name))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compare %s with %s: %w", name, r.remote, err)
	}
	return parseAheadBehind(out)
}

func parseAheadBehind(out string) (int, int, error) {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	return ahead, behind, nil
}

// MergedInto reports whether every change on name is already in target,
// either by ancestry or, for rebased merges, by patch equivalence
func (r *Repo) MergedInto(ctx context.Context, name, target string) (bool, error) {
	repo, err := r.open()
	if err != nil {
		return false, err
	}
	ancestor, err := repo.IsAncestor(name, target)
	if err != nil {
		return false, fmt.Errorf("failed to check whether %s is merged into %s: %w", name, target, err)
	}
	if ancestor {
		return true, nil
	}

	// git cherry <target> <name> lists commits on name; '-' marks those
	// with an equivalent change already in target
	lines, err := r.runner.RunLines(ctx, "cherry", target, name)
	if err != nil {
		return false, fmt.Errorf("failed to check whether %s is merged into %s: %w", name, target, err)
	}
	for _, line := range lines {
		if line != "" && line[0] != '-' {
			return false, nil
		}
	}
	return true, nil
}

// DeleteBranch deletes the local branch name. Without force git refuses to
// delete a branch that is not merged.
func (r *Repo) DeleteBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := r.runner.Run(ctx, "branch", "-q", flag, name); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// FirstUniqueCommitMessage returns the subject of the oldest commit on name
// that is not on parent, or "" when there is none
func (r *Repo) FirstUniqueCommitMessage(ctx context.Context, name, parent string) (string, error) {
	lines, err := r.runner.RunLines(ctx, "log", "--reverse", "--format=%s", parent+".."+name)
	if err != nil {
		return "", fmt.Errorf("failed to read commits of %s: %w", name, err)
	}
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", nil
}

// CommitSubjects returns the subjects of commits on name that are not on
// parent, newest first
func (r *Repo) CommitSubjects(ctx context.Context, name, parent string) ([]string, error) {
	lines, err := r.runner.RunLines(ctx, "log", "--format=%s", parent+".."+name)
	if err != nil {
		return nil, fmt.Errorf("failed to read commits of %s: %w", name, err)
	}
	return lines, nil
}

// Passthrough runs git with args attached to the terminal
func (r *Repo) Passthrough(ctx context.Context, args ...string) error {
	return r.runner.RunInteractive(ctx, args...)
}
