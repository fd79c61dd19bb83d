package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const textFileName = "test.txt"

// GitRepo represents a Git repository for testing purposes
type GitRepo struct {
	Dir string
}

// gitEnv keeps the developer's global config out of test repositories
var gitEnv = []string{
	"GIT_CONFIG_GLOBAL=/dev/null",
	"GIT_CONFIG_NOSYSTEM=1",
	"GIT_TERMINAL_PROMPT=0",
}

// NewGitRepo initializes a new Git repository in dir with main as the initial branch
func NewGitRepo(dir string) (*GitRepo, error) {
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", "-q", "-b", "main", dir)
	cmd.Env = append(os.Environ(), gitEnv...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w: %s", err, output)
	}
	repo := &GitRepo{Dir: dir}
	if err := repo.configureUser(); err != nil {
		return nil, err
	}
	return repo, nil
}

// CloneGitRepo clones source into dir
func CloneGitRepo(source, dir string) (*GitRepo, error) {
	cmd := exec.Command("git", "clone", "-q", source, dir)
	cmd.Env = append(os.Environ(), gitEnv...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to clone repo: %w: %s", err, output)
	}
	repo := &GitRepo{Dir: dir}
	if err := repo.configureUser(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *GitRepo) configureUser() error {
	// Configure Git user (required for commits)
	if err := r.RunGitCommand("config", "user.name", "Test User"); err != nil {
		return err
	}
	if err := r.RunGitCommand("config", "user.email", "test@example.com"); err != nil {
		return err
	}
	return r.RunGitCommand("config", "commit.gpgsign", "false")
}

// RunGitCommand executes a git command in the repository directory
func (r *GitRepo) RunGitCommand(args ...string) error {
	_, err := r.RunGitCommandAndGetOutput(args...)
	return err
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), gitEnv...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(string(output)), nil
}

// CreateChange writes textValue to a file named after prefix and stages it
// unless unstaged is set
func (r *GitRepo) CreateChange(textValue string, prefix string, unstaged bool) error {
	fileName := textFileName
	if prefix != "" {
		fileName = prefix + "_" + fileName
	}
	filePath := filepath.Join(r.Dir, fileName)

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(textValue), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if !unstaged {
		return r.RunGitCommand("add", filePath)
	}
	return nil
}

// CreateChangeAndCommit creates a file change and commits it with textValue as message
func (r *GitRepo) CreateChangeAndCommit(textValue string, prefix string) error {
	if err := r.CreateChange(textValue, prefix, false); err != nil {
		return err
	}
	return r.RunGitCommand("commit", "-q", "-m", textValue)
}

// CreateChangeAndAmend creates a file change and amends the last commit
func (r *GitRepo) CreateChangeAndAmend(textValue string, prefix string) error {
	if err := r.CreateChange(textValue, prefix, false); err != nil {
		return err
	}
	return r.RunGitCommand("commit", "-q", "--amend", "--no-edit")
}

// CreateBranch creates a new branch without checking it out
func (r *GitRepo) CreateBranch(name string) error {
	return r.RunGitCommand("branch", name)
}

// CreateAndCheckoutBranch creates and checks out a new branch
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.RunGitCommand("checkout", "-q", "-b", name)
}

// CheckoutBranch checks out a branch
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.RunGitCommand("checkout", "-q", name)
}

// DeleteBranch force-deletes a local branch
func (r *GitRepo) DeleteBranch(name string) error {
	return r.RunGitCommand("branch", "-D", name)
}

// CurrentBranchName returns the name of the current branch
func (r *GitRepo) CurrentBranchName() (string, error) {
	return r.RunGitCommandAndGetOutput("branch", "--show-current")
}

// GetRevision returns the SHA of a revision
func (r *GitRepo) GetRevision(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", rev)
}

// BranchExists reports whether a local branch exists
func (r *GitRepo) BranchExists(name string) bool {
	return r.RunGitCommand("show-ref", "--verify", "--quiet", "refs/heads/"+name) == nil
}

// GetLocalBranches returns a list of all local branches
func (r *GitRepo) GetLocalBranches() ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

// IsAncestor checks if the first ref is an ancestor of the second ref
func (r *GitRepo) IsAncestor(ancestor, descendant string) bool {
	return r.RunGitCommand("merge-base", "--is-ancestor", ancestor, descendant) == nil
}

// RebaseInProgress checks if a rebase is in progress
func (r *GitRepo) RebaseInProgress() bool {
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(r.Dir, ".git", dir)); err == nil {
			return true
		}
	}
	return false
}

// ListCommitSubjects returns the subjects of commits in base..head, newest first
func (r *GitRepo) ListCommitSubjects(base, head string) ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("log", "--format=%s", base+".."+head)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

// ConfigGet returns a repository-local config value and whether it is set
func (r *GitRepo) ConfigGet(key string) (string, bool) {
	value, err := r.RunGitCommandAndGetOutput("config", "--local", "--get", key)
	if err != nil {
		return "", false
	}
	return value, true
}

// CreateBareRemote creates a bare repository next to the work tree and adds
// it as remote name. Returns the path to the bare repository.
func (r *GitRepo) CreateBareRemote(name string) (string, error) {
	bareDir := r.Dir + "-" + name + ".git"

	cmd := exec.Command("git", "init", "-q", "--bare", "-b", "main", bareDir)
	cmd.Env = append(os.Environ(), gitEnv...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to create bare repo: %w: %s", err, output)
	}
	if err := r.RunGitCommand("remote", "add", name, bareDir); err != nil {
		return "", fmt.Errorf("failed to add remote: %w", err)
	}
	return bareDir, nil
}

// PushBranch pushes a branch to a remote and sets its upstream
func (r *GitRepo) PushBranch(remote, branch string) error {
	return r.RunGitCommand("push", "-q", "-u", remote, branch)
}

// DeleteRemoteBranch deletes branch on remote, as a hosting service does
// after merging a pull request
func (r *GitRepo) DeleteRemoteBranch(remote, branch string) error {
	return r.RunGitCommand("push", "-q", remote, "--delete", branch)
}

// RemoteBranchExists reports whether refs/remotes/<remote>/<branch> exists locally
func (r *GitRepo) RemoteBranchExists(remote, branch string) bool {
	return r.RunGitCommand("show-ref", "--verify", "--quiet", "refs/remotes/"+remote+"/"+branch) == nil
}

// splitLines splits a string by newlines and returns non-empty lines
func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
