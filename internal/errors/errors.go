// Package errors provides sentinel errors and custom error types for stk.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotARepository indicates the working directory is not inside a git work tree
	ErrNotARepository = errors.New("not a git repository")

	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrCannotRestackTrunk indicates an attempt to restack or reparent the trunk branch
	ErrCannotRestackTrunk = errors.New("cannot restack the trunk branch")

	// ErrSelfReparent indicates an attempt to make a branch its own parent
	ErrSelfReparent = errors.New("a branch cannot be its own parent")

	// ErrTargetNotFound indicates that the requested parent branch does not exist
	ErrTargetNotFound = errors.New("target branch not found")

	// ErrRebaseConflict indicates that a rebase operation encountered a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrTrunkUpdateFailure indicates the trunk branch could not be updated from its remote
	ErrTrunkUpdateFailure = errors.New("failed to update trunk")

	// ErrTrackerAuthMissing indicates that no credentials are available for the tracker
	ErrTrackerAuthMissing = errors.New("tracker authentication missing")

	// ErrPullRequestCreation indicates a pull request could not be opened
	ErrPullRequestCreation = errors.New("pull request creation failed")

	// ErrPortExecution indicates that the wrapped git or tracker tool failed
	ErrPortExecution = errors.New("command execution failed")

	// ErrTrunkOperation indicates an invalid operation on the trunk branch
	ErrTrunkOperation = errors.New("invalid operation on trunk branch")
)

// TargetNotFoundError is returned when a reparent target does not exist
type TargetNotFoundError struct {
	BranchName string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrTargetNotFound
func (e *TargetNotFoundError) Is(target error) bool {
	return target == ErrTargetNotFound
}

// NewTargetNotFoundError creates a new TargetNotFoundError
func NewTargetNotFoundError(branchName string) *TargetNotFoundError {
	return &TargetNotFoundError{BranchName: branchName}
}

// RebaseConflictError represents an error when a rebase encounters a conflict
type RebaseConflictError struct {
	BranchName string
	Onto       string
	NextStep   string
}

func (e *RebaseConflictError) Error() string {
	msg := fmt.Sprintf("rebase conflict while restacking %s onto %s", e.BranchName, e.Onto)
	if e.NextStep != "" {
		msg += ": " + e.NextStep
	}
	return msg
}

// Is returns true if the target error is ErrRebaseConflict
func (e *RebaseConflictError) Is(target error) bool {
	return target == ErrRebaseConflict
}

// NewRebaseConflictError creates a new RebaseConflictError
func NewRebaseConflictError(branchName, onto, nextStep string) *RebaseConflictError {
	return &RebaseConflictError{
		BranchName: branchName,
		Onto:       onto,
		NextStep:   nextStep,
	}
}

// TrunkUpdateError is returned when sync cannot fast-forward the trunk
type TrunkUpdateError struct {
	Trunk string
	Err   error
}

func (e *TrunkUpdateError) Error() string {
	return fmt.Sprintf("failed to update trunk %s: %v", e.Trunk, e.Err)
}

func (e *TrunkUpdateError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrTrunkUpdateFailure
func (e *TrunkUpdateError) Is(target error) bool {
	return target == ErrTrunkUpdateFailure
}

// PullRequestCreationError records a failure to open a pull request for a branch
type PullRequestCreationError struct {
	BranchName string
	Base       string
	Err        error
}

func (e *PullRequestCreationError) Error() string {
	return fmt.Sprintf("failed to create pull request for %s (base %s): %v", e.BranchName, e.Base, e.Err)
}

func (e *PullRequestCreationError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrPullRequestCreation
func (e *PullRequestCreationError) Is(target error) bool {
	return target == ErrPullRequestCreation
}

// GitCommandError represents an error from a git (or gh) command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("%s command failed: %s %s", e.Command, e.Command, strings.Join(e.Args, " "))
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", strings.TrimSpace(e.Stderr))
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", strings.TrimSpace(e.Stdout))
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrPortExecution
func (e *GitCommandError) Is(target error) bool {
	return target == ErrPortExecution
}

// ExitCode returns the process exit code, or -1 if the command did not exit normally
func (e *GitCommandError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
