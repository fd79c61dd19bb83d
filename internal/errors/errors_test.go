package errors_test

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	stkerrors "stackit.dev/stk/internal/errors"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"target not found", stkerrors.NewTargetNotFoundError("feat"), stkerrors.ErrTargetNotFound},
		{"rebase conflict", stkerrors.NewRebaseConflictError("feat", "main", ""), stkerrors.ErrRebaseConflict},
		{"trunk update", &stkerrors.TrunkUpdateError{Trunk: "main", Err: cause}, stkerrors.ErrTrunkUpdateFailure},
		{"pull request creation", &stkerrors.PullRequestCreationError{BranchName: "feat", Base: "main", Err: cause}, stkerrors.ErrPullRequestCreation},
		{"git command", stkerrors.NewGitCommandError("git", []string{"status"}, "", "", cause), stkerrors.ErrPortExecution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tt.err)
			require.ErrorIs(t, wrapped, tt.sentinel)
			require.NotErrorIs(t, wrapped, stkerrors.ErrNotOnBranch)
		})
	}
}

func TestErrorsUnwrapToCause(t *testing.T) {
	cause := errors.New("boom")
	require.ErrorIs(t, &stkerrors.TrunkUpdateError{Trunk: "main", Err: cause}, cause)
	require.ErrorIs(t, &stkerrors.PullRequestCreationError{Err: cause}, cause)
	require.ErrorIs(t, stkerrors.NewGitCommandError("git", nil, "", "", cause), cause)
}

func TestErrorMessages(t *testing.T) {
	require.Equal(t, "branch feat does not exist", stkerrors.NewTargetNotFoundError("feat").Error())
	require.Equal(t,
		"rebase conflict while restacking feat onto main: run stk continue",
		stkerrors.NewRebaseConflictError("feat", "main", "run stk continue").Error())

	err := stkerrors.NewGitCommandError("git", []string{"push", "origin"}, "out\n", "fatal: denied\n", nil)
	require.Equal(t, "git command failed: git push origin\nstderr: fatal: denied\nstdout: out", err.Error())
}

func TestGitCommandErrorExitCode(t *testing.T) {
	require.Equal(t, -1, stkerrors.NewGitCommandError("git", nil, "", "", errors.New("not started")).ExitCode())

	runErr := exec.Command("sh", "-c", "exit 3").Run()
	require.Equal(t, 3, stkerrors.NewGitCommandError("sh", nil, "", "", runErr).ExitCode())
}
