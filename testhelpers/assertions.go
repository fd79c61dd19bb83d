// Package testhelpers provides testing utilities for stk, including a scene
// system, Git repository helpers, a mock GitHub server and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must panics if err is not nil, otherwise returns the value. Useful for
// test setup code where errors are not expected.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	want := append([]string{}, expected...)
	sort.Strings(want)

	require.Equal(t, want, branches, "Branches do not match")
}

// ExpectCommits asserts that the newest commits on branch have the expected
// subjects, newest first
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("log", "--format=%s", "-n", "50", branch)
	require.NoError(t, err, "Failed to list commits")

	commits := splitLines(output)
	if len(commits) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(commits))
		return
	}
	require.Equal(t, expected, commits[:len(expected)], "Commits do not match")
}

// ExpectParent asserts the parent pointer recorded for branch in git config
func ExpectParent(t *testing.T, repo *GitRepo, branch, parent string) {
	t.Helper()

	value, ok := repo.ConfigGet("stk." + branch + ".parent")
	require.True(t, ok, "no parent recorded for %s", branch)
	require.Equal(t, parent, value, "unexpected parent for %s", branch)
}
