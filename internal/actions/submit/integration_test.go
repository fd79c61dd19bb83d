package submit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/actions/submit"
	githubpkg "stackit.dev/stk/internal/github"
	"stackit.dev/stk/testhelpers"
	"stackit.dev/stk/testhelpers/scenario"
)

func withMockTracker(t *testing.T, s *scenario.Scenario) *testhelpers.MockGitHubServerConfig {
	t.Helper()
	cfg := testhelpers.NewMockGitHubServerConfig()
	client, owner, repo := testhelpers.NewMockGitHubClient(t, cfg)
	s.Context.Tracker = githubpkg.NewTrackerWithClient(client, owner, repo, githubpkg.Options{Token: "token"})
	return cfg
}

func TestSubmitScenarioStack(t *testing.T) {
	s := scenario.NewScenario(t, nil).
		WithStack(map[string]string{"a": "main", "b": "a"}).
		Checkout("b")
	cfg := withMockTracker(t, s)

	result, err := submit.Action(s.Context, submit.Options{Scope: submit.ScopeFullStack})
	require.NoError(t, err)
	require.Empty(t, result.Failed())

	require.True(t, s.Scene.Repo.RemoteBranchExists("origin", "a"))
	require.True(t, s.Scene.Repo.RemoteBranchExists("origin", "b"))

	require.Len(t, cfg.CreatedPRs, 2)
	require.Equal(t, "a", cfg.CreatedPRs[0].GetHead().GetRef())
	require.Equal(t, "main", cfg.CreatedPRs[0].GetBase().GetRef())
	require.Equal(t, "change on a", cfg.CreatedPRs[0].GetTitle())
	require.Equal(t, "b", cfg.CreatedPRs[1].GetHead().GetRef())
	require.Equal(t, "a", cfg.CreatedPRs[1].GetBase().GetRef())
	require.Equal(t, "change on b", cfg.CreatedPRs[1].GetTitle())
	s.ExpectBranch("b")

	// A second submit finds both requests and pushes nothing
	again, err := submit.Action(s.Context, submit.Options{Scope: submit.ScopeFullStack})
	require.NoError(t, err)
	require.Len(t, cfg.CreatedPRs, 2)
	for _, item := range again.Items {
		require.Equal(t, submit.PushUnchanged, item.Push)
		require.Equal(t, submit.PullRequestExisting, item.Action)
	}
}

func TestSubmitScenarioForcePushAfterRestack(t *testing.T) {
	s := scenario.NewScenario(t, nil).
		WithStack(map[string]string{"a": "main"}).
		Push("a").
		Checkout("a").
		RunGit("commit", "-q", "--amend", "-m", "reworded a")
	cfg := withMockTracker(t, s)

	result, err := submit.Action(s.Context, submit.Options{})
	require.NoError(t, err)
	require.Equal(t, submit.PushForced, result.Items[0].Push)
	require.Equal(t,
		testhelpers.Must(s.Scene.Repo.GetRevision("a")),
		testhelpers.Must(s.Scene.Repo.GetRevision("origin/a")))
	require.Equal(t, "reworded a", cfg.CreatedPRs[0].GetTitle())
}
