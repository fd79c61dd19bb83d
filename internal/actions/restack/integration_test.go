package restack_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/actions/restack"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/testhelpers/scenario"
)

func TestRestackScenarioCascade(t *testing.T) {
	s := scenario.NewScenario(t, nil).
		WithStack(map[string]string{"a": "main", "b": "a", "c": "b"}).
		CommitChange("trunk", "new on main")

	_, err := restack.Action(s.Context, restack.Options{BranchName: "a", Cascade: boolPtr(true)})
	require.NoError(t, err)

	for _, branch := range []string{"a", "b", "c"} {
		s.ExpectContains(branch, "main")
	}
	s.ExpectContains("b", "a").ExpectContains("c", "b").ExpectBranch("main")
}

func TestRestackScenarioReparentOntoTrunk(t *testing.T) {
	s := scenario.NewScenario(t, nil).
		WithStack(map[string]string{"a": "main", "b": "a"}).
		CommitChange("trunk", "new on main").
		Checkout("b")

	result, err := restack.Action(s.Context, restack.Options{Onto: "main"})
	require.NoError(t, err)
	require.True(t, result.Reparented)

	s.ExpectStackStructure(map[string]string{"b": "main"}).
		ExpectContains("b", "main").
		ExpectBranch("b")
}

func TestRestackScenarioIdempotent(t *testing.T) {
	s := scenario.NewScenario(t, nil).
		WithStack(map[string]string{"a": "main", "b": "a"}).
		CommitChange("trunk", "new on main")

	_, err := restack.Action(s.Context, restack.Options{BranchName: "a", Cascade: boolPtr(true)})
	require.NoError(t, err)
	revA, err := s.Scene.Repo.GetRevision("a")
	require.NoError(t, err)
	revB, err := s.Scene.Repo.GetRevision("b")
	require.NoError(t, err)

	_, err = restack.Action(s.Context, restack.Options{BranchName: "a", Cascade: boolPtr(true)})
	require.NoError(t, err)
	require.Equal(t, revA, mustRevision(t, s, "a"))
	require.Equal(t, revB, mustRevision(t, s, "b"))
}

func TestRestackScenarioConflictAndContinue(t *testing.T) {
	s := scenario.NewScenario(t, nil).
		CommitChange("shared", "base").
		CreateBranch("a").
		CommitChange("shared", "from a").
		TrackBranch("a", "main").
		CreateBranch("b").
		CommitChange("b", "b").
		TrackBranch("b", "a").
		Checkout("main").
		CommitChange("shared", "from main").
		Checkout("a")

	_, err := restack.Action(s.Context, restack.Options{Cascade: boolPtr(true)})
	require.ErrorIs(t, err, stkerrors.ErrRebaseConflict)
	require.True(t, s.Scene.Repo.RebaseInProgress())

	require.NoError(t, s.Scene.Repo.CreateChange("resolved", "shared", false))
	result, err := restack.Continue(s.Context)
	require.NoError(t, err)
	require.Equal(t, "a", result.Resumed)
	require.Equal(t, []string{"b"}, result.Restacked)
	require.False(t, s.Scene.Repo.RebaseInProgress())

	s.ExpectContains("a", "main").ExpectContains("b", "a").ExpectBranch("a")
}

func TestRestackScenarioAbort(t *testing.T) {
	s := scenario.NewScenario(t, nil).
		CommitChange("shared", "base").
		CreateBranch("a").
		CommitChange("shared", "from a").
		TrackBranch("a", "main").
		Checkout("main").
		CommitChange("shared", "from main").
		Checkout("a")
	before := mustRevision(t, s, "a")

	_, err := restack.Action(s.Context, restack.Options{})
	require.ErrorIs(t, err, stkerrors.ErrRebaseConflict)

	require.NoError(t, restack.Abort(s.Context))
	require.False(t, s.Scene.Repo.RebaseInProgress())
	require.Equal(t, before, mustRevision(t, s, "a"))
	s.ExpectBranch("a")

	tracked, err := s.Context.Registry.IsTracked(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, tracked)
}

func mustRevision(t *testing.T, s *scenario.Scenario, rev string) string {
	t.Helper()
	sha, err := s.Scene.Repo.GetRevision(rev)
	require.NoError(t, err)
	return sha
}
