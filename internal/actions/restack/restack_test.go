package restack_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/actions/restack"
	"stackit.dev/stk/internal/config"
	"stackit.dev/stk/internal/engine"
	"stackit.dev/stk/internal/engine/enginetest"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fixture struct {
	ctx      *runtime.Context
	repo     *enginetest.FakeRepo
	reg      *engine.Registry
	prompter *enginetest.ScriptedPrompter
	out      *bytes.Buffer
}

// newFixture builds main <- a <- {b <- d, c} with a checked out
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gctx := context.Background()
	repo := enginetest.NewFakeRepo("main", "a", "b", "c", "d")
	reg := engine.NewRegistry(engine.NewMemoryStore(), "main")
	require.NoError(t, reg.Track(gctx, "a", "main"))
	require.NoError(t, reg.Track(gctx, "b", "a"))
	require.NoError(t, reg.Track(gctx, "c", "a"))
	require.NoError(t, reg.Track(gctx, "d", "b"))
	repo.Current = "a"

	out := &bytes.Buffer{}
	ctx := runtime.NewContext(gctx, reg, repo)
	ctx.Splog = tui.NewSplogWithWriter(out)
	prompter := enginetest.NewScriptedPrompter()
	ctx.Prompter = prompter
	ctx.GitDir = t.TempDir()
	return &fixture{ctx: ctx, repo: repo, reg: reg, prompter: prompter, out: out}
}

func boolPtr(b bool) *bool { return &b }

func TestRestackValidation(t *testing.T) {
	t.Run("trunk cannot be restacked", func(t *testing.T) {
		f := newFixture(t)
		_, err := restack.Action(f.ctx, restack.Options{BranchName: "main"})
		require.ErrorIs(t, err, stkerrors.ErrCannotRestackTrunk)
		require.Empty(t, f.repo.CallLog())
	})

	t.Run("self reparent is rejected without touching the registry", func(t *testing.T) {
		f := newFixture(t)
		_, err := restack.Action(f.ctx, restack.Options{BranchName: "b", Onto: "b"})
		require.ErrorIs(t, err, stkerrors.ErrSelfReparent)

		parent, ok, err := f.reg.Parent(context.Background(), "b")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "a", parent)
		require.Empty(t, f.repo.CallLog())
	})

	t.Run("missing target", func(t *testing.T) {
		f := newFixture(t)
		_, err := restack.Action(f.ctx, restack.Options{BranchName: "b", Onto: "nope"})
		require.ErrorIs(t, err, stkerrors.ErrTargetNotFound)

		var target *stkerrors.TargetNotFoundError
		require.True(t, errors.As(err, &target))
		require.Equal(t, "nope", target.BranchName)
		require.Empty(t, f.repo.CallLog())
	})

	t.Run("missing branch", func(t *testing.T) {
		f := newFixture(t)
		_, err := restack.Action(f.ctx, restack.Options{BranchName: "ghost"})
		require.ErrorIs(t, err, stkerrors.ErrTargetNotFound)
	})
}

func TestRestackCascade(t *testing.T) {
	f := newFixture(t)
	result, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(true)})
	require.NoError(t, err)

	require.Equal(t, []string{"a", "b", "d", "c"}, result.Restacked)
	require.Equal(t, []string{
		"rebase a onto main",
		"rebase b onto a",
		"rebase d onto b",
		"rebase c onto a",
	}, f.repo.CallsWithPrefix("rebase"))
	require.Equal(t, "a", f.repo.Current)
	require.Equal(t, "b", f.repo.Branch("d").Base)
	require.Empty(t, f.prompter.Messages)
}

func TestRestackCascadeGate(t *testing.T) {
	t.Run("asked once and declined", func(t *testing.T) {
		f := newFixture(t)
		f.prompter.Answers = []bool{false}
		result, err := restack.Action(f.ctx, restack.Options{})
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, result.Restacked)
		require.Len(t, f.prompter.Messages, 1)
		require.Contains(t, f.prompter.Messages[0], "3 descendant branches")
	})

	t.Run("leaf is never asked", func(t *testing.T) {
		f := newFixture(t)
		result, err := restack.Action(f.ctx, restack.Options{BranchName: "d"})
		require.NoError(t, err)
		require.Equal(t, []string{"d"}, result.Restacked)
		require.Empty(t, f.prompter.Messages)
		require.Equal(t, "a", f.repo.Current)
	})

	t.Run("explicit no cascade", func(t *testing.T) {
		f := newFixture(t)
		result, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(false)})
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, result.Restacked)
		require.Empty(t, f.prompter.Messages)
	})
}

func TestRestackReparent(t *testing.T) {
	f := newFixture(t)
	result, err := restack.Action(f.ctx, restack.Options{BranchName: "b", Onto: "main", Cascade: boolPtr(false)})
	require.NoError(t, err)
	require.True(t, result.Reparented)
	require.Equal(t, "main", result.Parent)

	parent, err := f.reg.ParentOrTrunk(context.Background(), "b")
	require.NoError(t, err)
	require.Equal(t, "main", parent)
	require.Equal(t, "main", f.repo.Branch("b").Base)

	children, err := f.reg.Children(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, children)
}

func TestRestackReparentTracksUntrackedBranch(t *testing.T) {
	f := newFixture(t)
	f.repo.Branch("loose")
	_, err := restack.Action(f.ctx, restack.Options{BranchName: "loose", Onto: "a"})
	require.NoError(t, err)

	tracked, err := f.reg.IsTracked(context.Background(), "loose")
	require.NoError(t, err)
	require.True(t, tracked)
}

func TestRestackConflict(t *testing.T) {
	t.Run("reparent survives a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Conflicts["b"] = true
		_, err := restack.Action(f.ctx, restack.Options{BranchName: "b", Onto: "main", Cascade: boolPtr(true)})
		require.ErrorIs(t, err, stkerrors.ErrRebaseConflict)
		require.True(t, restack.IsConflict(err))

		var conflict *stkerrors.RebaseConflictError
		require.True(t, errors.As(err, &conflict))
		require.Equal(t, "b", conflict.BranchName)
		require.Equal(t, "main", conflict.Onto)
		require.Contains(t, conflict.NextStep, "stk continue")

		parent, err := f.reg.ParentOrTrunk(context.Background(), "b")
		require.NoError(t, err)
		require.Equal(t, "main", parent)
	})

	t.Run("child conflict stops the cascade", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Conflicts["b"] = true
		result, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(true)})
		require.ErrorIs(t, err, stkerrors.ErrRebaseConflict)
		require.Equal(t, []string{"a"}, result.Restacked)
		require.Equal(t, []string{"rebase a onto main", "rebase b onto a"}, f.repo.CallsWithPrefix("rebase"))

		state, err := config.GetContinuationState(f.ctx.GitDir)
		require.NoError(t, err)
		require.Equal(t, "b", state.RebasingBranch)
		require.Equal(t, []string{"d", "c"}, state.BranchesToRestack)
		require.Equal(t, "a", state.StartBranch)
	})

	t.Run("port failure aborts and restores", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Fail("rebase c onto a", errors.New("boom"))
		_, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(true)})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to restack c onto a")
		require.Equal(t, "a", f.repo.Current)
	})
}

func TestRestackParentRefresh(t *testing.T) {
	t.Run("remote parent is pulled first", func(t *testing.T) {
		f := newFixture(t)
		_, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(false)})
		require.NoError(t, err)
		require.Equal(t, []string{"checkout main", "pull main", "checkout a", "checkout a", "rebase a onto main", "checkout a"}, f.repo.CallLog())
	})

	t.Run("refresh failure only warns", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Fail("pull main", errors.New("network down"))
		result, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(false)})
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, result.Restacked)
		require.Contains(t, f.out.String(), "Could not update main")
	})

	t.Run("local-only parent is not pulled", func(t *testing.T) {
		f := newFixture(t)
		_, err := restack.Action(f.ctx, restack.Options{BranchName: "b", Cascade: boolPtr(false)})
		require.NoError(t, err)
		require.Empty(t, f.repo.CallsWithPrefix("pull"))
	})
}

func TestRestackCancellation(t *testing.T) {
	f := newFixture(t)
	gctx, cancel := context.WithCancel(context.Background())
	f.ctx.Context = gctx
	cancel()

	_, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(true)})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "a", f.repo.Current)
}

func TestContinueAndAbort(t *testing.T) {
	t.Run("continue finishes the cascade", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Conflicts["b"] = true
		_, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(true)})
		require.ErrorIs(t, err, stkerrors.ErrRebaseConflict)

		// Still conflicted
		_, err = restack.Continue(f.ctx)
		require.ErrorIs(t, err, stkerrors.ErrRebaseConflict)

		delete(f.repo.Conflicts, "b")
		result, err := restack.Continue(f.ctx)
		require.NoError(t, err)
		require.Equal(t, "b", result.Resumed)
		require.Equal(t, []string{"d", "c"}, result.Restacked)
		require.Equal(t, "a", f.repo.Current)
		require.Equal(t, "a", f.repo.Branch("b").Base)

		_, err = config.GetContinuationState(f.ctx.GitDir)
		require.ErrorIs(t, err, config.ErrNoContinuation)
	})

	t.Run("nothing to continue", func(t *testing.T) {
		f := newFixture(t)
		_, err := restack.Continue(f.ctx)
		require.ErrorIs(t, err, config.ErrNoContinuation)
	})

	t.Run("abort clears state", func(t *testing.T) {
		f := newFixture(t)
		f.repo.Conflicts["b"] = true
		_, err := restack.Action(f.ctx, restack.Options{Cascade: boolPtr(true)})
		require.Error(t, err)

		require.NoError(t, restack.Abort(f.ctx))
		require.False(t, f.repo.RebaseInProgress(context.Background()))
		require.Equal(t, "a", f.repo.Current)
		require.ErrorIs(t, restack.Abort(f.ctx), config.ErrNoContinuation)
	})
}
