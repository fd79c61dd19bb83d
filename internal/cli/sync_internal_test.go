package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/actions/sync"
	"stackit.dev/stk/internal/engine"
	"stackit.dev/stk/internal/engine/enginetest"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui"
)

func newSyncContext(t *testing.T) (*runtime.Context, *enginetest.FakeRepo, *bytes.Buffer) {
	t.Helper()
	repo := enginetest.NewFakeRepo("main")
	reg := engine.NewRegistry(engine.NewMemoryStore(), "main")
	out := &bytes.Buffer{}
	ctx := runtime.NewContext(context.Background(), reg, repo)
	ctx.Splog = tui.NewSplogWithWriter(out)
	ctx.Tracker = enginetest.NewFakeTracker()
	ctx.Prompter = enginetest.NewScriptedPrompter()
	return ctx, repo, out
}

func TestRunSyncBranchFailuresAreWarnings(t *testing.T) {
	ctx, repo, out := newSyncContext(t)
	require.NoError(t, ctx.Registry.Track(context.Background(), "behind", "main"))
	behind := repo.Branch("behind")
	behind.Remote, behind.HadUpstream, behind.Behind = true, true, 1
	repo.Fail("pull behind", errors.New("cannot lock ref"))

	require.NoError(t, runSync(ctx, sync.Options{}))
	require.Contains(t, out.String(), "1 branch could not be synced.")
}

func TestRunSyncTrunkFailureIsAnError(t *testing.T) {
	ctx, repo, _ := newSyncContext(t)
	repo.Fail("pull main", errors.New("cannot lock ref"))

	err := runSync(ctx, sync.Options{})
	require.ErrorIs(t, err, stkerrors.ErrTrunkUpdateFailure)
}
