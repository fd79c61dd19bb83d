package restack

import (
	"context"
	"errors"
	"fmt"

	"stackit.dev/stk/internal/config"
	"stackit.dev/stk/internal/engine"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// Rebaser is implemented by repositories that can resume or drop a
// conflicted rebase
type Rebaser interface {
	RebaseInProgress(ctx context.Context) bool
	RebaseContinue(ctx context.Context) (engine.RebaseResult, error)
	RebaseAbort(ctx context.Context) error
}

// ContinueResult describes a resumed restack
type ContinueResult struct {
	// Resumed is the branch whose rebase was finished, if one was pending
	Resumed   string
	Restacked []string
}

// Continue finishes a rebase stopped by a conflict and restacks the
// branches that were still waiting
func Continue(ctx *runtime.Context) (*ContinueResult, error) {
	gctx := ctx.Context
	rebaser, ok := ctx.Repo.(Rebaser)
	if !ok {
		return nil, errors.New("repository cannot continue a rebase")
	}

	state, err := config.GetContinuationState(ctx.GitDir)
	if err != nil && !errors.Is(err, config.ErrNoContinuation) {
		return nil, err
	}
	if state == nil && !rebaser.RebaseInProgress(gctx) {
		return nil, fmt.Errorf("nothing to continue: %w", config.ErrNoContinuation)
	}
	if state == nil {
		state = &config.ContinuationState{}
	}

	result := &ContinueResult{}
	if rebaser.RebaseInProgress(gctx) {
		res, err := rebaser.RebaseContinue(gctx)
		if err != nil {
			return result, fmt.Errorf("failed to continue rebase: %w", err)
		}
		if res == engine.RebaseConflict {
			return result, stkerrors.NewRebaseConflictError(state.RebasingBranch, state.Onto, continueStep)
		}
		result.Resumed = state.RebasingBranch
		if state.RebasingBranch != "" {
			ctx.Splog.Info("Restacked %s on %s.", style.ColorBranchName(state.RebasingBranch, false), style.ColorBranchName(state.Onto, false))
		}
	}

	if err := config.ClearContinuationState(ctx.GitDir); err != nil {
		return result, err
	}

	start := state.StartBranch
	for i, branch := range state.BranchesToRestack {
		if err := gctx.Err(); err != nil {
			restoreBranch(ctx, start)
			return result, err
		}
		parent, err := ctx.Registry.ParentOrTrunk(gctx, branch)
		if err != nil {
			return result, err
		}
		if err := rebaseOne(ctx, branch, parent, 0, state.BranchesToRestack[i+1:], start); err != nil {
			return result, err
		}
		result.Restacked = append(result.Restacked, branch)
	}

	if start != "" {
		if err := ctx.Repo.Checkout(gctx, start); err != nil {
			return result, fmt.Errorf("failed to return to %s: %w", start, err)
		}
	}
	return result, nil
}

// Abort drops a rebase stopped by a conflict and forgets the waiting branches
func Abort(ctx *runtime.Context) error {
	gctx := ctx.Context
	rebaser, ok := ctx.Repo.(Rebaser)
	if !ok {
		return errors.New("repository cannot abort a rebase")
	}

	state, err := config.GetContinuationState(ctx.GitDir)
	if err != nil && !errors.Is(err, config.ErrNoContinuation) {
		return err
	}
	inProgress := rebaser.RebaseInProgress(gctx)
	if state == nil && !inProgress {
		return fmt.Errorf("nothing to abort: %w", config.ErrNoContinuation)
	}

	if inProgress {
		if err := rebaser.RebaseAbort(gctx); err != nil {
			return fmt.Errorf("failed to abort rebase: %w", err)
		}
	}
	if err := config.ClearContinuationState(ctx.GitDir); err != nil {
		return err
	}
	if state != nil && state.StartBranch != "" {
		restoreBranch(ctx, state.StartBranch)
	}
	ctx.Splog.Info("Aborted the restack.")
	return nil
}
