package actions

import (
	"fmt"

	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// TrackOptions contains options for the track command
type TrackOptions struct {
	// BranchName defaults to the current branch
	BranchName string
	// Parent defaults to trunk
	Parent string
}

// TrackAction adds a branch to the tracked set with the given parent. Calling
// it on a tracked branch records the new parent.
func TrackAction(ctx *runtime.Context, opts TrackOptions) error {
	gctx := ctx.Context
	reg := ctx.Registry

	branch := opts.BranchName
	if branch == "" {
		var err error
		if branch, err = currentBranch(ctx); err != nil {
			return err
		}
	}
	if reg.IsTrunk(branch) {
		return fmt.Errorf("%w: %s is the trunk", stkerrors.ErrTrunkOperation, branch)
	}
	if err := requireBranch(ctx, branch); err != nil {
		return err
	}

	parent := opts.Parent
	if parent == "" {
		parent = reg.Trunk()
	}
	if parent == branch {
		return fmt.Errorf("%w: %s", stkerrors.ErrSelfReparent, branch)
	}
	if err := requireBranch(ctx, parent); err != nil {
		return err
	}
	member, err := isStackMember(ctx, parent)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("parent branch %s must be tracked (or be trunk)", parent)
	}

	if err := reg.Track(gctx, branch, parent); err != nil {
		return err
	}
	ctx.Splog.Info("Tracking %s with parent %s.",
		style.ColorBranchName(branch, false), style.ColorBranchName(parent, false))
	return nil
}
