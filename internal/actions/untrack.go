package actions

import (
	"fmt"

	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// UntrackOptions contains options for the untrack command
type UntrackOptions struct {
	// BranchName defaults to the current branch
	BranchName string
}

// UntrackAction removes a branch from the tracked set. Its children are
// re-pointed at its parent so the registry stays connected.
func UntrackAction(ctx *runtime.Context, opts UntrackOptions) error {
	gctx := ctx.Context
	reg := ctx.Registry

	branch := opts.BranchName
	if branch == "" {
		var err error
		if branch, err = currentBranch(ctx); err != nil {
			return err
		}
	}
	tracked, err := reg.IsTracked(gctx, branch)
	if err != nil {
		return err
	}
	if !tracked {
		return fmt.Errorf("branch %s is not tracked", branch)
	}

	parent, err := reg.ParentOrTrunk(gctx, branch)
	if err != nil {
		return err
	}
	children, err := reg.Children(gctx, branch)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := reg.SetParent(gctx, child, parent); err != nil {
			return err
		}
		ctx.Splog.Info("Moved %s onto %s.", style.ColorBranchName(child, false), style.ColorBranchName(parent, false))
	}

	if err := reg.Untrack(gctx, branch); err != nil {
		return err
	}
	ctx.Splog.Info("Stopped tracking %s.", style.ColorBranchName(branch, false))
	return nil
}
