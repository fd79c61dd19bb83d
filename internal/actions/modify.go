package actions

import (
	"fmt"

	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// ModifyOptions contains options for the modify command
type ModifyOptions struct {
	// All stages every change before amending
	All bool
}

// ModifyAction amends the tip commit of the current branch. Descendants are
// left alone; the user is pointed at restack when there are any.
func ModifyAction(ctx *runtime.Context, opts ModifyOptions) error {
	gctx := ctx.Context
	branch, err := currentBranch(ctx)
	if err != nil {
		return err
	}
	if ctx.Registry.IsTrunk(branch) {
		return fmt.Errorf("cannot modify the trunk branch %s", branch)
	}

	if opts.All {
		s, ok := ctx.Repo.(stager)
		if !ok {
			return fmt.Errorf("repository cannot stage changes")
		}
		if err := s.StageAll(gctx); err != nil {
			return err
		}
	}
	if err := ctx.Repo.Amend(gctx); err != nil {
		return fmt.Errorf("failed to amend %s: %w", branch, err)
	}
	ctx.Splog.Info("Amended %s.", style.ColorBranchName(branch, true))

	children, err := ctx.Registry.Children(gctx, branch)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		ctx.Splog.Tip("Run 'stk restack' to rebase the %d branch(es) stacked on %s.", len(children), branch)
	}
	return nil
}
