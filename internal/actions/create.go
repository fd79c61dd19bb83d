package actions

import (
	"fmt"

	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// CreateOptions contains options for the create command
type CreateOptions struct {
	// BranchName is derived from Message when empty
	BranchName string
	// Message commits the staged changes on the new branch when set
	Message string
	// All stages every change before committing
	All bool
}

// CreateAction creates a new branch on top of the current one and tracks it
// with the current branch as parent
func CreateAction(ctx *runtime.Context, opts CreateOptions) error {
	gctx := ctx.Context
	if opts.BranchName == "" {
		opts.BranchName = BranchNameFromMessage(opts.Message)
	}
	if opts.BranchName == "" {
		return fmt.Errorf("a branch name or a commit message is required")
	}

	parent, err := currentBranch(ctx)
	if err != nil {
		return err
	}
	member, err := isStackMember(ctx, parent)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("current branch %s is not tracked. Run 'stk track' first", parent)
	}

	exists, err := ctx.Repo.BranchExists(gctx, opts.BranchName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("branch %s already exists", opts.BranchName)
	}

	if err := ctx.Repo.CreateBranch(gctx, opts.BranchName); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", opts.BranchName, err)
	}
	if err := ctx.Registry.Track(gctx, opts.BranchName, parent); err != nil {
		return err
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
	if opts.Message != "" {
		if err := ctx.Repo.Commit(gctx, opts.Message); err != nil {
			return fmt.Errorf("failed to commit on %s: %w", opts.BranchName, err)
		}
	}

	ctx.Splog.Info("Created %s on top of %s.",
		style.ColorBranchName(opts.BranchName, true), style.ColorBranchName(parent, false))
	return nil
}
