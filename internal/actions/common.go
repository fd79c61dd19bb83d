package actions

import (
	"context"
	"fmt"

	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
)

// stager is implemented by repositories that can stage the work tree
type stager interface {
	StageAll(ctx context.Context) error
}

// branchLister is implemented by repositories that can enumerate branches
type branchLister interface {
	LocalBranches(ctx context.Context) ([]string, error)
}

// currentBranch returns the checked-out branch, or ErrNotOnBranch
func currentBranch(ctx *runtime.Context) (string, error) {
	branch, err := ctx.Repo.CurrentBranch(ctx.Context)
	if err != nil {
		return "", err
	}
	if branch == "" {
		return "", stkerrors.ErrNotOnBranch
	}
	return branch, nil
}

// requireBranch fails with a TargetNotFoundError when name does not exist
func requireBranch(ctx *runtime.Context, name string) error {
	exists, err := ctx.Repo.BranchExists(ctx.Context, name)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", name, err)
	}
	if !exists {
		return stkerrors.NewTargetNotFoundError(name)
	}
	return nil
}

// isStackMember reports whether name is trunk or tracked
func isStackMember(ctx *runtime.Context, name string) (bool, error) {
	if ctx.Registry.IsTrunk(name) {
		return true, nil
	}
	return ctx.Registry.IsTracked(ctx.Context, name)
}
