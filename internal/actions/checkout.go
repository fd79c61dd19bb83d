package actions

import (
	"fmt"

	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// CheckoutOptions contains options for the checkout command
type CheckoutOptions struct {
	// BranchName opens the branch picker when empty
	BranchName string
	// Trunk checks out the trunk branch
	Trunk bool
}

// CheckoutResult describes a completed checkout
type CheckoutResult struct {
	BranchName string
	// TrackedParent is set when the branch was untracked and got tracked
	TrackedParent string
}

// CheckoutAction switches branches. An untracked branch is tracked with the
// previously checked-out branch as its parent, or trunk when the previous
// branch is not part of a stack.
func CheckoutAction(ctx *runtime.Context, opts CheckoutOptions) (*CheckoutResult, error) {
	gctx := ctx.Context
	reg := ctx.Registry

	previous, err := ctx.Repo.CurrentBranch(gctx)
	if err != nil {
		return nil, err
	}

	target := opts.BranchName
	switch {
	case opts.Trunk:
		target = reg.Trunk()
	case target == "":
		target, err = pickBranch(ctx, previous)
		if err != nil {
			return nil, err
		}
	default:
		if err := requireBranch(ctx, target); err != nil {
			return nil, err
		}
	}

	result := &CheckoutResult{BranchName: target}
	if target == previous {
		ctx.Splog.Info("Already on %s.", style.ColorBranchName(target, true))
		return result, nil
	}
	if err := ctx.Repo.Checkout(gctx, target); err != nil {
		return nil, fmt.Errorf("failed to checkout %s: %w", target, err)
	}
	ctx.Splog.Info("Checked out %s.", style.ColorBranchName(target, true))

	member, err := isStackMember(ctx, target)
	if err != nil || member {
		return result, err
	}

	parent := reg.Trunk()
	if previous != "" {
		if ok, err := isStackMember(ctx, previous); err == nil && ok {
			parent = previous
		}
	}
	if err := reg.Track(gctx, target, parent); err != nil {
		return nil, err
	}
	result.TrackedParent = parent
	ctx.Splog.Info("Tracking %s with parent %s.",
		style.ColorBranchName(target, false), style.ColorBranchName(parent, false))
	return result, nil
}

func pickBranch(ctx *runtime.Context, current string) (string, error) {
	lister, ok := ctx.Repo.(branchLister)
	if !ok {
		return "", fmt.Errorf("no branch given")
	}
	branches, err := lister.LocalBranches(ctx.Context)
	if err != nil {
		return "", err
	}
	return ctx.Prompter.SelectBranch("Checkout a branch", branches, current)
}
