// Package restack rebases a branch onto its parent, optionally reparenting
// it first and cascading the rebase to every tracked descendant.
package restack

import (
	"errors"
	"fmt"
	"strings"

	"stackit.dev/stk/internal/config"
	"stackit.dev/stk/internal/engine"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

const continueStep = "resolve the conflicts, stage the files with `git add`, then run `stk continue` (or `stk abort`)"

// Options contains options for the restack command
type Options struct {
	// BranchName defaults to the current branch
	BranchName string
	// Onto reparents the branch before rebasing
	Onto string
	// Cascade restacks descendants too; nil asks when there are any
	Cascade *bool
}

// Result describes a completed restack
type Result struct {
	BranchName string
	Parent     string
	Reparented bool
	// Restacked lists every rebased branch in the order it was rebased
	Restacked []string
}

// Action performs the restack operation
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	gctx := ctx.Context
	reg := ctx.Registry
	repo := ctx.Repo
	splog := ctx.Splog

	start, err := repo.CurrentBranch(gctx)
	if err != nil {
		return nil, err
	}
	branch := opts.BranchName
	if branch == "" {
		branch = start
	}

	if reg.IsTrunk(branch) {
		return nil, fmt.Errorf("%w: %s", stkerrors.ErrCannotRestackTrunk, branch)
	}

	recorded, hasParent, err := reg.Parent(gctx, branch)
	if err != nil {
		return nil, err
	}
	parent := reg.Trunk()
	if hasParent {
		parent = recorded
	}

	result := &Result{BranchName: branch}
	reparent := opts.Onto != "" && (!hasParent || opts.Onto != recorded)
	if reparent {
		if opts.Onto == branch {
			return nil, fmt.Errorf("%w: %s", stkerrors.ErrSelfReparent, branch)
		}
		exists, err := repo.BranchExists(gctx, opts.Onto)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, stkerrors.NewTargetNotFoundError(opts.Onto)
		}
	}

	exists, err := repo.BranchExists(gctx, branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, stkerrors.NewTargetNotFoundError(branch)
	}

	if reparent {
		// The new parent is recorded before any rebase so a conflict
		// does not lose it
		if err := reg.Track(gctx, branch, opts.Onto); err != nil {
			return nil, err
		}
		splog.Info("Set parent of %s to %s.", style.ColorBranchName(branch, false), style.ColorBranchName(opts.Onto, false))
		parent = opts.Onto
		result.Reparented = true
	}
	result.Parent = parent

	descendants, err := reg.Descendants(gctx, branch)
	if err != nil {
		return nil, err
	}
	cascade, err := shouldCascade(ctx, opts, branch, len(descendants))
	if err != nil {
		return nil, err
	}
	if !cascade {
		descendants = nil
	}

	refreshParent(ctx, parent, branch)

	queue := make([]string, 0, len(descendants))
	for _, d := range descendants {
		queue = append(queue, d.Name)
	}

	if err := rebaseOne(ctx, branch, parent, 0, queue, start); err != nil {
		return result, err
	}
	result.Restacked = append(result.Restacked, branch)

	for i, d := range descendants {
		if err := gctx.Err(); err != nil {
			restoreBranch(ctx, start)
			return result, err
		}
		if err := rebaseOne(ctx, d.Name, d.Parent, d.Depth, queue[i+1:], start); err != nil {
			return result, err
		}
		result.Restacked = append(result.Restacked, d.Name)
	}

	if err := repo.Checkout(gctx, start); err != nil {
		return result, fmt.Errorf("failed to return to %s: %w", start, err)
	}
	return result, nil
}

func shouldCascade(ctx *runtime.Context, opts Options, branch string, count int) (bool, error) {
	if count == 0 {
		return false, nil
	}
	if opts.Cascade != nil {
		return *opts.Cascade, nil
	}
	noun := "branches"
	if count == 1 {
		noun = "branch"
	}
	return ctx.Prompter.Confirm(fmt.Sprintf("Also restack %d descendant %s of %s?", count, noun, branch), true)
}

// refreshParent fast-forwards parent from its remote when it has one. Any
// failure only warns.
func refreshParent(ctx *runtime.Context, parent, branch string) {
	gctx := ctx.Context
	repo := ctx.Repo

	hasRemote, err := repo.HasRemoteCounterpart(gctx, parent)
	if err != nil || !hasRemote {
		return
	}
	err = repo.Checkout(gctx, parent)
	if err == nil {
		err = repo.Pull(gctx)
	}
	if err != nil {
		ctx.Splog.Warn("Could not update %s from its remote, restacking onto the local copy: %v", parent, err)
		ctx.Splog.Debug("refresh of %s failed: %v", parent, err)
	}
	if current, cerr := repo.CurrentBranch(gctx); cerr != nil || current != branch {
		_ = repo.Checkout(gctx, branch)
	}
}

// rebaseOne checks out branch and rebases it onto parent. On a conflict the
// remaining branches are saved so `stk continue` can pick them up.
func rebaseOne(ctx *runtime.Context, branch, parent string, depth int, remaining []string, start string) error {
	gctx := ctx.Context
	repo := ctx.Repo

	if err := repo.Checkout(gctx, branch); err != nil {
		restoreBranch(ctx, start)
		return fmt.Errorf("failed to check out %s: %w", branch, err)
	}
	res, err := repo.Rebase(gctx, parent)
	if err != nil {
		restoreBranch(ctx, start)
		return fmt.Errorf("failed to restack %s onto %s: %w", branch, parent, err)
	}
	if res == engine.RebaseConflict {
		if ctx.GitDir != "" {
			state := &config.ContinuationState{
				RebasingBranch:    branch,
				Onto:              parent,
				BranchesToRestack: remaining,
				StartBranch:       start,
			}
			if err := config.PersistContinuationState(ctx.GitDir, state); err != nil {
				ctx.Splog.Warn("Could not save restack progress: %v", err)
			}
		}
		ctx.Splog.Error("Hit a conflict restacking %s onto %s.", style.ColorBranchName(branch, false), style.ColorBranchName(parent, false))
		if len(remaining) > 0 {
			ctx.Splog.Info("Still to restack: %s", strings.Join(remaining, ", "))
		}
		return stkerrors.NewRebaseConflictError(branch, parent, continueStep)
	}

	ctx.Splog.Info("%sRestacked %s on %s.", strings.Repeat("  ", depth),
		style.ColorBranchName(branch, branch == start), style.ColorBranchName(parent, false))
	return nil
}

// restoreBranch makes a best effort to check out start again
func restoreBranch(ctx *runtime.Context, start string) {
	if start == "" {
		return
	}
	if err := ctx.Repo.Checkout(ctx.Context, start); err != nil {
		ctx.Splog.Debug("could not return to %s: %v", start, err)
	}
}

// IsConflict reports whether err stopped a restack on a conflict
func IsConflict(err error) bool {
	return errors.Is(err, stkerrors.ErrRebaseConflict)
}
