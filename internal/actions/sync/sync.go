// Package sync reconciles the trunk and every tracked branch with the
// remote and the tracker, then offers to delete merged and closed branches.
package sync

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"stackit.dev/stk/internal/engine"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// Options contains options for the sync command
type Options struct {
	// Force deletes merged and closed branches without asking
	Force bool
}

// Result partitions the tracked branches (trunk excluded) by outcome.
// Every tracked branch appears in exactly one of Dropped, Merged, Closed,
// FastForwarded, Diverged and Untouched.
type Result struct {
	Dropped       []string
	Merged        []string
	Closed        []string
	FastForwarded []string
	Diverged      []string
	Untouched     []string

	// UpstreamVanished is the subset of Merged inferred only from the
	// remote branch disappearing
	UpstreamVanished []string
	// Deleted is the subset of Merged and Closed that was removed
	Deleted []string
	// Failures holds per-branch errors that did not stop the sync
	Failures map[string]error
	// FetchFailed reports that classification used stale remote refs
	FetchFailed bool
}

type classification int

const (
	classUntouched classification = iota
	classDropped
	classMerged
	classClosed
	classFastForwarded
	classDiverged
)

// Action performs the sync operation
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	gctx := ctx.Context
	repo := ctx.Repo
	reg := ctx.Registry
	splog := ctx.Splog
	trunk := reg.Trunk()

	start, err := repo.CurrentBranch(gctx)
	if err != nil {
		return nil, err
	}

	splog.Info("Fetching from remote...")
	fetched := true
	if err := repo.Fetch(gctx, true); err != nil {
		// Carry on with the remote-tracking refs already present
		fetched = false
		splog.Warn("Could not fetch from the remote, using the last fetched state: %v", err)
	}

	if err := updateTrunk(ctx, trunk); err != nil {
		restore(ctx, start, trunk)
		return nil, err
	}
	home := restore(ctx, start, trunk)

	statuses := trackerStatuses(ctx)

	tracked, err := reg.Tracked(gctx)
	if err != nil {
		restore(ctx, start, trunk)
		return nil, err
	}

	result := &Result{Failures: map[string]error{}, FetchFailed: !fetched}
	for _, branch := range tracked {
		if reg.IsTrunk(branch) {
			continue
		}
		if err := gctx.Err(); err != nil {
			restore(ctx, start, trunk)
			return result, err
		}

		class, vanished, err := classify(ctx, branch, trunk, home, statuses, fetched)
		if err != nil {
			splog.Debug("classification of %s failed: %v", branch, err)
			result.Failures[branch] = err
			class = classDiverged
		}
		switch class {
		case classDropped:
			if err := reg.Untrack(gctx, branch); err != nil {
				restore(ctx, start, trunk)
				return result, err
			}
			result.Dropped = append(result.Dropped, branch)
			splog.Info("Untracked %s: the branch no longer exists.", style.ColorBranchName(branch, false))
		case classMerged:
			result.Merged = append(result.Merged, branch)
			if vanished {
				result.UpstreamVanished = append(result.UpstreamVanished, branch)
			}
		case classClosed:
			result.Closed = append(result.Closed, branch)
		case classFastForwarded:
			result.FastForwarded = append(result.FastForwarded, branch)
			splog.Info("Fast-forwarded %s.", style.ColorBranchName(branch, false))
		case classDiverged:
			result.Diverged = append(result.Diverged, branch)
		default:
			result.Untouched = append(result.Untouched, branch)
		}
	}

	toDelete, err := confirmDeletions(ctx, opts, result)
	if err != nil {
		restore(ctx, start, trunk)
		return result, err
	}
	for _, branch := range toDelete {
		if err := gctx.Err(); err != nil {
			restore(ctx, start, trunk)
			return result, err
		}
		if err := deleteCleanly(ctx, branch); err != nil {
			splog.Warn("Could not delete %s: %v", branch, err)
			result.Failures[branch] = err
			continue
		}
		result.Deleted = append(result.Deleted, branch)
		splog.Info("Deleted %s.", style.ColorBranchName(branch, false))
	}

	restore(ctx, start, trunk)
	report(ctx, result)
	return result, nil
}

// updateTrunk fast-forwards the trunk from its remote
func updateTrunk(ctx *runtime.Context, trunk string) error {
	gctx := ctx.Context
	if err := ctx.Repo.Checkout(gctx, trunk); err != nil {
		return &stkerrors.TrunkUpdateError{Trunk: trunk, Err: err}
	}
	if err := ctx.Repo.Pull(gctx); err != nil {
		return &stkerrors.TrunkUpdateError{Trunk: trunk, Err: err}
	}
	ctx.Splog.Info("%s is up to date.", style.ColorBranchName(trunk, false))
	return nil
}

// trackerStatuses makes the single batched tracker query. Any failure
// yields no tracker data.
func trackerStatuses(ctx *runtime.Context) map[string]engine.PullRequestStatus {
	if ctx.Tracker == nil || !ctx.Tracker.Authenticated(ctx.Context) {
		ctx.Splog.Debug("no tracker credentials, classifying from git only")
		return nil
	}
	statuses, err := ctx.Tracker.ListAll(ctx.Context)
	if err != nil {
		ctx.Splog.Warn("Could not fetch pull request states, classifying from git only: %v", err)
		return nil
	}
	return statuses
}

// classify applies the first matching rule. home is the branch to return
// to after a fast-forward. Without a fresh fetch a missing remote branch
// proves nothing, so the vanished-upstream rule is skipped.
func classify(ctx *runtime.Context, branch, trunk, home string, statuses map[string]engine.PullRequestStatus, fetched bool) (classification, bool, error) {
	gctx := ctx.Context
	repo := ctx.Repo

	exists, err := repo.BranchExists(gctx, branch)
	if err != nil {
		return classDiverged, false, err
	}
	if !exists {
		return classDropped, false, nil
	}

	merged, err := repo.MergedInto(gctx, branch, trunk)
	if err != nil {
		return classDiverged, false, err
	}
	if merged {
		return classMerged, false, nil
	}

	if status, ok := statuses[branch]; ok {
		if status.Merged {
			return classMerged, false, nil
		}
		if status.IsClosed() {
			return classClosed, false, nil
		}
	}

	hasRemote, err := repo.HasRemoteCounterpart(gctx, branch)
	if err != nil {
		return classDiverged, false, err
	}
	if !hasRemote {
		if !fetched {
			return classUntouched, false, nil
		}
		hadUpstream, err := repo.HadUpstreamEver(gctx, branch)
		if err != nil {
			return classDiverged, false, err
		}
		if hadUpstream {
			return classMerged, true, nil
		}
		return classUntouched, false, nil
	}

	ahead, behind, err := repo.AheadBehind(gctx, branch)
	if err != nil {
		return classDiverged, false, err
	}
	switch {
	case behind > 0 && ahead == 0:
		if err := fastForward(ctx, branch, home); err != nil {
			return classDiverged, false, err
		}
		return classFastForwarded, false, nil
	case behind > 0:
		return classDiverged, false, nil
	default:
		return classUntouched, false, nil
	}
}

func fastForward(ctx *runtime.Context, branch, home string) error {
	gctx := ctx.Context
	err := ctx.Repo.Checkout(gctx, branch)
	if err == nil {
		err = ctx.Repo.Pull(gctx)
	}
	if cerr := ctx.Repo.Checkout(gctx, home); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to fast-forward %s: %w", branch, err)
	}
	return nil
}

// confirmDeletions asks once per group. A declined group is left alone.
func confirmDeletions(ctx *runtime.Context, opts Options, result *Result) ([]string, error) {
	var toDelete []string
	groups := []struct {
		label    string
		branches []string
		def      bool
	}{
		{"merged", result.Merged, ctx.UserConfig.DeleteMergedDefault()},
		{"closed", result.Closed, ctx.UserConfig.DeleteClosedDefault()},
	}
	for _, group := range groups {
		if len(group.branches) == 0 {
			continue
		}
		for _, branch := range group.branches {
			note := ""
			if group.label == "merged" && slices.Contains(result.UpstreamVanished, branch) {
				note = style.ColorDim(" (remote branch was deleted; assumed merged)")
			}
			ctx.Splog.Info("%s is %s%s.", style.ColorBranchName(branch, false), group.label, note)
		}
		if opts.Force {
			toDelete = append(toDelete, group.branches...)
			continue
		}
		ok, err := ctx.Prompter.Confirm(fmt.Sprintf("Delete %d %s %s (%s)?",
			len(group.branches), group.label, plural(len(group.branches)), strings.Join(group.branches, ", ")), group.def)
		if err != nil {
			return nil, fmt.Errorf("prompt failed: %w", err)
		}
		if ok {
			toDelete = append(toDelete, group.branches...)
		}
	}
	return toDelete, nil
}

// deleteCleanly adopts the branch's children to its parent, removes the
// ref and untracks it
func deleteCleanly(ctx *runtime.Context, branch string) error {
	gctx := ctx.Context
	repo := ctx.Repo
	reg := ctx.Registry

	current, err := repo.CurrentBranch(gctx)
	if err != nil && !errors.Is(err, stkerrors.ErrNotOnBranch) {
		return err
	}
	if current == branch {
		if err := repo.Checkout(gctx, reg.Trunk()); err != nil {
			return err
		}
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
		ctx.Splog.Info("Set parent of %s to %s.", style.ColorBranchName(child, false), style.ColorBranchName(parent, false))
	}

	if err := repo.DeleteBranch(gctx, branch, false); err != nil {
		// Squash-merged branches have no merge in local history
		ctx.Splog.Debug("graceful delete of %s failed, forcing: %v", branch, err)
		if err := repo.DeleteBranch(gctx, branch, true); err != nil {
			return err
		}
	}
	return reg.Untrack(gctx, branch)
}

// restore checks out start when it still exists, else trunk, and returns
// the branch that ends up checked out
func restore(ctx *runtime.Context, start, trunk string) string {
	gctx := ctx.Context
	target := trunk
	if exists, err := ctx.Repo.BranchExists(gctx, start); err == nil && exists {
		target = start
	}
	if current, err := ctx.Repo.CurrentBranch(gctx); err == nil && current == target {
		return target
	}
	if err := ctx.Repo.Checkout(gctx, target); err != nil {
		ctx.Splog.Debug("could not check out %s: %v", target, err)
	}
	return target
}

func report(ctx *runtime.Context, result *Result) {
	splog := ctx.Splog
	splog.Info("Fast-forwarded %d %s, deleted %d %s.",
		len(result.FastForwarded), plural(len(result.FastForwarded)),
		len(result.Deleted), plural(len(result.Deleted)))
	for _, branch := range result.Diverged {
		if err, ok := result.Failures[branch]; ok {
			splog.Warn("%s could not be synced (%v); rebase it manually.", branch, err)
			continue
		}
		splog.Warn("%s has diverged from its remote; rebase it manually.", branch)
	}
}

func plural(n int) string {
	if n == 1 {
		return "branch"
	}
	return "branches"
}
