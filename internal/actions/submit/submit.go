// Package submit pushes a stack root-first and makes sure every branch has a
// pull request whose base is the branch's recorded parent.
package submit

import (
	"context"
	"fmt"

	"stackit.dev/stk/internal/ai"
	"stackit.dev/stk/internal/engine"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui/style"
)

// Scope selects which branches are submitted
type Scope int

const (
	// ScopeCurrentOnly submits just the branch
	ScopeCurrentOnly Scope = iota
	// ScopeFullStack submits the branch and every ancestor below trunk
	ScopeFullStack
)

// PushAction is what the push pass did to a branch
type PushAction string

// Push actions
const (
	PushCreated   PushAction = "created"
	PushForced    PushAction = "force-pushed"
	PushUpdated   PushAction = "pushed"
	PushUnchanged PushAction = "unchanged"
)

// PullRequestAction is what the pull request pass did for a branch
type PullRequestAction string

// Pull request actions
const (
	PullRequestCreated     PullRequestAction = "created"
	PullRequestExisting    PullRequestAction = "existing"
	PullRequestRegenerated PullRequestAction = "regenerated"
	PullRequestSkipped     PullRequestAction = "skipped"
)

// Options contains options for the submit command
type Options struct {
	// BranchName defaults to the current branch
	BranchName string
	Scope      Scope
	// RegenerateDescription offers to rewrite the body of existing pull requests
	RegenerateDescription bool
	Draft                 bool
}

// Item is the outcome for one branch
type Item struct {
	BranchName  string
	Base        string
	Push        PushAction
	PullRequest *engine.PullRequest
	Action      PullRequestAction
	// Err is the first failure for this branch; later branches still run
	Err error
}

// Result lists the items in submission order
type Result struct {
	Items []*Item
}

// Failed returns the items that recorded an error
func (r *Result) Failed() []*Item {
	var failed []*Item
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// commitLister is implemented by repositories that can list the commits
// unique to a branch
type commitLister interface {
	CommitSubjects(ctx context.Context, name, parent string) ([]string, error)
}

// Action performs the submit operation
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	gctx := ctx.Context
	reg := ctx.Registry
	splog := ctx.Splog

	branch := opts.BranchName
	if branch == "" {
		current, err := ctx.Repo.CurrentBranch(gctx)
		if err != nil {
			return nil, err
		}
		branch = current
	}
	if reg.IsTrunk(branch) {
		return nil, fmt.Errorf("%w: cannot submit %s", stkerrors.ErrTrunkOperation, branch)
	}
	if ctx.Tracker == nil || !ctx.Tracker.Authenticated(gctx) {
		return nil, fmt.Errorf("%w: set GITHUB_TOKEN or run `gh auth login`", stkerrors.ErrTrackerAuthMissing)
	}
	exists, err := ctx.Repo.BranchExists(gctx, branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, stkerrors.NewTargetNotFoundError(branch)
	}

	branches := []string{branch}
	if opts.Scope == ScopeFullStack {
		if branches, err = reg.StackToTrunk(gctx, branch); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	for _, name := range branches {
		base, err := reg.ParentOrTrunk(gctx, name)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, &Item{BranchName: name, Base: base})
	}

	splog.Info("Pushing %d %s...", len(branches), plural(len(branches)))
	for _, item := range result.Items {
		if err := gctx.Err(); err != nil {
			return result, err
		}
		action, err := push(gctx, ctx.Repo, item.BranchName)
		if err != nil {
			item.Err = fmt.Errorf("failed to push %s: %w", item.BranchName, err)
			splog.Warn("%v", item.Err)
			continue
		}
		item.Push = action
		switch action {
		case PushCreated:
			splog.Info("Pushed %s and set its upstream.", style.ColorBranchName(item.BranchName, false))
		case PushForced:
			splog.Info("Force-pushed %s.", style.ColorBranchName(item.BranchName, false))
		case PushUpdated:
			splog.Info("Pushed %s.", style.ColorBranchName(item.BranchName, false))
		}
	}

	stack := stackEntries(ctx, branch)
	for _, item := range result.Items {
		if err := gctx.Err(); err != nil {
			return result, err
		}
		if item.Err != nil {
			item.Action = PullRequestSkipped
			continue
		}
		ensurePullRequest(ctx, opts, item, stack)
		if item.PullRequest != nil {
			markNumber(stack, item.BranchName, item.PullRequest)
		}
	}

	if failed := result.Failed(); len(failed) > 0 {
		splog.Warn("%d of %d %s could not be submitted.", len(failed), len(result.Items), plural(len(result.Items)))
	}
	return result, nil
}

// push brings the remote branch up to date with the local one
func push(ctx context.Context, repo engine.Repository, name string) (PushAction, error) {
	hasRemote, err := repo.HasRemoteCounterpart(ctx, name)
	if err != nil {
		return "", err
	}
	if !hasRemote {
		return PushCreated, repo.Push(ctx, name, true, false)
	}

	ahead, behind, err := repo.AheadBehind(ctx, name)
	if err != nil {
		return "", err
	}
	switch {
	case behind > 0:
		// Rewritten by a restack; the lease refuses to clobber unseen remote work
		return PushForced, repo.Push(ctx, name, false, true)
	case ahead > 0:
		return PushUpdated, repo.Push(ctx, name, false, false)
	default:
		return PushUnchanged, nil
	}
}

func ensurePullRequest(ctx *runtime.Context, opts Options, item *Item, stack []ai.StackEntry) {
	gctx := ctx.Context
	splog := ctx.Splog

	existing, err := findPullRequest(ctx, item.BranchName)
	if err != nil {
		item.Err = err
		splog.Warn("Failed to look up the pull request for %s: %v", item.BranchName, err)
		return
	}

	if existing != nil {
		item.PullRequest = existing
		item.Action = PullRequestExisting
		if opts.RegenerateDescription {
			regenerate(ctx, item, stack)
		}
		splog.Info("%s: %s", style.ColorBranchName(item.BranchName, false), style.FormatPullRequest(existing.Number, existing.URL))
		return
	}

	title, err := ctx.Repo.FirstUniqueCommitMessage(gctx, item.BranchName, item.Base)
	if err != nil {
		splog.Debug("no unique commit for %s: %v", item.BranchName, err)
	}
	genTitle, body := describe(ctx, item, stack)
	if title == "" {
		title = genTitle
	}
	if title == "" {
		title = item.BranchName
	}

	pr, err := ctx.Tracker.Create(gctx, engine.CreatePullRequestOptions{
		Title: title,
		Body:  body,
		Head:  item.BranchName,
		Base:  item.Base,
		Draft: opts.Draft,
	})
	if err != nil {
		item.Err = &stkerrors.PullRequestCreationError{BranchName: item.BranchName, Base: item.Base, Err: err}
		splog.Warn("%v", item.Err)
		return
	}
	item.PullRequest = pr
	item.Action = PullRequestCreated
	splog.Info("Opened %s for %s onto %s.", style.FormatPullRequest(pr.Number, pr.URL),
		style.ColorBranchName(item.BranchName, false), style.ColorBranchName(item.Base, false))
}

// findPullRequest tries the plain branch name, then the remote-qualified one
func findPullRequest(ctx *runtime.Context, branch string) (*engine.PullRequest, error) {
	pr, err := ctx.Tracker.FindRequestFor(ctx.Context, branch)
	if err != nil || pr != nil {
		return pr, err
	}
	return ctx.Tracker.FindRequestFor(ctx.Context, ctx.RepoConfig.RemoteName()+"/"+branch)
}

func regenerate(ctx *runtime.Context, item *Item, stack []ai.StackEntry) {
	pr := item.PullRequest
	ok, err := ctx.Prompter.Confirm(fmt.Sprintf("Regenerate the description of #%d (%s)?", pr.Number, item.BranchName), true)
	if err != nil || !ok {
		return
	}
	_, body := describe(ctx, item, stack)
	if err := ctx.Tracker.UpdateDescription(ctx.Context, pr.Number, body); err != nil {
		item.Err = fmt.Errorf("failed to update description of #%d: %w", pr.Number, err)
		ctx.Splog.Warn("%v", item.Err)
		return
	}
	pr.Body = body
	item.Action = PullRequestRegenerated
}

// describe returns a title suggestion and body from the generator, falling
// back to the default body
func describe(ctx *runtime.Context, item *Item, stack []ai.StackEntry) (string, string) {
	prContext := &ai.PRContext{
		BranchName:       item.BranchName,
		ParentBranchName: item.Base,
		TrunkBranchName:  ctx.Registry.Trunk(),
		Stack:            markCurrent(stack, item.BranchName),
	}
	if lister, ok := ctx.Repo.(commitLister); ok {
		if subjects, err := lister.CommitSubjects(ctx.Context, item.BranchName, item.Base); err == nil {
			prContext.CommitMessages = subjects
		}
	}

	if ctx.Generator != nil {
		title, body, err := ctx.Generator.GenerateDescription(ctx.Context, prContext)
		if err == nil && body != "" {
			return title, body
		}
		if err != nil {
			ctx.Splog.Warn("Description generator failed for %s, using the default: %v", item.BranchName, err)
		}
	}
	return "", ai.DefaultBody(prContext)
}

// stackEntries lists the full stack around branch: its ancestors below
// trunk, itself, then its descendants
func stackEntries(ctx *runtime.Context, branch string) []ai.StackEntry {
	var entries []ai.StackEntry
	ancestors, err := ctx.Registry.StackToTrunk(ctx.Context, branch)
	if err != nil {
		return nil
	}
	for _, name := range ancestors {
		entries = append(entries, ai.StackEntry{BranchName: name})
	}
	descendants, err := ctx.Registry.Descendants(ctx.Context, branch)
	if err == nil {
		for _, d := range descendants {
			entries = append(entries, ai.StackEntry{BranchName: d.Name})
		}
	}
	return entries
}

func markNumber(stack []ai.StackEntry, branch string, pr *engine.PullRequest) {
	for i := range stack {
		if stack[i].BranchName == branch {
			stack[i].Number = pr.Number
			stack[i].URL = pr.URL
		}
	}
}

func markCurrent(stack []ai.StackEntry, branch string) []ai.StackEntry {
	marked := make([]ai.StackEntry, len(stack))
	for i, entry := range stack {
		entry.Current = entry.BranchName == branch
		marked[i] = entry
	}
	return marked
}

func plural(n int) string {
	if n == 1 {
		return "branch"
	}
	return "branches"
}
