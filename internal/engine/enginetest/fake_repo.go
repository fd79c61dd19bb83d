package enginetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"stackit.dev/stk/internal/engine"
	stkerrors "stackit.dev/stk/internal/errors"
)

// FakeBranch is the state the fake keeps per local branch
type FakeBranch struct {
	// Remote reports a remote-tracking counterpart
	Remote bool
	// HadUpstream reports upstream configuration, kept after the remote ref is pruned
	HadUpstream bool
	Ahead       int
	Behind      int
	// Merged reports the branch as merged into trunk by history
	Merged bool
	// Unmerged makes a graceful delete fail
	Unmerged bool
	// Commits are the subjects unique to the branch, oldest first
	Commits []string
	// Base is the branch most recently rebased onto
	Base string
}

// FakeRepo implements engine.Repository in memory. Every mutating call is
// appended to Calls, and Failures injects errors keyed by the call string
// (for example "pull main" or "push b").
type FakeRepo struct {
	mu       sync.Mutex
	Current  string
	Branches map[string]*FakeBranch
	// Conflicts makes rebasing the named branch stop with a conflict
	Conflicts map[string]bool
	Failures  map[string]error
	Calls     []string
	NotRepo   bool

	rebasing     string
	rebasingOnto string
}

var _ engine.Repository = (*FakeRepo)(nil)

// NewFakeRepo creates a repository with trunk checked out and the given
// additional branches
func NewFakeRepo(trunk string, branches ...string) *FakeRepo {
	r := &FakeRepo{
		Current:   trunk,
		Branches:  map[string]*FakeBranch{trunk: {Remote: true, HadUpstream: true}},
		Conflicts: map[string]bool{},
		Failures:  map[string]error{},
	}
	for _, name := range branches {
		r.Branches[name] = &FakeBranch{}
	}
	return r
}

// Branch returns the state of name, creating it if needed
func (r *FakeRepo) Branch(name string) *FakeBranch {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Branches[name]
	if !ok {
		b = &FakeBranch{}
		r.Branches[name] = b
	}
	return b
}

// Fail injects err for the call string
func (r *FakeRepo) Fail(call string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[call] = err
}

// CallLog returns a copy of the recorded calls
func (r *FakeRepo) CallLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Calls...)
}

// CallsWithPrefix returns the recorded calls starting with prefix
func (r *FakeRepo) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, call := range r.CallLog() {
		if strings.HasPrefix(call, prefix) {
			out = append(out, call)
		}
	}
	return out
}

// BranchNames returns the local branches, sorted
func (r *FakeRepo) BranchNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.Branches))
	for name := range r.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// record logs call and returns the injected failure for it, if any.
// Callers hold r.mu.
func (r *FakeRepo) record(call string) error {
	r.Calls = append(r.Calls, call)
	if err, ok := r.Failures[call]; ok {
		return err
	}
	return nil
}

func portError(args ...string) error {
	return stkerrors.NewGitCommandError("git", args, "", "fatal: "+strings.Join(args, " "), fmt.Errorf("exit status 1"))
}

func (r *FakeRepo) IsRepo(_ context.Context) bool {
	return !r.NotRepo
}

func (r *FakeRepo) CurrentBranch(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Current == "" {
		return "", stkerrors.ErrNotOnBranch
	}
	return r.Current, nil
}

func (r *FakeRepo) BranchExists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Branches[name]
	return ok, nil
}

func (r *FakeRepo) Checkout(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("checkout " + name); err != nil {
		return err
	}
	if _, ok := r.Branches[name]; !ok {
		return portError("checkout", name)
	}
	r.Current = name
	return nil
}

func (r *FakeRepo) CreateBranch(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("create " + name); err != nil {
		return err
	}
	if _, ok := r.Branches[name]; ok {
		return portError("checkout", "-b", name)
	}
	r.Branches[name] = &FakeBranch{Base: r.Current}
	r.Current = name
	return nil
}

func (r *FakeRepo) Commit(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("commit " + r.Current); err != nil {
		return err
	}
	b := r.Branches[r.Current]
	b.Commits = append(b.Commits, message)
	if b.Remote {
		b.Ahead++
	}
	return nil
}

func (r *FakeRepo) Amend(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record("amend " + r.Current)
}

func (r *FakeRepo) Fetch(_ context.Context, prune bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prune {
		return r.record("fetch --prune")
	}
	return r.record("fetch")
}

func (r *FakeRepo) Pull(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("pull " + r.Current); err != nil {
		return err
	}
	b := r.Branches[r.Current]
	if b.Ahead > 0 && b.Behind > 0 {
		return portError("pull", "--ff-only")
	}
	b.Behind = 0
	return nil
}

func (r *FakeRepo) Push(_ context.Context, name string, setUpstream, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call := "push " + name
	if setUpstream {
		call += " -u"
	}
	if force {
		call += " --force-with-lease"
	}
	if err := r.record(call); err != nil {
		return err
	}
	b, ok := r.Branches[name]
	if !ok {
		return portError("push", name)
	}
	b.Remote = true
	b.HadUpstream = true
	b.Ahead = 0
	b.Behind = 0
	return nil
}

func (r *FakeRepo) Rebase(_ context.Context, onto string) (engine.RebaseResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("rebase " + r.Current + " onto " + onto); err != nil {
		return engine.RebaseDone, err
	}
	if r.Conflicts[r.Current] {
		r.rebasing = r.Current
		r.rebasingOnto = onto
		return engine.RebaseConflict, nil
	}
	r.Branches[r.Current].Base = onto
	return engine.RebaseDone, nil
}

// RebaseInProgress reports whether a conflicted rebase is pending
func (r *FakeRepo) RebaseInProgress(_ context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebasing != ""
}

// RebaseContinue finishes the pending rebase unless the branch is still
// marked as conflicting
func (r *FakeRepo) RebaseContinue(_ context.Context) (engine.RebaseResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("rebase --continue"); err != nil {
		return engine.RebaseDone, err
	}
	if r.rebasing == "" {
		return engine.RebaseDone, portError("rebase", "--continue")
	}
	if r.Conflicts[r.rebasing] {
		return engine.RebaseConflict, nil
	}
	r.Branches[r.rebasing].Base = r.rebasingOnto
	r.rebasing = ""
	return engine.RebaseDone, nil
}

// RebaseAbort drops the pending rebase
func (r *FakeRepo) RebaseAbort(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("rebase --abort"); err != nil {
		return err
	}
	r.rebasing = ""
	return nil
}

func (r *FakeRepo) HasRemoteCounterpart(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Branches[name]
	return ok && b.Remote, nil
}

func (r *FakeRepo) HadUpstreamEver(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Branches[name]
	return ok && b.HadUpstream, nil
}

func (r *FakeRepo) AheadBehind(_ context.Context, name string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Failures["aheadbehind "+name]; ok {
		return 0, 0, err
	}
	b, ok := r.Branches[name]
	if !ok || !b.Remote {
		return 0, 0, portError("rev-list", name)
	}
	return b.Ahead, b.Behind, nil
}

func (r *FakeRepo) MergedInto(_ context.Context, name, _ string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Failures["merged "+name]; ok {
		return false, err
	}
	b, ok := r.Branches[name]
	return ok && b.Merged, nil
}

func (r *FakeRepo) DeleteBranch(_ context.Context, name string, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call := "delete " + name
	if force {
		call += " --force"
	}
	if err := r.record(call); err != nil {
		return err
	}
	b, ok := r.Branches[name]
	if !ok || r.Current == name {
		return portError("branch", "-d", name)
	}
	if b.Unmerged && !force {
		return portError("branch", "-d", name)
	}
	delete(r.Branches, name)
	return nil
}

func (r *FakeRepo) FirstUniqueCommitMessage(_ context.Context, name, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Branches[name]
	if !ok || len(b.Commits) == 0 {
		return "", nil
	}
	return b.Commits[0], nil
}

// CommitSubjects returns the commits unique to name
func (r *FakeRepo) CommitSubjects(_ context.Context, name, _ string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Branches[name]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), b.Commits...), nil
}

// LocalBranches returns the local branches, sorted
func (r *FakeRepo) LocalBranches(_ context.Context) ([]string, error) {
	return r.BranchNames(), nil
}

func (r *FakeRepo) StageAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record("add --all")
}
