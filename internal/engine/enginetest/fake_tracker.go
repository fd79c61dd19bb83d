package enginetest

import (
	"context"
	"fmt"
	"sync"

	"stackit.dev/stk/internal/engine"
)

// FakeTracker implements engine.Tracker over an in-memory set of pull
// requests keyed by head branch
type FakeTracker struct {
	mu           sync.Mutex
	Token        bool
	PullRequests map[string]*engine.PullRequest
	ListErr      error
	// CreateErrs fails Create for the given head
	CreateErrs map[string]error
	Created    []engine.CreatePullRequestOptions
	Updated    map[int]string
	Lookups    []string
	ListCalls  int
	nextNumber int
}

var _ engine.Tracker = (*FakeTracker)(nil)

// NewFakeTracker creates an authenticated tracker with no pull requests
func NewFakeTracker() *FakeTracker {
	return &FakeTracker{
		Token:        true,
		PullRequests: map[string]*engine.PullRequest{},
		CreateErrs:   map[string]error{},
		Updated:      map[int]string{},
		nextNumber:   100,
	}
}

// AddPullRequest registers an existing pull request for head
func (f *FakeTracker) AddPullRequest(head, base, state string, merged bool) *engine.PullRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextNumber++
	pr := &engine.PullRequest{
		Number:     f.nextNumber,
		State:      state,
		Merged:     merged,
		HeadBranch: head,
		BaseBranch: base,
		Title:      head,
		URL:        fmt.Sprintf("https://example.com/pull/%d", f.nextNumber),
	}
	f.PullRequests[head] = pr
	return pr
}

func (f *FakeTracker) Authenticated(_ context.Context) bool {
	return f.Token
}

func (f *FakeTracker) FindRequestFor(_ context.Context, head string) (*engine.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lookups = append(f.Lookups, head)
	pr, ok := f.PullRequests[head]
	if !ok {
		return nil, nil
	}
	copied := *pr
	return &copied, nil
}

func (f *FakeTracker) ListAll(_ context.Context) (map[string]engine.PullRequestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	statuses := make(map[string]engine.PullRequestStatus, len(f.PullRequests))
	for head, pr := range f.PullRequests {
		statuses[head] = engine.PullRequestStatus{State: pr.State, Merged: pr.Merged}
	}
	return statuses, nil
}

func (f *FakeTracker) Create(_ context.Context, opts engine.CreatePullRequestOptions) (*engine.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.CreateErrs[opts.Head]; ok {
		return nil, err
	}
	f.Created = append(f.Created, opts)
	f.nextNumber++
	pr := &engine.PullRequest{
		Number:     f.nextNumber,
		State:      engine.PullRequestStateOpen,
		HeadBranch: opts.Head,
		BaseBranch: opts.Base,
		Title:      opts.Title,
		Body:       opts.Body,
		URL:        fmt.Sprintf("https://example.com/pull/%d", f.nextNumber),
	}
	f.PullRequests[opts.Head] = pr
	copied := *pr
	return &copied, nil
}

func (f *FakeTracker) UpdateDescription(_ context.Context, number int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pr := range f.PullRequests {
		if pr.Number == number {
			pr.Body = body
			f.Updated[number] = body
			return nil
		}
	}
	return fmt.Errorf("pull request #%d not found", number)
}
