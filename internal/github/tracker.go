// Package github implements the tracker port on top of the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"stackit.dev/stk/internal/engine"
)

const (
	// DefaultMaxPages bounds the batched listing used by sync
	DefaultMaxPages = 10
	listPageSize    = 100
)

// Tracker implements engine.Tracker for a single GitHub repository
type Tracker struct {
	client   *github.Client
	owner    string
	repo     string
	token    string
	maxPages int
}

var _ engine.Tracker = (*Tracker)(nil)

// Options configures a Tracker
type Options struct {
	// Token authenticates API calls. An empty token yields an
	// unauthenticated tracker that engines treat as absent.
	Token string
	// MaxPages bounds ListAll; zero means DefaultMaxPages
	MaxPages int
}

// NewTracker creates a tracker for the repository behind remoteURL.
// GitHub Enterprise hosts are addressed through their /api/v3/ endpoint.
func NewTracker(ctx context.Context, remoteURL string, opts Options) (*Tracker, error) {
	info, err := ParseGitHubRemoteURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository info: %w", err)
	}
	client, err := createGitHubClient(ctx, info.Hostname, opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return NewTrackerWithClient(client, info.Owner, info.Repo, opts), nil
}

// NewTrackerWithClient wraps an existing client
func NewTrackerWithClient(client *github.Client, owner, repo string, opts Options) *Tracker {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Tracker{
		client:   client,
		owner:    owner,
		repo:     repo,
		token:    opts.Token,
		maxPages: maxPages,
	}
}

// createGitHubClient creates a GitHub client configured for the given hostname
func createGitHubClient(ctx context.Context, hostname, token string) (*github.Client, error) {
	var client *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		client = github.NewClient(nil)
	}

	if hostname != "github.com" {
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", hostname, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}
	return client, nil
}

// OwnerRepo returns the repository owner and name
func (t *Tracker) OwnerRepo() (string, string) {
	return t.owner, t.repo
}

// Authenticated reports whether the tracker holds credentials
func (t *Tracker) Authenticated(_ context.Context) bool {
	return t.token != ""
}

// FindRequestFor returns the open pull request for head, or the most recent
// one in any state. It returns nil, nil when none exists.
func (t *Tracker) FindRequestFor(ctx context.Context, head string) (*engine.PullRequest, error) {
	prs, _, err := t.client.PullRequests.List(ctx, t.owner, t.repo, &github.PullRequestListOptions{
		Head:        t.owner + ":" + head,
		State:       "all",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up pull request for %s: %w", head, err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	for _, pr := range prs {
		if pr.GetState() == engine.PullRequestStateOpen {
			return toPullRequest(pr), nil
		}
	}
	// Listings are newest first
	return toPullRequest(prs[0]), nil
}

// ListAll returns the status of every pull request keyed by head branch.
// When a head has several requests an open one wins, then the newest.
func (t *Tracker) ListAll(ctx context.Context) (map[string]engine.PullRequestStatus, error) {
	statuses := make(map[string]engine.PullRequestStatus)
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	for page := 0; page < t.maxPages; page++ {
		prs, resp, err := t.client.PullRequests.List(ctx, t.owner, t.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}
		for _, pr := range prs {
			head := pr.GetHead().GetRef()
			if head == "" {
				continue
			}
			status := engine.PullRequestStatus{
				State:  pr.GetState(),
				Merged: pr.MergedAt != nil || pr.GetMerged(),
			}
			existing, seen := statuses[head]
			if !seen || (existing.State != engine.PullRequestStateOpen && status.State == engine.PullRequestStateOpen) {
				statuses[head] = status
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return statuses, nil
}

// Create opens a pull request
func (t *Tracker) Create(ctx context.Context, opts engine.CreatePullRequestOptions) (*engine.PullRequest, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		newPR.Body = github.String(opts.Body)
	}

	created, _, err := t.client.PullRequests.Create(ctx, t.owner, t.repo, newPR)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return toPullRequest(created), nil
}

// UpdateDescription replaces the body of pull request number
func (t *Tracker) UpdateDescription(ctx context.Context, number int, body string) error {
	_, _, err := t.client.PullRequests.Edit(ctx, t.owner, t.repo, number, &github.PullRequest{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update pull request #%d: %w", number, err)
	}
	return nil
}

func toPullRequest(pr *github.PullRequest) *engine.PullRequest {
	return &engine.PullRequest{
		Number:     pr.GetNumber(),
		State:      pr.GetState(),
		Merged:     pr.MergedAt != nil || pr.GetMerged(),
		HeadBranch: pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		URL:        pr.GetHTMLURL(),
	}
}

// TokenRunner runs the gh CLI. It is satisfied by git.CommandRunner.
type TokenRunner interface {
	RunGH(ctx context.Context, args ...string) (string, error)
}

// ResolveToken returns a GitHub token from envVar (GITHUB_TOKEN when empty)
// or from `gh auth token`. A missing token is not an error.
func ResolveToken(ctx context.Context, envVar string, runner TokenRunner) string {
	if envVar == "" {
		envVar = "GITHUB_TOKEN"
	}
	if token := strings.TrimSpace(os.Getenv(envVar)); token != "" {
		return token
	}
	if runner == nil {
		return ""
	}
	output, err := runner.RunGH(ctx, "auth", "token")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(output)
}
