package engine

import "context"

// Repository is the version-control capability set consumed by the engines.
// Every call is a blocking round trip; expected absence (no remote branch, no
// upstream) is reported through return values, never through errors.
type Repository interface {
	IsRepo(ctx context.Context) bool
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) (bool, error)
	Checkout(ctx context.Context, name string) error
	CreateBranch(ctx context.Context, name string) error
	Commit(ctx context.Context, message string) error
	Amend(ctx context.Context) error

	// Remote operations
	Fetch(ctx context.Context, prune bool) error
	// Pull fast-forwards the checked-out branch from its remote counterpart.
	Pull(ctx context.Context) error
	// Push pushes name to the remote. force uses a lease so a remote that
	// moved since the last fetch is never overwritten.
	Push(ctx context.Context, name string, setUpstream, force bool) error

	// Rebase rebases the checked-out branch onto onto. A conflict is reported
	// as RebaseConflict with a nil error and leaves the rebase in progress.
	Rebase(ctx context.Context, onto string) (RebaseResult, error)

	// Comparison
	HasRemoteCounterpart(ctx context.Context, name string) (bool, error)
	HadUpstreamEver(ctx context.Context, name string) (bool, error)
	AheadBehind(ctx context.Context, name string) (ahead, behind int, err error)
	MergedInto(ctx context.Context, name, target string) (bool, error)

	DeleteBranch(ctx context.Context, name string, force bool) error
	FirstUniqueCommitMessage(ctx context.Context, name, parent string) (string, error)
}

// Tracker is the review-request capability set consumed by the engines
type Tracker interface {
	Authenticated(ctx context.Context) bool
	// FindRequestFor returns the open request for head, or the most recent
	// one in any state. It returns nil, nil when none exists.
	FindRequestFor(ctx context.Context, head string) (*PullRequest, error)
	// ListAll returns the status of every request keyed by head branch in a
	// single batched query.
	ListAll(ctx context.Context) (map[string]PullRequestStatus, error)
	Create(ctx context.Context, opts CreatePullRequestOptions) (*PullRequest, error)
	UpdateDescription(ctx context.Context, number int, body string) error
}

// ConfigStore is a flat key/value store with git-config semantics.
// Get reports a missing key through its bool result.
type ConfigStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Unset(ctx context.Context, key string) error
	// List returns every key starting with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)
}
