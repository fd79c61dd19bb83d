package engine

// Pull request states reported by the tracker
const (
	PullRequestStateOpen   = "open"
	PullRequestStateClosed = "closed"
)

// PullRequest is a review request owned by the tracker. It is never persisted.
type PullRequest struct {
	Number     int
	State      string
	Merged     bool
	HeadBranch string
	BaseBranch string
	Title      string
	Body       string
	URL        string
}

// PullRequestStatus is the slice of tracker state the sync engine classifies on
type PullRequestStatus struct {
	State  string
	Merged bool
}

// IsClosed reports whether the request was closed without being merged
func (s PullRequestStatus) IsClosed() bool {
	return !s.Merged && s.State == PullRequestStateClosed
}

// CreatePullRequestOptions contains options for opening a pull request
type CreatePullRequestOptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// RebaseResult represents the result of a rebase operation
type RebaseResult int

const (
	// RebaseDone indicates the rebase was successful
	RebaseDone RebaseResult = iota
	// RebaseConflict indicates a conflict occurred during rebase
	RebaseConflict
)
