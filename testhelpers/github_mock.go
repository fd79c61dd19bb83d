package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server.
// Fields are safe to inspect after requests complete.
type MockGitHubServerConfig struct {
	// PullRequests in creation order; listings return them newest first
	PullRequests []*github.PullRequest
	// CreatedPRs records every pull request opened through the API
	CreatedPRs []*github.PullRequest
	// UpdatedBodies records description updates keyed by number
	UpdatedBodies map[int]string
	// ErrorResponses maps "METHOD pulls" to a status code to fail with
	ErrorResponses map[string]int
	// ListRequests counts list calls, one per page
	ListRequests int
	Owner        string
	Repo         string

	mu sync.Mutex
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		UpdatedBodies:  make(map[int]string),
		ErrorResponses: make(map[string]int),
		Owner:          "owner",
		Repo:           "repo",
	}
}

// AddPullRequest seeds a pull request for head. state is "open" or "closed".
func (c *MockGitHubServerConfig) AddPullRequest(head, base, state string, merged bool) *github.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(head, base, state, merged, "PR for "+head, "")
}

func (c *MockGitHubServerConfig) addLocked(head, base, state string, merged bool, title, body string) *github.PullRequest {
	number := len(c.PullRequests) + 1
	pr := &github.PullRequest{
		Number:  github.Int(number),
		State:   github.String(state),
		Title:   github.String(title),
		Body:    github.String(body),
		HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/%s/pull/%d", c.Owner, c.Repo, number)),
		Head:    &github.PullRequestBranch{Ref: github.String(head), Label: github.String(c.Owner + ":" + head)},
		Base:    &github.PullRequestBranch{Ref: github.String(base)},
	}
	if merged {
		pr.MergedAt = &github.Timestamp{Time: time.Unix(1700000000, 0)}
	}
	c.PullRequests = append(c.PullRequests, pr)
	return pr
}

// NewMockGitHubServer creates an httptest server that mocks the pull
// request endpoints of the GitHub REST API
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	basePath := "/repos/" + config.Owner + "/" + config.Repo + "/pulls"
	mux := http.NewServeMux()

	mux.HandleFunc(basePath, func(w http.ResponseWriter, r *http.Request) {
		if failWith(w, config, r.Method+" pulls") {
			return
		}
		switch r.Method {
		case http.MethodGet:
			listPullRequests(w, r, config)
		case http.MethodPost:
			createPullRequest(w, r, config)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc(basePath+"/", func(w http.ResponseWriter, r *http.Request) {
		if failWith(w, config, r.Method+" pulls") {
			return
		}
		number, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, basePath+"/"))
		if err != nil {
			http.Error(w, "invalid pull request number", http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPatch {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		updatePullRequest(w, r, config, number)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// NewMockGitHubClient creates a GitHub client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	t.Helper()
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL
	return client, config.Owner, config.Repo
}

func failWith(w http.ResponseWriter, config *MockGitHubServerConfig, key string) bool {
	config.mu.Lock()
	status, ok := config.ErrorResponses[key]
	config.mu.Unlock()
	if !ok {
		return false
	}
	writeJSON(w, status, map[string]string{"message": "mock failure"})
	return true
}

func listPullRequests(w http.ResponseWriter, r *http.Request, config *MockGitHubServerConfig) {
	config.mu.Lock()
	defer config.mu.Unlock()
	config.ListRequests++

	query := r.URL.Query()
	state := query.Get("state")
	if state == "" {
		state = "open"
	}
	head := query.Get("head")

	var matched []*github.PullRequest
	for i := len(config.PullRequests) - 1; i >= 0; i-- {
		pr := config.PullRequests[i]
		if state != "all" && pr.GetState() != state {
			continue
		}
		if head != "" && pr.GetHead().GetLabel() != head {
			continue
		}
		matched = append(matched, pr)
	}

	perPage, _ := strconv.Atoi(query.Get("per_page"))
	if perPage <= 0 {
		perPage = 30
	}
	page, _ := strconv.Atoi(query.Get("page"))
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	if end < len(matched) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.RequestURI()))
	}
	writeJSON(w, http.StatusOK, matched[start:end])
}

func createPullRequest(w http.ResponseWriter, r *http.Request, config *MockGitHubServerConfig) {
	var req github.NewPullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	config.mu.Lock()
	pr := config.addLocked(req.GetHead(), req.GetBase(), "open", false, req.GetTitle(), req.GetBody())
	pr.Draft = github.Bool(req.GetDraft())
	config.CreatedPRs = append(config.CreatedPRs, pr)
	config.mu.Unlock()

	writeJSON(w, http.StatusCreated, pr)
}

func updatePullRequest(w http.ResponseWriter, r *http.Request, config *MockGitHubServerConfig, number int) {
	var update struct {
		Body *string `json:"body,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	config.mu.Lock()
	defer config.mu.Unlock()
	if number < 1 || number > len(config.PullRequests) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	pr := config.PullRequests[number-1]
	if update.Body != nil {
		pr.Body = update.Body
		config.UpdatedBodies[number] = *update.Body
	}
	writeJSON(w, http.StatusOK, pr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
