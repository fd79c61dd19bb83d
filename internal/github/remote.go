package github

import (
	"fmt"
	"strings"
)

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// ParseGitHubRemoteURL parses a git remote URL and extracts hostname, owner, and repo.
// Supports both github.com and GitHub Enterprise URLs:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo.git
func ParseGitHubRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(remoteURL, "/")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")
	remoteURL = strings.TrimPrefix(remoteURL, "ssh://")

	var hostname, path string

	if at := strings.Index(remoteURL, "@"); at >= 0 && !strings.Contains(remoteURL[:at], "/") {
		// SSH format: git@hostname:owner/repo or git@hostname/owner/repo
		hostAndPath := remoteURL[at+1:]
		sep := strings.IndexAny(hostAndPath, ":/")
		if sep < 0 {
			return nil, fmt.Errorf("invalid SSH remote URL: missing path")
		}
		hostname = hostAndPath[:sep]
		path = hostAndPath[sep+1:]
	} else {
		remoteURL = strings.TrimPrefix(remoteURL, "https://")
		remoteURL = strings.TrimPrefix(remoteURL, "http://")
		host, rest, ok := strings.Cut(remoteURL, "/")
		if !ok {
			return nil, fmt.Errorf("invalid HTTPS remote URL: must be protocol://hostname/owner/repo")
		}
		// Credentials embedded in the URL
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}
		hostname = host
		path = rest
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid remote URL %q: path must be owner/repo", remoteURL)
	}
	owner := parts[len(parts)-2]
	repo := parts[len(parts)-1]

	if hostname == "" || owner == "" || repo == "" {
		return nil, fmt.Errorf("failed to parse hostname, owner, or repo from remote URL")
	}

	return &RepoInfo{
		Hostname: hostname,
		Owner:    owner,
		Repo:     repo,
	}, nil
}
