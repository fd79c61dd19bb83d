package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	repoConfigFile = ".stk_config"

	// DefaultTrunk is used when no trunk is configured
	DefaultTrunk = "main"
	// DefaultRemote is used when no remote is configured
	DefaultRemote = "origin"
	// DefaultTrackerMaxPages bounds the batched pull request listing
	DefaultTrackerMaxPages = 10
)

// TrackerConfig configures the pull request tracker
type TrackerConfig struct {
	MaxPages *int `json:"maxPages,omitempty"`
}

// RepoConfig represents the repository configuration. It lives in the git
// directory and is never committed.
type RepoConfig struct {
	Trunk           *string        `json:"trunk,omitempty"`
	Remote          *string        `json:"remote,omitempty"`
	DescribeCommand *string        `json:"describeCommand,omitempty"`
	Tracker         *TrackerConfig `json:"tracker,omitempty"`
}

func repoConfigPath(gitDir string) string {
	return filepath.Join(gitDir, repoConfigFile)
}

// GetRepoConfig reads the repository configuration. A missing file yields
// an empty config.
func GetRepoConfig(gitDir string) (*RepoConfig, error) {
	data, err := os.ReadFile(repoConfigPath(gitDir))
	if errors.Is(err, os.ErrNotExist) {
		return &RepoConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}
	return &config, nil
}

// SaveRepoConfig writes the repository configuration
func SaveRepoConfig(gitDir string, config *RepoConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(repoConfigPath(gitDir), data, 0600); err != nil {
		return fmt.Errorf("failed to write repo config: %w", err)
	}
	return nil
}

// IsInitialized reports whether stk init has been run in the repository
func IsInitialized(gitDir string) bool {
	config, err := GetRepoConfig(gitDir)
	if err != nil {
		return false
	}
	return config.Trunk != nil && *config.Trunk != ""
}

// SetTrunk records the trunk branch, initializing the repository
func SetTrunk(gitDir, trunk string) error {
	config, err := GetRepoConfig(gitDir)
	if err != nil {
		config = &RepoConfig{}
	}
	config.Trunk = &trunk
	return SaveRepoConfig(gitDir, config)
}

// TrunkName returns the configured trunk or DefaultTrunk
func (c *RepoConfig) TrunkName() string {
	if c.Trunk != nil && *c.Trunk != "" {
		return *c.Trunk
	}
	return DefaultTrunk
}

// RemoteName returns the configured remote or DefaultRemote
func (c *RepoConfig) RemoteName() string {
	if c.Remote != nil && *c.Remote != "" {
		return *c.Remote
	}
	return DefaultRemote
}

// DescribeCommandLine returns the external description generator, if any
func (c *RepoConfig) DescribeCommandLine() string {
	if c.DescribeCommand != nil {
		return *c.DescribeCommand
	}
	return ""
}

// TrackerMaxPages returns the page limit for batched tracker queries
func (c *RepoConfig) TrackerMaxPages() int {
	if c.Tracker != nil && c.Tracker.MaxPages != nil && *c.Tracker.MaxPages > 0 {
		return *c.Tracker.MaxPages
	}
	return DefaultTrackerMaxPages
}
