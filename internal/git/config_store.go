package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"stackit.dev/stk/internal/engine"
)

// git config exit codes that signal absence rather than failure
const (
	configExitKeyMissing   = 1
	configExitUnsetMissing = 5
)

// ConfigStore implements engine.ConfigStore over the repository-local git
// config. Section and variable names are case-insensitive in git; branch
// names live in the subsection, which keeps its case.
type ConfigStore struct {
	runner *CommandRunner
}

var _ engine.ConfigStore = (*ConfigStore)(nil)

// NewConfigStore creates a ConfigStore that runs git in dir
func NewConfigStore(dir string) *ConfigStore {
	return &ConfigStore{runner: NewCommandRunner(dir)}
}

// Get returns the value of key and whether it is set
func (s *ConfigStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.runner.Run(ctx, "config", "--local", "--get", key)
	if err != nil {
		if exitCode(err) == configExitKeyMissing {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key
func (s *ConfigStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.runner.Run(ctx, "config", "--local", key, value); err != nil {
		return fmt.Errorf("failed to write config %s: %w", key, err)
	}
	return nil
}

// Unset removes key. Removing a missing key is not an error.
func (s *ConfigStore) Unset(ctx context.Context, key string) error {
	if _, err := s.runner.Run(ctx, "config", "--local", "--unset", key); err != nil {
		if exitCode(err) == configExitUnsetMissing {
			return nil
		}
		return fmt.Errorf("failed to unset config %s: %w", key, err)
	}
	return nil
}

// List returns every key that starts with prefix
func (s *ConfigStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	entries := make(map[string]string)
	lines, err := s.runner.RunLines(ctx, "config", "--local", "--get-regexp", "^"+regexp.QuoteMeta(prefix))
	if err != nil {
		if exitCode(err) == configExitKeyMissing {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to list config %s*: %w", prefix, err)
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		entries[key] = value
	}
	return entries, nil
}
