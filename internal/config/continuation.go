package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const continuationFile = ".stk_continue"

// ErrNoContinuation is returned when there is no interrupted restack to resume
var ErrNoContinuation = errors.New("no continuation state found")

// ContinuationState records a restack interrupted by a rebase conflict
type ContinuationState struct {
	// RebasingBranch is the branch left mid-rebase and Onto its parent
	RebasingBranch string `json:"rebasingBranch,omitempty"`
	Onto           string `json:"onto,omitempty"`
	// BranchesToRestack are the descendants still waiting, in cascade order
	BranchesToRestack []string `json:"branchesToRestack,omitempty"`
	// StartBranch is checked out again once the cascade finishes
	StartBranch string `json:"startBranch,omitempty"`
}

// GetContinuationState reads the continuation state from disk
func GetContinuationState(gitDir string) (*ContinuationState, error) {
	data, err := os.ReadFile(filepath.Join(gitDir, continuationFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoContinuation
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read continuation state: %w", err)
	}

	var state ContinuationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse continuation state: %w", err)
	}
	return &state, nil
}

// PersistContinuationState writes the continuation state to disk
func PersistContinuationState(gitDir string, state *ContinuationState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal continuation state: %w", err)
	}
	return os.WriteFile(filepath.Join(gitDir, continuationFile), data, 0600)
}

// ClearContinuationState removes the continuation state file
func ClearContinuationState(gitDir string) error {
	err := os.Remove(filepath.Join(gitDir, continuationFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear continuation state: %w", err)
	}
	return nil
}
