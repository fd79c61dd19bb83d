package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig holds per-user preferences shared by every repository
type UserConfig struct {
	// LogFile overrides the file log location; "off" disables it
	LogFile string `yaml:"logFile,omitempty"`
	// GitHubTokenEnv names the environment variable holding the API token
	GitHubTokenEnv string `yaml:"githubTokenEnv,omitempty"`
	// Confirm overrides the default answers of sync's deletion prompts
	Confirm ConfirmDefaults `yaml:"confirmDefaults,omitempty"`
}

// ConfirmDefaults are the answers used on plain Enter
type ConfirmDefaults struct {
	DeleteMerged *bool `yaml:"deleteMerged,omitempty"`
	DeleteClosed *bool `yaml:"deleteClosed,omitempty"`
}

// DeleteMergedDefault returns the default for deleting merged branches
func (c *UserConfig) DeleteMergedDefault() bool {
	if c.Confirm.DeleteMerged != nil {
		return *c.Confirm.DeleteMerged
	}
	return true
}

// DeleteClosedDefault returns the default for deleting closed branches
func (c *UserConfig) DeleteClosedDefault() bool {
	if c.Confirm.DeleteClosed != nil {
		return *c.Confirm.DeleteClosed
	}
	return false
}

// UserConfigPath returns $STK_USER_CONFIG, else $XDG_CONFIG_HOME/stk/config.yaml,
// else ~/.config/stk/config.yaml
func UserConfigPath() (string, error) {
	if custom := os.Getenv("STK_USER_CONFIG"); custom != "" {
		return custom, nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "stk", "config.yaml"), nil
}

// LoadUserConfig reads the user configuration. A missing file yields defaults.
func LoadUserConfig() (*UserConfig, error) {
	path, err := UserConfigPath()
	if err != nil {
		return &UserConfig{}, nil //nolint:nilerr // no home directory means no user config
	}
	return LoadUserConfigFrom(path)
}

// LoadUserConfigFrom reads the user configuration at path
func LoadUserConfigFrom(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config %s: %w", path, err)
	}
	return &config, nil
}

// SaveUserConfig writes the user configuration to path
func SaveUserConfig(path string, config *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}
