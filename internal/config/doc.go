// Package config manages stk configuration and state persistence.
//
// It handles:
//   - Repository-specific configuration (.git/.stk_config, JSON)
//   - Per-user configuration ($XDG_CONFIG_HOME/stk/config.yaml, YAML)
//   - Continuation state for a restack interrupted by a conflict
//
// Stack metadata itself (tracked set, parent pointers) lives in git config
// and is owned by the engine's registry, not by this package.
package config
