package tui

import (
	"os"
	"path/filepath"
)

// LogFilePath returns the path of the file log. STK_LOG_FILE wins, then
// configured, then $XDG_STATE_HOME/stk/stk.log. "off" disables file logging.
func LogFilePath(configured string) string {
	if custom := os.Getenv("STK_LOG_FILE"); custom != "" {
		return normalizeLogPath(custom)
	}
	if configured != "" {
		return normalizeLogPath(configured)
	}

	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "stk", "stk.log")
}

func normalizeLogPath(path string) string {
	if path == "off" {
		return ""
	}
	return path
}
