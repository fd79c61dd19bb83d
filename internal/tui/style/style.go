// Package style holds the lipgloss styles shared by command output.
package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	treeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// ColorBranchName colors a branch name based on whether it's current
func ColorBranchName(branchName string, isCurrent bool) string {
	if isCurrent {
		return currentStyle.Render(branchName + " (current)")
	}
	return branchStyle.Render(branchName)
}

// ColorDim renders secondary information
func ColorDim(text string) string {
	return dimStyle.Render(text)
}

// ColorSuccess renders a completed outcome
func ColorSuccess(text string) string {
	return successStyle.Render(text)
}

// ColorWarning renders an outcome that needs attention
func ColorWarning(text string) string {
	return warnStyle.Render(text)
}

// ColorError renders a failure
func ColorError(text string) string {
	return errorStyle.Render(text)
}

// ColorTree renders tree connectors
func ColorTree(text string) string {
	return treeStyle.Render(text)
}

// FormatPullRequest renders a pull request reference
func FormatPullRequest(number int, url string) string {
	if url == "" {
		return fmt.Sprintf("#%d", number)
	}
	return fmt.Sprintf("#%d %s", number, dimStyle.Render(url))
}
