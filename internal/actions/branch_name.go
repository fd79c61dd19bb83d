package actions

import (
	"regexp"
	"strings"
)

// maxBranchNameLength keeps refs/heads/<name> and the stk.<name>.parent
// config key well inside git's limits
const maxBranchNameLength = 200

var (
	invalidBranchChars   = regexp.MustCompile(`[^-_/.a-zA-Z0-9]+`)
	trailingBranchChars  = regexp.MustCompile(`[/.]+$`)
	repeatedHyphens      = regexp.MustCompile(`-{2,}`)
	conventionalPrefixes = regexp.MustCompile(`^(feat|fix|chore|docs|style|refactor|perf|test|build|ci)(\([^)]*\))?!?:\s*`)
)

// SanitizeBranchName turns arbitrary text into a usable branch name
func SanitizeBranchName(name string) string {
	name = invalidBranchChars.ReplaceAllString(strings.TrimSpace(name), "-")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = trailingBranchChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "-")
	if len(name) > maxBranchNameLength {
		name = strings.TrimRight(name[:maxBranchNameLength], "-/.")
	}
	return strings.ToLower(name)
}

// BranchNameFromMessage derives a branch name from a commit subject,
// dropping a conventional-commit prefix
func BranchNameFromMessage(message string) string {
	subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	subject = conventionalPrefixes.ReplaceAllString(strings.TrimSpace(subject), "")
	return SanitizeBranchName(subject)
}
