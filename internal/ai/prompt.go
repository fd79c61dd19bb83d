package ai

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the prompt handed to an external description command
func BuildPrompt(prContext *PRContext) string {
	var sections []string

	sections = append(sections, "You are helping to write a pull request description. Use the following context.")
	sections = append(sections, buildBranchSection(prContext))

	if len(prContext.CommitMessages) > 0 {
		sections = append(sections, buildCommitSection(prContext.CommitMessages))
	}

	if len(prContext.Stack) > 1 {
		sections = append(sections, buildStackSection(prContext.Stack))
	}

	sections = append(sections, buildOutputFormatSection())

	return strings.Join(sections, "\n\n")
}

func buildBranchSection(prContext *PRContext) string {
	var lines []string
	lines = append(lines, "## Branch Information")
	lines = append(lines, fmt.Sprintf("- **Branch**: %s", prContext.BranchName))
	if prContext.ParentBranchName != "" {
		lines = append(lines, fmt.Sprintf("- **Parent Branch**: %s", prContext.ParentBranchName))
	}
	if prContext.TrunkBranchName != "" {
		lines = append(lines, fmt.Sprintf("- **Trunk Branch**: %s", prContext.TrunkBranchName))
	}
	return strings.Join(lines, "\n")
}

func buildCommitSection(commitMessages []string) string {
	lines := make([]string, 0, len(commitMessages)+2)
	lines = append(lines, "## Commit Messages", "")
	for i, msg := range commitMessages {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, msg))
	}
	return strings.Join(lines, "\n")
}

func buildStackSection(stack []StackEntry) string {
	lines := make([]string, 0, len(stack)+2)
	lines = append(lines, "## Stack", "")
	for _, entry := range stack {
		lines = append(lines, "- "+formatEntry(entry))
	}
	return strings.Join(lines, "\n")
}

func buildOutputFormatSection() string {
	return strings.Join([]string{
		"## Output Format",
		"",
		"Reply with the title on the first line and the description in markdown on the following lines.",
		"Do not wrap the reply in a code block.",
	}, "\n")
}

// parsePRResponse splits a generator reply into title and body
func parsePRResponse(response string) (string, string) {
	response = strings.TrimSpace(response)
	if response == "" {
		return "", ""
	}

	lines := strings.Split(response, "\n")
	title := strings.TrimSpace(lines[0])
	title = strings.TrimPrefix(title, "Title: ")
	title = strings.TrimPrefix(title, "# ")

	body := strings.TrimSpace(strings.Join(lines[1:], "\n"))
	body = strings.TrimPrefix(body, "Body: ")
	body = strings.TrimPrefix(body, "Description: ")

	return title, body
}
