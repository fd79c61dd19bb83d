package ai

import (
	"fmt"
	"strings"
)

// PRContext is everything a Generator knows about the branch being submitted
type PRContext struct {
	BranchName       string
	ParentBranchName string
	TrunkBranchName  string
	CommitMessages   []string
	// Stack is the branch's stack from the trunk's child down to the branch
	// itself, followed by its tracked descendants
	Stack []StackEntry
}

// StackEntry is one branch of the stack and its pull request, if known
type StackEntry struct {
	BranchName string
	Number     int
	URL        string
	Current    bool
}

// DefaultBody renders the description used when no generator is configured
func DefaultBody(prContext *PRContext) string {
	var sb strings.Builder
	if len(prContext.CommitMessages) > 0 {
		for _, msg := range prContext.CommitMessages {
			fmt.Fprintf(&sb, "- %s\n", msg)
		}
		sb.WriteString("\n")
	}

	if len(prContext.Stack) > 1 {
		sb.WriteString("### Stack\n\n")
		fmt.Fprintf(&sb, "- `%s`\n", prContext.TrunkBranchName)
		for _, entry := range prContext.Stack {
			sb.WriteString("- ")
			sb.WriteString(formatEntry(entry))
			sb.WriteString("\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

func formatEntry(entry StackEntry) string {
	label := fmt.Sprintf("`%s`", entry.BranchName)
	if entry.Number > 0 {
		label = fmt.Sprintf("#%d %s", entry.Number, label)
	}
	if entry.Current {
		label += " 👈"
	}
	return label
}
