package tui

import (
	"strings"

	"stackit.dev/stk/internal/tui/style"
)

// StackNode is one branch in a rendered stack tree
type StackNode struct {
	Name     string
	Children []*StackNode
}

// RenderStackTree renders root and its descendants top-down with box
// drawing connectors. current is marked.
func RenderStackTree(root *StackNode, current string) string {
	var b strings.Builder
	b.WriteString(style.ColorBranchName(root.Name, root.Name == current))
	b.WriteString("\n")
	renderChildren(&b, root.Children, "", current)
	return b.String()
}

func renderChildren(b *strings.Builder, children []*StackNode, prefix, current string) {
	for i, child := range children {
		last := i == len(children)-1
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}
		b.WriteString(style.ColorTree(prefix + connector))
		b.WriteString(style.ColorBranchName(child.Name, child.Name == current))
		b.WriteString("\n")
		renderChildren(b, child.Children, nextPrefix, current)
	}
}
