package actions

import (
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui"
)

// StackTree builds the tree of tracked branches rooted at trunk. Tracked
// branches whose parent chain does not reach trunk are shown under trunk.
func StackTree(ctx *runtime.Context) (*tui.StackNode, error) {
	gctx := ctx.Context
	reg := ctx.Registry

	root := &tui.StackNode{Name: reg.Trunk()}
	nodes := map[string]*tui.StackNode{root.Name: root}

	attach := func(top string) error {
		descendants, err := reg.Descendants(gctx, top)
		if err != nil {
			return err
		}
		for _, d := range descendants {
			if _, ok := nodes[d.Name]; ok {
				continue
			}
			node := &tui.StackNode{Name: d.Name}
			nodes[d.Name] = node
			parent := nodes[d.Parent]
			parent.Children = append(parent.Children, node)
		}
		return nil
	}

	if err := attach(root.Name); err != nil {
		return nil, err
	}
	tracked, err := reg.Tracked(gctx)
	if err != nil {
		return nil, err
	}
	for _, name := range tracked {
		if _, ok := nodes[name]; ok {
			continue
		}
		node := &tui.StackNode{Name: name}
		nodes[name] = node
		root.Children = append(root.Children, node)
		if err := attach(name); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// LogAction renders the stack tree with the current branch marked
func LogAction(ctx *runtime.Context) (string, error) {
	root, err := StackTree(ctx)
	if err != nil {
		return "", err
	}
	current, err := ctx.Repo.CurrentBranch(ctx.Context)
	if err != nil {
		current = ""
	}
	return tui.RenderStackTree(root, current), nil
}
