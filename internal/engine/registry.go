package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	// configSection is the private namespace of every key the registry owns
	configSection = "stk"
	trackedKey    = configSection + ".tracked"
	parentSuffix  = ".parent"
)

func parentKey(branchName string) string {
	return configSection + "." + branchName + parentSuffix
}

// Registry is the persistent store of the tracked-branch set and parent
// pointers. It only rejects names it cannot store; callers check ref
// existence and cycle safety.
type Registry struct {
	store ConfigStore
	trunk string
}

// NewRegistry creates a registry over store rooted at trunk
func NewRegistry(store ConfigStore, trunk string) *Registry {
	return &Registry{store: store, trunk: trunk}
}

// Trunk returns the trunk branch name
func (r *Registry) Trunk() string {
	return r.trunk
}

// IsTrunk reports whether branchName is the trunk
func (r *Registry) IsTrunk(branchName string) bool {
	return branchName == r.trunk
}

// Tracked returns the tracked set, sorted
func (r *Registry) Tracked(ctx context.Context) ([]string, error) {
	raw, _, err := r.store.Get(ctx, trackedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracked branches: %w", err)
	}
	names := splitTracked(raw)
	sort.Strings(names)
	return names, nil
}

// IsTracked reports whether branchName is managed. Trunk is implicitly tracked.
func (r *Registry) IsTracked(ctx context.Context, branchName string) (bool, error) {
	if r.IsTrunk(branchName) {
		return true, nil
	}
	raw, _, err := r.store.Get(ctx, trackedKey)
	if err != nil {
		return false, fmt.Errorf("failed to read tracked branches: %w", err)
	}
	for _, name := range splitTracked(raw) {
		if name == branchName {
			return true, nil
		}
	}
	return false, nil
}

// checkTrackable rejects names the comma-joined tracked set cannot hold
func checkTrackable(branchName string) error {
	if strings.Contains(branchName, ",") {
		return fmt.Errorf("cannot track %q: branch names containing a comma are not supported", branchName)
	}
	return nil
}

// AddTracked adds branchName to the tracked set. Adding twice is a no-op.
func (r *Registry) AddTracked(ctx context.Context, branchName string) error {
	if err := checkTrackable(branchName); err != nil {
		return err
	}
	raw, _, err := r.store.Get(ctx, trackedKey)
	if err != nil {
		return fmt.Errorf("failed to read tracked branches: %w", err)
	}
	names := splitTracked(raw)
	for _, name := range names {
		if name == branchName {
			return nil
		}
	}
	names = append(names, branchName)
	if err := r.store.Set(ctx, trackedKey, strings.Join(names, ",")); err != nil {
		return fmt.Errorf("failed to track %s: %w", branchName, err)
	}
	return nil
}

// RemoveTracked removes branchName from the tracked set. Removing the last
// member unsets the key instead of leaving an empty value behind.
func (r *Registry) RemoveTracked(ctx context.Context, branchName string) error {
	raw, ok, err := r.store.Get(ctx, trackedKey)
	if err != nil {
		return fmt.Errorf("failed to read tracked branches: %w", err)
	}
	if !ok {
		return nil
	}
	names := splitTracked(raw)
	kept := names[:0]
	for _, name := range names {
		if name != branchName {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		if err := r.store.Unset(ctx, trackedKey); err != nil {
			return fmt.Errorf("failed to untrack %s: %w", branchName, err)
		}
		return nil
	}
	if err := r.store.Set(ctx, trackedKey, strings.Join(kept, ",")); err != nil {
		return fmt.Errorf("failed to untrack %s: %w", branchName, err)
	}
	return nil
}

// Parent returns the recorded parent of branchName and whether one exists
func (r *Registry) Parent(ctx context.Context, branchName string) (string, bool, error) {
	parent, ok, err := r.store.Get(ctx, parentKey(branchName))
	if err != nil {
		return "", false, fmt.Errorf("failed to read parent of %s: %w", branchName, err)
	}
	if !ok || parent == "" {
		return "", false, nil
	}
	return parent, true, nil
}

// ParentOrTrunk returns the recorded parent of branchName, falling back to trunk
func (r *Registry) ParentOrTrunk(ctx context.Context, branchName string) (string, error) {
	parent, ok, err := r.Parent(ctx, branchName)
	if err != nil {
		return "", err
	}
	if !ok {
		return r.trunk, nil
	}
	return parent, nil
}

// SetParent records parentBranchName as the parent of branchName
func (r *Registry) SetParent(ctx context.Context, branchName, parentBranchName string) error {
	if err := r.store.Set(ctx, parentKey(branchName), parentBranchName); err != nil {
		return fmt.Errorf("failed to set parent of %s to %s: %w", branchName, parentBranchName, err)
	}
	return nil
}

// ClearParent removes the parent pointer of branchName
func (r *Registry) ClearParent(ctx context.Context, branchName string) error {
	if err := r.store.Unset(ctx, parentKey(branchName)); err != nil {
		return fmt.Errorf("failed to clear parent of %s: %w", branchName, err)
	}
	return nil
}

// Track records branchName as tracked with the given parent
func (r *Registry) Track(ctx context.Context, branchName, parentBranchName string) error {
	if err := checkTrackable(branchName); err != nil {
		return err
	}
	if err := r.SetParent(ctx, branchName, parentBranchName); err != nil {
		return err
	}
	return r.AddTracked(ctx, branchName)
}

// Untrack removes branchName from the tracked set and drops its parent pointer
func (r *Registry) Untrack(ctx context.Context, branchName string) error {
	if err := r.RemoveTracked(ctx, branchName); err != nil {
		return err
	}
	return r.ClearParent(ctx, branchName)
}

// Children returns the tracked branches whose parent is branchName, sorted
func (r *Registry) Children(ctx context.Context, branchName string) ([]string, error) {
	tracked, err := r.Tracked(ctx)
	if err != nil {
		return nil, err
	}
	parents, err := r.parents(ctx)
	if err != nil {
		return nil, err
	}
	children := []string{}
	for _, name := range tracked {
		if name != branchName && parents[name] == branchName {
			children = append(children, name)
		}
	}
	return children, nil
}

// StackToTrunk returns the path [root-most ancestor, ..., branchName],
// excluding trunk. A missing parent pointer ends the walk as if it were
// trunk, and the walk never takes more hops than there are tracked
// branches, so a corrupt chain cannot loop forever.
func (r *Registry) StackToTrunk(ctx context.Context, branchName string) ([]string, error) {
	if r.IsTrunk(branchName) {
		return []string{branchName}, nil
	}
	tracked, err := r.Tracked(ctx)
	if err != nil {
		return nil, err
	}
	parents, err := r.parents(ctx)
	if err != nil {
		return nil, err
	}

	path := []string{branchName}
	seen := map[string]bool{branchName: true}
	current := branchName
	for hops := 0; hops <= len(tracked); hops++ {
		parent, ok := parents[current]
		if !ok || parent == "" || r.IsTrunk(parent) || seen[parent] {
			break
		}
		path = append(path, parent)
		seen[parent] = true
		current = parent
	}

	// Reverse into root-first order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Descendant is one node of a pre-order walk below a branch
type Descendant struct {
	Name   string
	Parent string
	Depth  int
}

// Descendants returns every tracked branch below branchName in pre-order,
// siblings sorted by name. The walk uses an explicit worklist and visits
// each branch at most once.
func (r *Registry) Descendants(ctx context.Context, branchName string) ([]Descendant, error) {
	tracked, err := r.Tracked(ctx)
	if err != nil {
		return nil, err
	}
	parents, err := r.parents(ctx)
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[string][]string)
	for _, name := range tracked {
		if parent, ok := parents[name]; ok && parent != name {
			childrenOf[parent] = append(childrenOf[parent], name)
		}
	}

	var result []Descendant
	seen := map[string]bool{branchName: true}
	worklist := []Descendant{}
	push := func(parent string, depth int) {
		kids := childrenOf[parent]
		for i := len(kids) - 1; i >= 0; i-- {
			worklist = append(worklist, Descendant{Name: kids[i], Parent: parent, Depth: depth})
		}
	}
	push(branchName, 1)
	for len(worklist) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if seen[node.Name] {
			continue
		}
		seen[node.Name] = true
		result = append(result, node)
		push(node.Name, node.Depth+1)
	}
	return result, nil
}

// Parents returns every recorded parent pointer keyed by child
func (r *Registry) Parents(ctx context.Context) (map[string]string, error) {
	return r.parents(ctx)
}

func (r *Registry) parents(ctx context.Context) (map[string]string, error) {
	entries, err := r.store.List(ctx, configSection+".")
	if err != nil {
		return nil, fmt.Errorf("failed to read parent pointers: %w", err)
	}
	parents := make(map[string]string, len(entries))
	prefix := configSection + "."
	for key, value := range entries {
		if !strings.HasSuffix(key, parentSuffix) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), parentSuffix)
		if name == "" {
			continue
		}
		parents[name] = value
	}
	return parents, nil
}

func splitTracked(raw string) []string {
	names := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		names = append(names, part)
	}
	return names
}
