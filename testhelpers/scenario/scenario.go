// Package scenario combines a Scene with a runtime Context wired to the real
// git ports, giving integration tests a terse API.
package scenario

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/config"
	"stackit.dev/stk/internal/engine/enginetest"
	"stackit.dev/stk/internal/runtime"
	"stackit.dev/stk/internal/tui"
	"stackit.dev/stk/testhelpers"
)

// Scenario is a Scene plus an initialized stk context. Output is captured
// in Out and prompts are answered by Prompter.
type Scenario struct {
	T        *testing.T
	Scene    *testhelpers.Scene
	Context  *runtime.Context
	Prompter *enginetest.ScriptedPrompter
	Out      *bytes.Buffer
}

// NewScenario creates a Scenario with an optional setup function.
// NOTE: This function is NOT safe for parallel tests as it uses t.Setenv and NewScene.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()

	t.Setenv("STK_NON_INTERACTIVE", "true")
	t.Setenv("STK_LOG_FILE", "off")
	t.Setenv("STK_USER_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("GITHUB_TOKEN", "")

	scene := testhelpers.NewScene(t, setup)
	require.NoError(t, config.SetTrunk(filepath.Join(scene.Dir, ".git"), "main"))

	ctx, err := runtime.OpenAt(context.Background(), scene.Dir)
	require.NoError(t, err)

	s := &Scenario{T: t, Scene: scene, Context: ctx, Out: &bytes.Buffer{}}
	s.Prompter = enginetest.NewScriptedPrompter()
	ctx.Prompter = s.Prompter
	ctx.Splog = tui.NewSplogWithWriter(s.Out)
	return s
}

// RunGit runs a git command in the scenario's repository.
func (s *Scenario) RunGit(args ...string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.RunGitCommand(args...))
	return s
}

// Checkout checks out a branch.
func (s *Scenario) Checkout(branch string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CheckoutBranch(branch))
	return s
}

// CreateBranch creates and checks out a new branch.
func (s *Scenario) CreateBranch(name string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateAndCheckoutBranch(name))
	return s
}

// CommitChange creates a file named after name and commits it.
func (s *Scenario) CommitChange(name, message string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit(message, name))
	return s
}

// TrackBranch records branch as tracked with parent.
func (s *Scenario) TrackBranch(branch, parent string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Context.Registry.Track(context.Background(), branch, parent))
	return s
}

// Push pushes branch to origin and sets its upstream.
func (s *Scenario) Push(branch string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.PushBranch("origin", branch))
	return s
}

// WithStack sets up a branch hierarchy. The map keys are branch names and
// values their parents. Each branch gets one commit touching its own file
// and is tracked. main is checked out afterwards.
func (s *Scenario) WithStack(structure map[string]string) *Scenario {
	s.T.Helper()

	created := map[string]bool{"main": true}
	names := make([]string, 0, len(structure))
	for name := range structure {
		names = append(names, name)
	}
	sort.Strings(names)

	for len(created) < len(structure)+1 {
		progress := false
		for _, branch := range names {
			parent := structure[branch]
			if created[branch] || !created[parent] {
				continue
			}
			s.Checkout(parent).CreateBranch(branch).CommitChange(branch, "change on "+branch)
			s.TrackBranch(branch, parent)
			created[branch] = true
			progress = true
		}
		if !progress {
			s.T.Fatalf("could not resolve stack structure: circular dependency or missing parent")
		}
	}
	return s.Checkout("main")
}

// ExpectStackStructure asserts the recorded parent of every branch in expected.
func (s *Scenario) ExpectStackStructure(expected map[string]string) *Scenario {
	s.T.Helper()
	for branch, expectedParent := range expected {
		actual, _, err := s.Context.Registry.Parent(context.Background(), branch)
		require.NoError(s.T, err)
		require.Equal(s.T, expectedParent, actual, "Parent of %s does not match", branch)
	}
	return s
}

// ExpectTracked asserts the tracked set.
func (s *Scenario) ExpectTracked(expected ...string) *Scenario {
	s.T.Helper()
	tracked, err := s.Context.Registry.Tracked(context.Background())
	require.NoError(s.T, err)
	want := append([]string{}, expected...)
	sort.Strings(want)
	if len(want) == 0 {
		require.Empty(s.T, tracked)
		return s
	}
	require.Equal(s.T, want, tracked)
	return s
}

// ExpectContains asserts that rev is part of branch's history.
func (s *Scenario) ExpectContains(branch, rev string) *Scenario {
	s.T.Helper()
	require.True(s.T, s.Scene.Repo.IsAncestor(rev, branch), "%s does not contain %s", branch, rev)
	return s
}

// ExpectBranch asserts that the current branch is as expected.
func (s *Scenario) ExpectBranch(expected string) *Scenario {
	s.T.Helper()
	actual, err := s.Scene.Repo.CurrentBranchName()
	require.NoError(s.T, err)
	require.Equal(s.T, expected, actual)
	return s
}
