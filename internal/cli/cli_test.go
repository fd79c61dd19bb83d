package cli_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/cli"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/testhelpers"
	"stackit.dev/stk/testhelpers/scenario"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// stk runs the root command in-process from the scenario's work tree
type stk struct {
	t *testing.T
}

func newStk(t *testing.T, dir string) *stk {
	t.Helper()
	t.Chdir(dir)
	return &stk{t: t}
}

func (s *stk) run(args ...string) (string, error) {
	s.t.Helper()
	root := cli.NewRootCmd("test", "none", "unknown")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (s *stk) must(args ...string) string {
	s.t.Helper()
	out, err := s.run(args...)
	require.NoError(s.t, err, "stk %v: %s", args, out)
	return out
}

func TestInit(t *testing.T) {
	t.Setenv("STK_NON_INTERACTIVE", "true")
	t.Setenv("STK_LOG_FILE", "off")
	t.Setenv("STK_USER_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	scene := testhelpers.NewScene(t, nil)
	stk := newStk(t, scene.Dir)

	_, err := stk.run("log")
	require.ErrorContains(t, err, "stk not initialized")

	_, err = stk.run("init", "--trunk", "nope")
	require.ErrorContains(t, err, "does not exist")

	out := stk.must("init")
	require.Contains(t, out, "Initialized stk with trunk main.")
	require.Equal(t, "main (current)\n", stk.must("log"))
}

func TestCreateAndNavigate(t *testing.T) {
	s := scenario.NewScenario(t, nil)
	stk := newStk(t, s.Scene.Dir)

	require.NoError(t, s.Scene.Repo.CreateChange("a", "a", true))
	stk.must("create", "a", "--all", "-m", "add a")
	stk.must("create", "b")

	s.ExpectBranch("b").ExpectStackStructure(map[string]string{"a": "main", "b": "a"})
	commits, err := s.Scene.Repo.ListCommitSubjects("main", "a")
	require.NoError(t, err)
	require.Equal(t, []string{"add a"}, commits)

	require.Equal(t, "main\n└── a\n    └── b (current)\n", stk.must("log"))
	require.Equal(t, "a\n", stk.must("parent"))

	stk.must("checkout", "a")
	require.Equal(t, "b\n", stk.must("children"))

	stk.must("co", "--trunk")
	s.ExpectBranch("main")
	require.Contains(t, stk.must("parent"), "is the trunk")

	_, err = stk.run("create", "a")
	require.ErrorContains(t, err, "already exists")
}

func TestCheckoutTracksUntrackedBranch(t *testing.T) {
	s := scenario.NewScenario(t, nil)
	s.WithStack(map[string]string{"a": "main"})
	s.Checkout("a").CreateBranch("loose").CommitChange("loose", "loose").Checkout("a")
	stk := newStk(t, s.Scene.Dir)

	out := stk.must("checkout", "loose")
	require.Contains(t, out, "Tracking loose with parent a.")
	s.ExpectStackStructure(map[string]string{"loose": "a"})
}

func TestTrackAndUntrack(t *testing.T) {
	s := scenario.NewScenario(t, nil)
	s.WithStack(map[string]string{"a": "main", "b": "a"})
	s.CreateBranch("loose").CommitChange("loose", "loose")
	stk := newStk(t, s.Scene.Dir)

	stk.must("track", "--parent", "b")
	s.ExpectStackStructure(map[string]string{"loose": "b"})

	stk.must("untrack", "b")
	s.ExpectTracked("a", "loose").ExpectStackStructure(map[string]string{"loose": "a"})

	_, err := stk.run("track", "main")
	require.ErrorIs(t, err, stkerrors.ErrTrunkOperation)
}

func TestRestackCommands(t *testing.T) {
	t.Run("reparent onto trunk", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithStack(map[string]string{"a": "main", "b": "a"})
		stk := newStk(t, s.Scene.Dir)

		stk.must("restack", "--branch", "b", "--onto", "main")
		s.ExpectStackStructure(map[string]string{"b": "main"}).ExpectContains("b", "main")
	})

	t.Run("cascade after trunk moves", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		s.WithStack(map[string]string{"a": "main", "b": "a"})
		s.CommitChange("trunk", "trunk moved")
		stk := newStk(t, s.Scene.Dir)

		stk.must("restack", "--branch", "a", "--cascade")
		s.ExpectContains("a", "main").ExpectContains("b", "a").ExpectBranch("main")
	})

	t.Run("conflicting flags", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		stk := newStk(t, s.Scene.Dir)
		_, err := stk.run("restack", "--cascade", "--no-cascade")
		require.ErrorContains(t, err, "only one of")
	})

	t.Run("trunk is refused", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		stk := newStk(t, s.Scene.Dir)
		_, err := stk.run("restack")
		require.ErrorIs(t, err, stkerrors.ErrCannotRestackTrunk)
	})

	t.Run("nothing to continue or abort", func(t *testing.T) {
		s := scenario.NewScenario(t, nil)
		stk := newStk(t, s.Scene.Dir)
		_, err := stk.run("abort")
		require.Error(t, err)
	})
}

func TestSyncAndSubmitCommands(t *testing.T) {
	s := scenario.NewScenario(t, nil)
	s.WithStack(map[string]string{"a": "main"})
	stk := newStk(t, s.Scene.Dir)

	stk.must("sync")
	s.ExpectTracked("a")

	s.Checkout("a")
	_, err := stk.run("submit")
	require.ErrorIs(t, err, stkerrors.ErrTrackerAuthMissing)
}

func TestPassthrough(t *testing.T) {
	root := cli.NewRootCmd("test", "none", "unknown")
	for args, want := range map[string]bool{
		"status":     true,
		"stash list": true,
		"log":        false,
		"co":         false,
		"help":       false,
		"completion": false,
		"--version":  false,
		"__complete": false,
	} {
		require.Equal(t, want, cli.IsPassthrough(root, strings.Fields(args)), args)
	}
	require.False(t, cli.IsPassthrough(root, nil))

	scene := testhelpers.NewScene(t, nil)
	t.Chdir(scene.Dir)

	var stderr bytes.Buffer
	code := cli.RunPassthrough(context.Background(), &stderr, []string{"rev-parse", "--is-inside-work-tree"})
	require.Equal(t, 0, code)
	require.Contains(t, stderr.String(), `Running: "git rev-parse --is-inside-work-tree"`)

	require.NotEqual(t, 0, cli.RunPassthrough(context.Background(), &stderr, []string{"not-a-git-verb"}))
}
