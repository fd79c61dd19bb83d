package tui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/tui"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestSplog(t *testing.T) {
	t.Run("prefixes levels on the console", func(t *testing.T) {
		t.Setenv("DEBUG", "")
		var out bytes.Buffer
		splog := tui.NewSplogWithWriter(&out)

		splog.Info("restacked %s", "feature")
		splog.Warn("diverged")
		splog.Error("failed")
		splog.Tip("run stk continue")
		splog.Debug("hidden")

		require.Equal(t, "restacked feature\n⚠️  diverged\n❌ failed\n💡 run stk continue\n", out.String())
	})

	t.Run("debug is shown with DEBUG set", func(t *testing.T) {
		t.Setenv("DEBUG", "1")
		var out bytes.Buffer
		tui.NewSplogWithWriter(&out).Debug("shown")
		require.Equal(t, "shown\n", out.String())
	})

	t.Run("quiet suppresses console output", func(t *testing.T) {
		var out bytes.Buffer
		splog := tui.NewSplogWithWriter(&out)
		splog.SetQuiet(true)
		splog.Info("hidden")
		splog.Page("hidden")
		splog.SetQuiet(false)
		splog.Info("shown")
		require.Equal(t, "shown\n", out.String())
	})

	t.Run("file log receives debug output", func(t *testing.T) {
		t.Setenv("DEBUG", "")
		var out bytes.Buffer
		path := filepath.Join(t.TempDir(), "logs", "stk.log")
		splog, err := tui.NewSplogWithConfig(&out, path)
		require.NoError(t, err)

		splog.Debug("only in file")
		splog.Info("everywhere")
		require.NoError(t, splog.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(content), "only in file")
		require.Contains(t, string(content), "everywhere")
		require.Equal(t, "everywhere\n", out.String())
	})
}

func TestLogFilePath(t *testing.T) {
	t.Run("environment override", func(t *testing.T) {
		t.Setenv("STK_LOG_FILE", "/tmp/custom.log")
		require.Equal(t, "/tmp/custom.log", tui.LogFilePath("/ignored.log"))
	})

	t.Run("off disables", func(t *testing.T) {
		t.Setenv("STK_LOG_FILE", "")
		require.Empty(t, tui.LogFilePath("off"))
	})

	t.Run("defaults under the XDG state dir", func(t *testing.T) {
		t.Setenv("STK_LOG_FILE", "")
		t.Setenv("XDG_STATE_HOME", "/state")
		require.Equal(t, filepath.Join("/state", "stk", "stk.log"), tui.LogFilePath(""))
	})
}

func TestRenderStackTree(t *testing.T) {
	root := &tui.StackNode{Name: "main", Children: []*tui.StackNode{
		{Name: "a", Children: []*tui.StackNode{{Name: "b"}, {Name: "c"}}},
		{Name: "d"},
	}}

	want := "main\n" +
		"├── a\n" +
		"│   ├── b (current)\n" +
		"│   └── c\n" +
		"└── d\n"
	require.Equal(t, want, tui.RenderStackTree(root, "b"))
}

func TestDefaultPrompter(t *testing.T) {
	prompter := tui.DefaultPrompter{}

	yes, err := prompter.Confirm("delete?", true)
	require.NoError(t, err)
	require.True(t, yes)

	no, err := prompter.Confirm("delete?", false)
	require.NoError(t, err)
	require.False(t, no)

	_, err = prompter.SelectBranch("Checkout a branch", []string{"a"}, "")
	require.Error(t, err)
}

func TestBranchSelectModel(t *testing.T) {
	send := func(m tea.Model, msgs ...tea.Msg) tui.BranchSelectModel {
		for _, msg := range msgs {
			m, _ = m.Update(msg)
		}
		return m.(tui.BranchSelectModel)
	}

	t.Run("starts on the current branch", func(t *testing.T) {
		m := tui.NewBranchSelectModel("Checkout", []string{"main", "feature", "fix"}, "feature")
		require.Equal(t, 1, m.Cursor)

		m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.Done)
		require.Equal(t, "feature", m.Selected)
	})

	t.Run("navigation wraps", func(t *testing.T) {
		m := tui.NewBranchSelectModel("Checkout", []string{"main", "feature"}, "")
		m = send(m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
		require.Equal(t, "feature", m.Selected)
	})

	t.Run("typing filters the choices", func(t *testing.T) {
		m := tui.NewBranchSelectModel("Checkout", []string{"main", "feature/login", "fix/typo"}, "")
		m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("fix")})
		require.Equal(t, []string{"fix/typo"}, m.Filtered)
		require.Equal(t, []string{"main", "feature/login", "fix/typo"}, m.Choices)

		m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
		require.Equal(t, "fix/typo", m.Selected)
	})

	t.Run("escape cancels", func(t *testing.T) {
		m := tui.NewBranchSelectModel("Checkout", []string{"main"}, "")
		m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
		require.ErrorIs(t, m.Err, tui.ErrCanceled)
	})
}
