package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleContext() *PRContext {
	return &PRContext{
		BranchName:       "b",
		ParentBranchName: "a",
		TrunkBranchName:  "main",
		CommitMessages:   []string{"add b", "fix b"},
		Stack: []StackEntry{
			{BranchName: "a", Number: 12, URL: "https://example.com/12"},
			{BranchName: "b", Current: true},
			{BranchName: "c"},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleContext())
	require.Contains(t, prompt, "- **Branch**: b")
	require.Contains(t, prompt, "- **Parent Branch**: a")
	require.Contains(t, prompt, "1. add b")
	require.Contains(t, prompt, "2. fix b")
	require.Contains(t, prompt, "- #12 `a`")
	require.Contains(t, prompt, "- `b` 👈")
	require.Contains(t, prompt, "## Output Format")
}

func TestBuildPromptSkipsEmptySections(t *testing.T) {
	prompt := BuildPrompt(&PRContext{BranchName: "solo"})
	require.NotContains(t, prompt, "## Commit Messages")
	require.NotContains(t, prompt, "## Stack")
	require.NotContains(t, prompt, "Parent Branch")
}

func TestDefaultBody(t *testing.T) {
	body := DefaultBody(sampleContext())
	require.Equal(t, "- add b\n- fix b\n\n### Stack\n\n- `main`\n- #12 `a`\n- `b` 👈\n- `c`", body)

	require.Empty(t, DefaultBody(&PRContext{BranchName: "solo", Stack: []StackEntry{{BranchName: "solo", Current: true}}}))
}

func TestParsePRResponse(t *testing.T) {
	cases := []struct {
		name     string
		response string
		title    string
		body     string
	}{
		{"plain", "Add feature\n\nDetails here", "Add feature", "Details here"},
		{"markers", "Title: Add feature\nBody: Details", "Add feature", "Details"},
		{"heading", "# Add feature\nDescription: Details", "Add feature", "Details"},
		{"title only", "  Add feature  ", "Add feature", ""},
		{"empty", "   ", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, body := parsePRResponse(tc.response)
			require.Equal(t, tc.title, title)
			require.Equal(t, tc.body, body)
		})
	}
}

func TestCommandGenerator(t *testing.T) {
	t.Run("reads title and body from stdout", func(t *testing.T) {
		gen, err := NewCommandGenerator(`grep -q "Branch\*\*: b" && printf '# Generated\nThe body'`)
		require.NoError(t, err)

		title, body, err := gen.GenerateDescription(context.Background(), sampleContext())
		require.NoError(t, err)
		require.Equal(t, "Generated", title)
		require.Equal(t, "The body", body)
	})

	t.Run("non-zero exit is an error", func(t *testing.T) {
		gen, err := NewCommandGenerator(`cat >/dev/null; echo boom >&2; exit 3`)
		require.NoError(t, err)

		_, _, err = gen.GenerateDescription(context.Background(), sampleContext())
		require.Error(t, err)
		require.Contains(t, err.Error(), "exit code 3")
		require.Contains(t, err.Error(), "boom")
	})

	t.Run("empty output is an error", func(t *testing.T) {
		gen, err := NewCommandGenerator(`cat >/dev/null`)
		require.NoError(t, err)

		_, _, err = gen.GenerateDescription(context.Background(), sampleContext())
		require.Error(t, err)
	})

	t.Run("empty command is rejected", func(t *testing.T) {
		_, err := NewCommandGenerator("  ")
		require.Error(t, err)
	})
}

func TestMockGenerator(t *testing.T) {
	mock := NewMockGenerator()
	_, _, err := mock.GenerateDescription(context.Background(), sampleContext())
	require.Error(t, err)

	mock.SetMockResponse("T", "B")
	title, body, err := mock.GenerateDescription(context.Background(), sampleContext())
	require.NoError(t, err)
	require.Equal(t, "T", title)
	require.Equal(t, "B", body)
	require.Equal(t, 2, mock.CallCount())
	require.Equal(t, "b", mock.LastContext().BranchName)

	boom := errors.New("boom")
	mock.SetMockError(boom)
	_, _, err = mock.GenerateDescription(context.Background(), sampleContext())
	require.ErrorIs(t, err, boom)
}
