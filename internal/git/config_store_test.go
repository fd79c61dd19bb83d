package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/engine"
	"stackit.dev/stk/internal/git"
	"stackit.dev/stk/testhelpers"
)

func TestConfigStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key is not an error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		store := git.NewConfigStore(scene.Dir)

		_, ok, err := store.Get(ctx, "stk.tracked")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, store.Unset(ctx, "stk.tracked"))
	})

	t.Run("set, get and unset round trip through git config", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		store := git.NewConfigStore(scene.Dir)

		require.NoError(t, store.Set(ctx, "stk.Feature/Login.parent", "main"))

		raw, ok := scene.Repo.ConfigGet("stk.Feature/Login.parent")
		require.True(t, ok)
		require.Equal(t, "main", raw)

		value, ok, err := store.Get(ctx, "stk.Feature/Login.parent")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "main", value)

		require.NoError(t, store.Unset(ctx, "stk.Feature/Login.parent"))
		_, ok = scene.Repo.ConfigGet("stk.Feature/Login.parent")
		require.False(t, ok)
	})

	t.Run("list returns only the prefix", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		store := git.NewConfigStore(scene.Dir)

		require.NoError(t, store.Set(ctx, "stk.tracked", "a,b"))
		require.NoError(t, store.Set(ctx, "stk.a.parent", "main"))
		require.NoError(t, store.Set(ctx, "stk.b.parent", "a"))

		entries, err := store.List(ctx, "stk.")
		require.NoError(t, err)
		require.Equal(t, map[string]string{
			"stk.tracked":  "a,b",
			"stk.a.parent": "main",
			"stk.b.parent": "a",
		}, entries)

		entries, err = store.List(ctx, "nothing.")
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("backs a registry", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		reg := engine.NewRegistry(git.NewConfigStore(scene.Dir), "main")

		require.NoError(t, reg.Track(ctx, "a", "main"))
		require.NoError(t, reg.Track(ctx, "b", "a"))

		raw, ok := scene.Repo.ConfigGet("stk.tracked")
		require.True(t, ok)
		require.Equal(t, "a,b", raw)

		stack, err := reg.StackToTrunk(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, stack)

		require.NoError(t, reg.Untrack(ctx, "a"))
		require.NoError(t, reg.Untrack(ctx, "b"))
		_, ok = scene.Repo.ConfigGet("stk.tracked")
		require.False(t, ok)
	})
}
