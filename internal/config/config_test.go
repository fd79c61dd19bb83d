package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/stk/internal/config"
)

func TestRepoConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := config.GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, "main", cfg.TrunkName())
		require.Equal(t, "origin", cfg.RemoteName())
		require.Empty(t, cfg.DescribeCommandLine())
		require.Equal(t, config.DefaultTrackerMaxPages, cfg.TrackerMaxPages())
		require.False(t, config.IsInitialized(dir))
	})

	t.Run("set trunk initializes", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, config.SetTrunk(dir, "develop"))
		require.True(t, config.IsInitialized(dir))

		cfg, err := config.GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, "develop", cfg.TrunkName())
	})

	t.Run("reads every field", func(t *testing.T) {
		dir := t.TempDir()
		content := `{
  "trunk": "trunk",
  "remote": "upstream",
  "describeCommand": "describe-pr",
  "tracker": {"maxPages": 3}
}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".stk_config"), []byte(content), 0600))

		cfg, err := config.GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, "trunk", cfg.TrunkName())
		require.Equal(t, "upstream", cfg.RemoteName())
		require.Equal(t, "describe-pr", cfg.DescribeCommandLine())
		require.Equal(t, 3, cfg.TrackerMaxPages())
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".stk_config"), []byte("{"), 0600))
		_, err := config.GetRepoConfig(dir)
		require.Error(t, err)
	})
}

func TestUserConfig(t *testing.T) {
	t.Run("path honours XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("STK_USER_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		path, err := config.UserConfigPath()
		require.NoError(t, err)
		require.Equal(t, filepath.Join("/xdg", "stk", "config.yaml"), path)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := config.LoadUserConfigFrom(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		require.True(t, cfg.DeleteMergedDefault())
		require.False(t, cfg.DeleteClosedDefault())
	})

	t.Run("parses yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "logFile: off\ngithubTokenEnv: STK_GH_TOKEN\nconfirmDefaults:\n  deleteMerged: false\n  deleteClosed: true\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := config.LoadUserConfigFrom(path)
		require.NoError(t, err)
		require.Equal(t, "off", cfg.LogFile)
		require.Equal(t, "STK_GH_TOKEN", cfg.GitHubTokenEnv)
		require.False(t, cfg.DeleteMergedDefault())
		require.True(t, cfg.DeleteClosedDefault())
	})

	t.Run("save then load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		keep := true
		require.NoError(t, config.SaveUserConfig(path, &config.UserConfig{
			GitHubTokenEnv: "TOKEN",
			Confirm:        config.ConfirmDefaults{DeleteClosed: &keep},
		}))

		cfg, err := config.LoadUserConfigFrom(path)
		require.NoError(t, err)
		require.Equal(t, "TOKEN", cfg.GitHubTokenEnv)
		require.True(t, cfg.DeleteClosedDefault())
	})
}

func TestContinuationState(t *testing.T) {
	dir := t.TempDir()

	_, err := config.GetContinuationState(dir)
	require.ErrorIs(t, err, config.ErrNoContinuation)

	state := &config.ContinuationState{BranchesToRestack: []string{"b", "c"}, StartBranch: "a"}
	require.NoError(t, config.PersistContinuationState(dir, state))

	loaded, err := config.GetContinuationState(dir)
	require.NoError(t, err)
	require.Equal(t, state, loaded)

	require.NoError(t, config.ClearContinuationState(dir))
	require.NoError(t, config.ClearContinuationState(dir))
	_, err = config.GetContinuationState(dir)
	require.ErrorIs(t, err, config.ErrNoContinuation)
}
