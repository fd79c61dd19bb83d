package runtime

import (
	"context"
	"fmt"
	"os"

	"stackit.dev/stk/internal/ai"
	"stackit.dev/stk/internal/config"
	"stackit.dev/stk/internal/engine"
	stkerrors "stackit.dev/stk/internal/errors"
	"stackit.dev/stk/internal/git"
	"stackit.dev/stk/internal/github"
	"stackit.dev/stk/internal/tui"
)

// Context provides access to the ports and output for commands
type Context struct {
	Context  context.Context
	Registry *engine.Registry
	Repo     engine.Repository
	// Tracker is nil when no code host is configured or reachable
	Tracker    engine.Tracker
	Prompter   tui.Prompter
	Splog      *tui.Splog
	RepoConfig *config.RepoConfig
	UserConfig *config.UserConfig
	// Generator is nil unless a describe command is configured
	Generator ai.Generator
	// GitDir holds continuation state; empty disables it
	GitDir string
}

// NewContext creates a context with non-interactive defaults. Tests replace
// individual fields as needed.
func NewContext(ctx context.Context, registry *engine.Registry, repo engine.Repository) *Context {
	return &Context{
		Context:    ctx,
		Registry:   registry,
		Repo:       repo,
		Prompter:   tui.DefaultPrompter{},
		Splog:      tui.NewSplog(),
		RepoConfig: &config.RepoConfig{},
		UserConfig: &config.UserConfig{},
	}
}

// Open builds a context for the repository containing the working
// directory. It does not require stk init to have been run.
func Open(ctx context.Context) (*Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return OpenAt(ctx, cwd)
}

// OpenAt builds a context for the repository containing dir
func OpenAt(ctx context.Context, dir string) (*Context, error) {
	probe := git.NewRepo(dir, "")
	if !probe.IsRepo(ctx) {
		return nil, stkerrors.ErrNotARepository
	}
	root, err := probe.Root(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get repo root: %w", err)
	}
	gitDir, err := probe.GitDir(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get git directory: %w", err)
	}

	repoConfig, err := config.GetRepoConfig(gitDir)
	if err != nil {
		return nil, err
	}
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		return nil, err
	}

	splog, err := tui.NewSplogWithConfig(os.Stdout, tui.LogFilePath(userConfig.LogFile))
	if err != nil {
		// A broken log location should not stop the command
		splog = tui.NewSplog()
		splog.Debug("file logging disabled: %v", err)
	}

	repo := git.NewRepo(root, repoConfig.RemoteName())
	rc := &Context{
		Context:    ctx,
		Registry:   engine.NewRegistry(git.NewConfigStore(root), repoConfig.TrunkName()),
		Repo:       repo,
		Prompter:   tui.NewPrompter(),
		Splog:      splog,
		RepoConfig: repoConfig,
		UserConfig: userConfig,
		GitDir:     gitDir,
	}

	if tracker := newTracker(ctx, repo, repoConfig, userConfig, splog); tracker != nil {
		rc.Tracker = tracker
	}

	if command := repoConfig.DescribeCommandLine(); command != "" {
		generator, err := ai.NewCommandGenerator(command)
		if err != nil {
			return nil, err
		}
		rc.Generator = generator
	}

	return rc, nil
}

// GetContext is Open plus the check that stk init has been run
func GetContext(ctx context.Context) (*Context, error) {
	rc, err := Open(ctx)
	if err != nil {
		return nil, err
	}
	if !config.IsInitialized(rc.GitDir) {
		return nil, fmt.Errorf("stk not initialized. Run 'stk init' first")
	}
	return rc, nil
}

// Close releases the log file
func (c *Context) Close() error {
	if c.Splog == nil {
		return nil
	}
	return c.Splog.Close()
}

func newTracker(ctx context.Context, repo *git.Repo, repoConfig *config.RepoConfig, userConfig *config.UserConfig, splog *tui.Splog) *github.Tracker {
	remoteURL, err := repo.RemoteURL(ctx)
	if err != nil {
		splog.Debug("no tracker: %v", err)
		return nil
	}
	token := github.ResolveToken(ctx, userConfig.GitHubTokenEnv, repo.Runner())
	tracker, err := github.NewTracker(ctx, remoteURL, github.Options{
		Token:    token,
		MaxPages: repoConfig.TrackerMaxPages(),
	})
	if err != nil {
		splog.Debug("no tracker: %v", err)
		return nil
	}
	return tracker
}
