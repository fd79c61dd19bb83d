package testhelpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scene is a temporary repository with a bare "origin" remote. main holds
// one commit and is pushed with its upstream set.
type Scene struct {
	Dir       string
	Repo      *GitRepo
	RemoteDir string
	t         *testing.T
}

// SceneSetup is a function type for setting up a scene
type SceneSetup func(*Scene) error

// NewScene creates a new scene. Cleanup is handled by t.TempDir.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	// Code under test runs git itself; keep it away from the developer's config
	t.Setenv("GIT_CONFIG_GLOBAL", "/dev/null")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	dir := filepath.Join(t.TempDir(), "repo")
	repo, err := NewGitRepo(dir)
	require.NoError(t, err, "failed to create git repo")

	require.NoError(t, repo.CreateChangeAndCommit("initial", "initial"))
	remoteDir, err := repo.CreateBareRemote("origin")
	require.NoError(t, err)
	require.NoError(t, repo.PushBranch("origin", "main"))

	scene := &Scene{
		Dir:       dir,
		Repo:      repo,
		RemoteDir: remoteDir,
		t:         t,
	}

	if setup != nil {
		require.NoError(t, setup(scene), "scene setup failed")
	}
	return scene
}

// Collaborator clones the scene's remote into a second work tree, standing
// in for another developer or the hosting service's merge button
func (s *Scene) Collaborator() *GitRepo {
	s.t.Helper()
	clone, err := CloneGitRepo(s.RemoteDir, filepath.Join(s.t.TempDir(), "collaborator"))
	require.NoError(s.t, err)
	return clone
}

// BasicSceneSetup adds a second commit on main
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}
