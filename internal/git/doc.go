// Package git provides the Repository and ConfigStore ports backed by a real
// git repository.
//
// Read-only queries (current branch, ref existence, ancestry, upstream
// configuration) go through go-git. Mutations that need git's own porcelain
// semantics go through the git CLI:
//   - Branch management (create, checkout, delete)
//   - Commit operations (commit, amend)
//   - Remote operations (fetch, pull, push)
//   - Rebase, including continue and abort
//   - Persisted stack metadata in git config
//
// This package should be the only place where direct git commands are executed.
package git
