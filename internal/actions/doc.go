// Package actions provides the branch-level operations behind the stk
// commands that do not need an engine of their own: create, modify,
// checkout, track, untrack and log.
//
// The stack-wide engines live in subpackages:
//   - restack: rebase a branch onto its parent and cascade to descendants
//   - sync: fetch, fast-forward and clean up merged or closed branches
//   - submit: push branches and open or update their pull requests
//
// Every action accepts a runtime.Context, which carries the registry, the
// repository and tracker ports, the prompter and the splog.
package actions
