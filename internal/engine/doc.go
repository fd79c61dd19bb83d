// Package engine manages the state and relationships of stacked branches.
//
// It is the core of stk, responsible for:
//   - Tracking which branches are managed and who their parents are
//   - Walking parent pointers to derive stacks and children
//   - Declaring the repository and tracker ports the algorithms drive
//
// The registry persists nothing but parent pointers and the tracked set,
// both stored through a ConfigStore (git config in production).
package engine
