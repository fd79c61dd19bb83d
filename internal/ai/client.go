// Package ai generates pull request titles and descriptions for stk submit.
//
// A Generator is optional. When none is configured, submit falls back to
// DefaultBody, which lists the stack the branch belongs to.
package ai

import (
	"context"
)

// Generator produces a pull request title and body from a PRContext.
//
// Implementations may return an empty title, in which case the caller keeps
// its own (usually the first unique commit message).
type Generator interface {
	GenerateDescription(ctx context.Context, prContext *PRContext) (title string, body string, err error)
}
