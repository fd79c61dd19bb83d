// Package runtime provides the execution context for stk commands.
//
// It bundles the dependencies the engines need (registry, repository and
// tracker ports, prompter, logger) and the configuration they read, so that
// actions take a single *Context.
package runtime
