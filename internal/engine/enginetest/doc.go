// Package enginetest provides in-memory fakes of the repository and tracker
// ports, and a scripted prompter, for testing the engines without git.
package enginetest
