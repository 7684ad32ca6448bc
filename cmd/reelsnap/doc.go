// Package main hosts the reelsnap CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the daemon in the foreground, inspects
// jobs and rendered reels, validates and scaffolds configuration, and sends
// test notifications. Configuration resolution happens once per invocation;
// subcommands read the shared command context instead of re-loading it.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
