// Package main hosts the ocrsub CLI entrypoint and command graph.
//
// The Cobra command tree turns recognition streams into SRT files, inspects
// and checks existing subtitle files, and browses the run history database.
// Configuration resolution and logger setup live in commandContext so each
// subcommand only wires internal packages together.
package main
