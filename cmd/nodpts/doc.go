// Package nodpts provides the command-line interface for no-dpts. It wires
// the subcommands (init, check, bypass, history, config), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/nodpts/no-dpts/cmd/nodpts"
//	func main() { nodpts.Execute() }
package nodpts
