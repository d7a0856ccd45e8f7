// Package core provides a small, stable facade over no-dpts' internal check
// engine for external integrations, such as editor plugins or CI wrappers
// that want the gate decision without shelling out to the CLI.
//
// Example:
//
//	summary, err := core.Check(ctx, core.Options{Root: "."})
//	if err != nil { /* handle */ }
//	if summary.Blocked() { /* reject */ }
//	_ = core.MarshalSummary(os.Stdout, summary)
package core
