package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/nodpts/no-dpts/internal/audit"
)

// PrintHistory renders audit records as a table, in the order given.
func PrintHistory(w io.Writer, records []audit.GateRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No checks recorded yet.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header("When", "Commit", "Branch", "Result", "Security", "Lint", "AI", "Files")
	for _, r := range records {
		if err := table.Append([]string{
			r.Timestamp.Local().Format(time.DateTime),
			shortCommit(r.Commit),
			r.Branch,
			outcome(r),
			securityCell(r),
			passFail(r.LintingPassed),
			aiCell(r),
			fmt.Sprintf("%d/%d", r.CheckedFiles, r.StagedFiles),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func outcome(r audit.GateRecord) string {
	switch {
	case r.Bypassed:
		return "bypassed"
	case r.Blocked:
		return "blocked"
	default:
		return "passed"
	}
}

func securityCell(r audit.GateRecord) string {
	if r.Bypassed {
		return "-"
	}
	if r.SecurityPassed {
		return "pass"
	}
	var parts []string
	for _, sev := range []string{"high", "medium", "low"} {
		if n := r.SeverityCounts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	return "fail (" + strings.Join(parts, ", ") + ")"
}

func aiCell(r audit.GateRecord) string {
	if r.AISkipped != "" {
		return "skipped"
	}
	return passFail(r.AIPassed)
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	if c == "" {
		return "-"
	}
	return c
}
