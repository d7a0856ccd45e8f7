package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nodpts/no-dpts/internal/scanner"
	"github.com/nodpts/no-dpts/internal/types"
)

// maxLintLines caps the linter output shown per failing file.
const maxLintLines = 10

const rule = "────────────────────────────────────────────────────────────"

// PrintOptions controls terminal rendering.
type PrintOptions struct {
	NoColor bool
	// Verbose also lists every skipped linter and unreadable file.
	Verbose bool
}

// ColorEnabled reports whether f is a terminal that should receive colors.
// NO_COLOR disables colors regardless.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

type palette struct {
	ok       lipgloss.Style
	bad      lipgloss.Style
	warn     lipgloss.Style
	dim      lipgloss.Style
	title    lipgloss.Style
	pattern  lipgloss.Style
	sevHigh  lipgloss.Style
	sevMed   lipgloss.Style
	sevLow   lipgloss.Style
	passBox  lipgloss.Style
	blockBox lipgloss.Style
}

func newPalette(w io.Writer, noColor bool) palette {
	r := lipgloss.NewRenderer(w)
	box := r.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(0, 2)
	if noColor {
		plain := r.NewStyle()
		return palette{
			ok: plain, bad: plain, warn: plain, dim: plain, title: plain, pattern: plain,
			sevHigh: plain, sevMed: plain, sevLow: plain,
			passBox: box, blockBox: box,
		}
	}
	return palette{
		ok:       r.NewStyle().Foreground(lipgloss.Color("10")),
		bad:      r.NewStyle().Foreground(lipgloss.Color("9")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("11")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("244")),
		title:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		pattern:  r.NewStyle().Foreground(lipgloss.Color("6")),
		sevHigh:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		sevMed:   r.NewStyle().Foreground(lipgloss.Color("11")),
		sevLow:   r.NewStyle().Foreground(lipgloss.Color("10")),
		passBox:  box.BorderForeground(lipgloss.Color("10")).Foreground(lipgloss.Color("10")).Bold(true),
		blockBox: box.BorderForeground(lipgloss.Color("9")).Foreground(lipgloss.Color("9")).Bold(true),
	}
}

func (p palette) severity(s types.Severity) string {
	label := strings.ToUpper(string(s))
	switch s {
	case types.SevHigh:
		return p.sevHigh.Render(label)
	case types.SevMed:
		return p.sevMed.Render(label)
	default:
		return p.sevLow.Render(label)
	}
}

// PrintSummary renders the outcome of a check run for a terminal.
func PrintSummary(w io.Writer, s types.CheckSummary, opts PrintOptions) {
	p := newPalette(w, opts.NoColor)

	if s.Bypassed {
		fmt.Fprintln(w, p.warn.Render("⚡ Bypass token detected - skipping all checks"))
		fmt.Fprintln(w, p.dim.Render("   This is a one-time bypass. Future commits will be checked."))
		return
	}
	if s.StagedFiles == 0 {
		fmt.Fprintln(w, p.dim.Render("No staged files to check."))
		return
	}

	fmt.Fprintf(w, "%s Found %d staged file(s)\n", p.ok.Render("✓"), s.StagedFiles)
	if s.IgnoredFiles > 0 {
		fmt.Fprintf(w, "  %s %d file(s) ignored per config\n", p.dim.Render("↳"), s.IgnoredFiles)
	}
	fmt.Fprintln(w)

	printStatus(w, p, s)
	printFindings(w, p, s.SecurityFindings)
	printLintFailures(w, p, s.LinterResults)
	printSkips(w, p, s, opts.Verbose)
	if s.Review != nil && !s.Review.Passed {
		printReview(w, p, *s.Review)
	}

	fmt.Fprintln(w)
	if s.Blocked() {
		fmt.Fprintln(w, p.blockBox.Render("✗ COMMIT BLOCKED\n\nFix the issues above, or run:\nno-dpts bypass  (emergency skip, use sparingly)"))
		return
	}
	fmt.Fprintln(w, p.passBox.Render("✓ ALL CHECKS PASSED"))
	if s.Duration > 0 {
		fmt.Fprintln(w, p.dim.Render(fmt.Sprintf("Checked %d file(s) in %.2fs", s.CheckedFiles, s.Duration.Seconds())))
	}
}

func printStatus(w io.Writer, p palette, s types.CheckSummary) {
	if s.SecurityPassed {
		fmt.Fprintf(w, "%s Security scan passed\n", p.ok.Render("✓"))
	} else {
		counts := s.CountBySeverity()
		fmt.Fprintf(w, "%s Security scan found %d issue(s) (%d high, %d medium, %d low)\n",
			p.bad.Render("✗"), len(s.SecurityFindings), counts[types.SevHigh], counts[types.SevMed], counts[types.SevLow])
	}
	if n := len(s.ScanErrors); n > 0 {
		fmt.Fprintf(w, "  %s %d file(s) could not be scanned\n", p.warn.Render("↳"), n)
	}

	failed := 0
	for _, r := range s.LinterResults {
		if r.Failed() {
			failed++
		}
	}
	if failed == 0 {
		fmt.Fprintf(w, "%s Linting passed (%d files checked)\n", p.ok.Render("✓"), s.CheckedFiles)
	} else {
		fmt.Fprintf(w, "%s Linting failed (%d/%d files)\n", p.bad.Render("✗"), failed, s.CheckedFiles)
	}

	switch {
	case s.Review == nil:
		fmt.Fprintf(w, "%s AI review skipped: %s\n", p.warn.Render("⚠"), s.ReviewSkipped)
	case s.Review.Passed:
		fmt.Fprintf(w, "%s AI review passed\n", p.ok.Render("✓"))
	default:
		fmt.Fprintf(w, "%s AI review: changes rejected\n", p.bad.Render("✗"))
	}
}

func printFindings(w io.Writer, p palette, findings []types.SecurityFinding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.title.Render("Security Findings:"))
	fmt.Fprintln(w, rule)
	for _, f := range findings {
		fmt.Fprintf(w, "  %s [%s] %s:%d - %s\n",
			p.severity(f.Severity), p.pattern.Render(f.Pattern), f.File, f.Line, p.dim.Render(f.Match))
	}
	fmt.Fprintln(w, rule)
}

func printLintFailures(w io.Writer, p palette, results []types.LinterResult) {
	var failures []types.LinterResult
	for _, r := range results {
		if r.Failed() {
			failures = append(failures, r)
		}
	}
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.title.Render("Linting Failures:"))
	fmt.Fprintln(w, rule)
	for _, r := range failures {
		fmt.Fprintf(w, "  %s %s (%s)\n", p.bad.Render("✗"), r.File, p.pattern.Render(r.Tool))
		if r.Output == "" {
			continue
		}
		lines := strings.Split(r.Output, "\n")
		shown := lines
		if len(shown) > maxLintLines {
			shown = shown[:maxLintLines]
		}
		for _, l := range shown {
			fmt.Fprintf(w, "    %s\n", p.dim.Render(l))
		}
		if extra := len(lines) - len(shown); extra > 0 {
			fmt.Fprintf(w, "    %s\n", p.dim.Render(fmt.Sprintf("... %d more lines", extra)))
		}
	}
	fmt.Fprintln(w, rule)
}

func printSkips(w io.Writer, p palette, s types.CheckSummary, verbose bool) {
	var notes []string
	for _, r := range s.LinterResults {
		if !r.Skipped {
			continue
		}
		if verbose || strings.Contains(r.SkipReason, "not installed") {
			notes = append(notes, fmt.Sprintf("%s: %s", r.File, r.SkipReason))
		}
	}
	for _, e := range s.ScanErrors {
		// text that failed to decode may still hold secrets
		if verbose || strings.HasSuffix(e, scanner.ErrNotText.Error()) {
			notes = append(notes, "could not scan "+e)
		}
	}
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.warn.Render("⚠ Warnings:"))
	for _, n := range notes {
		fmt.Fprintf(w, "  %s %s\n", p.warn.Render("⚠"), p.dim.Render(n))
	}
}

func printReview(w io.Writer, p palette, r types.ReviewResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.title.Render("AI Review: REJECTED"))
	fmt.Fprintln(w, rule)
	for _, line := range strings.Split(r.Feedback, "\n") {
		switch {
		case strings.TrimSpace(line) == "":
			fmt.Fprintln(w)
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "*"), strings.HasPrefix(line, "•"):
			fmt.Fprintf(w, "  %s\n", line)
		case strings.Contains(line, ":") && len(line) < 50:
			fmt.Fprintf(w, "  %s\n", p.pattern.Render(line))
		default:
			fmt.Fprintf(w, "  %s\n", p.dim.Render(line))
		}
	}
	fmt.Fprintln(w, rule)
}
