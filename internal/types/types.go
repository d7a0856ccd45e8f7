package types

import "time"

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow  Severity = "low"
	SevMed  Severity = "medium"
	SevHigh Severity = "high"
)

// Rank orders severities for reporting: high > medium > low.
func (s Severity) Rank() int {
	switch s {
	case SevHigh:
		return 3
	case SevMed:
		return 2
	case SevLow:
		return 1
	}
	return 0
}

// SecurityFinding describes a secret-like match in a staged file. Match holds
// the masked text only; the full secret is never stored.
type SecurityFinding struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Pattern  string   `json:"pattern"`
	Match    string   `json:"match"`
	Severity Severity `json:"severity"`
}

// LinterResult is the normalized outcome of one external linter run.
// A skipped result always passes and carries a SkipReason.
type LinterResult struct {
	Tool       string `json:"tool"`
	File       string `json:"file"`
	Passed     bool   `json:"passed"`
	Output     string `json:"output,omitempty"`
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// Failed reports whether the result should block the gate.
func (r LinterResult) Failed() bool { return !r.Skipped && !r.Passed }

// ReviewResult is the verdict of the AI reviewer.
type ReviewResult struct {
	Passed      bool   `json:"passed"`
	Feedback    string `json:"feedback"`
	RawResponse string `json:"raw_response,omitempty"`
}

// CheckSummary aggregates one check invocation.
type CheckSummary struct {
	Bypassed bool `json:"bypassed"`

	StagedFiles  int `json:"staged_files"`
	CheckedFiles int `json:"checked_files"`
	IgnoredFiles int `json:"ignored_files"`

	SecurityFindings []SecurityFinding `json:"security_findings"`
	LinterResults    []LinterResult    `json:"linter_results"`
	Review           *ReviewResult     `json:"review,omitempty"`
	ReviewSkipped    string            `json:"review_skipped,omitempty"`
	ScanErrors       []string          `json:"scan_errors,omitempty"`

	SecurityPassed bool `json:"security_passed"`
	LintingPassed  bool `json:"linting_passed"`
	AIPassed       bool `json:"ai_passed"`

	Duration time.Duration `json:"duration"`
}

// Blocked reports whether the commit must be rejected. A bypassed run is
// never blocked.
func (s CheckSummary) Blocked() bool {
	if s.Bypassed {
		return false
	}
	return !s.SecurityPassed || !s.LintingPassed || !s.AIPassed
}

// CountBySeverity returns the number of findings per severity.
func (s CheckSummary) CountBySeverity() map[Severity]int {
	out := make(map[Severity]int, 3)
	for _, f := range s.SecurityFindings {
		out[f.Severity]++
	}
	return out
}
