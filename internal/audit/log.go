package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nodpts/no-dpts/internal/types"
)

// GateRecord is one line of the audit log: the outcome of a single check.
type GateRecord struct {
	Timestamp time.Time `json:"timestamp"`
	GateID    string    `json:"gate_id"`
	Root      string    `json:"root"`
	Commit    string    `json:"commit,omitempty"`
	Branch    string    `json:"branch,omitempty"`

	Bypassed bool `json:"bypassed"`
	Blocked  bool `json:"blocked"`

	SecurityPassed bool   `json:"security_passed"`
	LintingPassed  bool   `json:"linting_passed"`
	AIPassed       bool   `json:"ai_passed"`
	AISkipped      string `json:"ai_skipped,omitempty"`

	SeverityCounts map[string]int   `json:"severity_counts,omitempty"`
	LintFailures   int              `json:"lint_failures"`
	StagedFiles    int              `json:"staged_files"`
	CheckedFiles   int              `json:"checked_files"`
	IgnoredFiles   int              `json:"ignored_files"`
	Duration       string           `json:"duration"`
	TopFindings    []FindingSummary `json:"top_findings,omitempty"`
}

// FindingSummary is a finding without its (already masked) match text.
type FindingSummary struct {
	File     string `json:"file"`
	Pattern  string `json:"pattern"`
	Severity string `json:"severity"`
	Line     int    `json:"line"`
}

// FileName is the audit log kept inside the repository's git directory.
const FileName = "no-dpts_audit.jsonl"

type AuditLog struct {
	logPath string
}

// NewAuditLog opens the log stored in gitDir, the resolved git directory of
// the repository (for a linked worktree, its private directory).
func NewAuditLog(gitDir string) *AuditLog {
	return &AuditLog{logPath: filepath.Join(gitDir, FileName)}
}

// Path is the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns all records, newest first. Malformed lines, such as one
// torn by an interrupted write, are skipped.
func (a *AuditLog) LoadHistory() ([]GateRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []GateRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record GateRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// LogGate appends record to the log.
func (a *AuditLog) LogGate(record GateRecord) error {
	if record.GateID == "" {
		record.GateID = fmt.Sprintf("gate_%d", record.Timestamp.UnixNano())
	}

	// owner-only: records name files that contained secrets
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// CreateGateRecord summarizes a check. Only the first ten findings are kept.
func CreateGateRecord(root, commit, branch string, s types.CheckSummary, now time.Time) GateRecord {
	severityCounts := make(map[string]int)
	for sev, n := range s.CountBySeverity() {
		severityCounts[string(sev)] = n
	}

	lintFailures := 0
	for _, r := range s.LinterResults {
		if r.Failed() {
			lintFailures++
		}
	}

	topFindings := make([]FindingSummary, 0, 10)
	for i, f := range s.SecurityFindings {
		if i >= 10 {
			break
		}
		topFindings = append(topFindings, FindingSummary{
			File:     f.File,
			Pattern:  f.Pattern,
			Severity: string(f.Severity),
			Line:     f.Line,
		})
	}

	return GateRecord{
		Timestamp:      now,
		Root:           root,
		Commit:         commit,
		Branch:         branch,
		Bypassed:       s.Bypassed,
		Blocked:        s.Blocked(),
		SecurityPassed: s.SecurityPassed,
		LintingPassed:  s.LintingPassed,
		AIPassed:       s.AIPassed,
		AISkipped:      s.ReviewSkipped,
		SeverityCounts: severityCounts,
		LintFailures:   lintFailures,
		StagedFiles:    s.StagedFiles,
		CheckedFiles:   s.CheckedFiles,
		IgnoredFiles:   s.IgnoredFiles,
		Duration:       s.Duration.String(),
		TopFindings:    topFindings,
	}
}
