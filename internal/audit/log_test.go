package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodpts/no-dpts/internal/types"
)

func TestLogAndLoadHistory_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	log := NewAuditLog(dir)
	assert.Equal(t, filepath.Join(dir, "no-dpts_audit.jsonl"), log.Path())

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := CreateGateRecord(dir, "abc", "main", types.CheckSummary{
			StagedFiles: i, SecurityPassed: true, LintingPassed: true, AIPassed: true,
		}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, log.LogGate(rec))
	}

	recs, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 2, recs[0].StagedFiles)
	assert.Equal(t, 0, recs[2].StagedFiles)
	assert.NotEmpty(t, recs[0].GateID)
	assert.False(t, recs[0].Blocked)

	info, err := os.Stat(log.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadHistory_Missing(t *testing.T) {
	_, err := NewAuditLog(t.TempDir()).LoadHistory()
	assert.Error(t, err)
}

func TestLoadHistory_SkipsMalformedLines(t *testing.T) {
	log := NewAuditLog(t.TempDir())
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := func(n int) GateRecord {
		return CreateGateRecord("/repo", "", "main", types.CheckSummary{StagedFiles: n}, base.Add(time.Duration(n)*time.Minute))
	}
	require.NoError(t, log.LogGate(rec(1)))

	f, err := os.OpenFile(log.Path(), os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{\"timestamp\":\"2026-03-01T09:0\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, log.LogGate(rec(2)))
	require.NoError(t, log.LogGate(rec(3)))

	recs, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 3, recs[0].StagedFiles)
	assert.Equal(t, 2, recs[1].StagedFiles)
	assert.Equal(t, 1, recs[2].StagedFiles)
}

func TestCreateGateRecord(t *testing.T) {
	var findings []types.SecurityFinding
	for i := 0; i < 12; i++ {
		findings = append(findings, types.SecurityFinding{File: "f.env", Line: i + 1, Pattern: "Generic Secret", Match: "secre...23'", Severity: types.SevMed})
	}
	findings = append(findings, types.SecurityFinding{File: "k.pem", Line: 1, Pattern: "Private Key", Severity: types.SevHigh})
	s := types.CheckSummary{
		StagedFiles:      4,
		CheckedFiles:     3,
		IgnoredFiles:     1,
		SecurityFindings: findings,
		LinterResults: []types.LinterResult{
			{Tool: "ruff", File: "a.py", Passed: false},
			{Tool: "ruff", File: "b.py", Passed: true, Skipped: true, SkipReason: "ruff is not installed"},
		},
		ReviewSkipped:  "API key not set",
		SecurityPassed: false,
		LintingPassed:  false,
		AIPassed:       true,
		Duration:       1500 * time.Millisecond,
	}
	rec := CreateGateRecord("/repo", "c0ffee", "feature", s, time.Unix(10, 0))
	assert.True(t, rec.Blocked)
	assert.Equal(t, map[string]int{"medium": 12, "high": 1}, rec.SeverityCounts)
	assert.Equal(t, 1, rec.LintFailures)
	assert.Len(t, rec.TopFindings, 10)
	assert.Equal(t, "API key not set", rec.AISkipped)
	assert.Equal(t, "1.5s", rec.Duration)
	assert.Equal(t, "c0ffee", rec.Commit)
}
