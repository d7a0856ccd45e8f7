package review

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		passed   bool
		feedback string
	}{
		{"pass", "RESULT: PASS\nAll good.", true, "All good."},
		{"reject", "RESULT: REJECT\nHardcoded credentials.", false, "Hardcoded credentials."},
		{"reject dominates", "RESULT: PASS\nactually RESULT: REJECT", false, "actually RESULT: REJECT"},
		{"no sentinel", "Looks fine to me", false, "Looks fine to me"},
		{"preamble before result", "Sure!\nRESULT: PASS\n\n  ok  \n", true, "ok"},
		{"empty feedback falls back", "RESULT: PASS", true, "RESULT: PASS"},
		{"sentinel mid-line still counts", "Verdict -> RESULT: PASS", true, "Verdict -> RESULT: PASS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseVerdict(tt.content)
			assert.Equal(t, tt.passed, got.Passed)
			assert.Equal(t, tt.feedback, got.Feedback)
			assert.Equal(t, tt.content, got.RawResponse)
		})
	}
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("a", MaxDiffBytes)
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("b", MaxDiffBytes+10)
	got := Truncate(long)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("b", MaxDiffBytes)))
	assert.True(t, strings.HasSuffix(got, "\n\n... [diff truncated, 10 characters omitted] ..."))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// a 3-byte rune straddles the cut point
	diff := strings.Repeat("x", MaxDiffBytes-1) + "€" + "tail"
	got := Truncate(diff)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", MaxDiffBytes-1)+"\n\n"))
	assert.Contains(t, got, "[diff truncated, 7 characters omitted]")
}

func TestPrompt(t *testing.T) {
	p := Prompt("+line")
	assert.True(t, strings.HasPrefix(p, "Act as a Senior Code Reviewer"))
	assert.True(t, strings.HasSuffix(p, "```diff\n+line\n```"))
	assert.Contains(t, p, `"RESULT: REJECT"`)
}
