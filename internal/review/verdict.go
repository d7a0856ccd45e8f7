package review

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nodpts/no-dpts/internal/types"
)

const (
	// MaxDiffBytes is the largest diff prefix sent for review.
	MaxDiffBytes = 15000

	passSentinel   = "RESULT: PASS"
	rejectSentinel = "RESULT: REJECT"
	resultPrefix   = "RESULT:"
)

// Truncate shortens diff to at most MaxDiffBytes, cutting on a rune
// boundary, and appends a marker saying how much was dropped.
func Truncate(diff string) string {
	if len(diff) <= MaxDiffBytes {
		return diff
	}
	cut := MaxDiffBytes
	for cut > 0 && !utf8.RuneStart(diff[cut]) {
		cut--
	}
	omitted := len(diff) - cut
	return diff[:cut] + "\n\n... [diff truncated, " + strconv.Itoa(omitted) + " characters omitted] ..."
}

// ParseVerdict interprets a model response. The review passes only when the
// accept sentinel is present and the reject sentinel is not. Feedback is the
// text after the first RESULT: line, or the whole response when that is empty.
func ParseVerdict(content string) types.ReviewResult {
	passed := strings.Contains(content, passSentinel) && !strings.Contains(content, rejectSentinel)

	lines := strings.Split(content, "\n")
	var feedback string
	for i, line := range lines {
		if strings.HasPrefix(line, resultPrefix) {
			feedback = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			break
		}
	}
	if feedback == "" {
		feedback = content
	}
	return types.ReviewResult{Passed: passed, Feedback: feedback, RawResponse: content}
}
