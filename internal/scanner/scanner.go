package scanner

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/nodpts/no-dpts/internal/config"
	"github.com/nodpts/no-dpts/internal/logging"
	"github.com/nodpts/no-dpts/internal/types"
)

// ErrPatternCompile is wrapped by errors reported for patterns that fail to compile.
var ErrPatternCompile = errors.New("pattern does not compile")

// ErrNotText is returned by Scan for content that is not valid UTF-8.
var ErrNotText = errors.New("not valid UTF-8")

// Pattern is a compiled, named detection rule.
type Pattern struct {
	Name     string
	Severity types.Severity
	re       *regexp.Regexp
}

// Scanner matches staged content against the built-in library plus any
// custom patterns. A Scanner is immutable after New and safe for concurrent use.
type Scanner struct {
	patterns    []Pattern
	fingerprint string
}

// New compiles the built-in library followed by custom. Custom patterns are
// named "Custom Pattern #<n>" and rated medium. Patterns that fail to compile
// are logged and dropped.
func New(custom []string, log *zap.Logger) *Scanner {
	log = logging.OrNop(log)
	s := &Scanner{}
	h := xxhash.New()
	add := func(name, expr string, sev types.Severity) {
		re, err := regexp.Compile(expr)
		if err != nil {
			log.Warn("dropping pattern",
				zap.String("pattern", name),
				zap.Error(fmt.Errorf("%w: %q: %v", ErrPatternCompile, expr, err)))
			return
		}
		s.patterns = append(s.patterns, Pattern{Name: name, Severity: sev, re: re})
		_, _ = h.WriteString(name + "\x00" + string(sev) + "\x00" + expr + "\x00")
	}
	for _, r := range builtinRules {
		add(r.name, r.expr, r.severity)
	}
	for i, expr := range custom {
		add("Custom Pattern #"+strconv.Itoa(i+1), expr, types.SevMed)
	}
	s.fingerprint = strconv.FormatUint(h.Sum64(), 16)
	return s
}

// Patterns returns the active patterns in evaluation order.
func (s *Scanner) Patterns() []Pattern {
	return append([]Pattern(nil), s.patterns...)
}

// Fingerprint identifies the compiled pattern set. It changes whenever a
// pattern is added, removed or edited.
func (s *Scanner) Fingerprint() string { return s.fingerprint }

// Scan reports every pattern hit in content, one finding per pattern per
// line, in line order and then pattern order. Content that is not valid
// UTF-8 is not scanned and yields ErrNotText.
func (s *Scanner) Scan(path string, content []byte) ([]types.SecurityFinding, error) {
	if !utf8.Valid(content) {
		return nil, ErrNotText
	}
	var out []types.SecurityFinding
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		for _, p := range s.patterns {
			loc := p.re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			out = append(out, types.SecurityFinding{
				File:     path,
				Line:     i + 1,
				Pattern:  p.Name,
				Match:    Mask(line[loc[0]:loc[1]]),
				Severity: p.Severity,
			})
		}
	}
	return out, nil
}

// Scan is a convenience for one-off scans with cfg's custom patterns.
func Scan(path string, content []byte, cfg config.Config) ([]types.SecurityFinding, error) {
	return New(cfg.CustomPatterns, nil).Scan(path, content)
}

// Mask hides the middle of a matched secret: strings longer than 10
// characters keep their first 5 and last 3, joined by "...".
func Mask(s string) string {
	r := []rune(s)
	if len(r) <= 10 {
		return s
	}
	return string(r[:5]) + "..." + string(r[len(r)-3:])
}
