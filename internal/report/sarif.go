package report

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/nodpts/no-dpts/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "error"
	case types.SevMed:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes the security findings and failed linter runs of a check
// as SARIF 2.1.0. Findings carry only the masked match.
func WriteSARIF(w io.Writer, s types.CheckSummary) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "no-dpts", Version: time.Now().Format("2006.01.02")}},
		Results: []sarifResult{},
	}
	for _, f := range s.SecurityFindings {
		run.Results = append(run.Results, sarifResult{
			RuleID:  "secret/" + ruleSlug(f.Pattern),
			Level:   sevToLevel(f.Severity),
			Message: sarifMessage{Text: f.Pattern + " detected: " + f.Match},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: f.File},
					Region:           &sarifRegion{StartLine: f.Line},
				},
			}},
		})
	}
	for _, r := range s.LinterResults {
		if !r.Failed() {
			continue
		}
		msg := r.Tool + " reported problems"
		if out := strings.TrimSpace(r.Output); out != "" {
			msg += ":\n" + out
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:  "lint/" + r.Tool,
			Level:   "error",
			Message: sarifMessage{Text: msg},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: r.File}},
			}},
		})
	}
	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ruleSlug turns a pattern name into a stable rule id fragment.
func ruleSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
