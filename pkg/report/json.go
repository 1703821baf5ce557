package report

import (
	"encoding/json"
	"io"

	"github.com/praetorian-inc/zkpm/pkg/pattern"
	"github.com/praetorian-inc/zkpm/pkg/scanner"
)

// jsonMatch is one match flattened with its file path, since spec.md §4.5's
// JSON shape is a single flat matches array, not grouped by file.
type jsonMatch struct {
	File      string           `json:"file"`
	PatternID string           `json:"pattern_id"`
	Message   string           `json:"message"`
	Severity  pattern.Severity `json:"severity"`
	Line      int              `json:"line"`
	Column    int              `json:"column"`
	Matched   string           `json:"matched_text"`
}

type jsonReport struct {
	Matches []jsonMatch     `json:"matches"`
	Summary scanner.Summary `json:"summary"`
}

// WriteJSON renders `{matches: [...], summary: {...}}` per spec.md §4.5.
func WriteJSON(w io.Writer, result *scanner.Result) error {
	out := jsonReport{Summary: result.Summary}
	for _, f := range result.Files {
		for _, m := range f.Matches {
			out.Matches = append(out.Matches, jsonMatch{
				File:      f.Path,
				PatternID: m.PatternID,
				Message:   m.Message,
				Severity:  m.Severity,
				Line:      m.Location.Line,
				Column:    m.Location.Column,
				Matched:   m.Location.MatchedText,
			})
		}
	}
	if out.Matches == nil {
		out.Matches = []jsonMatch{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
