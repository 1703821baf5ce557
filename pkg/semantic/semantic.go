package semantic

import (
	"strconv"
	"strings"

	"github.com/praetorian-inc/zkpm/pkg/pattern"
)

// Analysis is Layer B's output for one source text: its findings plus the
// per-template context calibration and dedup need.
type Analysis struct {
	Findings  []Finding
	templates []*templateData
}

// Analyze runs Layer B end to end: comment stripping, template splitting,
// assignment/constraint-usage collection, and the four checks. The
// per-template data it keeps is what Dedup later uses to compute
// hard-mitigated signals.
func Analyze(text string) Analysis {
	stripped := stripComments(text)
	lines := splitLinesKeepEmpty(stripped)
	blocks := splitTemplates(lines)

	var findings []Finding
	tds := make([]*templateData, 0, len(blocks))

	for _, b := range blocks {
		td := buildTemplateData(b)
		tds = append(tds, td)
		findings = append(findings, runChecks(td)...)
	}

	return Analysis{Findings: findings, templates: tds}
}

func splitLinesKeepEmpty(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// templateContaining returns the template whose line range contains line,
// or nil.
func (a Analysis) templateContaining(line int) *templateData {
	for _, td := range a.templates {
		if line >= td.startLine && line <= td.endLine {
			return td
		}
	}
	return nil
}

// extractedSignal resolves which signal a Layer A match at a given line
// refers to. A Layer A pattern's matched_text is often just the operator
// itself (e.g. "<--"); the actual signal comes from parsing that line
// during assignment collection. Layer B's own findings already carry the
// signal as matched_text, so the fallback covers those directly.
func (td *templateData) extractedSignal(line int, matchedText string) string {
	for _, a := range td.unconstrained {
		if a.line == line {
			return a.signal
		}
	}
	for _, a := range td.constrained {
		if a.line == line {
			return a.signal
		}
	}
	for _, eq := range td.equalities {
		if eq.line == line {
			return eq.normalizedLHS
		}
	}
	return normalizeSignal(matchedText)
}

// ToPatternMatch converts one Layer B finding to the shared match shape,
// per spec.md §4.2's semantic-integration contract: column 1, matched_text
// is the signal.
func ToPatternMatch(f Finding) pattern.Match {
	return pattern.Match{
		PatternID: f.ID,
		Message:   f.Message,
		Severity:  f.Severity,
		Location: pattern.MatchLocation{
			Line:        f.Line,
			Column:      1,
			MatchedText: f.Signal,
		},
	}
}

// calibrationNoteMarker prefixes every note Calibrate appends, so a
// previously calibrated message can be recognized and left alone.
const calibrationNoteMarker = " (note: "

// Calibrate rewrites the message of matches with id in
// {unconstrained_assignment, signal_without_constraint} whose signal is
// constrained elsewhere in the same template, per spec.md §4.3. Severity is
// never mutated. Idempotent: a match whose message already carries a
// calibration note is left unchanged, so calibrating twice equals
// calibrating once.
func Calibrate(matches []pattern.Match, a Analysis) []pattern.Match {
	for i := range matches {
		m := &matches[i]
		if m.PatternID != "unconstrained_assignment" && m.PatternID != "signal_without_constraint" {
			continue
		}
		if strings.Contains(m.Message, calibrationNoteMarker) {
			continue
		}
		td := a.templateContaining(m.Location.Line)
		if td == nil {
			continue
		}
		signal := td.extractedSignal(m.Location.Line, m.Location.MatchedText)
		if !td.constrainedSignals[signal] {
			continue
		}

		if td.locallyConstrained(signal, m.Location.Line) {
			m.Message = m.Message + calibrationNoteMarker + signal + " participates in constraints in this template, including within 12 lines below — likely a witness-hint pattern; review manually)"
		} else {
			m.Message = m.Message + calibrationNoteMarker + signal + " participates in constraints elsewhere in this template)"
		}
	}
	return matches
}

// Dedup removes exact duplicates, drops signal_without_constraint findings
// that share (line, signal) with an unconstrained_assignment finding, and
// drops any {unconstrained_assignment, signal_without_constraint} match
// whose signal is hard-mitigated in its template.
func Dedup(matches []pattern.Match, a Analysis) []pattern.Match {
	mitigatedByTemplate := make(map[*templateData]map[string]bool, len(a.templates))
	for _, td := range a.templates {
		mitigatedByTemplate[td] = hardMitigatedSignals(td)
	}

	signalOf := func(m pattern.Match) string {
		td := a.templateContaining(m.Location.Line)
		if td == nil {
			return normalizeSignal(m.Location.MatchedText)
		}
		return td.extractedSignal(m.Location.Line, m.Location.MatchedText)
	}

	seenExact := make(map[string]bool)
	unconstrainedAt := make(map[string]bool) // key: line|signal

	for _, m := range matches {
		if m.PatternID == "unconstrained_assignment" {
			unconstrainedAt[strconv.Itoa(m.Location.Line)+"|"+signalOf(m)] = true
		}
	}

	var out []pattern.Match
	for _, m := range matches {
		exactKey := strings.Join([]string{
			m.PatternID, strconv.Itoa(m.Location.Line), strconv.Itoa(m.Location.Column), m.Location.MatchedText,
		}, "|")
		if seenExact[exactKey] {
			continue
		}
		seenExact[exactKey] = true

		signal := signalOf(m)

		if m.PatternID == "signal_without_constraint" {
			if unconstrainedAt[strconv.Itoa(m.Location.Line)+"|"+signal] {
				continue
			}
		}

		if m.PatternID == "unconstrained_assignment" || m.PatternID == "signal_without_constraint" {
			if td := a.templateContaining(m.Location.Line); td != nil {
				if mitigatedByTemplate[td][signal] {
					continue
				}
			}
		}

		out = append(out, m)
	}

	return out
}

