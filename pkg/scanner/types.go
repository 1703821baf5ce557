package scanner

import "github.com/praetorian-inc/zkpm/pkg/pattern"

// FileResult is one scanned file that produced at least one match.
type FileResult struct {
	Path    string          `json:"path"`
	Matches []pattern.Match `json:"matches"`
}

// Summary tallies matches across an entire scan by severity.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// Result is a completed scan: every file with at least one match, plus the
// severity summary across all of them.
type Result struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
}

// DebugLogger lets callers observe the walk without coupling the scanner to
// a concrete logging library.
type DebugLogger interface {
	Log(format string, args ...interface{})
}

// NoopLogger discards every message.
type NoopLogger struct{}

func (NoopLogger) Log(format string, args ...interface{}) {}

func addSummary(s *Summary, matches []pattern.Match) {
	for _, m := range matches {
		s.Total++
		switch m.Severity {
		case pattern.Critical:
			s.Critical++
		case pattern.High:
			s.High++
		case pattern.Medium:
			s.Medium++
		case pattern.Low:
			s.Low++
		default:
			s.Info++
		}
	}
}
