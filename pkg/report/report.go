// Package report encodes a completed scan as human text, a JSON summary, or
// SARIF 2.1.0 — three views over the same (matches, summary) shape.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/praetorian-inc/zkpm/pkg/pattern"
	"github.com/praetorian-inc/zkpm/pkg/scanner"
)

// Format selects one of the three encoders.
type Format string

const (
	Text  Format = "text"
	JSON  Format = "json"
	Sarif Format = "sarif"
)

// ParseFormat validates a --format flag value.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case Text, JSON, Sarif:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, or sarif)", raw)
	}
}

// severityIcon returns the glyph text output prefixes each match with.
func severityIcon(s pattern.Severity) string {
	switch s {
	case pattern.Critical:
		return "🔴 "
	case pattern.High:
		return "🟠 "
	case pattern.Medium:
		return "🟡 "
	case pattern.Low:
		return "🔵 "
	default:
		return "ℹ️  "
	}
}

func severityColor(s pattern.Severity) *color.Color {
	switch s {
	case pattern.Critical:
		return color.New(color.FgHiRed, color.Bold)
	case pattern.High:
		return color.New(color.FgRed)
	case pattern.Medium:
		return color.New(color.FgYellow)
	case pattern.Low:
		return color.New(color.FgHiBlue)
	default:
		return color.New(color.FgWhite)
	}
}

// WriteText renders the human-readable report: matches grouped under a
// per-file path header, or "No patterns matched." when the scan was clean.
// showIcons toggles the leading severity glyph (config's output.show_icons).
func WriteText(w io.Writer, result *scanner.Result, showIcons bool, colorEnabled bool) error {
	if len(result.Files) == 0 {
		_, err := fmt.Fprintln(w, "No patterns matched.")
		return err
	}

	if _, err := fmt.Fprintf(w, "Found %d matches in %d files:\n\n", result.Summary.Total, len(result.Files)); err != nil {
		return err
	}

	for _, f := range result.Files {
		if _, err := fmt.Fprintf(w, "%s:\n", f.Path); err != nil {
			return err
		}
		for _, m := range f.Matches {
			c := severityColor(m.Severity)
			c.DisableColor()
			if colorEnabled {
				c.EnableColor()
			}

			prefix := ""
			if showIcons {
				prefix = severityIcon(m.Severity)
			}
			label := c.Sprint(m.Severity.String())

			if _, err := fmt.Fprintf(w, "  %s[%s] %s\n", prefix, label, m.Message); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "     Pattern: %s\n", m.PatternID); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "     Location: %d:%d\n\n", m.Location.Line, m.Location.Column); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "%d matches: %d critical, %d high, %d medium, %d low, %d info\n",
		result.Summary.Total, result.Summary.Critical, result.Summary.High,
		result.Summary.Medium, result.Summary.Low, result.Summary.Info)
	return err
}
