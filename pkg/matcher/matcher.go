// Package matcher implements Layer A: validating and compiling a pattern
// library into an immutable matcher, then scanning text or files against it
// in a single-threaded, deterministic pass.
package matcher

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/zkpm/pkg/pattern"
	"github.com/praetorian-inc/zkpm/pkg/semantic"
)

// Default resource caps (spec.md §5); overridable via Config.
const (
	DefaultMaxPatterns    = 1000
	DefaultMaxRegexLength = 200
	DefaultMaxMatches     = 10000
	DefaultMaxFileSize    = 10 << 20 // 10 MiB
)

// invariantWarningEmitted is the single process-level flag gating the
// "invariants present but not enforced" warning to at most once per
// process lifetime, per spec.md §5.
var invariantWarningEmitted atomic.Bool

// Config holds the matcher's resource caps and the semantic-analysis toggle.
type Config struct {
	MaxPatterns    int
	MaxRegexLength int
	MaxMatches     int
	MaxFileSize    int64

	// SemanticEnabled turns on Layer B (pkg/semantic) after the Layer A pass.
	SemanticEnabled bool
}

// DefaultConfig returns a Config populated with the spec's default caps.
func DefaultConfig() Config {
	return Config{
		MaxPatterns:    DefaultMaxPatterns,
		MaxRegexLength: DefaultMaxRegexLength,
		MaxMatches:     DefaultMaxMatches,
		MaxFileSize:    DefaultMaxFileSize,
	}
}

// Matcher is an immutable, compiled pattern library ready to scan text.
// A single instance is reusable and safe to call repeatedly from one
// goroutine; the core contract is single-threaded (see spec.md §5).
type Matcher struct {
	cfg      Config
	patterns []pattern.Pattern // library order, preserved

	regexes      map[string]*regexp.Regexp
	fancyRegexes map[string]*regexp2.Regexp
	literalAC    *literalPrefilter
}

// New validates and compiles a library into an immutable Matcher.
func New(lib *pattern.Library, cfg Config) (*Matcher, error) {
	if cfg.MaxPatterns <= 0 {
		cfg.MaxPatterns = DefaultMaxPatterns
	}
	if cfg.MaxRegexLength <= 0 {
		cfg.MaxRegexLength = DefaultMaxRegexLength
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = DefaultMaxMatches
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}

	if len(lib.Patterns) > cfg.MaxPatterns {
		return nil, fmt.Errorf("library has %d patterns, exceeding max_patterns %d", len(lib.Patterns), cfg.MaxPatterns)
	}

	seen := make(map[string]bool, len(lib.Patterns))
	for _, p := range lib.Patterns {
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate pattern id %q", p.ID)
		}
		seen[p.ID] = true
	}

	m := &Matcher{
		cfg:          cfg,
		patterns:     lib.Patterns,
		regexes:      make(map[string]*regexp.Regexp),
		fancyRegexes: make(map[string]*regexp2.Regexp),
	}

	var literalIDs []string
	for _, p := range lib.Patterns {
		switch p.Kind {
		case pattern.Ast:
			return nil, fmt.Errorf("pattern %q: kind ast is unimplemented", p.ID)

		case pattern.Regex:
			if len(p.Pattern) > cfg.MaxRegexLength {
				return nil, fmt.Errorf("pattern %q: regex source length %d exceeds max_regex_length %d", p.ID, len(p.Pattern), cfg.MaxRegexLength)
			}
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: invalid regex: %w", p.ID, err)
			}
			m.regexes[p.ID] = re

		case pattern.FancyRegex:
			if len(p.Pattern) > cfg.MaxRegexLength {
				return nil, fmt.Errorf("pattern %q: regex source length %d exceeds max_regex_length %d", p.ID, len(p.Pattern), cfg.MaxRegexLength)
			}
			re, err := regexp2.Compile(p.Pattern, regexp2.RE2)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: invalid fancy_regex: %w", p.ID, err)
			}
			m.fancyRegexes[p.ID] = re

		case pattern.Literal:
			literalIDs = append(literalIDs, p.ID)

		default:
			return nil, fmt.Errorf("pattern %q: unknown kind %q", p.ID, p.Kind)
		}
	}
	m.literalAC = newLiteralPrefilter(lib.Patterns, literalIDs)

	if len(lib.Invariants) > 0 && invariantWarningEmitted.CompareAndSwap(false, true) {
		fmt.Fprintln(os.Stderr, "[warn] pattern library declares invariants; they are recorded but not evaluated by this matcher")
	}

	return m, nil
}

// ScanText scans s against the compiled library, returning matches in
// deterministic order (line, then pattern-in-library-order, then
// left-to-right within the line), capped at cfg.MaxMatches.
func (m *Matcher) ScanText(s string) ([]pattern.Match, error) {
	var matches []pattern.Match
	lines := splitLinesKeepEmpty(s)
	literalCandidates := m.literalAC.candidates(s)

	for lineNum, line := range lines {
		for _, p := range m.patterns {
			if p.Kind == pattern.Literal && literalCandidates != nil && !literalCandidates[p.ID] {
				continue
			}
			found := m.scanLine(p, line, lineNum+1)
			for _, match := range found {
				matches = append(matches, match)
				if len(matches) >= m.cfg.MaxMatches {
					return m.applySemantics(matches, s)
				}
			}
		}
	}

	return m.applySemantics(matches, s)
}

// ScanFile enforces the file-size cap, reads path, and delegates to ScanText.
func (m *Matcher) ScanFile(path string) ([]pattern.Match, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %s: %w", path, err)
	}
	if info.Size() > m.cfg.MaxFileSize {
		return nil, fmt.Errorf("%s is too large: %d bytes (max %d)", path, info.Size(), m.cfg.MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m.ScanText(string(data))
}

func (m *Matcher) scanLine(p pattern.Pattern, line string, lineNum int) []pattern.Match {
	switch p.Kind {
	case pattern.Regex:
		return m.scanRegexLine(p, line, lineNum)
	case pattern.FancyRegex:
		return m.scanFancyRegexLine(p, line, lineNum)
	case pattern.Literal:
		return m.scanLiteralLine(p, line, lineNum)
	default:
		return nil
	}
}

func (m *Matcher) scanRegexLine(p pattern.Pattern, line string, lineNum int) []pattern.Match {
	re := m.regexes[p.ID]
	if re == nil {
		return nil
	}
	var out []pattern.Match
	for _, loc := range re.FindAllStringIndex(line, -1) {
		out = append(out, newMatch(p, lineNum, loc[0], line[loc[0]:loc[1]]))
	}
	return out
}

func (m *Matcher) scanFancyRegexLine(p pattern.Pattern, line string, lineNum int) []pattern.Match {
	re := m.fancyRegexes[p.ID]
	if re == nil {
		return nil
	}
	var out []pattern.Match
	match, err := re.FindStringMatch(line)
	for err == nil && match != nil {
		g := match.Groups()[0]
		out = append(out, newMatch(p, lineNum, g.Index, g.String()))
		match, err = re.FindNextMatch(match)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warn] pattern %s: fancy_regex error on line %d: %v\n", p.ID, lineNum, err)
	}
	return out
}

func (m *Matcher) scanLiteralLine(p pattern.Pattern, line string, lineNum int) []pattern.Match {
	if p.Pattern == "" {
		return nil
	}
	var out []pattern.Match
	cursor := 0
	for {
		idx := indexFrom(line, p.Pattern, cursor)
		if idx < 0 {
			break
		}
		out = append(out, newMatch(p, lineNum, idx, p.Pattern))
		cursor = idx + len(p.Pattern)
	}
	return out
}

func newMatch(p pattern.Pattern, lineNum, col0 int, text string) pattern.Match {
	return pattern.Match{
		PatternID: p.ID,
		Message:   p.Message,
		Severity:  p.Severity,
		Location: pattern.MatchLocation{
			Line:        lineNum,
			Column:      col0 + 1,
			MatchedText: text,
		},
	}
}

func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// applySemantics runs Layer B when enabled, per spec.md §4.2's semantic
// integration contract: convert, calibrate, then dedup/hard-mitigation
// filter, all still bounded by max_matches. Calibrate and Dedup run over the
// combined Layer A + Layer B list because hard-mitigation/dedup can suppress
// a Layer A regex match using Layer B's template analysis (see
// pkg/semantic's TestDedupDropsMitigatedSignal). Both preserve input order,
// and Layer B findings are only ever appended after Layer A's, so the result
// keeps spec.md §5's "Layer B findings are appended after Layer A in a
// stable order" guarantee without a final re-sort by source position.
func (m *Matcher) applySemantics(matches []pattern.Match, text string) ([]pattern.Match, error) {
	if !m.cfg.SemanticEnabled {
		return matches, nil
	}

	analysis := semantic.Analyze(text)
	for _, f := range analysis.Findings {
		matches = append(matches, semantic.ToPatternMatch(f))
	}

	matches = semantic.Calibrate(matches, analysis)
	matches = semantic.Dedup(matches, analysis)

	if len(matches) > m.cfg.MaxMatches {
		matches = matches[:m.cfg.MaxMatches]
	}
	return matches, nil
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
