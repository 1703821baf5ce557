package matcher

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/zkpm/pkg/pattern"
)

// literalPrefilter uses Aho-Corasick to decide, once per scanned text, which
// literal-kind patterns can possibly match at all: a single pass over the
// text rules out every literal pattern whose string does not occur anywhere
// in it, before the per-line forward-cursor scan (matcher.go) does the exact
// work of locating each occurrence.
type literalPrefilter struct {
	ac       *ahocorasick.Matcher
	literals []string // index-aligned with ac's construction order
	ids      []string // pattern id at the same index
}

func newLiteralPrefilter(all []pattern.Pattern, literalIDs []string) *literalPrefilter {
	if len(literalIDs) == 0 {
		return &literalPrefilter{}
	}

	byID := make(map[string]string, len(all))
	for _, p := range all {
		if p.Kind == pattern.Literal {
			byID[p.ID] = p.Pattern
		}
	}

	pf := &literalPrefilter{}
	for _, id := range literalIDs {
		lit := byID[id]
		if lit == "" {
			// Empty literals match nothing (spec.md §4.2); exclude from the
			// automaton rather than feeding ahocorasick a zero-length term.
			continue
		}
		pf.literals = append(pf.literals, lit)
		pf.ids = append(pf.ids, id)
	}
	if len(pf.literals) > 0 {
		pf.ac = ahocorasick.NewStringMatcher(pf.literals)
	}
	return pf
}

// candidates returns the set of literal pattern ids that occur at least once
// in text, or nil if the prefilter holds no literal patterns at all.
func (pf *literalPrefilter) candidates(text string) map[string]bool {
	if pf == nil || pf.ac == nil {
		return nil
	}
	hits := pf.ac.Match([]byte(text))
	if len(hits) == 0 {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(hits))
	for _, h := range hits {
		out[pf.ids[h]] = true
	}
	return out
}
