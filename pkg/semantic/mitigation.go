package semantic

import (
	"regexp"
	"strings"
)

var (
	numericLiteralRe = regexp.MustCompile(`\b\d+\b`)

	mutationRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:\+=|-=|\*=|/=|=)\s*(.*?)\s*;?\s*$`)

	isZeroGuardRe  = regexp.MustCompile(`^([A-Za-z_][\w.\[\]]*)\s*!=\s*0\s*\?\s*1\s*/\s*([A-Za-z_][\w.\[\]]*)\s*:\s*0$`)
	isZeroInvRe    = regexp.MustCompile(`^([A-Za-z_][\w.\[\]]*)\s*<--\s*-\s*([A-Za-z_][\w.\[\]]*)\s*\*\s*([A-Za-z_][\w.\[\]]*)\s*\+\s*1\s*;?$`)
	isZeroClosesRe = regexp.MustCompile(`^([A-Za-z_][\w.\[\]]*)\s*\*\s*([A-Za-z_][\w.\[\]]*)\s*===\s*0\s*;?$`)

	divRe = regexp.MustCompile(`^([\w.\[\]]+)\s*\\\s*([\w.\[\]]+)$`)
	modRe = regexp.MustCompile(`^([\w.\[\]]+)\s*%\s*([\w.\[\]]+)$`)

	modInvRe        = regexp.MustCompile(`^([\w.\[\]]+)\s*\*\s*([\w.\[\]]+)\s*\\\s*([\w.\[\]]+)$`)
	modInvCloseRe   = regexp.MustCompile(`^([\w.\[\]]+)\s*\*\s*([\w.\[\]]+)\s*-\s*1\s*===\s*([\w.\[\]]+)\s*\*\s*([\w.\[\]]+)\s*;?$`)
	qrRecomposeRe   = regexp.MustCompile(`^([\w.\[\]]+)\s*\*\s*([\w.\[\]]+)\s*\+\s*([\w.\[\]]+)\s*===\s*([\w.\[\]]+)\s*;?$`)
	toBitsExactCall = "to_bits_exact("
)

// hardMitigatedSignals computes, for a template, the subset of its
// unconstrained (<--) signals that are provably safe per spec.md §4.3's
// hard-mitigation algorithm, and therefore suppressed from reporting.
func hardMitigatedSignals(td *templateData) map[string]bool {
	U := make(map[string]bool, len(td.unconstrained))
	for _, a := range td.unconstrained {
		U[a.signal] = true
	}

	textByLine := make(map[int]string, len(td.lines))
	for i, ln := range td.lineNos {
		textByLine[ln] = td.lines[i]
	}

	mitigated := make(map[string]bool)

	for _, a := range td.unconstrained {
		if isZeroGuard(td, a, textByLine) {
			mitigated[a.signal] = true
			continue
		}
		if quotientRemainderGuard(td, textByLine) {
			mitigated[a.signal] = true
			continue
		}
		if modularInverseQuotientGuard(td, a, textByLine) {
			mitigated[a.signal] = true
			continue
		}

		anchored := anchoredConstraintLines(td, a.signal, a.line, U)
		if len(anchored) >= 2 {
			mitigated[a.signal] = true
			continue
		}

		binary := hasBinaryConstraint(td, a.signal, a.line)
		recomposed := hasVarRecomposition(td, a.signal, a.line, U, textByLine)
		if binary && recomposed {
			mitigated[a.signal] = true
			continue
		}

		bitWired := hasBitComponentWiring(td, a.signal, a.line, textByLine)
		structural := hasStructuralConstraint(anchored, textByLine)
		if bitWired && structural {
			mitigated[a.signal] = true
			continue
		}
	}

	return mitigated
}

func anchoredConstraintLines(td *templateData, signal string, afterLine int, U map[string]bool) []int {
	seen := make(map[int]bool)
	var out []int
	for _, ln := range td.constraintLines[signal] {
		if ln <= afterLine || seen[ln] {
			continue
		}
		text := ""
		for i, n := range td.lineNos {
			if n == ln {
				text = td.lines[i]
				break
			}
		}
		if isAnchored(text, signal, U) {
			seen[ln] = true
			out = append(out, ln)
		}
	}
	return out
}

func isAnchored(line, signal string, U map[string]bool) bool {
	if numericLiteralRe.MatchString(line) {
		return true
	}
	for _, tok := range tokenize(line) {
		norm := normalizeSignal(tok)
		if norm == signal {
			continue
		}
		if U[norm] {
			continue
		}
		return true
	}
	return false
}

func hasStructuralConstraint(anchoredLines []int, textByLine map[int]string) bool {
	for _, ln := range anchoredLines {
		text := textByLine[ln]
		if strings.ContainsAny(text, "*+-") {
			return true
		}
	}
	return false
}

func stripIndicesAndSpace(s string) string {
	var b strings.Builder
	skip := false
	for _, c := range s {
		switch {
		case c == '[':
			skip = true
		case c == ']':
			skip = false
		case skip:
			// drop
		case c == ' ' || c == '\t':
			// drop
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func hasBinaryConstraint(td *templateData, signal string, afterLine int) bool {
	forms := []string{
		signal + "*(1-" + signal + ")===0",
		"(1-" + signal + ")*" + signal + "===0",
		signal + "*(" + signal + "-1)===0",
		"(" + signal + "-1)*" + signal + "===0",
	}
	for i, ln := range td.lineNos {
		if ln <= afterLine {
			continue
		}
		stripped := strings.TrimSuffix(stripIndicesAndSpace(td.lines[i]), ";")
		for _, f := range forms {
			if stripped == f {
				return true
			}
		}
	}
	return false
}

func hasBitComponentWiring(td *templateData, signal string, afterLine int, textByLine map[int]string) bool {
	for _, a := range td.constrained {
		if a.line <= afterLine {
			continue
		}
		text := strings.ToLower(textByLine[a.line])
		if !strings.Contains(text, signal) {
			continue
		}
		if strings.Contains(text, ".in") && strings.Contains(text, "bit") {
			return true
		}
	}
	return false
}

func hasVarRecomposition(td *templateData, signal string, afterLine int, U map[string]bool, textByLine map[int]string) bool {
	for i, ln := range td.lineNos {
		line := td.lines[i]
		m := mutationRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v := m[1]
		if !td.varNames[v] {
			continue
		}
		if !strings.Contains(line, signal) {
			continue
		}
		for _, ln2 := range anchoredConstraintLines(td, v, ln, U) {
			if ln2 > afterLine {
				return true
			}
		}
		// v itself may not be tracked in constraintLines if it was never
		// collected as a dedicated signal; fall back to scanning later
		// lines directly for an anchored reference to v.
		for j, ln3 := range td.lineNos {
			if ln3 <= ln {
				continue
			}
			text := td.lines[j]
			if !strings.Contains(tokensJoined(text), v) {
				continue
			}
			if isAnchored(text, v, U) {
				return true
			}
		}
	}
	return false
}

func tokensJoined(line string) string {
	return " " + strings.Join(tokenize(line), " ") + " "
}

func isZeroGuard(td *templateData, a assignment, textByLine map[int]string) bool {
	m := isZeroGuardRe.FindStringSubmatch(strings.TrimSpace(a.rhs))
	if m == nil || m[1] != m[2] {
		return false
	}
	x := m[1]

	var invName, out string
	found := false
	for i, ln := range td.lineNos {
		if ln <= a.line {
			continue
		}
		mm := isZeroInvRe.FindStringSubmatch(strings.TrimSpace(td.lines[i]))
		if mm != nil && mm[3] == x {
			out, invName = mm[1], mm[2]
			found = true
			break
		}
	}
	if !found {
		return false
	}
	_ = invName

	for i, ln := range td.lineNos {
		if ln <= a.line {
			continue
		}
		mm := isZeroClosesRe.FindStringSubmatch(strings.TrimSpace(td.lines[i]))
		if mm == nil {
			continue
		}
		pair := map[string]bool{mm[1]: true, mm[2]: true}
		if pair[x] && pair[out] {
			return true
		}
	}
	return false
}

// quotientRemainderGuard looks for a pair of <-- assignments splitting a
// common input via integer division and modulo with an identical modulus,
// both wired into bit-decomposition ports, closed by a later recomposition
// constraint.
func quotientRemainderGuard(td *templateData, textByLine map[int]string) bool {
	type split struct {
		signal, i, m string
		line         int
	}
	var quotients, remainders []split

	for _, a := range td.unconstrained {
		rhs := strings.TrimSpace(a.rhs)
		if m := divRe.FindStringSubmatch(rhs); m != nil {
			quotients = append(quotients, split{a.signal, m[1], m[2], a.line})
		}
		if m := modRe.FindStringSubmatch(rhs); m != nil {
			remainders = append(remainders, split{a.signal, m[1], m[2], a.line})
		}
	}

	for _, q := range quotients {
		for _, r := range remainders {
			if q.i != r.i || q.m != r.m {
				continue
			}
			if !wiredToBitsExact(td, q.signal, textByLine) || !wiredToBitsExact(td, r.signal, textByLine) {
				continue
			}
			if recomposes(td, q.signal, r.signal, q.i, q.m) {
				return true
			}
		}
	}
	return false
}

func wiredToBitsExact(td *templateData, signal string, textByLine map[int]string) bool {
	for _, a := range td.constrained {
		text := textByLine[a.line]
		if strings.Contains(text, signal) && strings.Contains(text, ".in") {
			if strings.Contains(strings.Join(td.lines, "\n"), toBitsExactCall) {
				return true
			}
		}
	}
	return false
}

func recomposes(td *templateData, q, r, i, m string) bool {
	for _, line := range td.lines {
		line = strings.TrimSpace(line)
		mm := qrRecomposeRe.FindStringSubmatch(line)
		if mm == nil {
			continue
		}
		// q*m+r === i, or commuted m*q+r === i
		if ((mm[1] == q && mm[2] == m) || (mm[1] == m && mm[2] == q)) && mm[3] == r && mm[4] == i {
			return true
		}
	}
	return false
}

// modularInverseQuotientGuard recognizes `out <-- out_cand * in \ m` with a
// later `out*in - 1 === k*m` (or commuted) closing constraint, where out is
// wired into a bit-decomposition.
func modularInverseQuotientGuard(td *templateData, a assignment, textByLine map[int]string) bool {
	m := modInvRe.FindStringSubmatch(strings.TrimSpace(a.rhs))
	if m == nil {
		return false
	}
	out, in := a.signal, m[2]

	if !wiredToBitsExact(td, out, textByLine) {
		return false
	}

	for _, line := range td.lines {
		line = strings.TrimSpace(line)
		mm := modInvCloseRe.FindStringSubmatch(line)
		if mm == nil {
			continue
		}
		lhsPair := map[string]bool{mm[1]: true, mm[2]: true}
		if lhsPair[out] && lhsPair[in] {
			return true
		}
	}
	return false
}
