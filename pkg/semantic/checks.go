package semantic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praetorian-inc/zkpm/pkg/pattern"
)

// Finding is one Layer B result, pre-conversion to pattern.Match.
type Finding struct {
	ID       string
	Severity pattern.Severity
	Message  string
	Line     int
	Signal   string
}

var componentPortRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\[[^\]]*\])?\.[A-Za-z_][A-Za-z0-9_.\[\]]*$`)

func checkOrphanedUnconstrainedAssignment(td *templateData) []Finding {
	var out []Finding
	for _, a := range td.unconstrained {
		if td.isConstrainedLvalue(a.signal) {
			continue
		}
		if td.isNonTautologicalEqualityLvalue(a.signal) {
			continue
		}
		if td.isInConstraintUsageSet(a.signal) {
			continue
		}
		out = append(out, Finding{
			ID:       "orphaned_unconstrained_assignment",
			Severity: pattern.Critical,
			Message:  fmt.Sprintf("signal %q is assigned via <-- but never constrained", a.signal),
			Line:     a.line,
			Signal:   a.signal,
		})
	}
	return out
}

func checkComponentInputAliasing(td *templateData) []Finding {
	type wiring struct {
		port string
		line int
	}
	bySignal := make(map[string][]wiring)
	var order []string

	for _, a := range td.constrained {
		if !componentPortRe.MatchString(strings.TrimSpace(a.signal)) {
			continue
		}
		rhs := strings.TrimSpace(a.rhs)
		if rhs == "" || !tokenRe.MatchString(rhs) || tokenRe.FindString(rhs) != rhs {
			continue // rhs isn't a bare identifier
		}
		if _, seen := bySignal[rhs]; !seen {
			order = append(order, rhs)
		}
		bySignal[rhs] = append(bySignal[rhs], wiring{port: a.signal, line: a.line})
	}

	var out []Finding
	for _, signal := range order {
		wirings := bySignal[signal]
		if len(wirings) < 2 {
			continue
		}
		var parts []string
		for _, w := range wirings {
			parts = append(parts, fmt.Sprintf("%s@%d", w.port, w.line))
		}
		out = append(out, Finding{
			ID:       "component_input_aliasing",
			Severity: pattern.Medium,
			Message:  fmt.Sprintf("signal %q is wired into multiple component ports: %s", signal, strings.Join(parts, ", ")),
			Line:     wirings[0].line,
			Signal:   signal,
		})
	}
	return out
}

func checkSelfEqualityConstraint(td *templateData) []Finding {
	var out []Finding
	for _, eq := range td.equalities {
		if !eq.tautological {
			continue
		}
		out = append(out, Finding{
			ID:       "self_equality_constraint",
			Severity: pattern.Medium,
			Message:  fmt.Sprintf("%q === %q constrains nothing (self-equality)", eq.lhs, eq.rhs),
			Line:     eq.line,
			Signal:   eq.normalizedLHS,
		})
	}
	return out
}

func checkConstraintOnVar(td *templateData) []Finding {
	var out []Finding
	for _, eq := range td.equalities {
		if td.varNames[eq.normalizedLHS] {
			out = append(out, Finding{
				ID:       "constraint_on_var",
				Severity: pattern.Medium,
				Message:  fmt.Sprintf("%q === %q constrains a var, not a signal", eq.lhs, eq.rhs),
				Line:     eq.line,
				Signal:   eq.normalizedLHS,
			})
		}
	}
	return out
}

func runChecks(td *templateData) []Finding {
	var out []Finding
	out = append(out, checkOrphanedUnconstrainedAssignment(td)...)
	out = append(out, checkComponentInputAliasing(td)...)
	out = append(out, checkSelfEqualityConstraint(td)...)
	out = append(out, checkConstraintOnVar(td)...)
	return out
}
