// Package pattern holds the in-memory shapes shared by the library loader,
// the syntactic matcher, and the semantic analyzer: patterns, libraries,
// invariants, and match results.
package pattern

// Kind identifies how a Pattern's text is interpreted.
type Kind string

const (
	Regex      Kind = "regex"
	FancyRegex Kind = "fancy_regex"
	Literal    Kind = "literal"
	Ast        Kind = "ast"
)

// Pattern is a single detection rule: an id, a kind-tagged pattern string, a
// message, and an optional severity (defaults to Info when absent).
type Pattern struct {
	ID       string   `yaml:"id" json:"id"`
	Kind     Kind     `yaml:"kind" json:"kind"`
	Pattern  string   `yaml:"pattern" json:"pattern"`
	Message  string   `yaml:"message" json:"message"`
	Severity Severity `yaml:"severity" json:"severity"`
}

// Library groups an ordered sequence of patterns with an ordered sequence of
// declarative invariants. Invariants are accepted and discarded: evaluating
// them is unimplemented in this core.
type Library struct {
	Patterns   []Pattern   `yaml:"patterns" json:"patterns"`
	Invariants []Invariant `yaml:"invariants" json:"invariants"`
}

// InvariantType classifies the kind of property an Invariant asserts.
type InvariantType string

const (
	Constraint   InvariantType = "constraint"
	Metamorphic  InvariantType = "metamorphic"
	Differential InvariantType = "differential"
)

// Oracle describes how an Invariant's relation is expected to evaluate.
type Oracle string

const (
	MustHold   Oracle = "must_hold"
	MustFail   Oracle = "must_fail"
	ShouldHold Oracle = "should_hold"
)

// Invariant is a declarative property over a circuit. This core accepts and
// stores invariants but never evaluates them; presence triggers a one-shot
// warning from the matcher (see pkg/matcher).
type Invariant struct {
	Name          string        `yaml:"name" json:"name"`
	InvariantType InvariantType `yaml:"invariant_type" json:"invariant_type"`
	Relation      string        `yaml:"relation" json:"relation"`
	Oracle        Oracle        `yaml:"oracle" json:"oracle"`
	Severity      Severity      `yaml:"severity" json:"severity"`
	Description   string        `yaml:"description" json:"description"`
}

// MatchLocation is a 1-based line/column plus the literal matched text.
type MatchLocation struct {
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	MatchedText string `json:"matched_text"`
}

// Match is a single reportable finding, produced by either the syntactic
// matcher (Layer A) or the semantic analyzer (Layer B).
type Match struct {
	PatternID string        `json:"pattern_id"`
	Message   string        `json:"message"`
	Severity  Severity      `json:"severity"`
	Location  MatchLocation `json:"location"`
}
