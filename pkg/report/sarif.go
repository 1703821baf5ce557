package report

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/zkpm/pkg/pattern"
	"github.com/praetorian-inc/zkpm/pkg/scanner"
)

// SARIF 2.1.0 constants, per spec.md §4.5.
const (
	sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	sarifVersion   = "2.1.0"
	sarifToolName  = "zkpm"
)

type sarifReport struct {
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
	PhysicalLocation sarifPhysicalLoc `json:"physicalLocation"`
}

type sarifPhysicalLoc struct {
	ArtifactLocation sarifArtifactLoc `json:"artifactLocation"`
	Region           sarifRegion      `json:"region"`
}

type sarifArtifactLoc struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

// sarifLevel maps severity to SARIF's result level per spec.md §4.5:
// {Critical,High}→error, Medium→warning, {Low,Info}→note.
func sarifLevel(s pattern.Severity) string {
	switch s {
	case pattern.Critical, pattern.High:
		return "error"
	case pattern.Medium:
		return "warning"
	default:
		return "note"
	}
}

func sarifURI(path string) string {
	return filepath.ToSlash(strings.TrimPrefix(path, "./"))
}

// WriteSarif renders a SARIF 2.1.0 document with a single run, driver name
// "zkpm", and one result per match. buildVersion is the tool's own build
// metadata (spec.md §4.5's "version from build metadata").
func WriteSarif(w io.Writer, result *scanner.Result, buildVersion string) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{Name: sarifToolName, Version: buildVersion}},
	}

	for _, f := range result.Files {
		for _, m := range f.Matches {
			run.Results = append(run.Results, sarifResult{
				RuleID:  m.PatternID,
				Level:   sarifLevel(m.Severity),
				Message: sarifMessage{Text: m.Message},
				Locations: []sarifLoc{{
					PhysicalLocation: sarifPhysicalLoc{
						ArtifactLocation: sarifArtifactLoc{URI: sarifURI(f.Path)},
						Region: sarifRegion{
							StartLine:   m.Location.Line,
							StartColumn: m.Location.Column,
						},
					},
				}},
			})
		}
	}
	if run.Results == nil {
		run.Results = []sarifResult{}
	}

	doc := sarifReport{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs:    []sarifRun{run},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
