package report

import (
	"encoding/json"
	"io"

	"github.com/clpipe/searchusage/internal/types"
)

// RuleID is the single SARIF rule every match is reported under.
const RuleID = "usage"

type sarif struct {
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
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int          `json:"startLine"`
	Snippet   sarifMessage `json:"snippet"`
}

// WriteSARIF writes matches as a SARIF 2.1.0 log to the provided writer.
func WriteSARIF(w io.Writer, matches []types.UsageMatch, term, version string) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    "searchusage",
			Version: version,
			Rules: []sarifRule{{
				ID:               RuleID,
				ShortDescription: sarifMessage{Text: "Line contains the search term"},
			}},
		}},
		Results: []sarifResult{},
	}
	for _, m := range matches {
		run.Results = append(run.Results, sarifResult{
			RuleID:    RuleID,
			RuleIndex: 0,
			Level:     "note",
			Message:   sarifMessage{Text: "found " + term},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: m.Path},
					Region:           sarifRegion{StartLine: m.Line, Snippet: sarifMessage{Text: m.Text}},
				},
			}},
		})
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
