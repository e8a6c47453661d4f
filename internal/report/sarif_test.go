package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/clpipe/searchusage/internal/types"
)

func TestWriteSARIF_Shape(t *testing.T) {
	ms := []types.UsageMatch{{Path: "a/b.txt", Line: 3, Text: "uses pkg_resource"}}
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, ms, "pkg_resource", "1.2.3"); err != nil {
		t.Fatalf("WriteSARIF: %v", err)
	}
	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v; body=%s", err, buf.String())
	}
	if doc.Version != "2.1.0" {
		t.Fatalf("expected SARIF 2.1.0, got %q", doc.Version)
	}
	if len(doc.Runs) != 1 || len(doc.Runs[0].Results) != 1 {
		t.Fatalf("expected 1 run with 1 result: %s", buf.String())
	}
	run := doc.Runs[0]
	if run.Tool.Driver.Name != "searchusage" || run.Tool.Driver.Version != "1.2.3" {
		t.Fatalf("unexpected driver: %#v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != RuleID {
		t.Fatalf("expected single %q rule", RuleID)
	}
	loc := run.Results[0].Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "a/b.txt" || loc.Region.StartLine != 3 {
		t.Fatalf("unexpected location: %#v", loc)
	}
}

func TestWriteSARIF_NoMatchesHasEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, nil, "x", "0"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"results": []`)) {
		t.Fatalf("expected empty results array, got %s", buf.String())
	}
}
