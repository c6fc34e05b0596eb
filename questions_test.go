package questions

import (
	"testing"

	"github.com/goliatone/go-questions/pkg/question"
)

func TestLoadFile_ServiceDetails(t *testing.T) {
	q, err := LoadFile("examples/definitions/service-details.yml")
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if q.ID != "serviceDetails" || q.Kind != question.KindMultiquestion {
		t.Fatalf("unexpected question: %s %s", q.ID, q.Kind)
	}

	filtered, err := q.Filter(NewContext(map[string]any{"lot": "SCS"}))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	data, err := filtered.GetData(FormValues(map[string]any{
		"serviceName":          "Mail relay",
		"cloudDeploymentModel": "public",
		"freeTrial":            false,
		"freeTrialLink":        "https://stale.example.com",
	}))
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	if data["freeTrialLink"] != nil {
		t.Fatalf("untaken followup must be nulled, got %v", data["freeTrialLink"])
	}
	if data["serviceName"] != "Mail relay" {
		t.Fatalf("unexpected service name: %v", data["serviceName"])
	}
}

func TestLoadFile_CaseStudies(t *testing.T) {
	q, err := LoadFile("examples/definitions/case-studies.yml")
	if err != nil {
		t.Fatalf("load file: %v", err)
	}

	filtered, err := q.Filter(NewContext(map[string]any{
		"requirements": []any{"a fast service", "a cheap service"},
	}))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(filtered.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(filtered.Items()))
	}

	data, err := filtered.GetData(FormValues(map[string]any{
		"yesno-0":    true,
		"evidence-0": "case study attached",
		"yesno-1":    false,
	}))
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	entries, ok := data["caseStudies"].([]map[string]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("unexpected entries: %#v", data["caseStudies"])
	}
	if entries[0]["evidence"] != "case study attached" {
		t.Fatalf("unexpected first entry: %#v", entries[0])
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("examples/definitions/missing.yml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
