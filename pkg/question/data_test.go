package question

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustGetData(t *testing.T, q *Question, form FormData) map[string]any {
	t.Helper()
	data, err := q.GetData(form)
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	return data
}

func TestGetData_Text(t *testing.T) {
	q := mustNew(t, map[string]any{"id": "title", "type": "text"})

	got := mustGetData(t, q, Values(map[string]any{"title": "A service", "other": "ignored"}))
	if diff := cmp.Diff(map[string]any{"title": "A service"}, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}

	got = mustGetData(t, q, FormData{})
	if diff := cmp.Diff(map[string]any{}, got); diff != "" {
		t.Fatalf("absent key must bind nothing (-want +got):\n%s", diff)
	}
}

func TestGetData_CheckboxesAbsentMeansCleared(t *testing.T) {
	q := mustNew(t, map[string]any{"id": "features", "type": "checkboxes"})

	got := mustGetData(t, q, Values(map[string]any{"features": []any{"one", "two"}}))
	if diff := cmp.Diff(map[string]any{"features": []any{"one", "two"}}, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}

	got = mustGetData(t, q, FormData{"other": {"x"}})
	if diff := cmp.Diff(map[string]any{"features": nil}, got); diff != "" {
		t.Fatalf("absent checkboxes must bind explicit nil (-want +got):\n%s", diff)
	}
}

func TestGetData_Assurance(t *testing.T) {
	q := mustNew(t, map[string]any{
		"id":                "dataProtection",
		"type":              "text",
		"assuranceApproach": "2answers-type1",
	})

	got := mustGetData(t, q, Values(map[string]any{
		"dataProtection":             "encrypted at rest",
		"dataProtection--assurance":  "Service provider assertion",
		"dataProtection--irrelevant": "dropped",
	}))
	want := map[string]any{
		"dataProtection": map[string]any{
			"value":     "encrypted at rest",
			"assurance": "Service provider assertion",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}

	// Assurance without a value keeps the wrapper but omits the value key.
	got = mustGetData(t, q, Values(map[string]any{
		"dataProtection--assurance": "Service provider assertion",
	}))
	want = map[string]any{
		"dataProtection": map[string]any{"assurance": "Service provider assertion"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}

	// Neither key submitted: the field is absent, not an empty wrapper.
	got = mustGetData(t, q, FormData{})
	if diff := cmp.Diff(map[string]any{}, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestGetData_CheckboxesAssuranceEmptySubmission(t *testing.T) {
	q := mustNew(t, map[string]any{
		"id":                "features",
		"type":              "checkboxes",
		"assuranceApproach": "2answers-type1",
	})

	// Clearing checkboxes still yields the wrapper, with no value key.
	got := mustGetData(t, q, FormData{})
	want := map[string]any{"features": map[string]any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestGetData_Pricing(t *testing.T) {
	q := mustNew(t, map[string]any{
		"id":   "priceRange",
		"type": "pricing",
		"fields": map[string]any{
			"minimum_price": "priceMin",
			"maximum_price": "priceMax",
		},
	})

	got := mustGetData(t, q, Values(map[string]any{"priceMin": "12.50", "other": "x"}))
	if diff := cmp.Diff(map[string]any{"priceMin": "12.50"}, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func multiquestionWithFollowup(t *testing.T) *Question {
	t.Helper()
	return mustNew(t, map[string]any{
		"id":   "evidence",
		"type": "multiquestion",
		"questions": []any{
			map[string]any{
				"id":       "yesno",
				"type":     "boolean",
				"followup": map[string]any{"evidenceText": true},
			},
			map[string]any{"id": "evidenceText", "type": "text"},
		},
	})
}

func TestGetData_MultiquestionFollowupTaken(t *testing.T) {
	q := multiquestionWithFollowup(t)

	got := mustGetData(t, q, Values(map[string]any{
		"yesno":        true,
		"evidenceText": "we did the thing",
	}))
	want := map[string]any{"yesno": true, "evidenceText": "we did the thing"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestGetData_MultiquestionFollowupNotTaken(t *testing.T) {
	q := multiquestionWithFollowup(t)

	got := mustGetData(t, q, Values(map[string]any{
		"yesno":        false,
		"evidenceText": "stale answer",
	}))
	want := map[string]any{"yesno": false, "evidenceText": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stale followup answer must be nulled (-want +got):\n%s", diff)
	}
}

func TestGetData_MultiquestionTriggerUnanswered(t *testing.T) {
	q := multiquestionWithFollowup(t)

	got := mustGetData(t, q, Values(map[string]any{"evidenceText": "stale answer"}))
	want := map[string]any{"evidenceText": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestGetData_DynamicList(t *testing.T) {
	q := mustFilteredDynamicList(t, "a fast service", "a cheap service")

	got := mustGetData(t, q, Values(map[string]any{
		"yesno-0":    true,
		"evidence-0": "we are fast",
		"yesno-1":    false,
		"evidence-1": "stale answer",
		"unrelated":  "ignored",
	}))
	want := map[string]any{
		"caseStudies": []map[string]any{
			{"yesno": true, "evidence": "we are fast"},
			{"yesno": false},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestGetData_DynamicListPadsMissingEntries(t *testing.T) {
	q := mustFilteredDynamicList(t, "a fast service", "a cheap service")

	got := mustGetData(t, q, Values(map[string]any{"yesno-1": true}))
	want := map[string]any{
		"caseStudies": []map[string]any{
			{},
			{"yesno": true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestGetData_DynamicListEmptySubmission(t *testing.T) {
	q := mustNew(t, dynamicListDefinition())

	// No matching keys at all binds an empty list, even before filtering.
	got := mustGetData(t, q, Values(map[string]any{"unrelated": "x"}))
	want := map[string]any{"caseStudies": []map[string]any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestGetData_DynamicListUnfiltered(t *testing.T) {
	q := mustNew(t, dynamicListDefinition())

	_, err := q.GetData(Values(map[string]any{"yesno-0": true}))
	if !errors.Is(err, ErrNotFiltered) {
		t.Fatalf("expected ErrNotFiltered, got %v", err)
	}
}

func TestGetData_DynamicListMalformedKey(t *testing.T) {
	q := mustFilteredDynamicList(t, "a fast service")

	_, err := q.GetData(Values(map[string]any{"yesno": true}))
	if !errors.Is(err, ErrMalformedSubmission) {
		t.Fatalf("expected ErrMalformedSubmission, got %v", err)
	}

	_, err = q.GetData(Values(map[string]any{"yesno-abc": true}))
	if !errors.Is(err, ErrMalformedSubmission) {
		t.Fatalf("expected ErrMalformedSubmission, got %v", err)
	}
}

func TestGetData_DynamicListIgnoresOutOfRangeIndex(t *testing.T) {
	q := mustFilteredDynamicList(t, "a fast service")

	got := mustGetData(t, q, Values(map[string]any{"yesno-0": true, "yesno-7": true}))
	want := map[string]any{
		"caseStudies": []map[string]any{
			{"yesno": true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestUnformatData_Passthrough(t *testing.T) {
	q := mustNew(t, map[string]any{"id": "title", "type": "text"})

	stored := map[string]any{"title": "A service", "other": "kept"}
	got, err := q.UnformatData(stored)
	if err != nil {
		t.Fatalf("unformat: %v", err)
	}
	if diff := cmp.Diff(stored, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestUnformatData_DynamicList(t *testing.T) {
	q := mustFilteredDynamicList(t, "a fast service", "a cheap service")

	stored := map[string]any{
		"caseStudies": []any{
			map[string]any{"yesno": true, "evidence": "we are fast"},
			map[string]any{"yesno": false},
		},
		"other": "kept",
	}
	got, err := q.UnformatData(stored)
	if err != nil {
		t.Fatalf("unformat: %v", err)
	}
	want := map[string]any{
		"yesno-0":    true,
		"evidence-0": "we are fast",
		"yesno-1":    false,
		"other":      "kept",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
}

func TestUnformatData_DynamicListUnfiltered(t *testing.T) {
	q := mustNew(t, dynamicListDefinition())

	_, err := q.UnformatData(map[string]any{"caseStudies": []any{}})
	if !errors.Is(err, ErrNotFiltered) {
		t.Fatalf("expected ErrNotFiltered, got %v", err)
	}
}

func TestDataRoundTrip_DynamicList(t *testing.T) {
	q := mustFilteredDynamicList(t, "a fast service", "a cheap service")

	form := Values(map[string]any{
		"yesno-0":    true,
		"evidence-0": "we are fast",
		"yesno-1":    false,
	})
	data := mustGetData(t, q, form)

	unformatted, err := q.UnformatData(data)
	if err != nil {
		t.Fatalf("unformat: %v", err)
	}
	again := mustGetData(t, q, Values(unformatted))
	if diff := cmp.Diff(data, again); diff != "" {
		t.Fatalf("round trip not stable (-want +got):\n%s", diff)
	}
}
