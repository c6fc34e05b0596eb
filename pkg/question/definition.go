package question

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-questions/pkg/template"
)

// Parse decodes a question definition document (JSON or YAML) and constructs
// the question tree. JSON is attempted first, matching how other definition
// documents are loaded elsewhere in the toolchain.
func Parse(data []byte) (*Question, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("question: empty definition document")
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = nil
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("question: parse definition: invalid JSON or YAML")
		}
	}
	return New(doc)
}

// New constructs a question from a definition mapping. Validation is limited
// to presence and shape checks; definitions are trusted beyond that.
func New(data map[string]any) (*Question, error) {
	kindRaw, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("question: definition missing type")
	}
	kind := Kind(toString(kindRaw))
	if !knownKind(kind) {
		return nil, fmt.Errorf("question: unknown question type %q", kindRaw)
	}

	id := toString(data["id"])
	if id == "" {
		return nil, fmt.Errorf("question: definition missing id")
	}

	q := &Question{
		ID:             id,
		Kind:           kind,
		Name:           fieldFrom(data["name"]),
		Question:       fieldFrom(data["question"]),
		Hint:           fieldFrom(data["hint"]),
		QuestionAdvice: fieldFrom(data["question_advice"]),
		Optional:       toBool(data["optional"]),
		DynamicField:   toString(data["dynamic_field"]),

		AssuranceApproach: toString(data["assuranceApproach"]),
		Unit:              toString(data["unit"]),
		UnitPosition:      toString(data["unit_position"]),
		MaxLengthInWords:  toInt(data["max_length_in_words"]),
	}

	var err error
	if q.Depends, err = dependsFrom(data["depends"]); err != nil {
		return nil, fmt.Errorf("question: %s: %w", id, err)
	}
	if q.Options, err = optionsFrom(data["options"]); err != nil {
		return nil, fmt.Errorf("question: %s: %w", id, err)
	}
	if q.Followups, err = followupsFrom(data["followup"]); err != nil {
		return nil, fmt.Errorf("question: %s: %w", id, err)
	}
	if q.Validations, err = validationsFrom(data["validations"]); err != nil {
		return nil, fmt.Errorf("question: %s: %w", id, err)
	}

	if raw, ok := data["questions"]; ok {
		children, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("question: %s: questions must be a sequence", id)
		}
		for _, childRaw := range children {
			childData, ok := childRaw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("question: %s: nested question must be a mapping", id)
			}
			child, err := New(childData)
			if err != nil {
				return nil, err
			}
			q.Questions = append(q.Questions, child)
		}
	}

	if raw, ok := data["fields"]; ok {
		fields, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("question: %s: fields must be a mapping", id)
		}
		q.Fields = make(map[string]string, len(fields))
		for role, key := range fields {
			q.Fields[role] = toString(key)
		}
	}
	q.OptionalFields = toStringSlice(data["optional_fields"])
	q.BeforeSummaryValue = toStringSlice(data["before_summary_value"])

	if q.Kind == KindDynamicList && q.DynamicField == "" {
		return nil, fmt.Errorf("question: %s: dynamic_list requires dynamic_field", id)
	}

	return q, nil
}

func knownKind(kind Kind) bool {
	switch kind {
	case KindText, KindTextboxLarge, KindNumber, KindBoolean, KindDate,
		KindPricing, KindRadios, KindCheckboxes, KindCheckboxTree,
		KindMultiquestion, KindDynamicList:
		return true
	default:
		return false
	}
}

func fieldFrom(value any) *template.Field {
	switch v := value.(type) {
	case nil:
		return nil
	case *template.Field:
		return v
	case string:
		return template.New(v)
	default:
		return template.New(toString(v))
	}
}

func dependsFrom(raw any) ([]Depends, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("depends must be a sequence")
	}
	out := make([]Depends, 0, len(entries))
	for _, entryRaw := range entries {
		entry, ok := entryRaw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("depends entry must be a mapping")
		}
		on := toString(entry["on"])
		if on == "" {
			return nil, fmt.Errorf("depends entry missing on")
		}
		out = append(out, Depends{On: on, Being: toAnySlice(entry["being"])})
	}
	return out, nil
}

func optionsFrom(raw any) ([]Option, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("options must be a sequence")
	}
	out := make([]Option, 0, len(entries))
	for _, entryRaw := range entries {
		entry, ok := entryRaw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("option must be a mapping")
		}
		option := Option{
			Label:       toString(entry["label"]),
			Value:       toString(entry["value"]),
			Description: fieldFrom(entry["description"]),
		}
		nested, err := optionsFrom(entry["options"])
		if err != nil {
			return nil, err
		}
		option.Options = nested
		out = append(out, option)
	}
	return out, nil
}

// followupsFrom decodes a followup mapping. Definition mappings do not
// preserve key order, so ids are sorted to keep construction deterministic.
func followupsFrom(raw any) ([]Followup, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("followup must be a mapping")
	}
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Followup, 0, len(ids))
	for _, id := range ids {
		out = append(out, Followup{ID: id, Values: toAnySlice(entries[id])})
	}
	return out, nil
}

func validationsFrom(raw any) ([]Validation, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("validations must be a sequence")
	}
	out := make([]Validation, 0, len(entries))
	for _, entryRaw := range entries {
		entry, ok := entryRaw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("validation must be a mapping")
		}
		out = append(out, Validation{
			Name:    toString(entry["name"]),
			Message: toString(entry["message"]),
		})
	}
	return out, nil
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toBool(value any) bool {
	b, _ := value.(bool)
	return b
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toAnySlice(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	default:
		return []any{v}
	}
}

func toStringSlice(value any) []string {
	items := toAnySlice(value)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, toString(item))
	}
	return out
}
