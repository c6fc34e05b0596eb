package question

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormData is the flat, possibly multi-valued form submission. Values for a
// key are kept in submission order, mirroring multi-dict semantics of form
// posts.
type FormData map[string][]any

// Values builds FormData from a flat map. Slice values become multi-valued
// entries; everything else is a single value.
func Values(data map[string]any) FormData {
	out := make(FormData, len(data))
	for key, value := range data {
		if list, ok := value.([]any); ok {
			out[key] = append([]any(nil), list...)
			continue
		}
		out[key] = []any{value}
	}
	return out
}

// Get returns the first submitted value for the key.
func (d FormData) Get(key string) (any, bool) {
	values, ok := d[key]
	if !ok || len(values) == 0 {
		return nil, false
	}
	return values[0], true
}

// List returns every submitted value for the key in submission order.
func (d FormData) List(key string) []any {
	return d[key]
}

// Has reports whether the key was submitted at all.
func (d FormData) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Add appends a value for the key.
func (d FormData) Add(key string, value any) {
	d[key] = append(d[key], value)
}

// GetData maps submitted form data to this question's structured answer
// data. Unknown keys are ignored. The per-kind encoding rules are:
//
//   - text-like kinds bind the single value under their id
//   - checkboxes bind the full value list, or an explicit nil when cleared
//   - pricing binds each configured sub-field verbatim
//   - multiquestion merges its children and clears untaken followups
//   - dynamic lists decode their {field}-{index} keys into a per-index list
func (q *Question) GetData(form FormData) (map[string]any, error) {
	switch q.Kind {
	case KindMultiquestion:
		return q.multiquestionData(form)
	case KindDynamicList:
		return q.dynamicListData(form)
	case KindPricing:
		out := map[string]any{}
		for _, key := range q.FormFields() {
			if value, ok := form.Get(key); ok {
				out[key] = value
			}
		}
		return out, nil
	default:
		return q.simpleData(form), nil
	}
}

func (q *Question) simpleData(form FormData) map[string]any {
	data := map[string]any{}
	switch q.Kind {
	case KindCheckboxes, KindCheckboxTree:
		// Unchecked boxes submit nothing, so absence means "cleared" and is
		// bound as an explicit nil.
		if values := form.List(q.ID); len(values) > 0 {
			data[q.ID] = append([]any(nil), values...)
		} else {
			data[q.ID] = nil
		}
	default:
		if value, ok := form.Get(q.ID); ok {
			data[q.ID] = value
		}
	}

	if q.AssuranceApproach == "" {
		return data
	}

	value, bound := data[q.ID]
	wrapped := map[string]any{}
	if bound && value != nil {
		wrapped["value"] = value
	}
	if assurance, ok := form.Get(q.ID + "--assurance"); ok {
		wrapped["assurance"] = assurance
	}
	// Nothing submitted at all means no placeholder, not an empty wrapper.
	// Checkbox kinds always bind their key (absence means "cleared"), so
	// their wrapper survives even when empty.
	if len(wrapped) == 0 && !bound {
		return map[string]any{}
	}
	return map[string]any{q.ID: wrapped}
}

func (q *Question) multiquestionData(form FormData) (map[string]any, error) {
	out := map[string]any{}
	for _, child := range q.Questions {
		childData, err := child.GetData(form)
		if err != nil {
			return nil, err
		}
		for key, value := range childData {
			out[key] = value
		}
	}
	q.nullUntakenFollowups(out)
	return out, nil
}

// nullUntakenFollowups clears every followup target whose trigger value was
// not chosen: the dependent fields are bound as explicit nils so stale
// answers do not survive a change of branch. Taken branches are left alone.
func (q *Question) nullUntakenFollowups(data map[string]any) {
	for _, child := range q.Questions {
		for _, followup := range child.Followups {
			triggered := false
			for _, submitted := range listify(data[child.ID]) {
				if memberOf(followup.Values, submitted) {
					triggered = true
					break
				}
			}
			if triggered {
				continue
			}
			target := q.GetQuestion(followup.ID)
			if target == nil || target == q {
				continue
			}
			for _, field := range target.FormFields() {
				data[field] = nil
			}
		}
	}
}

func listify(value any) []any {
	if list, ok := value.([]any); ok {
		return list
	}
	return []any{value}
}

type dynamicEntry struct {
	index int
	field string
	value any
}

func (q *Question) dynamicListData(form FormData) (map[string]any, error) {
	keys := make([]string, 0, len(form))
	for key := range form {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := []dynamicEntry{}
	for _, key := range keys {
		field := key
		if i := strings.LastIndex(key, "-"); i >= 0 {
			field = key[:i]
		}
		if !q.Has(field) {
			continue
		}
		suffix := key
		if i := strings.LastIndex(key, "-"); i >= 0 {
			suffix = key[i+1:]
		}
		index, err := strconv.Atoi(suffix)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedSubmission, key)
		}
		value, _ := form.Get(key)
		entries = append(entries, dynamicEntry{index: index, field: field, value: value})
	}

	if len(entries) == 0 {
		return map[string]any{q.ID: []map[string]any{}}, nil
	}
	if !q.filtered {
		return nil, ErrNotFiltered
	}

	perIndex := make([]map[string]any, len(q.items))
	for i := range perIndex {
		perIndex[i] = map[string]any{}
	}
	for _, entry := range entries {
		if entry.index < 0 || entry.index >= len(perIndex) {
			continue
		}
		perIndex[entry.index][entry.field] = entry.value
	}

	for _, answer := range perIndex {
		q.nullUntakenFollowups(answer)
		for field, value := range answer {
			if value == nil || value == "" {
				delete(answer, field)
			}
		}
	}

	return map[string]any{q.ID: perIndex}, nil
}

// UnformatData is the inverse of the dynamic list encoding: the stored
// per-index answer list is flattened back into {field}-{index} submission
// keys, and sibling non-dynamic keys pass through unchanged. For every other
// kind the stored data is returned as a copy.
func (q *Question) UnformatData(stored map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(stored))
	if q.Kind != KindDynamicList {
		for key, value := range stored {
			out[key] = value
		}
		return out, nil
	}
	if !q.filtered {
		return nil, ErrNotFiltered
	}

	for key, value := range stored {
		if key != q.ID {
			out[key] = value
			continue
		}
		for index, answer := range answerList(value) {
			for _, child := range q.Questions {
				if fieldValue, ok := answer[child.ID]; ok {
					out[indexedField(child.ID, index)] = fieldValue
				}
			}
		}
	}
	return out, nil
}

func answerList(value any) []map[string]any {
	switch v := value.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if answer, ok := item.(map[string]any); ok {
				out = append(out, answer)
			} else {
				out = append(out, map[string]any{})
			}
		}
		return out
	default:
		return nil
	}
}

func indexedField(id string, index int) string {
	return fmt.Sprintf("%s-%d", id, index)
}
