package question

import (
	"fmt"
	"strings"
)

// Summary pairs a question with stored answer data and exposes the derived
// display value. Multiquestions summarise their children eagerly so callers
// can walk the tree without re-threading the answer data.
type Summary struct {
	*Question

	data     map[string]any
	value    any
	children []*Summary
}

// Summarise binds stored answer data to the question. Dynamic lists must be
// filtered first; the repeat shape is part of the summary.
func (q *Question) Summarise(data map[string]any) (*Summary, error) {
	if q.Kind == KindDynamicList && !q.filtered {
		return nil, ErrNotFiltered
	}

	s := &Summary{Question: q, data: data}
	if q.Kind == KindMultiquestion {
		for _, child := range q.Questions {
			childSummary, err := child.Summarise(data)
			if err != nil {
				return nil, err
			}
			s.children = append(s.children, childSummary)
		}
	}

	value, err := s.computeValue()
	if err != nil {
		return nil, err
	}
	s.value = value
	return s, nil
}

// Value returns the display value for the answer. The shape depends on the
// kind: strings for text-like and pricing questions, label slices for
// checkboxes, a pruned option forest for checkbox trees, child summaries for
// multiquestions, and the stored answer list for dynamic lists.
func (s *Summary) Value() any {
	return s.value
}

// Assurance returns the stored assurance level, or "" when the question does
// not collect assurance or none was given.
func (s *Summary) Assurance() string {
	if s.AssuranceApproach == "" {
		return ""
	}
	wrapped, ok := s.data[s.ID].(map[string]any)
	if !ok {
		return ""
	}
	return toString(wrapped["assurance"])
}

// Children returns the child summaries of a multiquestion, empty otherwise.
func (s *Summary) Children() []*Summary {
	return s.children
}

// IsEmpty reports whether the question is unanswered. Zero and false are
// answers; only missing values, empty strings and empty collections count as
// empty.
func (s *Summary) IsEmpty() bool {
	return emptyValue(s.value)
}

// AnswerRequired reports whether the question still needs an answer given the
// stored data. Optional questions never require one. A multiquestion requires
// an answer when any of its non-skipped children does; children that are
// followup targets of an untaken branch are skipped.
func (s *Summary) AnswerRequired() bool {
	if s.Optional {
		return false
	}
	if s.Kind != KindMultiquestion {
		return s.IsEmpty()
	}
	return s.multiquestionAnswerRequired()
}

func (s *Summary) multiquestionAnswerRequired() bool {
	type trigger struct {
		id     string
		values []any
	}
	triggers := map[string]trigger{}
	for _, child := range s.Questions {
		for _, followup := range child.Followups {
			triggers[followup.ID] = trigger{id: child.ID, values: followup.Values}
		}
	}

	for _, child := range s.children {
		if t, ok := triggers[child.ID]; ok {
			taken := false
			for _, stored := range listify(s.data[t.id]) {
				if memberOf(t.values, stored) {
					taken = true
					break
				}
			}
			if !taken {
				continue
			}
		}
		if child.AnswerRequired() {
			return true
		}
	}
	return false
}

func (s *Summary) computeValue() (any, error) {
	stored := s.storedValue()

	switch s.Kind {
	case KindNumber:
		return s.numberValue(stored), nil
	case KindRadios:
		return s.radiosValue(stored), nil
	case KindCheckboxes:
		return s.checkboxesValue(stored), nil
	case KindCheckboxTree:
		return s.checkboxTreeValue(stored), nil
	case KindPricing:
		return s.pricingValue(), nil
	case KindMultiquestion:
		answered := []*Summary{}
		for _, child := range s.children {
			if !child.IsEmpty() {
				answered = append(answered, child)
			}
		}
		return answered, nil
	case KindDynamicList:
		if list, ok := stored.([]any); ok {
			return list, nil
		}
		if list, ok := stored.([]map[string]any); ok {
			out := make([]any, 0, len(list))
			for _, item := range list {
				out = append(out, item)
			}
			return out, nil
		}
		return []any{}, nil
	default:
		if stored == nil {
			return "", nil
		}
		return stored, nil
	}
}

// storedValue returns the raw stored answer for this question's id,
// unwrapping the assurance envelope when one is configured.
func (s *Summary) storedValue() any {
	value, ok := s.data[s.ID]
	if !ok {
		return nil
	}
	if s.AssuranceApproach != "" {
		if wrapped, ok := value.(map[string]any); ok {
			return wrapped["value"]
		}
	}
	return value
}

func (s *Summary) numberValue(stored any) any {
	if stored == nil || stored == "" {
		return ""
	}
	if s.Unit == "" {
		return stored
	}
	if s.UnitPosition == "after" {
		return fmt.Sprintf("%v%s", stored, s.Unit)
	}
	return fmt.Sprintf("%s%v", s.Unit, stored)
}

func (s *Summary) radiosValue(stored any) any {
	if stored == nil {
		return ""
	}
	selected := toString(stored)
	for _, option := range s.Options {
		if option.OptionValue() == selected {
			return option.Label
		}
	}
	return stored
}

// checkboxesValue keeps option declaration order rather than submission
// order, and prefixes any static before_summary_value entries.
func (s *Summary) checkboxesValue(stored any) []string {
	selected := selectedSet(stored)

	out := append([]string{}, s.BeforeSummaryValue...)
	for _, option := range s.Options {
		if _, ok := selected[option.OptionValue()]; ok {
			out = append(out, option.Label)
		}
	}
	return out
}

// checkboxTreeValue prunes the option forest down to the selected leaves and
// their ancestors. Selected leaves carry an empty (non-nil) child slice so
// the pruned shape is unambiguous.
func (s *Summary) checkboxTreeValue(stored any) []Option {
	selected := selectedSet(stored)
	return pruneOptions(s.Options, selected)
}

func pruneOptions(options []Option, selected map[string]struct{}) []Option {
	out := []Option{}
	for _, option := range options {
		kept := pruneOptions(option.Options, selected)
		_, isSelected := selected[option.OptionValue()]
		if len(kept) == 0 && !isSelected {
			continue
		}
		out = append(out, Option{
			Label:       option.Label,
			Value:       option.Value,
			Description: option.Description,
			Options:     kept,
		})
	}
	return out
}

func selectedSet(stored any) map[string]struct{} {
	selected := map[string]struct{}{}
	for _, value := range toAnySlice(stored) {
		selected[toString(value)] = struct{}{}
	}
	return selected
}

func (s *Summary) pricingValue() any {
	min := s.priceField("price")
	if min == "" {
		min = s.priceField("minimum_price")
	}

	if hoursKey, ok := s.Fields["hours_for_price"]; ok {
		hours := s.data[hoursKey]
		if !emptyValue(hours) && min != "" {
			return fmt.Sprintf("%v for £%s", hours, min)
		}
	}

	if min == "" {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "£%s", min)
	if max := s.priceField("maximum_price"); max != "" {
		fmt.Fprintf(&b, " to £%s", max)
	}
	if unit := s.priceField("price_unit"); unit != "" {
		fmt.Fprintf(&b, " per %s", strings.ToLower(unit))
	}
	if interval := s.priceField("price_interval"); interval != "" {
		fmt.Fprintf(&b, " per %s", strings.ToLower(interval))
	}
	return b.String()
}

func (s *Summary) priceField(role string) string {
	key, ok := s.Fields[role]
	if !ok {
		return ""
	}
	value, ok := s.data[key]
	if !ok || value == nil {
		return ""
	}
	return toString(value)
}

// emptyValue treats missing values, empty strings and empty collections as
// unanswered. Zero and false are legitimate answers.
func emptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case []Option:
		return len(v) == 0
	case []*Summary:
		return len(v) == 0
	case []map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
