package question

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-questions/pkg/template"
)

// Filter binds the question to a context: dependency conditions are
// evaluated, every template field is rendered, and dynamic lists expand their
// repeat source. The receiver is never mutated; the returned node is a fresh
// copy. A nil node with a nil error means a dependency condition excluded the
// question.
func (q *Question) Filter(ctx template.Context) (*Question, error) {
	for _, dep := range q.Depends {
		value, err := ctx.Lookup(dep.On)
		if err != nil {
			return nil, err
		}
		if !memberOf(dep.Being, value) {
			return nil, nil
		}
	}

	out := q.clone()
	if err := out.renderFields(ctx); err != nil {
		return nil, err
	}

	switch q.Kind {
	case KindMultiquestion:
		for _, child := range q.Questions {
			filtered, err := child.Filter(ctx)
			if err != nil {
				return nil, err
			}
			if filtered != nil {
				out.Questions = append(out.Questions, filtered)
			}
		}
	case KindDynamicList:
		itemsRaw, err := ctx.Lookup(q.DynamicField)
		if err != nil {
			return nil, err
		}
		items, ok := sequenceOf(itemsRaw)
		if !ok {
			return nil, fmt.Errorf("question: %s: dynamic_field %q must resolve to a sequence", q.ID, q.DynamicField)
		}

		out.items = items
		out.filtered = true
		// Template children stay unrendered; per-item copies carry the
		// rendered labels.
		for _, child := range q.Questions {
			out.Questions = append(out.Questions, child.clone())
		}
		for _, item := range items {
			itemCtx := ctx.With("item", item)
			set := []*Question{}
			for _, child := range q.Questions {
				filtered, err := child.Filter(itemCtx)
				if err != nil {
					return nil, err
				}
				if filtered != nil {
					set = append(set, filtered)
				}
			}
			out.itemSets = append(out.itemSets, set)
		}
	}

	return out, nil
}

func (q *Question) renderFields(ctx template.Context) error {
	for _, field := range []*template.Field{q.Name, q.Question, q.Hint, q.QuestionAdvice} {
		if field == nil {
			continue
		}
		if _, err := field.Render(ctx); err != nil {
			return err
		}
	}
	// Only top-level option descriptions render; nested option sub-trees are
	// plain labels and values.
	for i := range q.Options {
		description := q.Options[i].Description
		if description == nil {
			continue
		}
		rendered, err := description.Render(ctx)
		if err != nil {
			return err
		}
		q.Options[i].Description = template.Prerendered(description.Source(), sanitizeMarkup(rendered))
	}
	return nil
}

// clone copies the question with fresh unrendered template fields. Children
// are not copied; Filter rebuilds them per kind.
func (q *Question) clone() *Question {
	out := *q
	out.Name = q.Name.Clone()
	out.Question = q.Question.Clone()
	out.Hint = q.Hint.Clone()
	out.QuestionAdvice = q.QuestionAdvice.Clone()
	out.Depends = append([]Depends(nil), q.Depends...)
	out.Options = cloneOptions(q.Options)
	out.Followups = append([]Followup(nil), q.Followups...)
	out.Validations = append([]Validation(nil), q.Validations...)
	out.OptionalFields = append([]string(nil), q.OptionalFields...)
	out.BeforeSummaryValue = append([]string(nil), q.BeforeSummaryValue...)
	out.Questions = nil
	out.items = nil
	out.itemSets = nil
	out.filtered = false
	if q.Fields != nil {
		out.Fields = make(map[string]string, len(q.Fields))
		for role, key := range q.Fields {
			out.Fields[role] = key
		}
	}
	if q.Kind != KindMultiquestion && q.Kind != KindDynamicList {
		for _, child := range q.Questions {
			out.Questions = append(out.Questions, child.clone())
		}
	}
	return &out
}

func cloneOptions(options []Option) []Option {
	if options == nil {
		return nil
	}
	out := make([]Option, len(options))
	for i, option := range options {
		out[i] = Option{
			Label:       option.Label,
			Value:       option.Value,
			Description: option.Description.Clone(),
			Options:     cloneOptions(option.Options),
		}
	}
	return out
}

func memberOf(values []any, candidate any) bool {
	for _, value := range values {
		if sameValue(value, candidate) {
			return true
		}
	}
	return false
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

func sequenceOf(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out, true
	default:
		return nil, false
	}
}

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// sanitizeMarkup strips unsafe markup from rendered option descriptions,
// which may carry embedded HTML destined for UI layers.
func sanitizeMarkup(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	markupPolicyOnce.Do(func() {
		markupPolicy = bluemonday.UGCPolicy()
	})
	return markupPolicy.Sanitize(raw)
}
