package prompt

import (
	"context"
	"fmt"

	"github.com/goliatone/go-questions/pkg/question"
)

// Option configures a Runner.
type Option func(*Runner)

// WithDriver swaps the terminal driver, typically for tests.
func WithDriver(driver Driver) Option {
	return func(r *Runner) {
		r.driver = driver
	}
}

// Runner walks a filtered question tree and collects answers into form data
// ready for data binding.
type Runner struct {
	driver Driver
}

// New constructs a runner with defaults (survey driver).
func New(options ...Option) *Runner {
	r := &Runner{driver: newSurveyDriver()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Ask prompts for every field of the question and returns the collected
// submission. Followup targets are only asked when their trigger value was
// chosen; skipped and unanswered optional fields stay absent from the result,
// matching what a browser form would submit.
func (r *Runner) Ask(ctx context.Context, q *question.Question) (question.FormData, error) {
	form := question.FormData{}
	if err := r.ask(ctx, q, q.ID, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (r *Runner) ask(ctx context.Context, q *question.Question, key string, form question.FormData) error {
	label, err := q.Label()
	if err != nil {
		return err
	}
	hint := ""
	if q.Hint != nil {
		if hint, err = q.Hint.Value(); err != nil {
			return err
		}
	}

	switch q.Kind {
	case question.KindBoolean:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Help: hint})
		if err != nil {
			return err
		}
		form.Add(key, answer)

	case question.KindRadios:
		options := optionLabels(q.Options)
		index, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: options, Help: hint})
		if err != nil {
			return err
		}
		if index >= 0 && index < len(q.Options) {
			form.Add(key, q.Options[index].OptionValue())
		}

	case question.KindCheckboxes:
		if err := r.askMulti(ctx, q.Options, label, hint, key, form); err != nil {
			return err
		}

	case question.KindCheckboxTree:
		if err := r.askMulti(ctx, leafOptions(q.Options), label, hint, key, form); err != nil {
			return err
		}

	case question.KindTextboxLarge:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Help: hint})
		if err != nil {
			return err
		}
		if answer != "" {
			form.Add(key, answer)
		}

	case question.KindPricing:
		for _, field := range q.FormFields() {
			answer, err := r.driver.Input(ctx, InputConfig{
				Message: fmt.Sprintf("%s (%s)", label, field),
				Help:    hint,
			})
			if err != nil {
				return err
			}
			if answer != "" {
				form.Add(field, answer)
			}
		}

	case question.KindMultiquestion:
		if err := r.askGroup(ctx, q, q.Questions, func(id string) string { return id }, form); err != nil {
			return err
		}

	case question.KindDynamicList:
		if !q.Filtered() {
			return ErrNotFiltered
		}
		items := q.Items()
		for index, set := range q.ItemQuestions() {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s %d: %v", label, index+1, items[index])); err != nil {
				return err
			}
			keyFor := func(id string) string { return fmt.Sprintf("%s-%d", id, index) }
			if err := r.askGroup(ctx, q, set, keyFor, form); err != nil {
				return err
			}
		}

	default:
		answer, err := r.driver.Input(ctx, InputConfig{Message: label, Help: hint})
		if err != nil {
			return err
		}
		if answer != "" {
			form.Add(key, answer)
		}
	}

	if q.AssuranceApproach != "" {
		assurance, err := r.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("%s (assurance)", label)})
		if err != nil {
			return err
		}
		if assurance != "" {
			form.Add(key+"--assurance", assurance)
		}
	}

	return nil
}

// askGroup prompts a set of sibling questions in order, skipping followup
// targets whose trigger value was not just collected.
func (r *Runner) askGroup(ctx context.Context, parent *question.Question, children []*question.Question, keyFor func(string) string, form question.FormData) error {
	type trigger struct {
		id     string
		values []any
	}
	triggers := map[string]trigger{}
	for _, child := range parent.Questions {
		for _, followup := range child.Followups {
			triggers[followup.ID] = trigger{id: child.ID, values: followup.Values}
		}
	}

	for _, child := range children {
		if t, ok := triggers[child.ID]; ok && !triggerTaken(form, keyFor(t.id), t.values) {
			continue
		}
		if err := r.ask(ctx, child, keyFor(child.ID), form); err != nil {
			return err
		}
	}
	return nil
}

func triggerTaken(form question.FormData, key string, values []any) bool {
	for _, collected := range form.List(key) {
		for _, value := range values {
			if collected == value {
				return true
			}
		}
	}
	return false
}

func (r *Runner) askMulti(ctx context.Context, options []question.Option, label, hint, key string, form question.FormData) error {
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message: label,
		Options: optionLabels(options),
		Help:    hint,
	})
	if err != nil {
		return err
	}
	for _, index := range indices {
		if index >= 0 && index < len(options) {
			form.Add(key, options[index].OptionValue())
		}
	}
	return nil
}

func optionLabels(options []question.Option) []string {
	labels := make([]string, 0, len(options))
	for _, option := range options {
		labels = append(labels, option.Label)
	}
	return labels
}

// leafOptions flattens an option forest down to its selectable leaves.
func leafOptions(options []question.Option) []question.Option {
	out := []question.Option{}
	for _, option := range options {
		if len(option.Options) == 0 {
			out = append(out, option)
			continue
		}
		out = append(out, leafOptions(option.Options)...)
	}
	return out
}
