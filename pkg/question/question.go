// Package question implements the declarative question model: a typed,
// optionally nested tree of question nodes that can be bound to a context
// (Filter), to submitted form data (GetData/UnformatData), and to stored
// answer data (Summary, ErrorMessages). Nodes are immutable after
// construction; Filter always returns a fresh copy, so one loaded definition
// can serve concurrent requests with different contexts.
package question

import (
	"errors"

	"github.com/goliatone/go-questions/pkg/template"
)

// Kind enumerates the closed set of question variants.
type Kind string

const (
	KindText          Kind = "text"
	KindTextboxLarge  Kind = "textbox_large"
	KindNumber        Kind = "number"
	KindBoolean       Kind = "boolean"
	KindDate          Kind = "date"
	KindPricing       Kind = "pricing"
	KindRadios        Kind = "radios"
	KindCheckboxes    Kind = "checkboxes"
	KindCheckboxTree  Kind = "checkbox_tree"
	KindMultiquestion Kind = "multiquestion"
	KindDynamicList   Kind = "dynamic_list"
)

var (
	// ErrNotFiltered is returned when data binding or summarisation is
	// attempted on a dynamic list that was never filtered; without a context
	// the repeat count and per-item labels are undefined.
	ErrNotFiltered = errors.New("question: dynamic list must be filtered before data can be processed")

	// ErrMalformedSubmission is returned when a dynamic list submission key
	// does not carry a numeric index suffix.
	ErrMalformedSubmission = errors.New("question: malformed dynamic list submission key")
)

// Depends is a single visibility condition: the value found at the On context
// path must be a member of Being. All conditions on a question must match.
type Depends struct {
	On    string
	Being []any
}

// Followup declares that the question with the given ID only applies when
// this question's submitted value is one of Values.
type Followup struct {
	ID     string
	Values []any
}

// Validation overrides the message for a single error code on a question.
type Validation struct {
	Name    string
	Message string
}

// Option is one entry of a choice question. Options form an ordered forest:
// checkbox trees nest further options under each entry.
type Option struct {
	Label       string          `json:"label"`
	Value       string          `json:"value,omitempty"`
	Description *template.Field `json:"-"`
	Options     []Option        `json:"options"`
}

// OptionValue returns the submission value of the option, falling back to the
// label when no explicit value is declared.
func (o Option) OptionValue() string {
	if o.Value != "" {
		return o.Value
	}
	return o.Label
}

// Question is one node of the question tree. A single struct carries the
// union of per-kind attributes; behaviour dispatches on Kind.
type Question struct {
	ID   string
	Kind Kind

	Name           *template.Field
	Question       *template.Field
	Hint           *template.Field
	QuestionAdvice *template.Field

	Optional  bool
	Depends   []Depends
	Options   []Option
	Followups []Followup
	Questions []*Question

	// DynamicField is the context path yielding the repeat source sequence.
	// Dynamic lists only.
	DynamicField string

	// Fields maps pricing roles (minimum_price, maximum_price, ...) to their
	// submission keys. OptionalFields lists roles excluded from
	// RequiredFormFields. Pricing only.
	Fields         map[string]string
	OptionalFields []string

	AssuranceApproach  string
	Unit               string
	UnitPosition       string
	BeforeSummaryValue []string
	MaxLengthInWords   int
	Validations        []Validation

	filtered bool
	items    []any
	itemSets [][]*Question
}

// Canonical ordering for pricing submission keys.
var pricingRoles = []string{
	"price",
	"minimum_price",
	"maximum_price",
	"price_unit",
	"price_interval",
	"hours_for_price",
}

// Label returns the display text for the question: name when present,
// question otherwise.
func (q *Question) Label() (string, error) {
	if q.Name != nil {
		return q.Name.Value()
	}
	if q.Question != nil {
		return q.Question.Value()
	}
	return "", nil
}

// GetQuestion returns this node if its id matches, else searches children
// (including a dynamic list's template children) recursively.
func (q *Question) GetQuestion(id string) *Question {
	if q.ID == id {
		return q
	}
	for _, child := range q.Questions {
		if found := child.GetQuestion(id); found != nil {
			return found
		}
	}
	return nil
}

// QuestionIDs returns the ordered leaf-level question ids, flattening nested
// containers. A non-empty kind restricts the result to that variant.
func (q *Question) QuestionIDs(kind Kind) []string {
	switch q.Kind {
	case KindMultiquestion, KindDynamicList:
		ids := []string{}
		for _, child := range q.Questions {
			ids = append(ids, child.QuestionIDs(kind)...)
		}
		return ids
	default:
		if kind == "" || kind == q.Kind {
			return []string{q.ID}
		}
		return []string{}
	}
}

// FormFields returns the ordered submission keys this question contributes.
// A filtered dynamic list contributes its expanded per-index keys; an
// unfiltered one only its own id, since the repeat shape is unknown without
// a context.
func (q *Question) FormFields() []string {
	switch q.Kind {
	case KindPricing:
		fields := []string{}
		for _, role := range pricingRoles {
			if key, ok := q.Fields[role]; ok && key != "" {
				fields = append(fields, key)
			}
		}
		return fields
	case KindMultiquestion:
		fields := []string{}
		for _, child := range q.Questions {
			fields = append(fields, child.FormFields()...)
		}
		return fields
	case KindDynamicList:
		if !q.filtered {
			return []string{q.ID}
		}
		fields := []string{}
		for index := range q.items {
			for _, child := range q.Questions {
				fields = append(fields, indexedField(child.ID, index))
			}
		}
		return fields
	default:
		return []string{q.ID}
	}
}

// RequiredFormFields returns the subset of FormFields excluding fields that
// belong to optional questions (or optional pricing roles).
func (q *Question) RequiredFormFields() []string {
	if q.Optional {
		return []string{}
	}
	switch q.Kind {
	case KindPricing:
		optional := make(map[string]struct{}, len(q.OptionalFields))
		for _, role := range q.OptionalFields {
			optional[role] = struct{}{}
		}
		fields := []string{}
		for _, role := range pricingRoles {
			if _, skip := optional[role]; skip {
				continue
			}
			if key, ok := q.Fields[role]; ok && key != "" {
				fields = append(fields, key)
			}
		}
		return fields
	case KindMultiquestion:
		fields := []string{}
		for _, child := range q.Questions {
			fields = append(fields, child.RequiredFormFields()...)
		}
		return fields
	default:
		return q.FormFields()
	}
}

// Has reports whether the given id is a direct field of this question: one of
// its submission keys for simple and pricing questions, a direct child id for
// containers.
func (q *Question) Has(field string) bool {
	switch q.Kind {
	case KindMultiquestion, KindDynamicList:
		for _, child := range q.Questions {
			if child.ID == field {
				return true
			}
		}
		return false
	case KindPricing:
		for _, key := range q.Fields {
			if key == field {
				return true
			}
		}
		return false
	default:
		return q.ID == field
	}
}

// ValuesFollowup inverts the followup declarations into a trigger value to
// dependent-id mapping, preserving declaration order of the ids.
func (q *Question) ValuesFollowup() map[any][]string {
	if len(q.Followups) == 0 {
		return nil
	}
	out := make(map[any][]string)
	for _, followup := range q.Followups {
		for _, value := range followup.Values {
			out[value] = append(out[value], followup.ID)
		}
	}
	return out
}

// Filtered reports whether this node was produced by Filter.
func (q *Question) Filtered() bool {
	return q.filtered
}

// Items returns the resolved repeat source of a filtered dynamic list.
func (q *Question) Items() []any {
	return q.items
}

// ItemQuestions returns one rendered child set per repeat item of a filtered
// dynamic list, in index order.
func (q *Question) ItemQuestions() [][]*Question {
	return q.itemSets
}
