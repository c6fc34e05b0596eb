package question

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FieldError identifies a failed validation on a submission field. Dynamic
// list errors address either one field of one entry (ChildField plus Index)
// or the list as a whole.
type FieldError struct {
	Field      string
	ChildField string
	Index      *int
	Code       string
}

// ValidationMessage is the resolved, display-ready form of a field error.
type ValidationMessage struct {
	InputName string `json:"input_name"`
	Message   string `json:"message"`
	Question  string `json:"question"`
}

const (
	answerRequiredMessage = "You need to answer this question."
	genericErrorMessage   = "There was a problem with the answer to this question."
)

// ErrorMessages resolves raw field errors against this question into ordered
// display messages keyed by input name. Errors addressing fields the question
// does not own are dropped; input order is preserved for the rest. Message
// text comes from the owning question's validations when a matching name is
// declared, otherwise from the built-in defaults.
func (q *Question) ErrorMessages(fieldErrors []FieldError) (*orderedmap.OrderedMap[string, ValidationMessage], error) {
	out := orderedmap.New[string, ValidationMessage]()

	for _, fieldError := range fieldErrors {
		if fieldError.Field != q.ID && !q.Has(fieldError.Field) {
			continue
		}

		if q.Kind == KindDynamicList {
			message, err := q.dynamicListMessage(fieldError)
			if err != nil {
				return nil, err
			}
			out.Set(message.InputName, message)
			continue
		}

		target := q.GetQuestion(fieldError.Field)
		if target == nil {
			target = q
		}
		label, err := target.Label()
		if err != nil {
			return nil, err
		}
		out.Set(fieldError.Field, ValidationMessage{
			InputName: fieldError.Field,
			Message:   target.resolveMessage(fieldError.Code),
			Question:  label,
		})
	}

	return out, nil
}

func (q *Question) dynamicListMessage(fieldError FieldError) (ValidationMessage, error) {
	if !q.filtered {
		return ValidationMessage{}, ErrNotFiltered
	}

	// An error on the list id itself addresses the whole answer list.
	if fieldError.ChildField == "" || fieldError.Index == nil {
		label, err := q.Label()
		if err != nil {
			return ValidationMessage{}, err
		}
		return ValidationMessage{
			InputName: q.ID,
			Message:   q.resolveMessage(fieldError.Code),
			Question:  label,
		}, nil
	}

	index := *fieldError.Index
	target := q.GetQuestion(fieldError.ChildField)
	if index >= 0 && index < len(q.itemSets) {
		for _, child := range q.itemSets[index] {
			if child.ID == fieldError.ChildField {
				target = child
				break
			}
		}
	}
	if target == nil {
		target = q
	}
	label, err := target.Label()
	if err != nil {
		return ValidationMessage{}, err
	}
	return ValidationMessage{
		InputName: indexedField(fieldError.ChildField, index),
		Message:   target.resolveMessage(fieldError.Code),
		Question:  label,
	}, nil
}

func (q *Question) resolveMessage(code string) string {
	for _, validation := range q.Validations {
		if validation.Name == code {
			return validation.Message
		}
	}
	if code == "answer_required" {
		return answerRequiredMessage
	}
	return genericErrorMessage
}
