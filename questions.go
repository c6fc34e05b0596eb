// Package questions is the public entry point for loading question
// definitions and binding them to contexts, form submissions and stored
// answers. The heavy lifting lives in pkg/question and pkg/template; this
// package keeps the common path to a couple of calls.
package questions

import (
	"fmt"
	"os"

	"github.com/goliatone/go-questions/pkg/question"
	"github.com/goliatone/go-questions/pkg/template"
)

// Parse decodes a question definition document (JSON or YAML).
func Parse(data []byte) (*question.Question, error) {
	return question.Parse(data)
}

// LoadFile reads and parses a question definition from disk.
func LoadFile(path string) (*question.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("questions: read %s: %w", path, err)
	}
	return question.Parse(raw)
}

// NewContext wraps a plain map as a render context.
func NewContext(values map[string]any) template.Context {
	return template.Context(values)
}

// FormValues wraps a flat map as submitted form data. Slice values become
// multi-valued entries.
func FormValues(values map[string]any) question.FormData {
	return question.Values(values)
}
