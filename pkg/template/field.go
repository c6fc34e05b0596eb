// Package template provides the lazily rendered text fields used by question
// definitions, plus the context mapping they are rendered against. A field is
// a two-state value: unrendered (source only) or rendered (source plus a
// cached output). Filtering a question tree is the only transition between
// the two states.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"
)

var (
	// ErrNotRendered is returned when a field's rendered value is accessed
	// before the field has been rendered under a context.
	ErrNotRendered = errors.New("template: value accessed before render")

	// ErrMissingContextKey is returned when a render or lookup references a
	// path absent from the supplied context. No default is substituted.
	ErrMissingContextKey = errors.New("template: missing context key")
)

// Root identifiers referenced by {{ ... }} expressions, used for the strict
// context check before rendering.
var expressionIdentifiers = regexp.MustCompile(`\{\{-?\s*([A-Za-z_][A-Za-z0-9_.]*)`)

// Field wraps a string that may contain embedded expressions referencing a
// context. The original source is always retrievable; the rendered value only
// after Render has been called, except for tag-free sources which read as
// their own rendered value.
type Field struct {
	source   string
	rendered string
	done     bool
}

// New constructs an unrendered field from its source text.
func New(source string) *Field {
	return &Field{source: source}
}

// Prerendered constructs a field that already holds a rendered value, keeping
// the original source retrievable. Filtering uses it to attach post-processed
// render output (for example sanitized markup) to a fresh tree.
func Prerendered(source, rendered string) *Field {
	return &Field{source: source, rendered: rendered, done: true}
}

// Source returns the original, unrendered text regardless of render state.
func (f *Field) Source() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Rendered reports whether the field holds a cached rendered value.
func (f *Field) Rendered() bool {
	return f != nil && f.done
}

// Render evaluates the source against the context and caches the result.
// Rendering is idempotent for a fixed context: once a value is cached,
// subsequent calls return it unchanged. Referencing a context path that is
// absent fails with ErrMissingContextKey rather than substituting an empty
// string.
func (f *Field) Render(ctx Context) (string, error) {
	if f == nil {
		return "", nil
	}
	if f.done {
		return f.rendered, nil
	}

	if err := checkIdentifiers(f.source, ctx); err != nil {
		return "", err
	}

	if !hasTemplateTags(f.source) {
		f.rendered = f.source
		f.done = true
		return f.rendered, nil
	}

	tmpl, err := pongo2.FromString(f.source)
	if err != nil {
		return "", fmt.Errorf("template: parse %q: %w", f.source, err)
	}
	out, err := tmpl.Execute(pongo2.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("template: render %q: %w", f.source, err)
	}

	f.rendered = out
	f.done = true
	return f.rendered, nil
}

// Value returns the rendered text. A tag-free field reads as its own source
// even before rendering; a templated field that was never rendered fails with
// ErrNotRendered.
func (f *Field) Value() (string, error) {
	if f == nil {
		return "", nil
	}
	if f.done {
		return f.rendered, nil
	}
	if !hasTemplateTags(f.source) {
		return f.source, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotRendered, f.source)
}

// Clone returns a fresh unrendered field with the same source. Filtering
// clones fields before rendering so the unfiltered tree is never mutated.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	return New(f.source)
}

func hasTemplateTags(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func checkIdentifiers(source string, ctx Context) error {
	for _, match := range expressionIdentifiers.FindAllStringSubmatch(source, -1) {
		if len(match) < 2 {
			continue
		}
		path := match[1]
		if isKeyword(path) {
			continue
		}
		if !ctx.Has(path) {
			return fmt.Errorf("template: render %q: %w: %q", source, ErrMissingContextKey, path)
		}
	}
	return nil
}

func isKeyword(identifier string) bool {
	switch strings.ToLower(identifier) {
	case "true", "false", "none", "nil", "null":
		return true
	default:
		return false
	}
}
