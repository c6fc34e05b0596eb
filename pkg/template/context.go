package template

import (
	"fmt"
	"strings"
)

// Context carries the caller-supplied data used to resolve dependency
// conditions, dynamic repeat sources, and field expressions. Values are
// looked up by dotted path ("lot", "context.field").
type Context map[string]any

// Lookup resolves a dotted path against the context. A missing path returns
// an error wrapping ErrMissingContextKey; callers are expected to supply a
// complete context for every path a definition references.
func (c Context) Lookup(path string) (any, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("template: %w: empty path", ErrMissingContextKey)
	}

	// Prefer an exact match for dotted keys before traversing.
	if value, ok := c[trimmed]; ok {
		return value, nil
	}

	var current any = map[string]any(c)
	for _, part := range strings.Split(trimmed, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("template: %w: %q", ErrMissingContextKey, path)
		}
		switch typed := current.(type) {
		case Context:
			next, ok := typed[part]
			if !ok {
				return nil, fmt.Errorf("template: %w: %q", ErrMissingContextKey, path)
			}
			current = next
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, fmt.Errorf("template: %w: %q", ErrMissingContextKey, path)
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, fmt.Errorf("template: %w: %q", ErrMissingContextKey, path)
			}
			current = next
		default:
			return nil, fmt.Errorf("template: %w: %q", ErrMissingContextKey, path)
		}
	}
	return current, nil
}

// Has reports whether the dotted path resolves against the context.
func (c Context) Has(path string) bool {
	_, err := c.Lookup(path)
	return err == nil
}

// With returns a copy of the context with an extra top-level binding. The
// receiver is never mutated, so a shared context can be extended per item
// without locking.
func (c Context) With(key string, value any) Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[key] = value
	return out
}
