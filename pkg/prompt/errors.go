package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNotFiltered is returned when a question tree is asked before it was
	// bound to a context; unrendered labels cannot be shown.
	ErrNotFiltered = errors.New("prompt: question must be filtered before it can be asked")
)
