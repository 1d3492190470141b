package domain

import "fmt"

// ValidationError represents user input outside the declared bounds.
// Advice is the user-facing correction text sent back to the channel.
type ValidationError struct {
	Input  string
	Advice string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Input, e.Advice)
}

// PermissionError represents an action denied by the platform
type PermissionError struct {
	Action string
	Err    error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s: %v", e.Action, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// NotFoundError represents a referenced resource that is no longer resolvable
type NotFoundError struct {
	Kind string // message, channel, category, role
	Ref  string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s: %v", e.Kind, e.Ref, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
