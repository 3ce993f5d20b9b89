package models

import "fmt"

// MalformedSpecError reports a dependency spec that is not of the form
// ecosystem://name@version
type MalformedSpecError struct {
	Input  string
	Reason string
}

func (e *MalformedSpecError) Error() string {
	return fmt.Sprintf("malformed dependency %q: %s (expected ecosystem://name@version)", e.Input, e.Reason)
}

// AuthError reports a failed credential exchange
type AuthError struct {
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NamespaceQueryError reports a namespace whose query could not be completed.
// It is not fatal to a run.
type NamespaceQueryError struct {
	Namespace  string
	Dependency string
	Status     int
	Body       string
	Err        error
}

func (e *NamespaceQueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("query in namespace %s failed with status %d: %s", e.Namespace, e.Status, e.Body)
	}
	return fmt.Sprintf("query in namespace %s failed: %v", e.Namespace, e.Err)
}

func (e *NamespaceQueryError) Unwrap() error {
	return e.Err
}
