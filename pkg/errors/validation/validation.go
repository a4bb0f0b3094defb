// Package validation collects field-level problems so a caller can report
// all of them in one error.
package validation

import (
	"fmt"
	"strings"
)

type ValidationErrors struct {
	subject string
	errors  []string
}

// New starts an empty collection whose Error text is headed "invalid <subject>".
func New(subject string) *ValidationErrors {
	return &ValidationErrors{subject: subject}
}

func (v *ValidationErrors) Add(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

// AddError records a problem with the field at path.
func (v *ValidationErrors) AddError(path, message string) {
	v.errors = append(v.errors, fmt.Sprintf("%s %s", path, message))
}

func (v *ValidationErrors) Error() string {
	if len(v.errors) == 0 {
		return ""
	}
	head := "validation failed"
	if v.subject != "" {
		head = "invalid " + v.subject
	}
	return head + ":\n  - " + strings.Join(v.errors, "\n  - ")
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *ValidationErrors) Count() int {
	return len(v.errors)
}

// Errors returns the recorded problems in the order they were added.
func (v *ValidationErrors) Errors() []string {
	return v.errors
}

// Err returns the collection as an error, or nil when nothing was recorded.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}
