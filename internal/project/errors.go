package project

import (
	"fmt"
	"strings"
)

// ConfigError is an invalid or contradictory request. No remote call has
// been made when it is returned.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid issue request: %s: %s", e.Field, e.Reason)
}

// SchemaError means the project does not have the expected field layout or
// could not be found.
type SchemaError struct {
	Owner   string
	Project int
	Field   string
	Reason  string
	Err     error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("project %s/%d", e.Owner, e.Project)
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

type UnknownOptionError struct {
	Field Field
	Value string
	Valid []string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown %s option %q (valid: %s)", e.Field, e.Value, quoteAll(e.Valid))
}

type UnknownIterationError struct {
	Selector  IterationSelector
	Window    Window
	Available []string
}

func (e *UnknownIterationError) Error() string {
	available := "none"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("no iteration covers %s (%s, window %s); available: %s",
		e.Window.Label, e.Selector, e.Window, available)
}

type CreateIssueError struct {
	Repo string
	Err  error
}

func (e *CreateIssueError) Error() string {
	return fmt.Sprintf("create issue in %s: %v", e.Repo, e.Err)
}

func (e *CreateIssueError) Unwrap() error { return e.Err }

// AddToProjectError is returned after the issue was created. The issue is
// not rolled back.
type AddToProjectError struct {
	IssueURL string
	Project  int
	Err      error
}

func (e *AddToProjectError) Error() string {
	return fmt.Sprintf("add %s to project %d: %v", e.IssueURL, e.Project, e.Err)
}

func (e *AddToProjectError) Unwrap() error { return e.Err }

// FieldSetError records why one field was left unset. Err is either the
// mapping failure or the mutation failure.
type FieldSetError struct {
	Field Field
	Value string
	Err   error
}

func (e *FieldSetError) Error() string {
	return fmt.Sprintf("set %s to %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldSetError) Unwrap() error { return e.Err }

type TemplateError struct {
	Template    string
	Placeholder string
	Reason      string
}

func (e *TemplateError) Error() string {
	if e.Placeholder != "" {
		return fmt.Sprintf("title template %q: %s {%s} (known: %s)",
			e.Template, e.Reason, e.Placeholder, strings.Join(Placeholders, ", "))
	}
	return fmt.Sprintf("title template %q: %s", e.Template, e.Reason)
}

func quoteAll(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
