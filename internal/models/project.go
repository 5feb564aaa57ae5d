package models

import "time"

type FieldKind string

const (
	KindSingleSelect FieldKind = "SINGLE_SELECT"
	KindIteration    FieldKind = "ITERATION"
	KindOther        FieldKind = "OTHER"
)

type ProjectField struct {
	ID         string
	Name       string
	Kind       FieldKind
	Options    []Option
	Iterations []Iteration
}

// Option is one choice of a single-select field, in project order.
type Option struct {
	ID   string
	Name string
}

// Iteration is one window of an iteration field. Duration is in days.
type Iteration struct {
	ID       string
	Title    string
	Start    time.Time
	Duration int
}

// End returns the first day after the iteration.
func (i Iteration) End() time.Time {
	return i.Start.AddDate(0, 0, i.Duration)
}

// Covers reports whether day falls inside [Start, End).
func (i Iteration) Covers(day time.Time) bool {
	return !day.Before(i.Start) && day.Before(i.End())
}

// ResolvedFieldValue is the only shape the field-value mutation accepts.
type ResolvedFieldValue struct {
	FieldID string
	Kind    FieldKind
	ValueID string
}
