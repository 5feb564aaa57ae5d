package project

import (
	"fmt"
	"time"

	"github.com/Ilia01/ghcpi/internal/models"
)

// MatchPolicy decides what happens when no remote iteration covers the
// computed window start.
type MatchPolicy int

const (
	// MatchStrict fails with UnknownIterationError.
	MatchStrict MatchPolicy = iota
	// MatchNearestFuture picks the earliest iteration starting after the target.
	MatchNearestFuture
)

func ParseMatchPolicy(value string) (MatchPolicy, error) {
	switch value {
	case "", "strict":
		return MatchStrict, nil
	case "nearest":
		return MatchNearestFuture, nil
	}
	return 0, fmt.Errorf("iteration fallback must be strict or nearest, got %q", value)
}

func (p MatchPolicy) String() string {
	if p == MatchNearestFuture {
		return "nearest"
	}
	return "strict"
}

// Mapper turns assignments into the opaque ids the remote API expects.
// It does no I/O.
type Mapper struct {
	Schedule Schedule
	AsOf     time.Time
	Policy   MatchPolicy
}

func (m Mapper) Map(a Assignment, schema *Schema) (models.ResolvedFieldValue, error) {
	field, ok := schema.Field(a.Field)
	if !ok {
		return models.ResolvedFieldValue{}, &SchemaError{Field: a.Field.String(), Reason: "field not found"}
	}
	if a.Field == FieldIteration {
		return m.mapIteration(a, field)
	}
	return mapOption(a, field)
}

func mapOption(a Assignment, field models.ProjectField) (models.ResolvedFieldValue, error) {
	valid := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		if opt.Name == a.Option {
			return models.ResolvedFieldValue{FieldID: field.ID, Kind: models.KindSingleSelect, ValueID: opt.ID}, nil
		}
		valid = append(valid, opt.Name)
	}
	return models.ResolvedFieldValue{}, &UnknownOptionError{Field: a.Field, Value: a.Option, Valid: valid}
}

func (m Mapper) mapIteration(a Assignment, field models.ProjectField) (models.ResolvedFieldValue, error) {
	window := m.Schedule.Window(a.Selector, m.AsOf)

	var nearest *models.Iteration
	for i := range field.Iterations {
		it := field.Iterations[i]
		if it.Covers(window.Start) {
			return models.ResolvedFieldValue{FieldID: field.ID, Kind: models.KindIteration, ValueID: it.ID}, nil
		}
		if it.Start.After(window.Start) && (nearest == nil || it.Start.Before(nearest.Start)) {
			nearest = &field.Iterations[i]
		}
	}
	if m.Policy == MatchNearestFuture && nearest != nil {
		return models.ResolvedFieldValue{FieldID: field.ID, Kind: models.KindIteration, ValueID: nearest.ID}, nil
	}

	available := make([]string, 0, len(field.Iterations))
	for _, it := range field.Iterations {
		available = append(available, fmt.Sprintf("%s (%s..%s)",
			it.Title, it.Start.Format(DateLayout), it.End().AddDate(0, 0, -1).Format(DateLayout)))
	}
	return models.ResolvedFieldValue{}, &UnknownIterationError{Selector: a.Selector, Window: window, Available: available}
}
