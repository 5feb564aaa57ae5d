package project

import (
	"fmt"

	"github.com/Ilia01/ghcpi/internal/models"
)

// Field is one of the project fields this tool binds. The set is closed.
type Field int

const (
	FieldStatus Field = iota
	FieldIteration
	FieldSize
	FieldDifficulty
	FieldType
)

// FieldOrder is the order fields are resolved and set in.
var FieldOrder = []Field{FieldStatus, FieldIteration, FieldSize, FieldDifficulty, FieldType}

// String returns the exact field name on the project board.
func (f Field) String() string {
	switch f {
	case FieldStatus:
		return "Status"
	case FieldIteration:
		return "Iteration"
	case FieldSize:
		return "Size"
	case FieldDifficulty:
		return "Difficulty"
	case FieldType:
		return "Type"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

func (f Field) Kind() models.FieldKind {
	if f == FieldIteration {
		return models.KindIteration
	}
	return models.KindSingleSelect
}

// Assignment pairs a field with the value requested for it. Option is used by
// single-select fields, Selector by the iteration field.
type Assignment struct {
	Field    Field
	Option   string
	Selector IterationSelector
}

// Value is the human-readable form used in logs and errors.
func (a Assignment) Value() string {
	if a.Field == FieldIteration {
		return a.Selector.String()
	}
	return a.Option
}

// Assignments validates req and returns its field values in FieldOrder.
// Type is included only when requested, and only for organization owners.
func Assignments(req models.IssueRequest) ([]Assignment, error) {
	sel, err := ParseSelector(req.Iteration)
	if err != nil {
		return nil, &ConfigError{Field: "iteration", Reason: err.Error()}
	}
	var out []Assignment
	for _, f := range FieldOrder {
		switch f {
		case FieldIteration:
			out = append(out, Assignment{Field: f, Selector: sel})
		case FieldType:
			if req.Type == "" {
				continue
			}
			if !req.Owner.IsOrganization() {
				return nil, &ConfigError{
					Field:  "type",
					Reason: fmt.Sprintf("issue types need an organization owner; %s is a %s", req.Owner.Login, kindName(req.Owner.Kind)),
				}
			}
			out = append(out, Assignment{Field: f, Option: req.Type})
		default:
			option := requestedOption(req, f)
			if option == "" {
				return nil, &ConfigError{Field: f.String(), Reason: "value is required"}
			}
			out = append(out, Assignment{Field: f, Option: option})
		}
	}
	return out, nil
}

func requestedOption(req models.IssueRequest, f Field) string {
	switch f {
	case FieldStatus:
		return req.Status
	case FieldSize:
		return req.Size
	case FieldDifficulty:
		return req.Difficulty
	}
	return ""
}

func kindName(kind models.OwnerKind) string {
	if kind == "" {
		return "owner of unknown kind"
	}
	return string(kind)
}

func requiredFields(assignments []Assignment) []Field {
	fields := make([]Field, 0, len(assignments))
	for _, a := range assignments {
		fields = append(fields, a.Field)
	}
	return fields
}
