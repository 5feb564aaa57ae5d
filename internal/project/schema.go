package project

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ilia01/ghcpi/internal/models"
)

// SchemaSource is the read-only part of the remote API the resolver needs.
type SchemaSource interface {
	FindProject(ctx context.Context, owner models.Owner, number int) (string, error)
	ListProjectFields(ctx context.Context, projectID string) ([]models.ProjectField, error)
}

// Schema is the field layout of one project, keyed by field name.
type Schema struct {
	ProjectID string
	Fields    map[string]models.ProjectField
}

func (s *Schema) Field(f Field) (models.ProjectField, bool) {
	field, ok := s.Fields[f.String()]
	return field, ok
}

type schemaKey struct {
	owner  string
	number int
}

// Resolver discovers project schemas and keeps them for the rest of the run.
type Resolver struct {
	source SchemaSource
	logger *zap.Logger
	cache  map[schemaKey]*Schema
}

func NewResolver(source SchemaSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source: source,
		logger: logger,
		cache:  make(map[schemaKey]*Schema),
	}
}

// Resolve returns the schema of the owner's project and checks that every
// required field exists with the expected kind.
func (r *Resolver) Resolve(ctx context.Context, owner models.Owner, number int, required ...Field) (*Schema, error) {
	schema, err := r.fetch(ctx, owner, number)
	if err != nil {
		return nil, err
	}
	for _, f := range required {
		field, ok := schema.Field(f)
		if !ok {
			return nil, &SchemaError{Owner: owner.Login, Project: number, Field: f.String(), Reason: "field not found"}
		}
		if field.Kind != f.Kind() {
			return nil, &SchemaError{
				Owner:   owner.Login,
				Project: number,
				Field:   f.String(),
				Reason:  fmt.Sprintf("expected a %s field, found %s", f.Kind(), field.Kind),
			}
		}
	}
	return schema, nil
}

func (r *Resolver) fetch(ctx context.Context, owner models.Owner, number int) (*Schema, error) {
	key := schemaKey{owner: strings.ToLower(owner.Login), number: number}
	if schema, ok := r.cache[key]; ok {
		return schema, nil
	}

	projectID, err := r.source.FindProject(ctx, owner, number)
	if err != nil {
		return nil, &SchemaError{Owner: owner.Login, Project: number, Reason: "project not found", Err: err}
	}
	fields, err := r.source.ListProjectFields(ctx, projectID)
	if err != nil {
		return nil, &SchemaError{Owner: owner.Login, Project: number, Reason: "list fields", Err: err}
	}

	schema := &Schema{ProjectID: projectID, Fields: make(map[string]models.ProjectField, len(fields))}
	for _, field := range fields {
		schema.Fields[field.Name] = field
	}
	r.cache[key] = schema
	r.logger.Debug("project schema resolved",
		zap.String("owner", owner.Login),
		zap.Int("project", number),
		zap.String("project_id", projectID),
		zap.Int("fields", len(fields)))
	return schema, nil
}
