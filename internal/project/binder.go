package project

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ilia01/ghcpi/internal/models"
)

// Remote is everything the binder needs from the issue tracker.
type Remote interface {
	SchemaSource
	CreateIssue(ctx context.Context, issue models.NewIssue) (models.CreatedIssue, error)
	AddIssueToProject(ctx context.Context, projectID, contentID string) (string, error)
	SetProjectItemFieldValue(ctx context.Context, projectID, itemID string, value models.ResolvedFieldValue) error
}

type Status int

const (
	StatusSuccess Status = iota
	StatusPartial
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	}
	return "failed"
}

// FieldOutcome is the result of binding one field. Err is a *FieldSetError
// when the field was left unset.
type FieldOutcome struct {
	Field    Field
	Value    string
	Resolved models.ResolvedFieldValue
	Err      error
}

func (o FieldOutcome) OK() bool { return o.Err == nil }

// Plan is everything decided before the first mutation.
type Plan struct {
	Request  models.IssueRequest
	Title    string
	Schema   *Schema
	Outcomes []FieldOutcome
}

type BindingResult struct {
	Title    string
	Issue    models.CreatedIssue
	ItemID   string
	Outcomes []FieldOutcome
}

func (r *BindingResult) Status() Status {
	if r == nil || r.ItemID == "" {
		return StatusFailed
	}
	for _, o := range r.Outcomes {
		if !o.OK() {
			return StatusPartial
		}
	}
	return StatusSuccess
}

func (r *BindingResult) Outcome(f Field) (FieldOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Field == f {
			return o, true
		}
	}
	return FieldOutcome{}, false
}

func (r *BindingResult) Failed() []FieldOutcome {
	var failed []FieldOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

type BinderOption func(*Binder)

func WithLogger(logger *zap.Logger) BinderOption {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithMatchPolicy(policy MatchPolicy) BinderOption {
	return func(b *Binder) { b.policy = policy }
}

// Binder creates an issue, adds it to a project and sets its fields.
// Nothing is retried; each failure is surfaced to the caller.
type Binder struct {
	remote   Remote
	resolver *Resolver
	logger   *zap.Logger
	policy   MatchPolicy
}

func NewBinder(remote Remote, opts ...BinderOption) *Binder {
	b := &Binder{remote: remote, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.resolver = NewResolver(remote, b.logger)
	return b
}

// Plan validates the request, renders the title, resolves the schema and maps
// every field, all as of now. It performs no mutation.
func (b *Binder) Plan(ctx context.Context, req models.IssueRequest, now time.Time) (*Plan, error) {
	// Title and iteration field both read the UTC calendar date.
	now = now.UTC()
	assignments, err := Assignments(req)
	if err != nil {
		return nil, err
	}
	schedule, err := ParseSchedule(req.Inception)
	if err != nil {
		return nil, &ConfigError{Field: "inception", Reason: err.Error()}
	}
	if req.Project <= 0 {
		return nil, &ConfigError{Field: "project", Reason: "must be a positive number"}
	}

	title, err := Render(req.Title, NewTemplateContext(now, schedule))
	if err != nil {
		return nil, err
	}

	schema, err := b.resolver.Resolve(ctx, req.Owner, req.Project, requiredFields(assignments)...)
	if err != nil {
		return nil, err
	}

	mapper := Mapper{Schedule: schedule, AsOf: now, Policy: b.policy}
	plan := &Plan{Request: req, Title: title, Schema: schema}
	for _, a := range assignments {
		outcome := FieldOutcome{Field: a.Field, Value: a.Value()}
		resolved, err := mapper.Map(a, schema)
		if err != nil {
			outcome.Err = &FieldSetError{Field: a.Field, Value: a.Value(), Err: err}
		} else {
			outcome.Resolved = resolved
		}
		plan.Outcomes = append(plan.Outcomes, outcome)
	}
	return plan, nil
}

// Execute runs the whole pipeline. A non-nil error means the run failed;
// the returned result still carries the issue when only the project step
// failed. Field failures are reported in the result, not as an error.
func (b *Binder) Execute(ctx context.Context, req models.IssueRequest, now time.Time) (*BindingResult, error) {
	plan, err := b.Plan(ctx, req, now)
	if err != nil {
		return nil, err
	}

	result := &BindingResult{Title: plan.Title}
	issue, err := b.remote.CreateIssue(ctx, models.NewIssue{
		Owner:      req.Owner.Login,
		Repository: req.Repository,
		Title:      plan.Title,
		Body:       req.Body,
		Assignees:  req.Assignees,
		Labels:     req.Labels,
		Type:       req.Type,
	})
	if err != nil {
		return nil, &CreateIssueError{Repo: req.Repo(), Err: err}
	}
	result.Issue = issue
	b.logger.Info("issue created", zap.String("url", issue.HTMLURL), zap.Int("number", issue.Number))

	itemID, err := b.remote.AddIssueToProject(ctx, plan.Schema.ProjectID, issue.NodeID)
	if err != nil {
		return result, &AddToProjectError{IssueURL: issue.HTMLURL, Project: req.Project, Err: err}
	}
	result.ItemID = itemID
	b.logger.Info("issue added to project", zap.Int("project", req.Project), zap.String("item_id", itemID))

	for _, outcome := range plan.Outcomes {
		if outcome.OK() {
			if err := b.remote.SetProjectItemFieldValue(ctx, plan.Schema.ProjectID, itemID, outcome.Resolved); err != nil {
				outcome.Err = &FieldSetError{Field: outcome.Field, Value: outcome.Value, Err: err}
			}
		}
		if outcome.OK() {
			b.logger.Info("field set", zap.Stringer("field", outcome.Field), zap.String("value", outcome.Value))
		} else {
			b.logger.Warn("field not set", zap.Stringer("field", outcome.Field), zap.String("value", outcome.Value), zap.Error(outcome.Err))
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}
