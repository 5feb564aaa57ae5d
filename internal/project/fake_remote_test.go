package project

import (
	"context"
	"errors"
	"time"

	"github.com/Ilia01/ghcpi/internal/models"
)

type fakeRemote struct {
	projectID string
	fields    []models.ProjectField

	findErr   error
	createErr error
	addErr    error
	setErrs   map[string]error

	calls   []string
	created []models.NewIssue
	set     []models.ResolvedFieldValue
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{projectID: "PVT_1", fields: fixtureFields(), setErrs: map[string]error{}}
}

func (f *fakeRemote) FindProject(ctx context.Context, owner models.Owner, number int) (string, error) {
	f.calls = append(f.calls, "FindProject")
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.projectID, nil
}

func (f *fakeRemote) ListProjectFields(ctx context.Context, projectID string) ([]models.ProjectField, error) {
	f.calls = append(f.calls, "ListProjectFields")
	return f.fields, nil
}

func (f *fakeRemote) CreateIssue(ctx context.Context, issue models.NewIssue) (models.CreatedIssue, error) {
	f.calls = append(f.calls, "CreateIssue")
	if f.createErr != nil {
		return models.CreatedIssue{}, f.createErr
	}
	f.created = append(f.created, issue)
	return models.CreatedIssue{NodeID: "I_1", Number: 7, HTMLURL: "https://github.com/acme/app/issues/7"}, nil
}

func (f *fakeRemote) AddIssueToProject(ctx context.Context, projectID, contentID string) (string, error) {
	f.calls = append(f.calls, "AddIssueToProject")
	if f.addErr != nil {
		return "", f.addErr
	}
	return "PVTI_1", nil
}

func (f *fakeRemote) SetProjectItemFieldValue(ctx context.Context, projectID, itemID string, value models.ResolvedFieldValue) error {
	f.calls = append(f.calls, "Set:"+value.FieldID)
	if err := f.setErrs[value.FieldID]; err != nil {
		return err
	}
	f.set = append(f.set, value)
	return nil
}

func (f *fakeRemote) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")

func mustDate(value string) time.Time {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		panic(err)
	}
	return d
}

func fixtureFields() []models.ProjectField {
	return []models.ProjectField{
		{ID: "F_title", Name: "Title", Kind: models.KindOther},
		{ID: "F_status", Name: "Status", Kind: models.KindSingleSelect, Options: []models.Option{
			{ID: "S_inbox", Name: "Inbox"},
			{ID: "S_planned", Name: "Planned"},
			{ID: "S_done", Name: "Done"},
		}},
		{ID: "F_iter", Name: "Iteration", Kind: models.KindIteration, Iterations: []models.Iteration{
			{ID: "IT_2", Title: "Iteration 2", Start: mustDate("2025-01-20"), Duration: 7},
			{ID: "IT_3", Title: "Iteration 3", Start: mustDate("2025-01-27"), Duration: 7},
			{ID: "IT_5", Title: "Iteration 5", Start: mustDate("2025-02-10"), Duration: 7},
		}},
		{ID: "F_size", Name: "Size", Kind: models.KindSingleSelect, Options: []models.Option{
			{ID: "SZ_s", Name: "S"}, {ID: "SZ_m", Name: "M"}, {ID: "SZ_l", Name: "L"},
		}},
		{ID: "F_diff", Name: "Difficulty", Kind: models.KindSingleSelect, Options: []models.Option{
			{ID: "D_e", Name: "E"}, {ID: "D_m", Name: "M"}, {ID: "D_h", Name: "H"},
		}},
		{ID: "F_type", Name: "Type", Kind: models.KindSingleSelect, Options: []models.Option{
			{ID: "T_bug", Name: "Bug"}, {ID: "T_feature", Name: "Feature"},
		}},
	}
}

func fixtureRequest() models.IssueRequest {
	return models.IssueRequest{
		Owner:      models.Owner{ID: "O_1", Login: "acme", Kind: models.OwnerOrganization},
		Repository: "app",
		Project:    3,
		Title:      "Weekly sync {today}",
		Body:       "Agenda\n",
		Assignees:  []string{"octocat"},
		Labels:     []string{"meeting"},
		Status:     "Planned",
		Iteration:  "@next",
		Size:       "M",
		Difficulty: "E",
		Inception:  "2025-01-06",
	}
}
