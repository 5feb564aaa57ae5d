package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/Ilia01/ghcpi/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFindOwner(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		payload := decodeGraphQL(t, req)
		if payload.Variables["login"] != "acme" {
			t.Fatalf("unexpected variables: %v", payload.Variables)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer token" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		return jsonResponse(http.StatusOK, `{"data":{"owner":{"id":"O_1","login":"acme","type":"Organization"}}}`)
	})

	owner, err := client.FindOwner(context.Background(), "acme")
	if err != nil {
		t.Fatalf("FindOwner failed: %v", err)
	}
	if !owner.IsOrganization() || owner.ID != "O_1" {
		t.Fatalf("unexpected owner: %#v", owner)
	}
}

func TestFindOwnerMissing(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"data":{"owner":null}}`)
	})
	if _, err := client.FindOwner(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindProject(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		payload := decodeGraphQL(t, req)
		if payload.Variables["number"] != float64(3) {
			t.Fatalf("unexpected number: %v", payload.Variables["number"])
		}
		return jsonResponse(http.StatusOK, `{"data":{"owner":{"projectV2":{"id":"PVT_1"}}}}`)
	})

	id, err := client.FindProject(context.Background(), models.Owner{Login: "acme"}, 3)
	if err != nil {
		t.Fatalf("FindProject failed: %v", err)
	}
	if id != "PVT_1" {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestFindProjectNotFoundError(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"data":{"owner":{"projectV2":null}},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a ProjectV2 with the number 9."}]}`)
	})

	_, err := client.FindProject(context.Background(), models.Owner{Login: "acme"}, 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) || !strings.Contains(gqlErr.Error(), "number 9") {
		t.Fatalf("expected GraphQLError, got %v", err)
	}
}

func TestListProjectFieldsPaginates(t *testing.T) {
	pages := []string{
		`{"data":{"node":{"fields":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"nodes":[
			{"__typename":"ProjectV2Field","id":"F_title","name":"Title"},
			{"__typename":"ProjectV2SingleSelectField","id":"F_status","name":"Status","options":[{"id":"S_1","name":"Todo"},{"id":"S_2","name":"Done"}]}
		]}}}}`,
		`{"data":{"node":{"fields":{"pageInfo":{"hasNextPage":false,"endCursor":"c2"},"nodes":[
			{"__typename":"ProjectV2IterationField","id":"F_iter","name":"Iteration","configuration":{
				"iterations":[{"id":"IT_3","title":"Iteration 3","startDate":"2025-01-27","duration":7}],
				"completedIterations":[{"id":"IT_2","title":"Iteration 2","startDate":"2025-01-20","duration":7}]}}
		]}}}}`,
	}
	var calls int
	client := newTestClient(func(req *http.Request) *http.Response {
		payload := decodeGraphQL(t, req)
		if calls == 1 && payload.Variables["after"] != "c1" {
			t.Fatalf("expected cursor c1, got %v", payload.Variables["after"])
		}
		body := pages[calls]
		calls++
		return jsonResponse(http.StatusOK, body)
	})

	fields, err := client.ListProjectFields(context.Background(), "PVT_1")
	if err != nil {
		t.Fatalf("ListProjectFields failed: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Kind != models.KindOther || fields[1].Kind != models.KindSingleSelect || fields[2].Kind != models.KindIteration {
		t.Fatalf("unexpected kinds: %#v", fields)
	}
	if len(fields[1].Options) != 2 || fields[1].Options[1].ID != "S_2" {
		t.Fatalf("unexpected options: %#v", fields[1].Options)
	}
	iters := fields[2].Iterations
	if len(iters) != 2 || iters[0].ID != "IT_2" || iters[1].Start.Format("2006-01-02") != "2025-01-27" {
		t.Fatalf("unexpected iterations: %#v", iters)
	}
}

func TestAddIssueToProject(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		payload := decodeGraphQL(t, req)
		if !strings.Contains(payload.Query, "addProjectV2ItemById") || payload.Variables["content"] != "I_1" {
			t.Fatalf("unexpected payload: %#v", payload)
		}
		return jsonResponse(http.StatusOK, `{"data":{"addProjectV2ItemById":{"item":{"id":"PVTI_1"}}}}`)
	})

	itemID, err := client.AddIssueToProject(context.Background(), "PVT_1", "I_1")
	if err != nil {
		t.Fatalf("AddIssueToProject failed: %v", err)
	}
	if itemID != "PVTI_1" {
		t.Fatalf("unexpected item id: %s", itemID)
	}
}

func TestSetProjectItemFieldValue(t *testing.T) {
	tests := []struct {
		name  string
		value models.ResolvedFieldValue
		key   string
	}{
		{"single select", models.ResolvedFieldValue{FieldID: "F_status", Kind: models.KindSingleSelect, ValueID: "S_1"}, "singleSelectOptionId"},
		{"iteration", models.ResolvedFieldValue{FieldID: "F_iter", Kind: models.KindIteration, ValueID: "IT_3"}, "iterationId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(func(req *http.Request) *http.Response {
				payload := decodeGraphQL(t, req)
				value, ok := payload.Variables["value"].(map[string]any)
				if !ok || value[tt.key] != tt.value.ValueID {
					t.Fatalf("unexpected value variable: %#v", payload.Variables["value"])
				}
				if payload.Variables["field"] != tt.value.FieldID {
					t.Fatalf("unexpected field: %v", payload.Variables["field"])
				}
				return jsonResponse(http.StatusOK, `{"data":{"updateProjectV2ItemFieldValue":{"projectV2Item":{"id":"PVTI_1"}}}}`)
			})
			if err := client.SetProjectItemFieldValue(context.Background(), "PVT_1", "PVTI_1", tt.value); err != nil {
				t.Fatalf("SetProjectItemFieldValue failed: %v", err)
			}
		})
	}
}

func TestSetProjectItemFieldValueRejectsOtherKinds(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		t.Fatalf("no request expected")
		return nil
	})
	err := client.SetProjectItemFieldValue(context.Background(), "PVT_1", "PVTI_1", models.ResolvedFieldValue{FieldID: "F", Kind: models.KindOther})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateIssue(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		if req.Method != http.MethodPost || req.URL.Path != "/repos/acme/app/issues" {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["title"] != "Weekly sync" || payload["type"] != "Bug" {
			t.Fatalf("unexpected payload: %v", payload)
		}
		if _, ok := payload["owner"]; ok {
			t.Fatalf("owner must not be sent in the body")
		}
		return jsonResponse(http.StatusCreated, `{"node_id":"I_1","number":7,"html_url":"https://github.com/acme/app/issues/7"}`)
	})

	issue, err := client.CreateIssue(context.Background(), models.NewIssue{
		Owner:      "acme",
		Repository: "app",
		Title:      "Weekly sync",
		Body:       "Agenda",
		Labels:     []string{"meeting"},
		Type:       "Bug",
	})
	if err != nil {
		t.Fatalf("CreateIssue failed: %v", err)
	}
	if issue.NodeID != "I_1" || issue.Number != 7 {
		t.Fatalf("unexpected issue: %#v", issue)
	}
}

func TestCreateIssueError(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`)
	})

	_, err := client.CreateIssue(context.Background(), models.NewIssue{Owner: "acme", Repository: "app", Title: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected APIError 422, got %v", err)
	}
}

func TestViewer(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"data":{"viewer":{"login":"octocat"}}}`)
	})
	login, err := client.Viewer(context.Background())
	if err != nil {
		t.Fatalf("Viewer failed: %v", err)
	}
	if login != "octocat" {
		t.Fatalf("unexpected login: %s", login)
	}
}

func TestWithBaseURL(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		if req.URL.Host != "ghe.example.com" || req.URL.Path != "/api/graphql" {
			t.Fatalf("unexpected url: %s", req.URL)
		}
		return jsonResponse(http.StatusOK, `{"data":{"viewer":{"login":"octocat"}}}`)
	}, WithBaseURL("https://ghe.example.com/api/"))
	if _, err := client.Viewer(context.Background()); err != nil {
		t.Fatalf("Viewer failed: %v", err)
	}
}

type graphQLPayload struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func decodeGraphQL(t *testing.T, req *http.Request) graphQLPayload {
	t.Helper()
	if req.Method != http.MethodPost || !strings.HasSuffix(req.URL.Path, "/graphql") {
		t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
	}
	var payload graphQLPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return payload
}

func newTestClient(fn roundTripFunc, opts ...Option) *Client {
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: fn})}, opts...)
	return NewClient("token", opts...)
}

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}
