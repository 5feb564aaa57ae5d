package github

import (
	"context"
	"fmt"
	"time"

	"github.com/Ilia01/ghcpi/internal/models"
)

const ownerQuery = `query($login: String!) {
  owner: repositoryOwner(login: $login) {
    id
    login
    type: __typename
  }
}`

// FindOwner looks up a user or organization by login.
func (c *Client) FindOwner(ctx context.Context, login string) (models.Owner, error) {
	var data struct {
		Owner *models.Owner `json:"owner"`
	}
	if err := c.graphql(ctx, ownerQuery, map[string]any{"login": login}, &data); err != nil {
		return models.Owner{}, err
	}
	if data.Owner == nil {
		return models.Owner{}, fmt.Errorf("owner %q: %w", login, ErrNotFound)
	}
	return *data.Owner, nil
}

const projectQuery = `query($login: String!, $number: Int!) {
  owner: repositoryOwner(login: $login) {
    ... on User { projectV2(number: $number) { id } }
    ... on Organization { projectV2(number: $number) { id } }
  }
}`

func (c *Client) FindProject(ctx context.Context, owner models.Owner, number int) (string, error) {
	var data struct {
		Owner *struct {
			ProjectV2 *struct {
				ID string `json:"id"`
			} `json:"projectV2"`
		} `json:"owner"`
	}
	vars := map[string]any{"login": owner.Login, "number": number}
	if err := c.graphql(ctx, projectQuery, vars, &data); err != nil {
		return "", err
	}
	if data.Owner == nil || data.Owner.ProjectV2 == nil {
		return "", fmt.Errorf("project %s/%d: %w", owner.Login, number, ErrNotFound)
	}
	return data.Owner.ProjectV2.ID, nil
}

const fieldsQuery = `query($id: ID!, $after: String) {
  node(id: $id) {
    ... on ProjectV2 {
      fields(first: 100, after: $after) {
        pageInfo { hasNextPage endCursor }
        nodes {
          __typename
          ... on ProjectV2FieldCommon { id name }
          ... on ProjectV2SingleSelectField { options { id name } }
          ... on ProjectV2IterationField {
            configuration {
              iterations { id title startDate duration }
              completedIterations { id title startDate duration }
            }
          }
        }
      }
    }
  }
}`

type fieldNode struct {
	Typename string `json:"__typename"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Options  []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"options"`
	Configuration *struct {
		Iterations          []iterationNode `json:"iterations"`
		CompletedIterations []iterationNode `json:"completedIterations"`
	} `json:"configuration"`
}

type iterationNode struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	Duration  int    `json:"duration"`
}

// ListProjectFields returns every field of the project, following pagination.
func (c *Client) ListProjectFields(ctx context.Context, projectID string) ([]models.ProjectField, error) {
	var fields []models.ProjectField
	var after *string
	for {
		var data struct {
			Node *struct {
				Fields *struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []fieldNode `json:"nodes"`
				} `json:"fields"`
			} `json:"node"`
		}
		vars := map[string]any{"id": projectID, "after": after}
		if err := c.graphql(ctx, fieldsQuery, vars, &data); err != nil {
			return nil, err
		}
		if data.Node == nil || data.Node.Fields == nil {
			return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}
		for _, node := range data.Node.Fields.Nodes {
			field, err := node.toModel()
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		if !data.Node.Fields.PageInfo.HasNextPage {
			return fields, nil
		}
		cursor := data.Node.Fields.PageInfo.EndCursor
		after = &cursor
	}
}

func (n fieldNode) toModel() (models.ProjectField, error) {
	field := models.ProjectField{ID: n.ID, Name: n.Name, Kind: models.KindOther}
	switch n.Typename {
	case "ProjectV2SingleSelectField":
		field.Kind = models.KindSingleSelect
		for _, opt := range n.Options {
			field.Options = append(field.Options, models.Option{ID: opt.ID, Name: opt.Name})
		}
	case "ProjectV2IterationField":
		field.Kind = models.KindIteration
		if n.Configuration == nil {
			break
		}
		nodes := append(append([]iterationNode{}, n.Configuration.CompletedIterations...), n.Configuration.Iterations...)
		for _, it := range nodes {
			start, err := time.Parse("2006-01-02", it.StartDate)
			if err != nil {
				return models.ProjectField{}, fmt.Errorf("iteration %q start date: %w", it.Title, err)
			}
			field.Iterations = append(field.Iterations, models.Iteration{
				ID:       it.ID,
				Title:    it.Title,
				Start:    start,
				Duration: it.Duration,
			})
		}
	}
	return field, nil
}

const addItemMutation = `mutation($project: ID!, $content: ID!) {
  addProjectV2ItemById(input: {projectId: $project, contentId: $content}) {
    item { id }
  }
}`

// AddIssueToProject returns the id of the new project item.
func (c *Client) AddIssueToProject(ctx context.Context, projectID, contentID string) (string, error) {
	var data struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	vars := map[string]any{"project": projectID, "content": contentID}
	if err := c.graphql(ctx, addItemMutation, vars, &data); err != nil {
		return "", err
	}
	if data.AddProjectV2ItemByID.Item.ID == "" {
		return "", fmt.Errorf("add item: empty item id in response")
	}
	return data.AddProjectV2ItemByID.Item.ID, nil
}

const setFieldMutation = `mutation($project: ID!, $item: ID!, $field: ID!, $value: ProjectV2FieldValue!) {
  updateProjectV2ItemFieldValue(input: {projectId: $project, itemId: $item, fieldId: $field, value: $value}) {
    projectV2Item { id }
  }
}`

func (c *Client) SetProjectItemFieldValue(ctx context.Context, projectID, itemID string, value models.ResolvedFieldValue) error {
	var fieldValue map[string]string
	switch value.Kind {
	case models.KindSingleSelect:
		fieldValue = map[string]string{"singleSelectOptionId": value.ValueID}
	case models.KindIteration:
		fieldValue = map[string]string{"iterationId": value.ValueID}
	default:
		return fmt.Errorf("field %s: unsupported kind %s", value.FieldID, value.Kind)
	}
	vars := map[string]any{
		"project": projectID,
		"item":    itemID,
		"field":   value.FieldID,
		"value":   fieldValue,
	}
	return c.graphql(ctx, setFieldMutation, vars, nil)
}
