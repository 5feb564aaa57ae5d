package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Ilia01/ghcpi/internal/models"
)

// CreateIssue opens an issue through the REST API. Type is only accepted
// by repositories owned by organizations with issue types enabled.
func (c *Client) CreateIssue(ctx context.Context, issue models.NewIssue) (models.CreatedIssue, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues", url.PathEscape(issue.Owner), url.PathEscape(issue.Repository))
	req, err := c.newRequest(ctx, http.MethodPost, path, issue)
	if err != nil {
		return models.CreatedIssue{}, err
	}
	var created models.CreatedIssue
	if err := c.do(req, &created); err != nil {
		return models.CreatedIssue{}, err
	}
	return created, nil
}
