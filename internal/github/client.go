package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.github.com"

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error (%d): %s", e.Status, strings.TrimSpace(e.Body))
}

// GraphQLError carries the messages of a GraphQL response with errors.
type GraphQLError struct {
	Messages []string
	Types    []string
}

func (e *GraphQLError) Error() string {
	return "github graphql error: " + strings.Join(e.Messages, "; ")
}

func (e *GraphQLError) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	for _, t := range e.Types {
		if t == "NOT_FOUND" {
			return true
		}
	}
	return false
}

type Client struct {
	token   string
	http    *http.Client
	baseURL string
	logger  *zap.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "ghcpi")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, v any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	c.logger.Debug("github request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"errors"`
}

// graphql runs query and decodes its data member into v.
func (c *Client) graphql(ctx context.Context, query string, vars map[string]any, v any) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/graphql", graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}
	var resp graphQLResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
			gqlErr.Types = append(gqlErr.Types, e.Type)
		}
		return gqlErr
	}
	if v == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		return fmt.Errorf("parse graphql data: %w", err)
	}
	return nil
}

// Viewer returns the login the token belongs to.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	var data struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}
	if err := c.graphql(ctx, `query { viewer { login } }`, nil, &data); err != nil {
		return "", err
	}
	return data.Viewer.Login, nil
}
