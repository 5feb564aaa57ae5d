// Package document reads issue documents: a YAML front matter header
// followed by the issue body.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ilia01/ghcpi/internal/models"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("document: missing frontmatter")
	// ErrMalformedFrontMatter indicates the header fence was never closed.
	ErrMalformedFrontMatter = errors.New("document: malformed frontmatter")
)

// ValidationError lists every problem found in the header.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "document: invalid header:\n  - " + strings.Join(e.Problems, "\n  - ")
}

// Header mirrors the front matter keys. Unknown keys are rejected.
type Header struct {
	Title      string   `yaml:"title"`
	Owner      string   `yaml:"owner"`
	Repository string   `yaml:"repository"`
	Project    int      `yaml:"project"`
	Assignees  []string `yaml:"assignees"`
	Labels     []string `yaml:"labels"`
	Status     string   `yaml:"status"`
	Iteration  string   `yaml:"iteration"`
	Size       string   `yaml:"size"`
	Difficulty string   `yaml:"difficulty"`
	Inception  string   `yaml:"inception"`
	Type       string   `yaml:"type,omitempty"`
}

type Document struct {
	Header Header
	Body   string
}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read issue file: %w", err)
	}
	return Parse(data)
}

// Parse splits content into header and body and validates the header.
// The body is returned as written.
func Parse(content []byte) (*Document, error) {
	meta, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, err
	}

	var header Header
	decoder := yaml.NewDecoder(bytes.NewReader(meta))
	decoder.KnownFields(true)
	if err := decoder.Decode(&header); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("document: parse frontmatter: %w", err)
	}

	doc := &Document{Header: header, Body: string(body)}
	if err := doc.Header.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// splitFrontMatter locates the fences line by line, accepting LF or CRLF
// endings. Neither part is rewritten.
func splitFrontMatter(content []byte) (meta, body []byte, err error) {
	first, rest, ok := cutLine(content)
	if !ok || string(first) != "---" {
		return nil, nil, ErrMissingFrontMatter
	}
	for offset := 0; ; {
		line, next, more := cutLine(rest[offset:])
		if string(line) == "---" {
			return rest[:offset], next, nil
		}
		if !more {
			return nil, nil, ErrMalformedFrontMatter
		}
		offset = len(rest) - len(next)
	}
}

// cutLine returns the first line of b without its terminator and what
// follows it. ok is false when b holds no newline.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	line, rest, ok = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, ok
}

// Validate checks presence and shape of every required key.
func (h Header) Validate() error {
	var problems []string
	required := []struct {
		key   string
		value string
	}{
		{"title", h.Title},
		{"owner", h.Owner},
		{"repository", h.Repository},
		{"status", h.Status},
		{"iteration", h.Iteration},
		{"size", h.Size},
		{"difficulty", h.Difficulty},
		{"inception", h.Inception},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, fmt.Sprintf("%s is required", r.key))
		}
	}
	if h.Project <= 0 {
		problems = append(problems, "project must be a positive number")
	}
	if h.Assignees == nil {
		problems = append(problems, "assignees is required (use [] for none)")
	}
	if h.Labels == nil {
		problems = append(problems, "labels is required (use [] for none)")
	}
	if h.Iteration != "" && h.Iteration != "@current" && h.Iteration != "@next" {
		problems = append(problems, fmt.Sprintf("iteration must be @current or @next, got %q", h.Iteration))
	}
	if h.Inception != "" {
		if _, err := time.Parse("2006-01-02", h.Inception); err != nil {
			problems = append(problems, fmt.Sprintf("inception must be a YYYY-MM-DD date, got %q", h.Inception))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Request builds the binder input once the owner has been looked up.
func (d *Document) Request(owner models.Owner) models.IssueRequest {
	h := d.Header
	return models.IssueRequest{
		Owner:      owner,
		Repository: h.Repository,
		Project:    h.Project,
		Title:      h.Title,
		Body:       d.Body,
		Assignees:  append([]string{}, h.Assignees...),
		Labels:     append([]string{}, h.Labels...),
		Status:     h.Status,
		Iteration:  h.Iteration,
		Size:       h.Size,
		Difficulty: h.Difficulty,
		Type:       h.Type,
		Inception:  h.Inception,
	}
}
