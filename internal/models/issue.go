package models

type OwnerKind string

const (
	OwnerUser         OwnerKind = "User"
	OwnerOrganization OwnerKind = "Organization"
)

type Owner struct {
	ID    string    `json:"id"`
	Login string    `json:"login"`
	Kind  OwnerKind `json:"type"`
}

func (o Owner) IsOrganization() bool {
	return o.Kind == OwnerOrganization
}

// IssueRequest is a validated issue document ready for the binder. Field
// values are kept in their human-readable form until the schema is known.
type IssueRequest struct {
	Owner      Owner
	Repository string
	Project    int
	Title      string
	Body       string
	Assignees  []string
	Labels     []string
	Status     string
	Iteration  string
	Size       string
	Difficulty string
	Type       string
	Inception  string
}

// Repo returns the "owner/name" form used by the REST API.
func (r IssueRequest) Repo() string {
	return r.Owner.Login + "/" + r.Repository
}

type NewIssue struct {
	Owner      string   `json:"-"`
	Repository string   `json:"-"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Assignees  []string `json:"assignees,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	Type       string   `json:"type,omitempty"`
}

type CreatedIssue struct {
	NodeID  string `json:"node_id"`
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}
