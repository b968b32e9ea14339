package model

import (
	"strconv"
	"time"
)

// ProviderConfig represents provider-specific configuration
type ProviderConfig struct {
	BaseURL string
	Token   string
}

// User represents a user across different providers
type User struct {
	ID       string
	Username string
	Name     string
}

// PullRequest represents a pull/merge request across different providers
type PullRequest struct {
	ID           string
	Number       int
	Title        string
	Description  string
	SourceBranch string
	TargetBranch string
	Author       User
	URL          string
	State        string

	// SHA is the head commit of the source branch at review time.
	// Comments are anchored to this commit.
	SHA string

	// Diff refs needed by providers with positioned discussions (GitLab).
	BaseSHA  string
	StartSHA string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewTask is one accepted review request: everything a detached
// workflow needs to run to completion.
type ReviewTask struct {
	ProjectID string // "owner/repo" for GitHub, numeric ID for GitLab
	Number    int
	Token     string // request-scoped auth token, may be empty
	Model     string // optional model selector, empty means default profile
}

func (t ReviewTask) String() string {
	return t.ProjectID + "#" + strconv.Itoa(t.Number)
}

// CommentSide tells which version of the file an anchor points at.
type CommentSide string

const (
	SideLeft  CommentSide = "LEFT"
	SideRight CommentSide = "RIGHT"
)

// LineAnchor identifies where an inline review comment attaches.
// Invariant: StartLine <= EndLine; this pipeline always anchors on
// the new version of the file (SideRight).
type LineAnchor struct {
	StartLine int
	EndLine   int
	Side      CommentSide
}

// IsRange reports whether the anchor spans more than one line.
func (a LineAnchor) IsRange() bool {
	return a.EndLine > a.StartLine
}

// ReviewComment is the unit posted to the comment-posting collaborator.
type ReviewComment struct {
	Path      string
	CommitSHA string
	Anchor    LineAnchor
	Body      string
}
