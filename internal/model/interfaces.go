package model

import (
	"context"
)

// CodeProvider defines the interface for source-hosting APIs (GitHub, GitLab).
type CodeProvider interface {
	// GetPullRequest retrieves PR metadata, including the head commit SHA.
	GetPullRequest(ctx context.Context, projectID string, number int) (*PullRequest, error)

	// GetPullRequestDiff retrieves the whole PR diff as one unified-diff blob.
	GetPullRequestDiff(ctx context.Context, projectID string, number int) (string, error)

	// CreateReviewComment posts one inline comment anchored to comment.Anchor
	// on the new version of the file.
	CreateReviewComment(ctx context.Context, projectID string, number int, pr *PullRequest, comment *ReviewComment) error
}

// ReviewAgent defines the interface for the review-generation collaborator.
// Implementations must honor ctx deadlines: a timed-out call returns an error
// and the caller skips that file.
type ReviewAgent interface {
	ReviewFileDiff(ctx context.Context, req FileReviewRequest) (*ReviewOutcome, error)
}

// FileReviewRequest scopes one agent call to a single file's diff.
type FileReviewRequest struct {
	Path  string
	Diff  string
	Model string // optional per-request model selector
}
