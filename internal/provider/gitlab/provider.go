package gitlab

import (
	"context"
	"strconv"
	"strings"

	"github.com/gavelbot/gavel/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	defaultBaseURL = "https://gitlab.com"
)

var _ model.CodeProvider = (*Provider)(nil)

// Provider implements the CodeProvider interface for GitLab
type Provider struct {
	client *gitlab.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitLab provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitLab token is required")
	}
	logger := logze.With("provider", "gitlab")

	baseURL := lang.Check(config.BaseURL, defaultBaseURL)

	client, err := gitlab.NewClient(config.Token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}

	return &Provider{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// GetPullRequest retrieves detailed information about a merge request,
// including the diff refs needed to position discussions.
func (p *Provider) GetPullRequest(ctx context.Context, projectID string, number int) (*model.PullRequest, error) {
	mr, _, err := p.client.MergeRequests.GetMergeRequest(projectID, number, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to get merge request from GitLab")
	}

	return &model.PullRequest{
		ID:           strconv.Itoa(mr.ID),
		Number:       mr.IID,
		Title:        mr.Title,
		Description:  mr.Description,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		URL:          mr.WebURL,
		State:        mr.State,
		SHA:          lang.Check(mr.DiffRefs.HeadSha, mr.SHA),
		BaseSHA:      mr.DiffRefs.BaseSha,
		StartSHA:     mr.DiffRefs.StartSha,
		Author: model.User{
			ID:       strconv.Itoa(mr.Author.ID),
			Username: mr.Author.Username,
			Name:     mr.Author.Name,
		},
		CreatedAt: lang.Deref(mr.CreatedAt),
		UpdatedAt: lang.Deref(mr.UpdatedAt),
	}, nil
}

// GetPullRequestDiff retrieves the merge request changes and assembles them
// into a single unified-diff blob. GitLab serves diffs per file, so the
// git-style section headers are reconstructed here.
func (p *Provider) GetPullRequestDiff(ctx context.Context, projectID string, number int) (string, error) {
	var allDiffs []*gitlab.MergeRequestDiff
	page := 1

	for {
		opts := &gitlab.ListMergeRequestDiffsOptions{
			ListOptions: gitlab.ListOptions{
				Page: page,
			},
		}

		diffs, resp, err := p.client.MergeRequests.ListMergeRequestDiffs(projectID, number, opts, gitlab.WithContext(ctx))
		if err != nil {
			return "", errm.Wrap(err, "failed to list merge request diffs")
		}

		allDiffs = append(allDiffs, diffs...)

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return buildUnifiedDiff(allDiffs), nil
}

// CreateReviewComment creates a positioned discussion on the new version of
// the file. GitLab has no native range positions, so a range anchor collapses
// to its end line.
func (p *Provider) CreateReviewComment(ctx context.Context, projectID string, number int, pr *model.PullRequest, comment *model.ReviewComment) error {
	positionType := "text"
	newPath := comment.Path
	newLine := comment.Anchor.EndLine

	discussionOpts := &gitlab.CreateMergeRequestDiscussionOptions{
		Body: &comment.Body,
		Position: &gitlab.PositionOptions{
			BaseSHA:      &pr.BaseSHA,
			StartSHA:     &pr.StartSHA,
			HeadSHA:      &pr.SHA,
			PositionType: &positionType,
			NewPath:      &newPath,
			NewLine:      &newLine,
		},
	}

	_, _, err := p.client.Discussions.CreateMergeRequestDiscussion(projectID, number, discussionOpts, gitlab.WithContext(ctx))
	if err != nil {
		return errm.Wrap(err, "failed to create merge request discussion")
	}

	return nil
}

// buildUnifiedDiff reconstructs a git unified diff from per-file GitLab
// diffs: one "diff --git" section per file, mode and rename lines when they
// apply, then the hunks as GitLab returned them.
func buildUnifiedDiff(diffs []*gitlab.MergeRequestDiff) string {
	var b strings.Builder

	for _, d := range diffs {
		if d == nil {
			continue
		}
		oldPath := lang.Check(d.OldPath, d.NewPath)
		newPath := lang.Check(d.NewPath, d.OldPath)

		b.WriteString("diff --git a/" + oldPath + " b/" + newPath + "\n")
		switch {
		case d.NewFile:
			b.WriteString("new file mode 100644\n")
		case d.DeletedFile:
			b.WriteString("deleted file mode 100644\n")
		case d.RenamedFile:
			b.WriteString("rename from " + oldPath + "\n")
			b.WriteString("rename to " + newPath + "\n")
		}

		// GitLab's diff field holds only the hunks; add the file header
		// lines unless they are already there.
		if d.Diff != "" && !strings.HasPrefix(d.Diff, "--- ") {
			if d.NewFile {
				b.WriteString("--- /dev/null\n")
			} else {
				b.WriteString("--- a/" + oldPath + "\n")
			}
			if d.DeletedFile {
				b.WriteString("+++ /dev/null\n")
			} else {
				b.WriteString("+++ b/" + newPath + "\n")
			}
		}

		if d.Diff != "" {
			b.WriteString(d.Diff)
			if !strings.HasSuffix(d.Diff, "\n") {
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}
