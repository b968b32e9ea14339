package github

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gavelbot/gavel/internal/model"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v57/github"
	"github.com/gregjones/httpcache"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"
)

var _ model.CodeProvider = (*Provider)(nil)

const (
	defaultBaseURL = "https://github.com"
)

// Provider implements the CodeProvider interface for GitHub
type Provider struct {
	client *github.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitHub provider.
//
// Transport stack, bottom to top:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. oauth2 bearer auth
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitHub token is required")
	}
	log := logze.With("provider", "github")

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	baseCtx := context.WithValue(context.Background(), oauth2.HTTPClient, rateLimitClient)
	tc := oauth2.NewClient(baseCtx, ts)

	client := github.NewClient(tc)

	// Set base URL if provided (for GitHub Enterprise)
	if config.BaseURL != "" && config.BaseURL != defaultBaseURL {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}

	return &Provider{
		client: client,
		config: config,
		logger: log,
	}, nil
}

// GetPullRequest retrieves detailed information about a pull request
func (p *Provider) GetPullRequest(ctx context.Context, projectID string, number int) (*model.PullRequest, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	pr, _, err := p.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get pull request from GitHub")
	}

	return &model.PullRequest{
		ID:           strconv.FormatInt(pr.GetID(), 10),
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Description:  pr.GetBody(),
		SourceBranch: pr.GetHead().GetRef(),
		TargetBranch: pr.GetBase().GetRef(),
		URL:          pr.GetHTMLURL(),
		State:        pr.GetState(),
		SHA:          pr.GetHead().GetSHA(),
		BaseSHA:      pr.GetBase().GetSHA(),
		Author: model.User{
			ID:       strconv.FormatInt(pr.GetUser().GetID(), 10),
			Username: pr.GetUser().GetLogin(),
			Name:     pr.GetUser().GetName(),
		},
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}, nil
}

// GetPullRequestDiff retrieves the whole pull request diff as one
// unified-diff blob, exactly as git produces it.
func (p *Provider) GetPullRequestDiff(ctx context.Context, projectID string, number int) (string, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return "", err
	}

	diff, resp, err := p.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", errm.Wrap(err, "failed to get pull request diff")
	}

	p.logRateLimit(resp)

	return diff, nil
}

// CreateReviewComment creates an inline review comment anchored to the new
// version of the file. Multi-line anchors use start_line/line, single-line
// anchors must omit start_line or GitHub rejects the request.
func (p *Provider) CreateReviewComment(ctx context.Context, projectID string, number int, pr *model.PullRequest, comment *model.ReviewComment) error {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return err
	}

	side := string(comment.Anchor.Side)
	prComment := &github.PullRequestComment{
		Body:     github.String(comment.Body),
		CommitID: github.String(comment.CommitSHA),
		Path:     github.String(comment.Path),
		Line:     github.Int(comment.Anchor.EndLine),
		Side:     github.String(side),
	}
	if comment.Anchor.IsRange() {
		prComment.StartLine = github.Int(comment.Anchor.StartLine)
		prComment.StartSide = github.String(side)
	}

	_, _, err = p.client.PullRequests.CreateComment(ctx, owner, repo, number, prComment)
	if err != nil {
		return errm.Wrap(err, "failed to create review comment")
	}

	return nil
}

// logRateLimit surfaces the remaining API quota after a call, loudly when
// it runs low.
func (p *Provider) logRateLimit(resp *github.Response) {
	if resp == nil {
		return
	}
	p.logger.Debug("github rate limit", "remaining", resp.Rate.Remaining, "limit", resp.Rate.Limit)
	if resp.Rate.Remaining < 100 {
		p.logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second).String(),
		)
	}
}

func splitProjectID(projectID string) (string, string, error) {
	parts := strings.Split(projectID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errm.New("invalid GitHub project ID format, expected 'owner/repo': %s", projectID)
	}
	return parts[0], parts[1], nil
}
