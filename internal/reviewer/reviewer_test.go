package reviewer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gavelbot/gavel/internal/cache"
	"github.com/gavelbot/gavel/internal/model"
	"github.com/gavelbot/gavel/internal/reviewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewDiff = `diff --git a/app/service.py b/app/service.py
--- a/app/service.py
+++ b/app/service.py
@@ -10,4 +10,6 @@ class Service:
 def handle(self):
-    return None
+    value = compute()
+    return value
diff --git a/pkg/util.go b/pkg/util.go
new file mode 100644
--- /dev/null
+++ b/pkg/util.go
@@ -0,0 +1,3 @@
+package pkg
+
+func Util() {}
diff --git a/data.json b/data.json
--- a/data.json
+++ b/data.json
@@ -1,1 +1,2 @@
 {}
+{"k": 1}
`

type mockProvider struct {
	pr      *model.PullRequest
	prErr   error
	diff    string
	diffErr error
	postErr error

	// postHook, when set, runs before a comment is recorded; a hook that
	// blocks on ctx simulates a hung upstream.
	postHook func(ctx context.Context) error

	mu     sync.Mutex
	posted []*model.ReviewComment
}

func (m *mockProvider) postedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posted)
}

func (m *mockProvider) GetPullRequest(context.Context, string, int) (*model.PullRequest, error) {
	return m.pr, m.prErr
}

func (m *mockProvider) GetPullRequestDiff(context.Context, string, int) (string, error) {
	return m.diff, m.diffErr
}

func (m *mockProvider) CreateReviewComment(ctx context.Context, _ string, _ int, _ *model.PullRequest, c *model.ReviewComment) error {
	if m.postHook != nil {
		if err := m.postHook(ctx); err != nil {
			return err
		}
	}
	if m.postErr != nil {
		return m.postErr
	}
	m.mu.Lock()
	m.posted = append(m.posted, c)
	m.mu.Unlock()
	return nil
}

type mockAgent struct {
	outcomes map[string]*model.ReviewOutcome
	errs     map[string]error
	calls    map[string]int
}

func (m *mockAgent) ReviewFileDiff(_ context.Context, req model.FileReviewRequest) (*model.ReviewOutcome, error) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[req.Path]++
	if err := m.errs[req.Path]; err != nil {
		return nil, err
	}
	if o, ok := m.outcomes[req.Path]; ok {
		return o, nil
	}
	return model.AbsentOutcome(), nil
}

func findingsOutcome(desc string) *model.ReviewOutcome {
	return &model.ReviewOutcome{
		Kind: model.OutcomeStructured,
		Structured: &model.StructuredReview{
			Summary:   "summary",
			HasIssues: true,
			Status:    model.StatusNeedsChanges,
			Findings: []model.Finding{
				{Category: model.CategoryCorrectness, Description: desc, Suggestion: "fix it", Severity: model.SeverityMedium},
			},
		},
	}
}

func newReviewer(t *testing.T, provider *mockProvider, agent *mockAgent, c *cache.Cache[*model.ReviewOutcome]) *reviewer.Reviewer {
	t.Helper()
	r, err := reviewer.New(reviewer.Config{FileTimeout: time.Second}, reviewer.Deps{
		Provider: provider,
		Agent:    agent,
		Cache:    c,
	})
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func testPR() *model.PullRequest {
	return &model.PullRequest{Number: 7, Title: "change things", SHA: "abc123def456"}
}

func TestReviewPullRequestPostsOneCommentPerFileWithFindings(t *testing.T) {
	provider := &mockProvider{pr: testPR(), diff: reviewDiff}
	agent := &mockAgent{outcomes: map[string]*model.ReviewOutcome{
		"app/service.py": findingsOutcome("bad name"),
	}}

	r := newReviewer(t, provider, agent, nil)

	result, err := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 7})
	require.NoError(t, err)

	assert.True(t, result.IsSuccess)
	assert.Equal(t, 2, result.ProcessedFiles) // data.json filtered out
	assert.Equal(t, 1, result.CommentsCreated)
	require.Len(t, provider.posted, 1)

	posted := provider.posted[0]
	assert.Equal(t, "app/service.py", posted.Path)
	assert.Equal(t, "abc123def456", posted.CommitSHA)
	assert.Equal(t, model.SideRight, posted.Anchor.Side)
	assert.Equal(t, 10, posted.Anchor.StartLine)
	assert.Equal(t, 11, posted.Anchor.EndLine)
	assert.Contains(t, posted.Body, "bad name")
}

func TestReviewPullRequestFatalOnMetadataFetch(t *testing.T) {
	provider := &mockProvider{prErr: errors.New("upstream down")}
	r := newReviewer(t, provider, &mockAgent{}, nil)

	_, err := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 1})
	assert.Error(t, err)
	assert.Empty(t, provider.posted)
}

func TestReviewPullRequestFatalOnDiffFetch(t *testing.T) {
	provider := &mockProvider{pr: testPR(), diffErr: errors.New("upstream down")}
	r := newReviewer(t, provider, &mockAgent{}, nil)

	_, err := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 1})
	assert.Error(t, err)
}

func TestReviewPullRequestMalformedDiffDegradesToEmpty(t *testing.T) {
	provider := &mockProvider{pr: testPR(), diff: "@@ broken @@\nnot a diff\n"}
	agent := &mockAgent{}
	r := newReviewer(t, provider, agent, nil)

	result, err := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 1})
	require.NoError(t, err)

	assert.True(t, result.IsSuccess)
	assert.Zero(t, result.ProcessedFiles)
	assert.Empty(t, agent.calls)
}

func TestReviewPullRequestIsolatesAgentFailures(t *testing.T) {
	provider := &mockProvider{pr: testPR(), diff: reviewDiff}
	agent := &mockAgent{
		outcomes: map[string]*model.ReviewOutcome{"pkg/util.go": findingsOutcome("issue")},
		errs:     map[string]error{"app/service.py": errors.New("model timeout")},
	}
	r := newReviewer(t, provider, agent, nil)

	result, err := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 1})
	require.NoError(t, err)

	// The failing file is skipped, its sibling still gets its comment.
	assert.True(t, result.IsSuccess)
	assert.Equal(t, 1, result.SkippedFiles)
	assert.Equal(t, 1, result.CommentsCreated)
	require.Len(t, provider.posted, 1)
	assert.Equal(t, "pkg/util.go", provider.posted[0].Path)
}

func TestReviewPullRequestRecordsPostFailures(t *testing.T) {
	provider := &mockProvider{pr: testPR(), diff: reviewDiff, postErr: errors.New("403")}
	agent := &mockAgent{outcomes: map[string]*model.ReviewOutcome{
		"app/service.py": findingsOutcome("issue"),
		"pkg/util.go":    findingsOutcome("issue"),
	}}
	r := newReviewer(t, provider, agent, nil)

	result, err := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 1})
	require.NoError(t, err)

	assert.False(t, result.IsSuccess)
	assert.Len(t, result.Errors, 2)
	assert.Zero(t, result.CommentsCreated)
}

func TestReviewPullRequestBoundsHungCommentPosting(t *testing.T) {
	provider := &mockProvider{
		pr:   testPR(),
		diff: reviewDiff,
		postHook: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	agent := &mockAgent{outcomes: map[string]*model.ReviewOutcome{
		"app/service.py": findingsOutcome("issue"),
	}}

	r, err := reviewer.New(reviewer.Config{
		FileTimeout:     time.Second,
		ProviderTimeout: 50 * time.Millisecond,
	}, reviewer.Deps{Provider: provider, Agent: agent})
	require.NoError(t, err)
	t.Cleanup(r.Close)

	done := make(chan *model.ReviewResult, 1)
	go func() {
		result, _ := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 1})
		done <- result
	}()

	// The hung post is cut off by the provider timeout and recorded as a
	// posting failure instead of stalling the workflow.
	select {
	case result := <-done:
		assert.False(t, result.IsSuccess)
		require.Len(t, result.Errors, 1)
		assert.ErrorIs(t, result.Errors[0], context.DeadlineExceeded)
		assert.Zero(t, result.CommentsCreated)
	case <-time.After(2 * time.Second):
		t.Fatal("review workflow did not finish")
	}
}

func TestReviewPullRequestNoCommentsWhenAllClean(t *testing.T) {
	provider := &mockProvider{pr: testPR(), diff: reviewDiff}
	r := newReviewer(t, provider, &mockAgent{}, nil)

	result, err := r.ReviewPullRequest(context.Background(), model.ReviewTask{ProjectID: "owner/repo", Number: 1})
	require.NoError(t, err)

	assert.True(t, result.IsSuccess)
	assert.Zero(t, result.CommentsCreated)
	assert.Empty(t, provider.posted)
}

func TestReviewPullRequestMemoizesIdenticalDiffs(t *testing.T) {
	c := cache.New[*model.ReviewOutcome](cache.Config{TTL: time.Minute})
	defer c.Close()

	provider := &mockProvider{pr: testPR(), diff: reviewDiff}
	agent := &mockAgent{outcomes: map[string]*model.ReviewOutcome{
		"app/service.py": findingsOutcome("issue"),
	}}
	r := newReviewer(t, provider, agent, c)

	task := model.ReviewTask{ProjectID: "owner/repo", Number: 1}
	_, err := r.ReviewPullRequest(context.Background(), task)
	require.NoError(t, err)
	_, err = r.ReviewPullRequest(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, 1, agent.calls["app/service.py"])
	assert.Equal(t, 1, agent.calls["pkg/util.go"])
	// Cached findings still produce a comment on the second run.
	assert.Len(t, provider.posted, 2)
}

func TestEnqueueRunsDetached(t *testing.T) {
	provider := &mockProvider{pr: testPR(), diff: reviewDiff}
	agent := &mockAgent{outcomes: map[string]*model.ReviewOutcome{
		"pkg/util.go": findingsOutcome("issue"),
	}}
	r := newReviewer(t, provider, agent, nil)

	require.NoError(t, r.Enqueue(model.ReviewTask{ProjectID: "owner/repo", Number: 1}))

	assert.Eventually(t, func() bool {
		return provider.postedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}
