package agent

import (
	"context"
	"testing"

	"github.com/gavelbot/gavel/internal/agent/prompts"
	"github.com/gavelbot/gavel/internal/model"
	"github.com/maxbolgarin/logze/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	content string
	err     error
	lastReq model.APIRequest
}

func (s *stubAPI) CallAPI(_ context.Context, req model.APIRequest) (model.APIResponse, error) {
	s.lastReq = req
	return model.APIResponse{Content: s.content}, s.err
}

func newTestAgent(api model.AgentAPI) *Agent {
	return &Agent{
		cfg:      Config{MaxTokens: 100, Temperature: 0.5},
		logger:   logze.Default(),
		profiles: prompts.NewRegistry(prompts.DefaultGroqModel),
		api:      api,
	}
}

func TestNewOpenAIAgent(t *testing.T) {
	a, err := New(context.Background(), Config{Type: OpenAI, APIKey: "test-key"})
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, prompts.DefaultGroqModel, a.Profiles().ForModel("").Model)
}

func TestNewUnsupportedAgentType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "watson", APIKey: "test-key"})
	assert.Error(t, err)
}

func TestReviewFileDiffStructured(t *testing.T) {
	api := &stubAPI{content: `{
		"summary": "one problem",
		"issues": [
			{"category": "performance", "description": "n+1 query", "suggestion": "batch it", "severity": "high"}
		],
		"has_issues": true,
		"review_status": "needs_changes"
	}`}

	outcome, err := newTestAgent(api).ReviewFileDiff(context.Background(), model.FileReviewRequest{Path: "a.go", Diff: "+x"})
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeStructured, outcome.Kind)
	require.NotNil(t, outcome.Structured)
	assert.True(t, outcome.HasFindings())
	require.Len(t, outcome.Structured.Findings, 1)
	assert.Equal(t, model.CategoryPerformance, outcome.Structured.Findings[0].Category)
	assert.Equal(t, model.StatusNeedsChanges, outcome.Structured.Status)
}

func TestReviewFileDiffEmptyContentIsAbsent(t *testing.T) {
	outcome, err := newTestAgent(&stubAPI{content: "  \n"}).ReviewFileDiff(context.Background(), model.FileReviewRequest{Path: "a.go"})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAbsent, outcome.Kind)
	assert.False(t, outcome.HasFindings())
}

func TestReviewFileDiffMalformedJSONFails(t *testing.T) {
	_, err := newTestAgent(&stubAPI{content: "not json at all"}).ReviewFileDiff(context.Background(), model.FileReviewRequest{Path: "a.go"})
	assert.Error(t, err)
}

func TestReviewFileDiffTextProfile(t *testing.T) {
	a := newTestAgent(&stubAPI{content: "consider renaming doStuff"})
	a.profiles.Register(prompts.Profile{
		Model:        "plain-model",
		SystemPrompt: prompts.PlainTextSystemPrompt,
		Output:       prompts.OutputText,
	})

	outcome, err := a.ReviewFileDiff(context.Background(), model.FileReviewRequest{Path: "a.go", Model: "plain-model"})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeText, outcome.Kind)
	assert.Equal(t, "consider renaming doStuff", outcome.Text)
}

func TestReviewFileDiffUsesRequestedModel(t *testing.T) {
	api := &stubAPI{content: `{"summary": "", "issues": [], "has_issues": false, "review_status": "passed"}`}
	a := newTestAgent(api)

	_, err := a.ReviewFileDiff(context.Background(), model.FileReviewRequest{Path: "a.go", Model: "custom-model"})
	require.NoError(t, err)
	assert.Equal(t, "custom-model", api.lastReq.Model)
}

func TestParseStructuredFencedResponse(t *testing.T) {
	review, err := parseStructured("```json\n{\"summary\": \"ok\", \"has_issues\": false, \"review_status\": \"passed\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "ok", review.Summary)
	assert.False(t, review.HasIssues)
}

func TestParseStructuredNoJSON(t *testing.T) {
	_, err := parseStructured("the code looks fine to me")
	assert.Error(t, err)
}

func TestStripThinking(t *testing.T) {
	assert.Equal(t, "answer", stripThinking("<think>reasoning here</think>answer"))
	assert.Equal(t, "ab", stripThinking("a<think>x</think>b"))
	assert.Equal(t, "keep", stripThinking("keep<think>unterminated"))
	assert.Equal(t, "no tags", stripThinking("no tags"))
}
