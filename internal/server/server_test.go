package server_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gavelbot/gavel/internal/model"
	"github.com/gavelbot/gavel/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQueue struct {
	tasks []model.ReviewTask
	err   error
}

func (q *stubQueue) Enqueue(task model.ReviewTask) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func newTestServer(t *testing.T, queue *stubQueue) *server.Server {
	t.Helper()
	s, err := server.New(server.Config{}, queue)
	require.NoError(t, err)
	return s
}

func postReview(s *server.Server, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assistant/review", strings.NewReader(body))
	s.HandleReview(rec, req)
	return rec
}

func TestHandleReviewAcceptsTask(t *testing.T) {
	queue := &stubQueue{}
	s := newTestServer(t, queue)

	rec := postReview(s, `{"token": "tok", "repository": "owner/repo", "pr_number": 42, "model": "custom"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, model.ReviewTask{
		ProjectID: "owner/repo",
		Number:    42,
		Token:     "tok",
		Model:     "custom",
	}, queue.tasks[0])
	assert.Contains(t, rec.Body.String(), "accepted")
}

func TestHandleReviewRejectsMissingRepository(t *testing.T) {
	queue := &stubQueue{}
	s := newTestServer(t, queue)

	rec := postReview(s, `{"pr_number": 1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, queue.tasks)
}

func TestHandleReviewRejectsBadPRNumber(t *testing.T) {
	queue := &stubQueue{}
	s := newTestServer(t, queue)

	rec := postReview(s, `{"repository": "owner/repo", "pr_number": 0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, queue.tasks)
}

func TestHandleReviewRejectsMalformedBody(t *testing.T) {
	queue := &stubQueue{}
	s := newTestServer(t, queue)

	rec := postReview(s, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReviewRejectsNonPost(t *testing.T) {
	s := newTestServer(t, &stubQueue{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/assistant/review", nil)
	s.HandleReview(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleReviewQueueFailure(t *testing.T) {
	s := newTestServer(t, &stubQueue{err: errors.New("pool is closed")})

	rec := postReview(s, `{"repository": "owner/repo", "pr_number": 1}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
