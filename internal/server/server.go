package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gavelbot/gavel/internal/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TaskQueue accepts review tasks for detached processing.
type TaskQueue interface {
	Enqueue(task model.ReviewTask) error
}

// Server exposes the review trigger endpoint. A request is validated,
// acknowledged with 202 and handed to the queue; the review itself runs
// detached from the request lifecycle.
type Server struct {
	queue  TaskQueue
	config Config
	log    logze.Logger
	server *servex.Server
}

// New creates a new review server
func New(cfg Config, queue TaskQueue) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}
	if queue == nil {
		return nil, erro.New("task queue is required")
	}

	log := logze.With("module", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	h := &Server{
		queue:  queue,
		config: cfg,
		log:    log,
		server: server,
	}

	server.HandleFunc(cfg.Endpoint, h.HandleReview)

	return h, nil
}

// Start starts the review server
func (h *Server) Start(ctx context.Context) error {
	if h.config.EnableHTTPS {
		return h.server.StartHTTPS(h.config.Address)
	}
	return h.server.StartHTTP(h.config.Address)
}

// Stop stops the review server
func (h *Server) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// reviewRequest is the trigger payload.
type reviewRequest struct {
	Token      string `json:"token"`
	Repository string `json:"repository"`
	PRNumber   int    `json:"pr_number"`
	Model      string `json:"model"`
}

// reviewAccepted is the 202 acknowledgment body.
type reviewAccepted struct {
	Status     string `json:"status"`
	Repository string `json:"repository"`
	PRNumber   int    `json:"pr_number"`
}

// HandleReview accepts a review trigger and schedules the workflow.
func (h *Server) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	if r.Method != http.MethodPost {
		ctx.Response(http.StatusMethodNotAllowed)
		return
	}

	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read request body")
		return
	}

	var req reviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		ctx.BadRequest(err, "failed to parse request body")
		return
	}

	if strings.TrimSpace(req.Repository) == "" {
		ctx.BadRequest(erro.New("repository is required"), "repository is required")
		return
	}
	if req.PRNumber <= 0 {
		ctx.BadRequest(erro.New("pr_number must be positive"), "pr_number must be positive")
		return
	}

	task := model.ReviewTask{
		ProjectID: req.Repository,
		Number:    req.PRNumber,
		Token:     req.Token,
		Model:     req.Model,
	}

	if err := h.queue.Enqueue(task); err != nil {
		ctx.InternalServerError(err, "failed to schedule review")
		return
	}

	h.log.Info("accepted review task", "task", task.String())

	ctx.Response(http.StatusAccepted, reviewAccepted{
		Status:     "accepted",
		Repository: req.Repository,
		PRNumber:   req.PRNumber,
	})
}
