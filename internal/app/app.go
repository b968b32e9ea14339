package app

import (
	"context"

	"github.com/gavelbot/gavel/internal/agent"
	"github.com/gavelbot/gavel/internal/cache"
	"github.com/gavelbot/gavel/internal/config"
	"github.com/gavelbot/gavel/internal/model"
	"github.com/gavelbot/gavel/internal/provider"
	"github.com/gavelbot/gavel/internal/reviewer"
	"github.com/gavelbot/gavel/internal/server"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Gavel is the main service that wires all components together
type Gavel struct {
	provider model.CodeProvider
	agent    *agent.Agent
	cache    *cache.Cache[*model.ReviewOutcome]
	reviewer *reviewer.Reviewer
	server   *server.Server

	cfg config.Config
	log logze.Logger
}

// New creates a new review service
func New(ctx contem.Context, cfg config.Config) (*Gavel, error) {
	service := &Gavel{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	if err := service.init(ctx, cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

// StartServer starts the HTTP entry point and blocks until it stops.
func (s *Gavel) StartServer(ctx context.Context) error {
	if err := s.server.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start server")
	}
	return nil
}

// RunReview runs one review workflow synchronously, for one-shot CLI use.
func (s *Gavel) RunReview(ctx context.Context, projectID string, number int) error {
	result, err := s.reviewer.ReviewPullRequest(ctx, model.ReviewTask{
		ProjectID: projectID,
		Number:    number,
	})
	if err != nil {
		return errm.Wrap(err, "failed to review pull request")
	}
	if !result.IsSuccess {
		return errm.New("review finished with %d errors", len(result.Errors))
	}
	return nil
}

func (s *Gavel) init(ctx contem.Context, cfg config.Config) (err error) {
	// Create VCS provider
	s.provider, err = provider.New(cfg.Provider)
	if err != nil {
		return errm.Wrap(err, "failed to create VCS provider")
	}

	// Create AI agent
	s.agent, err = agent.New(ctx, cfg.Agent)
	if err != nil {
		return errm.Wrap(err, "failed to create AI agent")
	}

	// Create result cache with its own shutdown hook
	s.cache = cache.New[*model.ReviewOutcome](cfg.Cache)
	ctx.AddFunc(s.cache.Close)

	// Create the review orchestrator
	s.reviewer, err = reviewer.New(cfg.Reviewer, reviewer.Deps{
		Provider:        s.provider,
		ProviderFactory: s.providerForToken,
		Agent:           s.agent,
		Cache:           s.cache,
	})
	if err != nil {
		return errm.Wrap(err, "failed to create reviewer")
	}
	ctx.AddFunc(s.reviewer.Close)

	// Create the HTTP entry point
	s.server, err = server.New(cfg.Server, s.reviewer)
	if err != nil {
		return errm.Wrap(err, "failed to create server")
	}
	ctx.Add(s.server.Stop)

	return nil
}

// providerForToken builds a provider bound to a request-scoped token.
func (s *Gavel) providerForToken(token string) (model.CodeProvider, error) {
	return provider.New(s.cfg.Provider.WithToken(token))
}
