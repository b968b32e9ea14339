package agent

import (
	"context"
	"strings"

	"github.com/gavelbot/gavel/internal/agent/gemini"
	"github.com/gavelbot/gavel/internal/agent/openai"
	"github.com/gavelbot/gavel/internal/agent/prompts"
	"github.com/gavelbot/gavel/internal/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ model.ReviewAgent = (*Agent)(nil)

// Agent is the review generator facade: it owns the prompt profiles and a
// concrete model backend and turns one file diff into a ReviewOutcome.
type Agent struct {
	cfg      Config
	logger   logze.Logger
	profiles *prompts.Registry
	api      model.AgentAPI
}

func New(ctx context.Context, cfg Config) (*Agent, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	modelCfg := model.ModelConfig{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		URL:      cfg.BaseURL,
		ProxyURL: cfg.ProxyURL,
		IsTest:   cfg.IsTest,
	}

	agent := &Agent{
		cfg:    cfg,
		logger: logze.With("component", "agent", "type", string(cfg.Type)),
	}

	var err error
	switch cfg.Type {
	case Gemini:
		agent.api, err = gemini.New(ctx, modelCfg)
		agent.profiles = prompts.NewRegistry(lang.Check(cfg.Model, prompts.DefaultGeminiModel))
	case OpenAI:
		cli, cliErr := cliex.NewWithConfig(cliex.Config{
			UserAgent:      cfg.UserAgent,
			ProxyAddress:   cfg.ProxyURL,
			RequestTimeout: cfg.Timeout,
		})
		if cliErr != nil {
			return nil, errm.Wrap(cliErr, "failed to create HTTP client")
		}
		agent.api, err = openai.New(ctx, cli, modelCfg)
		agent.profiles = prompts.NewRegistry(lang.Check(cfg.Model, prompts.DefaultGroqModel))
	default:
		return nil, errm.Errorf("unsupported agent type: %s", cfg.Type)
	}
	if err != nil {
		return nil, errm.Wrap(err, "failed to create agent")
	}

	return agent, nil
}

// Profiles exposes the profile registry so callers can register model
// specific prompt variants.
func (a *Agent) Profiles() *prompts.Registry {
	return a.profiles
}

// ReviewFileDiff asks the model to review one file's diff and maps the raw
// answer onto the outcome union: empty content means nothing to report,
// structured profiles must parse as JSON, text profiles pass through.
func (a *Agent) ReviewFileDiff(ctx context.Context, req model.FileReviewRequest) (*model.ReviewOutcome, error) {
	profile := a.profiles.ForModel(req.Model)

	response, err := a.api.CallAPI(ctx, model.APIRequest{
		Prompt:       prompts.UserPrompt(req.Path, req.Diff),
		SystemPrompt: profile.SystemPrompt,
		Model:        profile.Model,
		MaxTokens:    a.cfg.MaxTokens,
		Temperature:  a.cfg.Temperature,
		ResponseType: lang.If(profile.Output == prompts.OutputJSON, "application/json", "text/plain"),
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to call API")
	}

	content := strings.TrimSpace(stripThinking(response.Content))
	if content == "" {
		return model.AbsentOutcome(), nil
	}

	if profile.Output == prompts.OutputJSON {
		review, err := parseStructured(content)
		if err != nil {
			return nil, errm.Wrap(err, "failed to parse review response as JSON")
		}
		return &model.ReviewOutcome{Kind: model.OutcomeStructured, Structured: review}, nil
	}

	return &model.ReviewOutcome{Kind: model.OutcomeText, Text: content}, nil
}

// parseStructured extracts the JSON object from a possibly fenced response.
func parseStructured(response string) (*model.StructuredReview, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimPrefix(response, "json")
	response = strings.TrimSuffix(response, "```")

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, errm.New("no valid JSON found in response")
	}

	var result model.StructuredReview
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return nil, errm.Wrap(err, "failed to parse JSON response")
	}

	return &result, nil
}

// stripThinking removes <think>...</think> blocks that reasoning models
// prepend to their answers. An unterminated block discards the rest of the
// content, which then reads as an absent outcome.
func stripThinking(content string) string {
	const (
		openTag  = "<think>"
		closeTag = "</think>"
	)

	for {
		start := strings.Index(content, openTag)
		if start == -1 {
			return content
		}
		end := strings.Index(content[start:], closeTag)
		if end == -1 {
			return content[:start]
		}
		content = content[:start] + content[start+end+len(closeTag):]
	}
}
