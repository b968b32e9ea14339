package model

import (
	"context"
	"time"
)

// ModelConfig carries what a concrete agent backend needs to talk to its API.
type ModelConfig struct {
	APIKey   string
	Model    string
	URL      string
	ProxyURL string
	IsTest   bool
}

// AgentAPI is one model backend: it turns a prepared request into raw content.
type AgentAPI interface {
	CallAPI(ctx context.Context, req APIRequest) (APIResponse, error)
}

// APIRequest is a single generation call.
type APIRequest struct {
	Prompt       string
	SystemPrompt string
	Model        string // overrides the configured model when set
	MaxTokens    int
	Temperature  float32
	ResponseType string // "application/json" or "text/plain"
	URL          string
}

// APIResponse is the raw result of a generation call.
type APIResponse struct {
	CreateTime       time.Time
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
