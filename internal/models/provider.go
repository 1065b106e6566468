package models

import "time"

type ProviderStatus string

const (
	ProviderHealthy     ProviderStatus = "healthy"
	ProviderDegraded    ProviderStatus = "degraded"
	ProviderUnavailable ProviderStatus = "unavailable"
)

// GenerationOptions is an immutable per-call value. Field names are generic;
// each provider adapter translates them to its own wire format.
type GenerationOptions struct {
	Temperature    float32
	MaxTokens      int
	TopP           float32
	ResponseFormat string // "" or "json"
	SystemPrompt   string
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type GenerationResult struct {
	Content  string     `json:"content"`
	Provider string     `json:"provider"`
	Model    string     `json:"model"`
	Usage    TokenUsage `json:"usage"`
}

// ProviderHealth is a read-only snapshot of one provider's health state.
type ProviderHealth struct {
	Name          string         `json:"name"`
	Status        ProviderStatus `json:"status"`
	RequestCount  int64          `json:"request_count"`
	ErrorCount    int            `json:"error_count"`
	LastError     string         `json:"last_error,omitempty"`
	LastErrorTime *time.Time     `json:"last_error_time,omitempty"`
	IsHealthy     bool           `json:"is_healthy"`
}
