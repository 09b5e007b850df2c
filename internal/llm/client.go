// Package llm provides a unified client abstraction over generative-text
// providers. All pipeline stages issue calls through the same Request shape
// regardless of which backend serves them.
package llm

import (
	"context"
	"fmt"
)

// Provider identifies a generative-text backend.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// maxOutputTokens bounds every generation call. Long-form scripts top out
// well below this.
const maxOutputTokens = 16384

// Request describes a single blocking generation call.
type Request struct {
	Provider    Provider
	System      string
	User        string
	Temperature float32
	Model       string
}

// Client is an abstraction over LLM providers.
type Client interface {
	// Invoke issues one generation call and blocks until a response or
	// failure. Failures are surfaced as *Error with a Kind discriminator.
	Invoke(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// Credentials holds API keys for the configured providers. A key may be
// empty if no stage routes to that provider.
type Credentials struct {
	GeminiAPIKey string
	OpenAIAPIKey string
}

// Router dispatches requests to the provider named in each request.
type Router struct {
	gemini *GeminiClient
	openai *OpenAIClient
}

// NewRouter creates clients for every provider with a configured key.
func NewRouter(ctx context.Context, creds Credentials) (*Router, error) {
	r := &Router{}

	if creds.GeminiAPIKey != "" {
		gc, err := NewGeminiClient(ctx, creds.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		r.gemini = gc
	}
	if creds.OpenAIAPIKey != "" {
		r.openai = NewOpenAIClient(creds.OpenAIAPIKey)
	}
	if r.gemini == nil && r.openai == nil {
		return nil, fmt.Errorf("no provider API keys configured")
	}

	return r, nil
}

// Invoke dispatches the request by provider id.
func (r *Router) Invoke(ctx context.Context, req Request) (string, error) {
	switch req.Provider {
	case ProviderGemini:
		if r.gemini == nil {
			return "", &Error{Kind: KindAuth, Message: "gemini provider not configured (missing API key)"}
		}
		return r.gemini.Invoke(ctx, req)
	case ProviderOpenAI:
		if r.openai == nil {
			return "", &Error{Kind: KindAuth, Message: "openai provider not configured (missing API key)"}
		}
		return r.openai.Invoke(ctx, req)
	default:
		return "", &Error{Kind: KindUnknown, Message: fmt.Sprintf("unknown provider %q", req.Provider)}
	}
}

// Close releases all underlying provider clients.
func (r *Router) Close() error {
	if r.gemini != nil {
		return r.gemini.Close()
	}
	return nil
}
