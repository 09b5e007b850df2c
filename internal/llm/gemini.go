package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Invoke issues one generation call against the requested Gemini model.
func (c *GeminiClient) Invoke(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		return "", &Error{Kind: KindProvider, Provider: ProviderGemini, Message: "no model specified"}
	}

	model := c.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	model.SetMaxOutputTokens(maxOutputTokens)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// classifyGeminiError translates a Gemini API failure into the common taxonomy.
func classifyGeminiError(err error) *Error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &Error{
			Kind:     classifyStatus(apiErr.Code),
			Provider: ProviderGemini,
			Message:  apiErr.Message,
			Cause:    err,
		}
	}
	if isConnectionError(err) {
		return &Error{Kind: KindConnection, Provider: ProviderGemini, Message: "cannot reach Gemini API", Cause: err}
	}
	return &Error{Kind: KindUnknown, Provider: ProviderGemini, Message: "generation failed", Cause: err}
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &Error{Kind: KindProvider, Provider: ProviderGemini, Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &Error{Kind: KindProvider, Provider: ProviderGemini, Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &Error{Kind: KindProvider, Provider: ProviderGemini, Message: "no text parts in response"}
	}

	return strings.Join(parts, ""), nil
}
