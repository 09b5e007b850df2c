package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client using the official openai-go SDK
// (chat completions).
type OpenAIClient struct {
	opts []option.RequestOption
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{opts: []option.RequestOption{option.WithAPIKey(apiKey)}}
}

// Invoke issues one chat-completion call against the requested model.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		return "", &Error{Kind: KindProvider, Provider: ProviderOpenAI, Message: "no model specified"}
	}

	client := openai.NewClient(c.opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.System),
		openai.UserMessage(req.User),
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    msgs,
		Temperature: openai.Float(float64(req.Temperature)),
		MaxTokens:   openai.Int(maxOutputTokens),
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindProvider, Provider: ProviderOpenAI, Message: "empty choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the SDK holds no persistent resources.
func (c *OpenAIClient) Close() error {
	return nil
}

// classifyOpenAIError translates an OpenAI API failure into the common taxonomy.
func classifyOpenAIError(err error) *Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &Error{
			Kind:     classifyStatus(apiErr.StatusCode),
			Provider: ProviderOpenAI,
			Message:  apiErr.Message,
			Cause:    err,
		}
	}
	if isConnectionError(err) {
		return &Error{Kind: KindConnection, Provider: ProviderOpenAI, Message: "cannot reach OpenAI API", Cause: err}
	}
	return &Error{Kind: KindUnknown, Provider: ProviderOpenAI, Message: "generation failed", Cause: err}
}
