package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openAISystemPrompt = "You are a file purpose classifier. You MUST respond with ONLY a valid JSON object. " +
	"Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. " +
	"Start your response directly with { and end with }."

// openAIClient implements the Client interface for OpenAI-compatible APIs.
type openAIClient struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client. A custom BaseURL allows
// pointing at any OpenAI-compatible endpoint.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 150
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &openAIClient{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

// ClassifyPurpose sends a purpose classification request and parses the JSON
// reply.
func (c *openAIClient) ClassifyPurpose(ctx context.Context, prompt string) (PurposeResponse, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openAISystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return PurposeResponse{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return PurposeResponse{}, fmt.Errorf("no completion choices returned")
	}

	return parsePurposeResponse(resp.Choices[0].Message.Content)
}
