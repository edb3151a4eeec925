package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"paperlens/internal/config"
	"paperlens/internal/domain"
	"paperlens/internal/llm"
	"paperlens/internal/port"
)

const (
	defaultModel = "gpt-4o"
	providerName = "openai"
)

func init() {
	llm.RegisterProvider(providerName, func(cfg *config.LLMConfig) (port.LLMClient, error) {
		return NewClient(cfg)
	})
}

// Client implements port.LLMClient for OpenAI-compatible chat completion APIs.
type Client struct {
	api             *openai.Client
	model           string
	reasoningEffort string
}

// NewClient creates a client from config. cfg.BaseURL selects an OpenAI-compatible endpoint.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, domain.ErrEmptyAPIKey
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		openaiCfg.BaseURL = baseURL
	}
	openaiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	return &Client{
		api:             openai.NewClientWithConfig(openaiCfg),
		model:           model,
		reasoningEffort: ReasoningEffort(cfg.ThinkingBudget),
	}, nil
}

// ReasoningEffort maps a thinking budget in tokens onto the coarse effort levels
// understood by reasoning models. A non-positive budget leaves the model default.
func ReasoningEffort(budget int) string {
	switch {
	case budget <= 0:
		return ""
	case budget < 2048:
		return "low"
	case budget < 8192:
		return "medium"
	default:
		return "high"
	}
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: input.Prompt},
		},
		ReasoningEffort: c.reasoningEffort,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, llm.StatusError(providerName, apiErr.HTTPStatusCode, []byte(apiErr.Message), "")
		}
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", domain.ErrNoReply)
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return nil, fmt.Errorf("%w: empty message (finish reason %q)", domain.ErrNoReply, resp.Choices[0].FinishReason)
	}
	return &port.GenerateOutput{Text: text, ModelUsed: resp.Model}, nil
}
