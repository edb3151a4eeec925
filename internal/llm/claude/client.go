package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"paperlens/internal/config"
	"paperlens/internal/domain"
	"paperlens/internal/llm"
	"paperlens/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
	providerName = "claude"

	// minThinkingBudget is the smallest budget the Messages API accepts.
	minThinkingBudget = 1024
	// answerTokens is reserved on top of the thinking budget for the reply itself.
	answerTokens = 8192
)

func init() {
	llm.RegisterProvider(providerName, func(cfg *config.LLMConfig) (port.LLMClient, error) {
		return NewClient(cfg)
	})
}

// Client implements port.LLMClient using the Anthropic Messages API.
type Client struct {
	apiKey         string
	model          string
	endpoint       string
	thinkingBudget int
	client         *http.Client
}

// NewClient creates a Claude client. cfg.BaseURL overrides the API endpoint.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = apiURL
	}
	return NewClientWithEndpoint(cfg, endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.LLMConfig, endpoint string) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrEmptyAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	budget := cfg.ThinkingBudget
	if budget > 0 && budget < minThinkingBudget {
		budget = minThinkingBudget
	}
	return &Client{
		apiKey:         cfg.APIKey,
		model:          model,
		endpoint:       endpoint,
		thinkingBudget: budget,
		client:         &http.Client{Timeout: cfg.Timeout()},
	}, nil
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": answerTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": input.Prompt,
			},
		},
	}
	if c.thinkingBudget > 0 {
		reqBody["max_tokens"] = c.thinkingBudget + answerTokens
		reqBody["thinking"] = map[string]interface{}{
			"type":          "enabled",
			"budget_tokens": c.thinkingBudget,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, llm.StatusError(providerName, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	text, err := parseResponse(respBody)
	if err != nil {
		return nil, err
	}
	return &port.GenerateOutput{Text: text, ModelUsed: c.model}, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// parseResponse returns the first text block; thinking blocks are skipped.
func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text block (stop reason %q)", domain.ErrNoReply, resp.StopReason)
}
