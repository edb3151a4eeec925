package gemini

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
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.5-pro"
	providerName = "gemini"
)

func init() {
	llm.RegisterProvider(providerName, func(cfg *config.LLMConfig) (port.LLMClient, error) {
		return NewClient(cfg)
	})
}

// Client implements port.LLMClient using Google's Gemini generateContent API.
type Client struct {
	apiKey         string
	model          string
	endpoint       string
	thinkingBudget int
	client         *http.Client
}

// NewClient creates a Gemini client. cfg.BaseURL overrides the API endpoint.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	return NewClientWithEndpoint(cfg, cfg.BaseURL)
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
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Client{
		apiKey:         cfg.APIKey,
		model:          model,
		endpoint:       endpoint,
		thinkingBudget: cfg.ThinkingBudget,
		client:         &http.Client{Timeout: cfg.Timeout()},
	}, nil
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": input.Prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"thinkingConfig": map[string]interface{}{
				"thinkingBudget":  c.thinkingBudget,
				"includeThoughts": input.IncludeThoughts,
			},
		},
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
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
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

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text    string `json:"text"`
				Thought bool   `json:"thought"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// parseResponse returns the first non-thought part of the first candidate.
func parseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domain.ErrNoReply)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		if part.Text == "" {
			break
		}
		return part.Text, nil
	}
	return "", fmt.Errorf("%w: no text part (finish reason %q)", domain.ErrNoReply, resp.Candidates[0].FinishReason)
}
