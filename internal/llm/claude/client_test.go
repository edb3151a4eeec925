package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlens/internal/config"
	"paperlens/internal/domain"
	"paperlens/internal/llm"
	"paperlens/internal/llm/claude"
	"paperlens/internal/port"
)

func newTestClient(t *testing.T, serverURL string, budget int) *claude.Client {
	t.Helper()
	c, err := claude.NewClientWithEndpoint(&config.LLMConfig{
		Provider:       "claude",
		APIKey:         "test-key",
		ThinkingBudget: budget,
	}, serverURL)
	require.NoError(t, err)
	return c
}

func TestGenerate_WithThinking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(5120+8192), reqBody["max_tokens"])
		thinking := reqBody["thinking"].(map[string]interface{})
		assert.Equal(t, "enabled", thinking["type"])
		assert.Equal(t, float64(5120), thinking["budget_tokens"])

		_, _ = w.Write([]byte(`{"content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"a,b,c,d,1,2,3,4,5,6,7,8"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	out, err := newTestClient(t, server.URL, 5120).Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "a,b,c,d,1,2,3,4,5,6,7,8", out.Text)
}

func TestGenerate_WithoutThinking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.NotContains(t, reqBody, "thinking")
		assert.Equal(t, float64(8192), reqBody["max_tokens"])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"reply"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	out, err := newTestClient(t, server.URL, 0).Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "reply", out.Text)
}

func TestGenerate_NoTextBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[],"stop_reason":"max_tokens"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 0).Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	assert.ErrorIs(t, err, domain.ErrNoReply)
}

func TestGenerate_Overloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 0).Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 529, apiErr.StatusCode)
}
