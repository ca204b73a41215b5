package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/deepscan/internal/domain/ai"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/schema"
)

func newTestClient(t *testing.T, model string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{APIKey: "test-key", Model: model, BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return c
}

func testRequest() ai.Request {
	return ai.Request{
		Name:   "synthesize_report",
		System: "You are an expert.",
		Prompt: "Summarize.",
		Schema: schema.Object(map[string]jsonschema.Definition{"report": schema.String("")}, "report"),
	}
}

func TestGenerate(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"report\":\"ok\"}"},"finish_reason":"stop"}]}`))
	})

	out, err := c.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"report":"ok"}`, out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, defaultMaxTokens, got["max_tokens"])
	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	js := format["json_schema"].(map[string]any)
	assert.Equal(t, "synthesize_report", js["name"])
	assert.Equal(t, "object", js["schema"].(map[string]any)["type"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "Summarize.", msgs[1].(map[string]any)["content"])
}

func TestGenerate_ReasoningModelUsesCompletionTokens(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, "o3-mini", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	})

	_, err := c.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.EqualValues(t, defaultMaxTokens, got["max_completion_tokens"])
	assert.NotContains(t, got, "max_tokens")
}

func TestGenerate_Quota(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := c.Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrQuotaExceeded))
}

func TestGenerate_ServerError(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	_, err := c.Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ai.ErrQuotaExceeded))
}

func TestGenerate_NoChoices(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}
