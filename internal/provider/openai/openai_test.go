package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colortune/internal/provider"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, reply string, got *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   got.Model,
			"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": reply}}},
		})
	}))
}

func TestAnalyzeImageWithImage(t *testing.T) {
	var got chatRequest
	srv := newServer(t, `{"scene_type": "street"}`, &got)
	defer srv.Close()

	p, err := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1", HTTPClient: srv.Client()})
	require.NoError(t, err)

	out, err := p.AnalyzeImage(context.Background(), []byte{0xff, 0xd8}, "describe")
	require.NoError(t, err)
	assert.Equal(t, `{"scene_type": "street"}`, out)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, provider.DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "image_url", got.Messages[0].Content[0].Type)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", got.Messages[0].Content[0].ImageURL.URL)
	assert.Equal(t, "text", got.Messages[0].Content[1].Type)
	assert.Equal(t, "describe", got.Messages[0].Content[1].Text)
}

func TestAnalyzeImageTextOnly(t *testing.T) {
	var got chatRequest
	srv := newServer(t, "ok", &got)
	defer srv.Close()

	p, err := New(Config{Endpoint: DeepSeek, APIKey: "test-key", BaseURL: srv.URL + "/v1", HTTPClient: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())

	_, err = p.AnalyzeImage(context.Background(), nil, "profile")
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", got.Model)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "text", got.Messages[0].Content[0].Type)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	p, err := New(Config{Endpoint: GLM, APIKey: "test-key", BaseURL: srv.URL + "/v1", HTTPClient: srv.Client()})
	require.NoError(t, err)

	_, err = p.AnalyzeImage(context.Background(), nil, "x")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "glm API error (status 401): bad key"), err.Error())
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{Endpoint: Qwen})
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestEndpointDefaults(t *testing.T) {
	tests := []struct {
		endpoint Endpoint
		model    string
	}{
		{OpenAI, "gpt-4o"},
		{DeepSeek, "deepseek-chat"},
		{GLM, "glm-4v-flash"},
		{Qwen, "qwen-vl-max"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint.Name, func(t *testing.T) {
			p, err := New(Config{Endpoint: tt.endpoint, APIKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, tt.model, p.Model())
			assert.Equal(t, tt.endpoint.Name, p.Name())
		})
	}

	p, err := New(Config{APIKey: "k", Model: "gpt-4.1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", p.Model())
}
