package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func TestNewClient_RequiresKey(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), DefaultAPIKeyEnv)
}

func TestClient_Generate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello, "},{"text":"world."}]}}]}`))
	}))
	defer srv.Close()

	t.Setenv(DefaultAPIKeyEnv, "g-key")
	c, err := NewClient(Config{BaseURL: srv.URL + "/", Model: "models/gemini-test"})
	require.NoError(t, err)
	assert.Equal(t, "gemini/gemini-test", c.Name())

	text, err := c.Generate(context.Background(), "prompt", domain.GenerateOptions{MaxTokens: 1024, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", text)
	assert.Equal(t, 1024, got.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, 0.7, got.GenerationConfig.Temperature)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "prompt", got.Contents[0].Parts[0].Text)
}

func TestClient_GenerateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	t.Setenv(DefaultAPIKeyEnv, "bad")
	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "prompt", domain.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestClient_GenerateBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	t.Setenv(DefaultAPIKeyEnv, "k")
	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "prompt", domain.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}
