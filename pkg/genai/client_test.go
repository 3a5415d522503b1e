package genai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "key", Model: "test-model", Timeout: 2 * time.Second})
}

func TestGenerateJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		var req request
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"mood\":\"Calm\"}"}]}}]}`))
	})

	var out struct {
		Mood string `json:"mood"`
	}
	err := client.GenerateJSON(context.Background(), "prompt", Schema{"type": "OBJECT"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Calm", out.Mood)
}

func TestGenerateGrounded_CollectsSources(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"News"}]},
			"groundingMetadata":{"groundingChunks":[{"web":{"uri":"https://a.example","title":"A"}},{"web":{"uri":""}}]}}]}`))
	})

	answer, err := client.GenerateGrounded(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "News", answer.Text)
	assert.Equal(t, []Source{{URI: "https://a.example", Title: "A"}}, answer.Sources)
}

func TestGenerate_UpstreamErrorTripsBreaker(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	var out map[string]interface{}
	for i := 0; i < 5; i++ {
		assert.Error(t, client.GenerateJSON(context.Background(), "prompt", nil, &out))
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, "open", client.State())
}

func TestGenerate_NotConfigured(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost", Model: "m"})
	var out map[string]interface{}
	assert.ErrorIs(t, client.GenerateJSON(context.Background(), "prompt", nil, &out), ErrNotConfigured)
}
