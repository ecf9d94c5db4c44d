package diagnosis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

const messageReply = `{"id":"msg_01","type":"message","role":"assistant","model":"test-model",` +
	`"content":[{"type":"text","text":"resposta"}],"stop_reason":"end_turn",` +
	`"usage":{"input_tokens":3,"output_tokens":1}}`

// recordingServer answers every request with messageReply and hands the
// decoded request body to the test.
func recordingServer(t *testing.T) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()
	reqs := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("Anthropic-Version"))

		var got capturedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reqs <- got

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageReply))
	}))
	t.Cleanup(srv.Close)
	return srv, reqs
}

func TestAnthropicGenerator(t *testing.T) {
	srv, reqs := recordingServer(t)

	out, err := NewAnthropicGenerator("test-key", "test-model", srv.URL).Generate(context.Background(), "olá")
	require.NoError(t, err)
	assert.Equal(t, "resposta", out)

	got := <-reqs
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, int64(defaultMaxTokens), got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "olá", got.Messages[0].Content[0].Text)
}

func TestAnthropicGeneratorMaxTokens(t *testing.T) {
	srv, reqs := recordingServer(t)

	base := NewAnthropicGenerator("test-key", "", srv.URL)
	_, err := base.WithMaxTokens(1000).Generate(context.Background(), "x")
	require.NoError(t, err)

	got := <-reqs
	assert.Equal(t, int64(1000), got.MaxTokens)
	assert.Equal(t, DefaultAnthropicModel, got.Model)
	assert.Equal(t, int64(defaultMaxTokens), base.maxTokens)
}

func TestAnthropicGeneratorHTTPError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicGenerator("k", "", srv.URL).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "529")
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropicGeneratorNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_02","type":"message","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicGenerator("k", "m", srv.URL).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}
