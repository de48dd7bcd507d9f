package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSE(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, l := range lines {
		_, _ = io.WriteString(w, "data: "+l+"\n\n")
	}
}

func TestOpenAIProvider_GenerateStream(t *testing.T) {
	var captured openAIChatReq
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		writeSSE(w,
			`{"choices":[{"delta":{"role":"assistant"},"finish_reason":null}]}`,
			`{"choices":[{"delta":{"content":"Shadows "},"finish_reason":null}]}`,
			`{"choices":[{"delta":{"content":"knit sweaters."},"finish_reason":null}]}`,
			`{"choices":[{"delta":{},"finish_reason":"length"}]}`,
			`{"choices":[],"usage":{"prompt_tokens":40,"completion_tokens":250}}`,
			`[DONE]`,
		)
	}))
	defer server.Close()

	p := NewOpenAIProvider(server.URL+"/v1/", "sk-test")
	chunks, err := collect(context.Background(), p, testRequest())
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", authHeader)
	assert.True(t, captured.Stream)
	assert.Equal(t, 0.9, captured.Temperature)
	assert.Equal(t, 250, captured.MaxTokens)
	assert.True(t, captured.StreamOptions.IncludeUsage)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Shadows ", chunks[0].Content)
	assert.Equal(t, "knit sweaters.", chunks[1].Content)
	assert.True(t, chunks[2].Done)
	assert.Equal(t, "length", chunks[2].FinishReason)
	assert.Equal(t, &GenerationStats{PromptTokens: 40, CompletionTokens: 250}, chunks[2].Stats)
}

func TestOpenAIProvider_Failures(t *testing.T) {
	t.Run("Missing API key fails before any request", func(t *testing.T) {
		chunks, err := collect(context.Background(), NewOpenAIProvider("http://127.0.0.1:1", ""), testRequest())
		assert.Empty(t, chunks)
		assert.ErrorContains(t, err, "api key is required")
	})

	t.Run("Error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		chunks, err := collect(context.Background(), NewOpenAIProvider(server.URL, "k"), testRequest())
		assert.Empty(t, chunks)
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("Error event mid-stream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeSSE(w,
				`{"choices":[{"delta":{"content":"partial"}}]}`,
				`{"error":{"message":"server overloaded"}}`,
			)
		}))
		defer server.Close()

		chunks, err := collect(context.Background(), NewOpenAIProvider(server.URL, "k"), testRequest())
		assert.Len(t, chunks, 1)
		assert.ErrorContains(t, err, "server overloaded")
	})

	t.Run("Truncated stream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeSSE(w, `{"choices":[{"delta":{"content":"partial"}}]}`)
		}))
		defer server.Close()

		chunks, err := collect(context.Background(), NewOpenAIProvider(server.URL, "k"), testRequest())
		assert.Len(t, chunks, 1)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("Finish without DONE sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeSSE(w, `{"choices":[{"delta":{"content":"ok"},"finish_reason":"stop"}]}`)
		}))
		defer server.Close()

		chunks, err := collect(context.Background(), NewOpenAIProvider(server.URL, "k"), testRequest())
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.True(t, chunks[1].Done)
		assert.Equal(t, "stop", chunks[1].FinishReason)
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("Ollama", func() (Provider, error) { return NewOllamaProvider("http://ollama:11434"), nil })
	r.Register("openai", func() (Provider, error) { return NewOpenAIProvider("", "k"), nil })

	p, err := r.Get(" OLLAMA ")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = r.Get("anthropic")
	assert.ErrorContains(t, err, `unknown llm provider "anthropic" (known: ollama, openai)`)
}
