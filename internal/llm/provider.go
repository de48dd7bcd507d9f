package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider closes its stream without
// sending a completion marker.
var ErrEmptyResponse = errors.New("provider stream ended without completion")

// Provider streams a chat completion.
//
// GenerateStream sends chunks on ch in generation order and closes ch before
// returning. An error returned before any chunk was sent means nothing was
// generated. Cancelling ctx aborts the upstream request.
type Provider interface {
	GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamResponse) error
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestOptions are the sampling parameters of a request.
type RequestOptions struct {
	Temperature float64
	MaxTokens   int
}

type GenerateRequest struct {
	Model    string
	Messages []Message
	Options  RequestOptions
}

// GenerationStats carries token accounting for a finished generation.
type GenerationStats struct {
	PromptTokens     int
	CompletionTokens int
}

// StreamResponse is one chunk of a streamed completion. The final chunk has
// Done set and may carry a finish reason and stats.
type StreamResponse struct {
	Content      string
	Done         bool
	FinishReason string
	Stats        *GenerationStats
}

// send delivers resp unless ctx is cancelled first.
func send(ctx context.Context, ch chan<- StreamResponse, resp StreamResponse) error {
	select {
	case ch <- resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
