package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIProvider streams chat completions from any OpenAI compatible API.
type OpenAIProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewOpenAIProvider(baseURL, apiKey string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{},
	}
}

type openAIStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type openAIChatReq struct {
	Model         string              `json:"model"`
	Messages      []Message           `json:"messages"`
	Stream        bool                `json:"stream"`
	Temperature   float64             `json:"temperature"`
	MaxTokens     int                 `json:"max_tokens,omitempty"`
	StreamOptions openAIStreamOptions `json:"stream_options"`
}

type openAIStreamResp struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamResponse) error {
	defer close(ch)

	if strings.TrimSpace(p.APIKey) == "" {
		return errors.New("openai: api key is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return errors.New("openai: model is required")
	}

	b, err := json.Marshal(openAIChatReq{
		Model:         req.Model,
		Messages:      req.Messages,
		Stream:        true,
		Temperature:   req.Options.Temperature,
		MaxTokens:     req.Options.MaxTokens,
		StreamOptions: openAIStreamOptions{IncludeUsage: true},
	})
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("openai: %s", msg)
	}

	final := StreamResponse{Done: true}
	finished := false

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return send(ctx, ch, final)
		}

		var decoded openAIStreamResp
		if err := json.Unmarshal([]byte(data), &decoded); err != nil {
			return fmt.Errorf("could not decode stream chunk: %w", err)
		}
		if decoded.Error != nil && decoded.Error.Message != "" {
			return fmt.Errorf("openai: %s", decoded.Error.Message)
		}
		if decoded.Usage != nil {
			final.Stats = &GenerationStats{
				PromptTokens:     decoded.Usage.PromptTokens,
				CompletionTokens: decoded.Usage.CompletionTokens,
			}
		}
		if len(decoded.Choices) == 0 {
			continue
		}

		choice := decoded.Choices[0]
		if choice.FinishReason != nil {
			final.FinishReason = *choice.FinishReason
			finished = true
		}
		if choice.Delta.Content != "" {
			if err := send(ctx, ch, StreamResponse{Content: choice.Delta.Content}); err != nil {
				return err
			}
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("could not read stream: %w", err)
	}

	// Some compatible servers close the stream without the [DONE] sentinel.
	if finished {
		return send(ctx, ch, final)
	}
	return ErrEmptyResponse
}
