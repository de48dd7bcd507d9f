package service

import (
	"context"
	"log/slog"

	"after3am/backend/internal/llm"
	"after3am/backend/internal/model"
	"after3am/backend/internal/prompt"
)

// Sampling parameters of every persona reply.
const (
	Temperature = 0.9
	MaxTokens   = 250
)

// ContextLimit is the number of history entries forwarded to the model.
const ContextLimit = 10

type ChatService struct {
	llm   llm.Provider
	model string
}

func NewChatService(provider llm.Provider, modelName string) *ChatService {
	return &ChatService{llm: provider, model: modelName}
}

// BuildMessages assembles the message list for req: the persona instruction
// first and exactly once, then the history, then the prompt as a user message
// when the history carries no conversation yet.
func BuildMessages(req *model.ChatRequest) []llm.Message {
	history := Tail(req.ConversationHistory, ContextLimit)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: string(model.RoleSystem), Content: prompt.InstructionFor(req.Mode)})

	for _, msg := range history {
		if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
			continue
		}
		messages = append(messages, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}

	if len(messages) == 1 {
		messages = append(messages, llm.Message{Role: string(model.RoleUser), Content: req.Prompt})
	}
	return messages
}

// Tail returns the last n entries of history.
func Tail(history []model.Message, n int) []model.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// HandleChat streams the persona reply for req into streamChan and closes it.
// A provider failure is reported as a final chunk with Error set; when no
// text was sent before it the caller can still answer with a plain error.
func (s *ChatService) HandleChat(ctx context.Context, req *model.ChatRequest, streamChan chan<- model.StreamResponse) {
	defer close(streamChan)

	llmReq := &llm.GenerateRequest{
		Model:    s.model,
		Messages: BuildMessages(req),
		Options:  llm.RequestOptions{Temperature: Temperature, MaxTokens: MaxTokens},
	}

	llmStreamChan := make(chan llm.StreamResponse)
	errc := make(chan error, 1)
	go func() {
		errc <- s.llm.GenerateStream(ctx, llmReq, llmStreamChan)
	}()

	sent := 0
	for chunk := range llmStreamChan {
		out := model.StreamResponse{
			Content:      chunk.Content,
			Done:         chunk.Done,
			FinishReason: chunk.FinishReason,
		}
		if chunk.Stats != nil {
			out.Usage = &model.Usage{
				PromptTokens:     chunk.Stats.PromptTokens,
				CompletionTokens: chunk.Stats.CompletionTokens,
			}
		}
		if !s.send(ctx, streamChan, out) {
			drain(llmStreamChan)
			<-errc
			return
		}
		sent++
	}

	err := <-errc
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		slog.Debug("Chat generation cancelled", "mode", req.Mode, "chunks_sent", sent)
		return
	}
	slog.Error("Chat generation failed", "mode", req.Mode, "chunks_sent", sent, "error", err)
	s.send(ctx, streamChan, model.StreamResponse{Error: err.Error()})
}

func (s *ChatService) send(ctx context.Context, ch chan<- model.StreamResponse, resp model.StreamResponse) bool {
	select {
	case ch <- resp:
		return true
	case <-ctx.Done():
		return false
	}
}

func drain(ch <-chan llm.StreamResponse) {
	for range ch {
	}
}
