package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"after3am/backend/internal/llm"
	"after3am/backend/internal/llm/mocks"
	"after3am/backend/internal/model"
	"after3am/backend/internal/prompt"
	"after3am/backend/internal/service"
)

// streamChunks returns a mock Run func that emits chunks and closes the channel
// the way a real provider does.
func streamChunks(chunks ...llm.StreamResponse) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		ch := args.Get(2).(chan<- llm.StreamResponse)
		for _, c := range chunks {
			ch <- c
		}
		close(ch)
	}
}

func closeOnly(args mock.Arguments) {
	close(args.Get(2).(chan<- llm.StreamResponse))
}

func collect(svc *service.ChatService, req *model.ChatRequest) []model.StreamResponse {
	ch := make(chan model.StreamResponse)
	go svc.HandleChat(context.Background(), req, ch)

	var out []model.StreamResponse
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestBuildMessages(t *testing.T) {
	t.Run("Empty history appends the prompt", func(t *testing.T) {
		msgs := service.BuildMessages(&model.ChatRequest{Prompt: "I can't sleep", Mode: "advice"})

		assert.Equal(t, []llm.Message{
			{Role: "system", Content: prompt.InstructionFor("advice")},
			{Role: "user", Content: "I can't sleep"},
		}, msgs)
	})

	t.Run("History already carries the current turn", func(t *testing.T) {
		msgs := service.BuildMessages(&model.ChatRequest{
			Prompt: "and then?",
			Mode:   "story",
			ConversationHistory: []model.Message{
				{Role: model.RoleUser, Content: "once", Timestamp: 1},
				{Role: model.RoleAssistant, Content: "a door", Timestamp: 2},
				{Role: model.RoleUser, Content: "and then?", Timestamp: 3},
			},
		})

		require.Len(t, msgs, 4)
		assert.Equal(t, "system", msgs[0].Role)
		assert.Equal(t, prompt.InstructionFor("story"), msgs[0].Content)
		assert.Equal(t, llm.Message{Role: "user", Content: "and then?"}, msgs[3])
	})

	t.Run("Unknown mode uses the default instruction", func(t *testing.T) {
		msgs := service.BuildMessages(&model.ChatRequest{Prompt: "hi", Mode: "xyz"})
		assert.Equal(t, prompt.InstructionFor("default"), msgs[0].Content)
	})

	t.Run("Only the last ten history entries are used", func(t *testing.T) {
		var history []model.Message
		for i := 0; i < 15; i++ {
			history = append(history, model.Message{Role: model.RoleUser, Content: fmt.Sprint(i)})
		}

		msgs := service.BuildMessages(&model.ChatRequest{Prompt: "14", Mode: "advice", ConversationHistory: history})

		require.Len(t, msgs, 11)
		assert.Equal(t, "5", msgs[1].Content)
		assert.Equal(t, "14", msgs[10].Content)
		for _, m := range msgs[1:] {
			assert.NotEqual(t, "system", m.Role)
		}
	})
}

func TestChatService_HandleChat(t *testing.T) {
	req := &model.ChatRequest{Prompt: "I can't sleep", Mode: "advice"}

	t.Run("Success - chunks are forwarded in order", func(t *testing.T) {
		mockLLM := mocks.NewMockProvider(t)
		svc := service.NewChatService(mockLLM, "gpt-4o")

		mockLLM.On("GenerateStream", mock.Anything, mock.MatchedBy(func(r *llm.GenerateRequest) bool {
			return r.Model == "gpt-4o" &&
				r.Options.Temperature == 0.9 &&
				r.Options.MaxTokens == 250 &&
				len(r.Messages) == 2
		}), mock.Anything).
			Run(streamChunks(
				llm.StreamResponse{Content: "Count "},
				llm.StreamResponse{Content: "the ceiling."},
				llm.StreamResponse{Done: true, FinishReason: "stop", Stats: &llm.GenerationStats{PromptTokens: 9, CompletionTokens: 3}},
			)).
			Return(nil).Once()

		out := collect(svc, req)

		require.Len(t, out, 3)
		assert.Equal(t, "Count ", out[0].Content)
		assert.Equal(t, "the ceiling.", out[1].Content)
		assert.True(t, out[2].Done)
		assert.Equal(t, &model.Usage{PromptTokens: 9, CompletionTokens: 3}, out[2].Usage)
	})

	t.Run("Failure before streaming is the only chunk", func(t *testing.T) {
		mockLLM := mocks.NewMockProvider(t)
		svc := service.NewChatService(mockLLM, "gpt-4o")
		mockLLM.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
			Run(closeOnly).
			Return(errors.New("openai: invalid api key")).Once()

		out := collect(svc, req)

		require.Len(t, out, 1)
		assert.Equal(t, "openai: invalid api key", out[0].Error)
	})

	t.Run("Failure mid-stream follows the sent text", func(t *testing.T) {
		mockLLM := mocks.NewMockProvider(t)
		svc := service.NewChatService(mockLLM, "gpt-4o")
		mockLLM.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
			Run(streamChunks(llm.StreamResponse{Content: "half a tho"})).
			Return(errors.New("connection reset")).Once()

		out := collect(svc, req)

		require.Len(t, out, 2)
		assert.Equal(t, "half a tho", out[0].Content)
		assert.Equal(t, "connection reset", out[1].Error)
		assert.False(t, out[1].Done)
	})

	t.Run("Cancelled context ends the stream quietly", func(t *testing.T) {
		mockLLM := mocks.NewMockProvider(t)
		svc := service.NewChatService(mockLLM, "gpt-4o")

		ctx, cancel := context.WithCancel(context.Background())
		mockLLM.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				cancel()
				closeOnly(args)
			}).
			Return(context.Canceled).Once()

		ch := make(chan model.StreamResponse)
		go svc.HandleChat(ctx, req, ch)

		var out []model.StreamResponse
		for c := range ch {
			out = append(out, c)
		}
		assert.Empty(t, out)
	})
}
