package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	app_errors "after3am/backend/internal/errors"
	"after3am/backend/internal/interfaces"
	"after3am/backend/internal/model"
	"after3am/backend/internal/stream"
)

// chatFailureMessage is the only error text the chat endpoint ever returns.
const chatFailureMessage = "Failed to generate response"

// streamErrorMessage replaces provider error details inside a stream.
const streamErrorMessage = "An error occurred."

type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// HandleChat godoc
// @Summary      Stream a persona reply
// @Description  Streams the reply as newline framed records: 0:"text", 3:"error", f/e/d metadata.
// @Description  A stream that ends without a d: record was cut short.
// @Tags         Chat
// @Accept       json
// @Produce      plain
// @Param        request  body      model.ChatRequest  true  "Prompt, mode and recent history"
// @Success      200      {string}  string             "data stream"
// @Failure      500      {object}  ErrorResponse
// @Router       /chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	log := slog.With("request_id", middleware.GetReqID(r.Context()))

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		failChat(w, log, fmt.Errorf("%w: invalid request body: %v", app_errors.ErrValidation, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		failChat(w, log, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	streamChan := make(chan model.StreamResponse)
	go h.service.HandleChat(ctx, &req, streamChan)
	defer func() {
		// Stop the service and let it close the channel if we return early.
		cancel()
		for range streamChan {
		}
	}()

	first, ok := <-streamChan
	if !ok {
		log.Info("Chat stream closed before producing output", "mode", req.Mode)
		return
	}
	if first.Error != "" {
		failChat(w, log, fmt.Errorf("%w: %s", app_errors.ErrUpstream, first.Error))
		return
	}

	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set(stream.VersionHeader, stream.Version)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sw := stream.NewWriter(w)
	if err := sw.Start("msg-" + uuid.NewString()); err != nil {
		log.Warn("Client disconnected before the stream started", "error", err)
		return
	}

	chunk := first
	for {
		done, err := writeChunk(sw, chunk)
		if err != nil {
			log.Warn("Failed to write stream, client might have disconnected", "error", err)
			return
		}
		if done {
			break
		}
		if chunk, ok = <-streamChan; !ok {
			// Provider stopped without a completion marker; the client sees
			// a stream without d: and treats it as cut short.
			log.Warn("Chat stream ended without completion", "mode", req.Mode)
			return
		}
	}

	log.Debug("Finished streaming response", "mode", req.Mode)
}

// writeChunk encodes one service chunk. done is true once the stream has
// been terminated by a finish or error record.
func writeChunk(sw *stream.Writer, chunk model.StreamResponse) (done bool, err error) {
	if chunk.Error != "" {
		slog.Warn("Sending stream error to client", "error", chunk.Error)
		return true, sw.Error(streamErrorMessage)
	}
	if err := sw.Text(chunk.Content); err != nil {
		return true, err
	}
	if !chunk.Done {
		return false, nil
	}
	var usage stream.Usage
	if chunk.Usage != nil {
		usage = stream.Usage{PromptTokens: chunk.Usage.PromptTokens, CompletionTokens: chunk.Usage.CompletionTokens}
	}
	return true, sw.Finish(chunk.FinishReason, usage)
}

// failChat answers a chat request that failed before any output with the
// fixed 500 payload. The cause is only logged.
func failChat(w http.ResponseWriter, log *slog.Logger, err error) {
	log.Warn("Chat request failed before streaming", "error", err)
	respondWithJSON(w, http.StatusInternalServerError, ErrorResponse{Error: chatFailureMessage})
}
