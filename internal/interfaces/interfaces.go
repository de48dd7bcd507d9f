package interfaces

import (
	"context"

	"after3am/backend/internal/model"
)

// This file defines the interfaces for our core services.
// Handlers depend on these instead of concrete implementations so they can be
// tested against the mocks in the mocks subpackage.

// ChatService generates a persona reply for a chat request.
// Implementations send chunks in order and close streamChan when they return.
// A chunk with Error set is always the last one sent.
type ChatService interface {
	HandleChat(ctx context.Context, req *model.ChatRequest, streamChan chan<- model.StreamResponse)
}
