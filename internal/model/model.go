package model

import "time"

// Role tags the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem is only synthesized by the server for the persona instruction.
	RoleSystem Role = "system"
)

// Message is a single entry of a conversation history.
type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant" example:"user"`
	Content string `json:"content" example:"I can't sleep"`
	// Timestamp is the creation time in epoch milliseconds.
	Timestamp int64 `json:"timestamp" example:"1718000000000"`
}

// NewMessage returns a message stamped with t.
func NewMessage(role Role, content string, t time.Time) Message {
	return Message{Role: role, Content: content, Timestamp: t.UnixMilli()}
}

// ChatRequest is the body of a chat request.
type ChatRequest struct {
	Prompt              string    `json:"prompt" validate:"required" example:"I can't sleep"`
	Mode                string    `json:"mode" example:"advice"`
	ConversationHistory []Message `json:"conversationHistory,omitempty" validate:"omitempty,dive"`
}

// Usage reports the token counts of a finished generation.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// StreamResponse is the structure for a single chunk in a streaming response.
type StreamResponse struct {
	Content      string `json:"content"`
	Done         bool   `json:"done"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
	Error        string `json:"error,omitempty"`
}
