package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is one persisted prompt/response pair.
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Prompt       string    `json:"prompt"`
	DocumentText string    `json:"document_text"`
	Response     string    `json:"response"`
	HasDocument  bool      `json:"has_document"`
}

// ChatResponse is the reply from POST /api/chat. Failed requests carry
// Success=false and Error; every other endpoint reuses it for errors.
type ChatResponse struct {
	Success        bool       `json:"success"`
	Response       string     `json:"response,omitempty"`
	Error          string     `json:"error,omitempty"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
}

// ClearResponse is the reply from DELETE /api/conversations.
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is the reply from GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
