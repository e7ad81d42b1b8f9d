package repository

import (
	"context"

	"leke-chat/internal/models"
)

// ConversationRepository persists the chat log. List returns entries in
// insertion order.
type ConversationRepository interface {
	Append(ctx context.Context, c *models.Conversation) error
	List(ctx context.Context) ([]models.Conversation, error)
	Clear(ctx context.Context) error
}
