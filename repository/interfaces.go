package repository

import (
	"context"

	"titanic_chat_backend/models"
)

type ChatRepository interface {
	Create(ctx context.Context, record *models.ChatRecord) error
	ListRecent(ctx context.Context, limit int) ([]*models.ChatRecord, error)
}
