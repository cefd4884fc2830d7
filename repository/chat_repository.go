package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"titanic_chat_backend/models"
	"titanic_chat_backend/pkg/logging"
)

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, record *models.ChatRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *chatRepository) ListRecent(ctx context.Context, limit int) ([]*models.ChatRecord, error) {
	var res []*models.ChatRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&res).Error
	if err != nil {
		logging.Logger.Error("fail ListRecent", zap.Error(err))
		return nil, err
	}
	return res, nil
}
