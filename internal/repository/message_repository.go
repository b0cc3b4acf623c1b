package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindSince(roomID uint, after time.Time) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("room_id = ? AND created_at > ?", roomID, after).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) FindRecentPage(roomID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) FindPageBefore(roomID uint, cursorID uint, limit int) ([]models.Message, error) {
	// Resolve the cursor first; an unknown cursor means no older history, by
	// contract, rather than an error.
	var cursor models.Message
	err := r.db.Where("room_id = ?", roomID).First(&cursor, cursorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	err = r.db.Preload("Sender").
		Where("room_id = ? AND (created_at < ? OR (created_at = ? AND id < ?))",
			roomID, cursor.CreatedAt, cursor.CreatedAt, cursor.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) DeleteOwn(roomID, messageID, senderID uint) (int64, error) {
	res := r.db.
		Where("id = ? AND room_id = ? AND sender_id = ?", messageID, roomID, senderID).
		Delete(&models.Message{})
	return res.RowsAffected, res.Error
}
