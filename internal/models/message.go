package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is immutable once created. The store assigns ID and CreatedAt;
// clients never supply either. Deletion is a soft-delete tombstone and is
// invisible to the sync engine. The ordering key for all sync logic is
// (CreatedAt, ID): CreatedAt alone can collide at timestamp resolution, ID is
// the insertion-order tiebreak.
type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index:idx_room_created,priority:2" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RoomID   uint `gorm:"not null;index:idx_room_created,priority:1" json:"room_id"`
	Room     Room `gorm:"foreignKey:RoomID" json:"-"`
	SenderID uint `gorm:"not null;index" json:"sender_id"`
	Sender   User `gorm:"foreignKey:SenderID" json:"sender"`

	Content string `gorm:"type:text;not null" json:"content"`
}

type MessageResponse struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"room_id"`
	SenderID  uint      `json:"sender_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Sender:    m.Sender.Username,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
