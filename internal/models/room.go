package models

import (
	"time"

	"gorm.io/gorm"
)

type Room struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string `gorm:"size:100;not null" json:"name"`
	CreatorID uint   `gorm:"not null" json:"creator_id"`

	Creator User         `gorm:"foreignKey:CreatorID" json:"creator"`
	Members []RoomMember `gorm:"foreignKey:RoomID" json:"members"`
}

type RoomMember struct {
	RoomID   uint      `gorm:"primaryKey" json:"room_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
	Room Room `gorm:"foreignKey:RoomID" json:"-"`
}

type RoomResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatorID uint      `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Room) ToResponse() RoomResponse {
	return RoomResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatorID: r.CreatorID,
		CreatedAt: r.CreatedAt,
	}
}
