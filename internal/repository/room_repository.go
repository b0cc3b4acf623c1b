package repository

import (
	"errors"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(room *models.Room) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		// Creator is always a member
		return tx.Create(&models.RoomMember{
			RoomID: room.ID,
			UserID: room.CreatorID,
		}).Error
	})
}

func (r *RoomRepository) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.Preload("Creator").First(&room, id).Error
	return &room, err
}

func (r *RoomRepository) AddMember(roomID, userID uint) error {
	member := models.RoomMember{RoomID: roomID, UserID: userID}
	err := r.db.Create(&member).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil // already a member, joining again is a no-op
	}
	return err
}

func (r *RoomRepository) IsMember(roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *RoomRepository) GetUserRooms(userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.
		Joins("JOIN room_members ON room_members.room_id = rooms.id").
		Where("room_members.user_id = ?", userID).
		Preload("Creator").
		Find(&rooms).Error
	return rooms, err
}
