package service

import (
	"errors"
	"strings"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"github.com/Rotten120/real-time-chatting-app/internal/repository"
	"gorm.io/gorm"
)

type RoomService struct {
	roomRepo repository.RoomRepositoryInterface
}

func NewRoomService(roomRepo repository.RoomRepositoryInterface) *RoomService {
	return &RoomService{roomRepo: roomRepo}
}

func (s *RoomService) CreateRoom(creatorID uint, name string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("room name is required")
	}

	room := &models.Room{
		Name:      name,
		CreatorID: creatorID,
	}
	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return s.roomRepo.FindByID(room.ID)
}

func (s *RoomService) JoinRoom(roomID, userID uint) error {
	if _, err := s.roomRepo.FindByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	return s.roomRepo.AddMember(roomID, userID)
}

func (s *RoomService) GetUserRooms(userID uint) ([]models.Room, error) {
	return s.roomRepo.GetUserRooms(userID)
}

// Authorize is the gate every room-scoped request passes before the sync
// engine is invoked: the room must exist and the user must be a member.
func (s *RoomService) Authorize(roomID, userID uint) error {
	if _, err := s.roomRepo.FindByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	member, err := s.roomRepo.IsMember(roomID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotRoomMember
	}
	return nil
}
