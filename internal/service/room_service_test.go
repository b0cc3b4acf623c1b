package service

import (
	"errors"
	"testing"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"gorm.io/gorm"
)

type MockRoomRepository struct {
	rooms   map[uint]*models.Room
	members map[uint]map[uint]bool
	nextID  uint
}

func NewMockRoomRepository() *MockRoomRepository {
	return &MockRoomRepository{
		rooms:   make(map[uint]*models.Room),
		members: make(map[uint]map[uint]bool),
		nextID:  1,
	}
}

func (m *MockRoomRepository) Create(room *models.Room) error {
	room.ID = m.nextID
	m.nextID++
	stored := *room
	m.rooms[room.ID] = &stored
	m.members[room.ID] = map[uint]bool{room.CreatorID: true}
	return nil
}

func (m *MockRoomRepository) FindByID(id uint) (*models.Room, error) {
	if room, ok := m.rooms[id]; ok {
		out := *room
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockRoomRepository) AddMember(roomID, userID uint) error {
	if _, ok := m.rooms[roomID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.members[roomID][userID] = true
	return nil
}

func (m *MockRoomRepository) IsMember(roomID, userID uint) (bool, error) {
	return m.members[roomID][userID], nil
}

func (m *MockRoomRepository) GetUserRooms(userID uint) ([]models.Room, error) {
	var result []models.Room
	for id, room := range m.rooms {
		if m.members[id][userID] {
			result = append(result, *room)
		}
	}
	return result, nil
}

func TestCreateRoomMakesCreatorAMember(t *testing.T) {
	repo := NewMockRoomRepository()
	svc := NewRoomService(repo)

	room, err := svc.CreateRoom(1, "general")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := svc.Authorize(room.ID, 1); err != nil {
		t.Errorf("creator not authorized in own room: %v", err)
	}
}

func TestCreateRoomRejectsBlankName(t *testing.T) {
	svc := NewRoomService(NewMockRoomRepository())

	if _, err := svc.CreateRoom(1, "   "); err == nil {
		t.Error("expected error for blank room name")
	}
}

func TestAuthorizeRejectsNonMember(t *testing.T) {
	repo := NewMockRoomRepository()
	svc := NewRoomService(repo)

	room, err := svc.CreateRoom(1, "general")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := svc.Authorize(room.ID, 2); !errors.Is(err, ErrNotRoomMember) {
		t.Errorf("Authorize(non-member): got %v, want ErrNotRoomMember", err)
	}
}

func TestAuthorizeRejectsUnknownRoom(t *testing.T) {
	svc := NewRoomService(NewMockRoomRepository())

	if err := svc.Authorize(999, 1); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Authorize(unknown room): got %v, want ErrRoomNotFound", err)
	}
}

func TestJoinRoomThenAuthorize(t *testing.T) {
	repo := NewMockRoomRepository()
	svc := NewRoomService(repo)

	room, err := svc.CreateRoom(1, "general")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := svc.JoinRoom(room.ID, 2); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if err := svc.Authorize(room.ID, 2); err != nil {
		t.Errorf("joined member not authorized: %v", err)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	svc := NewRoomService(NewMockRoomRepository())

	if err := svc.JoinRoom(999, 1); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("JoinRoom(unknown room): got %v, want ErrRoomNotFound", err)
	}
}
