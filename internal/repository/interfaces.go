package repository

import (
	"context"
	"time"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
}

// MessageRepositoryInterface is the narrow message-store contract the sync
// engine depends on. The store is the single source of truth for message
// identity and creation time: Create assigns both, and every query below
// returns a total order consistent with (created_at, id). Concurrent writes
// are serialized by the store, not by callers.
type MessageRepositoryInterface interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	// FindSince returns all room messages created strictly after the given
	// time, oldest first. Used by replay.
	FindSince(roomID uint, after time.Time) ([]models.Message, error)
	// FindRecentPage returns the newest messages of a room, newest first.
	// Used by cursorless pagination requests.
	FindRecentPage(roomID uint, limit int) ([]models.Message, error)
	// FindPageBefore returns up to limit messages strictly older than the
	// cursor message under the (created_at, id) key, newest first. A cursor
	// that does not resolve to a message of the room yields an empty page,
	// not an error.
	FindPageBefore(roomID uint, cursorID uint, limit int) ([]models.Message, error)
	DeleteOwn(roomID, messageID, senderID uint) (int64, error)
}

// RoomRepositoryInterface defines the contract for room repository operations
type RoomRepositoryInterface interface {
	Create(room *models.Room) error
	FindByID(id uint) (*models.Room, error)
	AddMember(roomID, userID uint) error
	IsMember(roomID, userID uint) (bool, error)
	GetUserRooms(userID uint) ([]models.Room, error)
}
