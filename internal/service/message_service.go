package service

import (
	"context"
	"strings"
	"time"

	"github.com/Rotten120/real-time-chatting-app/internal/cache"
	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"github.com/Rotten120/real-time-chatting-app/internal/repository"
	"github.com/Rotten120/real-time-chatting-app/internal/validation"
)

// MaxPageLimit is the hard ceiling on a single history page. Requests above
// it are rejected, not truncated.
const MaxPageLimit = 20

// DefaultPageLimit is used when the client does not ask for a specific size.
const DefaultPageLimit = 5

type MessageService struct {
	messageRepo  repository.MessageRepositoryInterface
	messageCache *cache.MessageCache
}

func NewMessageService(messageRepo repository.MessageRepositoryInterface, messageCache *cache.MessageCache) *MessageService {
	return &MessageService{messageRepo: messageRepo, messageCache: messageCache}
}

// Send persists a message and returns it as stored, with identity and
// creation time assigned by the store. Empty content is rejected before any
// store write.
func (s *MessageService) Send(ctx context.Context, senderID, roomID uint, content string) (*models.Message, error) {
	content = validation.TrimAndLimit(content, validation.MaxMessageLength())
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	message := &models.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// A new message changes the room's most recent page.
	s.messageCache.InvalidateRecentPage(roomID)

	// Reload with sender info
	return s.messageRepo.FindByID(message.ID)
}

// Replay returns every room message created strictly after the checkpoint,
// oldest first. Calling it twice with the same checkpoint returns the same
// sequence; reconnect safety comes from this idempotence, not from any
// server-held resume state.
func (s *MessageService) Replay(roomID uint, after time.Time) ([]models.Message, error) {
	return s.messageRepo.FindSince(roomID, after)
}

// Page serves one backward-history page, newest first. A zero cursor means
// "start from the most recent message"; otherwise results are strictly older
// than the cursor message. An empty page is the end-of-history signal.
func (s *MessageService) Page(roomID uint, cursorID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return nil, ErrLimitTooLarge
	}

	if cursorID == 0 {
		// The cache always holds the full maximum page, whatever limit the
		// request that warmed it asked for. Caching the requester's slice
		// would serve later, larger requests a short page they would read as
		// the end of history.
		page, ok := s.messageCache.GetRecentPage(roomID)
		if !ok {
			var err error
			page, err = s.messageRepo.FindRecentPage(roomID, MaxPageLimit)
			if err != nil {
				return nil, err
			}
			if len(page) > 0 {
				_ = s.messageCache.SetRecentPage(roomID, page)
			}
		}
		if len(page) > limit {
			page = page[:limit]
		}
		return page, nil
	}

	return s.messageRepo.FindPageBefore(roomID, cursorID, limit)
}

// Delete tombstones the caller's own message. Not an engine concern beyond
// cache invalidation: already-delivered copies stay on clients.
func (s *MessageService) Delete(roomID, messageID, senderID uint) error {
	affected, err := s.messageRepo.DeleteOwn(roomID, messageID, senderID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	s.messageCache.InvalidateRecentPage(roomID)
	return nil
}
