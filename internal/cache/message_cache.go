package cache

import (
	"fmt"
	"time"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// RecentPageTTL bounds staleness of the cached newest page of a room. The
// cache is also invalidated on every send, so the TTL only matters for
// writes that bypass this process.
const RecentPageTTL = 5 * time.Minute

// MessageCache caches the most recent history page per room. Only the
// cursorless pagination request is served from it; cursor pages are cheap
// keyset queries and stay uncached.
type MessageCache struct {
	redis *RedisCache
}

// NewMessageCache creates a new message cache
func NewMessageCache(redis *RedisCache) *MessageCache {
	return &MessageCache{redis: redis}
}

func recentPageKey(roomID uint) string {
	return fmt.Sprintf("room:%d:recent", roomID)
}

// GetRecentPage retrieves the cached newest page of a room
func (mc *MessageCache) GetRecentPage(roomID uint) ([]models.Message, bool) {
	if mc == nil || mc.redis == nil {
		return nil, false
	}
	data, err := mc.redis.Get(recentPageKey(roomID))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.Message
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

// SetRecentPage caches the newest page of a room
func (mc *MessageCache) SetRecentPage(roomID uint, messages []models.Message) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return mc.redis.Set(recentPageKey(roomID), data, RecentPageTTL)
}

// InvalidateRecentPage removes the cached page after a room's timeline moved
func (mc *MessageCache) InvalidateRecentPage(roomID uint) {
	if mc == nil || mc.redis == nil {
		return
	}
	_ = mc.redis.Delete(recentPageKey(roomID))
}
