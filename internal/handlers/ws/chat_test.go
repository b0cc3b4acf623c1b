package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Rotten120/real-time-chatting-app/internal/cache"
	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"github.com/Rotten120/real-time-chatting-app/internal/service"
)

// mockMessageRepo is an in-memory message store assigning identity and
// creation time the way the real one does.
type mockMessageRepo struct {
	mu         sync.Mutex
	messages   map[uint]*models.Message
	nextID     uint
	failCreate bool
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[uint]*models.Message), nextID: 1}
}

func (m *mockMessageRepo) Create(_ context.Context, message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("store write failed")
	}
	message.ID = m.nextID
	m.nextID++
	message.CreatedAt = time.Now()
	stored := *message
	m.messages[message.ID] = &stored
	return nil
}

func (m *mockMessageRepo) FindByID(id uint) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	out := *msg
	out.Sender = models.User{ID: out.SenderID, Username: fmt.Sprintf("user%d", out.SenderID)}
	return &out, nil
}

func (m *mockMessageRepo) FindSince(roomID uint, after time.Time) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Message
	for _, msg := range m.messages {
		if msg.RoomID == roomID && msg.CreatedAt.After(after) {
			result = append(result, *msg)
		}
	}
	sortByOrderingKey(result, false)
	return result, nil
}

func (m *mockMessageRepo) FindRecentPage(roomID uint, limit int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Message
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			result = append(result, *msg)
		}
	}
	sortByOrderingKey(result, true)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockMessageRepo) FindPageBefore(roomID uint, cursorID uint, limit int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cursor, ok := m.messages[cursorID]
	if !ok || cursor.RoomID != roomID {
		return []models.Message{}, nil
	}
	var result []models.Message
	for _, msg := range m.messages {
		if msg.RoomID != roomID {
			continue
		}
		if msg.CreatedAt.Before(cursor.CreatedAt) ||
			(msg.CreatedAt.Equal(cursor.CreatedAt) && msg.ID < cursor.ID) {
			result = append(result, *msg)
		}
	}
	sortByOrderingKey(result, true)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockMessageRepo) DeleteOwn(roomID, messageID, senderID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok || msg.RoomID != roomID || msg.SenderID != senderID {
		return 0, nil
	}
	delete(m.messages, messageID)
	return 1, nil
}

func (m *mockMessageRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// sortByOrderingKey orders by (created_at, id), optionally newest first.
func sortByOrderingKey(msgs []models.Message, desc bool) {
	less := func(a, b *models.Message) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	for i := 1; i < len(msgs); i++ {
		for j := i; j > 0; j-- {
			swap := less(&msgs[j], &msgs[j-1])
			if desc {
				swap = less(&msgs[j-1], &msgs[j])
			}
			if !swap {
				break
			}
			msgs[j], msgs[j-1] = msgs[j-1], msgs[j]
		}
	}
}

func newTestMessageService(repo *mockMessageRepo) *service.MessageService {
	return service.NewMessageService(repo, cache.NewMessageCache(nil))
}

func ackOf(t *testing.T, env SerializedMessage) AckPayload {
	t.Helper()
	if env.Type != EventAck {
		t.Fatalf("frame type = %q, want %q", env.Type, EventAck)
	}
	var ack AckPayload
	if err := json.Unmarshal(env.Payload, &ack); err != nil {
		t.Fatal(err)
	}
	return ack
}

func TestChatMessageDeliversToPeersAndAcksSender(t *testing.T) {
	repo := newMockMessageRepo()
	hub := NewHub()

	sender, senderConn := newTestSession(1, 10)
	peer, peerConn := newTestSession(2, 10)
	hub.Register(sender)
	hub.Register(peer)
	go sender.Run(hub.Kick)
	go peer.Run(hub.Kick)
	defer func() {
		hub.Unregister(sender)
		hub.Unregister(peer)
		sender.Close()
		peer.Close()
	}()

	ctx := &MessageContext{Session: sender, Hub: hub, Messages: newTestMessageService(repo)}
	msg := &ChatMessage{AckID: "a1", Content: "hi"}
	if err := msg.Process(ctx); err != nil {
		t.Fatalf("Process: %v", err)
	}

	waitFor(t, "peer to receive the message", func() bool { return peerConn.frameCount() == 1 })
	waitFor(t, "sender to receive its ack", func() bool { return senderConn.frameCount() == 1 })
	time.Sleep(50 * time.Millisecond)

	peerFrames := peerConn.decodeFrames(t)
	if peerFrames[0].Type != EventChatMessage {
		t.Errorf("peer frame type = %q, want %q", peerFrames[0].Type, EventChatMessage)
	}
	var payload models.MessageResponse
	if err := json.Unmarshal(peerFrames[0].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Content != "hi" || payload.SenderID != 1 {
		t.Errorf("peer got %+v, want content %q from sender 1", payload, "hi")
	}

	// The sender gets exactly one frame: its ack. No echo of its own message.
	senderFrames := senderConn.decodeFrames(t)
	if len(senderFrames) != 1 {
		t.Fatalf("sender received %d frames, want only the ack", len(senderFrames))
	}
	if ack := ackOf(t, senderFrames[0]); ack.AckID != "a1" || ack.Status != StatusDelivered {
		t.Errorf("ack = %+v, want a1/delivered", ack)
	}
}

func TestChatMessageEmptyContentFailsWithoutStoreWrite(t *testing.T) {
	repo := newMockMessageRepo()
	hub := NewHub()

	sender, senderConn := newTestSession(1, 10)
	hub.Register(sender)
	go sender.Run(hub.Kick)
	defer func() {
		hub.Unregister(sender)
		sender.Close()
	}()

	ctx := &MessageContext{Session: sender, Hub: hub, Messages: newTestMessageService(repo)}
	msg := &ChatMessage{AckID: "a2", Content: "   "}
	if err := msg.Process(ctx); err != nil {
		t.Fatalf("Process: %v", err)
	}

	waitFor(t, "failed ack", func() bool { return senderConn.frameCount() == 1 })
	if ack := ackOf(t, senderConn.decodeFrames(t)[0]); ack.Status != StatusFailed {
		t.Errorf("ack status = %q, want %q", ack.Status, StatusFailed)
	}
	if repo.count() != 0 {
		t.Errorf("store has %d messages after rejected send, want 0", repo.count())
	}
}

func TestChatMessageStoreFailureAcksFailedAndSkipsBroadcast(t *testing.T) {
	repo := newMockMessageRepo()
	repo.failCreate = true
	hub := NewHub()

	sender, senderConn := newTestSession(1, 10)
	peer, peerConn := newTestSession(2, 10)
	hub.Register(sender)
	hub.Register(peer)
	go sender.Run(hub.Kick)
	go peer.Run(hub.Kick)
	defer func() {
		hub.Unregister(sender)
		hub.Unregister(peer)
		sender.Close()
		peer.Close()
	}()

	svc := newTestMessageService(repo)
	ctx := &MessageContext{Session: sender, Hub: hub, Messages: svc}
	msg := &ChatMessage{AckID: "a3", Content: "doomed"}
	if err := msg.Process(ctx); err != nil {
		t.Fatalf("Process: %v", err)
	}

	waitFor(t, "failed ack", func() bool { return senderConn.frameCount() == 1 })
	time.Sleep(50 * time.Millisecond)

	if ack := ackOf(t, senderConn.decodeFrames(t)[0]); ack.Status != StatusFailed {
		t.Errorf("ack status = %q, want %q", ack.Status, StatusFailed)
	}
	if n := peerConn.frameCount(); n != 0 {
		t.Errorf("peer received %d frames of a failed send, want 0", n)
	}

	// The failed content never surfaces through pagination either.
	page, err := svc.Page(10, 0, service.MaxPageLimit)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(page) != 0 {
		t.Errorf("pagination returned %d messages after failed send, want 0", len(page))
	}
}
