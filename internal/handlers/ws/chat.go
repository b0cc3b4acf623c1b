package ws

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Rotten120/real-time-chatting-app/internal/service"
)

// AckTimeout bounds how long a sender waits for a delivery outcome. The
// persist call runs under this deadline.
const AckTimeout = 5 * time.Second

const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

type AckPayload struct {
	AckID  string `json:"ack_id"`
	Status string `json:"status"`
}

// ChatMessage is a client-submitted room message.
type ChatMessage struct {
	AckID   string `json:"ack_id"`
	Content string `json:"content"`
}

func (msg *ChatMessage) GetType() string {
	return EventChatMessage
}

// Process runs the live send pipeline: validate, persist, fan out to the
// room excluding the author, acknowledge the author.
//
// If the persist outlives AckTimeout the sender is told "failed" even though
// the write may still commit: the sender can see one failure for a message
// other members receive. That asymmetry (at-least-once persisted, at-most-once
// visible to the sender) is inherent to acking under a deadline and is left
// visible rather than papered over.
func (msg *ChatMessage) Process(ctx *MessageContext) error {
	s := ctx.Session

	pctx, cancel := context.WithTimeout(context.Background(), AckTimeout)
	defer cancel()

	m, err := ctx.Messages.Send(pctx, s.UserID, s.RoomID, msg.Content)
	if err != nil {
		if !errors.Is(err, service.ErrEmptyContent) {
			log.Printf("User %d send to room %d failed: %v", s.UserID, s.RoomID, err)
		}
		return s.Ack(msg.AckID, StatusFailed)
	}

	data, err := MarshalEvent(EventChatMessage, m.ToResponse())
	if err != nil {
		return s.Ack(msg.AckID, StatusFailed)
	}

	// The author is excluded: it already rendered the message optimistically.
	ctx.Hub.Broadcast(s.RoomID, m.ID, data, s)
	MessageLog(m)

	return s.Ack(msg.AckID, StatusDelivered)
}

// Ack reports the delivery outcome for one submitted message.
func (s *Session) Ack(ackID, status string) error {
	data, err := MarshalEvent(EventAck, AckPayload{AckID: ackID, Status: status})
	if err != nil {
		return err
	}
	return s.enqueue(0, data)
}
