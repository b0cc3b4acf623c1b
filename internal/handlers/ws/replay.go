package ws

import (
	"github.com/Rotten120/real-time-chatting-app/internal/models"
)

// SendEvent writes an envelope frame straight to the connection. Handshake
// use only: once Run has started, all writes must go through the send
// channel.
func (s *Session) SendEvent(eventType string, payload interface{}) error {
	data, err := MarshalEvent(eventType, payload)
	if err != nil {
		return err
	}
	return s.writeDirect(data)
}

// SendErrorEvent queues an error frame for a running session.
func (s *Session) SendErrorEvent(code, message, details string) error {
	data, err := marshalError(code, message, details)
	if err != nil {
		return err
	}
	return s.enqueue(0, data)
}

// Recover streams missed messages to a freshly connected session, oldest
// first, tagged so the client renders them as recovered rather than live.
//
// The session is already registered with the hub when this runs, so a
// message persisted concurrently can land both here and in the send channel.
// Each id delivered here is recorded; the write pump drops the buffered
// duplicate when it starts draining. Together with this store's ordered
// range query that makes delivery after a reconnect exactly-once: replay is
// recomputed from the client's checkpoint, never from server-held state.
func (s *Session) Recover(messages []models.Message) error {
	for i := range messages {
		m := &messages[i]
		data, err := MarshalEvent(EventChatRecover, m.ToResponse())
		if err != nil {
			return err
		}
		s.markReplayed(m.ID)
		if err := s.writeDirect(data); err != nil {
			return err
		}
		MessageLog(m)
	}
	return nil
}
