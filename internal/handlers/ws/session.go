package ws

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	sendBufferSize = 256
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
)

// ErrSendBufferFull is returned when a recipient cannot keep up with its
// room. The hub disconnects such sessions instead of letting them
// back-pressure everyone else.
var ErrSendBufferFull = errors.New("session send buffer full")

// Conn is the subset of the WebSocket connection the sync engine writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// frame is one outbound unit. MessageID is set only for live room messages
// so the write pump can drop a copy already delivered through replay; every
// other frame type carries zero and is never deduplicated.
type frame struct {
	MessageID uint
	Data      []byte
}

// Session is one authenticated connection, bound to a single user and a
// single room for its whole lifetime. A client that wants another room
// reconnects; there is no room switching and no server-held resume token.
//
// Lifecycle: handshake -> register with the hub -> replay -> write pump +
// read loop. Between registration and the pump start, live broadcasts pile
// up in the send channel; replay frames are written directly to the
// connection from the handshake goroutine, so the two paths never interleave
// on the socket.
type Session struct {
	ID         string
	UserID     uint
	Username   string
	RoomID     uint
	Checkpoint Checkpoint

	conn     Conn
	send     chan frame
	replayed map[uint]struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func NewSession(conn Conn, userID uint, username string, roomID uint, checkpoint Checkpoint) *Session {
	return &Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Username:   username,
		RoomID:     roomID,
		Checkpoint: checkpoint,
		conn:       conn,
		send:       make(chan frame, sendBufferSize),
		replayed:   make(map[uint]struct{}),
		closed:     make(chan struct{}),
	}
}

// enqueue hands a frame to the write pump without blocking. Called from the
// room serializer; a full buffer is the recipient's problem, not the room's.
func (s *Session) enqueue(messageID uint, data []byte) error {
	select {
	case s.send <- frame{MessageID: messageID, Data: data}:
		return nil
	case <-s.closed:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// writeDirect writes on the connection from the handshake goroutine. Only
// valid before Run starts the write pump.
func (s *Session) writeDirect(data []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) markReplayed(messageID uint) {
	s.replayed[messageID] = struct{}{}
}

// Run drains the send channel onto the connection until the session closes.
// Frames whose message id was already delivered via replay are dropped here;
// this is the merge point that makes replay + live delivery exactly-once.
// onDead is invoked when the connection stops accepting writes.
func (s *Session) Run(onDead func(*Session)) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case f := <-s.send:
			if f.MessageID != 0 {
				if _, dup := s.replayed[f.MessageID]; dup {
					delete(s.replayed, f.MessageID)
					continue
				}
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, f.Data); err != nil {
				log.Printf("Session %s write failed: %v", s.ID, err)
				onDead(s)
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
				log.Printf("Session %s ping failed: %v", s.ID, err)
				onDead(s)
				return
			}
		}
	}
}

// Close releases the socket and stops the write pump. Safe to call more
// than once and from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
}
