package ws

import (
	"log"
	"sync"
)

// Hub is the room multiplexer: it maps room ids to the set of live sessions
// and fans newly created messages out to everyone in the room except the
// author. One Hub instance is built by the composition root and shared by
// every connection; there is no package-level state.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]*room
}

// room owns one fan-out set. Broadcasts are serialized through a single
// goroutine per room, which makes in-room delivery order equal to broadcast
// submission order. Nothing ever coordinates across rooms.
type room struct {
	id       uint
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	queue    chan broadcast
	quit     chan struct{}
}

type broadcast struct {
	exclude   *Session
	messageID uint
	data      []byte
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]*room)}
}

// Register adds a session to its room's fan-out set, creating the room
// serializer on first use. Registration is synchronous: once it returns,
// every subsequent broadcast to the room reaches the session.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	r, ok := h.rooms[s.RoomID]
	if !ok {
		r = &room{
			id:       s.RoomID,
			sessions: make(map[*Session]struct{}),
			queue:    make(chan broadcast, sendBufferSize),
			quit:     make(chan struct{}),
		}
		h.rooms[s.RoomID] = r
		go r.run(h.Kick)
	}
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	count := len(r.sessions)
	r.mu.Unlock()
	h.mu.Unlock()

	log.Printf("User %d joined room %d (sessions: %d)", s.UserID, s.RoomID, count)
}

// Unregister removes a session from its room. Idempotent: unknown or
// already-removed sessions are a no-op. The last session out stops the room
// serializer.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	r, ok := h.rooms[s.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	r.mu.Lock()
	_, present := r.sessions[s]
	delete(r.sessions, s)
	empty := len(r.sessions) == 0
	count := len(r.sessions)
	r.mu.Unlock()
	if empty {
		delete(h.rooms, r.id)
		close(r.quit)
	}
	h.mu.Unlock()

	if present {
		log.Printf("User %d left room %d (sessions: %d)", s.UserID, s.RoomID, count)
	}
}

// Broadcast delivers a message frame to every session of the room except the
// author's own session, which already rendered the message optimistically.
// Delivery is fire-and-forget per recipient.
func (h *Hub) Broadcast(roomID uint, messageID uint, data []byte, exclude *Session) {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return // nobody is listening
	}

	select {
	case r.queue <- broadcast{exclude: exclude, messageID: messageID, data: data}:
	case <-r.quit:
	}
}

// Kick drops a recipient that stopped accepting frames. Closing the
// connection also unblocks its read loop, whose own teardown path calls
// Unregister again harmlessly.
func (h *Hub) Kick(s *Session) {
	h.Unregister(s)
	s.Close()
}

// RoomSessions reports how many sessions a room currently has.
func (h *Hub) RoomSessions(roomID uint) int {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Rooms reports how many rooms currently have at least one session.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (r *room) run(kick func(*Session)) {
	for {
		select {
		case <-r.quit:
			return
		case b := <-r.queue:
			r.mu.RLock()
			targets := make([]*Session, 0, len(r.sessions))
			for s := range r.sessions {
				if s != b.exclude {
					targets = append(targets, s)
				}
			}
			r.mu.RUnlock()

			for _, s := range targets {
				if err := s.enqueue(b.messageID, b.data); err != nil {
					// Slow consumer: cut it loose rather than stall the room.
					log.Printf("Dropping session %s of user %d from room %d: %v", s.ID, s.UserID, r.id, err)
					go kick(s)
				}
			}
		}
	}
}
