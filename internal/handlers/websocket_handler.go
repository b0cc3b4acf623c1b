package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/Rotten120/real-time-chatting-app/internal/handlers/ws"
	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"github.com/Rotten120/real-time-chatting-app/internal/service"
	"github.com/gofiber/websocket/v2"
)

type WebSocketHandler struct {
	messageService *service.MessageService
	roomService    *service.RoomService
	hub            *ws.Hub
}

func NewWebSocketHandler(messageService *service.MessageService, roomService *service.RoomService, hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		messageService: messageService,
		roomService:    roomService,
		hub:            hub,
	}
}

// HandleWebSocket runs one session: handshake, authorization, replay, then
// the steady-state read loop. The order matters — the session is registered
// with the hub before replay is fetched, and the write pump only starts once
// replay has gone out, so a message racing the connect is delivered exactly
// once whichever path it takes.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)
	username := c.Locals("username").(string)

	// Handshake: which room, and what has the client already seen.
	roomID64, err := strconv.ParseUint(c.Query("room_id"), 10, 32)
	if err != nil {
		ws.SendError(c, "invalid_room", "room_id must be a numeric room identifier", "")
		c.Close()
		return
	}
	roomID := uint(roomID64)

	checkpoint, err := ws.ParseCheckpoint(c.Query("last_seen"))
	if err != nil {
		ws.SendError(c, "invalid_checkpoint", "last_seen must be an RFC 3339 timestamp", "")
		c.Close()
		return
	}

	// Authorization gate: nothing below runs for non-members.
	if err := h.roomService.Authorize(roomID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			ws.SendError(c, "room_not_found", "Room does not exist", "")
		case errors.Is(err, service.ErrNotRoomMember):
			ws.SendError(c, "not_room_member", "User is not a member of this room", "")
		default:
			ws.SendError(c, "authorization_failed", "Could not verify room membership", "")
		}
		c.Close()
		return
	}

	sess := ws.NewSession(c, userID, username, roomID, checkpoint)
	log.Printf("User %d (%s) connecting to room %d via WebSocket", userID, username, roomID)

	// Tell the client who it is, so it can tell its own messages apart from
	// others' in broadcast and replay.
	if err := sess.SendEvent(ws.EventMe, models.UserResponse{ID: userID, Username: username}); err != nil {
		c.Close()
		return
	}

	// Register first: live broadcasts from here on buffer in the session's
	// send channel while replay is written out.
	h.hub.Register(sess)

	defer func() {
		h.hub.Unregister(sess)
		sess.Close()
		log.Printf("User %d disconnected from room %d", userID, roomID)
	}()

	if since, ok := checkpoint.Time(); ok {
		missed, err := h.messageService.Replay(roomID, since)
		if err != nil {
			// Live-only session; the client's next reconnect retries replay
			// from the same checkpoint.
			log.Printf("Replay for user %d in room %d failed: %v", userID, roomID, err)
		} else if len(missed) > 0 {
			if err := sess.Recover(missed); err != nil {
				log.Printf("Recover stream to user %d failed: %v", userID, err)
				return
			}
		}
	}

	// Steady state: write pump drains buffered + live frames.
	go sess.Run(h.hub.Kick)

	ctx := &ws.MessageContext{
		Session:  sess,
		Hub:      h.hub,
		Messages: h.messageService,
	}

	for {
		_, messageBytes, err := c.ReadMessage()
		if err != nil {
			break
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			sess.SendErrorEvent("invalid_message", "Invalid message format", err.Error())
			continue
		}

		// Inbound events are handled one at a time, in arrival order.
		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			sess.SendErrorEvent("processing_failed", "Failed to process message", err.Error())
		}
	}
}
