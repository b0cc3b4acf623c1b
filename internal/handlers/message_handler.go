package handlers

import (
	"errors"
	"strconv"

	"github.com/Rotten120/real-time-chatting-app/internal/handlers/ws"
	"github.com/Rotten120/real-time-chatting-app/internal/httpx"
	"github.com/Rotten120/real-time-chatting-app/internal/service"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messageService *service.MessageService
	roomService    *service.RoomService
	hub            *ws.Hub
}

func NewMessageHandler(messageService *service.MessageService, roomService *service.RoomService, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		roomService:    roomService,
		hub:            hub,
	}
}

func (h *MessageHandler) authorizeRoom(c *fiber.Ctx) (userID uint, roomID uint, ok bool, ferr error) {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return 0, 0, false, httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	roomID64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, 0, false, httpx.BadRequest(c, "invalid_room", "Invalid room id")
	}
	roomID = uint(roomID64)

	if err := h.roomService.Authorize(roomID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			return 0, 0, false, httpx.NotFound(c, "room_not_found", "Room does not exist")
		case errors.Is(err, service.ErrNotRoomMember):
			return 0, 0, false, httpx.Forbidden(c, "not_room_member", "User is not a member of this room")
		default:
			return 0, 0, false, httpx.Internal(c, "authorization_failed")
		}
	}

	return userID, roomID, true, nil
}

// GetRoomMessages serves backward history pages, newest first. The cursor is
// a message id the client has already rendered; results are strictly older.
// An empty page tells the client to stop asking.
func (h *MessageHandler) GetRoomMessages(c *fiber.Ctx) error {
	_, roomID, ok, ferr := h.authorizeRoom(c)
	if !ok {
		return ferr
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			return httpx.BadRequest(c, "invalid_limit", "limit must be a positive integer")
		}
		limit = l
	}

	var cursorID uint
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		cursor, err := strconv.ParseUint(cursorStr, 10, 32)
		if err != nil {
			return httpx.BadRequest(c, "invalid_cursor", "Invalid cursor")
		}
		cursorID = uint(cursor)
	}

	messages, err := h.messageService.Page(roomID, cursorID, limit)
	if err != nil {
		if errors.Is(err, service.ErrLimitTooLarge) {
			return httpx.BadRequest(c, "limit_too_large",
				"Requests can only fetch up to "+strconv.Itoa(service.MaxPageLimit)+" messages at a time")
		}
		// Transient store failure: an error, never an empty page, so the
		// client can retry instead of concluding history is exhausted.
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]interface{}, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}

	if limit == 0 {
		limit = service.DefaultPageLimit
	}
	result := fiber.Map{
		"messages": responses,
		"count":    len(messages),
		"has_more": len(messages) == limit,
	}
	if len(messages) > 0 {
		// Newest-first: the last element is the oldest of this page and the
		// cursor for the next one.
		result["next_cursor"] = messages[len(messages)-1].ID
	}

	return c.JSON(result)
}

// SendRoomMessage persists a message over plain HTTP and fans it out to the
// room's live sessions. The path exists for clients without a socket; the
// HTTP status is the ack, so there is no ack_id here. Nobody is excluded from
// the broadcast — a REST sender has no optimistically rendered copy.
func (h *MessageHandler) SendRoomMessage(c *fiber.Ctx) error {
	userID, roomID, ok, ferr := h.authorizeRoom(c)
	if !ok {
		return ferr
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.messageService.Send(c.Context(), userID, roomID, input.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			return httpx.BadRequest(c, "missing_content", "Message content is required")
		}
		return httpx.Internal(c, "send_message_failed")
	}

	if data, err := ws.MarshalEvent(ws.EventChatMessage, message.ToResponse()); err == nil {
		h.hub.Broadcast(roomID, message.ID, data, nil)
		ws.MessageLog(message)
	}

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// DeleteRoomMessage tombstones the caller's own message.
func (h *MessageHandler) DeleteRoomMessage(c *fiber.Ctx) error {
	userID, roomID, ok, ferr := h.authorizeRoom(c)
	if !ok {
		return ferr
	}

	messageID64, err := strconv.ParseUint(c.Params("message_id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message id")
	}

	if err := h.messageService.Delete(roomID, uint(messageID64), userID); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			return httpx.NotFound(c, "message_not_found", "Message not found")
		}
		return httpx.Internal(c, "delete_message_failed")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
