package handlers

import (
	"errors"
	"strconv"

	"github.com/Rotten120/real-time-chatting-app/internal/httpx"
	"github.com/Rotten120/real-time-chatting-app/internal/service"
	"github.com/gofiber/fiber/v2"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.Name == "" {
		return httpx.BadRequest(c, "missing_name", "Room name is required")
	}

	room, err := h.roomService.CreateRoom(userID, input.Name)
	if err != nil {
		return httpx.Internal(c, "create_room_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(room.ToResponse())
}

func (h *RoomHandler) JoinRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	roomID64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_room", "Invalid room id")
	}

	if err := h.roomService.JoinRoom(uint(roomID64), userID); err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			return httpx.NotFound(c, "room_not_found", "Room does not exist")
		}
		return httpx.Internal(c, "join_room_failed")
	}

	return c.JSON(fiber.Map{"joined": true})
}

func (h *RoomHandler) GetMyRooms(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	rooms, err := h.roomService.GetUserRooms(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_rooms_failed")
	}

	responses := make([]interface{}, len(rooms))
	for i, room := range rooms {
		responses[i] = room.ToResponse()
	}

	return c.JSON(fiber.Map{"rooms": responses, "count": len(rooms)})
}
