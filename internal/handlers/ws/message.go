package ws

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/Rotten120/real-time-chatting-app/internal/service"
	"github.com/gofiber/websocket/v2"
)

// Server -> client event types.
const (
	EventMe          = "me"
	EventChatMessage = "chat message"
	EventChatRecover = "chat recover"
	EventAck         = "ack"
)

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	Session  *Session
	Hub      *Hub
	Messages *service.MessageService
}

// Message interface for all inbound WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorResponse is sent when message processing fails
type ErrorResponse struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func CreateMessage(msgType string, registry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := registry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	instance := reflect.New(msgTypeReflect).Interface()
	return instance.(Message), nil
}

func marshalError(code, message, details string) ([]byte, error) {
	return json.Marshal(ErrorResponse{
		Type:    "error",
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// SendError sends an error response directly on the connection. Used during
// the handshake, before a session's write pump exists.
func SendError(conn Conn, code, message, details string) error {
	data, err := marshalError(code, message, details)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
