package ws

import (
	"encoding/json"
	"log"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
)

// MarshalEvent wraps a payload in the wire envelope.
func MarshalEvent(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{Type: eventType, Payload: raw})
}

// Deserialize parses an inbound frame into its registered message type.
func Deserialize(jsonBytes []byte) (Message, error) {
	var wrapper SerializedMessage
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}

	msg, err := CreateMessage(wrapper.Type, typeRegistry)
	if err != nil {
		return nil, err
	}

	if len(wrapper.Payload) > 0 {
		if err := json.Unmarshal(wrapper.Payload, msg); err != nil {
			return nil, err
		}
	}

	return msg, nil
}

// MessageLog prints one line per delivered message.
func MessageLog(m *models.Message) {
	log.Printf("[Room %d : Id %d] %s sent %q on %s",
		m.RoomID, m.ID, m.Sender.Username, m.Content, m.CreatedAt.Format("2006-01-02 15:04:05"))
}
