package websocket

import (
	"encoding/json"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

const (
	ActionEvent = "event"
	ActionError = "error"
	ActionPing  = "ping"
	ActionPong  = "pong"
)

// NewEventMessage wraps a clinic event for delivery to dashboards.
func NewEventMessage(event models.Event) ([]byte, error) {
	return json.Marshal(Message{Action: ActionEvent, Payload: event})
}

// NewErrorMessage reports a problem with something the client sent.
func NewErrorMessage(msg string) []byte {
	b, _ := json.Marshal(Message{Action: ActionError, Payload: map[string]string{"error": msg}})
	return b
}

func NewPongMessage() []byte {
	b, _ := json.Marshal(Message{Action: ActionPong})
	return b
}
