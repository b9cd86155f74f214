package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	ws "github.com/kritin29/Patient-Management-Web-App/internal/websocket"
)

// WebSocketHandler upgrades dashboard connections and attaches them to the hub.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Upgrades are accepted
// from the listed origins only; an empty list accepts any origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Serve handles the WebSocket connection request. The optional subject
// query parameter narrows the feed to one patient, appointment or user.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, r.URL.Query().Get("subject"))
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.handleIncomingWSMessage)
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		client.Reply(ws.NewErrorMessage("Invalid message"))
		return
	}

	switch msg.Action {
	case ws.ActionPing:
		client.Reply(ws.NewPongMessage())
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Reply(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}
