package websocket

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

type outbound struct {
	subjectID string
	data      []byte
	to        *Client // nil: every interested client
}

// Hub maintains the set of active clients and pushes clinic events to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Events waiting to be fanned out.
	broadcast chan outbound

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan outbound, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns when ctx is
// cancelled, closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			close(client.Send)
			delete(h.clients, client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Str("subject_id", client.SubjectID).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case msg := <-h.broadcast:
			if msg.to != nil {
				if h.clients[msg.to] {
					h.deliver(msg.to, msg.data)
				}
				continue
			}
			for client := range h.clients {
				if !client.wants(msg.subjectID) {
					continue
				}
				h.deliver(client, msg.data)
			}
		}
	}
}

// deliver must only be called from Run.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		// Slow client; drop it rather than stall everyone else.
		close(client.Send)
		delete(h.clients, client)
	}
}

func (h *Hub) sendTo(client *Client, data []byte) {
	select {
	case h.broadcast <- outbound{data: data, to: client}:
	case <-h.done:
	}
}

// Publish queues event for every client watching all events or the event's
// subject. It does not block once the hub has stopped.
func (h *Hub) Publish(event models.Event) {
	data, err := NewEventMessage(event)
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode event")
		return
	}
	var subjectID string
	if event.SubjectID != nil {
		subjectID = *event.SubjectID
	}
	select {
	case h.broadcast <- outbound{subjectID: subjectID, data: data}:
	case <-h.done:
	}
}

// Join registers client unless the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters client. It is a no-op once the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}
