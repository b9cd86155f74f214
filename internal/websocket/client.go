package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection. A non-empty SubjectID limits delivery
// to events about that patient, appointment or user.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	Send      chan []byte
	SubjectID string
}

// NewClient creates a client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, subjectID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		Send:      make(chan []byte, 16),
		SubjectID: subjectID,
	}
}

func (c *Client) wants(subjectID string) bool {
	return c.SubjectID == "" || c.SubjectID == subjectID
}

// ReadPump reads messages until the connection fails, passing each to
// handle. It unregisters the client on return.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("Websocket closed unexpectedly")
			}
			return
		}
		handle(c, message)
	}
}

// WritePump sends queued messages and keepalive pings until Send is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Reply queues message for this client only.
func (c *Client) Reply(message []byte) {
	c.hub.sendTo(c, message)
}
