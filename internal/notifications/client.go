package notifications

import (
	"context"
	"encoding/json"
	"time"

	"hackit/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // must stay below pongWait
	maxMessageSize = 4096
	sendBufferSize = 256
)

var (
	// droppedNotice replaces the oldest queued event when a client falls
	// behind; the web app re-fetches its feed when it sees it.
	droppedNotice = []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)
	pongEvent     = []byte(`{"type":"pong","payload":{}}`)
)

// WSHub is the part of a hub a Client talks back to.
type WSHub interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client is one upgraded socket. Events are queued on Send and written by
// WritePump; ReadPump owns the read side and unregisters on exit.
type Client struct {
	Hub    WSHub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string

	// OnActivity runs on every inbound frame, pongs included.
	OnActivity func(userID string)
}

func NewClient(hub WSHub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump reads until the socket closes. Clients may send {"type":"ping"}
// as an application-level keepalive; everything else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	extend := func() error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) }
	c.Conn.SetReadLimit(maxMessageSize)
	_ = extend()
	c.Conn.SetPongHandler(func(string) error {
		c.active()
		return extend()
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				observability.NewWSLogger(c.Hub.Name()).LogError(context.Background(), c.UserID, err, "read")
			}
			return
		}
		c.active()

		var frame struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &frame) == nil && frame.Type == "ping" {
			observability.WebSocketEventsTotal.WithLabelValues("ping").Inc()
			c.TrySend(pongEvent)
		}
	}
}

func (c *Client) active() {
	if c.OnActivity != nil {
		c.OnActivity(c.UserID)
	}
}

// WritePump writes queued events and sends protocol pings every pingPeriod.
// It returns on the first write error or when Send is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		var err error
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			err = c.Conn.WriteMessage(websocket.TextMessage, msg)
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = c.Conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

// TrySend queues msg without blocking. When the buffer is full msg is
// dropped and the oldest queued event gives way to droppedNotice.
func (c *Client) TrySend(msg []byte) {
	defer func() {
		// Send was closed under us.
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- msg:
		return
	default:
	}

	observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
	select {
	case <-c.Send:
	default:
	}
	select {
	case c.Send <- droppedNotice:
	default:
	}
}
