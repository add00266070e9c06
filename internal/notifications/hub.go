// Package notifications delivers realtime feed and notification events to
// connected websocket clients, fanned out across instances through Redis.
package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"

	"hackit/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	hubName = "notification hub"

	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

var (
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrUserConnLimit   = errors.New("user connection limit reached")
)

// Hub holds this instance's sockets, grouped by user.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[*Client]struct{}
	total int

	presence *Presence
	log      *observability.WSLogger
	closed   chan struct{}
}

// NewHub returns an empty hub. Passing a Redis client shares presence with
// the other API instances.
func NewHub(rdb ...*redis.Client) *Hub {
	var shared *redis.Client
	if len(rdb) > 0 {
		shared = rdb[0]
	}
	return &Hub{
		users:    make(map[string]map[*Client]struct{}),
		presence: NewPresence(shared),
		log:      observability.NewWSLogger(hubName),
		closed:   make(chan struct{}),
	}
}

func (h *Hub) Name() string { return hubName }

// Register adds a socket for userID, refusing it once the per-user or
// instance-wide cap is reached.
func (h *Hub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid string) { h.presence.Heartbeat(context.Background(), uid) }

	h.mu.Lock()
	switch {
	case h.total >= maxTotalConns:
		h.mu.Unlock()
		return nil, ErrServerConnLimit
	case len(h.users[userID]) >= maxConnsPerUser:
		h.mu.Unlock()
		return nil, ErrUserConnLimit
	}
	if h.users[userID] == nil {
		h.users[userID] = make(map[*Client]struct{})
	}
	h.users[userID][client] = struct{}{}
	h.total++
	h.mu.Unlock()

	ctx := context.Background()
	observability.WebSocketConnectionsTotal.Inc()
	h.log.LogConnect(ctx, userID)
	h.presence.Connected(ctx, userID)
	return client, nil
}

// UnregisterClient removes client. Calling it twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	set := h.users[client.UserID]
	_, present := set[client]
	if present {
		delete(set, client)
		h.total--
		if len(set) == 0 {
			delete(h.users, client.UserID)
		}
	}
	h.mu.Unlock()

	if !present {
		return
	}
	observability.WebSocketConnectionsTotal.Dec()
	h.log.LogDisconnect(context.Background(), client.UserID, "unregistered")
	h.presence.Disconnected(client.UserID)
}

// OnPresence installs callbacks for online and offline transitions.
func (h *Hub) OnPresence(online, offline func(userID string)) {
	h.presence.OnTransition(online, offline)
}

// Broadcast queues message on every socket userID has on this instance.
func (h *Hub) Broadcast(userID, message string) {
	data := []byte(message)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.users[userID] {
		c.TrySend(data)
	}
}

// BroadcastAll queues message on every socket on this instance.
func (h *Hub) BroadcastAll(message string) {
	data := []byte(message)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.users {
		for c := range set {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether a user has a live connection on any instance.
func (h *Hub) IsOnline(userID string) bool {
	return h.presence.Online(context.Background(), userID)
}

// OnlineCount is the number of distinct online users across instances.
func (h *Hub) OnlineCount(ctx context.Context) int {
	return len(h.presence.OnlineUsers(ctx))
}

// ConnectionCount is the number of sockets held by this instance.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// StartWiring subscribes the hub to the notifier's Redis channels and
// forwards each message to the matching local sockets.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == BroadcastChannel {
			h.BroadcastAll(payload)
			return
		}
		if userID, ok := strings.CutPrefix(channel, userChannelPrefix); ok && userID != "" {
			h.Broadcast(userID, payload)
			return
		}
		h.log.LogLifecycle(ctx, "invalid_channel", "channel", channel)
	})
}

// Shutdown sends CloseGoingAway to every socket and closes it.
func (h *Hub) Shutdown(ctx context.Context) error {
	select {
	case <-h.closed:
		return nil
	default:
		close(h.closed)
	}
	h.presence.Close()

	h.mu.Lock()
	users := h.users
	closed := h.total
	h.users = make(map[string]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()

	goingAway := websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")
	for userID, set := range users {
		for c := range set {
			if c.Conn == nil {
				continue
			}
			if err := c.Conn.WriteMessage(websocket.CloseMessage, goingAway); err != nil {
				h.log.LogError(ctx, userID, err, "close_message")
			}
			if err := c.Conn.Close(); err != nil {
				h.log.LogError(ctx, userID, err, "close")
			}
		}
	}

	observability.WebSocketConnectionsTotal.Sub(float64(closed))
	h.log.LogLifecycle(ctx, "shutdown", "closed", closed)
	return nil
}
