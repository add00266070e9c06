package notifications

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg := <-c.Send:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestHub_PerUserConnectionCap(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register("alice", nil)
		require.NoError(t, err)
	}
	_, err := hub.Register("alice", nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)

	_, err = hub.Register("bob", nil)
	assert.NoError(t, err)
	assert.Equal(t, maxConnsPerUser+1, hub.ConnectionCount())
}

func TestHub_BroadcastRoutesByUser(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	a1, err := hub.Register("alice", nil)
	require.NoError(t, err)
	a2, err := hub.Register("alice", nil)
	require.NoError(t, err)
	b, err := hub.Register("bob", nil)
	require.NoError(t, err)

	hub.Broadcast("alice", `{"type":"notification_created"}`)
	assert.Equal(t, []string{`{"type":"notification_created"}`}, drain(a1))
	assert.Equal(t, []string{`{"type":"notification_created"}`}, drain(a2))
	assert.Empty(t, drain(b))

	hub.BroadcastAll(`{"type":"post_created"}`)
	assert.Len(t, drain(a1), 1)
	assert.Len(t, drain(b), 1)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	c, err := hub.Register("alice", nil)
	require.NoError(t, err)
	hub.UnregisterClient(c)
	hub.UnregisterClient(c)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestClient_TrySendBackpressure(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	c, err := hub.Register("alice", nil)
	require.NoError(t, err)
	for i := 0; i < sendBufferSize; i++ {
		c.TrySend([]byte("m"))
	}
	c.TrySend([]byte("overflow"))

	msgs := drain(c)
	require.Len(t, msgs, sendBufferSize)
	assert.Contains(t, msgs[len(msgs)-1], "messages_dropped")
	for _, m := range msgs {
		assert.NotEqual(t, "overflow", m)
	}
}

func TestHub_OnlineCountAcrossRedis(t *testing.T) {
	rdb := newTestRedis(t)
	hub := NewHub(rdb)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	_, err := hub.Register("alice", nil)
	require.NoError(t, err)
	_, err = hub.Register("alice", nil)
	require.NoError(t, err)
	_, err = hub.Register("bob", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.OnlineCount(context.Background()))
	assert.True(t, hub.IsOnline("bob"))
	assert.False(t, hub.IsOnline("carol"))
}

func TestHub_StartWiringDeliversAcrossInstances(t *testing.T) {
	rdb := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	receiver := NewHub()
	defer func() { _ = receiver.Shutdown(context.Background()) }()
	require.NoError(t, receiver.StartWiring(ctx, NewNotifier(rdb)))

	alice, err := receiver.Register("alice", nil)
	require.NoError(t, err)
	bob, err := receiver.Register("bob", nil)
	require.NoError(t, err)

	sender := NewNotifier(rdb)
	require.NoError(t, sender.PublishUser(ctx, "alice", `{"type":"notification_created"}`))
	require.NoError(t, sender.PublishBroadcast(ctx, `{"type":"post_created"}`))

	var got []string
	assert.Eventually(t, func() bool {
		got = append(got, drain(alice)...)
		return len(got) == 2
	}, testEventuallyTimeout, testPollInterval)
	assert.True(t, strings.Contains(strings.Join(got, ""), "notification_created"))

	var bobGot []string
	assert.Eventually(t, func() bool {
		bobGot = append(bobGot, drain(bob)...)
		return len(bobGot) == 1
	}, testEventuallyTimeout, testPollInterval)
	assert.Contains(t, bobGot[0], "post_created")
}
