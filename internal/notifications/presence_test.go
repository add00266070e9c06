package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresence_ReconnectWithinGraceStaysOnline(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()
	hub.presence.setGrace(40 * time.Millisecond)

	var offline int32
	hub.OnPresence(nil, func(string) { atomic.AddInt32(&offline, 1) })

	c, err := hub.Register("u10", nil)
	require.NoError(t, err)
	hub.UnregisterClient(c)
	_, err = hub.Register("u10", nil)
	require.NoError(t, err)

	assert.Never(t, func() bool { return atomic.LoadInt32(&offline) > 0 }, 20*testPollInterval, testPollInterval)
	assert.True(t, hub.IsOnline("u10"))
}

func TestPresence_LastSocketTriggersOfflineOnce(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()
	hub.presence.setGrace(30 * time.Millisecond)

	var online, offline int32
	hub.OnPresence(
		func(string) { atomic.AddInt32(&online, 1) },
		func(string) { atomic.AddInt32(&offline, 1) },
	)

	a, err := hub.Register("u15", nil)
	require.NoError(t, err)
	b, err := hub.Register("u15", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&online), "second socket is not a transition")

	hub.UnregisterClient(a)
	assert.Never(t, func() bool { return atomic.LoadInt32(&offline) > 0 }, 30*testPollInterval, testPollInterval)

	hub.UnregisterClient(b)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&offline) == 1 }, testEventuallyTimeout, testPollInterval)
	assert.False(t, hub.IsOnline("u15"))
}

func TestPresence_HeartbeatSharesAcrossInstances(t *testing.T) {
	rdb := newTestRedis(t)
	here := NewPresence(rdb)
	there := NewPresence(rdb)
	t.Cleanup(here.Close)
	t.Cleanup(there.Close)
	ctx := context.Background()

	here.Connected(ctx, "alice")
	assert.True(t, there.Online(ctx, "alice"))
	assert.ElementsMatch(t, []string{"alice"}, there.OnlineUsers(ctx))

	ttl, err := rdb.TTL(ctx, presenceSeenPrefix+"alice").Result()
	require.NoError(t, err)
	assert.Equal(t, presenceTTL, ttl)
}

func TestPresence_ReapDropsExpiredMembers(t *testing.T) {
	rdb := newTestRedis(t)
	p := NewPresence(rdb)
	t.Cleanup(p.Close)
	ctx := context.Background()

	var offline []string
	p.OnTransition(nil, func(id string) { offline = append(offline, id) })

	require.NoError(t, rdb.SAdd(ctx, presenceSetKey, "ghost").Err())
	p.Heartbeat(ctx, "live")

	p.reap(ctx)

	members, err := rdb.SMembers(ctx, presenceSetKey).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, members)
	assert.Equal(t, []string{"ghost"}, offline)

	p.reap(ctx)
	assert.Len(t, offline, 1)
}

func TestPresence_GoesOfflineAfterGraceWithRedis(t *testing.T) {
	hub := NewHub(newTestRedis(t))
	defer func() { _ = hub.Shutdown(context.Background()) }()
	hub.presence.setGrace(30 * time.Millisecond)

	var offline int32
	hub.OnPresence(nil, func(string) { atomic.AddInt32(&offline, 1) })

	c, err := hub.Register("solo", nil)
	require.NoError(t, err)
	hub.UnregisterClient(c)
	assert.True(t, hub.IsOnline("solo"), "online during grace")

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&offline) == 1 }, testEventuallyTimeout, testPollInterval)
	assert.False(t, hub.IsOnline("solo"))
	assert.Zero(t, hub.OnlineCount(context.Background()))
}

func TestPresence_OtherInstanceKeepsUserOnline(t *testing.T) {
	rdb := newTestRedis(t)
	here := NewPresence(rdb)
	there := NewPresence(rdb)
	t.Cleanup(here.Close)
	t.Cleanup(there.Close)
	here.setGrace(20 * time.Millisecond)
	ctx := context.Background()

	var offline int32
	here.OnTransition(nil, func(string) { atomic.AddInt32(&offline, 1) })

	here.Connected(ctx, "bea")
	there.Connected(ctx, "bea")
	here.Disconnected("bea")

	assert.Never(t, func() bool { return atomic.LoadInt32(&offline) > 0 }, 20*testPollInterval, testPollInterval)
	assert.True(t, here.Online(ctx, "bea"))

	n, err := rdb.ZCard(ctx, presenceSeenPrefix+"bea").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the departed instance's entry is withdrawn")
}
