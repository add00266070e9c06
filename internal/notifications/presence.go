package notifications

import (
	"context"
	"strconv"
	"sync"
	"time"

	"hackit/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	presenceSetKey     = "presence:online"
	presenceSeenPrefix = "presence:seen:"

	presenceTTL         = 90 * time.Second
	presenceGrace       = 5 * time.Second
	presenceReapEvery   = time.Minute
	presenceCallTimeout = 2 * time.Second
)

// Presence tracks which users have a live socket. Local connection counts
// are authoritative for this instance. In Redis each user has a sorted set
// of instance ids scored by heartbeat expiry, so other instances see the
// same users as online and an instance can withdraw only its own entry.
//
// A user whose last socket closes stays online for the grace period, so a
// page reload does not flap them offline.
type Presence struct {
	rdb      *redis.Client
	instance string
	ttl   time.Duration
	grace time.Duration

	mu        sync.RWMutex
	local     map[string]int
	pending   map[string]*time.Timer
	announced map[string]bool // true once the offline transition was emitted
	onOnline  func(userID string)
	onOffline func(userID string)

	stop     chan struct{}
	stopOnce sync.Once
}

// NewPresence returns a tracker. With a nil rdb presence is local only and no
// reaper runs.
func NewPresence(rdb *redis.Client) *Presence {
	p := &Presence{
		rdb:       rdb,
		instance:  uuid.NewString(),
		ttl:       presenceTTL,
		grace:     presenceGrace,
		local:     make(map[string]int),
		pending:   make(map[string]*time.Timer),
		announced: make(map[string]bool),
		stop:      make(chan struct{}),
	}
	if rdb != nil {
		go p.reapLoop(presenceReapEvery)
	}
	return p
}

// OnTransition installs the callbacks run when a user comes online or goes
// offline. Either may be nil.
func (p *Presence) OnTransition(online, offline func(userID string)) {
	p.mu.Lock()
	p.onOnline, p.onOffline = online, offline
	p.mu.Unlock()
}

func (p *Presence) setGrace(d time.Duration) {
	p.mu.Lock()
	p.grace = d
	p.mu.Unlock()
}

// Connected records a new socket for userID.
func (p *Presence) Connected(ctx context.Context, userID string) {
	wasOnline := p.Online(ctx, userID)

	p.mu.Lock()
	if t := p.pending[userID]; t != nil {
		t.Stop()
		delete(p.pending, userID)
	}
	p.local[userID]++
	p.announced[userID] = false
	cb := p.onOnline
	p.mu.Unlock()

	p.Heartbeat(ctx, userID)
	if !wasOnline && cb != nil {
		cb(userID)
	}
}

// Disconnected records a closed socket. When it was the user's last one on
// this instance, the offline check runs after the grace period.
func (p *Presence) Disconnected(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.local[userID] > 1 {
		p.local[userID]--
		return
	}
	delete(p.local, userID)

	if t := p.pending[userID]; t != nil {
		t.Stop()
	}
	p.pending[userID] = time.AfterFunc(p.grace, func() { p.expire(userID) })
}

// Heartbeat refreshes this instance's entry for userID.
func (p *Presence) Heartbeat(ctx context.Context, userID string) {
	if p.rdb == nil {
		return
	}
	key := presenceSeenPrefix + userID
	_, err := p.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, presenceSetKey, userID)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(time.Now().Add(p.ttl).UnixMilli()), Member: p.instance})
		pipe.Expire(ctx, key, p.ttl)
		return nil
	})
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "presence heartbeat failed", "user_id", userID, "error", err)
	}
}

// liveEntries counts unexpired heartbeat entries for userID.
func liveEntries(ctx context.Context, c redis.Cmdable, userID string) *redis.IntCmd {
	return c.ZCount(ctx, presenceSeenPrefix+userID, strconv.FormatInt(time.Now().UnixMilli(), 10), "+inf")
}

// Online reports whether userID has a socket here or a live heartbeat in Redis.
func (p *Presence) Online(ctx context.Context, userID string) bool {
	p.mu.RLock()
	n := p.local[userID]
	p.mu.RUnlock()
	if n > 0 {
		return true
	}
	if p.rdb == nil {
		return false
	}
	live, err := liveEntries(ctx, p.rdb, userID).Result()
	return err == nil && live > 0
}

// OnlineUsers lists every online user across instances.
func (p *Presence) OnlineUsers(ctx context.Context) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	if live, _, err := p.scan(ctx); err == nil {
		for _, id := range live {
			add(id)
		}
	}

	p.mu.RLock()
	for id, n := range p.local {
		if n > 0 {
			add(id)
		}
	}
	p.mu.RUnlock()
	return out
}

// scan splits the online set into members with a live heartbeat and members
// whose heartbeat expired. It checks every member in a single pipeline.
func (p *Presence) scan(ctx context.Context) (live, stale []string, err error) {
	if p.rdb == nil {
		return nil, nil, nil
	}
	members, err := p.rdb.SMembers(ctx, presenceSetKey).Result()
	if err != nil || len(members) == 0 {
		return nil, nil, err
	}

	checks := make([]*redis.IntCmd, len(members))
	if _, err := p.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range members {
			checks[i] = liveEntries(ctx, pipe, id)
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}

	for i, id := range members {
		if checks[i].Val() > 0 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}
	return live, stale, nil
}

// reap drops members whose heartbeat expired, e.g. after another instance
// died without cleaning up, and emits their offline transition.
func (p *Presence) reap(ctx context.Context) {
	_, stale, err := p.scan(ctx)
	if err != nil || len(stale) == 0 {
		return
	}
	args := make([]any, len(stale))
	for i, id := range stale {
		args[i] = id
	}
	_ = p.rdb.SRem(ctx, presenceSetKey, args...).Err()

	for _, id := range stale {
		p.mu.RLock()
		here := p.local[id] > 0
		p.mu.RUnlock()
		if !here {
			p.announceOffline(id)
		}
	}
}

func (p *Presence) reapLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), presenceCallTimeout)
			p.reap(ctx)
			cancel()
		}
	}
}

func (p *Presence) expire(userID string) {
	p.mu.Lock()
	delete(p.pending, userID)
	reconnected := p.local[userID] > 0
	p.mu.Unlock()
	if reconnected {
		return
	}

	if p.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), presenceCallTimeout)
		defer cancel()
		var others *redis.IntCmd
		_, err := p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRem(ctx, presenceSeenPrefix+userID, p.instance)
			others = liveEntries(ctx, pipe, userID)
			return nil
		})
		// Another instance still holds a socket for the user.
		if err == nil && others.Val() > 0 {
			return
		}
		_ = p.rdb.SRem(ctx, presenceSetKey, userID).Err()
	}
	p.announceOffline(userID)
}

func (p *Presence) announceOffline(userID string) {
	p.mu.Lock()
	if p.announced[userID] {
		p.mu.Unlock()
		return
	}
	p.announced[userID] = true
	cb := p.onOffline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}

// Close stops the reaper and cancels pending offline checks.
func (p *Presence) Close() {
	p.stopOnce.Do(func() {
		close(p.stop)
		p.mu.Lock()
		for id, t := range p.pending {
			t.Stop()
			delete(p.pending, id)
		}
		p.mu.Unlock()
	})
}
