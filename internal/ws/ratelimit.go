package ws

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between accepted messages per identity.
const DefaultCooldown = 800 * time.Millisecond

const shardCount = 16

// RateLimiter gates message sends per identity: a send is accepted iff no
// prior send was accepted within the cooldown window, and only accepted
// sends move the window. Locking is sharded by identity id so unrelated
// identities never contend; a janitor evicts idle entries so the map does
// not grow for the process lifetime.
type RateLimiter struct {
	shards   [shardCount]limiterShard
	cooldown time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type limiterShard struct {
	mu   sync.Mutex
	last map[int]time.Time
}

// NewRateLimiter builds a limiter and starts its eviction janitor. Entries
// idle longer than ttl are dropped; ttl <= 0 disables eviction.
func NewRateLimiter(cooldown, ttl time.Duration) *RateLimiter {
	rl := newRateLimiterWithNow(cooldown, time.Now)
	if ttl > 0 {
		go rl.janitor(ttl)
	}
	return rl
}

func newRateLimiterWithNow(cooldown time.Duration, now func() time.Time) *RateLimiter {
	rl := &RateLimiter{cooldown: cooldown, now: now, stop: make(chan struct{})}
	for i := range rl.shards {
		rl.shards[i].last = make(map[int]time.Time)
	}
	return rl
}

// Allow reports whether the identity may send now, recording the send time
// only on acceptance. Under concurrent calls for the same identity exactly
// one caller wins a given cooldown window.
func (rl *RateLimiter) Allow(userID int) bool {
	shard := &rl.shards[uint(userID)%shardCount]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := rl.now()
	if last, ok := shard.last[userID]; ok && now.Sub(last) < rl.cooldown {
		return false
	}
	shard.last[userID] = now
	return true
}

// Stop terminates the eviction janitor. Used on shutdown.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) janitor(ttl time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			now := rl.now()
			for i := range rl.shards {
				shard := &rl.shards[i]
				shard.mu.Lock()
				for userID, last := range shard.last {
					if now.Sub(last) > ttl {
						delete(shard.last, userID)
					}
				}
				shard.mu.Unlock()
			}
		}
	}
}
