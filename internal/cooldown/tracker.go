package cooldown

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"enforcer/pkg/metrics"
)

const shardCount = 16

type entry struct {
	lastFired time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]entry
}

// Tracker rate-limits policy firings per (policy, container) key.
// Keys are sharded so concurrent alerts for different targets never
// contend on one lock.
type Tracker struct {
	shards [shardCount]*shard
}

func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.shards {
		t.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return t
}

// Allow reports whether the policy may fire against the target and, if
// so, records the firing at now. The check and the record are a single
// step under the key's shard lock: two near-simultaneous alerts for the
// same key cannot both pass when the cooldown is positive.
//
// Cooldown restarts on every fire, not only on the first. A zero
// cooldown always fires with no bookkeeping; an empty target cannot be
// tracked and always fires.
func (t *Tracker) Allow(policyName, targetID string, cooldown time.Duration, now time.Time) bool {
	if cooldown <= 0 || targetID == "" {
		return true
	}

	k := policyName + "\x00" + targetID
	sh := t.shardFor(k)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if e, ok := sh.entries[k]; ok && now.Sub(e.lastFired) < cooldown {
		return false
	}
	sh.entries[k] = entry{lastFired: now}
	return true
}

// Len reports the number of tracked keys.
func (t *Tracker) Len() int {
	total := 0
	for _, sh := range t.shards {
		sh.mu.Lock()
		total += len(sh.entries)
		sh.mu.Unlock()
	}
	return total
}

// Sweep evicts entries whose last firing is older than maxAge and
// returns the number removed. maxAge must be at least the longest
// configured cooldown or entries could be evicted while still
// suppressing.
func (t *Tracker) Sweep(maxAge time.Duration, now time.Time) int {
	removed := 0
	for _, sh := range t.shards {
		sh.mu.Lock()
		for k, e := range sh.entries {
			if now.Sub(e.lastFired) >= maxAge {
				delete(sh.entries, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	metrics.SetCooldownEntries(t.Len())
	return removed
}

// StartSweeper periodically evicts stale entries until ctx is done.
// maxAge is re-evaluated each tick so a policy reload with a longer
// cooldown takes effect without restarting the sweeper.
func (t *Tracker) StartSweeper(ctx context.Context, interval time.Duration, maxAge func() time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Sweep(maxAge(), time.Now())
		}
	}
}

func (t *Tracker) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return t.shards[h.Sum32()%shardCount]
}
