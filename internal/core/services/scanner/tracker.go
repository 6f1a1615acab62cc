package scanner

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// firstSeenTracker remembers when each identity was first observed. Entries
// expire once the identity has been absent for longer than the stale window,
// so a network that comes back later starts a fresh visibility period.
type firstSeenTracker struct {
	entries *cache.Cache
	window  time.Duration
}

func newFirstSeenTracker(window time.Duration) *firstSeenTracker {
	// No janitor goroutine: expired entries are swept by prune on the writer.
	return &firstSeenTracker{
		entries: cache.New(window, 0),
		window:  window,
	}
}

// observe returns the first-seen time for key, recording now when unknown,
// and pushes the key's expiry out by one window.
func (t *firstSeenTracker) observe(key string, now time.Time) time.Time {
	firstSeen := now
	if v, ok := t.entries.Get(key); ok {
		firstSeen = v.(time.Time)
	}
	t.entries.Set(key, firstSeen, t.window)
	return firstSeen
}

// lookup returns the recorded first-seen time without refreshing it.
func (t *firstSeenTracker) lookup(key string) (time.Time, bool) {
	v, ok := t.entries.Get(key)
	if !ok {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

// prune drops identities absent for longer than the window.
func (t *firstSeenTracker) prune() {
	t.entries.DeleteExpired()
}

func (t *firstSeenTracker) len() int {
	return t.entries.ItemCount()
}

func (t *firstSeenTracker) reset() {
	t.entries.Flush()
}
