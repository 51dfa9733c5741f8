package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 5 * time.Minute

// keyedLimiter hands out a token-bucket limiter per key (client ip or
// account email) for the credential endpoints. Stale entries are swept
// inline on Allow, so the limiter owns no background goroutine and dies
// with the router that holds it.
type keyedLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	entries     map[string]*limiterEntry
	lastCleanup time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newKeyedLimiter(limit rate.Limit, burst int) *keyedLimiter {
	return &keyedLimiter{
		limit:       limit,
		burst:       burst,
		entries:     make(map[string]*limiterEntry),
		lastCleanup: time.Now(),
	}
}

func (l *keyedLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) > limiterCleanupInterval {
		l.cleanupLocked(now)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastAccess = now
	return e.limiter.Allow()
}

func (l *keyedLimiter) cleanupLocked(now time.Time) {
	ttl := 2 * limiterCleanupInterval
	for key, e := range l.entries {
		if now.Sub(e.lastAccess) > ttl {
			delete(l.entries, key)
		}
	}
	l.lastCleanup = now
}
