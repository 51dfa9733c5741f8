package httpapi

import (
	"testing"
	"time"
)

func TestKeyedLimiterBurst(t *testing.T) {
	l := newKeyedLimiter(10.0/300.0, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("ip:198.51.100.7") {
			t.Fatalf("attempt %d within burst must pass", i)
		}
	}
	if l.Allow("ip:198.51.100.7") {
		t.Fatalf("attempt past burst must be limited")
	}

	// Other keys have their own budget.
	if !l.Allow("ip:203.0.113.9") {
		t.Fatalf("independent key must pass")
	}
}

func TestKeyedLimiterSweepsStaleEntries(t *testing.T) {
	l := newKeyedLimiter(1, 1)

	l.Allow("ip:198.51.100.7")
	l.Allow("ip:203.0.113.9")

	// Age one entry past the ttl and force the next Allow to sweep.
	l.mu.Lock()
	l.entries["ip:198.51.100.7"].lastAccess = time.Now().Add(-3 * limiterCleanupInterval)
	l.lastCleanup = time.Now().Add(-2 * limiterCleanupInterval)
	l.mu.Unlock()

	l.Allow("ip:192.0.2.1")

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries["ip:198.51.100.7"]; ok {
		t.Fatalf("stale entry survived the sweep")
	}
	if _, ok := l.entries["ip:203.0.113.9"]; !ok {
		t.Fatalf("live entry must survive the sweep")
	}
}
