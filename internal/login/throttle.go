package login

import (
	"sync"
	"time"
)

// Throttle tracks failed login attempts per remote IP and enforces a
// temporary ban after too many in a row (spec.md §4.3's "Invariants" plus
// the original Sylverant config's ban-after-N-tries window, constants.
// DefaultLoginTryBeforeBan/DefaultLoginBlockSeconds). Grounded structurally
// on the shipgate Roster's mutex-guarded map shape.
type Throttle struct {
	mu          sync.Mutex
	attempts    map[string]int
	bannedUntil map[string]time.Time

	maxAttempts int
	banDuration time.Duration
}

// NewThrottle creates a Throttle banning an IP for banDuration after
// maxAttempts consecutive failures.
func NewThrottle(maxAttempts int, banDuration time.Duration) *Throttle {
	return &Throttle{
		attempts:    make(map[string]int),
		bannedUntil: make(map[string]time.Time),
		maxAttempts: maxAttempts,
		banDuration: banDuration,
	}
}

// Allowed reports whether ip is currently permitted to attempt a login.
func (t *Throttle) Allowed(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, banned := t.bannedUntil[ip]
	if !banned {
		return true
	}
	if time.Now().Before(until) {
		return false
	}
	delete(t.bannedUntil, ip)
	delete(t.attempts, ip)
	return true
}

// RecordFailure counts one failed login attempt from ip, banning it once
// maxAttempts is reached.
func (t *Throttle) RecordFailure(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.attempts[ip]++
	if t.attempts[ip] >= t.maxAttempts {
		t.bannedUntil[ip] = time.Now().Add(t.banDuration)
	}
}

// RecordSuccess clears ip's failure count after a successful login.
func (t *Throttle) RecordSuccess(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, ip)
}
