package ai

import (
	"strings"
	"sync"
	"time"
)

var creditErrorPhrases = []string{
	"credit balance is too low",
	"upgrade or purchase credits",
	"insufficient credits",
	"out of credits",
	"no credits remaining",
}

// IsCreditError reports whether an API error message indicates an exhausted
// account rather than a transient failure.
func IsCreditError(msg string) bool {
	msg = strings.ToLower(msg)
	for _, phrase := range creditErrorPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// CreditGuard blocks all AI calls process-wide once a credit exhaustion error
// is seen, so a long scan does not burn retries against a dead account. The
// block lifts automatically after the reset window.
type CreditGuard struct {
	mu         sync.Mutex
	blockedAt  time.Time
	reason     string
	resetAfter time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func NewCreditGuard(resetAfter time.Duration) *CreditGuard {
	if resetAfter <= 0 {
		resetAfter = 5 * time.Minute
	}
	return &CreditGuard{
		resetAfter: resetAfter,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Check returns the block reason if AI calls are currently suspended.
func (g *CreditGuard) Check() (string, bool) {
	if g == nil {
		return "", false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.blockedAt.IsZero() {
		return "", false
	}
	if g.Now().Sub(g.blockedAt) >= g.resetAfter {
		g.blockedAt = time.Time{}
		g.reason = ""
		return "", false
	}
	return g.reason, true
}

// Trip suspends AI calls with the given reason.
func (g *CreditGuard) Trip(reason string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.blockedAt = g.Now()
	g.reason = reason
	g.mu.Unlock()
}

// Reset lifts the block immediately, for when the account has been topped up
// before the reset window elapses.
func (g *CreditGuard) Reset() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.blockedAt = time.Time{}
	g.reason = ""
	g.mu.Unlock()
}
