package apicache

import (
	"context"
	"sync"
	"time"
)

const (
	rateWindow      = time.Minute
	defaultCooldown = 30 * time.Second
	maxCooldown     = 5 * time.Minute
	maxBackoffMult  = 8
)

// RateLimiter enforces a rolling per-minute request budget with a minimum
// inter-request delay, and honors server-reported rate limits with an
// exponential cooldown. One limiter is shared by every AI caller in the
// process.
type RateLimiter struct {
	mu sync.Mutex

	perMinute int
	minDelay  time.Duration

	requests      []time.Time
	lastRequest   time.Time
	cooldownUntil time.Time
	consecutive   int

	// Now and Sleep are overridable in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(perMinute int, minDelay time.Duration) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 8
	}
	if minDelay < 0 {
		minDelay = 0
	}
	return &RateLimiter{
		perMinute: perMinute,
		minDelay:  minDelay,
		Now:       func() time.Time { return time.Now().UTC() },
		Sleep:     sleepCtx,
	}
}

// Wait blocks until a request may be made, then records it.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}
	for {
		r.mu.Lock()
		now := r.Now()
		wait := r.nextWaitLocked(now)
		if wait <= 0 {
			r.requests = append(r.requests, now)
			r.lastRequest = now
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()
		if err := r.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (r *RateLimiter) nextWaitLocked(now time.Time) time.Duration {
	if now.Before(r.cooldownUntil) {
		return r.cooldownUntil.Sub(now)
	}
	cutoff := now.Add(-rateWindow)
	kept := r.requests[:0]
	for _, t := range r.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.requests = kept
	if len(r.requests) >= r.perMinute {
		return r.requests[0].Add(rateWindow).Sub(now)
	}
	if r.minDelay > 0 && !r.lastRequest.IsZero() {
		if since := now.Sub(r.lastRequest); since < r.minDelay {
			return r.minDelay - since
		}
	}
	return 0
}

// ReportRateLimit records a 429 from the server. retryAfter of zero falls
// back to the default base; repeated hits back off exponentially up to five
// minutes.
func (r *RateLimiter) ReportRateLimit(retryAfter time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consecutive++
	base := retryAfter
	if base <= 0 {
		base = defaultCooldown
	}
	mult := 1
	for i := 1; i < r.consecutive && mult < maxBackoffMult; i++ {
		mult *= 2
	}
	cooldown := base * time.Duration(mult)
	if cooldown > maxCooldown {
		cooldown = maxCooldown
	}
	r.cooldownUntil = r.Now().Add(cooldown)
}

// ReportSuccess clears the backoff streak after a completed request.
func (r *RateLimiter) ReportSuccess() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.consecutive = 0
	r.mu.Unlock()
}

// IsLimited reports whether a cooldown is currently in force.
func (r *RateLimiter) IsLimited() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Now().Before(r.cooldownUntil)
}

// CooldownRemaining returns how long the active cooldown still has to run.
func (r *RateLimiter) CooldownRemaining() time.Duration {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.Now()
	if now.Before(r.cooldownUntil) {
		return r.cooldownUntil.Sub(now)
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
