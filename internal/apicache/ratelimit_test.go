package apicache

import (
	"context"
	"testing"
	"time"
)

func newTestLimiter(perMinute int, minDelay time.Duration) (*RateLimiter, *time.Time, *[]time.Duration) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := &now
	slept := &[]time.Duration{}
	r := NewRateLimiter(perMinute, minDelay)
	r.Now = func() time.Time { return *current }
	r.Sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		*current = current.Add(d)
		return nil
	}
	return r, current, slept
}

func TestRateLimiter_MinDelayBetweenRequests(t *testing.T) {
	r, _, slept := newTestLimiter(100, 3*time.Second)
	ctx := context.Background()

	if err := r.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if len(*slept) != 0 {
		t.Fatalf("first request should not sleep: %v", *slept)
	}
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != 3*time.Second {
		t.Fatalf("slept=%v want one 3s delay", *slept)
	}
}

func TestRateLimiter_WindowBudget(t *testing.T) {
	r, current, slept := newTestLimiter(2, 0)
	ctx := context.Background()

	if err := r.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	*current = current.Add(time.Second)
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	// Third request exceeds the 2/min budget; it must wait for the first
	// request to leave the rolling window.
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(*slept) == 0 {
		t.Fatalf("third request should have slept")
	}
}

func TestRateLimiter_CooldownBacksOffAndCaps(t *testing.T) {
	r, _, _ := newTestLimiter(8, 0)

	var prev time.Duration
	for i := 0; i < 6; i++ {
		r.ReportRateLimit(0)
		cur := r.CooldownRemaining()
		if cur < prev {
			t.Fatalf("cooldown shrank on consecutive hits: %v -> %v", prev, cur)
		}
		prev = cur
	}
	if prev != 4*time.Minute {
		t.Fatalf("cooldown=%v want=4m (30s*8 capped multiplier)", prev)
	}

	r.ReportSuccess()
	r.ReportRateLimit(0)
	if got := r.CooldownRemaining(); got != 30*time.Second {
		t.Fatalf("cooldown=%v want=30s after success reset", got)
	}
}

func TestRateLimiter_RetryAfterHonored(t *testing.T) {
	r, _, _ := newTestLimiter(8, 0)
	r.ReportRateLimit(45 * time.Second)
	if got := r.CooldownRemaining(); got != 45*time.Second {
		t.Fatalf("cooldown=%v want=45s from server hint", got)
	}
	if !r.IsLimited() {
		t.Fatalf("limiter should report limited during cooldown")
	}
}

func TestRateLimiter_WaitSitsOutCooldown(t *testing.T) {
	r, _, slept := newTestLimiter(8, 0)
	r.ReportRateLimit(10 * time.Second)
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(*slept) == 0 || (*slept)[0] != 10*time.Second {
		t.Fatalf("slept=%v want a 10s cooldown sleep first", *slept)
	}
}

func TestRateLimiter_NilSafe(t *testing.T) {
	var r *RateLimiter
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter wait: %v", err)
	}
	r.ReportRateLimit(time.Second)
	r.ReportSuccess()
	if r.IsLimited() {
		t.Fatalf("nil limiter must not limit")
	}
}
