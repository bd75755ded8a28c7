package ai

import (
	"testing"
	"time"
)

func TestIsCreditError(t *testing.T) {
	if !IsCreditError("Your credit balance is too low to access the API") {
		t.Fatalf("expected credit error match")
	}
	if !IsCreditError("INSUFFICIENT CREDITS") {
		t.Fatalf("match should be case insensitive")
	}
	if IsCreditError("rate limit exceeded") {
		t.Fatalf("rate limits are not credit errors")
	}
}

func TestCreditGuard_TripAndAutoReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewCreditGuard(5 * time.Minute)
	g.Now = func() time.Time { return now }

	if reason, blocked := g.Check(); blocked {
		t.Fatalf("fresh guard should not block: %s", reason)
	}

	g.Trip("credit balance is too low")
	reason, blocked := g.Check()
	if !blocked || reason != "credit balance is too low" {
		t.Fatalf("blocked=%v reason=%q", blocked, reason)
	}

	now = now.Add(4 * time.Minute)
	if _, blocked := g.Check(); !blocked {
		t.Fatalf("guard should still block inside the reset window")
	}

	now = now.Add(time.Minute)
	if reason, blocked := g.Check(); blocked {
		t.Fatalf("guard should lift after the reset window: %s", reason)
	}
}

func TestCreditGuard_ManualReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewCreditGuard(5 * time.Minute)
	g.Now = func() time.Time { return now }

	g.Trip("credit balance is too low")
	if _, blocked := g.Check(); !blocked {
		t.Fatalf("guard should block after trip")
	}

	g.Reset()
	if reason, blocked := g.Check(); blocked {
		t.Fatalf("reset should lift the block immediately: %s", reason)
	}
}

func TestCreditGuard_NilSafe(t *testing.T) {
	var g *CreditGuard
	if _, blocked := g.Check(); blocked {
		t.Fatalf("nil guard must not block")
	}
	g.Trip("noop")
	g.Reset()
}
