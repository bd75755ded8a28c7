package monitor

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"polyscout/internal/models"
)

func watchConfig(tp, sl float64) *models.WatchConfig {
	cfg := &models.WatchConfig{
		ID:         "w1",
		TokenID:    "tok1",
		EntryPrice: decimal.NewFromFloat(0.60),
		Size:       decimal.NewFromFloat(100),
	}
	if tp > 0 {
		cfg.TakeProfitPrice = decimal.NewFromFloat(tp)
	}
	if sl > 0 {
		cfg.StopLossPrice = decimal.NewFromFloat(sl)
	}
	return cfg
}

func TestDecide_TakeProfitOnBestBid(t *testing.T) {
	cfg := watchConfig(0.80, 0.40)
	decision, price := Decide(cfg, Quote{BestBid: 0.85, BestAsk: 0.86})
	if decision != DecisionTakeProfit {
		t.Fatalf("decision=%s want=%s", decision, DecisionTakeProfit)
	}
	if price != 0.80 {
		t.Fatalf("sell price=%v want=0.80 (the target, not the bid)", price)
	}
}

func TestDecide_TakeProfitIgnoresMidpoint(t *testing.T) {
	// Midpoint is above target but the bid is not; no sale.
	cfg := watchConfig(0.80, 0)
	decision, _ := Decide(cfg, Quote{BestBid: 0.78, BestAsk: 0.95})
	if decision != DecisionHold {
		t.Fatalf("decision=%s want=%s", decision, DecisionHold)
	}
}

func TestDecide_StopLossAtMidpoint(t *testing.T) {
	cfg := watchConfig(0, 0.40)
	decision, price := Decide(cfg, Quote{BestBid: 0.35, BestAsk: 0.40})
	if decision != DecisionStopLoss {
		t.Fatalf("decision=%s want=%s", decision, DecisionStopLoss)
	}
	want := 0.35 - 0.001
	if math.Abs(price-want) > 1e-12 {
		t.Fatalf("sell price=%v want=%v (bid shaved)", price, want)
	}
}

func TestDecide_StopLossSuppressedOnWideSpread(t *testing.T) {
	// Midpoint 0.375 is under the 0.20 stop, but the 0.65 spread means the
	// book is gutted; hold instead of dumping into it.
	cfg := watchConfig(0, 0.20)
	decision, _ := Decide(cfg, Quote{BestBid: 0.05, BestAsk: 0.70})
	if decision != DecisionHold {
		t.Fatalf("decision=%s want=%s", decision, DecisionHold)
	}
}

func TestDecide_StopLossSuppressedWithoutBid(t *testing.T) {
	cfg := watchConfig(0, 0.40)
	decision, _ := Decide(cfg, Quote{BestBid: 0, BestAsk: 0.30})
	if decision != DecisionHold {
		t.Fatalf("decision=%s want=%s (bidless book)", decision, DecisionHold)
	}
}

func TestDecide_SellPriceFloor(t *testing.T) {
	cfg := watchConfig(0, 0.05)
	decision, price := Decide(cfg, Quote{BestBid: 0.008, BestAsk: 0.02})
	if decision != DecisionStopLoss {
		t.Fatalf("decision=%s want=%s", decision, DecisionStopLoss)
	}
	if price != 0.01 {
		t.Fatalf("sell price=%v want=0.01 floor", price)
	}
}

func TestQuote_MidpointAndSpread(t *testing.T) {
	q := Quote{BestBid: 0.40, BestAsk: 0.50}
	if math.Abs(q.Midpoint()-0.45) > 1e-12 {
		t.Fatalf("midpoint=%v want=0.45", q.Midpoint())
	}
	if math.Abs(q.Spread()-0.10) > 1e-12 {
		t.Fatalf("spread=%v want=0.10", q.Spread())
	}
	bidless := Quote{BestAsk: 0.30}
	if bidless.Midpoint() != 0.30 {
		t.Fatalf("bidless midpoint=%v want=0.30", bidless.Midpoint())
	}
	if bidless.Spread() != 1.0 {
		t.Fatalf("bidless spread=%v want=1.0", bidless.Spread())
	}
}

func TestBuildConfig(t *testing.T) {
	cfg, err := BuildConfig("tok1", "Question?", 0.60, 100, 0.25, 0.30)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.ID == "" || cfg.TokenID != "tok1" {
		t.Fatalf("cfg=%+v want id and token set", cfg)
	}
	tp, _ := cfg.TakeProfitPrice.Float64()
	if math.Abs(tp-0.75) > 1e-9 {
		t.Fatalf("tp=%v want=0.75", tp)
	}
	sl, _ := cfg.StopLossPrice.Float64()
	if math.Abs(sl-0.42) > 1e-9 {
		t.Fatalf("sl=%v want=0.42", sl)
	}
}

func TestBuildConfig_Validation(t *testing.T) {
	if _, err := BuildConfig("", "q", 0.5, 100, 0.1, 0.1); err == nil {
		t.Fatalf("empty token must fail")
	}
	if _, err := BuildConfig("tok", "q", 0, 100, 0.1, 0.1); err == nil {
		t.Fatalf("zero entry must fail")
	}
	if _, err := BuildConfig("tok", "q", 0.5, 100, 0, 0); err == nil {
		t.Fatalf("no target at all must fail")
	}
}

func TestIsBalanceError(t *testing.T) {
	if isBalanceError(nil) {
		t.Fatalf("nil error must not match")
	}
	if !isBalanceError(fmt.Errorf("not enough balance / allowance")) {
		t.Fatalf("balance error must match")
	}
	if !isBalanceError(fmt.Errorf("Allowance exceeded")) {
		t.Fatalf("allowance error must match case-insensitively")
	}
	if isBalanceError(fmt.Errorf("internal server error")) {
		t.Fatalf("unrelated error must not match")
	}
}
