package scanner

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"polyscout/internal/client/polymarket/clob"
)

func mkOrder(price, size float64) clob.Order {
	return clob.Order{
		Price: decimal.NewFromFloat(price),
		Size:  decimal.NewFromFloat(size),
	}
}

func TestAnalyzeBook_NilBook(t *testing.T) {
	liq := AnalyzeBook(nil)
	if liq.TotalUSD != 0 {
		t.Fatalf("total=%v want=0", liq.TotalUSD)
	}
	if liq.Spread != 1.0 || liq.SpreadPct != 1.0 {
		t.Fatalf("spread=%v pct=%v want full spread", liq.Spread, liq.SpreadPct)
	}
	if liq.TwoSided {
		t.Fatalf("nil book must not be two-sided")
	}
}

func TestAnalyzeBook_TwoSided(t *testing.T) {
	book := &clob.OrderBook{
		Bids: []clob.Order{mkOrder(0.48, 100), mkOrder(0.47, 200)},
		Asks: []clob.Order{mkOrder(0.52, 100), mkOrder(0.53, 200)},
	}
	liq := AnalyzeBook(book)
	if !liq.TwoSided {
		t.Fatalf("expected two-sided book")
	}
	if math.Abs(liq.Spread-0.04) > 1e-9 {
		t.Fatalf("spread=%v want=0.04", liq.Spread)
	}
	wantPct := 0.04 / 0.50
	if math.Abs(liq.SpreadPct-wantPct) > 1e-9 {
		t.Fatalf("spread_pct=%v want=%v", liq.SpreadPct, wantPct)
	}
	wantBidDepth := 0.48*100 + 0.47*200
	if math.Abs(liq.BidDepthUSD-wantBidDepth) > 1e-6 {
		t.Fatalf("bid_depth=%v want=%v", liq.BidDepthUSD, wantBidDepth)
	}
}

func TestAnalyzeBook_OneSided(t *testing.T) {
	// Bid below 0.10 makes the book one-sided; spread pct comes from the ask.
	book := &clob.OrderBook{
		Bids: []clob.Order{mkOrder(0.05, 100)},
		Asks: []clob.Order{mkOrder(0.95, 100)},
	}
	liq := AnalyzeBook(book)
	if liq.TwoSided {
		t.Fatalf("expected one-sided book")
	}
	if math.Abs(liq.SpreadPct-0.05) > 1e-9 {
		t.Fatalf("spread_pct=%v want=0.05", liq.SpreadPct)
	}
}

func TestAnalyzeBook_DepthLimitedToTopLevels(t *testing.T) {
	bids := make([]clob.Order, 0, 8)
	for i := 0; i < 8; i++ {
		bids = append(bids, mkOrder(0.40, 100))
	}
	book := &clob.OrderBook{Bids: bids, Asks: []clob.Order{mkOrder(0.60, 100)}}
	liq := AnalyzeBook(book)
	want := 0.40 * 100 * 5
	if math.Abs(liq.BidDepthUSD-want) > 1e-6 {
		t.Fatalf("bid_depth=%v want=%v (top 5 levels only)", liq.BidDepthUSD, want)
	}
}
