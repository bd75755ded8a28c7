package clob

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BestBid returns the highest bid price, or zero for an empty side.
func (b *OrderBook) BestBid() decimal.Decimal {
	if b == nil || len(b.Bids) == 0 {
		return decimal.Zero
	}
	best := b.Bids[0].Price
	for _, o := range b.Bids[1:] {
		if o.Price.GreaterThan(best) {
			best = o.Price
		}
	}
	return best
}

// BestAsk returns the lowest ask price, or one for an empty side. A missing
// ask side means the token cannot be bought below certainty.
func (b *OrderBook) BestAsk() decimal.Decimal {
	if b == nil || len(b.Asks) == 0 {
		return decimal.NewFromInt(1)
	}
	best := b.Asks[0].Price
	for _, o := range b.Asks[1:] {
		if o.Price.LessThan(best) {
			best = o.Price
		}
	}
	return best
}

// Midpoint is (bid+ask)/2 when a bid exists, otherwise the ask alone.
func (b *OrderBook) Midpoint() decimal.Decimal {
	bid := b.BestBid()
	ask := b.BestAsk()
	if bid.IsPositive() {
		return bid.Add(ask).Div(decimal.NewFromInt(2))
	}
	return ask
}

// Spread is ask-bid when a bid exists; a one-sided book reports the full
// 1.0 spread so callers treat it as untradeable.
func (b *OrderBook) Spread() decimal.Decimal {
	bid := b.BestBid()
	if !bid.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return b.BestAsk().Sub(bid)
}

// BidDepthUSD sums price*size across the top-n bid levels by price.
func (b *OrderBook) BidDepthUSD(n int) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return depthUSD(b.Bids, n, true)
}

// AskDepthUSD sums price*size across the top-n ask levels by price.
func (b *OrderBook) AskDepthUSD(n int) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return depthUSD(b.Asks, n, false)
}

func depthUSD(levels []Order, n int, desc bool) decimal.Decimal {
	if len(levels) == 0 || n <= 0 {
		return decimal.Zero
	}
	sorted := make([]Order, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool {
		if desc {
			return sorted[i].Price.GreaterThan(sorted[j].Price)
		}
		return sorted[i].Price.LessThan(sorted[j].Price)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	total := decimal.Zero
	for _, o := range sorted[:n] {
		total = total.Add(o.Price.Mul(o.Size))
	}
	return total
}
