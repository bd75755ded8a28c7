package scanner

import (
	"polyscout/internal/client/polymarket/clob"
)

const (
	depthLevels = 5

	// A book is two-sided when the bid is at least 0.10 and the ask at most
	// 0.90; outside that the quoted spread is meaningless.
	twoSidedMinBid = 0.10
	twoSidedMaxAsk = 0.90
)

// AnalyzeBook reduces an order book to the liquidity summary the filters
// score against. A nil book (fetch failure) reports zero depth and a full
// spread so the market is filtered rather than mispriced.
func AnalyzeBook(book *clob.OrderBook) Liquidity {
	if book == nil {
		return Liquidity{BestAsk: 1.0, Spread: 1.0, SpreadPct: 1.0}
	}

	bidDepth, _ := book.BidDepthUSD(depthLevels).Float64()
	askDepth, _ := book.AskDepthUSD(depthLevels).Float64()
	bestBid, _ := book.BestBid().Float64()
	bestAsk, _ := book.BestAsk().Float64()

	out := Liquidity{
		BidDepthUSD: bidDepth,
		AskDepthUSD: askDepth,
		TotalUSD:    bidDepth + askDepth,
		BestBid:     bestBid,
		BestAsk:     bestAsk,
	}

	out.TwoSided = bestBid >= twoSidedMinBid && bestAsk <= twoSidedMaxAsk
	if out.TwoSided {
		out.Spread = bestAsk - bestBid
		midpoint := (bestAsk + bestBid) / 2
		if midpoint > 0 {
			out.SpreadPct = out.Spread / midpoint
		}
	} else {
		out.Spread = bestAsk - bestBid
		pct := 1.0 - bestAsk
		if pct < 0 {
			pct = 0
		}
		out.SpreadPct = pct
	}
	return out
}
