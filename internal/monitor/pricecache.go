package monitor

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"polyscout/internal/client/polymarket/clob"
)

// PriceCache holds the latest top-of-book per token, fed by the market
// websocket stream. Entries older than TTL are ignored so a stalled stream
// falls back to REST.
type PriceCache struct {
	mu    sync.RWMutex
	books map[string]cachedQuote
	ttl   time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

type cachedQuote struct {
	bid float64
	ask float64
	at  time.Time
}

func NewPriceCache(ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &PriceCache{
		books: make(map[string]cachedQuote),
		ttl:   ttl,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Update stores a fresh quote for the token.
func (p *PriceCache) Update(tokenID string, bid, ask float64) {
	if p == nil || tokenID == "" {
		return
	}
	p.mu.Lock()
	p.books[tokenID] = cachedQuote{bid: bid, ask: ask, at: p.Now()}
	p.mu.Unlock()
}

// Get returns the cached quote if fresh.
func (p *PriceCache) Get(tokenID string) (bid, ask float64, ok bool) {
	if p == nil {
		return 0, 0, false
	}
	p.mu.RLock()
	q, found := p.books[tokenID]
	p.mu.RUnlock()
	if !found || p.Now().Sub(q.at) > p.ttl {
		return 0, 0, false
	}
	return q.bid, q.ask, true
}

// HandleMessage feeds the cache from stream book events; other event types
// are ignored.
func (p *PriceCache) HandleMessage(env clob.MarketEnvelope, raw []byte) {
	if p == nil || env.EventType != "book" || env.AssetID == "" {
		return
	}
	var book struct {
		Bids []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	}
	if err := json.Unmarshal(raw, &book); err != nil {
		return
	}
	var bestBid, bestAsk float64
	bestAsk = 1.0
	for _, b := range book.Bids {
		if v, err := strconv.ParseFloat(b.Price, 64); err == nil && v > bestBid {
			bestBid = v
		}
	}
	for _, a := range book.Asks {
		if v, err := strconv.ParseFloat(a.Price, 64); err == nil && v < bestAsk {
			bestAsk = v
		}
	}
	p.Update(env.AssetID, bestBid, bestAsk)
}
