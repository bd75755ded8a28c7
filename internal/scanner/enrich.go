package scanner

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"polyscout/internal/client/polymarket/dataapi"
	"polyscout/internal/client/polymarket/gamma"
)

// Trend labels for recent price direction.
const (
	TrendUp     = "UP"
	TrendDown   = "DOWN"
	TrendStable = "STABLE"
)

const (
	trendDelta       = 0.05
	historyLookback  = 24 * time.Hour
	historyLimit     = 200
	relatedLimit     = 20
	relatedKeep      = 5
	relatedMinSim    = 0.2
	relatedTermCount = 4
)

// Enricher adds price-trend, volatility and related-market context to
// pre-filtered opportunities.
type Enricher struct {
	DataAPI *dataapi.Client
	Gamma   *gamma.Client
	Logger  *zap.Logger

	// Now is overridable in tests.
	Now func() time.Time
}

// Enrich fills the trend, volatility and related-market fields in place.
// Fetch failures leave neutral values; enrichment never fails a scan.
func (e *Enricher) Enrich(ctx context.Context, opp *Opportunity) {
	if e == nil || opp == nil {
		return
	}
	opp.Trend = TrendStable
	opp.NewsScore = 0.5

	prices := e.priceHistory(ctx, opp.ConditionID)
	opp.Trend = classifyTrend(prices)
	opp.Volatility = computeVolatility(prices)

	related := e.relatedMarkets(ctx, opp.ConditionID, opp.Question)
	opp.RelatedMarkets = related
	opp.CorrelationRisk = correlationRisk(related)
}

func (e *Enricher) priceHistory(ctx context.Context, conditionID string) []float64 {
	if e.DataAPI == nil {
		return nil
	}
	items, err := e.DataAPI.MarketActivity(ctx, conditionID, historyLimit)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Debug("price history fetch failed", zap.String("condition_id", conditionID), zap.Error(err))
		}
		return nil
	}
	now := time.Now().UTC()
	if e.Now != nil {
		now = e.Now()
	}
	cutoff := now.Add(-historyLookback)

	type point struct {
		ts    time.Time
		price float64
	}
	points := make([]point, 0, len(items))
	for _, item := range items {
		if !strings.EqualFold(item.Type, "TRADE") {
			continue
		}
		ts := item.Time()
		if ts.Before(cutoff) {
			continue
		}
		price := float64(item.Price)
		if price <= 0 || price >= 1 {
			continue
		}
		points = append(points, point{ts: ts, price: price})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ts.Before(points[j].ts) })

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.price
	}
	return prices
}

func (e *Enricher) relatedMarkets(ctx context.Context, conditionID, question string) []RelatedMarket {
	if e.Gamma == nil {
		return nil
	}
	terms := keyTerms(question, relatedTermCount)
	if len(terms) == 0 {
		return nil
	}
	markets, err := e.Gamma.SearchMarkets(ctx, strings.Join(terms, " "), relatedLimit)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Debug("related market search failed", zap.Error(err))
		}
		return nil
	}

	related := make([]RelatedMarket, 0, len(markets))
	for _, m := range markets {
		if m.ConditionID == "" || m.ConditionID == conditionID {
			continue
		}
		sim := questionSimilarity(question, m.Question)
		if sim <= relatedMinSim {
			continue
		}
		related = append(related, RelatedMarket{
			ConditionID: m.ConditionID,
			Question:    m.Question,
			Similarity:  sim,
		})
	}
	sort.SliceStable(related, func(i, j int) bool { return related[i].Similarity > related[j].Similarity })
	if len(related) > relatedKeep {
		related = related[:relatedKeep]
	}
	return related
}

// classifyTrend compares the mean of the first quarter of the history with
// the mean of the last quarter.
func classifyTrend(prices []float64) string {
	if len(prices) < 2 {
		return TrendStable
	}
	quarter := len(prices) / 4
	if quarter < 1 {
		quarter = 1
	}
	early := mean(prices[:quarter])
	late := mean(prices[len(prices)-quarter:])
	switch {
	case late-early > trendDelta:
		return TrendUp
	case early-late > trendDelta:
		return TrendDown
	default:
		return TrendStable
	}
}

// computeVolatility blends the average step size with the total swing.
func computeVolatility(prices []float64) float64 {
	if len(prices) < 3 {
		return 0
	}
	var totalDelta float64
	lo, hi := prices[0], prices[0]
	for i := 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d < 0 {
			d = -d
		}
		totalDelta += d
		if prices[i] < lo {
			lo = prices[i]
		}
		if prices[i] > hi {
			hi = prices[i]
		}
	}
	avgDelta := totalDelta / float64(len(prices)-1)
	swing := hi - lo
	return (min64(1.0, avgDelta/0.10) + min64(1.0, swing/0.40)) / 2
}

// correlationRisk grows with the number and closeness of related markets.
func correlationRisk(related []RelatedMarket) float64 {
	if len(related) == 0 {
		return 0
	}
	var totalSim float64
	for _, r := range related {
		totalSim += r.Similarity
	}
	avgSim := totalSim / float64(len(related))
	countScore := min64(1.0, float64(len(related))/5.0)
	return (countScore + avgSim) / 2
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "will": {}, "with": {}, "that": {},
	"this": {}, "from": {}, "have": {}, "has": {}, "are": {}, "was": {},
	"were": {}, "been": {}, "more": {}, "than": {}, "before": {}, "after": {},
	"into": {}, "over": {}, "under": {}, "about": {}, "what": {}, "when": {},
	"who": {}, "how": {}, "any": {}, "all": {}, "not": {}, "its": {},
}

func questionWords(q string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(q)) {
		w = strings.Trim(w, ".,?!:;\"'()[]")
		if len(w) < 3 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// questionSimilarity is the Jaccard index over stopword-filtered words of at
// least three letters.
func questionSimilarity(a, b string) float64 {
	wa := questionWords(a)
	wb := questionWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// keyTerms picks the n longest distinct words as search terms.
func keyTerms(question string, n int) []string {
	words := make([]string, 0)
	for w := range questionWords(question) {
		words = append(words, w)
	}
	sort.SliceStable(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
