package scanner

import (
	"time"

	"polyscout/internal/ai"
)

// Side names which outcome token the opportunity buys.
const (
	SideYes = "YES"
	SideNo  = "NO"
)

// Liquidity summarizes the tradeable depth of one outcome token's book.
type Liquidity struct {
	BidDepthUSD float64 `json:"bid_depth_usd"`
	AskDepthUSD float64 `json:"ask_depth_usd"`
	TotalUSD    float64 `json:"total_usd"`
	BestBid     float64 `json:"best_bid"`
	BestAsk     float64 `json:"best_ask"`
	Spread      float64 `json:"spread"`
	SpreadPct   float64 `json:"spread_pct"`
	TwoSided    bool    `json:"two_sided"`
}

// RelatedMarket is another open market whose question overlaps this one's.
type RelatedMarket struct {
	ConditionID string  `json:"condition_id"`
	Question    string  `json:"question"`
	Similarity  float64 `json:"similarity"`
}

// Opportunity is one candidate trade as it moves through the pipeline.
// Prices and probabilities are fractions unless noted.
type Opportunity struct {
	ConditionID string    `json:"condition_id"`
	Question    string    `json:"question"`
	Slug        string    `json:"slug"`
	EventTitle  string    `json:"event_title"`
	EndDate     time.Time `json:"end_date"`

	HoursToExpiry float64 `json:"hours_to_expiry"`
	YesPrice      float64 `json:"yes_price"`
	NoPrice       float64 `json:"no_price"`
	Volume        float64 `json:"volume"`

	Side       string  `json:"side"`
	TokenID    string  `json:"token_id"`
	EntryPrice float64 `json:"entry_price"`

	ExpectedProfitPct float64   `json:"expected_profit_pct"`
	Liquidity         Liquidity `json:"liquidity"`
	PreliminaryScore  float64   `json:"preliminary_score"`

	Trend           string          `json:"trend"`
	Volatility      float64         `json:"volatility"`
	RelatedMarkets  []RelatedMarket `json:"related_markets,omitempty"`
	CorrelationRisk float64         `json:"correlation_risk"`
	NewsScore       float64         `json:"news_score"`

	Analysis      *ai.MarketAnalysis     `json:"analysis,omitempty"`
	Research      *ai.DeepResearchResult `json:"research,omitempty"`
	Facts         *ai.MarketFacts        `json:"facts,omitempty"`
	EventStatus   string                 `json:"event_status"`
	TriagePassed  bool                   `json:"triage_passed"`
	TriageReasons []string               `json:"triage_reasons,omitempty"`

	RiskScore  float64 `json:"risk_score"`
	Confidence float64 `json:"confidence"`

	PositionSizeUSD   float64 `json:"position_size_usd"`
	ExpectedProfitUSD float64 `json:"expected_profit_usd"`
}

// AIConfidence is the analysis confidence as a fraction, zero without
// analysis.
func (o *Opportunity) AIConfidence() float64 {
	if o == nil || o.Analysis == nil {
		return 0
	}
	return o.Analysis.Confidence / 100
}

// AIEdge is the analysis edge estimate as a fraction.
func (o *Opportunity) AIEdge() float64 {
	if o == nil || o.Analysis == nil {
		return 0
	}
	return o.Analysis.EdgeEstimate / 100
}

// Stats counts what the pipeline did with each candidate market.
type Stats struct {
	Events             int `json:"events"`
	Markets            int `json:"markets"`
	InWindow           int `json:"in_window"`
	VolumeCapped       int `json:"volume_capped"`
	FilteredUncertain  int `json:"filtered_uncertain"`
	FilteredNoToken    int `json:"filtered_no_token"`
	FilteredLiquidity  int `json:"filtered_liquidity"`
	FilteredSpread     int `json:"filtered_spread"`
	FilteredProfit     int `json:"filtered_profit"`
	BookErrors         int `json:"book_errors"`
	Analyzed           int `json:"analyzed"`
	TriageFiltered     int `json:"triage_filtered"`
	DeepResearched     int `json:"deep_researched"`
	FilteredOccurred   int `json:"filtered_occurred"`
	FilteredAISkip     int `json:"filtered_ai_skip"`
	FilteredConfidence int `json:"filtered_confidence"`
	Opportunities      int `json:"opportunities"`
}
