package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"polyscout/internal/apicache"
)

const analysisCacheType = "analysis"

// MarketInput is the market snapshot handed to the AI services. Facts, when
// gathered beforehand, ground the analysis prompt in current data.
type MarketInput struct {
	ConditionID   string
	Question      string
	Description   string
	YesPrice      float64
	NoPrice       float64
	HoursToExpiry float64
	Volume        float64
	Liquidity     float64
	Facts         *MarketFacts
}

// MarketAnalysis is the model's verdict on one market. Probability and
// confidence are percentages, edge is -100..100.
type MarketAnalysis struct {
	ProbabilityYes   float64  `json:"probability_yes"`
	Confidence       float64  `json:"confidence"`
	Recommendation   string   `json:"recommendation"`
	Reasoning        string   `json:"reasoning"`
	RiskFactors      []string `json:"risk_factors"`
	MarketEfficiency string   `json:"market_efficiency"`
	EdgeEstimate     float64  `json:"edge_estimate"`
	FromCache        bool     `json:"-"`
}

// Analyzer asks the model for a probability estimate on one market.
type Analyzer struct {
	Client       *Client
	Cache        *apicache.Cache
	Logger       *zap.Logger
	WebSearchMax int
}

const analyzerSystem = `You are an expert prediction market analyst. Estimate the true probability of market outcomes using available evidence. Reply with a single JSON object and nothing else.`

// Analyze returns the model's view of the market. Failures other than a
// credit block degrade to a neutral result so the scan can continue.
func (a *Analyzer) Analyze(ctx context.Context, in MarketInput) (MarketAnalysis, error) {
	if a == nil || a.Client == nil {
		return neutralAnalysis(in), nil
	}
	cacheID := in.ConditionID + "_" + strconv.Itoa(int(in.HoursToExpiry))
	if a.Cache != nil {
		if raw, ok := a.Cache.Get(analysisCacheType, cacheID); ok {
			var cached MarketAnalysis
			if err := json.Unmarshal(raw, &cached); err == nil {
				cached.FromCache = true
				return cached, nil
			}
		}
	}

	prompt := fmt.Sprintf(`Analyze this prediction market:

Question: %s
Description: %s
Current YES price: %.3f (market-implied probability %.1f%%)
Current NO price: %.3f
Hours until resolution: %.1f
Volume: $%.0f
Liquidity: $%.0f
%s
Respond with JSON:
{
  "probability_yes": <0-100>,
  "confidence": <0-100>,
  "recommendation": "BUY_YES" | "BUY_NO" | "SKIP",
  "reasoning": "<short explanation>",
  "risk_factors": ["<risk>", ...],
  "market_efficiency": "<efficient|mispriced|uncertain>",
  "edge_estimate": <-100 to 100, your probability minus the market's, in percentage points>
}`,
		in.Question, in.Description, in.YesPrice, in.YesPrice*100, in.NoPrice,
		in.HoursToExpiry, in.Volume, in.Liquidity, factsSection(in.Facts))

	reply, err := a.Client.Complete(ctx, analyzerSystem, prompt, a.WebSearchMax)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			return neutralAnalysis(in), err
		}
		if a.Logger != nil {
			a.Logger.Warn("market analysis failed", zap.String("condition_id", in.ConditionID), zap.Error(err))
		}
		return neutralAnalysis(in), nil
	}

	raw, err := ExtractJSON(reply)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Warn("market analysis reply unparseable", zap.String("condition_id", in.ConditionID), zap.Error(err))
		}
		return neutralAnalysis(in), nil
	}
	var out MarketAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return neutralAnalysis(in), nil
	}
	out.ProbabilityYes = clamp(out.ProbabilityYes, 0, 100)
	out.Confidence = clamp(out.Confidence, 0, 100)
	out.EdgeEstimate = clamp(out.EdgeEstimate, -100, 100)
	switch out.Recommendation {
	case "BUY_YES", "BUY_NO", "SKIP":
	default:
		out.Recommendation = "SKIP"
	}

	if a.Cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			a.Cache.Set(analysisCacheType, cacheID, raw)
		}
	}
	return out, nil
}

// factsSection renders gathered facts for the analysis prompt, or an empty
// line when none were gathered.
func factsSection(facts *MarketFacts) string {
	if facts == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nGathered facts")
	if facts.DataQuality != "" {
		fmt.Fprintf(&b, " (data quality %s)", facts.DataQuality)
	}
	b.WriteString(":\n")
	if facts.CurrentStatus != "" {
		fmt.Fprintf(&b, "Current status: %s\n", facts.CurrentStatus)
	}
	if facts.ProgressIndicator != "" {
		fmt.Fprintf(&b, "Progress: %s\n", facts.ProgressIndicator)
	}
	for _, f := range facts.KeyFacts {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", f.Fact, f.Value, f.Source)
	}
	return b.String()
}

func neutralAnalysis(in MarketInput) MarketAnalysis {
	return MarketAnalysis{
		ProbabilityYes:   clamp(in.YesPrice*100, 0, 100),
		Confidence:       0,
		Recommendation:   "SKIP",
		Reasoning:        "analysis unavailable",
		MarketEfficiency: "uncertain",
	}
}
