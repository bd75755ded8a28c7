package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"polyscout/internal/apicache"
)

const researchCacheType = "deep_research"

// DeepResearchResult is the structured output of a web-search-backed
// investigation into one market.
type DeepResearchResult struct {
	EventOccurred       bool     `json:"event_occurred"`
	OccurredConfidence  float64  `json:"occurred_confidence"`
	ProbabilityEstimate float64  `json:"probability_estimate"`
	ResearchQuality     string   `json:"research_quality"`
	SourcesFound        int      `json:"sources_found"`
	KeyFacts            []string `json:"key_facts"`
	RecentNews          []string `json:"recent_news"`
	ExpertOpinions      []string `json:"expert_opinions"`
	ContraryEvidence    []string `json:"contrary_evidence"`
	RelevantDates       []string `json:"relevant_dates"`
	DeadlineAnalysis    string   `json:"deadline_analysis"`
	Sentiment           string   `json:"sentiment"`
	SentimentScore      float64  `json:"sentiment_score"`
	ResolutionRisk      string   `json:"resolution_risk"`
	InformationGaps     []string `json:"information_gaps"`
	ExecutiveSummary    string   `json:"executive_summary"`
	Rationale           string   `json:"rationale"`
	Queries             []string `json:"queries"`
	FromCache           bool     `json:"-"`
}

// Researcher runs deep research on the markets that survive triage.
type Researcher struct {
	Client       *Client
	Cache        *apicache.Cache
	Logger       *zap.Logger
	WebSearchMax int

	// Now is overridable in tests; it feeds the hourly cache key.
	Now func() time.Time
}

const researcherSystem = `You are a thorough research analyst for prediction markets. Search the web for current evidence, weigh sources by reliability, and report structured findings. Reply with a single JSON object and nothing else.`

// Research investigates one market. Results are cached per hour so repeated
// scans within the hour reuse the same findings.
func (r *Researcher) Research(ctx context.Context, in MarketInput) (DeepResearchResult, error) {
	if r == nil || r.Client == nil {
		return DeepResearchResult{ResearchQuality: "LOW"}, nil
	}
	now := time.Now().UTC()
	if r.Now != nil {
		now = r.Now()
	}
	cacheID := in.ConditionID + "_" + now.Format("2006010215")
	if r.Cache != nil {
		if raw, ok := r.Cache.Get(researchCacheType, cacheID); ok {
			var cached DeepResearchResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				cached.FromCache = true
				return cached, nil
			}
		}
	}

	prompt := fmt.Sprintf(`Research this prediction market in depth:

Question: %s
Description: %s
Market-implied probability: %.1f%%
Hours until resolution: %.1f

Search for the latest evidence. Has the underlying event already occurred?
What do primary sources, recent news and expert commentary say?

Respond with JSON:
{
  "event_occurred": <true|false>,
  "occurred_confidence": <0-100>,
  "probability_estimate": <0-100>,
  "research_quality": "LOW" | "MEDIUM" | "HIGH",
  "sources_found": <int>,
  "key_facts": ["..."],
  "recent_news": ["..."],
  "expert_opinions": ["..."],
  "contrary_evidence": ["..."],
  "relevant_dates": ["..."],
  "deadline_analysis": "...",
  "sentiment": "positive" | "negative" | "neutral",
  "sentiment_score": <-1 to 1>,
  "resolution_risk": "...",
  "information_gaps": ["..."],
  "executive_summary": "...",
  "rationale": "...",
  "queries": ["..."]
}`,
		in.Question, in.Description, in.YesPrice*100, in.HoursToExpiry)

	reply, err := r.Client.Complete(ctx, researcherSystem, prompt, r.WebSearchMax)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			return DeepResearchResult{ResearchQuality: "LOW"}, err
		}
		if r.Logger != nil {
			r.Logger.Warn("deep research failed", zap.String("condition_id", in.ConditionID), zap.Error(err))
		}
		return DeepResearchResult{ResearchQuality: "LOW"}, nil
	}
	raw, err := ExtractJSON(reply)
	if err != nil {
		return DeepResearchResult{ResearchQuality: "LOW"}, nil
	}
	var out DeepResearchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return DeepResearchResult{ResearchQuality: "LOW"}, nil
	}
	out.ProbabilityEstimate = clamp(out.ProbabilityEstimate, 0, 100)
	out.OccurredConfidence = clamp(out.OccurredConfidence, 0, 100)
	out.SentimentScore = clamp(out.SentimentScore, -1, 1)
	switch out.ResearchQuality {
	case "LOW", "MEDIUM", "HIGH":
	default:
		out.ResearchQuality = "LOW"
	}

	if r.Cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			r.Cache.Set(researchCacheType, cacheID, raw)
		}
	}
	return out, nil
}
