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

const factsCacheType = "facts"

type KeyFact struct {
	Fact   string `json:"fact"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// MarketFacts is a verifiable-facts snapshot gathered before analysis, used
// to ground the analyzer's prompt in current data.
type MarketFacts struct {
	KeyFacts          []KeyFact `json:"key_facts"`
	CurrentStatus     string    `json:"current_status"`
	ProgressIndicator string    `json:"progress_indicator"`
	DataQuality       string    `json:"data_quality"`
	GatheredAt        time.Time `json:"gathered_at"`
	FromCache         bool      `json:"-"`
}

// FactsGatherer collects hard facts for a market question. Facts are cached
// by question text: the same question re-asked in another scan reuses them.
type FactsGatherer struct {
	Client       *Client
	Cache        *apicache.Cache
	Logger       *zap.Logger
	WebSearchMax int
}

const factsSystem = `You are a fact-gathering assistant for prediction markets. Collect only verifiable, sourced facts relevant to the question. Reply with a single JSON object and nothing else.`

func (g *FactsGatherer) Gather(ctx context.Context, question string) (MarketFacts, error) {
	if g == nil || g.Client == nil {
		return MarketFacts{DataQuality: "LOW"}, nil
	}
	if g.Cache != nil {
		if raw, ok := g.Cache.Get(factsCacheType, question); ok {
			var cached MarketFacts
			if err := json.Unmarshal(raw, &cached); err == nil {
				cached.FromCache = true
				return cached, nil
			}
		}
	}

	prompt := fmt.Sprintf(`Gather current, verifiable facts for this prediction market question:

%s

Respond with JSON:
{
  "key_facts": [{"fact": "...", "value": "...", "source": "..."}],
  "current_status": "...",
  "progress_indicator": "...",
  "data_quality": "LOW" | "MEDIUM" | "HIGH"
}`, question)

	reply, err := g.Client.Complete(ctx, factsSystem, prompt, g.WebSearchMax)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			return MarketFacts{DataQuality: "LOW"}, err
		}
		if g.Logger != nil {
			g.Logger.Warn("facts gathering failed", zap.Error(err))
		}
		return MarketFacts{DataQuality: "LOW"}, nil
	}
	raw, err := ExtractJSON(reply)
	if err != nil {
		return MarketFacts{DataQuality: "LOW"}, nil
	}
	var out MarketFacts
	if err := json.Unmarshal(raw, &out); err != nil {
		return MarketFacts{DataQuality: "LOW"}, nil
	}
	switch out.DataQuality {
	case "LOW", "MEDIUM", "HIGH":
	default:
		out.DataQuality = "LOW"
	}
	out.GatheredAt = time.Now().UTC()

	if g.Cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			g.Cache.Set(factsCacheType, question, raw)
		}
	}
	return out, nil
}
