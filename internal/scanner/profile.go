package scanner

import "strings"

// PriceRange is a closed interval of YES prices considered too uncertain to
// trade for a given profile.
type PriceRange struct {
	Low  float64
	High float64
}

// Profile bundles the filter thresholds and risk weights for one risk
// appetite. Weights for the AI path sum to 1 across ten factors; the no-AI
// path redistributes over six.
type Profile struct {
	Name           string
	MinLiquidity   float64
	MaxSpreadPct   float64
	MinProfitPct   float64
	MinConfidence  float64
	UncertainRange *PriceRange
	SkipOnAISkip   bool
	FilterOccurred bool

	Weights     Weights
	NoAIWeights NoAIWeights
}

// Weights for scoring with AI analysis available.
type Weights struct {
	Time         float64
	Liquidity    float64
	Price        float64
	News         float64
	Volume       float64
	Spread       float64
	AIConfidence float64
	AIEdge       float64
	Trend        float64
	Correlation  float64
}

// NoAIWeights for scoring from market data alone. News sentiment stays in
// this table; without analysis it sits at the neutral 0.5.
type NoAIWeights struct {
	Time      float64
	Liquidity float64
	Price     float64
	News      float64
	Volume    float64
	Spread    float64
}

var profiles = map[string]Profile{
	"conservative": {
		Name:           "conservative",
		MinLiquidity:   1000,
		MaxSpreadPct:   0.05,
		MinProfitPct:   0.03,
		MinConfidence:  0.60,
		UncertainRange: &PriceRange{Low: 0.40, High: 0.60},
		SkipOnAISkip:   true,
		FilterOccurred: true,
		Weights: Weights{
			Time: 0.15, Liquidity: 0.10, Price: 0.10, News: 0.05, Volume: 0.05,
			Spread: 0.05, AIConfidence: 0.25, AIEdge: 0.15, Trend: 0.05, Correlation: 0.05,
		},
		NoAIWeights: NoAIWeights{
			Time: 0.25, Liquidity: 0.20, Price: 0.25, News: 0.15, Volume: 0.10, Spread: 0.05,
		},
	},
	"moderate": {
		Name:           "moderate",
		MinLiquidity:   500,
		MaxSpreadPct:   0.10,
		MinProfitPct:   0.02,
		MinConfidence:  0.40,
		UncertainRange: &PriceRange{Low: 0.45, High: 0.55},
		SkipOnAISkip:   false,
		FilterOccurred: true,
		Weights: Weights{
			Time: 0.10, Liquidity: 0.10, Price: 0.15, News: 0.05, Volume: 0.05,
			Spread: 0.05, AIConfidence: 0.20, AIEdge: 0.15, Trend: 0.10, Correlation: 0.05,
		},
		NoAIWeights: NoAIWeights{
			Time: 0.15, Liquidity: 0.15, Price: 0.30, News: 0.20, Volume: 0.10, Spread: 0.10,
		},
	},
	"aggressive": {
		Name:           "aggressive",
		MinLiquidity:   200,
		MaxSpreadPct:   0.15,
		MinProfitPct:   0.01,
		MinConfidence:  0.30,
		UncertainRange: nil,
		SkipOnAISkip:   false,
		FilterOccurred: false,
		Weights: Weights{
			Time: 0.05, Liquidity: 0.05, Price: 0.15, News: 0.05, Volume: 0.05,
			Spread: 0.05, AIConfidence: 0.25, AIEdge: 0.20, Trend: 0.10, Correlation: 0.05,
		},
		NoAIWeights: NoAIWeights{
			Time: 0.10, Liquidity: 0.10, Price: 0.35, News: 0.25, Volume: 0.10, Spread: 0.10,
		},
	},
	"speculative": {
		Name:           "speculative",
		MinLiquidity:   100,
		MaxSpreadPct:   0.25,
		MinProfitPct:   0.005,
		MinConfidence:  0.20,
		UncertainRange: nil,
		SkipOnAISkip:   false,
		FilterOccurred: false,
		Weights: Weights{
			Time: 0.05, Liquidity: 0.05, Price: 0.20, News: 0.05, Volume: 0.05,
			Spread: 0.05, AIConfidence: 0.20, AIEdge: 0.25, Trend: 0.05, Correlation: 0.05,
		},
		NoAIWeights: NoAIWeights{
			Time: 0.10, Liquidity: 0.05, Price: 0.40, News: 0.20, Volume: 0.10, Spread: 0.15,
		},
	},
}

// ProfileByName resolves a profile, falling back to moderate for unknown
// names.
func ProfileByName(name string) Profile {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return profiles["moderate"]
}

// ProfileNames lists the known profiles.
func ProfileNames() []string {
	return []string{"conservative", "moderate", "aggressive", "speculative"}
}
