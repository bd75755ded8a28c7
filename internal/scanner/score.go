package scanner

import (
	"sort"

	"polyscout/internal/ai"
)

// scoreRisk fills RiskScore and Confidence. With analysis present the ten
// AI-path weights apply; otherwise the six market-data weights.
func scoreRisk(p Profile, opp *Opportunity) {
	if opp == nil {
		return
	}

	timeFactor := min64(1.0, opp.HoursToExpiry/24.0)
	liqFactor := min64(1.0, opp.Liquidity.TotalUSD/10000)
	priceFactor := clamp01(opp.EntryPrice)
	volFactor := min64(1.0, opp.Volume/100000)
	spreadFactor := 1.0 - opp.Liquidity.SpreadPct*10
	if spreadFactor < 0 {
		spreadFactor = 0
	}
	trendFactor := trendAlignment(opp.Trend, opp.Side)

	var weighted float64
	if opp.Analysis != nil {
		w := p.Weights
		edgeFactor := min64(1.0, abs64(opp.AIEdge())/0.20)
		corrFactor := 1.0 - opp.CorrelationRisk
		weighted = w.Time*timeFactor +
			w.Liquidity*liqFactor +
			w.Price*priceFactor +
			w.News*opp.NewsScore +
			w.Volume*volFactor +
			w.Spread*spreadFactor +
			w.AIConfidence*opp.AIConfidence() +
			w.AIEdge*edgeFactor +
			w.Trend*trendFactor +
			w.Correlation*corrFactor
	} else {
		w := p.NoAIWeights
		weighted = w.Time*timeFactor +
			w.Liquidity*liqFactor +
			w.Price*priceFactor +
			w.News*opp.NewsScore +
			w.Volume*volFactor +
			w.Spread*spreadFactor
	}

	opp.RiskScore = clamp01(1.0 - weighted)
	opp.Confidence = 1.0 - opp.RiskScore
}

// trendAlignment rewards a trend moving toward the chosen side.
func trendAlignment(trend, side string) float64 {
	switch {
	case (trend == TrendUp && side == SideYes) || (trend == TrendDown && side == SideNo):
		return 1.0
	case trend == TrendStable:
		return 0.7
	default:
		return 0.5
	}
}

// applyResearch adjusts risk from deep research findings. Only MEDIUM and
// HIGH quality research moves the score.
func applyResearch(opp *Opportunity) {
	if opp == nil || opp.Research == nil {
		return
	}
	if opp.Research.EventOccurred {
		opp.EventStatus = ai.EventStatusOccurred
	}
	q := opp.Research.ResearchQuality
	if q != "MEDIUM" && q != "HIGH" {
		return
	}

	skip := opp.Analysis != nil && opp.Analysis.Recommendation == "SKIP"
	if opp.Research.EventOccurred || skip {
		opp.RiskScore = min64(1.0, opp.RiskScore+0.2)
	} else if opp.Analysis != nil &&
		(opp.Analysis.Recommendation == "BUY_YES" || opp.Analysis.Recommendation == "BUY_NO") &&
		opp.AIConfidence() > 0.7 {
		opp.RiskScore = opp.RiskScore - 0.1
		if opp.RiskScore < 0 {
			opp.RiskScore = 0
		}
	}
	opp.Confidence = 1.0 - opp.RiskScore
}

// applyCorrelationPenalty bumps risk once on the later-ranked member of each
// related pair, so a basket of lookalike trades does not dominate the output.
func applyCorrelationPenalty(opps []*Opportunity) {
	penalized := make(map[string]bool)
	for i := 0; i < len(opps); i++ {
		relatedIDs := make(map[string]bool, len(opps[i].RelatedMarkets))
		for _, r := range opps[i].RelatedMarkets {
			relatedIDs[r.ConditionID] = true
		}
		for j := i + 1; j < len(opps); j++ {
			if penalized[opps[j].ConditionID] {
				continue
			}
			if relatedIDs[opps[j].ConditionID] {
				opps[j].CorrelationRisk = min64(1.0, opps[j].CorrelationRisk+0.10)
				opps[j].RiskScore = min64(1.0, opps[j].RiskScore+0.05)
				opps[j].Confidence = 1.0 - opps[j].RiskScore
				penalized[opps[j].ConditionID] = true
			}
		}
	}
}

// sortOpportunities orders by risk ascending, then expected profit
// descending. The sort is stable so equal entries keep their scan order.
func sortOpportunities(opps []*Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].RiskScore != opps[j].RiskScore {
			return opps[i].RiskScore < opps[j].RiskScore
		}
		return opps[i].ExpectedProfitPct > opps[j].ExpectedProfitPct
	})
}

// allocate sizes positions. A fixed amount goes to every opportunity;
// otherwise the portfolio allocation budget is spent greedily down the
// ranked list. The per-position cap and the total budget both derive from
// portfolioUSD: with a single CLI-supplied bankroll there is no separate
// cash balance to cap against.
func allocate(opps []*Opportunity, portfolioUSD, fixedAmountUSD, maxPositionPct, totalAllocationPct float64) {
	if fixedAmountUSD > 0 {
		for _, opp := range opps {
			opp.PositionSizeUSD = fixedAmountUSD
			opp.ExpectedProfitUSD = fixedAmountUSD * opp.ExpectedProfitPct
		}
		return
	}
	remaining := portfolioUSD * totalAllocationPct
	for _, opp := range opps {
		size := min64(portfolioUSD*maxPositionPct, remaining)
		if size <= 0 {
			opp.PositionSizeUSD = 0
			opp.ExpectedProfitUSD = 0
			continue
		}
		opp.PositionSizeUSD = size
		opp.ExpectedProfitUSD = size * opp.ExpectedProfitPct
		remaining -= size
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
