package scanner

// chooseSide picks the outcome token closer to certainty: a YES price under
// 0.50 means the NO side is the favorite and is the one bought.
func chooseSide(yesPrice, noPrice float64) (string, float64) {
	if yesPrice < 0.50 {
		return SideNo, noPrice
	}
	return SideYes, yesPrice
}

// expectedProfitPct is the return on entry assuming the favorite resolves at
// 1.0, net of the slippage buffer.
func expectedProfitPct(entryPrice, slippage float64) float64 {
	if entryPrice <= 0 {
		return 0
	}
	return (1.0 - entryPrice - slippage) / entryPrice
}

// inUncertainRange reports whether the YES price falls in the profile's
// too-close-to-call band.
func inUncertainRange(p Profile, yesPrice float64) bool {
	if p.UncertainRange == nil {
		return false
	}
	return yesPrice >= p.UncertainRange.Low && yesPrice <= p.UncertainRange.High
}

// preliminaryScore ranks pre-filtered markets so the AI budget goes to the
// most promising ones first. Returns 0.1 when inputs are unusable.
func preliminaryScore(yesPrice, liquidityUSD, volume, spread, profitPct, hoursToExpiry float64) float64 {
	if yesPrice <= 0 || yesPrice >= 1 {
		return 0.1
	}

	decisiveness := 1.0 - 2.0*min64(yesPrice, 1.0-yesPrice)
	if yesPrice > 0.90 || yesPrice < 0.10 {
		decisiveness += 0.2
	}
	if decisiveness > 1 {
		decisiveness = 1
	}

	liqScore := min64(1.0, liquidityUSD/50000)
	volScore := min64(1.0, volume/100000)
	spreadScore := 1.0 - spread*5
	if spreadScore < 0 {
		spreadScore = 0
	}
	profitScore := min64(1.0, profitPct/0.50)

	var timeScore float64
	switch {
	case hoursToExpiry < 1:
		timeScore = 0.3
	case hoursToExpiry < 4:
		timeScore = 0.6
	case hoursToExpiry <= 24:
		timeScore = 1.0
	case hoursToExpiry <= 48:
		timeScore = 0.8
	default:
		timeScore = 0.5
	}

	return 0.30*decisiveness + 0.25*liqScore + 0.15*volScore +
		0.10*spreadScore + 0.10*profitScore + 0.10*timeScore
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
