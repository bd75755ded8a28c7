package scanner

import (
	"math"
	"testing"
)

func TestProfileByName_FallbackToModerate(t *testing.T) {
	if got := ProfileByName("nonsense"); got.Name != "moderate" {
		t.Fatalf("profile=%s want=moderate", got.Name)
	}
	if got := ProfileByName(" Aggressive "); got.Name != "aggressive" {
		t.Fatalf("profile=%s want=aggressive (case and space insensitive)", got.Name)
	}
}

func TestProfiles_ThresholdsLoosenWithAppetite(t *testing.T) {
	names := ProfileNames()
	for i := 1; i < len(names); i++ {
		prev := ProfileByName(names[i-1])
		cur := ProfileByName(names[i])
		if cur.MinLiquidity >= prev.MinLiquidity {
			t.Fatalf("%s liquidity floor %v should be below %s %v",
				cur.Name, cur.MinLiquidity, prev.Name, prev.MinLiquidity)
		}
		if cur.MaxSpreadPct <= prev.MaxSpreadPct {
			t.Fatalf("%s spread cap %v should be above %s %v",
				cur.Name, cur.MaxSpreadPct, prev.Name, prev.MaxSpreadPct)
		}
		if cur.MinProfitPct >= prev.MinProfitPct {
			t.Fatalf("%s profit floor %v should be below %s %v",
				cur.Name, cur.MinProfitPct, prev.Name, prev.MinProfitPct)
		}
		if cur.MinConfidence >= prev.MinConfidence {
			t.Fatalf("%s confidence floor %v should be below %s %v",
				cur.Name, cur.MinConfidence, prev.Name, prev.MinConfidence)
		}
	}
}

func TestProfiles_WeightsSumToOne(t *testing.T) {
	for _, name := range ProfileNames() {
		p := ProfileByName(name)
		w := p.Weights
		sum := w.Time + w.Liquidity + w.Price + w.News + w.Volume +
			w.Spread + w.AIConfidence + w.AIEdge + w.Trend + w.Correlation
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("%s AI weights sum=%v want=1", name, sum)
		}
		nw := p.NoAIWeights
		nsum := nw.Time + nw.Liquidity + nw.Price + nw.News + nw.Volume + nw.Spread
		if math.Abs(nsum-1.0) > 1e-9 {
			t.Fatalf("%s no-AI weights sum=%v want=1", name, nsum)
		}
	}
}

func TestProfiles_OnlyConservativeSkipsOnAISkip(t *testing.T) {
	for _, name := range ProfileNames() {
		p := ProfileByName(name)
		wantSkip := name == "conservative"
		if p.SkipOnAISkip != wantSkip {
			t.Fatalf("%s SkipOnAISkip=%v want=%v", name, p.SkipOnAISkip, wantSkip)
		}
	}
}
