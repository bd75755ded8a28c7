package scanner

import (
	"math"
	"testing"
)

func TestChooseSide_FavorsNoUnderHalf(t *testing.T) {
	side, entry := chooseSide(0.30, 0.70)
	if side != SideNo {
		t.Fatalf("side=%s want=%s", side, SideNo)
	}
	if entry != 0.70 {
		t.Fatalf("entry=%v want=0.70", entry)
	}
}

func TestChooseSide_FavorsYesAtOrAboveHalf(t *testing.T) {
	side, entry := chooseSide(0.50, 0.50)
	if side != SideYes {
		t.Fatalf("side=%s want=%s", side, SideYes)
	}
	if entry != 0.50 {
		t.Fatalf("entry=%v want=0.50", entry)
	}

	side, entry = chooseSide(0.85, 0.15)
	if side != SideYes || entry != 0.85 {
		t.Fatalf("side=%s entry=%v want=%s 0.85", side, entry, SideYes)
	}
}

func TestExpectedProfitPct(t *testing.T) {
	got := expectedProfitPct(0.80, 0.01)
	want := (1.0 - 0.80 - 0.01) / 0.80
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("profit=%v want=%v", got, want)
	}
	if expectedProfitPct(0, 0.01) != 0 {
		t.Fatalf("zero entry should yield zero profit")
	}
}

func TestInUncertainRange(t *testing.T) {
	p := ProfileByName("moderate")
	if !inUncertainRange(p, 0.50) {
		t.Fatalf("0.50 should be uncertain for moderate")
	}
	if inUncertainRange(p, 0.60) {
		t.Fatalf("0.60 should not be uncertain for moderate")
	}
	agg := ProfileByName("aggressive")
	if inUncertainRange(agg, 0.50) {
		t.Fatalf("aggressive has no uncertain band")
	}
}

func TestPreliminaryScore_UnusablePrice(t *testing.T) {
	if got := preliminaryScore(0, 1000, 1000, 0.01, 0.1, 12); got != 0.1 {
		t.Fatalf("score=%v want=0.1", got)
	}
	if got := preliminaryScore(1.0, 1000, 1000, 0.01, 0.1, 12); got != 0.1 {
		t.Fatalf("score=%v want=0.1", got)
	}
}

func TestPreliminaryScore_DecisivenessBonusCapped(t *testing.T) {
	// 0.95 already has decisiveness 0.9; the extreme-price bonus must cap at 1.
	extreme := preliminaryScore(0.95, 0, 0, 1.0, 0, 100)
	nearExtreme := preliminaryScore(0.99, 0, 0, 1.0, 0, 100)
	if math.Abs(extreme-nearExtreme) > 1e-12 {
		t.Fatalf("capped decisiveness should equalize extremes: %v vs %v", extreme, nearExtreme)
	}
}

func TestPreliminaryScore_PrefersNearTermLiquidMarkets(t *testing.T) {
	good := preliminaryScore(0.85, 50000, 100000, 0.01, 0.15, 12)
	bad := preliminaryScore(0.55, 100, 100, 0.30, 0.01, 0.5)
	if good <= bad {
		t.Fatalf("good market should outrank bad: %v <= %v", good, bad)
	}
}
