package scanner

import (
	"math"
	"testing"
)

func TestClassifyTrend(t *testing.T) {
	up := []float64{0.40, 0.42, 0.45, 0.48, 0.52, 0.55, 0.58, 0.60}
	if got := classifyTrend(up); got != TrendUp {
		t.Fatalf("trend=%s want=%s", got, TrendUp)
	}
	down := []float64{0.60, 0.58, 0.55, 0.52, 0.48, 0.45, 0.42, 0.40}
	if got := classifyTrend(down); got != TrendDown {
		t.Fatalf("trend=%s want=%s", got, TrendDown)
	}
	flat := []float64{0.50, 0.51, 0.49, 0.50, 0.52, 0.50, 0.49, 0.51}
	if got := classifyTrend(flat); got != TrendStable {
		t.Fatalf("trend=%s want=%s", got, TrendStable)
	}
	if got := classifyTrend([]float64{0.50}); got != TrendStable {
		t.Fatalf("single point should be stable, got %s", got)
	}
}

func TestComputeVolatility(t *testing.T) {
	if got := computeVolatility([]float64{0.5, 0.6}); got != 0 {
		t.Fatalf("fewer than three points should report zero, got %v", got)
	}
	flat := computeVolatility([]float64{0.5, 0.5, 0.5, 0.5})
	if flat != 0 {
		t.Fatalf("flat series volatility=%v want=0", flat)
	}
	// Average step 0.2 and swing 0.4 both saturate their halves.
	wild := computeVolatility([]float64{0.3, 0.7, 0.3, 0.7})
	if math.Abs(wild-1.0) > 1e-12 {
		t.Fatalf("wild series volatility=%v want=1", wild)
	}
}

func TestQuestionSimilarity(t *testing.T) {
	if got := questionSimilarity("Will Bitcoin reach $100k?", "Will Bitcoin reach $100k?"); got != 1.0 {
		t.Fatalf("identical questions similarity=%v want=1", got)
	}
	if got := questionSimilarity("Will Bitcoin rise", "Fed rate decision June"); got != 0 {
		t.Fatalf("disjoint questions similarity=%v want=0", got)
	}
	got := questionSimilarity("Bitcoin price above 100k December", "Bitcoin price below 90k December")
	if got <= 0 || got >= 1 {
		t.Fatalf("partial overlap similarity=%v want in (0,1)", got)
	}
}

func TestCorrelationRisk(t *testing.T) {
	if got := correlationRisk(nil); got != 0 {
		t.Fatalf("no related markets risk=%v want=0", got)
	}
	related := []RelatedMarket{
		{Similarity: 0.5}, {Similarity: 0.5}, {Similarity: 0.5},
		{Similarity: 0.5}, {Similarity: 0.5},
	}
	got := correlationRisk(related)
	if math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("risk=%v want=0.75", got)
	}
}

func TestKeyTerms_LongestFirst(t *testing.T) {
	terms := keyTerms("Will the presidential election outcome change policy", 2)
	if len(terms) != 2 {
		t.Fatalf("terms=%v want 2 entries", terms)
	}
	if terms[0] != "presidential" {
		t.Fatalf("terms[0]=%s want=presidential", terms[0])
	}
}
