package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"polyscout/internal/ai"
	"polyscout/internal/apicache"
	"polyscout/internal/client/polymarket/clob"
	"polyscout/internal/client/polymarket/gamma"
	"polyscout/internal/config"
)

func scanTestServers(t *testing.T, now time.Time) (*gamma.Client, *clob.Client) {
	t.Helper()
	soon := now.Add(10 * time.Hour).Format(time.RFC3339)
	farOut := now.Add(100 * time.Hour).Format(time.RFC3339)

	gammaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[
			{
				"id": "e1", "title": "Elections", "volume": 500000,
				"markets": [
					{
						"id": "m1", "conditionId": "c1", "question": "Will candidate X win?",
						"endDate": %q, "active": true, "closed": false, "volume": "250000",
						"outcomePrices": "[\"0.30\", \"0.70\"]",
						"clobTokenIds": "[\"yes1\", \"no1\"]"
					},
					{
						"id": "m2", "conditionId": "c2", "question": "Too close to call?",
						"endDate": %q, "active": true, "closed": false, "volume": "90000",
						"outcomePrices": "[\"0.50\", \"0.50\"]",
						"clobTokenIds": "[\"yes2\", \"no2\"]"
					},
					{
						"id": "m3", "conditionId": "c3", "question": "Next year event?",
						"endDate": %q, "active": true, "closed": false, "volume": "80000",
						"outcomePrices": "[\"0.80\", \"0.20\"]",
						"clobTokenIds": "[\"yes3\", \"no3\"]"
					}
				]
			}
		]`, soon, soon, farOut)
	}))
	t.Cleanup(gammaSrv.Close)

	clobSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"bids": [{"price": "0.68", "size": "2000"}],
			"asks": [{"price": "0.71", "size": "2000"}]
		}`)
	}))
	t.Cleanup(clobSrv.Close)

	return gamma.NewClient(gammaSrv.Client(), gammaSrv.URL),
		clob.NewClient(clobSrv.Client(), clobSrv.URL)
}

func TestScan_PipelineWithoutAI(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gammaClient, clobClient := scanTestServers(t, now)

	s := &Scanner{
		Gamma: gammaClient,
		Clob:  clobClient,
		Config: config.ScannerConfig{
			RiskProfile:        "moderate",
			MinHoursToExpiry:   0.5,
			MaxHoursToExpiry:   48,
			MaxMarkets:         50,
			SlippageBuffer:     0.01,
			MaxPositionPct:     0.10,
			TotalAllocationPct: 0.75,
		},
		Now: func() time.Time { return now },
	}

	result, err := s.Scan(context.Background(), Params{FixedAmountUSD: 10, ScanType: "test"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if result.Stats.Markets != 3 {
		t.Fatalf("markets=%d want=3", result.Stats.Markets)
	}
	if result.Stats.InWindow != 2 {
		t.Fatalf("in_window=%d want=2 (m3 expires outside the window)", result.Stats.InWindow)
	}
	if result.Stats.FilteredUncertain != 1 {
		t.Fatalf("filtered_uncertain=%d want=1 (m2 is 50/50)", result.Stats.FilteredUncertain)
	}
	if len(result.Opportunities) != 1 {
		t.Fatalf("opportunities=%d want=1", len(result.Opportunities))
	}

	opp := result.Opportunities[0]
	if opp.ConditionID != "c1" {
		t.Fatalf("condition=%s want=c1", opp.ConditionID)
	}
	if opp.Side != SideNo || opp.TokenID != "no1" {
		t.Fatalf("side=%s token=%s want NO side on the no token", opp.Side, opp.TokenID)
	}
	if opp.EntryPrice != 0.70 {
		t.Fatalf("entry=%v want=0.70 (the NO price)", opp.EntryPrice)
	}
	if opp.PositionSizeUSD != 10 {
		t.Fatalf("size=%v want the fixed $10", opp.PositionSizeUSD)
	}
	if opp.Analysis != nil {
		t.Fatalf("analysis should be absent with AI disabled")
	}
	if opp.TriagePassed {
		t.Fatalf("triage cannot pass without analysis (confidence and edge are zero)")
	}
	if len(opp.TriageReasons) == 0 {
		t.Fatalf("triage must record why the market failed")
	}
	if result.Stats.TriageFiltered != 1 {
		t.Fatalf("triage_filtered=%d want=1 (verdicts run on every scan)", result.Stats.TriageFiltered)
	}
	if opp.RiskScore < 0 || opp.RiskScore > 1 {
		t.Fatalf("risk=%v out of range", opp.RiskScore)
	}
	if result.ScanID == "" || result.Params.ScanType != "test" {
		t.Fatalf("result metadata missing: %+v", result)
	}
}

func TestDeepResearch_CountsBeforeCreditBlock(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := apicache.New(t.TempDir(), time.Hour)
	cached, _ := json.Marshal(ai.DeepResearchResult{ResearchQuality: "HIGH"})
	cache.Set("deep_research", "c1_"+now.Format("2006010215"), cached)

	guard := ai.NewCreditGuard(time.Minute)
	guard.Trip("credit balance is too low")
	researcher := &ai.Researcher{
		Client: ai.NewClient("key", "model", 0, nil, guard, nil),
		Cache:  cache,
		Now:    func() time.Time { return now },
	}

	s := &Scanner{
		Researcher: researcher,
		Config:     config.ScannerConfig{DeepResearchTopN: 5},
	}
	opps := []*Opportunity{
		{ConditionID: "c1", TriagePassed: true, Analysis: &ai.MarketAnalysis{}},
		{ConditionID: "c2", TriagePassed: true, Analysis: &ai.MarketAnalysis{}},
	}
	var stats Stats
	s.deepResearch(context.Background(), Params{}, opps, &stats)

	if opps[0].Research == nil {
		t.Fatalf("first opportunity should carry the cached research")
	}
	if opps[1].Research != nil {
		t.Fatalf("second opportunity must stop at the credit block")
	}
	if stats.DeepResearched != 1 {
		t.Fatalf("deep_researched=%d want=1 (count kept when the block interrupts)", stats.DeepResearched)
	}
}

func TestScan_FailsWithoutClients(t *testing.T) {
	s := &Scanner{}
	if _, err := s.Scan(context.Background(), Params{}); err == nil {
		t.Fatalf("unwired scanner must error")
	}
}
