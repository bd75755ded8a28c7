package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"polyscout/internal/ai"
	"polyscout/internal/client/polymarket/clob"
	"polyscout/internal/client/polymarket/gamma"
	"polyscout/internal/config"
	"polyscout/internal/ids"
	"polyscout/internal/models"
	"polyscout/internal/repository"
)

// Params are the per-run knobs. Zero values fall back to the configured
// defaults.
type Params struct {
	RiskProfile        string  `json:"risk_profile"`
	PortfolioUSD       float64 `json:"portfolio_usd"`
	FixedAmountUSD     float64 `json:"fixed_amount_usd"`
	MinProfitPct       float64 `json:"min_profit_pct"`
	MinHoursToExpiry   float64 `json:"min_hours_to_expiry"`
	MaxHoursToExpiry   float64 `json:"max_hours_to_expiry"`
	MaxMarkets         int     `json:"max_markets"`
	EnableAI           bool    `json:"enable_ai"`
	EnableDeepResearch bool    `json:"enable_deep_research"`
	EnableFacts        bool    `json:"enable_facts"`
	ScanType           string  `json:"scan_type"`
}

// Result is one finished scan.
type Result struct {
	ScanID        string         `json:"scan_id"`
	Params        Params         `json:"params"`
	Opportunities []*Opportunity `json:"opportunities"`
	Stats         Stats          `json:"stats"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}

// Scanner runs the full pipeline: market fetch, pre-filter, enrichment, AI
// analysis, triage, deep research, scoring, ranking and sizing.
type Scanner struct {
	Gamma      *gamma.Client
	Clob       *clob.Client
	Repo       repository.Repository
	Analyzer   *ai.Analyzer
	Researcher *ai.Researcher
	Facts      *ai.FactsGatherer
	Enricher   *Enricher
	Logger     *zap.Logger
	Config     config.ScannerConfig

	// AnalyzeConcurrency bounds parallel AI calls; zero means 2.
	AnalyzeConcurrency int

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *Scanner) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Scan executes one full pipeline run and persists the result.
func (s *Scanner) Scan(ctx context.Context, params Params) (*Result, error) {
	if s == nil || s.Gamma == nil || s.Clob == nil {
		return nil, fmt.Errorf("scanner is not wired")
	}
	started := s.now()
	s.applyDefaults(&params)
	profile := ProfileByName(params.RiskProfile)

	if s.Repo != nil {
		if n, err := s.Repo.DeleteExpiredScanRecords(ctx, started); err == nil && n > 0 && s.Logger != nil {
			s.Logger.Info("expired scans pruned", zap.Int64("count", n))
		}
	}

	var stats Stats
	candidates, err := s.fetchCandidates(ctx, params, &stats)
	if err != nil {
		return nil, err
	}

	opps := s.preFilter(ctx, profile, params, candidates, &stats)

	// Rank by preliminary score so the AI budget goes to the best markets.
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].PreliminaryScore > opps[j].PreliminaryScore
	})

	for _, opp := range opps {
		s.Enricher.Enrich(ctx, opp)
	}

	if params.EnableAI && s.Analyzer != nil {
		opps = s.analyze(ctx, profile, params, opps, &stats)
	}

	// The triage verdict is recorded on every opportunity, AI or not: it
	// gates deep research and its counts belong in the scan statistics.
	opps = s.triage(profile, opps, &stats)

	for _, opp := range opps {
		scoreRisk(profile, opp)
	}

	if params.EnableDeepResearch && s.Researcher != nil {
		s.deepResearch(ctx, params, opps, &stats)
	}

	applyCorrelationPenalty(opps)
	sortOpportunities(opps)
	allocate(opps, params.PortfolioUSD, params.FixedAmountUSD,
		s.Config.MaxPositionPct, s.Config.TotalAllocationPct)
	stats.Opportunities = len(opps)

	result := &Result{
		ScanID:        "scan_" + started.Format("20060102T150405") + "_" + ids.New(6),
		Params:        params,
		Opportunities: opps,
		Stats:         stats,
		StartedAt:     started,
		FinishedAt:    s.now(),
	}
	if err := s.persist(ctx, result); err != nil && s.Logger != nil {
		s.Logger.Warn("scan persist failed", zap.Error(err))
	}
	if s.Logger != nil {
		s.Logger.Info("scan finished",
			zap.String("scan_id", result.ScanID),
			zap.Int("opportunities", len(opps)),
			zap.Duration("took", result.FinishedAt.Sub(started)))
	}
	return result, nil
}

func (s *Scanner) applyDefaults(params *Params) {
	if params.RiskProfile == "" {
		params.RiskProfile = s.Config.RiskProfile
	}
	if params.MinHoursToExpiry <= 0 {
		params.MinHoursToExpiry = s.Config.MinHoursToExpiry
	}
	if params.MaxHoursToExpiry <= 0 {
		params.MaxHoursToExpiry = s.Config.MaxHoursToExpiry
	}
	if params.MaxMarkets <= 0 {
		params.MaxMarkets = s.Config.MaxMarkets
	}
	if params.ScanType == "" {
		params.ScanType = "manual"
	}
}

type candidate struct {
	market     gamma.Market
	eventTitle string
	endDate    time.Time
	hours      float64
	yesPrice   float64
	noPrice    float64
}

func (s *Scanner) fetchCandidates(ctx context.Context, params Params, stats *Stats) ([]candidate, error) {
	events, err := s.Gamma.ListOpenEvents(ctx, 1000)
	if err != nil {
		return nil, fmt.Errorf("gamma events: %w", err)
	}
	stats.Events = len(events)
	now := s.now()

	windowLow := now.Add(time.Duration(params.MinHoursToExpiry * float64(time.Hour)))
	windowHigh := now.Add(time.Duration(params.MaxHoursToExpiry * float64(time.Hour)))

	var candidates []candidate
	for _, ev := range events {
		for _, m := range ev.Markets {
			stats.Markets++
			if m.Closed || !m.Active || m.EndDate == nil {
				continue
			}
			if m.EndDate.Before(windowLow) || m.EndDate.After(windowHigh) {
				continue
			}
			prices := m.OutcomePrices.Floats()
			if len(prices) < 2 {
				continue
			}
			stats.InWindow++
			candidates = append(candidates, candidate{
				market:     m,
				eventTitle: ev.Title,
				endDate:    m.EndDate.UTC(),
				hours:      m.EndDate.Sub(now).Hours(),
				yesPrice:   prices[0],
				noPrice:    prices[1],
			})
		}
	}

	// Cap to the highest-volume markets before any book calls.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].market.Volume > candidates[j].market.Volume
	})
	if len(candidates) > params.MaxMarkets {
		candidates = candidates[:params.MaxMarkets]
	}
	stats.VolumeCapped = len(candidates)
	return candidates, nil
}

func (s *Scanner) preFilter(ctx context.Context, profile Profile, params Params, candidates []candidate, stats *Stats) []*Opportunity {
	minProfit := params.MinProfitPct
	if minProfit <= 0 {
		minProfit = profile.MinProfitPct
	}

	var out []*Opportunity
	for _, c := range candidates {
		if inUncertainRange(profile, c.yesPrice) {
			stats.FilteredUncertain++
			continue
		}
		side, entry := chooseSide(c.yesPrice, c.noPrice)
		tokens := c.market.ClobTokenIDs
		var tokenID string
		if side == SideYes && len(tokens) > 0 {
			tokenID = tokens[0]
		} else if side == SideNo && len(tokens) > 1 {
			tokenID = tokens[1]
		}
		if tokenID == "" {
			stats.FilteredNoToken++
			continue
		}

		book, err := s.Clob.GetBook(ctx, tokenID)
		if err != nil {
			stats.BookErrors++
			book = nil
		}
		liq := AnalyzeBook(book)

		if liq.TotalUSD < profile.MinLiquidity {
			stats.FilteredLiquidity++
			continue
		}
		if liq.SpreadPct > profile.MaxSpreadPct {
			stats.FilteredSpread++
			continue
		}
		profit := expectedProfitPct(entry, s.Config.SlippageBuffer)
		if profit < minProfit {
			stats.FilteredProfit++
			continue
		}

		out = append(out, &Opportunity{
			ConditionID:       c.market.ConditionID,
			Question:          c.market.Question,
			Slug:              c.market.Slug,
			EventTitle:        c.eventTitle,
			EndDate:           c.endDate,
			HoursToExpiry:     c.hours,
			YesPrice:          c.yesPrice,
			NoPrice:           c.noPrice,
			Volume:            float64(c.market.Volume),
			Side:              side,
			TokenID:           tokenID,
			EntryPrice:        entry,
			ExpectedProfitPct: profit,
			Liquidity:         liq,
			NewsScore:         0.5,
			EventStatus:       "UNKNOWN",
			PreliminaryScore: preliminaryScore(c.yesPrice, liq.TotalUSD,
				float64(c.market.Volume), liq.Spread, profit, c.hours),
		})
	}
	return out
}

func (s *Scanner) analyze(ctx context.Context, profile Profile, params Params, opps []*Opportunity, stats *Stats) []*Opportunity {
	budget := s.Config.MaxAIAnalyses
	if budget <= 0 || budget > len(opps) {
		budget = len(opps)
	}
	concurrency := s.AnalyzeConcurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for _, opp := range opps[:budget] {
		opp := opp
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			in := ai.MarketInput{
				ConditionID:   opp.ConditionID,
				Question:      opp.Question,
				Description:   opp.EventTitle,
				YesPrice:      opp.YesPrice,
				NoPrice:       opp.NoPrice,
				HoursToExpiry: opp.HoursToExpiry,
				Volume:        opp.Volume,
				Liquidity:     opp.Liquidity.TotalUSD,
			}
			if params.EnableFacts && s.Facts != nil {
				if facts, err := s.Facts.Gather(ctx, opp.Question); err == nil {
					opp.Facts = &facts
				}
			}
			in.Facts = opp.Facts
			analysis, err := s.Analyzer.Analyze(ctx, in)
			if err != nil && errors.Is(err, ai.ErrBlocked) {
				return
			}
			opp.Analysis = &analysis
		}()
	}
	wg.Wait()

	kept := opps[:0]
	for _, opp := range opps {
		if opp.Analysis == nil {
			kept = append(kept, opp)
			continue
		}
		stats.Analyzed++
		if profile.SkipOnAISkip && opp.Analysis.Recommendation == "SKIP" {
			stats.FilteredAISkip++
			continue
		}
		if opp.AIConfidence() > 0 && opp.AIConfidence() < profile.MinConfidence {
			stats.FilteredConfidence++
			continue
		}
		kept = append(kept, opp)
	}
	return kept
}

// triage records a pass/fail verdict with reasons on every opportunity. It
// never requires the AI stages; without analysis the confidence and edge
// gates fail and say so. Markets whose event already resolved are dropped
// for profiles that filter them.
func (s *Scanner) triage(profile Profile, opps []*Opportunity, stats *Stats) []*Opportunity {
	kept := opps[:0]
	for _, opp := range opps {
		in := ai.TriageInput{
			Volume:      opp.Volume,
			Confidence:  opp.AIConfidence(),
			Edge:        opp.AIEdge(),
			EventStatus: opp.EventStatus,
		}
		if opp.Analysis != nil {
			in.Recommendation = opp.Analysis.Recommendation
			in.Reasoning = opp.Analysis.Reasoning
		}
		if opp.Facts != nil {
			in.Status = opp.Facts.CurrentStatus
		}
		verdict := ai.Triage(in)
		opp.TriagePassed = verdict.Passed
		opp.TriageReasons = verdict.Reasons
		if !verdict.Passed {
			stats.TriageFiltered++
		}
		if profile.FilterOccurred {
			if _, occurred := resolvedInReasons(verdict.Reasons); occurred {
				stats.FilteredOccurred++
				continue
			}
		}
		kept = append(kept, opp)
	}
	return kept
}

func resolvedInReasons(reasons []string) (string, bool) {
	for _, r := range reasons {
		if r == "event already occurred" || strings.HasPrefix(r, "market may already be resolved") {
			return r, true
		}
	}
	return "", false
}

func (s *Scanner) deepResearch(ctx context.Context, params Params, opps []*Opportunity, stats *Stats) {
	topN := s.Config.DeepResearchTopN
	researched := 0
	for _, opp := range opps {
		if researched >= topN {
			break
		}
		if opp.Analysis == nil || !opp.TriagePassed {
			continue
		}
		in := ai.MarketInput{
			ConditionID:   opp.ConditionID,
			Question:      opp.Question,
			Description:   opp.EventTitle,
			YesPrice:      opp.YesPrice,
			HoursToExpiry: opp.HoursToExpiry,
		}
		research, err := s.Researcher.Research(ctx, in)
		if err != nil && errors.Is(err, ai.ErrBlocked) {
			break
		}
		opp.Research = &research
		applyResearch(opp)
		researched++
	}
	stats.DeepResearched = researched
}

func (s *Scanner) persist(ctx context.Context, result *Result) error {
	if s.Repo == nil {
		return nil
	}
	paramsJSON, err := json.Marshal(result.Params)
	if err != nil {
		return err
	}
	statsJSON, err := json.Marshal(result.Stats)
	if err != nil {
		return err
	}
	oppsJSON, err := json.Marshal(result.Opportunities)
	if err != nil {
		return err
	}
	retention := s.Config.RetentionHours
	if retention <= 0 {
		retention = 48
	}
	return s.Repo.InsertScanRecord(ctx, &models.ScanRecord{
		ScanID:             result.ScanID,
		ScanType:           result.Params.ScanType,
		Parameters:         datatypes.JSON(paramsJSON),
		OpportunitiesCount: len(result.Opportunities),
		Opportunities:      datatypes.JSON(oppsJSON),
		Stats:              datatypes.JSON(statsJSON),
		RetentionHours:     retention,
		ExpiresAt:          result.FinishedAt.Add(time.Duration(retention) * time.Hour),
	})
}
