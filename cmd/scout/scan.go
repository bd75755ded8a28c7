package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polyscout/internal/monitor"
	"polyscout/internal/scanner"
)

func newScanCmd() *cobra.Command {
	var (
		profile   string
		portfolio float64
		fixed     float64
		minProfit float64
		minHours  float64
		maxHours  float64
		maxMkts   int
		noAI      bool
		research  bool
		facts     bool
		jsonOut   bool
		top       int
		autoTP    float64
		autoSL    float64
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan and print the ranked opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scan := app.newScanner()
			result, err := scan.Scan(ctx, scanner.Params{
				RiskProfile:        profile,
				PortfolioUSD:       portfolio,
				FixedAmountUSD:     fixed,
				MinProfitPct:       minProfit,
				MinHoursToExpiry:   minHours,
				MaxHoursToExpiry:   maxHours,
				MaxMarkets:         maxMkts,
				EnableAI:           !noAI,
				EnableDeepResearch: research,
				EnableFacts:        facts,
				ScanType:           "cli",
			})
			if err != nil {
				return err
			}
			if top > 0 && len(result.Opportunities) > top {
				result.Opportunities = result.Opportunities[:top]
			}
			if autoTP > 0 || autoSL > 0 {
				watchOpportunities(ctx, app, result, autoTP, autoSL)
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(app.logger, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "risk profile (conservative, moderate, aggressive, speculative)")
	cmd.Flags().Float64Var(&portfolio, "portfolio", 0, "portfolio size in USD for position sizing")
	cmd.Flags().Float64Var(&fixed, "fixed-amount", 0, "fixed USD amount per position instead of percentage sizing")
	cmd.Flags().Float64Var(&minProfit, "min-profit", 0, "minimum expected profit fraction")
	cmd.Flags().Float64Var(&minHours, "min-hours", 0, "minimum hours to market expiry")
	cmd.Flags().Float64Var(&maxHours, "max-hours", 0, "maximum hours to market expiry")
	cmd.Flags().IntVar(&maxMkts, "max-markets", 0, "cap on markets scanned")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "skip AI analysis")
	cmd.Flags().BoolVar(&research, "research", false, "run deep research on top opportunities")
	cmd.Flags().BoolVar(&facts, "facts", false, "gather key facts before analysis")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().IntVar(&top, "top", 0, "only keep the top N ranked opportunities")
	cmd.Flags().Float64Var(&autoTP, "auto-tp", 0, "create watch configs with this take-profit fraction")
	cmd.Flags().Float64Var(&autoSL, "auto-sl", 0, "create watch configs with this stop-loss fraction")
	return cmd
}

// watchOpportunities registers a TP/SL watch for every sized opportunity.
// Tokens that already carry a watch config are left alone.
func watchOpportunities(ctx context.Context, app *app, result *scanner.Result, tpPct, slPct float64) {
	for _, opp := range result.Opportunities {
		if opp.PositionSizeUSD <= 0 || opp.EntryPrice <= 0 {
			continue
		}
		existing, err := app.store.GetWatchConfigByTokenID(ctx, opp.TokenID)
		if err != nil || existing != nil {
			continue
		}
		size := opp.PositionSizeUSD / opp.EntryPrice
		cfg, err := monitor.BuildConfig(opp.TokenID, opp.Question, opp.EntryPrice, size, tpPct, slPct)
		if err != nil {
			app.logger.Warn("auto watch config rejected",
				zap.String("token_id", opp.TokenID),
				zap.Error(err))
			continue
		}
		if err := app.store.CreateWatchConfig(ctx, cfg); err != nil {
			app.logger.Warn("auto watch config failed",
				zap.String("token_id", opp.TokenID),
				zap.Error(err))
			continue
		}
		app.logger.Info("watch config created",
			zap.String("config_id", cfg.ID),
			zap.String("token_id", cfg.TokenID),
			zap.Float64("size", size))
	}
}

func printResult(log *zap.Logger, result *scanner.Result) {
	log.Info("scan complete",
		zap.String("scan_id", result.ScanID),
		zap.Int("opportunities", len(result.Opportunities)),
	)
	for i, opp := range result.Opportunities {
		log.Info("opportunity",
			zap.Int("rank", i+1),
			zap.String("question", opp.Question),
			zap.String("side", opp.Side),
			zap.Float64("entry_price", opp.EntryPrice),
			zap.Float64("expected_profit_pct", opp.ExpectedProfitPct),
			zap.Float64("risk_score", opp.RiskScore),
			zap.Float64("position_size_usd", opp.PositionSizeUSD),
		)
	}
}
