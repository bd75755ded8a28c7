package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"polyscout/internal/client/polymarket/clob"
	"polyscout/internal/ids"
	"polyscout/internal/models"
	"polyscout/internal/repository"
)

// Sell decision outcomes.
const (
	DecisionHold        = "hold"
	DecisionTakeProfit  = "take_profit"
	DecisionStopLoss    = "stop_loss"
	DecisionAlreadySold = "already_sold"
)

// A stop loss is suppressed while the spread is this wide: a one-sided or
// gutted book produces midpoints that would fire spuriously.
const maxSpreadForStopLoss = 0.50

const sellPriceShave = 0.001
const sellPriceFloor = 0.01

// Quote is the top-of-book view a decision is made against.
type Quote struct {
	BestBid float64
	BestAsk float64
}

// Midpoint is (bid+ask)/2 when a bid exists, the ask alone otherwise.
func (q Quote) Midpoint() float64 {
	if q.BestBid > 0 {
		return (q.BestBid + q.BestAsk) / 2
	}
	return q.BestAsk
}

// Spread reports ask-bid, or the full 1.0 for a bidless book.
func (q Quote) Spread() float64 {
	if q.BestBid > 0 {
		return q.BestAsk - q.BestBid
	}
	return 1.0
}

// Decide returns the action for one watch config against a quote, and the
// limit price to sell at when the action is a sell.
func Decide(cfg *models.WatchConfig, q Quote) (string, float64) {
	if cfg == nil {
		return DecisionHold, 0
	}
	tp, _ := cfg.TakeProfitPrice.Float64()
	sl, _ := cfg.StopLossPrice.Float64()

	if tp > 0 && q.BestBid >= tp {
		return DecisionTakeProfit, tp
	}
	if sl > 0 && q.Spread() < maxSpreadForStopLoss && q.Midpoint() <= sl {
		price := q.BestBid - sellPriceShave
		if price < sellPriceFloor {
			price = sellPriceFloor
		}
		return DecisionStopLoss, price
	}
	return DecisionHold, 0
}

// BuildConfig converts percent targets into absolute prices and assigns an
// id. tpPct and slPct are fractions of the entry price.
func BuildConfig(tokenID, question string, entry, size, tpPct, slPct float64) (*models.WatchConfig, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, fmt.Errorf("token id is required")
	}
	if entry <= 0 || size <= 0 {
		return nil, fmt.Errorf("entry price and size must be positive")
	}
	if tpPct <= 0 && slPct <= 0 {
		return nil, fmt.Errorf("at least one of take profit or stop loss is required")
	}
	cfg := &models.WatchConfig{
		ID:             ids.New(6),
		TokenID:        tokenID,
		MarketQuestion: question,
		EntryPrice:     decimal.NewFromFloat(entry),
		Size:           decimal.NewFromFloat(size),
	}
	if tpPct > 0 {
		cfg.TakeProfitPrice = decimal.NewFromFloat(entry * (1 + tpPct))
	}
	if slPct > 0 {
		cfg.StopLossPrice = decimal.NewFromFloat(entry * (1 - slPct))
	}
	return cfg, nil
}

// Watcher polls watch configs and closes positions when a take-profit or
// stop-loss level is hit. Deleting the config is the terminal transition.
type Watcher struct {
	Repo   repository.Repository
	Clob   *clob.Client
	Auth   clob.TradingAuth
	Prices *PriceCache
	Logger *zap.Logger
}

// Run polls until the context ends or no configs remain.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) error {
	if w == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		remaining, err := w.RunOnce(ctx)
		if err != nil && w.Logger != nil {
			w.Logger.Warn("monitor pass failed", zap.Error(err))
		}
		if err == nil && remaining == 0 {
			if w.Logger != nil {
				w.Logger.Info("no watch configs left, monitor stopping")
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs one pass: orphan cleanup, then a decision per config.
// It returns the number of configs still live.
func (w *Watcher) RunOnce(ctx context.Context) (int, error) {
	if w == nil || w.Repo == nil || w.Clob == nil {
		return 0, nil
	}
	configs, err := w.Repo.ListWatchConfigs(ctx)
	if err != nil {
		return 0, err
	}

	configs, err = w.cleanupOrphans(ctx, configs)
	if err != nil && w.Logger != nil {
		w.Logger.Warn("orphan cleanup failed", zap.Error(err))
	}

	remaining := 0
	for i := range configs {
		cfg := &configs[i]
		closed, err := w.evaluate(ctx, cfg)
		if err != nil {
			if w.Logger != nil {
				w.Logger.Warn("watch evaluation failed",
					zap.String("config_id", cfg.ID),
					zap.String("token_id", cfg.TokenID),
					zap.Error(err))
			}
			remaining++
			continue
		}
		if !closed {
			remaining++
		}
	}
	return remaining, nil
}

// cleanupOrphans deletes configs whose position no longer exists. Skipped
// entirely when the client has no trading credentials.
func (w *Watcher) cleanupOrphans(ctx context.Context, configs []models.WatchConfig) ([]models.WatchConfig, error) {
	if !w.Auth.Configured() {
		return configs, nil
	}
	kept := configs[:0]
	for _, cfg := range configs {
		balance, err := w.Clob.GetBalanceAllowance(ctx, cfg.TokenID, w.Auth)
		if err != nil {
			kept = append(kept, cfg)
			continue
		}
		if balance <= 0 {
			if _, err := w.Repo.DeleteWatchConfig(ctx, cfg.ID); err != nil {
				return kept, err
			}
			if w.Logger != nil {
				w.Logger.Info("orphaned watch config removed",
					zap.String("config_id", cfg.ID),
					zap.String("token_id", cfg.TokenID))
			}
			continue
		}
		kept = append(kept, cfg)
	}
	return kept, nil
}

func (w *Watcher) quote(ctx context.Context, tokenID string) (Quote, error) {
	if w.Prices != nil {
		if bid, ask, ok := w.Prices.Get(tokenID); ok {
			return Quote{BestBid: bid, BestAsk: ask}, nil
		}
	}
	book, err := w.Clob.GetBook(ctx, tokenID)
	if err != nil {
		return Quote{}, err
	}
	bid, _ := book.BestBid().Float64()
	ask, _ := book.BestAsk().Float64()
	return Quote{BestBid: bid, BestAsk: ask}, nil
}

// evaluate runs the decision for one config, selling and deleting it when a
// level is hit. Returns true when the config reached its terminal state.
func (w *Watcher) evaluate(ctx context.Context, cfg *models.WatchConfig) (bool, error) {
	q, err := w.quote(ctx, cfg.TokenID)
	if err != nil {
		return false, err
	}
	decision, price := Decide(cfg, q)
	if decision == DecisionHold {
		return false, nil
	}
	if !w.Auth.Configured() {
		if w.Logger != nil {
			w.Logger.Warn("sell signal without trading credentials",
				zap.String("config_id", cfg.ID),
				zap.String("decision", decision))
		}
		return false, nil
	}

	size, _ := cfg.Size.Float64()
	outcome, err := w.sell(ctx, cfg, price, size)
	if err != nil {
		return false, err
	}
	if _, err := w.Repo.DeleteWatchConfig(ctx, cfg.ID); err != nil {
		return false, err
	}
	if w.Logger != nil {
		if outcome == DecisionAlreadySold {
			decision = DecisionAlreadySold
		}
		w.Logger.Info("position closed",
			zap.String("config_id", cfg.ID),
			zap.String("token_id", cfg.TokenID),
			zap.String("decision", decision),
			zap.Float64("price", price),
			zap.Float64("best_bid", q.BestBid))
	}
	return true, nil
}

// sell places the limit sell, re-checking the actual balance once if the
// exchange rejects the size.
func (w *Watcher) sell(ctx context.Context, cfg *models.WatchConfig, price, size float64) (string, error) {
	_, err := w.Clob.LimitSell(ctx, cfg.TokenID, price, size, w.Auth)
	if err == nil {
		return "sold", nil
	}
	if !isBalanceError(err) {
		return "", err
	}

	actual, balErr := w.Clob.GetBalanceAllowance(ctx, cfg.TokenID, w.Auth)
	if balErr != nil {
		return "", err
	}
	if actual <= 0 {
		return DecisionAlreadySold, nil
	}
	if _, err := w.Clob.LimitSell(ctx, cfg.TokenID, price, actual, w.Auth); err != nil {
		return "", err
	}
	return "sold", nil
}

// isBalanceError reports whether the exchange rejected an order for holding
// less than the requested size.
func isBalanceError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "balance") || strings.Contains(msg, "allowance")
}
