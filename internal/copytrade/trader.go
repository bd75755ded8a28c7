package copytrade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"polyscout/internal/client/polymarket/clob"
	"polyscout/internal/client/polymarket/dataapi"
	"polyscout/internal/config"
	"polyscout/internal/models"
	"polyscout/internal/repository"
)

// Executed trade statuses.
const (
	StatusExecuted = "executed"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

const minCopyUSD = 1.0

const sellPriceShave = 0.001
const sellPriceFloor = 0.01

// Fill is one raw trade observed on a followed wallet.
type Fill struct {
	TxHash    string
	Asset     string
	Side      string
	Price     float64
	Size      float64
	USDCSize  float64
	Title     string
	Timestamp time.Time
}

// Consolidated groups a wallet's fills by (asset, side), the unit a copy
// decision is made on.
type Consolidated struct {
	Asset     string
	Side      string
	Size      float64
	USDCSize  float64
	FillCount int
	Title     string
	LastSeen  time.Time
}

// AvgPrice is the volume-weighted fill price.
func (c Consolidated) AvgPrice() float64 {
	if c.Size <= 0 {
		return 0
	}
	return c.USDCSize / c.Size
}

// Consolidate de-duplicates fills by (txhash, asset, timestamp) and groups
// the survivors by (asset, side). Output order is deterministic.
func Consolidate(fills []Fill) []Consolidated {
	seen := make(map[string]bool, len(fills))
	groups := make(map[string]*Consolidated)
	for _, f := range fills {
		dedup := fmt.Sprintf("%s_%s_%d", f.TxHash, f.Asset, f.Timestamp.Unix())
		if seen[dedup] {
			continue
		}
		seen[dedup] = true

		key := f.Asset + "|" + f.Side
		g, ok := groups[key]
		if !ok {
			g = &Consolidated{Asset: f.Asset, Side: f.Side, Title: f.Title}
			groups[key] = g
		}
		g.Size += f.Size
		g.USDCSize += f.USDCSize
		g.FillCount++
		if f.Timestamp.After(g.LastSeen) {
			g.LastSeen = f.Timestamp
		}
	}

	out := make([]Consolidated, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset != out[j].Asset {
			return out[i].Asset < out[j].Asset
		}
		return out[i].Side < out[j].Side
	})
	return out
}

// CopyAmount sizes a mirrored buy: the leader's full spend up to maxAmount,
// plus a fraction of the overflow beyond it.
func CopyAmount(usdcSize, maxAmount, extraPct float64) float64 {
	if usdcSize <= maxAmount {
		return usdcSize
	}
	return maxAmount + usdcSize*extraPct
}

// Trader mirrors the trades of followed wallets.
type Trader struct {
	Repo    repository.Repository
	DataAPI *dataapi.Client
	Clob    *clob.Client
	Auth    clob.TradingAuth
	Logger  *zap.Logger
	Config  config.CopyTradeConfig

	// Now is overridable in tests.
	Now func() time.Time
}

func (t *Trader) now() time.Time {
	if t != nil && t.Now != nil {
		return t.Now()
	}
	return time.Now().UTC()
}

// Run polls followed wallets until the context ends.
func (t *Trader) Run(ctx context.Context, interval time.Duration) error {
	if t == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := t.RunOnce(ctx); err != nil && t.Logger != nil {
			t.Logger.Warn("copy trade pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce checks every active follow for new trades. The first pass for a
// follow only records the baseline timestamp.
func (t *Trader) RunOnce(ctx context.Context) error {
	if t == nil || t.Repo == nil || t.DataAPI == nil {
		return nil
	}
	follows, err := t.Repo.ListTraderFollows(ctx, true)
	if err != nil {
		return err
	}
	for i := range follows {
		if err := t.checkFollow(ctx, &follows[i]); err != nil && t.Logger != nil {
			t.Logger.Warn("follow check failed",
				zap.String("wallet", follows[i].Wallet),
				zap.Error(err))
		}
	}
	return nil
}

func (t *Trader) checkFollow(ctx context.Context, follow *models.TraderFollow) error {
	now := t.now()
	if follow.LastCheckTimestamp == nil {
		// Baseline only: never copy trades that predate the follow.
		return t.Repo.UpdateTraderFollowLastCheck(ctx, follow.ID, now)
	}

	limit := t.Config.ActivityLimit
	if limit <= 0 {
		limit = 50
	}
	activity, err := t.DataAPI.UserTrades(ctx, follow.Wallet, *follow.LastCheckTimestamp, limit)
	if err != nil {
		return err
	}

	fills := make([]Fill, 0, len(activity))
	for _, a := range activity {
		if !strings.EqualFold(a.Type, "TRADE") {
			continue
		}
		fills = append(fills, Fill{
			TxHash:    a.TransactionHash,
			Asset:     a.Asset,
			Side:      strings.ToUpper(a.Side),
			Price:     float64(a.Price),
			Size:      float64(a.Size),
			USDCSize:  float64(a.USDCSize),
			Title:     a.Title,
			Timestamp: a.Time(),
		})
	}

	for _, group := range Consolidate(fills) {
		if err := t.mirror(ctx, follow, group); err != nil && t.Logger != nil {
			t.Logger.Warn("mirror failed",
				zap.String("wallet", follow.Wallet),
				zap.String("asset", group.Asset),
				zap.Error(err))
		}
	}
	return t.Repo.UpdateTraderFollowLastCheck(ctx, follow.ID, now)
}

func (t *Trader) mirror(ctx context.Context, follow *models.TraderFollow, group Consolidated) error {
	detected := &models.DetectedTrade{
		Wallet:         follow.Wallet,
		Asset:          group.Asset,
		Side:           group.Side,
		Price:          decimal.NewFromFloat(group.AvgPrice()),
		Size:           decimal.NewFromFloat(group.Size),
		USDCSize:       decimal.NewFromFloat(group.USDCSize),
		FillCount:      group.FillCount,
		MarketQuestion: group.Title,
		TradedAt:       group.LastSeen,
	}
	if err := t.Repo.InsertDetectedTrade(ctx, detected); err != nil {
		return err
	}

	switch group.Side {
	case "BUY":
		return t.mirrorBuy(ctx, follow, group)
	case "SELL":
		return t.mirrorSell(ctx, follow, group)
	default:
		return nil
	}
}

func (t *Trader) mirrorBuy(ctx context.Context, follow *models.TraderFollow, group Consolidated) error {
	amount := CopyAmount(group.USDCSize, follow.MaxAmount, follow.ExtraPct)
	if amount < minCopyUSD {
		return t.record(ctx, follow, group, StatusSkipped, "", 0, amount,
			fmt.Sprintf("amount $%.2f below minimum", amount))
	}
	if !t.Auth.Configured() {
		return t.record(ctx, follow, group, StatusSkipped, "", 0, amount, "no trading credentials")
	}
	order, err := t.Clob.MarketBuy(ctx, group.Asset, amount, t.Auth)
	if err != nil {
		_ = t.record(ctx, follow, group, StatusFailed, "", 0, amount, err.Error())
		return err
	}
	return t.record(ctx, follow, group, StatusExecuted, order.OrderID, 0, amount, "")
}

// mirrorSell exits our own full position when the leader sells, but only if
// we actually hold the token.
func (t *Trader) mirrorSell(ctx context.Context, follow *models.TraderFollow, group Consolidated) error {
	if !t.Auth.Configured() {
		return t.record(ctx, follow, group, StatusSkipped, "", 0, 0, "no trading credentials")
	}
	held, err := t.Clob.GetBalanceAllowance(ctx, group.Asset, t.Auth)
	if err != nil {
		return err
	}
	if held <= 0 {
		return t.record(ctx, follow, group, StatusSkipped, "", 0, 0, "no position held")
	}
	book, err := t.Clob.GetBook(ctx, group.Asset)
	if err != nil {
		return err
	}
	bestBid, _ := book.BestBid().Float64()
	price := bestBid - sellPriceShave
	if price < sellPriceFloor {
		price = sellPriceFloor
	}
	order, err := t.Clob.LimitSell(ctx, group.Asset, price, held, t.Auth)
	if err != nil {
		_ = t.record(ctx, follow, group, StatusFailed, "", held, 0, err.Error())
		return err
	}
	return t.record(ctx, follow, group, StatusExecuted, order.OrderID, held, 0, "")
}

func (t *Trader) record(ctx context.Context, follow *models.TraderFollow, group Consolidated, status, orderID string, size, amountUSD float64, errMsg string) error {
	return t.Repo.InsertExecutedTrade(ctx, &models.ExecutedTrade{
		Wallet:    follow.Wallet,
		Asset:     group.Asset,
		Side:      group.Side,
		Price:     decimal.NewFromFloat(group.AvgPrice()),
		Size:      decimal.NewFromFloat(size),
		AmountUSD: decimal.NewFromFloat(amountUSD),
		OrderID:   orderID,
		Status:    status,
		Error:     errMsg,
	})
}
