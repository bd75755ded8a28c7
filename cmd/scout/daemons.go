package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polyscout/internal/client/polymarket/clob"
	"polyscout/internal/copytrade"
	"polyscout/internal/daemon"
	"polyscout/internal/ids"
	"polyscout/internal/models"
	"polyscout/internal/monitor"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch open positions and sell on take-profit or stop-loss",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runMonitor(app)
		},
	}
	cmd.AddCommand(newMonitorAddCmd(), newMonitorListCmd(), newMonitorDeleteCmd())
	return cmd
}

func newMonitorAddCmd() *cobra.Command {
	var (
		token    string
		question string
		entry    float64
		size     float64
		tpPct    float64
		slPct    float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a watch config for a held position",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			existing, err := app.store.GetWatchConfigByTokenID(ctx, token)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("watch config %s already exists for token %s", existing.ID, token)
			}
			cfg, err := monitor.BuildConfig(token, question, entry, size, tpPct, slPct)
			if err != nil {
				return err
			}
			if err := app.store.CreateWatchConfig(ctx, cfg); err != nil {
				return err
			}
			app.logger.Info("watch config created",
				zap.String("config_id", cfg.ID),
				zap.String("token_id", cfg.TokenID))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "outcome token id (required)")
	cmd.Flags().StringVar(&question, "question", "", "market question for display")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (required)")
	cmd.Flags().Float64Var(&size, "size", 0, "position size in shares (required)")
	cmd.Flags().Float64Var(&tpPct, "tp-pct", 0, "take profit as a fraction of entry")
	cmd.Flags().Float64Var(&slPct, "sl-pct", 0, "stop loss as a fraction of entry")
	return cmd
}

func newMonitorListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watch configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := app.store.ListWatchConfigs(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}
}

func newMonitorDeleteCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a watch config, or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) != 1 {
				return fmt.Errorf("pass a config id or --all")
			}
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if all {
				items, err := app.store.ListWatchConfigs(ctx)
				if err != nil {
					return err
				}
				for _, item := range items {
					if _, err := app.store.DeleteWatchConfig(ctx, item.ID); err != nil {
						return err
					}
				}
				app.logger.Info("watch configs deleted", zap.Int("count", len(items)))
				return nil
			}
			deleted, err := app.store.DeleteWatchConfig(ctx, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("watch config %s not found", args[0])
			}
			app.logger.Info("watch config deleted", zap.String("config_id", args[0]))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every watch config")
	return cmd
}

func runMonitor(app *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registrar := &daemon.Registrar{Repo: app.store, Logger: app.logger}
	if err := registrar.Acquire(ctx, daemon.NameMonitor); err != nil {
		return err
	}
	defer releaseDaemon(registrar, daemon.NameMonitor)
	go registrar.RunHeartbeat(ctx, daemon.NameMonitor, time.Minute)

	var prices *monitor.PriceCache
	if app.cfg.ClobWS.Enabled {
		prices = monitor.NewPriceCache(2 * app.cfg.Monitor.Interval)
		stream := clob.NewMarketStream(clob.MarketStreamOptions{
			URL:             app.cfg.ClobWS.URL,
			RefreshInterval: app.cfg.ClobWS.RefreshInterval,
			Logger:          app.logger,
			AssetIDProvider: func(ctx context.Context) ([]string, error) {
				configs, err := app.store.ListWatchConfigs(ctx)
				if err != nil {
					return nil, err
				}
				tokens := make([]string, 0, len(configs))
				for _, cfg := range configs {
					tokens = append(tokens, cfg.TokenID)
				}
				if max := app.cfg.ClobWS.MaxAssets; max > 0 && len(tokens) > max {
					tokens = tokens[:max]
				}
				return tokens, nil
			},
		})
		go func() {
			if err := stream.Run(ctx, prices.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
				app.logger.Warn("market stream stopped", zap.Error(err))
			}
		}()
	}

	watcher := &monitor.Watcher{
		Repo:   app.store,
		Clob:   app.clob,
		Auth:   app.auth,
		Prices: prices,
		Logger: app.logger,
	}
	err := watcher.Run(ctx, app.cfg.Monitor.Interval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newCopyTradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copytrade",
		Short: "Mirror trades of followed wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runCopyTrade(app)
		},
	}
	cmd.AddCommand(newFollowAddCmd(), newFollowListCmd(), newFollowDeleteCmd())
	return cmd
}

func newFollowAddCmd() *cobra.Command {
	var (
		wallet    string
		nickname  string
		maxAmount float64
		extraPct  float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Follow a trader wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			wallet = strings.ToLower(strings.TrimSpace(wallet))
			if wallet == "" {
				return fmt.Errorf("wallet is required")
			}
			existing, err := app.store.GetTraderFollowByWallet(ctx, wallet)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("wallet already followed as %s", existing.ID)
			}
			if maxAmount <= 0 {
				maxAmount = app.cfg.CopyTrade.DefaultMaxAmount
			}
			if extraPct < 0 {
				extraPct = app.cfg.CopyTrade.DefaultExtraPct
			}
			item := &models.TraderFollow{
				ID:        ids.New(6),
				Wallet:    wallet,
				Nickname:  nickname,
				MaxAmount: maxAmount,
				ExtraPct:  extraPct,
				Active:    true,
			}
			if err := app.store.CreateTraderFollow(ctx, item); err != nil {
				return err
			}
			app.logger.Info("wallet followed",
				zap.String("follow_id", item.ID),
				zap.String("wallet", item.Wallet))
			return nil
		},
	}
	cmd.Flags().StringVar(&wallet, "wallet", "", "wallet address to follow (required)")
	cmd.Flags().StringVar(&nickname, "nickname", "", "display name for the wallet")
	cmd.Flags().Float64Var(&maxAmount, "max-amount", 0, "max USD copied per trade")
	cmd.Flags().Float64Var(&extraPct, "extra-pct", -1, "fraction of the overflow beyond max-amount to copy")
	return cmd
}

func newFollowListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List followed wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := app.store.ListTraderFollows(cmd.Context(), false)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}
}

func newFollowDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Stop following a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := app.store.DeleteTraderFollow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("follow %s not found", args[0])
			}
			app.logger.Info("follow deleted", zap.String("follow_id", args[0]))
			return nil
		},
	}
}

func runCopyTrade(app *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registrar := &daemon.Registrar{Repo: app.store, Logger: app.logger}
	if err := registrar.Acquire(ctx, daemon.NameCopyTrade); err != nil {
		return err
	}
	defer releaseDaemon(registrar, daemon.NameCopyTrade)
	go registrar.RunHeartbeat(ctx, daemon.NameCopyTrade, time.Minute)

	trader := &copytrade.Trader{
		Repo:    app.store,
		DataAPI: app.dataAPI,
		Clob:    app.clob,
		Auth:    app.auth,
		Logger:  app.logger,
		Config:  app.cfg.CopyTrade,
	}
	err := trader.Run(ctx, app.cfg.CopyTrade.Interval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// releaseDaemon clears the ownership row with a fresh context since the run
// context is already canceled during shutdown.
func releaseDaemon(r *daemon.Registrar, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = r.Release(ctx, name)
}
