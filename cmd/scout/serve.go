package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	cronrunner "polyscout/internal/cron"
	"polyscout/internal/handler"
	"polyscout/internal/scanner"

	_ "polyscout/docs"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with scheduled scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runServe(app)
		},
	}
}

func runServe(app *app) error {
	cfg := app.cfg
	log := app.logger

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(handler.RequestLogger(log))

	scan := app.newScanner()

	healthHandler := &handler.HealthHandler{DB: app.db.Gorm}
	healthHandler.Register(engine)
	scanHandler := &handler.ScanHandler{Scanner: scan, Repo: app.store}
	scanHandler.Register(engine)
	watchHandler := &handler.WatchConfigHandler{Repo: app.store}
	watchHandler.Register(engine)
	followHandler := &handler.FollowHandler{Repo: app.store, Config: cfg.CopyTrade}
	followHandler.Register(engine)
	daemonHandler := &handler.DaemonHandler{Repo: app.store}
	daemonHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled && cfg.Cron.Scan != "" {
		_, err := cronRunner.Add(cfg.Cron.Scan, func(ctx context.Context) {
			result, err := scan.Scan(ctx, scanner.Params{
				EnableAI:           cfg.Scanner.EnableAI,
				EnableDeepResearch: cfg.Scanner.EnableDeepResearch,
				EnableFacts:        cfg.Scanner.EnableFacts,
				ScanType:           "cron",
			})
			if err != nil {
				log.Warn("cron scan failed", zap.Error(err))
				return
			}
			log.Info("cron scan ok",
				zap.String("scan_id", result.ScanID),
				zap.Int("opportunities", len(result.Opportunities)),
			)
		})
		if err != nil {
			log.Warn("cron register scan failed", zap.Error(err))
		}
	}
	if cfg.Cron.Enabled && cfg.Cron.CacheSweep != "" {
		_, err := cronRunner.Add(cfg.Cron.CacheSweep, func(ctx context.Context) {
			if n := app.cache.Sweep(); n > 0 {
				log.Info("cache sweep removed expired entries", zap.Int("count", n))
			}
		})
		if err != nil {
			log.Warn("cron register cache sweep failed", zap.Error(err))
		}
	}
	if cfg.Cron.Enabled && cfg.Cron.HistorySweep != "" {
		_, err := cronRunner.Add(cfg.Cron.HistorySweep, func(ctx context.Context) {
			n, err := app.store.DeleteExpiredScanRecords(ctx, time.Now().UTC())
			if err != nil {
				log.Warn("scan history sweep failed", zap.Error(err))
				return
			}
			if n > 0 {
				log.Info("scan history sweep removed expired records", zap.Int64("count", n))
			}
		})
		if err != nil {
			log.Warn("cron register history sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
