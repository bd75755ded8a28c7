package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polyscout/internal/ai"
	"polyscout/internal/apicache"
	"polyscout/internal/client/polymarket/clob"
	"polyscout/internal/client/polymarket/dataapi"
	"polyscout/internal/client/polymarket/gamma"
	"polyscout/internal/config"
	"polyscout/internal/db"
	"polyscout/internal/logger"
	gormrepository "polyscout/internal/repository/gorm"
	"polyscout/internal/scanner"
)

// app holds everything a subcommand needs after bootstrap.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	db      *db.DB
	store   *gormrepository.Store
	gamma   *gamma.Client
	clob    *clob.Client
	dataAPI *dataapi.Client
	auth    clob.TradingAuth
	cache   *apicache.Cache
}

func newApp(cmd *cobra.Command) (*app, func(), error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	envOnly, _ := cmd.Flags().GetBool("env-only")

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		log.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		db.Close(dbConn)
		log.Sync()
		return nil, nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  log,
		db:      dbConn,
		store:   gormrepository.New(dbConn.Gorm),
		gamma:   gamma.NewClient(&http.Client{Timeout: cfg.Gamma.Timeout}, cfg.Gamma.BaseURL),
		clob:    clob.NewClient(&http.Client{Timeout: cfg.ClobREST.Timeout}, cfg.ClobREST.BaseURL),
		dataAPI: dataapi.NewClient(&http.Client{Timeout: cfg.DataAPI.Timeout}, cfg.DataAPI.BaseURL),
		auth:    tradingAuth(cfg.ClobAuth),
		cache:   apicache.New(cfg.Cache.Dir, cfg.Cache.TTL),
	}
	cleanup := func() {
		db.Close(dbConn)
		log.Sync()
	}
	return a, cleanup, nil
}

// tradingAuth maps the config credentials onto the CLOB L2 header scheme.
func tradingAuth(cfg config.ClobAuthConfig) clob.TradingAuth {
	return clob.TradingAuth{
		APIKeyHeader:     "POLY-API-KEY",
		APIKey:           cfg.APIKey,
		APISecret:        cfg.APISecret,
		SignRequests:     cfg.APISecret != "",
		TimestampHeader:  "POLY-TIMESTAMP",
		SignatureHeader:  "POLY-SIGNATURE",
		Passphrase:       cfg.APIPassphrase,
		PassphraseHeader: "POLY-PASSPHRASE",
		Address:          cfg.Address,
		AddressHeader:    "POLY-ADDRESS",
	}
}

// newAIServices wires the shared limiter and credit guard into the three AI
// roles. Returns nils when no API key is configured so callers degrade to
// heuristics-only scans.
func (a *app) newAIServices() (*ai.Analyzer, *ai.Researcher, *ai.FactsGatherer) {
	if a.cfg.AI.APIKey == "" {
		a.logger.Info("ai api key not configured, running heuristics only")
		return nil, nil, nil
	}
	limiter := apicache.NewRateLimiter(a.cfg.AI.RequestsPerMinute, a.cfg.AI.MinRequestDelay)
	guard := ai.NewCreditGuard(a.cfg.AI.GuardResetAfter)
	base := ai.NewClient(a.cfg.AI.APIKey, a.cfg.AI.Model, a.cfg.AI.MaxTokens, limiter, guard, a.logger)
	researchModel := a.cfg.AI.ResearchModel
	if researchModel == "" {
		researchModel = a.cfg.AI.Model
	}
	research := ai.NewClient(a.cfg.AI.APIKey, researchModel, a.cfg.AI.MaxTokens, limiter, guard, a.logger)

	analyzer := &ai.Analyzer{Client: base, Cache: a.cache, Logger: a.logger, WebSearchMax: a.cfg.AI.WebSearchMaxUses}
	researcher := &ai.Researcher{Client: research, Cache: a.cache, Logger: a.logger, WebSearchMax: a.cfg.AI.ResearchWebSearchMax}
	facts := &ai.FactsGatherer{Client: base, Cache: a.cache, Logger: a.logger, WebSearchMax: a.cfg.AI.WebSearchMaxUses}
	return analyzer, researcher, facts
}

func (a *app) newScanner() *scanner.Scanner {
	analyzer, researcher, facts := a.newAIServices()
	return &scanner.Scanner{
		Gamma:      a.gamma,
		Clob:       a.clob,
		Repo:       a.store,
		Analyzer:   analyzer,
		Researcher: researcher,
		Facts:      facts,
		Enricher: &scanner.Enricher{
			DataAPI: a.dataAPI,
			Gamma:   a.gamma,
			Logger:  a.logger,
		},
		Logger:             a.logger,
		Config:             a.cfg.Scanner,
		AnalyzeConcurrency: a.cfg.AI.AnalysisConcurrency,
	}
}
