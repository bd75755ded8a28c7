package repository

import (
	"context"
	"time"

	"polyscout/internal/models"
)

type ListTradesParams struct {
	Wallet string
	Since  *time.Time
	Limit  int
	Offset int
}

type ListScansParams struct {
	ScanType string
	Limit    int
	Offset   int
}

// Repository is the persistence surface shared by the scanner, the TP/SL
// watcher, the copy trader and the HTTP handlers. Implementations return
// (nil, nil) for lookups that find nothing.
type Repository interface {
	// Watch configs (TP/SL).
	CreateWatchConfig(ctx context.Context, item *models.WatchConfig) error
	GetWatchConfigByID(ctx context.Context, id string) (*models.WatchConfig, error)
	GetWatchConfigByTokenID(ctx context.Context, tokenID string) (*models.WatchConfig, error)
	ListWatchConfigs(ctx context.Context) ([]models.WatchConfig, error)
	UpdateWatchConfig(ctx context.Context, item *models.WatchConfig) error
	DeleteWatchConfig(ctx context.Context, id string) (bool, error)

	// Trader follows (copy trading).
	CreateTraderFollow(ctx context.Context, item *models.TraderFollow) error
	GetTraderFollowByID(ctx context.Context, id string) (*models.TraderFollow, error)
	GetTraderFollowByWallet(ctx context.Context, wallet string) (*models.TraderFollow, error)
	ListTraderFollows(ctx context.Context, activeOnly bool) ([]models.TraderFollow, error)
	SetTraderFollowActive(ctx context.Context, id string, active bool) (bool, error)
	UpdateTraderFollowLastCheck(ctx context.Context, id string, ts time.Time) error
	DeleteTraderFollow(ctx context.Context, id string) (bool, error)

	// Daemon ownership.
	UpsertDaemonState(ctx context.Context, item *models.DaemonState) error
	GetDaemonState(ctx context.Context, name string) (*models.DaemonState, error)
	ListDaemonStates(ctx context.Context) ([]models.DaemonState, error)
	TouchDaemonHeartbeat(ctx context.Context, name string, at time.Time) error
	DeleteDaemonState(ctx context.Context, name string) error

	// Copy-trade audit trail.
	InsertDetectedTrade(ctx context.Context, item *models.DetectedTrade) error
	InsertExecutedTrade(ctx context.Context, item *models.ExecutedTrade) error
	ListDetectedTrades(ctx context.Context, params ListTradesParams) ([]models.DetectedTrade, error)
	ListExecutedTrades(ctx context.Context, params ListTradesParams) ([]models.ExecutedTrade, error)

	// Scan history.
	InsertScanRecord(ctx context.Context, item *models.ScanRecord) error
	GetScanRecordByScanID(ctx context.Context, scanID string) (*models.ScanRecord, error)
	ListScanRecords(ctx context.Context, params ListScansParams) ([]models.ScanRecord, error)
	DeleteScanRecord(ctx context.Context, scanID string) (bool, error)
	DeleteExpiredScanRecords(ctx context.Context, before time.Time) (int64, error)
}
