package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"polyscout/internal/models"
	"polyscout/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Watch configs ----------------------------------------------------------

func (s *Store) CreateWatchConfig(ctx context.Context, item *models.WatchConfig) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetWatchConfigByID(ctx context.Context, id string) (*models.WatchConfig, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.WatchConfig
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetWatchConfigByTokenID(ctx context.Context, tokenID string) (*models.WatchConfig, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, nil
	}
	var item models.WatchConfig
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListWatchConfigs(ctx context.Context) ([]models.WatchConfig, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.WatchConfig
	if err := s.db.WithContext(ctx).
		Model(&models.WatchConfig{}).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateWatchConfig(ctx context.Context, item *models.WatchConfig) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteWatchConfig(ctx context.Context, id string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WatchConfig{})
	return res.RowsAffected > 0, res.Error
}

// --- Trader follows ---------------------------------------------------------

func (s *Store) CreateTraderFollow(ctx context.Context, item *models.TraderFollow) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Wallet = strings.ToLower(strings.TrimSpace(item.Wallet))
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetTraderFollowByID(ctx context.Context, id string) (*models.TraderFollow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.TraderFollow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetTraderFollowByWallet(ctx context.Context, wallet string) (*models.TraderFollow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, nil
	}
	var item models.TraderFollow
	err := s.db.WithContext(ctx).Where("wallet = ?", wallet).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTraderFollows(ctx context.Context, activeOnly bool) ([]models.TraderFollow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.TraderFollow{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var items []models.TraderFollow
	if err := query.Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SetTraderFollowActive(ctx context.Context, id string, active bool) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.TraderFollow{}).
		Where("id = ?", id).
		Update("active", active)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) UpdateTraderFollowLastCheck(ctx context.Context, id string, ts time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.TraderFollow{}).
		Where("id = ?", id).
		Update("last_check_timestamp", ts).Error
}

func (s *Store) DeleteTraderFollow(ctx context.Context, id string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TraderFollow{})
	return res.RowsAffected > 0, res.Error
}

// --- Daemon states ----------------------------------------------------------

func (s *Store) UpsertDaemonState(ctx context.Context, item *models.DaemonState) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.DaemonName) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "daemon_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pid",
			"started_at",
			"last_heartbeat",
		}),
	}).Create(item).Error
}

func (s *Store) GetDaemonState(ctx context.Context, name string) (*models.DaemonState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var item models.DaemonState
	err := s.db.WithContext(ctx).Where("daemon_name = ?", name).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListDaemonStates(ctx context.Context) ([]models.DaemonState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.DaemonState
	if err := s.db.WithContext(ctx).
		Model(&models.DaemonState{}).
		Order("daemon_name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) TouchDaemonHeartbeat(ctx context.Context, name string, at time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.DaemonState{}).
		Where("daemon_name = ?", name).
		Update("last_heartbeat", at).Error
}

func (s *Store) DeleteDaemonState(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("daemon_name = ?", name).Delete(&models.DaemonState{}).Error
}

// --- Copy-trade audit trail -------------------------------------------------

func (s *Store) InsertDetectedTrade(ctx context.Context, item *models.DetectedTrade) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) InsertExecutedTrade(ctx context.Context, item *models.ExecutedTrade) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListDetectedTrades(ctx context.Context, params repository.ListTradesParams) ([]models.DetectedTrade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.DetectedTrade{})
	query = applyTradeFilters(query, params)
	var items []models.DetectedTrade
	if err := query.
		Order("traded_at desc").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListExecutedTrades(ctx context.Context, params repository.ListTradesParams) ([]models.ExecutedTrade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ExecutedTrade{})
	query = applyTradeFilters(query, params)
	var items []models.ExecutedTrade
	if err := query.
		Order("created_at desc").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Scan history -----------------------------------------------------------

func (s *Store) InsertScanRecord(ctx context.Context, item *models.ScanRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetScanRecordByScanID(ctx context.Context, scanID string) (*models.ScanRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	scanID = strings.TrimSpace(scanID)
	if scanID == "" {
		return nil, nil
	}
	var item models.ScanRecord
	err := s.db.WithContext(ctx).Where("scan_id = ?", scanID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListScanRecords(ctx context.Context, params repository.ListScansParams) ([]models.ScanRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ScanRecord{})
	if st := strings.TrimSpace(params.ScanType); st != "" {
		query = query.Where("scan_type = ?", st)
	}
	var items []models.ScanRecord
	if err := query.
		Order("created_at desc").
		Limit(normalizeLimit(params.Limit, 50)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteScanRecord(ctx context.Context, scanID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	scanID = strings.TrimSpace(scanID)
	if scanID == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).Where("scan_id = ?", scanID).Delete(&models.ScanRecord{})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) DeleteExpiredScanRecords(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		before = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.ScanRecord{})
	return res.RowsAffected, res.Error
}

// --- helpers ----------------------------------------------------------------

func applyTradeFilters(query *gorm.DB, params repository.ListTradesParams) *gorm.DB {
	if wallet := strings.ToLower(strings.TrimSpace(params.Wallet)); wallet != "" {
		query = query.Where("wallet = ?", wallet)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var _ repository.Repository = (*Store)(nil)
