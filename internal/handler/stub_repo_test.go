package handler

import (
	"context"
	"time"

	"polyscout/internal/models"
	"polyscout/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It implements the full interface but each handler test uses only a slice of it.
type stubRepo struct {
	watchConfigs map[string]*models.WatchConfig
	follows      map[string]*models.TraderFollow
	daemons      map[string]*models.DaemonState
	detected     []models.DetectedTrade
	executed     []models.ExecutedTrade
	scans        map[string]*models.ScanRecord
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		watchConfigs: map[string]*models.WatchConfig{},
		follows:      map[string]*models.TraderFollow{},
		daemons:      map[string]*models.DaemonState{},
		scans:        map[string]*models.ScanRecord{},
	}
}

func (s *stubRepo) CreateWatchConfig(ctx context.Context, item *models.WatchConfig) error {
	s.watchConfigs[item.ID] = item
	return nil
}
func (s *stubRepo) GetWatchConfigByID(ctx context.Context, id string) (*models.WatchConfig, error) {
	return s.watchConfigs[id], nil
}
func (s *stubRepo) GetWatchConfigByTokenID(ctx context.Context, tokenID string) (*models.WatchConfig, error) {
	for _, cfg := range s.watchConfigs {
		if cfg.TokenID == tokenID {
			return cfg, nil
		}
	}
	return nil, nil
}
func (s *stubRepo) ListWatchConfigs(ctx context.Context) ([]models.WatchConfig, error) {
	out := make([]models.WatchConfig, 0, len(s.watchConfigs))
	for _, cfg := range s.watchConfigs {
		out = append(out, *cfg)
	}
	return out, nil
}
func (s *stubRepo) UpdateWatchConfig(ctx context.Context, item *models.WatchConfig) error {
	s.watchConfigs[item.ID] = item
	return nil
}
func (s *stubRepo) DeleteWatchConfig(ctx context.Context, id string) (bool, error) {
	if _, ok := s.watchConfigs[id]; !ok {
		return false, nil
	}
	delete(s.watchConfigs, id)
	return true, nil
}

func (s *stubRepo) CreateTraderFollow(ctx context.Context, item *models.TraderFollow) error {
	s.follows[item.ID] = item
	return nil
}
func (s *stubRepo) GetTraderFollowByID(ctx context.Context, id string) (*models.TraderFollow, error) {
	return s.follows[id], nil
}
func (s *stubRepo) GetTraderFollowByWallet(ctx context.Context, wallet string) (*models.TraderFollow, error) {
	for _, f := range s.follows {
		if f.Wallet == wallet {
			return f, nil
		}
	}
	return nil, nil
}
func (s *stubRepo) ListTraderFollows(ctx context.Context, activeOnly bool) ([]models.TraderFollow, error) {
	out := make([]models.TraderFollow, 0, len(s.follows))
	for _, f := range s.follows {
		if activeOnly && !f.Active {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}
func (s *stubRepo) SetTraderFollowActive(ctx context.Context, id string, active bool) (bool, error) {
	f, ok := s.follows[id]
	if !ok {
		return false, nil
	}
	f.Active = active
	return true, nil
}
func (s *stubRepo) UpdateTraderFollowLastCheck(ctx context.Context, id string, ts time.Time) error {
	if f, ok := s.follows[id]; ok {
		f.LastCheckTimestamp = &ts
	}
	return nil
}
func (s *stubRepo) DeleteTraderFollow(ctx context.Context, id string) (bool, error) {
	if _, ok := s.follows[id]; !ok {
		return false, nil
	}
	delete(s.follows, id)
	return true, nil
}

func (s *stubRepo) UpsertDaemonState(ctx context.Context, item *models.DaemonState) error {
	s.daemons[item.DaemonName] = item
	return nil
}
func (s *stubRepo) GetDaemonState(ctx context.Context, name string) (*models.DaemonState, error) {
	return s.daemons[name], nil
}
func (s *stubRepo) ListDaemonStates(ctx context.Context) ([]models.DaemonState, error) {
	out := make([]models.DaemonState, 0, len(s.daemons))
	for _, d := range s.daemons {
		out = append(out, *d)
	}
	return out, nil
}
func (s *stubRepo) TouchDaemonHeartbeat(ctx context.Context, name string, at time.Time) error {
	if d, ok := s.daemons[name]; ok {
		d.LastHeartbeat = &at
	}
	return nil
}
func (s *stubRepo) DeleteDaemonState(ctx context.Context, name string) error {
	delete(s.daemons, name)
	return nil
}

func (s *stubRepo) InsertDetectedTrade(ctx context.Context, item *models.DetectedTrade) error {
	s.detected = append(s.detected, *item)
	return nil
}
func (s *stubRepo) InsertExecutedTrade(ctx context.Context, item *models.ExecutedTrade) error {
	s.executed = append(s.executed, *item)
	return nil
}
func (s *stubRepo) ListDetectedTrades(ctx context.Context, params repository.ListTradesParams) ([]models.DetectedTrade, error) {
	return s.detected, nil
}
func (s *stubRepo) ListExecutedTrades(ctx context.Context, params repository.ListTradesParams) ([]models.ExecutedTrade, error) {
	return s.executed, nil
}

func (s *stubRepo) InsertScanRecord(ctx context.Context, item *models.ScanRecord) error {
	s.scans[item.ScanID] = item
	return nil
}
func (s *stubRepo) GetScanRecordByScanID(ctx context.Context, scanID string) (*models.ScanRecord, error) {
	return s.scans[scanID], nil
}
func (s *stubRepo) ListScanRecords(ctx context.Context, params repository.ListScansParams) ([]models.ScanRecord, error) {
	out := make([]models.ScanRecord, 0, len(s.scans))
	for _, r := range s.scans {
		out = append(out, *r)
	}
	return out, nil
}
func (s *stubRepo) DeleteScanRecord(ctx context.Context, scanID string) (bool, error) {
	if _, ok := s.scans[scanID]; !ok {
		return false, nil
	}
	delete(s.scans, scanID)
	return true, nil
}
func (s *stubRepo) DeleteExpiredScanRecords(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for id, r := range s.scans {
		if r.ExpiresAt.Before(before) {
			delete(s.scans, id)
			n++
		}
	}
	return n, nil
}

var _ repository.Repository = (*stubRepo)(nil)
