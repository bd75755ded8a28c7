package db

import (
	"polyscout/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.WatchConfig{},
		&models.TraderFollow{},
		&models.DaemonState{},
		&models.DetectedTrade{},
		&models.ExecutedTrade{},
		&models.ScanRecord{},
	)
}
