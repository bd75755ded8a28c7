package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScanRecord is one completed scan run. Opportunities are stored as a single
// jsonb document: scans are read back whole, never queried per market.
type ScanRecord struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	ScanID string `gorm:"type:varchar(40);not null;uniqueIndex"`

	ScanType   string         `gorm:"type:varchar(20);not null;index"`
	Parameters datatypes.JSON `gorm:"type:jsonb"`

	OpportunitiesCount int            `gorm:"not null"`
	Opportunities      datatypes.JSON `gorm:"type:jsonb"`
	Stats              datatypes.JSON `gorm:"type:jsonb"`

	RetentionHours int       `gorm:"not null"`
	ExpiresAt      time.Time `gorm:"type:timestamptz;not null;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (ScanRecord) TableName() string {
	return "scan_records"
}
