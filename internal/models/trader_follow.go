package models

import (
	"time"
)

// TraderFollow is a wallet the copy trader mirrors. Wallet addresses are
// stored lowercased so the unique index is case-insensitive in practice.
type TraderFollow struct {
	ID     string `gorm:"type:varchar(12);primaryKey"`
	Wallet string `gorm:"type:varchar(64);not null;uniqueIndex"`

	Nickname  string  `gorm:"type:varchar(100)"`
	MaxAmount float64 `gorm:"not null"`
	ExtraPct  float64 `gorm:"not null"`
	Active    bool    `gorm:"not null;default:true;index"`

	// LastCheckTimestamp is nil until the first poll; the first poll only
	// records a baseline and never copies historical trades.
	LastCheckTimestamp *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (TraderFollow) TableName() string {
	return "trader_follows"
}
