package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WatchConfig is a take-profit / stop-loss watch on a held position.
// Prices are absolute: percentage inputs are converted at creation time.
// Deleting the row is the terminal transition once the position is closed.
type WatchConfig struct {
	ID      string `gorm:"type:varchar(12);primaryKey"`
	TokenID string `gorm:"type:varchar(100);not null;uniqueIndex"`

	MarketQuestion string `gorm:"type:text"`

	EntryPrice      decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	Size            decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	TakeProfitPrice decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	StopLossPrice   decimal.Decimal `gorm:"type:numeric(20,10);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (WatchConfig) TableName() string {
	return "watch_configs"
}
