package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DetectedTrade is one consolidated fill group observed on a followed wallet.
type DetectedTrade struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	Wallet string `gorm:"type:varchar(64);not null;index"`

	Asset string `gorm:"type:varchar(100);not null;index"`
	Side  string `gorm:"type:varchar(10);not null"`

	Price     decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	Size      decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	USDCSize  decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	FillCount int             `gorm:"not null;default:1"`

	MarketQuestion string `gorm:"type:text"`

	TradedAt  time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (DetectedTrade) TableName() string {
	return "detected_trades"
}
