package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecutedTrade is an order we placed while mirroring a followed wallet.
type ExecutedTrade struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	Wallet string `gorm:"type:varchar(64);not null;index"`

	Asset string `gorm:"type:varchar(100);not null;index"`
	Side  string `gorm:"type:varchar(10);not null"`

	Price     decimal.Decimal `gorm:"type:numeric(20,10)"`
	Size      decimal.Decimal `gorm:"type:numeric(30,10)"`
	AmountUSD decimal.Decimal `gorm:"type:numeric(30,10)"`

	OrderID string `gorm:"type:varchar(100)"`
	Status  string `gorm:"type:varchar(20);not null;index"`
	Error   string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (ExecutedTrade) TableName() string {
	return "executed_trades"
}
