package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StockTrade 单笔股票交易。SellDate 与 SellPrice 同时存在时视为已平仓。
type StockTrade struct {
	Base
	StockCode      string                      `gorm:"size:10;not null"`
	StockName      string                      `gorm:"size:50;not null"`
	BuyDate        time.Time                   `gorm:"not null;index"`
	BuyPrice       decimal.Decimal             `gorm:"type:numeric(10,2);not null"`
	BuyQuantity    int                         `gorm:"not null"`
	SellDate       *time.Time
	SellPrice      *decimal.Decimal            `gorm:"type:numeric(10,2)"`
	ScreenshotURLs datatypes.JSONSlice[string] `gorm:"column:screenshot_url"`
	BuyReason      string                      `gorm:"type:text;not null"`
	CategoryID     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Category       *Category                   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (StockTrade) TableName() string {
	return "stock_trades"
}

// IsClosed 判断交易是否已卖出。
func (t StockTrade) IsClosed() bool {
	return t.SellDate != nil && t.SellPrice != nil
}
