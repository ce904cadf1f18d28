package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyFund 每日资金快照，FundDate 全表唯一。
// StockAmount 与 CashAmount 均不能超过 TotalAmount。
type DailyFund struct {
	Base
	FundDate       time.Time        `gorm:"not null;uniqueIndex"`
	TotalAmount    decimal.Decimal  `gorm:"type:numeric(15,2);not null"`
	StockAmount    decimal.Decimal  `gorm:"type:numeric(15,2);not null"`
	CashAmount     decimal.Decimal  `gorm:"type:numeric(15,2);not null"`
	ProfitAmount   *decimal.Decimal `gorm:"type:numeric(15,2)"`
	ProfitRate     *decimal.Decimal `gorm:"type:numeric(8,4)"`
	CumulativeRate *decimal.Decimal `gorm:"type:numeric(8,4)"`
	Notes          *string          `gorm:"type:text"`
}

func (DailyFund) TableName() string {
	return "daily_funds"
}
