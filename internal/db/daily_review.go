package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReview 每日大盘复盘，ReviewDate 全表唯一
type DailyReview struct {
	Base
	ReviewDate       time.Time       `gorm:"not null;uniqueIndex"`
	MarketIndex      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	TradingAmount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MarketChangeRate decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	LimitUpCount     int             `gorm:"not null"`
	LimitDownCount   int             `gorm:"not null"`
	RiseCount        int             `gorm:"not null"`
	FallCount        int             `gorm:"not null"`
	Content          string          `gorm:"type:text;not null"`
}

func (DailyReview) TableName() string {
	return "daily_reviews"
}
