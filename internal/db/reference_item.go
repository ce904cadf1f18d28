package db

// ReferenceItem 是交易体系与交易禁令共用的列结构。
// 两者结构一致但分表存储，服务层通过表名区分。
type ReferenceItem struct {
	Base
	Title     string `gorm:"size:100;not null"`
	Content   string `gorm:"type:text;not null"`
	IsActive  bool   `gorm:"not null"`
	SortOrder int    `gorm:"not null;index"`
}

// TradingSystem 交易体系条目
type TradingSystem struct {
	ReferenceItem
}

func (TradingSystem) TableName() string {
	return TableTradingSystems
}

// TradingRestriction 交易禁令条目
type TradingRestriction struct {
	ReferenceItem
}

func (TradingRestriction) TableName() string {
	return TableTradingRestrictions
}

const (
	TableTradingSystems      = "trading_systems"
	TableTradingRestrictions = "trading_restrictions"
)
