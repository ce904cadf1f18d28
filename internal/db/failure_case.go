package db

import "gorm.io/datatypes"

// FailureCase 失败交易复盘案例。
type FailureCase struct {
	Base
	StockCode string                      `gorm:"size:10;not null"`
	StockName string                      `gorm:"size:50;not null"`
	Images    datatypes.JSONSlice[string] `gorm:"not null"`
	Reason    string                      `gorm:"type:text;not null"`
	Lessons   string                      `gorm:"type:text;not null"`
}

func (FailureCase) TableName() string {
	return "failure_cases"
}
