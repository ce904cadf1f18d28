package db

// Models 返回需要迁移的全部模型，测试也用它建表。
func Models() []any {
	return []any{
		&Category{},
		&StockTrade{},
		&FailureCase{},
		&DailyReview{},
		&DailyFund{},
		&TradingSystem{},
		&TradingRestriction{},
	}
}

// AutoMigrate 为所有模型建表并补齐索引。
func AutoMigrate(handle *DB) error {
	if handle == nil || handle.Gorm == nil {
		return nil
	}
	return handle.Gorm.AutoMigrate(Models()...)
}
