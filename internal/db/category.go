package db

// Category 投资分类，被 StockTrade 引用时禁止删除。
type Category struct {
	Base
	Name        string  `gorm:"size:50;not null"`
	Description *string `gorm:"type:text"`
}

func (Category) TableName() string {
	return "categories"
}
