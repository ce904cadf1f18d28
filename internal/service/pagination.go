package service

import "gorm.io/gorm"

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page 是列表接口通用的 offset/limit 分页参数。
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalized() (Page, error) {
	if p.Skip < 0 {
		return p, invalid("skip", "must not be negative")
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		return p, invalid("limit", "must not exceed 1000")
	}
	return p, nil
}

func (p Page) scope(tx *gorm.DB) *gorm.DB {
	return tx.Offset(p.Skip).Limit(p.Limit)
}
