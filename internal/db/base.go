package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base 为所有表提供 UUID 主键与创建/更新时间。
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate 在主键为空时生成 UUID。
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// NormalizeDate 将时间截断为 UTC 零点，用作日期列的存储形式。
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
