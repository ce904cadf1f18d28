package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
)

var ErrReferenceNotFound = errors.New("reference item not found")

// ReferenceService 管理交易体系/交易禁令这类结构相同、分表存储的参考条目
type ReferenceService struct {
	db    *gorm.DB
	table string
}

// ReferenceInput 创建条目；IsActive 省略时为 true
type ReferenceInput struct {
	Title     string
	Content   string
	IsActive  *bool
	SortOrder int
}

type ReferenceUpdate struct {
	Title     *string
	Content   *string
	IsActive  *bool
	SortOrder *int
}

// ReferenceFilter 列表筛选
type ReferenceFilter struct {
	OnlyActive bool
	Page
}

func NewTradingSystemService(gdb *gorm.DB) *ReferenceService {
	return &ReferenceService{db: gdb, table: db.TableTradingSystems}
}

func NewTradingRestrictionService(gdb *gorm.DB) *ReferenceService {
	return &ReferenceService{db: gdb, table: db.TableTradingRestrictions}
}

// Table 返回服务操作的表名
func (s *ReferenceService) Table() string {
	return s.table
}

func (s *ReferenceService) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

// List 按 sort_order、创建时间升序返回
func (s *ReferenceService) List(ctx context.Context, filter ReferenceFilter) ([]db.ReferenceItem, error) {
	page, err := filter.Page.normalized()
	if err != nil {
		return nil, err
	}

	query := s.scoped(ctx)
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var items []db.ReferenceItem
	if err := page.scope(query).
		Order("sort_order asc").
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	return items, nil
}

func (s *ReferenceService) Get(ctx context.Context, id uuid.UUID) (*db.ReferenceItem, error) {
	var item db.ReferenceItem
	if err := s.scoped(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.table, err)
	}
	return &item, nil
}

func (s *ReferenceService) Create(ctx context.Context, input ReferenceInput) (*db.ReferenceItem, error) {
	item := db.ReferenceItem{
		Title:     strings.TrimSpace(input.Title),
		Content:   strings.TrimSpace(input.Content),
		IsActive:  true,
		SortOrder: input.SortOrder,
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := validateReference(item); err != nil {
		return nil, err
	}

	if err := s.scoped(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create %s: %w", s.table, err)
	}
	return &item, nil
}

func (s *ReferenceService) Update(ctx context.Context, id uuid.UUID, input ReferenceUpdate) (*db.ReferenceItem, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	updates := map[string]any{}
	if input.Title != nil {
		merged.Title = strings.TrimSpace(*input.Title)
		updates["title"] = merged.Title
	}
	if input.Content != nil {
		merged.Content = strings.TrimSpace(*input.Content)
		updates["content"] = merged.Content
	}
	if input.IsActive != nil {
		merged.IsActive = *input.IsActive
		updates["is_active"] = merged.IsActive
	}
	if input.SortOrder != nil {
		merged.SortOrder = *input.SortOrder
		updates["sort_order"] = merged.SortOrder
	}
	if len(updates) == 0 {
		return existing, nil
	}
	if err := validateReference(merged); err != nil {
		return nil, err
	}

	if err := s.scoped(ctx).Model(existing).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update %s: %w", s.table, err)
	}
	return s.Get(ctx, id)
}

func (s *ReferenceService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.scoped(ctx).Where("id = ?", id).Delete(&db.ReferenceItem{})
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", s.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

func validateReference(item db.ReferenceItem) error {
	if err := requireText("title", item.Title, 100); err != nil {
		return err
	}
	return requireText("content", item.Content, 0)
}
