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

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is referenced by stock trades")
)

// CategoryService 负责投资分类的增删改查
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput 创建分类时的字段
type CategoryInput struct {
	Name        string
	Description *string
}

// CategoryUpdate 更新分类时的字段，未设置的字段保持不变
type CategoryUpdate struct {
	Name        *string
	Description Optional[string]
}

func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List 按创建时间升序返回分类
func (s *CategoryService) List(ctx context.Context, page Page) ([]db.Category, error) {
	page, err := page.normalized()
	if err != nil {
		return nil, err
	}

	var categories []db.Category
	if err := page.scope(s.db.WithContext(ctx)).
		Order("created_at asc").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*db.Category, error) {
	var category db.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

// Exists 供交易服务校验外键
func (s *CategoryService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return count > 0, nil
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*db.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := requireText("name", name, 50); err != nil {
		return nil, err
	}

	category := db.Category{
		Name:        name,
		Description: trimOptionalText(input.Description),
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input CategoryUpdate) (*db.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := requireText("name", name, 50); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if input.Description.Set {
		updates["description"] = trimOptionalText(input.Description.Value)
	}
	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete 在分类仍被交易引用时拒绝删除
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.StockTrade{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("count category trades: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.db.WithContext(ctx).Delete(&db.Category{}, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func trimOptionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
