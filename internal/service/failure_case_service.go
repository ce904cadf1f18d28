package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
)

var ErrFailureCaseNotFound = errors.New("failure case not found")

// FailureCaseService 管理失败案例复盘
type FailureCaseService struct {
	db *gorm.DB
}

type FailureCaseInput struct {
	StockCode string
	StockName string
	Images    []string
	Reason    string
	Lessons   string
}

type FailureCaseUpdate struct {
	StockCode *string
	StockName *string
	Images    *[]string
	Reason    *string
	Lessons   *string
}

func NewFailureCaseService(gdb *gorm.DB) *FailureCaseService {
	return &FailureCaseService{db: gdb}
}

// List 按创建时间倒序返回
func (s *FailureCaseService) List(ctx context.Context, page Page) ([]db.FailureCase, error) {
	page, err := page.normalized()
	if err != nil {
		return nil, err
	}

	var cases []db.FailureCase
	if err := page.scope(s.db.WithContext(ctx)).
		Order("created_at desc").
		Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("list failure cases: %w", err)
	}
	return cases, nil
}

func (s *FailureCaseService) Get(ctx context.Context, id uuid.UUID) (*db.FailureCase, error) {
	var fc db.FailureCase
	if err := s.db.WithContext(ctx).First(&fc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFailureCaseNotFound
		}
		return nil, fmt.Errorf("get failure case: %w", err)
	}
	return &fc, nil
}

func (s *FailureCaseService) Create(ctx context.Context, input FailureCaseInput) (*db.FailureCase, error) {
	fc := db.FailureCase{
		StockCode: strings.TrimSpace(input.StockCode),
		StockName: strings.TrimSpace(input.StockName),
		Images:    imageList(input.Images),
		Reason:    strings.TrimSpace(input.Reason),
		Lessons:   strings.TrimSpace(input.Lessons),
	}
	if err := validateFailureCase(fc); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&fc).Error; err != nil {
		return nil, fmt.Errorf("create failure case: %w", err)
	}
	return &fc, nil
}

func (s *FailureCaseService) Update(ctx context.Context, id uuid.UUID, input FailureCaseUpdate) (*db.FailureCase, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	updates := map[string]any{}
	if input.StockCode != nil {
		merged.StockCode = strings.TrimSpace(*input.StockCode)
		updates["stock_code"] = merged.StockCode
	}
	if input.StockName != nil {
		merged.StockName = strings.TrimSpace(*input.StockName)
		updates["stock_name"] = merged.StockName
	}
	if input.Images != nil {
		merged.Images = imageList(*input.Images)
		updates["images"] = merged.Images
	}
	if input.Reason != nil {
		merged.Reason = strings.TrimSpace(*input.Reason)
		updates["reason"] = merged.Reason
	}
	if input.Lessons != nil {
		merged.Lessons = strings.TrimSpace(*input.Lessons)
		updates["lessons"] = merged.Lessons
	}
	if len(updates) == 0 {
		return existing, nil
	}
	if err := validateFailureCase(merged); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update failure case: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *FailureCaseService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&db.FailureCase{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete failure case: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFailureCaseNotFound
	}
	return nil
}

func validateFailureCase(fc db.FailureCase) error {
	if err := requireText("stock_code", fc.StockCode, 10); err != nil {
		return err
	}
	if err := requireText("stock_name", fc.StockName, 50); err != nil {
		return err
	}
	if len(fc.Images) == 0 {
		return invalid("images", "must contain at least one url")
	}
	if err := requireText("reason", fc.Reason, 0); err != nil {
		return err
	}
	return requireText("lessons", fc.Lessons, 0)
}

// imageList 去掉空白地址
func imageList(urls []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(urls))
	for _, url := range urls {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
