package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
)

var (
	ErrReviewNotFound   = errors.New("daily review not found")
	ErrReviewDateExists = errors.New("daily review for this date already exists")
)

// DailyReviewService 管理每日复盘，复盘日期全局唯一
type DailyReviewService struct {
	db *gorm.DB
}

type DailyReviewInput struct {
	ReviewDate       time.Time
	MarketIndex      decimal.Decimal
	TradingAmount    decimal.Decimal
	MarketChangeRate decimal.Decimal
	LimitUpCount     int
	LimitDownCount   int
	RiseCount        int
	FallCount        int
	Content          string
}

type DailyReviewUpdate struct {
	ReviewDate       *time.Time
	MarketIndex      *decimal.Decimal
	TradingAmount    *decimal.Decimal
	MarketChangeRate *decimal.Decimal
	LimitUpCount     *int
	LimitDownCount   *int
	RiseCount        *int
	FallCount        *int
	Content          *string
}

func NewDailyReviewService(gdb *gorm.DB) *DailyReviewService {
	return &DailyReviewService{db: gdb}
}

// List 按复盘日期倒序返回
func (s *DailyReviewService) List(ctx context.Context, page Page) ([]db.DailyReview, error) {
	page, err := page.normalized()
	if err != nil {
		return nil, err
	}

	var reviews []db.DailyReview
	if err := page.scope(s.db.WithContext(ctx)).
		Order("review_date desc").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list daily reviews: %w", err)
	}
	return reviews, nil
}

func (s *DailyReviewService) Get(ctx context.Context, id uuid.UUID) (*db.DailyReview, error) {
	return s.first(ctx, "id = ?", id)
}

// GetByDate 按日期查询，忽略时分秒
func (s *DailyReviewService) GetByDate(ctx context.Context, date time.Time) (*db.DailyReview, error) {
	return s.first(ctx, "review_date = ?", db.NormalizeDate(date))
}

func (s *DailyReviewService) Create(ctx context.Context, input DailyReviewInput) (*db.DailyReview, error) {
	review := db.DailyReview{
		ReviewDate:       db.NormalizeDate(input.ReviewDate),
		MarketIndex:      input.MarketIndex,
		TradingAmount:    input.TradingAmount,
		MarketChangeRate: input.MarketChangeRate,
		LimitUpCount:     input.LimitUpCount,
		LimitDownCount:   input.LimitDownCount,
		RiseCount:        input.RiseCount,
		FallCount:        input.FallCount,
		Content:          strings.TrimSpace(input.Content),
	}
	if err := validateDailyReview(review); err != nil {
		return nil, err
	}
	if err := s.ensureDateFree(ctx, review.ReviewDate, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrReviewDateExists
		}
		return nil, fmt.Errorf("create daily review: %w", err)
	}
	return &review, nil
}

func (s *DailyReviewService) Update(ctx context.Context, id uuid.UUID, input DailyReviewUpdate) (*db.DailyReview, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	updates := map[string]any{}
	if input.ReviewDate != nil {
		merged.ReviewDate = db.NormalizeDate(*input.ReviewDate)
		updates["review_date"] = merged.ReviewDate
	}
	if input.MarketIndex != nil {
		merged.MarketIndex = *input.MarketIndex
		updates["market_index"] = merged.MarketIndex
	}
	if input.TradingAmount != nil {
		merged.TradingAmount = *input.TradingAmount
		updates["trading_amount"] = merged.TradingAmount
	}
	if input.MarketChangeRate != nil {
		merged.MarketChangeRate = *input.MarketChangeRate
		updates["market_change_rate"] = merged.MarketChangeRate
	}
	if input.LimitUpCount != nil {
		merged.LimitUpCount = *input.LimitUpCount
		updates["limit_up_count"] = merged.LimitUpCount
	}
	if input.LimitDownCount != nil {
		merged.LimitDownCount = *input.LimitDownCount
		updates["limit_down_count"] = merged.LimitDownCount
	}
	if input.RiseCount != nil {
		merged.RiseCount = *input.RiseCount
		updates["rise_count"] = merged.RiseCount
	}
	if input.FallCount != nil {
		merged.FallCount = *input.FallCount
		updates["fall_count"] = merged.FallCount
	}
	if input.Content != nil {
		merged.Content = strings.TrimSpace(*input.Content)
		updates["content"] = merged.Content
	}
	if len(updates) == 0 {
		return existing, nil
	}
	if err := validateDailyReview(merged); err != nil {
		return nil, err
	}
	if !merged.ReviewDate.Equal(existing.ReviewDate) {
		if err := s.ensureDateFree(ctx, merged.ReviewDate, id); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrReviewDateExists
		}
		return nil, fmt.Errorf("update daily review: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *DailyReviewService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&db.DailyReview{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete daily review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *DailyReviewService) first(ctx context.Context, query string, arg any) (*db.DailyReview, error) {
	var review db.DailyReview
	if err := s.db.WithContext(ctx).Where(query, arg).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get daily review: %w", err)
	}
	return &review, nil
}

// ensureDateFree 检查除 self 以外是否已有同日期的复盘
func (s *DailyReviewService) ensureDateFree(ctx context.Context, date time.Time, self uuid.UUID) error {
	query := s.db.WithContext(ctx).Model(&db.DailyReview{}).Where("review_date = ?", date)
	if self != uuid.Nil {
		query = query.Where("id <> ?", self)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check review date: %w", err)
	}
	if count > 0 {
		return ErrReviewDateExists
	}
	return nil
}

func validateDailyReview(review db.DailyReview) error {
	if review.ReviewDate.IsZero() {
		return invalid("review_date", "is required")
	}
	if err := requireScale("market_index", review.MarketIndex, 10, 2); err != nil {
		return err
	}
	if err := requireScale("trading_amount", review.TradingAmount, 10, 2); err != nil {
		return err
	}
	if err := requireScale("market_change_rate", review.MarketChangeRate, 5, 2); err != nil {
		return err
	}
	counts := []struct {
		field string
		value int
	}{
		{"limit_up_count", review.LimitUpCount},
		{"limit_down_count", review.LimitDownCount},
		{"rise_count", review.RiseCount},
		{"fall_count", review.FallCount},
	}
	for _, c := range counts {
		if c.value < 0 {
			return invalid(c.field, "must not be negative")
		}
	}
	return requireText("content", review.Content, 0)
}
