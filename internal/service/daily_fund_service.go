package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
)

var (
	ErrFundNotFound   = errors.New("daily fund not found")
	ErrFundDateExists = errors.New("daily fund for this date already exists")
)

const (
	DefaultRecentDays = 30
	MaxRecentDays     = 365
)

// DailyFundService 管理每日资金快照，资金日期全局唯一
type DailyFundService struct {
	db  *gorm.DB
	now func() time.Time
}

// DailyFundInput 创建资金记录；StockAmount/CashAmount 省略时为 0
type DailyFundInput struct {
	FundDate       time.Time
	TotalAmount    decimal.Decimal
	StockAmount    *decimal.Decimal
	CashAmount     *decimal.Decimal
	ProfitAmount   *decimal.Decimal
	ProfitRate     *decimal.Decimal
	CumulativeRate *decimal.Decimal
	Notes          *string
}

type DailyFundUpdate struct {
	FundDate       *time.Time
	TotalAmount    *decimal.Decimal
	StockAmount    *decimal.Decimal
	CashAmount     *decimal.Decimal
	ProfitAmount   Optional[decimal.Decimal]
	ProfitRate     Optional[decimal.Decimal]
	CumulativeRate Optional[decimal.Decimal]
	Notes          Optional[string]
}

// DailyFundFilter 列表筛选，日期区间两端均为闭区间
type DailyFundFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Page
}

func NewDailyFundService(gdb *gorm.DB) *DailyFundService {
	return &DailyFundService{db: gdb, now: time.Now}
}

// List 按资金日期倒序返回
func (s *DailyFundService) List(ctx context.Context, filter DailyFundFilter) ([]db.DailyFund, error) {
	page, err := filter.Page.normalized()
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&db.DailyFund{})
	if filter.StartDate != nil {
		query = query.Where("fund_date >= ?", db.NormalizeDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("fund_date <= ?", db.NormalizeDate(*filter.EndDate))
	}

	var funds []db.DailyFund
	if err := page.scope(query).Order("fund_date desc").Find(&funds).Error; err != nil {
		return nil, fmt.Errorf("list daily funds: %w", err)
	}
	return funds, nil
}

// Recent 返回 [今天-days, 今天] 区间内的记录，按日期升序
func (s *DailyFundService) Recent(ctx context.Context, days int) ([]db.DailyFund, error) {
	if days == 0 {
		days = DefaultRecentDays
	}
	if days < 1 || days > MaxRecentDays {
		return nil, invalid("days", "must be between 1 and 365")
	}

	end := db.NormalizeDate(s.now())
	start := end.AddDate(0, 0, -days)

	var funds []db.DailyFund
	if err := s.db.WithContext(ctx).
		Where("fund_date >= ? AND fund_date <= ?", start, end).
		Order("fund_date asc").
		Find(&funds).Error; err != nil {
		return nil, fmt.Errorf("list recent daily funds: %w", err)
	}
	return funds, nil
}

func (s *DailyFundService) Get(ctx context.Context, id uuid.UUID) (*db.DailyFund, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *DailyFundService) GetByDate(ctx context.Context, date time.Time) (*db.DailyFund, error) {
	return s.first(ctx, "fund_date = ?", db.NormalizeDate(date))
}

func (s *DailyFundService) Create(ctx context.Context, input DailyFundInput) (*db.DailyFund, error) {
	fund := db.DailyFund{
		FundDate:       db.NormalizeDate(input.FundDate),
		TotalAmount:    input.TotalAmount,
		StockAmount:    decimalOrZero(input.StockAmount),
		CashAmount:     decimalOrZero(input.CashAmount),
		ProfitAmount:   input.ProfitAmount,
		ProfitRate:     input.ProfitRate,
		CumulativeRate: input.CumulativeRate,
		Notes:          trimOptionalText(input.Notes),
	}
	if err := validateDailyFund(fund); err != nil {
		return nil, err
	}
	if err := s.ensureDateFree(ctx, fund.FundDate, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&fund).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrFundDateExists
		}
		return nil, fmt.Errorf("create daily fund: %w", err)
	}
	return &fund, nil
}

// Update 部分更新，金额约束基于合并后的记录校验
func (s *DailyFundService) Update(ctx context.Context, id uuid.UUID, input DailyFundUpdate) (*db.DailyFund, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	updates := map[string]any{}
	if input.FundDate != nil {
		merged.FundDate = db.NormalizeDate(*input.FundDate)
		updates["fund_date"] = merged.FundDate
	}
	if input.TotalAmount != nil {
		merged.TotalAmount = *input.TotalAmount
		updates["total_amount"] = merged.TotalAmount
	}
	if input.StockAmount != nil {
		merged.StockAmount = *input.StockAmount
		updates["stock_amount"] = merged.StockAmount
	}
	if input.CashAmount != nil {
		merged.CashAmount = *input.CashAmount
		updates["cash_amount"] = merged.CashAmount
	}
	if input.ProfitAmount.Set {
		merged.ProfitAmount = input.ProfitAmount.Value
		updates["profit_amount"] = merged.ProfitAmount
	}
	if input.ProfitRate.Set {
		merged.ProfitRate = input.ProfitRate.Value
		updates["profit_rate"] = merged.ProfitRate
	}
	if input.CumulativeRate.Set {
		merged.CumulativeRate = input.CumulativeRate.Value
		updates["cumulative_rate"] = merged.CumulativeRate
	}
	if input.Notes.Set {
		merged.Notes = trimOptionalText(input.Notes.Value)
		updates["notes"] = merged.Notes
	}
	if len(updates) == 0 {
		return existing, nil
	}
	if err := validateDailyFund(merged); err != nil {
		return nil, err
	}
	if !merged.FundDate.Equal(existing.FundDate) {
		if err := s.ensureDateFree(ctx, merged.FundDate, id); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrFundDateExists
		}
		return nil, fmt.Errorf("update daily fund: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *DailyFundService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&db.DailyFund{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete daily fund: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFundNotFound
	}
	return nil
}

func (s *DailyFundService) first(ctx context.Context, query string, arg any) (*db.DailyFund, error) {
	var fund db.DailyFund
	if err := s.db.WithContext(ctx).Where(query, arg).First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFundNotFound
		}
		return nil, fmt.Errorf("get daily fund: %w", err)
	}
	return &fund, nil
}

func (s *DailyFundService) ensureDateFree(ctx context.Context, date time.Time, self uuid.UUID) error {
	query := s.db.WithContext(ctx).Model(&db.DailyFund{}).Where("fund_date = ?", date)
	if self != uuid.Nil {
		query = query.Where("id <> ?", self)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check fund date: %w", err)
	}
	if count > 0 {
		return ErrFundDateExists
	}
	return nil
}

func validateDailyFund(fund db.DailyFund) error {
	if fund.FundDate.IsZero() {
		return invalid("fund_date", "is required")
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"total_amount", fund.TotalAmount},
		{"stock_amount", fund.StockAmount},
		{"cash_amount", fund.CashAmount},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return invalid(a.field, "must not be negative")
		}
		if err := requireScale(a.field, a.value, 15, 2); err != nil {
			return err
		}
	}
	if fund.StockAmount.GreaterThan(fund.TotalAmount) {
		return invalid("stock_amount", "must not exceed total_amount")
	}
	if fund.CashAmount.GreaterThan(fund.TotalAmount) {
		return invalid("cash_amount", "must not exceed total_amount")
	}
	if fund.ProfitAmount != nil {
		if err := requireScale("profit_amount", *fund.ProfitAmount, 15, 2); err != nil {
			return err
		}
	}
	if fund.ProfitRate != nil {
		if err := requireScale("profit_rate", *fund.ProfitRate, 8, 4); err != nil {
			return err
		}
	}
	if fund.CumulativeRate != nil {
		if err := requireScale("cumulative_rate", *fund.CumulativeRate, 8, 4); err != nil {
			return err
		}
	}
	return nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
