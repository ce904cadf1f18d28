package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
)

var ErrTradeNotFound = errors.New("stock trade not found")

// TradeService 负责股票交易记录，读取时附带盈亏字段
type TradeService struct {
	db         *gorm.DB
	categories *CategoryService
}

// TradeInput 创建交易时的字段
type TradeInput struct {
	StockCode      string
	StockName      string
	BuyDate        time.Time
	BuyPrice       decimal.Decimal
	BuyQuantity    int
	BuyReason      string
	CategoryID     uuid.UUID
	SellDate       *time.Time
	SellPrice      *decimal.Decimal
	ScreenshotURLs []string
}

// TradeUpdate 部分更新交易；卖出相关字段可显式置空以重新开仓
type TradeUpdate struct {
	StockCode      *string
	StockName      *string
	BuyDate        *time.Time
	BuyPrice       *decimal.Decimal
	BuyQuantity    *int
	BuyReason      *string
	CategoryID     *uuid.UUID
	SellDate       Optional[time.Time]
	SellPrice      Optional[decimal.Decimal]
	ScreenshotURLs Optional[[]string]
}

func NewTradeService(gdb *gorm.DB) *TradeService {
	return &TradeService{db: gdb, categories: NewCategoryService(gdb)}
}

// List 按筛选条件返回交易。按买入日期排序时在数据库中分页；
// 按盈亏排序时需取回全部候选记录，计算盈亏并排序后再分页。
func (s *TradeService) List(ctx context.Context, filter TradeFilter) ([]TradeView, error) {
	filter, err := filter.normalized()
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&db.StockTrade{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.StartDate != nil {
		query = query.Where("buy_date >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		query = query.Where("buy_date <= ?", filter.EndDate.UTC())
	}

	var trades []db.StockTrade
	if !filter.derivedSort() {
		order := filter.SortOrder
		if err := filter.Page.scope(query).
			Order("buy_date " + order).
			Order("created_at " + order).
			Find(&trades).Error; err != nil {
			return nil, fmt.Errorf("list stock trades: %w", err)
		}
		return withProfit(trades)
	}

	if err := query.
		Order("buy_date desc").
		Order("created_at desc").
		Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("list stock trades: %w", err)
	}
	views, err := withProfit(trades)
	if err != nil {
		return nil, err
	}
	views = sortByProfit(views, filter.SortBy, filter.SortOrder)
	return paginate(views, filter.Skip, filter.Limit), nil
}

func (s *TradeService) Get(ctx context.Context, id uuid.UUID) (*TradeView, error) {
	trade, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := newTradeView(*trade)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *TradeService) Create(ctx context.Context, input TradeInput) (*TradeView, error) {
	trade := db.StockTrade{
		StockCode:      strings.TrimSpace(input.StockCode),
		StockName:      strings.TrimSpace(input.StockName),
		BuyDate:        input.BuyDate.UTC(),
		BuyPrice:       input.BuyPrice,
		BuyQuantity:    input.BuyQuantity,
		SellDate:       utcPtr(input.SellDate),
		SellPrice:      input.SellPrice,
		ScreenshotURLs: screenshotList(input.ScreenshotURLs),
		BuyReason:      strings.TrimSpace(input.BuyReason),
		CategoryID:     input.CategoryID,
	}
	if err := validateTrade(trade); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, trade.CategoryID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&trade).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("create stock trade: %w", err)
	}
	view, err := newTradeView(trade)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Update 只写入调用方提供的字段，校验基于合并后的记录
func (s *TradeService) Update(ctx context.Context, id uuid.UUID, input TradeUpdate) (*TradeView, error) {
	existing, err := s.find(ctx, id)
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
	if input.BuyDate != nil {
		merged.BuyDate = input.BuyDate.UTC()
		updates["buy_date"] = merged.BuyDate
	}
	if input.BuyPrice != nil {
		merged.BuyPrice = *input.BuyPrice
		updates["buy_price"] = merged.BuyPrice
	}
	if input.BuyQuantity != nil {
		merged.BuyQuantity = *input.BuyQuantity
		updates["buy_quantity"] = merged.BuyQuantity
	}
	if input.BuyReason != nil {
		merged.BuyReason = strings.TrimSpace(*input.BuyReason)
		updates["buy_reason"] = merged.BuyReason
	}
	if input.CategoryID != nil {
		merged.CategoryID = *input.CategoryID
		updates["category_id"] = merged.CategoryID
	}
	if input.SellDate.Set {
		merged.SellDate = utcPtr(input.SellDate.Value)
		updates["sell_date"] = merged.SellDate
	}
	if input.SellPrice.Set {
		merged.SellPrice = input.SellPrice.Value
		updates["sell_price"] = merged.SellPrice
	}
	if input.ScreenshotURLs.Set {
		var urls []string
		if input.ScreenshotURLs.Value != nil {
			urls = *input.ScreenshotURLs.Value
		}
		merged.ScreenshotURLs = screenshotList(urls)
		updates["screenshot_url"] = merged.ScreenshotURLs
	}

	if len(updates) == 0 {
		view, err := newTradeView(*existing)
		if err != nil {
			return nil, err
		}
		return &view, nil
	}

	if err := validateTrade(merged); err != nil {
		return nil, err
	}
	if input.CategoryID != nil && *input.CategoryID != existing.CategoryID {
		if err := s.requireCategory(ctx, merged.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update stock trade: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *TradeService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&db.StockTrade{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete stock trade: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

func (s *TradeService) find(ctx context.Context, id uuid.UUID) (*db.StockTrade, error) {
	var trade db.StockTrade
	if err := s.db.WithContext(ctx).First(&trade, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("get stock trade: %w", err)
	}
	return &trade, nil
}

func (s *TradeService) requireCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func validateTrade(trade db.StockTrade) error {
	if err := requireText("stock_code", trade.StockCode, 10); err != nil {
		return err
	}
	if err := requireText("stock_name", trade.StockName, 50); err != nil {
		return err
	}
	if err := requireText("buy_reason", trade.BuyReason, 0); err != nil {
		return err
	}
	if trade.BuyDate.IsZero() {
		return invalid("buy_date", "is required")
	}
	if trade.CategoryID == uuid.Nil {
		return invalid("category_id", "is required")
	}
	if !trade.BuyPrice.IsPositive() {
		return invalid("buy_price", "must be greater than 0")
	}
	if err := requireScale("buy_price", trade.BuyPrice, 10, 2); err != nil {
		return err
	}
	if trade.BuyQuantity <= 0 {
		return invalid("buy_quantity", "must be greater than 0")
	}
	if trade.SellPrice != nil {
		if !trade.SellPrice.IsPositive() {
			return invalid("sell_price", "must be greater than 0")
		}
		if err := requireScale("sell_price", *trade.SellPrice, 10, 2); err != nil {
			return err
		}
	}
	for _, url := range trade.ScreenshotURLs {
		if strings.TrimSpace(url) == "" {
			return invalid("screenshot_url", "must not contain empty urls")
		}
	}
	return nil
}

func screenshotList(urls []string) datatypes.JSONSlice[string] {
	if urls == nil {
		return nil
	}
	out := make(datatypes.JSONSlice[string], 0, len(urls))
	for _, url := range urls {
		out = append(out, strings.TrimSpace(url))
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
