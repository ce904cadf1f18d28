package service

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/internal/db"
)

const (
	SortByBuyDate          = "buy_date"
	SortByProfitAmount     = "profit_amount"
	SortByProfitPercentage = "profit_percentage"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// TradeFilter 描述交易列表的筛选、排序与分页参数，所有筛选条件按 AND 组合。
type TradeFilter struct {
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
	Page
}

// TradeView 是带盈亏字段的交易记录。
type TradeView struct {
	db.StockTrade
	ProfitAmount     *decimal.Decimal
	ProfitPercentage *decimal.Decimal
}

func (f TradeFilter) normalized() (TradeFilter, error) {
	if f.SortBy == "" {
		f.SortBy = SortByBuyDate
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	switch f.SortBy {
	case SortByBuyDate, SortByProfitAmount, SortByProfitPercentage:
	default:
		return f, invalid("sort_by", "must be one of buy_date, profit_amount, profit_percentage")
	}
	if f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		return f, invalid("sort_order", "must be asc or desc")
	}
	page, err := f.Page.normalized()
	if err != nil {
		return f, err
	}
	f.Page = page
	return f, nil
}

func (f TradeFilter) derivedSort() bool {
	return f.SortBy == SortByProfitAmount || f.SortBy == SortByProfitPercentage
}

func withProfit(trades []db.StockTrade) ([]TradeView, error) {
	views := make([]TradeView, 0, len(trades))
	for _, trade := range trades {
		view, err := newTradeView(trade)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func newTradeView(trade db.StockTrade) (TradeView, error) {
	profit, err := CalculateProfit(trade)
	if err != nil {
		return TradeView{}, err
	}
	return TradeView{StockTrade: trade, ProfitAmount: profit.Amount, ProfitPercentage: profit.Percentage}, nil
}

// sortByProfit 将已平仓交易按派生字段稳定排序，未平仓交易保持原顺序排在最后。
func sortByProfit(views []TradeView, field, order string) []TradeView {
	key := func(v TradeView) *decimal.Decimal {
		if field == SortByProfitPercentage {
			return v.ProfitPercentage
		}
		return v.ProfitAmount
	}

	sold := make([]TradeView, 0, len(views))
	var unsold []TradeView
	for _, v := range views {
		if key(v) != nil {
			sold = append(sold, v)
		} else {
			unsold = append(unsold, v)
		}
	}

	slices.SortStableFunc(sold, func(a, b TradeView) int {
		c := key(a).Cmp(*key(b))
		if order == SortDesc {
			return -c
		}
		return c
	})

	return append(sold, unsold...)
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return items[skip:end]
}
