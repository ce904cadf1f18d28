package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
)

func viewWithProfit(code string, amount, pct string) TradeView {
	v := TradeView{StockTrade: db.StockTrade{StockCode: code}}
	if amount != "" {
		a := decimal.RequireFromString(amount)
		v.ProfitAmount = &a
	}
	if pct != "" {
		p := decimal.RequireFromString(pct)
		v.ProfitPercentage = &p
	}
	return v
}

func codes(views []TradeView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.StockCode)
	}
	return out
}

func assertCodes(t *testing.T, got []TradeView, want ...string) {
	t.Helper()
	gotCodes := codes(got)
	if len(gotCodes) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotCodes)
	}
	for i := range want {
		if gotCodes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotCodes)
		}
	}
}

func TestSortByProfitPutsOpenTradesLast(t *testing.T) {
	views := []TradeView{
		viewWithProfit("A", "", ""),
		viewWithProfit("B", "100.00", "10.00"),
		viewWithProfit("C", "-50.00", "-5.00"),
		viewWithProfit("D", "", ""),
		viewWithProfit("E", "300.00", "30.00"),
	}

	assertCodes(t, sortByProfit(views, SortByProfitAmount, SortDesc), "E", "B", "C", "A", "D")
	assertCodes(t, sortByProfit(views, SortByProfitAmount, SortAsc), "C", "B", "E", "A", "D")
}

func TestSortByProfitKeepsTieOrder(t *testing.T) {
	views := []TradeView{
		viewWithProfit("first", "100.00", "12.50"),
		viewWithProfit("mid", "10.00", "3.00"),
		viewWithProfit("second", "500.00", "12.50"),
	}

	assertCodes(t, sortByProfit(views, SortByProfitPercentage, SortDesc), "first", "second", "mid")
	assertCodes(t, sortByProfit(views, SortByProfitPercentage, SortAsc), "mid", "first", "second")
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	cases := []struct {
		skip, limit int
		want        []int
	}{
		{0, 2, []int{1, 2}},
		{3, 10, []int{4, 5}},
		{5, 1, []int{}},
		{9, 1, []int{}},
	}
	for _, tc := range cases {
		got := paginate(items, tc.skip, tc.limit)
		if len(got) != len(tc.want) {
			t.Fatalf("skip=%d limit=%d: expected %v, got %v", tc.skip, tc.limit, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("skip=%d limit=%d: expected %v, got %v", tc.skip, tc.limit, tc.want, got)
			}
		}
	}
}

type tradeFixture struct {
	svc      *TradeService
	category uuid.UUID
}

func setupTradeFixture(t *testing.T) tradeFixture {
	t.Helper()
	gdb := setupServiceTestDB(t, "trade-service")

	category, err := NewCategoryService(gdb).Create(context.Background(), CategoryInput{Name: "波段"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return tradeFixture{svc: NewTradeService(gdb), category: category.ID}
}

func (f tradeFixture) create(t *testing.T, code string, buyDate time.Time, buy string, qty int, sell string) *TradeView {
	t.Helper()
	input := TradeInput{
		StockCode:   code,
		StockName:   "测试" + code,
		BuyDate:     buyDate,
		BuyPrice:    decimal.RequireFromString(buy),
		BuyQuantity: qty,
		BuyReason:   "放量突破",
		CategoryID:  f.category,
	}
	if sell != "" {
		price := decimal.RequireFromString(sell)
		sellDate := buyDate.AddDate(0, 0, 5)
		input.SellPrice = &price
		input.SellDate = &sellDate
	}
	view, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create trade %s: %v", code, err)
	}
	return view
}

func TestTradeServiceListByDerivedFieldSortsBeforePaging(t *testing.T) {
	f := setupTradeFixture(t)
	ctx := context.Background()

	// 按买入日期倒序为 T5, T4, T3, T2, T1
	f.create(t, "T1", day(2024, 1, 1), "10.00", 100, "30.00")
	f.create(t, "T2", day(2024, 1, 2), "10.00", 100, "")
	f.create(t, "T3", day(2024, 1, 3), "10.00", 100, "11.00")
	f.create(t, "T4", day(2024, 1, 4), "10.00", 100, "")
	f.create(t, "T5", day(2024, 1, 5), "10.00", 100, "9.00")

	all, err := f.svc.List(ctx, TradeFilter{SortBy: SortByProfitAmount, SortOrder: SortDesc})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertCodes(t, all, "T1", "T3", "T5", "T4", "T2")

	page, err := f.svc.List(ctx, TradeFilter{SortBy: SortByProfitAmount, SortOrder: SortDesc, Page: Page{Skip: 0, Limit: 1}})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	// T1 是最早买入的，若先分页再排序则不可能出现在第一页
	assertCodes(t, page, "T1")

	tail, err := f.svc.List(ctx, TradeFilter{SortBy: SortByProfitAmount, SortOrder: SortAsc, Page: Page{Skip: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("list tail: %v", err)
	}
	assertCodes(t, tail, "T1", "T4")
}

func TestTradeServiceListPercentageTiesFollowFetchOrder(t *testing.T) {
	f := setupTradeFixture(t)
	ctx := context.Background()

	f.create(t, "OLD", day(2024, 2, 1), "10.00", 100, "12.00")
	f.create(t, "NEW", day(2024, 2, 3), "20.00", 10, "24.00")
	f.create(t, "LOW", day(2024, 2, 2), "10.00", 100, "10.50")

	for _, order := range []string{SortDesc, SortAsc} {
		views, err := f.svc.List(ctx, TradeFilter{SortBy: SortByProfitPercentage, SortOrder: order})
		if err != nil {
			t.Fatalf("list %s: %v", order, err)
		}
		if order == SortDesc {
			assertCodes(t, views, "NEW", "OLD", "LOW")
		} else {
			assertCodes(t, views, "LOW", "NEW", "OLD")
		}
	}
}

func TestTradeServiceListByBuyDateWithFilters(t *testing.T) {
	f := setupTradeFixture(t)
	ctx := context.Background()

	f.create(t, "A", day(2024, 5, 1), "10.00", 100, "")
	f.create(t, "B", day(2024, 5, 2), "10.00", 100, "")
	f.create(t, "C", day(2024, 5, 3), "10.00", 100, "")
	f.create(t, "D", day(2024, 5, 4), "10.00", 100, "")

	views, err := f.svc.List(ctx, TradeFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertCodes(t, views, "D", "C", "B", "A")

	start, end := day(2024, 5, 2), day(2024, 5, 3)
	views, err = f.svc.List(ctx, TradeFilter{StartDate: &start, EndDate: &end, SortOrder: SortAsc})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	assertCodes(t, views, "B", "C")

	views, err = f.svc.List(ctx, TradeFilter{StartDate: &start, Page: Page{Skip: 1, Limit: 1}})
	if err != nil {
		t.Fatalf("list start only: %v", err)
	}
	assertCodes(t, views, "C")

	other := uuid.New()
	views, err = f.svc.List(ctx, TradeFilter{CategoryID: &other})
	if err != nil {
		t.Fatalf("list other category: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no trades for unknown category, got %d", len(views))
	}
}

func TestTradeServiceListRejectsUnknownSort(t *testing.T) {
	f := setupTradeFixture(t)
	if _, err := f.svc.List(context.Background(), TradeFilter{SortBy: "stock_code"}); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.List(context.Background(), TradeFilter{Page: Page{Limit: 5000}}); !IsValidationError(err) {
		t.Fatalf("expected validation error for limit, got %v", err)
	}
}

func TestTradeServiceGetIsIdempotent(t *testing.T) {
	f := setupTradeFixture(t)
	created := f.create(t, "600519", day(2024, 3, 1), "10.00", 100, "12.50")

	first, err := f.svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := f.svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if first.ProfitAmount.String() != second.ProfitAmount.String() ||
		first.ProfitPercentage.String() != second.ProfitPercentage.String() {
		t.Fatalf("expected identical figures, got %s/%s and %s/%s",
			first.ProfitAmount, first.ProfitPercentage, second.ProfitAmount, second.ProfitPercentage)
	}
	if !first.ProfitAmount.Equal(decimal.RequireFromString("250")) || !first.ProfitPercentage.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unexpected figures %s/%s", first.ProfitAmount, first.ProfitPercentage)
	}
}

func TestTradeServiceCreateRequiresCategory(t *testing.T) {
	f := setupTradeFixture(t)
	_, err := f.svc.Create(context.Background(), TradeInput{
		StockCode:   "000001",
		StockName:   "平安银行",
		BuyDate:     day(2024, 3, 1),
		BuyPrice:    decimal.RequireFromString("10.00"),
		BuyQuantity: 100,
		BuyReason:   "低估",
		CategoryID:  uuid.New(),
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestTradeServiceCreateValidatesFigures(t *testing.T) {
	f := setupTradeFixture(t)
	base := TradeInput{
		StockCode:   "000001",
		StockName:   "平安银行",
		BuyDate:     day(2024, 3, 1),
		BuyPrice:    decimal.RequireFromString("10.00"),
		BuyQuantity: 100,
		BuyReason:   "低估",
		CategoryID:  f.category,
	}

	cases := map[string]func(in *TradeInput){
		"zero price":    func(in *TradeInput) { in.BuyPrice = decimal.Zero },
		"three decimal": func(in *TradeInput) { in.BuyPrice = decimal.RequireFromString("10.001") },
		"negative qty":  func(in *TradeInput) { in.BuyQuantity = -1 },
		"long code":     func(in *TradeInput) { in.StockCode = "12345678901" },
		"empty reason":  func(in *TradeInput) { in.BuyReason = "  " },
	}
	for name, mutate := range cases {
		input := base
		mutate(&input)
		if _, err := f.svc.Create(context.Background(), input); !IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestTradeServiceUpdateClosesAndReopens(t *testing.T) {
	f := setupTradeFixture(t)
	ctx := context.Background()
	created := f.create(t, "300750", day(2024, 4, 1), "20.00", 50, "")
	if created.ProfitAmount != nil {
		t.Fatal("expected open trade without profit")
	}

	closed, err := f.svc.Update(ctx, created.ID, TradeUpdate{
		SellDate:  Some(day(2024, 4, 10)),
		SellPrice: Some(decimal.RequireFromString("18.00")),
	})
	if err != nil {
		t.Fatalf("close trade: %v", err)
	}
	if closed.ProfitAmount == nil || !closed.ProfitAmount.Equal(decimal.RequireFromString("-100")) {
		t.Fatalf("expected -100 profit, got %v", closed.ProfitAmount)
	}
	if !closed.ProfitPercentage.Equal(decimal.RequireFromString("-10")) {
		t.Fatalf("expected -10%%, got %s", closed.ProfitPercentage)
	}
	if closed.StockName != created.StockName {
		t.Fatalf("expected untouched stock name, got %s", closed.StockName)
	}

	reopened, err := f.svc.Update(ctx, created.ID, TradeUpdate{
		SellDate:  Null[time.Time](),
		SellPrice: Null[decimal.Decimal](),
	})
	if err != nil {
		t.Fatalf("reopen trade: %v", err)
	}
	if reopened.SellDate != nil || reopened.SellPrice != nil || reopened.ProfitAmount != nil {
		t.Fatalf("expected reopened trade, got %+v", reopened)
	}
}

func TestTradeServiceUpdateUnknownCategory(t *testing.T) {
	f := setupTradeFixture(t)
	created := f.create(t, "300750", day(2024, 4, 1), "20.00", 50, "")

	missing := uuid.New()
	if _, err := f.svc.Update(context.Background(), created.ID, TradeUpdate{CategoryID: &missing}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if _, err := f.svc.Update(context.Background(), uuid.New(), TradeUpdate{}); !errors.Is(err, ErrTradeNotFound) {
		t.Fatalf("expected ErrTradeNotFound, got %v", err)
	}
}

func TestTradeServiceDelete(t *testing.T) {
	f := setupTradeFixture(t)
	created := f.create(t, "300750", day(2024, 4, 1), "20.00", 50, "")

	if err := f.svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(context.Background(), created.ID); !errors.Is(err, ErrTradeNotFound) {
		t.Fatalf("expected ErrTradeNotFound, got %v", err)
	}
}

func TestTradeServiceCreateCategoryRemovedConcurrently(t *testing.T) {
	f := setupTradeFixture(t)
	gdb := f.svc.db

	// 分类存在性检查之后、插入之前删除分类
	var dropErr error
	err := gdb.Callback().Create().Before("gorm:create").Register("test:drop_category", func(tx *gorm.DB) {
		if tx.Statement.Table != "stock_trades" {
			return
		}
		dropErr = tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM categories WHERE id = ?", f.category).Error
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = f.svc.Create(context.Background(), TradeInput{
		StockCode:   "601318",
		StockName:   "中国平安",
		BuyDate:     day(2024, 4, 1),
		BuyPrice:    decimal.RequireFromString("40.00"),
		BuyQuantity: 100,
		BuyReason:   "估值修复",
		CategoryID:  f.category,
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if dropErr != nil {
		t.Fatalf("drop category inside create: %v", dropErr)
	}

	var trades int64
	gdb.Model(&db.StockTrade{}).Count(&trades)
	if trades != 0 {
		t.Fatalf("expected no orphan trade, got %d", trades)
	}
}
