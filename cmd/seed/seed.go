package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

// tableReport 记录单张表的生成结果
type tableReport struct {
	Name    string
	Rows    int
	Skipped bool
}

// seed 通过服务层写入示例数据，保证样例同样经过业务校验
func seed(ctx context.Context, gdb *gorm.DB) ([]tableReport, error) {
	steps := []struct {
		name  string
		model any
		run   func(context.Context, *gorm.DB) (int, error)
	}{
		{"categories", &db.Category{}, seedCategories},
		{"stock_trades", &db.StockTrade{}, seedTrades},
		{"failure_cases", &db.FailureCase{}, seedFailureCases},
		{"daily_reviews", &db.DailyReview{}, seedReviews},
		{"daily_funds", &db.DailyFund{}, seedFunds},
		{db.TableTradingSystems, &db.TradingSystem{}, seedTradingSystems},
		{db.TableTradingRestrictions, &db.TradingRestriction{}, seedTradingRestrictions},
	}

	report := make([]tableReport, 0, len(steps))
	for _, step := range steps {
		var count int64
		if err := gdb.WithContext(ctx).Model(step.model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", step.name, err)
		}
		if count > 0 {
			report = append(report, tableReport{Name: step.name, Skipped: true})
			continue
		}

		rows, err := step.run(ctx, gdb)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", step.name, err)
		}
		report = append(report, tableReport{Name: step.name, Rows: rows})
	}
	return report, nil
}

func seedCategories(ctx context.Context, gdb *gorm.DB) (int, error) {
	svc := service.NewCategoryService(gdb)
	samples := []struct {
		name        string
		description string
	}{
		{"短线", "持仓不超过一周的情绪交易"},
		{"波段", "跟随趋势持有数周"},
		{"长线", "基本面驱动的价值投资"},
	}
	for _, sample := range samples {
		description := sample.description
		if _, err := svc.Create(ctx, service.CategoryInput{Name: sample.name, Description: &description}); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}

func seedTrades(ctx context.Context, gdb *gorm.DB) (int, error) {
	var categories []db.Category
	if err := gdb.WithContext(ctx).Order("created_at asc").Find(&categories).Error; err != nil {
		return 0, err
	}
	if len(categories) == 0 {
		return 0, nil
	}

	svc := service.NewTradeService(gdb)
	samples := []struct {
		code, name, reason string
		buyDate            time.Time
		buyPrice           string
		qty                int
		sellDate           *time.Time
		sellPrice          string
	}{
		{"600519", "贵州茅台", "回踩年线企稳", date(2024, 3, 4), "1650.00", 100, ptr(date(2024, 4, 12)), "1720.50"},
		{"300750", "宁德时代", "放量突破平台", date(2024, 3, 18), "182.30", 500, ptr(date(2024, 3, 29)), "175.10"},
		{"000001", "平安银行", "高股息防御", date(2024, 4, 8), "10.52", 5000, ptr(date(2024, 6, 20)), "11.38"},
		{"601318", "中国平安", "估值修复", date(2024, 5, 6), "44.80", 1000, nil, ""},
		{"002594", "比亚迪", "销量超预期", date(2024, 5, 20), "221.00", 300, ptr(date(2024, 5, 31)), "209.40"},
		{"688981", "中芯国际", "国产替代主线", date(2024, 6, 3), "46.20", 800, nil, ""},
	}

	for i, sample := range samples {
		input := service.TradeInput{
			StockCode:   sample.code,
			StockName:   sample.name,
			BuyDate:     sample.buyDate,
			BuyPrice:    decimal.RequireFromString(sample.buyPrice),
			BuyQuantity: sample.qty,
			BuyReason:   sample.reason,
			CategoryID:  categories[i%len(categories)].ID,
			SellDate:    sample.sellDate,
		}
		if sample.sellPrice != "" {
			price := decimal.RequireFromString(sample.sellPrice)
			input.SellPrice = &price
		}
		if _, err := svc.Create(ctx, input); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}

func seedFailureCases(ctx context.Context, gdb *gorm.DB) (int, error) {
	svc := service.NewFailureCaseService(gdb)
	samples := []service.FailureCaseInput{
		{
			StockCode: "300750",
			StockName: "宁德时代",
			Images:    []string{"https://cdn.example.com/failure/300750-daily.png"},
			Reason:    "突破后第二天缩量，没有及时止损",
			Lessons:   "- 突破次日**缩量**即减仓\n- 止损线提前写进计划",
		},
		{
			StockCode: "002594",
			StockName: "比亚迪",
			Images:    []string{"https://cdn.example.com/failure/002594-60m.png", "https://cdn.example.com/failure/002594-daily.png"},
			Reason:    "利好兑现后追高",
			Lessons:   "消息落地前买、落地后卖，不在公告当天追涨",
		},
	}
	for _, sample := range samples {
		if _, err := svc.Create(ctx, sample); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}

func seedReviews(ctx context.Context, gdb *gorm.DB) (int, error) {
	svc := service.NewDailyReviewService(gdb)
	start := date(2024, 6, 17)
	contents := []string{
		"## 大盘\n缩量震荡，题材轮动快。\n\n## 计划\n控制仓位，只做前排。",
		"## 大盘\n放量上攻，**券商**领涨。\n\n## 计划\n持有波段仓位。",
		"## 大盘\n冲高回落，情绪退潮。\n\n## 计划\n减仓至三成。",
	}
	for i, content := range contents {
		_, err := svc.Create(ctx, service.DailyReviewInput{
			ReviewDate:       start.AddDate(0, 0, i),
			MarketIndex:      decimal.RequireFromString("3030.25").Add(decimal.NewFromInt(int64(i * 12))),
			TradingAmount:    decimal.RequireFromString("7800.00").Add(decimal.NewFromInt(int64(i * 450))),
			MarketChangeRate: decimal.RequireFromString("-0.45").Add(decimal.NewFromFloat(0.6 * float64(i))).Round(2),
			LimitUpCount:     40 + i*15,
			LimitDownCount:   12 - i*3,
			RiseCount:        1800 + i*600,
			FallCount:        3200 - i*600,
			Content:          content,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(contents), nil
}

func seedFunds(ctx context.Context, gdb *gorm.DB) (int, error) {
	svc := service.NewDailyFundService(gdb)
	start := date(2024, 6, 17)
	total := decimal.RequireFromString("200000.00")
	initial := total
	changes := []string{"0", "1520.40", "-830.00", "2210.75", "-415.20"}

	for i, change := range changes {
		profit := decimal.RequireFromString(change)
		prev := total
		total = total.Add(profit)
		stock := total.Mul(decimal.RequireFromString("0.6")).Round(2)
		cash := total.Sub(stock)
		rate := profit.Div(prev).Round(4)
		cumulative := total.Sub(initial).Div(initial).Round(4)

		_, err := svc.Create(ctx, service.DailyFundInput{
			FundDate:       start.AddDate(0, 0, i),
			TotalAmount:    total,
			StockAmount:    &stock,
			CashAmount:     &cash,
			ProfitAmount:   &profit,
			ProfitRate:     &rate,
			CumulativeRate: &cumulative,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(changes), nil
}

func seedTradingSystems(ctx context.Context, gdb *gorm.DB) (int, error) {
	return seedReferences(ctx, service.NewTradingSystemService(gdb), []service.ReferenceInput{
		{Title: "趋势跟随", Content: "只在均线多头排列时开仓，跌破 20 日线离场", SortOrder: 1},
		{Title: "龙头战法", Content: "- 只做板块最强\n- 分歧转一致时介入", SortOrder: 2},
		{Title: "仓位管理", Content: "单票不超过三成，总仓位随情绪周期调整", SortOrder: 3},
	})
}

func seedTradingRestrictions(ctx context.Context, gdb *gorm.DB) (int, error) {
	inactive := false
	return seedReferences(ctx, service.NewTradingRestrictionService(gdb), []service.ReferenceInput{
		{Title: "不追高", Content: "日内涨幅超过 7% 不买入", SortOrder: 1},
		{Title: "不抄底", Content: "下跌趋势中不接飞刀", SortOrder: 2},
		{Title: "不满仓", Content: "任何时候保留两成现金", SortOrder: 3, IsActive: &inactive},
	})
}

func seedReferences(ctx context.Context, svc *service.ReferenceService, items []service.ReferenceInput) (int, error) {
	for _, item := range items {
		if _, err := svc.Create(ctx, item); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
