package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fundInput(date time.Time, total, stock, cash string) DailyFundInput {
	return DailyFundInput{
		FundDate:    date,
		TotalAmount: dec(total),
		StockAmount: decPtr(stock),
		CashAmount:  decPtr(cash),
	}
}

func TestDailyFundServiceRejectsDuplicateDate(t *testing.T) {
	svc := NewDailyFundService(setupServiceTestDB(t, "daily-fund"))
	ctx := context.Background()

	if _, err := svc.Create(ctx, fundInput(day(2024, 6, 18), "100000.00", "60000.00", "40000.00")); err != nil {
		t.Fatalf("create fund: %v", err)
	}
	if _, err := svc.Create(ctx, fundInput(day(2024, 6, 18), "1.00", "0", "1.00")); !errors.Is(err, ErrFundDateExists) {
		t.Fatalf("expected ErrFundDateExists, got %v", err)
	}

	other, err := svc.Create(ctx, fundInput(day(2024, 6, 19), "100500.00", "60500.00", "40000.00"))
	if err != nil {
		t.Fatalf("create other fund: %v", err)
	}
	taken := day(2024, 6, 18)
	if _, err := svc.Update(ctx, other.ID, DailyFundUpdate{FundDate: &taken}); !errors.Is(err, ErrFundDateExists) {
		t.Fatalf("expected ErrFundDateExists on update, got %v", err)
	}
}

func TestDailyFundServiceAmountConstraints(t *testing.T) {
	svc := NewDailyFundService(setupServiceTestDB(t, "daily-fund"))
	ctx := context.Background()

	if _, err := svc.Create(ctx, fundInput(day(2024, 6, 18), "-1.00", "0", "0")); !IsValidationError(err) {
		t.Fatalf("expected validation error for negative total, got %v", err)
	}
	if _, err := svc.Create(ctx, fundInput(day(2024, 6, 18), "100.00", "100.01", "0")); !IsValidationError(err) {
		t.Fatalf("expected validation error for stock > total, got %v", err)
	}

	fund, err := svc.Create(ctx, fundInput(day(2024, 6, 18), "100.00", "80.00", "20.00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 只降低总额时，按合并后的记录校验
	if _, err := svc.Update(ctx, fund.ID, DailyFundUpdate{TotalAmount: decPtr("50.00")}); !IsValidationError(err) {
		t.Fatalf("expected validation error for merged record, got %v", err)
	}

	updated, err := svc.Update(ctx, fund.ID, DailyFundUpdate{
		TotalAmount:  decPtr("50.00"),
		StockAmount:  decPtr("30.00"),
		ProfitAmount: Some(dec("-50.00")),
		Notes:        Some("减仓"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.TotalAmount.Equal(dec("50")) || !updated.CashAmount.Equal(dec("20")) {
		t.Fatalf("unexpected amounts %s/%s", updated.TotalAmount, updated.CashAmount)
	}
	if updated.ProfitAmount == nil || !updated.ProfitAmount.Equal(dec("-50")) || updated.Notes == nil {
		t.Fatalf("expected optional fields to be set, got %+v", updated)
	}

	cleared, err := svc.Update(ctx, fund.ID, DailyFundUpdate{Notes: Null[string]()})
	if err != nil {
		t.Fatalf("clear notes: %v", err)
	}
	if cleared.Notes != nil || cleared.ProfitAmount == nil {
		t.Fatalf("expected only notes cleared, got %+v", cleared)
	}
}

func TestDailyFundServiceRecentWindow(t *testing.T) {
	svc := NewDailyFundService(setupServiceTestDB(t, "daily-fund"))
	svc.now = func() time.Time { return time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	for _, d := range []time.Time{day(2024, 6, 1), day(2024, 6, 23), day(2024, 6, 30), day(2024, 6, 25), day(2024, 7, 1)} {
		if _, err := svc.Create(ctx, fundInput(d, "10.00", "5.00", "5.00")); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}

	funds, err := svc.Recent(ctx, 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	want := []time.Time{day(2024, 6, 23), day(2024, 6, 25), day(2024, 6, 30)}
	if len(funds) != len(want) {
		t.Fatalf("expected %d funds, got %d", len(want), len(funds))
	}
	for i := range want {
		if !funds[i].FundDate.Equal(want[i]) {
			t.Fatalf("index %d: expected %s, got %s", i, want[i], funds[i].FundDate)
		}
	}

	funds, err = svc.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent default: %v", err)
	}
	if len(funds) != 4 {
		t.Fatalf("expected 4 funds in default window, got %d", len(funds))
	}

	for _, days := range []int{-1, 366} {
		if _, err := svc.Recent(ctx, days); !IsValidationError(err) {
			t.Fatalf("days=%d: expected validation error, got %v", days, err)
		}
	}
}

func TestDailyFundServiceListRangeAndLookup(t *testing.T) {
	svc := NewDailyFundService(setupServiceTestDB(t, "daily-fund"))
	ctx := context.Background()

	for _, d := range []time.Time{day(2024, 6, 1), day(2024, 6, 2), day(2024, 6, 3)} {
		if _, err := svc.Create(ctx, fundInput(d, "10.00", "5.00", "5.00")); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}

	start := day(2024, 6, 2)
	funds, err := svc.List(ctx, DailyFundFilter{StartDate: &start})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(funds) != 2 || !funds[0].FundDate.Equal(day(2024, 6, 3)) {
		t.Fatalf("expected newest first within range, got %+v", funds)
	}

	found, err := svc.GetByDate(ctx, day(2024, 6, 1))
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if !found.TotalAmount.Equal(dec("10")) {
		t.Fatalf("unexpected fund %+v", found)
	}
	if _, err := svc.GetByDate(ctx, day(2024, 1, 1)); !errors.Is(err, ErrFundNotFound) {
		t.Fatalf("expected ErrFundNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, found.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, found.ID); !errors.Is(err, ErrFundNotFound) {
		t.Fatalf("expected ErrFundNotFound after delete, got %v", err)
	}
}
