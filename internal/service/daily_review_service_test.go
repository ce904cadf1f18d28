package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/internal/db"
)

func reviewInput(date string, content string) DailyReviewInput {
	d, _ := parseTestDate(date)
	return DailyReviewInput{
		ReviewDate:       d,
		MarketIndex:      decimal.RequireFromString("3050.12"),
		TradingAmount:    decimal.RequireFromString("8123.45"),
		MarketChangeRate: decimal.RequireFromString("-0.85"),
		LimitUpCount:     45,
		LimitDownCount:   12,
		RiseCount:        1800,
		FallCount:        3200,
		Content:          content,
	}
}

func TestDailyReviewServiceRejectsDuplicateDate(t *testing.T) {
	gdb := setupServiceTestDB(t, "daily-review")
	svc := NewDailyReviewService(gdb)
	ctx := context.Background()

	original, err := svc.Create(ctx, reviewInput("2024-06-18", "缩量调整"))
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	if _, err := svc.Create(ctx, reviewInput("2024-06-18", "覆盖内容")); !errors.Is(err, ErrReviewDateExists) {
		t.Fatalf("expected ErrReviewDateExists, got %v", err)
	}

	var reviews []db.DailyReview
	if err := gdb.Find(&reviews).Error; err != nil {
		t.Fatalf("load reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Content != "缩量调整" || reviews[0].ID != original.ID {
		t.Fatalf("expected original row untouched, got %+v", reviews)
	}
}

func TestDailyReviewServiceUpdateDateCollision(t *testing.T) {
	svc := NewDailyReviewService(setupServiceTestDB(t, "daily-review"))
	ctx := context.Background()

	first, err := svc.Create(ctx, reviewInput("2024-06-17", "周一"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, reviewInput("2024-06-18", "周二"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := svc.Update(ctx, second.ID, DailyReviewUpdate{ReviewDate: &first.ReviewDate}); !errors.Is(err, ErrReviewDateExists) {
		t.Fatalf("expected ErrReviewDateExists, got %v", err)
	}

	same := second.ReviewDate
	content := "周二复盘"
	updated, err := svc.Update(ctx, second.ID, DailyReviewUpdate{ReviewDate: &same, Content: &content})
	if err != nil {
		t.Fatalf("update own date: %v", err)
	}
	if updated.Content != content {
		t.Fatalf("expected content update, got %s", updated.Content)
	}
}

func TestDailyReviewServiceListAndLookup(t *testing.T) {
	svc := NewDailyReviewService(setupServiceTestDB(t, "daily-review"))
	ctx := context.Background()

	for _, date := range []string{"2024-06-17", "2024-06-19", "2024-06-18"} {
		if _, err := svc.Create(ctx, reviewInput(date, "复盘 "+date)); err != nil {
			t.Fatalf("create %s: %v", date, err)
		}
	}

	list, err := svc.List(ctx, Page{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || !list[0].ReviewDate.Equal(day(2024, 6, 19)) || !list[1].ReviewDate.Equal(day(2024, 6, 18)) {
		t.Fatalf("expected newest first, got %+v", list)
	}

	found, err := svc.GetByDate(ctx, day(2024, 6, 17).Add(15*time.Hour))
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if found.Content != "复盘 2024-06-17" {
		t.Fatalf("unexpected review %s", found.Content)
	}
	if _, err := svc.GetByDate(ctx, day(2023, 1, 1)); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestDailyReviewServiceValidation(t *testing.T) {
	svc := NewDailyReviewService(setupServiceTestDB(t, "daily-review"))

	input := reviewInput("2024-06-18", "内容")
	input.MarketChangeRate = decimal.RequireFromString("1000.00")
	if _, err := svc.Create(context.Background(), input); !IsValidationError(err) {
		t.Fatalf("expected validation error for change rate, got %v", err)
	}

	input = reviewInput("2024-06-18", "内容")
	input.FallCount = -1
	if _, err := svc.Create(context.Background(), input); !IsValidationError(err) {
		t.Fatalf("expected validation error for count, got %v", err)
	}
}
