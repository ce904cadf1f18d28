package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelog/internal/db"
)

func TestCategoryServiceDeleteRestrictedWhileReferenced(t *testing.T) {
	gdb := setupServiceTestDB(t, "category-service")
	ctx := context.Background()
	svc := NewCategoryService(gdb)

	category, err := svc.Create(ctx, CategoryInput{Name: "长线"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	trade, err := NewTradeService(gdb).Create(ctx, TradeInput{
		StockCode:   "600036",
		StockName:   "招商银行",
		BuyDate:     day(2024, 1, 2),
		BuyPrice:    decimal.RequireFromString("30.00"),
		BuyQuantity: 200,
		BuyReason:   "高股息",
		CategoryID:  category.ID,
	})
	if err != nil {
		t.Fatalf("create trade: %v", err)
	}

	if err := svc.Delete(ctx, category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	var count int64
	gdb.Model(&db.Category{}).Where("id = ?", category.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected category to remain, count=%d", count)
	}

	if err := NewTradeService(gdb).Delete(ctx, trade.ID); err != nil {
		t.Fatalf("delete trade: %v", err)
	}
	if err := svc.Delete(ctx, category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	gdb.Model(&db.Category{}).Where("id = ?", category.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected category to be removed, count=%d", count)
	}
}

func TestCategoryServiceDeleteMissing(t *testing.T) {
	svc := NewCategoryService(setupServiceTestDB(t, "category-service"))
	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryServiceListAndUpdate(t *testing.T) {
	svc := NewCategoryService(setupServiceTestDB(t, "category-service"))
	ctx := context.Background()

	desc := "  低吸  "
	first, err := svc.Create(ctx, CategoryInput{Name: " 短线 ", Description: &desc})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Name != "短线" || first.Description == nil || *first.Description != "低吸" {
		t.Fatalf("expected trimmed fields, got %q / %v", first.Name, first.Description)
	}
	if _, err := svc.Create(ctx, CategoryInput{Name: "长线"}); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := svc.Create(ctx, CategoryInput{Name: ""}); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	list, err := svc.List(ctx, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "短线" {
		t.Fatalf("expected creation order, got %+v", list)
	}

	updated, err := svc.Update(ctx, first.ID, CategoryUpdate{Description: Null[string]()})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != nil || updated.Name != "短线" {
		t.Fatalf("expected cleared description, got %+v", updated)
	}

	if _, err := svc.Update(ctx, uuid.New(), CategoryUpdate{}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryServiceDeleteRestrictedByForeignKey(t *testing.T) {
	gdb := setupServiceTestDB(t, "category-service")
	ctx := context.Background()
	svc := NewCategoryService(gdb)

	category, err := svc.Create(ctx, CategoryInput{Name: "超短"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	// 引用检查通过之后、删除执行之前写入一笔交易
	var insertErr error
	err = gdb.Callback().Delete().Before("gorm:delete").Register("test:insert_trade", func(tx *gorm.DB) {
		if tx.Statement.Table != "categories" {
			return
		}
		insertErr = tx.Session(&gorm.Session{NewDB: true}).Create(&db.StockTrade{
			StockCode:   "300750",
			StockName:   "宁德时代",
			BuyDate:     day(2024, 5, 6),
			BuyPrice:    decimal.RequireFromString("180.00"),
			BuyQuantity: 100,
			BuyReason:   "回踩",
			CategoryID:  category.ID,
		}).Error
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if err := svc.Delete(ctx, category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if insertErr != nil {
		t.Fatalf("insert trade inside delete: %v", insertErr)
	}

	var count int64
	gdb.Model(&db.Category{}).Where("id = ?", category.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected category to remain, count=%d", count)
	}
}
