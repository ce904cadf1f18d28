package handler

import (
	"net/http"
	"testing"
)

func tradePayload(categoryID, code, buyDate, buyPrice string, qty int, sellPrice any) map[string]any {
	payload := map[string]any{
		"stock_code":   code,
		"stock_name":   "测试" + code,
		"buy_date":     buyDate,
		"buy_price":    buyPrice,
		"buy_quantity": qty,
		"buy_reason":   "回踩均线",
		"category_id":  categoryID,
	}
	if sellPrice != nil {
		payload["sell_date"] = "2024-06-28T14:50:00Z"
		payload["sell_price"] = sellPrice
	}
	return payload
}

func TestCreateTradeReturnsProfit(t *testing.T) {
	api, _ := setupTestAPI(t, nil)
	category := createCategory(t, api, "波段")

	w := call(t, api.CreateTrade, http.MethodPost, "/stock-trades/",
		tradePayload(category.ID, "600519", "2024-06-03T10:00:00+08:00", "10.00", 100, "12.50"))
	expectStatus(t, w, http.StatusCreated)

	got := decodeBody[tradeResponse](t, w)
	if got.ProfitAmount == nil || *got.ProfitAmount != "250.00" {
		t.Fatalf("expected profit amount 250.00, got %v", got.ProfitAmount)
	}
	if got.ProfitPercentage == nil || *got.ProfitPercentage != "25.00" {
		t.Fatalf("expected profit percentage 25.00, got %v", got.ProfitPercentage)
	}
	if got.BuyDate != "2024-06-03T02:00:00Z" {
		t.Fatalf("expected buy date normalized to UTC, got %s", got.BuyDate)
	}
}

func TestCreateTradeUnknownCategory(t *testing.T) {
	api, _ := setupTestAPI(t, nil)

	w := call(t, api.CreateTrade, http.MethodPost, "/stock-trades/",
		tradePayload("6f1c3a4e-8b7d-4f7a-9c61-3f2d9a0b1e55", "000001", "2024-06-03", "10.00", 100, nil))
	expectStatus(t, w, http.StatusNotFound)
}

func TestCreateTradeRejectsBadInput(t *testing.T) {
	api, _ := setupTestAPI(t, nil)
	category := createCategory(t, api, "波段")

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{name: "zero quantity", payload: tradePayload(category.ID, "000001", "2024-06-03", "10.00", 0, nil)},
		{name: "bad date", payload: tradePayload(category.ID, "000001", "03/06/2024", "10.00", 100, nil)},
		{name: "long code", payload: tradePayload(category.ID, "00000100001", "2024-06-03", "10.00", 100, nil)},
		{name: "negative price", payload: tradePayload(category.ID, "000001", "2024-06-03", "-1", 100, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, api.CreateTrade, http.MethodPost, "/stock-trades/", tt.payload)
			expectStatus(t, w, http.StatusUnprocessableEntity)
		})
	}
}

func TestListTradesSortsByProfit(t *testing.T) {
	api, _ := setupTestAPI(t, nil)
	category := createCategory(t, api, "波段")

	seed := []map[string]any{
		tradePayload(category.ID, "A", "2024-06-01", "10.00", 100, "11.00"),
		tradePayload(category.ID, "B", "2024-06-02", "10.00", 100, nil),
		tradePayload(category.ID, "C", "2024-06-03", "10.00", 100, "9.00"),
		tradePayload(category.ID, "D", "2024-06-04", "10.00", 100, "15.00"),
	}
	for _, payload := range seed {
		expectStatus(t, call(t, api.CreateTrade, http.MethodPost, "/stock-trades/", payload), http.StatusCreated)
	}

	w := call(t, api.ListTrades, http.MethodGet, "/stock-trades/?sort_by=profit_amount&sort_order=desc", nil)
	expectStatus(t, w, http.StatusOK)

	got := decodeBody[[]tradeResponse](t, w)
	want := []string{"D", "A", "C", "B"}
	if len(got) != len(want) {
		t.Fatalf("expected %d trades, got %d", len(want), len(got))
	}
	for i, code := range want {
		if got[i].StockCode != code {
			t.Fatalf("position %d: expected %s, got %s", i, code, got[i].StockCode)
		}
	}
	if got[3].ProfitAmount != nil {
		t.Fatalf("expected open trade without profit, got %s", *got[3].ProfitAmount)
	}

	w = call(t, api.ListTrades, http.MethodGet, "/stock-trades/?sort_by=profit_amount&sort_order=asc&skip=1&limit=2", nil)
	expectStatus(t, w, http.StatusOK)
	page := decodeBody[[]tradeResponse](t, w)
	if len(page) != 2 || page[0].StockCode != "A" || page[1].StockCode != "D" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestListTradesRejectsBadQuery(t *testing.T) {
	api, _ := setupTestAPI(t, nil)

	for _, target := range []string{
		"/stock-trades/?sort_by=stock_code",
		"/stock-trades/?sort_order=up",
		"/stock-trades/?limit=1001",
		"/stock-trades/?skip=-1",
		"/stock-trades/?category_id=nope",
		"/stock-trades/?start_date=yesterday",
	} {
		w := call(t, api.ListTrades, http.MethodGet, target, nil)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", target, w.Code)
		}
	}
}

func TestUpdateTradeReopensWithNull(t *testing.T) {
	api, _ := setupTestAPI(t, nil)
	category := createCategory(t, api, "波段")

	w := call(t, api.CreateTrade, http.MethodPost, "/stock-trades/",
		tradePayload(category.ID, "600036", "2024-06-03", "30.00", 200, "33.00"))
	expectStatus(t, w, http.StatusCreated)
	created := decodeBody[tradeResponse](t, w)

	w = call(t, api.UpdateTrade, http.MethodPut, "/stock-trades/"+created.ID,
		map[string]any{"sell_date": nil, "sell_price": nil, "stock_name": "招商银行"}, idParam(created.ID))
	expectStatus(t, w, http.StatusOK)

	got := decodeBody[tradeResponse](t, w)
	if got.SellDate != nil || got.SellPrice != nil || got.ProfitAmount != nil {
		t.Fatalf("expected trade reopened, got %+v", got)
	}
	if got.StockName != "招商银行" || got.BuyPrice != "30.00" {
		t.Fatalf("unexpected fields after update: %+v", got)
	}
}

func TestDeleteTrade(t *testing.T) {
	api, _ := setupTestAPI(t, nil)
	category := createCategory(t, api, "波段")

	w := call(t, api.CreateTrade, http.MethodPost, "/stock-trades/",
		tradePayload(category.ID, "600036", "2024-06-03", "30.00", 200, nil))
	created := decodeBody[tradeResponse](t, w)

	expectStatus(t, call(t, api.DeleteTrade, http.MethodDelete, "/", nil, idParam(created.ID)), http.StatusNoContent)
	expectStatus(t, call(t, api.GetTrade, http.MethodGet, "/", nil, idParam(created.ID)), http.StatusNotFound)
}
