package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/internal/service"
)

type tradeCreateRequest struct {
	StockCode      string           `json:"stock_code" binding:"required,max=10"`
	StockName      string           `json:"stock_name" binding:"required,max=50"`
	BuyDate        *DateTime        `json:"buy_date" binding:"required" swaggertype:"string" format:"date-time"`
	BuyPrice       *decimal.Decimal `json:"buy_price" binding:"required" swaggertype:"string" example:"10.00"`
	BuyQuantity    int              `json:"buy_quantity" binding:"required,gt=0"`
	BuyReason      string           `json:"buy_reason" binding:"required"`
	CategoryID     *uuid.UUID       `json:"category_id" binding:"required" swaggertype:"string" format:"uuid"`
	SellDate       *DateTime        `json:"sell_date" swaggertype:"string" format:"date-time"`
	SellPrice      *decimal.Decimal `json:"sell_price" swaggertype:"string" example:"10.00"`
	ScreenshotURLs []string         `json:"screenshot_url"`
}

type tradeUpdateRequest struct {
	StockCode      *string                           `json:"stock_code" binding:"omitempty,max=10"`
	StockName      *string                           `json:"stock_name" binding:"omitempty,max=50"`
	BuyDate        *DateTime                         `json:"buy_date" swaggertype:"string" format:"date-time"`
	BuyPrice       *decimal.Decimal                  `json:"buy_price" swaggertype:"string" example:"10.00"`
	BuyQuantity    *int                              `json:"buy_quantity" binding:"omitempty,gt=0"`
	BuyReason      *string                           `json:"buy_reason"`
	CategoryID     *uuid.UUID                        `json:"category_id" swaggertype:"string" format:"uuid"`
	SellDate       service.Optional[DateTime]        `json:"sell_date" swaggertype:"string" format:"date-time"`
	SellPrice      service.Optional[decimal.Decimal] `json:"sell_price" swaggertype:"string" example:"10.00"`
	ScreenshotURLs service.Optional[[]string]        `json:"screenshot_url" swaggertype:"array,string"`
}

type tradeListQuery struct {
	pageQuery
	CategoryID string `form:"category_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	SortBy     string `form:"sort_by,default=buy_date" binding:"oneof=buy_date profit_amount profit_percentage"`
	SortOrder  string `form:"sort_order,default=desc" binding:"oneof=asc desc"`
}

type tradeResponse struct {
	ID               string   `json:"id"`
	StockCode        string   `json:"stock_code"`
	StockName        string   `json:"stock_name"`
	BuyDate          string   `json:"buy_date"`
	BuyPrice         string   `json:"buy_price"`
	BuyQuantity      int      `json:"buy_quantity"`
	BuyReason        string   `json:"buy_reason"`
	CategoryID       string   `json:"category_id"`
	SellDate         *string  `json:"sell_date"`
	SellPrice        *string  `json:"sell_price"`
	ScreenshotURLs   []string `json:"screenshot_url"`
	ProfitAmount     *string  `json:"profit_amount"`
	ProfitPercentage *string  `json:"profit_percentage"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

func newTradeResponse(v service.TradeView) tradeResponse {
	return tradeResponse{
		ID:               v.ID.String(),
		StockCode:        v.StockCode,
		StockName:        v.StockName,
		BuyDate:          formatDateTime(v.BuyDate),
		BuyPrice:         fixed2(v.BuyPrice),
		BuyQuantity:      v.BuyQuantity,
		BuyReason:        v.BuyReason,
		CategoryID:       v.CategoryID.String(),
		SellDate:         formatDateTimePtr(v.SellDate),
		SellPrice:        fixed2Ptr(v.SellPrice),
		ScreenshotURLs:   v.ScreenshotURLs,
		ProfitAmount:     fixed2Ptr(v.ProfitAmount),
		ProfitPercentage: fixed2Ptr(v.ProfitPercentage),
		CreatedAt:        formatDateTime(v.CreatedAt),
		UpdatedAt:        formatDateTime(v.UpdatedAt),
	}
}

// CreateTrade 创建交易记录，分类不存在时返回 404
// @Summary Create stock trade
// @Tags stock-trades
// @Accept json
// @Produce json
// @Param body body tradeCreateRequest true "trade"
// @Success 201 {object} tradeResponse
// @Failure 404 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /stock-trades/ [post]
func (a *API) CreateTrade(c *gin.Context) {
	var req tradeCreateRequest
	if !bindJSON(c, &req, "交易参数无效") {
		return
	}

	trade, err := a.trades.Create(c.Request.Context(), service.TradeInput{
		StockCode:      req.StockCode,
		StockName:      req.StockName,
		BuyDate:        req.BuyDate.Time,
		BuyPrice:       *req.BuyPrice,
		BuyQuantity:    req.BuyQuantity,
		BuyReason:      req.BuyReason,
		CategoryID:     *req.CategoryID,
		SellDate:       optionalTime(req.SellDate),
		SellPrice:      req.SellPrice,
		ScreenshotURLs: req.ScreenshotURLs,
	})
	if err != nil {
		a.fail(c, err, "创建交易记录失败")
		return
	}
	c.JSON(http.StatusCreated, newTradeResponse(*trade))
}

// ListTrades 获取交易列表，按盈亏排序时未平仓交易排在最后
// @Summary List stock trades
// @Tags stock-trades
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-1000)"
// @Param category_id query string false "category id"
// @Param start_date query string false "buy_date lower bound (inclusive)"
// @Param end_date query string false "buy_date upper bound (inclusive)"
// @Param sort_by query string false "sort key" Enums(buy_date, profit_amount, profit_percentage) default(buy_date)
// @Param sort_order query string false "sort direction" Enums(asc, desc) default(desc)
// @Success 200 {array} tradeResponse
// @Router /stock-trades/ [get]
func (a *API) ListTrades(c *gin.Context) {
	var q tradeListQuery
	if !bindQuery(c, &q) {
		return
	}

	filter := service.TradeFilter{
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.page(),
	}
	if raw := strings.TrimSpace(q.CategoryID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, "无效的 category_id")
			return
		}
		filter.CategoryID = &id
	}
	var ok bool
	if filter.StartDate, ok = parseTimeQuery(c, "start_date", q.StartDate); !ok {
		return
	}
	if filter.EndDate, ok = parseTimeQuery(c, "end_date", q.EndDate); !ok {
		return
	}

	trades, err := a.trades.List(c.Request.Context(), filter)
	if err != nil {
		a.fail(c, err, "获取交易列表失败")
		return
	}

	resp := make([]tradeResponse, 0, len(trades))
	for _, trade := range trades {
		resp = append(resp, newTradeResponse(trade))
	}
	c.JSON(http.StatusOK, resp)
}

// GetTrade 获取单笔交易
// @Summary Get stock trade
// @Tags stock-trades
// @Produce json
// @Param id path string true "trade id"
// @Success 200 {object} tradeResponse
// @Failure 404 {object} errorResponse
// @Router /stock-trades/{id} [get]
func (a *API) GetTrade(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	trade, err := a.trades.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取交易记录失败")
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(*trade))
}

// UpdateTrade 部分更新交易；sell_date/sell_price/screenshot_url 传 null 表示清空
// @Summary Update stock trade
// @Tags stock-trades
// @Accept json
// @Produce json
// @Param id path string true "trade id"
// @Param body body tradeUpdateRequest true "fields to change"
// @Success 200 {object} tradeResponse
// @Failure 404 {object} errorResponse
// @Router /stock-trades/{id} [put]
func (a *API) UpdateTrade(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeUpdateRequest
	if !bindJSON(c, &req, "交易参数无效") {
		return
	}

	input := service.TradeUpdate{
		StockCode:      req.StockCode,
		StockName:      req.StockName,
		BuyDate:        optionalTime(req.BuyDate),
		BuyPrice:       req.BuyPrice,
		BuyQuantity:    req.BuyQuantity,
		BuyReason:      req.BuyReason,
		CategoryID:     req.CategoryID,
		SellPrice:      req.SellPrice,
		ScreenshotURLs: req.ScreenshotURLs,
	}
	if req.SellDate.Set {
		input.SellDate = service.Optional[time.Time]{Set: true, Value: optionalTime(req.SellDate.Value)}
	}

	trade, err := a.trades.Update(c.Request.Context(), id, input)
	if err != nil {
		a.fail(c, err, "更新交易记录失败")
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(*trade))
}

// DeleteTrade 删除交易
// @Summary Delete stock trade
// @Tags stock-trades
// @Param id path string true "trade id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /stock-trades/{id} [delete]
func (a *API) DeleteTrade(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := a.trades.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除交易记录失败")
		return
	}
	noContent(c)
}

// parseTimeQuery 解析可选的日期查询参数，空值返回 nil
func parseTimeQuery(c *gin.Context, key, raw string) (*time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	t, err := parseDateTime(raw)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "无效的 "+key)
		return nil, false
	}
	return &t, true
}
