package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

type dailyFundCreateRequest struct {
	FundDate       *Date            `json:"fund_date" binding:"required" swaggertype:"string" format:"date"`
	TotalAmount    *decimal.Decimal `json:"total_amount" binding:"required" swaggertype:"string" example:"10.00"`
	StockAmount    *decimal.Decimal `json:"stock_amount" swaggertype:"string" example:"10.00"`
	CashAmount     *decimal.Decimal `json:"cash_amount" swaggertype:"string" example:"10.00"`
	ProfitAmount   *decimal.Decimal `json:"profit_amount" swaggertype:"string" example:"10.00"`
	ProfitRate     *decimal.Decimal `json:"profit_rate" swaggertype:"string" example:"10.00"`
	CumulativeRate *decimal.Decimal `json:"cumulative_rate" swaggertype:"string" example:"10.00"`
	Notes          *string          `json:"notes"`
}

type dailyFundUpdateRequest struct {
	FundDate       *Date                             `json:"fund_date" swaggertype:"string" format:"date"`
	TotalAmount    *decimal.Decimal                  `json:"total_amount" swaggertype:"string" example:"10.00"`
	StockAmount    *decimal.Decimal                  `json:"stock_amount" swaggertype:"string" example:"10.00"`
	CashAmount     *decimal.Decimal                  `json:"cash_amount" swaggertype:"string" example:"10.00"`
	ProfitAmount   service.Optional[decimal.Decimal] `json:"profit_amount" swaggertype:"string" example:"10.00"`
	ProfitRate     service.Optional[decimal.Decimal] `json:"profit_rate" swaggertype:"string" example:"10.00"`
	CumulativeRate service.Optional[decimal.Decimal] `json:"cumulative_rate" swaggertype:"string" example:"10.00"`
	Notes          service.Optional[string]          `json:"notes" swaggertype:"string"`
}

type dailyFundListQuery struct {
	pageQuery
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type recentFundsQuery struct {
	Days int `form:"days,default=30" binding:"min=1,max=365"`
}

type dailyFundResponse struct {
	ID             string  `json:"id"`
	FundDate       string  `json:"fund_date"`
	TotalAmount    string  `json:"total_amount"`
	StockAmount    string  `json:"stock_amount"`
	CashAmount     string  `json:"cash_amount"`
	ProfitAmount   *string `json:"profit_amount"`
	ProfitRate     *string `json:"profit_rate"`
	CumulativeRate *string `json:"cumulative_rate"`
	Notes          *string `json:"notes"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func newDailyFundResponse(f db.DailyFund) dailyFundResponse {
	return dailyFundResponse{
		ID:             f.ID.String(),
		FundDate:       formatDate(f.FundDate),
		TotalAmount:    fixed2(f.TotalAmount),
		StockAmount:    fixed2(f.StockAmount),
		CashAmount:     fixed2(f.CashAmount),
		ProfitAmount:   fixed2Ptr(f.ProfitAmount),
		ProfitRate:     fixed4Ptr(f.ProfitRate),
		CumulativeRate: fixed4Ptr(f.CumulativeRate),
		Notes:          f.Notes,
		CreatedAt:      formatDateTime(f.CreatedAt),
		UpdatedAt:      formatDateTime(f.UpdatedAt),
	}
}

func newDailyFundResponses(funds []db.DailyFund) []dailyFundResponse {
	resp := make([]dailyFundResponse, 0, len(funds))
	for _, fund := range funds {
		resp = append(resp, newDailyFundResponse(fund))
	}
	return resp
}

// CreateDailyFund 创建每日资金记录，日期重复时返回 400
// @Summary Create daily fund
// @Tags daily-funds
// @Accept json
// @Produce json
// @Param body body dailyFundCreateRequest true "fund snapshot"
// @Success 201 {object} dailyFundResponse
// @Failure 400 {object} errorResponse
// @Router /daily-funds/ [post]
func (a *API) CreateDailyFund(c *gin.Context) {
	var req dailyFundCreateRequest
	if !bindJSON(c, &req, "资金参数无效") {
		return
	}

	fund, err := a.funds.Create(c.Request.Context(), service.DailyFundInput{
		FundDate:       req.FundDate.Time,
		TotalAmount:    *req.TotalAmount,
		StockAmount:    req.StockAmount,
		CashAmount:     req.CashAmount,
		ProfitAmount:   req.ProfitAmount,
		ProfitRate:     req.ProfitRate,
		CumulativeRate: req.CumulativeRate,
		Notes:          req.Notes,
	})
	if err != nil {
		a.fail(c, err, "创建资金记录失败")
		return
	}
	c.JSON(http.StatusCreated, newDailyFundResponse(*fund))
}

// ListDailyFunds 按日期倒序返回资金记录
// @Summary List daily funds
// @Tags daily-funds
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-1000)"
// @Param start_date query string false "YYYY-MM-DD (inclusive)"
// @Param end_date query string false "YYYY-MM-DD (inclusive)"
// @Success 200 {array} dailyFundResponse
// @Router /daily-funds/ [get]
func (a *API) ListDailyFunds(c *gin.Context) {
	var q dailyFundListQuery
	if !bindQuery(c, &q) {
		return
	}

	filter := service.DailyFundFilter{Page: q.page()}
	var ok bool
	if filter.StartDate, ok = parseTimeQuery(c, "start_date", q.StartDate); !ok {
		return
	}
	if filter.EndDate, ok = parseTimeQuery(c, "end_date", q.EndDate); !ok {
		return
	}

	funds, err := a.funds.List(c.Request.Context(), filter)
	if err != nil {
		a.fail(c, err, "获取资金列表失败")
		return
	}
	c.JSON(http.StatusOK, newDailyFundResponses(funds))
}

// ListRecentDailyFunds 返回最近 N 天的资金记录，按日期升序
// @Summary List recent daily funds
// @Tags daily-funds
// @Produce json
// @Param days query int false "window in days" minimum(1) maximum(365) default(30)
// @Success 200 {array} dailyFundResponse
// @Router /daily-funds/recent [get]
func (a *API) ListRecentDailyFunds(c *gin.Context) {
	var q recentFundsQuery
	if !bindQuery(c, &q) {
		return
	}

	funds, err := a.funds.Recent(c.Request.Context(), q.Days)
	if err != nil {
		a.fail(c, err, "获取最近资金记录失败")
		return
	}
	c.JSON(http.StatusOK, newDailyFundResponses(funds))
}

// GetDailyFund 按 ID 获取资金记录
// @Summary Get daily fund
// @Tags daily-funds
// @Produce json
// @Param id path string true "fund id"
// @Success 200 {object} dailyFundResponse
// @Failure 404 {object} errorResponse
// @Router /daily-funds/{id} [get]
func (a *API) GetDailyFund(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	fund, err := a.funds.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取资金记录失败")
		return
	}
	c.JSON(http.StatusOK, newDailyFundResponse(*fund))
}

// GetDailyFundByDate 按日期获取资金记录
// @Summary Get daily fund by date
// @Tags daily-funds
// @Produce json
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} dailyFundResponse
// @Failure 404 {object} errorResponse
// @Router /daily-funds/date/{date} [get]
func (a *API) GetDailyFundByDate(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	fund, err := a.funds.GetByDate(c.Request.Context(), date)
	if err != nil {
		a.fail(c, err, "获取资金记录失败")
		return
	}
	c.JSON(http.StatusOK, newDailyFundResponse(*fund))
}

// UpdateDailyFund 部分更新资金记录
// @Summary Update daily fund
// @Tags daily-funds
// @Accept json
// @Produce json
// @Param id path string true "fund id"
// @Param body body dailyFundUpdateRequest true "fields to change"
// @Success 200 {object} dailyFundResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /daily-funds/{id} [put]
func (a *API) UpdateDailyFund(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dailyFundUpdateRequest
	if !bindJSON(c, &req, "资金参数无效") {
		return
	}

	fund, err := a.funds.Update(c.Request.Context(), id, service.DailyFundUpdate{
		FundDate:       optionalDate(req.FundDate),
		TotalAmount:    req.TotalAmount,
		StockAmount:    req.StockAmount,
		CashAmount:     req.CashAmount,
		ProfitAmount:   req.ProfitAmount,
		ProfitRate:     req.ProfitRate,
		CumulativeRate: req.CumulativeRate,
		Notes:          req.Notes,
	})
	if err != nil {
		a.fail(c, err, "更新资金记录失败")
		return
	}
	c.JSON(http.StatusOK, newDailyFundResponse(*fund))
}

// DeleteDailyFund 删除资金记录
// @Summary Delete daily fund
// @Tags daily-funds
// @Param id path string true "fund id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /daily-funds/{id} [delete]
func (a *API) DeleteDailyFund(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := a.funds.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除资金记录失败")
		return
	}
	noContent(c)
}
