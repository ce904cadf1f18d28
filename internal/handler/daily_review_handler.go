package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

type dailyReviewCreateRequest struct {
	ReviewDate       *Date            `json:"review_date" binding:"required" swaggertype:"string" format:"date"`
	MarketIndex      *decimal.Decimal `json:"market_index" binding:"required" swaggertype:"string" example:"10.00"`
	TradingAmount    *decimal.Decimal `json:"trading_amount" binding:"required" swaggertype:"string" example:"10.00"`
	MarketChangeRate *decimal.Decimal `json:"market_change_rate" binding:"required" swaggertype:"string" example:"10.00"`
	LimitUpCount     *int             `json:"limit_up_count" binding:"required,min=0"`
	LimitDownCount   *int             `json:"limit_down_count" binding:"required,min=0"`
	RiseCount        *int             `json:"rise_count" binding:"required,min=0"`
	FallCount        *int             `json:"fall_count" binding:"required,min=0"`
	Content          string           `json:"content" binding:"required"`
}

type dailyReviewUpdateRequest struct {
	ReviewDate       *Date            `json:"review_date" swaggertype:"string" format:"date"`
	MarketIndex      *decimal.Decimal `json:"market_index" swaggertype:"string" example:"10.00"`
	TradingAmount    *decimal.Decimal `json:"trading_amount" swaggertype:"string" example:"10.00"`
	MarketChangeRate *decimal.Decimal `json:"market_change_rate" swaggertype:"string" example:"10.00"`
	LimitUpCount     *int             `json:"limit_up_count" binding:"omitempty,min=0"`
	LimitDownCount   *int             `json:"limit_down_count" binding:"omitempty,min=0"`
	RiseCount        *int             `json:"rise_count" binding:"omitempty,min=0"`
	FallCount        *int             `json:"fall_count" binding:"omitempty,min=0"`
	Content          *string          `json:"content"`
}

type dailyReviewResponse struct {
	ID               string `json:"id"`
	ReviewDate       string `json:"review_date"`
	MarketIndex      string `json:"market_index"`
	TradingAmount    string `json:"trading_amount"`
	MarketChangeRate string `json:"market_change_rate"`
	LimitUpCount     int    `json:"limit_up_count"`
	LimitDownCount   int    `json:"limit_down_count"`
	RiseCount        int    `json:"rise_count"`
	FallCount        int    `json:"fall_count"`
	Content          string `json:"content"`
	ContentHTML      string `json:"content_html"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func newDailyReviewResponse(r db.DailyReview) dailyReviewResponse {
	return dailyReviewResponse{
		ID:               r.ID.String(),
		ReviewDate:       formatDate(r.ReviewDate),
		MarketIndex:      fixed2(r.MarketIndex),
		TradingAmount:    fixed2(r.TradingAmount),
		MarketChangeRate: fixed2(r.MarketChangeRate),
		LimitUpCount:     r.LimitUpCount,
		LimitDownCount:   r.LimitDownCount,
		RiseCount:        r.RiseCount,
		FallCount:        r.FallCount,
		Content:          r.Content,
		ContentHTML:      renderMarkdown(r.Content),
		CreatedAt:        formatDateTime(r.CreatedAt),
		UpdatedAt:        formatDateTime(r.UpdatedAt),
	}
}

func optionalDate(v *Date) *time.Time {
	if v == nil {
		return nil
	}
	t := v.Time
	return &t
}

// CreateDailyReview 创建复盘，日期重复时返回 400
// @Summary Create daily review
// @Tags daily-reviews
// @Accept json
// @Produce json
// @Param body body dailyReviewCreateRequest true "review"
// @Success 201 {object} dailyReviewResponse
// @Failure 400 {object} errorResponse
// @Router /daily-reviews/ [post]
func (a *API) CreateDailyReview(c *gin.Context) {
	var req dailyReviewCreateRequest
	if !bindJSON(c, &req, "复盘参数无效") {
		return
	}

	review, err := a.reviews.Create(c.Request.Context(), service.DailyReviewInput{
		ReviewDate:       req.ReviewDate.Time,
		MarketIndex:      *req.MarketIndex,
		TradingAmount:    *req.TradingAmount,
		MarketChangeRate: *req.MarketChangeRate,
		LimitUpCount:     *req.LimitUpCount,
		LimitDownCount:   *req.LimitDownCount,
		RiseCount:        *req.RiseCount,
		FallCount:        *req.FallCount,
		Content:          req.Content,
	})
	if err != nil {
		a.fail(c, err, "创建复盘失败")
		return
	}
	c.JSON(http.StatusCreated, newDailyReviewResponse(*review))
}

// ListDailyReviews 按日期倒序返回复盘
// @Summary List daily reviews
// @Tags daily-reviews
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-1000)"
// @Success 200 {array} dailyReviewResponse
// @Router /daily-reviews/ [get]
func (a *API) ListDailyReviews(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}

	reviews, err := a.reviews.List(c.Request.Context(), q.page())
	if err != nil {
		a.fail(c, err, "获取复盘列表失败")
		return
	}

	resp := make([]dailyReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, newDailyReviewResponse(review))
	}
	c.JSON(http.StatusOK, resp)
}

// GetDailyReview 按 ID 获取复盘
// @Summary Get daily review
// @Tags daily-reviews
// @Produce json
// @Param id path string true "review id"
// @Success 200 {object} dailyReviewResponse
// @Failure 404 {object} errorResponse
// @Router /daily-reviews/{id} [get]
func (a *API) GetDailyReview(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	review, err := a.reviews.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取复盘失败")
		return
	}
	c.JSON(http.StatusOK, newDailyReviewResponse(*review))
}

// GetDailyReviewByDate 按日期获取复盘
// @Summary Get daily review by date
// @Tags daily-reviews
// @Produce json
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} dailyReviewResponse
// @Failure 404 {object} errorResponse
// @Router /daily-reviews/by-date/{date} [get]
func (a *API) GetDailyReviewByDate(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	review, err := a.reviews.GetByDate(c.Request.Context(), date)
	if err != nil {
		a.fail(c, err, "获取复盘失败")
		return
	}
	c.JSON(http.StatusOK, newDailyReviewResponse(*review))
}

// UpdateDailyReview 部分更新复盘，日期与其他记录冲突时返回 400
// @Summary Update daily review
// @Tags daily-reviews
// @Accept json
// @Produce json
// @Param id path string true "review id"
// @Param body body dailyReviewUpdateRequest true "fields to change"
// @Success 200 {object} dailyReviewResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /daily-reviews/{id} [put]
func (a *API) UpdateDailyReview(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dailyReviewUpdateRequest
	if !bindJSON(c, &req, "复盘参数无效") {
		return
	}

	review, err := a.reviews.Update(c.Request.Context(), id, service.DailyReviewUpdate{
		ReviewDate:       optionalDate(req.ReviewDate),
		MarketIndex:      req.MarketIndex,
		TradingAmount:    req.TradingAmount,
		MarketChangeRate: req.MarketChangeRate,
		LimitUpCount:     req.LimitUpCount,
		LimitDownCount:   req.LimitDownCount,
		RiseCount:        req.RiseCount,
		FallCount:        req.FallCount,
		Content:          req.Content,
	})
	if err != nil {
		a.fail(c, err, "更新复盘失败")
		return
	}
	c.JSON(http.StatusOK, newDailyReviewResponse(*review))
}

// DeleteDailyReview 删除复盘
// @Summary Delete daily review
// @Tags daily-reviews
// @Param id path string true "review id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /daily-reviews/{id} [delete]
func (a *API) DeleteDailyReview(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := a.reviews.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除复盘失败")
		return
	}
	noContent(c)
}

func parseDateParam(c *gin.Context, key string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, c.Param(key))
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "日期格式应为 YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
