package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

type failureCaseCreateRequest struct {
	StockCode string   `json:"stock_code" binding:"required,max=10"`
	StockName string   `json:"stock_name" binding:"required,max=50"`
	Images    []string `json:"images" binding:"required,min=1"`
	Reason    string   `json:"reason" binding:"required"`
	Lessons   string   `json:"lessons" binding:"required"`
}

type failureCaseUpdateRequest struct {
	StockCode *string   `json:"stock_code" binding:"omitempty,max=10"`
	StockName *string   `json:"stock_name" binding:"omitempty,max=50"`
	Images    *[]string `json:"images"`
	Reason    *string   `json:"reason"`
	Lessons   *string   `json:"lessons"`
}

type failureCaseResponse struct {
	ID          string   `json:"id"`
	StockCode   string   `json:"stock_code"`
	StockName   string   `json:"stock_name"`
	Images      []string `json:"images"`
	Reason      string   `json:"reason"`
	Lessons     string   `json:"lessons"`
	LessonsHTML string   `json:"lessons_html"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func newFailureCaseResponse(fc db.FailureCase) failureCaseResponse {
	images := []string(fc.Images)
	if images == nil {
		images = []string{}
	}
	return failureCaseResponse{
		ID:          fc.ID.String(),
		StockCode:   fc.StockCode,
		StockName:   fc.StockName,
		Images:      images,
		Reason:      fc.Reason,
		Lessons:     fc.Lessons,
		LessonsHTML: renderMarkdown(fc.Lessons),
		CreatedAt:   formatDateTime(fc.CreatedAt),
		UpdatedAt:   formatDateTime(fc.UpdatedAt),
	}
}

// CreateFailureCase 创建失败案例
// @Summary Create failure case
// @Tags failure-cases
// @Accept json
// @Produce json
// @Param body body failureCaseCreateRequest true "failure case"
// @Success 201 {object} failureCaseResponse
// @Failure 422 {object} errorResponse
// @Router /failure-cases/ [post]
func (a *API) CreateFailureCase(c *gin.Context) {
	var req failureCaseCreateRequest
	if !bindJSON(c, &req, "失败案例参数无效") {
		return
	}

	fc, err := a.failureCases.Create(c.Request.Context(), service.FailureCaseInput{
		StockCode: req.StockCode,
		StockName: req.StockName,
		Images:    req.Images,
		Reason:    req.Reason,
		Lessons:   req.Lessons,
	})
	if err != nil {
		a.fail(c, err, "创建失败案例失败")
		return
	}
	c.JSON(http.StatusCreated, newFailureCaseResponse(*fc))
}

// ListFailureCases 按创建时间倒序返回失败案例
// @Summary List failure cases
// @Tags failure-cases
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-1000)"
// @Success 200 {array} failureCaseResponse
// @Router /failure-cases/ [get]
func (a *API) ListFailureCases(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}

	cases, err := a.failureCases.List(c.Request.Context(), q.page())
	if err != nil {
		a.fail(c, err, "获取失败案例列表失败")
		return
	}

	resp := make([]failureCaseResponse, 0, len(cases))
	for _, fc := range cases {
		resp = append(resp, newFailureCaseResponse(fc))
	}
	c.JSON(http.StatusOK, resp)
}

// GetFailureCase 获取失败案例
// @Summary Get failure case
// @Tags failure-cases
// @Produce json
// @Param id path string true "failure case id"
// @Success 200 {object} failureCaseResponse
// @Failure 404 {object} errorResponse
// @Router /failure-cases/{id} [get]
func (a *API) GetFailureCase(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	fc, err := a.failureCases.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取失败案例失败")
		return
	}
	c.JSON(http.StatusOK, newFailureCaseResponse(*fc))
}

// UpdateFailureCase 部分更新失败案例
// @Summary Update failure case
// @Tags failure-cases
// @Accept json
// @Produce json
// @Param id path string true "failure case id"
// @Param body body failureCaseUpdateRequest true "fields to change"
// @Success 200 {object} failureCaseResponse
// @Failure 404 {object} errorResponse
// @Router /failure-cases/{id} [put]
func (a *API) UpdateFailureCase(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req failureCaseUpdateRequest
	if !bindJSON(c, &req, "失败案例参数无效") {
		return
	}

	fc, err := a.failureCases.Update(c.Request.Context(), id, service.FailureCaseUpdate{
		StockCode: req.StockCode,
		StockName: req.StockName,
		Images:    req.Images,
		Reason:    req.Reason,
		Lessons:   req.Lessons,
	})
	if err != nil {
		a.fail(c, err, "更新失败案例失败")
		return
	}
	c.JSON(http.StatusOK, newFailureCaseResponse(*fc))
}

// DeleteFailureCase 删除失败案例
// @Summary Delete failure case
// @Tags failure-cases
// @Param id path string true "failure case id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /failure-cases/{id} [delete]
func (a *API) DeleteFailureCase(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := a.failureCases.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除失败案例失败")
		return
	}
	noContent(c)
}
