package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

type referenceCreateRequest struct {
	Title     string `json:"title" binding:"required,max=100"`
	Content   string `json:"content" binding:"required"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

type referenceUpdateRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=100"`
	Content   *string `json:"content"`
	IsActive  *bool   `json:"is_active"`
	SortOrder *int    `json:"sort_order"`
}

type referenceResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newReferenceResponse(item db.ReferenceItem) referenceResponse {
	return referenceResponse{
		ID:          item.ID.String(),
		Title:       item.Title,
		Content:     item.Content,
		ContentHTML: renderMarkdown(item.Content),
		IsActive:    item.IsActive,
		SortOrder:   item.SortOrder,
		CreatedAt:   formatDateTime(item.CreatedAt),
		UpdatedAt:   formatDateTime(item.UpdatedAt),
	}
}

// 交易体系与交易禁令共用下面的实现，对外各自暴露一组带文档注解的方法

func (a *API) createReference(c *gin.Context, svc *service.ReferenceService) {
	var req referenceCreateRequest
	if !bindJSON(c, &req, "条目参数无效") {
		return
	}

	item, err := svc.Create(c.Request.Context(), service.ReferenceInput{
		Title:     req.Title,
		Content:   req.Content,
		IsActive:  req.IsActive,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		a.fail(c, err, "创建条目失败")
		return
	}
	c.JSON(http.StatusCreated, newReferenceResponse(*item))
}

func (a *API) listReferences(c *gin.Context, svc *service.ReferenceService) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	onlyActive, ok := parseBoolQuery(c, "only_active")
	if !ok {
		return
	}

	items, err := svc.List(c.Request.Context(), service.ReferenceFilter{OnlyActive: onlyActive, Page: q.page()})
	if err != nil {
		a.fail(c, err, "获取条目列表失败")
		return
	}
	resp := make([]referenceResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, newReferenceResponse(item))
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) getReference(c *gin.Context, svc *service.ReferenceService) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	item, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取条目失败")
		return
	}
	c.JSON(http.StatusOK, newReferenceResponse(*item))
}

func (a *API) updateReference(c *gin.Context, svc *service.ReferenceService) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req referenceUpdateRequest
	if !bindJSON(c, &req, "条目参数无效") {
		return
	}

	item, err := svc.Update(c.Request.Context(), id, service.ReferenceUpdate{
		Title:     req.Title,
		Content:   req.Content,
		IsActive:  req.IsActive,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		a.fail(c, err, "更新条目失败")
		return
	}
	c.JSON(http.StatusOK, newReferenceResponse(*item))
}

func (a *API) deleteReference(c *gin.Context, svc *service.ReferenceService) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := svc.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除条目失败")
		return
	}
	noContent(c)
}

// CreateTradingSystem 新增交易体系条目
// @Summary Create trading system entry
// @Tags trading-systems
// @Accept json
// @Produce json
// @Param body body referenceCreateRequest true "entry"
// @Success 201 {object} referenceResponse
// @Failure 422 {object} errorResponse
// @Router /trading-systems/ [post]
func (a *API) CreateTradingSystem(c *gin.Context) { a.createReference(c, a.systems) }

// ListTradingSystems 按排序值返回交易体系条目
// @Summary List trading system entries
// @Tags trading-systems
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-1000)"
// @Param only_active query bool false "only active entries"
// @Success 200 {array} referenceResponse
// @Router /trading-systems/ [get]
func (a *API) ListTradingSystems(c *gin.Context) { a.listReferences(c, a.systems) }

// GetTradingSystem 获取交易体系条目
// @Summary Get trading system entry
// @Tags trading-systems
// @Produce json
// @Param id path string true "entry id"
// @Success 200 {object} referenceResponse
// @Failure 404 {object} errorResponse
// @Router /trading-systems/{id} [get]
func (a *API) GetTradingSystem(c *gin.Context) { a.getReference(c, a.systems) }

// UpdateTradingSystem 部分更新交易体系条目
// @Summary Update trading system entry
// @Tags trading-systems
// @Accept json
// @Produce json
// @Param id path string true "entry id"
// @Param body body referenceUpdateRequest true "fields to change"
// @Success 200 {object} referenceResponse
// @Failure 404 {object} errorResponse
// @Router /trading-systems/{id} [put]
func (a *API) UpdateTradingSystem(c *gin.Context) { a.updateReference(c, a.systems) }

// DeleteTradingSystem 删除交易体系条目
// @Summary Delete trading system entry
// @Tags trading-systems
// @Param id path string true "entry id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /trading-systems/{id} [delete]
func (a *API) DeleteTradingSystem(c *gin.Context) { a.deleteReference(c, a.systems) }

// CreateTradingRestriction 新增交易禁令
// @Summary Create trading restriction
// @Tags trading-restrictions
// @Accept json
// @Produce json
// @Param body body referenceCreateRequest true "entry"
// @Success 201 {object} referenceResponse
// @Failure 422 {object} errorResponse
// @Router /trading-restrictions/ [post]
func (a *API) CreateTradingRestriction(c *gin.Context) { a.createReference(c, a.restrictions) }

// ListTradingRestrictions 按排序值返回交易禁令
// @Summary List trading restrictions
// @Tags trading-restrictions
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-1000)"
// @Param only_active query bool false "only active entries"
// @Success 200 {array} referenceResponse
// @Router /trading-restrictions/ [get]
func (a *API) ListTradingRestrictions(c *gin.Context) { a.listReferences(c, a.restrictions) }

// GetTradingRestriction 获取交易禁令
// @Summary Get trading restriction
// @Tags trading-restrictions
// @Produce json
// @Param id path string true "entry id"
// @Success 200 {object} referenceResponse
// @Failure 404 {object} errorResponse
// @Router /trading-restrictions/{id} [get]
func (a *API) GetTradingRestriction(c *gin.Context) { a.getReference(c, a.restrictions) }

// UpdateTradingRestriction 部分更新交易禁令
// @Summary Update trading restriction
// @Tags trading-restrictions
// @Accept json
// @Produce json
// @Param id path string true "entry id"
// @Param body body referenceUpdateRequest true "fields to change"
// @Success 200 {object} referenceResponse
// @Failure 404 {object} errorResponse
// @Router /trading-restrictions/{id} [put]
func (a *API) UpdateTradingRestriction(c *gin.Context) { a.updateReference(c, a.restrictions) }

// DeleteTradingRestriction 删除交易禁令
// @Summary Delete trading restriction
// @Tags trading-restrictions
// @Param id path string true "entry id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /trading-restrictions/{id} [delete]
func (a *API) DeleteTradingRestriction(c *gin.Context) { a.deleteReference(c, a.restrictions) }
