package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

type categoryCreateRequest struct {
	Name        string  `json:"name" binding:"required,max=50"`
	Description *string `json:"description"`
}

type categoryUpdateRequest struct {
	Name        *string                  `json:"name" binding:"omitempty,max=50"`
	Description service.Optional[string] `json:"description" swaggertype:"string"`
}

type categoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func newCategoryResponse(c db.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   formatDateTime(c.CreatedAt),
		UpdatedAt:   formatDateTime(c.UpdatedAt),
	}
}

// CreateCategory 创建分类
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param body body categoryCreateRequest true "category"
// @Success 201 {object} categoryResponse
// @Failure 422 {object} errorResponse
// @Router /categories/ [post]
func (a *API) CreateCategory(c *gin.Context) {
	var req categoryCreateRequest
	if !bindJSON(c, &req, "分类参数无效") {
		return
	}

	category, err := a.categories.Create(c.Request.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		a.fail(c, err, "创建分类失败")
		return
	}
	c.JSON(http.StatusCreated, newCategoryResponse(*category))
}

// ListCategories 获取分类列表
// @Summary List categories
// @Tags categories
// @Produce json
// @Param skip query int false "offset"
// @Param limit query int false "page size (1-1000)"
// @Success 200 {array} categoryResponse
// @Router /categories/ [get]
func (a *API) ListCategories(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}

	categories, err := a.categories.List(c.Request.Context(), q.page())
	if err != nil {
		a.fail(c, err, "获取分类列表失败")
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, newCategoryResponse(category))
	}
	c.JSON(http.StatusOK, resp)
}

// GetCategory 获取单个分类
// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path string true "category id"
// @Success 200 {object} categoryResponse
// @Failure 404 {object} errorResponse
// @Router /categories/{id} [get]
func (a *API) GetCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	category, err := a.categories.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取分类失败")
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(*category))
}

// UpdateCategory 部分更新分类
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "category id"
// @Param body body categoryUpdateRequest true "fields to change"
// @Success 200 {object} categoryResponse
// @Failure 404 {object} errorResponse
// @Router /categories/{id} [put]
func (a *API) UpdateCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req categoryUpdateRequest
	if !bindJSON(c, &req, "分类参数无效") {
		return
	}

	category, err := a.categories.Update(c.Request.Context(), id, service.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		a.fail(c, err, "更新分类失败")
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(*category))
}

// DeleteCategory 删除分类，仍被交易引用时返回 400
// @Summary Delete category
// @Tags categories
// @Param id path string true "category id"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /categories/{id} [delete]
func (a *API) DeleteCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := a.categories.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除分类失败")
		return
	}
	noContent(c)
}
