package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradelog/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, errorResponse{Error: message})
}

// noContent 立即写出 204，不依赖引擎在请求结束时补写状态行
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

// bindJSON 解析请求体，格式或必填校验失败时返回 422
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("%s: %v", message, err))
		return false
	}
	return true
}

func parseUUIDParam(c *gin.Context, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("无效的 %s", key))
		return uuid.Nil, false
	}
	return id, true
}

type pageQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=1000"`
}

func (q pageQuery) page() service.Page {
	return service.Page{Skip: q.Skip, Limit: q.Limit}
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("查询参数无效: %v", err))
		return false
	}
	return true
}

func parseBoolQuery(c *gin.Context, key string) (bool, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("无效的 %s", key))
		return false, false
	}
	return v, true
}

// fail 将服务层错误映射为 HTTP 状态码，未识别的错误记日志并返回 500
func (a *API) fail(c *gin.Context, err error, fallback string) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusUnprocessableEntity, validation.Error())
	case errors.Is(err, service.ErrInvalidTradeFigures):
		respondError(c, http.StatusUnprocessableEntity, "买入价与数量必须为正数")
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "分类未找到")
	case errors.Is(err, service.ErrTradeNotFound):
		respondError(c, http.StatusNotFound, "交易记录未找到")
	case errors.Is(err, service.ErrFailureCaseNotFound):
		respondError(c, http.StatusNotFound, "失败案例未找到")
	case errors.Is(err, service.ErrReviewNotFound):
		respondError(c, http.StatusNotFound, "复盘记录未找到")
	case errors.Is(err, service.ErrFundNotFound):
		respondError(c, http.StatusNotFound, "每日资金记录未找到")
	case errors.Is(err, service.ErrReferenceNotFound):
		respondError(c, http.StatusNotFound, "条目未找到")
	case errors.Is(err, service.ErrCategoryInUse):
		respondError(c, http.StatusBadRequest, "该分类下存在交易记录，无法删除")
	case errors.Is(err, service.ErrReviewDateExists):
		respondError(c, http.StatusBadRequest, "该日期的复盘记录已存在")
	case errors.Is(err, service.ErrFundDateExists):
		respondError(c, http.StatusBadRequest, "该日期的资金记录已存在")
	case errors.Is(err, service.ErrNotImage):
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
	case errors.Is(err, service.ErrFileTooLarge):
		respondError(c, http.StatusBadRequest, "文件超过大小限制")
	case errors.Is(err, service.ErrUploadFailed):
		respondError(c, http.StatusBadRequest, "上传失败: "+err.Error())
	case errors.Is(err, service.ErrUploadDisabled):
		respondError(c, http.StatusServiceUnavailable, "对象存储未配置")
	default:
		a.logger.Error(fallback,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func fixed2Ptr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func fixed4Ptr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(4)
	return &s
}

type errorResponse struct {
	Error string `json:"error"`
}
