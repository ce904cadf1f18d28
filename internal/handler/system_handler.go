package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradelog/internal/db"
)

type welcomeResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Welcome 根路径欢迎信息
// @Summary Welcome
// @Tags system
// @Produce json
// @Success 200 {object} welcomeResponse
// @Router / [get]
func (a *API) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, welcomeResponse{Message: "Welcome to the Trade Log API"})
}

// HealthCheck 探测数据库连通性，探测失败时仍返回 200 并在 database 字段中给出原因
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func (a *API) HealthCheck(c *gin.Context) {
	resp := healthResponse{Status: "ok", Database: "healthy"}
	if err := db.Ping(c.Request.Context(), a.db); err != nil {
		a.logger.Warn("database ping failed", zap.Error(err))
		resp.Database = "unhealthy: " + err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
