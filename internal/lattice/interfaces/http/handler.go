package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/latticepricing/internal/lattice/application"
	"github.com/wyfcoding/latticepricing/internal/lattice/domain"
	"github.com/wyfcoding/latticepricing/pkg/logger"
	"github.com/wyfcoding/latticepricing/pkg/response"
)

// HTTP 处理器
// 负责处理美式期权格点估值相关的 HTTP 请求
type ValuationHandler struct {
	app *application.ValuationService // 估值应用服务
}

// 创建 HTTP 处理器实例
// app: 注入的估值应用服务
func NewValuationHandler(app *application.ValuationService) *ValuationHandler {
	return &ValuationHandler{app: app}
}

// 注册路由
// 将处理器方法绑定到 Gin 路由引擎
func (h *ValuationHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/lattice")
	{
		api.POST("/valuations", h.ValuePut)
		api.GET("/valuations", h.ListValuations)
		api.GET("/valuations/:symbol/latest", h.GetLatestValuation)
		api.POST("/boundary", h.GetExerciseBoundary)
	}
}

// ValuePut 对美式看跌期权执行估值
func (h *ValuationHandler) ValuePut(c *gin.Context) {
	var cmd application.ValuePutCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.app.ValuePut(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) || errors.Is(err, domain.ErrInvalidHorizon) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to value put option", "symbol", cmd.Symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, result)
}

// GetLatestValuation 查询标的最新估值
func (h *ValuationHandler) GetLatestValuation(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "symbol is required", "")
		return
	}

	result, err := h.app.GetLatestValuation(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrValuationNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, "valuation not found", "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to get latest valuation", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, result)
}

// ListValuations 分页查询估值历史
func (h *ValuationHandler) ListValuations(c *gin.Context) {
	symbol := c.Query("symbol")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", "")
		return
	}

	offsetStr := c.DefaultQuery("offset", "0")
	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid offset", "")
		return
	}

	results, total, err := h.app.ListValuations(c.Request.Context(), symbol, limit, offset)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list valuations", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, gin.H{
		"total": total,
		"items": results,
	})
}

// GetExerciseBoundary 计算行权边界
func (h *ValuationHandler) GetExerciseBoundary(c *gin.Context) {
	var cmd application.ValuePutCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	view, err := h.app.GetExerciseBoundary(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) || errors.Is(err, domain.ErrInvalidHorizon) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to compute exercise boundary", "symbol", cmd.Symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, view)
}
