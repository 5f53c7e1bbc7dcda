package handler

import (
	"net/http"

	"flight-booking/internal/service"
	"flight-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler struct {
	service service.StatsService
}

func NewStatsHandler(service service.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) RegisterRoutes(r *gin.Engine, auth, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", auth, admin)
	{
		router.GET("statistics", h.GetStatistics)
	}
}

func (h *StatsHandler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Overview(c)
	if err != nil {
		logger.WithComponent("handler").Error("statistics query failed",
			zap.String("operation", "GetStatistics"), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
