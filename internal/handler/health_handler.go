package handler

import (
	"net/http"

	"flight-booking/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	db    *database.DB
	redis *redis.Client
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz 依賴都活著才 ready
func (h *HealthHandler) Readyz(c *gin.Context) {
	if err := h.db.Pool.Ping(c); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
		return
	}
	if err := h.redis.Ping(c).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
