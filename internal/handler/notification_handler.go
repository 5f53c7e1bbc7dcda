package handler

import (
	"errors"
	"net/http"
	"strconv"

	"flight-booking/internal/model"
	"flight-booking/internal/service"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.GET("notifications", h.ListNotifications)
		router.GET("notifications/unread-count", h.UnreadCount)
		router.PUT("notifications/:id/read", h.MarkRead)
		router.PUT("notifications/read-all", h.MarkAllRead)
		router.DELETE("notifications/:id", h.DeleteNotification)
		router.DELETE("notifications", h.DeleteAllNotifications)
	}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	page, limit := PageQuery(c)
	query := model.NotificationListQuery{Page: page, Limit: limit}
	if raw := c.Query("is_read"); raw != "" {
		isRead, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_read"})
			return
		}
		query.IsRead = &isRead
	}

	notifications, total, err := h.service.ListByUser(c, identity.UserID, query)
	if err != nil {
		h.handleNotificationError(c, err, "ListNotifications")
		return
	}

	c.JSON(http.StatusOK, Paged(notifications, model.NewPagination(page, limit, total)))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.service.MarkRead(c, identity, id); err != nil {
		h.handleNotificationError(c, err, "MarkRead")
		return
	}

	c.Status(http.StatusOK)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	if err := h.service.MarkAllRead(c, identity.UserID); err != nil {
		h.handleNotificationError(c, err, "MarkAllRead")
		return
	}

	c.Status(http.StatusOK)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(c, identity.UserID)
	if err != nil {
		h.handleNotificationError(c, err, "UnreadCount")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c, identity, id); err != nil {
		h.handleNotificationError(c, err, "DeleteNotification")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) DeleteAllNotifications(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAll(c, identity.UserID); err != nil {
		h.handleNotificationError(c, err, "DeleteAllNotifications")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNotificationNotFound):
		log.Warn("Notification not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Notification not found",
		})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Forbidden",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
