package handler

import (
	"errors"
	"net/http"

	"flight-booking/internal/middleware"
	"flight-booking/internal/model"
	"flight-booking/internal/service"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	service service.FeedbackService
}

func NewFeedbackHandler(service service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) RegisterRoutes(r *gin.Engine, auth, admin gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		// 未登入也能留回饋
		router.POST("feedback", h.CreateFeedback)
		router.GET("feedback", auth, admin, h.ListFeedback)
		router.GET("feedback/:id", auth, admin, h.GetFeedback)
		router.DELETE("feedback/:id", auth, admin, h.DeleteFeedback)
	}
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req model.CreateFeedbackRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	var userID *int
	if identity, ok := middleware.IdentityFrom(c); ok {
		userID = &identity.UserID
	}

	feedback, err := h.service.Create(c, userID, req)
	if err != nil {
		h.handleFeedbackError(c, err, "CreateFeedback")
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	page, limit := PageQuery(c)

	items, total, err := h.service.List(c, page, limit)
	if err != nil {
		h.handleFeedbackError(c, err, "ListFeedback")
		return
	}

	c.JSON(http.StatusOK, Paged(items, model.NewPagination(page, limit, total)))
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	feedback, err := h.service.Get(c, id)
	if err != nil {
		h.handleFeedbackError(c, err, "GetFeedback")
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c, id); err != nil {
		h.handleFeedbackError(c, err, "DeleteFeedback")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *FeedbackHandler) handleFeedbackError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid feedback input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrFeedbackNotFound):
		log.Warn("Feedback not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Feedback not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
