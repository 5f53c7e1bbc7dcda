package handler

import (
	"errors"
	"net/http"

	"flight-booking/internal/model"
	"flight-booking/internal/service"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(r *gin.Engine, auth, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.GET("users/me", h.Me)
		router.GET("users/:id", h.GetUser)
		router.PATCH("users/:id", h.UpdateUser)
		router.DELETE("users/:id", h.DeleteUser)
		router.GET("users", admin, h.ListUsers)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	user, err := h.service.Get(c, identity, identity.UserID)
	if err != nil {
		h.handleUserError(c, err, "Me")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	user, err := h.service.Get(c, identity, id)
	if err != nil {
		h.handleUserError(c, err, "GetUser")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := PageQuery(c)
	query := model.UserListQuery{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	if raw := c.Query("role"); raw != "" {
		role := model.Role(raw)
		query.Role = &role
	}

	users, total, err := h.service.List(c, query)
	if err != nil {
		h.handleUserError(c, err, "ListUsers")
		return
	}

	c.JSON(http.StatusOK, Paged(users, model.NewPagination(page, limit, total)))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	var req struct {
		FullName    *string `json:"full_name"`
		Username    *string `json:"username"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phone_number"`
	}
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.Update(c, identity, id, model.UpdateUserParams{
		FullName:    req.FullName,
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.handleUserError(c, err, "UpdateUser")
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser 連同所有關聯資料一次刪掉
func (h *UserHandler) DeleteUser(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c, identity, id); err != nil {
		h.handleUserError(c, err, "DeleteUser")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrNoFieldsToUpdate):
		log.Warn("Invalid user input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Forbidden",
		})
	case errors.Is(err, apperrors.ErrDuplicateUserField):
		log.Warn("Duplicate user field")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Username or email already taken",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
