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

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine, auth, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.POST("orders", h.CreateOrder)
		router.GET("orders/me", h.MyOrders)
		router.GET("orders/:id", h.GetOrder)
		router.GET("orders/:id/invoice", h.GetInvoice)
		router.PUT("orders/:id/cancel", h.CancelOrder)
		router.GET("orders", admin, h.ListOrders)
		router.PATCH("orders/:id", admin, h.UpdateOrder)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	order, err := h.service.Create(c, identity.UserID, req)
	if err != nil {
		h.handleOrderError(c, err, "CreateOrder")
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	order, err := h.service.Get(c, identity, id)
	if err != nil {
		h.handleOrderError(c, err, "GetOrder")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetInvoice(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	invoice, err := h.service.Invoice(c, identity, id)
	if err != nil {
		h.handleOrderError(c, err, "GetInvoice")
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	page, limit := PageQuery(c)
	query := model.OrderListQuery{Page: page, Limit: limit}
	if raw := c.Query("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		query.Status = &status
	}

	orders, total, err := h.service.ListByUser(c, identity.UserID, query)
	if err != nil {
		h.handleOrderError(c, err, "MyOrders")
		return
	}

	c.JSON(http.StatusOK, Paged(orders, model.NewPagination(page, limit, total)))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, limit := PageQuery(c)
	query := model.OrderListQuery{Page: page, Limit: limit}
	if raw := c.Query("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		query.Status = &status
	}
	if raw := c.Query("payment_status"); raw != "" {
		status := model.PaymentStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment_status"})
			return
		}
		query.PaymentStatus = &status
	}

	orders, total, err := h.service.List(c, query)
	if err != nil {
		h.handleOrderError(c, err, "ListOrders")
		return
	}

	c.JSON(http.StatusOK, Paged(orders, model.NewPagination(page, limit, total)))
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	var req struct {
		OrderStatus   *model.OrderStatus   `json:"order_status"`
		PaymentStatus *model.PaymentStatus `json:"payment_status"`
	}
	if err := BindJson(c, &req); err != nil {
		return
	}

	order, err := h.service.Update(c, id, model.UpdateOrderParams{
		OrderStatus:   req.OrderStatus,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		h.handleOrderError(c, err, "UpdateOrder")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c, identity, id); err != nil {
		h.handleOrderError(c, err, "CancelOrder")
		return
	}

	c.Status(http.StatusOK)
}

func (h *OrderHandler) handleOrderError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrNoFieldsToUpdate):
		log.Warn("Invalid order input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Forbidden",
		})
	case errors.Is(err, apperrors.ErrTicketAlreadyCancelled):
		log.Warn("Ticket already cancelled")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket is already cancelled",
		})
	case errors.Is(err, apperrors.ErrOrderNotCancellable):
		log.Warn("Order not cancellable")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order can no longer be cancelled",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
