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

type TicketHandler struct {
	service service.BookingService
}

func NewTicketHandler(service service.BookingService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine, auth, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.POST("tickets", h.BookTicket)
		router.GET("tickets/me", h.MyTickets)
		router.GET("tickets/:id", h.GetTicket)
		router.PUT("tickets/:id/cancel", h.CancelTicket)
		router.GET("tickets", admin, h.ListTickets)
		router.PATCH("tickets/:id", admin, h.UpdateTicket)
	}
}

func (h *TicketHandler) BookTicket(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	var req model.BookTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.service.Book(c, identity.UserID, req)
	if err != nil {
		h.handleTicketError(c, err, "BookTicket")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	ticket, err := h.service.Get(c, identity, id)
	if err != nil {
		h.handleTicketError(c, err, "GetTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) MyTickets(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}

	page, limit := PageQuery(c)
	query := model.TicketListQuery{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		Limit:     limit,
	}
	if raw := c.Query("status"); raw != "" {
		status := model.TicketStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		query.Status = &status
	}

	tickets, total, err := h.service.ListByUser(c, identity.UserID, query)
	if err != nil {
		h.handleTicketError(c, err, "MyTickets")
		return
	}

	c.JSON(http.StatusOK, Paged(tickets, model.NewPagination(page, limit, total)))
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	page, limit := PageQuery(c)
	query := model.TicketListQuery{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		Limit:     limit,
	}

	tickets, total, err := h.service.List(c, query)
	if err != nil {
		h.handleTicketError(c, err, "ListTickets")
		return
	}

	c.JSON(http.StatusOK, Paged(tickets, model.NewPagination(page, limit, total)))
}

func (h *TicketHandler) CancelTicket(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c, identity, id); err != nil {
		h.handleTicketError(c, err, "CancelTicket")
		return
	}

	c.Status(http.StatusOK)
}

func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status     *model.TicketStatus `json:"status"`
		SeatNumber *string             `json:"seat_number"`
	}
	if err := BindJson(c, &req); err != nil {
		return
	}

	ticket, err := h.service.Update(c, id, model.UpdateTicketParams{
		Status:     req.Status,
		SeatNumber: req.SeatNumber,
	})
	if err != nil {
		h.handleTicketError(c, err, "UpdateTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) handleTicketError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrPassengerMismatch),
		errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrNoFieldsToUpdate):
		log.Warn("Invalid booking input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrFlightNotFound):
		log.Warn("Flight not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Flight not found",
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
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		log.Warn("Insufficient seats")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Not enough seats available",
		})
	case errors.Is(err, apperrors.ErrSeatCapacityExhausted):
		log.Warn("Seat capacity exhausted")
		c.JSON(http.StatusConflict, gin.H{
			"error": "No seats left to assign",
		})
	case errors.Is(err, apperrors.ErrSeatTaken):
		log.Warn("Seat already taken")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Seat was taken by a concurrent booking",
		})
	case errors.Is(err, apperrors.ErrTicketAlreadyCancelled):
		log.Warn("Ticket already cancelled")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket is already cancelled",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
