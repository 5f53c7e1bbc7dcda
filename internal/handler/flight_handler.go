package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"flight-booking/internal/model"
	"flight-booking/internal/service"
	apperrors "flight-booking/pkg/app_errors"
	"flight-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service service.FlightService
}

func NewFlightHandler(service service.FlightService) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) RegisterRoutes(r *gin.Engine, auth, admin gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("flights", h.ListFlights)
		router.GET("flights/search", h.SearchFlights)
		router.GET("flights/cheapest", h.CheapestFlights)
		router.GET("flights/number/:flightNumber", h.GetFlightByNumber)
		router.GET("flights/:id", h.GetFlight)
		router.POST("flights", auth, admin, h.CreateFlight)
		router.PATCH("flights/:id", auth, admin, h.UpdateFlight)
		router.DELETE("flights/:id", auth, admin, h.DeleteFlight)
	}
}

func (h *FlightHandler) CreateFlight(c *gin.Context) {
	var req model.CreateFlightRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	flight, err := h.service.Create(c, &model.Flight{
		FlightNumber:     req.FlightNumber,
		DepartureAirport: req.DepartureAirport,
		DepartureCode:    req.DepartureCode,
		ArrivalAirport:   req.ArrivalAirport,
		ArrivalCode:      req.ArrivalCode,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		Price:            req.Price,
		TotalSeats:       req.TotalSeats,
	})
	if err != nil {
		h.handleFlightError(c, err, "CreateFlight")
		return
	}

	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) GetFlight(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	flight, err := h.service.Get(c, id)
	if err != nil {
		h.handleFlightError(c, err, "GetFlight")
		return
	}

	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) GetFlightByNumber(c *gin.Context) {
	flight, err := h.service.GetByNumber(c, c.Param("flightNumber"))
	if err != nil {
		h.handleFlightError(c, err, "GetFlightByNumber")
		return
	}

	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) ListFlights(c *gin.Context) {
	page, limit := PageQuery(c)
	query := model.FlightListQuery{
		DepartureCode: c.Query("departure_code"),
		ArrivalCode:   c.Query("arrival_code"),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
		Page:          page,
		Limit:         limit,
	}

	flights, total, err := h.service.List(c, query)
	if err != nil {
		h.handleFlightError(c, err, "ListFlights")
		return
	}

	c.JSON(http.StatusOK, Paged(flights, model.NewPagination(page, limit, total)))
}

func (h *FlightHandler) SearchFlights(c *gin.Context) {
	page, limit := PageQuery(c)

	departureDate, err := time.Parse("2006-01-02", c.Query("departure_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departure_date, expected YYYY-MM-DD"})
		return
	}

	query := model.FlightSearchQuery{
		DepartureCode: c.Query("departure_code"),
		ArrivalCode:   c.Query("arrival_code"),
		DepartureDate: departureDate,
		Passengers:    1,
		Page:          page,
		Limit:         limit,
	}
	if raw := c.Query("passengers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid passengers"})
			return
		}
		query.Passengers = n
	}
	if raw := c.Query("return_date"); raw != "" {
		returnDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid return_date, expected YYYY-MM-DD"})
			return
		}
		query.ReturnDate = &returnDate
	}

	result, err := h.service.Search(c, query)
	if err != nil {
		h.handleFlightError(c, err, "SearchFlights")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) CheapestFlights(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	flights, err := h.service.Cheapest(c, limit)
	if err != nil {
		h.handleFlightError(c, err, "CheapestFlights")
		return
	}

	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) UpdateFlight(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	var req model.UpdateFlightRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	flight, err := h.service.Update(c, id, req.Params())
	if err != nil {
		h.handleFlightError(c, err, "UpdateFlight")
		return
	}

	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) DeleteFlight(c *gin.Context) {
	id, ok := IDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c, id); err != nil {
		h.handleFlightError(c, err, "DeleteFlight")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) handleFlightError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrNoFieldsToUpdate):
		log.Warn("Invalid flight input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrFlightNotFound):
		log.Warn("Flight not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Flight not found",
		})
	case errors.Is(err, apperrors.ErrDuplicateFlightNumber):
		log.Warn("Duplicate flight number")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Flight number already exists",
		})
	case errors.Is(err, apperrors.ErrFlightHasTickets):
		log.Warn("Flight has tickets")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Flight has tickets and cannot be deleted",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
