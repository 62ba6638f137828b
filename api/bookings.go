package api

import (
	"net/http"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/aerodesk/flightbooking/internal/middleware"
	"github.com/aerodesk/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerView struct {
	FullName   string `json:"full_name"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	SeatNumber string `json:"seat_number"`
	MealOption string `json:"meal_option"`
}

type bookingResponse struct {
	BookingID    string          `json:"booking_id"`
	PNR          string          `json:"pnr"`
	ContactEmail string          `json:"contact_email"`
	ScheduleIDs  []string        `json:"schedule_ids"`
	Passengers   []passengerView `json:"passengers"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type createBookingResponse struct {
	bookingResponse
	TicketIDs []string `json:"ticket_ids"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:pnr", h.get)
	router.DELETE("/:pnr", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := createBookingResponse{bookingResponse: toBookingResponse(result.Booking)}
	for _, t := range result.Tickets {
		resp.TicketIDs = append(resp.TicketIDs, t.ID)
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) get(c *gin.Context) {
	booked, err := h.service.GetBooking(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booked))
}

func (h *BookingHandler) list(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok || principal.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authenticated email is required"})
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), principal.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		views = append(views, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "booking and tickets cancelled successfully",
		"status":  string(cancelled.Status),
		"pnr":     cancelled.PNR,
	})
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	passengers := make([]passengerView, len(b.Passengers))
	for i, p := range b.Passengers {
		passengers[i] = passengerView(p)
	}
	return bookingResponse{
		BookingID:    b.ID,
		PNR:          b.PNR,
		ContactEmail: b.ContactEmail,
		ScheduleIDs:  b.ScheduleIDs,
		Passengers:   passengers,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}
