package api

import (
	"net/http"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/aerodesk/flightbooking/internal/service/inventory"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service inventory.InventoryUseCase
}

type scheduleResponse struct {
	ScheduleID     string   `json:"schedule_id"`
	FlightID       string   `json:"flight_id"`
	FlightNumber   string   `json:"flight_number"`
	FlightDate     string   `json:"flight_date"`
	DepartureTime  string   `json:"departure_time"`
	ArrivalTime    string   `json:"arrival_time"`
	FareCents      int64    `json:"fare_cents"`
	TotalSeats     int      `json:"total_seats"`
	AvailableSeats int      `json:"available_seats"`
	BookedSeats    []string `json:"booked_seats"`
	Status         string   `json:"status"`
}

func NewFlightHandler(service inventory.InventoryUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// Register mounts the public lookup endpoints plus the admin catalog
// endpoints; adminGroup is expected to carry the role check.
func (h *FlightHandler) Register(router, adminGroup *gin.RouterGroup) {
	router.GET("/schedules/search", h.search)
	router.GET("/schedules/:id", h.getSchedule)
	router.GET("/flights", h.listFlights)
	adminGroup.POST("/schedules", h.createSchedule)
	adminGroup.POST("/flights", h.createFlight)
}

// RegisterInternal mounts the lock/release endpoints consumed by the booking
// orchestrator when the ledger runs as its own service.
func (h *FlightHandler) RegisterInternal(router *gin.RouterGroup) {
	router.POST("/schedules/:id/lock-seats", h.lockSeats)
	router.POST("/schedules/:id/release-seats", h.releaseSeats)
}

func (h *FlightHandler) search(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination are required"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	schedules, err := h.service.Search(c.Request.Context(), origin, destination, date)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]scheduleResponse, 0, len(schedules))
	for i := range schedules {
		views = append(views, toScheduleResponse(&schedules[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *FlightHandler) getSchedule(c *gin.Context) {
	schedule, err := h.service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponse(schedule))
}

func (h *FlightHandler) createSchedule(c *gin.Context) {
	var req inventory.CreateScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.service.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toScheduleResponse(schedule))
}

func (h *FlightHandler) createFlight(c *gin.Context) {
	var req inventory.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.CreateFlight(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"flight_id":     flight.ID,
		"flight_number": flight.FlightNumber,
	})
}

func (h *FlightHandler) listFlights(c *gin.Context) {
	flights, err := h.service.ListFlights(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) lockSeats(c *gin.Context) {
	var seatNumbers []string
	if err := c.ShouldBindJSON(&seatNumbers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.LockSeats(c.Request.Context(), c.Param("id"), seatNumbers); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": len(seatNumbers)})
}

func (h *FlightHandler) releaseSeats(c *gin.Context) {
	var seatNumbers []string
	if err := c.ShouldBindJSON(&seatNumbers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	released, err := h.service.ReleaseSeats(c.Request.Context(), c.Param("id"), seatNumbers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

func toScheduleResponse(s *domain.FlightSchedule) scheduleResponse {
	return scheduleResponse{
		ScheduleID:     s.ID,
		FlightID:       s.FlightID,
		FlightNumber:   s.FlightNumber,
		FlightDate:     s.FlightDate.Format("2006-01-02"),
		DepartureTime:  s.DepartureTime,
		ArrivalTime:    s.ArrivalTime,
		FareCents:      s.FareCents,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		BookedSeats:    s.BookedSeats,
		Status:         string(s.Status),
	}
}
