package api

import (
	"net/http"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/aerodesk/flightbooking/internal/service/ticket"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service ticket.TicketUseCase
}

type ticketResponse struct {
	TicketID   string          `json:"ticket_id"`
	PNR        string          `json:"pnr"`
	BookingID  string          `json:"booking_id"`
	ScheduleID string          `json:"schedule_id"`
	Passengers []passengerView `json:"passengers"`
	Status     string          `json:"status"`
	IssuedAt   string          `json:"issued_at"`
}

func NewTicketHandler(service ticket.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.GET("/:pnr", h.getByPNR)
}

func (h *TicketHandler) getByPNR(c *gin.Context) {
	issued, err := h.service.GetByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(issued))
}

func toTicketResponse(t *domain.Ticket) ticketResponse {
	passengers := make([]passengerView, len(t.Passengers))
	for i, p := range t.Passengers {
		passengers[i] = passengerView(p)
	}
	return ticketResponse{
		TicketID:   t.ID,
		PNR:        t.PNR,
		BookingID:  t.BookingID,
		ScheduleID: t.ScheduleID,
		Passengers: passengers,
		Status:     string(t.Status),
		IssuedAt:   t.IssuedAt.Format(time.RFC3339),
	}
}
