package ticket

import (
	"context"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/aerodesk/flightbooking/internal/repository"
	"go.uber.org/zap"
)

type TicketUseCase interface {
	Issue(ctx context.Context, booking *domain.Booking, scheduleID string) (*domain.Ticket, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Ticket, error)
	ListForBooking(ctx context.Context, bookingID string) ([]domain.Ticket, error)
	CancelForBooking(ctx context.Context, bookingID string) (int, error)
}

type TicketService struct {
	tickets repository.TicketRepository
	log     *zap.Logger
}

func NewTicketService(tickets repository.TicketRepository, log *zap.Logger) *TicketService {
	return &TicketService{tickets: tickets, log: log}
}

// Issue creates the ticket for one schedule of a confirmed booking. The
// passenger list is copied so the snapshot is independent of the booking.
func (s *TicketService) Issue(ctx context.Context, booking *domain.Booking, scheduleID string) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		PNR:        booking.PNR,
		BookingID:  booking.ID,
		ScheduleID: scheduleID,
		Passengers: booking.CopyPassengers(),
		Status:     domain.TicketStatusActive,
		IssuedAt:   time.Now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.log.Info("ticket issued",
		zap.String("ticket_id", ticket.ID),
		zap.String("pnr", ticket.PNR),
		zap.String("schedule_id", scheduleID),
	)
	return ticket, nil
}

// GetByPNR does not return cancelled tickets. A voided ticket and a ticket
// that never existed are the same kind of error; only the message differs.
func (s *TicketService) GetByPNR(ctx context.Context, pnr string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusCancelled {
		return nil, domain.NotFound("ticket with PNR %s has been cancelled", pnr)
	}
	return ticket, nil
}

func (s *TicketService) ListForBooking(ctx context.Context, bookingID string) ([]domain.Ticket, error) {
	return s.tickets.ListByBookingID(ctx, bookingID)
}

func (s *TicketService) CancelForBooking(ctx context.Context, bookingID string) (int, error) {
	cancelled, err := s.tickets.CancelByBookingID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if cancelled > 0 {
		s.log.Info("tickets cancelled",
			zap.String("booking_id", bookingID),
			zap.Int("count", cancelled),
		)
	}
	return cancelled, nil
}

var _ TicketUseCase = (*TicketService)(nil)
