package booking

import (
	"context"
	"strings"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/aerodesk/flightbooking/internal/kafka"
	"github.com/aerodesk/flightbooking/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	GetBooking(ctx context.Context, pnr string) (*domain.Booking, error)
	ListBookings(ctx context.Context, email string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, pnr string) (*domain.Booking, error)
}

// SeatInventory is the ledger as seen by the orchestrator: lock and release
// only. Satisfied by the in-process inventory service and by the HTTP client
// when the ledger is a separate deployment.
type SeatInventory interface {
	LockSeats(ctx context.Context, scheduleID string, seatNumbers []string) error
	ReleaseSeats(ctx context.Context, scheduleID string, seatNumbers []string) (int, error)
}

type TicketIssuer interface {
	Issue(ctx context.Context, booking *domain.Booking, scheduleID string) (*domain.Ticket, error)
	CancelForBooking(ctx context.Context, bookingID string) (int, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	inventory          SeatInventory
	tickets            TicketIssuer
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	log                *zap.Logger
}

type PassengerInput struct {
	FullName   string `json:"full_name"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	SeatNumber string `json:"seat_number"`
	MealOption string `json:"meal_option"`
}

type CreateBookingInput struct {
	ContactEmail string           `json:"contact_email"`
	ScheduleIDs  []string         `json:"schedule_ids"`
	Passengers   []PassengerInput `json:"passengers"`
}

type CreateBookingResult struct {
	Booking *domain.Booking
	Tickets []domain.Ticket
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	inventory SeatInventory,
	tickets TicketIssuer,
	producer Producer,
	eventsTopic string,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		inventory:   inventory,
		tickets:     tickets,
		producer:    producer,
		eventsTopic: eventsTopic,
		log:         log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking locks the passengers' seats on every schedule in order,
// unwinding already-locked schedules if any lock fails, then persists the
// booking and issues one ticket per schedule. Seats are locked sequentially
// so the compensation always has a well-defined prefix to undo.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	seatNumbers := make([]string, len(input.Passengers))
	passengers := make([]domain.Passenger, len(input.Passengers))
	for i, p := range input.Passengers {
		seatNumbers[i] = p.SeatNumber
		passengers[i] = domain.Passenger{
			FullName:   p.FullName,
			Gender:     p.Gender,
			Age:        p.Age,
			SeatNumber: p.SeatNumber,
			MealOption: p.MealOption,
		}
	}

	// Undo actions accumulate as locks succeed and run in reverse on any
	// later failure before persistence.
	locked := make([]string, 0, len(input.ScheduleIDs))
	compensate := func() {
		for i := len(locked) - 1; i >= 0; i-- {
			if _, err := s.inventory.ReleaseSeats(ctx, locked[i], seatNumbers); err != nil {
				s.log.Warn("compensating seat release failed",
					zap.String("schedule_id", locked[i]),
					zap.Error(err),
				)
			}
		}
	}

	for _, scheduleID := range input.ScheduleIDs {
		if err := s.inventory.LockSeats(ctx, scheduleID, seatNumbers); err != nil {
			compensate()
			if domain.IsKind(err, domain.KindUpstreamUnavailable) {
				s.log.Error("inventory service unavailable during booking",
					zap.String("schedule_id", scheduleID),
					zap.Error(err),
				)
			}
			return nil, &domain.Error{
				Kind:    domain.KindOf(err),
				Message: "failed to lock seats for schedule " + scheduleID,
				Err:     err,
			}
		}
		locked = append(locked, scheduleID)
	}

	pnr, err := s.generateUniquePNR(ctx)
	if err != nil {
		compensate()
		return nil, err
	}

	booking := &domain.Booking{
		PNR:          pnr,
		ContactEmail: normalizeEmail(input.ContactEmail),
		ScheduleIDs:  input.ScheduleIDs,
		Passengers:   passengers,
		Status:       domain.BookingStatusConfirmed,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		compensate()
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(booking.ScheduleIDs))
	for _, scheduleID := range booking.ScheduleIDs {
		ticket, err := s.tickets.Issue(ctx, booking, scheduleID)
		if err != nil {
			// The booking is durable at this point; seats stay locked.
			return nil, domain.Internal("booking "+pnr+" confirmed but ticket issuance failed", err)
		}
		tickets = append(tickets, *ticket)
	}

	s.publish(ctx, "booking_confirmed", booking)

	s.log.Info("booking confirmed",
		zap.String("pnr", pnr),
		zap.Int("schedules", len(booking.ScheduleIDs)),
		zap.Int("passengers", len(booking.Passengers)),
	)
	return &CreateBookingResult{Booking: booking, Tickets: tickets}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, pnr string) (*domain.Booking, error) {
	return s.bookings.GetByPNR(ctx, pnr)
}

func (s *BookingService) ListBookings(ctx context.Context, email string) ([]domain.Booking, error) {
	return s.bookings.ListByEmail(ctx, normalizeEmail(email))
}

// CancelBooking flips the booking and its tickets to CANCELLED and releases
// seats on every schedule. Release failures are logged and ignored:
// cancellation must not be blocked by inventory unavailability.
func (s *BookingService) CancelBooking(ctx context.Context, pnr string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, domain.BadRequest("booking %s is already cancelled", pnr)
	}

	if err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = domain.BookingStatusCancelled

	seatNumbers := booking.SeatNumbers()
	for _, scheduleID := range booking.ScheduleIDs {
		if _, err := s.inventory.ReleaseSeats(ctx, scheduleID, seatNumbers); err != nil {
			s.log.Warn("seat release failed during cancellation",
				zap.String("pnr", pnr),
				zap.String("schedule_id", scheduleID),
				zap.Error(err),
			)
		}
	}

	if _, err := s.tickets.CancelForBooking(ctx, booking.ID); err != nil {
		s.log.Warn("ticket cancellation failed",
			zap.String("pnr", pnr),
			zap.Error(err),
		)
	}

	s.publish(ctx, "booking_cancelled", booking)

	s.log.Info("booking cancelled", zap.String("pnr", pnr))
	return booking, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		PNR:          booking.PNR,
		BookingID:    booking.ID,
		ScheduleIDs:  booking.ScheduleIDs,
		ContactEmail: booking.ContactEmail,
		Status:       string(booking.Status),
		Passengers:   len(booking.Passengers),
		OccurredAt:   time.Now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.PNR, event); err != nil {
		s.log.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("pnr", booking.PNR),
			zap.Error(err),
		)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.PNR, event); err != nil {
			s.log.Warn("failed to publish notification event",
				zap.String("type", eventType),
				zap.String("pnr", booking.PNR),
				zap.Error(err),
			)
		}
	}
}

func validateCreateInput(input CreateBookingInput) error {
	if normalizeEmail(input.ContactEmail) == "" {
		return domain.BadRequest("contact email is required")
	}
	if len(input.ScheduleIDs) == 0 {
		return domain.BadRequest("at least one schedule id is required")
	}
	if len(input.Passengers) == 0 {
		return domain.BadRequest("at least one passenger is required")
	}
	for i, p := range input.Passengers {
		if strings.TrimSpace(p.FullName) == "" {
			return domain.BadRequest("passenger %d: full name is required", i+1)
		}
		if strings.TrimSpace(p.SeatNumber) == "" {
			return domain.BadRequest("passenger %d: seat number is required", i+1)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ BookingUseCase = (*BookingService)(nil)
