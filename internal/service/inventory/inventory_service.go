package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/aerodesk/flightbooking/internal/repository"
	"go.uber.org/zap"
)

// InventoryUseCase is the seat inventory ledger: per-schedule seat
// accounting plus schedule lookup and the flight catalog behind it.
type InventoryUseCase interface {
	LockSeats(ctx context.Context, scheduleID string, seatNumbers []string) error
	ReleaseSeats(ctx context.Context, scheduleID string, seatNumbers []string) (int, error)
	GetSchedule(ctx context.Context, id string) (*domain.FlightSchedule, error)
	Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightSchedule, error)
	CreateSchedule(ctx context.Context, input CreateScheduleInput) (*domain.FlightSchedule, error)
	CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	ListFlights(ctx context.Context) ([]domain.Flight, error)
}

type Cache interface {
	GetSearch(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightSchedule, error)
	SetSearch(ctx context.Context, origin, destination string, date time.Time, schedules []domain.FlightSchedule) error
	AcquireSeatGuard(ctx context.Context, scheduleID, seatNumber string, ttl time.Duration) (bool, error)
	ReleaseSeatGuard(ctx context.Context, scheduleID, seatNumber string) error
}

type Service struct {
	schedules repository.ScheduleRepository
	flights   repository.FlightRepository
	cache     Cache
	holdTTL   time.Duration
	log       *zap.Logger
}

type CreateScheduleInput struct {
	FlightNumber  string `json:"flight_number"`
	FlightDate    string `json:"flight_date"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	FareCents     int64  `json:"fare_cents"`
}

type CreateFlightInput struct {
	FlightNumber       string `json:"flight_number"`
	Airline            string `json:"airline"`
	OriginAirport      string `json:"origin_airport"`
	DestinationAirport string `json:"destination_airport"`
	SeatCapacity       int    `json:"seat_capacity"`
}

func NewService(schedules repository.ScheduleRepository, flights repository.FlightRepository, cache Cache, holdTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		schedules: schedules,
		flights:   flights,
		cache:     cache,
		holdTTL:   holdTTL,
		log:       log,
	}
}

// LockSeats reserves seats on a schedule. A short-lived redis guard per seat
// filters concurrent requests for the same seat before they reach the
// database; the row lock inside the repository remains the source of truth.
func (s *Service) LockSeats(ctx context.Context, scheduleID string, seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return domain.BadRequest("at least one seat number is required")
	}

	guarded, err := s.acquireGuards(ctx, scheduleID, seatNumbers)
	if err != nil {
		return err
	}
	defer s.releaseGuards(ctx, scheduleID, guarded)

	if err := s.schedules.LockSeats(ctx, scheduleID, seatNumbers); err != nil {
		return err
	}

	s.log.Info("locked seats",
		zap.String("schedule_id", scheduleID),
		zap.Strings("seats", seatNumbers),
	)
	return nil
}

// ReleaseSeats is tolerant of seats that are not currently booked, so
// compensating releases can never fail for business reasons.
func (s *Service) ReleaseSeats(ctx context.Context, scheduleID string, seatNumbers []string) (int, error) {
	released, err := s.schedules.ReleaseSeats(ctx, scheduleID, seatNumbers)
	if err != nil {
		return 0, err
	}

	s.log.Info("released seats",
		zap.String("schedule_id", scheduleID),
		zap.Int("released", released),
		zap.Int("requested", len(seatNumbers)),
	)
	return released, nil
}

func (s *Service) GetSchedule(ctx context.Context, id string) (*domain.FlightSchedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightSchedule, error) {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))

	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, origin, destination, date); err == nil && cached != nil {
			return cached, nil
		}
	}

	schedules, err := s.schedules.Search(ctx, origin, destination, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, origin, destination, date, schedules); err != nil {
			s.log.Warn("failed to cache search results", zap.Error(err))
		}
	}
	return schedules, nil
}

func (s *Service) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*domain.FlightSchedule, error) {
	flightNumber := strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	if flightNumber == "" {
		return nil, domain.BadRequest("flight number is required")
	}
	date, err := time.Parse("2006-01-02", input.FlightDate)
	if err != nil {
		return nil, domain.BadRequest("invalid flight date %q, expected YYYY-MM-DD", input.FlightDate)
	}

	flight, err := s.flights.GetByNumber(ctx, flightNumber)
	if err != nil {
		return nil, err
	}

	schedule := &domain.FlightSchedule{
		FlightID:       flight.ID,
		FlightNumber:   flight.FlightNumber,
		FlightDate:     date,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		FareCents:      input.FareCents,
		TotalSeats:     flight.SeatCapacity,
		AvailableSeats: flight.SeatCapacity,
		BookedSeats:    []string{},
		Status:         domain.ScheduleStatusScheduled,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *Service) CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	flightNumber := strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	if flightNumber == "" {
		return nil, domain.BadRequest("flight number is required")
	}
	if input.SeatCapacity <= 0 {
		return nil, domain.BadRequest("seat capacity must be positive")
	}

	flight := &domain.Flight{
		FlightNumber:       flightNumber,
		Airline:            strings.TrimSpace(input.Airline),
		OriginAirport:      strings.ToUpper(strings.TrimSpace(input.OriginAirport)),
		DestinationAirport: strings.ToUpper(strings.TrimSpace(input.DestinationAirport)),
		SeatCapacity:       input.SeatCapacity,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}
	return flight, nil
}

func (s *Service) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	return s.flights.List(ctx)
}

func (s *Service) acquireGuards(ctx context.Context, scheduleID string, seatNumbers []string) ([]string, error) {
	if s.cache == nil {
		return nil, nil
	}

	acquired := make([]string, 0, len(seatNumbers))
	for _, seat := range seatNumbers {
		ok, err := s.cache.AcquireSeatGuard(ctx, scheduleID, seat, s.holdTTL)
		if err != nil {
			// The guard is advisory; the database row lock decides. A cache
			// outage must not block locking.
			s.log.Warn("seat guard unavailable, relying on database lock",
				zap.String("schedule_id", scheduleID),
				zap.String("seat", seat),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			s.releaseGuards(ctx, scheduleID, acquired)
			return nil, domain.Conflict("seat %s is held by another request", seat)
		}
		acquired = append(acquired, seat)
	}
	return acquired, nil
}

func (s *Service) releaseGuards(ctx context.Context, scheduleID string, seats []string) {
	if s.cache == nil {
		return
	}
	for _, seat := range seats {
		if err := s.cache.ReleaseSeatGuard(ctx, scheduleID, seat); err != nil {
			s.log.Warn("failed to release seat guard",
				zap.String("schedule_id", scheduleID),
				zap.String("seat", seat),
				zap.Error(err),
			)
		}
	}
}

var _ InventoryUseCase = (*Service)(nil)
