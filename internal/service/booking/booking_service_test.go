package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aerodesk/flightbooking/internal/domain"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) ExistsByPNR(ctx context.Context, pnr string) (bool, error) {
	args := m.Called(ctx, pnr)
	return args.Bool(0), args.Error(1)
}

type MockSeatInventory struct {
	mock.Mock
}

func (m *MockSeatInventory) LockSeats(ctx context.Context, scheduleID string, seatNumbers []string) error {
	args := m.Called(ctx, scheduleID, seatNumbers)
	return args.Error(0)
}

func (m *MockSeatInventory) ReleaseSeats(ctx context.Context, scheduleID string, seatNumbers []string) (int, error) {
	args := m.Called(ctx, scheduleID, seatNumbers)
	return args.Int(0), args.Error(1)
}

type MockTicketIssuer struct {
	mock.Mock
}

func (m *MockTicketIssuer) Issue(ctx context.Context, booking *domain.Booking, scheduleID string) (*domain.Ticket, error) {
	args := m.Called(ctx, booking, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketIssuer) CancelForBooking(ctx context.Context, bookingID string) (int, error) {
	args := m.Called(ctx, bookingID)
	return args.Int(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		ContactEmail: "Traveler@Example.com",
		ScheduleIDs:  []string{"sched-1", "sched-2"},
		Passengers: []PassengerInput{
			{FullName: "Alice Ray", Gender: "F", Age: 34, SeatNumber: "1A", MealOption: "VEG"},
			{FullName: "Bob Ray", Gender: "M", Age: 36, SeatNumber: "1B"},
		},
	}
}

func newTestService(repo *MockBookingRepository, inv *MockSeatInventory, tickets *MockTicketIssuer, producer *MockProducer) *BookingService {
	return NewBookingService(repo, inv, tickets, producer, "booking-events", zap.NewNop(),
		WithNotificationsTopic("booking-notifications"))
}

func TestCreateBooking_Success(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	tickets := new(MockTicketIssuer)
	producer := new(MockProducer)
	service := newTestService(repo, inv, tickets, producer)

	seats := []string{"1A", "1B"}
	inv.On("LockSeats", mock.Anything, "sched-1", seats).Return(nil)
	inv.On("LockSeats", mock.Anything, "sched-2", seats).Return(nil)
	repo.On("ExistsByPNR", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = "booking-1"
	}).Return(nil)
	tickets.On("Issue", mock.Anything, mock.Anything, "sched-1").
		Return(&domain.Ticket{ID: "ticket-1", ScheduleID: "sched-1"}, nil)
	tickets.On("Issue", mock.Anything, mock.Anything, "sched-2").
		Return(&domain.Ticket{ID: "ticket-2", ScheduleID: "sched-2"}, nil)
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(nil)
	producer.On("Publish", mock.Anything, "booking-notifications", mock.Anything, mock.Anything).Return(nil)

	result, err := service.CreateBooking(context.Background(), validInput())

	require.NoError(t, err)
	assert.Len(t, result.Booking.PNR, 6)
	assert.Equal(t, "traveler@example.com", result.Booking.ContactEmail)
	assert.Equal(t, domain.BookingStatusConfirmed, result.Booking.Status)
	assert.Len(t, result.Tickets, 2)
	inv.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
	inv.AssertExpectations(t)
	tickets.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestCreateBooking_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateBookingInput)
		message string
	}{
		{
			name:    "missing email",
			mutate:  func(in *CreateBookingInput) { in.ContactEmail = "  " },
			message: "contact email is required",
		},
		{
			name:    "no schedules",
			mutate:  func(in *CreateBookingInput) { in.ScheduleIDs = nil },
			message: "at least one schedule id is required",
		},
		{
			name:    "no passengers",
			mutate:  func(in *CreateBookingInput) { in.Passengers = nil },
			message: "at least one passenger is required",
		},
		{
			name:    "blank passenger name",
			mutate:  func(in *CreateBookingInput) { in.Passengers[1].FullName = "" },
			message: "passenger 2: full name is required",
		},
		{
			name:    "blank seat number",
			mutate:  func(in *CreateBookingInput) { in.Passengers[0].SeatNumber = " " },
			message: "passenger 1: seat number is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockBookingRepository)
			inv := new(MockSeatInventory)
			service := newTestService(repo, inv, new(MockTicketIssuer), new(MockProducer))

			input := validInput()
			tc.mutate(&input)

			_, err := service.CreateBooking(context.Background(), input)

			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindBadRequest))
			assert.Contains(t, err.Error(), tc.message)
			inv.AssertNotCalled(t, "LockSeats", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateBooking_LockFailureCompensatesInReverse(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	service := newTestService(repo, inv, new(MockTicketIssuer), new(MockProducer))

	input := validInput()
	input.ScheduleIDs = []string{"sched-1", "sched-2", "sched-3"}
	seats := []string{"1A", "1B"}

	released := make([]string, 0, 2)
	inv.On("LockSeats", mock.Anything, "sched-1", seats).Return(nil)
	inv.On("LockSeats", mock.Anything, "sched-2", seats).Return(nil)
	inv.On("LockSeats", mock.Anything, "sched-3", seats).
		Return(domain.Conflict("seat 1A is already booked"))
	inv.On("ReleaseSeats", mock.Anything, mock.Anything, seats).Run(func(args mock.Arguments) {
		released = append(released, args.String(1))
	}).Return(2, nil)

	_, err := service.CreateBooking(context.Background(), input)

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "failed to lock seats for schedule sched-3")
	assert.Equal(t, []string{"sched-2", "sched-1"}, released)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_InventoryUnavailable(t *testing.T) {
	inv := new(MockSeatInventory)
	service := newTestService(new(MockBookingRepository), inv, new(MockTicketIssuer), new(MockProducer))

	inv.On("LockSeats", mock.Anything, "sched-1", mock.Anything).
		Return(domain.UpstreamUnavailable("inventory service unreachable", errors.New("connection refused")))

	_, err := service.CreateBooking(context.Background(), validInput())

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUpstreamUnavailable))
	inv.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_PNRExhaustionReleasesSeats(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	service := newTestService(repo, inv, new(MockTicketIssuer), new(MockProducer))

	inv.On("LockSeats", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	inv.On("ReleaseSeats", mock.Anything, mock.Anything, mock.Anything).Return(2, nil)
	repo.On("ExistsByPNR", mock.Anything, mock.Anything).Return(true, nil)

	_, err := service.CreateBooking(context.Background(), validInput())

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Contains(t, err.Error(), "after 10 attempts")
	repo.AssertNumberOfCalls(t, "ExistsByPNR", 10)
	inv.AssertNumberOfCalls(t, "ReleaseSeats", 2)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_PersistenceFailureReleasesSeats(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	tickets := new(MockTicketIssuer)
	service := newTestService(repo, inv, tickets, new(MockProducer))

	inv.On("LockSeats", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	inv.On("ReleaseSeats", mock.Anything, mock.Anything, mock.Anything).Return(2, nil)
	repo.On("ExistsByPNR", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := service.CreateBooking(context.Background(), validInput())

	require.Error(t, err)
	inv.AssertNumberOfCalls(t, "ReleaseSeats", 2)
	tickets.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_TicketFailureKeepsSeatsLocked(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	tickets := new(MockTicketIssuer)
	service := newTestService(repo, inv, tickets, new(MockProducer))

	inv.On("LockSeats", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("ExistsByPNR", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	tickets.On("Issue", mock.Anything, mock.Anything, "sched-1").
		Return(nil, errors.New("insert failed"))

	_, err := service.CreateBooking(context.Background(), validInput())

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInternal))
	assert.Contains(t, err.Error(), "ticket issuance failed")
	inv.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_Success(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	tickets := new(MockTicketIssuer)
	producer := new(MockProducer)
	service := newTestService(repo, inv, tickets, producer)

	booking := &domain.Booking{
		ID:           "booking-1",
		PNR:          "AB12CD",
		ContactEmail: "traveler@example.com",
		ScheduleIDs:  []string{"sched-1", "sched-2"},
		Passengers: []domain.Passenger{
			{FullName: "Alice Ray", SeatNumber: "1A"},
			{FullName: "Bob Ray", SeatNumber: "1B"},
		},
		Status: domain.BookingStatusConfirmed,
	}
	repo.On("GetByPNR", mock.Anything, "AB12CD").Return(booking, nil)
	repo.On("UpdateStatus", mock.Anything, "booking-1", domain.BookingStatusCancelled).Return(nil)
	inv.On("ReleaseSeats", mock.Anything, "sched-1", []string{"1A", "1B"}).Return(2, nil)
	inv.On("ReleaseSeats", mock.Anything, "sched-2", []string{"1A", "1B"}).Return(2, nil)
	tickets.On("CancelForBooking", mock.Anything, "booking-1").Return(2, nil)
	producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	cancelled, err := service.CancelBooking(context.Background(), "AB12CD")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	repo.AssertExpectations(t)
	inv.AssertExpectations(t)
	tickets.AssertExpectations(t)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	service := newTestService(repo, inv, new(MockTicketIssuer), new(MockProducer))

	repo.On("GetByPNR", mock.Anything, "AB12CD").Return(&domain.Booking{
		ID:     "booking-1",
		PNR:    "AB12CD",
		Status: domain.BookingStatusCancelled,
	}, nil)

	_, err := service.CancelBooking(context.Background(), "AB12CD")

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBadRequest))
	assert.Contains(t, err.Error(), "already cancelled")
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	inv.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_NotFound(t *testing.T) {
	repo := new(MockBookingRepository)
	service := newTestService(repo, new(MockSeatInventory), new(MockTicketIssuer), new(MockProducer))

	repo.On("GetByPNR", mock.Anything, "ZZZZZZ").
		Return(nil, domain.NotFound("booking with PNR ZZZZZZ not found"))

	_, err := service.CancelBooking(context.Background(), "ZZZZZZ")

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCancelBooking_ReleaseFailureDoesNotBlock(t *testing.T) {
	repo := new(MockBookingRepository)
	inv := new(MockSeatInventory)
	tickets := new(MockTicketIssuer)
	producer := new(MockProducer)
	service := newTestService(repo, inv, tickets, producer)

	booking := &domain.Booking{
		ID:          "booking-1",
		PNR:         "AB12CD",
		ScheduleIDs: []string{"sched-1"},
		Passengers:  []domain.Passenger{{FullName: "Alice Ray", SeatNumber: "1A"}},
		Status:      domain.BookingStatusConfirmed,
	}
	repo.On("GetByPNR", mock.Anything, "AB12CD").Return(booking, nil)
	repo.On("UpdateStatus", mock.Anything, "booking-1", domain.BookingStatusCancelled).Return(nil)
	inv.On("ReleaseSeats", mock.Anything, "sched-1", mock.Anything).
		Return(0, domain.UpstreamUnavailable("inventory service unreachable", errors.New("timeout")))
	tickets.On("CancelForBooking", mock.Anything, "booking-1").Return(1, nil)
	producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	cancelled, err := service.CancelBooking(context.Background(), "AB12CD")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
}
