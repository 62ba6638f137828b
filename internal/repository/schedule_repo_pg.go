package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.FlightSchedule) error
	GetByID(ctx context.Context, id string) (*domain.FlightSchedule, error)
	Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightSchedule, error)
	LockSeats(ctx context.Context, scheduleID string, seatNumbers []string) error
	ReleaseSeats(ctx context.Context, scheduleID string, seatNumbers []string) (int, error)
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

const scheduleColumns = `s.id, s.flight_id, f.flight_number, s.flight_date, s.departure_time, s.arrival_time, s.fare_cents, s.total_seats, s.available_seats, s.booked_seats, s.status, s.created_at, s.updated_at`

func scanSchedule(row pgx.Row) (*domain.FlightSchedule, error) {
	var s domain.FlightSchedule
	if err := row.Scan(&s.ID, &s.FlightID, &s.FlightNumber, &s.FlightDate, &s.DepartureTime, &s.ArrivalTime, &s.FareCents, &s.TotalSeats, &s.AvailableSeats, &s.BookedSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGScheduleRepository) Create(ctx context.Context, schedule *domain.FlightSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.BookedSeats == nil {
		schedule.BookedSeats = []string{}
	}
	err := r.db.QueryRow(ctx, `INSERT INTO flight_schedules (id, flight_id, flight_date, departure_time, arrival_time, fare_cents, total_seats, available_seats, booked_seats, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		schedule.ID, schedule.FlightID, schedule.FlightDate, schedule.DepartureTime, schedule.ArrivalTime, schedule.FareCents, schedule.TotalSeats, schedule.AvailableSeats, schedule.BookedSeats, schedule.Status).
		Scan(&schedule.CreatedAt, &schedule.UpdatedAt)
	return err
}

func (r *PGScheduleRepository) GetByID(ctx context.Context, id string) (*domain.FlightSchedule, error) {
	row := r.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM flight_schedules s JOIN flights f ON f.id = s.flight_id WHERE s.id=$1`, id)
	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("flight schedule not found: %s", id)
		}
		return nil, err
	}
	return schedule, nil
}

func (r *PGScheduleRepository) Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightSchedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+` FROM flight_schedules s
		JOIN flights f ON f.id = s.flight_id
		WHERE f.origin_airport=$1 AND f.destination_airport=$2 AND s.flight_date=$3
		ORDER BY s.departure_time`, origin, destination, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]domain.FlightSchedule, 0)
	for rows.Next() {
		var s domain.FlightSchedule
		if err := rows.Scan(&s.ID, &s.FlightID, &s.FlightNumber, &s.FlightDate, &s.DepartureTime, &s.ArrivalTime, &s.FareCents, &s.TotalSeats, &s.AvailableSeats, &s.BookedSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// LockSeats reserves seats inside a single transaction. The SELECT ... FOR
// UPDATE serializes concurrent lock/release calls on the same schedule row,
// so the capacity and collision checks and the counter update act as one
// atomic unit.
func (r *PGScheduleRepository) LockSeats(ctx context.Context, scheduleID string, seatNumbers []string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	schedule, err := lockScheduleRow(ctx, tx, scheduleID)
	if err != nil {
		return err
	}

	if err := schedule.LockSeats(seatNumbers); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE flight_schedules SET booked_seats=$1, available_seats=$2, updated_at=now() WHERE id=$3`,
		schedule.BookedSeats, schedule.AvailableSeats, scheduleID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReleaseSeats returns previously locked seats. Seats that are not booked
// are ignored so compensating releases can be retried safely.
func (r *PGScheduleRepository) ReleaseSeats(ctx context.Context, scheduleID string, seatNumbers []string) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	schedule, err := lockScheduleRow(ctx, tx, scheduleID)
	if err != nil {
		return 0, err
	}

	released := schedule.ReleaseSeats(seatNumbers)
	if released > 0 {
		if _, err := tx.Exec(ctx, `UPDATE flight_schedules SET booked_seats=$1, available_seats=$2, updated_at=now() WHERE id=$3`,
			schedule.BookedSeats, schedule.AvailableSeats, scheduleID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return released, nil
}

func lockScheduleRow(ctx context.Context, tx pgx.Tx, scheduleID string) (*domain.FlightSchedule, error) {
	row := tx.QueryRow(ctx, `SELECT id, flight_id, total_seats, available_seats, booked_seats FROM flight_schedules WHERE id=$1 FOR UPDATE`, scheduleID)
	var s domain.FlightSchedule
	if err := row.Scan(&s.ID, &s.FlightID, &s.TotalSeats, &s.AvailableSeats, &s.BookedSeats); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("flight schedule not found: %s", scheduleID)
		}
		return nil, err
	}
	return &s, nil
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
