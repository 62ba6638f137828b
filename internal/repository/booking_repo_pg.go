package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	ExistsByPNR(ctx context.Context, pnr string) (bool, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	passengers, err := json.Marshal(booking.Passengers)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `INSERT INTO bookings (id, pnr, contact_email, schedule_ids, passengers, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		booking.ID, booking.PNR, booking.ContactEmail, booking.ScheduleIDs, passengers, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	return err
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, pnr, contact_email, schedule_ids, passengers, status, created_at, updated_at FROM bookings WHERE pnr=$1`, pnr)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("booking not found with PNR %s", pnr)
		}
		return nil, err
	}
	return booking, nil
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT id, pnr, contact_email, schedule_ids, passengers, status, created_at, updated_at FROM bookings WHERE contact_email=$1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("booking not found: %s", id)
	}
	return nil
}

func (r *PGBookingRepository) ExistsByPNR(ctx context.Context, pnr string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE pnr=$1)`, pnr).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var passengers []byte
	if err := row.Scan(&b.ID, &b.PNR, &b.ContactEmail, &b.ScheduleIDs, &passengers, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(passengers, &b.Passengers); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
