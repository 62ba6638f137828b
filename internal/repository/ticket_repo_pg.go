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

type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Ticket, error)
	ListByBookingID(ctx context.Context, bookingID string) ([]domain.Ticket, error)
	CancelByBookingID(ctx context.Context, bookingID string) (int, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

func (r *PGTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	passengers, err := json.Marshal(ticket.Passengers)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `INSERT INTO tickets (id, pnr, booking_id, schedule_id, passengers, status, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		ticket.ID, ticket.PNR, ticket.BookingID, ticket.ScheduleID, passengers, ticket.Status, ticket.IssuedAt).
		Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	return err
}

// GetByPNR returns the first ticket issued under the PNR. Multi-leg bookings
// have one ticket per schedule; issuance order is preserved.
func (r *PGTicketRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT id, pnr, booking_id, schedule_id, passengers, status, issued_at, created_at, updated_at FROM tickets WHERE pnr=$1 ORDER BY issued_at, id LIMIT 1`, pnr)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("ticket not found with PNR %s", pnr)
		}
		return nil, err
	}
	return ticket, nil
}

func (r *PGTicketRepository) ListByBookingID(ctx context.Context, bookingID string) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT id, pnr, booking_id, schedule_id, passengers, status, issued_at, created_at, updated_at FROM tickets WHERE booking_id=$1 ORDER BY issued_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) CancelByBookingID(ctx context.Context, bookingID string) (int, error) {
	res, err := r.db.Exec(ctx, `UPDATE tickets SET status=$1, updated_at=now() WHERE booking_id=$2 AND status=$3`,
		domain.TicketStatusCancelled, bookingID, domain.TicketStatusActive)
	if err != nil {
		return 0, err
	}
	return int(res.RowsAffected()), nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	var passengers []byte
	if err := row.Scan(&t.ID, &t.PNR, &t.BookingID, &t.ScheduleID, &passengers, &t.Status, &t.IssuedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(passengers, &t.Passengers); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
