package repository

import (
	"context"
	"errors"

	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	if flight.ID == "" {
		flight.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `INSERT INTO flights (id, flight_number, airline, origin_airport, destination_airport, seat_capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		flight.ID, flight.FlightNumber, flight.Airline, flight.OriginAirport, flight.DestinationAirport, flight.SeatCapacity).
		Scan(&flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return err
	}
	return nil
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT id, flight_number, airline, origin_airport, destination_airport, seat_capacity, created_at, updated_at FROM flights WHERE flight_number=$1`, flightNumber)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.OriginAirport, &f.DestinationAirport, &f.SeatCapacity, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("flight not found with number %s", flightNumber)
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_number, airline, origin_airport, destination_airport, seat_capacity, created_at, updated_at FROM flights ORDER BY flight_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.OriginAirport, &f.DestinationAirport, &f.SeatCapacity, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
