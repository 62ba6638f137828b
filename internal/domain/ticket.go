package domain

import "time"

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "ACTIVE"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// Ticket is the per-schedule travel document issued from a confirmed
// booking. Passengers is a snapshot taken at issuance, not a reference to
// the booking's list.
type Ticket struct {
	ID         string
	PNR        string
	BookingID  string
	ScheduleID string
	Passengers []Passenger
	Status     TicketStatus
	IssuedAt   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
