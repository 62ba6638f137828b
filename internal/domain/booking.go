package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Passenger struct {
	FullName   string `json:"full_name"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	SeatNumber string `json:"seat_number"`
	MealOption string `json:"meal_option"`
}

// Booking groups one or more schedule legs under a single PNR. The same
// passenger list (and therefore the same seat numbers) travels on every leg.
// Status only ever moves CONFIRMED -> CANCELLED.
type Booking struct {
	ID           string
	PNR          string
	ContactEmail string
	ScheduleIDs  []string
	Passengers   []Passenger
	Status       BookingStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SeatNumbers returns the seat of each passenger in passenger order. This
// exact list is locked on every schedule in the booking.
func (b *Booking) SeatNumbers() []string {
	seats := make([]string, len(b.Passengers))
	for i, p := range b.Passengers {
		seats[i] = p.SeatNumber
	}
	return seats
}

// CopyPassengers returns an independent copy of the passenger list, so a
// ticket snapshot cannot be affected by later changes to the booking.
func (b *Booking) CopyPassengers() []Passenger {
	passengers := make([]Passenger, len(b.Passengers))
	copy(passengers, b.Passengers)
	return passengers
}
