package domain

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "SCHEDULED"
	ScheduleStatusDeparted  ScheduleStatus = "DEPARTED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

type Flight struct {
	ID                 string
	FlightNumber       string
	Airline            string
	OriginAirport      string
	DestinationAirport string
	SeatCapacity       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FlightSchedule is the unit of seat inventory: one dated occurrence of a
// flight with its own seat accounting. Seat fields are mutated only through
// LockSeats/ReleaseSeats so that AvailableSeats+len(BookedSeats)==TotalSeats
// holds at all times.
type FlightSchedule struct {
	ID             string
	FlightID       string
	FlightNumber   string
	FlightDate     time.Time
	DepartureTime  string
	ArrivalTime    string
	FareCents      int64
	TotalSeats     int
	AvailableSeats int
	BookedSeats    []string
	Status         ScheduleStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LockSeats reserves the given seat numbers against the schedule. The check
// and the mutation happen on the in-memory copy; callers are responsible for
// serializing concurrent access to the same schedule (the Postgres repository
// does this with a row lock).
func (s *FlightSchedule) LockSeats(seatNumbers []string) error {
	if len(seatNumbers) > s.AvailableSeats {
		return Conflict("not enough seats available: %d available, %d requested", s.AvailableSeats, len(seatNumbers))
	}

	requested := make(map[string]struct{}, len(seatNumbers))
	for _, seat := range seatNumbers {
		if _, ok := requested[seat]; ok {
			return Conflict("duplicate seat number %s in request", seat)
		}
		requested[seat] = struct{}{}
	}

	booked := make(map[string]struct{}, len(s.BookedSeats))
	for _, seat := range s.BookedSeats {
		booked[seat] = struct{}{}
	}
	for _, seat := range seatNumbers {
		if _, ok := booked[seat]; ok {
			return Conflict("seat %s is already booked", seat)
		}
	}

	s.BookedSeats = append(s.BookedSeats, seatNumbers...)
	s.AvailableSeats -= len(seatNumbers)
	return nil
}

// ReleaseSeats removes any of the given seat numbers that are currently
// booked and returns the count actually removed. Seat numbers that are not
// booked are ignored, which keeps compensating releases idempotent.
func (s *FlightSchedule) ReleaseSeats(seatNumbers []string) int {
	toRelease := make(map[string]struct{}, len(seatNumbers))
	for _, seat := range seatNumbers {
		toRelease[seat] = struct{}{}
	}

	kept := s.BookedSeats[:0]
	released := 0
	for _, seat := range s.BookedSeats {
		if _, ok := toRelease[seat]; ok {
			released++
			continue
		}
		kept = append(kept, seat)
	}
	s.BookedSeats = kept
	s.AvailableSeats += released
	return released
}
