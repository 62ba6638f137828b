package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatNumbers_FollowsPassengerOrder(t *testing.T) {
	b := &Booking{
		Passengers: []Passenger{
			{FullName: "Alice Ray", SeatNumber: "1A"},
			{FullName: "Bob Ray", SeatNumber: "1B"},
		},
	}

	assert.Equal(t, []string{"1A", "1B"}, b.SeatNumbers())
}

func TestCopyPassengers_Independent(t *testing.T) {
	b := &Booking{
		Passengers: []Passenger{{FullName: "Alice Ray", SeatNumber: "1A", MealOption: "VEG"}},
	}

	snapshot := b.CopyPassengers()
	b.Passengers[0].SeatNumber = "9Z"

	assert.Equal(t, "1A", snapshot[0].SeatNumber)
	assert.Equal(t, "VEG", snapshot[0].MealOption)
}
