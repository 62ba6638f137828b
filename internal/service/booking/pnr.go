package booking

import (
	"context"
	"math/rand/v2"

	"github.com/aerodesk/flightbooking/internal/domain"
)

const (
	pnrAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pnrLength      = 6
	maxPNRAttempts = 10
)

// generateUniquePNR draws 6-symbol references until one is free. The
// keyspace is 36^6 so collisions are rare, but the attempt bound turns a
// pathological streak into an error instead of a loop.
func (s *BookingService) generateUniquePNR(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxPNRAttempts; attempt++ {
		pnr := randomPNR()
		exists, err := s.bookings.ExistsByPNR(ctx, pnr)
		if err != nil {
			return "", err
		}
		if !exists {
			return pnr, nil
		}
	}
	return "", domain.Conflict("failed to generate a unique PNR after %d attempts", maxPNRAttempts)
}

func randomPNR() string {
	code := make([]byte, pnrLength)
	for i := range code {
		code[i] = pnrAlphabet[rand.IntN(len(pnrAlphabet))]
	}
	return string(code)
}
