package email

import (
	"context"
	"fmt"

	"github.com/aerodesk/flightbooking/internal/kafka"
	"go.uber.org/zap"
)

// Sender delivers booking notifications. The transport is a stub; the worker
// only needs something that accepts a BookingEvent.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	var subject string
	switch event.Type {
	case "booking_confirmed":
		subject = fmt.Sprintf("Booking %s confirmed", event.PNR)
	case "booking_cancelled":
		subject = fmt.Sprintf("Booking %s cancelled", event.PNR)
	default:
		subject = fmt.Sprintf("Booking %s update", event.PNR)
	}

	s.log.Info("sending booking email",
		zap.String("to", event.ContactEmail),
		zap.String("subject", subject),
		zap.String("pnr", event.PNR),
		zap.Int("schedules", len(event.ScheduleIDs)),
	)
	return nil
}
