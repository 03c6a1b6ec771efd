package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	Booking    *Booking  `json:"booking"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}
