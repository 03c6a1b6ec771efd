package model

import (
	"time"
)

// Booking is immutable once stored; the only change it ever sees is deletion.
type Booking struct {
	ID        string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	Room      string    `json:"room" bson:"room" firestore:"room"`
	Date      string    `json:"date" bson:"date" firestore:"date"`
	Hour      int       `json:"hour" bson:"hour" firestore:"time"`
	BookedBy  string    `json:"bookedBy" bson:"booked_by" firestore:"bookedBy"`
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"created_at" firestore:"createdAt,omitempty"`
}

// BookingRequest is a candidate booking: everything but the identifier,
// which only the backend assigns. Hour is a pointer so an omitted hour is
// told apart from midnight.
type BookingRequest struct {
	Room     string `json:"room" validate:"required,room"`
	Date     string `json:"date" validate:"required,calendar_date"`
	Hour     *int   `json:"hour" validate:"required,slot_hour"`
	BookedBy string `json:"bookedBy" validate:"required,max=100"`
}

func NewBookingRequest(room, date string, hour int, bookedBy string) *BookingRequest {
	return &BookingRequest{Room: room, Date: date, Hour: &hour, BookedBy: bookedBy}
}

// SlotHour is the requested hour, or 0 when none was given. Validate first.
func (r *BookingRequest) SlotHour() int {
	if r.Hour == nil {
		return 0
	}
	return *r.Hour
}

func (r *BookingRequest) ToBooking() *Booking {
	return &Booking{
		Room:     r.Room,
		Date:     r.Date,
		Hour:     r.SlotHour(),
		BookedBy: r.BookedBy,
	}
}

func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func CloneAll(bookings []*Booking) []*Booking {
	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.Clone())
	}
	return out
}
