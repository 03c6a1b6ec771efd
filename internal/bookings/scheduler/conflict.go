// Package scheduler decides whether a candidate booking may take a slot.
// A slot is held by at most one booking per room; the first commit wins.
package scheduler

import (
	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/model"
)

type SlotKey struct {
	Room string
	Date string
	Hour int
}

func KeyOf(b *model.Booking) SlotKey {
	return SlotKey{Room: b.Room, Date: b.Date, Hour: b.Hour}
}

func KeyOfRequest(r *model.BookingRequest) SlotKey {
	return SlotKey{Room: r.Room, Date: r.Date, Hour: r.SlotHour()}
}

func (k SlotKey) conflict(existingID string) *bookingserrors.ConflictError {
	return &bookingserrors.ConflictError{
		Room:       k.Room,
		Date:       k.Date,
		Hour:       k.Hour,
		ExistingID: existingID,
	}
}

// Check scans existing for an exact (room, date, hour) match.
func Check(existing []*model.Booking, candidate SlotKey) error {
	for _, b := range existing {
		if KeyOf(b) == candidate {
			return candidate.conflict(b.ID)
		}
	}
	return nil
}

// Index answers the same question as Check in constant time.
type Index struct {
	bySlot map[SlotKey]*model.Booking
	byID   map[string]SlotKey
}

func NewIndex(bookings []*model.Booking) *Index {
	idx := &Index{
		bySlot: make(map[SlotKey]*model.Booking, len(bookings)),
		byID:   make(map[string]SlotKey, len(bookings)),
	}
	for _, b := range bookings {
		idx.Put(b)
	}
	return idx
}

// Put records b, replacing whatever previously held its slot or its ID.
func (i *Index) Put(b *model.Booking) {
	if old, ok := i.byID[b.ID]; ok {
		delete(i.bySlot, old)
	}
	key := KeyOf(b)
	if prev, ok := i.bySlot[key]; ok {
		delete(i.byID, prev.ID)
	}
	i.bySlot[key] = b
	i.byID[b.ID] = key
}

func (i *Index) Delete(id string) (*model.Booking, bool) {
	key, ok := i.byID[id]
	if !ok {
		return nil, false
	}
	b := i.bySlot[key]
	delete(i.byID, id)
	delete(i.bySlot, key)
	return b, true
}

func (i *Index) Lookup(key SlotKey) (*model.Booking, bool) {
	b, ok := i.bySlot[key]
	return b, ok
}

func (i *Index) Get(id string) (*model.Booking, bool) {
	key, ok := i.byID[id]
	if !ok {
		return nil, false
	}
	return i.bySlot[key], true
}

func (i *Index) Check(candidate SlotKey) error {
	if b, ok := i.bySlot[candidate]; ok {
		return candidate.conflict(b.ID)
	}
	return nil
}

func (i *Index) Len() int {
	return len(i.bySlot)
}

// All returns the indexed bookings in no particular order.
func (i *Index) All() []*model.Booking {
	out := make([]*model.Booking, 0, len(i.bySlot))
	for _, b := range i.bySlot {
		out = append(out, b)
	}
	return out
}
