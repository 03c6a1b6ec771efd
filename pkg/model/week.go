package model

// WeekView is the seven-day availability grid: one row per hour, one cell per
// day, and inside each cell one slot per room in display order.
type WeekView struct {
	Start    string     `json:"start"`
	Previous string     `json:"previous"`
	Next     string     `json:"next"`
	Dates    []string   `json:"dates"`
	Rooms    []string   `json:"rooms"`
	Rows     []WeekRow  `json:"rows"`
	Bookings []*Booking `json:"bookings"`
}

type WeekRow struct {
	Hour  int       `json:"hour"`
	Label string    `json:"label"`
	Days  []DayCell `json:"days"`
}

type DayCell struct {
	Date  string     `json:"date"`
	Slots []SlotCell `json:"slots"`
}

type SlotCell struct {
	Room    string   `json:"room"`
	Booking *Booking `json:"booking,omitempty"`
}

func (s SlotCell) Free() bool {
	return s.Booking == nil
}
