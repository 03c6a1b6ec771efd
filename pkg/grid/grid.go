// Package grid holds the fixed bookable layout: which rooms exist and which
// hours of the business day can be booked.
package grid

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	RoomBesar  = "Besar"
	RoomSedang = "Sedang"
	RoomKecil  = "Kecil"

	DefaultFirstHour = 8
	DefaultLastHour  = 17
)

var DefaultRooms = []string{RoomBesar, RoomSedang, RoomKecil}

var (
	ErrNoRooms       = errors.New("at least one room is required")
	ErrDuplicateRoom = errors.New("duplicate room")
	ErrHourRange     = errors.New("hours must satisfy 0 <= first <= last <= 23")
)

type Grid struct {
	rooms     []string
	roomOrder map[string]int
	firstHour int
	lastHour  int
}

func New(rooms []string, firstHour, lastHour int) (*Grid, error) {
	if firstHour < 0 || lastHour > 23 || firstHour > lastHour {
		return nil, fmt.Errorf("%w: got %d..%d", ErrHourRange, firstHour, lastHour)
	}

	g := &Grid{
		roomOrder: make(map[string]int, len(rooms)),
		firstHour: firstHour,
		lastHour:  lastHour,
	}
	for _, r := range rooms {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := g.roomOrder[r]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoom, r)
		}
		g.roomOrder[r] = len(g.rooms)
		g.rooms = append(g.rooms, r)
	}
	if len(g.rooms) == 0 {
		return nil, ErrNoRooms
	}
	return g, nil
}

// Default is the layout of the office: three rooms, 08:00 to 18:00.
func Default() *Grid {
	g, _ := New(DefaultRooms, DefaultFirstHour, DefaultLastHour)
	return g
}

func (g *Grid) Rooms() []string {
	return slices.Clone(g.rooms)
}

func (g *Grid) Hours() []int {
	hours := make([]int, 0, g.lastHour-g.firstHour+1)
	for h := g.firstHour; h <= g.lastHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

func (g *Grid) FirstHour() int { return g.firstHour }
func (g *Grid) LastHour() int  { return g.lastHour }

func (g *Grid) HasRoom(room string) bool {
	_, ok := g.roomOrder[room]
	return ok
}

func (g *Grid) HasHour(hour int) bool {
	return hour >= g.firstHour && hour <= g.lastHour
}

// RoomIndex gives the display position of room, or -1 when unknown.
func (g *Grid) RoomIndex(room string) int {
	if i, ok := g.roomOrder[room]; ok {
		return i
	}
	return -1
}

// SlotLabel renders an hour as "8:00 - 9:00".
func SlotLabel(hour int) string {
	return fmt.Sprintf("%d:00 - %d:00", hour, hour+1)
}
