package grid

import (
	"errors"
	"slices"
	"testing"
)

func TestDefault(t *testing.T) {
	g := Default()

	if got := g.Rooms(); !slices.Equal(got, []string{"Besar", "Sedang", "Kecil"}) {
		t.Errorf("Rooms() = %v", got)
	}

	hours := g.Hours()
	if len(hours) != 10 {
		t.Fatalf("expected 10 hours, got %d", len(hours))
	}
	if hours[0] != 8 || hours[9] != 17 {
		t.Errorf("expected 8..17, got %d..%d", hours[0], hours[9])
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		rooms   []string
		first   int
		last    int
		wantErr error
	}{
		{name: "valid", rooms: []string{"A", "B"}, first: 9, last: 12},
		{name: "single hour", rooms: []string{"A"}, first: 9, last: 9},
		{name: "trims blanks", rooms: []string{" A ", ""}, first: 0, last: 23},
		{name: "no rooms", rooms: []string{" "}, first: 8, last: 17, wantErr: ErrNoRooms},
		{name: "duplicate", rooms: []string{"A", "A"}, first: 8, last: 17, wantErr: ErrDuplicateRoom},
		{name: "inverted hours", rooms: []string{"A"}, first: 17, last: 8, wantErr: ErrHourRange},
		{name: "hour above 23", rooms: []string{"A"}, first: 8, last: 24, wantErr: ErrHourRange},
		{name: "negative hour", rooms: []string{"A"}, first: -1, last: 8, wantErr: ErrHourRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rooms, tt.first, tt.last)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMembership(t *testing.T) {
	g := Default()

	if !g.HasRoom("Sedang") || g.HasRoom("sedang") || g.HasRoom("Aula") {
		t.Error("room membership must be exact")
	}
	if !g.HasHour(8) || !g.HasHour(17) || g.HasHour(7) || g.HasHour(18) {
		t.Error("hour range must be closed 8..17")
	}
	if g.RoomIndex("Kecil") != 2 || g.RoomIndex("Aula") != -1 {
		t.Error("unexpected room index")
	}
}

func TestRoomsIsACopy(t *testing.T) {
	g := Default()
	rooms := g.Rooms()
	rooms[0] = "Aula"

	if g.Rooms()[0] != "Besar" {
		t.Error("mutating Rooms() result must not change the grid")
	}
}

func TestSlotLabel(t *testing.T) {
	if got := SlotLabel(8); got != "8:00 - 9:00" {
		t.Errorf("SlotLabel(8) = %q", got)
	}
	if got := SlotLabel(17); got != "17:00 - 18:00" {
		t.Errorf("SlotLabel(17) = %q", got)
	}
}
