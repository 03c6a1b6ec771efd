package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"roombook/pkg/model"
)

func testView() *model.WeekView {
	rooms := []string{"Besar", "Sedang"}
	dates := []string{"2024-02-28", "2024-02-29"}
	booked := &model.Booking{ID: "1", Room: "Sedang", Date: "2024-02-29", Hour: 9, BookedBy: "Alice"}

	view := &model.WeekView{Start: "2024-02-28", Dates: dates, Rooms: rooms}
	for _, hour := range []int{8, 9} {
		row := model.WeekRow{Hour: hour}
		if hour == 8 {
			row.Label = "8:00 - 9:00"
		} else {
			row.Label = "9:00 - 10:00"
		}
		for _, date := range dates {
			cell := model.DayCell{Date: date}
			for _, room := range rooms {
				slot := model.SlotCell{Room: room}
				if hour == booked.Hour && date == booked.Date && room == booked.Room {
					slot.Booking = booked
				}
				cell.Slots = append(cell.Slots, slot)
			}
			row.Days = append(row.Days, cell)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func TestWriteWeek(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWeek(&buf, testView()); err != nil {
		t.Fatalf("WriteWeek() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell string
		want string
	}{
		{cell: "A1", want: "Bookings 2024-02-28 - 2024-02-29"},
		{cell: "B2", want: "2024-02-28"},
		{cell: "D2", want: "2024-02-29"},
		{cell: "B3", want: "Besar"},
		{cell: "E3", want: "Sedang"},
		{cell: "A4", want: "8:00 - 9:00"},
		{cell: "A5", want: "9:00 - 10:00"},
		{cell: "E5", want: "Alice"},
		{cell: "D5", want: ""},
		{cell: "E4", want: ""},
	}

	for _, tt := range tests {
		got, err := f.GetCellValue(sheetName, tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error: %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("%s = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestWeek_SlotStyles(t *testing.T) {
	f, err := Week(testView())
	if err != nil {
		t.Fatalf("Week() error: %v", err)
	}
	defer f.Close()

	booked, err := f.GetCellStyle(sheetName, "E5")
	if err != nil {
		t.Fatal(err)
	}
	free, err := f.GetCellStyle(sheetName, "D5")
	if err != nil {
		t.Fatal(err)
	}
	header, err := f.GetCellStyle(sheetName, "A5")
	if err != nil {
		t.Fatal(err)
	}
	if booked == free || booked == header || free == header {
		t.Errorf("styles booked=%d free=%d header=%d, want all distinct", booked, free, header)
	}
}

func TestWeek_TooManyColumns(t *testing.T) {
	rooms := make([]string, 3000)
	for i := range rooms {
		rooms[i] = fmt.Sprintf("Room %d", i)
	}
	view := &model.WeekView{
		Start: "2024-06-10",
		Dates: []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14", "2024-06-15", "2024-06-16"},
		Rooms: rooms,
	}

	if _, err := Week(view); err == nil {
		t.Error("Week() should fail when the grid exceeds the sheet's columns")
	}
}

func TestWeek_Nil(t *testing.T) {
	if _, err := Week(nil); err == nil {
		t.Error("expected error for nil view")
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("2024-06-10"); got != "bookings-2024-06-10.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
}
