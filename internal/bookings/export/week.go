// Package export renders a week of bookings as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"roombook/pkg/model"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Week"

	dateRow  = 2
	roomRow  = 3
	firstRow = 4
)

// FileName is the attachment name for the week starting at start.
func FileName(start string) string {
	return fmt.Sprintf("bookings-%s.xlsx", start)
}

// Week lays out view as one row per hour and, for each day, one column per
// room. Booked cells carry the name of whoever booked them.
func Week(view *model.WeekView) (*excelize.File, error) {
	if view == nil {
		return nil, fmt.Errorf("export: nil week view")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error creating styles: %w", err)
	}

	sw := &sheetWriter{f: f}
	sw.value(1, 1, fmt.Sprintf("Bookings %s - %s", view.Start, lastDate(view)))
	sw.style(1, 1, 1, 1, styles.header)

	rooms := len(view.Rooms)
	for d, date := range view.Dates {
		first := 2 + d*rooms
		sw.value(first, dateRow, date)
		if rooms > 1 {
			sw.merge(first, dateRow, first+rooms-1, dateRow)
		}
		sw.style(first, dateRow, first+rooms-1, dateRow, styles.header)

		for r, room := range view.Rooms {
			sw.value(first+r, roomRow, room)
			sw.style(first+r, roomRow, first+r, roomRow, styles.header)
		}
	}

	for i, row := range view.Rows {
		y := firstRow + i
		sw.value(1, y, row.Label)
		sw.style(1, y, 1, y, styles.header)

		for d, day := range row.Days {
			for r, slot := range day.Slots {
				x := 2 + d*rooms + r
				if slot.Free() {
					sw.style(x, y, x, y, styles.free)
					continue
				}
				sw.value(x, y, slot.Booking.BookedBy)
				sw.style(x, y, x, y, styles.booked)
			}
		}
	}

	if sw.err == nil {
		sw.err = f.SetColWidth(sheetName, "A", "A", 16)
	}
	if sw.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error filling week sheet: %w", sw.err)
	}
	return f, nil
}

// sheetWriter addresses cells by column and row and keeps the first error;
// later calls are no-ops once one has failed.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) cell(x, y int) string {
	if w.err != nil {
		return ""
	}
	name, err := excelize.CoordinatesToCellName(x, y)
	if err != nil {
		w.err = err
	}
	return name
}

func (w *sheetWriter) value(x, y int, v any) {
	cell := w.cell(x, y)
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(sheetName, cell, v)
}

func (w *sheetWriter) style(x1, y1, x2, y2, style int) {
	from, to := w.cell(x1, y1), w.cell(x2, y2)
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(sheetName, from, to, style)
}

func (w *sheetWriter) merge(x1, y1, x2, y2 int) {
	from, to := w.cell(x1, y1), w.cell(x2, y2)
	if w.err != nil {
		return
	}
	if err := w.f.MergeCell(sheetName, from, to); err != nil {
		w.err = fmt.Errorf("merging %s:%s: %w", from, to, err)
	}
}

// WriteWeek streams the spreadsheet for view to w.
func WriteWeek(w io.Writer, view *model.WeekView) error {
	f, err := Week(view)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing spreadsheet: %w", err)
	}
	return nil
}

type styleSet struct {
	header int
	free   int
	booked int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, err
	}

	s.free, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return s, err
	}

	s.booked, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	return s, err
}

func lastDate(view *model.WeekView) string {
	if len(view.Dates) == 0 {
		return view.Start
	}
	return view.Dates[len(view.Dates)-1]
}
