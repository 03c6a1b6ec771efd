// Package week computes the seven-day display window. Dates are civil
// calendar days, so no timezone or daylight-saving shift can move them.
package week

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"roombook/pkg/model"
)

const Days = 7

// Layout is the only accepted date representation.
const Layout = "2006-01-02"

func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s)
	}
	if !d.IsValid() {
		return civil.Date{}, fmt.Errorf("invalid date %q: not a calendar day", s)
	}
	return d, nil
}

func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// Today is the current calendar day in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(now.In(loc))
}

func Of(anchor civil.Date) []civil.Date {
	dates := make([]civil.Date, Days)
	for i := range dates {
		dates[i] = anchor.AddDays(i)
	}
	return dates
}

func Strings(dates []civil.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

// Shift moves the anchor by whole weeks; negative goes back.
func Shift(anchor civil.Date, weeks int) civil.Date {
	return anchor.AddDays(weeks * Days)
}

func Next(anchor civil.Date) civil.Date     { return Shift(anchor, 1) }
func Previous(anchor civil.Date) civil.Date { return Shift(anchor, -1) }

// Filter keeps the bookings dated inside window, preserving input order.
func Filter(bookings []*model.Booking, window []civil.Date) []*model.Booking {
	in := make(map[string]struct{}, len(window))
	for _, d := range window {
		in[d.String()] = struct{}{}
	}

	out := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := in[b.Date]; ok {
			out = append(out, b)
		}
	}
	return out
}
