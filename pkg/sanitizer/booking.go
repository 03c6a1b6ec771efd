package sanitizer

import (
	"strings"

	"roombook/pkg/model"
)

// SanitizeBookingRequest normalizes req in place. Room names stay case
// sensitive; they only lose surrounding spaces.
func SanitizeBookingRequest(req *model.BookingRequest) {
	req.Room = strings.TrimSpace(req.Room)
	req.Date = strings.TrimSpace(req.Date)
	req.BookedBy = NormalizeName(req.BookedBy)
}
