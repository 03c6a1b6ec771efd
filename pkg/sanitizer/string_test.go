package sanitizer

import (
	"testing"

	"roombook/pkg/model"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Alice  ", want: "Alice"},
		{name: "multiple spaces between words", input: "Alice    Wong", want: "Alice Wong"},
		{name: "tabs and newlines", input: "Alice\t\nWong", want: "Alice Wong"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "control characters", input: "Ali\x00ce\x07", want: "Alice"},
		{name: "preserve special characters", input: " Café & Spa™ ", want: "Café & Spa™"},
		{name: "non latin", input: " Budi Santoso ", want: "Budi Santoso"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("NormalizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestPipeline_Order(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}
	if got := p.Apply("x"); got != "xab" {
		t.Errorf("Apply() = %q, want %q", got, "xab")
	}
}

func TestSanitizeBookingRequest(t *testing.T) {
	req := model.NewBookingRequest("  Besar ", " 2024-06-20", 9, "  Alice   Wong ")
	SanitizeBookingRequest(req)

	if req.Room != "Besar" || req.Date != "2024-06-20" || req.BookedBy != "Alice Wong" || req.SlotHour() != 9 {
		t.Errorf("SanitizeBookingRequest() = %+v", req)
	}
}
