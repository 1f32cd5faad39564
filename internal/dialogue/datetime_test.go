package dialogue

import (
	"errors"
	"testing"
	"time"
)

// Wednesday, 2 September 2026, 10:00 UTC.
var clock = time.Date(2026, time.September, 2, 10, 0, 0, 0, time.UTC)

func TestExtractDateTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"tomorrow with pm clock", "tomorrow at 3pm", time.Date(2026, 9, 3, 15, 0, 0, 0, time.UTC)},
		{"weekday ahead", "Friday 11am", time.Date(2026, 9, 4, 11, 0, 0, 0, time.UTC)},
		{"same weekday rolls a week", "Wednesday 9am", time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC)},
		{"in n weeks keeps clock", "in 2 weeks", time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC)},
		{"iso date with 24h clock", "2026-12-01 14:30", time.Date(2026, 12, 1, 14, 30, 0, 0, time.UTC)},
		{"bare clock means today", "3pm", time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC)},
		{"noon", "noon tomorrow", time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)},
		{"day month with clock", "25 dec at 4pm", time.Date(2026, 12, 25, 16, 0, 0, 0, time.UTC)},
		{"passed date rolls to next year", "1 jan 10am", time.Date(2027, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"midnight edge", "tomorrow 12am", time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)},
		{"full month name", "december 25 at 4pm", time.Date(2026, 12, 25, 16, 0, 0, 0, time.UTC)},
		// "maybe" must not read as the month May; the clock still means today.
		{"hedge word with clock", "maybe 3 pm", time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDateTime(tt.input, clock)
			if err != nil {
				t.Fatalf("ExtractDateTime(%q) error: %v", tt.input, err)
			}
			if got == nil {
				t.Fatalf("ExtractDateTime(%q) = nil, want %v", tt.input, tt.want)
			}
			if !got.At.Equal(tt.want) {
				t.Errorf("ExtractDateTime(%q) = %v, want %v", tt.input, got.At, tt.want)
			}
			if got.Pretty == "" {
				t.Errorf("ExtractDateTime(%q) has empty display value", tt.input)
			}
		})
	}
}

func TestExtractDateTimePast(t *testing.T) {
	for _, input := range []string{"yesterday 10:00", "today 9am", "2020-01-01 12:00"} {
		got, err := ExtractDateTime(input, clock)
		if !errors.Is(err, ErrPastDate) {
			t.Errorf("ExtractDateTime(%q) err = %v, want ErrPastDate", input, err)
		}
		if got != nil {
			t.Errorf("ExtractDateTime(%q) = %v, want nil on past date", input, got)
		}
	}
}

func TestExtractDateTimeUnparseable(t *testing.T) {
	for _, input := range []string{"", "whenever suits", "soonish please", "maybe 11 works", "maybe"} {
		got, err := ExtractDateTime(input, clock)
		if got != nil || err != nil {
			t.Errorf("ExtractDateTime(%q) = (%v, %v), want (nil, nil)", input, got, err)
		}
	}
}

func TestDisplayFormat(t *testing.T) {
	got, err := ExtractDateTime("tomorrow at 1pm", clock)
	if err != nil || got == nil {
		t.Fatalf("ExtractDateTime failed: %v %v", got, err)
	}
	if got.Pretty != "Thursday 03 Sep, 01:00 PM" {
		t.Errorf("display = %q, want %q", got.Pretty, "Thursday 03 Sep, 01:00 PM")
	}
}
