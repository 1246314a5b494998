package timegrid

import (
	"testing"
	"time"
)

func TestParseDateIsLocal(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Location() != time.Local {
		t.Error("date must be constructed in the local location")
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Error("date must be at local midnight")
	}
	// 2024-01-01 is a Monday everywhere when parsed as a local y/m/d triple.
	if d.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %v", d.Weekday())
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "2024-13-01", "2024-01-32", "01/02/2024", "2024-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q): expected error", bad)
		}
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		date     string
		expected int
	}{
		{"2024-01-07", 0}, // Sunday
		{"2024-01-01", 1}, // Monday
		{"2024-01-06", 6}, // Saturday
	}

	for _, tt := range tests {
		got, err := Weekday(tt.date)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.expected {
			t.Errorf("Weekday(%s): expected %d, got %d", tt.date, tt.expected, got)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 10, 23, 59, 0, 0, time.Local)
	b := time.Date(2024, 3, 10, 0, 1, 0, 0, time.Local)
	c := time.Date(2024, 3, 11, 0, 1, 0, 0, time.Local)

	if !SameDay(a, b) {
		t.Error("expected same day")
	}
	if SameDay(a, c) {
		t.Error("expected different days")
	}
}

func TestMinutesOfDay(t *testing.T) {
	tm := time.Date(2024, 3, 10, 14, 30, 45, 0, time.Local)
	if got := MinutesOfDay(tm); got != 870 {
		t.Errorf("expected 870, got %d", got)
	}
}
