package models

import "time"

// WorkingHours is the weekly opening window for one weekday.
// Weekday is 0=Sunday..6=Saturday; at most one row per (groomer, weekday).
// A missing row means the groomer is closed that day.
type WorkingHours struct {
	ID        int64     `json:"id"`
	GroomerID int64     `json:"groomer_id"`
	Weekday   int       `json:"weekday"`
	Start     string    `json:"start"` // "HH:MM"
	End       string    `json:"end"`   // "HH:MM"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkingBreak is a recurring interval carved out of a weekday's working
// window, e.g. lunch. Zero or more per weekday.
type WorkingBreak struct {
	ID        int64     `json:"id"`
	GroomerID int64     `json:"groomer_id"`
	Weekday   int       `json:"weekday"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// VacationDay blocks a specific calendar date. With no start/end the whole
// day is closed; with both set only that sub-range is blocked. Several rows
// may exist for the same date and are unioned by the resolver.
type VacationDay struct {
	ID        int64     `json:"id"`
	GroomerID int64     `json:"groomer_id"`
	Date      string    `json:"date"` // "YYYY-MM-DD"
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullDay reports whether the row blocks the entire date.
func (v VacationDay) FullDay() bool {
	return v.StartTime == "" && v.EndTime == ""
}
