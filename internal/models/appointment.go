package models

import (
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// Appointment sources.
const (
	SourceGroomer     = "groomer"
	SourceSelfService = "self_service"
)

// Appointment is one grooming visit. It occupies ceil(DurationMin/15)
// contiguous grid slots starting at Time on Date.
type Appointment struct {
	ID           int64     `json:"id"`
	PublicRef    string    `json:"public_ref"` // opaque reference shown to clients
	GroomerID    int64     `json:"groomer_id"`
	ClientID     int64     `json:"client_id"`
	PetID        int64     `json:"pet_id"`
	Date         string    `json:"date"` // "YYYY-MM-DD"
	Time         string    `json:"time"` // "HH:MM" start slot
	DurationMin  int       `json:"duration_min"`
	Services     []string  `json:"services"`
	Notes        string    `json:"notes,omitempty"`
	Source       string    `json:"source"`
	Confirmed    bool      `json:"confirmed"`
	NoShow       bool      `json:"no_show"`
	Paid         bool      `json:"paid"`
	AmountCents  int64     `json:"amount_cents"`
	Override     bool      `json:"override"` // created past a conflict after explicit confirmation
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EndTime returns the clock value where occupancy ends, or "" when the start
// time does not parse.
func (a Appointment) EndTime() string {
	end, err := timegrid.EndOfOccupancy(a.Time, a.DurationMin)
	if err != nil {
		return ""
	}
	return end
}

// Blocks returns the number of grid slots the appointment occupies.
func (a Appointment) Blocks() int {
	return timegrid.Blocks(a.DurationMin)
}
