package availability

import (
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// DayInput carries everything the resolver needs for one groomer and one
// calendar date. All rows are expected to be pre-scoped to the groomer.
type DayInput struct {
	Date         string    // "YYYY-MM-DD"
	Now          time.Time // current moment, for same-day past blocking
	Hours        *models.WorkingHours
	Breaks       []models.WorkingBreak
	Vacations    []models.VacationDay
	Appointments []models.Appointment

	// ExcludeAppointmentID removes the appointment currently being edited
	// from the blocked set so it can keep (or shift) its own slots.
	ExcludeAppointmentID int64
}

// Day is the availability picture for one date.
type Day struct {
	// Window is the ordered run of grid slots inside working hours.
	Window []string
	// Unavailable holds every blocked slot. Window slots absent from it
	// are bookable.
	Unavailable map[string]bool
	// FullyClosed is set for full vacations and days with no working hours.
	FullyClosed bool
}

// Bookable reports whether a single slot is inside the window and unblocked.
func (d Day) Bookable(slot string) bool {
	if d.FullyClosed || d.Unavailable[slot] {
		return false
	}
	for _, s := range d.Window {
		if s == slot {
			return true
		}
	}
	return false
}

// Resolve computes the availability picture for one date. It is a pure
// function of its inputs and never fails: any missing prerequisite (bad
// date, no working-hours row, full vacation) degrades to a closed day.
func Resolve(grid *timegrid.Grid, in DayInput) Day {
	date, err := timegrid.ParseDate(in.Date)
	if err != nil {
		return closedDay(grid)
	}
	weekday := int(date.Weekday())

	for _, v := range in.Vacations {
		if v.Date == in.Date && v.FullDay() {
			return closedDay(grid)
		}
	}

	if in.Hours == nil || in.Hours.Start == "" || in.Hours.End == "" {
		return closedDay(grid)
	}

	window := grid.Range(in.Hours.Start, in.Hours.End)
	if len(window) == 0 {
		return closedDay(grid)
	}

	unavailable := make(map[string]bool)

	for _, br := range in.Breaks {
		if br.Weekday != weekday {
			continue
		}
		for _, slot := range grid.Range(br.Start, br.End) {
			unavailable[slot] = true
		}
	}

	for _, appt := range in.Appointments {
		if appt.Date != in.Date {
			continue
		}
		if in.ExcludeAppointmentID != 0 && appt.ID == in.ExcludeAppointmentID {
			continue
		}
		for _, slot := range occupiedSlots(appt) {
			unavailable[slot] = true
		}
	}

	for _, v := range in.Vacations {
		if v.Date != in.Date || v.FullDay() {
			continue
		}
		for _, slot := range grid.Range(v.StartTime, v.EndTime) {
			unavailable[slot] = true
		}
	}

	if timegrid.SameDay(date, in.Now) {
		nowMin := timegrid.MinutesOfDay(in.Now)
		for _, slot := range grid.Slots() {
			m, err := timegrid.ParseClock(slot)
			if err != nil {
				continue
			}
			if m <= nowMin {
				unavailable[slot] = true
			}
		}
	}

	return Day{Window: window, Unavailable: unavailable}
}

// occupiedSlots returns the slot run an appointment covers. Appointments
// with unparseable times are skipped, not treated as errors.
func occupiedSlots(appt models.Appointment) []string {
	startMin, err := timegrid.ParseClock(appt.Time)
	if err != nil {
		return nil
	}
	blocks := timegrid.Blocks(appt.DurationMin)
	slots := make([]string, 0, blocks)
	for i := 0; i < blocks; i++ {
		slots = append(slots, timegrid.FormatClock(startMin+i*timegrid.StepMinutes))
	}
	return slots
}

func closedDay(grid *timegrid.Grid) Day {
	unavailable := make(map[string]bool, grid.Len())
	for _, slot := range grid.Slots() {
		unavailable[slot] = true
	}
	return Day{Unavailable: unavailable, FullyClosed: true}
}
