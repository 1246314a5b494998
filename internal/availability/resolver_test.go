package availability

import (
	"reflect"
	"testing"
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// 2024-01-01 is a Monday (weekday 1).
const monday = "2024-01-01"

func mondayHours(start, end string) *models.WorkingHours {
	return &models.WorkingHours{GroomerID: 1, Weekday: 1, Start: start, End: end}
}

// farFromMonday keeps past-time blocking out of tests that don't exercise it.
var farFromMonday = time.Date(2020, 1, 1, 12, 0, 0, 0, time.Local)

func TestResolveClosedWithoutWorkingHours(t *testing.T) {
	grid := timegrid.EditorGrid()
	day := Resolve(grid, DayInput{Date: monday, Now: farFromMonday})

	if !day.FullyClosed {
		t.Error("expected fully closed day")
	}
	if len(day.Window) != 0 {
		t.Errorf("expected empty window, got %d slots", len(day.Window))
	}
	if len(day.Unavailable) != grid.Len() {
		t.Errorf("expected entire grid blocked, got %d of %d", len(day.Unavailable), grid.Len())
	}
}

func TestResolveFullVacationBeatsWorkingHours(t *testing.T) {
	grid := timegrid.EditorGrid()
	day := Resolve(grid, DayInput{
		Date:      monday,
		Now:       farFromMonday,
		Hours:     mondayHours("09:00", "17:00"),
		Vacations: []models.VacationDay{{GroomerID: 1, Date: monday}},
	})

	if !day.FullyClosed {
		t.Error("full vacation must close the day regardless of working hours")
	}
}

func TestResolvePartialVacationKeepsDayOpen(t *testing.T) {
	grid := timegrid.EditorGrid()
	day := Resolve(grid, DayInput{
		Date:  monday,
		Now:   farFromMonday,
		Hours: mondayHours("09:00", "17:00"),
		Vacations: []models.VacationDay{
			{GroomerID: 1, Date: monday, StartTime: "13:00", EndTime: "15:00"},
		},
	})

	if day.FullyClosed {
		t.Fatal("partial vacation must not close the day")
	}
	if day.Window[0] != "09:00" || day.Window[len(day.Window)-1] != "17:00" {
		t.Errorf("unexpected window bounds: %s..%s", day.Window[0], day.Window[len(day.Window)-1])
	}
	for _, slot := range []string{"13:00", "13:45", "15:00"} {
		if !day.Unavailable[slot] {
			t.Errorf("slot %s should be blocked by partial vacation", slot)
		}
	}
	if day.Unavailable["12:45"] || day.Unavailable["15:15"] {
		t.Error("slots outside the vacation range must stay free")
	}
}

func TestResolveBlocksBreaksAndAppointments(t *testing.T) {
	grid := timegrid.EditorGrid()
	day := Resolve(grid, DayInput{
		Date:  monday,
		Now:   farFromMonday,
		Hours: mondayHours("09:00", "17:00"),
		Breaks: []models.WorkingBreak{
			{GroomerID: 1, Weekday: 1, Start: "12:00", End: "12:30"},
			{GroomerID: 1, Weekday: 3, Start: "09:00", End: "17:00"}, // other weekday, ignored
		},
		Appointments: []models.Appointment{
			{ID: 7, GroomerID: 1, Date: monday, Time: "10:00", DurationMin: 30},
			{ID: 8, GroomerID: 1, Date: "2024-01-02", Time: "10:00", DurationMin: 30}, // other date
		},
	})

	for _, slot := range []string{"12:00", "12:15", "12:30", "10:00", "10:15"} {
		if !day.Unavailable[slot] {
			t.Errorf("slot %s should be blocked", slot)
		}
	}
	for _, slot := range []string{"09:00", "10:30", "11:45", "12:45"} {
		if day.Unavailable[slot] {
			t.Errorf("slot %s should be free", slot)
		}
	}
}

func TestResolveExcludesEditedAppointment(t *testing.T) {
	grid := timegrid.EditorGrid()
	in := DayInput{
		Date:  monday,
		Now:   farFromMonday,
		Hours: mondayHours("09:00", "17:00"),
		Appointments: []models.Appointment{
			{ID: 42, GroomerID: 1, Date: monday, Time: "10:00", DurationMin: 60},
		},
	}

	blocked := Resolve(grid, in)
	if !blocked.Unavailable["10:45"] {
		t.Error("appointment slots should be blocked when not editing")
	}

	in.ExcludeAppointmentID = 42
	editing := Resolve(grid, in)
	if editing.Unavailable["10:00"] || editing.Unavailable["10:45"] {
		t.Error("edited appointment must not block its own slots")
	}
}

func TestResolveSkipsUnparseableAppointmentTimes(t *testing.T) {
	grid := timegrid.EditorGrid()
	day := Resolve(grid, DayInput{
		Date:  monday,
		Now:   farFromMonday,
		Hours: mondayHours("09:00", "17:00"),
		Appointments: []models.Appointment{
			{ID: 1, GroomerID: 1, Date: monday, Time: "whenever", DurationMin: 30},
		},
	})

	if day.FullyClosed {
		t.Fatal("unparseable time must not abort the computation")
	}
	if len(day.Unavailable) != 0 {
		t.Errorf("expected no blocked slots, got %v", day.Unavailable)
	}
}

func TestResolveBlocksElapsedSlotsToday(t *testing.T) {
	grid := timegrid.EditorGrid()
	now := time.Date(2024, 1, 1, 11, 5, 0, 0, time.Local) // 11:05 on the booking day
	day := Resolve(grid, DayInput{
		Date:  monday,
		Now:   now,
		Hours: mondayHours("09:00", "17:00"),
	})

	// Slots at or before the current moment are gone; later slots remain.
	for _, slot := range []string{"09:00", "10:45", "11:00"} {
		if !day.Unavailable[slot] {
			t.Errorf("elapsed slot %s should be blocked", slot)
		}
	}
	if day.Unavailable["11:15"] {
		t.Error("future slot 11:15 should stay free")
	}
}

func TestResolveIsPure(t *testing.T) {
	grid := timegrid.EditorGrid()
	in := DayInput{
		Date:   monday,
		Now:    farFromMonday,
		Hours:  mondayHours("09:00", "17:00"),
		Breaks: []models.WorkingBreak{{GroomerID: 1, Weekday: 1, Start: "12:00", End: "12:30"}},
	}

	first := Resolve(grid, in)
	second := Resolve(grid, in)
	if !reflect.DeepEqual(first, second) {
		t.Error("resolving the same inputs twice must yield identical results")
	}
}

func TestOccupiedSlots(t *testing.T) {
	tests := []struct {
		name     string
		time     string
		duration int
		expected []string
	}{
		{"30 minutes", "10:00", 30, []string{"10:00", "10:15"}},
		{"45 minutes", "09:00", 45, []string{"09:00", "09:15", "09:30"}},
		{"rounds up", "09:00", 40, []string{"09:00", "09:15", "09:30"}},
		{"bad time", "later", 30, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := occupiedSlots(models.Appointment{Time: tt.time, DurationMin: tt.duration})
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
