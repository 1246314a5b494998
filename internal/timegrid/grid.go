package timegrid

import (
	"fmt"
	"strconv"
	"strings"
)

// StepMinutes is the fixed slot granularity of the scheduler.
const StepMinutes = 15

// Grid is the ordered set of bookable time points for one day.
// Slots are zero-padded "HH:MM" strings, so lexical order equals time order.
type Grid struct {
	startMin int
	endMin   int
	slots    []string
}

// New builds a grid from an inclusive start/end clock range at 15-minute steps.
func New(start, end string) (*Grid, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return nil, fmt.Errorf("parse grid start: %w", err)
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return nil, fmt.Errorf("parse grid end: %w", err)
	}
	if endMin < startMin {
		return nil, fmt.Errorf("grid end %s before start %s", end, start)
	}

	g := &Grid{startMin: startMin, endMin: endMin}
	for m := startMin; m <= endMin; m += StepMinutes {
		g.slots = append(g.slots, FormatClock(m))
	}
	return g, nil
}

// MustNew is New for grids known valid at compile time.
func MustNew(start, end string) *Grid {
	g, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return g
}

// BookingGrid is the grid offered on the public self-service booking form.
func BookingGrid() *Grid { return MustNew("06:00", "20:45") }

// EditorGrid is the slightly wider grid used by the groomer-facing editors.
func EditorGrid() *Grid { return MustNew("06:00", "21:00") }

// Slots returns a copy of the full slot sequence.
func (g *Grid) Slots() []string {
	out := make([]string, len(g.slots))
	copy(out, g.slots)
	return out
}

// Len returns the number of slots in the grid.
func (g *Grid) Len() int { return len(g.slots) }

// IndexOf returns the position of slot in the grid, or -1 if it is not a
// grid point.
func (g *Grid) IndexOf(slot string) int {
	m, err := ParseClock(slot)
	if err != nil {
		return -1
	}
	if m < g.startMin || m > g.endMin || (m-g.startMin)%StepMinutes != 0 {
		return -1
	}
	return (m - g.startMin) / StepMinutes
}

// Slice returns up to blockCount contiguous slots starting at fromIdx.
// The result is shorter than blockCount when the run falls off the end of
// the grid; callers must compare lengths to detect truncation.
func (g *Grid) Slice(fromIdx, blockCount int) []string {
	if fromIdx < 0 || fromIdx >= len(g.slots) || blockCount <= 0 {
		return nil
	}
	to := fromIdx + blockCount
	if to > len(g.slots) {
		to = len(g.slots)
	}
	out := make([]string, to-fromIdx)
	copy(out, g.slots[fromIdx:to])
	return out
}

// Range returns the inclusive run of slots between two clock values,
// clamped to the grid. Returns nil when the range misses the grid entirely.
func (g *Grid) Range(start, end string) []string {
	startMin, err := ParseClock(start)
	if err != nil {
		return nil
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return nil
	}
	var out []string
	for i, m := 0, g.startMin; m <= g.endMin; i, m = i+1, m+StepMinutes {
		if m >= startMin && m <= endMin {
			out = append(out, g.slots[i])
		}
	}
	return out
}

// Blocks converts a duration in minutes to the number of 15-minute slots it
// occupies, rounding up.
func Blocks(durationMin int) int {
	if durationMin <= 0 {
		return 0
	}
	return (durationMin + StepMinutes - 1) / StepMinutes
}

// EndOfOccupancy returns the clock value durationMin minutes after start.
// It operates in minutes-since-midnight and is independent of any grid
// bounds, so display math near the end of day stays correct.
func EndOfOccupancy(start string, durationMin int) (string, error) {
	m, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	return FormatClock(m + durationMin), nil
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value: %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value out of range: %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock converts minutes since midnight to zero-padded "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
