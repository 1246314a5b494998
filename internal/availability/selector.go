package availability

import "github.com/MitchellNeaf/pawscheduler/internal/timegrid"

// SlotOption is one selectable start time with its bookability flag.
// Groomer-facing editors show unbookable options (selectable behind an
// override confirmation); the public form filters them out.
type SlotOption struct {
	Time     string `json:"time"`
	Bookable bool   `json:"bookable"`
}

// FirstBookable returns the earliest window slot where a run of
// ceil(durationMin/15) slots fits entirely inside the window without
// touching an unavailable slot. A run truncated by the end of the window is
// never a valid placement.
func FirstBookable(day Day, durationMin int) (string, bool) {
	if day.FullyClosed || durationMin <= 0 {
		return "", false
	}
	blocks := timegrid.Blocks(durationMin)
	for i := range day.Window {
		if fits(day, i, blocks) {
			return day.Window[i], true
		}
	}
	return "", false
}

// Annotate tags every window slot as bookable or not for the given duration.
func Annotate(day Day, durationMin int) []SlotOption {
	if day.FullyClosed {
		return nil
	}
	blocks := timegrid.Blocks(durationMin)
	options := make([]SlotOption, 0, len(day.Window))
	for i, slot := range day.Window {
		bookable := durationMin > 0 && fits(day, i, blocks)
		options = append(options, SlotOption{Time: slot, Bookable: bookable})
	}
	return options
}

// BookableOnly returns just the bookable start times, for the self-service
// form which never offers conflicting slots.
func BookableOnly(day Day, durationMin int) []string {
	var out []string
	for _, opt := range Annotate(day, durationMin) {
		if opt.Bookable {
			out = append(out, opt.Time)
		}
	}
	return out
}

// CanPlace reports whether a booking of durationMin starting at slot fits
// the day: the full run stays inside the working window and touches no
// unavailable slot.
func CanPlace(day Day, slot string, durationMin int) bool {
	if day.FullyClosed || durationMin <= 0 {
		return false
	}
	for i, s := range day.Window {
		if s == slot {
			return fits(day, i, timegrid.Blocks(durationMin))
		}
	}
	return false
}

func fits(day Day, startIdx, blocks int) bool {
	if blocks <= 0 || startIdx+blocks > len(day.Window) {
		return false
	}
	for i := startIdx; i < startIdx+blocks; i++ {
		if day.Unavailable[day.Window[i]] {
			return false
		}
	}
	return true
}
