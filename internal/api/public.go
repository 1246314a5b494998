package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MitchellNeaf/pawscheduler/internal/availability"
	"github.com/MitchellNeaf/pawscheduler/internal/booking"
	"github.com/MitchellNeaf/pawscheduler/internal/cache"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// publicPage is the cacheable shape of a groomer's booking page: display
// info plus the working weekdays and upcoming full vacation dates the
// calendar widget needs for shading.
type publicPage struct {
	Slug            string   `json:"slug"`
	BusinessName    string   `json:"business_name"`
	DisplayName     string   `json:"display_name"`
	Phone           string   `json:"phone"`
	WorkingWeekdays []int    `json:"working_weekdays"`
	VacationDates   []string `json:"vacation_dates"`
}

// vacationLookaheadDays bounds the calendar-shading window.
const vacationLookaheadDays = 60

func (s *Server) handlePublicPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var page publicPage
	if s.cache.Get(r.Context(), cache.PublicPageKey(slug), &page) {
		writeJSON(w, http.StatusOK, page)
		return
	}

	groomer, err := s.db.GetGroomerBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	page = publicPage{
		Slug:            groomer.Slug,
		BusinessName:    groomer.BusinessName,
		DisplayName:     groomer.DisplayName,
		Phone:           groomer.Phone,
		WorkingWeekdays: []int{},
		VacationDates:   []string{},
	}

	store := s.db.ForGroomer(groomer.ID)
	if hours, err := store.ListWorkingHours(r.Context()); err == nil {
		for _, h := range hours {
			page.WorkingWeekdays = append(page.WorkingWeekdays, h.Weekday)
		}
	}
	now := time.Now()
	from := timegrid.FormatDate(now)
	to := timegrid.FormatDate(now.AddDate(0, 0, vacationLookaheadDays))
	if vacations, err := store.ListVacationsInRange(r.Context(), from, to); err == nil {
		seen := make(map[string]bool)
		for _, v := range vacations {
			if v.FullDay() && !seen[v.Date] {
				seen[v.Date] = true
				page.VacationDates = append(page.VacationDates, v.Date)
			}
		}
	}

	s.cache.Set(r.Context(), cache.PublicPageKey(slug), page)
	writeJSON(w, http.StatusOK, page)
}

type availabilityResponse struct {
	Date        string                    `json:"date"`
	FullyClosed bool                      `json:"fully_closed"`
	DurationMin int                       `json:"duration_min"`
	Slots       []availability.SlotOption `json:"slots"`
	// Suggested is the earliest bookable start, the form's default when the
	// client has not picked a time.
	Suggested string `json:"suggested,omitempty"`
}

func (s *Server) handlePublicAvailability(w http.ResponseWriter, r *http.Request) {
	groomer, err := s.db.GetGroomerBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	date := r.URL.Query().Get("date")
	if _, err := timegrid.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	duration := durationFromQuery(r)
	svc := s.bookingService(groomer.ID, s.bookingGrid)
	day := svc.Availability(r.Context(), date, 0)
	suggested, _ := availability.FirstBookable(day, duration)

	writeJSON(w, http.StatusOK, availabilityResponse{
		Date:        date,
		FullyClosed: day.FullyClosed,
		DurationMin: duration,
		Slots:       availability.Annotate(day, duration),
		Suggested:   suggested,
	})
}

// durationFromQuery resolves the requested run length: an explicit
// duration wins, then inference from services, then a single slot.
func durationFromQuery(r *http.Request) int {
	if d, err := strconv.Atoi(r.URL.Query().Get("duration")); err == nil && d > 0 {
		return d
	}
	if raw := r.URL.Query().Get("services"); raw != "" {
		if d, ok := availability.EstimateDuration(strings.Split(raw, ",")); ok {
			return d
		}
	}
	return timegrid.StepMinutes
}

type publicBookRequest struct {
	FirstName  string   `json:"first_name"`
	PhoneLast4 string   `json:"phone_last4"`
	PetID      int64    `json:"pet_id"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Services   []string `json:"services"`
	Notes      string   `json:"notes"`
}

func (s *Server) handlePublicBook(w http.ResponseWriter, r *http.Request) {
	groomer, err := s.db.GetGroomerBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req publicBookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := s.bookingService(groomer.ID, s.bookingGrid)
	appt, err := svc.SelfServiceBook(r.Context(), booking.SelfServiceRequest{
		FirstName:  req.FirstName,
		PhoneLast4: req.PhoneLast4,
		PetID:      req.PetID,
		Date:       req.Date,
		Time:       req.Time,
		Services:   req.Services,
		Notes:      req.Notes,
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	s.cache.Invalidate(r.Context(), cache.AvailabilityKey(groomer.Slug, appt.Date))
	s.alertNewBooking(r, groomer, appt, req.FirstName)

	writeJSON(w, http.StatusCreated, map[string]any{
		"public_ref":   appt.PublicRef,
		"date":         appt.Date,
		"time":         appt.Time,
		"duration_min": appt.DurationMin,
	})
}

// alertNewBooking pushes the Telegram notification. Best effort only.
func (s *Server) alertNewBooking(r *http.Request, groomer *models.Groomer, appt *models.Appointment, clientName string) {
	if s.alerter == nil {
		return
	}
	petName := ""
	if pet, err := s.db.ForGroomer(groomer.ID).GetPet(r.Context(), appt.PetID); err == nil {
		petName = pet.Name
	}
	s.alerter.NewBooking(groomer, appt, clientName, petName)
}

// writeBookingError maps write-path errors to HTTP statuses. Identity
// failures stay generic: the public form must not leak which field failed.
func (s *Server) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrClientNotFound):
		writeError(w, http.StatusNotFound, "no matching client")
	case errors.Is(err, booking.ErrPetMismatch):
		writeError(w, http.StatusUnprocessableEntity, "unknown pet")
	case errors.Is(err, booking.ErrUnknownDuration):
		writeError(w, http.StatusUnprocessableEntity, "duration required")
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot not available")
	case errors.Is(err, booking.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid booking request")
	default:
		s.logger.Error().Err(err).Msg("booking request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
