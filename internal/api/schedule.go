package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MitchellNeaf/pawscheduler/internal/cache"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// validInterval checks an "HH:MM" pair against the editor grid: both ends
// must parse and the interval must not be inverted.
func (s *Server) validInterval(start, end string) bool {
	from, err := timegrid.ParseClock(start)
	if err != nil {
		return false
	}
	to, err := timegrid.ParseClock(end)
	if err != nil {
		return false
	}
	return from < to
}

func weekdayParam(r *http.Request) (int, bool) {
	wd, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil || wd < 0 || wd > 6 {
		return 0, false
	}
	return wd, true
}

func (s *Server) handleListHours(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	hours, err := s.db.ForGroomer(groomer.ID).ListWorkingHours(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

type hoursRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) handleUpsertHours(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	weekday, ok := weekdayParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid weekday")
		return
	}

	var req hoursRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.validInterval(req.Start, req.End) {
		writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	if err := s.db.ForGroomer(groomer.ID).UpsertWorkingHours(r.Context(), weekday, req.Start, req.End); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), cache.PublicPageKey(groomer.Slug))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHours(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	weekday, ok := weekdayParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid weekday")
		return
	}

	if err := s.db.ForGroomer(groomer.ID).DeleteWorkingHours(r.Context(), weekday); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), cache.PublicPageKey(groomer.Slug))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBreaks(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	breaks, err := s.db.ForGroomer(groomer.ID).ListAllBreaks(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breaks)
}

type breakRequest struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func (s *Server) handleCreateBreak(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	var req breakRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		writeError(w, http.StatusBadRequest, "invalid weekday")
		return
	}
	if !s.validInterval(req.Start, req.End) {
		writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	b := models.WorkingBreak{Weekday: req.Weekday, Start: req.Start, End: req.End}
	if err := s.db.ForGroomer(groomer.ID).CreateBreak(r.Context(), &b); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleDeleteBreak(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.db.ForGroomer(groomer.ID).DeleteBreak(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListVacations(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if _, err := timegrid.ParseDate(from); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	if _, err := timegrid.ParseDate(to); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	vacations, err := s.db.ForGroomer(groomer.ID).ListVacationsInRange(r.Context(), from, to)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vacations)
}

type vacationRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (s *Server) handleCreateVacation(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	var req vacationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := timegrid.ParseDate(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	// Either both bounds or neither; a partial pair is ambiguous.
	if (req.StartTime == "") != (req.EndTime == "") {
		writeError(w, http.StatusBadRequest, "start_time and end_time must be set together")
		return
	}
	if req.StartTime != "" && !s.validInterval(req.StartTime, req.EndTime) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	v := models.VacationDay{Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := s.db.ForGroomer(groomer.ID).CreateVacation(r.Context(), &v); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), cache.PublicPageKey(groomer.Slug))
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleDeleteVacation(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.db.ForGroomer(groomer.ID).DeleteVacation(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), cache.PublicPageKey(groomer.Slug))
	w.WriteHeader(http.StatusNoContent)
}
