package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MitchellNeaf/pawscheduler/internal/booking"
	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/export"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (s *Server) handleGroomerAvailability(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	date := r.URL.Query().Get("date")
	if _, err := timegrid.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	var excludeID int64
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		excludeID, _ = strconv.ParseInt(raw, 10, 64)
	}

	svc := s.bookingService(groomer.ID, s.editorGrid)
	day := svc.Availability(r.Context(), date, excludeID)

	writeJSON(w, http.StatusOK, map[string]any{
		"date":         date,
		"fully_closed": day.FullyClosed,
		"window":       day.Window,
		"unavailable":  day.Unavailable,
	})
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	date := r.URL.Query().Get("date")
	if _, err := timegrid.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	appts, err := s.db.ForGroomer(groomer.ID).ListAppointmentsByDate(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Msg("list appointments failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

type appointmentRequest struct {
	ClientID    int64    `json:"client_id"`
	PetID       int64    `json:"pet_id"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	DurationMin int      `json:"duration_min"`
	Services    []string `json:"services"`
	Notes       string   `json:"notes"`
	AmountCents int64    `json:"amount_cents"`
	Override    bool     `json:"override"`
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := s.bookingService(groomer.ID, s.editorGrid)
	appt, err := svc.Create(r.Context(), booking.CreateRequest{
		ClientID:    req.ClientID,
		PetID:       req.PetID,
		Date:        req.Date,
		Time:        req.Time,
		DurationMin: req.DurationMin,
		Services:    req.Services,
		Notes:       req.Notes,
		AmountCents: req.AmountCents,
		Override:    req.Override,
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	appt, err := s.db.ForGroomer(groomer.ID).GetAppointment(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := s.bookingService(groomer.ID, s.editorGrid)
	appt, err := svc.Update(r.Context(), booking.UpdateRequest{
		ID:          id,
		Date:        req.Date,
		Time:        req.Time,
		DurationMin: req.DurationMin,
		Services:    req.Services,
		Notes:       req.Notes,
		AmountCents: req.AmountCents,
		Override:    req.Override,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.bookingService(groomer.ID, s.editorGrid).Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRebookAppointment(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	appt, err := s.bookingService(groomer.ID, s.editorGrid).Rebook(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

type flagRequest struct {
	Flag  string `json:"flag"` // confirmed, no_show or paid
	Value bool   `json:"value"`
}

func (s *Server) handleSetFlag(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req flagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.bookingService(groomer.ID, s.editorGrid).SetFlag(r.Context(), id, req.Flag, req.Value); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportDay(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	date := r.URL.Query().Get("date")
	if _, err := timegrid.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	rows, err := s.db.ForGroomer(groomer.ID).ListDaySheet(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Msg("day sheet query failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer
	if err := export.DaySheet(&buf, date, rows); err != nil {
		s.logger.Error().Err(err).Msg("day sheet export failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="day-%s.xlsx"`, date))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	clients, err := s.db.ForGroomer(groomer.ID).ListClients(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list clients failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)

	var client models.Client
	if err := decodeJSON(r, &client); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if client.FirstName == "" || client.Phone == "" {
		writeError(w, http.StatusBadRequest, "first_name and phone are required")
		return
	}

	if err := s.db.ForGroomer(groomer.ID).CreateClient(r.Context(), &client); err != nil {
		s.logger.Error().Err(err).Msg("create client failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (s *Server) handleListPets(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	clientID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	pets, err := s.db.ForGroomer(groomer.ID).ListPetsByClient(r.Context(), clientID)
	if err != nil {
		s.logger.Error().Err(err).Msg("list pets failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, pets)
}

func (s *Server) handleCreatePet(w http.ResponseWriter, r *http.Request) {
	groomer := groomerFrom(r)
	clientID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var pet models.Pet
	if err := decodeJSON(r, &pet); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if pet.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	pet.ClientID = clientID

	if err := s.db.ForGroomer(groomer.ID).CreatePet(r.Context(), &pet); err != nil {
		s.logger.Error().Err(err).Msg("create pet failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, pet)
}

func (s *Server) handleBillingCheckout(w http.ResponseWriter, r *http.Request) {
	url, err := s.billing.CheckoutURL(groomerFrom(r))
	if err != nil {
		s.logger.Error().Err(err).Msg("checkout session failed")
		writeError(w, http.StatusBadGateway, "billing unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleBillingPortal(w http.ResponseWriter, r *http.Request) {
	url, err := s.billing.PortalURL(groomerFrom(r))
	if err != nil {
		s.logger.Error().Err(err).Msg("portal session failed")
		writeError(w, http.StatusBadGateway, "billing unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error().Err(err).Msg("store operation failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
