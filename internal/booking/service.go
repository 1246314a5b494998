package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MitchellNeaf/pawscheduler/internal/availability"
	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/metrics"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// RebookOffsetDays is the fixed gap used when cloning an appointment forward.
const RebookOffsetDays = 28

var (
	// ErrClientNotFound covers both zero and ambiguous identity matches;
	// the public form never learns which field failed.
	ErrClientNotFound = errors.New("client not found")
	// ErrPetMismatch means the pet does not belong to the resolved client.
	ErrPetMismatch = errors.New("pet does not belong to client")
	// ErrSlotUnavailable means the requested run conflicts; groomer-facing
	// callers may retry with an explicit override.
	ErrSlotUnavailable = errors.New("slot not available")
	// ErrUnknownDuration means no duration rule matched and none was given.
	ErrUnknownDuration = errors.New("duration required")
	// ErrValidation covers malformed dates, times and missing fields.
	ErrValidation = errors.New("invalid booking request")
)

// Store is the tenant-scoped persistence the service needs.
// *database.GroomerStore satisfies it.
type Store interface {
	FindClientForBooking(ctx context.Context, namePrefix, phoneLast4 string) (*models.Client, error)
	GetPet(ctx context.Context, id int64) (*models.Pet, error)
	GetWorkingHours(ctx context.Context, weekday int) (*models.WorkingHours, error)
	ListBreaks(ctx context.Context, weekday int) ([]models.WorkingBreak, error)
	ListVacations(ctx context.Context, date string) ([]models.VacationDay, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	UpdateAppointment(ctx context.Context, a *models.Appointment) error
	DeleteAppointment(ctx context.Context, id int64) error
	SetFlag(ctx context.Context, id int64, flag string, value bool) error
}

// Service is the appointment write path for one groomer.
type Service struct {
	store  Store
	grid   *timegrid.Grid
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a booking service over a tenant-scoped store.
func NewService(store Store, grid *timegrid.Grid, logger zerolog.Logger) *Service {
	return &Service{store: store, grid: grid, logger: logger, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Availability resolves the day picture for a date. Store failures degrade
// to a closed day: the caller renders "not working this day", never an error.
func (s *Service) Availability(ctx context.Context, date string, excludeAppointmentID int64) availability.Day {
	in := availability.DayInput{
		Date:                 date,
		Now:                  s.now(),
		ExcludeAppointmentID: excludeAppointmentID,
	}

	weekday, err := timegrid.Weekday(date)
	if err != nil {
		return availability.Resolve(s.grid, in)
	}

	if in.Hours, err = s.store.GetWorkingHours(ctx, weekday); err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("working hours query failed")
		return availability.Resolve(s.grid, availability.DayInput{Date: date, Now: s.now()})
	}
	if in.Breaks, err = s.store.ListBreaks(ctx, weekday); err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("breaks query failed")
		in.Hours = nil
	}
	if in.Vacations, err = s.store.ListVacations(ctx, date); err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("vacations query failed")
		in.Hours = nil
	}
	if in.Appointments, err = s.store.ListAppointmentsByDate(ctx, date); err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("appointments query failed")
		in.Hours = nil
	}

	return availability.Resolve(s.grid, in)
}

// SelfServiceRequest is a booking submitted through the public page.
type SelfServiceRequest struct {
	FirstName   string
	PhoneLast4  string
	PetID       int64
	Date        string
	Time        string
	DurationMin int // 0 means infer from services
	Services    []string
	Notes       string
}

// SelfServiceBook validates and persists a client's own booking.
func (s *Service) SelfServiceBook(ctx context.Context, req SelfServiceRequest) (*models.Appointment, error) {
	if req.Date == "" || req.Time == "" || req.PetID == 0 {
		return nil, ErrValidation
	}
	if _, err := timegrid.ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	client, err := s.store.FindClientForBooking(ctx, req.FirstName, req.PhoneLast4)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("resolve client: %w", err)
	}

	pet, err := s.store.GetPet(ctx, req.PetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrPetMismatch
		}
		return nil, fmt.Errorf("resolve pet: %w", err)
	}
	if pet.ClientID != client.ID {
		return nil, ErrPetMismatch
	}

	duration := req.DurationMin
	if duration <= 0 {
		inferred, ok := availability.EstimateDuration(req.Services)
		if !ok {
			return nil, ErrUnknownDuration
		}
		duration = inferred
	}

	day := s.Availability(ctx, req.Date, 0)
	if !availability.CanPlace(day, req.Time, duration) {
		return nil, ErrSlotUnavailable
	}

	appt := &models.Appointment{
		PublicRef:   uuid.NewString(),
		ClientID:    client.ID,
		PetID:       pet.ID,
		Date:        req.Date,
		Time:        req.Time,
		DurationMin: duration,
		Services:    req.Services,
		Notes:       req.Notes,
		Source:      models.SourceSelfService,
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	metrics.IncBookingCreated(models.SourceSelfService)
	s.logger.Info().Int64("appointment_id", appt.ID).Str("date", appt.Date).
		Str("time", appt.Time).Msg("self-service booking created")
	return appt, nil
}

// CreateRequest is a groomer-entered booking.
type CreateRequest struct {
	ClientID    int64
	PetID       int64
	Date        string
	Time        string
	DurationMin int
	Services    []string
	Notes       string
	AmountCents int64
	// Override confirms a deliberate double-booking; the conflict check
	// and the slot uniqueness constraint are both bypassed.
	Override bool
}

// Create persists a groomer-entered appointment.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Appointment, error) {
	if req.Date == "" || req.Time == "" || req.PetID == 0 || req.ClientID == 0 {
		return nil, ErrValidation
	}
	if _, err := timegrid.ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	duration := req.DurationMin
	if duration <= 0 {
		inferred, ok := availability.EstimateDuration(req.Services)
		if !ok {
			return nil, ErrUnknownDuration
		}
		duration = inferred
	}

	if !req.Override {
		day := s.Availability(ctx, req.Date, 0)
		if !availability.CanPlace(day, req.Time, duration) {
			return nil, ErrSlotUnavailable
		}
	}

	appt := &models.Appointment{
		PublicRef:   uuid.NewString(),
		ClientID:    req.ClientID,
		PetID:       req.PetID,
		Date:        req.Date,
		Time:        req.Time,
		DurationMin: duration,
		Services:    req.Services,
		Notes:       req.Notes,
		AmountCents: req.AmountCents,
		Source:      models.SourceGroomer,
		Override:    req.Override,
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	metrics.IncBookingCreated(models.SourceGroomer)
	if req.Override {
		metrics.IncOverride()
	}
	return appt, nil
}

// UpdateRequest edits an existing appointment's scheduling fields.
type UpdateRequest struct {
	ID          int64
	Date        string
	Time        string
	DurationMin int
	Services    []string
	Notes       string
	AmountCents int64
	Override    bool
}

// Update rewrites an appointment, excluding its own slots from the
// conflict check.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*models.Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Date == "" || req.Time == "" || req.DurationMin <= 0 {
		return nil, ErrValidation
	}
	if _, err := timegrid.ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if !req.Override {
		day := s.Availability(ctx, req.Date, appt.ID)
		if !availability.CanPlace(day, req.Time, req.DurationMin) {
			return nil, ErrSlotUnavailable
		}
	}

	appt.Date = req.Date
	appt.Time = req.Time
	appt.DurationMin = req.DurationMin
	appt.Services = req.Services
	appt.Notes = req.Notes
	appt.AmountCents = req.AmountCents
	appt.Override = req.Override

	if err := s.store.UpdateAppointment(ctx, appt); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	if req.Override {
		metrics.IncOverride()
	}
	return appt, nil
}

// Rebook clones an appointment to the same weekday slot 28 days later.
// Time, duration and services carry over; confirmed/no_show/paid reset.
func (s *Service) Rebook(ctx context.Context, id int64) (*models.Appointment, error) {
	src, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := timegrid.ParseDate(src.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	clone := &models.Appointment{
		PublicRef:   uuid.NewString(),
		ClientID:    src.ClientID,
		PetID:       src.PetID,
		Date:        timegrid.FormatDate(date.AddDate(0, 0, RebookOffsetDays)),
		Time:        src.Time,
		DurationMin: src.DurationMin,
		Services:    src.Services,
		Notes:       src.Notes,
		AmountCents: src.AmountCents,
		Source:      models.SourceGroomer,
	}
	if err := s.store.CreateAppointment(ctx, clone); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("rebook appointment: %w", err)
	}

	metrics.IncBookingCreated(models.SourceGroomer)
	return clone, nil
}

// SetFlag toggles one of the independent appointment flags.
func (s *Service) SetFlag(ctx context.Context, id int64, flag string, value bool) error {
	return s.store.SetFlag(ctx, id, flag, value)
}

// Delete removes an appointment.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteAppointment(ctx, id)
}
