package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindClientForBooking(ctx context.Context, namePrefix, phoneLast4 string) (*models.Client, error) {
	args := m.Called(ctx, namePrefix, phoneLast4)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockStore) GetPet(ctx context.Context, id int64) (*models.Pet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *mockStore) GetWorkingHours(ctx context.Context, weekday int) (*models.WorkingHours, error) {
	args := m.Called(ctx, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkingHours), args.Error(1)
}

func (m *mockStore) ListBreaks(ctx context.Context, weekday int) ([]models.WorkingBreak, error) {
	args := m.Called(ctx, weekday)
	return args.Get(0).([]models.WorkingBreak), args.Error(1)
}

func (m *mockStore) ListVacations(ctx context.Context, date string) ([]models.VacationDay, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]models.VacationDay), args.Error(1)
}

func (m *mockStore) ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *mockStore) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *mockStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockStore) UpdateAppointment(ctx context.Context, a *models.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockStore) DeleteAppointment(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) SetFlag(ctx context.Context, id int64, flag string, value bool) error {
	return m.Called(ctx, id, flag, value).Error(0)
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fixedClock keeps same-day past blocking out of the way.
func fixedClock() time.Time {
	return time.Date(2020, 6, 1, 8, 0, 0, 0, time.Local)
}

// openMonday wires the store mocks for an open 09:00-17:00 Monday
// (2024-01-01) with no breaks, vacations or appointments.
func openMonday(store *mockStore, appts []models.Appointment) {
	store.On("GetWorkingHours", mock.Anything, 1).
		Return(&models.WorkingHours{GroomerID: 1, Weekday: 1, Start: "09:00", End: "17:00"}, nil)
	store.On("ListBreaks", mock.Anything, 1).Return([]models.WorkingBreak{}, nil)
	store.On("ListVacations", mock.Anything, "2024-01-01").Return([]models.VacationDay{}, nil)
	store.On("ListAppointmentsByDate", mock.Anything, "2024-01-01").Return(appts, nil)
}

func TestSelfServiceBookHappyPath(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.BookingGrid(), testLogger()).WithClock(fixedClock)

	client := &models.Client{ID: 5, GroomerID: 1, FirstName: "Ann", Phone: "555-1234"}
	pet := &models.Pet{ID: 9, GroomerID: 1, ClientID: 5, Name: "Rex"}

	store.On("FindClientForBooking", mock.Anything, "ann", "1234").Return(client, nil)
	store.On("GetPet", mock.Anything, int64(9)).Return(pet, nil)
	openMonday(store, []models.Appointment{})
	store.On("CreateAppointment", mock.Anything, mock.AnythingOfType("*models.Appointment")).Return(nil)

	appt, err := svc.SelfServiceBook(context.Background(), SelfServiceRequest{
		FirstName:  "ann",
		PhoneLast4: "1234",
		PetID:      9,
		Date:       "2024-01-01",
		Time:       "09:00",
		Services:   []string{"Wash", "Cut"},
	})

	require.NoError(t, err)
	assert.Equal(t, 45, appt.DurationMin, "duration inferred from Wash+Cut")
	assert.Equal(t, models.SourceSelfService, appt.Source)
	assert.False(t, appt.Confirmed)
	assert.False(t, appt.NoShow)
	assert.False(t, appt.Paid)
	assert.NotEmpty(t, appt.PublicRef)
	store.AssertExpectations(t)
}

func TestSelfServiceBookRejectsUnknownClient(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.BookingGrid(), testLogger()).WithClock(fixedClock)

	store.On("FindClientForBooking", mock.Anything, "bob", "9999").
		Return(nil, database.ErrNotFound)

	_, err := svc.SelfServiceBook(context.Background(), SelfServiceRequest{
		FirstName:  "bob",
		PhoneLast4: "9999",
		PetID:      1,
		Date:       "2024-01-01",
		Time:       "09:00",
		Services:   []string{"Wash"},
	})

	assert.ErrorIs(t, err, ErrClientNotFound)
	store.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
}

func TestSelfServiceBookRejectsForeignPet(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.BookingGrid(), testLogger()).WithClock(fixedClock)

	client := &models.Client{ID: 5, GroomerID: 1, FirstName: "Ann", Phone: "555-1234"}
	otherPet := &models.Pet{ID: 9, GroomerID: 1, ClientID: 77, Name: "Rex"}

	store.On("FindClientForBooking", mock.Anything, "ann", "1234").Return(client, nil)
	store.On("GetPet", mock.Anything, int64(9)).Return(otherPet, nil)

	_, err := svc.SelfServiceBook(context.Background(), SelfServiceRequest{
		FirstName:  "ann",
		PhoneLast4: "1234",
		PetID:      9,
		Date:       "2024-01-01",
		Time:       "09:00",
		Services:   []string{"Wash"},
	})

	assert.ErrorIs(t, err, ErrPetMismatch)
}

func TestSelfServiceBookRequiresKnownDuration(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.BookingGrid(), testLogger()).WithClock(fixedClock)

	client := &models.Client{ID: 5, GroomerID: 1, FirstName: "Ann", Phone: "555-1234"}
	pet := &models.Pet{ID: 9, GroomerID: 1, ClientID: 5, Name: "Rex"}

	store.On("FindClientForBooking", mock.Anything, "ann", "1234").Return(client, nil)
	store.On("GetPet", mock.Anything, int64(9)).Return(pet, nil)

	_, err := svc.SelfServiceBook(context.Background(), SelfServiceRequest{
		FirstName:  "ann",
		PhoneLast4: "1234",
		PetID:      9,
		Date:       "2024-01-01",
		Time:       "09:00",
		Services:   []string{"Perfume"}, // no rule matches a lone unmatched tag
	})

	assert.ErrorIs(t, err, ErrUnknownDuration)
}

func TestSelfServiceBookRejectsConflictingSlot(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.BookingGrid(), testLogger()).WithClock(fixedClock)

	client := &models.Client{ID: 5, GroomerID: 1, FirstName: "Ann", Phone: "555-1234"}
	pet := &models.Pet{ID: 9, GroomerID: 1, ClientID: 5, Name: "Rex"}

	store.On("FindClientForBooking", mock.Anything, "ann", "1234").Return(client, nil)
	store.On("GetPet", mock.Anything, int64(9)).Return(pet, nil)
	openMonday(store, []models.Appointment{
		{ID: 3, GroomerID: 1, Date: "2024-01-01", Time: "09:00", DurationMin: 30},
	})

	_, err := svc.SelfServiceBook(context.Background(), SelfServiceRequest{
		FirstName:  "ann",
		PhoneLast4: "1234",
		PetID:      9,
		Date:       "2024-01-01",
		Time:       "09:15", // lands inside the existing 09:00-09:30 booking
		Services:   []string{"Wash"},
	})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	store.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
}

func TestCreateConflictNeedsOverride(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.EditorGrid(), testLogger()).WithClock(fixedClock)

	existing := []models.Appointment{
		{ID: 3, GroomerID: 1, Date: "2024-01-01", Time: "10:00", DurationMin: 30},
	}
	openMonday(store, existing)

	req := CreateRequest{
		ClientID:    5,
		PetID:       9,
		Date:        "2024-01-01",
		Time:        "10:00",
		DurationMin: 30,
	}

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// With the override confirmed, the conflict check is bypassed.
	store.On("CreateAppointment", mock.Anything, mock.AnythingOfType("*models.Appointment")).Return(nil)
	req.Override = true
	appt, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, appt.Override)
}

func TestCreateMapsConstraintRace(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.EditorGrid(), testLogger()).WithClock(fixedClock)

	openMonday(store, []models.Appointment{})
	// A concurrent writer grabbed the slot between the availability read
	// and the insert; the unique index reports it.
	store.On("CreateAppointment", mock.Anything, mock.AnythingOfType("*models.Appointment")).
		Return(database.ErrSlotTaken)

	_, err := svc.Create(context.Background(), CreateRequest{
		ClientID:    5,
		PetID:       9,
		Date:        "2024-01-01",
		Time:        "09:00",
		DurationMin: 30,
	})

	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestUpdateExcludesOwnSlots(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.EditorGrid(), testLogger()).WithClock(fixedClock)

	current := &models.Appointment{
		ID: 3, GroomerID: 1, ClientID: 5, PetID: 9,
		Date: "2024-01-01", Time: "10:00", DurationMin: 30,
	}
	store.On("GetAppointment", mock.Anything, int64(3)).Return(current, nil)
	openMonday(store, []models.Appointment{*current})
	store.On("UpdateAppointment", mock.Anything, mock.AnythingOfType("*models.Appointment")).Return(nil)

	// Shifting by 15 minutes overlaps the appointment's own old slots,
	// which must not count as a conflict.
	appt, err := svc.Update(context.Background(), UpdateRequest{
		ID:          3,
		Date:        "2024-01-01",
		Time:        "10:15",
		DurationMin: 30,
	})

	require.NoError(t, err)
	assert.Equal(t, "10:15", appt.Time)
}

func TestRebookShiftsExactly28Days(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.EditorGrid(), testLogger()).WithClock(fixedClock)

	src := &models.Appointment{
		ID: 3, GroomerID: 1, ClientID: 5, PetID: 9,
		Date: "2024-01-01", Time: "10:00", DurationMin: 45,
		Services:  []string{"Wash", "Cut"},
		Confirmed: true, NoShow: true, Paid: true,
	}
	store.On("GetAppointment", mock.Anything, int64(3)).Return(src, nil)

	var created *models.Appointment
	store.On("CreateAppointment", mock.Anything, mock.AnythingOfType("*models.Appointment")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Appointment)
		}).Return(nil)

	clone, err := svc.Rebook(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "2024-01-29", clone.Date)
	assert.Equal(t, "10:00", clone.Time)
	assert.Equal(t, 45, clone.DurationMin)
	assert.Equal(t, []string{"Wash", "Cut"}, clone.Services)
	assert.False(t, clone.Confirmed, "flags reset on rebook")
	assert.False(t, clone.NoShow)
	assert.False(t, clone.Paid)
	assert.NotEqual(t, src.PublicRef, clone.PublicRef)
}

func TestAvailabilityDegradesToClosedOnStoreFailure(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, timegrid.EditorGrid(), testLogger()).WithClock(fixedClock)

	store.On("GetWorkingHours", mock.Anything, 1).
		Return(nil, assert.AnError)

	day := svc.Availability(context.Background(), "2024-01-01", 0)
	assert.True(t, day.FullyClosed, "query failures render as a closed day, never an error")
}
