package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitchellNeaf/pawscheduler/internal/cache"
	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// fixture is an in-memory-free test world: a real sqlite file in a temp
// dir, one groomer open Mondays 09:00-17:00, one client with one pet.
type fixture struct {
	router  chi.Router
	db      *database.DB
	groomer *models.Groomer
	client  *models.Client
	pet     *models.Pet
}

// openMonday is a Monday far enough out that past-slot blocking is inert.
const openMonday = "2030-01-07"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	g := &models.Groomer{
		Slug:         "paws",
		BusinessName: "Paws & Claws",
		DisplayName:  "Sam",
		Email:        "sam@example.com",
		APIToken:     "test-token",
		MaxParallel:  1,
	}
	require.NoError(t, db.CreateGroomer(ctx, g))

	store := db.ForGroomer(g.ID)
	require.NoError(t, store.UpsertWorkingHours(ctx, 1, "09:00", "17:00"))

	c := &models.Client{FirstName: "Annabelle", Phone: "555-0104", SMSOptIn: true}
	require.NoError(t, store.CreateClient(ctx, c))
	p := &models.Pet{ClientID: c.ID, Name: "Rex", Breed: "Poodle"}
	require.NoError(t, store.CreatePet(ctx, p))

	srv := NewServer(db, cache.New(nil, 0, logger),
		timegrid.BookingGrid(), timegrid.EditorGrid(), nil, nil, logger)

	return &fixture{router: srv.Routes(), db: db, groomer: g, client: c, pet: p}
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestPublicPage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/public/paws/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page publicPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Paws & Claws", page.BusinessName)
	assert.Equal(t, []int{1}, page.WorkingWeekdays)
	assert.Empty(t, page.VacationDates)

	rec = f.do(t, http.MethodGet, "/public/nobody/", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicAvailability(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/public/paws/availability?date="+openMonday+"&services=Wash,Cut", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.FullyClosed)
	assert.Equal(t, 45, resp.DurationMin, "Wash+Cut infers 45 minutes")
	assert.Equal(t, "09:00", resp.Suggested)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, "09:00", resp.Slots[0].Time)

	rec = f.do(t, http.MethodGet, "/public/paws/availability?date=not-a-date", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicBookFlow(t *testing.T) {
	f := newFixture(t)

	book := publicBookRequest{
		FirstName:  "anna",
		PhoneLast4: "0104",
		PetID:      f.pet.ID,
		Date:       openMonday,
		Time:       "10:00",
		Services:   []string{"Wash", "Cut"},
	}

	rec := f.do(t, http.MethodPost, "/public/paws/book", book, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created["public_ref"])
	assert.EqualValues(t, 45, created["duration_min"])

	// The occupied run now blocks an overlapping second booking.
	book.Time = "10:15"
	rec = f.do(t, http.MethodPost, "/public/paws/book", book, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown identity stays a generic not-found.
	book.Time = "14:00"
	book.PhoneLast4 = "9999"
	rec = f.do(t, http.MethodPost, "/public/paws/book", book, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroomerAuth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/appointments/?date="+openMonday, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/appointments/?date="+openMonday, nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/appointments/?date="+openMonday, nil, "test-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGroomerCreateAndOverride(t *testing.T) {
	f := newFixture(t)

	create := appointmentRequest{
		ClientID: f.client.ID,
		PetID:    f.pet.ID,
		Date:     openMonday,
		Time:     "09:00",
		Services: []string{"Nails"},
	}
	rec := f.do(t, http.MethodPost, "/api/v1/appointments/", create, "test-token")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Same slot again: conflict without override, created with it.
	rec = f.do(t, http.MethodPost, "/api/v1/appointments/", create, "test-token")
	assert.Equal(t, http.StatusConflict, rec.Code)

	create.Override = true
	rec = f.do(t, http.MethodPost, "/api/v1/appointments/", create, "test-token")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGroomerScheduleValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/schedule/hours/2", hoursRequest{Start: "17:00", End: "09:00"}, "test-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "inverted interval rejected")

	rec = f.do(t, http.MethodPut, "/api/v1/schedule/hours/9", hoursRequest{Start: "09:00", End: "17:00"}, "test-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "weekday out of range")

	rec = f.do(t, http.MethodPut, "/api/v1/schedule/hours/2", hoursRequest{Start: "09:00", End: "17:00"}, "test-token")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/schedule/vacations",
		vacationRequest{Date: openMonday, StartTime: "13:00"}, "test-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "half-specified vacation range rejected")

	rec = f.do(t, http.MethodPost, "/api/v1/schedule/vacations",
		vacationRequest{Date: openMonday, StartTime: "13:00", EndTime: "15:00"}, "test-token")
	require.Equal(t, http.StatusCreated, rec.Code)

	// The vacation range now shows up as unavailable.
	rec = f.do(t, http.MethodGet, "/public/paws/availability?date="+openMonday+"&duration=15", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp availabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, slot := range resp.Slots {
		if slot.Time == "13:00" || slot.Time == "14:45" || slot.Time == "15:00" {
			assert.False(t, slot.Bookable, slot.Time)
		}
		if slot.Time == "09:00" || slot.Time == "15:15" {
			assert.True(t, slot.Bookable, slot.Time)
		}
	}
}
