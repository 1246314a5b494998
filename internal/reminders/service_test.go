package reminders

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	targets  map[string][]database.ReminderTarget
	marked   []int64
	listErr  error
	markErr  error
	lastDate string
}

func (f *fakeStore) ListUnremindedForDate(ctx context.Context, date string) ([]database.ReminderTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDate = date
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.targets[date], nil
}

func (f *fakeStore) MarkReminderSent(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []int64
	err  error
}

func (f *fakeNotifier) SendReminder(ctx context.Context, target database.ReminderTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, target.Appointment.ID)
	return nil
}

func target(id int64, optIn bool, sent bool) database.ReminderTarget {
	return database.ReminderTarget{
		Appointment: models.Appointment{ID: id, Date: "2024-01-02", Time: "10:00", ReminderSent: sent},
		ClientName:  "Ann",
		ClientPhone: "555-1234",
		SMSOptIn:    optIn,
		PetName:     "Rex",
		Groomer:     "Paws & Claws",
	}
}

func newTestService(store *fakeStore, notifier *fakeNotifier) *Service {
	svc := NewService(DefaultConfig(), store, notifier, zerolog.New(io.Discard))
	return svc.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	})
}

func TestSweepSendsDayBeforeReminders(t *testing.T) {
	store := &fakeStore{targets: map[string][]database.ReminderTarget{
		"2024-01-02": {target(1, true, false), target(2, true, false)},
	}}
	notifier := &fakeNotifier{}

	newTestService(store, notifier).CheckNow()

	assert.Equal(t, "2024-01-02", store.lastDate, "sweep targets the day after today")
	assert.ElementsMatch(t, []int64{1, 2}, notifier.sent)
	assert.ElementsMatch(t, []int64{1, 2}, store.marked)
}

func TestSweepSkipsAlreadySentAndOptOuts(t *testing.T) {
	store := &fakeStore{targets: map[string][]database.ReminderTarget{
		"2024-01-02": {
			target(1, true, true),   // already reminded
			target(2, false, false), // no SMS opt-in
			target(3, true, false),
		},
	}}
	notifier := &fakeNotifier{}

	newTestService(store, notifier).CheckNow()

	assert.Equal(t, []int64{3}, notifier.sent)
	assert.Equal(t, []int64{3}, store.marked)
}

func TestSweepDoesNotMarkOnSendFailure(t *testing.T) {
	store := &fakeStore{targets: map[string][]database.ReminderTarget{
		"2024-01-02": {target(1, true, false)},
	}}
	notifier := &fakeNotifier{err: assert.AnError}

	newTestService(store, notifier).CheckNow()

	assert.Empty(t, store.marked, "failed sends stay unmarked for the next sweep")
}

func TestSweepSurvivesQueryFailure(t *testing.T) {
	store := &fakeStore{listErr: assert.AnError}
	notifier := &fakeNotifier{}

	// Must not panic or send anything.
	newTestService(store, notifier).CheckNow()
	assert.Empty(t, notifier.sent)
}

func TestStartStopIdempotent(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeNotifier{})

	svc.Start()
	svc.Start() // second start is a no-op
	svc.Stop()
	svc.Stop() // second stop is a no-op
}
