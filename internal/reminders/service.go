package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/metrics"
	"github.com/MitchellNeaf/pawscheduler/internal/timegrid"
)

// Store is the slice of persistence the sweep needs.
type Store interface {
	ListUnremindedForDate(ctx context.Context, date string) ([]database.ReminderTarget, error)
	MarkReminderSent(ctx context.Context, appointmentID int64) error
}

// Notifier delivers one reminder. Implementations live in internal/notify.
type Notifier interface {
	SendReminder(ctx context.Context, target database.ReminderTarget) error
}

// Config holds configuration for the reminder service.
type Config struct {
	// CheckInterval is how often to sweep for upcoming appointments.
	// Default: 15 minutes.
	CheckInterval time.Duration

	// DaysBefore is how many days ahead of the appointment date the
	// reminder goes out. Default: 1 (the day before).
	DaysBefore int

	// MaxConcurrentSends limits parallel notification dispatches.
	// Default: 10.
	MaxConcurrentSends int

	// SendsPerSecond throttles the notification gateway. Default: 20.
	SendsPerSecond float64

	// Burst is the rate limiter burst. Default: 30.
	Burst int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CheckInterval:      15 * time.Minute,
		DaysBefore:         1,
		MaxConcurrentSends: 10,
		SendsPerSecond:     20,
		Burst:              30,
	}
}

// Service sweeps upcoming appointments and sends reminders at most once
// each: the reminder_sent flag is flipped immediately after a successful
// dispatch and checked before every send.
type Service struct {
	config   *Config
	store    Store
	notifier Notifier
	limiter  *rate.Limiter
	logger   zerolog.Logger
	now      func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewService creates a reminder service.
func NewService(config *Config, store Store, notifier Notifier, logger zerolog.Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = 15 * time.Minute
	}
	if config.DaysBefore == 0 {
		config.DaysBefore = 1
	}
	if config.MaxConcurrentSends == 0 {
		config.MaxConcurrentSends = 10
	}
	if config.SendsPerSecond == 0 {
		config.SendsPerSecond = 20
	}
	if config.Burst == 0 {
		config.Burst = 30
	}

	return &Service{
		config:   config,
		store:    store,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(config.SendsPerSecond), config.Burst),
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start begins the sweep loop.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().
		Dur("check_interval", s.config.CheckInterval).
		Int("days_before", s.config.DaysBefore).
		Msg("reminder service started")
}

// Stop gracefully stops the sweep loop.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("reminder service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	// Run immediately on start.
	s.sweep()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// CheckNow triggers an immediate sweep, useful for tests.
func (s *Service) CheckNow() {
	s.sweep()
}

func (s *Service) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	targetDate := timegrid.FormatDate(s.now().AddDate(0, 0, s.config.DaysBefore))

	targets, err := s.store.ListUnremindedForDate(ctx, targetDate)
	if err != nil {
		s.logger.Error().Err(err).Str("date", targetDate).Msg("reminder sweep query failed")
		return
	}
	if len(targets) == 0 {
		return
	}

	s.logger.Debug().Int("count", len(targets)).Str("date", targetDate).Msg("appointments due for reminders")

	sem := make(chan struct{}, s.config.MaxConcurrentSends)
	var wg sync.WaitGroup

	for _, target := range targets {
		if target.Appointment.ReminderSent {
			continue
		}
		if !target.SMSOptIn {
			metrics.IncReminder("skipped_opt_out")
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(t database.ReminderTarget) {
			defer wg.Done()
			defer func() { <-sem }()
			s.send(ctx, t)
		}(target)
	}

	wg.Wait()
}

func (s *Service) send(ctx context.Context, target database.ReminderTarget) {
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.IncReminder("rate_limit_cancelled")
		return
	}

	if err := s.notifier.SendReminder(ctx, target); err != nil {
		metrics.IncReminder("failed")
		s.logger.Error().Err(err).
			Int64("appointment_id", target.Appointment.ID).
			Msg("reminder send failed")
		return
	}

	// Flip the idempotency flag right away; a failure here must not
	// trigger a duplicate send, so it is logged and swallowed.
	if err := s.store.MarkReminderSent(ctx, target.Appointment.ID); err != nil {
		s.logger.Error().Err(err).
			Int64("appointment_id", target.Appointment.ID).
			Msg("failed to mark reminder sent (notification was delivered)")
	}

	metrics.IncReminder("sent")
	s.logger.Info().
		Int64("appointment_id", target.Appointment.ID).
		Str("date", target.Appointment.Date).
		Str("time", target.Appointment.Time).
		Msg("reminder sent")
}
