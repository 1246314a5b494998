package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned by lookups that must distinguish absence
	// (most list reads simply return empty).
	ErrNotFound = errors.New("not found")
	// ErrSlotTaken maps the slot uniqueness constraint: another
	// non-override appointment already starts at the same groomer/date/time.
	ErrSlotTaken = errors.New("slot already taken")
)

// DB wraps the sqlite connection shared by all stores.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens (and migrates) the sqlite database at path.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS groomers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT UNIQUE NOT NULL,
			business_name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			api_token TEXT UNIQUE NOT NULL,
			max_parallel INTEGER NOT NULL DEFAULT 1,
			telegram_chat_id INTEGER NOT NULL DEFAULT 0,
			stripe_customer_id TEXT,
			subscription_status TEXT NOT NULL DEFAULT 'trial',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			groomer_id INTEGER NOT NULL REFERENCES groomers(id) ON DELETE CASCADE,
			first_name TEXT NOT NULL,
			last_name TEXT,
			phone TEXT NOT NULL,
			email TEXT,
			sms_opt_in BOOLEAN NOT NULL DEFAULT 0,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			groomer_id INTEGER NOT NULL REFERENCES groomers(id) ON DELETE CASCADE,
			client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			breed TEXT,
			tags TEXT,
			slot_weight INTEGER NOT NULL DEFAULT 1,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS working_hours (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			groomer_id INTEGER NOT NULL REFERENCES groomers(id) ON DELETE CASCADE,
			weekday INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(groomer_id, weekday)
		)`,
		`CREATE TABLE IF NOT EXISTS working_breaks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			groomer_id INTEGER NOT NULL REFERENCES groomers(id) ON DELETE CASCADE,
			weekday INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS vacation_days (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			groomer_id INTEGER NOT NULL REFERENCES groomers(id) ON DELETE CASCADE,
			date TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_ref TEXT UNIQUE NOT NULL,
			groomer_id INTEGER NOT NULL REFERENCES groomers(id) ON DELETE CASCADE,
			client_id INTEGER NOT NULL REFERENCES clients(id),
			pet_id INTEGER NOT NULL REFERENCES pets(id),
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			duration_min INTEGER NOT NULL,
			services TEXT,
			notes TEXT,
			source TEXT NOT NULL DEFAULT 'groomer',
			confirmed BOOLEAN NOT NULL DEFAULT 0,
			no_show BOOLEAN NOT NULL DEFAULT 0,
			paid BOOLEAN NOT NULL DEFAULT 0,
			amount_cents INTEGER NOT NULL DEFAULT 0,
			override BOOLEAN NOT NULL DEFAULT 0,
			reminder_sent BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_groomer_date
			ON appointments(groomer_id, date)`,
		// Guards the same-start double-booking race for non-override
		// bookings. Overridden appointments opt out by design.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot
			ON appointments(groomer_id, date, time) WHERE override = 0`,
		`CREATE INDEX IF NOT EXISTS idx_vacation_days_groomer_date
			ON vacation_days(groomer_id, date)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// ForGroomer returns a store whose every query is scoped to one tenant.
// Handlers never add the groomer filter by hand.
func (db *DB) ForGroomer(groomerID int64) *GroomerStore {
	return &GroomerStore{db: db, groomerID: groomerID}
}

// GroomerStore is the tenant-scoped access handle.
type GroomerStore struct {
	db        *DB
	groomerID int64
}

// GroomerID returns the tenant this store is bound to.
func (s *GroomerStore) GroomerID() int64 { return s.groomerID }

// isUniqueViolation detects sqlite unique-constraint failures.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
