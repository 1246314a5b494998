package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

const appointmentColumns = `id, public_ref, groomer_id, client_id, pet_id, date, time,
	duration_min, services, notes, source, confirmed, no_show, paid, amount_cents,
	override, reminder_sent, created_at, updated_at`

// CreateAppointment inserts a booking. A non-override insert colliding with
// an existing start slot returns ErrSlotTaken (partial unique index).
func (s *GroomerStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (public_ref, groomer_id, client_id, pet_id, date,
			time, duration_min, services, notes, source, confirmed, no_show, paid,
			amount_cents, override, reminder_sent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PublicRef, s.groomerID, a.ClientID, a.PetID, a.Date,
		a.Time, a.DurationMin, joinList(a.Services), a.Notes, a.Source,
		a.Confirmed, a.NoShow, a.Paid, a.AmountCents, a.Override, a.ReminderSent,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}
	a.ID, err = res.LastInsertId()
	a.GroomerID = s.groomerID
	a.CreatedAt, a.UpdatedAt = now, now
	return err
}

// GetAppointment returns one appointment of this groomer, or ErrNotFound.
func (s *GroomerStore) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ? AND groomer_id = ?`,
		id, s.groomerID)
	a, err := scanAppointmentRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// ListAppointmentsByDate returns the day's appointments ordered by start time.
func (s *GroomerStore) ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE groomer_id = ? AND date = ? ORDER BY time`,
		s.groomerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []models.Appointment
	for rows.Next() {
		a, err := scanAppointmentRows(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

// UpdateAppointment rewrites the mutable booking fields. Moving a
// non-override appointment onto a taken start slot returns ErrSlotTaken.
func (s *GroomerStore) UpdateAppointment(ctx context.Context, a *models.Appointment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE appointments SET date = ?, time = ?, duration_min = ?, services = ?,
			notes = ?, amount_cents = ?, override = ?, updated_at = ?
		WHERE id = ? AND groomer_id = ?`,
		a.Date, a.Time, a.DurationMin, joinList(a.Services),
		a.Notes, a.AmountCents, a.Override, time.Now(),
		a.ID, s.groomerID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// DeleteAppointment removes a booking.
func (s *GroomerStore) DeleteAppointment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM appointments WHERE id = ? AND groomer_id = ?`, id, s.groomerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// Flag columns toggleable through SetFlag.
const (
	FlagConfirmed = "confirmed"
	FlagNoShow    = "no_show"
	FlagPaid      = "paid"
)

// SetFlag sets one of the independent appointment flags. The mutation is
// idempotent: setting an already-set flag is a no-op update.
func (s *GroomerStore) SetFlag(ctx context.Context, id int64, flag string, value bool) error {
	var column string
	switch flag {
	case FlagConfirmed, FlagNoShow, FlagPaid:
		column = flag
	default:
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET `+column+` = ?, updated_at = ? WHERE id = ? AND groomer_id = ?`,
		value, time.Now(), id, s.groomerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// DaySheetRow is one appointment joined with its client and pet, the shape
// the day-sheet export renders.
type DaySheetRow struct {
	Appointment models.Appointment
	ClientName  string
	ClientPhone string
	PetName     string
	Breed       string
}

// ListDaySheet returns the groomer's day joined with client and pet data,
// ordered by start time.
func (s *GroomerStore) ListDaySheet(ctx context.Context, date string) ([]DaySheetRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.time, a.duration_min, a.services, a.notes, a.confirmed, a.no_show,
		       a.paid, a.amount_cents,
		       c.first_name || ' ' || c.last_name, c.phone, p.name, p.breed
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		JOIN pets p ON p.id = a.pet_id
		WHERE a.groomer_id = ? AND a.date = ?
		ORDER BY a.time`, s.groomerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheet []DaySheetRow
	for rows.Next() {
		var r DaySheetRow
		a := &r.Appointment
		var services, notes sql.NullString
		if err := rows.Scan(&a.Time, &a.DurationMin, &services, &notes,
			&a.Confirmed, &a.NoShow, &a.Paid, &a.AmountCents,
			&r.ClientName, &r.ClientPhone, &r.PetName, &r.Breed); err != nil {
			return nil, err
		}
		a.Date = date
		a.Services = splitList(services.String)
		a.Notes = notes.String
		sheet = append(sheet, r)
	}
	return sheet, rows.Err()
}

// ReminderTarget is one unreminded appointment joined with the contact data
// the sweep needs.
type ReminderTarget struct {
	Appointment models.Appointment
	ClientName  string
	ClientPhone string
	SMSOptIn    bool
	PetName     string
	Groomer     string
}

// ListUnremindedForDate returns every appointment on a date, across all
// groomers, whose reminder has not been sent yet.
func (db *DB) ListUnremindedForDate(ctx context.Context, date string) ([]ReminderTarget, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.public_ref, a.groomer_id, a.client_id, a.pet_id, a.date,
		       a.time, a.duration_min, a.services, a.notes, a.source, a.confirmed,
		       a.no_show, a.paid, a.amount_cents, a.override, a.reminder_sent,
		       a.created_at, a.updated_at,
		       c.first_name, c.phone, c.sms_opt_in, p.name, g.business_name
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		JOIN pets p ON p.id = a.pet_id
		JOIN groomers g ON g.id = a.groomer_id
		WHERE a.date = ? AND a.reminder_sent = 0 AND a.no_show = 0
		ORDER BY a.time`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []ReminderTarget
	for rows.Next() {
		var t ReminderTarget
		a := &t.Appointment
		var services, notes sql.NullString
		if err := rows.Scan(&a.ID, &a.PublicRef, &a.GroomerID, &a.ClientID, &a.PetID,
			&a.Date, &a.Time, &a.DurationMin, &services, &notes, &a.Source,
			&a.Confirmed, &a.NoShow, &a.Paid, &a.AmountCents, &a.Override,
			&a.ReminderSent, &a.CreatedAt, &a.UpdatedAt,
			&t.ClientName, &t.ClientPhone, &t.SMSOptIn, &t.PetName, &t.Groomer); err != nil {
			return nil, err
		}
		a.Services = splitList(services.String)
		a.Notes = notes.String
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// MarkReminderSent flips the idempotency flag right after a successful send.
func (db *DB) MarkReminderSent(ctx context.Context, appointmentID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE appointments SET reminder_sent = 1, updated_at = ? WHERE id = ?`,
		time.Now(), appointmentID)
	return err
}

func scanAppointmentRow(row *sql.Row) (*models.Appointment, error) {
	var a models.Appointment
	var services, notes sql.NullString
	err := row.Scan(&a.ID, &a.PublicRef, &a.GroomerID, &a.ClientID, &a.PetID,
		&a.Date, &a.Time, &a.DurationMin, &services, &notes, &a.Source,
		&a.Confirmed, &a.NoShow, &a.Paid, &a.AmountCents, &a.Override,
		&a.ReminderSent, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Services = splitList(services.String)
	a.Notes = notes.String
	return &a, nil
}

func scanAppointmentRows(rows *sql.Rows) (*models.Appointment, error) {
	var a models.Appointment
	var services, notes sql.NullString
	err := rows.Scan(&a.ID, &a.PublicRef, &a.GroomerID, &a.ClientID, &a.PetID,
		&a.Date, &a.Time, &a.DurationMin, &services, &notes, &a.Source,
		&a.Confirmed, &a.NoShow, &a.Paid, &a.AmountCents, &a.Override,
		&a.ReminderSent, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Services = splitList(services.String)
	a.Notes = notes.String
	return &a, nil
}
