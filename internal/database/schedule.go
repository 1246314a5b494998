package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

// GetWorkingHours returns the working-hours row for a weekday, or nil when
// the groomer is closed that day (absence is a normal state, not an error).
func (s *GroomerStore) GetWorkingHours(ctx context.Context, weekday int) (*models.WorkingHours, error) {
	var wh models.WorkingHours
	err := s.db.QueryRowContext(ctx, `
		SELECT id, groomer_id, weekday, start_time, end_time, created_at, updated_at
		FROM working_hours WHERE groomer_id = ? AND weekday = ?`,
		s.groomerID, weekday,
	).Scan(&wh.ID, &wh.GroomerID, &wh.Weekday, &wh.Start, &wh.End, &wh.CreatedAt, &wh.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

// ListWorkingHours returns all configured weekdays.
func (s *GroomerStore) ListWorkingHours(ctx context.Context) ([]models.WorkingHours, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, weekday, start_time, end_time, created_at, updated_at
		FROM working_hours WHERE groomer_id = ? ORDER BY weekday`, s.groomerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []models.WorkingHours
	for rows.Next() {
		var wh models.WorkingHours
		if err := rows.Scan(&wh.ID, &wh.GroomerID, &wh.Weekday, &wh.Start, &wh.End,
			&wh.CreatedAt, &wh.UpdatedAt); err != nil {
			return nil, err
		}
		hours = append(hours, wh)
	}
	return hours, rows.Err()
}

// UpsertWorkingHours sets the opening window for a weekday, one row per
// (groomer, weekday).
func (s *GroomerStore) UpsertWorkingHours(ctx context.Context, weekday int, start, end string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO working_hours (groomer_id, weekday, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(groomer_id, weekday) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			updated_at = excluded.updated_at`,
		s.groomerID, weekday, start, end, now, now)
	return err
}

// DeleteWorkingHours closes a weekday entirely.
func (s *GroomerStore) DeleteWorkingHours(ctx context.Context, weekday int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM working_hours WHERE groomer_id = ? AND weekday = ?`,
		s.groomerID, weekday)
	return err
}

// ListBreaks returns the recurring breaks for a weekday.
func (s *GroomerStore) ListBreaks(ctx context.Context, weekday int) ([]models.WorkingBreak, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, weekday, start_time, end_time, created_at
		FROM working_breaks WHERE groomer_id = ? AND weekday = ?
		ORDER BY start_time`, s.groomerID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBreaks(rows)
}

// ListAllBreaks returns every break row of this groomer.
func (s *GroomerStore) ListAllBreaks(ctx context.Context) ([]models.WorkingBreak, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, weekday, start_time, end_time, created_at
		FROM working_breaks WHERE groomer_id = ?
		ORDER BY weekday, start_time`, s.groomerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBreaks(rows)
}

// CreateBreak adds a recurring break to a weekday.
func (s *GroomerStore) CreateBreak(ctx context.Context, b *models.WorkingBreak) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO working_breaks (groomer_id, weekday, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.groomerID, b.Weekday, b.Start, b.End, now)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	b.GroomerID = s.groomerID
	b.CreatedAt = now
	return err
}

// DeleteBreak removes one break row.
func (s *GroomerStore) DeleteBreak(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM working_breaks WHERE id = ? AND groomer_id = ?`, id, s.groomerID)
	return err
}

// ListVacations returns all vacation rows for one date. Multiple rows per
// date are legal (several partial blocks).
func (s *GroomerStore) ListVacations(ctx context.Context, date string) ([]models.VacationDay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, date, start_time, end_time, created_at
		FROM vacation_days WHERE groomer_id = ? AND date = ?
		ORDER BY start_time`, s.groomerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVacations(rows)
}

// ListVacationsInRange returns vacation rows between two dates inclusive,
// for public-calendar shading.
func (s *GroomerStore) ListVacationsInRange(ctx context.Context, from, to string) ([]models.VacationDay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, date, start_time, end_time, created_at
		FROM vacation_days WHERE groomer_id = ? AND date >= ? AND date <= ?
		ORDER BY date, start_time`, s.groomerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVacations(rows)
}

// CreateVacation blocks a date (fully, or partially when both times are set).
func (s *GroomerStore) CreateVacation(ctx context.Context, v *models.VacationDay) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vacation_days (groomer_id, date, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.groomerID, v.Date, nullable(v.StartTime), nullable(v.EndTime), now)
	if err != nil {
		return err
	}
	v.ID, err = res.LastInsertId()
	v.GroomerID = s.groomerID
	v.CreatedAt = now
	return err
}

// DeleteVacation removes one vacation row.
func (s *GroomerStore) DeleteVacation(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM vacation_days WHERE id = ? AND groomer_id = ?`, id, s.groomerID)
	return err
}

func collectBreaks(rows *sql.Rows) ([]models.WorkingBreak, error) {
	var breaks []models.WorkingBreak
	for rows.Next() {
		var b models.WorkingBreak
		if err := rows.Scan(&b.ID, &b.GroomerID, &b.Weekday, &b.Start, &b.End, &b.CreatedAt); err != nil {
			return nil, err
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}

func collectVacations(rows *sql.Rows) ([]models.VacationDay, error) {
	var vacations []models.VacationDay
	for rows.Next() {
		var v models.VacationDay
		var start, end sql.NullString
		if err := rows.Scan(&v.ID, &v.GroomerID, &v.Date, &start, &end, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.StartTime, v.EndTime = start.String, end.String
		vacations = append(vacations, v)
	}
	return vacations, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
