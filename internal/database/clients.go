package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

// CreateClient inserts a client under this groomer.
func (s *GroomerStore) CreateClient(ctx context.Context, c *models.Client) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (groomer_id, first_name, last_name, phone, email,
			sms_opt_in, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.groomerID, c.FirstName, c.LastName, c.Phone, c.Email,
		c.SMSOptIn, c.Notes, now, now,
	)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	c.GroomerID = s.groomerID
	c.CreatedAt, c.UpdatedAt = now, now
	return err
}

// GetClient returns one client of this groomer, or ErrNotFound.
func (s *GroomerStore) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, groomer_id, first_name, last_name, phone, email, sms_opt_in,
		       notes, created_at, updated_at
		FROM clients WHERE id = ? AND groomer_id = ?`, id, s.groomerID)
	return scanClient(row)
}

// ListClients returns all clients of this groomer ordered by name.
func (s *GroomerStore) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, first_name, last_name, phone, email, sms_opt_in,
		       notes, created_at, updated_at
		FROM clients WHERE groomer_id = ?
		ORDER BY first_name, last_name`, s.groomerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClientRows(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// FindClientForBooking resolves a self-service identity: case-insensitive
// first-name prefix AND last-4-digits phone suffix, both required. Exactly
// one match is returned; zero or several yield ErrNotFound so the public
// form cannot be used to probe which field was wrong.
func (s *GroomerStore) FindClientForBooking(ctx context.Context, namePrefix, phoneLast4 string) (*models.Client, error) {
	namePrefix = strings.TrimSpace(namePrefix)
	phoneLast4 = strings.TrimSpace(phoneLast4)
	if namePrefix == "" || len(phoneLast4) != 4 {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, first_name, last_name, phone, email, sms_opt_in,
		       notes, created_at, updated_at
		FROM clients
		WHERE groomer_id = ?
		  AND first_name LIKE ? COLLATE NOCASE
		  AND phone LIKE ?`,
		s.groomerID, namePrefix+"%", "%"+phoneLast4)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Client
	for rows.Next() {
		c, err := scanClientRows(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, ErrNotFound
	}
	return matches[0], nil
}

func scanClient(row *sql.Row) (*models.Client, error) {
	var c models.Client
	var lastName, email, notes sql.NullString
	err := row.Scan(&c.ID, &c.GroomerID, &c.FirstName, &lastName, &c.Phone,
		&email, &c.SMSOptIn, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.LastName, c.Email, c.Notes = lastName.String, email.String, notes.String
	return &c, nil
}

func scanClientRows(rows *sql.Rows) (*models.Client, error) {
	var c models.Client
	var lastName, email, notes sql.NullString
	err := rows.Scan(&c.ID, &c.GroomerID, &c.FirstName, &lastName, &c.Phone,
		&email, &c.SMSOptIn, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.LastName, c.Email, c.Notes = lastName.String, email.String, notes.String
	return &c, nil
}
