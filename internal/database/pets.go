package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

// CreatePet inserts a pet under this groomer.
func (s *GroomerStore) CreatePet(ctx context.Context, p *models.Pet) error {
	now := time.Now()
	if p.SlotWeight <= 0 {
		p.SlotWeight = 1
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pets (groomer_id, client_id, name, breed, tags, slot_weight,
			notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.groomerID, p.ClientID, p.Name, p.Breed, joinList(p.Tags),
		p.SlotWeight, p.Notes, now, now,
	)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	p.GroomerID = s.groomerID
	p.CreatedAt, p.UpdatedAt = now, now
	return err
}

// GetPet returns one pet of this groomer, or ErrNotFound.
func (s *GroomerStore) GetPet(ctx context.Context, id int64) (*models.Pet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, groomer_id, client_id, name, breed, tags, slot_weight, notes,
		       created_at, updated_at
		FROM pets WHERE id = ? AND groomer_id = ?`, id, s.groomerID)
	return scanPet(row)
}

// ListPetsByClient returns a client's pets.
func (s *GroomerStore) ListPetsByClient(ctx context.Context, clientID int64) ([]models.Pet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, groomer_id, client_id, name, breed, tags, slot_weight, notes,
		       created_at, updated_at
		FROM pets WHERE groomer_id = ? AND client_id = ?
		ORDER BY name`, s.groomerID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pets []models.Pet
	for rows.Next() {
		var p models.Pet
		var breed, tags, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.GroomerID, &p.ClientID, &p.Name, &breed,
			&tags, &p.SlotWeight, &notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Breed, p.Notes = breed.String, notes.String
		p.Tags = splitList(tags.String)
		pets = append(pets, p)
	}
	return pets, rows.Err()
}

func scanPet(row *sql.Row) (*models.Pet, error) {
	var p models.Pet
	var breed, tags, notes sql.NullString
	err := row.Scan(&p.ID, &p.GroomerID, &p.ClientID, &p.Name, &breed,
		&tags, &p.SlotWeight, &notes, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Breed, p.Notes = breed.String, notes.String
	p.Tags = splitList(tags.String)
	return &p, nil
}
