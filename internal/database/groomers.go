package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

const groomerColumns = `id, slug, business_name, display_name, email, phone, api_token,
	max_parallel, telegram_chat_id, stripe_customer_id, subscription_status,
	created_at, updated_at`

// CreateGroomer inserts a new tenant.
func (db *DB) CreateGroomer(ctx context.Context, g *models.Groomer) error {
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO groomers (slug, business_name, display_name, email, phone,
			api_token, max_parallel, telegram_chat_id, stripe_customer_id,
			subscription_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Slug, g.BusinessName, g.DisplayName, g.Email, g.Phone,
		g.APIToken, g.MaxParallel, g.TelegramChatID, g.StripeCustomerID,
		g.SubscriptionStatus, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug or token already in use: %w", err)
		}
		return err
	}
	g.ID, err = res.LastInsertId()
	g.CreatedAt, g.UpdatedAt = now, now
	return err
}

// GetGroomerBySlug resolves the public booking-page key.
func (db *DB) GetGroomerBySlug(ctx context.Context, slug string) (*models.Groomer, error) {
	return db.scanGroomer(db.QueryRowContext(ctx,
		`SELECT `+groomerColumns+` FROM groomers WHERE slug = ?`, slug))
}

// GetGroomerByID returns one tenant by primary key.
func (db *DB) GetGroomerByID(ctx context.Context, id int64) (*models.Groomer, error) {
	return db.scanGroomer(db.QueryRowContext(ctx,
		`SELECT `+groomerColumns+` FROM groomers WHERE id = ?`, id))
}

// GetGroomerByAPIToken authenticates the groomer-facing API.
func (db *DB) GetGroomerByAPIToken(ctx context.Context, token string) (*models.Groomer, error) {
	return db.scanGroomer(db.QueryRowContext(ctx,
		`SELECT `+groomerColumns+` FROM groomers WHERE api_token = ?`, token))
}

// GetGroomerByStripeCustomer resolves a webhook's customer id to a tenant.
func (db *DB) GetGroomerByStripeCustomer(ctx context.Context, customerID string) (*models.Groomer, error) {
	return db.scanGroomer(db.QueryRowContext(ctx,
		`SELECT `+groomerColumns+` FROM groomers WHERE stripe_customer_id = ?`, customerID))
}

// UpdateSubscriptionStatus applies a billing webhook outcome.
func (db *DB) UpdateSubscriptionStatus(ctx context.Context, groomerID int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE groomers SET subscription_status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), groomerID)
	return err
}

func (db *DB) scanGroomer(row *sql.Row) (*models.Groomer, error) {
	var g models.Groomer
	var phone, stripeID sql.NullString
	err := row.Scan(
		&g.ID, &g.Slug, &g.BusinessName, &g.DisplayName, &g.Email, &phone,
		&g.APIToken, &g.MaxParallel, &g.TelegramChatID, &stripeID,
		&g.SubscriptionStatus, &g.CreatedAt, &g.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Phone = phone.String
	g.StripeCustomerID = stripeID.String
	return &g, nil
}
