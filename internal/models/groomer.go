package models

import "time"

// Groomer is a tenant: every scheduling entity belongs to exactly one groomer.
type Groomer struct {
	ID                 int64     `json:"id"`
	Slug               string    `json:"slug"` // public booking-page key
	BusinessName       string    `json:"business_name"`
	DisplayName        string    `json:"display_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	APIToken           string    `json:"-"`
	MaxParallel        int       `json:"max_parallel"` // capacity counter, stored but not enforced
	TelegramChatID     int64     `json:"-"`
	StripeCustomerID   string    `json:"-"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
