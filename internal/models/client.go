package models

import "time"

// Client is a pet owner registered with one groomer.
type Client struct {
	ID        int64     `json:"id"`
	GroomerID int64     `json:"groomer_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	SMSOptIn  bool      `json:"sms_opt_in"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pet belongs to a client. Tags carry behavior/medical markers; SlotWeight is
// the capacity unit (1/2/3) for the groomer's max_parallel counter. The slot
// engine does not consult either today.
type Pet struct {
	ID         int64     `json:"id"`
	GroomerID  int64     `json:"groomer_id"`
	ClientID   int64     `json:"client_id"`
	Name       string    `json:"name"`
	Breed      string    `json:"breed,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	SlotWeight int       `json:"slot_weight"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
