package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/MitchellNeaf/pawscheduler/internal/database"
	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

// Config carries the Stripe glue settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	SuccessURL    string
	CancelURL     string
	ReturnURL     string
}

// Service is thin redirect-based billing glue: checkout/portal session
// creation plus a webhook that mirrors subscription status. No payment
// logic lives here.
type Service struct {
	cfg    Config
	db     *database.DB
	logger zerolog.Logger
}

// New configures the Stripe client and returns the glue service.
func New(cfg Config, db *database.DB, logger zerolog.Logger) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{cfg: cfg, db: db, logger: logger}
}

// Enabled reports whether Stripe credentials are configured.
func (s *Service) Enabled() bool {
	return strings.TrimSpace(s.cfg.SecretKey) != ""
}

// CheckoutURL creates a subscription checkout session for a groomer and
// returns the redirect URL.
func (s *Service) CheckoutURL(groomer *models.Groomer) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
	}
	if groomer.StripeCustomerID != "" {
		params.Customer = stripe.String(groomer.StripeCustomerID)
	} else {
		params.CustomerEmail = stripe.String(groomer.Email)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// PortalURL creates a billing-portal session for an existing customer.
func (s *Service) PortalURL(groomer *models.Groomer) (string, error) {
	if groomer.StripeCustomerID == "" {
		return "", errors.New("groomer has no billing customer")
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(groomer.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.ReturnURL),
	})
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies the Stripe signature and mirrors subscription
// status changes onto the groomer row.
func (s *Service) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(s.cfg.WebhookSecret) == "" {
		http.Error(w, "billing webhook not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	evt, err := webhook.ConstructEvent(body, r.Header.Get("Stripe-Signature"), s.cfg.WebhookSecret)
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch evt.Type {
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
			s.logger.Error().Err(err).Str("event_id", evt.ID).Msg("invalid subscription payload")
			break
		}
		if sub.Customer == nil {
			break
		}
		s.applyStatus(r.Context(), sub.Customer.ID, string(sub.Status))
	default:
		s.logger.Debug().Str("event_type", string(evt.Type)).Msg("ignoring billing event")
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received":true}`))
}

func (s *Service) applyStatus(ctx context.Context, customerID, status string) {
	groomer, err := s.db.GetGroomerByStripeCustomer(ctx, customerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customerID).Msg("webhook for unknown customer")
		return
	}
	if err := s.db.UpdateSubscriptionStatus(ctx, groomer.ID, status); err != nil {
		s.logger.Error().Err(err).Int64("groomer_id", groomer.ID).Msg("failed to update subscription status")
		return
	}
	s.logger.Info().Int64("groomer_id", groomer.ID).Str("status", status).Msg("subscription status updated")
}
