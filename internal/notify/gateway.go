package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MitchellNeaf/pawscheduler/internal/database"
)

// Gateway posts fire-and-forget email/SMS messages to an external delivery
// endpoint. Idempotency of reminder sends lives with the caller (the
// reminder_sent flag), not here.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewGateway creates a delivery client for the notification endpoint.
func NewGateway(baseURL, apiKey string, logger zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type dispatchRequest struct {
	Channel  string            `json:"channel"` // "sms" or "email"
	To       string            `json:"to"`
	Subject  string            `json:"subject,omitempty"`
	Template string            `json:"template"`
	Payload  map[string]string `json:"payload,omitempty"`
}

// SendSMS dispatches one SMS through the gateway.
func (g *Gateway) SendSMS(ctx context.Context, to, template string, payload map[string]string) error {
	return g.dispatch(ctx, dispatchRequest{Channel: "sms", To: to, Template: template, Payload: payload})
}

// SendEmail dispatches one email through the gateway.
func (g *Gateway) SendEmail(ctx context.Context, to, subject, template string, payload map[string]string) error {
	return g.dispatch(ctx, dispatchRequest{Channel: "email", To: to, Subject: subject, Template: template, Payload: payload})
}

// SendReminder implements reminders.Notifier.
func (g *Gateway) SendReminder(ctx context.Context, target database.ReminderTarget) error {
	return g.SendSMS(ctx, target.ClientPhone, "appointment_reminder", map[string]string{
		"client":  target.ClientName,
		"pet":     target.PetName,
		"groomer": target.Groomer,
		"date":    target.Appointment.Date,
		"time":    target.Appointment.Time,
	})
}

func (g *Gateway) dispatch(ctx context.Context, req dispatchRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("dispatch notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification gateway returned %d", resp.StatusCode)
	}

	g.logger.Debug().Str("channel", req.Channel).Str("template", req.Template).Msg("notification dispatched")
	return nil
}
