package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/MitchellNeaf/pawscheduler/internal/models"
)

// TelegramAlerter pushes new self-service bookings to the groomer's
// Telegram chat. Optional: groomers without a chat id are skipped.
type TelegramAlerter struct {
	bot    *tgbotapi.BotAPI
	logger zerolog.Logger
}

// NewTelegramAlerter connects the bot. Returns an error only for a bad token.
func NewTelegramAlerter(token string, logger zerolog.Logger) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram alerter connected")
	return &TelegramAlerter{bot: bot, logger: logger}, nil
}

// NewBooking announces a booking to the groomer. Failures are logged, not
// returned: booking creation never depends on the alert.
func (t *TelegramAlerter) NewBooking(groomer *models.Groomer, appt *models.Appointment, clientName, petName string) {
	if t == nil || groomer.TelegramChatID == 0 {
		return
	}

	text := fmt.Sprintf("New booking: %s with %s on %s at %s (%d min)",
		petName, clientName, appt.Date, appt.Time, appt.DurationMin)
	msg := tgbotapi.NewMessage(groomer.TelegramChatID, text)

	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).
			Int64("groomer_id", groomer.ID).
			Int64("appointment_id", appt.ID).
			Msg("telegram booking alert failed")
	}
}
