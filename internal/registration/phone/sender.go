package phone

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"farmgate/internal/platform/config"
	dErrors "farmgate/pkg/domain-errors"
)

// Sender delivers a text message.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioSender sends messages through the Twilio Messages API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(cfg config.TwilioConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{client: client, from: cfg.FromPhone}
}

func (s *TwilioSender) SendSMS(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) && restErr.Status == http.StatusBadRequest {
			// Twilio rejects numbers that cannot receive SMS with a 400.
			return dErrors.Wrap(err, dErrors.CodeValidation, "this phone number cannot receive SMS")
		}
		return dErrors.Wrap(err, dErrors.CodeVendorUnavailable, "could not send the verification code, please try again")
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when
// Twilio is not configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendSMS(ctx context.Context, to, body string) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "sms not sent, twilio is not configured", "to", to, "body", body)
	}
	return nil
}
