// Package messaging delivers outbound WhatsApp messages through Twilio.
package messaging

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"covidbot/internal/config"
	"covidbot/internal/validation"
)

// Sender delivers a message body to a phone number.
type Sender interface {
	Send(to, body string) error
}

// TwilioSender sends WhatsApp messages via the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a sender from the configured Twilio credentials.
func NewTwilioSender(cfg *config.Config) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	log.Printf("Twilio WhatsApp sender enabled (from: %s)", cfg.TwilioWhatsAppFrom)
	return &TwilioSender{
		client: client,
		from:   cfg.TwilioWhatsAppFrom,
	}
}

// Send delivers the body to the given phone number over WhatsApp.
func (s *TwilioSender) Send(to, body string) error {
	to = validation.NormalizePhoneNumber(to)
	if !validation.ValidateRecipient(to) {
		return fmt.Errorf("invalid recipient %q", to)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + s.from)
	params.SetTo("whatsapp:" + to)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	return nil
}
