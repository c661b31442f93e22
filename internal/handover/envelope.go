package handover

import (
	"errors"
	"strings"

	"covidbot/internal/validation"
)

// ErrMalformedEnvelope means a human reply did not follow the expected
// "HANDOVER RESPONSE" format.
var ErrMalformedEnvelope = errors.New("malformed handover reply envelope")

// ParseEnvelope extracts the target user and reply text from a human
// channel answer. The expected shape is:
//
//	HANDOVER RESPONSE
//	User: +15559999
//	<the reply text>
//
// The template markers are stripped, the first remaining line must be the
// user id (leading "+", at least one digit), and everything after it is the
// text to forward.
func ParseEnvelope(message string) (recipient, text string, err error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(message, "HANDOVER RESPONSE", ""))
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "User: ", ""))

	recipient = strings.TrimSpace(strings.SplitN(cleaned, "\n", 2)[0])
	if !validation.ValidateRecipient(recipient) {
		return "", "", ErrMalformedEnvelope
	}

	text = strings.TrimSpace(strings.Replace(cleaned, recipient, "", 1))
	if text == "" {
		return "", "", ErrMalformedEnvelope
	}
	return recipient, text, nil
}
