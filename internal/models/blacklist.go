package models

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry is one misconduct report against a phone number. The list is
// append-only; the same number may appear more than once.
type BlacklistEntry struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}
