package models

import (
	"time"

	"github.com/google/uuid"
)

// Volunteer is a human who accepted to answer handed-over conversations.
// PhoneNumber is unique and normalized to a leading "+".
type Volunteer struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	PhoneNumber      string    `json:"phone_number"`
	Languages        []string  `json:"languages"`
	NumUsersAnswered int       `json:"num_users_answered"`
	CreatedAt        time.Time `json:"created_at"`
}
