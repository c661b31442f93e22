package models

import (
	"time"

	"github.com/google/uuid"
)

// Handover request statuses.
const (
	HandoverWaiting = "WAITING"
	HandoverOpen    = "OPEN"
	HandoverClosed  = "CLOSE"
)

// HandoverRequest tracks one user's escalation to a human. A user has at most
// one non-closed request at a time.
type HandoverRequest struct {
	ID              uuid.UUID `json:"id"`
	UserNumber      string    `json:"user_number"`
	Language        string    `json:"language"`
	VolunteerNumber *string   `json:"volunteer_number"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsActive reports whether the request still occupies the user's single
// active-handover slot.
func (r *HandoverRequest) IsActive() bool {
	return r.Status == HandoverWaiting || r.Status == HandoverOpen
}
