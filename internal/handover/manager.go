// Package handover manages the escalation lifecycle between users and the
// human volunteer channel: WAITING on request, OPEN once accepted, CLOSE when
// either side ends it, and back to OPEN when a user resumes an accepted
// thread.
package handover

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"covidbot/internal/db"
	"covidbot/internal/messaging"
	"covidbot/internal/models"
)

// Store is the slice of the database the lifecycle manager writes.
type Store interface {
	CreateHandoverRequest(ctx context.Context, userNumber, language string) (uuid.UUID, error)
	GetActiveHandoverRequest(ctx context.Context, userNumber string) (*models.HandoverRequest, error)
	AcceptHandoverRequest(ctx context.Context, userNumber, volunteerNumber string) error
	CloseHandoverRequest(ctx context.Context, userNumber string) error
	ReopenHandoverRequest(ctx context.Context, userNumber string) error
	IncrementVolunteerAnswered(ctx context.Context, phoneNumber string) error
}

// Manager drives handover state transitions and the notifications they cause.
type Manager struct {
	store       Store
	sender      messaging.Sender
	humanNumber string
}

// NewManager creates a handover manager. humanNumber is the fixed human
// channel address that receives escalation notifications.
func NewManager(store Store, sender messaging.Sender, humanNumber string) *Manager {
	return &Manager{
		store:       store,
		sender:      sender,
		humanNumber: humanNumber,
	}
}

// Start records the user's escalation request and notifies the human channel.
// Calling Start again while a request is WAITING or OPEN returns the existing
// request's id without a second notification row.
func (m *Manager) Start(ctx context.Context, userNumber, language string) (uuid.UUID, error) {
	id, err := m.store.CreateHandoverRequest(ctx, userNumber, language)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create handover request: %w", err)
	}
	if err := m.sender.Send(m.humanNumber, messaging.HandoverPending(userNumber)); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Forward relays a mid-handover user message to the human channel, together
// with the reply envelope the human must use. A user resuming a previously
// closed thread reopens it first.
func (m *Manager) Forward(ctx context.Context, userNumber, text string) error {
	if _, err := m.store.GetActiveHandoverRequest(ctx, userNumber); err != nil {
		if !errors.Is(err, db.ErrHandoverNotFound) {
			return err
		}
		if err := m.store.ReopenHandoverRequest(ctx, userNumber); err != nil && !errors.Is(err, db.ErrHandoverNotFound) {
			return err
		}
	}
	if err := m.sender.Send(m.humanNumber, messaging.HandoverUserMessage(userNumber, text)); err != nil {
		return err
	}
	return m.sender.Send(m.humanNumber, messaging.HandoverReplyFormat(userNumber))
}

// Accept marks the user's WAITING request as OPEN for the volunteer, bumps
// the volunteer's answered counter and tells the user a human joined. First
// accepted wins; accepting an already-OPEN request fails without reassigning.
func (m *Manager) Accept(ctx context.Context, userNumber, volunteerNumber string) error {
	if err := m.store.AcceptHandoverRequest(ctx, userNumber, volunteerNumber); err != nil {
		return err
	}
	if err := m.store.IncrementVolunteerAnswered(ctx, volunteerNumber); err != nil && !errors.Is(err, db.ErrVolunteerNotFound) {
		return err
	}
	return m.sender.Send(userNumber, messaging.HumanJoined())
}

// Close ends the user's active handover.
func (m *Manager) Close(ctx context.Context, userNumber string) error {
	return m.store.CloseHandoverRequest(ctx, userNumber)
}

// Answer forwards the human's reply to the user and confirms delivery back to
// the human channel.
func (m *Manager) Answer(ctx context.Context, userNumber, text string) error {
	if err := m.sender.Send(userNumber, text); err != nil {
		return err
	}
	return m.sender.Send(m.humanNumber, messaging.HandoverDelivered(text, userNumber))
}
