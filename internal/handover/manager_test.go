package handover

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"covidbot/internal/db"
	"covidbot/internal/models"
)

type fakeStore struct {
	requests  map[string]*models.HandoverRequest
	answered  map[string]int
	volunteer map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:  make(map[string]*models.HandoverRequest),
		answered:  make(map[string]int),
		volunteer: map[string]bool{"+15550001": true},
	}
}

func (f *fakeStore) CreateHandoverRequest(ctx context.Context, userNumber, language string) (uuid.UUID, error) {
	if req, ok := f.requests[userNumber]; ok && req.IsActive() {
		return req.ID, nil
	}
	req := &models.HandoverRequest{
		ID:         uuid.New(),
		UserNumber: userNumber,
		Language:   language,
		Status:     models.HandoverWaiting,
	}
	f.requests[userNumber] = req
	return req.ID, nil
}

func (f *fakeStore) GetActiveHandoverRequest(ctx context.Context, userNumber string) (*models.HandoverRequest, error) {
	req, ok := f.requests[userNumber]
	if !ok || !req.IsActive() {
		return nil, db.ErrHandoverNotFound
	}
	return req, nil
}

func (f *fakeStore) AcceptHandoverRequest(ctx context.Context, userNumber, volunteerNumber string) error {
	req, ok := f.requests[userNumber]
	if !ok || req.Status != models.HandoverWaiting {
		return db.ErrHandoverNotFound
	}
	req.Status = models.HandoverOpen
	req.VolunteerNumber = &volunteerNumber
	return nil
}

func (f *fakeStore) CloseHandoverRequest(ctx context.Context, userNumber string) error {
	req, ok := f.requests[userNumber]
	if !ok || !req.IsActive() {
		return db.ErrHandoverNotFound
	}
	req.Status = models.HandoverClosed
	return nil
}

func (f *fakeStore) ReopenHandoverRequest(ctx context.Context, userNumber string) error {
	req, ok := f.requests[userNumber]
	if !ok || req.Status != models.HandoverClosed {
		return db.ErrHandoverNotFound
	}
	req.Status = models.HandoverOpen
	return nil
}

func (f *fakeStore) IncrementVolunteerAnswered(ctx context.Context, phoneNumber string) error {
	if !f.volunteer[phoneNumber] {
		return db.ErrVolunteerNotFound
	}
	f.answered[phoneNumber]++
	return nil
}

type fakeSender struct {
	sent []struct{ To, Body string }
}

func (f *fakeSender) Send(to, body string) error {
	f.sent = append(f.sent, struct{ To, Body string }{to, body})
	return nil
}

const humanNumber = "+15550001"

func TestManagerStartIsIdempotent(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{}
	manager := NewManager(store, sender, humanNumber)
	ctx := context.Background()

	id1, err := manager.Start(ctx, "+15559999", "English")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	id2, err := manager.Start(ctx, "+15559999", "English")
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("Start() ids differ: %s vs %s", id1, id2)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(sender.sent))
	}
	if sender.sent[0].To != humanNumber {
		t.Errorf("notification went to %s, want human channel", sender.sent[0].To)
	}
	if !strings.Contains(sender.sent[0].Body, "+15559999") {
		t.Errorf("notification body %q missing user number", sender.sent[0].Body)
	}
}

func TestManagerAccept(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{}
	manager := NewManager(store, sender, humanNumber)
	ctx := context.Background()

	if _, err := manager.Start(ctx, "+15559999", "English"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := manager.Accept(ctx, "+15559999", humanNumber); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	req := store.requests["+15559999"]
	if req.Status != models.HandoverOpen {
		t.Errorf("status = %s, want OPEN", req.Status)
	}
	if req.VolunteerNumber == nil || *req.VolunteerNumber != humanNumber {
		t.Error("volunteer number not recorded")
	}
	if store.answered[humanNumber] != 1 {
		t.Errorf("answered counter = %d, want 1", store.answered[humanNumber])
	}

	last := sender.sent[len(sender.sent)-1]
	if last.To != "+15559999" {
		t.Errorf("joined notice went to %s, want the user", last.To)
	}

	// First accepted wins: a second accept must not reassign.
	if err := manager.Accept(ctx, "+15559999", "+15550002"); err == nil {
		t.Error("second Accept() succeeded, want failure")
	}
	if *req.VolunteerNumber != humanNumber {
		t.Errorf("volunteer reassigned to %s", *req.VolunteerNumber)
	}
}

func TestManagerForwardReopensClosedThread(t *testing.T) {
	store := newFakeStore()
	sender := &fakeSender{}
	manager := NewManager(store, sender, humanNumber)
	ctx := context.Background()

	if _, err := manager.Start(ctx, "+15559999", "English"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := manager.Accept(ctx, "+15559999", humanNumber); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if err := manager.Close(ctx, "+15559999"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := manager.Forward(ctx, "+15559999", "are you still there?"); err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if store.requests["+15559999"].Status != models.HandoverOpen {
		t.Errorf("status = %s, want OPEN after reopen", store.requests["+15559999"].Status)
	}

	// The envelope format message follows the relayed text.
	last := sender.sent[len(sender.sent)-1]
	if !strings.HasPrefix(last.Body, "HANDOVER RESPONSE") {
		t.Errorf("last message %q is not the reply envelope", last.Body)
	}
}

func TestManagerAnswer(t *testing.T) {
	sender := &fakeSender{}
	manager := NewManager(newFakeStore(), sender, humanNumber)

	if err := manager.Answer(context.Background(), "+15559999", "Drink fluids and rest."); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sender.sent))
	}
	if sender.sent[0].To != "+15559999" || sender.sent[0].Body != "Drink fluids and rest." {
		t.Errorf("answer not forwarded to user: %+v", sender.sent[0])
	}
	if sender.sent[1].To != humanNumber || !strings.Contains(sender.sent[1].Body, "thanks") {
		t.Errorf("delivery confirmation missing: %+v", sender.sent[1])
	}
}
