package handlers

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"covidbot/internal/messaging"
)

type fakeResolver struct {
	lastUser  string
	lastQuery string
	reply     string
	err       error
	calls     int
}

func (r *fakeResolver) Resolve(_ context.Context, userID, query string) (string, error) {
	r.calls++
	r.lastUser = userID
	r.lastQuery = query
	return r.reply, r.err
}

type fakeSender struct {
	sent []struct{ to, body string }
}

func (s *fakeSender) Send(to, body string) error {
	s.sent = append(s.sent, struct{ to, body string }{to, body})
	return nil
}

func newAskApp(resolver *fakeResolver, sender *fakeSender) *fiber.App {
	app := fiber.New()
	handler := NewAskHandler(resolver, sender, "English")
	app.Post("/ask", handler.Ask)
	return app
}

func postForm(t *testing.T, app *fiber.App, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAskRepliesThroughSender(t *testing.T) {
	resolver := &fakeResolver{reply: "Wash your hands regularly 🧼"}
	sender := &fakeSender{}
	app := newAskApp(resolver, sender)

	status, body := postForm(t, app, url.Values{
		"Body": {"how can i protect myself from the virus"},
		"From": {"whatsapp:+15551234567"},
		"To":   {"whatsapp:+15550000000"},
	})

	if status != fiber.StatusOK || body != "OK" {
		t.Fatalf("ack = %d %q, want 200 OK", status, body)
	}
	if resolver.lastUser != "+15551234567" {
		t.Errorf("user id = %q, want whatsapp prefix stripped", resolver.lastUser)
	}
	if len(sender.sent) != 1 || sender.sent[0].body != resolver.reply {
		t.Fatalf("sent = %+v, want the resolved reply", sender.sent)
	}
}

func TestAskMediaOnlyMessage(t *testing.T) {
	resolver := &fakeResolver{}
	sender := &fakeSender{}
	app := newAskApp(resolver, sender)

	_, body := postForm(t, app, url.Values{
		"Body":     {""},
		"NumMedia": {"1"},
		"From":     {"whatsapp:+15551234567"},
	})

	if body != "OK" {
		t.Fatalf("ack = %q, want OK", body)
	}
	if resolver.calls != 0 {
		t.Error("media-only message should not reach the resolver")
	}
	if len(sender.sent) != 1 || sender.sent[0].body != messaging.MediaNotSupported() {
		t.Fatalf("sent = %+v, want the media apology", sender.sent)
	}
}

func TestAskShortMessageSkipsLanguageGate(t *testing.T) {
	// Menu picks like "2" are too short to language-detect and must go
	// straight to the resolver.
	resolver := &fakeResolver{reply: "Masks help reduce spread 😷"}
	sender := &fakeSender{}
	app := newAskApp(resolver, sender)

	postForm(t, app, url.Values{
		"Body": {"2"},
		"From": {"whatsapp:+15551234567"},
	})

	if resolver.calls != 1 || resolver.lastQuery != "2" {
		t.Fatalf("resolver calls = %d query = %q, want the short message resolved", resolver.calls, resolver.lastQuery)
	}
}

func TestAskNonEnglishMessage(t *testing.T) {
	resolver := &fakeResolver{}
	sender := &fakeSender{}
	app := newAskApp(resolver, sender)

	_, body := postForm(t, app, url.Values{
		"Body": {"Привет, как у тебя дела? Надеюсь, всё хорошо у тебя и твоей семьи."},
		"From": {"whatsapp:+15551234567"},
	})

	if body != "OK" {
		t.Fatalf("ack = %q, want OK", body)
	}
	if resolver.calls != 0 {
		t.Error("non-English message should not reach the resolver")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %+v, want one language notice", sender.sent)
	}
}

func TestAskResolverFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("annotation server down")}
	sender := &fakeSender{}
	app := newAskApp(resolver, sender)

	_, body := postForm(t, app, url.Values{
		"Body": {"should i wear a mask outside"},
		"From": {"whatsapp:+15551234567"},
	})

	if body != "Not OK!" {
		t.Fatalf("ack = %q, want Not OK!", body)
	}
	if len(sender.sent) != 1 || sender.sent[0].body != messaging.GenericApology() {
		t.Fatalf("sent = %+v, want the generic apology", sender.sent)
	}
}

func TestAskEmptyReplySendsNothing(t *testing.T) {
	// An empty reply means the message went to the human channel.
	resolver := &fakeResolver{reply: ""}
	sender := &fakeSender{}
	app := newAskApp(resolver, sender)

	_, body := postForm(t, app, url.Values{
		"Body": {"my rent is overdue and i need help"},
		"From": {"whatsapp:+15551234567"},
	})

	if body != "OK" {
		t.Fatalf("ack = %q, want OK", body)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sent = %+v, want nothing", sender.sent)
	}
}

func TestAskMissingSender(t *testing.T) {
	resolver := &fakeResolver{}
	sender := &fakeSender{}
	app := newAskApp(resolver, sender)

	status, _ := postForm(t, app, url.Values{
		"Body": {"hello"},
	})

	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestLanguageNotice(t *testing.T) {
	handler := NewAskHandler(&fakeResolver{}, &fakeSender{}, "English")

	// Everyday English questions often detect as some other language with
	// low confidence; only a reliable foreign detection may refuse.
	english := []string{
		"What are the symptoms of the coronavirus infection?",
		"should i wear a mask outside",
		"how does the virus spread between people",
	}
	for _, text := range english {
		if notice := handler.languageNotice(text); notice != "" {
			t.Errorf("languageNotice(%q) = %q, want the message answered", text, notice)
		}
	}

	if notice := handler.languageNotice("Привет, как у тебя дела? Надеюсь, всё хорошо."); notice == "" {
		t.Error("Cyrillic text should produce a language notice")
	}
}
