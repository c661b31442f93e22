package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/gofiber/fiber/v3"

	"covidbot/internal/messaging"
)

// Resolver produces the bot's reply for one inbound user message.
type Resolver interface {
	Resolve(ctx context.Context, userID, query string) (string, error)
}

// AskHandler handles the inbound WhatsApp webhook.
type AskHandler struct {
	resolver Resolver
	sender   messaging.Sender
	language string
}

// NewAskHandler creates a new webhook handler.
func NewAskHandler(resolver Resolver, sender messaging.Sender, language string) *AskHandler {
	return &AskHandler{resolver: resolver, sender: sender, language: language}
}

// Ask receives one Twilio WhatsApp message. The reply goes out through the
// messaging API rather than the webhook response, so the handler always acks
// with a plain body.
func (h *AskHandler) Ask(c fiber.Ctx) error {
	body := c.FormValue("Body")
	from := strings.TrimPrefix(c.FormValue("From"), "whatsapp:")
	if from == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing sender")
	}

	numMedia, _ := strconv.Atoi(c.FormValue("NumMedia"))
	if len(body) == 0 && numMedia > 0 {
		h.reply(from, messaging.MediaNotSupported())
		return c.SendString("OK")
	}

	// Language detection needs at least 3 characters; shorter messages
	// (menu picks like "2", "ok") go straight to the bot.
	if len([]rune(body)) > 2 {
		if notice := h.languageNotice(body); notice != "" {
			h.reply(from, notice)
			return c.SendString("OK")
		}
	}

	answer, err := h.resolver.Resolve(c.Context(), from, body)
	if err != nil {
		log.Printf("resolve failed for %s: %v", from, err)
		h.reply(from, messaging.GenericApology())
		return c.SendString("Not OK!")
	}

	// An empty answer means the message was forwarded to a human and the
	// user should not hear from the bot at all.
	if answer != "" {
		h.reply(from, answer)
	}
	return c.SendString("OK")
}

// languageNotice returns the refusal to send when the message is reliably in
// an unsupported language, or "" when the bot should answer it. Unreliable
// guesses pass through: short English questions score low on every language.
func (h *AskHandler) languageNotice(body string) string {
	info := whatlanggo.Detect(body)
	if !info.IsReliable() {
		return ""
	}
	name := info.Lang.String()
	if name == h.language {
		return ""
	}
	if name == "" {
		return messaging.UnknownLanguage()
	}
	return messaging.UnsupportedLanguage(name)
}

func (h *AskHandler) reply(to, body string) {
	if err := h.sender.Send(to, body); err != nil {
		log.Printf("failed to send reply to %s: %v", to, err)
	}
}
