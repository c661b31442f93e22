package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"covidbot/internal/db"
	"covidbot/internal/validation"
)

// HandoverHandler exposes handover requests, the blacklist and the query
// outcome counters to administrators.
type HandoverHandler struct {
	db *db.DB
}

// NewHandoverHandler creates a new API handover handler.
func NewHandoverHandler(database *db.DB) *HandoverHandler {
	return &HandoverHandler{db: database}
}

// ListRequests returns every handover request, newest first.
func (h *HandoverHandler) ListRequests(c fiber.Ctx) error {
	requests, err := h.db.GetHandoverRequests(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch handover requests")
	}
	return jsonSuccess(c, requests)
}

// ListBlacklist returns all misconduct reports.
func (h *HandoverHandler) ListBlacklist(c fiber.Ctx) error {
	entries, err := h.db.GetBlacklist(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch blacklist")
	}
	return jsonSuccess(c, entries)
}

// AddToBlacklist records a misconduct report against a phone number.
func (h *HandoverHandler) AddToBlacklist(c fiber.Ctx) error {
	var body struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	number := validation.NormalizePhoneNumber(body.PhoneNumber)
	if !validation.ValidatePhoneNumber(number) {
		return jsonError(c, fiber.StatusBadRequest, "invalid phone number")
	}

	if err := h.db.AddToBlacklist(c.Context(), number); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to add to blacklist")
	}
	return jsonCreated(c, fiber.Map{"phone_number": number})
}

// ListOutcomes returns the per-outcome query counters backing the metrics
// endpoint.
func (h *HandoverHandler) ListOutcomes(c fiber.Ctx) error {
	outcomes, err := h.db.GetAllQueryOutcomes(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch query outcomes")
	}
	return jsonSuccess(c, outcomes)
}
