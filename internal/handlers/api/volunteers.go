package api

import (
	"github.com/gofiber/fiber/v3"

	"covidbot/internal/db"
)

// VolunteerHandler exposes the volunteer roster to administrators.
type VolunteerHandler struct {
	db *db.DB
}

// NewVolunteerHandler creates a new API volunteer handler.
func NewVolunteerHandler(database *db.DB) *VolunteerHandler {
	return &VolunteerHandler{db: database}
}

// List returns volunteers, optionally filtered by a language they speak.
func (h *VolunteerHandler) List(c fiber.Ctx) error {
	if language := c.Query("language", ""); language != "" {
		volunteers, err := h.db.GetVolunteersByLanguage(c.Context(), language)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "failed to fetch volunteers")
		}
		return jsonSuccess(c, volunteers)
	}

	volunteers, err := h.db.GetVolunteers(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch volunteers")
	}
	return jsonSuccess(c, volunteers)
}
