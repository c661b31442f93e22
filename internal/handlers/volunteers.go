package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"covidbot/internal/db"
	"covidbot/internal/models"
	"covidbot/internal/validation"
)

// VolunteerHandler handles public volunteer sign-up.
type VolunteerHandler struct {
	db *db.DB
}

// NewVolunteerHandler creates a new volunteer handler.
func NewVolunteerHandler(database *db.DB) *VolunteerHandler {
	return &VolunteerHandler{db: database}
}

// Register adds a phone number to the handover volunteer list. The form
// carries full_name, phone_number and a comma-separated languages field.
func (h *VolunteerHandler) Register(c fiber.Ctx) error {
	fullName := c.FormValue("full_name")
	phoneNumber := c.FormValue("phone_number")
	langs := validation.ParseLanguages(c.FormValue("languages"))

	if fullName == "" || phoneNumber == "" || len(langs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "phone number or/and languages are empty!")
	}

	phoneNumber = validation.NormalizePhoneNumber(phoneNumber)
	if !validation.ValidatePhoneNumber(phoneNumber) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid phone number")
	}

	v := &models.Volunteer{
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		Languages:   langs,
	}
	if err := h.db.CreateVolunteer(c.Context(), v); err != nil {
		if errors.Is(err, db.ErrDuplicateVolunteer) {
			return c.JSON(fiber.Map{
				"message": "This number is already registered to the list of volunteers!",
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Volunteer id: %s", v.ID),
	})
}
