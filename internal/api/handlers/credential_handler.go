package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type CredentialHandler struct {
	s service.CredentialService
}

func NewCredentialHandler(service service.CredentialService) *CredentialHandler {
	return &CredentialHandler{s: service}
}

func (h *CredentialHandler) SaveCredential(c *fiber.Ctx) error {
	var body transfer.CredentialUpdate
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.Save(c.UserContext(), GetUserID(c), body.APIKey, body.ProfileUserID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to save credential",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
