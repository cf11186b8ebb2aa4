package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type BatchRunner interface {
	Run(ctx context.Context) (*transfer.BatchSummary, error)
}

type AutoPostHandler struct {
	runner BatchRunner
}

func NewAutoPostHandler(runner BatchRunner) *AutoPostHandler {
	return &AutoPostHandler{runner: runner}
}

// Trigger runs one delivery batch. Only an enumeration failure is an HTTP error.
func (h *AutoPostHandler) Trigger(c *fiber.Ctx) error {
	summary, err := h.runner.Run(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
