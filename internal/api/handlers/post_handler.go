package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/queue"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/internal/transfer"
)

type PostHandler struct {
	s  service.ScheduledPostService
	sl service.StatusLogService
	q  queue.Enqueuer
}

func NewPostHandler(service service.ScheduledPostService, sl service.StatusLogService, q queue.Enqueuer) *PostHandler {
	return &PostHandler{s: service, sl: sl, q: q}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	post, delay, err := h.s.Create(c.UserContext(), userID, &transfer.PostCreation{
		Caption:      c.FormValue("caption"),
		Platforms:    c.FormValue("platforms"),
		ScheduleTime: c.FormValue("schedule_time"),
		CampaignID:   c.FormValue("campaign_id"),
		BoostEnabled: c.FormValue("boost_enabled") == "true",
	}, form.File["files"])
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The cron batch still picks the post up if the wake-up can't be queued.
	if err := h.q.EnqueuePost(queue.AutoPostPayload{PostID: post.ID}, delay); err != nil {
		slog.Error("failed to enqueue auto-post wake-up", "post_id", post.ID, "error", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post scheduled successfully",
		"post":    post,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Query("id")

	if postID != "" {
		post, err := h.s.PostInfo(c.UserContext(), userID, postID)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error": "Unable to find post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) CancelPost(c *fiber.Ctx) error {
	if err := h.s.Cancel(c.UserContext(), GetUserID(c), c.Query("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to cancel post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) RetryPost(c *fiber.Ctx) error {
	postID := c.Query("id")

	delay, err := h.s.Retry(c.UserContext(), GetUserID(c), postID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Unable to retry post",
		})
	}

	if err := h.q.EnqueuePost(queue.AutoPostPayload{PostID: postID}, delay); err != nil {
		slog.Error("failed to enqueue auto-post wake-up", "post_id", postID, "error", err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) PostLogs(c *fiber.Ctx) error {
	logs, err := h.sl.History(c.UserContext(), GetUserID(c), c.Query("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Unable to list post logs",
		})
	}

	return c.Status(fiber.StatusOK).JSON(logs)
}

func statusFor(err error) int {
	if errors.Is(err, service.ErrPostNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusBadRequest
}
