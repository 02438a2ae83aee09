package handlers

import (
	"log"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/queue"
	"github.com/quizsquirrel/social-api/internal/service"
	"github.com/quizsquirrel/social-api/internal/transfer"
)

type PublishHandler struct {
	ps          service.PublishService
	ss          service.SyncService
	asynqClient *asynq.Client
	cfg         config.Config
}

func NewPublishHandler(ps service.PublishService, ss service.SyncService, asynqClient *asynq.Client, cfg config.Config) *PublishHandler {
	return &PublishHandler{
		ps:          ps,
		ss:          ss,
		asynqClient: asynqClient,
		cfg:         cfg,
	}
}

// Publish pushes a quiz to one of the user's connections. The response body
// has the same shape whether the publish worked or not; failures use 422 so
// clients can show the message without parsing status text.
func (h *PublishHandler) Publish(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platformName := c.Params("platform")

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result := h.ps.Publish(c.Context(), userID, normalizePlatform(platformName), &req)
	if !result.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PublishHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.ps.ListPosts(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PublishHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	err := h.ps.RemovePost(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// SyncPost refreshes one post's engagement counters on demand.
func (h *PublishHandler) SyncPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	post, err := h.ss.SyncPost(c.Context(), userID, req.PostID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to sync post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// SyncAll queues a background refresh of every recent post the user has.
func (h *PublishHandler) SyncAll(c *fiber.Ctx) error {
	userID := GetUserID(c)

	payload := queue.SyncEngagementPayload{UserID: userID}
	if err := queue.EnqueueSync(h.asynqClient, payload, 0); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to queue sync",
		})
	}

	return c.SendStatus(fiber.StatusAccepted)
}
