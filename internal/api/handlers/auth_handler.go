package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/service"
	"github.com/quizsquirrel/social-api/internal/transfer"
)

type AuthHandler struct {
	ts  service.TumblrService
	fs  service.FacebookService
	cfg config.Config
}

func NewAuthHandler(ts service.TumblrService, fs service.FacebookService, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		ts:  ts,
		fs:  fs,
		cfg: cfg,
	}
}

// Connect starts the OAuth handshake and sends the browser to the platform's
// authorize page.
func (h *AuthHandler) Connect(c *fiber.Ctx) error {
	var authURL string
	var err error

	switch c.Params("platform") {
	case "tumblr":
		authURL, err = h.ts.AuthorizationURL(c.Context())
	case "facebook":
		authURL, err = h.fs.AuthorizationURL(c.Context())
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to start authorization",
		})
	}

	return c.Redirect(authURL)
}

func (h *AuthHandler) CallbackHandler(c *fiber.Ctx) error {
	userID := GetUserID(c)
	state := c.Query("state")

	switch c.Params("platform") {
	case "tumblr":
		err := h.ts.TumblrCallback(c.Context(), state, c.Query("oauth_token"), c.Query("oauth_verifier"), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}

	case "facebook":
		selection, err := h.fs.FacebookCallback(c.Context(), state, c.Query("code"), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}

		// A single eligible page still goes through selection; the user
		// should see where their quizzes will land.
		redirectURL := fmt.Sprintf("%s/dashboard/connections/select-page?token=%s", h.cfg.FrontendURL, selection.SelectionToken)
		return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)

	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/connections", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

// PendingPages returns the cached page list for the selection dialog.
func (h *AuthHandler) PendingPages(c *fiber.Ctx) error {
	userID := GetUserID(c)

	selection, err := h.fs.PendingSelection(c.Context(), userID, c.Query("token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown or expired page selection",
		})
	}

	return c.Status(fiber.StatusOK).JSON(selection)
}

func (h *AuthHandler) SelectPage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.SelectPageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	connectionID, err := h.fs.SelectPage(c.Context(), userID, req.SelectionToken, req.PageID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect page",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":       connectionID,
		"platform": models.PlatformFacebook,
	})
}
