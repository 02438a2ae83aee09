package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/service"
)

type ConnectionHandler struct {
	cs  service.ConnectionService
	cfg config.Config
}

func NewConnectionHandler(cs service.ConnectionService, cfg config.Config) *ConnectionHandler {
	return &ConnectionHandler{
		cs:  cs,
		cfg: cfg,
	}
}

func (h *ConnectionHandler) ListConnections(c *fiber.Ctx) error {
	userID := GetUserID(c)

	connectionList, err := h.cs.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch connections",
		})
	}

	return c.Status(fiber.StatusOK).JSON(connectionList)
}

func (h *ConnectionHandler) RemoveConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)
	connectionID := c.QueryInt("id", 0)
	purge := c.QueryBool("purge", false)

	err := h.cs.Disconnect(c.Context(), userID, int64(connectionID), purge)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove connection",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// DeactivateAllConnections is the operational response to an encryption key
// rotation. It sits behind the admin middleware.
func (h *ConnectionHandler) DeactivateAllConnections(c *fiber.Ctx) error {
	count, err := h.cs.DeactivateAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to deactivate connections",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deactivated": count,
	})
}
