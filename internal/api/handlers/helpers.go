package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/quizsquirrel/social-api/internal/models"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// normalizePlatform maps the lowercase route segment to the stored platform
// name. Unknown values pass through and fail the connection lookup.
func normalizePlatform(platform string) string {
	switch strings.ToLower(platform) {
	case "tumblr":
		return models.PlatformTumblr
	case "facebook":
		return models.PlatformFacebook
	default:
		return platform
	}
}
