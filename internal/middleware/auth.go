package middleware

import (
	"strings"

	"orderdesk/internal/models"
	"orderdesk/internal/services"
	applog "orderdesk/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	principalKey = "principal"
	usernameKey  = "username"
)

// AuthRequired is a Fiber middleware to check for a valid bearer ID token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not authenticated",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		principal, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired token",
			})
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// AttachUser resolves the authenticated principal to its local user, creating
// the user on first sight. The stored profile is never modified here.
func AttachUser(identity *services.IdentityService, logger *zap.Logger) fiber.Handler {
	logger = applog.OrNop(logger)
	return func(c *fiber.Ctx) error {
		principal := PrincipalFrom(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unable to identify user",
			})
		}

		user, err := identity.ResolveOrCreateUser(c.UserContext(), *principal)
		if err != nil {
			switch services.KindOf(err) {
			case services.KindValidation:
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"message": "Unable to identify user",
				})
			case services.KindConflict:
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"success": false,
					"message": services.MsgEmailAlreadyTaken,
				})
			}
			logger.Error("identity resolution failed", zap.String("subject", principal.Subject), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to resolve user",
			})
		}

		c.Locals(usernameKey, user.Username)
		return c.Next()
	}
}

// PrincipalFrom returns the verified principal stored by AuthRequired.
func PrincipalFrom(c *fiber.Ctx) *models.Principal {
	p, _ := c.Locals(principalKey).(*models.Principal)
	return p
}

// UsernameFrom returns the local username stored by AttachUser.
func UsernameFrom(c *fiber.Ctx) string {
	u, _ := c.Locals(usernameKey).(string)
	return u
}
