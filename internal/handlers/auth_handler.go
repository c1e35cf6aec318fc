package handlers

import (
	"orderdesk/internal/middleware"
	"orderdesk/internal/services"
	applog "orderdesk/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler exposes the session-facing identity endpoints.
type AuthHandler struct {
	identity *services.IdentityService
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identity *services.IdentityService, logger *zap.Logger) *AuthHandler {
	logger = applog.OrNop(logger)
	return &AuthHandler{
		identity: identity,
		logger:   logger,
	}
}

// RegisterPublicRoutes registers routes that need no authentication.
func (h *AuthHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Post("/auth/logout", h.HandleLogout)
}

// RegisterRoutes registers the authenticated auth routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/auth/user", h.HandleCurrentUser)
}

// HandleCurrentUser returns the stored record of the caller. AttachUser has
// already provisioned it on first sight.
func (h *AuthHandler) HandleCurrentUser(c *fiber.Ctx) error {
	profile, err := h.identity.GetProfile(c.UserContext(), middleware.UsernameFrom(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to fetch user")
	}
	profile.OrderCount = nil
	return success(c, fiber.StatusOK, "", profile)
}

// HandleLogout acknowledges a logout. Tokens are held by the client, so there is no server session to drop.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, "Logged out successfully", nil)
}
