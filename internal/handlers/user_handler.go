package handlers

import (
	"orderdesk/internal/middleware"
	"orderdesk/internal/services"
	applog "orderdesk/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for the caller's profile.
type UserHandler struct {
	identity *services.IdentityService
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(identity *services.IdentityService, logger *zap.Logger) *UserHandler {
	logger = applog.OrNop(logger)
	return &UserHandler{
		identity: identity,
		logger:   logger,
	}
}

// RegisterRoutes registers the profile routes. router must already authenticate callers.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/user")
	userRoutes.Get("/profile", h.HandleGetProfile)
	userRoutes.Put("/profile/sync", h.HandleSyncProfile)
	userRoutes.Delete("/profile", h.HandleDeleteProfile)
}

// HandleGetProfile returns the stored profile of the caller.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.identity.GetProfile(c.UserContext(), middleware.UsernameFrom(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to fetch user profile")
	}
	return success(c, fiber.StatusOK, "", profile)
}

// HandleSyncProfile overwrites the stored profile with the identity provider's current claims.
func (h *UserHandler) HandleSyncProfile(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		return failure(c, fiber.StatusUnauthorized, "User not authenticated")
	}
	user, err := h.identity.SyncProfile(c.UserContext(), *principal)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to sync user profile")
	}
	return success(c, fiber.StatusOK, "Profile synced", user.ToProfile())
}

// HandleDeleteProfile removes the caller's account and orders.
func (h *UserHandler) HandleDeleteProfile(c *fiber.Ctx) error {
	if err := h.identity.DeleteAccount(c.UserContext(), middleware.UsernameFrom(c)); err != nil {
		return writeError(c, h.logger, err, "Failed to delete user profile")
	}
	return success(c, fiber.StatusOK, "Account deleted", nil)
}
