package handlers

import (
	"time"

	"orderdesk/internal/middleware"
	"orderdesk/internal/services"
	applog "orderdesk/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Auth     *services.AuthService
	Identity *services.IdentityService
	Orders   *services.OrderService
	Logger   *zap.Logger
	// AllowedOrigin is the browser origin of the frontend. Empty disables CORS.
	AllowedOrigin string
	// RequestLog enables fiber's access log.
	RequestLog bool
}

// NewRouter builds the Fiber app with every route registered.
func NewRouter(cfg RouterConfig) *fiber.App {
	log := applog.OrNop(cfg.Logger)

	app := fiber.New(fiber.Config{
		AppName:               "orderdesk",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if cfg.RequestLog {
		app.Use(logger.New())
	}
	if cfg.AllowedOrigin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigin,
			AllowCredentials: true,
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	orderHandler := NewOrderHandler(cfg.Orders, log)
	authHandler := NewAuthHandler(cfg.Identity, log)
	userHandler := NewUserHandler(cfg.Identity, log)

	api := app.Group("/api")

	// Public routes must be registered before the authenticated group.
	orderHandler.RegisterPublicRoutes(api)
	authHandler.RegisterPublicRoutes(api)

	protected := api.Group("", middleware.AuthRequired(cfg.Auth), middleware.AttachUser(cfg.Identity, log))
	authHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	return app
}
