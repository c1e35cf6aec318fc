package handlers

import (
	"strconv"

	"orderdesk/internal/middleware"
	"orderdesk/internal/models"
	"orderdesk/internal/services"
	applog "orderdesk/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	logger = applog.OrNop(logger)
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterPublicRoutes registers routes that need no authentication.
func (h *OrderHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/orders/config", h.HandleGetConfiguration)
}

// RegisterRoutes registers the order routes. router must already authenticate callers.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/upcoming", h.HandleGetUpcomingOrders)
	orderRoutes.Get("/past", h.HandleGetPastOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
}

// HandleGetConfiguration returns the catalog lists for client-side forms.
func (h *OrderHandler) HandleGetConfiguration(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, "", h.service.Configuration())
}

// HandleCreateOrder places a new order for the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.CreateOrder(c.UserContext(), middleware.UsernameFrom(c), req)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to create order")
	}
	return success(c, fiber.StatusCreated, "Order created successfully", order)
}

// HandleGetOrders lists every order of the caller.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.UserContext(), middleware.UsernameFrom(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to fetch orders")
	}
	return success(c, fiber.StatusOK, "", orders)
}

// HandleGetUpcomingOrders lists the caller's orders dated today or later.
func (h *OrderHandler) HandleGetUpcomingOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUpcoming(c.UserContext(), middleware.UsernameFrom(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to fetch upcoming orders")
	}
	return success(c, fiber.StatusOK, "", orders)
}

// HandleGetPastOrders lists the caller's orders dated before today.
func (h *OrderHandler) HandleGetPastOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListPast(c.UserContext(), middleware.UsernameFrom(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to fetch past orders")
	}
	return success(c, fiber.StatusOK, "", orders)
}

// HandleGetOrderByID returns one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, ok := parseOrderID(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "Invalid order id")
	}
	order, err := h.service.GetByID(c.UserContext(), middleware.UsernameFrom(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to fetch order")
	}
	return success(c, fiber.StatusOK, "", order)
}

// HandleDeleteOrder cancels one of the caller's orders.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, ok := parseOrderID(c)
	if !ok {
		return failure(c, fiber.StatusBadRequest, "Invalid order id")
	}
	if err := h.service.DeleteOrder(c.UserContext(), middleware.UsernameFrom(c), id); err != nil {
		return writeError(c, h.logger, err, "Failed to delete order")
	}
	return success(c, fiber.StatusOK, "Order deleted successfully", "Order removed")
}

func parseOrderID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
