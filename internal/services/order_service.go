package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/catalog"
	"orderdesk/internal/models"
	"orderdesk/internal/repositories"
	applog "orderdesk/pkg/logger"

	"go.uber.org/zap"
)

// OrderService handles business logic related to orders.
// Every operation is scoped to the calling user's own orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	catalog   *catalog.Catalog
	validator *OrderValidator
	publisher EventPublisher
	now       func() time.Time
	logger    *zap.Logger
}

// OrderServiceOption customises an OrderService.
type OrderServiceOption func(*OrderService)

// WithClock sets the time source used to decide what "today" is.
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPublisher enables order event publication.
func WithPublisher(p EventPublisher) OrderServiceOption {
	return func(s *OrderService) {
		s.publisher = p
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) OrderServiceOption {
	return func(s *OrderService) {
		s.logger = applog.OrNop(l)
	}
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, c *catalog.Catalog, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		catalog:   c,
		validator: NewOrderValidator(c),
		now:       time.Now,
		logger:    applog.OrNop(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Configuration returns the catalog lists for client-side form population.
func (s *OrderService) Configuration() map[string][]string {
	return s.catalog.Lists()
}

// CreateOrder validates req and stores it as a new order owned by username.
func (s *OrderService) CreateOrder(ctx context.Context, username string, req models.OrderRequest) (*models.OrderResponse, error) {
	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, NotFoundError(MsgUserNotFound, err)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.validator.Validate(req); err != nil {
		s.logger.Info("order rejected", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	// Validate has already checked the date format.
	purchaseDate, _ := models.ParseDate(req.PurchaseDate)
	order := &models.Order{
		Username:         username,
		PurchaseDate:     purchaseDate,
		DeliveryTime:     models.StorageTime(req.DeliveryTime),
		DeliveryLocation: req.DeliveryLocation,
		ProductName:      req.ProductName,
		Quantity:         *req.Quantity,
		Message:          req.Message,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}
	s.logger.Info("order created", zap.String("username", username), zap.Uint64("order_id", order.ID))
	s.publish(ctx, EventOrderCreated, order)

	resp := order.ToResponse()
	return &resp, nil
}

// ListAll returns every order of username, newest purchase date first.
func (s *OrderService) ListAll(ctx context.Context, username string) ([]models.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return models.ToResponses(orders), nil
}

// ListUpcoming returns orders dated today or later, soonest first.
func (s *OrderService) ListUpcoming(ctx context.Context, username string) ([]models.OrderResponse, error) {
	orders, err := s.orderRepo.ListUpcoming(ctx, username, s.today())
	if err != nil {
		return nil, err
	}
	return models.ToResponses(orders), nil
}

// ListPast returns orders dated before today, most recent first.
func (s *OrderService) ListPast(ctx context.Context, username string) ([]models.OrderResponse, error) {
	orders, err := s.orderRepo.ListPast(ctx, username, s.today())
	if err != nil {
		return nil, err
	}
	return models.ToResponses(orders), nil
}

// GetByID returns one of username's orders. Orders of other users are reported as not found.
func (s *OrderService) GetByID(ctx context.Context, username string, id uint64) (*models.OrderResponse, error) {
	order, err := s.findOwned(ctx, username, id)
	if err != nil {
		return nil, err
	}
	resp := order.ToResponse()
	return &resp, nil
}

// DeleteOrder removes one of username's orders, provided it is dated today or later.
func (s *OrderService) DeleteOrder(ctx context.Context, username string, id uint64) error {
	order, err := s.findOwned(ctx, username, id)
	if err != nil {
		return err
	}
	if order.PurchaseDate.Before(s.today()) {
		return InvalidStateError(MsgCannotDeletePast)
	}
	if err := s.orderRepo.Delete(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return NotFoundError(MsgOrderNotFound, err)
		}
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	s.logger.Info("order deleted", zap.String("username", username), zap.Uint64("order_id", id))
	s.publish(ctx, EventOrderDeleted, order)
	return nil
}

func (s *OrderService) findOwned(ctx context.Context, username string, id uint64) (*models.Order, error) {
	order, err := s.orderRepo.FindByUserAndID(ctx, username, id)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, NotFoundError(MsgOrderNotFound, err)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return order, nil
}

func (s *OrderService) today() time.Time {
	return models.DateOf(s.now())
}

// publish sends an order event. Failures are logged and never fail the operation.
func (s *OrderService) publish(ctx context.Context, event string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := newOrderEvent(event, order, s.now()).marshal()
	if err != nil {
		s.logger.Warn("failed to marshal order event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, event, body); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("event", event), zap.Uint64("order_id", order.ID), zap.Error(err))
	}
}
