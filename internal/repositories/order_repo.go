package repositories

import (
	"context"
	"time"

	"orderdesk/internal/models"
)

// OrderRepository defines the interface for order data access.
// Every read is scoped to the owning username.
type OrderRepository interface {
	// Create stores the order and assigns its ID.
	Create(ctx context.Context, order *models.Order) error
	// ListByUser returns all orders of the user, newest purchase date first.
	ListByUser(ctx context.Context, username string) ([]models.Order, error)
	// ListUpcoming returns orders dated on or after asOf, soonest first.
	ListUpcoming(ctx context.Context, username string, asOf time.Time) ([]models.Order, error)
	// ListPast returns orders dated before asOf, most recent first.
	ListPast(ctx context.Context, username string, asOf time.Time) ([]models.Order, error)
	FindByUserAndID(ctx context.Context, username string, id uint64) (*models.Order, error)
	CountByUser(ctx context.Context, username string) (int64, error)
	Delete(ctx context.Context, order *models.Order) error
}
