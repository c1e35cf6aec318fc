package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create inserts the order; the database assigns the sequential ID.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.PurchaseDate = models.DateOf(order.PurchaseDate)
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// ListByUser returns every order of the user, newest purchase date first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, username string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("purchase_date DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for %s: %w", username, err)
	}
	return orders, nil
}

// ListUpcoming returns orders dated on or after asOf, soonest first.
func (r *GORMOrderRepository) ListUpcoming(ctx context.Context, username string, asOf time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("username = ? AND purchase_date >= ?", username, models.DateOf(asOf)).
		Order("purchase_date ASC").Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming orders for %s: %w", username, err)
	}
	return orders, nil
}

// ListPast returns orders dated before asOf, most recent first.
func (r *GORMOrderRepository) ListPast(ctx context.Context, username string, asOf time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("username = ? AND purchase_date < ?", username, models.DateOf(asOf)).
		Order("purchase_date DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list past orders for %s: %w", username, err)
	}
	return orders, nil
}

// FindByUserAndID returns the order only when it belongs to username.
func (r *GORMOrderRepository) FindByUserAndID(ctx context.Context, username string, id uint64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "username = ? AND id = ?", username, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d for %s: %w", id, username, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

// CountByUser returns how many orders the user has.
func (r *GORMOrderRepository) CountByUser(ctx context.Context, username string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders for %s: %w", username, err)
	}
	return count, nil
}

// Delete removes the order, scoped to its owner.
func (r *GORMOrderRepository) Delete(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ? AND username = ?", order.ID, order.Username)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d: %w", order.ID, ErrOrderNotFound)
	}
	return nil
}
