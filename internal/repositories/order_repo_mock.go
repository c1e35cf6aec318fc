package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"orderdesk/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[uint64]models.Order
	nextID uint64
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[uint64]models.Order),
	}
}

// Create adds a new order with the next sequential ID.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	order.ID = r.nextID
	order.PurchaseDate = models.DateOf(order.PurchaseDate)
	order.CreatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// ListByUser returns the user's orders, newest purchase date first.
func (r *MockOrderRepository) ListByUser(_ context.Context, username string) ([]models.Order, error) {
	orders := r.filter(username, func(models.Order) bool { return true })
	sortOrders(orders, false)
	return orders, nil
}

// ListUpcoming returns orders dated on or after asOf, soonest first.
func (r *MockOrderRepository) ListUpcoming(_ context.Context, username string, asOf time.Time) ([]models.Order, error) {
	day := models.DateOf(asOf)
	orders := r.filter(username, func(o models.Order) bool { return !o.PurchaseDate.Before(day) })
	sortOrders(orders, true)
	return orders, nil
}

// ListPast returns orders dated before asOf, most recent first.
func (r *MockOrderRepository) ListPast(_ context.Context, username string, asOf time.Time) ([]models.Order, error) {
	day := models.DateOf(asOf)
	orders := r.filter(username, func(o models.Order) bool { return o.PurchaseDate.Before(day) })
	sortOrders(orders, false)
	return orders, nil
}

// FindByUserAndID returns the order only when it belongs to username.
func (r *MockOrderRepository) FindByUserAndID(_ context.Context, username string, id uint64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok || order.Username != username {
		return nil, fmt.Errorf("order %d for %s: %w", id, username, ErrOrderNotFound)
	}
	return &order, nil
}

// CountByUser returns how many orders the user has.
func (r *MockOrderRepository) CountByUser(_ context.Context, username string) (int64, error) {
	return int64(len(r.filter(username, func(models.Order) bool { return true }))), nil
}

// Delete removes the order.
func (r *MockOrderRepository) Delete(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok || stored.Username != order.Username {
		return fmt.Errorf("order %d: %w", order.ID, ErrOrderNotFound)
	}
	delete(r.orders, order.ID)
	return nil
}

// DeleteByUser drops every order of username, mirroring the cascade of the relational store.
func (r *MockOrderRepository) DeleteByUser(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, o := range r.orders {
		if o.Username == username {
			delete(r.orders, id)
		}
	}
}

func (r *MockOrderRepository) filter(username string, keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.Username == username && keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func sortOrders(orders []models.Order, ascending bool) {
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.PurchaseDate.Equal(b.PurchaseDate) {
			if ascending {
				return a.PurchaseDate.Before(b.PurchaseDate)
			}
			return a.PurchaseDate.After(b.PurchaseDate)
		}
		if ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
}
