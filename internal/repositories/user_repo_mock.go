package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"orderdesk/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
// It enforces the same uniqueness rules as the relational schema.
type MockUserRepository struct {
	users  map[string]models.User
	orders *MockOrderRepository
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
// When orders is non-nil, deleting a user also drops that user's orders.
func NewMockUserRepository(orders *MockOrderRepository) *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]models.User),
		orders: orders,
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return fmt.Errorf("failed to create user %s: %w", user.Username, ErrDuplicateKey)
	}
	if r.emailTakenLocked(user.Email, user.Username) {
		return fmt.Errorf("failed to create user %s: %w", user.Username, ErrDuplicateKey)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.Username] = copyUser(*user)
	return nil
}

// Update overwrites the profile fields of an existing user.
func (r *MockUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.Username]
	if !ok {
		return fmt.Errorf("user %s: %w", user.Username, ErrUserNotFound)
	}
	if r.emailTakenLocked(user.Email, user.Username) {
		return fmt.Errorf("failed to update user %s: %w", user.Username, ErrDuplicateKey)
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.ContactNumber = user.ContactNumber
	stored.Country = user.Country
	stored.UpdatedAt = time.Now()
	r.users[user.Username] = copyUser(stored)
	return nil
}

// GetByUsername returns a user by username.
func (r *MockUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user with username %s: %w", username, ErrUserNotFound)
	}
	out := copyUser(user)
	return &out, nil
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email != nil && *user.Email == email {
			out := copyUser(user)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
}

// Delete removes the user and, when linked, the user's orders.
func (r *MockUserRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	if _, ok := r.users[username]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("user %s: %w", username, ErrUserNotFound)
	}
	delete(r.users, username)
	r.mu.Unlock()

	if r.orders != nil {
		r.orders.DeleteByUser(username)
	}
	return nil
}

func (r *MockUserRepository) emailTakenLocked(email *string, owner string) bool {
	if email == nil {
		return false
	}
	for name, u := range r.users {
		if name != owner && u.Email != nil && *u.Email == *email {
			return true
		}
	}
	return false
}

func copyUser(u models.User) models.User {
	u.Orders = nil
	if u.Email != nil {
		email := *u.Email
		u.Email = &email
	}
	return u
}
