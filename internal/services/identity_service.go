package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orderdesk/internal/models"
	"orderdesk/internal/repositories"
	applog "orderdesk/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// IdentityService ties externally authenticated principals to local user records.
type IdentityService struct {
	userRepo  repositories.UserRepository
	orderRepo repositories.OrderRepository
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewIdentityService creates a new IdentityService. orderRepo may be nil; profiles then carry no order count.
func NewIdentityService(userRepo repositories.UserRepository, orderRepo repositories.OrderRepository, logger *zap.Logger) *IdentityService {
	logger = applog.OrNop(logger)
	return &IdentityService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ResolveOrCreateUser returns the stored user for the principal, creating it on first sight.
// An existing record is returned unchanged.
func (s *IdentityService) ResolveOrCreateUser(ctx context.Context, principal models.Principal) (*models.User, error) {
	if err := s.checkPrincipal(principal); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, principal.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return s.create(ctx, principal)
}

// SyncProfile creates the user on first sight, otherwise overwrites the stored
// profile with the provider's latest values.
func (s *IdentityService) SyncProfile(ctx context.Context, principal models.Principal) (*models.User, error) {
	if err := s.checkPrincipal(principal); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, principal.Subject)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return s.create(ctx, principal)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	updated := userFromPrincipal(principal)
	updated.CreatedAt = existing.CreatedAt
	if err := s.userRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ConflictError(MsgEmailAlreadyTaken, err)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.logger.Info("user profile synced", zap.String("username", updated.Username))
	return s.userRepo.GetByUsername(ctx, principal.Subject)
}

// GetProfile returns the stored profile of username together with its order count.
func (s *IdentityService) GetProfile(ctx context.Context, username string) (*models.UserProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, NotFoundError(MsgUserNotFound, err)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	profile := user.ToProfile()
	if s.orderRepo != nil {
		count, err := s.orderRepo.CountByUser(ctx, username)
		if err != nil {
			return nil, err
		}
		profile.OrderCount = &count
	}
	return &profile, nil
}

// DeleteAccount removes the user together with all of the user's orders.
func (s *IdentityService) DeleteAccount(ctx context.Context, username string) error {
	if err := s.userRepo.Delete(ctx, username); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return NotFoundError(MsgUserNotFound, err)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

// create inserts a new user unless the email already belongs to someone else.
// A duplicate key on insert means either a concurrent first login for the same
// subject won the race, or the email was claimed in between.
func (s *IdentityService) create(ctx context.Context, principal models.Principal) (*models.User, error) {
	user := userFromPrincipal(principal)
	if user.Email != nil {
		owner, err := s.userRepo.GetByEmail(ctx, *user.Email)
		switch {
		case err == nil && owner.Username == user.Username:
			return owner, nil
		case err == nil:
			return nil, ConflictError(MsgEmailAlreadyTaken, repositories.ErrDuplicateKey)
		case !errors.Is(err, repositories.ErrUserNotFound):
			return nil, fmt.Errorf("failed to look up email owner: %w", err)
		}
	}

	err := s.userRepo.Create(ctx, user)
	if err == nil {
		s.logger.Info("user provisioned", zap.String("username", user.Username))
		return user, nil
	}
	if !errors.Is(err, repositories.ErrDuplicateKey) {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	existing, lookupErr := s.userRepo.GetByUsername(ctx, principal.Subject)
	if lookupErr == nil {
		return existing, nil
	}
	if errors.Is(lookupErr, repositories.ErrUserNotFound) {
		return nil, ConflictError(MsgEmailAlreadyTaken, err)
	}
	return nil, fmt.Errorf("failed to look up user after conflict: %w", lookupErr)
}

func (s *IdentityService) checkPrincipal(principal models.Principal) error {
	if err := s.validate.Struct(principal); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return ValidationError(fmt.Sprintf("Invalid identity: field '%s' failed on the '%s' tag", fieldErrs[0].Field(), fieldErrs[0].Tag()))
		}
		return ValidationError("Invalid identity")
	}
	return nil
}

func userFromPrincipal(p models.Principal) *models.User {
	user := &models.User{
		Username:      p.Subject,
		Name:          strings.TrimSpace(p.Name),
		ContactNumber: strings.TrimSpace(p.PhoneNumber),
		Country:       strings.TrimSpace(p.Country),
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		user.Email = &email
	}
	if user.ContactNumber == "" {
		user.ContactNumber = models.ContactNumberUnavailable
	}
	if user.Country == "" {
		user.Country = models.CountryUnknown
	}
	return user
}
