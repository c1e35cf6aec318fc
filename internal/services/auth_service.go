package services

import (
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/models"
	applog "orderdesk/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// AuthService verifies ID tokens issued by the identity provider and extracts the principal.
type AuthService struct {
	jwtSecret  []byte
	issuer     string
	tokenDurat time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService. An empty issuer disables the iss check.
func NewAuthService(jwtSecret, issuer string, logger *zap.Logger) *AuthService {
	logger = applog.OrNop(logger)
	return &AuthService{
		jwtSecret:  []byte(jwtSecret),
		issuer:     issuer,
		tokenDurat: time.Hour,
		logger:     logger,
	}
}

// ValidateToken parses and verifies an ID token, returning the asserted principal.
func (s *AuthService) ValidateToken(tokenString string) (*models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}

	principal := principalFromClaims(claims)
	if principal.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return principal, nil
}

// IssueToken signs an ID token for principal. Used by local tooling and tests standing in for the provider.
func (s *AuthService) IssueToken(principal models.Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": principal.Subject,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenDurat).Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	if principal.Name != "" {
		claims["name"] = principal.Name
	}
	if principal.Email != "" {
		claims["email"] = principal.Email
	}
	if principal.PhoneNumber != "" {
		claims["phone_number"] = principal.PhoneNumber
	}
	if principal.Country != "" {
		claims["address"] = map[string]interface{}{"country": principal.Country}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

func principalFromClaims(claims jwt.MapClaims) *models.Principal {
	p := &models.Principal{
		Subject:     stringClaim(claims, "sub"),
		Name:        stringClaim(claims, "name"),
		Email:       stringClaim(claims, "email"),
		PhoneNumber: stringClaim(claims, "phone_number"),
	}
	if address, ok := claims["address"].(map[string]interface{}); ok {
		if country, ok := address["country"].(string); ok {
			p.Country = country
		}
	}
	return p
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
