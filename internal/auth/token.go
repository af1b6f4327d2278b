package auth

import (
	"errors"
	"fmt"
	"time"

	"task-manager/internal/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "task-manager"

type customClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager for tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user and returns it with its expiry.
func (m *TokenManager) Issue(user entities.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: string(user.Role),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses token and checks signature, expiry and claims. Every failure is ErrInvalidToken.
func (m *TokenManager) Verify(token string) (entities.TokenClaims, error) {
	claims := &customClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return entities.TokenClaims{}, fmt.Errorf("%w: token expired", entities.ErrInvalidToken)
		}
		return entities.TokenClaims{}, entities.ErrInvalidToken
	}

	role := entities.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() || claims.ExpiresAt == nil {
		return entities.TokenClaims{}, entities.ErrInvalidToken
	}

	return entities.TokenClaims{
		Actor:     entities.Actor{ID: claims.Subject, Role: role},
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
