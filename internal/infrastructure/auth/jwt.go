package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/barter/internal/domain"
)

// Claims represents the JWT claims
type Claims struct {
	AccountID string      `json:"account_id"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Caller converts the claims into the request principal.
func (c *Claims) Caller() *domain.Caller {
	return &domain.Caller{AccountID: c.AccountID, Role: c.Role}
}

// JWTManager signs and verifies HS256 bearer tokens
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate issues a token for the caller. Tokens are normally minted by the
// upstream identity provider; this is used by the CLI and tests.
func (m *JWTManager) Generate(caller *domain.Caller) (string, error) {
	if caller == nil || caller.AccountID == "" {
		return "", fmt.Errorf("%w: caller account id is required", domain.ErrInvalidToken)
	}

	now := time.Now()
	claims := Claims{
		AccountID: caller.AccountID,
		Role:      caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.AccountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, domain.ErrInvalidToken
	}

	if claims.Role == "" {
		claims.Role = domain.RoleMember
	}

	return claims, nil
}
