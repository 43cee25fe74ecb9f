package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
)

// TokenIssuer is the iss claim of control plane tokens.
const TokenIssuer = "hr-portal-edge"

var (
	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned when no signing secret is configured.
	ErrEmptySecret = errors.New("token secret must not be empty")
)

// TokenService issues and validates HS256 control plane tokens.
type TokenService interface {
	// Issue signs a token for subject with the given scopes.
	Issue(subject string, scopes []string) (string, time.Time, error)
	// Validate parses and verifies a token and returns its claims.
	Validate(tokenString string) (*dto.Claims, error)
}

// ClaimsWithJWT embeds jwt.RegisteredClaims alongside the edge scopes.
type ClaimsWithJWT struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// TokenServiceImpl implements TokenService with a shared secret.
type TokenServiceImpl struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenService creates a token service. ttl defaults to one hour.
func NewTokenService(secret string, ttl time.Duration) (*TokenServiceImpl, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenServiceImpl{
		secretKey: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// Issue signs a token for subject with the given scopes.
func (s *TokenServiceImpl) Issue(subject string, scopes []string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := ClaimsWithJWT{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token and returns its claims.
func (s *TokenServiceImpl) Validate(tokenString string) (*dto.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ClaimsWithJWT{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*ClaimsWithJWT); ok && token.Valid {
		return &dto.Claims{Subject: claims.Subject, Scopes: claims.Scopes}, nil
	}
	return nil, ErrInvalidToken
}
