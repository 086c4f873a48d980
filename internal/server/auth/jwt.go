package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClass separates short-lived access tokens from long-lived refresh tokens.
type TokenClass string

const (
	AccessToken  TokenClass = "access"
	RefreshToken TokenClass = "refresh"
)

// Claims is the application payload carried by a token, e.g. {"email": "a@example.com"}.
// Values go through JSON, so numbers come back as float64.
type Claims map[string]any

// TokenConfig carries the per-class secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type tokenPolicy struct {
	class  TokenClass
	secret []byte
	ttl    time.Duration
}

// signedClaims is the JWT body: the caller's payload under "data", the class
// under "cls" and the registered iat/exp/jti fields.
type signedClaims struct {
	Class TokenClass `json:"cls"`
	Data  Claims     `json:"data"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens. It holds no mutable state
// and is safe for concurrent use.
type TokenService struct {
	access  tokenPolicy
	refresh tokenPolicy
	now     func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	switch {
	case len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0:
		return nil, fmt.Errorf("%w: token secrets must not be empty", common.ErrInvalidConfig)
	case string(cfg.AccessSecret) == string(cfg.RefreshSecret):
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", common.ErrInvalidConfig)
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, fmt.Errorf("%w: token lifetimes must be positive", common.ErrInvalidConfig)
	case cfg.AccessTTL >= cfg.RefreshTTL:
		return nil, fmt.Errorf("%w: access token lifetime must be shorter than refresh token lifetime", common.ErrInvalidConfig)
	}

	s := &TokenService{
		access:  tokenPolicy{class: AccessToken, secret: cfg.AccessSecret, ttl: cfg.AccessTTL},
		refresh: tokenPolicy{class: RefreshToken, secret: cfg.RefreshSecret, ttl: cfg.RefreshTTL},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) IssueAccessToken(claims Claims) (string, error) {
	return s.issue(s.access, claims)
}

func (s *TokenService) IssueRefreshToken(claims Claims) (string, error) {
	return s.issue(s.refresh, claims)
}

func (s *TokenService) VerifyAccessToken(token string) (Claims, error) {
	return s.verify(s.access, token)
}

func (s *TokenService) VerifyRefreshToken(token string) (Claims, error) {
	return s.verify(s.refresh, token)
}

func (s *TokenService) issue(p tokenPolicy, claims Claims) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, signedClaims{
		Class: p.class,
		Data:  claims,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", p.class, err)
	}
	return signed, nil
}

func (s *TokenService) verify(p tokenPolicy, tokenString string) (Claims, error) {
	claims := &signedClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &common.InvalidTokenError{Reason: tokenErrorReason(err), Err: err}
	}
	if !token.Valid {
		return nil, &common.InvalidTokenError{Reason: common.ErrTokenMalformed}
	}

	// same secret configured for both classes must still not let one pass as the other
	if claims.Class != p.class {
		return nil, &common.InvalidTokenError{
			Reason: common.ErrTokenBadSignature,
			Err:    fmt.Errorf("%q token presented as %q", claims.Class, p.class),
		}
	}

	if claims.Data == nil {
		claims.Data = Claims{}
	}
	return claims.Data, nil
}

func tokenErrorReason(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrTokenBadSignature
	default:
		return common.ErrTokenMalformed
	}
}
