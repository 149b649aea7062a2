package auth

import (
	"errors"
	"fmt"
	"time"

	"newsdesk/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid means the token is malformed, tampered with, or signed with another secret.
	ErrTokenInvalid = errors.New("invalid session token")
	// ErrTokenExpired means the signature is good but expiresAt has passed.
	ErrTokenExpired = errors.New("session token expired")
)

// DefaultTokenTTL is the lifetime of a session token and of its cookie.
const DefaultTokenTTL = 24 * time.Hour

type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is what a verified token proves.
type Session struct {
	UserID    string
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and verifies stateless HS256 session tokens. Nothing is stored
// server-side, so there is no revocation: rotating the secret invalidates every
// outstanding token at once, and logout only clears the client's cookie.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	parser    *jwt.Parser
	validator *jwt.Validator
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return NewTokenServiceWithClock(secret, ttl, time.Now)
}

func NewTokenServiceWithClock(secret []byte, ttl time.Duration, now func() time.Time) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		validator: jwt.NewValidator(
			jwt.WithTimeFunc(now),
			jwt.WithExpirationRequired(),
		),
	}
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue mints a token for user that expires TTL after now.
func (s *TokenService) Issue(user *models.User) (string, error) {
	issued := s.now()
	claims := &Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first and only then the expiry, so a token signed with
// a different secret is always ErrTokenInvalid whatever its claims say.
func (s *TokenService) Verify(raw string) (*Session, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if err := s.validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}

	return &Session{
		UserID:    claims.Subject,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
