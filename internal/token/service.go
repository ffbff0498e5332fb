// Package token issues and verifies the signed session credential.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired indicates the credential's lifetime has elapsed.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid indicates structural tamper, a bad signature or an
	// otherwise unusable credential.
	ErrInvalid = errors.New("token: invalid")
)

// Claims is the decoded payload of a verified credential. The role is
// a snapshot at issuance time; the resolver treats the store as
// authoritative for authorization.
type Claims struct {
	UserID    int64
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type signedClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 session tokens. The secret is
// injected at construction so tests and environments can swap it
// without process-wide state.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// DefaultTTL is the 3-day session lifetime.
const DefaultTTL = 72 * time.Hour

// NewService constructs a Service. A non-positive ttl falls back to
// DefaultTTL.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// TTL exposes the configured credential lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a credential embedding the identity id and role with the
// configured expiry horizon.
func (s *Service) Issue(userID int64, role string) (string, error) {
	now := time.Now()
	claims := signedClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature integrity and expiry. Any tamper yields
// ErrInvalid, an elapsed lifetime ErrExpired; there is no partial
// result.
func (s *Service) Verify(raw string) (Claims, error) {
	var claims signedClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Claims{}, ErrInvalid
	}
	out := Claims{UserID: userID, Role: claims.Role}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
