// Package tokenclaims decodes storefront bearer tokens without verifying them.
//
// The storefront backend is the only party that can verify a token. The
// shell decodes the payload for two hints: whether the token has already
// expired, and which display name to show. Nothing decoded here may be used
// as an authorization decision.
package tokenclaims

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now returns the current UTC timestamp.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Config configures the Inspector.
type Config struct {
	Clock  Clock
	Leeway time.Duration
}

// Sentinel errors exposed by the inspector.
var (
	ErrMissingToken   = errors.New("token.claims.missing_token")
	ErrMalformedToken = errors.New("token.claims.malformed")
	ErrTokenExpired   = errors.New("token.claims.expired")
)

// Claims are the fields the storefront backend places in its tokens.
type Claims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// GetUserID returns the user identifier, falling back to the subject.
func (claims *Claims) GetUserID() string {
	if claims == nil {
		return ""
	}
	if claims.UserID != "" {
		return claims.UserID
	}
	return claims.Subject
}

// GetDisplayName returns fullName, then name.
func (claims *Claims) GetDisplayName() string {
	if claims == nil {
		return ""
	}
	if strings.TrimSpace(claims.FullName) != "" {
		return claims.FullName
	}
	return strings.TrimSpace(claims.Name)
}

// GetExpiresAt returns the expiry timestamp, or the zero time when absent.
func (claims *Claims) GetExpiresAt() time.Time {
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Inspector decodes token payloads and reports expiry.
type Inspector struct {
	parser *jwt.Parser
	clock  Clock
	leeway time.Duration
}

// New constructs an Inspector, defaulting to the system clock.
func New(configuration Config) *Inspector {
	clock := configuration.Clock
	if clock == nil {
		clock = systemClock{}
	}
	leeway := configuration.Leeway
	if leeway < 0 {
		leeway = 0
	}
	return &Inspector{
		parser: jwt.NewParser(),
		clock:  clock,
		leeway: leeway,
	}
}

// Decode returns the unverified claims without checking expiry.
func (inspector *Inspector) Decode(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("token.claims.decode: %w", ErrMissingToken)
	}
	claims := &Claims{}
	if _, _, parseErr := inspector.parser.ParseUnverified(tokenString, claims); parseErr != nil {
		return nil, fmt.Errorf("token.claims.decode: %w", ErrMalformedToken)
	}
	return claims, nil
}

// Inspect decodes the token and rejects it when its exp claim has passed.
func (inspector *Inspector) Inspect(tokenString string) (*Claims, error) {
	claims, decodeErr := inspector.Decode(tokenString)
	if decodeErr != nil {
		return nil, decodeErr
	}
	expiresAt := claims.GetExpiresAt()
	if !expiresAt.IsZero() && inspector.clock.Now().After(expiresAt.Add(inspector.leeway)) {
		return claims, fmt.Errorf("token.claims.inspect: %w", ErrTokenExpired)
	}
	return claims, nil
}

// Expired reports whether the token is JWT-shaped and past its expiry.
// Opaque tokens are never considered expired.
func (inspector *Inspector) Expired(tokenString string) bool {
	_, err := inspector.Inspect(tokenString)
	return errors.Is(err, ErrTokenExpired)
}
