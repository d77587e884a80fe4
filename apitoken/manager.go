// Package apitoken issues and verifies HS256 bearer tokens for machine
// clients of the export API. Unlike browser sessions, these are JWTs: the
// consumers are scripts and schedulers that already speak the format.
// A zero TTL produces a non-expiring service token; mint those sparingly.
package apitoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config pins the signing secret and token identity fields.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string

	// TTL for issued tokens. Zero means issued tokens carry no expiry.
	TTL time.Duration

	// Leeway tolerated when validating time claims. Bounded to keep clock
	// skew handling from turning into a bypass.
	Leeway time.Duration
}

// Claims is the token payload: the subject plus an optional scope label.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies service tokens. Immutable after construction.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("apitoken: secret must not be empty")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("apitoken: issuer and audience are required")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("apitoken: ttl must not be negative")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("apitoken: invalid leeway")
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a token for the given subject. scope is a free-form label the
// export handlers use to restrict what the token may fetch.
func (m *Manager) Issue(subject, scope string) (string, error) {
	if subject == "" {
		return "", errors.New("apitoken: subject must not be empty")
	}

	now := time.Now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			Issuer:   m.config.Issuer,
			Audience: jwt.ClaimStrings{m.config.Audience},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.config.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.config.TTL))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// Verify parses and validates a token, enforcing the HS256 method, issuer,
// and audience. Expiry is only enforced when the token carries one.
func (m *Manager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return m.config.Secret, nil
		},
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithLeeway(m.config.Leeway),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("apitoken: invalid token")
	}
	return claims, nil
}
