package storegate

import (
	"errors"
	"time"

	"github.com/arvindpj/storegate/password"
	"github.com/arvindpj/storegate/session"
)

// Config carries every tunable of the auth core. Build validates it once;
// after that it is treated as immutable.
type Config struct {
	// Secret keys the session HMAC. There is no default and no fallback:
	// an empty secret fails Validate and the process must not serve.
	Secret string

	// SessionTTL bounds how long an issued token stays valid. Because
	// sessions are stateless this is also the revocation horizon for a
	// stolen token.
	SessionTTL time.Duration

	// CookieName defaults to [session.DefaultCookieName].
	CookieName string

	Password  password.Config
	RateLimit RateLimitConfig

	Audit AuditConfig
}

// RateLimitConfig tunes the Redis failed-login limiter. Disabled configs
// (or a nil Redis client on the builder) skip limiting entirely.
type RateLimitConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

// AuditConfig tunes the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// DefaultSessionTTL is seven days, matching the dashboard's historical
// behavior.
const DefaultSessionTTL = 7 * 24 * time.Hour

// DefaultConfig returns the production baseline. The Secret is left empty
// on purpose; it must come from deployment configuration.
func DefaultConfig() Config {
	return Config{
		SessionTTL: DefaultSessionTTL,
		CookieName: session.DefaultCookieName,
		Password:   password.DefaultConfig(),
		RateLimit: RateLimitConfig{
			Enabled:          true,
			EnableIPThrottle: true,
			MaxLoginAttempts: 10,
			LoginCooldown:    15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate checks the config for fatal misconfiguration. A missing secret is
// fatal by design: signing sessions with an empty key would let anyone mint
// admin tokens.
func (c Config) Validate() error {
	if c.Secret == "" {
		return errors.New("config: session secret is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session ttl must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxLoginAttempts <= 0 {
			return errors.New("config: max login attempts must be positive")
		}
		if c.RateLimit.LoginCooldown <= 0 {
			return errors.New("config: login cooldown must be positive")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("config: audit buffer size must not be negative")
	}
	if _, err := password.NewHasher(c.Password); err != nil {
		return err
	}
	return nil
}
