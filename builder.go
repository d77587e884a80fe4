package storegate

import (
	"errors"

	"github.com/arvindpj/storegate/internal/rate"
	"github.com/arvindpj/storegate/password"
	"github.com/arvindpj/storegate/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the engine's methods are called.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  UserStore
	sink   AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's config wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets just the HMAC secret on the current config.
func (b *Builder) WithSecret(secret string) *Builder {
	b.config.Secret = secret
	return b
}

// WithRedis provides the Redis client backing the login rate limiter.
// Without one, rate limiting is skipped even when enabled in config.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore provides the credential store. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithAuditSink provides the audit destination. Defaults to [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// Build validates the configuration and wires the engine. It fails fast on
// a missing secret or user store; a process that cannot sign sessions must
// not start.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder: Build called twice")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("builder: user store is required")
	}

	codec, err := session.NewCodec(b.config.Secret)
	if err != nil {
		return nil, err
	}
	hasher, err := password.NewHasher(b.config.Password)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if b.redis != nil && b.config.RateLimit.Enabled {
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: b.config.RateLimit.EnableIPThrottle,
			MaxLoginAttempts: b.config.RateLimit.MaxLoginAttempts,
			LoginCooldown:    b.config.RateLimit.LoginCooldown,
		})
	}

	b.built = true

	return &Engine{
		config:  b.config,
		users:   b.users,
		hasher:  hasher,
		codec:   codec,
		cookies: session.NewCookieTransport(b.config.CookieName),
		limiter: limiter,
		audit:   newAuditDispatcher(b.config.Audit, b.sink),
	}, nil
}
