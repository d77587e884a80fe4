package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

// Limiter enforces per-email and per-IP failed-login budgets using Redis
// counters. The password KDF already bounds online guessing per request;
// the limiter bounds it per account and per source.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{redis: redisClient, config: cfg}
}

// CheckLogin reports whether the email+IP pair is still within the attempt
// budget. Returns ErrRateLimited when exhausted.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, loginEmailKey(email)); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, loginIPKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

// IncrementLogin records a failed attempt for the email+IP pair. Returns
// ErrRateLimited when the increment crosses the budget.
func (l *Limiter) IncrementLogin(ctx context.Context, email, ip string) error {
	count, err := l.incrementWithTTL(ctx, loginEmailKey(email))
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err = l.incrementWithTTL(ctx, loginIPKey(ip))
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxLoginAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// ResetLogin clears the counters after a successful login or an admin
// password change.
func (l *Limiter) ResetLogin(ctx context.Context, email, ip string) error {
	keys := []string{loginEmailKey(email)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, loginIPKey(ip))
	}
	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// LoginAttempts returns the current counter for an email. Missing keys read
// as zero and do not reveal whether the account exists.
func (l *Limiter) LoginAttempts(ctx context.Context, email string) (int64, error) {
	count, err := l.redis.Get(ctx, loginEmailKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return count, nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.LoginCooldown).Err(); err != nil {
			return count, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}

func loginEmailKey(email string) string {
	return "sg:login:u:" + email
}

func loginIPKey(ip string) string {
	return "sg:login:ip:" + ip
}
