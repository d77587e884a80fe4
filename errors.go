package storegate

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, inactive account, and
	// wrong password alike; login never reveals which case occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited signals the failed-attempt budget is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrUserNotFound is returned by UserStore lookups for absent records.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when creating a user with a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUserInput is returned for malformed user management input.
	ErrInvalidUserInput = errors.New("invalid user input")
	// ErrPromoNotFound is returned by PromoDirectory lookups for absent
	// codes, so handlers can answer 404 for missing and 403 for denied.
	ErrPromoNotFound = errors.New("promo not found")
	// ErrEngineNotReady is returned when an Engine is used before Build
	// completed its wiring.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrStoreUnavailable wraps credential store transport failures.
	ErrStoreUnavailable = errors.New("user store unavailable")
)
