package storegate

import (
	"context"
	"time"

	"github.com/arvindpj/storegate/session"
)

// UserRecord is a persisted credential record. PasswordHash is the stored
// scrypt form ("scrypt:<salt-hex>:<key-hex>"); scoping fields are only
// meaningful for the role that owns them (EngineerName for engineers, the
// Allowed lists for subs).
type UserRecord struct {
	ID               string
	Email            string
	PasswordHash     string
	Role             session.Role
	EngineerName     string
	AllowedEngineers []string
	AllowedProjects  []string
	AllowedPromos    []string
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateUserInput is the admin-facing shape for creating a credential
// record. Password is plaintext here; the engine hashes it before the store
// ever sees it.
type CreateUserInput struct {
	Email            string
	Password         string
	Role             session.Role
	EngineerName     string
	AllowedEngineers []string
	AllowedProjects  []string
	AllowedPromos    []string
}

// UpdateUserInput carries the mutable fields of a credential record. Nil
// pointers leave the field unchanged; a non-nil Password triggers a rehash.
type UpdateUserInput struct {
	Password         *string
	Role             *session.Role
	EngineerName     *string
	AllowedEngineers *[]string
	AllowedProjects  *[]string
	AllowedPromos    *[]string
	Active           *bool
}

// Promo is a promo code record, reduced to what authorization needs: its
// identity and the engineer it belongs to.
type Promo struct {
	Code         string
	EngineerName string
	Description  string
	CreatedAt    time.Time
}

// PromoDirectory is the read side of promo storage used by the scoped
// promo endpoints. Absent codes return [ErrPromoNotFound].
type PromoDirectory interface {
	GetPromo(ctx context.Context, code string) (Promo, error)
	ListPromos(ctx context.Context) ([]Promo, error)
}

// UserStore is the credential persistence contract the engine is built on.
// Implementations must return [ErrUserNotFound] for absent records and
// [ErrUserExists] for email collisions; every other failure should wrap
// [ErrStoreUnavailable] so callers can keep the login error surface uniform.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (UserRecord, error)
	GetByID(ctx context.Context, id string) (UserRecord, error)
	Create(ctx context.Context, rec UserRecord) (UserRecord, error)
	Update(ctx context.Context, rec UserRecord) (UserRecord, error)
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context) ([]UserRecord, error)
}
