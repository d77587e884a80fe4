package storegate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arvindpj/storegate/session"
	"github.com/google/uuid"
)

// CreateUser hashes the password and persists a new credential record.
// Callers are responsible for having passed the admin gate; this method
// enforces input shape, not the caller's role.
func (e *Engine) CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error) {
	if e == nil || e.users == nil {
		return UserRecord{}, ErrEngineNotReady
	}
	if err := validateCreateUser(input); err != nil {
		return UserRecord{}, err
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return UserRecord{}, err
	}

	now := time.Now().UTC()
	rec := UserRecord{
		ID:               uuid.NewString(),
		Email:            normalizeEmail(input.Email),
		PasswordHash:     hash,
		Role:             input.Role,
		EngineerName:     input.EngineerName,
		AllowedEngineers: input.AllowedEngineers,
		AllowedProjects:  input.AllowedProjects,
		AllowedPromos:    input.AllowedPromos,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := e.users.Create(ctx, rec)
	if err != nil {
		return UserRecord{}, err
	}

	e.emit(AuditUserCreated, created.Email, clientIPFromContext(ctx), true, nil)
	return created, nil
}

// UpdateUser applies the non-nil fields of input to the stored record.
func (e *Engine) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (UserRecord, error) {
	if e == nil || e.users == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	rec, err := e.users.GetByID(ctx, id)
	if err != nil {
		return UserRecord{}, err
	}

	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return UserRecord{}, fmt.Errorf("%w: password too short", ErrInvalidUserInput)
		}
		hash, err := e.hasher.Hash(*input.Password)
		if err != nil {
			return UserRecord{}, err
		}
		rec.PasswordHash = hash
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return UserRecord{}, fmt.Errorf("%w: unknown role", ErrInvalidUserInput)
		}
		rec.Role = *input.Role
	}
	if input.EngineerName != nil {
		rec.EngineerName = *input.EngineerName
	}
	if input.AllowedEngineers != nil {
		rec.AllowedEngineers = *input.AllowedEngineers
	}
	if input.AllowedProjects != nil {
		rec.AllowedProjects = *input.AllowedProjects
	}
	if input.AllowedPromos != nil {
		rec.AllowedPromos = *input.AllowedPromos
	}
	if input.Active != nil {
		rec.Active = *input.Active
	}
	if rec.Role == session.RoleEngineer && rec.EngineerName == "" {
		return UserRecord{}, fmt.Errorf("%w: engineer role requires an engineer name", ErrInvalidUserInput)
	}
	rec.UpdatedAt = time.Now().UTC()

	updated, err := e.users.Update(ctx, rec)
	if err != nil {
		return UserRecord{}, err
	}

	e.emit(AuditUserUpdated, updated.Email, clientIPFromContext(ctx), true, nil)
	return updated, nil
}

// DeactivateUser flips the active flag off. Existing tokens keep working
// until expiry (stateless sessions); deactivation only blocks new logins.
func (e *Engine) DeactivateUser(ctx context.Context, id string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}

	rec, err := e.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := e.users.SetActive(ctx, id, false); err != nil {
		return err
	}

	e.emit(AuditUserDeactivated, rec.Email, clientIPFromContext(ctx), true, nil)
	return nil
}

// GetUser fetches one credential record by ID.
func (e *Engine) GetUser(ctx context.Context, id string) (UserRecord, error) {
	if e == nil || e.users == nil {
		return UserRecord{}, ErrEngineNotReady
	}
	return e.users.GetByID(ctx, id)
}

// ListUsers returns all credential records.
func (e *Engine) ListUsers(ctx context.Context) ([]UserRecord, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}
	return e.users.List(ctx)
}

const minPasswordLength = 10

func validateCreateUser(input CreateUserInput) error {
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", ErrInvalidUserInput)
	}
	if len(input.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d bytes", ErrInvalidUserInput, minPasswordLength)
	}
	if !input.Role.Valid() {
		return fmt.Errorf("%w: unknown role", ErrInvalidUserInput)
	}
	if input.Role == session.RoleEngineer && input.EngineerName == "" {
		return fmt.Errorf("%w: engineer role requires an engineer name", ErrInvalidUserInput)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
