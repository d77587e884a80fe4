// Package postgres implements the credential store and the thin promo
// directory on pgx. Schema changes ship as embedded goose migrations applied
// at boot.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	storegate "github.com/arvindpj/storegate"
	"github.com/arvindpj/storegate/session"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies pending migrations using a throwaway database/sql handle
// over the pool's config.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// Store implements [storegate.UserStore] on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool. The pool's lifecycle is owned by the caller.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, email, password_hash, role, engineer_name,
	allowed_engineers, allowed_projects, allowed_promos,
	active, created_at, updated_at`

// GetByEmail implements [storegate.UserStore].
func (s *Store) GetByEmail(ctx context.Context, email string) (storegate.UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID implements [storegate.UserStore].
func (s *Store) GetByID(ctx context.Context, id string) (storegate.UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create implements [storegate.UserStore]. Email collisions surface as
// [storegate.ErrUserExists].
func (s *Store) Create(ctx context.Context, rec storegate.UserRecord) (storegate.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (
			id, email, password_hash, role, engineer_name,
			allowed_engineers, allowed_projects, allowed_promos,
			active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+userColumns,
		rec.ID, rec.Email, rec.PasswordHash, rec.Role.String(), rec.EngineerName,
		textArray(rec.AllowedEngineers), textArray(rec.AllowedProjects), textArray(rec.AllowedPromos),
		rec.Active, rec.CreatedAt, rec.UpdatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return storegate.UserRecord{}, storegate.ErrUserExists
		}
		return storegate.UserRecord{}, err
	}
	return created, nil
}

// Update implements [storegate.UserStore].
func (s *Store) Update(ctx context.Context, rec storegate.UserRecord) (storegate.UserRecord, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			email = $2,
			password_hash = $3,
			role = $4,
			engineer_name = $5,
			allowed_engineers = $6,
			allowed_projects = $7,
			allowed_promos = $8,
			active = $9,
			updated_at = $10
		WHERE id = $1
		RETURNING `+userColumns,
		rec.ID, rec.Email, rec.PasswordHash, rec.Role.String(), rec.EngineerName,
		textArray(rec.AllowedEngineers), textArray(rec.AllowedProjects), textArray(rec.AllowedPromos),
		rec.Active, rec.UpdatedAt,
	)
	return scanUser(row)
}

// SetActive implements [storegate.UserStore].
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return wrapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return storegate.ErrUserNotFound
	}
	return nil
}

// List implements [storegate.UserStore].
func (s *Store) List(ctx context.Context) ([]storegate.UserRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	var records []storegate.UserRecord
	for rows.Next() {
		rec, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (storegate.UserRecord, error) {
	var (
		rec      storegate.UserRecord
		roleName string
	)
	err := row.Scan(
		&rec.ID, &rec.Email, &rec.PasswordHash, &roleName, &rec.EngineerName,
		&rec.AllowedEngineers, &rec.AllowedProjects, &rec.AllowedPromos,
		&rec.Active, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storegate.UserRecord{}, storegate.ErrUserNotFound
		}
		return storegate.UserRecord{}, wrapStoreErr(err)
	}

	role, err := session.ParseRole(roleName)
	if err != nil {
		return storegate.UserRecord{}, fmt.Errorf("%w: %v", storegate.ErrStoreUnavailable, err)
	}
	rec.Role = role
	return rec, nil
}

// textArray keeps NOT NULL array columns happy when the slice is nil.
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func wrapStoreErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	return fmt.Errorf("%w: %v", storegate.ErrStoreUnavailable, err)
}
