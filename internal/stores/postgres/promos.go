package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	storegate "github.com/arvindpj/storegate"
)

// GetPromo implements [storegate.PromoDirectory].
func (s *Store) GetPromo(ctx context.Context, code string) (storegate.Promo, error) {
	var p storegate.Promo
	err := s.pool.QueryRow(ctx,
		`SELECT code, engineer_name, description, created_at FROM promos WHERE code = $1`, code).
		Scan(&p.Code, &p.EngineerName, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storegate.Promo{}, storegate.ErrPromoNotFound
		}
		return storegate.Promo{}, wrapStoreErr(err)
	}
	return p, nil
}

// ListPromos implements [storegate.PromoDirectory].
func (s *Store) ListPromos(ctx context.Context) ([]storegate.Promo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, engineer_name, description, created_at FROM promos ORDER BY code`)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	var promos []storegate.Promo
	for rows.Next() {
		var p storegate.Promo
		if err := rows.Scan(&p.Code, &p.EngineerName, &p.Description, &p.CreatedAt); err != nil {
			return nil, wrapStoreErr(err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}
