package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"scheme-eligibility-service/internal/domain"
)

// SchemeStore reads and writes raw scheme records as JSONB in Postgres.
type SchemeStore struct {
	pool *pgxpool.Pool
}

func NewSchemeStore(pool *pgxpool.Pool) *SchemeStore {
	return &SchemeStore{pool: pool}
}

// LoadSchemes returns every stored scheme in import order.
func (s *SchemeStore) LoadSchemes(ctx context.Context) ([]domain.SchemeSource, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM schemes ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("load schemes: %w", err)
	}
	defer rows.Close()

	var sources []domain.SchemeSource
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan scheme: %w", err)
		}
		var src domain.SchemeSource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, fmt.Errorf("unmarshal scheme: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load schemes: %w", err)
	}
	return sources, nil
}

// UpsertSchemes stores sources in one transaction, replacing rows with the
// same name. It returns the number of rows written.
func (s *SchemeStore) UpsertSchemes(ctx context.Context, sources []domain.SchemeSource) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i, src := range sources {
		raw, err := json.Marshal(src)
		if err != nil {
			return 0, fmt.Errorf("marshal scheme %q: %w", src.Name, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO schemes (name, position, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (name) DO UPDATE
			SET position = EXCLUDED.position, data = EXCLUDED.data, updated_at = now()`,
			src.Name, i, string(raw))
		if err != nil {
			return 0, fmt.Errorf("upsert scheme %q: %w", src.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(sources), nil
}
