package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/hpungsan/tails/internal/errors"
)

// ScopeInfo summarizes one persisted scope.
type ScopeInfo struct {
	Scope     string
	Keys      int
	UpdatedAt int64
}

// GetState returns the value stored under (scope, key).
// The bool is false when nothing is stored.
func GetState(ctx context.Context, db *sql.DB, scope, key string) ([]byte, bool, error) {
	var value []byte
	err := db.QueryRowContext(ctx,
		`SELECT value FROM state WHERE scope = ? AND key = ?`, scope, key,
	).Scan(&value)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.NewInternal(err)
	}
	return value, true, nil
}

// PutState inserts or replaces the value stored under (scope, key).
func PutState(ctx context.Context, db *sql.DB, scope, key string, value []byte) error {
	query := `
		INSERT INTO state (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, scope, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListScopes returns every scope with stored state, most recently updated first.
func ListScopes(ctx context.Context, db *sql.DB) ([]ScopeInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT scope, COUNT(*), MAX(updated_at)
		FROM state
		GROUP BY scope
		ORDER BY MAX(updated_at) DESC, scope ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []ScopeInfo
	for rows.Next() {
		var s ScopeInfo
		if err := rows.Scan(&s.Scope, &s.Keys, &s.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}
